package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"meganote_dashboard/internal/apiclient"
	"meganote_dashboard/internal/listing"
	"meganote_dashboard/internal/model"
	"meganote_dashboard/internal/notice"
	"meganote_dashboard/internal/query"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticClients struct{ client *apiclient.Client }

func (s staticClients) Client() *apiclient.Client { return s.client }

// recordingBackend answers list calls and remembers every raw query.
// Requests carrying rejectParam fail with 400.
type recordingBackend struct {
	mu          sync.Mutex
	queries     []string
	rejectParam string
	body        string
}

func (b *recordingBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.queries = append(b.queries, r.URL.RawQuery)
	b.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	if b.rejectParam != "" && r.URL.Query().Has(b.rejectParam) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"Bad filter"}`))
		return
	}
	_, _ = w.Write([]byte(b.body))
}

func (b *recordingBackend) recorded() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.queries...)
}

func newRecordingNotes(t *testing.T, b *recordingBackend) (NoteService, *notice.Queue) {
	t.Helper()
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)
	notices := notice.NewQueue(10)
	client := apiclient.New(srv.URL, 0, zerolog.Nop())
	return NewNoteService(staticClients{client}, notices, 10, zerolog.Nop()), notices
}

func TestNoteList_SendsParams(t *testing.T) {
	b := &recordingBackend{body: `{"notes":[],"count":0,"totalPages":1}`}
	notes, _ := newRecordingNotes(t, b)
	ctx := context.Background()

	_, err := notes.List(ctx, query.Filter{Toggle: true, Page: 1, Limit: 10})
	require.NoError(t, err)
	_, err = notes.List(ctx, query.Filter{Search: "42", Page: 2, Limit: 10})
	require.NoError(t, err)
	_, err = notes.List(ctx, query.Filter{Search: "printer"})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"limit=10&page=1&status=Completed",
		"limit=10&page=2&ticket=42",
		"limit=12&page=1&term=printer",
	}, b.recorded())
}

func TestNoteList_FallsBackWithoutSearch(t *testing.T) {
	b := &recordingBackend{rejectParam: "term", body: `{"notes":[{"_id":"n1","ticket":500}],"count":1,"totalPages":1}`}
	notes, notices := newRecordingNotes(t, b)

	page, err := notes.List(context.Background(), query.Filter{Search: "printer", Toggle: true, Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, page.Notes, 1)
	assert.Equal(t, "n1", page.Notes[0].ID)

	assert.Equal(t, []string{
		"limit=10&page=1&status=Completed&term=printer",
		"limit=10&page=1&status=Completed",
	}, b.recorded())

	got := notices.Drain()
	require.Len(t, got, 1)
	assert.Equal(t, notice.LevelError, got[0].Level)
	assert.Equal(t, "Bad filter", got[0].Message)
}

func TestNoteList_NoRetryWithoutSearch(t *testing.T) {
	b := &recordingBackend{rejectParam: "page"}
	notes, notices := newRecordingNotes(t, b)

	_, err := notes.List(context.Background(), query.Filter{})
	require.Error(t, err)
	assert.Len(t, b.recorded(), 1)
	assert.Len(t, notices.Drain(), 1)
}

func TestNoteRefresh_FailureKeepsItems(t *testing.T) {
	b := &recordingBackend{body: `{"notes":[{"_id":"n1"},{"_id":"n2"}],"count":2,"totalPages":1}`}
	notes, _ := newRecordingNotes(t, b)
	ctx := context.Background()

	state, err := notes.Refresh(ctx)
	require.NoError(t, err)
	require.Len(t, state.Items, 2)

	b.mu.Lock()
	b.rejectParam = "page"
	b.mu.Unlock()
	state, err = notes.Refresh(ctx)
	require.Error(t, err)
	assert.Equal(t, "Bad filter", state.Error)
	assert.Len(t, state.Items, 2)
	assert.False(t, state.IsLoading)
}

func TestNoteRefresh_StaleResponseDropped(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("term") == "slow" {
			<-release
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"notes":[{"_id":"` + r.URL.Query().Get("term") + `"}],"count":1,"totalPages":1}`))
	}))
	defer srv.Close()
	defer close(release)

	notes := NewNoteService(staticClients{apiclient.New(srv.URL, 0, zerolog.Nop())}, notice.NewQueue(5), 10, zerolog.Nop())
	ctx := context.Background()

	notes.Screen().SetSearch("slow")
	slowDone := make(chan error, 1)
	go func() {
		_, err := notes.Refresh(ctx)
		slowDone <- err
	}()

	// Wait until the slow request is in flight before moving on.
	require.Eventually(t, func() bool { return notes.Screen().Snapshot().IsLoading }, testWait, testTick)

	notes.Screen().SetSearch("fast")
	state, err := notes.Refresh(ctx)
	require.NoError(t, err)
	require.Len(t, state.Items, 1)
	assert.Equal(t, "fast", state.Items[0].ID)

	release <- struct{}{}
	assert.ErrorIs(t, <-slowDone, listing.ErrStale)
	assert.Equal(t, "fast", notes.Screen().Snapshot().Items[0].ID)
}

func TestUserList_AgainstBackend(t *testing.T) {
	backend := newBackend(t)
	m, notices := loggedIn(t, backend.URL, "alice")
	users := NewUserService(m, notices, 10, zerolog.Nop())
	ctx := context.Background()

	page, err := users.List(ctx, query.Filter{Search: "MANAGER"})
	require.NoError(t, err)
	require.Len(t, page.Users, 1)
	assert.Equal(t, "mark", page.Users[0].Username)

	page, err = users.List(ctx, query.Filter{Toggle: true})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Count)

	all, err := users.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	users.Screen().SetSearch("erin")
	state, err := users.Refresh(ctx)
	require.NoError(t, err)
	require.Len(t, state.Items, 1)
	assert.Equal(t, "u3", state.Items[0].ID)
}

func TestUserMutations_AgainstBackend(t *testing.T) {
	backend := newBackend(t)
	m, notices := loggedIn(t, backend.URL, "alice")
	users := NewUserService(m, notices, 10, zerolog.Nop())
	ctx := context.Background()

	active := false
	require.NoError(t, users.Create(ctx, model.UserInput{Username: "zoe", Password: "pw", Role: model.RoleManager}))
	require.NoError(t, users.Update(ctx, "u3", model.UserInput{Username: "erin", Fullname: "Erin E.", Role: model.RoleEmployee, Active: &active}))

	u, err := users.Get(ctx, "u3")
	require.NoError(t, err)
	assert.False(t, u.Active)

	require.NoError(t, users.Delete(ctx, "u4"))
	_, err = users.Get(ctx, "u4")
	require.Error(t, err)
	assert.Equal(t, "User not found", apiclient.Message(err))

	got := notices.Drain()
	require.Len(t, got, 4)
	assert.Equal(t, "New user zoe created", got[0].Message)
	assert.Equal(t, notice.LevelError, got[3].Level)
}

func TestNoteMutations_AgainstBackend(t *testing.T) {
	backend := newBackend(t)
	m, notices := loggedIn(t, backend.URL, "mark")
	notes := NewNoteService(m, notices, 10, zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, notes.Create(ctx, model.NoteInput{User: "u3", Title: "Call vendor", Text: "Invoices"}))
	page, err := notes.List(ctx, query.Filter{Search: "504"})
	require.NoError(t, err)
	require.Len(t, page.Notes, 1)
	id := page.Notes[0].ID

	require.NoError(t, notes.Update(ctx, id, model.NoteInput{User: "u3", Title: "Call vendor", Text: "Paid", Status: model.StatusCompleted}))
	note, err := notes.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, note.Status)
	assert.Equal(t, "erin", note.Username)

	all, err := notes.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	require.NoError(t, notes.Delete(ctx, id))
	got := notices.Drain()
	require.Len(t, got, 3)
	assert.Equal(t, "New note #504 created", got[0].Message)
	assert.Equal(t, "Note updated", got[1].Message)
	assert.Equal(t, "Note deleted", got[2].Message)
}
