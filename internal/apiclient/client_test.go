package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoPayload struct {
	Method string `json:"method"`
	Query  string `json:"query"`
	Auth   string `json:"auth"`
	Body   string `json:"body"`
}

func newEchoServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		encoded, _ := json.Marshal(body)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(echoPayload{
			Method: r.Method,
			Query:  r.URL.RawQuery,
			Auth:   r.Header.Get("Authorization"),
			Body:   string(encoded),
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func TestClient_UnwrapsPayload(t *testing.T) {
	server := newEchoServer(t)
	client := New(server.URL, time.Second, zerolog.Nop())

	var got echoPayload
	err := client.Get(context.Background(), "/notes", url.Values{"page": {"1"}, "limit": {"10"}}, &got)
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, got.Method)
	assert.Equal(t, "limit=10&page=1", got.Query)
	assert.Empty(t, got.Auth)

	err = client.Patch(context.Background(), "/notes/n1", map[string]string{"title": "t"}, &got)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPatch, got.Method)
	assert.JSONEq(t, `{"title":"t"}`, got.Body)
}

func TestClient_WithBearerIsScoped(t *testing.T) {
	server := newEchoServer(t)
	base := New(server.URL, time.Second, zerolog.Nop())
	scoped := base.WithBearer("tok")

	var got echoPayload
	require.NoError(t, scoped.Get(context.Background(), "/users", nil, &got))
	assert.Equal(t, "Bearer tok", got.Auth)
	assert.True(t, scoped.HasBearer())

	require.NoError(t, base.Get(context.Background(), "/users", nil, &got))
	assert.Empty(t, got.Auth, "base client must stay unauthenticated")
	assert.False(t, base.HasBearer())
	assert.False(t, scoped.WithBearer("").HasBearer())
}

func TestClient_ErrorEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/with-message":
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Unauthorized"}`))
		case "/plain-text":
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("boom"))
		default:
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"no message field"}`))
		}
	}))
	defer server.Close()
	client := New(server.URL, time.Second, zerolog.Nop())

	err := client.Get(context.Background(), "/with-message", nil, nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Unauthorized", apiErr.Message)

	err = client.Get(context.Background(), "/plain-text", nil, nil)
	assert.Equal(t, UnknownErrorMessage, Message(err))

	err = client.Delete(context.Background(), "/other", nil)
	assert.Equal(t, UnknownErrorMessage, Message(err))
}

func TestClient_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := server.URL
	server.Close()

	err := New(baseURL, time.Second, zerolog.Nop()).Get(context.Background(), "/notes", nil, nil)
	assert.Equal(t, UnknownErrorMessage, Message(err))
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	err := New(server.URL, 50*time.Millisecond, zerolog.Nop()).Get(context.Background(), "/slow", nil, nil)
	assert.Equal(t, TimeoutMessage, Message(err))
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "", Message(nil))
	assert.Equal(t, "x", Message(&APIError{Message: "x"}))
	assert.Equal(t, assert.AnError.Error(), Message(assert.AnError))
}
