package service

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"meganote_dashboard/internal/apiclient"
	"meganote_dashboard/internal/devapi"
	"meganote_dashboard/internal/notice"
	"meganote_dashboard/internal/repository"
	"meganote_dashboard/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const testSecret = "service-test-secret"

// newBackend starts a seeded devapi behind an httptest server
func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := devapi.NewStore()
	require.NoError(t, devapi.Seed(store))
	srv := httptest.NewServer(devapi.NewServer(store, utils.NewJWTUtil(testSecret, 1), zerolog.Nop()).Router())
	t.Cleanup(srv.Close)
	return srv
}

func newManager(baseURL string, store repository.StateRepository, notices *notice.Queue) *SessionManager {
	client := apiclient.New(baseURL, 5*time.Second, zerolog.Nop())
	return NewSessionManager(client, store, notices, zerolog.Nop())
}

// loggedIn returns a restored manager signed in as username
func loggedIn(t *testing.T, baseURL, username string) (*SessionManager, *notice.Queue) {
	t.Helper()
	notices := notice.NewQueue(10)
	m := newManager(baseURL, repository.NewMemoryStateRepository(), notices)
	m.Restore(context.Background())
	_, _, err := m.Login(context.Background(), credentials(username))
	require.NoError(t, err)
	notices.Drain()
	return m, notices
}

var errStoreDown = errors.New("store down")

// brokenStore fails every operation
type brokenStore struct{}

func (brokenStore) Get(context.Context, string) (string, bool, error) { return "", false, errStoreDown }
func (brokenStore) Set(context.Context, string, string) error         { return errStoreDown }
func (brokenStore) Delete(context.Context, string) error              { return errStoreDown }

// gatedStore holds every access token write until release is closed
type gatedStore struct {
	repository.StateRepository
	entered chan struct{}
	release chan struct{}
}

func newGatedStore() *gatedStore {
	return &gatedStore{
		StateRepository: repository.NewMemoryStateRepository(),
		entered:         make(chan struct{}, 1),
		release:         make(chan struct{}),
	}
}

func (s *gatedStore) Set(ctx context.Context, key, value string) error {
	if key == repository.KeyAccessToken {
		s.entered <- struct{}{}
		<-s.release
	}
	return s.StateRepository.Set(ctx, key, value)
}
