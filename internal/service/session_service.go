package service

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	"meganote_dashboard/internal/apiclient"
	"meganote_dashboard/internal/model"
	"meganote_dashboard/internal/notice"
	"meganote_dashboard/internal/repository"
	"meganote_dashboard/internal/utils"

	"github.com/rs/zerolog"
)

const logoutMessage = "See you again!"

var (
	ErrNotInitialized     = errors.New("session is not initialized")
	ErrUnusableLoginToken = &apiclient.APIError{Message: "Received an invalid access token"}
)

// ClientSource hands out the HTTP client scoped to the current session
type ClientSource interface {
	Client() *apiclient.Client
}

// SessionManager is the single source of truth for who is logged in
type SessionManager struct {
	// opMu serializes Restore, Login, Logout and expiry across the store
	// write and the state change. Take it before mu, never while holding mu.
	opMu sync.Mutex

	mu      sync.RWMutex
	state   model.Session
	base    *apiclient.Client
	client  *apiclient.Client
	store   repository.StateRepository
	notices *notice.Queue
	logger  zerolog.Logger
	now     func() time.Time

	restoreOnce sync.Once
}

// NewSessionManager creates an uninitialized SessionManager; call Restore once at startup.
func NewSessionManager(base *apiclient.Client, store repository.StateRepository, notices *notice.Queue, logger zerolog.Logger) *SessionManager {
	return &SessionManager{
		base:    base,
		client:  base,
		store:   store,
		notices: notices,
		logger:  logger.With().Str("component", "session").Logger(),
		now:     time.Now,
	}
}

// SetClock replaces the time source used for token expiry checks
func (m *SessionManager) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

func (m *SessionManager) dispatch(event SessionEvent) {
	m.state = ReduceSession(m.state, event)
}

// expireStale signs the session out once its token is no longer usable.
func (m *SessionManager) expireStale() {
	m.mu.RLock()
	stale := m.state.IsAuthenticated && !utils.IsValidToken(m.state.Token, m.now())
	token := m.state.Token
	m.mu.RUnlock()
	if !stale {
		return
	}

	m.opMu.Lock()
	defer m.opMu.Unlock()

	m.mu.Lock()
	if !m.state.IsAuthenticated || m.state.Token != token {
		// A concurrent Login or Logout got here first.
		m.mu.Unlock()
		return
	}
	m.client = m.base
	m.dispatch(LoggedOut{})
	m.mu.Unlock()

	if err := m.store.Delete(context.Background(), repository.KeyAccessToken); err != nil {
		m.logger.Warn().Err(err).Msg("could not delete expired token")
	}
	m.logger.Info().Msg("access token expired; signed out")
}

// State returns a snapshot of the session
func (m *SessionManager) State() model.Session {
	m.expireStale()
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := m.state
	if out.User != nil {
		u := *out.User
		out.User = &u
	}
	return out
}

// Client returns the client for the current session: bearer-scoped when
// authenticated, the bare base client otherwise.
func (m *SessionManager) Client() *apiclient.Client {
	m.expireStale()
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.client
}

// Restore reads the persisted token and initializes the session from it.
// Only the first call does anything; the session is always initialized
// afterwards, whatever the store or the token looked like.
func (m *SessionManager) Restore(ctx context.Context) {
	m.restoreOnce.Do(func() {
		m.opMu.Lock()
		defer m.opMu.Unlock()
		m.restore(ctx)
	})
}

func (m *SessionManager) restore(ctx context.Context) {
	token, ok, err := m.store.Get(ctx, repository.KeyAccessToken)
	if err != nil {
		m.logger.Warn().Err(err).Msg("could not read persisted token; starting signed out")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err != nil || !ok || token == "" {
		m.client = m.base
		m.dispatch(Initialized{})
		return
	}

	claims, decodeErr := utils.DecodeToken(token)
	if decodeErr != nil || claims.ExpiresAt == nil || !claims.ExpiresAt.Time.After(m.now()) {
		m.logger.Info().Err(decodeErr).Msg("discarding unusable persisted token")
		if delErr := m.store.Delete(ctx, repository.KeyAccessToken); delErr != nil {
			m.logger.Warn().Err(delErr).Msg("could not delete persisted token")
		}
		m.client = m.base
		m.dispatch(Initialized{})
		return
	}

	user := claims.UserInfo
	m.client = m.base.WithBearer(token)
	m.dispatch(Initialized{User: &user, Token: token})
	m.logger.Info().Str("user", user.Username).Msg("session restored")
}

// Login authenticates against /auth. On failure the backend error is
// returned unchanged and the session stays signed out.
func (m *SessionManager) Login(ctx context.Context, creds model.Credentials) (*model.User, string, error) {
	if !m.State().IsInitialized {
		return nil, "", ErrNotInitialized
	}

	var resp model.LoginResponse
	if err := m.base.Post(ctx, "/auth", creds, &resp); err != nil {
		m.logger.Info().Str("username", creds.Username).Str("reason", apiclient.Message(err)).Msg("login failed")
		return nil, "", err
	}

	m.opMu.Lock()
	defer m.opMu.Unlock()

	m.mu.RLock()
	usable := utils.IsValidToken(resp.AccessToken, m.now())
	m.mu.RUnlock()
	if !usable {
		m.logger.Warn().Str("username", creds.Username).Msg("backend returned an unusable access token")
		return nil, "", ErrUnusableLoginToken
	}

	// Persist before publishing so a Logout queued on opMu deletes this token.
	if err := m.store.Set(ctx, repository.KeyAccessToken, resp.AccessToken); err != nil {
		m.logger.Warn().Err(err).Msg("could not persist access token")
	}

	user := resp.User
	m.mu.Lock()
	m.client = m.base.WithBearer(resp.AccessToken)
	m.dispatch(LoginSucceeded{User: &user, Token: resp.AccessToken})
	m.mu.Unlock()

	m.notices.Success(resp.Message)
	m.logger.Info().Str("user", user.Username).Msg("logged in")

	u := user
	return &u, resp.AccessToken, nil
}

// Logout forgets the token everywhere. It cannot fail.
func (m *SessionManager) Logout(ctx context.Context) {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	if err := m.store.Delete(ctx, repository.KeyAccessToken); err != nil {
		m.logger.Warn().Err(err).Msg("could not delete persisted token")
	}

	m.mu.Lock()
	m.client = m.base
	m.dispatch(LoggedOut{})
	m.mu.Unlock()

	m.notices.Success(logoutMessage)
	m.logger.Info().Msg("logged out")
}

// Register creates a demo account.
func (m *SessionManager) Register(ctx context.Context, reg model.Registration) error {
	return passThrough(m.notices, func(out *model.MessageResponse) error {
		return m.base.Post(ctx, "/auth/register", reg, out)
	})
}

// ForgotPassword asks the backend to mail a reset link.
func (m *SessionManager) ForgotPassword(ctx context.Context, email string) error {
	return passThrough(m.notices, func(out *model.MessageResponse) error {
		return m.base.Post(ctx, "/auth/forgotpassword", map[string]string{"email": email}, out)
	})
}

// ResetPassword sets a new password using the emailed reset token.
func (m *SessionManager) ResetPassword(ctx context.Context, resetToken, password string) error {
	return passThrough(m.notices, func(out *model.MessageResponse) error {
		return m.base.Patch(ctx, "/auth/resetpassword/"+url.PathEscape(resetToken), map[string]string{"password": password}, out)
	})
}

// UpdateAccount changes the user's own username, email or password.
func (m *SessionManager) UpdateAccount(ctx context.Context, in model.AccountInput) error {
	return passThrough(m.notices, func(out *model.MessageResponse) error {
		return m.Client().Patch(ctx, "/account/"+url.PathEscape(in.ID), in, out)
	})
}

// UpdateProfile changes the user's own display name and avatar.
func (m *SessionManager) UpdateProfile(ctx context.Context, in model.ProfileInput) error {
	return passThrough(m.notices, func(out *model.MessageResponse) error {
		return m.Client().Put(ctx, "/account/"+url.PathEscape(in.ID), in, out)
	})
}

// passThrough runs one backend mutation and reports its message as a
// success notice. Errors go back to the caller untouched.
func passThrough(notices *notice.Queue, call func(out *model.MessageResponse) error) error {
	var resp model.MessageResponse
	if err := call(&resp); err != nil {
		return err
	}
	notices.Success(resp.Message)
	return nil
}
