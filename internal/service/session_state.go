package service

import "meganote_dashboard/internal/model"

// SessionEvent is the closed set of session transitions
type SessionEvent interface {
	isSessionEvent()
}

// Initialized ends restoration. A nil User means no usable token was found.
type Initialized struct {
	User  *model.User
	Token string
}

// LoginSucceeded records a successful /auth call
type LoginSucceeded struct {
	User  *model.User
	Token string
}

// LoggedOut clears the identity
type LoggedOut struct{}

func (Initialized) isSessionEvent()    {}
func (LoginSucceeded) isSessionEvent() {}
func (LoggedOut) isSessionEvent()      {}

// ReduceSession computes the next session state. Only Initialized can
// leave the uninitialized state; other events are ignored until then.
func ReduceSession(state model.Session, event SessionEvent) model.Session {
	switch e := event.(type) {
	case Initialized:
		if state.IsInitialized {
			return state
		}
		authenticated := e.User != nil && e.Token != ""
		next := model.Session{IsInitialized: true, IsAuthenticated: authenticated}
		if authenticated {
			next.User = e.User
			next.Token = e.Token
		}
		return next
	case LoginSucceeded:
		if !state.IsInitialized || e.User == nil || e.Token == "" {
			return state
		}
		return model.Session{IsInitialized: true, IsAuthenticated: true, User: e.User, Token: e.Token}
	case LoggedOut:
		if !state.IsInitialized {
			return state
		}
		return model.Session{IsInitialized: true}
	}
	return state
}
