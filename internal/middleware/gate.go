package middleware

import (
	"net/http"
	"net/url"

	"meganote_dashboard/internal/model"

	"github.com/gin-gonic/gin"
)

const AuthUserKey = "authUser"

// Decision is the outcome of a role gate check
type Decision int

const (
	DecisionWait Decision = iota
	DecisionRedirectLogin
	DecisionAllow
)

func (d Decision) String() string {
	switch d {
	case DecisionWait:
		return "wait"
	case DecisionRedirectLogin:
		return "redirect-login"
	case DecisionAllow:
		return "allow"
	default:
		return "unknown"
	}
}

// SessionSource exposes the current session snapshot
type SessionSource interface {
	State() model.Session
}

// AnyRole allows every signed-in user
func AnyRole() []model.Role {
	return model.AllRoles()
}

// AdminOnly allows administrators
func AdminOnly() []model.Role {
	return []model.Role{model.RoleAdmin}
}

// Decide gates a route on the session. Until the session is initialized the
// answer is always Wait; a signed-in user with the wrong role is sent to
// login, same as a signed-out one.
func Decide(allowed []model.Role, s model.Session) Decision {
	if !s.IsInitialized {
		return DecisionWait
	}
	if !s.IsAuthenticated || s.User == nil {
		return DecisionRedirectLogin
	}
	for _, role := range allowed {
		if s.User.Role == role {
			return DecisionAllow
		}
	}
	return DecisionRedirectLogin
}

// LoginRedirect is where a gated request is sent, remembering where it came from
func LoginRedirect(from string) string {
	return "/login?from=" + url.QueryEscape(from)
}

// RequireAuth gates a route group on the session and the allowed roles
func RequireAuth(sessions SessionSource, allowed ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		state := sessions.State()
		switch Decide(allowed, state) {
		case DecisionWait:
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"status": "loading"})
		case DecisionRedirectLogin:
			c.Redirect(http.StatusFound, LoginRedirect(c.Request.URL.RequestURI()))
			c.Abort()
		default:
			c.Set(AuthUserKey, *state.User)
			c.Next()
		}
	}
}

// CurrentUser returns the user stored by RequireAuth
func CurrentUser(c *gin.Context) (*model.User, bool) {
	v, ok := c.Get(AuthUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(model.User)
	if !ok {
		return nil, false
	}
	return &user, true
}
