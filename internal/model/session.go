package model

// Session is the in-memory record of who is logged in
type Session struct {
	IsInitialized   bool   `json:"isInitialized"`
	IsAuthenticated bool   `json:"isAuthenticated"`
	User            *User  `json:"user"`
	Token           string `json:"-"`
}

// SessionStatus names the three states of the session machine
type SessionStatus string

const (
	StatusUninitialized   SessionStatus = "uninitialized"
	StatusUnauthenticated SessionStatus = "unauthenticated"
	StatusAuthenticated   SessionStatus = "authenticated"
)

func (s Session) Status() SessionStatus {
	switch {
	case !s.IsInitialized:
		return StatusUninitialized
	case s.IsAuthenticated:
		return StatusAuthenticated
	default:
		return StatusUnauthenticated
	}
}

// Credentials is the login request body
type Credentials struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Registration is the demo account request body
type Registration struct {
	Username string `json:"username" binding:"required"`
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
	Role     Role   `json:"role"`
}

// LoginResponse is the /auth response envelope
type LoginResponse struct {
	User        User   `json:"user"`
	AccessToken string `json:"accessToken"`
	Message     string `json:"message"`
}

// MessageResponse is the envelope of mutating endpoints
type MessageResponse struct {
	Message string `json:"message"`
}
