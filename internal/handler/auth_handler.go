package handler

import (
	"context"
	"net/http"
	"strings"

	"meganote_dashboard/internal/model"
	"meganote_dashboard/internal/notice"

	"github.com/gin-gonic/gin"
)

const defaultLanding = "/dash"

// SessionService is what the auth and account routes need from the session
type SessionService interface {
	State() model.Session
	Login(ctx context.Context, creds model.Credentials) (*model.User, string, error)
	Logout(ctx context.Context)
	Register(ctx context.Context, reg model.Registration) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, resetToken, password string) error
	UpdateAccount(ctx context.Context, in model.AccountInput) error
	UpdateProfile(ctx context.Context, in model.ProfileInput) error
}

// AuthHandler handles login, logout and the public account flows
type AuthHandler struct {
	sessions SessionService
	notices  *notice.Queue
}

func NewAuthHandler(sessions SessionService, notices *notice.Queue) *AuthHandler {
	return &AuthHandler{sessions: sessions, notices: notices}
}

type sessionResponse struct {
	Status model.SessionStatus `json:"status"`
	model.Session
}

func sessionBody(s model.Session) sessionResponse {
	return sessionResponse{Status: s.Status(), Session: s}
}

// landing picks the post-login destination; only local paths are followed
func landing(from string) string {
	if from == "" || !strings.HasPrefix(from, "/") || strings.HasPrefix(from, "//") || strings.HasPrefix(from, "/login") {
		return defaultLanding
	}
	return from
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req model.Credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if _, _, err := h.sessions.Login(c.Request.Context(), req); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session":  sessionBody(h.sessions.State()),
		"redirect": landing(c.Query("from")),
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	h.sessions.Logout(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"session": sessionBody(h.sessions.State()), "redirect": "/"})
}

func (h *AuthHandler) Session(c *gin.Context) {
	c.JSON(http.StatusOK, sessionBody(h.sessions.State()))
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req model.Registration
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.sessions.Register(c.Request.Context(), req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"redirect": "/login"})
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.sessions.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req struct {
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.sessions.ResetPassword(c.Request.Context(), c.Param("token"), req.Password); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"redirect": "/login"})
}

// UpdateAccount changes the signed-in user's own credentials
func (h *AuthHandler) UpdateAccount(c *gin.Context) {
	user, ok := authUser(c)
	if !ok {
		return
	}
	if c.Param("id") != user.ID {
		forbidden(c, "You can only change your own account")
		return
	}
	var req model.AccountInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	req.ID = user.ID
	if err := h.sessions.UpdateAccount(c.Request.Context(), req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdateProfile changes the signed-in user's display name and avatar
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	user, ok := authUser(c)
	if !ok {
		return
	}
	if c.Param("id") != user.ID {
		forbidden(c, "You can only change your own profile")
		return
	}
	var req model.ProfileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	req.ID = user.ID
	if err := h.sessions.UpdateProfile(c.Request.Context(), req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) Notices(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"notices": h.notices.Drain()})
}

// RegisterAuthRoutes registers the public routes
func (h *AuthHandler) RegisterAuthRoutes(rg gin.IRouter) {
	rg.POST("/login", h.Login)
	rg.POST("/logout", h.Logout)
	rg.POST("/register", h.Register)
	rg.POST("/forgot-password", h.ForgotPassword)
	rg.PATCH("/reset-password/:token", h.ResetPassword)
	rg.GET("/session", h.Session)
	rg.GET("/notices", h.Notices)
}

// RegisterAccountRoutes registers the self-service routes under the gated group
func (h *AuthHandler) RegisterAccountRoutes(dash *gin.RouterGroup) {
	account := dash.Group("/account")
	{
		account.PATCH("/:id", h.UpdateAccount)
		account.PUT("/:id", h.UpdateProfile)
	}
}
