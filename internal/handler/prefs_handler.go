package handler

import (
	"context"
	"net/http"

	"meganote_dashboard/internal/access"

	"github.com/gin-gonic/gin"
)

// PrefsService stores the theme and the "stay logged in" flag
type PrefsService interface {
	Theme(ctx context.Context) string
	ToggleTheme(ctx context.Context) string
	Persist(ctx context.Context) bool
	SetPersist(ctx context.Context, persist bool)
}

// Pinger reports whether the client-state database is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// PrefsHandler serves preferences, the menu and the health check
type PrefsHandler struct {
	prefs PrefsService
	db    Pinger // nil when state is kept in memory
}

func NewPrefsHandler(prefs PrefsService, db Pinger) *PrefsHandler {
	return &PrefsHandler{prefs: prefs, db: db}
}

func (h *PrefsHandler) GetTheme(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"theme": h.prefs.Theme(c.Request.Context())})
}

func (h *PrefsHandler) ToggleTheme(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"theme": h.prefs.ToggleTheme(c.Request.Context())})
}

func (h *PrefsHandler) GetPersist(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"persist": h.prefs.Persist(c.Request.Context())})
}

func (h *PrefsHandler) SetPersist(c *gin.Context) {
	var req struct {
		Persist *bool `json:"persist" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	h.prefs.SetPersist(c.Request.Context(), *req.Persist)
	c.JSON(http.StatusOK, gin.H{"persist": *req.Persist})
}

// Menu lists the dashboard entries the signed-in user may open
func (h *PrefsHandler) Menu(c *gin.Context) {
	user, ok := authUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":    user,
		"actions": access.VisibleActions(user, access.ScreenMenu).List(),
	})
}

func (h *PrefsHandler) Health(c *gin.Context) {
	if h.db == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "memory"})
		return
	}
	if err := h.db.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "db": "unhealthy"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "healthy"})
}

func (h *PrefsHandler) RegisterPrefsRoutes(rg gin.IRouter) {
	prefs := rg.Group("/prefs")
	{
		prefs.GET("/theme", h.GetTheme)
		prefs.PUT("/theme", h.ToggleTheme)
		prefs.GET("/persist", h.GetPersist)
		prefs.PUT("/persist", h.SetPersist)
	}
	rg.GET("/health", h.Health)
}

func (h *PrefsHandler) RegisterMenuRoutes(dash *gin.RouterGroup) {
	dash.GET("/menu", h.Menu)
}
