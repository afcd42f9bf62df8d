package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"meganote_dashboard/internal/access"
	"meganote_dashboard/internal/listing"
	"meganote_dashboard/internal/model"
	"meganote_dashboard/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// UserHandler serves the admin-only users screens
type UserHandler struct {
	users    service.UserService
	debounce *listing.Debouncer
	logger   zerolog.Logger
}

func NewUserHandler(users service.UserService, searchDelay time.Duration, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		users:    users,
		debounce: listing.NewDebouncer(searchDelay),
		logger:   logger.With().Str("component", "user_handler").Logger(),
	}
}

type userListResponse struct {
	listing.State[model.User]
	Actions []access.Action `json:"actions"`
}

func (h *UserHandler) List(c *gin.Context) {
	user, ok := authUser(c)
	if !ok {
		return
	}
	screen := h.users.Screen()
	screen.Apply(screenFilter(c, screen.Filter(), "filterInactive"))

	c.JSON(http.StatusOK, userListResponse{
		State:   refreshed(c.Request.Context(), h.users.Refresh, screen),
		Actions: access.VisibleActions(user, access.ScreenUsersList).List(),
	})
}

func (h *UserHandler) Search(c *gin.Context) {
	var req struct {
		FilterName string `json:"filterName"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	f := h.users.Screen().SetSearch(req.FilterName)
	h.debounce.Trigger(func() {
		if _, err := h.users.Refresh(context.Background()); err != nil && !errors.Is(err, listing.ErrStale) {
			h.logger.Debug().Err(err).Msg("debounced users refresh failed")
		}
	})
	c.JSON(http.StatusAccepted, gin.H{"filter": f})
}

func (h *UserHandler) All(c *gin.Context) {
	users, err := h.users.All(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *UserHandler) Get(c *gin.Context) {
	user, ok := authUser(c)
	if !ok {
		return
	}
	target, err := h.users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":    target,
		"roles":   model.AllRoles(),
		"actions": access.VisibleActions(user, access.ScreenEditUser).List(),
	})
}

func (h *UserHandler) Create(c *gin.Context) {
	var req model.UserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.users.Create(c.Request.Context(), req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"redirect": "/dash/users"})
}

func (h *UserHandler) Update(c *gin.Context) {
	var req model.UserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.users.Update(c.Request.Context(), c.Param("id"), req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"redirect": "/dash/users"})
}

func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.users.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"redirect": "/dash/users"})
}

func (h *UserHandler) Close() {
	h.debounce.Cancel()
}

func (h *UserHandler) RegisterUserRoutes(users *gin.RouterGroup) {
	users.GET("", h.List)
	users.POST("/search", h.Search)
	users.GET("/all", h.All)
	users.GET("/:id", h.Get)
	users.POST("", h.Create)
	users.PATCH("/:id", h.Update)
	users.DELETE("/:id", h.Delete)
}
