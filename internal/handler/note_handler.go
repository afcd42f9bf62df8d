package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"meganote_dashboard/internal/access"
	"meganote_dashboard/internal/listing"
	"meganote_dashboard/internal/model"
	"meganote_dashboard/internal/query"
	"meganote_dashboard/internal/service"
	"meganote_dashboard/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// NoteHandler serves the notes list and edit screens
type NoteHandler struct {
	notes    service.NoteService
	users    service.UserService
	debounce *listing.Debouncer
	logger   zerolog.Logger
}

func NewNoteHandler(notes service.NoteService, users service.UserService, searchDelay time.Duration, logger zerolog.Logger) *NoteHandler {
	return &NoteHandler{
		notes:    notes,
		users:    users,
		debounce: listing.NewDebouncer(searchDelay),
		logger:   logger.With().Str("component", "note_handler").Logger(),
	}
}

type noteListResponse struct {
	listing.State[model.Note]
	Rows    []access.NoteActions `json:"rows"`
	Actions []access.Action      `json:"actions"`
}

// screenFilter reads list query parameters on top of the screen's current filter
func screenFilter(c *gin.Context, cur query.Filter, toggleKey string) query.Filter {
	q := c.Request.URL.Query()
	f := cur
	if v, ok := c.GetQuery("filterName"); ok {
		f.Search = v
	}
	f.Toggle = utils.QueryBool(q, toggleKey, cur.Toggle)
	f.Page = utils.QueryInt(q, "page", cur.Page)
	f.Limit = utils.QueryInt(q, "limit", cur.Limit)
	return f
}

// refreshed runs a screen refresh and falls back to the latest snapshot
// when the response was overtaken. Other failures are already on the
// state and in the notice queue.
func refreshed[T any](ctx context.Context, refresh func(context.Context) (listing.State[T], error), screen *listing.Screen[T]) listing.State[T] {
	state, err := refresh(ctx)
	if errors.Is(err, listing.ErrStale) {
		return screen.Snapshot()
	}
	return state
}

// List applies the query filter to the notes screen and returns the page
// the signed-in user may see, with per-row actions.
func (h *NoteHandler) List(c *gin.Context) {
	user, ok := authUser(c)
	if !ok {
		return
	}
	screen := h.notes.Screen()
	screen.Apply(screenFilter(c, screen.Filter(), "filterCompleted"))

	state := refreshed(c.Request.Context(), h.notes.Refresh, screen)
	// Count and TotalPages stay the backend's totals; only the rows are trimmed.
	state.Items = access.VisibleNotes(user, state.Items)

	c.JSON(http.StatusOK, noteListResponse{
		State:   state,
		Rows:    access.RowActions(user, state.Items),
		Actions: access.VisibleActions(user, access.ScreenNotesList).List(),
	})
}

// Search records typed search text and refreshes once typing settles
func (h *NoteHandler) Search(c *gin.Context) {
	var req struct {
		FilterName string `json:"filterName"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	f := h.notes.Screen().SetSearch(req.FilterName)
	h.debounce.Trigger(func() {
		if _, err := h.notes.Refresh(context.Background()); err != nil && !errors.Is(err, listing.ErrStale) {
			h.logger.Debug().Err(err).Msg("debounced notes refresh failed")
		}
	})
	c.JSON(http.StatusAccepted, gin.H{"filter": f})
}

// assignees lists who user may assign notes to; a failed lookup yields none
func (h *NoteHandler) assignees(ctx context.Context, user *model.User) []model.User {
	all, err := h.users.All(ctx)
	if err != nil {
		return []model.User{}
	}
	return access.AssignableUsers(user, all)
}

func visible(user *model.User, note model.Note) bool {
	return len(access.VisibleNotes(user, []model.Note{note})) == 1
}

func canAssign(assignees []model.User, id string) bool {
	for _, u := range assignees {
		if u.ID == id {
			return true
		}
	}
	return false
}

func (h *NoteHandler) Get(c *gin.Context) {
	user, ok := authUser(c)
	if !ok {
		return
	}
	note, err := h.notes.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if !visible(user, *note) {
		forbidden(c, "You are not allowed to view this note")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"note":      note,
		"canEdit":   access.CanEditNote(user, *note),
		"canDelete": access.CanDeleteNote(user, *note),
		"assignees": h.assignees(c.Request.Context(), user),
		"actions":   access.VisibleActions(user, access.ScreenEditNote).List(),
	})
}

// Assignees backs the new-note form
func (h *NoteHandler) Assignees(c *gin.Context) {
	user, ok := authUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"assignees": h.assignees(c.Request.Context(), user)})
}

func (h *NoteHandler) Create(c *gin.Context) {
	user, ok := authUser(c)
	if !ok {
		return
	}
	var req model.NoteInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if !canAssign(h.assignees(c.Request.Context(), user), req.User) {
		forbidden(c, "You cannot assign notes to this user")
		return
	}
	if err := h.notes.Create(c.Request.Context(), req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"redirect": "/dash/notes"})
}

func (h *NoteHandler) Update(c *gin.Context) {
	user, ok := authUser(c)
	if !ok {
		return
	}
	var req model.NoteInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx := c.Request.Context()
	note, err := h.notes.Get(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if !visible(user, *note) || !access.CanEditNote(user, *note) {
		forbidden(c, "You are not allowed to edit this note")
		return
	}
	if req.User != note.User && !canAssign(h.assignees(ctx, user), req.User) {
		forbidden(c, "You cannot assign notes to this user")
		return
	}
	if err := h.notes.Update(ctx, note.ID, req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"redirect": "/dash/notes"})
}

func (h *NoteHandler) Delete(c *gin.Context) {
	user, ok := authUser(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	note, err := h.notes.Get(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if !visible(user, *note) || !access.CanDeleteNote(user, *note) {
		forbidden(c, "You are not allowed to delete this note")
		return
	}
	if err := h.notes.Delete(ctx, note.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"redirect": "/dash/notes"})
}

// Close stops a pending debounced refresh
func (h *NoteHandler) Close() {
	h.debounce.Cancel()
}

func (h *NoteHandler) RegisterNoteRoutes(dash *gin.RouterGroup) {
	notes := dash.Group("/notes")
	{
		notes.GET("", h.List)
		notes.POST("/search", h.Search)
		notes.GET("/assignees", h.Assignees)
		notes.GET("/:id", h.Get)
		notes.POST("", h.Create)
		notes.PATCH("/:id", h.Update)
		notes.DELETE("/:id", h.Delete)
	}
}
