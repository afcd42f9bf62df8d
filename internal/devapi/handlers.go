package devapi

import (
	"errors"
	"net/http"
	"strconv"

	"meganote_dashboard/internal/model"
	"meganote_dashboard/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const defaultLimit = 12

// Server exposes a Store over the Meganote REST surface
type Server struct {
	store   *Store
	jwtUtil *utils.JWTUtil
	logger  zerolog.Logger
}

func NewServer(store *Store, jwtUtil *utils.JWTUtil, logger zerolog.Logger) *Server {
	return &Server{store: store, jwtUtil: jwtUtil, logger: logger.With().Str("component", "devapi").Logger()}
}

// Router builds the gin engine with every route registered
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	s.RegisterRoutes(router)
	return router
}

func (s *Server) RegisterRoutes(router gin.IRouter) {
	auth := router.Group("/auth")
	{
		auth.POST("", s.login)
		auth.POST("/register", s.register)
		auth.POST("/forgotpassword", s.forgotPassword)
		auth.PATCH("/resetpassword/:token", s.resetPassword)
	}

	jwtMW := jwtAuthMiddleware(s.jwtUtil)
	adminMW := roleMiddleware(model.RoleAdmin)

	account := router.Group("/account", jwtMW)
	{
		account.PATCH("/:id", s.updateAccount)
		account.PUT("/:id", s.updateProfile)
	}

	notes := router.Group("/notes", jwtMW)
	{
		notes.GET("", s.listNotes)
		notes.GET("/all", s.allNotes)
		notes.GET("/:id", s.getNote)
		notes.POST("", s.createNote)
		notes.PATCH("/:id", s.updateNote)
		notes.DELETE("/:id", s.deleteNote)
	}

	users := router.Group("/users", jwtMW)
	{
		users.GET("", s.listUsers)
		users.GET("/all", s.allUsers)
		users.GET("/:id", s.getUser)
		users.POST("", adminMW, s.createUser)
		users.PATCH("/:id", adminMW, s.updateUser)
		users.DELETE("/:id", adminMW, s.deleteUser)
	}
}

func message(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"message": msg})
}

func storeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrNoteNotFound):
		message(c, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrDuplicateUsername):
		message(c, http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidResetToken):
		message(c, http.StatusBadRequest, err.Error())
	default:
		message(c, http.StatusInternalServerError, "Internal server error")
	}
}

func (s *Server) login(c *gin.Context) {
	var req model.Credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		message(c, http.StatusBadRequest, "All fields are required")
		return
	}
	user, ok := s.store.Authenticate(req.Username, req.Password)
	if !ok {
		message(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	token, err := s.jwtUtil.GenerateToken(user)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to sign token")
		message(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	c.JSON(http.StatusOK, model.LoginResponse{User: user, AccessToken: token, Message: "Welcome back, " + user.Username + "!"})
}

func (s *Server) register(c *gin.Context) {
	var req model.Registration
	if err := c.ShouldBindJSON(&req); err != nil {
		message(c, http.StatusBadRequest, "All fields are required")
		return
	}
	_, err := s.store.AddUser(model.User{
		Username: req.Username,
		Fullname: req.Fullname,
		Email:    req.Email,
		Role:     req.Role,
		Active:   true,
	}, req.Password)
	if err != nil {
		storeError(c, err)
		return
	}
	message(c, http.StatusCreated, "New user "+req.Username+" created")
}

func (s *Server) forgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		message(c, http.StatusBadRequest, "Email is required")
		return
	}
	token, ok := s.store.IssueResetToken(req.Email)
	if !ok {
		message(c, http.StatusNotFound, "There is no user with that email")
		return
	}
	// No mail is sent; the link is only logged.
	s.logger.Info().Str("email", req.Email).Str("resetPath", "/auth/resetpassword/"+token).Msg("password reset requested")
	message(c, http.StatusOK, "Reset link sent to email")
}

func (s *Server) resetPassword(c *gin.Context) {
	var req struct {
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		message(c, http.StatusBadRequest, "Password is required")
		return
	}
	if err := s.store.RedeemResetToken(c.Param("token"), req.Password); err != nil {
		storeError(c, err)
		return
	}
	message(c, http.StatusOK, "Password reset successful")
}

func (s *Server) updateAccount(c *gin.Context) {
	id := c.Param("id")
	if c.GetString(authUserKey) != id {
		message(c, http.StatusForbidden, "Forbidden")
		return
	}
	var req model.AccountInput
	if err := c.ShouldBindJSON(&req); err != nil {
		message(c, http.StatusBadRequest, "Invalid request")
		return
	}
	err := s.store.UpdateUser(id, req.Password, func(u *model.User) {
		if req.Username != "" {
			u.Username = req.Username
		}
		if req.Email != "" {
			u.Email = req.Email
		}
	})
	if err != nil {
		storeError(c, err)
		return
	}
	message(c, http.StatusOK, "Account updated")
}

func (s *Server) updateProfile(c *gin.Context) {
	id := c.Param("id")
	if c.GetString(authUserKey) != id {
		message(c, http.StatusForbidden, "Forbidden")
		return
	}
	var req model.ProfileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		message(c, http.StatusBadRequest, "Invalid request")
		return
	}
	err := s.store.UpdateUser(id, "", func(u *model.User) {
		u.Fullname = req.Fullname
		u.AvatarURL = req.AvatarURL
	})
	if err != nil {
		storeError(c, err)
		return
	}
	message(c, http.StatusOK, "Profile updated")
}

func pageParams(c *gin.Context) (int, int) {
	q := c.Request.URL.Query()
	return utils.QueryInt(q, "page", 1), utils.QueryInt(q, "limit", defaultLimit)
}

func (s *Server) listNotes(c *gin.Context) {
	var q NoteQuery
	if raw := c.Query("ticket"); raw != "" {
		ticket, err := strconv.Atoi(raw)
		if err != nil {
			message(c, http.StatusBadRequest, "Invalid ticket")
			return
		}
		q.Ticket = &ticket
	}
	q.Term = c.Query("term")
	q.Status = c.Query("status")

	all := s.store.Notes(q)
	page, limit := pageParams(c)
	items, totalPages := paginate(all, page, limit)
	c.JSON(http.StatusOK, model.NotePage{Notes: items, Count: len(all), TotalPages: totalPages})
}

func (s *Server) allNotes(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Notes(NoteQuery{}))
}

func (s *Server) getNote(c *gin.Context) {
	note, err := s.store.Note(c.Param("id"))
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, note)
}

func (s *Server) createNote(c *gin.Context) {
	var req model.NoteInput
	if err := c.ShouldBindJSON(&req); err != nil {
		message(c, http.StatusBadRequest, "All fields are required")
		return
	}
	note, err := s.store.AddNote(req)
	if err != nil {
		storeError(c, err)
		return
	}
	message(c, http.StatusCreated, "New note #"+strconv.Itoa(note.Ticket)+" created")
}

func (s *Server) updateNote(c *gin.Context) {
	var req model.NoteInput
	if err := c.ShouldBindJSON(&req); err != nil {
		message(c, http.StatusBadRequest, "All fields are required")
		return
	}
	if err := s.store.UpdateNote(c.Param("id"), req); err != nil {
		storeError(c, err)
		return
	}
	message(c, http.StatusOK, "Note updated")
}

func (s *Server) deleteNote(c *gin.Context) {
	if err := s.store.DeleteNote(c.Param("id")); err != nil {
		storeError(c, err)
		return
	}
	message(c, http.StatusOK, "Note deleted")
}

func (s *Server) listUsers(c *gin.Context) {
	q := UserQuery{Fullname: c.Query("fullname"), Role: c.Query("role")}
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			message(c, http.StatusBadRequest, "Invalid active filter")
			return
		}
		q.Active = &active
	}
	all := s.store.Users(q)
	page, limit := pageParams(c)
	items, totalPages := paginate(all, page, limit)
	c.JSON(http.StatusOK, model.UserPage{Users: items, Count: len(all), TotalPages: totalPages})
}

func (s *Server) allUsers(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Users(UserQuery{}))
}

func (s *Server) getUser(c *gin.Context) {
	user, err := s.store.User(c.Param("id"))
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) createUser(c *gin.Context) {
	var req model.UserInput
	if err := c.ShouldBindJSON(&req); err != nil || req.Password == "" {
		message(c, http.StatusBadRequest, "All fields are required")
		return
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	_, err := s.store.AddUser(model.User{
		Username: req.Username,
		Fullname: req.Fullname,
		Email:    req.Email,
		Role:     req.Role,
		Active:   active,
	}, req.Password)
	if err != nil {
		storeError(c, err)
		return
	}
	message(c, http.StatusCreated, "New user "+req.Username+" created")
}

func (s *Server) updateUser(c *gin.Context) {
	var req model.UserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		message(c, http.StatusBadRequest, "All fields are required")
		return
	}
	err := s.store.UpdateUser(c.Param("id"), req.Password, func(u *model.User) {
		u.Username = req.Username
		u.Fullname = req.Fullname
		u.Email = req.Email
		if req.Role != "" {
			u.Role = req.Role
		}
		if req.Active != nil {
			u.Active = *req.Active
		}
	})
	if err != nil {
		storeError(c, err)
		return
	}
	message(c, http.StatusOK, req.Username+" updated")
}

func (s *Server) deleteUser(c *gin.Context) {
	if err := s.store.DeleteUser(c.Param("id")); err != nil {
		storeError(c, err)
		return
	}
	message(c, http.StatusOK, "User deleted")
}
