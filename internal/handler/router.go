package handler

import (
	"meganote_dashboard/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Router bundles the dashboard handlers and the session gate
type Router struct {
	Sessions   middleware.SessionSource
	CORSOrigin string

	Auth  *AuthHandler
	Prefs *PrefsHandler
	Notes *NoteHandler
	Users *UserHandler
}

// Mount registers every dashboard route on engine
func (r Router) Mount(engine *gin.Engine) *gin.Engine {
	if r.CORSOrigin != "" {
		engine.Use(middleware.CORS(r.CORSOrigin))
	}

	r.Auth.RegisterAuthRoutes(engine)
	r.Prefs.RegisterPrefsRoutes(engine)

	dash := engine.Group("/dash", middleware.RequireAuth(r.Sessions, middleware.AnyRole()...))
	r.Prefs.RegisterMenuRoutes(dash)
	r.Notes.RegisterNoteRoutes(dash)
	r.Auth.RegisterAccountRoutes(dash)

	// Nested under /dash, so the any-role gate runs first.
	users := dash.Group("/users", middleware.RequireAuth(r.Sessions, middleware.AdminOnly()...))
	r.Users.RegisterUserRoutes(users)

	return engine
}
