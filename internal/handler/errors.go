package handler

import (
	"errors"
	"net/http"

	"meganote_dashboard/internal/apiclient"
	"meganote_dashboard/internal/middleware"
	"meganote_dashboard/internal/model"
	"meganote_dashboard/internal/service"

	"github.com/gin-gonic/gin"
)

// respondError reports a failed submit inline. Backend errors keep their
// status and message; anything without a status is a bad gateway.
func respondError(c *gin.Context, err error) {
	status := http.StatusBadGateway
	var apiErr *apiclient.APIError
	switch {
	case errors.Is(err, service.ErrNotInitialized):
		status = http.StatusServiceUnavailable
	case errors.As(err, &apiErr) && apiErr.Status >= 400:
		status = apiErr.Status
	}
	c.JSON(status, gin.H{"message": apiclient.Message(err)})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request: " + err.Error()})
}

func forbidden(c *gin.Context, msg string) {
	c.JSON(http.StatusForbidden, gin.H{"message": msg})
}

// authUser returns the user the gate let through
func authUser(c *gin.Context) (*model.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return nil, false
	}
	return user, true
}
