package v1

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sonuy10/Ai-Emergency-Qr-Health-System/internal/domain/patient"
	"github.com/sonuy10/Ai-Emergency-Qr-Health-System/internal/service"
)

// This app serves browsers, not API clients: errors are plain text or a
// re-rendered form, and successes are mostly redirects.

const notFoundMessage = "Invalid or expired QR Code"

func respondPlain(c *gin.Context, status int, message string) {
	c.String(status, message)
}

func respondServiceError(c *gin.Context, err error) {
	var validErr *service.ValidationError
	if errors.As(err, &validErr) {
		c.String(http.StatusBadRequest, "Invalid input: "+validErr.Error())
		return
	}

	switch {
	case errors.Is(err, patient.ErrPatientNotFound):
		c.String(http.StatusNotFound, notFoundMessage)
	default:
		c.String(http.StatusInternalServerError, "internal server error")
	}
}

// parseID reads the numeric record id from the route. A malformed id is
// treated like a missing record rather than leaking a parser error.
func parseID(c *gin.Context) (uint, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.String(http.StatusNotFound, notFoundMessage)
		return 0, false
	}
	return uint(id), true
}

// backToReferer sends the browser back where it came from, falling back
// to the given path. Used by the email flow, which redirects regardless
// of the send outcome.
func backToReferer(c *gin.Context, fallback string) {
	target := c.Request.Referer()
	if target == "" {
		target = fallback
	}
	c.Redirect(http.StatusFound, target)
}
