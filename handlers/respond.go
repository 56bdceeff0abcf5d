package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"polling-backend/errs"
	"polling-backend/logging"

	"github.com/gin-gonic/gin"
)

// Error kinds exposed on the wire, stable for machine checks.
const (
	kindNotFound   = "not_found"
	kindBusiness   = "business_rule"
	kindForbidden  = "forbidden"
	kindValidation = "validation"
	kindInternal   = "internal"
)

// writeError maps a service error onto the HTTP response. Domain errors
// keep their message; anything else is an infrastructure failure and is
// reported without internal detail.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": kindNotFound, "message": err.Error()})
	case errors.Is(err, errs.ErrAuthorization):
		c.JSON(http.StatusForbidden, gin.H{"error": kindForbidden, "message": err.Error()})
	case errors.Is(err, errs.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": kindValidation, "message": err.Error()})
	case errors.Is(err, errs.ErrBusiness):
		c.JSON(http.StatusBadRequest, gin.H{"error": kindBusiness, "message": err.Error()})
	default:
		logging.Logger.WithField("request_id", c.GetString(requestIDKey)).
			WithError(err).Error("internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": kindInternal, "message": "Something went wrong"})
	}
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": kindValidation, "message": message})
}

// idParam parses the :id path parameter.
func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		badRequest(c, "Invalid poll ID format")
		return 0, false
	}
	return uint(id), true
}

// userIDQuery parses the required userId query parameter carrying the
// caller identity.
func userIDQuery(c *gin.Context) (uint, bool) {
	raw := c.Query("userId")
	if raw == "" {
		badRequest(c, "userId query parameter is required")
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		badRequest(c, "Invalid userId format")
		return 0, false
	}
	return uint(id), true
}

// optionalUserIDQuery parses userId when present.
func optionalUserIDQuery(c *gin.Context) (*uint, bool) {
	raw := c.Query("userId")
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		badRequest(c, "Invalid userId format")
		return nil, false
	}
	v := uint(id)
	return &v, true
}
