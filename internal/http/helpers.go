package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/AlexTsikhun/book-management-system/internal/apperrors"
	"github.com/AlexTsikhun/book-management-system/internal/importers"
	"github.com/AlexTsikhun/book-management-system/internal/logging"
)

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`    // machine-readable error code
	Details any    `json:"details,omitempty"` // additional context (validation errors, etc.)
}

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message, Code: "BAD_REQUEST"})
}

// respondInternalError logs the error and sends a 500 Internal Server Error response.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Error().
		Err(err).
		Str("request_id", c.GetString(logging.RequestIDKey)).
		Str("context", context).
		Msg("internal error")
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error", Code: "INTERNAL"})
}

// respondError maps an error from the use cases to a status code by kind.
// Errors of no known kind are logged and reported as 500.
func respondError(c *gin.Context, err error, context string) {
	var (
		validationErr *apperrors.ValidationError
		parseErr      *importers.ParseError
	)
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Code:    "VALIDATION_FAILED",
			Details: validationErr.Fields,
		})
	case errors.As(err, &parseErr):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: parseErr.Error(), Code: "INVALID_FILE"})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "NOT_FOUND"})
	case errors.Is(err, apperrors.ErrConstraintViolation):
		c.JSON(http.StatusConflict, ErrorResponse{Error: conflictMessage(err), Code: "CONFLICT"})
	case errors.Is(err, apperrors.ErrInvalidParameter):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_PARAMETER"})
	default:
		respondInternalError(c, err, context)
	}
}

// conflictMessage keeps store details out of constraint responses.
func conflictMessage(err error) string {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) && appErr.Err == nil {
		return appErr.Error()
	}
	return "constraint violation"
}

// --- Parameter Parsing ---

// parseIDParam extracts and validates an unsigned integer ID from URL parameters.
// Returns the parsed ID or responds with a 400 error and returns 0, false.
func parseIDParam(c *gin.Context, paramName string) (uint, bool) {
	idStr := c.Param(paramName)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		respondBadRequest(c, "invalid "+paramName)
		return 0, false
	}
	return uint(id), true
}

// parseIntQuery reads an optional integer query parameter. A missing value
// yields 0.
func parseIntQuery(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		respondBadRequest(c, "invalid "+name)
		return 0, false
	}
	return n, true
}
