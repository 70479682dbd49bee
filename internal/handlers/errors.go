package handlers

import (
	"errors"
	"log"
	"net/http"

	"advisory-service/internal/models"
	"advisory-service/internal/utils"
	"advisory-service/internal/viewstate"

	"github.com/gin-gonic/gin"
)

// MapErrorToHTTPStatus returns the error code and HTTP status for a service error.
func MapErrorToHTTPStatus(err error) (string, int) {
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		return "INVALID_INPUT", http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		return "NOT_FOUND", http.StatusNotFound
	case errors.Is(err, viewstate.ErrAlreadySubmitting):
		return "ALREADY_SUBMITTING", http.StatusConflict
	case errors.Is(err, models.ErrCapabilityUnavailable):
		return "CAPABILITY_UNAVAILABLE", http.StatusServiceUnavailable
	default:
		return "INTERNAL_ERROR", http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	errorCode, httpStatus := MapErrorToHTTPStatus(err)
	if httpStatus >= http.StatusInternalServerError {
		log.Printf("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
	}

	var verrs models.ValidationErrors
	if errors.As(err, &verrs) {
		c.JSON(httpStatus, utils.CreateErrorResponseWithDetails(errorCode, err.Error(), verrs))
		return
	}
	message := err.Error()
	if httpStatus == http.StatusInternalServerError {
		message = "internal server error"
	}
	c.JSON(httpStatus, utils.CreateErrorResponse(errorCode, message))
}

func respondBindError(c *gin.Context, err error) {
	log.Printf("invalid request body on %s: %v", c.FullPath(), err)
	c.JSON(http.StatusBadRequest, utils.CreateErrorResponse("INVALID_INPUT", "Invalid request format"))
}
