package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/futscout/scout-engine/internal/models"
)

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error       string   `json:"error"`
	Message     string   `json:"message,omitempty"`
	Code        int      `json:"code"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// SuccessResponse represents a successful API response
type SuccessResponse struct {
	Data    interface{} `json:"data"`
	Message string      `json:"message,omitempty"`
}

// SendError sends a generic error response
func SendError(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	})
}

// SendInternalError sends a 500 internal server error
func SendInternalError(c *gin.Context, message string) {
	SendError(c, http.StatusInternalServerError, message)
}

// SendBadRequest sends a 400 bad request error
func SendBadRequest(c *gin.Context, message string) {
	SendError(c, http.StatusBadRequest, message)
}

// SendNotFound sends a 404 not found error
func SendNotFound(c *gin.Context, message string) {
	SendError(c, http.StatusNotFound, message)
}

// SendConflict sends a 409 conflict error
func SendConflict(c *gin.Context, message string) {
	SendError(c, http.StatusConflict, message)
}

// SendValidationError sends a 422 validation error
func SendValidationError(c *gin.Context, message string) {
	SendError(c, http.StatusUnprocessableEntity, message)
}

// SendSuccess sends a 200 success response
func SendSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{
		Data: data,
	})
}

// SendSuccessWithMessage sends a 200 success response with message
func SendSuccessWithMessage(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, SuccessResponse{
		Data:    data,
		Message: message,
	})
}

// SendAccepted sends a 202 accepted response for long-running work
func SendAccepted(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusAccepted, SuccessResponse{
		Data:    data,
		Message: message,
	})
}

// SendDomainError maps engine errors onto HTTP status codes: unknown
// players and teams become 404 (with name suggestions when available), an
// unbuilt engine becomes 409 and thin datasets become 422.
func SendDomainError(c *gin.Context, err error) {
	var notFound *models.NotFoundError
	if errors.As(err, &notFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:       http.StatusText(http.StatusNotFound),
			Message:     notFound.Error(),
			Code:        http.StatusNotFound,
			Suggestions: notFound.Suggestions,
		})
		return
	}
	if models.IsInvalidState(err) {
		SendConflict(c, err.Error())
		return
	}
	if models.IsInsufficientData(err) {
		SendValidationError(c, err.Error())
		return
	}
	SendInternalError(c, err.Error())
}
