// Package response renders the API's wire envelope. Every endpoint
// replies with one of two shapes:
//
//	{"success": true,  "data": {...}}
//	{"success": false, "error": {"code": "...", "message": "...", "details": {...}}}
//
// Codes are stable machine-readable identifiers (VALIDATION, NOT_FOUND,
// INSUFFICIENT_FUNDS); messages are for humans and may change freely.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"handyghana/internal/pkg/validator"
)

type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *errorBody  `json:"error,omitempty"`
}

type errorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, envelope{Success: true, Data: data})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, envelope{
		Success: false,
		Error:   &errorBody{Code: code, Message: message},
	})
}

// BindError reports a request body that failed binding. Field level
// failures from binding tags surface under error.details so clients
// can annotate their forms.
func BindError(c *gin.Context, err error) {
	body := &errorBody{Code: "VALIDATION", Message: "Invalid request body"}
	if details := validator.Messages(err); len(details) > 0 {
		body.Details = details
	}
	c.JSON(http.StatusBadRequest, envelope{Success: false, Error: body})
}
