package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbamaint/hogrisk-backend/internal/apperr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// RespondError maps the error's kind to an HTTP status. Internal errors are
// not echoed to the client.
func RespondError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	msg := "internal error"
	if err != nil && status != http.StatusInternalServerError {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    string(apperr.KindOf(err)),
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
