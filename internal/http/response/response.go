package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/mentalgym-backend/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func envelope(code string, err error) ErrorEnvelope {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return ErrorEnvelope{Error: APIError{Message: msg, Code: code}}
}

func RespondError(c *gin.Context, status int, code string, err error) {
	c.JSON(status, envelope(code, err))
}

func AbortWithError(c *gin.Context, status int, code string, err error) {
	c.AbortWithStatusJSON(status, envelope(code, err))
}

// RespondAPIError maps err through apierr. Internal errors never leak their
// message.
func RespondAPIError(c *gin.Context, err error, fallbackCode string) {
	ae := apierr.From(err, fallbackCode)
	if ae.Status >= http.StatusInternalServerError {
		_ = c.Error(err)
		RespondError(c, ae.Status, ae.Code, errInternal)
		return
	}
	RespondError(c, ae.Status, ae.Code, ae.Err)
}

type internalError struct{}

func (internalError) Error() string { return "internal server error" }

var errInternal error = internalError{}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
