package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/raohuzaifa081-blip/webotixscrm/internal/platform/apierr"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/platform/ctxutil"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/platform/logger"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// AbortError writes the envelope and stops the handler chain.
func AbortError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Error: APIError{Message: message, Code: code},
	})
}

// RespondAPIError maps a service error to its status and public message.
// Internal failures are logged with their cause.
func RespondAPIError(c *gin.Context, log *logger.Logger, err error) {
	ae := apierr.FromError(err)
	if ae == nil {
		ae = apierr.New(http.StatusInternalServerError, "internal", nil)
	}
	if ae.Status >= http.StatusInternalServerError && log != nil {
		fields := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", ae.Status,
			"error", err,
		}
		log.Error("request failed", append(fields, ctxutil.TraceFields(c.Request.Context())...)...)
	}
	c.JSON(ae.Status, ErrorEnvelope{
		Error: APIError{
			Message: ae.PublicMessage(),
			Code:    ae.Code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
