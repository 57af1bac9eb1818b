package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Respond writes err as a JSON error body. Storage failures are logged with
// their detail and answered with a generic message.
func Respond(c *gin.Context, logger *zap.Logger, err error) {
	var appErr *Error
	if !errors.As(err, &appErr) {
		appErr = Storage("unexpected failure", err)
	}

	status := appErr.HTTPStatus()
	message := appErr.Message
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.String("operation", appErr.Op),
			zap.Error(appErr.Err))
		message = "internal server error"
	case appErr.Op != "":
		logger.Warn("Store rejected request",
			zap.String("path", c.FullPath()),
			zap.String("operation", appErr.Op),
			zap.Error(appErr.Err))
	}

	body := gin.H{"error": message, "kind": appErr.Kind}
	if appErr.Code != "" {
		body["code"] = appErr.Code
	}
	c.AbortWithStatusJSON(status, body)
}

// FromBinding converts a gin binding failure into an invalid_input error.
func FromBinding(err error) *Error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return InvalidInput(CodeMissingRequiredField, strings.Join(FormatValidationErrors(verrs), "; "))
	}
	return InvalidInput("", "malformed request body")
}

// FormatValidationErrors renders validator failures as readable strings.
func FormatValidationErrors(verrs validator.ValidationErrors) []string {
	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg := fmt.Sprintf("field '%s' failed on the '%s' tag", fe.Field(), fe.Tag())
		if fe.Param() != "" {
			msg = fmt.Sprintf("%s (value: %s)", msg, fe.Param())
		}
		messages = append(messages, msg)
	}
	return messages
}
