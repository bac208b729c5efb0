package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"directMail/domain"
	"directMail/pkg/logger"
	jsonres "directMail/pkg/response"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
)

// ErrorHandler renders domain errors with their status and code; anything
// else is a 500 and is reported to Sentry.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var (
		status int
		body   jsonres.ErrorBody
		de     *domain.Error
		he     *echo.HTTPError
	)
	switch {
	case errors.As(err, &de):
		status = de.Status
		body = jsonres.Error(de.Code, de.Message, nil)
	case errors.As(err, &he):
		status = he.Code
		code := strings.ToUpper(strings.ReplaceAll(http.StatusText(he.Code), " ", "_"))
		body = jsonres.Error(code, fmt.Sprint(he.Message), nil)
	default:
		status = http.StatusInternalServerError
		body = jsonres.Error("INTERNAL_ERROR", "internal server error", nil)
	}

	ctx := c.Request().Context()
	if status >= http.StatusInternalServerError {
		logger.WithContext(ctx).WithError(err).WithField("path", c.Path()).Error("request failed")
		sentry.WithScope(func(scope *sentry.Scope) {
			scope.SetTag("request_id", logger.TraceIDFromContext(ctx))
			scope.SetExtra("path", c.Path())
			scope.SetExtra("method", c.Request().Method)
			sentry.CaptureException(err)
		})
	} else {
		logger.WithContext(ctx).WithField("status", status).Debug(err.Error())
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(status)
	} else {
		writeErr = c.JSON(status, body)
	}
	if writeErr != nil {
		logger.Error("failed to write error response", writeErr)
	}
}
