package echoapi

import (
	"context"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/boopathidas/upskillglobal/core"
	"github.com/boopathidas/upskillglobal/core/student"
)

const validationErrorMsg = "Validation Error"

var (
	errUnauthorized   = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errRequestTimeout = echo.NewHTTPError(http.StatusServiceUnavailable, "request timed out")
)

type (
	validationErrorBody struct {
		Message string            `json:"message"`
		Errors  []core.FieldError `json:"errors"`
	}

	conflictErrorBody struct {
		Message string `json:"message"`
		Field   string `json:"field"`
	}
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		if ctx.Response().Committed {
			return
		}

		var code int
		var message interface{}

		if errors.Is(err, context.DeadlineExceeded) {
			err = errRequestTimeout
		}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			code = http.StatusBadRequest
			message = validationErrorBody{Message: validationErrorMsg, Errors: core.FieldErrors(origErr, translator)}
		case *core.ValidationError:
			code = http.StatusBadRequest
			if len(origErr.Fields) > 0 {
				message = validationErrorBody{Message: validationErrorMsg, Errors: origErr.Fields}
			} else {
				message = origErr.Error()
			}
		case *core.ConflictError:
			code = http.StatusConflict
			message = conflictErrorBody{Message: "Duplicate Entry", Field: origErr.Field}
		case *core.AuthenticationError:
			code = http.StatusBadRequest
			message = origErr.Error()
		default: // any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg

			args := []interface{}{errors.Wrap(err, msg), map[string]interface{}{
				"request_id": ctx.Response().Header().Get(echo.HeaderXRequestID),
				"path":       ctx.Path(),
			}}
			if claims, cErr := getContextClaims(ctx); cErr == nil {
				args = append(args, student.Student{ID: claims.Subject, Username: claims.Username})
			}
			logger.Error(msg, args...)

			if ctx.Echo().Debug {
				message = err.Error()
			}

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if ctx.Request().Method == http.MethodHead { // Issue #608
			err = ctx.NoContent(code)
		} else {
			err = ctx.JSON(code, message)
		}
		if err != nil {
			ctx.Echo().Logger.Error(err)
		}
	}
}
