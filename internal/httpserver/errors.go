package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/crud_template/internal/apperror"
	"github.com/Skotchmaster/crud_template/internal/logging"
)

// ErrorHandler writes every error as {"detail": ...}. Errors outside the
// apperror taxonomy become a bare 500.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var (
		status int
		detail any
		ve     validator.ValidationErrors
		he     *echo.HTTPError
	)
	switch {
	case errors.As(err, &ve):
		status, detail = http.StatusBadRequest, fieldErrors(ve)
	case errors.As(err, &he):
		status = he.Code
		if msg, ok := he.Message.(string); ok {
			detail = msg
		} else {
			detail = fmt.Sprint(he.Message)
		}
	default:
		status, detail = apperror.Status(err), apperror.Message(err)
	}

	if status >= http.StatusInternalServerError {
		logging.FromContext(c.Request().Context()).Error("unhandled_error", "status", status, "error", err)
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(status)
	} else {
		werr = c.JSON(status, echo.Map{"detail": detail})
	}
	if werr != nil {
		logging.FromContext(c.Request().Context()).Error("write_error_response_failed", "error", werr)
	}
}
