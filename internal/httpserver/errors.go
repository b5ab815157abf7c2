package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/apperr"
	"github.com/Skotchmaster/storefront/internal/logging"
)

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// ErrorHandler renders every handler error as {message, error}.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var (
		status  int
		message string
	)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		message = fmt.Sprint(he.Message)
		if m, ok := he.Message.(string); ok {
			message = m
		}
	} else {
		status = apperr.Status(err)
		message = apperr.Detail(err)
	}

	if status >= http.StatusInternalServerError {
		logging.FromContext(c.Request().Context()).Error("request_failed", "status", status, "error", err)
	}

	body := errorBody{Message: message, Error: apperr.Title(status)}
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		c.Logger().Error(err)
	}
}

func invalidBody(err error) error {
	return apperr.Wrap(apperr.ErrValidation, "invalid body", err)
}
