package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/EdProwise/beawar-school-sub001/internal/common"
	"github.com/EdProwise/beawar-school-sub001/internal/logging"
)

var (
	errMissingToken = echo.NewHTTPError(http.StatusUnauthorized, "missing or malformed token")
	errBadCreds     = echo.NewHTTPError(http.StatusBadRequest, "Invalid login credentials")
)

// newHTTPErrorHandler renders every error as {"error": message}. Service
// sentinels pick the status; anything unknown is logged and becomes a 500.
func newHTTPErrorHandler(logger logging.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		code, message := classify(err)
		if code == http.StatusInternalServerError {
			logger.Error(c.Request().Context(), "request error", "error", err, "path", c.Path())
		}

		if c.Response().Committed {
			return
		}
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, echo.Map{"error": message})
		}
		if err != nil {
			logger.Error(c.Request().Context(), "failed to write error response", "error", err)
		}
	}
}

func classify(err error) (int, string) {
	var herr *echo.HTTPError
	if errors.As(err, &herr) {
		if inner, ok := herr.Internal.(*echo.HTTPError); ok {
			herr = inner
		}
		return herr.Code, fmt.Sprint(herr.Message)
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fmt.Sprintf("%s failed on %s", strings.ToLower(fe.Field()), fe.Tag()))
		}
		return http.StatusBadRequest, strings.Join(msgs, "; ")
	}

	switch {
	case errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, common.ErrorAlreadyExists):
		return http.StatusConflict, "User already registered"
	case errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized, "token expired"
	case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized, "invalid token"
	}
	return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
}
