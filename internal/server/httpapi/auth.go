package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/EdProwise/beawar-school-sub001/internal/common"
	"github.com/EdProwise/beawar-school-sub001/internal/server/auth"
)

const userIDKey = "userID"

// authMiddleware requires a valid bearer token and stores its user id in
// the echo context.
func authMiddleware(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(common.AuthorizationHeaderName)
			token, ok := strings.CutPrefix(header, common.BearerPrefix)
			if !ok || token == "" {
				return errMissingToken
			}

			userID, err := auth.GetUserIDFromToken(token, secret)
			if err != nil {
				return err
			}
			c.Set(userIDKey, userID)
			return next(c)
		}
	}
}

func currentUserID(c echo.Context) string {
	id, _ := c.Get(userIDKey).(string)
	return id
}

type credentials struct {
	Email    string         `json:"email" validate:"required,email"`
	Password string         `json:"password" validate:"required,min=6"`
	Data     map[string]any `json:"data"`
}

type authHandler struct {
	users UserService
}

func (h *authHandler) bind(c echo.Context) (*credentials, error) {
	var in credentials
	if err := c.Bind(&in); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&in); err != nil {
		return nil, err
	}
	return &in, nil
}

func (h *authHandler) signIn(c echo.Context) error {
	in, err := h.bind(c)
	if err != nil {
		return err
	}
	res, err := h.users.SignIn(c.Request().Context(), in.Email, in.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			return errBadCreds
		}
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (h *authHandler) signUp(c echo.Context) error {
	in, err := h.bind(c)
	if err != nil {
		return err
	}
	res, err := h.users.SignUp(c.Request().Context(), in.Email, in.Password, in.Data)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (h *authHandler) user(c echo.Context) error {
	u, err := h.users.GetUser(c.Request().Context(), currentUserID(c))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrInvalidToken
		}
		return err
	}
	return c.JSON(http.StatusOK, u)
}
