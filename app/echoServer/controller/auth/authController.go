package auth

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"libraryrental/app/echoServer/httperr"
	"libraryrental/app/echoServer/validation"
	"libraryrental/model"
	authsvc "libraryrental/service/auth"
)

type Controller struct {
	Svc authsvc.Service
	Log *slog.Logger
}

// Signup a new reader
// @Summary      Sign up
// @Description  Register a reader account and return a JWT
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body  model.SignupReq  true  "Signup payload"
// @Success      201  {object}  map[string]any
// @Failure      400  {object}  map[string]any
// @Failure      409  {object}  map[string]any "email/matricula already registered"
// @Failure      500  {object}  map[string]any "internal server error"
// @Router       /v1/auth/signup [post]
func (ct *Controller) Signup(c echo.Context) error {
	var req model.SignupReq
	if err := c.Bind(&req); err != nil {
		ct.Log.Warn("bind failed", "path", c.Path(), "err", err)
		return httperr.BadRequest(c, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		ct.Log.Warn("validation failed", "path", c.Path(), "err", err)
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": validation.Fields(err)})
	}

	u, tok, err := ct.Svc.Signup(c.Request().Context(), req)
	if err != nil {
		return httperr.Respond(c, ct.Log, "signup failed", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message":      "registered",
		"user":         u,
		"access_token": tok,
	})
}

// Signin
// @Summary      Sign in
// @Description  Login with email + password, returns JWT
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body  model.SigninReq  true  "Signin payload"
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  map[string]any
// @Failure      401  {object}  map[string]any
// @Failure      500  {object}  map[string]any
// @Router       /v1/auth/signin [post]
func (ct *Controller) Signin(c echo.Context) error {
	var req model.SigninReq
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest(c, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": validation.Fields(err)})
	}

	u, tok, err := ct.Svc.Signin(c.Request().Context(), req)
	if err != nil {
		return httperr.Respond(c, ct.Log, "signin failed", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"access_token": tok,
		"role":         u.Role,
		"user":         u,
	})
}
