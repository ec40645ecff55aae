package user

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"libraryrental/app/echoServer/httperr"
	"libraryrental/app/echoServer/jwtx"
	"libraryrental/app/echoServer/validation"
	"libraryrental/model"
	usersvc "libraryrental/service/user"
)

type Controller struct {
	Svc usersvc.Service
	Log *slog.Logger
}

// Me returns the caller's profile
// @Summary      Current user with rentals
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  model.UserProfile
// @Failure      401  {object}  map[string]any
// @Router       /v1/users/me [get]
func (h *Controller) Me(c echo.Context) error {
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	p, err := h.Svc.Me(c.Request().Context(), uid)
	if err != nil {
		return httperr.Respond(c, h.Log, "user me", err)
	}
	return c.JSON(http.StatusOK, p)
}

// GET /v1/users  (admin)
func (h *Controller) List(c echo.Context) error {
	rows, err := h.Svc.List(c.Request().Context())
	if err != nil {
		return httperr.Respond(c, h.Log, "user list", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// SetStatus bans or reinstates a user
// @Summary      Update user status (admin)
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  string               true  "User ID"
// @Param        payload  body  model.UserStatusReq  true  "ACTIVE or BANNED"
// @Success      200  {object}  model.User
// @Failure      400  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Failure      422  {object}  map[string]any "own status"
// @Router       /v1/users/{id}/status [patch]
func (h *Controller) SetStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.BadRequest(c, "invalid id")
	}
	var req model.UserStatusReq
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest(c, "invalid json")
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": validation.Fields(err)})
	}
	adminID, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	u, err := h.Svc.SetStatus(c.Request().Context(), adminID, id, req.Status)
	if err != nil {
		return httperr.Respond(c, h.Log, "user status", err)
	}
	return c.JSON(http.StatusOK, u)
}
