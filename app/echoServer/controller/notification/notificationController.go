package notification

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"libraryrental/app/echoServer/httperr"
	"libraryrental/app/echoServer/jwtx"
	"libraryrental/app/echoServer/validation"
	"libraryrental/model"
	notificationsvc "libraryrental/service/notification"
)

type Controller struct {
	Svc notificationsvc.Inbox
	Log *slog.Logger
}

// GET /v1/notifications?page=&limit=&status=all|unread
func (h *Controller) List(c echo.Context) error {
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	status := c.QueryParam("status")
	if status != "" && status != "all" && status != "unread" {
		return httperr.BadRequest(c, "status must be all or unread")
	}

	p, err := h.Svc.List(c.Request().Context(), uid, page, limit, status == "unread")
	if err != nil {
		return httperr.Respond(c, h.Log, "notification list", err)
	}
	return c.JSON(http.StatusOK, p)
}

// PATCH /v1/notifications/:id/read
func (h *Controller) MarkRead(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.BadRequest(c, "invalid id")
	}
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	n, err := h.Svc.MarkRead(c.Request().Context(), uid, id)
	if err != nil {
		return httperr.Respond(c, h.Log, "notification read", err)
	}
	return c.JSON(http.StatusOK, n)
}

// PATCH /v1/notifications/read-all
func (h *Controller) MarkAllRead(c echo.Context) error {
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	n, err := h.Svc.MarkAllRead(c.Request().Context(), uid)
	if err != nil {
		return httperr.Respond(c, h.Log, "notification read all", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"updated": n})
}

// Create a notification
// @Summary      Send a notification to a reader (admin)
// @Tags         notifications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body  model.CreateNotificationReq  true  "Notification payload"
// @Success      201  {object}  model.Notification
// @Failure      400  {object}  map[string]any
// @Failure      404  {object}  map[string]any "user not found"
// @Router       /v1/notifications [post]
func (h *Controller) Create(c echo.Context) error {
	var req model.CreateNotificationReq
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest(c, "invalid json")
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": validation.Fields(err)})
	}
	n, err := h.Svc.Create(c.Request().Context(), req)
	if err != nil {
		return httperr.Respond(c, h.Log, "notification create", err)
	}
	return c.JSON(http.StatusCreated, n)
}
