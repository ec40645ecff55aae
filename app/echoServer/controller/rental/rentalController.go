package rental

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"libraryrental/app/echoServer/httperr"
	"libraryrental/app/echoServer/jwtx"
	"libraryrental/app/echoServer/validation"
	"libraryrental/model"
	rs "libraryrental/service/rental"
)

type Controller struct {
	Svc rs.Service
	Log *slog.Logger
}

func parseID(c echo.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	return id, err == nil
}

// Rent a book
// @Summary      Rent a book
// @Description  Takes one copy for the caller. due_date defaults to seven days from now.
// @Tags         rentals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  string        true   "Book ID"
// @Param        payload  body  model.RentReq false  "Optional due date"
// @Success      201  {object}  model.Rental
// @Failure      404  {object}  map[string]any "book not found"
// @Failure      409  {object}  map[string]any "no copies available / already rented"
// @Failure      422  {object}  map[string]any "book not available for loan"
// @Router       /v1/books/{id}/rent [post]
func (h *Controller) Rent(c echo.Context) error {
	bookID, ok := parseID(c, "id")
	if !ok {
		return httperr.BadRequest(c, "invalid id")
	}
	var req model.RentReq
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest(c, "invalid json")
	}
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	r, err := h.Svc.Rent(c.Request().Context(), uid, bookID, req.DueDate)
	if err != nil {
		return httperr.Respond(c, h.Log, "rental create", err)
	}
	return c.JSON(http.StatusCreated, r)
}

// POST /v1/books/:id/return
func (h *Controller) Return(c echo.Context) error {
	bookID, ok := parseID(c, "id")
	if !ok {
		return httperr.BadRequest(c, "invalid id")
	}
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	r, err := h.Svc.Return(c.Request().Context(), uid, bookID)
	if err != nil {
		return httperr.Respond(c, h.Log, "rental return", err)
	}
	return c.JSON(http.StatusOK, r)
}

// GET /v1/books/my-rentals
func (h *Controller) MyRentals(c echo.Context) error {
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	rows, err := h.Svc.MyRentals(c.Request().Context(), uid)
	if err != nil {
		return httperr.Respond(c, h.Log, "my rentals", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// PATCH /v1/rentals/:id/renew
// Readers may renew their own rentals; admins any.
func (h *Controller) Renew(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return httperr.BadRequest(c, "invalid id")
	}
	var req model.RenewReq
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest(c, "invalid json")
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": validation.Fields(err)})
	}
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	ctx := c.Request().Context()
	if !jwtx.IsAdmin(c) {
		v, err := h.Svc.Get(ctx, id)
		if err != nil {
			return httperr.Respond(c, h.Log, "rental renew", err)
		}
		if v.UserID != uid {
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		}
	}

	r, err := h.Svc.Renew(ctx, id, req.AdditionalDays)
	if err != nil {
		return httperr.Respond(c, h.Log, "rental renew", err)
	}
	return c.JSON(http.StatusOK, r)
}

// POST /v1/rentals  (admin, on behalf of a reader)
func (h *Controller) Create(c echo.Context) error {
	var req model.AdminRentReq
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest(c, "invalid json")
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": validation.Fields(err)})
	}
	r, err := h.Svc.Rent(c.Request().Context(), req.UserID, req.BookID, req.DueDate)
	if err != nil {
		return httperr.Respond(c, h.Log, "admin rental create", err)
	}
	return c.JSON(http.StatusCreated, r)
}

// PATCH /v1/rentals/:id/return  (admin)
func (h *Controller) ReturnByID(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return httperr.BadRequest(c, "invalid id")
	}
	r, err := h.Svc.ReturnRental(c.Request().Context(), id)
	if err != nil {
		return httperr.Respond(c, h.Log, "admin rental return", err)
	}
	return c.JSON(http.StatusOK, r)
}

// GET /v1/rentals/:id  (admin)
func (h *Controller) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return httperr.BadRequest(c, "invalid id")
	}
	v, err := h.Svc.Get(c.Request().Context(), id)
	if err != nil {
		return httperr.Respond(c, h.Log, "rental get", err)
	}
	return c.JSON(http.StatusOK, v)
}

// GET /v1/rentals  (admin)
func (h *Controller) All(c echo.Context) error {
	rows, err := h.Svc.All(c.Request().Context())
	if err != nil {
		return httperr.Respond(c, h.Log, "rental list", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/rentals/overdue  (admin)
func (h *Controller) Overdue(c echo.Context) error {
	rows, err := h.Svc.Overdue(c.Request().Context())
	if err != nil {
		return httperr.Respond(c, h.Log, "rental overdue", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/rentals/book/:bookId  (admin)
func (h *Controller) ByBook(c echo.Context) error {
	id, ok := parseID(c, "bookId")
	if !ok {
		return httperr.BadRequest(c, "invalid book id")
	}
	rows, err := h.Svc.ByBook(c.Request().Context(), id)
	if err != nil {
		return httperr.Respond(c, h.Log, "rentals by book", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/rentals/user/:userId  (admin)
func (h *Controller) ByUser(c echo.Context) error {
	id, ok := parseID(c, "userId")
	if !ok {
		return httperr.BadRequest(c, "invalid user id")
	}
	rows, err := h.Svc.ByUser(c.Request().Context(), id)
	if err != nil {
		return httperr.Respond(c, h.Log, "rentals by user", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}
