package book

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"libraryrental/app/echoServer/httperr"
	"libraryrental/app/echoServer/jwtx"
	"libraryrental/app/echoServer/validation"
	"libraryrental/model"
	booksvc "libraryrental/service/book"
	rentalsvc "libraryrental/service/rental"
)

type Controller struct {
	Svc     booksvc.Service
	Rentals rentalsvc.Service
	Log     *slog.Logger
}

func parseID(c echo.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	return id, err == nil
}

// List visible books
// @Summary      List books
// @Tags         books
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]any
// @Router       /v1/books [get]
func (h *Controller) List(c echo.Context) error {
	rows, err := h.Svc.List(c.Request().Context(), false)
	if err != nil {
		return httperr.Respond(c, h.Log, "book list", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/books/admin
func (h *Controller) AdminList(c echo.Context) error {
	rows, err := h.Svc.List(c.Request().Context(), true)
	if err != nil {
		return httperr.Respond(c, h.Log, "book admin list", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/books/:id
func (h *Controller) Detail(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return httperr.BadRequest(c, "invalid id")
	}
	b, err := h.Svc.Detail(c.Request().Context(), id)
	if err != nil {
		return httperr.Respond(c, h.Log, "book detail", err)
	}
	if b.IsHidden && !jwtx.IsAdmin(c) {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
	}
	return c.JSON(http.StatusOK, b)
}

// GET /v1/books/:id/status
func (h *Controller) Status(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return httperr.BadRequest(c, "invalid id")
	}
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	st, err := h.Rentals.Status(c.Request().Context(), uid, id)
	if err != nil {
		return httperr.Respond(c, h.Log, "book status", err)
	}
	if st.IsHidden && !jwtx.IsAdmin(c) {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
	}
	return c.JSON(http.StatusOK, st)
}

// Create a book
// @Summary      Create book (admin)
// @Tags         books
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body  model.CreateBookReq  true  "Book payload"
// @Success      201  {object}  model.Book
// @Failure      400  {object}  map[string]any
// @Failure      409  {object}  map[string]any "isbn already exists"
// @Failure      422  {object}  map[string]any
// @Router       /v1/books [post]
func (h *Controller) Create(c echo.Context) error {
	var req model.CreateBookReq
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
	b, err := h.Svc.Create(c.Request().Context(), uid, req)
	if err != nil {
		return httperr.Respond(c, h.Log, "book create", err)
	}
	return c.JSON(http.StatusCreated, b)
}

// PATCH /v1/books/:id
func (h *Controller) Edit(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return httperr.BadRequest(c, "invalid id")
	}
	var req model.UpdateBookReq
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
	b, err := h.Svc.Edit(c.Request().Context(), uid, id, req)
	if err != nil {
		return httperr.Respond(c, h.Log, "book edit", err)
	}
	return c.JSON(http.StatusOK, b)
}

// PATCH /v1/books/:id/flags
func (h *Controller) SetFlags(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return httperr.BadRequest(c, "invalid id")
	}
	var req model.BookFlagsReq
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest(c, "invalid json")
	}
	if req.IsHidden == nil && req.LoanEnabled == nil {
		return httperr.BadRequest(c, "is_hidden or loan_enabled is required")
	}
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	b, err := h.Svc.SetFlags(c.Request().Context(), uid, id, req)
	if err != nil {
		return httperr.Respond(c, h.Log, "book flags", err)
	}
	return c.JSON(http.StatusOK, b)
}

// PUT /v1/books/:id/image  (multipart field "image")
func (h *Controller) SetImage(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return httperr.BadRequest(c, "invalid id")
	}
	fh, err := c.FormFile("image")
	if err != nil {
		return httperr.BadRequest(c, "image file is required")
	}
	f, err := fh.Open()
	if err != nil {
		return httperr.BadRequest(c, "cannot read image")
	}
	defer f.Close()

	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	b, err := h.Svc.SetImage(c.Request().Context(), uid, id, booksvc.Image{
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Size:        fh.Size,
		Body:        f,
	})
	if err != nil {
		return httperr.Respond(c, h.Log, "book image", err)
	}
	return c.JSON(http.StatusOK, b)
}

// DELETE /v1/books/:id
func (h *Controller) Remove(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return httperr.BadRequest(c, "invalid id")
	}
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	if err := h.Svc.Remove(c.Request().Context(), uid, id); err != nil {
		return httperr.Respond(c, h.Log, "book remove", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "deleted"})
}
