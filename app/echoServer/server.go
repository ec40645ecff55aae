package echoServer

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"libraryrental/app/echoServer/validation"
)

// New builds the HTTP server with middleware, codecs and every route.
func New(log *slog.Logger, c C) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.JSONSerializer = JSONSerializer{}
	e.Validator = validation.New()
	RegisterMiddlewares(e, log)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"status":  "ok",
			"message": "Service is healthy",
		})
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	Register(e, c)
	return e
}
