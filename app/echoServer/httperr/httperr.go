// Package httperr turns service errors into the JSON error envelope.
package httperr

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"libraryrental/service/svcerr"
)

func Status(code svcerr.ErrCode) int {
	switch code {
	case svcerr.NotFound:
		return http.StatusNotFound
	case svcerr.Conflict, svcerr.ResourceExhausted:
		return http.StatusConflict
	case svcerr.InvalidOperation:
		return http.StatusUnprocessableEntity
	case svcerr.Forbidden:
		return http.StatusForbidden
	case svcerr.Unauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Respond writes err. Coded errors carry their own message; anything else is
// logged and hidden behind "internal error".
func Respond(c echo.Context, log *slog.Logger, op string, err error) error {
	code := svcerr.Code(err)
	if code == "" {
		log.Error(op,
			"err", err,
			"req_id", c.Response().Header().Get(echo.HeaderXRequestID),
			"path", c.Path(),
			"method", c.Request().Method,
		)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(Status(code), echo.Map{"message": err.Error(), "code": code})
}

func BadRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"message": msg})
}
