package httperr

import (
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"libraryrental/service/svcerr"
)

func TestStatus(t *testing.T) {
	cases := map[svcerr.ErrCode]int{
		svcerr.NotFound:          http.StatusNotFound,
		svcerr.Conflict:          http.StatusConflict,
		svcerr.ResourceExhausted: http.StatusConflict,
		svcerr.InvalidOperation:  http.StatusUnprocessableEntity,
		svcerr.Forbidden:         http.StatusForbidden,
		svcerr.Unauthorized:      http.StatusUnauthorized,
		"":                       http.StatusInternalServerError,
	}
	for code, want := range cases {
		require.Equal(t, want, Status(code), code)
	}
}

func TestRespond(t *testing.T) {
	e := echo.New()

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	require.NoError(t, Respond(c, slog.Default(), "op", svcerr.NewExhausted("no copies available")))
	require.Equal(t, http.StatusConflict, rec.Code)
	require.JSONEq(t, `{"message":"no copies available","code":"RESOURCE_EXHAUSTED"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	require.NoError(t, Respond(c, slog.Default(), "op", errors.New("pq: connection refused")))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.JSONEq(t, `{"message":"internal error"}`, rec.Body.String())
}
