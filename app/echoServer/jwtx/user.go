package jwtx

import (
	"errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"libraryrental/model"
	jwtutil "libraryrental/util/jwt"
)

// ContextKey is where the JWT middleware stores the parsed claims.
const ContextKey = "user"

func ClaimsFromContext(c echo.Context) (*jwtutil.Claims, error) {
	claims, ok := c.Get(ContextKey).(*jwtutil.Claims)
	if !ok || claims == nil {
		return nil, errors.New("no jwt claims in context")
	}
	return claims, nil
}

func UserIDFromContext(c echo.Context) (uuid.UUID, error) {
	claims, err := ClaimsFromContext(c)
	if err != nil {
		return uuid.Nil, err
	}
	return claims.UserID()
}

func RoleFromContext(c echo.Context) model.Role {
	claims, err := ClaimsFromContext(c)
	if err != nil {
		return ""
	}
	return model.Role(claims.Role)
}

func IsAdmin(c echo.Context) bool { return RoleFromContext(c) == model.RoleAdmin }
