package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	uid := uuid.New()
	tok, err := Issue("s3cret", uid, "ADMIN", time.Hour)
	require.NoError(t, err)

	c, err := Parse(tok, "s3cret")
	require.NoError(t, err)
	require.Equal(t, "ADMIN", c.Role)
	got, err := c.UserID()
	require.NoError(t, err)
	require.Equal(t, uid, got)

	c, err = Parse("Bearer "+tok, "s3cret")
	require.NoError(t, err)
	require.Equal(t, uid.String(), c.Subject)
}

func TestParse_Rejects(t *testing.T) {
	uid := uuid.New()

	_, err := Parse("", "s3cret")
	require.Error(t, err)

	tok, err := Issue("s3cret", uid, "USER", time.Hour)
	require.NoError(t, err)
	_, err = Parse(tok, "other")
	require.Error(t, err)

	expired, err := Issue("s3cret", uid, "USER", -time.Minute)
	require.NoError(t, err)
	_, err = Parse(expired, "s3cret")
	require.ErrorIs(t, err, jwt.ErrTokenExpired)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": uid.String()}).SignedString([]byte("s3cret"))
	require.NoError(t, err)
	_, err = Parse(noExp, "s3cret")
	require.Error(t, err)

	badSub, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "42", "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("s3cret"))
	require.NoError(t, err)
	_, err = Parse(badSub, "s3cret")
	require.Error(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": uid.String(), "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = Parse(none, "s3cret")
	require.Error(t, err)
}
