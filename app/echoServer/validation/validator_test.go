package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"libraryrental/model"
)

func TestValidate_UsesJSONNames(t *testing.T) {
	v := New()

	err := v.Validate(&model.SignupReq{Email: "not-an-email", Password: "123"})
	require.Error(t, err)
	require.Equal(t, map[string]string{"email": "email", "password": "min=6"}, Fields(err))

	require.NoError(t, v.Validate(&model.SignupReq{Email: "a@b.co", Password: "123456"}))
	require.Nil(t, Fields(errors.New("plain")))
}
