package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginRules(t *testing.T) {
	require.Empty(t, Login("user@example.com", "Sup3rSecret!"))

	errs := Login("not-an-email", "Sup3rSecret!")
	require.Len(t, errs, 1)
	assert.Equal(t, "email", errs[0].Field)

	require.NotEmpty(t, Login("user@example.com", "short"))
}

func TestPasswordComposition(t *testing.T) {
	cases := []struct {
		password string
		ok       bool
	}{
		{"Sup3rSecret!", true},
		{"Passw0rd&", true},
		{"alllowercase1!", false},
		{"ALLUPPERCASE1!", false},
		{"NoDigitsHere!", false},
		{"NoSpecials123", false},
		{"Sh0rt!", false},
	}
	for _, tc := range cases {
		errs := Password(tc.password)
		if tc.ok {
			assert.Empty(t, errs, "password %q should be accepted", tc.password)
		} else {
			assert.NotEmpty(t, errs, "password %q should be rejected", tc.password)
		}
	}
}

func TestRegisterRules(t *testing.T) {
	valid := Registration{
		Email:           "user@example.com",
		Password:        "Sup3rSecret!",
		ConfirmPassword: "Sup3rSecret!",
		FullName:        "Ada Lovelace",
		Role:            "editor",
	}
	require.Empty(t, Register(valid))

	mismatch := valid
	mismatch.ConfirmPassword = "Sup3rSecret?"
	errs := Register(mismatch)
	require.Len(t, errs, 1)
	assert.Equal(t, "confirmPassword", errs[0].Field)

	shortName := valid
	shortName.FullName = "A"
	require.NotEmpty(t, Register(shortName))

	badRole := valid
	badRole.Role = "superuser"
	require.NotEmpty(t, Register(badRole))

	// Role is optional on registration; the backend defaults it.
	noRole := valid
	noRole.Role = ""
	require.Empty(t, Register(noRole))
}
