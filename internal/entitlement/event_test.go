package entitlement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCallback_valid(t *testing.T) {
	ev, err := ParseCallback("validate_Informatique_Hardware_507f1f77bcf86cd799439011")
	require.NoError(t, err)
	assert.Equal(t, ActionValidate, ev.Action)
	assert.Equal(t, "Informatique", ev.Key.Domain)
	assert.Equal(t, "Hardware", ev.Key.Part)
	assert.Equal(t, "isInformatiqueHardware", ev.Key.Flag)
	assert.Equal(t, "507f1f77bcf86cd799439011", ev.UserID)

	ev, err = ParseCallback("cancel_Marketing_Social_507f1f77bcf86cd799439011")
	require.NoError(t, err)
	assert.Equal(t, ActionCancel, ev.Action)
}

func TestParseCallback_malformed(t *testing.T) {
	cases := []string{
		"",
		"approve_Informatique_Hardware_507f1f77bcf86cd799439011", // unknown action
		"validate_Informatique_Hardware_xyz",                     // bad user id
		"validate_Informatique_Hardware_507f1f77bcf86cd7994390",  // id too short
		"validate_Informatique_507f1f77bcf86cd799439011",         // missing part
		"validate_Informatique_Hardware_507f1f77bcf86cd799439011_extra",
		"create_ticket",
	}

	for _, data := range cases {
		_, err := ParseCallback(data)
		assert.ErrorIs(t, err, ErrBadCallback, "input %q", data)
	}
}

func TestParseCallback_unknownCombination(t *testing.T) {
	// well-formed but outside the catalog
	_, err := ParseCallback("validate_Cuisine_Hardware_507f1f77bcf86cd799439011")
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = ParseCallback("validate_Informatique_Social_507f1f77bcf86cd799439011")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestCallbackData_roundTrip(t *testing.T) {
	key, err := Lookup("GSM", "Software")
	require.NoError(t, err)

	data := CallbackData(ActionCancel, key, "507f1f77bcf86cd799439011")
	assert.Equal(t, "cancel_GSM_Software_507f1f77bcf86cd799439011", data)

	ev, err := ParseCallback(data)
	require.NoError(t, err)
	assert.Equal(t, ActionCancel, ev.Action)
	assert.Equal(t, key, ev.Key)
}
