package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "+22670000000", NormalizePhone("22670000000"))
	assert.Equal(t, "+22670000000", NormalizePhone("+22670000000"))
	assert.Equal(t, "+22670000000", NormalizePhone("  22670000000  "))
	assert.Equal(t, "", NormalizePhone(""))
}

func TestHasEntitlement(t *testing.T) {
	u := &User{VIP: map[string]bool{"isGSMHardware": true, "isGSMSoftware": false}}
	assert.True(t, u.HasEntitlement("isGSMHardware"))
	assert.False(t, u.HasEntitlement("isGSMSoftware"))
	assert.False(t, u.HasEntitlement("isMarketingSocial"))

	var empty User
	assert.False(t, empty.HasEntitlement("isGSMHardware"), "nil map is safe")
}
