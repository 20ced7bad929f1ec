package entitlement

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlagName(t *testing.T) {
	flag, err := FlagName("Informatique", "Hardware")
	require.NoError(t, err)
	assert.Equal(t, "isInformatiqueHardware", flag)

	flag, err = FlagName("Bureautique", "Content")
	require.NoError(t, err)
	assert.Equal(t, "isBureautiqueContent", flag)
}

func TestFlagName_invalidCombinations(t *testing.T) {
	cases := [][2]string{
		{"Informatique", "Social"}, // valid domain, wrong part
		{"Bureautique", "Hardware"},
		{"Cuisine", "Hardware"}, // unknown domain
		{"", ""},
		{"informatique", "hardware"}, // case matters
	}

	for _, c := range cases {
		_, err := FlagName(c[0], c[1])
		assert.ErrorIs(t, err, ErrInvalidKey, "%s/%s", c[0], c[1])
	}
}

func TestCatalog_flagsAreUniqueAndNamed(t *testing.T) {
	seen := map[string]bool{}
	for _, key := range Catalog {
		assert.True(t, strings.HasPrefix(key.Flag, "is"), "flag %q", key.Flag)
		assert.Contains(t, key.Flag, key.Domain)
		assert.Contains(t, key.Flag, key.Part)
		assert.False(t, seen[key.Flag], "duplicate flag %q", key.Flag)
		seen[key.Flag] = true
	}
}
