package whatsapp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDigitsOnly(t *testing.T) {
	cases := map[string]string{
		"+22670000000":     "22670000000",
		"226 70 00 00 00":  "22670000000",
		"(+226) 70-00-11":  "226700011",
		"":                 "",
		"no digits at all": "",
	}

	for in, want := range cases {
		assert.Equal(t, want, digitsOnly(in), "input %q", in)
	}
}
