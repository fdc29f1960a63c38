package trackselection

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeLanguage(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"", ""},
		{"  ", ""},
		{"und", ""},
		{"fr", "fr"},
		{"fra", "fr"},
		{"eng", "en"},
		{"EN", "en"},
		{"en-US", "en-US"},
		{"en-us", "en-US"},
		{"pt-BR", "pt-BR"},
		{"not a language!", "not a language!"},
	}
	for _, c := range cases {
		require.Equal(t, c.want, NormalizeLanguage(c.in), "input %q", c.in)
	}
}
