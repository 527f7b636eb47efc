package tokenize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommon_Tokenize(t *testing.T) {
	tok := NewCommon()

	cases := []struct {
		name string
		in   string
		want []string
	}{
		{"lowercase", "Hello World", []string{"hello", "world"}},
		{"punctuation", "Wait... what?! (really)", []string{"wait", "what", "really"}},
		{"digits dropped", "agent 007 reporting", []string{"agent", "reporting"}},
		{"accents", "Café déjà vu", []string{"cafe", "deja", "vu"}},
		{"tabs and newlines", "one\ttwo\nthree", []string{"one", "two", "three"}},
		{"only punctuation", "?! ... ;", []string{}},
		{"empty", "", []string{}},
		{"invalid utf8", "\xff\xfe bad", []string{"bad"}},
		{"invalid utf8 inside a word", "go\xffod", []string{"go", "od"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tok.Tokenize(tc.in))
		})
	}
}

func TestStripAccents(t *testing.T) {
	assert.Equal(t, "Creme brulee", stripAccents("Crème brûlée"))
	assert.Equal(t, "nino", stripAccents("nin\u0303o"), "combining tilde")
	assert.Equal(t, "plain", stripAccents("plain"))
}

func TestWhitespace_Tokenize(t *testing.T) {
	assert.Equal(t, []string{"A", "b,", "c"}, Whitespace{}.Tokenize("  A b,  c "))
	assert.Empty(t, Whitespace{}.Tokenize("   "))
}
