// Package tokenize splits raw text lines into normalized tokens.
package tokenize

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/sugarme/tokenizer/normalizer"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Tokenizer splits text into an ordered sequence of normalized tokens.
type Tokenizer interface {
	Tokenize(text string) []string
}

// stripChars are removed from every token: digits and common punctuation.
var stripChars = regexp.MustCompile(`[\d\.:,"'\(\)\[\]|/?!;]+`)

// Common replaces invalid UTF-8 with spaces, strips accents, lowercases and
// cleans the text with a BERT normalizer, splits it on whitespace and strips
// digits and punctuation from each token. Tokens that end up empty are
// dropped.
type Common struct {
	norm *normalizer.BertNormalizer
}

// NewCommon creates a Common tokenizer.
func NewCommon() *Common {
	// clean text, lowercase, no CJK padding; accents are removed before
	return &Common{norm: normalizer.NewBertNormalizer(true, true, false, false)}
}

// stripAccents decomposes text and drops the combining marks.
func stripAccents(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	return out
}

func (c *Common) normalize(text string) string {
	// the BERT cleaner panics on invalid UTF-8
	text = stripAccents(strings.ToValidUTF8(text, " "))
	n, err := c.norm.Normalize(normalizer.NewNormalizedFrom(text))
	if err != nil {
		return strings.ToLower(text)
	}
	return n.GetNormalized()
}

// Tokenize implements Tokenizer.
func (c *Common) Tokenize(text string) []string {
	fields := strings.Fields(c.normalize(text))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = stripChars.ReplaceAllString(f, "")
		if f == "" {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Whitespace splits on whitespace only. Useful when the input is already
// normalized, and for deterministic tests.
type Whitespace struct{}

// Tokenize implements Tokenizer.
func (Whitespace) Tokenize(text string) []string { return strings.Fields(text) }
