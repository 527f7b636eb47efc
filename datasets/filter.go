package datasets

import (
	"github.com/rs/zerolog"

	"github.com/Noofbiz/textBowl/tokenize"
	"github.com/Noofbiz/textBowl/vocab"
)

// filterStage tokenizes lines and drops the tokens the vocabulary cannot
// vectorize. A line left without tokens is replaced by a fixed sequence.
type filterStage struct {
	lookup      vocab.Lookup
	tokenizer   tokenize.Tokenizer
	replacement []string
	logger      zerolog.Logger
}

// sequence returns the filtered tokens of one line and whether the line
// had to be replaced.
func (f *filterStage) sequence(line string) ([]string, bool) {
	raw := f.tokenizer.Tokenize(line)

	tokens := raw
	if !f.lookup.SupportsOutOfVocabulary() {
		tokens = make([]string, 0, len(raw))
		for _, tok := range raw {
			if f.lookup.Has(tok) {
				tokens = append(tokens, tok)
			}
		}
	}
	if len(tokens) == 0 {
		f.logger.Warn().Str("line", line).Strs("replacement", f.replacement).
			Msg("line has no known words, using replacement")
		out := make([]string, len(f.replacement))
		copy(out, f.replacement)
		return out, true
	}
	return tokens, false
}

// filtered is the output of the filter stage for one balanced pull.
type filtered struct {
	// tokens[c][i] is the sequence of example i of class c.
	tokens [][][]string
	// maxLength is the longest sequence over all classes.
	maxLength int
	// replaced[c] counts the lines of class c that were replaced.
	replaced []int
}

func (f *filterStage) classes(lines [][]string) *filtered {
	out := &filtered{
		tokens:   make([][][]string, len(lines)),
		replaced: make([]int, len(lines)),
	}
	for c, classLines := range lines {
		out.tokens[c] = make([][]string, len(classLines))
		for i, line := range classLines {
			tokens, replaced := f.sequence(line)
			if replaced {
				out.replaced[c]++
			}
			out.tokens[c][i] = tokens
			out.maxLength = max(out.maxLength, len(tokens))
		}
	}
	return out
}
