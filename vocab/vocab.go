// Package vocab provides the word-vector lookup used to filter and vectorize
// token sequences.
//
// A WordVectors table keeps one row per known word in a gonum dense matrix.
// Lookups return copies, so a table can be shared between datasets without
// any locking: nothing mutates it after construction except WithUnknownWord,
// which is meant to be called once before the table is handed out.
package vocab

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrUnknownToken  = errors.New("token is not in the vocabulary")
	ErrEmptyBatch    = errors.New("cannot vectorize an empty token sequence")
	ErrWidthMismatch = errors.New("vector width does not match the vocabulary")
	ErrEmptyTable    = errors.New("vocabulary has no words")
)

// Lookup maps tokens to fixed-width numeric vectors.
type Lookup interface {
	// Width is the length of every vector returned by the lookup.
	Width() int

	// Has reports whether token is a known word.
	Has(token string) bool

	// Vector returns the vector for a single token.
	Vector(token string) ([]float64, error)

	// SupportsOutOfVocabulary reports whether unknown tokens can still be
	// vectorized. When true, callers should not filter tokens with Has.
	SupportsOutOfVocabulary() bool

	// VectorizeBatch returns a [Width, len(tokens)] matrix, one column per token.
	VectorizeBatch(tokens []string) (*mat.Dense, error)
}

// WordVectors is an in-memory word-vector table.
type WordVectors struct {
	words   []string
	index   map[string]int
	vectors *mat.Dense

	// norms caches the L2 norm of each row for cosine similarity.
	norms []float64

	// unknown is the row used for out-of-vocabulary tokens, -1 if unsupported.
	unknown int
}

// New builds a table from parallel word and vector slices. Every vector must
// have the same, non-zero length. Duplicate words keep their first vector.
func New(words []string, vectors [][]float64) (*WordVectors, error) {
	if len(words) != len(vectors) {
		return nil, fmt.Errorf("words and vectors lengths don't match: %d != %d", len(words), len(vectors))
	}
	if len(words) == 0 {
		return nil, ErrEmptyTable
	}
	width := len(vectors[0])
	if width == 0 {
		return nil, fmt.Errorf("%w: vectors have zero width", ErrWidthMismatch)
	}

	w := &WordVectors{
		words:   make([]string, 0, len(words)),
		index:   make(map[string]int, len(words)),
		unknown: -1,
	}
	data := make([]float64, 0, len(words)*width)
	for i, word := range words {
		if len(vectors[i]) != width {
			return nil, fmt.Errorf("%w: word %q has %d values, expected %d",
				ErrWidthMismatch, word, len(vectors[i]), width)
		}
		if _, dup := w.index[word]; dup {
			continue
		}
		w.index[word] = len(w.words)
		w.words = append(w.words, word)
		data = append(data, vectors[i]...)
	}
	w.vectors = mat.NewDense(len(w.words), width, data)

	w.norms = make([]float64, len(w.words))
	for i := range w.words {
		w.norms[i] = floats.Norm(w.vectors.RawRowView(i), 2)
	}
	return w, nil
}

// WithUnknownWord enables out-of-vocabulary support: tokens that are not in
// the table are vectorized with the vector of the given (known) word.
func (w *WordVectors) WithUnknownWord(word string) error {
	idx, ok := w.index[word]
	if !ok {
		return fmt.Errorf("%w: unknown-word replacement %q", ErrUnknownToken, word)
	}
	w.unknown = idx
	return nil
}

// Len returns the number of words in the table.
func (w *WordVectors) Len() int { return len(w.words) }

// Width returns the vector width.
func (w *WordVectors) Width() int {
	_, c := w.vectors.Dims()
	return c
}

// Words returns the words in table order.
func (w *WordVectors) Words() []string {
	out := make([]string, len(w.words))
	copy(out, w.words)
	return out
}

// Has reports whether token is a known word. The unknown-word fallback does
// not make a token known.
func (w *WordVectors) Has(token string) bool {
	_, ok := w.index[token]
	return ok
}

// SupportsOutOfVocabulary is true once WithUnknownWord was called.
func (w *WordVectors) SupportsOutOfVocabulary() bool { return w.unknown >= 0 }

func (w *WordVectors) row(token string) (int, error) {
	if idx, ok := w.index[token]; ok {
		return idx, nil
	}
	if w.unknown >= 0 {
		return w.unknown, nil
	}
	return -1, fmt.Errorf("%w: %q", ErrUnknownToken, token)
}

// Vector returns a copy of the vector for token.
func (w *WordVectors) Vector(token string) ([]float64, error) {
	idx, err := w.row(token)
	if err != nil {
		return nil, err
	}
	return mat.Row(nil, idx, w.vectors), nil
}

// VectorizeBatch returns a [Width, len(tokens)] matrix holding the vector of
// tokens[j] in column j.
func (w *WordVectors) VectorizeBatch(tokens []string) (*mat.Dense, error) {
	if len(tokens) == 0 {
		return nil, ErrEmptyBatch
	}
	out := mat.NewDense(w.Width(), len(tokens), nil)
	for j, tok := range tokens {
		idx, err := w.row(tok)
		if err != nil {
			return nil, err
		}
		out.SetCol(j, w.vectors.RawRowView(idx))
	}
	return out, nil
}

// Nearest returns up to k words whose vectors have the highest cosine
// similarity with vec, most similar first. Ties keep table order.
func (w *WordVectors) Nearest(vec []float64, k int) ([]string, error) {
	if len(vec) != w.Width() {
		return nil, fmt.Errorf("%w: got %d values, expected %d", ErrWidthMismatch, len(vec), w.Width())
	}
	if k <= 0 {
		return nil, nil
	}
	k = min(k, len(w.words))

	norm := floats.Norm(vec, 2)
	type scored struct {
		idx   int
		score float64
	}
	scores := make([]scored, len(w.words))
	for i := range w.words {
		s := 0.0
		if norm > 0 && w.norms[i] > 0 {
			s = floats.Dot(vec, w.vectors.RawRowView(i)) / (norm * w.norms[i])
		}
		scores[i] = scored{idx: i, score: s}
	}
	sort.SliceStable(scores, func(a, b int) bool { return scores[a].score > scores[b].score })

	out := make([]string, k)
	for i := range k {
		out[i] = w.words[scores[i].idx]
	}
	return out, nil
}
