package datasets

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/Noofbiz/textBowl/vocab"
)

// Packer lays token sequences out as dense tensors. The sequence packer
// produces the recurrent layout, the convolutional packer the image-like one.
type Packer interface {
	// Name identifies the layout in configuration ("rnn", "cnn2d").
	Name() string

	// Features vectorizes the first min(len(row), packLen) tokens of every
	// row and returns the features with their validity mask [rows, packLen].
	Features(lookup vocab.Lookup, rows [][]string, packLen int) (features, mask *Dense, err error)

	// Labels returns one-hot labels for rows of the given classes and
	// packed lengths. mask is nil when the layout has no labels mask.
	Labels(classes, lengths []int, numClasses, packLen int) (labels, mask *Dense)
}

// PackerByName returns the packer for a configured format. An empty name
// selects the sequence packer.
func PackerByName(name string) (Packer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "rnn", "sequence":
		return SequencePacker{}, nil
	case "cnn2d", "cnn", "conv":
		return ConvPacker{}, nil
	}
	return nil, fmt.Errorf("%w: unknown format %q", ErrInvalidConfig, name)
}

// packLength caps the longest sequence by truncate. A truncate of zero or
// less means no cap.
func packLength(maxLength, truncate int) int {
	if truncate > 0 && truncate < maxLength {
		return truncate
	}
	return maxLength
}

// vectorize turns the first n tokens into a [width, n] matrix.
func vectorize(lookup vocab.Lookup, tokens []string, n int) (*mat.Dense, error) {
	m, err := lookup.VectorizeBatch(tokens[:n])
	if err != nil {
		return nil, fmt.Errorf("%w: %v: %w", ErrVectorization, tokens[:n], err)
	}
	r, c := m.Dims()
	if r != lookup.Width() || c != n {
		return nil, fmt.Errorf("%w: %w: got [%d, %d], expected [%d, %d]",
			ErrVectorization, vocab.ErrWidthMismatch, r, c, lookup.Width(), n)
	}
	return m, nil
}

// SequencePacker produces features [examples, vectorWidth, packLen] and
// labels [examples, numClasses, packLen] set at the last valid timestep.
type SequencePacker struct{}

func (SequencePacker) Name() string { return "rnn" }

func (SequencePacker) Features(lookup vocab.Lookup, rows [][]string, packLen int) (*Dense, *Dense, error) {
	width := lookup.Width()
	features := NewDense(len(rows), width, packLen)
	mask := NewDense(len(rows), packLen)
	for row, tokens := range rows {
		n := min(len(tokens), packLen)
		if err := writeTimeMajor(lookup, features, mask, row, tokens, n); err != nil {
			return nil, nil, err
		}
	}
	return features, mask, nil
}

// writeTimeMajor writes the vectors of tokens[:n] into features[row, :, 0:n].
func writeTimeMajor(lookup vocab.Lookup, features, mask *Dense, row int, tokens []string, n int) error {
	m, err := vectorize(lookup, tokens, n)
	if err != nil {
		return err
	}
	for k := range lookup.Width() {
		dst := features.Row(row, k)
		for t := range n {
			dst[t] = float32(m.At(k, t))
		}
	}
	fm := mask.Row(row)
	for t := range n {
		fm[t] = 1
	}
	return nil
}

func (SequencePacker) Labels(classes, lengths []int, numClasses, packLen int) (*Dense, *Dense) {
	labels := NewDense(len(classes), numClasses, packLen)
	mask := NewDense(len(classes), packLen)
	for row, c := range classes {
		last := lengths[row] - 1
		labels.Set(1, row, c, last)
		mask.Set(1, row, last)
	}
	return labels, mask
}

// ConvPacker produces features [examples, 1, packLen, vectorWidth], one
// sentence per single-channel image, and labels [examples, numClasses].
type ConvPacker struct{}

func (ConvPacker) Name() string { return "cnn2d" }

func (ConvPacker) Features(lookup vocab.Lookup, rows [][]string, packLen int) (*Dense, *Dense, error) {
	width := lookup.Width()
	features := NewDense(len(rows), 1, packLen, width)
	mask := NewDense(len(rows), packLen)
	for row, tokens := range rows {
		n := min(len(tokens), packLen)
		m, err := vectorize(lookup, tokens, n)
		if err != nil {
			return nil, nil, err
		}
		for t := range n {
			dst := features.Row(row, 0, t)
			for k := range width {
				dst[k] = float32(m.At(k, t))
			}
			mask.Set(1, row, t)
		}
	}
	return features, mask, nil
}

func (ConvPacker) Labels(classes, _ []int, numClasses, _ int) (*Dense, *Dense) {
	labels := NewDense(len(classes), numClasses)
	for row, c := range classes {
		labels.Set(1, row, c)
	}
	return labels, nil
}

// packClasses interleaves the filtered classes into one batch. Example i of
// class c lands on row i*numClasses+c.
func packClasses(p Packer, lookup vocab.Lookup, f *filtered, truncate int) (*Batch, error) {
	numClasses := len(f.tokens)
	perClass := 0
	if numClasses > 0 {
		perClass = len(f.tokens[0])
	}
	examples := perClass * numClasses
	packLen := packLength(f.maxLength, truncate)

	rows := make([][]string, examples)
	classes := make([]int, examples)
	lengths := make([]int, examples)
	for i := range perClass {
		for c := range numClasses {
			point := i*numClasses + c
			rows[point] = f.tokens[c][i]
			classes[point] = c
			lengths[point] = min(len(f.tokens[c][i]), packLen)
		}
	}

	features, featuresMask, err := p.Features(lookup, rows, packLen)
	if err != nil {
		return nil, err
	}
	labels, labelsMask := p.Labels(classes, lengths, numClasses, packLen)

	return &Batch{
		Features:     features,
		Labels:       labels,
		FeaturesMask: featuresMask,
		LabelsMask:   labelsMask,
		Examples:     examples,
		PackLength:   packLen,
		Lengths:      lengths,
		Classes:      classes,
		Tokens:       rows,
	}, nil
}
