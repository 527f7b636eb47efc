package datasets

import (
	"errors"
	"fmt"
	"io"

	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/rs/zerolog"
)

// State is the position of a dataset in its epoch.
type State int

const (
	Fresh State = iota
	Active
	Exhausted
)

func (s State) String() string {
	switch s {
	case Fresh:
		return "fresh"
	case Active:
		return "active"
	case Exhausted:
		return "exhausted"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Batch is one packed classification batch.
//
// With the sequence packer the layout is
//
//	Features     [Examples, vectorWidth, PackLength]
//	Labels       [Examples, numClasses, PackLength]
//	FeaturesMask [Examples, PackLength]
//	LabelsMask   [Examples, PackLength]
//
// With the convolutional packer Features is [Examples, 1, PackLength,
// vectorWidth], Labels is [Examples, numClasses] and LabelsMask is nil.
type Batch struct {
	Features     *Dense
	Labels       *Dense
	FeaturesMask *Dense
	LabelsMask   *Dense

	Examples   int
	PackLength int

	// Lengths[row] is the number of valid timesteps of the row.
	Lengths []int
	// Classes[row] is the class index of the row.
	Classes []int
	// Tokens[row] are the filtered tokens before truncation.
	Tokens [][]string
}

// Tensors converts the batch into gomlx inputs (features, features mask)
// and labels (labels, labels mask when present).
func (b *Batch) Tensors() (inputs, labels []*tensors.Tensor, err error) {
	inputs, err = toGomlxTensors(b.Features, b.FeaturesMask)
	if err != nil {
		return nil, nil, err
	}
	if b.LabelsMask == nil {
		labels, err = toGomlxTensors(b.Labels)
	} else {
		labels, err = toGomlxTensors(b.Labels, b.LabelsMask)
	}
	if err != nil {
		return nil, nil, err
	}
	return inputs, labels, nil
}

// ClassifiedTextDataset iterates over balanced batches of labeled text. Each
// class is a line-delimited file; every batch holds the same number of lines
// from each class, interleaved by position.
//
// A dataset is not safe for concurrent use.
type ClassifiedTextDataset struct {
	opts   ClassifiedOptions
	logger zerolog.Logger

	reader *balancedReader
	filter *filterStage

	replacements []int
	summarized   bool
}

// NewClassifiedTextDataset validates opts and counts the lines of every
// class file.
func NewClassifiedTextDataset(opts ClassifiedOptions) (*ClassifiedTextDataset, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	logger := resolveLogger(opts.Logger).With().Str("dataset", opts.Name).Logger()

	reader, err := newBalancedReader(opts.PathsPerClass, opts.Policy, logger)
	if err != nil {
		return nil, err
	}

	d := &ClassifiedTextDataset{
		opts:   opts,
		logger: logger,
		reader: reader,
		filter: &filterStage{
			lookup:      opts.Vocabulary,
			tokenizer:   opts.Tokenizer,
			replacement: opts.EmptyLineReplacement,
			logger:      logger,
		},
		replacements: make([]int, len(opts.PathsPerClass)),
	}
	logger.Info().Strs("labels", opts.Labels).Int("totalExamples", d.TotalExamples()).
		Int("batchSize", opts.BatchSize).Str("policy", string(opts.Policy)).Str("format", opts.Packer.Name()).
		Msg("classified text dataset ready")
	return d, nil
}

// Name implements gomlx's train.Dataset.
func (d *ClassifiedTextDataset) Name() string { return d.opts.Name }

// Labels returns the class labels in class order.
func (d *ClassifiedTextDataset) Labels() []string {
	out := make([]string, len(d.opts.Labels))
	copy(out, d.opts.Labels)
	return out
}

// InputColumns is the vector width of the vocabulary.
func (d *ClassifiedTextDataset) InputColumns() int { return d.opts.Vocabulary.Width() }

// TotalOutcomes is the number of classes.
func (d *ClassifiedTextDataset) TotalOutcomes() int { return len(d.opts.PathsPerClass) }

// BatchSize is the number of examples Next returns.
func (d *ClassifiedTextDataset) BatchSize() int { return d.opts.BatchSize }

// Cursor is the number of examples emitted since the last reset.
func (d *ClassifiedTextDataset) Cursor() int { return d.reader.cursor }

// TotalExamples is the length of the shortest class file times the number
// of classes.
func (d *ClassifiedTextDataset) TotalExamples() int { return d.reader.total() }

// Replacements returns, per class, how many lines were replaced because no
// known word was left after filtering.
func (d *ClassifiedTextDataset) Replacements() []int {
	out := make([]int, len(d.replacements))
	copy(out, d.replacements)
	return out
}

// HasNext reports whether another batch can be requested. In strict mode it
// checks that every class still has lines for a full BatchSize batch, in
// lenient mode it only reports whether a source ran out.
func (d *ClassifiedTextDataset) HasNext() bool {
	var has bool
	if d.opts.Policy == Strict {
		has = d.reader.fullBatchLeft(d.opts.BatchSize)
	} else {
		has = !d.reader.exhausted
	}
	if !has {
		d.summarize()
	}
	return has
}

// State reports where the dataset is in its epoch. A strict dataset is
// exhausted once no full batch is left; Next then fails with an error
// matching both ErrNoMoreData and ErrInsufficientLines.
func (d *ClassifiedTextDataset) State() State {
	switch {
	case d.reader.exhausted:
		return Exhausted
	case d.opts.Policy == Strict && d.reader.cursor > 0 && !d.reader.fullBatchLeft(d.opts.BatchSize):
		return Exhausted
	case d.reader.cursor == 0:
		return Fresh
	}
	return Active
}

// Next returns the next BatchSize examples.
func (d *ClassifiedTextDataset) Next() (*Batch, error) { return d.NextN(d.opts.BatchSize) }

// NextN returns the next n examples, n/TotalOutcomes per class. A failed
// call leaves the dataset unchanged. In strict mode a class running short
// yields an error matching both ErrInsufficientLines and ErrNoMoreData.
func (d *ClassifiedTextDataset) NextN(n int) (*Batch, error) {
	if d.reader.exhausted {
		return nil, fmt.Errorf("%w: reset the dataset to start over", ErrNoMoreData)
	}

	p, err := d.reader.pull(n)
	if err != nil {
		return nil, err
	}
	if p.perClass == 0 {
		d.reader.commit(p)
		d.summarize()
		return nil, fmt.Errorf("%w: no lines left at cursor %d", ErrNoMoreData, d.reader.cursor)
	}

	f := d.filter.classes(p.lines)
	batch, err := packClasses(d.opts.Packer, d.opts.Vocabulary, f, d.opts.TruncateLength)
	if err != nil {
		return nil, err
	}

	d.reader.commit(p)
	for c, r := range f.replaced {
		d.replacements[c] += r
	}
	d.logger.Debug().Int("cursor", d.reader.cursor).Int("examples", batch.Examples).
		Int("packLength", batch.PackLength).Bool("exhausted", d.reader.exhausted).Msg("batch")
	if d.reader.exhausted {
		d.summarize()
	}
	return batch, nil
}

// Reset rewinds to the first line of every class and clears the counters.
func (d *ClassifiedTextDataset) Reset() {
	d.reader.reset()
	for c := range d.replacements {
		d.replacements[c] = 0
	}
	d.summarized = false
}

// summarize logs the replacement counters once per epoch.
func (d *ClassifiedTextDataset) summarize() {
	if d.summarized {
		return
	}
	d.summarized = true

	total := 0
	dict := zerolog.Dict()
	for c, r := range d.replacements {
		total += r
		dict = dict.Int(d.opts.Labels[c], r)
	}
	if total == 0 {
		d.logger.Debug().Int("cursor", d.reader.cursor).Msg("end of data")
		return
	}
	d.logger.Warn().Dict("replacements", dict).Int("total", total).Int("cursor", d.reader.cursor).
		Msg("end of data, some lines had no known words and were replaced")
}

// FeaturesFromText packs a single text the way batches are packed, for
// inference. maxLength caps the sequence; zero or less means no cap.
func (d *ClassifiedTextDataset) FeaturesFromText(text string, maxLength int) (features, mask *Dense, err error) {
	tokens, _ := d.filter.sequence(text)
	packLen := packLength(len(tokens), maxLength)
	return d.opts.Packer.Features(d.opts.Vocabulary, [][]string{tokens}, packLen)
}

// Yield implements gomlx's train.Dataset. It returns io.EOF at the end of
// data.
func (d *ClassifiedTextDataset) Yield() (spec any, inputs []*tensors.Tensor, labels []*tensors.Tensor, err error) {
	if !d.HasNext() {
		return nil, nil, nil, io.EOF
	}
	batch, err := d.Next()
	if errors.Is(err, ErrNoMoreData) {
		return nil, nil, nil, io.EOF
	}
	if err != nil {
		return nil, nil, nil, err
	}
	inputs, labels, err = batch.Tensors()
	if err != nil {
		return nil, nil, nil, err
	}
	return nil, inputs, labels, nil
}
