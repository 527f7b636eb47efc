package datasets

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/rs/zerolog"
)

// DialogueBatch is one packed question/answer batch for an encoder-decoder.
//
//	Input          [Examples, vectorWidth, InputLength]   question tokens
//	InputMask      [Examples, InputLength]
//	DecoderInput   [Examples, vectorWidth, OutputLength]  start token + answer
//	Target         [Examples, vectorWidth, OutputLength]  answer + end token
//	PredictionMask [Examples, OutputLength]
//	DecoderMask    same buffer as PredictionMask
//
// Target holds word vectors; decoders map predictions back to words with
// the vocabulary's nearest neighbours.
type DialogueBatch struct {
	Input          *Dense
	DecoderInput   *Dense
	Target         *Dense
	InputMask      *Dense
	PredictionMask *Dense
	DecoderMask    *Dense

	Examples     int
	InputLength  int
	OutputLength int

	// Questions are the encoder tokens, reversed when configured.
	Questions [][]string
	// DecoderInputs and Targets are the answer tokens with the start and
	// end markers.
	DecoderInputs [][]string
	Targets       [][]string
}

// Tensors converts the batch into gomlx inputs (input, decoder input, input
// mask, decoder mask) and labels (target, prediction mask).
func (b *DialogueBatch) Tensors() (inputs, labels []*tensors.Tensor, err error) {
	inputs, err = toGomlxTensors(b.Input, b.DecoderInput, b.InputMask, b.DecoderMask)
	if err != nil {
		return nil, nil, err
	}
	labels, err = toGomlxTensors(b.Target, b.PredictionMask)
	if err != nil {
		return nil, nil, err
	}
	return inputs, labels, nil
}

// Replacement counters of a dialogue dataset.
const (
	QuestionColumn = iota
	AnswerColumn
)

// DialogueDataset iterates over consecutive rows of a question/answer CSV
// file. It is not safe for concurrent use.
type DialogueDataset struct {
	opts   DialogueOptions
	logger zerolog.Logger

	reader *pairedReader
	filter *filterStage
	packer SequencePacker

	replacements [2]int
	summarized   bool
}

// NewDialogueDataset validates opts and counts the rows of the source.
func NewDialogueDataset(opts DialogueOptions) (*DialogueDataset, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	logger := resolveLogger(opts.Logger).With().Str("dataset", opts.Name).Logger()

	reader, err := newPairedReader(opts.Path, opts.Policy, logger)
	if err != nil {
		return nil, err
	}
	d := &DialogueDataset{
		opts:   opts,
		logger: logger,
		reader: reader,
		filter: &filterStage{
			lookup:      opts.Vocabulary,
			tokenizer:   opts.Tokenizer,
			replacement: opts.EmptyLineReplacement,
			logger:      logger,
		},
	}
	logger.Info().Str("path", opts.Path).Int("totalExamples", d.TotalExamples()).
		Int("batchSize", opts.BatchSize).Str("policy", string(opts.Policy)).Bool("reverseQuestion", opts.ReverseQuestion).
		Msg("dialogue dataset ready")
	return d, nil
}

func (d *DialogueDataset) Name() string { return d.opts.Name }

// InputColumns is the vector width of the vocabulary.
func (d *DialogueDataset) InputColumns() int { return d.opts.Vocabulary.Width() }

func (d *DialogueDataset) BatchSize() int { return d.opts.BatchSize }

// Cursor is the number of rows emitted since the last reset.
func (d *DialogueDataset) Cursor() int { return d.reader.cursor }

// TotalExamples is the number of rows of the source.
func (d *DialogueDataset) TotalExamples() int { return d.reader.rows }

// Replacements returns the replaced questions and answers, indexed by
// QuestionColumn and AnswerColumn.
func (d *DialogueDataset) Replacements() []int {
	out := d.replacements
	return out[:]
}

// HasNext reports whether another batch can be requested. In strict mode a
// full BatchSize batch must be left.
func (d *DialogueDataset) HasNext() bool {
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

func (d *DialogueDataset) State() State {
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

func (d *DialogueDataset) Next() (*DialogueBatch, error) { return d.NextN(d.opts.BatchSize) }

// NextN returns the next n rows. In lenient mode the last batch may be
// shorter. A failed call leaves the dataset unchanged.
func (d *DialogueDataset) NextN(n int) (*DialogueBatch, error) {
	if d.reader.exhausted {
		return nil, fmt.Errorf("%w: reset the dataset to start over", ErrNoMoreData)
	}

	p, err := d.reader.pull(n)
	if err != nil {
		return nil, err
	}
	if len(p.pairs) == 0 {
		d.reader.commit(p)
		d.summarize()
		return nil, fmt.Errorf("%w: no rows left at cursor %d", ErrNoMoreData, d.reader.cursor)
	}

	batch, replaced, err := d.pack(p.pairs)
	if err != nil {
		return nil, err
	}

	d.reader.commit(p)
	d.replacements[QuestionColumn] += replaced[QuestionColumn]
	d.replacements[AnswerColumn] += replaced[AnswerColumn]
	d.logger.Debug().Int("cursor", d.reader.cursor).Int("examples", batch.Examples).
		Int("inputLength", batch.InputLength).Int("outputLength", batch.OutputLength).
		Bool("exhausted", d.reader.exhausted).Msg("batch")
	if d.reader.exhausted {
		d.summarize()
	}
	return batch, nil
}

func (d *DialogueDataset) question(text string) ([]string, bool) {
	tokens, replaced := d.filter.sequence(text)
	if d.opts.ReverseQuestion {
		tokens = slices.Clone(tokens)
		slices.Reverse(tokens)
	}
	return tokens, replaced
}

func (d *DialogueDataset) pack(pairs []Pair) (*DialogueBatch, [2]int, error) {
	var replaced [2]int
	questions := make([][]string, len(pairs))
	decoderInputs := make([][]string, len(pairs))
	targets := make([][]string, len(pairs))
	maxQuestion, maxAnswer := 0, 0

	for i, pair := range pairs {
		q, qReplaced := d.question(pair.Question)
		a, aReplaced := d.filter.sequence(pair.Answer)
		if qReplaced {
			replaced[QuestionColumn]++
		}
		if aReplaced {
			replaced[AnswerColumn]++
		}

		questions[i] = q
		decoderInputs[i] = append([]string{d.opts.StartToken}, a...)
		targets[i] = append(slices.Clone(a), d.opts.EndToken)
		maxQuestion = max(maxQuestion, len(q))
		maxAnswer = max(maxAnswer, len(a)+1)
	}

	inputLen := packLength(maxQuestion, d.opts.TruncateLength)
	outputLen := packLength(maxAnswer, d.opts.TruncateLength)

	input, inputMask, err := d.packer.Features(d.opts.Vocabulary, questions, inputLen)
	if err != nil {
		return nil, replaced, err
	}
	decoderInput, _, err := d.packer.Features(d.opts.Vocabulary, decoderInputs, outputLen)
	if err != nil {
		return nil, replaced, err
	}
	target, predictionMask, err := d.packer.Features(d.opts.Vocabulary, targets, outputLen)
	if err != nil {
		return nil, replaced, err
	}

	return &DialogueBatch{
		Input:          input,
		DecoderInput:   decoderInput,
		Target:         target,
		InputMask:      inputMask,
		PredictionMask: predictionMask,
		DecoderMask:    predictionMask,
		Examples:       len(pairs),
		InputLength:    inputLen,
		OutputLength:   outputLen,
		Questions:      questions,
		DecoderInputs:  decoderInputs,
		Targets:        targets,
	}, replaced, nil
}

// EncodeQuestion packs one question as encoder input [1, vectorWidth, L]
// with its mask, honoring ReverseQuestion and TruncateLength.
func (d *DialogueDataset) EncodeQuestion(text string) (input, mask *Dense, err error) {
	q, _ := d.question(text)
	return d.packer.Features(d.opts.Vocabulary, [][]string{q}, packLength(len(q), d.opts.TruncateLength))
}

func (d *DialogueDataset) Reset() {
	d.reader.reset()
	d.replacements = [2]int{}
	d.summarized = false
}

func (d *DialogueDataset) summarize() {
	if d.summarized {
		return
	}
	d.summarized = true
	total := d.replacements[QuestionColumn] + d.replacements[AnswerColumn]
	if total == 0 {
		d.logger.Debug().Int("cursor", d.reader.cursor).Msg("end of data")
		return
	}
	d.logger.Warn().Int("questions", d.replacements[QuestionColumn]).Int("answers", d.replacements[AnswerColumn]).
		Int("cursor", d.reader.cursor).Msg("end of data, some rows had no known words and were replaced")
}

// Yield implements gomlx's train.Dataset and returns io.EOF at the end of
// data.
func (d *DialogueDataset) Yield() (spec any, inputs []*tensors.Tensor, labels []*tensors.Tensor, err error) {
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
