package datasets

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Noofbiz/textBowl/config"
	"github.com/Noofbiz/textBowl/tokenize"
	"github.com/Noofbiz/textBowl/vocab"
)

// ShortSourcePolicy decides what happens when a source runs out of lines in
// the middle of a batch.
type ShortSourcePolicy string

const (
	// Strict fails the call with ErrInsufficientLines or ErrCursorOverrun.
	Strict ShortSourcePolicy = "strict"
	// Lenient clamps the batch to what is available and marks the dataset
	// as exhausted.
	Lenient ShortSourcePolicy = "lenient"
)

// ParseShortSourcePolicy parses "strict" or "lenient" (case-insensitive).
// An empty string returns def.
func ParseShortSourcePolicy(s string, def ShortSourcePolicy) (ShortSourcePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return def, nil
	case string(Strict):
		return Strict, nil
	case string(Lenient):
		return Lenient, nil
	}
	return "", fmt.Errorf("%w: unknown short source policy %q", ErrInvalidConfig, s)
}

// DefaultEmptyLineReplacement is substituted for lines that have no known
// words left after filtering.
var DefaultEmptyLineReplacement = []string{"this", "be", "the"}

const (
	DefaultBatchSize  = 32
	DefaultStartToken = "<go>"
	DefaultEndToken   = "<eos>"
)

// ClassifiedOptions configures a ClassifiedTextDataset.
type ClassifiedOptions struct {
	// PathsPerClass holds one line-delimited file per class. Class i reads
	// from PathsPerClass[i].
	PathsPerClass []string
	// Labels are matched with PathsPerClass by position. When empty the
	// file base names are used.
	Labels []string

	// BatchSize is the number of examples Next returns. It must be a
	// multiple of the number of classes.
	BatchSize int
	// TruncateLength caps the packed sequence length. Zero or negative
	// means no cap.
	TruncateLength int
	// Policy defaults to Strict.
	Policy ShortSourcePolicy

	// Vocabulary is required.
	Vocabulary vocab.Lookup
	// Tokenizer defaults to tokenize.NewCommon().
	Tokenizer tokenize.Tokenizer
	// Packer defaults to SequencePacker.
	Packer Packer

	// EmptyLineReplacement defaults to DefaultEmptyLineReplacement.
	EmptyLineReplacement []string

	// Name is returned by Name(); defaults to "ClassifiedTextDataset".
	Name string

	// Logger defaults to a stderr zerolog logger.
	Logger *zerolog.Logger
}

// DialogueOptions configures a DialogueDataset.
type DialogueOptions struct {
	// Path of a two-column CSV file (question, answer) without header.
	Path string

	BatchSize      int
	TruncateLength int
	// Policy defaults to Lenient.
	Policy ShortSourcePolicy

	Vocabulary vocab.Lookup
	Tokenizer  tokenize.Tokenizer

	// StartToken is prepended to the decoder input, EndToken appended to
	// the prediction target. Both must be vectorizable.
	StartToken string
	EndToken   string
	// ReverseQuestion feeds the question tokens to the encoder in reverse.
	ReverseQuestion bool

	EmptyLineReplacement []string

	Name   string
	Logger *zerolog.Logger
}

func defaultLogger() zerolog.Logger {
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

func resolveLogger(l *zerolog.Logger) zerolog.Logger {
	if l == nil {
		return defaultLogger()
	}
	return *l
}

// checkVectorizable makes sure fixed tokens the datasets inject can be
// turned into vectors.
func checkVectorizable(lookup vocab.Lookup, what string, tokens ...string) error {
	if lookup.SupportsOutOfVocabulary() {
		return nil
	}
	for _, tok := range tokens {
		if !lookup.Has(tok) {
			return fmt.Errorf("%w: %s token %q is not in the vocabulary", ErrInvalidConfig, what, tok)
		}
	}
	return nil
}

func (o *ClassifiedOptions) validate() error {
	if len(o.PathsPerClass) == 0 {
		return fmt.Errorf("%w: at least one class file is required", ErrInvalidConfig)
	}
	if len(o.Labels) == 0 {
		o.Labels = labelsFromPaths(o.PathsPerClass)
	}
	if len(o.Labels) != len(o.PathsPerClass) {
		return fmt.Errorf("%w: %d labels for %d class files", ErrInvalidConfig, len(o.Labels), len(o.PathsPerClass))
	}
	if o.Vocabulary == nil {
		return fmt.Errorf("%w: a vocabulary lookup is required", ErrInvalidConfig)
	}
	if o.Vocabulary.Width() <= 0 {
		return fmt.Errorf("%w: vocabulary has no vector width", ErrInvalidConfig)
	}
	if o.BatchSize == 0 {
		o.BatchSize = DefaultBatchSize - DefaultBatchSize%len(o.PathsPerClass)
		if o.BatchSize == 0 {
			o.BatchSize = len(o.PathsPerClass)
		}
	}
	if o.BatchSize < 0 || o.BatchSize%len(o.PathsPerClass) != 0 {
		return fmt.Errorf("%w: batch size %d is not a positive multiple of %d classes",
			ErrInvalidBatchSize, o.BatchSize, len(o.PathsPerClass))
	}
	policy, err := ParseShortSourcePolicy(string(o.Policy), Strict)
	if err != nil {
		return err
	}
	o.Policy = policy
	if o.Tokenizer == nil {
		o.Tokenizer = tokenize.NewCommon()
	}
	if o.Packer == nil {
		o.Packer = SequencePacker{}
	}
	if len(o.EmptyLineReplacement) == 0 {
		o.EmptyLineReplacement = DefaultEmptyLineReplacement
	}
	if o.Name == "" {
		o.Name = "ClassifiedTextDataset"
	}
	return checkVectorizable(o.Vocabulary, "empty line replacement", o.EmptyLineReplacement...)
}

func (o *DialogueOptions) validate() error {
	if o.Path == "" {
		return fmt.Errorf("%w: a dialogue CSV path is required", ErrInvalidConfig)
	}
	if o.Vocabulary == nil {
		return fmt.Errorf("%w: a vocabulary lookup is required", ErrInvalidConfig)
	}
	if o.Vocabulary.Width() <= 0 {
		return fmt.Errorf("%w: vocabulary has no vector width", ErrInvalidConfig)
	}
	if o.BatchSize == 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.BatchSize < 0 {
		return fmt.Errorf("%w: batch size %d is not positive", ErrInvalidBatchSize, o.BatchSize)
	}
	policy, err := ParseShortSourcePolicy(string(o.Policy), Lenient)
	if err != nil {
		return err
	}
	o.Policy = policy
	if o.Tokenizer == nil {
		o.Tokenizer = tokenize.NewCommon()
	}
	if o.StartToken == "" {
		o.StartToken = DefaultStartToken
	}
	if o.EndToken == "" {
		o.EndToken = DefaultEndToken
	}
	if len(o.EmptyLineReplacement) == 0 {
		o.EmptyLineReplacement = DefaultEmptyLineReplacement
	}
	if o.Name == "" {
		o.Name = "DialogueDataset"
	}
	if err := checkVectorizable(o.Vocabulary, "sequence marker", o.StartToken, o.EndToken); err != nil {
		return err
	}
	return checkVectorizable(o.Vocabulary, "empty line replacement", o.EmptyLineReplacement...)
}

// ClassifiedOptionsFromConfig maps the file configuration onto options. The
// vocabulary, tokenizer and logger are supplied by the caller.
func ClassifiedOptionsFromConfig(c config.ClassificationConfig, lookup vocab.Lookup, tok tokenize.Tokenizer, logger *zerolog.Logger) (ClassifiedOptions, error) {
	policy, err := ParseShortSourcePolicy(c.ShortSourcePolicy, Strict)
	if err != nil {
		return ClassifiedOptions{}, err
	}
	packer, err := PackerByName(c.Format)
	if err != nil {
		return ClassifiedOptions{}, err
	}

	paths, labels := c.PathsPerClass, c.Labels
	if len(paths) == 0 && c.Pattern != "" {
		found, names, err := FindClassFiles(c.Pattern)
		if err != nil {
			return ClassifiedOptions{}, err
		}
		paths = found
		if len(labels) == 0 {
			labels = names
		}
	}

	return ClassifiedOptions{
		PathsPerClass:        paths,
		Labels:               labels,
		BatchSize:            c.BatchSize,
		TruncateLength:       c.TruncateLength,
		Policy:               policy,
		Vocabulary:           lookup,
		Tokenizer:            tok,
		Packer:               packer,
		EmptyLineReplacement: c.EmptyLineReplacement,
		Logger:               logger,
	}, nil
}

// DialogueOptionsFromConfig maps the file configuration onto options.
func DialogueOptionsFromConfig(c config.DialogueConfig, lookup vocab.Lookup, tok tokenize.Tokenizer, logger *zerolog.Logger) (DialogueOptions, error) {
	policy, err := ParseShortSourcePolicy(c.ShortSourcePolicy, Lenient)
	if err != nil {
		return DialogueOptions{}, err
	}
	return DialogueOptions{
		Path:                 c.Path,
		BatchSize:            c.BatchSize,
		TruncateLength:       c.TruncateLength,
		Policy:               policy,
		Vocabulary:           lookup,
		Tokenizer:            tok,
		StartToken:           c.StartToken,
		EndToken:             c.EndToken,
		ReverseQuestion:      c.ReverseQuestion,
		EmptyLineReplacement: c.EmptyLineReplacement,
		Logger:               logger,
	}, nil
}
