package main

// Example command that loads the configuration and the word vectors, then
// runs one epoch over the classification dataset and, when configured, the
// dialogue dataset, printing the shape of every batch.
//
// Usage:
//   go run ./datasets/example [config.yaml]
//
// Without an argument the configuration is looked up as textbowl.yaml in the
// working directory and its parent. Any key can be overridden from the
// environment, e.g. TEXTBOWL_CLASSIFICATION_BATCHSIZE=16.

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/Noofbiz/textBowl/config"
	"github.com/Noofbiz/textBowl/datasets"
	"github.com/Noofbiz/textBowl/tokenize"
	"github.com/Noofbiz/textBowl/vocab"
)

func main() {
	path := ""
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.Log)

	if cfg.Vocabulary.Path == "" {
		logger.Fatal().Msg("vocabulary.path is not set")
	}
	wv, err := vocab.Load(cfg.Vocabulary.Path)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load word vectors")
	}
	if cfg.Vocabulary.UnknownWord != "" {
		if err := wv.WithUnknownWord(cfg.Vocabulary.UnknownWord); err != nil {
			logger.Fatal().Err(err).Msg("failed to enable unknown word")
		}
	}
	logger.Info().Int("words", wv.Len()).Int("width", wv.Width()).Msg("word vectors loaded")

	tok := tokenize.NewCommon()

	if len(cfg.Classification.PathsPerClass) > 0 || cfg.Classification.Pattern != "" {
		runClassification(cfg.Classification, wv, tok, &logger)
	}
	if cfg.Dialogue.Path != "" {
		runDialogue(cfg.Dialogue, wv, tok, &logger)
	}

	fmt.Println("\nExample completed successfully!")
}

func runClassification(c config.ClassificationConfig, wv *vocab.WordVectors, tok tokenize.Tokenizer, logger *zerolog.Logger) {
	opts, err := datasets.ClassifiedOptionsFromConfig(c, wv, tok, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid classification config")
	}
	ds, err := datasets.NewClassifiedTextDataset(opts)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create classification dataset")
	}

	fmt.Printf("Classes: %v\n", ds.Labels())
	fmt.Printf("Total examples available: %d\n", ds.TotalExamples())

	count := 0
	for ds.HasNext() {
		batch, err := ds.Next()
		if errors.Is(err, datasets.ErrNoMoreData) {
			break
		}
		if err != nil {
			logger.Error().Err(err).Int("cursor", ds.Cursor()).Msg("stopping epoch")
			break
		}
		count++
		fmt.Printf("Batch %d: features=%v labels=%v featuresMask=%v\n",
			count, batch.Features.Shape, batch.Labels.Shape, batch.FeaturesMask.Shape)
	}
	fmt.Printf("Replaced lines per class: %v\n", ds.Replacements())

	// The same data through the gomlx train.Dataset contract.
	ds.Reset()
	_, inputs, labels, err := ds.Yield()
	if err != nil {
		logger.Error().Err(err).Msg("yield failed")
		return
	}
	fmt.Printf("First yielded batch: %d input tensors, %d label tensors\n", len(inputs), len(labels))
}

func runDialogue(c config.DialogueConfig, wv *vocab.WordVectors, tok tokenize.Tokenizer, logger *zerolog.Logger) {
	opts, err := datasets.DialogueOptionsFromConfig(c, wv, tok, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid dialogue config")
	}
	ds, err := datasets.NewDialogueDataset(opts)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create dialogue dataset")
	}

	fmt.Printf("\nDialogue rows available: %d\n", ds.TotalExamples())
	count := 0
	for ds.HasNext() {
		batch, err := ds.Next()
		if errors.Is(err, datasets.ErrNoMoreData) {
			break
		}
		if err != nil {
			logger.Error().Err(err).Int("cursor", ds.Cursor()).Msg("stopping epoch")
			break
		}
		count++
		fmt.Printf("Batch %d: input=%v decoderInput=%v target=%v\n",
			count, batch.Input.Shape, batch.DecoderInput.Shape, batch.Target.Shape)

		if count == 1 && len(batch.Targets) > 0 {
			// decode the first target back to words
			row := make([]float64, wv.Width())
			words := make([]string, 0, batch.OutputLength)
			for t := range batch.OutputLength {
				if batch.PredictionMask.At(0, t) == 0 {
					break
				}
				for k := range row {
					row[k] = float64(batch.Target.At(0, k, t))
				}
				nearest, err := wv.Nearest(row, 1)
				if err != nil {
					logger.Fatal().Err(err).Msg("nearest lookup failed")
				}
				words = append(words, nearest...)
			}
			fmt.Printf("  First target decoded: %v\n", words)
		}
	}
}
