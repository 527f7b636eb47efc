// Package config loads dataset configuration from a file and the environment.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to environment overrides, e.g.
// TEXTBOWL_CLASSIFICATION_BATCHSIZE=64.
const EnvPrefix = "TEXTBOWL"

// Config stores all configuration of the datasets.
// The values are read by viper from a config file or environment variables.
type Config struct {
	Vocabulary     VocabularyConfig     `mapstructure:"vocabulary"`
	Classification ClassificationConfig `mapstructure:"classification"`
	Dialogue       DialogueConfig       `mapstructure:"dialogue"`
	Log            LogConfig            `mapstructure:"log"`
}

// VocabularyConfig points at the word-vector table.
type VocabularyConfig struct {
	// Path of a word2vec/GloVe text file.
	Path string `mapstructure:"path"`
	// UnknownWord, when set, enables out-of-vocabulary support using the
	// vector of this word.
	UnknownWord string `mapstructure:"unknownWord"`
}

// ClassificationConfig configures the balanced multi-class dataset.
type ClassificationConfig struct {
	// PathsPerClass lists one line-delimited file per class, class 0 first.
	PathsPerClass []string `mapstructure:"pathsPerClass"`
	// Pattern is a glob used instead of PathsPerClass; files are taken in
	// sorted order and labels default to their base names.
	Pattern string `mapstructure:"pattern"`
	// Labels are matched with PathsPerClass by position.
	Labels []string `mapstructure:"labels"`

	BatchSize         int    `mapstructure:"batchSize"`
	TruncateLength    int    `mapstructure:"truncateLength"`
	ShortSourcePolicy string `mapstructure:"shortSourcePolicy"`
	// Format selects the packing strategy: "rnn" or "cnn2d".
	Format string `mapstructure:"format"`

	EmptyLineReplacement []string `mapstructure:"emptyLineReplacement"`
}

// DialogueConfig configures the question/answer dataset.
type DialogueConfig struct {
	Path              string `mapstructure:"path"`
	BatchSize         int    `mapstructure:"batchSize"`
	TruncateLength    int    `mapstructure:"truncateLength"`
	ShortSourcePolicy string `mapstructure:"shortSourcePolicy"`

	StartToken      string `mapstructure:"startToken"`
	EndToken        string `mapstructure:"endToken"`
	ReverseQuestion bool   `mapstructure:"reverseQuestion"`

	EmptyLineReplacement []string `mapstructure:"emptyLineReplacement"`
}

// LogConfig configures the zerolog logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("vocabulary.path", "")
	v.SetDefault("vocabulary.unknownWord", "")

	v.SetDefault("classification.pathsPerClass", []string{})
	v.SetDefault("classification.pattern", "")
	v.SetDefault("classification.labels", []string{})
	v.SetDefault("classification.batchSize", 32)
	v.SetDefault("classification.truncateLength", 200)
	v.SetDefault("classification.shortSourcePolicy", "strict")
	v.SetDefault("classification.format", "rnn")
	v.SetDefault("classification.emptyLineReplacement", []string{"this", "be", "the"})

	v.SetDefault("dialogue.path", "")
	v.SetDefault("dialogue.batchSize", 32)
	v.SetDefault("dialogue.truncateLength", 256)
	v.SetDefault("dialogue.shortSourcePolicy", "lenient")
	v.SetDefault("dialogue.startToken", "<go>")
	v.SetDefault("dialogue.endToken", "<eos>")
	v.SetDefault("dialogue.reverseQuestion", false)
	v.SetDefault("dialogue.emptyLineReplacement", []string{"this", "be", "the"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
}

// Load reads configuration from configPath (any format viper understands)
// and environment variables. With an empty path it looks for a file named
// "textbowl" in the working directory and its parent; a missing file is
// not an error and defaults are used.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("..")
		v.SetConfigName("textbowl")
		v.SetConfigType("yaml")
	}

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	return &cfg, nil
}
