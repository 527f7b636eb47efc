package vocab

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// maxLineBytes bounds a single word-vector line (300-d vectors are ~3KB).
const maxLineBytes = 4 * 1024 * 1024

// Load reads a word-vector table in word2vec/GloVe text format: one word per
// line followed by its space separated values. An optional word2vec header
// line ("<words> <width>") is skipped.
func Load(path string) (*WordVectors, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open word vectors %s: %w", path, err)
	}
	defer file.Close()

	w, err := Read(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read word vectors %s: %w", path, err)
	}
	return w, nil
}

// Read parses a word-vector table from r. See Load for the format.
func Read(r io.Reader) (*WordVectors, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var words []string
	var vectors [][]float64
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if lineNo == 1 && isHeader(fields) {
			continue
		}
		if len(fields) < 2 {
			return nil, fmt.Errorf("line %d: expected a word followed by values", lineNo)
		}

		vec := make([]float64, len(fields)-1)
		for i, f := range fields[1:] {
			v, err := parseFloat64(f)
			if err != nil {
				return nil, fmt.Errorf("line %d: failed to parse value %d of %q: %w", lineNo, i, fields[0], err)
			}
			vec[i] = v
		}
		words = append(words, fields[0])
		vectors = append(vectors, vec)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return New(words, vectors)
}

// isHeader matches the "<count> <width>" line word2vec writes first.
func isHeader(fields []string) bool {
	if len(fields) != 2 {
		return false
	}
	for _, f := range fields {
		if _, err := strconv.Atoi(f); err != nil {
			return false
		}
	}
	return true
}

func parseFloat64(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty string")
	}
	return strconv.ParseFloat(s, 64)
}
