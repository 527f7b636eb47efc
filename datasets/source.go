package datasets

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
)

// maxLineBytes bounds the length of a single example line.
const maxLineBytes = 1024 * 1024

// LineReader reads a line-delimited text file sequentially. It is restartable:
// opening the same path again and skipping the same number of lines yields the
// same remaining lines.
type LineReader struct {
	path    string
	file    *os.File
	scanner *bufio.Scanner
	pos     int
}

// OpenLines opens path for line reading.
func OpenLines(path string) (*LineReader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &LineReader{path: path, file: file, scanner: scanner}, nil
}

// Position returns the number of lines consumed so far.
func (r *LineReader) Position() int { return r.pos }

// Skip advances past n lines. It fails with ErrEndOfSource if fewer than n
// lines remain.
func (r *LineReader) Skip(n int) error {
	for range n {
		if !r.scanner.Scan() {
			if err := r.scanner.Err(); err != nil {
				return fmt.Errorf("failed to skip lines in %s: %w", r.path, err)
			}
			return fmt.Errorf("%w: %s ends after %d lines, cannot skip %d", ErrEndOfSource, r.path, r.pos, n)
		}
		r.pos++
	}
	return nil
}

// ReadUpTo returns at most n lines. It returns fewer only when the file ends.
func (r *LineReader) ReadUpTo(n int) ([]string, error) {
	lines := make([]string, 0, n)
	for len(lines) < n && r.scanner.Scan() {
		lines = append(lines, r.scanner.Text())
		r.pos++
	}
	if err := r.scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", r.path, err)
	}
	return lines, nil
}

// Close releases the file handle. It is safe to call more than once.
func (r *LineReader) Close() error {
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

// Pair is one question/answer row of a dialogue source.
type Pair struct {
	Question string
	Answer   string
}

// PairReader reads a two-column CSV file (question, answer) without header.
type PairReader struct {
	path   string
	file   *os.File
	reader *csv.Reader
	pos    int
}

// OpenPairs opens a two-column CSV source.
func OpenPairs(path string) (*PairReader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = 2
	return &PairReader{path: path, file: file, reader: reader}, nil
}

// Position returns the number of rows consumed so far.
func (r *PairReader) Position() int { return r.pos }

// Skip advances past n rows, failing with ErrEndOfSource if fewer remain.
func (r *PairReader) Skip(n int) error {
	for range n {
		if _, err := r.reader.Read(); err != nil {
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("%w: %s ends after %d rows, cannot skip %d", ErrEndOfSource, r.path, r.pos, n)
			}
			return fmt.Errorf("failed to skip row %d of %s: %w", r.pos, r.path, err)
		}
		r.pos++
	}
	return nil
}

// ReadUpTo returns at most n rows, fewer only when the file ends.
func (r *PairReader) ReadUpTo(n int) ([]Pair, error) {
	pairs := make([]Pair, 0, n)
	for len(pairs) < n {
		record, err := r.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d of %s: %w", r.pos, r.path, err)
		}
		pairs = append(pairs, Pair{Question: record[0], Answer: record[1]})
		r.pos++
	}
	return pairs, nil
}

// Close releases the file handle. It is safe to call more than once.
func (r *PairReader) Close() error {
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

// readLineWindow opens path, skips skip lines and reads up to n lines. The
// file is closed before returning.
func readLineWindow(path string, skip, n int) ([]string, error) {
	r, err := OpenLines(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	if err := r.Skip(skip); err != nil {
		return nil, err
	}
	return r.ReadUpTo(n)
}

// readPairWindow is readLineWindow for two-column sources.
func readPairWindow(path string, skip, n int) ([]Pair, error) {
	r, err := OpenPairs(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	if err := r.Skip(skip); err != nil {
		return nil, err
	}
	return r.ReadUpTo(n)
}

// countLines counts the lines of a text file.
func countLines(path string) (int, error) {
	r, err := OpenLines(path)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	count := 0
	for r.scanner.Scan() {
		count++
	}
	if err := r.scanner.Err(); err != nil {
		return 0, fmt.Errorf("failed to count lines in %s: %w", path, err)
	}
	return count, nil
}

// countRows counts the rows of a two-column CSV file.
func countRows(path string) (int, error) {
	r, err := OpenPairs(path)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	count := 0
	for {
		_, err := r.reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("failed to count rows in %s: %w", path, err)
		}
		count++
	}
	return count, nil
}
