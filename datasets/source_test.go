package datasets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Noofbiz/textBowl/vocab"
)

// writeLines writes one line per entry to dir/name and returns the path.
func writeLines(t *testing.T, dir, name string, lines []string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	content := ""
	if len(lines) > 0 {
		content = strings.Join(lines, "\n") + "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// writeCSV writes headerless question/answer rows to dir/name.
func writeCSV(t *testing.T, dir, name string, rows []string) string {
	t.Helper()
	return writeLines(t, dir, name, rows)
}

var testWords = []string{
	"this", "be", "the", "good", "bad", "movie", "fun", "dull", "very",
	"<go>", "<eos>", "hello", "hi", "how", "are", "you", "fine", "unk",
}

// testVocab returns a width 3 table in which every word has distinct values.
func testVocab(t *testing.T) *vocab.WordVectors {
	t.Helper()
	vectors := make([][]float64, len(testWords))
	for i := range testWords {
		f := float64(i + 1)
		vectors[i] = []float64{f, f / 10, -f}
	}
	wv, err := vocab.New(testWords, vectors)
	require.NoError(t, err)
	return wv
}

func vec(t *testing.T, wv vocab.Lookup, word string) []float64 {
	t.Helper()
	v, err := wv.Vector(word)
	require.NoError(t, err)
	return v
}

func nopLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func TestLineReader_SkipAndRead(t *testing.T) {
	path := writeLines(t, t.TempDir(), "lines.txt", []string{"a", "b", "c", "d", "e"})

	r, err := OpenLines(path)
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, r.Skip(2))
	assert.Equal(t, 2, r.Position())

	lines, err := r.ReadUpTo(2)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "d"}, lines)

	lines, err = r.ReadUpTo(10)
	require.NoError(t, err)
	assert.Equal(t, []string{"e"}, lines, "fewer lines only when the file ends")

	lines, err = r.ReadUpTo(1)
	require.NoError(t, err)
	assert.Empty(t, lines)
	assert.Equal(t, 5, r.Position())

	require.NoError(t, r.Close())
	require.NoError(t, r.Close(), "closing twice is fine")
}

func TestLineReader_Restartable(t *testing.T) {
	path := writeLines(t, t.TempDir(), "lines.txt", []string{"one", "two", "three", "four"})

	first, err := readLineWindow(path, 1, 2)
	require.NoError(t, err)
	second, err := readLineWindow(path, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"two", "three"}, first)
	assert.Equal(t, first, second)
}

func TestLineReader_SkipBoundary(t *testing.T) {
	path := writeLines(t, t.TempDir(), "lines.txt", []string{"a", "b", "c"})

	lines, err := readLineWindow(path, 3, 2)
	require.NoError(t, err, "skipping exactly to the end succeeds")
	assert.Empty(t, lines)

	_, err = readLineWindow(path, 4, 1)
	assert.ErrorIs(t, err, ErrEndOfSource)
}

func TestLineReader_MissingFile(t *testing.T) {
	_, err := OpenLines(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestCountLines(t *testing.T) {
	dir := t.TempDir()
	n, err := countLines(writeLines(t, dir, "a.txt", []string{"x", "", "z"}))
	require.NoError(t, err)
	assert.Equal(t, 3, n, "blank lines are examples too")

	n, err = countLines(writeLines(t, dir, "empty.txt", nil))
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestPairReader(t *testing.T) {
	path := writeCSV(t, t.TempDir(), "pairs.csv", []string{
		"hello,hi",
		`"how, are you",fine`,
		"bye,see you",
	})

	n, err := countRows(path)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	pairs, err := readPairWindow(path, 1, 5)
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	assert.Equal(t, Pair{Question: "how, are you", Answer: "fine"}, pairs[0])
	assert.Equal(t, Pair{Question: "bye", Answer: "see you"}, pairs[1])

	_, err = readPairWindow(path, 4, 1)
	assert.ErrorIs(t, err, ErrEndOfSource)
}

func TestPairReader_WrongColumnCount(t *testing.T) {
	path := writeCSV(t, t.TempDir(), "pairs.csv", []string{"only one column"})

	_, err := readPairWindow(path, 0, 1)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrEndOfSource)
}

func TestFindClassFiles(t *testing.T) {
	dir := t.TempDir()
	writeLines(t, dir, "thriller.txt", []string{"a"})
	writeLines(t, dir, "comedy.txt", []string{"b"})
	writeLines(t, dir, "notes.md", []string{"c"})

	paths, labels, err := FindClassFiles(filepath.Join(dir, "*.txt"))
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "comedy.txt"), filepath.Join(dir, "thriller.txt")}, paths)
	assert.Equal(t, []string{"comedy", "thriller"}, labels)

	_, _, err = FindClassFiles(filepath.Join(dir, "*.csv"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
