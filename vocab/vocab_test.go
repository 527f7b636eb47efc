package vocab

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTable(t *testing.T) *WordVectors {
	t.Helper()
	w, err := New(
		[]string{"cat", "dog", "car"},
		[][]float64{{1, 0, 0}, {0.9, 0.1, 0}, {0, 0, 1}},
	)
	require.NoError(t, err)
	return w
}

func TestNew_Validation(t *testing.T) {
	_, err := New([]string{"a"}, nil)
	assert.Error(t, err)

	_, err = New(nil, nil)
	assert.ErrorIs(t, err, ErrEmptyTable)

	_, err = New([]string{"a", "b"}, [][]float64{{1, 2}, {1}})
	assert.ErrorIs(t, err, ErrWidthMismatch)
}

func TestNew_DuplicatesKeepFirst(t *testing.T) {
	w, err := New([]string{"a", "a"}, [][]float64{{1}, {2}})
	require.NoError(t, err)
	assert.Equal(t, 1, w.Len())

	v, err := w.Vector("a")
	require.NoError(t, err)
	assert.Equal(t, []float64{1}, v)
}

func TestVectorAndHas(t *testing.T) {
	w := testTable(t)
	assert.Equal(t, 3, w.Width())
	assert.True(t, w.Has("dog"))
	assert.False(t, w.Has("bird"))
	assert.False(t, w.SupportsOutOfVocabulary())

	v, err := w.Vector("car")
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 1}, v)

	// returned vectors are copies
	v[0] = 42
	again, _ := w.Vector("car")
	assert.Equal(t, 0.0, again[0])

	_, err = w.Vector("bird")
	assert.ErrorIs(t, err, ErrUnknownToken)
}

func TestVectorizeBatch(t *testing.T) {
	w := testTable(t)

	m, err := w.VectorizeBatch([]string{"car", "cat"})
	require.NoError(t, err)
	r, c := m.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 2, c)
	assert.Equal(t, 1.0, m.At(2, 0))
	assert.Equal(t, 1.0, m.At(0, 1))

	_, err = w.VectorizeBatch(nil)
	assert.ErrorIs(t, err, ErrEmptyBatch)

	_, err = w.VectorizeBatch([]string{"cat", "bird"})
	assert.ErrorIs(t, err, ErrUnknownToken)
}

func TestWithUnknownWord(t *testing.T) {
	w := testTable(t)
	require.ErrorIs(t, w.WithUnknownWord("bird"), ErrUnknownToken)
	require.NoError(t, w.WithUnknownWord("car"))

	assert.True(t, w.SupportsOutOfVocabulary())
	assert.False(t, w.Has("bird"))

	v, err := w.Vector("bird")
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 1}, v)
}

func TestNearest(t *testing.T) {
	w := testTable(t)

	got, err := w.Nearest([]float64{1, 0.05, 0}, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"cat", "dog"}, got)

	got, err = w.Nearest([]float64{0, 0, 3}, 10)
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Equal(t, "car", got[0])

	_, err = w.Nearest([]float64{1}, 1)
	assert.ErrorIs(t, err, ErrWidthMismatch)
}

func TestLoad_Word2VecText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors.txt")
	content := strings.Join([]string{
		"3 2",
		"hello 0.5 -1",
		"",
		"world 1e-1 2",
		"again 0 0",
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	w, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, w.Len())
	assert.Equal(t, 2, w.Width())
	assert.Equal(t, []string{"hello", "world", "again"}, w.Words())

	v, err := w.Vector("world")
	require.NoError(t, err)
	assert.InDelta(t, 0.1, v[0], 1e-12)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)

	_, err = Read(strings.NewReader("hello 1 x\n"))
	assert.Error(t, err)

	_, err = Read(strings.NewReader("hello\n"))
	assert.Error(t, err)
}
