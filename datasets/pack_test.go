package datasets

import (
	"testing"

	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackLength(t *testing.T) {
	tests := []struct {
		maxLength, truncate, want int
	}{
		{5, 10, 5},
		{12, 10, 10},
		{10, 10, 10},
		{7, 0, 7},
		{7, -1, 7},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, packLength(tt.maxLength, tt.truncate), "packLength(%d, %d)", tt.maxLength, tt.truncate)
	}
}

func TestPackerByName(t *testing.T) {
	for name, want := range map[string]string{"": "rnn", "RNN": "rnn", "cnn2d": "cnn2d", " cnn ": "cnn2d"} {
		p, err := PackerByName(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, p.Name())
	}
	_, err := PackerByName("lstm3d")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestParseShortSourcePolicy(t *testing.T) {
	p, err := ParseShortSourcePolicy("", Lenient)
	require.NoError(t, err)
	assert.Equal(t, Lenient, p)

	p, err = ParseShortSourcePolicy(" STRICT ", Lenient)
	require.NoError(t, err)
	assert.Equal(t, Strict, p)

	_, err = ParseShortSourcePolicy("relaxed", Strict)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestSequencePacker_Labels(t *testing.T) {
	labels, mask := SequencePacker{}.Labels([]int{1, 0}, []int{2, 3}, 2, 3)
	assert.Equal(t, []int{2, 2, 3}, labels.Shape)
	assert.Equal(t, []float32{
		0, 0, 0, 0, 1, 0,
		0, 0, 1, 0, 0, 0,
	}, labels.Data)
	assert.Equal(t, []float32{0, 1, 0, 0, 0, 1}, mask.Data)
}

func TestConvPacker_Labels(t *testing.T) {
	labels, mask := ConvPacker{}.Labels([]int{2, 0}, []int{4, 1}, 3, 4)
	assert.Nil(t, mask)
	assert.Equal(t, []float32{0, 0, 1, 1, 0, 0}, labels.Data)
}

func TestPackClassesInterleaves(t *testing.T) {
	wv := testVocab(t)
	f := &filtered{
		tokens: [][][]string{
			{{"good"}, {"bad", "movie"}},
			{{"fun"}, {"dull"}},
			{{"very"}, {"the"}},
		},
		maxLength: 2,
		replaced:  []int{0, 0, 0},
	}
	batch, err := packClasses(SequencePacker{}, wv, f, 10)
	require.NoError(t, err)
	assert.Equal(t, 6, batch.Examples)
	assert.Equal(t, []int{0, 1, 2, 0, 1, 2}, batch.Classes)
	assert.Equal(t, []string{"bad", "movie"}, batch.Tokens[3])
	assert.Equal(t, []int{1, 1, 1, 2, 1, 1}, batch.Lengths)
}

func TestDense(t *testing.T) {
	d := NewDense(2, 3, 4)
	assert.Len(t, d.Data, 24)
	assert.Equal(t, 3, d.Rank())

	d.Set(7, 1, 2, 3)
	assert.Equal(t, float32(7), d.At(1, 2, 3))
	assert.Equal(t, float32(7), d.Data[23])

	row := d.Row(1, 2)
	require.Len(t, row, 4)
	row[0] = 5
	assert.Equal(t, float32(5), d.At(1, 2, 0), "rows are views")

	assert.Panics(t, func() { d.At(2, 0, 0) })
	assert.Panics(t, func() { d.At(0, 0) })
}

func TestDense_ToGomlxTensor(t *testing.T) {
	for _, shape := range [][]int{{2, 3}, {2, 3, 4}, {2, 1, 3, 4}} {
		d := NewDense(shape...)
		for i := range d.Data {
			d.Data[i] = float32(i)
		}
		tensor, err := d.ToGomlxTensor()
		require.NoError(t, err, "shape %v", shape)
		assert.Equal(t, shape, tensor.Shape().Dimensions)
		assert.Equal(t, d.Data, tensors.CopyFlatData[float32](tensor), "shape %v", shape)
	}

	d := NewDense(2, 3, 4)
	d.Set(1.5, 0, 2, 1)
	d.Set(-2, 1, 0, 3)
	tensor, err := d.ToGomlxTensor()
	require.NoError(t, err)
	value, ok := tensor.Value().([][][]float32)
	require.True(t, ok)
	for i := range 2 {
		for j := range 3 {
			for k := range 4 {
				assert.Equal(t, d.At(i, j, k), value[i][j][k], "index %d,%d,%d", i, j, k)
			}
		}
	}

	_, err = NewDense(5).ToGomlxTensor()
	assert.Error(t, err)
}
