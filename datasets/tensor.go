package datasets

import (
	"fmt"

	"github.com/gomlx/gomlx/pkg/core/tensors"
)

// Dense is a contiguous row-major float32 buffer with its shape. Batches are
// assembled in Dense form and converted to gomlx tensors on demand.
type Dense struct {
	Data  []float32
	Shape []int
}

// NewDense allocates a zeroed buffer of the given shape.
func NewDense(shape ...int) *Dense {
	size := 1
	for _, d := range shape {
		size *= d
	}
	s := make([]int, len(shape))
	copy(s, shape)
	return &Dense{Data: make([]float32, size), Shape: s}
}

// Rank returns the number of axes.
func (d *Dense) Rank() int { return len(d.Shape) }

func (d *Dense) offset(idx []int) int {
	if len(idx) != len(d.Shape) {
		panic(fmt.Sprintf("datasets: %d indices for a rank %d tensor", len(idx), len(d.Shape)))
	}
	off := 0
	for axis, i := range idx {
		if i < 0 || i >= d.Shape[axis] {
			panic(fmt.Sprintf("datasets: index %d out of range for axis %d of shape %v", i, axis, d.Shape))
		}
		off = off*d.Shape[axis] + i
	}
	return off
}

// At returns the value at idx.
func (d *Dense) At(idx ...int) float32 { return d.Data[d.offset(idx)] }

// Set writes v at idx.
func (d *Dense) Set(v float32, idx ...int) { d.Data[d.offset(idx)] = v }

// Row returns a view of the last axis at the given leading indices.
func (d *Dense) Row(idx ...int) []float32 {
	full := append(append([]int(nil), idx...), 0)
	start := d.offset(full)
	return d.Data[start : start+d.Shape[len(d.Shape)-1]]
}

// ToGomlxTensor converts the buffer into a gomlx tensor of the same shape.
func (d *Dense) ToGomlxTensor() (*tensors.Tensor, error) {
	switch len(d.Shape) {
	case 2:
		data := make([][]float32, d.Shape[0])
		for i := range data {
			data[i] = d.Data[i*d.Shape[1] : (i+1)*d.Shape[1]]
		}
		return tensors.FromAnyValue(data), nil
	case 3:
		rows, cols := d.Shape[1], d.Shape[2]
		data := make([][][]float32, d.Shape[0])
		idx := 0
		for i := range data {
			data[i] = make([][]float32, rows)
			for j := range rows {
				data[i][j] = d.Data[idx : idx+cols]
				idx += cols
			}
		}
		return tensors.FromAnyValue(data), nil
	case 4:
		planes, rows, cols := d.Shape[1], d.Shape[2], d.Shape[3]
		data := make([][][][]float32, d.Shape[0])
		idx := 0
		for i := range data {
			data[i] = make([][][]float32, planes)
			for p := range planes {
				data[i][p] = make([][]float32, rows)
				for j := range rows {
					data[i][p][j] = d.Data[idx : idx+cols]
					idx += cols
				}
			}
		}
		return tensors.FromAnyValue(data), nil
	}
	return nil, fmt.Errorf("unsupported tensor rank %d", len(d.Shape))
}

// toGomlxTensors converts each buffer in order.
func toGomlxTensors(ds ...*Dense) ([]*tensors.Tensor, error) {
	out := make([]*tensors.Tensor, 0, len(ds))
	for _, d := range ds {
		t, err := d.ToGomlxTensor()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
