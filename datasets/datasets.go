// Package datasets turns labeled text files and question/answer CSV files
// into padded, masked batches for sequence models.
//
// Two datasets are provided:
//
// ClassifiedTextDataset
//   - One line-delimited file per class, one example per line.
//   - Every batch draws the same number of lines from each class and
//     interleaves them: example i of class c is row i*numClasses+c.
//   - Lines are tokenized, filtered against the vocabulary and packed by a
//     Packer (recurrent or convolutional layout).
//
// DialogueDataset
//   - One two-column CSV file (question, answer), no header.
//   - Questions feed the encoder; answers are packed twice, once behind a
//     start token as decoder input and once followed by an end token as the
//     prediction target.
//
// Both keep a cursor and reopen their files on every batch, skipping what
// was already consumed, so nothing stays open between calls. A failed batch
// leaves the cursor untouched.
//
// Batches are assembled as contiguous float32 buffers (Dense) and converted
// to gomlx tensors by Yield, which makes both datasets usable as gomlx
// train.Dataset.
package datasets

import "github.com/gomlx/gomlx/pkg/core/tensors"

// The datasets implement this interface in order to interact with GoMLX
// training loops.
type Dataset interface {
	Name() string
	HasNext() bool
	TotalExamples() int
	State() State

	// Reset starts a new epoch.
	Reset()

	// To implement gomlx's train.Dataset interface
	Yield() (any, []*tensors.Tensor, []*tensors.Tensor, error)
}

var (
	_ Dataset = (*ClassifiedTextDataset)(nil)
	_ Dataset = (*DialogueDataset)(nil)
)
