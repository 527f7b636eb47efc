package datasets

import "errors"

var (
	// ErrInvalidBatchSize is returned when a batch cannot be split evenly
	// across the class sources, or is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size")

	// ErrCursorOverrun is returned when skipping already consumed lines runs
	// past the end of a source.
	ErrCursorOverrun = errors.New("cursor overruns source")

	// ErrInsufficientLines is returned in strict mode when a source has fewer
	// lines left than the batch needs.
	ErrInsufficientLines = errors.New("insufficient lines in source")

	// ErrVectorization is returned when a filtered token sequence cannot be
	// turned into vectors. The whole batch is discarded.
	ErrVectorization = errors.New("vectorization failed")

	// ErrNoMoreData is returned by Next after the dataset is exhausted. In
	// strict mode it is wrapped together with ErrInsufficientLines.
	// Call Reset to start over.
	ErrNoMoreData = errors.New("no more data")

	// ErrInvalidConfig is returned by constructors for missing or
	// inconsistent options.
	ErrInvalidConfig = errors.New("invalid dataset configuration")

	// ErrEndOfSource is returned by the source readers when a skip runs past
	// the last line.
	ErrEndOfSource = errors.New("end of source")
)
