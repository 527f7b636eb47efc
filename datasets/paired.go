package datasets

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// pairedReader pulls consecutive rows from one question/answer source. The
// cursor counts rows.
type pairedReader struct {
	path   string
	policy ShortSourcePolicy
	logger zerolog.Logger
	rows   int

	cursor    int
	exhausted bool
}

// pairPull is the uncommitted result of one paired pull.
type pairPull struct {
	pairs     []Pair
	exhausted bool
}

func newPairedReader(path string, policy ShortSourcePolicy, logger zerolog.Logger) (*pairedReader, error) {
	rows, err := countRows(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return &pairedReader{path: path, policy: policy, logger: logger, rows: rows}, nil
}

// fullBatchLeft reports whether n more rows are left.
func (r *pairedReader) fullBatchLeft(n int) bool {
	return n > 0 && r.cursor+n <= r.rows
}

func (r *pairedReader) pull(n int) (*pairPull, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d rows requested", ErrInvalidBatchSize, n)
	}

	pairs, err := readPairWindow(r.path, r.cursor, n)
	if errors.Is(err, ErrEndOfSource) {
		if r.policy == Strict {
			return nil, fmt.Errorf("%w: %w", ErrCursorOverrun, err)
		}
		r.logger.Warn().Str("path", r.path).Int("skip", r.cursor).
			Msg("reached the end of a file while skipping rows of previous batches")
		return &pairPull{exhausted: true}, nil
	}
	if err != nil {
		return nil, err
	}

	p := &pairPull{pairs: pairs}
	if len(pairs) < n {
		if r.policy == Strict {
			return nil, fmt.Errorf("%w: %w: %d of %d rows left in %s",
				ErrNoMoreData, ErrInsufficientLines, len(pairs), n, r.path)
		}
		r.logger.Warn().Str("path", r.path).Int("available", len(pairs)).Int("requested", n).
			Msg("reached the end of a file while reading the current batch")
		p.exhausted = true
	}
	return p, nil
}

func (r *pairedReader) commit(p *pairPull) {
	r.cursor += len(p.pairs)
	if p.exhausted {
		r.exhausted = true
	}
}

func (r *pairedReader) reset() {
	r.cursor = 0
	r.exhausted = false
}
