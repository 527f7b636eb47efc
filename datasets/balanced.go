package datasets

import (
	"errors"
	"fmt"
	"slices"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/iter"
)

// balancedReader pulls the same number of lines from every class source.
// Sources are reopened on every pull and the already consumed lines are
// skipped, so nothing is held open between calls.
type balancedReader struct {
	paths  []string
	policy ShortSourcePolicy
	logger zerolog.Logger

	// counts holds the number of lines of each source, read once.
	counts []int

	cursor    int
	exhausted bool
}

// classPull is the uncommitted result of one balanced pull.
type classPull struct {
	// lines[c] holds the raw lines of class c, all of length perClass.
	lines     [][]string
	perClass  int
	exhausted bool
}

// examples is the number of examples the pull holds across all classes.
func (p *classPull) examples() int { return p.perClass * len(p.lines) }

func newBalancedReader(paths []string, policy ShortSourcePolicy, logger zerolog.Logger) (*balancedReader, error) {
	counts, err := iter.MapErr(paths, func(path *string) (int, error) {
		return countLines(*path)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return &balancedReader{
		paths:  paths,
		policy: policy,
		logger: logger,
		counts: counts,
	}, nil
}

func (r *balancedReader) numClasses() int { return len(r.paths) }

// total is the number of examples a strict pass can produce: the shortest
// source times the number of classes.
func (r *balancedReader) total() int {
	return slices.Min(r.counts) * len(r.paths)
}

// fullBatchLeft reports whether every source still has the lines a batch of
// n examples needs.
func (r *balancedReader) fullBatchLeft(n int) bool {
	numClasses := r.numClasses()
	if n <= 0 || n%numClasses != 0 {
		return false
	}
	return r.cursor/numClasses+n/numClasses <= slices.Min(r.counts)
}

// pull reads the next n examples without touching the cursor. Call commit
// once the lines were turned into a batch.
func (r *balancedReader) pull(n int) (*classPull, error) {
	numClasses := r.numClasses()
	if n <= 0 || n%numClasses != 0 {
		return nil, fmt.Errorf("%w: %d examples cannot be split across %d classes", ErrInvalidBatchSize, n, numClasses)
	}
	perClass := n / numClasses
	skip := r.cursor / numClasses

	p := &classPull{lines: make([][]string, numClasses), perClass: perClass}
	for c, path := range r.paths {
		lines, err := readLineWindow(path, skip, perClass)
		if errors.Is(err, ErrEndOfSource) {
			if r.policy == Strict {
				return nil, fmt.Errorf("%w: class %d: %w", ErrCursorOverrun, c, err)
			}
			r.logger.Warn().Int("class", c).Str("path", path).Int("skip", skip).
				Msg("reached the end of a file while skipping lines of previous batches")
			lines = nil
		} else if err != nil {
			return nil, err
		}

		if len(lines) < perClass {
			if r.policy == Strict {
				return nil, fmt.Errorf("%w: %w: class %d has %d of %d lines left in %s",
					ErrNoMoreData, ErrInsufficientLines, c, len(lines), perClass, path)
			}
			r.logger.Warn().Int("class", c).Str("path", path).Int("available", len(lines)).Int("requested", perClass).
				Msg("reached the end of a file while reading the current batch")
			p.perClass = min(p.perClass, len(lines))
			p.exhausted = true
		}
		p.lines[c] = lines
	}

	for c := range p.lines {
		p.lines[c] = p.lines[c][:p.perClass]
	}
	return p, nil
}

func (r *balancedReader) commit(p *classPull) {
	r.cursor += p.examples()
	if p.exhausted {
		r.exhausted = true
	}
}

func (r *balancedReader) reset() {
	r.cursor = 0
	r.exhausted = false
}
