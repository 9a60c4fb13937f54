// Package schedule computes static, chunked row assignments for a fixed set
// of workers.
//
// Rows are cut into blocks of Chunk rows and dealt round-robin: worker k owns
// blocks k, k+w, k+2w and so on. Only the last block of the whole range can
// be shorter than Chunk. The assignment is computed ahead of time and never
// rebalanced.
package schedule

import (
	"errors"
	"fmt"
)

// DefaultChunk is the block size used when none is configured.
const DefaultChunk = 10

// ErrInvalidArgument is returned for row, worker or chunk values that cannot
// be scheduled.
var ErrInvalidArgument = errors.New("invalid_argument")

type invalidArgumentError struct {
	msg string
}

func (e invalidArgumentError) Error() string {
	return e.msg
}

func (e invalidArgumentError) Unwrap() error {
	return ErrInvalidArgument
}

// InvalidArgument builds an error that matches ErrInvalidArgument.
func InvalidArgument(format string, args ...any) error {
	return invalidArgumentError{msg: fmt.Sprintf(format, args...)}
}

// Range is a half-open span of rows [Start, End) owned by Worker.
type Range struct {
	Worker int `json:"worker"`
	Start  int `json:"start"`
	End    int `json:"end"`
}

// Len returns the number of rows in the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// Plan is the full assignment for one multiply call. Ranges are ordered by
// worker, then by ascending start row.
type Plan struct {
	Rows    int     `json:"rows"`
	Workers int     `json:"workers"`
	Chunk   int     `json:"chunk"`
	Ranges  []Range `json:"ranges"`

	// offsets[k] is the index in Ranges of worker k's first range.
	offsets []int
}

// Partition assigns rows [0, rows) to workers in chunk-sized blocks.
func Partition(rows, workers, chunk int) (Plan, error) {
	switch {
	case rows < 0:
		return Plan{}, InvalidArgument("rows must be >= 0, got %d", rows)
	case workers < 1:
		return Plan{}, InvalidArgument("worker count must be >= 1, got %d", workers)
	case chunk < 1:
		return Plan{}, InvalidArgument("chunk size must be >= 1, got %d", chunk)
	}

	blocks := (rows + chunk - 1) / chunk
	p := Plan{
		Rows:    rows,
		Workers: workers,
		Chunk:   chunk,
		Ranges:  make([]Range, 0, blocks),
		offsets: make([]int, workers+1),
	}
	for w := 0; w < workers; w++ {
		p.offsets[w] = len(p.Ranges)
		for b := w; b < blocks; b += workers {
			start := b * chunk
			p.Ranges = append(p.Ranges, Range{
				Worker: w,
				Start:  start,
				End:    min(start+chunk, rows),
			})
		}
	}
	p.offsets[workers] = len(p.Ranges)
	return p, nil
}

// Worker returns the ranges owned by worker w in ascending row order. The
// result is empty for workers that received no blocks or are out of range.
func (p Plan) Worker(w int) []Range {
	if w < 0 || w >= p.Workers || len(p.offsets) != p.Workers+1 {
		return nil
	}
	return p.Ranges[p.offsets[w]:p.offsets[w+1]]
}

// RowCount returns the number of rows owned by worker w.
func (p Plan) RowCount(w int) int {
	n := 0
	for _, r := range p.Worker(w) {
		n += r.Len()
	}
	return n
}

// Owner returns the worker that owns row i, or -1 when i is outside the plan.
func (p Plan) Owner(i int) int {
	if i < 0 || i >= p.Rows {
		return -1
	}
	return (i / p.Chunk) % p.Workers
}
