// Package multiply runs the naive row-partitioned matrix product on a fixed
// set of goroutines.
//
// Each call partitions the output rows with schedule.Partition, starts one
// goroutine per worker, and waits for all of them before returning. A and B
// are shared read-only. Every worker writes only the rows of C it owns, so no
// locking is needed and the result does not depend on the worker count or
// chunk size.
package multiply

import (
	"context"
	"runtime"
	"sync"

	"github.com/samcharles93/chunkmul/internal/logger"
	"github.com/samcharles93/chunkmul/internal/matrix"
	"github.com/samcharles93/chunkmul/internal/schedule"
)

// RowFunc is called by a worker after it finishes a row of C. It runs on the
// worker goroutines and must be safe for concurrent use.
type RowFunc func(worker, row int)

// Options configures a single multiply call.
type Options struct {
	Workers int
	Chunk   int

	// OnRow is optional.
	OnRow RowFunc
}

// DefaultOptions uses one worker per available CPU and the default chunk.
func DefaultOptions() Options {
	workers := runtime.GOMAXPROCS(0)
	if workers < 1 {
		workers = 1
	}
	return Options{
		Workers: workers,
		Chunk:   schedule.DefaultChunk,
	}
}

// Multiply allocates C and computes C = A*B.
func Multiply(ctx context.Context, A, B *matrix.Mat, opts Options) (matrix.Mat, error) {
	if A == nil || B == nil {
		return matrix.Mat{}, schedule.InvalidArgument("multiply: nil operand")
	}
	if A.C != B.R {
		return matrix.Mat{}, schedule.InvalidArgument("multiply: dimension mismatch: A is %dx%d, B is %dx%d", A.R, A.C, B.R, B.C)
	}
	C, err := matrix.New(A.R, B.C)
	if err != nil {
		return matrix.Mat{}, schedule.InvalidArgument("multiply: %v", err)
	}
	if err := Run(ctx, &C, A, B, opts); err != nil {
		return matrix.Mat{}, err
	}
	return C, nil
}

// Run computes C = A*B into a caller-allocated C, overwriting every element.
// Shapes and options are validated before any goroutine starts; on such an
// error C is left untouched. If a worker fails, Run still waits for the
// others and then reports the failure of the lowest worker id. C is undefined
// in that case.
func Run(ctx context.Context, C, A, B *matrix.Mat, opts Options) error {
	if err := checkShapes(C, A, B); err != nil {
		return err
	}
	plan, err := schedule.Partition(C.R, opts.Workers, opts.Chunk)
	if err != nil {
		return err
	}

	log := logger.FromContext(ctx)
	log.Debug("starting matrix multiply",
		"workers", plan.Workers,
		"chunk", plan.Chunk,
		"rows", A.R,
		"inner", A.C,
		"cols", B.C,
	)

	if err := execute(C, A, B, plan, opts.OnRow); err != nil {
		log.Warn("matrix multiply failed", "error", err)
		return err
	}
	return nil
}

// RunPlan is Run with a precomputed plan. The plan must have been built for
// C.R rows.
func RunPlan(C, A, B *matrix.Mat, plan schedule.Plan, onRow RowFunc) error {
	if err := checkShapes(C, A, B); err != nil {
		return err
	}
	if plan.Rows != C.R {
		return schedule.InvalidArgument("multiply: plan covers %d rows, C has %d", plan.Rows, C.R)
	}
	if plan.Workers < 1 || (plan.Rows > 0 && len(plan.Worker(0)) == 0) {
		return schedule.InvalidArgument("multiply: plan was not built by schedule.Partition")
	}
	return execute(C, A, B, plan, onRow)
}

func execute(C, A, B *matrix.Mat, plan schedule.Plan, onRow RowFunc) error {
	failures := make([]error, plan.Workers)

	var wg sync.WaitGroup
	for w := 0; w < plan.Workers; w++ {
		ranges := plan.Worker(w)
		wg.Go(func() {
			failures[w] = runWorker(C, A, B, w, ranges, onRow)
		})
	}
	wg.Wait()

	for _, err := range failures {
		if err != nil {
			return err
		}
	}
	return nil
}

func runWorker(C, A, B *matrix.Mat, w int, ranges []schedule.Range, onRow RowFunc) (err error) {
	row := -1
	defer func() {
		if rec := recover(); rec != nil {
			err = workerError{worker: w, row: row, cause: rec}
		}
	}()
	for _, r := range ranges {
		for i := r.Start; i < r.End; i++ {
			row = i
			mulRows(C, A, B, i, i+1)
			if onRow != nil {
				onRow(w, i)
			}
		}
	}
	return nil
}

func checkShapes(C, A, B *matrix.Mat) error {
	if C == nil || A == nil || B == nil {
		return schedule.InvalidArgument("multiply: nil operand")
	}
	for _, op := range []struct {
		name string
		m    *matrix.Mat
	}{{"A", A}, {"B", B}, {"C", C}} {
		if err := checkLayout(op.name, op.m); err != nil {
			return err
		}
	}
	if A.C != B.R {
		return schedule.InvalidArgument("multiply: dimension mismatch: A is %dx%d, B is %dx%d", A.R, A.C, B.R, B.C)
	}
	if C.R != A.R || C.C != B.C {
		return schedule.InvalidArgument("multiply: C is %dx%d, want %dx%d", C.R, C.C, A.R, B.C)
	}
	return nil
}

func checkLayout(name string, m *matrix.Mat) error {
	if m.R < 0 || m.C < 0 {
		return schedule.InvalidArgument("multiply: %s has negative dimension %dx%d", name, m.R, m.C)
	}
	if m.R == 0 || m.C == 0 {
		return nil
	}
	if m.Stride < m.C {
		return schedule.InvalidArgument("multiply: %s stride %d is smaller than %d columns", name, m.Stride, m.C)
	}
	if need := (m.R-1)*m.Stride + m.C; len(m.Data) < need {
		return schedule.InvalidArgument("multiply: %s holds %d elements, need %d", name, len(m.Data), need)
	}
	return nil
}
