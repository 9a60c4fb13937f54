package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/chunkmul/internal/logger"
	"github.com/samcharles93/chunkmul/internal/matrix"
	"github.com/samcharles93/chunkmul/internal/multiply"
	"github.com/samcharles93/chunkmul/internal/report"
)

func runCmd() *cli.Command {
	var (
		trace  bool
		verify bool
		seed   int64
		output string
	)

	flags := append([]cli.Flag{sizeFlag()}, scheduleFlags()...)
	flags = append(flags,
		&cli.BoolFlag{
			Name:        "trace",
			Usage:       "log every finished row with its worker (needs --debug)",
			Destination: &trace,
		},
		&cli.BoolFlag{
			Name:        "verify",
			Usage:       "compare the result against the sequential kernel",
			Destination: &verify,
		},
		&cli.Int64Flag{
			Name:        "seed",
			Usage:       "fill A and B with random values from this seed (0 = A[i][j]=i+j, B[i][j]=i*j)",
			Destination: &seed,
		},
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "report format (text, json)",
			Value:       "text",
			Destination: &output,
		},
	)

	return &cli.Command{
		Name:  "run",
		Usage: "Multiply two square matrices and report the elapsed time",
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyScheduleConfig(cmd, cfg)
			applyOutputConfig(cmd, cfg, &output)
			return runMultiply(ctx, os.Stdout, runParams{
				size:    size,
				workers: workers,
				chunk:   chunkSize,
				seed:    seed,
				trace:   trace,
				verify:  verify,
				output:  output,
			})
		},
	}
}

type runParams struct {
	size    int
	workers int
	chunk   int
	seed    int64
	trace   bool
	verify  bool
	output  string
}

func runMultiply(ctx context.Context, w io.Writer, p runParams) error {
	log := logger.FromContext(ctx)

	if p.size < 0 {
		return cli.Exit(fmt.Sprintf("error: size must be >= 0, got %d", p.size), 1)
	}

	log.Info("initializing matrices", "size", p.size, "seed", p.seed)
	A, B, err := referenceOperands(p.size, p.seed)
	if err != nil {
		return cli.Exit(fmt.Sprintf("error: allocate matrices: %v", err), 1)
	}
	C, err := matrix.New(p.size, p.size)
	if err != nil {
		return cli.Exit(fmt.Sprintf("error: allocate result: %v", err), 1)
	}

	opts := multiply.Options{Workers: p.workers, Chunk: p.chunk}
	if p.trace {
		if !log.Enabled(slog.LevelDebug) {
			log.Warn("--trace has no effect below debug level")
		}
		opts.OnRow = func(worker, row int) {
			log.Debug("worker did row", "worker", worker, "row", row)
		}
	}

	log.Info("starting matrix multiply", "workers", p.workers, "chunk", p.chunk)
	timing, err := report.Measure(func() error {
		return multiply.Run(ctx, &C, &A, &B, opts)
	})
	if err != nil {
		return cli.Exit(fmt.Sprintf("error: multiply: %v", err), 1)
	}

	if p.verify {
		ref := matrix.MustNew(p.size, p.size)
		start := time.Now()
		if err := multiply.Sequential(&ref, &A, &B); err != nil {
			return cli.Exit(fmt.Sprintf("error: sequential multiply: %v", err), 1)
		}
		if !matrix.Equal(&ref, &C) {
			return cli.Exit(fmt.Sprintf("error: verification failed: max abs diff %g", matrix.MaxAbsDiff(&ref, &C)), 1)
		}
		log.Info("result matches sequential kernel", "sequential", time.Since(start))
	}

	r := report.New(report.Params{
		Rows:    A.R,
		Inner:   A.C,
		Cols:    B.C,
		Workers: p.workers,
		Chunk:   p.chunk,
	}, timing, C.Sum(), time.Now())
	if err := report.Write(w, p.output, r); err != nil {
		return cli.Exit(fmt.Sprintf("error: %v", err), 1)
	}
	return nil
}

// referenceOperands builds the n x n inputs. seed 0 reproduces the classic
// A[i][j] = i+j, B[i][j] = i*j data set.
func referenceOperands(n int, seed int64) (matrix.Mat, matrix.Mat, error) {
	A, err := matrix.New(n, n)
	if err != nil {
		return matrix.Mat{}, matrix.Mat{}, err
	}
	B, err := matrix.New(n, n)
	if err != nil {
		return matrix.Mat{}, matrix.Mat{}, err
	}
	if seed == 0 {
		matrix.FillSum(&A)
		matrix.FillProduct(&B)
	} else {
		matrix.FillRand(&A, seed)
		matrix.FillRand(&B, seed+1)
	}
	return A, B, nil
}
