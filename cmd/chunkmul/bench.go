package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/chunkmul/internal/logger"
	"github.com/samcharles93/chunkmul/internal/matrix"
	"github.com/samcharles93/chunkmul/internal/multiply"
	"github.com/samcharles93/chunkmul/internal/report"
)

func benchCmd() *cli.Command {
	var (
		warmupRuns  int64
		benchRuns   int64
		workersList string
	)

	flags := append([]cli.Flag{sizeFlag()}, scheduleFlags()...)
	flags = append(flags,
		&cli.StringFlag{
			Name:        "workers-list",
			Usage:       "comma separated worker counts to compare (overrides --workers)",
			Destination: &workersList,
		},
		&cli.Int64Flag{
			Name:        "warmup",
			Usage:       "number of warmup runs per worker count",
			Value:       1,
			Destination: &warmupRuns,
		},
		&cli.Int64Flag{
			Name:        "runs",
			Usage:       "number of timed runs per worker count",
			Value:       3,
			Destination: &benchRuns,
		},
	)

	return &cli.Command{
		Name:    "bench",
		Aliases: []string{"benchmark"},
		Usage:   "Compare wall and CPU time across worker counts",
		Flags:   flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyScheduleConfig(cmd, cfg)

			counts := []int{workers}
			if workersList != "" {
				list, err := parseIntList(workersList)
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: --workers-list: %v", err), 1)
				}
				counts = list
			}
			if benchRuns < 1 {
				return cli.Exit("error: --runs must be >= 1", 1)
			}

			return runBench(ctx, os.Stdout, benchParams{
				size:    size,
				chunk:   chunkSize,
				workers: counts,
				warmup:  int(warmupRuns),
				runs:    int(benchRuns),
			})
		},
	}
}

type benchParams struct {
	size    int
	chunk   int
	workers []int
	warmup  int
	runs    int
}

type benchResult struct {
	Workers int
	Wall    time.Duration
	CPU     time.Duration
}

func runBench(ctx context.Context, w io.Writer, p benchParams) error {
	log := logger.FromContext(ctx)

	A, B, err := referenceOperands(p.size, 0)
	if err != nil {
		return cli.Exit(fmt.Sprintf("error: allocate matrices: %v", err), 1)
	}
	C, err := matrix.New(p.size, p.size)
	if err != nil {
		return cli.Exit(fmt.Sprintf("error: allocate result: %v", err), 1)
	}

	fmt.Fprintln(w, "=== chunkmul benchmark ===")
	fmt.Fprintf(w, "Size:       %dx%d\n", p.size, p.size)
	fmt.Fprintf(w, "Chunk:      %d\n", p.chunk)
	fmt.Fprintf(w, "CPUs:       %d\n", runtime.NumCPU())
	fmt.Fprintf(w, "GOMAXPROCS: %d\n", runtime.GOMAXPROCS(0))
	fmt.Fprintf(w, "Warmup:     %d runs\n", p.warmup)
	fmt.Fprintf(w, "Runs:       %d\n", p.runs)
	fmt.Fprintln(w)

	results := make([]benchResult, 0, len(p.workers))
	for _, n := range p.workers {
		opts := multiply.Options{Workers: n, Chunk: p.chunk}
		for i := range p.warmup {
			log.Info("warmup run", "workers", n, "run", i+1)
			if err := multiply.Run(ctx, &C, &A, &B, opts); err != nil {
				return cli.Exit(fmt.Sprintf("error: warmup run %d with %d workers: %v", i+1, n, err), 1)
			}
		}

		var total report.Timing
		for i := range p.runs {
			log.Info("benchmark run", "workers", n, "run", i+1)
			t, err := report.Measure(func() error {
				return multiply.Run(ctx, &C, &A, &B, opts)
			})
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: benchmark run %d with %d workers: %v", i+1, n, err), 1)
			}
			total.Wall += t.Wall
			total.CPU += t.CPU
		}
		results = append(results, benchResult{
			Workers: n,
			Wall:    total.Wall / time.Duration(p.runs),
			CPU:     total.CPU / time.Duration(p.runs),
		})
	}

	writeBenchTable(w, results)

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	fmt.Fprintf(w, "\nMemory: %.1f MB alloc, %.1f MB sys\n",
		float64(mem.Alloc)/(1024*1024),
		float64(mem.Sys)/(1024*1024))
	return nil
}

// writeBenchTable prints average timings. Speedup is relative to the first
// worker count.
func writeBenchTable(w io.Writer, results []benchResult) {
	fmt.Fprintln(w, "=== Results ===")
	fmt.Fprintf(w, "%-8s %12s %12s %8s\n", "Workers", "Wall ms", "CPU ms", "Speedup")
	if len(results) == 0 {
		return
	}
	base := results[0].Wall
	for _, r := range results {
		speedup := "-"
		if r.Wall > 0 && base > 0 {
			speedup = strconv.FormatFloat(float64(base)/float64(r.Wall), 'f', 2, 64) + "x"
		}
		fmt.Fprintf(w, "%-8d %12.3f %12.3f %8s\n",
			r.Workers, report.Milliseconds(r.Wall), report.Milliseconds(r.CPU), speedup)
	}
}
