package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/chunkmul/internal/schedule"
)

func planCmd() *cli.Command {
	var (
		output string
		ranges bool
	)

	flags := append([]cli.Flag{sizeFlag()}, scheduleFlags()...)
	flags = append(flags,
		&cli.BoolFlag{
			Name:        "ranges",
			Usage:       "list every block instead of per-worker totals",
			Destination: &ranges,
		},
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "output format (text, json)",
			Value:       "text",
			Destination: &output,
		},
	)

	return &cli.Command{
		Name:  "plan",
		Usage: "Show which rows each worker owns",
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyScheduleConfig(cmd, cfg)
			applyOutputConfig(cmd, cfg, &output)

			plan, err := schedule.Partition(size, workers, chunkSize)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			if err := writePlan(os.Stdout, plan, output, ranges); err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			return nil
		},
	}
}

func writePlan(w io.Writer, plan schedule.Plan, format string, ranges bool) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(plan)
	case "text", "":
	default:
		return fmt.Errorf("unknown output format %q", format)
	}

	fmt.Fprintf(w, "Rows: %d  Workers: %d  Chunk: %d\n\n", plan.Rows, plan.Workers, plan.Chunk)
	if ranges {
		fmt.Fprintf(w, "%-8s %8s %8s %6s\n", "Worker", "Start", "End", "Rows")
		for _, r := range plan.Ranges {
			fmt.Fprintf(w, "%-8d %8d %8d %6d\n", r.Worker, r.Start, r.End, r.Len())
		}
		return nil
	}
	fmt.Fprintf(w, "%-8s %8s %6s\n", "Worker", "Blocks", "Rows")
	for k := range plan.Workers {
		fmt.Fprintf(w, "%-8d %8d %6d\n", k, len(plan.Worker(k)), plan.RowCount(k))
	}
	return nil
}
