package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/chunkmul/internal/multiply"
	"github.com/samcharles93/chunkmul/internal/schedule"
)

var (
	cfg Config

	workers   int
	chunkSize int
	size      int
	logLevel  string
	logFormat string
	debug     bool
)

func scheduleFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:        "workers",
			Aliases:     []string{"w", "threads"},
			Usage:       "number of worker goroutines",
			Value:       multiply.DefaultOptions().Workers,
			Destination: &workers,
		},
		&cli.IntFlag{
			Name:        "chunk",
			Aliases:     []string{"chunk-size"},
			Usage:       "rows per block dealt round-robin to workers",
			Value:       schedule.DefaultChunk,
			Destination: &chunkSize,
		},
	}
}

func sizeFlag() cli.Flag {
	return &cli.IntFlag{
		Name:        "size",
		Aliases:     []string{"n"},
		Usage:       "dimension of the square matrices",
		Value:       800,
		Destination: &size,
	}
}

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &debug,
		},
	}
}

// parseIntList parses "1,2,4" into []int{1, 2, 4}.
func parseIntList(s string) ([]int, error) {
	var out []int
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		v, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", field)
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty list")
	}
	return out, nil
}
