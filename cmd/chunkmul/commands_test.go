package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/samcharles93/chunkmul/internal/logger"
	"github.com/samcharles93/chunkmul/internal/report"
	"github.com/samcharles93/chunkmul/internal/schedule"
)

func quietContext() context.Context {
	return logger.WithContext(context.Background(), logger.Discard())
}

func TestRunMultiplyTextReport(t *testing.T) {
	var out bytes.Buffer
	err := runMultiply(quietContext(), &out, runParams{
		size:    40,
		workers: 3,
		chunk:   4,
		verify:  true,
		trace:   true,
		output:  "text",
	})
	require.NoError(t, err)

	text := out.String()
	require.Contains(t, text, "Parallel: 40x40 * 40x40 with 3 workers, chunk 4")
	require.Contains(t, text, "Done.")
}

func TestRunMultiplyJSONChecksum(t *testing.T) {
	const n = 12
	var out bytes.Buffer
	err := runMultiply(quietContext(), &out, runParams{size: n, workers: 2, chunk: 5, output: "json"})
	require.NoError(t, err)

	var r report.Report
	require.NoError(t, json.Unmarshal(out.Bytes(), &r))
	require.Equal(t, 2, r.Workers)
	require.Equal(t, 5, r.Chunk)

	// C[i][j] = j * sum_k (i+k)*k
	var want float64
	for i := range n {
		var s float64
		for k := range n {
			s += float64((i + k) * k)
		}
		for j := range n {
			want += float64(j) * s
		}
	}
	require.Equal(t, want, r.Checksum)
}

func TestRunMultiplyRejectsBadInput(t *testing.T) {
	var out bytes.Buffer
	require.Error(t, runMultiply(quietContext(), &out, runParams{size: -1, workers: 1, chunk: 1}))
	require.Error(t, runMultiply(quietContext(), &out, runParams{size: 4, workers: 0, chunk: 1}))
	require.Error(t, runMultiply(quietContext(), &out, runParams{size: 4, workers: 1, chunk: 1, output: "xml"}))
}

func TestWritePlan(t *testing.T) {
	plan, err := schedule.Partition(25, 2, 5)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, writePlan(&out, plan, "text", false))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Equal(t, "Rows: 25  Workers: 2  Chunk: 5", lines[0])
	require.Equal(t, []string{"0", "3", "15"}, strings.Fields(lines[len(lines)-2]))
	require.Equal(t, []string{"1", "2", "10"}, strings.Fields(lines[len(lines)-1]))

	out.Reset()
	require.NoError(t, writePlan(&out, plan, "text", true))
	require.Contains(t, out.String(), "Start")
	require.Equal(t, []string{"1", "15", "20", "5"}, strings.Fields(lastLine(out.String())))

	out.Reset()
	require.NoError(t, writePlan(&out, plan, "json", false))
	var decoded schedule.Plan
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	require.Equal(t, plan.Ranges, decoded.Ranges)

	require.Error(t, writePlan(&out, plan, "yaml", false))
}

func TestRunBench(t *testing.T) {
	var out bytes.Buffer
	err := runBench(quietContext(), &out, benchParams{
		size:    16,
		chunk:   3,
		workers: []int{1, 2},
		warmup:  1,
		runs:    2,
	})
	require.NoError(t, err)
	text := out.String()
	require.Contains(t, text, "=== Results ===")
	require.Contains(t, text, "Memory:")

	err = runBench(quietContext(), &out, benchParams{size: 4, chunk: 1, workers: []int{0}, runs: 1})
	require.Error(t, err)
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return lines[len(lines)-1]
}
