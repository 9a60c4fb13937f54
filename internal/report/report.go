// Package report measures a multiply call and formats the result for humans
// or machines.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Timing is the cost of one measured call.
type Timing struct {
	Wall time.Duration
	CPU  time.Duration
}

// Measure runs fn and records wall-clock and process CPU time around it.
// When fn fails the timing is discarded and only the error is returned.
func Measure(fn func() error) (Timing, error) {
	cpu0 := processCPU()
	start := time.Now()
	if err := fn(); err != nil {
		return Timing{}, err
	}
	wall := time.Since(start)
	return Timing{
		Wall: wall,
		CPU:  max(processCPU()-cpu0, 0),
	}, nil
}

// Params describes the multiply that was measured.
type Params struct {
	Rows    int
	Inner   int
	Cols    int
	Workers int
	Chunk   int
}

// Report is the outcome of one successful multiply.
type Report struct {
	ID        string    `json:"id"`
	Rows      int       `json:"rows"`
	Inner     int       `json:"inner"`
	Cols      int       `json:"cols"`
	Workers   int       `json:"workers"`
	Chunk     int       `json:"chunk_size"`
	WallMS    float64   `json:"wall_ms"`
	CPUMS     float64   `json:"cpu_ms"`
	Checksum  float64   `json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
}

// New builds a Report with a fresh id.
func New(p Params, t Timing, checksum float64, now time.Time) Report {
	return Report{
		ID:        uuid.NewString(),
		Rows:      p.Rows,
		Inner:     p.Inner,
		Cols:      p.Cols,
		Workers:   p.Workers,
		Chunk:     p.Chunk,
		WallMS:    Milliseconds(t.Wall),
		CPUMS:     Milliseconds(t.CPU),
		Checksum:  checksum,
		CreatedAt: now.UTC(),
	}
}

// Milliseconds converts d to fractional milliseconds.
func Milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

const banner = "******************************************************"

// WriteText prints the report in the banner layout of the classic OpenMP
// matrix multiply example.
func WriteText(w io.Writer, r Report) error {
	var sb strings.Builder
	fmt.Fprintln(&sb, banner)
	fmt.Fprintf(&sb, "\nParallel: %dx%d * %dx%d with %d workers, chunk %d\n",
		r.Rows, r.Inner, r.Inner, r.Cols, r.Workers, r.Chunk)
	fmt.Fprintf(&sb, "Wall: %.16g ms\n", r.WallMS)
	fmt.Fprintf(&sb, "CPU:  %.16g ms\n", r.CPUMS)
	fmt.Fprintf(&sb, "Checksum: %.16g\n", r.Checksum)
	fmt.Fprintln(&sb, banner)
	fmt.Fprintln(&sb, "Done.")
	_, err := io.WriteString(w, sb.String())
	return err
}

// WriteJSON writes the report as indented JSON followed by a newline.
func WriteJSON(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// Write dispatches on format: "text" or "json".
func Write(w io.Writer, format string, r Report) error {
	switch format {
	case "", "text":
		return WriteText(w, r)
	case "json":
		return WriteJSON(w, r)
	default:
		return fmt.Errorf("unknown output format %q (want text or json)", format)
	}
}
