package matrix

import (
	"errors"
	"fmt"
)

var (
	// ErrBadShape is returned when a matrix cannot be built with the
	// requested dimensions or data.
	ErrBadShape = errors.New("matrix: invalid shape")

	// ErrOutOfRange is returned by At and Set for indices outside the matrix.
	ErrOutOfRange = errors.New("matrix: index out of range")
)

type shapeError struct {
	r, c int
	row  int // 1-based offending row for ragged input, 0 otherwise
	msg  string
}

func (e shapeError) Error() string {
	if e.row > 0 {
		return fmt.Sprintf("matrix: %s at row %d of %dx%d", e.msg, e.row-1, e.r, e.c)
	}
	return fmt.Sprintf("matrix: %s (%dx%d)", e.msg, e.r, e.c)
}

func (e shapeError) Unwrap() error {
	return ErrBadShape
}

type rangeError struct {
	i, j int
	r, c int
}

func (e rangeError) Error() string {
	return fmt.Sprintf("matrix: index (%d,%d) out of range for %dx%d", e.i, e.j, e.r, e.c)
}

func (e rangeError) Unwrap() error {
	return ErrOutOfRange
}
