package matrix

import (
	"math"
	"math/rand"
)

// Mat represents a dense row-major matrix of float64 values.
//
// R and C are the number of rows and columns. Stride is the number of
// elements between the starts of two consecutive rows; for matrices built by
// this package it equals C. Data holds the flattened values.
//
// At and Set are bounds checked and report ErrOutOfRange. Row and direct
// Data access are for hot loops and rely on Go's slice checks only.
type Mat struct {
	R, C   int
	Stride int
	Data   []float64
}

// New allocates a zero initialised r x c matrix.
func New(r, c int) (Mat, error) {
	if r < 0 || c < 0 {
		return Mat{}, shapeError{r: r, c: c, msg: "negative dimension"}
	}
	if r != 0 && (r*c)/r != c {
		return Mat{}, shapeError{r: r, c: c, msg: "matrix too large"}
	}
	return Mat{
		R:      r,
		C:      c,
		Stride: c,
		Data:   make([]float64, r*c),
	}, nil
}

// MustNew is New for dimensions known to be valid. It panics otherwise.
func MustNew(r, c int) Mat {
	m, err := New(r, c)
	if err != nil {
		panic(err)
	}
	return m
}

// NewFromData wraps existing row-major data. len(data) must equal r*c.
func NewFromData(r, c int, data []float64) (Mat, error) {
	if r < 0 || c < 0 {
		return Mat{}, shapeError{r: r, c: c, msg: "negative dimension"}
	}
	if len(data) != r*c {
		return Mat{}, shapeError{r: r, c: c, msg: "data length mismatch"}
	}
	return Mat{
		R:      r,
		C:      c,
		Stride: c,
		Data:   data,
	}, nil
}

// FromRows copies a slice of rows into a new matrix. Every row must have the
// same length. An empty input yields a 0x0 matrix.
func FromRows(rows [][]float64) (Mat, error) {
	if len(rows) == 0 {
		return Mat{}, nil
	}
	c := len(rows[0])
	m, err := New(len(rows), c)
	if err != nil {
		return Mat{}, err
	}
	for i, row := range rows {
		if len(row) != c {
			return Mat{}, shapeError{r: len(rows), c: c, msg: "ragged row", row: i + 1}
		}
		copy(m.Data[i*m.Stride:i*m.Stride+c], row)
	}
	return m, nil
}

// Identity returns the n x n identity matrix.
func Identity(n int) (Mat, error) {
	m, err := New(n, n)
	if err != nil {
		return Mat{}, err
	}
	for i := 0; i < n; i++ {
		m.Data[i*m.Stride+i] = 1
	}
	return m, nil
}

// At returns the element at row i, column j.
func (m *Mat) At(i, j int) (float64, error) {
	if err := m.check(i, j); err != nil {
		return 0, err
	}
	return m.Data[i*m.Stride+j], nil
}

// Set stores v at row i, column j.
func (m *Mat) Set(i, j int, v float64) error {
	if err := m.check(i, j); err != nil {
		return err
	}
	m.Data[i*m.Stride+j] = v
	return nil
}

func (m *Mat) check(i, j int) error {
	if i < 0 || i >= m.R || j < 0 || j >= m.C {
		return rangeError{i: i, j: j, r: m.R, c: m.C}
	}
	return nil
}

// Row returns a view of the i-th row. Writes through the slice update the
// matrix.
func (m *Mat) Row(i int) []float64 {
	if i < 0 || i >= m.R {
		panic(rangeError{i: i, j: 0, r: m.R, c: m.C})
	}
	start := i * m.Stride
	return m.Data[start : start+m.C]
}

// Rows copies the matrix out as a slice of rows.
func (m *Mat) Rows() [][]float64 {
	out := make([][]float64, m.R)
	for i := range out {
		out[i] = append([]float64(nil), m.Row(i)...)
	}
	return out
}

// Empty reports whether the matrix holds no elements.
func (m *Mat) Empty() bool {
	return m.R == 0 || m.C == 0
}

// Sum adds every element in row-major order. Used as a cheap checksum.
func (m *Mat) Sum() float64 {
	var s float64
	for i := 0; i < m.R; i++ {
		for _, v := range m.Row(i) {
			s += v
		}
	}
	return s
}

// Equal reports whether a and b have the same shape and bit-identical
// elements.
func Equal(a, b *Mat) bool {
	if a.R != b.R || a.C != b.C {
		return false
	}
	for i := 0; i < a.R; i++ {
		ra, rb := a.Row(i), b.Row(i)
		for j := range ra {
			if math.Float64bits(ra[j]) != math.Float64bits(rb[j]) {
				return false
			}
		}
	}
	return true
}

// MaxAbsDiff returns the largest absolute element difference between two
// matrices of the same shape, or +Inf when the shapes differ.
func MaxAbsDiff(a, b *Mat) float64 {
	if a.R != b.R || a.C != b.C {
		return math.Inf(1)
	}
	var maxAbs float64
	for i := 0; i < a.R; i++ {
		ra, rb := a.Row(i), b.Row(i)
		for j := range ra {
			if d := math.Abs(ra[j] - rb[j]); d > maxAbs {
				maxAbs = d
			}
		}
	}
	return maxAbs
}

// FillSum sets m[i][j] = i+j.
func FillSum(m *Mat) {
	for i := 0; i < m.R; i++ {
		row := m.Row(i)
		for j := range row {
			row[j] = float64(i + j)
		}
	}
}

// FillProduct sets m[i][j] = i*j.
func FillProduct(m *Mat) {
	for i := 0; i < m.R; i++ {
		row := m.Row(i)
		for j := range row {
			row[j] = float64(i * j)
		}
	}
}

// FillRand fills the matrix with reproducible pseudo-random values in
// [-1, 1). The same seed always yields the same matrix.
func FillRand(m *Mat, seed int64) {
	rng := rand.New(rand.NewSource(seed))
	for i := 0; i < m.R; i++ {
		row := m.Row(i)
		for j := range row {
			row[j] = rng.Float64()*2 - 1
		}
	}
}
