package multiply

import "github.com/samcharles93/chunkmul/internal/matrix"

// mulRows computes rows [rs, re) of C = A*B. Rows ascend, columns ascend,
// and each cell is a plain sequential sum over k = 0..m-1 started from zero.
func mulRows(C, A, B *matrix.Mat, rs, re int) {
	m := A.C
	p := B.C
	aStride := A.Stride
	bStride := B.Stride
	cStride := C.Stride
	aData := A.Data
	bData := B.Data
	cData := C.Data

	for i := rs; i < re; i++ {
		aRow := aData[i*aStride : i*aStride+m]
		cRow := cData[i*cStride : i*cStride+p]
		for j := 0; j < p; j++ {
			var sum float64
			for k, aik := range aRow {
				// The explicit conversion rounds the product on its own,
				// which keeps the compiler from fusing it into an FMA.
				sum += float64(aik * bData[k*bStride+j])
			}
			cRow[j] = sum
		}
	}
}

// Sequential computes C = A*B on the calling goroutine with the same
// evaluation order as the parallel path.
func Sequential(C, A, B *matrix.Mat) error {
	if err := checkShapes(C, A, B); err != nil {
		return err
	}
	mulRows(C, A, B, 0, C.R)
	return nil
}
