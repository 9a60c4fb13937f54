package api

import (
	"github.com/samcharles93/chunkmul/internal/report"
	"github.com/samcharles93/chunkmul/internal/schedule"
)

// MultiplyRequest asks for C = A*B. Workers and ChunkSize fall back to the
// server defaults when omitted; explicit non-positive values are rejected.
type MultiplyRequest struct {
	A         [][]float64 `json:"a"`
	B         [][]float64 `json:"b"`
	Workers   *int        `json:"workers,omitempty"`
	ChunkSize *int        `json:"chunk_size,omitempty"`
}

type MultiplyResponse struct {
	report.Report
	Object string      `json:"object"`
	C      [][]float64 `json:"c"`
}

type PlanRequest struct {
	Rows      int  `json:"rows"`
	Workers   *int `json:"workers,omitempty"`
	ChunkSize *int `json:"chunk_size,omitempty"`
}

type PlanResponse struct {
	Object    string           `json:"object"`
	Rows      int              `json:"rows"`
	Workers   int              `json:"workers"`
	ChunkSize int              `json:"chunk_size"`
	Ranges    []schedule.Range `json:"ranges"`
	RowCounts []int            `json:"row_counts"`
}

type RunList struct {
	Object string          `json:"object"`
	Data   []report.Report `json:"data"`
}

type DeletedRun struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Deleted bool   `json:"deleted"`
}

type ErrorBody struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Param   string `json:"param,omitempty"`
}
