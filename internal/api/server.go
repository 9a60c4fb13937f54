package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/labstack/echo/v5"

	"github.com/samcharles93/chunkmul/internal/logger"
	"github.com/samcharles93/chunkmul/internal/matrix"
	"github.com/samcharles93/chunkmul/internal/multiply"
	"github.com/samcharles93/chunkmul/internal/report"
	"github.com/samcharles93/chunkmul/internal/schedule"
)

// DefaultMaxElements caps the total number of elements across A, B and C in
// one request.
const DefaultMaxElements = 16 << 20

type Config struct {
	Workers     int
	ChunkSize   int
	MaxElements int
	MaxRuns     int
}

type Server struct {
	store *RunStore
	cfg   Config
	log   logger.Logger
	clock func() time.Time
}

func NewServer(store *RunStore, cfg Config, log logger.Logger) *Server {
	def := multiply.DefaultOptions()
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = def.Chunk
	}
	if cfg.MaxElements <= 0 {
		cfg.MaxElements = DefaultMaxElements
	}
	if store == nil {
		store = NewRunStore(cfg.MaxRuns)
	}
	if log == nil {
		log = logger.Default()
	}
	return &Server{
		store: store,
		cfg:   cfg,
		log:   log,
		clock: time.Now,
	}
}

func (s *Server) Register(e *echo.Echo) {
	e.GET("/healthz", s.handleHealth)

	e.POST("/v1/multiply", s.handleMultiply)
	e.POST("/v1/plan", s.handlePlan)

	e.GET("/v1/runs", s.handleListRuns)
	e.GET("/v1/runs/:id", s.handleGetRun)
	e.DELETE("/v1/runs/:id", s.handleDeleteRun)
}

func (s *Server) handleHealth(c *echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":     "ok",
		"workers":    s.cfg.Workers,
		"chunk_size": s.cfg.ChunkSize,
	})
}

func (s *Server) handleMultiply(c *echo.Context) error {
	req, err := decodeJSON[MultiplyRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, newInvalidRequest("", err.Error()))
	}

	A, err := matrix.FromRows(req.A)
	if err != nil {
		return writeBadRequest(c, newInvalidRequest("a", err.Error()))
	}
	B, err := matrix.FromRows(req.B)
	if err != nil {
		return writeBadRequest(c, newInvalidRequest("b", err.Error()))
	}
	if A.C != B.R {
		return writeBadRequest(c, newInvalidRequest("b", fmt.Sprintf("dimension mismatch: a is %dx%d, b is %dx%d", A.R, A.C, B.R, B.C)))
	}
	if total := A.R*A.C + B.R*B.C + A.R*B.C; total > s.cfg.MaxElements {
		return writeBadRequest(c, newInvalidRequest("", fmt.Sprintf("request needs %d elements, limit is %d", total, s.cfg.MaxElements)))
	}

	opts := multiply.Options{
		Workers: valueOr(req.Workers, s.cfg.Workers),
		Chunk:   valueOr(req.ChunkSize, s.cfg.ChunkSize),
	}
	ctx := logger.WithContext(c.Request().Context(), s.log)

	var C matrix.Mat
	timing, err := report.Measure(func() error {
		var err error
		C, err = multiply.Multiply(ctx, &A, &B, opts)
		return err
	})
	switch {
	case errors.Is(err, multiply.ErrInvalidArgument):
		return writeBadRequest(c, err)
	case err != nil:
		s.log.Error("multiply request failed", "error", err)
		return writeError(c, http.StatusInternalServerError, "server_error", err.Error(), "")
	}

	run := report.New(report.Params{
		Rows:    A.R,
		Inner:   A.C,
		Cols:    B.C,
		Workers: opts.Workers,
		Chunk:   opts.Chunk,
	}, timing, C.Sum(), s.clock())
	s.store.Put(run)
	s.log.Info("multiply completed",
		"id", run.ID,
		"rows", run.Rows,
		"cols", run.Cols,
		"workers", run.Workers,
		"wall", timing.Wall,
	)

	return c.JSON(http.StatusOK, MultiplyResponse{
		Report: run,
		Object: "multiply.result",
		C:      C.Rows(),
	})
}

func (s *Server) handlePlan(c *echo.Context) error {
	req, err := decodeJSON[PlanRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, newInvalidRequest("", err.Error()))
	}
	plan, err := schedule.Partition(req.Rows, valueOr(req.Workers, s.cfg.Workers), valueOr(req.ChunkSize, s.cfg.ChunkSize))
	if err != nil {
		return writeBadRequest(c, err)
	}
	counts := make([]int, plan.Workers)
	for w := range counts {
		counts[w] = plan.RowCount(w)
	}
	return c.JSON(http.StatusOK, PlanResponse{
		Object:    "multiply.plan",
		Rows:      plan.Rows,
		Workers:   plan.Workers,
		ChunkSize: plan.Chunk,
		Ranges:    plan.Ranges,
		RowCounts: counts,
	})
}

func (s *Server) handleListRuns(c *echo.Context) error {
	return c.JSON(http.StatusOK, RunList{
		Object: "list",
		Data:   s.store.List(),
	})
}

func (s *Server) handleGetRun(c *echo.Context) error {
	id := c.Param("id")
	run, ok := s.store.Get(id)
	if !ok {
		return writeNotFound(c, "run not found: "+id)
	}
	return c.JSON(http.StatusOK, run)
}

func (s *Server) handleDeleteRun(c *echo.Context) error {
	id := c.Param("id")
	if !s.store.Delete(id) {
		return writeNotFound(c, "run not found: "+id)
	}
	return c.JSON(http.StatusOK, DeletedRun{
		ID:      id,
		Object:  "multiply.run.deleted",
		Deleted: true,
	})
}

func decodeJSON[T any](r io.Reader) (T, error) {
	var out T
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return out, err
	}
	return out, nil
}

func valueOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}
