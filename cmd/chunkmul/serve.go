package main

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/chunkmul/internal/api"
	"github.com/samcharles93/chunkmul/internal/logger"
)

func serveCmd() *cli.Command {
	var (
		addr        string
		readTimeout time.Duration
		maxElements int
		maxRuns     int
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve multiply and plan requests over HTTP",
		Flags: append(scheduleFlags(),
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read timeout",
				Value:       30 * time.Second,
				Destination: &readTimeout,
			},
			&cli.IntFlag{
				Name:        "max-elements",
				Usage:       "largest accepted A, B or C in elements",
				Value:       api.DefaultMaxElements,
				Destination: &maxElements,
			},
			&cli.IntFlag{
				Name:        "max-runs",
				Usage:       "number of run reports kept in memory (0 = unbounded)",
				Value:       256,
				Destination: &maxRuns,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			applyScheduleConfig(cmd, cfg)
			applyServeConfig(cmd, cfg, &addr, &maxElements, &maxRuns)

			server := api.NewServer(nil, api.Config{
				Workers:     workers,
				ChunkSize:   chunkSize,
				MaxElements: maxElements,
				MaxRuns:     maxRuns,
			}, log)
			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			server.Register(e)
			log.Info("starting server", "address", addr, "workers", workers, "chunk", chunkSize)
			sc := echo.StartConfig{
				Address: addr,
				BeforeServeFunc: func(srv *http.Server) error {
					srv.ReadHeaderTimeout = readTimeout
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}
}
