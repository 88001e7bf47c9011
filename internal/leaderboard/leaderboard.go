// Package leaderboard serves the live standings of a running evaluation over
// HTTP.
package leaderboard

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	dicebench "github.com/jamesainslie/go-dicebench"
	"github.com/jamesainslie/go-dicebench/internal/report"
)

// DefaultRecent is the number of attempts kept for /api/attempts.
const DefaultRecent = 50

// Status is the document served by /api/status.
type Status struct {
	RunID        uuid.UUID `json:"runId"`
	Competitors  []string  `json:"competitors"`
	Videos       []string  `json:"videos"`
	CurrentVideo string    `json:"currentVideo"`
	Finished     bool      `json:"finished"`
}

// Board is a dicebench.Sink that keeps the latest snapshot for HTTP readers.
// Sink methods and handlers may run concurrently.
type Board struct {
	dicebench.NopSink

	dir    string
	recent int
	logger *slog.Logger

	mu       sync.RWMutex
	status   Status
	snapshot dicebench.Snapshot
	attempts []report.AttemptRecord
}

// New creates a Board. dir is the run directory whose files are served under
// /files; it may be empty.
func New(dir string, logger *slog.Logger) *Board {
	if logger == nil {
		logger = slog.Default()
	}
	return &Board{
		dir:      dir,
		recent:   DefaultRecent,
		logger:   logger,
		snapshot: dicebench.Snapshot{VideoIndex: 0, CurrentCompetitor: -1, Standings: []dicebench.Standing{}},
		attempts: []report.AttemptRecord{},
	}
}

func (b *Board) BeginRun(info dicebench.RunInfo) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.status = Status{RunID: info.RunID, Competitors: info.Competitors}
	for _, v := range info.Videos {
		b.status.Videos = append(b.status.Videos, v.Name)
	}
	return nil
}

func (b *Board) BeginVideo(_ int, v dicebench.Video) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.status.CurrentVideo = v.Name
	return nil
}

func (b *Board) AttemptScored(a dicebench.Attempt) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.attempts = append(b.attempts, report.Record(a))
	if over := len(b.attempts) - b.recent; over > 0 {
		b.attempts = append([]report.AttemptRecord(nil), b.attempts[over:]...)
	}
	return nil
}

func (b *Board) Standings(s dicebench.Snapshot) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.snapshot = s
	return nil
}

func (b *Board) EndRun(s dicebench.Snapshot) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.snapshot = s
	b.status.CurrentVideo = ""
	b.status.Finished = true
	return nil
}

// Router returns the HTTP handler of the board.
func (b *Board) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), b.logRequests)

	apiRoutes := r.Group("/api")

	apiRoutes.GET("/standings", func(ctx *gin.Context) {
		b.mu.RLock()
		defer b.mu.RUnlock()
		ctx.JSON(http.StatusOK, b.snapshot)
	})

	apiRoutes.GET("/attempts", func(ctx *gin.Context) {
		b.mu.RLock()
		defer b.mu.RUnlock()
		ctx.JSON(http.StatusOK, b.attempts)
	})

	apiRoutes.GET("/status", func(ctx *gin.Context) {
		b.mu.RLock()
		defer b.mu.RUnlock()
		ctx.JSON(http.StatusOK, b.status)
	})

	r.GET("/ranking", func(ctx *gin.Context) {
		b.mu.RLock()
		table := report.RankingTable(b.snapshot, nil)
		b.mu.RUnlock()
		ctx.String(http.StatusOK, table+"\n")
	})

	if b.dir != "" {
		r.Static("/files", b.dir)
	}

	return r
}

func (b *Board) logRequests(ctx *gin.Context) {
	start := time.Now()
	ctx.Next()
	b.logger.Debug("leaderboard request",
		"method", ctx.Request.Method,
		"path", ctx.Request.URL.Path,
		"status", ctx.Writer.Status(),
		"duration", time.Since(start))
}

// Serve runs the HTTP server on addr until ctx is done.
func (b *Board) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           b.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	b.logger.Info("leaderboard listening", "addr", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
