package dicebench

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/jamesainslie/go-dicebench/dice"
	"github.com/jamesainslie/go-dicebench/runner"
)

// AttemptRunner runs one competitor on one video.
type AttemptRunner interface {
	Run(ctx context.Context, executable, videoPath, outputPath string) runner.Outcome
}

// Evaluator drives a whole evaluation. It owns the competitor table; sinks
// only ever see copies.
type Evaluator struct {
	competitors []*Competitor
	videos      []Video
	dir         string
	maxTotal    int

	runner AttemptRunner
	sink   Sink
	logger *slog.Logger
	runID  uuid.UUID
}

// New creates an Evaluator that writes competitor output files into dir.
func New(competitors []Competitor, videos []Video, dir string, opts ...Option) (*Evaluator, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := CheckCompetitors(competitors); err != nil {
		return nil, err
	}
	if len(videos) == 0 {
		return nil, ErrNoVideos
	}
	if err := CheckDirectory(dir); err != nil {
		return nil, err
	}

	if cfg.runner == nil {
		cfg.runner = runner.New(runner.WithLogger(cfg.logger))
	}

	e := &Evaluator{
		videos:   videos,
		dir:      dir,
		maxTotal: MaximumTotalScore(videos),
		runner:   cfg.runner,
		sink:     cfg.sink,
		logger:   cfg.logger,
		runID:    cfg.runID,
	}
	for _, c := range competitors {
		e.competitors = append(e.competitors, &Competitor{
			Name:           c.Name,
			ExecutablePath: c.ExecutablePath,
		})
	}
	rankCompetitors(e.competitors)

	return e, nil
}

// CheckCompetitors validates a competitor list: at least one entry, unique
// names, and executables that are regular files.
func CheckCompetitors(competitors []Competitor) error {
	if len(competitors) == 0 {
		return ErrNoCompetitors
	}

	seen := make(map[string]bool, len(competitors))
	for _, c := range competitors {
		if c.Name == "" {
			return fmt.Errorf("%w: empty name for %s", ErrNoCompetitors, c.ExecutablePath)
		}
		if seen[c.Name] {
			return fmt.Errorf("%w: %q", ErrDuplicateCompetitor, c.Name)
		}
		seen[c.Name] = true

		info, err := os.Stat(c.ExecutablePath)
		if err != nil {
			return fmt.Errorf("%w: competitor %q: %w", ErrNotExecutable, c.Name, err)
		}
		if !info.Mode().IsRegular() {
			return fmt.Errorf("%w: competitor %q: %s", ErrNotExecutable, c.Name, c.ExecutablePath)
		}
	}
	return nil
}

// CheckDirectory returns ErrNotDirectory unless path is an existing directory.
func CheckDirectory(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotDirectory, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotDirectory, path)
	}
	return nil
}

// RunID identifies this evaluation in reports.
func (e *Evaluator) RunID() uuid.UUID {
	return e.runID
}

// MaximumTotalScore is the best total reachable over all videos.
func (e *Evaluator) MaximumTotalScore() int {
	return e.maxTotal
}

// Competitors returns a copy of the competitor table.
func (e *Evaluator) Competitors() []Competitor {
	out := make([]Competitor, len(e.competitors))
	for i, c := range e.competitors {
		out[i] = *c
	}
	return out
}

// Run evaluates every competitor on every video, strictly one run at a time,
// and returns the final standings. Failed competitor runs score zero and do
// not stop the evaluation; sink errors and cancellation of ctx do.
func (e *Evaluator) Run(ctx context.Context) (Snapshot, error) {
	names := lo.Map(e.competitors, func(c *Competitor, _ int) string { return c.Name })

	err := e.sink.BeginRun(RunInfo{
		RunID:             e.runID,
		Dir:               e.dir,
		Competitors:       names,
		Videos:            e.videos,
		MaximumTotalScore: e.maxTotal,
	})
	if err != nil {
		return Snapshot{}, fmt.Errorf("report: %w", err)
	}

	e.logger.Info("starting evaluation",
		"run", e.runID,
		"competitors", len(e.competitors),
		"videos", len(e.videos),
		"maxTotalScore", e.maxTotal)

	for i, video := range e.videos {
		if err := e.evaluateVideo(ctx, i, video); err != nil {
			return e.snapshot(i, -1), err
		}
	}

	rankCompetitors(e.competitors)
	final := e.snapshot(-1, -1)
	if err := e.sink.EndRun(final); err != nil {
		return final, fmt.Errorf("report: %w", err)
	}

	e.logger.Info("evaluation finished", "run", e.runID)
	return final, nil
}

func (e *Evaluator) evaluateVideo(ctx context.Context, index int, video Video) error {
	maxScore := video.Groundtruth.MaximumScore()
	e.logger.Info("processing video",
		"video", video.Name,
		"index", index+1,
		"of", len(e.videos),
		"dice", len(video.Groundtruth.GroundtruthDice),
		"maxScore", maxScore)

	if err := e.sink.BeginVideo(index, video); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	if err := e.sink.Standings(e.snapshot(index, -1)); err != nil {
		return fmt.Errorf("report: %w", err)
	}

	row := VideoScores{VideoIndex: index, Video: video.Name}
	for j, c := range e.competitors {
		if err := ctx.Err(); err != nil {
			return err
		}

		attempt := e.attempt(ctx, index, video, j, c)
		if attempt.Outcome.Status == runner.StatusCanceled {
			return attempt.Outcome.Err
		}

		c.CurrentVideoScore = attempt.Points
		c.CurrentVideoDone = true
		c.TotalScore += c.CurrentVideoScore
		c.NumVideosTested++
		rankCompetitors(e.competitors)

		row.Scores = append(row.Scores, CompetitorScore{Name: c.Name, Score: c.CurrentVideoScore})

		if err := e.sink.AttemptScored(attempt); err != nil {
			return fmt.Errorf("report: %w", err)
		}
		if err := e.sink.Standings(e.snapshot(index, j)); err != nil {
			return fmt.Errorf("report: %w", err)
		}
	}

	if err := e.sink.EndVideo(row); err != nil {
		return fmt.Errorf("report: %w", err)
	}

	for _, c := range e.competitors {
		c.CurrentVideoDone = false
		c.CurrentVideoScore = 0
	}
	return nil
}

func (e *Evaluator) attempt(ctx context.Context, index int, video Video, j int, c *Competitor) Attempt {
	output := filepath.Join(e.dir, OutputName(video.Name, c.Name, ".txt"))
	logger := e.logger.With("competitor", c.Name, "video", video.Name)
	logger.Debug("running competitor", "executable", c.ExecutablePath, "output", output)

	out := e.runner.Run(ctx, c.ExecutablePath, video.Path, output)

	attempt := Attempt{
		VideoIndex:      index,
		Video:           video,
		CompetitorIndex: j,
		Competitor:      c.Name,
		OutputPath:      output,
		Outcome:         out,
		MaximumScore:    video.Groundtruth.MaximumScore(),
	}

	switch {
	case out.Status == runner.StatusCanceled:
		logger.Warn("run canceled", "elapsed", out.Elapsed)
	case out.Succeeded():
		score := dice.Score(out.Result, video.Groundtruth)
		attempt.Score = &score
		attempt.Points = score.Points
		logger.Info("scored",
			"refFrame", out.Result.ReferenceFrameNo,
			"detected", len(out.Result.DetectedDice),
			"points", score.Points,
			"elapsed", out.Elapsed)
		if out.Err != nil {
			logger.Debug("competitor exited abnormally after writing a result", "error", out.Err)
		}
	default:
		logger.Warn("no result", "reason", out.Reason(), "elapsed", out.Elapsed)
	}

	return attempt
}

func (e *Evaluator) snapshot(videoIndex, competitorIndex int) Snapshot {
	s := Snapshot{
		VideoIndex:        videoIndex,
		NumVideos:         len(e.videos),
		CurrentCompetitor: competitorIndex,
		MaximumTotalScore: e.maxTotal,
		Standings:         make([]Standing, len(e.competitors)),
	}
	if videoIndex >= 0 && videoIndex < len(e.videos) {
		s.MaximumScore = e.videos[videoIndex].Groundtruth.MaximumScore()
	}
	for i, c := range e.competitors {
		s.Standings[i] = Standing{
			Name:              c.Name,
			TotalScore:        c.TotalScore,
			Rank:              c.CurrentRank,
			NumVideosTested:   c.NumVideosTested,
			CurrentVideoDone:  c.CurrentVideoDone,
			CurrentVideoScore: c.CurrentVideoScore,
		}
	}
	return s
}

// OutputName is the file name used for a competitor's artifacts on a video,
// e.g. "clip01 - alice.txt".
func OutputName(video, competitor, ext string) string {
	return video + " - " + competitor + ext
}

// IsConfigError reports whether err is one of the fatal configuration errors.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrNoCompetitors) ||
		errors.Is(err, ErrDuplicateCompetitor) ||
		errors.Is(err, ErrNotExecutable) ||
		errors.Is(err, ErrNotDirectory) ||
		errors.Is(err, ErrNoVideos)
}
