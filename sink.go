package dicebench

import (
	"github.com/google/uuid"

	"github.com/jamesainslie/go-dicebench/dice"
	"github.com/jamesainslie/go-dicebench/runner"
)

// RunInfo describes an evaluation about to start.
type RunInfo struct {
	RunID             uuid.UUID
	Dir               string
	Competitors       []string
	Videos            []Video
	MaximumTotalScore int
}

// Attempt is one competitor run on one video, after scoring.
type Attempt struct {
	VideoIndex      int
	Video           Video
	CompetitorIndex int
	Competitor      string
	OutputPath      string
	Outcome         runner.Outcome

	// Score is nil when the run produced no usable result.
	Score        *dice.Outcome
	Points       int
	MaximumScore int
}

// Standing is a read-only copy of a competitor's scoreboard line.
type Standing struct {
	Name              string `json:"name"`
	TotalScore        int    `json:"totalScore"`
	Rank              int    `json:"rank"`
	NumVideosTested   int    `json:"numVideosTested"`
	CurrentVideoDone  bool   `json:"currentVideoDone"`
	CurrentVideoScore int    `json:"currentVideoScore"`
}

// Snapshot is the scoreboard at one point of the run. Standings are in
// competitor order, not rank order.
type Snapshot struct {
	// VideoIndex is -1 for the final snapshot.
	VideoIndex int `json:"videoIndex"`
	NumVideos  int `json:"numVideos"`

	// CurrentCompetitor is the index of the competitor just run, or -1.
	CurrentCompetitor int        `json:"currentCompetitor"`
	MaximumScore      int        `json:"maximumScore"`
	MaximumTotalScore int        `json:"maximumTotalScore"`
	Standings         []Standing `json:"standings"`
}

// Final reports whether s is the end-of-run snapshot.
func (s Snapshot) Final() bool {
	return s.VideoIndex < 0
}

// CompetitorScore is one cell of a per-video row.
type CompetitorScore struct {
	Name  string
	Score int
}

// VideoScores is the per-video row emitted once every competitor has run.
type VideoScores struct {
	VideoIndex int
	Video      string
	Scores     []CompetitorScore
}

// Sink consumes evaluation events. Methods are called from the evaluating
// goroutine in order: BeginRun, then per video BeginVideo, Standings,
// AttemptScored and Standings for each competitor, EndVideo; finally EndRun.
// An error aborts the evaluation.
type Sink interface {
	BeginRun(RunInfo) error
	BeginVideo(index int, video Video) error
	AttemptScored(Attempt) error
	Standings(Snapshot) error
	EndVideo(VideoScores) error
	EndRun(Snapshot) error
}

// NopSink ignores every event. Embed it to implement only some of Sink.
type NopSink struct{}

func (NopSink) BeginRun(RunInfo) error      { return nil }
func (NopSink) BeginVideo(int, Video) error { return nil }
func (NopSink) AttemptScored(Attempt) error { return nil }
func (NopSink) Standings(Snapshot) error    { return nil }
func (NopSink) EndVideo(VideoScores) error  { return nil }
func (NopSink) EndRun(Snapshot) error       { return nil }
