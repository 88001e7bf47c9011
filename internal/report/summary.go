package report

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	dicebench "github.com/jamesainslie/go-dicebench"
)

// AttemptRecord is the machine readable form of one competitor run.
type AttemptRecord struct {
	Video      string  `json:"video"`
	Competitor string  `json:"competitor"`
	Status     string  `json:"status"`
	Reason     string  `json:"reason,omitempty"`
	TimedOut   bool    `json:"timedOut"`
	ElapsedSec float64 `json:"elapsedSec"`
	RefFrame   *int    `json:"refFrame,omitempty"`
	Detected   int     `json:"detected"`
	Points     int     `json:"points"`
	MaxPoints  int     `json:"maxPoints"`
}

// Record converts an attempt for serialization.
func Record(a dicebench.Attempt) AttemptRecord {
	rec := AttemptRecord{
		Video:      a.Video.Name,
		Competitor: a.Competitor,
		Status:     a.Outcome.Status.String(),
		Reason:     a.Outcome.Reason(),
		TimedOut:   a.Outcome.TimedOut,
		ElapsedSec: a.Outcome.Elapsed.Seconds(),
		Points:     a.Points,
		MaxPoints:  a.MaximumScore,
	}
	if r := a.Outcome.Result; r != nil {
		frame := r.ReferenceFrameNo
		rec.RefFrame = &frame
		rec.Detected = len(r.DetectedDice)
	}
	return rec
}

// Summary is the document written to Summary.json.
type Summary struct {
	RunID             uuid.UUID            `json:"runId"`
	StartedAt         time.Time            `json:"startedAt"`
	FinishedAt        time.Time            `json:"finishedAt"`
	Videos            []string             `json:"videos"`
	MaximumTotalScore int                  `json:"maximumTotalScore"`
	Attempts          []AttemptRecord      `json:"attempts"`
	Standings         []dicebench.Standing `json:"standings"`
	Metrics           map[string]Metrics   `json:"metrics"`
}

// SummaryWriter collects every attempt and writes a Summary document at the
// end of the run.
type SummaryWriter struct {
	dicebench.NopSink
	path    string
	clock   clock.Clock
	summary Summary
	metrics tally
}

// NewSummary returns a reporter that writes the summary to path. A nil clk
// uses the wall clock.
func NewSummary(path string, clk clock.Clock) *SummaryWriter {
	if clk == nil {
		clk = clock.New()
	}
	return &SummaryWriter{path: path, clock: clk, metrics: tally{}}
}

func (s *SummaryWriter) BeginRun(info dicebench.RunInfo) error {
	s.summary = Summary{
		RunID:             info.RunID,
		StartedAt:         s.clock.Now().UTC(),
		MaximumTotalScore: info.MaximumTotalScore,
		Attempts:          []AttemptRecord{},
	}
	for _, v := range info.Videos {
		s.summary.Videos = append(s.summary.Videos, v.Name)
	}
	return nil
}

func (s *SummaryWriter) AttemptScored(a dicebench.Attempt) error {
	s.summary.Attempts = append(s.summary.Attempts, Record(a))
	s.metrics.add(a)
	return nil
}

func (s *SummaryWriter) EndRun(final dicebench.Snapshot) error {
	s.summary.FinishedAt = s.clock.Now().UTC()
	s.summary.Standings = final.Standings
	s.summary.Metrics = s.metrics

	data, err := json.MarshalIndent(s.summary, "", "  ")
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	if err := os.WriteFile(s.path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}

// Summary returns the document collected so far.
func (s *SummaryWriter) Summary() Summary {
	return s.summary
}
