package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	dicebench "github.com/jamesainslie/go-dicebench"
	"github.com/jamesainslie/go-dicebench/dice"
	"github.com/jamesainslie/go-dicebench/geometry"
	"github.com/jamesainslie/go-dicebench/runner"
)

var testVideo = dicebench.Video{
	Name: "clip01",
	Groundtruth: &dice.Groundtruth{
		ReferenceFrameNo: 7,
		GroundtruthDice: []dice.GroundtruthDie{
			{Contour: geometry.Polygon{{0, 0}, {10, 0}, {10, 10}, {0, 10}}, Value: 2},
			{Contour: geometry.Polygon{{50, 50}, {60, 50}, {60, 60}, {50, 60}}, Value: 5},
		},
	},
}

func scoredAttempt(competitor string, detected ...dice.DetectedDie) dicebench.Attempt {
	result := &dice.DetectionResult{ReferenceFrameNo: 7, DetectedDice: detected}
	score := dice.Score(result, testVideo.Groundtruth)
	return dicebench.Attempt{
		Video:        testVideo,
		Competitor:   competitor,
		Outcome:      runner.Outcome{Status: runner.StatusOK, Result: result, Elapsed: 1500 * time.Millisecond},
		Score:        &score,
		Points:       score.Points,
		MaximumScore: 4,
	}
}

func failedAttempt(competitor string) dicebench.Attempt {
	return dicebench.Attempt{
		Video:        testVideo,
		Competitor:   competitor,
		Outcome:      runner.Outcome{Status: runner.StatusNoOutput, TimedOut: true, Elapsed: 15 * time.Second},
		MaximumScore: 4,
	}
}

var finalSnapshot = dicebench.Snapshot{
	VideoIndex:        -1,
	NumVideos:         1,
	CurrentCompetitor: -1,
	MaximumTotalScore: 4,
	Standings: []dicebench.Standing{
		{Name: "alice", TotalScore: 2, Rank: 1, NumVideosTested: 1},
		{Name: "bob", TotalScore: 0, Rank: 2, NumVideosTested: 1},
	},
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name    string
		attempt dicebench.Attempt
		want    Metrics
	}{
		{
			name: "one right, one wrong value, one stray",
			attempt: scoredAttempt("alice",
				dice.DetectedDie{Position: image.Pt(5, 5), Value: 2},
				dice.DetectedDie{Position: image.Pt(55, 55), Value: 1},
				dice.DetectedDie{Position: image.Pt(200, 200), Value: 3}),
			want: Metrics{
				Detections: 3, WrongDetections: 1, Dice: 2, HitDice: 2, CorrectDice: 1,
				Precision: 2.0 / 3.0, Recall: 1, F1: 0.8, ValueAccuracy: 0.5,
			},
		},
		{
			name:    "no result",
			attempt: failedAttempt("bob"),
			want:    Metrics{Dice: 2, FailedRuns: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.attempt)
			opt := cmp.Comparer(func(a, b float64) bool { return a-b < 1e-9 && b-a < 1e-9 })
			if diff := cmp.Diff(tt.want, got, opt); diff != "" {
				t.Errorf("Evaluate() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMetrics_Add(t *testing.T) {
	a := Evaluate(scoredAttempt("alice", dice.DetectedDie{Position: image.Pt(5, 5), Value: 2}))
	b := Evaluate(failedAttempt("alice"))

	got := a.Add(b)
	if got.Dice != 4 || got.HitDice != 1 || got.FailedRuns != 1 {
		t.Errorf("Add() counts = %+v", got)
	}
	if got.Recall != 0.25 {
		t.Errorf("Add() Recall = %v, want 0.25", got.Recall)
	}
	if got.Precision != 1 {
		t.Errorf("Add() Precision = %v, want 1", got.Precision)
	}
}

func TestCSV(t *testing.T) {
	var buf bytes.Buffer
	c := NewCSV(&buf)

	steps := []error{
		c.BeginRun(dicebench.RunInfo{Competitors: []string{"alice", "bob"}}),
		c.EndVideo(dicebench.VideoScores{Video: "clip01", Scores: []dicebench.CompetitorScore{{Name: "alice", Score: 2}, {Name: "bob", Score: -1}}}),
		c.EndVideo(dicebench.VideoScores{Video: "clip, 02", Scores: []dicebench.CompetitorScore{{Name: "alice", Score: 0}, {Name: "bob", Score: 1}}}),
		c.EndRun(dicebench.Snapshot{Standings: []dicebench.Standing{{Name: "alice", TotalScore: 2}, {Name: "bob", TotalScore: 0}}}),
	}
	if err := errors.Join(steps...); err != nil {
		t.Fatalf("CSV error = %v", err)
	}

	want := ",alice,bob\nclip01,2,-1\n\"clip, 02\",0,1\nTotal,2,0\n"
	if got := buf.String(); got != want {
		t.Errorf("CSV output = %q, want %q", got, want)
	}
}

func TestSummaryWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), SummaryFile)
	mock := clock.NewMock()
	mock.Set(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	id := uuid.MustParse("2b1c5f8e-6a59-4a8a-9a1b-0c1d2e3f4a5b")

	s := NewSummary(path, mock)
	if err := s.BeginRun(dicebench.RunInfo{RunID: id, Videos: []dicebench.Video{testVideo}, MaximumTotalScore: 4}); err != nil {
		t.Fatal(err)
	}
	_ = s.AttemptScored(scoredAttempt("alice", dice.DetectedDie{Position: image.Pt(5, 5), Value: 2}))
	_ = s.AttemptScored(failedAttempt("bob"))
	mock.Add(30 * time.Second)
	if err := s.EndRun(finalSnapshot); err != nil {
		t.Fatalf("EndRun() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got Summary
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("invalid summary JSON: %v", err)
	}

	if got.RunID != id {
		t.Errorf("RunID = %v, want %v", got.RunID, id)
	}
	if d := got.FinishedAt.Sub(got.StartedAt); d != 30*time.Second {
		t.Errorf("FinishedAt - StartedAt = %v, want 30s", d)
	}
	if len(got.Attempts) != 2 {
		t.Fatalf("len(Attempts) = %d, want 2", len(got.Attempts))
	}

	alice := got.Attempts[0]
	if alice.RefFrame == nil || *alice.RefFrame != 7 || alice.Detected != 1 || alice.Points != 2 || alice.Reason != "" {
		t.Errorf("alice attempt = %+v", alice)
	}
	bob := got.Attempts[1]
	if bob.RefFrame != nil || !bob.TimedOut || bob.Status != "no output" || bob.ElapsedSec != 15 {
		t.Errorf("bob attempt = %+v", bob)
	}
	if got.Metrics["bob"].FailedRuns != 1 {
		t.Errorf("bob FailedRuns = %d, want 1", got.Metrics["bob"].FailedRuns)
	}
	if diff := cmp.Diff(finalSnapshot.Standings, got.Standings); diff != "" {
		t.Errorf("standings mismatch (-want +got):\n%s", diff)
	}
}

func TestConsole(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, true)

	_ = c.BeginRun(dicebench.RunInfo{Competitors: []string{"alice", "bob"}, Videos: []dicebench.Video{testVideo}, MaximumTotalScore: 4})
	_ = c.BeginVideo(0, testVideo)
	_ = c.AttemptScored(scoredAttempt("alice", dice.DetectedDie{Position: image.Pt(5, 5), Value: 2}))
	_ = c.AttemptScored(failedAttempt("bob"))
	if err := c.EndRun(finalSnapshot); err != nil {
		t.Fatalf("EndRun() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"[1/1] clip01: ref. frame #7, 2 dice, max 4 points",
		"alice: ref. frame #7, 1 dice detected, 2 points (1.5s)",
		"bob: No result! 0 points (timed out, no output, 15s)",
		"Final ranking",
		"COMPETITOR",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("console output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("console output contains escape codes with colors disabled")
	}
}

func TestRankingTable_Order(t *testing.T) {
	snap := dicebench.Snapshot{
		MaximumTotalScore: 10,
		Standings: []dicebench.Standing{
			{Name: "zed", TotalScore: 1, Rank: 3},
			{Name: "amy", TotalScore: 9, Rank: 1},
			{Name: "kim", TotalScore: 5, Rank: 2},
		},
	}
	out := RankingTable(snap, nil)
	amy, kim, zed := strings.Index(out, "amy"), strings.Index(out, "kim"), strings.Index(out, "zed")
	if !(amy < kim && kim < zed) {
		t.Errorf("RankingTable() not in rank order:\n%s", out)
	}
}

type failingSink struct {
	dicebench.NopSink
	calls int
}

func (f *failingSink) EndVideo(dicebench.VideoScores) error {
	f.calls++
	return errors.New("disk full")
}

func TestMulti(t *testing.T) {
	a, b := &failingSink{}, &failingSink{}
	m := Multi(a, nil, b)

	err := m.EndVideo(dicebench.VideoScores{})
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Errorf("EndVideo() error = %v, want joined sink errors", err)
	}
	if a.calls != 1 || b.calls != 1 {
		t.Errorf("calls = %d, %d, want every sink called once", a.calls, b.calls)
	}
	if err := m.BeginRun(dicebench.RunInfo{}); err != nil {
		t.Errorf("BeginRun() error = %v", err)
	}
}
