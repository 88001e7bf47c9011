package report

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	dicebench "github.com/jamesainslie/go-dicebench"
)

// Console prints progress while the evaluation runs and a ranking table at
// the end.
type Console struct {
	dicebench.NopSink
	w         io.Writer
	numVideos int
	metrics   tally

	good, partial, bad, heading *color.Color
}

// NewConsole returns a console reporter writing to w. Colors are disabled
// when noColor is set or fatih/color detects a non-terminal.
func NewConsole(w io.Writer, noColor bool) *Console {
	c := &Console{
		w:       w,
		metrics: tally{},
		good:    color.New(color.FgGreen),
		partial: color.New(color.FgYellow),
		bad:     color.New(color.FgRed),
		heading: color.New(color.Bold),
	}
	if noColor {
		for _, col := range []*color.Color{c.good, c.partial, c.bad, c.heading} {
			col.DisableColor()
		}
	}
	return c
}

func (c *Console) BeginRun(info dicebench.RunInfo) error {
	c.numVideos = len(info.Videos)
	_, err := fmt.Fprintf(c.w, "Evaluating %d competitors on %d videos (maximum score %d)\n",
		len(info.Competitors), len(info.Videos), info.MaximumTotalScore)
	return err
}

func (c *Console) BeginVideo(index int, v dicebench.Video) error {
	_, err := c.heading.Fprintf(c.w, "\n[%d/%d] %s: ref. frame #%d, %d dice, max %d points\n",
		index+1, c.numVideos, v.Name,
		v.Groundtruth.ReferenceFrameNo, len(v.Groundtruth.GroundtruthDice), v.Groundtruth.MaximumScore())
	return err
}

func (c *Console) AttemptScored(a dicebench.Attempt) error {
	c.metrics.add(a)

	elapsed := a.Outcome.Elapsed.Round(time.Millisecond)
	if a.Score == nil {
		_, err := c.bad.Fprintf(c.w, "  %s: No result! 0 points (%s, %s)\n", a.Competitor, a.Outcome.Reason(), elapsed)
		return err
	}

	col := c.partial
	switch {
	case a.Points >= a.MaximumScore:
		col = c.good
	case a.Points <= 0:
		col = c.bad
	}
	r := a.Outcome.Result
	line := fmt.Sprintf("  %s: ref. frame #%d, %d dice detected, %d points (%s)",
		a.Competitor, r.ReferenceFrameNo, len(r.DetectedDice), a.Points, elapsed)
	if r.ReferenceFrameNo != a.Video.Groundtruth.ReferenceFrameNo {
		line += fmt.Sprintf(" [expected frame #%d]", a.Video.Groundtruth.ReferenceFrameNo)
	}
	_, err := col.Fprintln(c.w, line)
	return err
}

func (c *Console) EndRun(final dicebench.Snapshot) error {
	if _, err := c.heading.Fprintln(c.w, "\nFinal ranking"); err != nil {
		return err
	}
	_, err := fmt.Fprintln(c.w, RankingTable(final, c.metrics))
	return err
}

// RankingTable renders standings in rank order. metrics may be nil.
func RankingTable(snap dicebench.Snapshot, metrics map[string]Metrics) string {
	standings := append([]dicebench.Standing(nil), snap.Standings...)
	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].Rank < standings[j].Rank
	})

	t := table.NewWriter()
	t.AppendHeader(table.Row{"Rank", "Competitor", "Score", "Max", "Videos", "Precision", "Recall", "Values", "Failed"})
	for _, s := range standings {
		row := table.Row{s.Rank, s.Name, s.TotalScore, snap.MaximumTotalScore, s.NumVideosTested}
		if m, ok := metrics[s.Name]; ok {
			row = append(row,
				fmt.Sprintf("%.2f", m.Precision),
				fmt.Sprintf("%.2f", m.Recall),
				fmt.Sprintf("%.2f", m.ValueAccuracy),
				m.FailedRuns)
		} else {
			row = append(row, "-", "-", "-", "-")
		}
		t.AppendRow(row)
	}
	return t.Render()
}
