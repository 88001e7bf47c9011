package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	dicebench "github.com/jamesainslie/go-dicebench"
)

// CSV writes the per-video score matrix: a header row of competitor names,
// one row per video and a final "Total" row. Rows are flushed as soon as
// they are complete so a partial file survives an aborted run.
type CSV struct {
	dicebench.NopSink
	w *csv.Writer
}

// NewCSV returns a CSV reporter writing to w.
func NewCSV(w io.Writer) *CSV {
	return &CSV{w: csv.NewWriter(w)}
}

func (c *CSV) BeginRun(info dicebench.RunInfo) error {
	return c.write(append([]string{""}, info.Competitors...))
}

func (c *CSV) EndVideo(row dicebench.VideoScores) error {
	record := make([]string, 0, len(row.Scores)+1)
	record = append(record, row.Video)
	for _, s := range row.Scores {
		record = append(record, strconv.Itoa(s.Score))
	}
	return c.write(record)
}

func (c *CSV) EndRun(final dicebench.Snapshot) error {
	record := make([]string, 0, len(final.Standings)+1)
	record = append(record, "Total")
	for _, s := range final.Standings {
		record = append(record, strconv.Itoa(s.TotalScore))
	}
	return c.write(record)
}

func (c *CSV) write(record []string) error {
	if err := c.w.Write(record); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	c.w.Flush()
	if err := c.w.Error(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}
