// Package report turns evaluation events into files and terminal output.
//
// Every reporter implements dicebench.Sink. Combine them with Multi.
package report

import (
	"errors"

	dicebench "github.com/jamesainslie/go-dicebench"
)

// File names written into the run directory.
const (
	ResultsFile = "Results.csv"
	SummaryFile = "Summary.json"
)

type multi []dicebench.Sink

// Multi fans every event out to sinks in order. All sinks see every event;
// their errors are joined.
func Multi(sinks ...dicebench.Sink) dicebench.Sink {
	var m multi
	for _, s := range sinks {
		if s != nil {
			m = append(m, s)
		}
	}
	return m
}

func (m multi) each(fn func(dicebench.Sink) error) error {
	var errs []error
	for _, s := range m {
		if err := fn(s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m multi) BeginRun(info dicebench.RunInfo) error {
	return m.each(func(s dicebench.Sink) error { return s.BeginRun(info) })
}

func (m multi) BeginVideo(index int, v dicebench.Video) error {
	return m.each(func(s dicebench.Sink) error { return s.BeginVideo(index, v) })
}

func (m multi) AttemptScored(a dicebench.Attempt) error {
	return m.each(func(s dicebench.Sink) error { return s.AttemptScored(a) })
}

func (m multi) Standings(snap dicebench.Snapshot) error {
	return m.each(func(s dicebench.Sink) error { return s.Standings(snap) })
}

func (m multi) EndVideo(row dicebench.VideoScores) error {
	return m.each(func(s dicebench.Sink) error { return s.EndVideo(row) })
}

func (m multi) EndRun(snap dicebench.Snapshot) error {
	return m.each(func(s dicebench.Sink) error { return s.EndRun(snap) })
}
