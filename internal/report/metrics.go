package report

import (
	"github.com/samber/lo"

	dicebench "github.com/jamesainslie/go-dicebench"
)

// Metrics holds detection statistics of one competitor. They are reported
// alongside the score and do not affect ranking.
type Metrics struct {
	Detections      int `json:"detections"`
	WrongDetections int `json:"wrongDetections"` // inside no annotated die
	Dice            int `json:"dice"`
	HitDice         int `json:"hitDice"`
	CorrectDice     int `json:"correctDice"`
	FailedRuns      int `json:"failedRuns"`

	Precision     float64 `json:"precision"`
	Recall        float64 `json:"recall"`
	F1            float64 `json:"f1"`
	ValueAccuracy float64 `json:"valueAccuracy"` // correct values among hit dice
}

// Evaluate computes the metrics of a single attempt. A run without a result
// misses every annotated die.
func Evaluate(a dicebench.Attempt) Metrics {
	m := Metrics{Dice: len(a.Video.Groundtruth.GroundtruthDice)}
	if a.Score == nil {
		m.FailedRuns = 1
		return m.compute()
	}

	m.Detections = len(a.Score.CompletelyWrong)
	m.WrongDetections = lo.Count(a.Score.CompletelyWrong, true)
	m.HitDice = a.Score.Hits()
	m.CorrectDice = a.Score.Correct()
	return m.compute()
}

// Add accumulates o into m and recomputes the ratios.
func (m Metrics) Add(o Metrics) Metrics {
	m.Detections += o.Detections
	m.WrongDetections += o.WrongDetections
	m.Dice += o.Dice
	m.HitDice += o.HitDice
	m.CorrectDice += o.CorrectDice
	m.FailedRuns += o.FailedRuns
	return m.compute()
}

func (m Metrics) compute() Metrics {
	m.Precision, m.Recall, m.F1, m.ValueAccuracy = 0, 0, 0, 0

	if m.Detections > 0 {
		m.Precision = float64(m.Detections-m.WrongDetections) / float64(m.Detections)
	}
	if m.Dice > 0 {
		m.Recall = float64(m.HitDice) / float64(m.Dice)
	}
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}
	if m.HitDice > 0 {
		m.ValueAccuracy = float64(m.CorrectDice) / float64(m.HitDice)
	}
	return m
}

// tally accumulates metrics per competitor name.
type tally map[string]Metrics

func (t tally) add(a dicebench.Attempt) {
	t[a.Competitor] = t[a.Competitor].Add(Evaluate(a))
}
