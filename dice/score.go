package dice

import "github.com/samber/lo"

// Outcome is the result of scoring one detection result.
type Outcome struct {
	Points int

	// CompletelyWrong is aligned with the detections: true when the detection
	// lies inside no annotated die.
	CompletelyWrong []bool

	// HitByAnyDetection and ClassifiedCorrectly are aligned with the
	// annotated dice.
	HitByAnyDetection   []bool
	ClassifiedCorrectly []bool
}

// Hits is the number of annotated dice found by at least one detection.
func (o Outcome) Hits() int {
	return lo.Count(o.HitByAnyDetection, true)
}

// Correct is the number of annotated dice hit with the right value.
func (o Outcome) Correct() int {
	return lo.Count(o.ClassifiedCorrectly, true)
}

// Score matches every detection against every annotated die and computes
//
//	points = 2*hits + correct - detections
//
// A detection may hit several overlapping dice and a die may be hit by several
// detections; each detection costs one point either way. The result can be
// negative.
func Score(result *DetectionResult, truth *Groundtruth) Outcome {
	o := Outcome{
		CompletelyWrong:     make([]bool, len(result.DetectedDice)),
		HitByAnyDetection:   make([]bool, len(truth.GroundtruthDice)),
		ClassifiedCorrectly: make([]bool, len(truth.GroundtruthDice)),
	}

	for i, det := range result.DetectedDice {
		o.CompletelyWrong[i] = true
		for j, gt := range truth.GroundtruthDice {
			if !gt.Contour.Contains(det.Position) {
				continue
			}
			o.CompletelyWrong[i] = false
			o.HitByAnyDetection[j] = true
			if det.Value == gt.Value {
				o.ClassifiedCorrectly[j] = true
			}
		}
	}

	o.Points = 2*o.Hits() + o.Correct() - len(result.DetectedDice)
	return o
}
