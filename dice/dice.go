// Package dice holds the detection and ground-truth data model together with
// the result-file parser, the annotation loader and the scorer.
package dice

import (
	"errors"
	"image"

	"github.com/jamesainslie/go-dicebench/geometry"
)

// Die values carried by annotations.
const (
	MinValue = 1
	MaxValue = 6
)

var (
	// ErrMalformedResult indicates a competitor result file could not be
	// read or did not follow the result format.
	ErrMalformedResult = errors.New("dice: malformed detection result")

	// ErrInvalidGroundtruth indicates an annotation file could not be read
	// or contained invalid data.
	ErrInvalidGroundtruth = errors.New("dice: invalid groundtruth")
)

// DetectedDie is a single claim made by a competitor.
type DetectedDie struct {
	Position image.Point
	Value    int
}

// DetectionResult is everything a competitor reported for one video.
type DetectionResult struct {
	ReferenceFrameNo int
	DetectedDice     []DetectedDie
}

// GroundtruthDie is one annotated die.
type GroundtruthDie struct {
	Contour geometry.Polygon
	Value   int
}

// Groundtruth is the annotation of one evaluation video. It is shared
// read-only by every competitor tested on that video.
type Groundtruth struct {
	ReferenceFrameNo int
	GroundtruthDice  []GroundtruthDie
}

// MaximumScore is the best score a competitor can reach on this video.
func (g *Groundtruth) MaximumScore() int {
	return 2 * len(g.GroundtruthDice)
}
