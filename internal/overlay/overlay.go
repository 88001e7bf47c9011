// Package overlay decides what a result image shows for one attempt:
// annotated dice colored by outcome, detections marked as hits or misses,
// and a caption. Drawing is left to the render package.
package overlay

import (
	"fmt"
	"image"
	"image/color"
	"strconv"

	dicebench "github.com/jamesainslie/go-dicebench"
)

var (
	Correct   = color.RGBA{G: 255, A: 255}
	Hit       = color.RGBA{R: 255, G: 255, A: 255}
	Missed    = color.RGBA{R: 255, A: 255}
	Detection = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Wrong     = color.RGBA{R: 255, A: 255}
)

// Shape is an annotated die outline.
type Shape struct {
	Contour []image.Point
	Color   color.RGBA
	Label   string
	LabelAt image.Point
}

// Mark is a detection, drawn as a cross.
type Mark struct {
	At    image.Point
	Color color.RGBA
	Label string
}

// Plan is everything drawn on top of the reference image.
type Plan struct {
	// BlendFrame is the video frame blended into the reference image, or -1.
	BlendFrame int
	// Tint marks a run without a usable result, or with the wrong frame.
	Tint bool

	Shapes  []Shape
	Marks   []Mark
	Caption string
	Color   color.RGBA
}

// Build plans the overlay of attempt a.
func Build(a dicebench.Attempt) Plan {
	truth := a.Video.Groundtruth
	p := Plan{BlendFrame: -1}

	for j, die := range truth.GroundtruthDice {
		s := Shape{
			Contour: die.Contour,
			Color:   Missed,
			Label:   strconv.Itoa(die.Value),
			LabelAt: die.Contour.Centroid(),
		}
		if a.Score != nil {
			switch {
			case a.Score.ClassifiedCorrectly[j]:
				s.Color = Correct
			case a.Score.HitByAnyDetection[j]:
				s.Color = Hit
			}
		}
		p.Shapes = append(p.Shapes, s)
	}

	if a.Score == nil {
		p.Tint = true
		p.Color = Missed
		p.Caption = fmt.Sprintf("%s: No result! 0 points", a.Competitor)
		return p
	}

	result := a.Outcome.Result
	for i, det := range result.DetectedDice {
		m := Mark{At: det.Position, Color: Detection, Label: strconv.Itoa(det.Value)}
		if a.Score.CompletelyWrong[i] {
			m.Color = Wrong
		}
		p.Marks = append(p.Marks, m)
	}

	if result.ReferenceFrameNo != truth.ReferenceFrameNo {
		p.BlendFrame = result.ReferenceFrameNo
		p.Tint = true
	}

	p.Color = Hit
	switch {
	case a.Points >= a.MaximumScore:
		p.Color = Correct
	case a.Points <= 0:
		p.Color = Missed
	}
	p.Caption = fmt.Sprintf("%s: ref. frame #%d, %d dice detected, %d/%d points",
		a.Competitor, result.ReferenceFrameNo, len(result.DetectedDice), a.Points, a.MaximumScore)
	return p
}
