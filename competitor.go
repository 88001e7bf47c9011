package dicebench

import "github.com/jamesainslie/go-dicebench/dice"

// Competitor is a benchmarked program and its running score. CurrentVideoDone
// and CurrentVideoScore describe the video being evaluated and are reset
// between videos; TotalScore and NumVideosTested only ever grow.
type Competitor struct {
	Name              string
	ExecutablePath    string
	CurrentVideoDone  bool
	CurrentVideoScore int
	TotalScore        int
	NumVideosTested   int
	CurrentRank       int
}

// Video is one evaluation item: a recording and its annotation.
type Video struct {
	// Name is the file name without directory and extension.
	Name string

	Path               string
	ReferenceImagePath string
	AnnotationPath     string
	Groundtruth        *dice.Groundtruth
}

// MaximumTotalScore is the best total any competitor can reach over videos.
func MaximumTotalScore(videos []Video) int {
	total := 0
	for _, v := range videos {
		total += v.Groundtruth.MaximumScore()
	}
	return total
}
