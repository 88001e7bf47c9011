// Package render writes one result image per attempt: the video's reference
// image with annotations and detections drawn on top.
//
// Rendering needs OpenCV through gocv. Failures are logged and never stop an
// evaluation.
package render

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"path/filepath"

	"gocv.io/x/gocv"

	dicebench "github.com/jamesainslie/go-dicebench"
	"github.com/jamesainslie/go-dicebench/internal/overlay"
)

const (
	blendAlpha = 0.5
	tintAlpha  = 0.3
	crossSize  = 6
)

var tintColor = color.RGBA{R: 255, A: 255}

// Renderer is a dicebench.Sink that writes "<video> - <competitor>.png"
// into dir for every attempt.
type Renderer struct {
	dicebench.NopSink
	dir    string
	logger *slog.Logger

	video     dicebench.Video
	reference gocv.Mat
	frames    map[int]gocv.Mat
}

// New creates a Renderer writing into dir.
func New(dir string, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		dir:       dir,
		logger:    logger,
		reference: gocv.NewMat(),
		frames:    map[int]gocv.Mat{},
	}
}

func (r *Renderer) BeginVideo(_ int, v dicebench.Video) error {
	r.release()
	r.video = v

	ref := gocv.IMRead(v.ReferenceImagePath, gocv.IMReadColor)
	if ref.Empty() {
		ref.Close()
		ref = r.frame(v.Groundtruth.ReferenceFrameNo).Clone()
	}
	r.reference.Close()
	r.reference = ref

	if r.reference.Empty() {
		r.logger.Warn("no reference image, overlays disabled for video", "video", v.Name)
	}
	return nil
}

func (r *Renderer) AttemptScored(a dicebench.Attempt) error {
	if r.reference.Empty() {
		return nil
	}

	path := filepath.Join(r.dir, dicebench.OutputName(a.Video.Name, a.Competitor, ".png"))
	if err := r.draw(overlay.Build(a), path); err != nil {
		r.logger.Warn("could not render overlay", "path", path, "error", err)
	}
	return nil
}

func (r *Renderer) EndVideo(dicebench.VideoScores) error {
	r.release()
	return nil
}

func (r *Renderer) EndRun(dicebench.Snapshot) error {
	r.release()
	return nil
}

func (r *Renderer) draw(p overlay.Plan, path string) error {
	img := r.reference.Clone()
	defer img.Close()

	if p.BlendFrame >= 0 {
		frame := r.frame(p.BlendFrame)
		if !frame.Empty() && frame.Rows() == img.Rows() && frame.Cols() == img.Cols() {
			gocv.AddWeighted(img, blendAlpha, frame, 1-blendAlpha, 0, &img)
		}
	}

	if p.Tint {
		tint := img.Clone()
		gocv.Rectangle(&tint, image.Rect(0, 0, img.Cols(), img.Rows()), tintColor, -1)
		gocv.AddWeighted(img, 1-tintAlpha, tint, tintAlpha, 0, &img)
		tint.Close()
	}

	for _, s := range p.Shapes {
		for i := range s.Contour {
			gocv.Line(&img, s.Contour[i], s.Contour[(i+1)%len(s.Contour)], s.Color, 2)
		}
		gocv.PutText(&img, s.Label, s.LabelAt, gocv.FontHersheyPlain, 1.5, s.Color, 2)
	}

	for _, m := range p.Marks {
		gocv.Line(&img, m.At.Add(image.Pt(-crossSize, -crossSize)), m.At.Add(image.Pt(crossSize, crossSize)), m.Color, 2)
		gocv.Line(&img, m.At.Add(image.Pt(-crossSize, crossSize)), m.At.Add(image.Pt(crossSize, -crossSize)), m.Color, 2)
		gocv.PutText(&img, m.Label, m.At.Add(image.Pt(crossSize+2, -crossSize-2)), gocv.FontHersheyPlain, 1.2, m.Color, 1)
	}

	gocv.PutText(&img, p.Caption, image.Pt(10, 25), gocv.FontHersheySimplex, 0.7, p.Color, 2)

	if ok := gocv.IMWrite(path, img); !ok {
		return fmt.Errorf("imwrite %s failed", path)
	}
	return nil
}

// frame returns video frame n, reading it on first use. The result is owned
// by the cache and empty if the frame cannot be read.
func (r *Renderer) frame(n int) gocv.Mat {
	if m, ok := r.frames[n]; ok {
		return m
	}

	m := gocv.NewMat()
	vc, err := gocv.VideoCaptureFile(r.video.Path)
	if err != nil {
		r.logger.Debug("open video failed", "video", r.video.Path, "error", err)
		r.frames[n] = m
		return m
	}
	defer vc.Close()

	total := int(vc.Get(gocv.VideoCaptureFrameCount))
	if n >= 0 && (total <= 0 || n < total) {
		vc.Set(gocv.VideoCapturePosFrames, float64(n))
		if !vc.Read(&m) {
			r.logger.Debug("read frame failed", "video", r.video.Path, "frame", n)
		}
	}
	r.frames[n] = m
	return m
}

func (r *Renderer) release() {
	r.reference.Close()
	r.reference = gocv.NewMat()
	for n, m := range r.frames {
		m.Close()
		delete(r.frames, n)
	}
}
