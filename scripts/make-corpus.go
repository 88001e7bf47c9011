//go:build ignore

// Generate a small synthetic evaluation corpus: short videos of "dice" drawn
// as labelled squares, each with its reference image and labelme annotation.
// Usage: go run ./scripts/make-corpus.go -out testdata/corpus -videos 3
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"image"
	"image/color"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"

	"gocv.io/x/gocv"
)

const (
	width    = 320
	height   = 240
	frames   = 30
	fps      = 10
	dieSize  = 36
	maxTries = 100
)

type shape struct {
	Label     string       `json:"label"`
	Points    [][2]float64 `json:"points"`
	ShapeType string       `json:"shape_type"`
	Flags     struct{}     `json:"flags"`
}

type annotation struct {
	Version     string          `json:"version"`
	Flags       map[string]bool `json:"flags"`
	Shapes      []shape         `json:"shapes"`
	ImagePath   string          `json:"imagePath"`
	ImageHeight int             `json:"imageHeight"`
	ImageWidth  int             `json:"imageWidth"`
}

type die struct {
	rect  image.Rectangle
	value int
}

func main() {
	out := flag.String("out", "testdata/corpus", "Output directory")
	videos := flag.Int("videos", 3, "Number of videos")
	seed := flag.Uint64("seed", 1, "Random seed")
	flag.Parse()

	if err := os.MkdirAll(*out, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating %s: %v\n", *out, err)
		os.Exit(1)
	}

	rng := rand.New(rand.NewPCG(*seed, *seed))
	for i := 1; i <= *videos; i++ {
		name := fmt.Sprintf("clip%02d", i)
		fmt.Printf("Writing %s...\n", name)
		if err := writeVideo(*out, name, rng); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", name, err)
			os.Exit(1)
		}
	}
}

func placeDice(rng *rand.Rand) []die {
	n := 1 + rng.IntN(4)
	var dice []die
	for tries := 0; len(dice) < n && tries < maxTries; tries++ {
		x := rng.IntN(width - dieSize)
		y := rng.IntN(height - dieSize)
		r := image.Rect(x, y, x+dieSize, y+dieSize)
		overlaps := false
		for _, d := range dice {
			if d.rect.Inset(-4).Overlaps(r) {
				overlaps = true
				break
			}
		}
		if !overlaps {
			dice = append(dice, die{rect: r, value: 1 + rng.IntN(6)})
		}
	}
	return dice
}

func writeVideo(dir, name string, rng *rand.Rand) error {
	dice := placeDice(rng)
	refFrame := frames/2 + rng.IntN(frames/2)

	vw, err := gocv.VideoWriterFile(filepath.Join(dir, name+".avi"), "MJPG", fps, width, height, true)
	if err != nil {
		return err
	}
	defer vw.Close()

	img := gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3)
	defer img.Close()

	for f := 0; f < frames; f++ {
		// Dice roll in from the left until they settle at the reference frame.
		shift := 0
		if f < refFrame {
			shift = (refFrame - f) * 4
		}

		gocv.Rectangle(&img, image.Rect(0, 0, width, height), color.RGBA{G: 90, A: 255}, -1)
		for _, d := range dice {
			r := d.rect.Sub(image.Pt(shift, 0))
			gocv.Rectangle(&img, r, color.RGBA{R: 240, G: 240, B: 240, A: 255}, -1)
			gocv.PutText(&img, strconv.Itoa(d.value), r.Min.Add(image.Pt(11, 27)), gocv.FontHersheySimplex, 0.9, color.RGBA{A: 255}, 2)
		}
		if err := vw.Write(img); err != nil {
			return err
		}
		if f == refFrame {
			if ok := gocv.IMWrite(filepath.Join(dir, name+".png"), img); !ok {
				return fmt.Errorf("could not write reference image")
			}
		}
	}

	ann := annotation{
		Version:     "4.5.6",
		Flags:       map[string]bool{"ref_frame=" + strconv.Itoa(refFrame): true},
		ImagePath:   name + ".png",
		ImageHeight: height,
		ImageWidth:  width,
	}
	for _, d := range dice {
		r := d.rect
		ann.Shapes = append(ann.Shapes, shape{
			Label: strconv.Itoa(d.value),
			Points: [][2]float64{
				{float64(r.Min.X), float64(r.Min.Y)},
				{float64(r.Max.X), float64(r.Min.Y)},
				{float64(r.Max.X), float64(r.Max.Y)},
				{float64(r.Min.X), float64(r.Max.Y)},
			},
			ShapeType: "polygon",
		})
	}

	data, err := json.MarshalIndent(ann, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, name+".json"), data, 0o644)
}
