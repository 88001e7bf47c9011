package dice

import (
	"fmt"
	"image"
	"os"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// ParseGroundtruth decodes an annotation document as written by the labelme
// annotation tool. The reference frame is taken from the first key of
// "flags", which has the form "<name>=<frameNo>". Every entry of "shapes"
// becomes one die: its "label" must be a die value in 1..6 and its "points"
// must hold at least three [x, y] pairs.
func ParseGroundtruth(data []byte) (*Groundtruth, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: not valid JSON", ErrInvalidGroundtruth)
	}
	doc := gjson.ParseBytes(data)

	flags := doc.Get("flags")
	if !flags.IsObject() {
		return nil, fmt.Errorf("%w: missing flags object", ErrInvalidGroundtruth)
	}
	var flag string
	var found bool
	flags.ForEach(func(key, _ gjson.Result) bool {
		flag, found = key.String(), true
		return false
	})
	if !found {
		return nil, fmt.Errorf("%w: no reference frame flag", ErrInvalidGroundtruth)
	}

	frameStr := flag
	if i := strings.IndexByte(flag, '='); i >= 0 {
		frameStr = flag[i+1:]
	}
	frameNo, err := strconv.ParseUint(strings.TrimSpace(frameStr), 10, 31)
	if err != nil {
		return nil, fmt.Errorf("%w: reference frame flag %q", ErrInvalidGroundtruth, flag)
	}

	shapes := doc.Get("shapes")
	if !shapes.IsArray() {
		return nil, fmt.Errorf("%w: missing shapes array", ErrInvalidGroundtruth)
	}

	gt := &Groundtruth{ReferenceFrameNo: int(frameNo)}
	for i, shape := range shapes.Array() {
		die, err := parseShape(shape)
		if err != nil {
			return nil, fmt.Errorf("%w: shape %d: %w", ErrInvalidGroundtruth, i, err)
		}
		gt.GroundtruthDice = append(gt.GroundtruthDice, die)
	}

	return gt, nil
}

// LoadGroundtruth reads and parses the annotation file at path.
func LoadGroundtruth(path string) (*Groundtruth, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidGroundtruth, err)
	}

	gt, err := ParseGroundtruth(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return gt, nil
}

func parseShape(shape gjson.Result) (GroundtruthDie, error) {
	label := shape.Get("label")
	if label.Type != gjson.String {
		return GroundtruthDie{}, fmt.Errorf("label is not a string")
	}
	value, err := strconv.Atoi(strings.TrimSpace(label.Str))
	if err != nil {
		return GroundtruthDie{}, fmt.Errorf("label %q is not a number", label.Str)
	}
	if value < MinValue || value > MaxValue {
		return GroundtruthDie{}, fmt.Errorf("invalid die value: %d", value)
	}

	points := shape.Get("points").Array()
	if len(points) < 3 {
		return GroundtruthDie{}, fmt.Errorf("contour needs at least 3 points, got %d", len(points))
	}

	die := GroundtruthDie{Value: value}
	for k, p := range points {
		xy := p.Array()
		if len(xy) < 2 || xy[0].Type != gjson.Number || xy[1].Type != gjson.Number {
			return GroundtruthDie{}, fmt.Errorf("point %d is not an [x, y] pair", k)
		}
		die.Contour = append(die.Contour, image.Pt(int(xy[0].Float()), int(xy[1].Float())))
	}

	return die, nil
}
