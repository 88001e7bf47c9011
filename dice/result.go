package dice

import (
	"bufio"
	"fmt"
	"image"
	"io"
	"os"
	"strconv"
)

// maxPrealloc bounds the capacity reserved from an untrusted detection count.
const maxPrealloc = 1024

// ParseResult reads a detection result:
//
//	<referenceFrameNo>
//	<n>
//	<x> <y> <value>    (n lines)
//
// Tokens are whitespace separated; line breaks carry no meaning. Anything after
// the n-th detection is ignored. Die values are not range checked.
func ParseResult(r io.Reader) (*DetectionResult, error) {
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)

	next := func(what string) (string, error) {
		if scanner.Scan() {
			return scanner.Text(), nil
		}
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("%w: reading %s: %w", ErrMalformedResult, what, err)
		}
		return "", fmt.Errorf("%w: missing %s", ErrMalformedResult, what)
	}

	frameTok, err := next("reference frame number")
	if err != nil {
		return nil, err
	}
	frameNo, err := parseCount(frameTok, "reference frame number")
	if err != nil {
		return nil, err
	}

	countTok, err := next("detection count")
	if err != nil {
		return nil, err
	}
	count, err := parseCount(countTok, "detection count")
	if err != nil {
		return nil, err
	}

	result := &DetectionResult{
		ReferenceFrameNo: frameNo,
		DetectedDice:     make([]DetectedDie, 0, min(count, maxPrealloc)),
	}

	for i := 0; i < count; i++ {
		var fields [3]int
		for k, name := range [3]string{"x", "y", "value"} {
			what := fmt.Sprintf("%s of detection %d", name, i)
			tok, err := next(what)
			if err != nil {
				return nil, err
			}
			v, err := strconv.Atoi(tok)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %q is not an integer", ErrMalformedResult, what, tok)
			}
			fields[k] = v
		}
		result.DetectedDice = append(result.DetectedDice, DetectedDie{
			Position: image.Pt(fields[0], fields[1]),
			Value:    fields[2],
		})
	}

	return result, nil
}

// LoadResult parses the result file at path. A missing or unreadable file is
// reported as ErrMalformedResult wrapping the underlying os error.
func LoadResult(path string) (*DetectionResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResult, err)
	}
	defer func() { _ = f.Close() }()

	result, err := ParseResult(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return result, nil
}

func parseCount(tok, what string) (int, error) {
	v, err := strconv.ParseUint(tok, 10, 31)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %q is not a non-negative integer", ErrMalformedResult, what, tok)
	}
	return int(v), nil
}
