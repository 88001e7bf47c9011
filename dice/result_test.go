package dice

import (
	"errors"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseResult(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    *DetectionResult
		wantErr bool
	}{
		{
			name:  "two detections",
			input: "42\n2\n10 20 3\n30 40 6\n",
			want: &DetectionResult{
				ReferenceFrameNo: 42,
				DetectedDice: []DetectedDie{
					{Position: image.Pt(10, 20), Value: 3},
					{Position: image.Pt(30, 40), Value: 6},
				},
			},
		},
		{
			name:  "no detections",
			input: "7\n0\n",
			want:  &DetectionResult{ReferenceFrameNo: 7, DetectedDice: []DetectedDie{}},
		},
		{
			name:  "tokens on one line",
			input: "1 1 5 5 2",
			want: &DetectionResult{
				ReferenceFrameNo: 1,
				DetectedDice:     []DetectedDie{{Position: image.Pt(5, 5), Value: 2}},
			},
		},
		{
			name:  "trailing data ignored",
			input: "1\n1\n5 5 2\ngarbage here\n",
			want: &DetectionResult{
				ReferenceFrameNo: 1,
				DetectedDice:     []DetectedDie{{Position: image.Pt(5, 5), Value: 2}},
			},
		},
		{
			name:  "values outside 1..6 accepted",
			input: "3\n2\n1 1 0\n2 2 9\n",
			want: &DetectionResult{
				ReferenceFrameNo: 3,
				DetectedDice: []DetectedDie{
					{Position: image.Pt(1, 1), Value: 0},
					{Position: image.Pt(2, 2), Value: 9},
				},
			},
		},
		{
			name:  "negative coordinates",
			input: "0\n1\n-4 -2 1\n",
			want: &DetectionResult{
				DetectedDice: []DetectedDie{{Position: image.Pt(-4, -2), Value: 1}},
			},
		},
		{name: "empty", input: "", wantErr: true},
		{name: "missing count", input: "12\n", wantErr: true},
		{name: "non-numeric frame", input: "abc\n0\n", wantErr: true},
		{name: "negative frame", input: "-1\n0\n", wantErr: true},
		{name: "non-numeric count", input: "1\ntwo\n", wantErr: true},
		{name: "non-numeric coordinate", input: "1\n1\n5 y 2\n", wantErr: true},
		{name: "non-numeric value", input: "1\n1\n5 5 three\n", wantErr: true},
		{name: "fractional coordinate", input: "1\n1\n5.5 5 3\n", wantErr: true},
		{name: "fewer detections than announced", input: "1\n2\n5 5 2\n", wantErr: true},
		{name: "truncated detection", input: "1\n1\n5 5\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseResult(strings.NewReader(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseResult() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedResult) {
					t.Errorf("expected ErrMalformedResult, got: %v", err)
				}
				return
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseResult() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadResult(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "video - alice.txt")
	if err := os.WriteFile(path, []byte("5\n1\n10 10 4\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := LoadResult(path)
	if err != nil {
		t.Fatalf("LoadResult() error = %v", err)
	}
	if got.ReferenceFrameNo != 5 || len(got.DetectedDice) != 1 {
		t.Errorf("LoadResult() = %+v", got)
	}
}

func TestLoadResult_Missing(t *testing.T) {
	_, err := LoadResult(filepath.Join(t.TempDir(), "absent.txt"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, ErrMalformedResult) {
		t.Errorf("expected ErrMalformedResult, got: %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got: %v", err)
	}
}

func TestLoadResult_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.txt")
	if err := os.WriteFile(path, []byte("1\n1\nx y z\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadResult(path)
	if !errors.Is(err, ErrMalformedResult) {
		t.Errorf("expected ErrMalformedResult, got: %v", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Errorf("error %q does not name the file", err)
	}
}
