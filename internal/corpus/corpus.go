// Package corpus discovers evaluation videos on disk.
//
// A video is any file ending in ".avi" anywhere below the data directory. It
// must have two siblings with the same base name: a ".png" reference image and
// a ".json" labelme annotation.
package corpus

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	dicebench "github.com/jamesainslie/go-dicebench"
	"github.com/jamesainslie/go-dicebench/dice"
)

const (
	VideoExt      = ".avi"
	ReferenceExt  = ".png"
	AnnotationExt = ".json"
)

// ErrMissingSibling indicates a video without its reference image or annotation.
var ErrMissingSibling = errors.New("corpus: missing companion file")

// LoadVideo loads the annotation that belongs to the video at path.
func LoadVideo(path string) (dicebench.Video, error) {
	base := strings.TrimSuffix(path, filepath.Ext(path))
	v := dicebench.Video{
		Name:               filepath.Base(base),
		Path:               path,
		ReferenceImagePath: base + ReferenceExt,
		AnnotationPath:     base + AnnotationExt,
	}

	for _, sibling := range []string{v.ReferenceImagePath, v.AnnotationPath} {
		info, err := os.Stat(sibling)
		if err != nil {
			return dicebench.Video{}, fmt.Errorf("%w: %w", ErrMissingSibling, err)
		}
		if !info.Mode().IsRegular() {
			return dicebench.Video{}, fmt.Errorf("%w: %s is not a file", ErrMissingSibling, sibling)
		}
	}

	gt, err := dice.LoadGroundtruth(v.AnnotationPath)
	if err != nil {
		return dicebench.Video{}, fmt.Errorf("load annotation: %w", err)
	}
	v.Groundtruth = gt

	return v, nil
}

// Load walks dir recursively and loads every video in lexical path order.
// Any unreadable or incomplete video aborts the load.
func Load(dir string) ([]dicebench.Video, error) {
	if err := dicebench.CheckDirectory(dir); err != nil {
		return nil, err
	}

	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), VideoExt) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk dir: %w", err)
	}
	sort.Strings(paths)

	videos := make([]dicebench.Video, 0, len(paths))
	names := make(map[string]string, len(paths))
	for _, path := range paths {
		v, err := LoadVideo(path)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
		if prev, ok := names[v.Name]; ok {
			return nil, fmt.Errorf("loading %s: video name %q already used by %s", path, v.Name, prev)
		}
		names[v.Name] = path
		videos = append(videos, v)
	}

	if len(videos) == 0 {
		return nil, fmt.Errorf("%w in %s", dicebench.ErrNoVideos, dir)
	}
	return videos, nil
}
