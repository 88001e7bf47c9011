//go:build ignore

// A competitor that cheats: it reads the annotation next to the video and
// reports the center of every annotated die. Useful to check that a perfect
// answer gets the maximum score.
// Usage: go build -o bin/oracle ./scripts/oracle-competitor.go
//
//	bin/oracle VIDEO OUTPUT
package main

import (
	"bufio"
	"fmt"
	"image"
	"os"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/jamesainslie/go-dicebench/geometry"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintln(os.Stderr, "Usage: oracle VIDEO OUTPUT")
		os.Exit(1)
	}
	video, output := os.Args[1], os.Args[2]

	data, err := os.ReadFile(strings.TrimSuffix(video, ".avi") + ".json")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading annotation: %v\n", err)
		os.Exit(1)
	}
	doc := gjson.ParseBytes(data)

	frame := 0
	doc.Get("flags").ForEach(func(key, _ gjson.Result) bool {
		_, n, _ := strings.Cut(key.String(), "=")
		frame, _ = strconv.Atoi(n)
		return false
	})

	f, err := os.Create(output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	shapes := doc.Get("shapes").Array()
	fmt.Fprintf(w, "%d\n%d\n", frame, len(shapes))
	for _, s := range shapes {
		var contour geometry.Polygon
		for _, p := range s.Get("points").Array() {
			contour = append(contour, image.Pt(int(p.Get("0").Float()), int(p.Get("1").Float())))
		}
		c := contour.Centroid()
		fmt.Fprintf(w, "%d %d %s\n", c.X, c.Y, s.Get("label").String())
	}
	if err := w.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		os.Exit(1)
	}
}
