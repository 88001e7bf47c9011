// Command dice-score scores a single detection result file against an
// annotation, the way dice-eval would.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/go-dicebench/dice"
)

func main() {
	cmd := &cobra.Command{
		Use:           "dice-score ANNOTATION RESULT",
		Short:         "Score one detection result against a labelme annotation",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")
			return score(args[0], args[1], verbose)
		},
	}
	cmd.Flags().BoolP("verbose", "v", false, "print per-die and per-detection flags")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func score(annotationPath, resultPath string, verbose bool) error {
	truth, err := dice.LoadGroundtruth(annotationPath)
	if err != nil {
		return err
	}

	result, err := dice.LoadResult(resultPath)
	if err != nil {
		fmt.Printf("No result! 0 points (%v)\n", err)
		return nil
	}

	o := dice.Score(result, truth)
	fmt.Printf("Reference frame: #%d (annotated #%d)\n", result.ReferenceFrameNo, truth.ReferenceFrameNo)
	fmt.Printf("Hits: %d/%d\n", o.Hits(), len(truth.GroundtruthDice))
	fmt.Printf("Correct: %d\n", o.Correct())
	fmt.Printf("Detections: %d\n", len(result.DetectedDice))
	fmt.Printf("Points: %d/%d\n", o.Points, truth.MaximumScore())

	if !verbose {
		return nil
	}

	fmt.Println("Dice:")
	for i, d := range truth.GroundtruthDice {
		fmt.Printf("  %d: value %d, hit %v, correct %v\n", i+1, d.Value, o.HitByAnyDetection[i], o.ClassifiedCorrectly[i])
	}
	fmt.Println("Detections:")
	for i, d := range result.DetectedDice {
		fmt.Printf("  %d: (%d, %d) value %d, completely wrong %v\n", i+1, d.Position.X, d.Position.Y, d.Value, o.CompletelyWrong[i])
	}
	return nil
}
