// Package dicebench runs dice-detection competitors against a library of
// annotated videos and ranks them.
//
// # Quick Start
//
//	videos, err := corpus.Load("data")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ev, err := dicebench.New(competitors, videos, runDir,
//	    dicebench.WithSink(report.NewConsole(os.Stdout, false)))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	final, err := ev.Run(ctx)
//
// # Evaluation
//
// Videos are processed one after another and, for every video, competitors
// are run one after another, each with exclusive use of the machine. A
// competitor is invoked as
//
//	<executable> <videoPath> <outputPath>
//
// and must write its detections to outputPath before it exits or is killed at
// the deadline. Runs that crash, time out, write nothing or write garbage score
// zero for that video; the evaluation carries on.
//
// # Scoring
//
// Each annotated die found scores 2, a found die whose value is also right
// scores 1 more, and every reported detection costs 1. Competitors are ranked
// by total score with competition ranking: ties share a rank and the next
// rank skips accordingly (10, 10, 7 ranks as 1, 1, 3).
//
// # Thread Safety
//
// An Evaluator is driven by a single goroutine. Sinks receive value
// snapshots and may hand them to other goroutines.
package dicebench
