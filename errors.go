package dicebench

import "errors"

// Sentinel errors for configuration problems. They are fatal: the evaluation
// never starts.
var (
	// ErrNoCompetitors indicates no competitor was configured.
	ErrNoCompetitors = errors.New("dicebench: no competitors")

	// ErrDuplicateCompetitor indicates two competitors share a name.
	ErrDuplicateCompetitor = errors.New("dicebench: duplicate competitor name")

	// ErrNotExecutable indicates a competitor executable path is not a regular file.
	ErrNotExecutable = errors.New("dicebench: executable is not a regular file")

	// ErrNotDirectory indicates a data or results path is not a directory.
	ErrNotDirectory = errors.New("dicebench: not a directory")

	// ErrNoVideos indicates no evaluation data was found.
	ErrNoVideos = errors.New("dicebench: no evaluation videos")
)
