//go:build stave

package main

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/yaklabco/stave/pkg/sh"
	"github.com/yaklabco/stave/pkg/st"
	"github.com/yaklabco/stave/pkg/target"
)

// Default target when running `stave` with no arguments.
var Default = All

// Aliases for common targets.
var Aliases = map[string]interface{}{
	"b": Build,
	"t": Test,
	"l": Lint,
	"c": Clean,
	"e": Eval.Run,
}

var binaries = []string{"dice-eval", "dice-score"}

// Packages that build without OpenCV.
var corePackages = []string{
	".",
	"./geometry/...",
	"./dice/...",
	"./runner/...",
	"./internal/corpus/...",
	"./internal/report/...",
	"./internal/overlay/...",
	"./internal/leaderboard/...",
	"./internal/config/...",
}

// All runs the complete build pipeline: lint, test, and build.
func All() error {
	st.Deps(Init)
	st.Deps(Lint, Test)
	st.Deps(Build)
	return nil
}

// Init ensures the module dependencies are up to date.
func Init() error {
	return sh.Run("go", "mod", "tidy")
}

// Build compiles dice-eval and dice-score.
func Build() error {
	st.Deps(Init)
	st.Deps(Build_Eval, Build_Score)
	return nil
}

// Build_Eval compiles the dice-eval binary. Needs OpenCV for gocv.
func Build_Eval() error {
	st.Deps(Init)
	return buildBinary("dice-eval")
}

// Build_Score compiles the dice-score binary.
func Build_Score() error {
	st.Deps(Init)
	return buildBinary("dice-score")
}

func buildBinary(name string) error {
	out := "bin/" + name
	rebuild, err := target.Glob(out, "**/*.go", "go.mod", "go.sum")
	if err != nil {
		return fmt.Errorf("checking rebuild: %w", err)
	}
	if !rebuild {
		if st.Verbose() {
			fmt.Printf("%s is up to date\n", name)
		}
		return nil
	}
	return sh.RunV("go", "build", "-ldflags", buildLdflags(), "-o", out, "./cmd/"+name)
}

// buildLdflags returns ldflags for version injection.
func buildLdflags() string {
	version, _ := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	commit, _ := sh.Output("git", "rev-parse", "--short", "HEAD")
	date := time.Now().Format(time.RFC3339)

	return fmt.Sprintf(
		"-X main.version=%s -X main.commit=%s -X main.date=%s",
		strings.TrimSpace(version),
		strings.TrimSpace(commit),
		date,
	)
}

// Test runs all tests with race detection and coverage.
func Test() error {
	st.Deps(Init)
	return sh.RunV("go", "test", "-race", "-cover", "./...")
}

// TestCore runs the tests of every package that does not need OpenCV.
func TestCore() error {
	st.Deps(Init)
	args := append([]string{"test", "-race", "-cover"}, corePackages...)
	return sh.RunV("go", args...)
}

// TestShort runs tests in short mode, skipping the process timeout tests.
func TestShort() error {
	st.Deps(Init)
	args := append([]string{"test", "-short", "-race"}, corePackages...)
	return sh.RunV("go", args...)
}

// Lint runs golangci-lint on the codebase.
func Lint() error {
	return sh.RunV("golangci-lint", "run", "./...")
}

// LintFix runs golangci-lint with auto-fix enabled.
func LintFix() error {
	return sh.RunV("golangci-lint", "run", "--fix", "./...")
}

// Fmt formats all Go code using gofmt and goimports.
func Fmt() error {
	if err := sh.Run("gofmt", "-w", "."); err != nil {
		return fmt.Errorf("gofmt: %w", err)
	}
	if err := sh.Run("goimports", "-w", "."); err != nil {
		return fmt.Errorf("goimports: %w", err)
	}
	return nil
}

// Vet runs go vet on all packages.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Clean removes build artifacts and local evaluation output.
func Clean() error {
	artifacts := []string{"bin/", "results/", "coverage.out", "coverage.html"}
	for _, a := range artifacts {
		if err := sh.Rm(a); err != nil {
			return fmt.Errorf("removing %s: %w", a, err)
		}
	}
	return nil
}

// Install builds and installs the binaries to GOBIN.
func Install() error {
	st.Deps(Build)

	gocmd := st.GoCmd()
	bin, err := sh.Output(gocmd, "env", "GOBIN")
	if err != nil {
		return fmt.Errorf("determining GOBIN: %w", err)
	}
	if bin == "" {
		gopath, err := sh.Output(gocmd, "env", "GOPATH")
		if err != nil {
			return fmt.Errorf("determining GOPATH: %w", err)
		}
		bin = gopath + "/bin"
	}

	for _, name := range binaries {
		dst := bin + "/" + name
		if runtime.GOOS == "windows" {
			dst += ".exe"
		}
		if err := sh.Copy(dst, "bin/"+name); err != nil {
			return fmt.Errorf("installing %s: %w", name, err)
		}
		if st.Verbose() {
			fmt.Printf("Installed %s to %s\n", name, dst)
		}
	}
	return nil
}

// Eval namespace for running evaluations locally.
type Eval st.Namespace

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Corpus generates a small synthetic corpus under testdata/corpus.
func (Eval) Corpus() error {
	return sh.RunV("go", "run", "scripts/make-corpus.go", "-out", envOr("DICEBENCH_CORPUS", "testdata/corpus"))
}

// Oracle builds the reference competitor that answers from the annotations.
func (Eval) Oracle() error {
	return sh.RunV("go", "build", "-o", "bin/oracle", "scripts/oracle-competitor.go")
}

// Run evaluates the oracle competitor on the synthetic corpus.
// Set DICEBENCH_CORPUS to use another data directory.
func (Eval) Run() error {
	st.Deps(Build_Eval, Eval.Oracle)

	corpus := envOr("DICEBENCH_CORPUS", "testdata/corpus")
	if _, err := os.Stat(corpus); os.IsNotExist(err) {
		st.Deps(Eval.Corpus)
	}
	if err := os.MkdirAll("results", 0o755); err != nil {
		return err
	}

	return sh.RunV("./bin/dice-eval", "oracle", "bin/oracle", corpus, "results")
}

// CI runs the full CI pipeline (lint, test, build).
func CI() error {
	st.Deps(Init)
	st.SerialDeps(Lint, Test, Build)
	return nil
}

// Check runs quick validation (vet, lint, short tests).
func Check() error {
	st.Deps(Vet, Lint, TestShort)
	return nil
}

// Coverage generates a coverage report.
func Coverage() error {
	st.Deps(Init)
	if err := sh.RunV("go", "test", "-race", "-coverprofile=coverage.out", "./..."); err != nil {
		return err
	}
	return sh.RunV("go", "tool", "cover", "-html=coverage.out", "-o", "coverage.html")
}

// Tidy runs go mod tidy and verifies the go.sum is clean.
func Tidy() error {
	if err := sh.Run("go", "mod", "tidy"); err != nil {
		return err
	}
	output, err := sh.Output("git", "diff", "--exit-code", "go.sum")
	if err != nil {
		if output != "" {
			return fmt.Errorf("go.sum is not clean:\n%s", output)
		}
	}
	return nil
}
