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
}

const (
	binary       = "bin/tytalb"
	syntheticDir = "testdata/synthetic"
)

// All runs lint and tests, then builds the binary.
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

// Build compiles the tytalb binary with version information.
func Build() error {
	st.Deps(Init)

	rebuild, err := target.Glob(binary, "**/*.go", "go.mod", "go.sum")
	if err != nil {
		return fmt.Errorf("checking rebuild: %w", err)
	}
	if !rebuild {
		if st.Verbose() {
			fmt.Println("tytalb is up to date")
		}
		return nil
	}
	return sh.RunV("go", "build", "-ldflags", buildLdflags(), "-o", binary, "./cmd/tytalb")
}

// buildLdflags returns ldflags for version injection.
func buildLdflags() string {
	version, _ := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	commit, _ := sh.Output("git", "rev-parse", "--short", "HEAD")
	return fmt.Sprintf(
		"-X main.version=%s -X main.commit=%s -X main.date=%s",
		strings.TrimSpace(version),
		strings.TrimSpace(commit),
		time.Now().Format(time.RFC3339),
	)
}

// Test runs all tests with race detection and coverage.
func Test() error {
	st.Deps(Init)
	return sh.RunV("go", "test", "-race", "-cover", "./...")
}

// TestShort runs tests in short mode.
func TestShort() error {
	st.Deps(Init)
	return sh.RunV("go", "test", "-short", "-race", "./...")
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

// Clean removes build artifacts and generated data.
func Clean() error {
	for _, a := range []string{"bin/", syntheticDir, "coverage.out", "coverage.html"} {
		if err := sh.Rm(a); err != nil {
			return fmt.Errorf("removing %s: %w", a, err)
		}
	}
	return nil
}

// Install builds tytalb and copies it to GOBIN.
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

	dst := bin + "/tytalb"
	if runtime.GOOS == "windows" {
		dst += ".exe"
	}
	if err := sh.Copy(dst, binary); err != nil {
		return fmt.Errorf("installing tytalb: %w", err)
	}
	if st.Verbose() {
		fmt.Printf("Installed tytalb to %s\n", dst)
	}
	return nil
}

// Bench namespace for runs on generated annotations.
type Bench st.Namespace

// Generate writes a synthetic ground truth and predictions to
// testdata/synthetic. TYTALB_RECORDINGS sets the number of recordings.
func (Bench) Generate() error {
	args := []string{"run", "./scripts/gen-synthetic.go", "-out", syntheticDir}
	if n := os.Getenv("TYTALB_RECORDINGS"); n != "" {
		args = append(args, "-recordings", n)
	}
	return sh.RunV("go", args...)
}

// Run validates the synthetic predictions against the synthetic ground
// truth.
func (Bench) Run() error {
	st.Deps(Build, Bench.Generate)
	return sh.RunV(binary, "validate",
		"--gt", syntheticDir+"/gt", "--fgt", "raven",
		"--tv", syntheticDir+"/tv", "--ftv", "birdnet",
		"--recursive", "--json",
		"-o", syntheticDir+"/out",
	)
}

// Sweep runs a confidence sweep over the synthetic predictions.
func (Bench) Sweep() error {
	st.Deps(Build, Bench.Generate)
	return sh.RunV(binary, "sweep",
		"--gt", syntheticDir+"/gt", "--fgt", "raven",
		"--tv", syntheticDir+"/tv", "--ftv", "birdnet",
		"--recursive", "--binary", "--positive", "Tyto alba",
		"--min", "0.05", "--max", "0.95", "--step", "0.05",
		"-o", syntheticDir+"/out",
	)
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
