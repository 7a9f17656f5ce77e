// SPDX-License-Identifier: MPL-2.0

// Package mpycrosstest turns a test binary into a stand-in for mpy-cross.
//
// A package's TestMain calls Run; when the binary is re-executed as a child
// process it behaves like the compiler instead of running tests, so Path
// can be passed anywhere an mpy-cross path is expected:
//
//	func TestMain(m *testing.M) { mpycrosstest.Run(m) }
//
//	c := mpycross.New(mpycrosstest.Path(t))
package mpycrosstest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

const (
	// Env makes the test binary behave like mpy-cross.
	// Run sets it after its own check, so only child processes see it.
	Env = "MPYCROSS_FAKE_COMPILER"

	// VersionExitEnv set to a nonzero exit code makes --version fail with
	// VersionFailure on stderr.
	VersionExitEnv = "MPYCROSS_FAKE_VERSION_EXIT"
	// VersionFailure is the stderr text of a failing --version.
	VersionFailure = "fake: version unavailable"

	// Version is printed for --version.
	Version = "MicroPython v1.22.0 on 2024-01-01; mpy-cross emitting mpy v6.2"
	// FormatVersion is the .mpy version byte written into artifacts.
	FormatVersion = 6
	// DefaultSmallIntBits is written when -msmall-int-bits is absent.
	DefaultSmallIntBits = 31
	// FailAfterOutputMarker makes the fake write its output and still exit 3.
	FailAfterOutputMarker = "# fake: fail-after-output"
	// SyntaxErrorMarker in a source makes the fake reject it like a syntax error.
	SyntaxErrorMarker = "$"

	magic = 'M'
)

// Run dispatches to the fake compiler in child processes and to m.Run otherwise.
// It never returns.
func Run(m *testing.M) {
	if os.Getenv(Env) == "1" {
		os.Exit(Main(os.Args[1:], os.Stdout, os.Stderr))
	}
	if err := os.Setenv(Env, "1"); err != nil {
		fmt.Fprintf(os.Stderr, "failed to set %s: %v\n", Env, err)
		os.Exit(1)
	}
	os.Exit(m.Run())
}

// Path returns the running test binary, which acts as mpy-cross when
// executed as a child of a test started through Run.
func Path(t testing.TB) string {
	t.Helper()
	exe, err := os.Executable()
	if err != nil {
		t.Fatalf("os.Executable() error: %v", err)
	}
	return exe
}

// Main emulates the subset of mpy-cross behavior callers rely on: --version,
// the -s/-O/-m/-X options, syntax errors and the X.py -> X.mpy output
// convention. Every received argument is echoed on its own stdout line.
// The artifact is the 4-byte header, the optimization level plus one, the
// source name, a NUL byte and the source text.
func Main(args []string, stdout, stderr io.Writer) int {
	if len(args) == 1 && args[0] == "--version" {
		if code, err := strconv.Atoi(os.Getenv(VersionExitEnv)); err == nil && code != 0 {
			fmt.Fprintln(stderr, VersionFailure)
			return code
		}
		fmt.Fprintln(stdout, Version)
		return 0
	}

	for _, a := range args {
		fmt.Fprintln(stdout, a)
	}

	var (
		input      string
		sourceName string
		optLevel   = -1
		intBits    = DefaultSmallIntBits
	)

	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "-s" || a == "-X":
			if i+1 >= len(args) {
				fmt.Fprintf(stderr, "missing value for %s\n", a)
				return 2
			}
			if a == "-s" {
				sourceName = args[i+1]
			}
			i++
		case strings.HasPrefix(a, "-O"):
			n, err := strconv.Atoi(strings.TrimPrefix(a, "-O"))
			if err != nil {
				fmt.Fprintf(stderr, "bad optimization level %q\n", a)
				return 2
			}
			optLevel = n
		case strings.HasPrefix(a, "-msmall-int-bits="):
			n, err := strconv.Atoi(strings.TrimPrefix(a, "-msmall-int-bits="))
			if err != nil {
				fmt.Fprintf(stderr, "bad small int bits %q\n", a)
				return 2
			}
			intBits = n
		case a == "-mno-unicode", strings.HasPrefix(a, "-march="), a == "-v":
		case strings.HasPrefix(a, "-"):
			fmt.Fprintf(stderr, "unknown option %s\n", a)
			return 2
		default:
			input = a
		}
	}

	if input == "" {
		fmt.Fprintln(stderr, "no input file")
		return 1
	}
	if sourceName == "" {
		sourceName = input
	}

	src, err := os.ReadFile(input)
	if err != nil {
		fmt.Fprintf(stderr, "cannot open %s: %v\n", input, err)
		return 1
	}

	if strings.Contains(string(src), SyntaxErrorMarker) {
		fmt.Fprintf(stderr, "Traceback (most recent call last):\n  File \"%s\", line 1\nSyntaxError: invalid syntax\n", sourceName)
		return 1
	}

	out := []byte{magic, FormatVersion, 0, byte(intBits), byte(optLevel + 1)}
	out = append(out, sourceName...)
	out = append(out, 0)
	out = append(out, src...)

	outPath := strings.TrimSuffix(input, filepath.Ext(input)) + ".mpy"
	if err := os.WriteFile(outPath, out, 0o600); err != nil {
		fmt.Fprintf(stderr, "cannot write %s: %v\n", outPath, err)
		return 1
	}

	if strings.Contains(string(src), FailAfterOutputMarker) {
		fmt.Fprintln(stderr, "fake failure after output")
		return 3
	}
	return 0
}
