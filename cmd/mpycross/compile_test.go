// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/invowk/mpycross/internal/issue"
	"github.com/invowk/mpycross/internal/testutil"
	"github.com/invowk/mpycross/internal/testutil/mpycrosstest"

	"github.com/pelletier/go-toml/v2"
)

func readArtifact(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("artifact %s not written: %v", path, err)
	}
	if len(data) < 5 || data[0] != 'M' {
		t.Fatalf("artifact %s has an unexpected header: %q", path, data)
	}
	return data
}

func TestCompile_WritesArtifactNextToSource(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, "")
	src := testutil.MustWriteFile(t, filepath.Join(t.TempDir(), "main.py"), "print('hi')\n")

	if err := app.execute(t, "compile", src); err != nil {
		t.Fatalf("compile failed: %v\nstderr: %s", err, app.stderr.String())
	}

	data := readArtifact(t, strings.TrimSuffix(src, ".py")+".mpy")
	if data[1] != mpycrosstest.FormatVersion || data[3] != mpycrosstest.DefaultSmallIntBits {
		t.Errorf("header = %v", data[:4])
	}
	if !strings.Contains(app.stdout.String(), "✓") || !strings.Contains(app.stdout.String(), "main.mpy") {
		t.Errorf("stdout should report the compiled file, got:\n%s", app.stdout.String())
	}
}

func TestCompile_SyntaxError(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, "")
	src := testutil.MustWriteFile(t, filepath.Join(t.TempDir(), "bad.py"), "$\n")

	err := app.execute(t, "compile", src)

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected *ExitError, got %v", err)
	}
	if exitErr.Code != 1 || exitErr.Err != nil {
		t.Errorf("ExitError = %+v, want code 1 without message", exitErr)
	}
	if !strings.Contains(app.stderr.String(), "SyntaxError:") {
		t.Errorf("compiler stderr should be passed through, got: %q", app.stderr.String())
	}
	if _, statErr := os.Stat(strings.TrimSuffix(src, ".py") + ".mpy"); !os.IsNotExist(statErr) {
		t.Errorf("no artifact should be written for a rejected source, stat error: %v", statErr)
	}
	if !strings.Contains(app.stdout.String(), "✗") {
		t.Errorf("stdout should mark the failure, got:\n%s", app.stdout.String())
	}
}

func TestCompile_InvalidOptimizationLevel(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, "")
	src := testutil.MustWriteFile(t, filepath.Join(t.TempDir(), "main.py"), "x = 1\n")

	err := app.execute(t, "compile", "-O", "5", src)

	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("expected *issue.ActionableError, got %v", err)
	}
	if ae.IssueID != issue.InvalidOptionId {
		t.Errorf("IssueID = %d, want InvalidOptionId", ae.IssueID)
	}
	if app.stdout.Len() != 0 || app.stderr.Len() != 0 {
		t.Errorf("no compiler should have run, stdout=%q stderr=%q", app.stdout.String(), app.stderr.String())
	}
}

func TestCompile_InvalidArch(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, "")
	src := testutil.MustWriteFile(t, filepath.Join(t.TempDir(), "main.py"), "x = 1\n")

	err := app.execute(t, "compile", "--arch", "z80", src)
	if err == nil || !strings.Contains(err.Error(), "arch") {
		t.Fatalf("expected an arch error, got %v", err)
	}
}

func TestCompile_ConfigDefaultsAndFlagOverrides(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, "")
	testutil.MustWriteFile(t, filepath.Join(app.configDir, "config.cue"),
		"defaults: {optimization_level: 2, small_int_bits: 63}\n")
	dir := t.TempDir()
	first := testutil.MustWriteFile(t, filepath.Join(dir, "first.py"), "x = 1\n")

	if err := app.execute(t, "compile", first); err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	data := readArtifact(t, filepath.Join(dir, "first.mpy"))
	if data[3] != 63 || data[4] != 3 {
		t.Errorf("config defaults not applied: small_int_bits=%d opt+1=%d", data[3], data[4])
	}

	second := testutil.MustWriteFile(t, filepath.Join(dir, "second.py"), "x = 2\n")
	if err := app.execute(t, "compile", "-O", "0", second); err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	data = readArtifact(t, filepath.Join(dir, "second.mpy"))
	if data[4] != 1 {
		t.Errorf("-O 0 should override the configured level, got opt+1=%d", data[4])
	}
}

func TestCompile_PassthroughArgs(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, "")
	src := testutil.MustWriteFile(t, filepath.Join(t.TempDir(), "main.py"), "x = 1\n")

	if err := app.execute(t, "compile", src, "--", "-march=armv6"); err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(app.stdout.String()), "\n")
	if !strings.Contains(app.stdout.String(), "-march=armv6") {
		t.Errorf("extra args should reach the compiler, stdout:\n%s", app.stdout.String())
	}
	if len(lines) < 2 {
		t.Fatalf("unexpected stdout:\n%s", app.stdout.String())
	}

	err := app.execute(t, "compile", src, "--", "--bogus")
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 2 {
		t.Fatalf("expected exit code 2 for an unknown compiler option, got %v", err)
	}
	if !strings.Contains(app.stderr.String(), "unknown option --bogus") {
		t.Errorf("stderr = %q", app.stderr.String())
	}
}

func TestCompile_StdinWithOutDir(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, "print('from stdin')\n")
	outDir := filepath.Join(t.TempDir(), "build")

	if err := app.execute(t, "compile", "--name", "boot.py", "--out-dir", outDir, "-"); err != nil {
		t.Fatalf("compile failed: %v", err)
	}

	data := readArtifact(t, filepath.Join(outDir, "boot.mpy"))
	if !strings.Contains(string(data), "boot.py\x00print('from stdin')") {
		t.Errorf("artifact should carry the logical name and source, got %q", data)
	}
}

func TestCompile_JSONReport(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, "")
	dir := t.TempDir()
	good := testutil.MustWriteFile(t, filepath.Join(dir, "good.py"), "x = 1\n")
	bad := testutil.MustWriteFile(t, filepath.Join(dir, "bad.py"), "$\n")

	err := app.execute(t, "compile", "--report", "json", "-j", "2", good, bad)
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected *ExitError for the failing source, got %v", err)
	}

	var report compileReport
	if err := json.Unmarshal(app.stdout.Bytes(), &report); err != nil {
		t.Fatalf("stdout is not a JSON report: %v\n%s", err, app.stdout.String())
	}
	if report.Compiler != mpycrosstest.Path(t) {
		t.Errorf("Compiler = %q", report.Compiler)
	}
	if len(report.Files) != 2 {
		t.Fatalf("expected 2 file entries, got %d", len(report.Files))
	}
	if f := report.Files[0]; !f.Succeeded() || f.Output != filepath.Join(dir, "good.mpy") || !strings.Contains(f.Header, "version=6") {
		t.Errorf("good entry = %+v", f)
	}
	if f := report.Files[1]; f.Succeeded() || f.Output != "" || !strings.Contains(f.Stderr, "SyntaxError:") {
		t.Errorf("bad entry = %+v", f)
	}
}

func TestCompile_TOMLReport(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, "")
	src := testutil.MustWriteFile(t, filepath.Join(t.TempDir(), "main.py"), "x = 1\n")

	if err := app.execute(t, "compile", "--report", "toml", src); err != nil {
		t.Fatalf("compile failed: %v", err)
	}

	var report compileReport
	if err := toml.Unmarshal(app.stdout.Bytes(), &report); err != nil {
		t.Fatalf("stdout is not a TOML report: %v\n%s", err, app.stdout.String())
	}
	if len(report.Files) != 1 || report.Files[0].ExitCode != 0 || report.Files[0].Source != src {
		t.Errorf("report = %+v", report)
	}
}

func TestCompile_InvalidReportFormat(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, "")
	err := app.execute(t, "compile", "--report", "yaml", "main.py")
	if !errors.Is(err, ErrInvalidReportFormat) {
		t.Errorf("expected ErrInvalidReportFormat, got %v", err)
	}
}

func TestCompile_MissingSource(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, "")
	missing := filepath.Join(t.TempDir(), "missing.py")

	err := app.execute(t, "compile", missing)
	var ae *issue.ActionableError
	if !errors.As(err, &ae) || ae.IssueID != issue.SourceNotFoundId {
		t.Fatalf("expected SourceNotFound actionable error, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error should wrap os.ErrNotExist, got %v", err)
	}
}

func TestCompile_MissingBinary(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, "")
	src := testutil.MustWriteFile(t, filepath.Join(t.TempDir(), "main.py"), "x = 1\n")

	// A later --binary wins over the one execute adds.
	err := app.execute(t, "--binary", filepath.Join(t.TempDir(), "no-such-mpy-cross"), "compile", src)
	var ae *issue.ActionableError
	if !errors.As(err, &ae) || ae.IssueID != issue.CompilerNotFoundId {
		t.Fatalf("expected CompilerNotFound actionable error, got %v", err)
	}
}

func TestResolveSources(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		files   []string
		outDir  string
		want    []string
		wantErr bool
	}{
		{name: "next to source", files: []string{"lib/a.py", "main.py"}, want: []string{"lib/a.mpy", "main.mpy"}},
		{name: "out dir", files: []string{"lib/a.py"}, outDir: "build", want: []string{filepath.Join("build", "a.mpy")}},
		{name: "stdin in working dir", files: []string{"-"}, want: []string{"boot.mpy"}},
		{name: "stdin in out dir", files: []string{"-"}, outDir: "build", want: []string{filepath.Join("build", "boot.mpy")}},
		{name: "collision in out dir", files: []string{"a/main.py", "b/main.py"}, outDir: "build", wantErr: true},
		{name: "stdin twice", files: []string{"-", "-"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sources, err := resolveSources(tt.files, "boot.py", tt.outDir)
			if (err != nil) != tt.wantErr {
				t.Fatalf("resolveSources() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			for i, src := range sources {
				if src.output != filepath.FromSlash(tt.want[i]) {
					t.Errorf("output[%d] = %q, want %q", i, src.output, tt.want[i])
				}
			}
		})
	}
}
