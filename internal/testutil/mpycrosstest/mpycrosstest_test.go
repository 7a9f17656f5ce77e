// SPDX-License-Identifier: MPL-2.0

package mpycrosstest

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMain_Version(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	if code := Main([]string{"--version"}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", code, stderr.String())
	}
	if got := strings.TrimSpace(stdout.String()); got != Version {
		t.Errorf("stdout = %q, want %q", got, Version)
	}
}

func TestMain_VersionFailure(t *testing.T) {
	// Not parallel: sets the process environment.
	t.Setenv(VersionExitEnv, "5")

	var stdout, stderr bytes.Buffer
	if code := Main([]string{"--version"}, &stdout, &stderr); code != 5 {
		t.Errorf("exit code = %d, want 5", code)
	}
	if stdout.Len() != 0 {
		t.Errorf("stdout = %q, want empty", stdout.String())
	}
	if got := strings.TrimSpace(stderr.String()); got != VersionFailure {
		t.Errorf("stderr = %q, want %q", got, VersionFailure)
	}
}

func TestMain_WritesArtifact(t *testing.T) {
	t.Parallel()

	input := filepath.Join(t.TempDir(), "input.py")
	if err := os.WriteFile(input, []byte("x = 1\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	code := Main([]string{input, "-s", "main.py", "-O2", "-msmall-int-bits=63"}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", code, stderr.String())
	}

	out, err := os.ReadFile(strings.TrimSuffix(input, ".py") + ".mpy")
	if err != nil {
		t.Fatalf("artifact not written: %v", err)
	}
	want := append([]byte{'M', FormatVersion, 0, 63, 3}, "main.py\x00x = 1\n"...)
	if !bytes.Equal(out, want) {
		t.Errorf("artifact = %q, want %q", out, want)
	}
}

func TestMain_Rejections(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.py")
	if err := os.WriteFile(bad, []byte("$\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		args   []string
		code   int
		stderr string
	}{
		{name: "syntax error", args: []string{bad, "-s", "bad.py"}, code: 1, stderr: "SyntaxError:"},
		{name: "unknown option", args: []string{bad, "--bogus"}, code: 2, stderr: "unknown option --bogus"},
		{name: "missing input", args: []string{filepath.Join(dir, "none.py")}, code: 1, stderr: "cannot open"},
		{name: "no input", args: nil, code: 1, stderr: "no input file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var stdout, stderr bytes.Buffer
			if code := Main(tt.args, &stdout, &stderr); code != tt.code {
				t.Errorf("exit code = %d, want %d", code, tt.code)
			}
			if !strings.Contains(stderr.String(), tt.stderr) {
				t.Errorf("stderr = %q, want it to contain %q", stderr.String(), tt.stderr)
			}
		})
	}
}
