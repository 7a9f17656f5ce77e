// SPDX-License-Identifier: MPL-2.0

package mpycross

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/invowk/mpycross/pkg/platform"
)

// BinaryBaseName is the file name of the bundled compiler without any
// platform executable suffix.
const BinaryBaseName = "mpy-cross"

// defaultBinaryPath resolves the bundled binary once per process. The running
// executable does not move, so the result is immutable and safe to share.
//
// INVARIANT: the function MUST NOT panic; sync.OnceValues would re-panic on
// every later call.
var defaultBinaryPath = sync.OnceValues(func() (string, error) {
	dir, err := installDir()
	if err != nil {
		return "", err
	}
	return BundledPath(runtime.GOOS, dir), nil
})

// BundledPath returns the absolute path of the compiler binary bundled in
// installDir for the given OS family. The executable suffix is appended only
// on operating systems that require one. The file is not required to exist.
func BundledPath(goos, installDir string) string {
	p := filepath.Join(installDir, platform.ExecutableName(goos, BinaryBaseName))
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// DefaultBinaryPath returns the path of the compiler binary installed next
// to the running executable. It is computed on first use and cached.
// Neither environment variables nor PATH are consulted, so the bundled binary
// is always the one used. A missing binary is only detected when it is run.
func DefaultBinaryPath() (string, error) {
	return defaultBinaryPath()
}

// installDir returns the directory of the running executable with symlinks resolved.
func installDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to locate running executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}
