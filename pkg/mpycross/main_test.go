// SPDX-License-Identifier: MPL-2.0

package mpycross

import (
	"testing"

	"github.com/invowk/mpycross/internal/testutil/mpycrosstest"
)

func TestMain(m *testing.M) {
	mpycrosstest.Run(m)
}

// newFakeCompiler returns a Compiler running the fake binary, whose working
// directories live under a per-test directory.
func newFakeCompiler(t testing.TB) (*Compiler, string) {
	t.Helper()
	tmp := t.TempDir()
	return New(mpycrosstest.Path(t), WithTempDir(tmp)), tmp
}
