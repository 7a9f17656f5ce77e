// SPDX-License-Identifier: MPL-2.0

package mpycross

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestCompileAll(t *testing.T) {
	t.Parallel()

	c, tmp := newFakeCompiler(t)
	reqs := []Request{
		{FileName: "a.py", Source: "a = 1\n"},
		{FileName: "b.py", Source: "$"},
		{FileName: "c.py", Source: "c = 3\n", Options: Options{}.WithOptimizationLevel(9)},
	}
	for i := range 8 {
		reqs = append(reqs, Request{FileName: fmt.Sprintf("m%d.py", i), Source: fmt.Sprintf("m = %d\n", i)})
	}

	results, err := c.CompileAll(context.Background(), reqs, 3)
	if err != nil {
		t.Fatalf("CompileAll() error: %v", err)
	}
	if len(results) != len(reqs) {
		t.Fatalf("len(results) = %d, want %d", len(results), len(reqs))
	}

	if r := results[0]; r.Failed() || !bytes.HasSuffix(r.Artifact, []byte("a = 1\n")) {
		t.Errorf("a.py: failed=%v artifact=%q", r.Failed(), r.Artifact)
	}
	if r := results[1]; !r.Failed() || r.Err != nil || r.Artifact != nil {
		t.Errorf("b.py: want compiler rejection, got err=%v artifact=%v", r.Err, r.Artifact)
	}
	if r := results[2]; !errors.Is(r.Err, ErrInvalidOption) {
		t.Errorf("c.py: err = %v, want ErrInvalidOption", r.Err)
	}
	for i, r := range results[3:] {
		if r.Request.FileName != reqs[i+3].FileName {
			t.Errorf("result %d out of order: %s", i+3, r.Request.FileName)
		}
		if r.Failed() || !bytes.HasSuffix(r.Artifact, []byte(fmt.Sprintf("m = %d\n", i))) {
			t.Errorf("%s: failed=%v artifact=%q", r.Request.FileName, r.Failed(), r.Artifact)
		}
	}
	assertDirEmpty(t, tmp)
}

func TestCompileAll_CanceledBeforeStart(t *testing.T) {
	t.Parallel()

	c, _ := newFakeCompiler(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.CompileAll(ctx, []Request{{FileName: "a.py"}}, 1)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("CompileAll() error = %v, want context.Canceled", err)
	}
}

func TestCompileAll_Empty(t *testing.T) {
	t.Parallel()

	c, _ := newFakeCompiler(t)
	results, err := c.CompileAll(context.Background(), nil, 0)
	if err != nil || len(results) != 0 {
		t.Errorf("CompileAll(nil) = %v, %v; want empty, nil", results, err)
	}
}
