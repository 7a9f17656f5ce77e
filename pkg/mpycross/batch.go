// SPDX-License-Identifier: MPL-2.0

package mpycross

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// BatchResult is the result of one request in a CompileAll call.
type BatchResult struct {
	Request  Request
	Outcome  *Outcome
	Artifact Artifact
	// Err is set when the request could not be compiled at all
	// (invalid option, binary not runnable, staging failure).
	Err error
}

// CompileAll compiles every request with at most workers concurrent
// compiler processes and returns results in request order. A workers value
// below 1 uses GOMAXPROCS.
//
// Each request is an independent Compile call with its own working
// directory. A failure of one request is recorded in its BatchResult and does
// not stop the others; the returned error is only non-nil when ctx ends
// before all requests were started.
func (c *Compiler) CompileAll(ctx context.Context, reqs []Request, workers int) ([]BatchResult, error) {
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]BatchResult, len(reqs))

	g := new(errgroup.Group)
	g.SetLimit(workers)

	for i, req := range reqs {
		if err := ctx.Err(); err != nil {
			_ = g.Wait() // let started compilations finish their cleanup
			return results, err
		}
		g.Go(func() error {
			out, artifact, err := c.Compile(ctx, req)
			results[i] = BatchResult{Request: req, Outcome: out, Artifact: artifact, Err: err}
			return nil
		})
	}

	_ = g.Wait() // workers never return errors; failures live in results
	return results, nil
}

// Failed reports whether the request errored or the compiler rejected it.
func (r BatchResult) Failed() bool {
	return r.Err != nil || r.Outcome == nil || !r.Outcome.ExitCode.IsSuccess()
}
