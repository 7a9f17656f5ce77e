// SPDX-License-Identifier: MPL-2.0

// Package mpycross drives the bundled mpy-cross ahead-of-time compiler, which
// translates MicroPython source text into .mpy bytecode containers.
//
// A Compiler is built once around the path of the compiler binary (see
// DefaultBinaryPath and NewBundled) and can then be used for any number of
// independent invocations:
//
//	c, err := mpycross.NewBundled()
//	if err != nil {
//		return err
//	}
//	out, mpy, err := c.Compile(ctx, mpycross.Request{
//		FileName: "example.py",
//		Source:   "print('hello mpy')",
//	})
//	if err != nil {
//		return err // invalid option or the binary could not be launched
//	}
//	if !out.ExitCode.IsSuccess() {
//		// the compiler rejected the source; Stderr holds its diagnostic
//		fmt.Fprint(os.Stderr, string(out.Stderr))
//	}
//
// Every Compile call stages its input in a private temporary directory that is
// removed before the call returns, so concurrent calls never share files.
// A source rejected by the compiler is a normal Outcome with a nonzero exit
// code and a nil Artifact; only invalid options (InvalidOptionError) and
// launch failures (ExecutionError) are reported as errors.
package mpycross
