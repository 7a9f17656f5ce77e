// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for mpycross.
//
// This package implements the Cobra command hierarchy for the mpycross CLI:
// compiling MicroPython sources to .mpy files, querying the bundled compiler's
// version, passing raw arguments through to mpy-cross, and managing the
// configuration file.
package cmd
