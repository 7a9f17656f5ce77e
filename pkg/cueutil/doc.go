// SPDX-License-Identifier: MPL-2.0

// Package cueutil provides shared CUE helpers for turning evaluation errors
// into user-facing messages that carry the file name and the JSON-style path
// of the offending field, for example:
//
//	config.cue: defaults.optimization_level: invalid value 7 (out of bound <=3)
package cueutil
