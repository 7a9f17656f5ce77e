// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError carries the failed operation, the resource involved and
// remediation hints for CLI output. The Issue catalog holds longer
// Markdown pages, rendered with glamour, for the failure classes users hit
// most often: a missing compiler binary, rejected options, sources the
// compiler refuses and unreadable configuration.
package issue
