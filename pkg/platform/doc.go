// SPDX-License-Identifier: MPL-2.0

// Package platform provides cross-platform compatibility utilities.
//
// It centralizes operating system names and the naming conventions that
// differ between them, such as the executable file suffix used when locating
// the bundled compiler binary.
package platform
