// SPDX-License-Identifier: MPL-2.0

package platform

// OS name constants for runtime.GOOS comparisons.
// Centralizes the string literals to avoid scattered magic strings.
const (
	Windows = "windows"
	Darwin  = "darwin"
	Linux   = "linux"
)

// windowsExeSuffix is the only executable suffix any supported OS requires.
const windowsExeSuffix = ".exe"

// ExecutableSuffix returns the native executable file suffix for goos.
// Only Windows requires one; every other OS family returns "".
func ExecutableSuffix(goos string) string {
	if goos == Windows {
		return windowsExeSuffix
	}
	return ""
}

// ExecutableName appends the native executable suffix for goos to name.
func ExecutableName(goos, name string) string {
	return name + ExecutableSuffix(goos)
}
