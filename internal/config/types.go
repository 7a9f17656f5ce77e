// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/invowk/mpycross/pkg/mpycross"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidBinaryFilePath is returned when a BinaryFilePath value is whitespace-only.
	ErrInvalidBinaryFilePath = errors.New("invalid binary file path")
	// ErrInvalidWorkerCount is returned when a WorkerCount is negative.
	ErrInvalidWorkerCount = errors.New("invalid worker count")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// BinaryFilePath represents a filesystem path to an mpy-cross executable.
	// The zero value ("") is valid and means "use the bundled binary".
	BinaryFilePath string

	// InvalidBinaryFilePathError is returned when a BinaryFilePath value is
	// non-empty but whitespace-only.
	InvalidBinaryFilePathError struct {
		Value BinaryFilePath
	}

	// WorkerCount bounds concurrent compiler processes. Zero means one per CPU.
	WorkerCount int

	// InvalidWorkerCountError is returned when a WorkerCount is negative.
	InvalidWorkerCountError struct {
		Value WorkerCount
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// Compiler selects and sizes the mpy-cross invocations.
		Compiler CompilerConfig `json:"compiler" mapstructure:"compiler"`
		// Defaults are compiler options applied unless a flag overrides them.
		Defaults DefaultsConfig `json:"defaults" mapstructure:"defaults"`
		// UI configures the user interface.
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// CompilerConfig selects the compiler binary and batch parallelism.
	CompilerConfig struct {
		// BinaryPath overrides the bundled mpy-cross binary.
		BinaryPath BinaryFilePath `json:"binary_path" mapstructure:"binary_path"`
		// Workers bounds concurrent compiles (0 = GOMAXPROCS).
		Workers WorkerCount `json:"workers" mapstructure:"workers"`
	}

	// DefaultsConfig holds default compiler options. Nil pointers and empty
	// strings leave the corresponding option absent.
	DefaultsConfig struct {
		OptimizationLevel *int   `json:"optimization_level,omitempty" mapstructure:"optimization_level"`
		SmallIntBits      *int   `json:"small_int_bits,omitempty" mapstructure:"small_int_bits"`
		NoUnicode         bool   `json:"no_unicode" mapstructure:"no_unicode"`
		Arch              string `json:"arch,omitempty" mapstructure:"arch"`
		Emit              string `json:"emit,omitempty" mapstructure:"emit"`
		HeapSize          *int64 `json:"heap_size,omitempty" mapstructure:"heap_size"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// ColorScheme sets the color scheme used for rendered help pages.
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		// Verbose enables debug logging.
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Compiler: CompilerConfig{
			BinaryPath: "",
			Workers:    0,
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
		},
	}
}

// String returns the string representation of the ColorScheme.
func (c ColorScheme) String() string { return string(c) }

// IsValid returns whether the ColorScheme is one of the defined color schemes,
// and a list of validation errors if it is not.
func (c ColorScheme) IsValid() (bool, []error) {
	switch c {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: c}}
	}
}

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns ErrInvalidColorScheme for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// String returns the string representation of the BinaryFilePath.
func (p BinaryFilePath) String() string { return string(p) }

// IsValid returns whether the BinaryFilePath is valid.
// The zero value ("") is valid; non-empty values must not be whitespace-only.
func (p BinaryFilePath) IsValid() (bool, []error) {
	if p == "" {
		return true, nil
	}
	if strings.TrimSpace(string(p)) == "" {
		return false, []error{&InvalidBinaryFilePathError{Value: p}}
	}
	return true, nil
}

// Error implements the error interface for InvalidBinaryFilePathError.
func (e *InvalidBinaryFilePathError) Error() string {
	return fmt.Sprintf("invalid binary file path %q: non-empty value must not be whitespace-only", e.Value)
}

// Unwrap returns ErrInvalidBinaryFilePath for errors.Is() compatibility.
func (e *InvalidBinaryFilePathError) Unwrap() error { return ErrInvalidBinaryFilePath }

// IsValid returns whether the WorkerCount is non-negative.
func (w WorkerCount) IsValid() (bool, []error) {
	if w < 0 {
		return false, []error{&InvalidWorkerCountError{Value: w}}
	}
	return true, nil
}

// Resolve returns the effective worker count, mapping zero to GOMAXPROCS.
func (w WorkerCount) Resolve() int {
	if w <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return int(w)
}

// Error implements the error interface for InvalidWorkerCountError.
func (e *InvalidWorkerCountError) Error() string {
	return fmt.Sprintf("invalid worker count %d: must not be negative", e.Value)
}

// Unwrap returns ErrInvalidWorkerCount for errors.Is() compatibility.
func (e *InvalidWorkerCountError) Unwrap() error { return ErrInvalidWorkerCount }

// IsValid returns whether the DefaultsConfig converts to valid compiler options.
func (d DefaultsConfig) IsValid() (bool, []error) {
	return d.Options().IsValid()
}

// Options converts the defaults into compiler options.
func (d DefaultsConfig) Options() mpycross.Options {
	var opts mpycross.Options
	if d.OptimizationLevel != nil {
		opts = opts.WithOptimizationLevel(*d.OptimizationLevel)
	}
	if d.SmallIntBits != nil {
		opts = opts.WithSmallIntBits(*d.SmallIntBits)
	}
	if d.NoUnicode {
		opts = opts.WithNoUnicode()
	}
	if d.Arch != "" {
		opts = opts.WithArch(mpycross.Arch(d.Arch))
	}
	if d.Emit != "" {
		opts = opts.WithEmit(mpycross.Emitter(d.Emit))
	}
	if d.HeapSize != nil {
		opts = opts.WithHeapSize(*d.HeapSize)
	}
	return opts
}

// IsValid returns whether the Config has valid fields.
// It delegates to every sub-component and collects all field errors.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Compiler.BinaryPath.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Compiler.Workers.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Defaults.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.UI.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, 0, len(e.FieldErrors))
	for _, err := range e.FieldErrors {
		msgs = append(msgs, err.Error())
	}
	return "invalid config: " + strings.Join(msgs, "; ")
}

// Unwrap returns ErrInvalidConfig followed by the field errors, so errors.Is
// matches both the config sentinel and the field-level sentinels.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}
