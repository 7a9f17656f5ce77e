// SPDX-License-Identifier: MPL-2.0

package mpycross

import (
	"fmt"
	"slices"
	"strconv"
)

const (
	// ArchX86 targets 32-bit x86.
	ArchX86 Arch = "x86"
	// ArchX64 targets x86-64.
	ArchX64 Arch = "x64"
	// ArchARMv6 targets ARMv6 (Thumb).
	ArchARMv6 Arch = "armv6"
	// ArchARMv7M targets ARMv7-M.
	ArchARMv7M Arch = "armv7m"
	// ArchARMv7EM targets ARMv7E-M.
	ArchARMv7EM Arch = "armv7em"
	// ArchARMv7EMSP targets ARMv7E-M with a single-precision FPU.
	ArchARMv7EMSP Arch = "armv7emsp"
	// ArchARMv7EMDP targets ARMv7E-M with a double-precision FPU.
	ArchARMv7EMDP Arch = "armv7emdp"
	// ArchXtensa targets Xtensa (ESP8266).
	ArchXtensa Arch = "xtensa"
	// ArchXtensaWin targets windowed Xtensa (ESP32).
	ArchXtensaWin Arch = "xtensawin"

	// EmitBytecode emits portable bytecode.
	EmitBytecode Emitter = "bytecode"
	// EmitNative emits native machine code for the selected architecture.
	EmitNative Emitter = "native"
	// EmitViper emits viper-optimized native code.
	EmitViper Emitter = "viper"

	// MinOptimizationLevel is the lowest accepted optimization level.
	MinOptimizationLevel OptimizationLevel = 0
	// MaxOptimizationLevel is the highest accepted optimization level.
	MaxOptimizationLevel OptimizationLevel = 3
)

var (
	allArchs    = []Arch{ArchX86, ArchX64, ArchARMv6, ArchARMv7M, ArchARMv7EM, ArchARMv7EMSP, ArchARMv7EMDP, ArchXtensa, ArchXtensaWin}
	allEmitters = []Emitter{EmitBytecode, EmitNative, EmitViper}
)

type (
	// Arch selects the target architecture for native code emission.
	// The zero value ("") means "not set" and emits no -march flag.
	Arch string

	// Emitter selects the kind of code the compiler emits.
	// The zero value ("") means "not set".
	Emitter string

	// OptimizationLevel is the compiler optimization level (0-3).
	OptimizationLevel int

	// Options holds the structured compilation options for one request.
	//
	// Options is a value type: the With* methods return modified copies and
	// never alter the receiver, so a built Options can be shared freely.
	// Nil pointer fields mean "not set" and produce no flag.
	Options struct {
		// OptimizationLevel is passed as -O<n>. It must be within 0-3.
		OptimizationLevel *OptimizationLevel
		// SmallIntBits is the bit width of a small int (-msmall-int-bits).
		SmallIntBits *int
		// NoUnicode is needed when the target firmware was built without
		// unicode string support (-mno-unicode).
		NoUnicode bool
		// Arch is the target architecture (-march).
		Arch Arch
		// Emit is the code emitter (-X emit=...).
		Emit Emitter
		// HeapSize is the compiler heap size in bytes (-X heapsize=...).
		HeapSize *int64
		// ExtraArgs are appended verbatim after every structured option.
		ExtraArgs []string
	}
)

// String returns the canonical compiler spelling of the architecture.
func (a Arch) String() string { return string(a) }

// IsValid returns whether the Arch is unset or one of the supported architectures.
func (a Arch) IsValid() (bool, []error) {
	if a == "" || slices.Contains(allArchs, a) {
		return true, nil
	}
	return false, []error{&InvalidOptionError{
		Option: "arch",
		Value:  string(a),
		Reason: fmt.Sprintf("must be one of %v", allArchs),
	}}
}

// Archs returns every supported architecture.
func Archs() []Arch { return slices.Clone(allArchs) }

// ParseArch converts s to an Arch, rejecting unknown names.
func ParseArch(s string) (Arch, error) {
	a := Arch(s)
	if ok, errs := a.IsValid(); !ok {
		return "", errs[0]
	}
	return a, nil
}

// String returns the canonical compiler spelling of the emitter.
func (e Emitter) String() string { return string(e) }

// IsValid returns whether the Emitter is unset or one of the supported emitters.
func (e Emitter) IsValid() (bool, []error) {
	if e == "" || slices.Contains(allEmitters, e) {
		return true, nil
	}
	return false, []error{&InvalidOptionError{
		Option: "emit",
		Value:  string(e),
		Reason: fmt.Sprintf("must be one of %v", allEmitters),
	}}
}

// Emitters returns every supported emitter.
func Emitters() []Emitter { return slices.Clone(allEmitters) }

// ParseEmitter converts s to an Emitter, rejecting unknown names.
func ParseEmitter(s string) (Emitter, error) {
	e := Emitter(s)
	if ok, errs := e.IsValid(); !ok {
		return "", errs[0]
	}
	return e, nil
}

// IsValid returns whether the level is within MinOptimizationLevel-MaxOptimizationLevel.
// The compiler itself does not reliably reject out-of-range levels, so the
// check happens before any process is started.
func (l OptimizationLevel) IsValid() (bool, []error) {
	if l < MinOptimizationLevel || l > MaxOptimizationLevel {
		return false, []error{&InvalidOptionError{
			Option: "optimization_level",
			Value:  l.String(),
			Reason: "must be between 0 and 3",
		}}
	}
	return true, nil
}

// String returns the decimal representation of the level.
func (l OptimizationLevel) String() string { return strconv.Itoa(int(l)) }

// WithOptimizationLevel returns a copy of o with the optimization level set.
func (o Options) WithOptimizationLevel(level int) Options {
	l := OptimizationLevel(level)
	o.OptimizationLevel = &l
	return o
}

// WithSmallIntBits returns a copy of o with the small int bit width set.
func (o Options) WithSmallIntBits(bits int) Options {
	o.SmallIntBits = &bits
	return o
}

// WithNoUnicode returns a copy of o with unicode support disabled.
func (o Options) WithNoUnicode() Options {
	o.NoUnicode = true
	return o
}

// WithArch returns a copy of o targeting arch.
func (o Options) WithArch(arch Arch) Options {
	o.Arch = arch
	return o
}

// WithEmit returns a copy of o using emitter.
func (o Options) WithEmit(emitter Emitter) Options {
	o.Emit = emitter
	return o
}

// WithHeapSize returns a copy of o with the heap size set in bytes.
func (o Options) WithHeapSize(bytes int64) Options {
	o.HeapSize = &bytes
	return o
}

// WithExtraArgs returns a copy of o with args appended to the passthrough arguments.
func (o Options) WithExtraArgs(args ...string) Options {
	o.ExtraArgs = append(slices.Clone(o.ExtraArgs), args...)
	return o
}

// IsValid checks the options that are validated before the compiler runs:
// the optimization level range and membership of Arch and Emit in their
// closed sets. Arch and Emit are string types that can hold any value, so
// their membership check is the only validation beyond the optimization
// level. Other numeric options are left to the compiler's own diagnostics.
func (o Options) IsValid() (bool, []error) {
	var errs []error
	if o.OptimizationLevel != nil {
		if ok, fieldErrs := o.OptimizationLevel.IsValid(); !ok {
			errs = append(errs, fieldErrs...)
		}
	}
	if ok, fieldErrs := o.Arch.IsValid(); !ok {
		errs = append(errs, fieldErrs...)
	}
	if ok, fieldErrs := o.Emit.IsValid(); !ok {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, errs
	}
	return true, nil
}

// flags encodes the structured options followed by ExtraArgs, in the order
// the compiler expects them.
func (o Options) flags() ([]string, error) {
	var args []string

	if o.OptimizationLevel != nil {
		if ok, errs := o.OptimizationLevel.IsValid(); !ok {
			return nil, errs[0]
		}
		args = append(args, "-O"+o.OptimizationLevel.String())
	}

	if o.SmallIntBits != nil {
		args = append(args, "-msmall-int-bits="+strconv.Itoa(*o.SmallIntBits))
	}

	if o.NoUnicode {
		args = append(args, "-mno-unicode")
	}

	if o.Arch != "" {
		if ok, errs := o.Arch.IsValid(); !ok {
			return nil, errs[0]
		}
		args = append(args, "-march="+o.Arch.String())
	}

	if o.Emit != "" {
		if ok, errs := o.Emit.IsValid(); !ok {
			return nil, errs[0]
		}
		args = append(args, "-X", "emit="+o.Emit.String())
	}

	if o.HeapSize != nil {
		args = append(args, "-X", "heapsize="+strconv.FormatInt(*o.HeapSize, 10))
	}

	return append(args, o.ExtraArgs...), nil
}
