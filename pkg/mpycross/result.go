// SPDX-License-Identifier: MPL-2.0

package mpycross

import (
	"errors"
	"fmt"

	"github.com/invowk/mpycross/pkg/types"
)

const (
	// HeaderMagic is the first byte of every .mpy container.
	HeaderMagic byte = 'M'
	// HeaderSize is the number of leading artifact bytes decoded into a Header.
	HeaderSize = 4
	// DefaultSmallIntBits is the small int width the compiler uses when
	// Options.SmallIntBits is not set.
	DefaultSmallIntBits = 31
	// VersionMarker precedes the .mpy format version in the compiler's
	// --version output (e.g., "mpy-cross emitting mpy v6.2").
	VersionMarker = "mpy-cross emitting mpy v"
)

// ErrTruncatedHeader is returned when an artifact is shorter than HeaderSize.
var ErrTruncatedHeader = errors.New("artifact shorter than header")

type (
	// Request describes a single compilation.
	Request struct {
		// FileName is the logical file name the compiler embeds in
		// diagnostics and debug info. It need not exist on disk.
		FileName string
		// Source is the MicroPython source text, written verbatim.
		Source string
		// Options are the structured compilation options.
		Options Options
	}

	// Outcome is the result of running the compiler process once.
	Outcome struct {
		// ExitCode is the process exit status.
		ExitCode types.ExitCode
		// Stdout is the captured standard output.
		Stdout []byte
		// Stderr is the captured standard error, unmodified.
		Stderr []byte
	}

	// Artifact holds the raw bytes of a compiled .mpy container.
	// A nil Artifact means the compiler produced no output file.
	Artifact []byte

	// Header is the fixed four-byte prefix of an .mpy container.
	Header struct {
		Magic        byte
		Version      uint8
		Flags        uint8
		SmallIntBits uint8
	}
)

// Present reports whether the compiler produced an output file.
func (a Artifact) Present() bool { return a != nil }

// Header decodes the leading four bytes of the artifact. It only fails when
// the artifact is too short; the values themselves are not validated.
func (a Artifact) Header() (Header, error) {
	if len(a) < HeaderSize {
		return Header{}, fmt.Errorf("%w: got %d bytes, need %d", ErrTruncatedHeader, len(a), HeaderSize)
	}
	return Header{
		Magic:        a[0],
		Version:      a[1],
		Flags:        a[2],
		SmallIntBits: a[3],
	}, nil
}

// HasMagic reports whether the header starts with HeaderMagic.
func (h Header) HasMagic() bool { return h.Magic == HeaderMagic }

// String renders the header for display.
func (h Header) String() string {
	return fmt.Sprintf("magic=%q version=%d flags=%#02x small_int_bits=%d", h.Magic, h.Version, h.Flags, h.SmallIntBits)
}
