// SPDX-License-Identifier: MPL-2.0

package mpycross

import (
	"errors"
	"testing"
)

func TestArtifactHeader(t *testing.T) {
	t.Parallel()

	hdr, err := Artifact{'M', 6, 0, 31, 0xff}.Header()
	if err != nil {
		t.Fatalf("Header() error: %v", err)
	}
	want := Header{Magic: 'M', Version: 6, Flags: 0, SmallIntBits: 31}
	if hdr != want {
		t.Errorf("Header() = %+v, want %+v", hdr, want)
	}
	if !hdr.HasMagic() {
		t.Error("HasMagic() = false, want true")
	}
}

func TestArtifactHeader_Truncated(t *testing.T) {
	t.Parallel()

	for _, a := range []Artifact{nil, {}, {'M', 6, 0}} {
		if _, err := a.Header(); !errors.Is(err, ErrTruncatedHeader) {
			t.Errorf("Artifact(%v).Header() error = %v, want ErrTruncatedHeader", a, err)
		}
	}
}

func TestArtifactPresent(t *testing.T) {
	t.Parallel()

	if Artifact(nil).Present() {
		t.Error("nil artifact reported as present")
	}
	if !(Artifact{}).Present() {
		t.Error("empty, non-nil artifact reported as absent")
	}
}

func TestHeaderString(t *testing.T) {
	t.Parallel()

	got := Header{Magic: 'M', Version: 6, Flags: 2, SmallIntBits: 63}.String()
	want := "magic='M' version=6 flags=0x2 small_int_bits=63"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
