package link

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSequenceRoundTrip(t *testing.T) {
	p := make([]byte, PacketSize(2))
	SetSequence(p, 0xDEADBEEF)
	if got := Sequence(p); got != 0xDEADBEEF {
		t.Errorf("Sequence() = %#x, want %#x", got, uint32(0xDEADBEEF))
	}
}

func TestSequenceLittleEndian(t *testing.T) {
	// Wire format pins the header to little-endian byte order
	p := []byte{0x01, 0x02, 0x03, 0x04}
	if got, want := Sequence(p), uint32(0x04030201); got != want {
		t.Errorf("Sequence() = %#x, want %#x", got, want)
	}
}

func TestFloatsRoundTrip(t *testing.T) {
	vals := []float32{1.5, -2.25, 3.75}
	p := make([]byte, PacketSize(len(vals)))
	SetSequence(p, 7)
	if err := PutFloats(p, vals); err != nil {
		t.Fatalf("PutFloats: %v", err)
	}
	if got := Sequence(p); got != 7 {
		t.Errorf("PutFloats clobbered sequence header: got %d", got)
	}

	got, err := Floats(p)
	if err != nil {
		t.Fatalf("Floats: %v", err)
	}
	if diff := cmp.Diff(vals, got); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestPutFloatsSizeMismatch(t *testing.T) {
	p := make([]byte, PacketSize(2))
	if err := PutFloats(p, []float32{1}); err == nil {
		t.Error("expected error for wrong packet size")
	}
}

func TestFloatsBadSize(t *testing.T) {
	for _, size := range []int{0, 3, 5, 10} {
		if _, err := Floats(make([]byte, size)); err == nil {
			t.Errorf("Floats on %d bytes: expected error", size)
		}
	}
}

func TestPacketSize(t *testing.T) {
	if got := PacketSize(2); got != 12 {
		t.Errorf("PacketSize(2) = %d, want 12", got)
	}
	if got := PacketSize(0); got != SequenceSize {
		t.Errorf("PacketSize(0) = %d, want %d", got, SequenceSize)
	}
}
