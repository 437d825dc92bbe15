// Package link implements the robolink packet convention and the
// freshest-packet poll loop used to read a real-time control link.
//
// A control packet is a fixed-size datagram whose first four bytes carry a
// little-endian uint32 sequence number; the remainder is opaque payload,
// conventionally packed float32 values. The sequence number is a freshness
// signal only: there is no gap detection, acknowledgement, or retransmit.
package link

import (
	"encoding/binary"
	"fmt"
	"math"
)

// SequenceSize is the number of leading bytes holding the sequence number.
const SequenceSize = 4

// PacketSize returns the wire size of a packet carrying n float32 values.
func PacketSize(n int) int {
	return SequenceSize + 4*n
}

// Sequence extracts the sequence number from a packet. The packet must hold
// at least SequenceSize bytes.
func Sequence(p []byte) uint32 {
	return binary.LittleEndian.Uint32(p)
}

// SetSequence writes seq into the packet header. The packet must hold at
// least SequenceSize bytes.
func SetSequence(p []byte, seq uint32) {
	binary.LittleEndian.PutUint32(p, seq)
}

// PutFloats packs vals into the payload section of p. The packet must be
// exactly PacketSize(len(vals)) bytes; the sequence header is left untouched.
func PutFloats(p []byte, vals []float32) error {
	if len(p) != PacketSize(len(vals)) {
		return fmt.Errorf("link: packet is %d bytes, need %d for %d floats", len(p), PacketSize(len(vals)), len(vals))
	}
	for i, v := range vals {
		binary.LittleEndian.PutUint32(p[SequenceSize+4*i:], math.Float32bits(v))
	}
	return nil
}

// Floats unpacks the payload section of p into float32 values.
func Floats(p []byte) ([]float32, error) {
	if len(p) < SequenceSize || (len(p)-SequenceSize)%4 != 0 {
		return nil, fmt.Errorf("link: packet size %d does not hold a whole number of floats", len(p))
	}
	vals := make([]float32, (len(p)-SequenceSize)/4)
	for i := range vals {
		vals[i] = math.Float32frombits(binary.LittleEndian.Uint32(p[SequenceSize+4*i:]))
	}
	return vals, nil
}
