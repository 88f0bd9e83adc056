package keypoints

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/steakknife/hamming"
)

// DefaultDescriptorBits is the default descriptor length.
const DefaultDescriptorBits = 256

// Descriptor is a fixed-length bit vector. Bit i is stored in word i/64 at
// position i%64.
type Descriptor struct {
	words []uint64
	n     int
}

// NewDescriptor returns an all-zero descriptor of n bits.
func NewDescriptor(n int) Descriptor {
	if n < 0 {
		n = 0
	}
	return Descriptor{words: make([]uint64, (n+63)/64), n: n}
}

// DescriptorFromBits builds a descriptor from one 0/1 value per bit; any
// non-zero value is a set bit.
func DescriptorFromBits(bits []uint8) Descriptor {
	d := NewDescriptor(len(bits))
	for i, b := range bits {
		if b != 0 {
			d.set(i)
		}
	}
	return d
}

// Len returns the number of bits.
func (d Descriptor) Len() int {
	return d.n
}

// Bit reports whether bit i is set.
func (d Descriptor) Bit(i int) bool {
	return d.words[i/64]>>(uint(i)%64)&1 == 1
}

func (d Descriptor) set(i int) {
	d.words[i/64] |= 1 << (uint(i) % 64)
}

// Bits returns one byte per bit, 0 or 1.
func (d Descriptor) Bits() []uint8 {
	out := make([]uint8, d.n)
	for i := range out {
		if d.Bit(i) {
			out[i] = 1
		}
	}
	return out
}

// Bytes returns the bits packed eight per byte, bit i at byte i/8,
// position i%8.
func (d Descriptor) Bytes() []byte {
	out := make([]byte, (d.n+7)/8)
	for i := 0; i < d.n; i++ {
		if d.Bit(i) {
			out[i/8] |= 1 << (uint(i) % 8)
		}
	}
	return out
}

// OnesCount returns the number of set bits.
func (d Descriptor) OnesCount() int {
	return hamming.CountBitsUint64s(d.words)
}

// Equal reports whether both descriptors have the same length and bits.
func (d Descriptor) Equal(other Descriptor) bool {
	if d.n != other.n {
		return false
	}
	for i, w := range d.words {
		if w != other.words[i] {
			return false
		}
	}
	return true
}

// Distance returns the Hamming distance between two descriptors of equal
// length.
func (d Descriptor) Distance(other Descriptor) (int, error) {
	if d.n != other.n {
		return 0, fmt.Errorf("descriptor lengths differ: %d vs %d", d.n, other.n)
	}
	dist := 0
	for i, w := range d.words {
		dist += hamming.Uint64(w, other.words[i])
	}
	return dist, nil
}

// MarshalBinary encodes the descriptor as a big-endian uint32 bit count
// followed by the packed bytes.
func (d Descriptor) MarshalBinary() ([]byte, error) {
	out := make([]byte, 4, 4+(d.n+7)/8)
	binary.BigEndian.PutUint32(out, uint32(d.n))
	return append(out, d.Bytes()...), nil
}

// UnmarshalBinary decodes the MarshalBinary encoding.
func (d *Descriptor) UnmarshalBinary(data []byte) error {
	if len(data) < 4 {
		return errors.New("descriptor encoding too short")
	}
	n := int(binary.BigEndian.Uint32(data))
	packed := data[4:]
	if len(packed) != (n+7)/8 {
		return fmt.Errorf("descriptor encoding has %d bytes for %d bits", len(packed), n)
	}
	*d = NewDescriptor(n)
	for i := 0; i < n; i++ {
		if packed[i/8]>>(uint(i)%8)&1 == 1 {
			d.set(i)
		}
	}
	return nil
}
