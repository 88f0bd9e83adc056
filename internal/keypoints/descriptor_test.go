package keypoints

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescriptor_Bits(t *testing.T) {
	t.Parallel()

	bits := []uint8{1, 0, 1, 1, 0, 0, 0, 0, 1}
	d := DescriptorFromBits(bits)

	assert.Equal(t, 9, d.Len())
	assert.Equal(t, bits, d.Bits())
	assert.Equal(t, []byte{0x0d, 0x01}, d.Bytes())
	assert.Equal(t, 4, d.OnesCount())
	assert.True(t, d.Bit(0))
	assert.False(t, d.Bit(1))
	assert.True(t, d.Bit(8))

	assert.Equal(t, 0, NewDescriptor(300).OnesCount())
	assert.Equal(t, 0, NewDescriptor(-1).Len())
}

func TestDescriptor_Distance(t *testing.T) {
	t.Parallel()

	a := NewDescriptor(130)
	b := NewDescriptor(130)
	for _, i := range []int{0, 63, 64, 129} {
		a.set(i)
	}
	for _, i := range []int{0, 65, 129} {
		b.set(i)
	}

	dist, err := a.Distance(b)
	require.NoError(t, err)
	assert.Equal(t, 3, dist)

	dist, err = a.Distance(a)
	require.NoError(t, err)
	assert.Equal(t, 0, dist)
	assert.True(t, a.Equal(a))
	assert.False(t, a.Equal(b))

	_, err = a.Distance(NewDescriptor(129))
	assert.Error(t, err)
	assert.False(t, a.Equal(NewDescriptor(129)))
}

func TestDescriptor_Binary(t *testing.T) {
	t.Parallel()

	d := DescriptorFromBits([]uint8{1, 0, 1, 1, 0, 0, 0, 0, 1})
	data, err := d.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 9, 0x0d, 0x01}, data)

	var back Descriptor
	require.NoError(t, back.UnmarshalBinary(data))
	assert.True(t, d.Equal(back))

	assert.Error(t, back.UnmarshalBinary([]byte{0, 0}))
	assert.Error(t, back.UnmarshalBinary([]byte{0, 0, 0, 9, 0x0d}))
}
