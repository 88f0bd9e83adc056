package store

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"
)

// npyMagic starts every NumPy .npy file; the two bytes after it are the
// format version (1.0).
const npyMagic = "\x93NUMPY"

// WriteNPY writes the descriptors as an N x bits uint8 matrix in NumPy
// .npy v1.0 format, one 0/1 byte per bit, rows in feature order.
func (t *Table) WriteNPY(w io.Writer) error {
	bits := t.DescriptorBits()
	for i, f := range t.Features {
		if f.Descriptor.Len() != bits {
			return fmt.Errorf("feature %d has %d descriptor bits, table has %d", i, f.Descriptor.Len(), bits)
		}
	}

	bw := bufio.NewWriter(w)
	if _, err := bw.Write(npyHeader(len(t.Features), bits)); err != nil {
		return err
	}
	for _, f := range t.Features {
		if _, err := bw.Write(f.Descriptor.Bits()); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// SaveNPY writes the descriptor matrix to path.
func (t *Table) SaveNPY(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := t.WriteNPY(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// npyHeader returns the magic, version, header length and the header dict
// padded with spaces and a newline so the data starts on a 64-byte
// boundary.
func npyHeader(rows, cols int) []byte {
	dict := fmt.Sprintf("{'descr': '|u1', 'fortran_order': False, 'shape': (%d, %d), }", rows, cols)
	const prefix = len(npyMagic) + 2 + 2
	total := prefix + len(dict) + 1
	if rem := total % 64; rem != 0 {
		total += 64 - rem
	}
	dict += strings.Repeat(" ", total-prefix-len(dict)-1) + "\n"

	out := make([]byte, 0, total)
	out = append(out, npyMagic...)
	out = append(out, 1, 0)
	out = binary.LittleEndian.AppendUint16(out, uint16(len(dict)))
	return append(out, dict...)
}
