package round

import (
	"encoding/binary"
	"io"
)

// Number identifies a round of a protocol, starting at 1.
// The terminal Output and Abort rounds have Number 0.
type Number uint16

// WriteTo writes the number as two big-endian bytes.
func (n Number) WriteTo(w io.Writer) (int64, error) {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], uint16(n))
	written, err := w.Write(buf[:])
	return int64(written), err
}

// Domain implements hash.WriterToWithDomain.
func (Number) Domain() string { return "Round Number" }
