package hash

import (
	"bytes"
	"encoding/binary"
	"io"
)

// WriterToWithDomain is a value which can be written to a Hash.
// The domain names the kind of value, so that two types with the same encoding hash differently.
type WriterToWithDomain interface {
	io.WriterTo
	Domain() string
}

// writeWithDomain frames object as
//
//	"(" ‖ u64(len(domain)) ‖ domain ‖ u64(len(data)) ‖ data ‖ ")"
//
// and writes the frame to w at once.
func writeWithDomain(w io.Writer, object WriterToWithDomain) error {
	var data bytes.Buffer
	if _, err := object.WriteTo(&data); err != nil {
		return err
	}
	domain := object.Domain()

	var frame bytes.Buffer
	frame.Grow(18 + len(domain) + data.Len())
	frame.WriteByte('(')
	frame.Write(binary.BigEndian.AppendUint64(nil, uint64(len(domain))))
	frame.WriteString(domain)
	frame.Write(binary.BigEndian.AppendUint64(nil, uint64(data.Len())))
	frame.Write(data.Bytes())
	frame.WriteByte(')')

	_, err := w.Write(frame.Bytes())
	return err
}

// BytesWithDomain tags raw bytes with a domain.
type BytesWithDomain struct {
	TheDomain string
	Bytes     []byte
}

func (b BytesWithDomain) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(b.Bytes)
	return int64(n), err
}

func (b BytesWithDomain) Domain() string { return b.TheDomain }
