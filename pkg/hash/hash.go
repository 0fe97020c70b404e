package hash

import (
	"errors"
	"fmt"
	"io"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/mpc-sign/internal/params"
	"github.com/zeebo/blake3"
)

// DigestLengthBytes is the number of bytes returned by Sum.
const DigestLengthBytes = params.SecBytes * 2 // 64

// Hash is the transcript used to bind proofs and commitments to one protocol execution.
//
// Every value written is framed with a domain string, so that two different
// sequences of writes never produce the same state.
type Hash struct {
	h *blake3.Hasher
}

// New creates an empty Hash.
func New() *Hash {
	return &Hash{h: blake3.New()}
}

// Digest returns a reader for the current output of the function.
//
// This finalizes the current state of the hash, and returns what's
// essentially a stream of random bytes.
func (hash *Hash) Digest() io.Reader {
	return hash.h.Digest()
}

// Sum returns a slice of length DigestLengthBytes resulting from the current hash state.
// If a different length is required, use io.ReadFull(hash.Digest(), out) instead.
func (hash *Hash) Sum() []byte {
	out := make([]byte, DigestLengthBytes)
	if _, err := io.ReadFull(hash.Digest(), out); err != nil {
		panic(fmt.Sprintf("hash.Sum: internal hash failure: %v", err))
	}
	return out
}

// WriteAny takes many different data types and writes them to the hash state.
//
// Currently supported types:
//
//   - []byte
//   - *saferith.Nat
//   - *saferith.Int
//   - *saferith.Modulus
//   - hash.WriterToWithDomain
//
// This function will apply its own domain separation for the first four types.
// The last type already suggests which domain to use, and this function respects it.
func (hash *Hash) WriteAny(data ...interface{}) error {
	var toBeWritten WriterToWithDomain
	for _, d := range data {
		switch t := d.(type) {
		case []byte:
			toBeWritten = &BytesWithDomain{TheDomain: "[]byte", Bytes: t}
		case *saferith.Nat:
			if t == nil {
				return errors.New("hash.WriteAny: nil *saferith.Nat")
			}
			toBeWritten = &BytesWithDomain{TheDomain: "saferith.Nat", Bytes: t.Bytes()}
		case *saferith.Int:
			if t == nil {
				return errors.New("hash.WriteAny: nil *saferith.Int")
			}
			// first byte holds the sign
			b := append([]byte{byte(t.IsNegative())}, t.Abs().Bytes()...)
			toBeWritten = &BytesWithDomain{TheDomain: "saferith.Int", Bytes: b}
		case *saferith.Modulus:
			if t == nil {
				return errors.New("hash.WriteAny: nil *saferith.Modulus")
			}
			toBeWritten = &BytesWithDomain{TheDomain: "saferith.Modulus", Bytes: t.Bytes()}
		case WriterToWithDomain:
			toBeWritten = t
		default:
			return fmt.Errorf("hash.WriteAny: unsupported type %T", d)
		}
		if err := writeWithDomain(hash.h, toBeWritten); err != nil {
			return fmt.Errorf("hash.WriteAny: %s: %w", toBeWritten.Domain(), err)
		}
	}
	return nil
}

// Clone returns a copy of the Hash in its current state.
func (hash *Hash) Clone() *Hash {
	return &Hash{h: hash.h.Clone()}
}
