// Package params fixes the sizes used by the signing protocol and its zero-knowledge proofs.
package params

// Security parameters.
const (
	// SecParam is the computational security level κ, in bits.
	SecParam = 256
	SecBytes = SecParam / 8
	// StatParam is the statistical security level, in bits.
	StatParam = 80
)

// Curve encodings.
const (
	BytesScalar = 32
	// BytesPoint is the length of a compressed point.
	BytesPoint = 33
)

// Range proof bounds, in bits: secrets are sampled in ±2ˡ, MtA masks in ±2ˡ', and ε is the slack.
const (
	L                 = SecParam
	LPrime            = 5 * SecParam
	Epsilon           = 2 * SecParam
	LPlusEpsilon      = L + Epsilon
	LPrimePlusEpsilon = LPrime + Epsilon
)

// Paillier and Pedersen moduli.
const (
	BitsBlumPrime = 4 * SecParam
	BitsPaillier  = 2 * BitsBlumPrime
	BytesPaillier = BitsPaillier / 8

	// BitsIntModN is the size of an element of ℤₙ.
	BitsIntModN  = BitsPaillier
	BytesIntModN = BitsIntModN / 8

	// BytesCiphertext is the size of an element of ℤₙ².
	BytesCiphertext = 2 * BytesPaillier
)
