package config

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/taurusgroup/mpc-sign/internal/elgamal"
	"github.com/taurusgroup/mpc-sign/pkg/math/curve"
	"github.com/taurusgroup/mpc-sign/pkg/math/polynomial"
	"github.com/taurusgroup/mpc-sign/pkg/paillier"
	"github.com/taurusgroup/mpc-sign/pkg/party"
	"github.com/taurusgroup/mpc-sign/pkg/pedersen"
)

// ErrParameter is wrapped by every error returned from the self-checks.
var ErrParameter = errors.New("parameter error")

// PublicProvider gives access to the public configuration of a party.
type PublicProvider interface {
	PublicFor(id party.ID) (*Public, error)
}

// Public holds public information for a party.
type Public struct {
	// ECDSA public key share Xᵢ = xᵢ⋅G
	ECDSA *curve.Point
	// ElGamal is this party's public key for ElGamal encryption.
	ElGamal *curve.Point
	// Paillier is the public key with N = p•q, p ≡ q ≡ 3 mod 4
	Paillier *paillier.PublicKey
	// Pedersen holds the (N, s, t) used by others to create range proofs for this party.
	Pedersen *pedersen.Parameters
}

// Config represents a party's key share after having performed a keygen.
type Config struct {
	ID party.ID

	// Threshold is the integer t which defines the maximum number of corruptions tolerated for this config.
	// Threshold + 1 is the minimum number of parties' shares required to sign a message.
	Threshold int

	// ECDSA is this party's share xᵢ of the secret ECDSA x
	ECDSA *curve.Scalar

	// ElGamal is this party's yᵢ used for ElGamal.
	ElGamal *curve.Scalar

	// Paillier holds the primes for N = P*Q used by Paillier and Pedersen
	Paillier *paillier.SecretKey

	// Public maps party.ID to party. It contains all public information associated to a party.
	Public map[party.ID]*Public
}

// PublicPoint returns the group's public ECC point.
func (c *Config) PublicPoint() *curve.Point {
	sum := curve.NewPoint()
	l := polynomial.Lagrange(c.PartyIDs())
	for j, partyJ := range c.Public {
		sum = sum.Add(l[j].Act(partyJ.ECDSA))
	}
	return sum
}

var _ PublicProvider = (*Config)(nil)

// PublicFor implements PublicProvider.
func (c *Config) PublicFor(id party.ID) (*Public, error) {
	p, ok := c.Public[id]
	if !ok {
		return nil, fmt.Errorf("config: no public data for party %s", id)
	}
	return p, nil
}

// Validate ensures that the data is consistent. In particular it verifies:
// - 0 ⩽ threshold ⩽ n-1
// - all public data is present and valid
// - the Paillier secret key matches the public key of this party
// - the ECDSA and ElGamal secrets match the public points of this party.
//
// Every returned error wraps ErrParameter.
func (c *Config) Validate() error {
	if err := c.validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrParameter, err)
	}
	return nil
}

func (c *Config) validate() error {
	// want 0 ⩽ threshold ⩽ n-1
	if !ValidThreshold(c.Threshold, len(c.Public)) {
		return fmt.Errorf("config: threshold %d is invalid", c.Threshold)
	}

	if c.ECDSA == nil || c.ElGamal == nil || c.Paillier == nil {
		return errors.New("config: one or more field is empty")
	}

	if c.ECDSA.IsZero() {
		return errors.New("config: ECDSA secret key share is zero")
	}

	for j, publicJ := range c.Public {
		if err := publicJ.validate(); err != nil {
			return fmt.Errorf("config: party %s: %w", j, err)
		}
	}

	public := c.Public[c.ID]
	if public == nil {
		return errors.New("config: no public data for secret")
	}

	if err := c.Paillier.Validate(public.Paillier); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	if !c.ECDSA.ActOnBase().Equal(public.ECDSA) {
		return errors.New("config: ECDSA secret key share does not correspond to public share")
	}

	if err := elgamal.ValidateKeyPair(c.ElGamal, public.ElGamal); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	return nil
}

// PartyIDs returns a sorted slice of party IDs.
func (c *Config) PartyIDs() party.IDSlice {
	ids := make([]party.ID, 0, len(c.Public))
	for j := range c.Public {
		ids = append(ids, j)
	}
	return party.NewIDSlice(ids)
}

// validate returns an error if Public is invalid. Otherwise return nil.
func (p *Public) validate() error {
	if p == nil || p.ECDSA == nil || p.ElGamal == nil || p.Paillier == nil || p.Pedersen == nil {
		return errors.New("public: one or more field is empty")
	}

	if p.ECDSA.IsIdentity() {
		return errors.New("public: ECDSA public key share is identity")
	}
	if p.ElGamal.IsIdentity() {
		return errors.New("public: ElGamal public key is identity")
	}

	if err := paillier.ValidateN(p.Paillier.N()); err != nil {
		return fmt.Errorf("public: %w", err)
	}

	if err := p.Pedersen.Validate(); err != nil {
		return fmt.Errorf("public: %w", err)
	}
	if _, eq, _ := p.Pedersen.N().Cmp(p.Paillier.N()); eq != 1 {
		return errors.New("public: Pedersen and Paillier moduli differ")
	}

	return nil
}

// WriteTo implements io.WriterTo interface.
func (c *Config) WriteTo(w io.Writer) (total int64, err error) {
	if c == nil {
		return 0, io.ErrUnexpectedEOF
	}
	var n int64

	partyIDs := c.PartyIDs()
	n, err = partyIDs.WriteTo(w)
	total += n
	if err != nil {
		return
	}

	for _, j := range partyIDs {
		n, err = c.Public[j].WriteTo(w)
		total += n
		if err != nil {
			return
		}
	}

	return
}

// Domain implements hash.WriterToWithDomain.
func (*Config) Domain() string {
	return "CMP Config"
}

// Domain implements hash.WriterToWithDomain.
func (*Public) Domain() string {
	return "Public Data"
}

// WriteTo implements io.WriterTo interface.
func (p *Public) WriteTo(w io.Writer) (total int64, err error) {
	if p == nil {
		return 0, io.ErrUnexpectedEOF
	}
	var n int64
	for _, part := range []io.WriterTo{p.ECDSA, p.ElGamal, p.Paillier, p.Pedersen} {
		n, err = part.WriteTo(w)
		total += n
		if err != nil {
			return
		}
	}
	return
}

// CanSign returns true if the given _sorted_ list of signers is
// a valid subset of the original parties of size > t,
// and includes self.
func (c *Config) CanSign(signers party.IDSlice) bool {
	if !ValidThreshold(c.Threshold, len(signers)) {
		return false
	}

	// check for duplicates
	if !signers.Valid() {
		return false
	}

	if !signers.Contains(c.ID) {
		return false
	}

	for _, j := range signers {
		if _, ok := c.Public[j]; !ok {
			return false
		}
	}

	return true
}

// ValidThreshold returns true if 0 ⩽ t ⩽ n-1.
func ValidThreshold(t, n int) bool {
	if t < 0 || t > math.MaxUint32 {
		return false
	}
	if n <= 0 || t > n-1 {
		return false
	}
	return true
}

// Equal returns true if both public configurations hold the same keys.
func (p *Public) Equal(other *Public) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.ECDSA.Equal(other.ECDSA) &&
		p.ElGamal.Equal(other.ElGamal) &&
		p.Paillier.Equal(other.Paillier) &&
		p.Pedersen.Equal(other.Pedersen)
}
