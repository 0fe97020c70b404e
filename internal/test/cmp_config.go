package test

import (
	"io"

	"github.com/taurusgroup/mpc-sign/internal/elgamal"
	"github.com/taurusgroup/mpc-sign/internal/fixtures"
	"github.com/taurusgroup/mpc-sign/pkg/math/polynomial"
	"github.com/taurusgroup/mpc-sign/pkg/math/sample"
	"github.com/taurusgroup/mpc-sign/pkg/paillier"
	"github.com/taurusgroup/mpc-sign/pkg/party"
	"github.com/taurusgroup/mpc-sign/pkg/pool"
	"github.com/taurusgroup/mpc-sign/protocols/cmp/config"
)

// GenerateConfig creates some random configuration for N parties with set threshold T.
//
// The first fixtures.MaxPairs parties reuse fixed Paillier primes, further parties sample new ones with pl.
func GenerateConfig(N, T int, source io.Reader, pl *pool.Pool) (map[party.ID]*config.Config, party.IDSlice) {
	partyIDs := PartyIDs(N)
	configs := make(map[party.ID]*config.Config, N)
	public := make(map[party.ID]*config.Public, N)

	f := polynomial.NewPolynomial(source, T, sample.Scalar(source))

	for i, pid := range partyIDs {
		var paillierSecret *paillier.SecretKey
		if i < fixtures.MaxPairs {
			paillierSecret = paillier.NewSecretKeyFromPrimes(fixtures.PaillierPrimes(i))
		} else {
			paillierSecret = paillier.NewSecretKey(pl)
		}
		pedersenPublic, _ := paillierSecret.GeneratePedersen(source)
		elGamalSecret, elGamalPublic := elgamal.NewKeyPair(source)

		ecdsaSecret := f.Evaluate(pid.Scalar())
		configs[pid] = &config.Config{
			ID:        pid,
			Threshold: T,
			ECDSA:     ecdsaSecret,
			ElGamal:   elGamalSecret,
			Paillier:  paillierSecret,
			Public:    public,
		}
		public[pid] = &config.Public{
			ECDSA:    ecdsaSecret.ActOnBase(),
			ElGamal:  elGamalPublic,
			Paillier: paillierSecret.PublicKey,
			Pedersen: pedersenPublic,
		}
	}
	return configs, partyIDs
}
