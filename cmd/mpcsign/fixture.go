package main

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	mrand "math/rand"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/taurusgroup/mpc-sign/internal/test"
	"github.com/taurusgroup/mpc-sign/pkg/party"
	"github.com/taurusgroup/mpc-sign/pkg/pool"
	"github.com/taurusgroup/mpc-sign/protocols/cmp"
)

var (
	fixtureParties   int
	fixtureThreshold int
	fixtureSeed      int64

	fixtureCmd = &cobra.Command{
		Use:   "fixture",
		Short: "Generate key shares for local parties",
		Long: `Generate a Shamir-shared ECDSA key together with the Paillier, Pedersen and
ElGamal material of every party, and write one JSON configuration per party.
The shares are dealt by a single process and are only suitable for testing.`,
		RunE: runFixture,
	}
)

func init() {
	fixtureCmd.Flags().IntVarP(&fixtureParties, "parties", "n", 3, "number of parties")
	fixtureCmd.Flags().IntVarP(&fixtureThreshold, "threshold", "t", 2, "threshold: any t+1 parties can sign")
	fixtureCmd.Flags().Int64Var(&fixtureSeed, "seed", 0, "seed for deterministic output, 0 uses crypto/rand")
}

func runFixture(*cobra.Command, []string) error {
	if fixtureThreshold < 0 || fixtureThreshold >= fixtureParties {
		return fmt.Errorf("threshold %d is invalid for %d parties", fixtureThreshold, fixtureParties)
	}

	var source io.Reader = rand.Reader
	if fixtureSeed != 0 {
		source = mrand.New(mrand.NewSource(fixtureSeed))
	}
	pl := pool.NewPool(0)

	configs, partyIDs := test.GenerateConfig(fixtureParties, fixtureThreshold, source, pl)
	if err := os.MkdirAll(keyDir, 0o700); err != nil {
		return err
	}
	for _, id := range partyIDs {
		if err := writeConfig(configs[id]); err != nil {
			return err
		}
	}

	public, err := configs[partyIDs[0]].PublicPoint().MarshalBinary()
	if err != nil {
		return err
	}
	log.Info().
		Int("parties", len(partyIDs)).
		Int("threshold", fixtureThreshold).
		Str("dir", keyDir).
		Str("publicKey", hex.EncodeToString(public)).
		Msg("wrote configurations")
	return nil
}

func configPath(id party.ID) string {
	return filepath.Join(keyDir, string(id)+".json")
}

func writeConfig(c *cmp.Config) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encode configuration of %s: %w", c.ID, err)
	}
	return os.WriteFile(configPath(c.ID), data, 0o600)
}

func readConfig(id party.ID) (*cmp.Config, error) {
	data, err := os.ReadFile(configPath(id))
	if err != nil {
		return nil, err
	}
	c := cmp.EmptyConfig()
	if err = json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("decode configuration of %s: %w", id, err)
	}
	return c, nil
}
