package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/taurusgroup/mpc-sign/internal/test"
	"github.com/taurusgroup/mpc-sign/pkg/ecdsa"
	"github.com/taurusgroup/mpc-sign/pkg/party"
	"github.com/taurusgroup/mpc-sign/pkg/pool"
	"github.com/taurusgroup/mpc-sign/pkg/protocol"
	"github.com/taurusgroup/mpc-sign/protocols/cmp"
	"github.com/taurusgroup/mpc-sign/protocols/cmp/sign"
	"golang.org/x/sync/errgroup"
)

var (
	signSigners   []string
	signMessage   string
	signDigest    string
	signSessionID string
	signOutput    string
	signTimeout   time.Duration
	signMetrics   string

	signCmd = &cobra.Command{
		Use:   "sign",
		Short: "Sign a message with local parties",
		Long: `Run the signing protocol between the given signers inside this process.
Every signer is driven by its own protocol manager, exchanging messages over an
in-memory network.`,
		RunE: runSign,
	}
)

func init() {
	signCmd.Flags().StringSliceVarP(&signSigners, "signers", "s", nil, "IDs of the signing parties (required)")
	signCmd.Flags().StringVarP(&signMessage, "message", "m", "", "message to sign, hashed with Keccak-256")
	signCmd.Flags().StringVar(&signDigest, "digest", "", "hex encoded digest to sign as is")
	signCmd.Flags().StringVar(&signSessionID, "session", "", "session ID, defaults to the current time")
	signCmd.Flags().StringVarP(&signOutput, "output", "o", "", "write the signature to this file instead of stdout")
	signCmd.Flags().DurationVar(&signTimeout, "timeout", 5*time.Minute, "abort signing after this duration")
	signCmd.Flags().StringVar(&signMetrics, "metrics", "", "write round metrics to this file in the Prometheus text format")
	_ = signCmd.MarkFlagRequired("signers")
	signCmd.MarkFlagsMutuallyExclusive("message", "digest")
}

// signatureFile is the output of sign and the input of verify.
type signatureFile struct {
	Digest    string           `json:"digest"`
	Signature *ecdsa.Signature `json:"signature"`
	Ethereum  string           `json:"ethereum"`
	DER       string           `json:"der"`
}

func digestFromFlags(message, digest string) ([]byte, error) {
	switch {
	case digest != "":
		return hex.DecodeString(digest)
	case message != "":
		return sign.DigestKeccak256([]byte(message)), nil
	default:
		return nil, fmt.Errorf("one of --message or --digest is required")
	}
}

// writeMetrics dumps the registry for the node exporter textfile collector.
func writeMetrics(registry *prometheus.Registry) {
	if err := prometheus.WriteToTextfile(signMetrics, registry); err != nil {
		log.Error().Err(err).Str("file", signMetrics).Msg("failed to write metrics")
		return
	}
	log.Info().Str("file", signMetrics).Msg("wrote metrics")
}

func runSign(cmd *cobra.Command, _ []string) error {
	digest, err := digestFromFlags(signMessage, signDigest)
	if err != nil {
		return err
	}
	signers := make([]party.ID, 0, len(signSigners))
	for _, id := range signSigners {
		signers = append(signers, party.ID(id))
	}
	partyIDs := party.NewIDSlice(signers)
	sessionID := []byte(signSessionID)
	if len(sessionID) == 0 {
		sessionID = []byte(time.Now().UTC().Format(time.RFC3339Nano))
	}

	configs := make(map[party.ID]*cmp.Config, len(partyIDs))
	for _, id := range partyIDs {
		if configs[id], err = readConfig(id); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), signTimeout)
	defer cancel()
	pl := pool.NewPool(0)

	var metrics *protocol.Metrics
	if signMetrics != "" {
		registry := prometheus.NewRegistry()
		metrics = protocol.NewMetrics(registry)
		defer writeMetrics(registry)
	}

	network := test.NewNetwork(partyIDs)
	managers := make(map[party.ID]*protocol.Manager, len(partyIDs))
	for _, id := range partyIDs {
		m, err := cmp.Sign(ctx, configs[id], partyIDs, digest, sessionID, pl,
			protocol.WithTransport(network.Endpoint(id)),
			protocol.WithLogger(log),
			protocol.WithMetrics(metrics),
		)
		if err != nil {
			for _, started := range managers {
				started.Stop()
			}
			return err
		}
		managers[id] = m
		network.Register(id, m)
	}

	signatures := make([]*ecdsa.Signature, len(partyIDs))
	var g errgroup.Group
	for i, id := range partyIDs {
		i, m := i, managers[id]
		g.Go(func() error {
			signature, err := cmp.SignatureFromResult(m.Wait(ctx))
			signatures[i] = signature
			return err
		})
	}
	if err = g.Wait(); err != nil {
		return err
	}

	signature := signatures[0]
	for _, other := range signatures[1:] {
		if !other.R.Equal(signature.R) || !other.S.Equal(signature.S) {
			return fmt.Errorf("signers produced different signatures")
		}
	}
	return writeSignature(digest, signature)
}

func writeSignature(digest []byte, signature *ecdsa.Signature) error {
	eth, err := signature.SigEthereum()
	if err != nil {
		return err
	}
	der, err := signature.SerializeDER()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(signatureFile{
		Digest:    hex.EncodeToString(digest),
		Signature: signature,
		Ethereum:  hex.EncodeToString(eth),
		DER:       hex.EncodeToString(der),
	}, "", "  ")
	if err != nil {
		return err
	}
	if signOutput == "" {
		_, err = fmt.Fprintln(os.Stdout, string(data))
		return err
	}
	if err = os.WriteFile(signOutput, data, 0o644); err != nil {
		return err
	}
	log.Info().Str("file", signOutput).Msg("wrote signature")
	return nil
}
