package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/taurusgroup/mpc-sign/pkg/party"
)

var (
	verifyParty     string
	verifyMessage   string
	verifyDigest    string
	verifySignature string

	verifyCmd = &cobra.Command{
		Use:   "verify",
		Short: "Verify a signature against the group public key",
		RunE:  runVerify,
	}
)

func init() {
	verifyCmd.Flags().StringVarP(&verifyParty, "party", "p", "", "ID of any party, whose configuration holds the public key (required)")
	verifyCmd.Flags().StringVarP(&verifyMessage, "message", "m", "", "message that was signed")
	verifyCmd.Flags().StringVar(&verifyDigest, "digest", "", "hex encoded digest that was signed")
	verifyCmd.Flags().StringVar(&verifySignature, "signature", "", "signature file written by sign (required)")
	_ = verifyCmd.MarkFlagRequired("party")
	_ = verifyCmd.MarkFlagRequired("signature")
	verifyCmd.MarkFlagsMutuallyExclusive("message", "digest")
}

func runVerify(*cobra.Command, []string) error {
	c, err := readConfig(party.ID(verifyParty))
	if err != nil {
		return err
	}
	data, err := os.ReadFile(verifySignature)
	if err != nil {
		return err
	}
	var file signatureFile
	if err = json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("decode signature: %w", err)
	}
	if file.Signature == nil {
		return errors.New("signature file holds no signature")
	}

	digest, err := hex.DecodeString(file.Digest)
	if err != nil {
		return fmt.Errorf("decode digest: %w", err)
	}
	if verifyMessage != "" || verifyDigest != "" {
		expected, err := digestFromFlags(verifyMessage, verifyDigest)
		if err != nil {
			return err
		}
		if !bytes.Equal(expected, digest) {
			return errors.New("signature file is for a different message")
		}
	}

	if !file.Signature.Verify(c.PublicPoint(), digest) {
		return errors.New("invalid signature")
	}
	log.Info().Str("digest", file.Digest).Msg("signature is valid")
	return nil
}
