// Package cmp signs ECDSA digests with threshold key shares, following the
// CMP protocol (Canetti, Gennaro, Goldfeder, Makriyannis, Peled).
package cmp

import (
	"context"
	"fmt"

	"github.com/taurusgroup/mpc-sign/pkg/ecdsa"
	"github.com/taurusgroup/mpc-sign/pkg/party"
	"github.com/taurusgroup/mpc-sign/pkg/pool"
	"github.com/taurusgroup/mpc-sign/pkg/protocol"
	"github.com/taurusgroup/mpc-sign/protocols/cmp/config"
	"github.com/taurusgroup/mpc-sign/protocols/cmp/sign"
)

type Config = config.Config

// EmptyConfig creates an empty Config, to be filled with UnmarshalJSON or UnmarshalBinary.
func EmptyConfig() *Config {
	return &Config{}
}

// StartSign returns a protocol.StartFunc running the signing protocol for digest with the given signers.
//
// digest is signed as is, and should be the output of a hash function such as sign.DigestKeccak256.
func StartSign(c *Config, signers []party.ID, digest []byte, pl *pool.Pool) protocol.StartFunc {
	return sign.StartSign(c, signers, digest, pl)
}

// Sign starts a protocol.Manager signing digest for the local party of c.
//
// All signers must use the same sessionID, signers and digest.
// The result of the Manager is an *ecdsa.Signature, see SignatureFromResult.
func Sign(ctx context.Context, c *Config, signers []party.ID, digest, sessionID []byte, pl *pool.Pool, opts ...protocol.Option) (*protocol.Manager, error) {
	opts = append([]protocol.Option{protocol.WithPool(pl)}, opts...)
	return protocol.NewManager(ctx, StartSign(c, signers, digest, pl), sessionID, opts...)
}

// SignatureFromResult returns the signature produced by a Manager started with Sign.
func SignatureFromResult(result interface{}, err error) (*ecdsa.Signature, error) {
	if err != nil {
		return nil, err
	}
	signature, ok := result.(*ecdsa.Signature)
	if !ok {
		return nil, fmt.Errorf("cmp: result is %T, not a signature", result)
	}
	return signature, nil
}
