// Package wallet derives the deterministic on-chain identity for a user. The
// keccak256 digest of the user's email concatenated with the server-side auth
// secret serves directly as the secp256k1 private key, so the same user always
// maps to the same address without any stored key material.
package wallet

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	apperrors "github.com/in-labs/in-server/internal/platform/errors"
)

// Identity is a derived user wallet.
type Identity struct {
	Address common.Address
	Key     *ecdsa.PrivateKey
}

// Derive computes the identity for email under the given auth secret. The
// secret is mandatory salt material; without it every address would be
// guessable from the email alone.
func Derive(email, authSecret string) (Identity, error) {
	if authSecret == "" {
		return Identity{}, apperrors.New(apperrors.CodeInvalidAuthHash, "auth secret is not configured")
	}

	seed := crypto.Keccak256([]byte(email + authSecret))
	key, err := crypto.ToECDSA(seed)
	if err != nil {
		return Identity{}, apperrors.Wrap(apperrors.CodeInvalidPrivateKey, "derive wallet key", err)
	}
	return Identity{
		Address: crypto.PubkeyToAddress(key.PublicKey),
		Key:     key,
	}, nil
}
