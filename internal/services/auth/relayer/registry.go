// Package relayer manages the pool of gas-sponsoring accounts. Private keys
// arrive encrypted in configuration, are decrypted once at startup, and a
// ready relayer is picked per request against an external liveness registry.
package relayer

import (
	"context"
	"crypto/ecdsa"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	apperrors "github.com/in-labs/in-server/internal/platform/errors"
	"github.com/in-labs/in-server/internal/services/auth/secret"
)

// Role identifies an account in the pool. The owner signs administrative
// transactions only and is never selected as a relayer.
type Role string

const (
	RoleOwner    Role = "owner"
	RoleRelayer  Role = "relayer"
	RoleRelayer2 Role = "relayer2"
	RoleRelayer3 Role = "relayer3"
)

// Status mirrors the liveness states the relayer workers report.
type Status string

const (
	StatusReady      Status = "Ready"
	StatusProcessing Status = "Processing"
	StatusShutdown   Status = "Shutdown"
)

// LivenessEntry is one relayer's self-reported state in the external
// registry.
type LivenessEntry struct {
	Address string `json:"address"`
	Status  Status `json:"status"`
}

// LivenessReader reads the current relayer liveness map, keyed by role. The
// registry only ever reads it; the relayer workers own the data.
type LivenessReader interface {
	ReadLiveness(ctx context.Context) (map[string]LivenessEntry, error)
}

// Wallet is a decrypted pool account.
type Wallet struct {
	Role    Role
	Address common.Address
	Key     *ecdsa.PrivateKey
}

// EncryptedKeys carries the configured ciphertexts for every pool account.
// All four are mandatory; a partially configured pool is a startup failure,
// not a degraded mode.
type EncryptedKeys struct {
	Owner    string
	Relayer  string
	Relayer2 string
	Relayer3 string
}

// Registry holds the decrypted pool and the liveness source.
type Registry struct {
	owner    Wallet
	relayers []Wallet
	liveness LivenessReader
}

// New decrypts the configured pool keys and wires the liveness source.
func New(keys EncryptedKeys, authSecret string, liveness LivenessReader) (*Registry, error) {
	if authSecret == "" {
		return nil, apperrors.New(apperrors.CodeInvalidAuthHash, "auth secret is not configured")
	}

	wallets := make(map[Role]Wallet, 4)
	for _, account := range []struct {
		role       Role
		ciphertext string
	}{
		{RoleOwner, keys.Owner},
		{RoleRelayer, keys.Relayer},
		{RoleRelayer2, keys.Relayer2},
		{RoleRelayer3, keys.Relayer3},
	} {
		wallet, err := decryptWallet(account.role, account.ciphertext, authSecret)
		if err != nil {
			return nil, err
		}
		wallets[account.role] = wallet
	}

	return &Registry{
		owner: wallets[RoleOwner],
		relayers: []Wallet{
			wallets[RoleRelayer],
			wallets[RoleRelayer2],
			wallets[RoleRelayer3],
		},
		liveness: liveness,
	}, nil
}

func decryptWallet(role Role, ciphertext, authSecret string) (Wallet, error) {
	if ciphertext == "" {
		return Wallet{}, apperrors.New(apperrors.CodeInvalidPrivateKey, "no encrypted private key configured for "+string(role))
	}

	hexKey, err := secret.Decrypt(ciphertext, authSecret)
	if err != nil {
		return Wallet{}, apperrors.Wrap(apperrors.CodeInvalidPrivateKey, "decrypt private key for "+string(role), err)
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return Wallet{}, apperrors.Wrap(apperrors.CodeInvalidPrivateKey, "parse private key for "+string(role), err)
	}

	return Wallet{
		Role:    role,
		Address: crypto.PubkeyToAddress(key.PublicKey),
		Key:     key,
	}, nil
}

// Owner returns the administrative wallet.
func (r *Registry) Owner() Wallet {
	return r.owner
}

// SelectReady picks the first relayer, in declaration order, whose address is
// marked Ready in the liveness registry. Addresses match case-insensitively.
// Liveness is advisory: a relayer may stop being ready between this check and
// its use, which callers accept.
func (r *Registry) SelectReady(ctx context.Context) (Wallet, error) {
	entries, err := r.liveness.ReadLiveness(ctx)
	if err != nil {
		return Wallet{}, apperrors.Wrap(apperrors.CodeNoAvailableRelayer, "read relayer liveness", err)
	}

	ready := make(map[string]bool, len(entries))
	for _, entry := range entries {
		if entry.Status == StatusReady {
			ready[strings.ToLower(entry.Address)] = true
		}
	}

	for _, wallet := range r.relayers {
		if ready[strings.ToLower(wallet.Address.Hex())] {
			return wallet, nil
		}
	}
	return Wallet{}, apperrors.New(apperrors.CodeNoAvailableRelayer, "no relayer is ready")
}
