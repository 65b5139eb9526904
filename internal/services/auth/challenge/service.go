// Package challenge orchestrates the authentication-option flow: derive the
// user's on-chain address, fetch and decode their stored passkeys, build the
// WebAuthn challenge, and mint the token binding the two.
package challenge

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"
	"go.uber.org/zap"

	apperrors "github.com/in-labs/in-server/internal/platform/errors"
	"github.com/in-labs/in-server/internal/services/auth/ledger"
	"github.com/in-labs/in-server/internal/services/auth/passkey"
	"github.com/in-labs/in-server/internal/services/auth/relayer"
	"github.com/in-labs/in-server/internal/services/auth/secret"
	"github.com/in-labs/in-server/internal/services/auth/wallet"
)

// PasskeyReader fetches the stored passkey rows for a user address.
type PasskeyReader interface {
	GetPasskeys(ctx context.Context, caller, user common.Address) ([]ledger.Record, error)
}

// RelayerSelector picks a relayer able to serve the request.
type RelayerSelector interface {
	SelectReady(ctx context.Context) (relayer.Wallet, error)
}

// TokenSigner mints the challenge-bound session token.
type TokenSigner interface {
	Sign(email, challenge string, credentialIDs []string) (string, error)
}

// optionGenerator is the slice of the WebAuthn provider this service uses.
type optionGenerator interface {
	BeginLogin(user webauthn.User, opts ...webauthn.LoginOption) (*protocol.CredentialAssertion, *webauthn.SessionData, error)
}

// Result carries the issued challenge and its binding token.
type Result struct {
	Options *protocol.CredentialAssertion `json:"options"`
	Token   string                        `json:"token"`
}

// Service issues authentication options.
type Service struct {
	authSecret  string
	relayers    RelayerSelector
	passkeys    PasskeyReader
	tokens      TokenSigner
	webAuthn    optionGenerator
	webAuthnErr error
	log         *zap.Logger
}

// New wires the challenge service. A failed WebAuthn provider init is held
// and surfaced per request rather than aborting startup.
func New(cfg passkey.Config, authSecret string, relayers RelayerSelector, passkeys PasskeyReader, tokens TokenSigner, log *zap.Logger) *Service {
	provider, err := passkey.NewWebAuthn(cfg)
	svc := &Service{
		authSecret:  authSecret,
		relayers:    relayers,
		passkeys:    passkeys,
		tokens:      tokens,
		webAuthnErr: err,
		log:         log,
	}
	if err == nil {
		svc.webAuthn = provider
	}
	return svc
}

// IssueAuthenticationOptions builds the WebAuthn authentication options for
// email, scoped to exactly the passkeys stored on chain for the derived
// address, plus a signed token proving this server issued that challenge for
// that credential set.
func (s *Service) IssueAuthenticationOptions(ctx context.Context, email string) (Result, error) {
	result, err := s.issue(ctx, email)
	if err != nil {
		return Result{}, s.mapErr(email, err)
	}
	return result, nil
}

func (s *Service) issue(ctx context.Context, email string) (Result, error) {
	if s.webAuthnErr != nil || s.webAuthn == nil {
		return Result{}, s.webAuthnErr
	}

	identity, err := wallet.Derive(email, s.authSecret)
	if err != nil {
		return Result{}, err
	}

	caller, err := s.relayers.SelectReady(ctx)
	if err != nil {
		return Result{}, err
	}

	records, err := s.passkeys.GetPasskeys(ctx, caller.Address, identity.Address)
	if err != nil {
		return Result{}, err
	}

	passkeys, err := s.decodeRecords(records)
	if err != nil {
		return Result{}, err
	}

	credentialIDs := make([]string, 0, len(passkeys))
	for _, pk := range passkeys {
		if pk.Credential.IDBase64URL != "" {
			credentialIDs = append(credentialIDs, pk.Credential.IDBase64URL)
		}
	}
	if len(credentialIDs) == 0 {
		return Result{}, apperrors.New(apperrors.CodeNoPasskey, "no passkey registered for user")
	}

	user := &challengeUser{email: email, passkeys: passkeys}
	assertion, _, err := s.webAuthn.BeginLogin(user, webauthn.WithUserVerification(protocol.VerificationRequired))
	if err != nil {
		return Result{}, err
	}

	signed, err := s.tokens.Sign(email, assertion.Response.Challenge.String(), credentialIDs)
	if err != nil {
		return Result{}, err
	}

	return Result{Options: assertion, Token: signed}, nil
}

// decodeRecords decrypts and decodes the stored rows. Placeholder rows with
// an empty credential id or blob are skipped; any row that fails to decrypt
// or decode aborts the whole request, so corruption never produces a partial
// allow-list.
func (s *Service) decodeRecords(records []ledger.Record) ([]passkey.Passkey, error) {
	passkeys := make([]passkey.Passkey, 0, len(records))
	for _, record := range records {
		if record.CredentialId == "" || record.EncryptedPasskey == "" {
			continue
		}
		blob, err := secret.Decrypt(record.EncryptedPasskey, s.authSecret)
		if err != nil {
			return nil, err
		}
		decoded, err := passkey.Decode([]byte(blob))
		if err != nil {
			return nil, err
		}
		passkeys = append(passkeys, decoded)
	}
	if len(passkeys) == 0 {
		return nil, apperrors.New(apperrors.CodeNoPasskey, "no passkey registered for user")
	}
	return passkeys, nil
}

// mapErr applies the two-tier error contract: not-found conditions and
// relayer exhaustion reach the caller as-is, everything else is logged and
// collapsed into a single generic failure so internals never leak through
// the error channel.
func (s *Service) mapErr(email string, err error) error {
	switch apperrors.GetCode(err) {
	case apperrors.CodeUserNotFound, apperrors.CodeNoPasskey, apperrors.CodeNoAvailableRelayer:
		return err
	}
	s.log.Error("generate authentication options",
		zap.String("email", email),
		zap.Error(err),
	)
	return apperrors.Wrap(apperrors.CodeAuthenticationOptions, "failed to generate authentication options", err)
}

// challengeUser adapts the decoded passkey set to the WebAuthn user model.
type challengeUser struct {
	email    string
	passkeys []passkey.Passkey
}

func (u *challengeUser) WebAuthnID() []byte {
	return []byte(u.email)
}

func (u *challengeUser) WebAuthnName() string {
	return u.email
}

func (u *challengeUser) WebAuthnDisplayName() string {
	return u.email
}

func (u *challengeUser) WebAuthnIcon() string {
	return ""
}

func (u *challengeUser) WebAuthnCredentials() []webauthn.Credential {
	credentials := make([]webauthn.Credential, 0, len(u.passkeys))
	for _, pk := range u.passkeys {
		if pk.Credential.IDBase64URL == "" {
			continue
		}
		transports := make([]protocol.AuthenticatorTransport, 0, len(pk.Credential.Transports))
		for _, transport := range pk.Credential.Transports {
			transports = append(transports, protocol.AuthenticatorTransport(transport))
		}
		credentials = append(credentials, webauthn.Credential{
			ID:        pk.Credential.IDBytes,
			PublicKey: pk.Credential.PublicKey,
			Transport: transports,
			Authenticator: webauthn.Authenticator{
				SignCount: pk.Credential.Counter,
			},
		})
	}
	return credentials
}
