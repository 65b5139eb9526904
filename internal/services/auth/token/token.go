// Package token mints and verifies the signed session tokens that bind a
// WebAuthn challenge to the credential set it was issued for.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/in-labs/in-server/internal/platform/errors"
)

// DefaultTTL bounds how long an issued challenge token stays valid.
const DefaultTTL = 7 * 24 * time.Hour

const accessTokenType = "access"

// Claims is the payload of a challenge token.
type Claims struct {
	Email         string   `json:"email"`
	Challenge     string   `json:"challenge"`
	CredentialIDs []string `json:"credentialIds"`
	TokenType     string   `json:"type"`
	jwt.RegisteredClaims
}

// Signer issues and verifies challenge tokens with a shared HMAC secret.
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSigner builds a signer. A non-positive ttl falls back to DefaultTTL.
func NewSigner(secret string, ttl time.Duration) (*Signer, error) {
	if secret == "" {
		return nil, apperrors.New(apperrors.CodeInvalidAuthHash, "token secret is not configured")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Signer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Sign mints a token binding email to the issued challenge and the credential
// ids the challenge allows.
func (s *Signer) Sign(email, challenge string, credentialIDs []string) (string, error) {
	now := s.now()
	claims := Claims{
		Email:         email,
		Challenge:     challenge,
		CredentialIDs: credentialIDs,
		TokenType:     accessTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeAuthenticationOptions, "sign challenge token", err)
	}
	return signed, nil
}

// Verify parses a token and returns its claims. Tokens that are expired,
// tampered with, or not of the access type are rejected.
func (s *Signer) Verify(tokenString string) (Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return Claims{}, apperrors.Wrap(apperrors.CodeInvalidAuthorization, "invalid token", err)
	}
	if claims.TokenType != accessTokenType {
		return Claims{}, apperrors.New(apperrors.CodeInvalidAuthorization, "token is not an access token")
	}
	return claims, nil
}
