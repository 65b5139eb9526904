// Package config provides environment-based configuration loading and the
// deployment target enumeration.
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"

	apperrors "github.com/in-labs/in-server/internal/platform/errors"
)

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Environment identifies the deployment target. Configuration is validated
// against this enumeration once at startup; there is no fallback for
// unsupported values.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
)

// ParseEnvironment validates a raw deployment target value.
func ParseEnvironment(raw string) (Environment, error) {
	switch e := Environment(strings.TrimSpace(raw)); e {
	case EnvDevelopment, EnvProduction:
		return e, nil
	default:
		return "", apperrors.New(apperrors.CodeInvalidOrigin, fmt.Sprintf("unsupported deployment environment %q", raw))
	}
}

// RelyingPartyID returns the WebAuthn relying-party identifier for the
// deployment target. Credentials are scoped to this domain.
func (e Environment) RelyingPartyID() (string, error) {
	switch e {
	case EnvDevelopment:
		return "localhost", nil
	case EnvProduction:
		return "in-labs.xyz", nil
	default:
		return "", apperrors.New(apperrors.CodeInvalidOrigin, fmt.Sprintf("no relying party for environment %q", e))
	}
}
