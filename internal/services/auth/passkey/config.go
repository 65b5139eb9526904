package passkey

import (
	"time"

	"github.com/go-webauthn/webauthn/webauthn"

	"github.com/in-labs/in-server/internal/platform/config"
)

// Config controls WebAuthn relying party settings.
type Config struct {
	RPDisplayName string
	RPID          string
	RPOrigins     []string
	LoginTimeout  time.Duration
}

// NewConfig resolves the relying party settings for a deployment target.
// Credentials are scoped to the relying party id, so the mapping is fixed per
// environment rather than freely configurable.
func NewConfig(env config.Environment) (Config, error) {
	rpID, err := env.RelyingPartyID()
	if err != nil {
		return Config{}, err
	}

	origins := []string{"https://in-labs.xyz"}
	if env == config.EnvDevelopment {
		origins = []string{"http://localhost:3000"}
	}

	return Config{
		RPDisplayName: "IN Labs",
		RPID:          rpID,
		RPOrigins:     origins,
		LoginTimeout:  60 * time.Second,
	}, nil
}

// NewWebAuthn builds the WebAuthn provider for cfg. The login timeout is the
// budget given to the client to answer a challenge, not a server-side limit.
func NewWebAuthn(cfg Config) (*webauthn.WebAuthn, error) {
	return webauthn.New(&webauthn.Config{
		RPDisplayName: cfg.RPDisplayName,
		RPID:          cfg.RPID,
		RPOrigins:     cfg.RPOrigins,
		Timeouts: webauthn.TimeoutsConfig{
			Login: webauthn.TimeoutConfig{
				Enforce:    true,
				Timeout:    cfg.LoginTimeout,
				TimeoutUVD: cfg.LoginTimeout,
			},
		},
	})
}
