// Package auth wires configuration into a running auth server.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/in-labs/in-server/internal/platform/config"
	"github.com/in-labs/in-server/internal/platform/firebase"
	"github.com/in-labs/in-server/internal/platform/logger"
	server "github.com/in-labs/in-server/internal/services/auth/app"
	"github.com/in-labs/in-server/internal/services/auth/challenge"
	"github.com/in-labs/in-server/internal/services/auth/ledger"
	"github.com/in-labs/in-server/internal/services/auth/passkey"
	"github.com/in-labs/in-server/internal/services/auth/relayer"
	"github.com/in-labs/in-server/internal/services/auth/token"
)

// Config holds auth command configuration.
type Config struct {
	Environment string        `env:"IN_SERVER_ENV"            envDefault:"development"`
	HTTPAddr    string        `env:"IN_SERVER_HTTP_ADDR"      envDefault:"localhost:8080"`
	AuthSecret  string        `env:"IN_SERVER_AUTH_SECRET"`
	TokenSecret string        `env:"IN_SERVER_JWT_ACCESS_SECRET"`
	TokenTTL    time.Duration `env:"IN_SERVER_JWT_ACCESS_TTL" envDefault:"168h"`

	ChainRPCURL        string `env:"IN_SERVER_CHAIN_RPC_URL" envDefault:"https://public-en-kairos.node.kaia.io"`
	AuthStorageAddress string `env:"IN_SERVER_AUTH_STORAGE_ADDRESS"`

	PrivateKeyOwner    string `env:"IN_SERVER_PRIVATE_KEY_OWNER"`
	PrivateKeyRelayer  string `env:"IN_SERVER_PRIVATE_KEY_RELAYER"`
	PrivateKeyRelayer2 string `env:"IN_SERVER_PRIVATE_KEY_RELAYER2"`
	PrivateKeyRelayer3 string `env:"IN_SERVER_PRIVATE_KEY_RELAYER3"`

	FirebaseProjectID   string `env:"IN_SERVER_FIREBASE_PROJECT_ID"`
	FirebaseClientEmail string `env:"IN_SERVER_FIREBASE_CLIENT_EMAIL"`
	FirebasePrivateKey  string `env:"IN_SERVER_FIREBASE_PRIVATE_KEY"`
	FirebaseDatabaseURL string `env:"IN_SERVER_FIREBASE_DATABASE_URL"`
}

// ParseConfig loads the command configuration from the environment.
func ParseConfig() (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run assembles the service from cfg and serves until the context ends.
func Run(ctx context.Context, cfg Config) error {
	env, err := config.ParseEnvironment(cfg.Environment)
	if err != nil {
		return err
	}

	log, err := logger.New(env)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	passkeyCfg, err := passkey.NewConfig(env)
	if err != nil {
		return err
	}

	firebaseClient, err := firebase.New(ctx, firebase.Config{
		ProjectID:   cfg.FirebaseProjectID,
		ClientEmail: cfg.FirebaseClientEmail,
		PrivateKey:  cfg.FirebasePrivateKey,
		DatabaseURL: cfg.FirebaseDatabaseURL,
	})
	if err != nil {
		return err
	}

	registry, err := relayer.New(relayer.EncryptedKeys{
		Owner:    cfg.PrivateKeyOwner,
		Relayer:  cfg.PrivateKeyRelayer,
		Relayer2: cfg.PrivateKeyRelayer2,
		Relayer3: cfg.PrivateKeyRelayer3,
	}, cfg.AuthSecret, relayer.NewFirebaseLiveness(firebaseClient))
	if err != nil {
		return err
	}

	ledgerClient, err := ledger.Dial(ctx, cfg.ChainRPCURL, cfg.AuthStorageAddress)
	if err != nil {
		return err
	}
	defer ledgerClient.Close()

	signer, err := token.NewSigner(cfg.TokenSecret, cfg.TokenTTL)
	if err != nil {
		return err
	}

	challenges := challenge.New(passkeyCfg, cfg.AuthSecret, registry, ledgerClient, signer, log)

	srv, err := server.New(cfg.HTTPAddr, challenges, log)
	if err != nil {
		return err
	}
	return srv.Serve(ctx)
}
