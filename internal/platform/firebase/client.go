// Package firebase wraps the realtime database used as the relayer liveness
// registry.
package firebase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	firebaseAdmin "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/db"
	"google.golang.org/api/option"
)

// Config carries the service-account material for the realtime database.
type Config struct {
	ProjectID   string
	ClientEmail string
	PrivateKey  string
	DatabaseURL string
}

// Client reads from the realtime database. This service never writes to it;
// the relayer workers own the data.
type Client struct {
	app *firebaseAdmin.App
	db  *db.Client
}

// New authenticates against the realtime database with the configured
// service account.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.ProjectID == "" || cfg.ClientEmail == "" || cfg.PrivateKey == "" || cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("firebase configuration is missing")
	}

	creds, err := serviceAccountJSON(cfg)
	if err != nil {
		return nil, fmt.Errorf("firebase credentials: %w", err)
	}

	app, err := firebaseAdmin.NewApp(ctx, &firebaseAdmin.Config{
		DatabaseURL: cfg.DatabaseURL,
	}, option.WithCredentialsJSON(creds))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}

	dbClient, err := app.Database(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase db: %w", err)
	}

	return &Client{app: app, db: dbClient}, nil
}

// serviceAccountJSON rebuilds the credentials file from its parts. Secret
// stores flatten the private key's newlines; they are restored here.
func serviceAccountJSON(cfg Config) ([]byte, error) {
	account := map[string]string{
		"type":         "service_account",
		"project_id":   cfg.ProjectID,
		"client_email": cfg.ClientEmail,
		"private_key":  strings.ReplaceAll(cfg.PrivateKey, `\n`, "\n"),
		"token_uri":    "https://oauth2.googleapis.com/token",
	}
	return json.Marshal(account)
}

// normalizePath validates and strips the leading slashes of a database path.
func normalizePath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("firebase path must be a non-empty string")
	}
	return strings.TrimLeft(trimmed, "/"), nil
}

// Read decodes the value stored at path into out. An absent path reports
// false with out untouched, not an error.
func (c *Client) Read(ctx context.Context, path string, out any) (bool, error) {
	if c == nil || c.db == nil {
		return false, fmt.Errorf("firebase client is nil")
	}

	norm, err := normalizePath(path)
	if err != nil {
		return false, err
	}

	var raw any
	if err := c.db.NewRef(norm).Get(ctx, &raw); err != nil {
		return false, fmt.Errorf("get %s: %w", norm, err)
	}
	if raw == nil {
		return false, nil
	}

	buf, err := json.Marshal(raw)
	if err != nil {
		return false, fmt.Errorf("marshal firebase data: %w", err)
	}
	if err := json.Unmarshal(buf, out); err != nil {
		return false, fmt.Errorf("decode firebase data: %w", err)
	}
	return true, nil
}
