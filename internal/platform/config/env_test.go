package config

import (
	"errors"
	"testing"

	apperrors "github.com/in-labs/in-server/internal/platform/errors"
)

func TestParseEnv(t *testing.T) {
	t.Setenv("IN_SERVER_TEST_VALUE", "hello")

	var cfg struct {
		Value string `env:"IN_SERVER_TEST_VALUE"`
	}
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Value != "hello" {
		t.Fatalf("Value = %q, want %q", cfg.Value, "hello")
	}
}

func TestParseEnvironment(t *testing.T) {
	env, err := ParseEnvironment("development")
	if err != nil {
		t.Fatalf("parse environment: %v", err)
	}
	if env != EnvDevelopment {
		t.Fatalf("environment = %q, want %q", env, EnvDevelopment)
	}

	env, err = ParseEnvironment(" production ")
	if err != nil {
		t.Fatalf("parse environment: %v", err)
	}
	if env != EnvProduction {
		t.Fatalf("environment = %q, want %q", env, EnvProduction)
	}
}

func TestParseEnvironmentRejectsUnknownTargets(t *testing.T) {
	for _, raw := range []string{"", "staging", "prod"} {
		_, err := ParseEnvironment(raw)
		if err == nil {
			t.Fatalf("expected error for environment %q", raw)
		}
		if !errors.Is(err, apperrors.New(apperrors.CodeInvalidOrigin, "")) {
			t.Fatalf("error code = %q, want %q", apperrors.GetCode(err), apperrors.CodeInvalidOrigin)
		}
	}
}

func TestRelyingPartyID(t *testing.T) {
	cases := []struct {
		env  Environment
		want string
	}{
		{EnvDevelopment, "localhost"},
		{EnvProduction, "in-labs.xyz"},
	}
	for _, tc := range cases {
		got, err := tc.env.RelyingPartyID()
		if err != nil {
			t.Fatalf("relying party id for %q: %v", tc.env, err)
		}
		if got != tc.want {
			t.Fatalf("RelyingPartyID(%s) = %q, want %q", tc.env, got, tc.want)
		}
	}

	if _, err := Environment("staging").RelyingPartyID(); apperrors.GetCode(err) != apperrors.CodeInvalidOrigin {
		t.Fatalf("expected %q for unknown environment", apperrors.CodeInvalidOrigin)
	}
}
