package wallet

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	apperrors "github.com/in-labs/in-server/internal/platform/errors"
)

func TestDeriveIsDeterministic(t *testing.T) {
	first, err := Derive("a@b.com", "S")
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	second, err := Derive("a@b.com", "S")
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if first.Address != second.Address {
		t.Fatalf("address = %s, want %s", second.Address, first.Address)
	}
	if first.Key.D.Cmp(second.Key.D) != 0 {
		t.Fatalf("expected identical private keys for identical inputs")
	}
}

func TestDeriveSeparatesUsersAndSecrets(t *testing.T) {
	base, err := Derive("a@b.com", "S")
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	otherUser, err := Derive("c@d.com", "S")
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	otherSecret, err := Derive("a@b.com", "T")
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if base.Address == otherUser.Address {
		t.Fatalf("expected distinct addresses for distinct users")
	}
	if base.Address == otherSecret.Address {
		t.Fatalf("expected distinct addresses for distinct secrets")
	}
}

func TestDeriveAddressMatchesKey(t *testing.T) {
	id, err := Derive("a@b.com", "S")
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if want := crypto.PubkeyToAddress(id.Key.PublicKey); id.Address != want {
		t.Fatalf("address = %s, want %s", id.Address, want)
	}
}

func TestDeriveRequiresSecret(t *testing.T) {
	if _, err := Derive("a@b.com", ""); apperrors.GetCode(err) != apperrors.CodeInvalidAuthHash {
		t.Fatalf("error code = %q, want %q", apperrors.GetCode(err), apperrors.CodeInvalidAuthHash)
	}
}

func TestDeriveAllowsEmptyEmail(t *testing.T) {
	id, err := Derive("", "S")
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if id.Address == (common.Address{}) {
		t.Fatalf("expected a non-zero address")
	}
}
