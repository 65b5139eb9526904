// Package passkey converts between the on-chain encrypted passkey blob and
// the hydrated in-memory credential record used to build WebAuthn options.
package passkey

import (
	"encoding/base64"
	"encoding/json"
	"strings"

	apperrors "github.com/in-labs/in-server/internal/platform/errors"
)

// Credential is the decoded WebAuthn credential half of a stored passkey.
type Credential struct {
	// ID is the credential id exactly as stored on the ledger.
	ID string
	// IDBytes is the decoded form of ID.
	IDBytes []byte
	// IDBase64URL is the URL-safe re-encoding of IDBytes without padding.
	// Authenticators report credential ids in this form, so allow-list
	// entries must match it byte for byte.
	IDBase64URL string
	PublicKey   []byte
	Counter     uint32
	Transports  []string
	// Extra holds credential fields this service does not interpret. They
	// survive decode so newer writers do not lose data through this path.
	Extra map[string]json.RawMessage
}

// Passkey is the hydrated form of a decrypted on-chain passkey blob.
type Passkey struct {
	Credential        Credential
	AttestationObject []byte
	Extra             map[string]json.RawMessage
}

// Decode parses a decrypted passkey blob. The blob is JSON of the shape
// {"credential":{"id":...,"publicKey":...,"counter":...,"transports":[...]},
// "attestationObject":...} with base64 string fields.
func Decode(blob []byte) (Passkey, error) {
	var outer map[string]json.RawMessage
	if err := json.Unmarshal(blob, &outer); err != nil {
		return Passkey{}, apperrors.Wrap(apperrors.CodeMalformedPasskey, "passkey blob is not valid JSON", err)
	}

	rawCred, ok := outer["credential"]
	if !ok {
		return Passkey{}, apperrors.New(apperrors.CodeMalformedPasskey, "passkey blob has no credential")
	}

	cred, err := decodeCredential(rawCred)
	if err != nil {
		return Passkey{}, err
	}

	pk := Passkey{Credential: cred}
	if rawAtt, ok := outer["attestationObject"]; ok {
		var att string
		if err := json.Unmarshal(rawAtt, &att); err != nil {
			return Passkey{}, apperrors.Wrap(apperrors.CodeMalformedPasskey, "attestationObject is not a string", err)
		}
		decoded, err := decodeLooseBase64(att)
		if err != nil {
			return Passkey{}, apperrors.Wrap(apperrors.CodeMalformedPasskey, "attestationObject is not valid base64", err)
		}
		pk.AttestationObject = decoded
	}

	for key, raw := range outer {
		if key == "credential" || key == "attestationObject" {
			continue
		}
		if pk.Extra == nil {
			pk.Extra = map[string]json.RawMessage{}
		}
		pk.Extra[key] = raw
	}
	return pk, nil
}

func decodeCredential(raw json.RawMessage) (Credential, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Credential{}, apperrors.Wrap(apperrors.CodeMalformedPasskey, "credential is not an object", err)
	}

	var id string
	if rawID, ok := fields["id"]; !ok || json.Unmarshal(rawID, &id) != nil {
		return Credential{}, apperrors.New(apperrors.CodeMalformedPasskey, "credential id is not a string")
	}

	idBytes, err := decodeLooseBase64(id)
	if err != nil {
		return Credential{}, apperrors.Wrap(apperrors.CodeMalformedPasskey, "credential id is not valid base64", err)
	}

	cred := Credential{
		ID:          id,
		IDBytes:     idBytes,
		IDBase64URL: EncodeBase64URL(idBytes),
	}

	if rawKey, ok := fields["publicKey"]; ok {
		var pub string
		if err := json.Unmarshal(rawKey, &pub); err != nil {
			return Credential{}, apperrors.Wrap(apperrors.CodeMalformedPasskey, "credential publicKey is not a string", err)
		}
		decoded, err := decodeLooseBase64(pub)
		if err != nil {
			return Credential{}, apperrors.Wrap(apperrors.CodeMalformedPasskey, "credential publicKey is not valid base64", err)
		}
		cred.PublicKey = decoded
	}

	if rawCounter, ok := fields["counter"]; ok {
		if err := json.Unmarshal(rawCounter, &cred.Counter); err != nil {
			return Credential{}, apperrors.Wrap(apperrors.CodeMalformedPasskey, "credential counter is not an integer", err)
		}
	}

	cred.Transports = decodeTransports(fields["transports"])

	for key, rawField := range fields {
		switch key {
		case "id", "publicKey", "counter", "transports":
			continue
		}
		if cred.Extra == nil {
			cred.Extra = map[string]json.RawMessage{}
		}
		cred.Extra[key] = rawField
	}
	return cred, nil
}

// decodeTransports keeps only the string entries of a transports array. A
// missing, malformed, or mixed-type value degrades to dropping the bad
// entries, never to a nil slice.
func decodeTransports(raw json.RawMessage) []string {
	transports := []string{}
	if len(raw) == 0 {
		return transports
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return transports
	}
	for _, entry := range entries {
		var s string
		if err := json.Unmarshal(entry, &s); err == nil {
			transports = append(transports, s)
		}
	}
	return transports
}

// EncodeBase64URL encodes b as standard base64, then applies the URL-safe
// substitution and strips padding. The exact transform matters: credential
// ids on the ledger were written this way and must keep matching what
// authenticators return.
func EncodeBase64URL(b []byte) string {
	encoded := base64.StdEncoding.EncodeToString(b)
	encoded = strings.ReplaceAll(encoded, "+", "-")
	encoded = strings.ReplaceAll(encoded, "/", "_")
	return strings.TrimRight(encoded, "=")
}

// DecodeBase64URL reverses EncodeBase64URL: undo the character substitution,
// restore padding to a multiple of four, then standard base64 decode.
func DecodeBase64URL(s string) ([]byte, error) {
	restored := strings.ReplaceAll(s, "-", "+")
	restored = strings.ReplaceAll(restored, "_", "/")
	if rem := len(restored) % 4; rem != 0 {
		restored += strings.Repeat("=", 4-rem)
	}
	return base64.StdEncoding.DecodeString(restored)
}

// decodeLooseBase64 accepts both the standard and URL-safe alphabets, padded
// or not. Stored blobs mix the two depending on which client wrote them.
func decodeLooseBase64(s string) ([]byte, error) {
	return DecodeBase64URL(s)
}
