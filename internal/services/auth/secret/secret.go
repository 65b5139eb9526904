// Package secret implements the password-based cipher that protects relayer
// private keys at rest. The format is the OpenSSL EVP envelope: the literal
// bytes "Salted__", an 8-byte random salt, and the AES-256-CBC ciphertext,
// base64 encoded as a whole.
package secret

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	apperrors "github.com/in-labs/in-server/internal/platform/errors"
)

const (
	saltedHeader = "Salted__"
	saltSize     = 8
	keySize      = 32
	ivSize       = aes.BlockSize
)

// Encrypt seals plaintext under secret. The salt is fresh per call, so the
// output differs between invocations for the same inputs.
func Encrypt(plaintext, secret string) (string, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key, iv := evpKeyIV(sha256.New().Size(), []byte(secret), salt)
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("init cipher: %w", err)
	}

	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	out := make([]byte, len(saltedHeader)+saltSize+len(padded))
	copy(out, saltedHeader)
	copy(out[len(saltedHeader):], salt)
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out[len(saltedHeader)+saltSize:], padded)

	return base64.StdEncoding.EncodeToString(out), nil
}

// Decrypt opens an envelope produced by Encrypt. Ciphertexts written by older
// tooling derived their key with MD5; those still open because decryption
// retries with the legacy derivation before giving up.
func Decrypt(encoded, secret string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeDecryptFailed, "ciphertext is not valid base64", err)
	}
	if len(raw) < len(saltedHeader)+saltSize || string(raw[:len(saltedHeader)]) != saltedHeader {
		return "", apperrors.New(apperrors.CodeDecryptFailed, "ciphertext is missing the salt header")
	}

	salt := raw[len(saltedHeader) : len(saltedHeader)+saltSize]
	body := raw[len(saltedHeader)+saltSize:]
	if len(body) == 0 || len(body)%aes.BlockSize != 0 {
		return "", apperrors.New(apperrors.CodeDecryptFailed, "ciphertext length is not a block multiple")
	}

	if plain, err := decryptWith(sha256.New().Size(), body, []byte(secret), salt); err == nil {
		return plain, nil
	}
	plain, err := decryptWith(md5.Size, body, []byte(secret), salt)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeDecryptFailed, "unable to decrypt with provided secret", err)
	}
	return plain, nil
}

// Hash returns the hex-encoded SHA-256 digest of data.
func Hash(data string) string {
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

func decryptWith(digestSize int, body, secret, salt []byte) (string, error) {
	key, iv := evpKeyIV(digestSize, secret, salt)
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("init cipher: %w", err)
	}

	plain := make([]byte, len(body))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, body)
	unpadded, err := pkcs7Unpad(plain, aes.BlockSize)
	if err != nil {
		return "", err
	}
	return string(unpadded), nil
}

// evpKeyIV derives the AES key and IV from the secret and salt by chaining
// digests over digest(prev || secret || salt) until enough material exists.
// digestSize selects the hash: sha256.Size for current envelopes, md5.Size
// for the legacy ones.
func evpKeyIV(digestSize int, secret, salt []byte) (key, iv []byte) {
	var material []byte
	var prev []byte
	for len(material) < keySize+ivSize {
		block := append(append(append([]byte{}, prev...), secret...), salt...)
		var sum []byte
		if digestSize == md5.Size {
			d := md5.Sum(block)
			sum = d[:]
		} else {
			d := sha256.Sum256(block)
			sum = d[:]
		}
		material = append(material, sum...)
		prev = sum
	}
	return material[:keySize], material[keySize : keySize+ivSize]
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	pad := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(pad)}, pad)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, fmt.Errorf("invalid padded length %d", len(data))
	}
	pad := int(data[len(data)-1])
	if pad == 0 || pad > blockSize {
		return nil, fmt.Errorf("invalid padding byte %d", pad)
	}
	for _, b := range data[len(data)-pad:] {
		if int(b) != pad {
			return nil, fmt.Errorf("inconsistent padding")
		}
	}
	return data[:len(data)-pad], nil
}
