// Package cryptoutil implements the vault passphrase verifier: a fixed
// marker sealed under a PBKDF2-derived gate key. Checking the marker detects
// a wrong passphrase on a later run without touching private key material.
package cryptoutil

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// saltSize is the length of the salt in bytes (>= 128 bits).
	saltSize = 16
	// pbkdf2Iter is the PBKDF2 iteration count (recommended ~600k for SHA-256).
	pbkdf2Iter = 600_000
	// gateKeyLen is the length of the derived gate key (256 bits for AES-256).
	gateKeyLen = 32
	// aesGCMNonceSize is the nonce length for AES-GCM (12 bytes recommended).
	aesGCMNonceSize = 12
)

// verifierMarker is the fixed plaintext sealed into the verifier token.
var verifierMarker = []byte("passbolt-vault-v1")

// ErrPassphraseMismatch is returned when a verifier token does not open
// under the derived gate key.
var ErrPassphraseMismatch = errors.New("vault passphrase mismatch or corrupt metadata")

// GenerateSalt returns a new random salt.
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	return salt, nil
}

// DeriveGateKey derives a 256-bit gate key from the vault passphrase and
// salt using PBKDF2 with HMAC-SHA-256.
func DeriveGateKey(passphrase, salt []byte) []byte {
	return pbkdf2.Key(passphrase, salt, pbkdf2Iter, gateKeyLen, sha256.New)
}

// SealVerifier seals the verifier marker under the gate key with AES-256-GCM.
// Output format: nonce || ciphertext.
func SealVerifier(gateKey []byte) ([]byte, error) {
	block, err := aes.NewCipher(gateKey)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aesGCMNonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	ciphertext := gcm.Seal(nil, nonce, verifierMarker, nil)
	return append(nonce, ciphertext...), nil
}

// CheckVerifier opens a verifier token (nonce || ciphertext) under the gate
// key and confirms the marker. A failure to open or a wrong marker both
// report ErrPassphraseMismatch.
func CheckVerifier(gateKey, token []byte) error {
	if len(token) < aesGCMNonceSize {
		return ErrPassphraseMismatch
	}
	block, err := aes.NewCipher(gateKey)
	if err != nil {
		return err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return err
	}
	nonce := token[:aesGCMNonceSize]
	ciphertext := token[aesGCMNonceSize:]
	marker, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return ErrPassphraseMismatch
	}
	if subtle.ConstantTimeCompare(marker, verifierMarker) != 1 {
		return ErrPassphraseMismatch
	}
	return nil
}

// Zeroize overwrites the contents of the byte slice with zeros.
// Use to clear sensitive buffers immediately after use.
func Zeroize(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
}
