// Package service implements the private key decryption gate: given a
// private key and a passphrase, it produces a key in the decrypted state, or
// translates the library's failure into one stable error kind.
package service

import (
	"fmt"
	"log/slog"

	"github.com/ProtonMail/gopenpgp/v2/crypto"
	"github.com/google/uuid"

	"github.com/funaisokenhd/passbolt-browser-extension/internal/assertion"
	"github.com/funaisokenhd/passbolt-browser-extension/internal/i18n"
)

// DecryptPrivateKeyService decrypts private keys behind the vault passphrase.
//
// With allowUnencrypted set, the decryption step is bypassed: private keys
// enter the system only in already-decrypted form, so Decrypt degrades to
// passphrase and role validation and returns the key unchanged. The
// passphrase shape check is kept in this mode so an empty passphrase never
// silently succeeds.
type DecryptPrivateKeyService struct {
	allowUnencrypted bool
	localize         i18n.Localizer
	log              *slog.Logger
}

// NewDecryptPrivateKeyService constructs the gate for the given policy.
func NewDecryptPrivateKeyService(allowUnencrypted bool, log *slog.Logger) *DecryptPrivateKeyService {
	if log == nil {
		log = slog.Default()
	}
	return &DecryptPrivateKeyService{
		allowUnencrypted: allowUnencrypted,
		localize:         i18n.T,
		log:              log,
	}
}

// Decrypt returns a usable private key for the given passphrase.
//
// Strict policy: a key already decrypted is a caller error
// (AlreadyDecryptedError); any unlock failure from the library becomes an
// InvalidMasterPasswordError. Relaxed policy: the key is returned unchanged
// after the passphrase and role checks.
func (s *DecryptPrivateKeyService) Decrypt(privateKey *crypto.Key, passphrase string) (*crypto.Key, error) {
	if passphrase == "" {
		return nil, &PassphraseError{message: s.localize("The passphrase should be a non-empty string.")}
	}
	if err := assertion.AssertPrivateKey(privateKey); err != nil {
		return nil, err
	}

	op := uuid.NewString()
	if s.allowUnencrypted {
		s.log.Debug("private key decryption bypassed by policy",
			"op", op, "fingerprint", privateKey.GetFingerprint())
		return privateKey, nil
	}

	unlocked, err := privateKey.IsUnlocked()
	if err != nil {
		return nil, fmt.Errorf("inspecting private key state: %w", err)
	}
	if unlocked {
		return nil, &AlreadyDecryptedError{message: s.localize("The private key is already decrypted.")}
	}

	decrypted, err := privateKey.Unlock([]byte(passphrase))
	if err != nil {
		s.log.Debug("private key unlock failed", "op", op)
		return nil, &InvalidMasterPasswordError{
			message: s.localize("This is not a valid passphrase."),
			cause:   err,
		}
	}
	s.log.Debug("private key unlocked",
		"op", op, "fingerprint", decrypted.GetFingerprint())
	return decrypted, nil
}

// DecryptArmoredKey parses an armored private key and decrypts it. A
// malformed armored key fails with the same FormatError as assertion.ReadKey,
// before any passphrase check.
func (s *DecryptPrivateKeyService) DecryptArmoredKey(armoredKey, passphrase string) (*crypto.Key, error) {
	key, err := assertion.ReadKey(armoredKey)
	if err != nil {
		return nil, err
	}
	return s.Decrypt(key, passphrase)
}
