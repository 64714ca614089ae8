// Package vault bootstraps the client-side key vault: it loads the vault
// passphrase, opens the keyring database, verifies the passphrase against the
// sealed verifier token, and runs the decryption gate over the stored account
// private key.
package vault

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ProtonMail/gopenpgp/v2/crypto"
	"github.com/google/uuid"
	"golang.org/x/term"

	"github.com/funaisokenhd/passbolt-browser-extension/internal/assertion"
	"github.com/funaisokenhd/passbolt-browser-extension/internal/config"
	"github.com/funaisokenhd/passbolt-browser-extension/internal/cryptoutil"
	"github.com/funaisokenhd/passbolt-browser-extension/internal/i18n"
	"github.com/funaisokenhd/passbolt-browser-extension/internal/keyring"
	"github.com/funaisokenhd/passbolt-browser-extension/internal/service"
)

// Vault holds the opened keyring and the unlocked account private key.
type Vault struct {
	cfg        *config.Config
	store      *keyring.SQLiteStore
	gate       *service.DecryptPrivateKeyService
	privateKey *crypto.Key
	sessionID  string
	log        *slog.Logger
}

// Open bootstraps the vault: loads the passphrase, opens the keyring,
// verifies the passphrase, and unlocks the stored account private key if one
// exists.
func Open(cfg *config.Config, log *slog.Logger) (*Vault, error) {
	if log == nil {
		log = slog.Default()
	}
	if cfg.Vault.Locale != "" {
		i18n.SetDefault(cfg.Vault.Locale)
	}
	sessionID := uuid.NewString()
	log = log.With("session", sessionID)

	// 1) Load or prompt passphrase
	passphrase, err := loadPassphrase(cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to load passphrase: %w", err)
	}
	defer cryptoutil.Zeroize(passphrase)

	// 2) Open keyring database (creates schema on first run)
	store, err := keyring.Open(cfg.Keyring.DSN)
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}

	// 3) Retrieve or generate salt
	salt, err := store.GetGateSalt()
	if err != nil {
		if !errors.Is(err, keyring.ErrNotFound) {
			store.Close()
			return nil, fmt.Errorf("getting gate salt: %w", err)
		}
		salt, err = cryptoutil.GenerateSalt()
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("generating salt: %w", err)
		}
		if err := store.SetGateSalt(salt); err != nil {
			store.Close()
			return nil, fmt.Errorf("storing gate salt: %w", err)
		}
	}

	// 4) Derive gate key and validate the passphrase against the verifier
	gateKey := cryptoutil.DeriveGateKey(passphrase, salt)
	defer cryptoutil.Zeroize(gateKey)

	token, err := store.GetVerifierToken()
	if err != nil {
		if !errors.Is(err, keyring.ErrNotFound) {
			store.Close()
			return nil, fmt.Errorf("loading verifier token: %w", err)
		}
		// First run ever: seal and store the verifier
		token, err = cryptoutil.SealVerifier(gateKey)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("sealing verifier token: %w", err)
		}
		if err := store.SetVerifierToken(token); err != nil {
			store.Close()
			return nil, fmt.Errorf("storing verifier token: %w", err)
		}
		log.Debug("vault initialized")
	} else {
		// Subsequent runs: confirm the passphrase opens the verifier
		if err := cryptoutil.CheckVerifier(gateKey, token); err != nil {
			store.Close()
			return nil, err
		}
	}

	// 5) Unlock the stored account private key through the decryption gate
	gate := service.NewDecryptPrivateKeyService(cfg.Vault.AllowUnencryptedPrivateKeys, log)
	v := &Vault{
		cfg:       cfg,
		store:     store,
		gate:      gate,
		sessionID: sessionID,
		log:       log,
	}
	stored, err := store.LoadPrivateKey()
	if err != nil {
		if !errors.Is(err, keyring.ErrNotFound) {
			store.Close()
			return nil, fmt.Errorf("loading account private key: %w", err)
		}
		log.Debug("no account private key stored yet")
		return v, nil
	}
	key, err := gate.DecryptArmoredKey(stored.Armored, string(passphrase))
	if err != nil {
		store.Close()
		return nil, err
	}
	v.privateKey = key
	log.Debug("account private key unlocked", "fingerprint", key.GetFingerprint())
	return v, nil
}

// ImportPrivateKey validates an armored private key against the passphrase
// and stores it as the account private key. Under the relaxed policy the key
// must already be decrypted; under the strict policy it is stored in its
// encrypted form after the passphrase has been proven to unlock it.
func (v *Vault) ImportPrivateKey(armoredKey, passphrase string) error {
	key, err := v.gate.DecryptArmoredKey(armoredKey, passphrase)
	if err != nil {
		return err
	}
	if v.cfg.Vault.AllowUnencryptedPrivateKeys {
		if err := assertion.AssertDecryptedPrivateKey(key); err != nil {
			return err
		}
	}
	if err := v.store.StoreKey(keyring.AccountKey{
		Fingerprint: key.GetFingerprint(),
		Armored:     armoredKey,
		Private:     true,
	}); err != nil {
		return fmt.Errorf("storing private key: %w", err)
	}
	v.privateKey = key
	v.log.Debug("account private key imported", "fingerprint", key.GetFingerprint())
	return nil
}

// ImportPublicKey validates an armored public key and stores it in the
// keyring.
func (v *Vault) ImportPublicKey(armoredKey string) error {
	key, err := assertion.ReadKey(armoredKey)
	if err != nil {
		return err
	}
	if err := assertion.AssertPublicKey(key); err != nil {
		return err
	}
	if err := v.store.StoreKey(keyring.AccountKey{
		Fingerprint: key.GetFingerprint(),
		Armored:     armoredKey,
		Private:     false,
	}); err != nil {
		return fmt.Errorf("storing public key: %w", err)
	}
	return nil
}

// PrivateKey returns the unlocked account private key, or nil when no key
// has been imported yet.
func (v *Vault) PrivateKey() *crypto.Key {
	return v.privateKey
}

// Gate returns the private key decryption service bound to this vault's
// policy.
func (v *Vault) Gate() *service.DecryptPrivateKeyService {
	return v.gate
}

// Fingerprints lists the fingerprints of all keys in the keyring.
func (v *Vault) Fingerprints() ([]string, error) {
	return v.store.ListFingerprints()
}

// Close tears down the vault: clears private key material and closes the
// keyring database.
func (v *Vault) Close() error {
	if v.privateKey != nil {
		v.privateKey.ClearPrivateParams()
		v.privateKey = nil
	}
	return v.store.Close()
}

// loadPassphrase handles file-based or interactive passphrase loading.
func loadPassphrase(cfg *config.Config) ([]byte, error) {
	if strings.TrimSpace(cfg.Vault.PassphraseFile) != "" {
		data, err := os.ReadFile(cfg.Vault.PassphraseFile)
		if err == nil {
			pass := strings.TrimSpace(string(data))
			if pass != "" {
				return []byte(pass), nil
			}
		} else {
			fmt.Fprintf(os.Stderr, "Warning: could not read passphrase file: %v\n", err)
		}
	}

	// Fallback: interactive prompt
	fmt.Print("Enter vault passphrase: ")
	pass, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return nil, fmt.Errorf("reading passphrase: %w", err)
	}
	return pass, nil
}
