package service

import (
	"io"
	"log/slog"
	"testing"

	"github.com/ProtonMail/gopenpgp/v2/crypto"
	"github.com/stretchr/testify/require"

	"github.com/funaisokenhd/passbolt-browser-extension/internal/assertion"
)

const testPassphrase = "ada@passbolt.com"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestKey(t *testing.T) *crypto.Key {
	t.Helper()
	key, err := crypto.GenerateKey("ada", "ada@passbolt.com", "x25519", 0)
	require.NoError(t, err)
	return key
}

func newLockedTestKey(t *testing.T) *crypto.Key {
	t.Helper()
	locked, err := newTestKey(t).Lock([]byte(testPassphrase))
	require.NoError(t, err)
	return locked
}

func TestDecryptStrict(t *testing.T) {
	svc := NewDecryptPrivateKeyService(false, testLogger())

	t.Run("correct passphrase unlocks the key", func(t *testing.T) {
		locked := newLockedTestKey(t)
		key, err := svc.Decrypt(locked, testPassphrase)
		require.NoError(t, err)
		unlocked, err := key.IsUnlocked()
		require.NoError(t, err)
		require.True(t, unlocked)
		require.Equal(t, locked.GetFingerprint(), key.GetFingerprint())
	})

	t.Run("wrong passphrase", func(t *testing.T) {
		key, err := svc.Decrypt(newLockedTestKey(t), "wrong passphrase")
		require.Nil(t, key)
		var invalidErr *InvalidMasterPasswordError
		require.ErrorAs(t, err, &invalidErr)
		require.Equal(t, "This is not a valid passphrase.", err.Error())
		require.NotNil(t, invalidErr.Unwrap())
	})

	t.Run("already decrypted key", func(t *testing.T) {
		key, err := svc.Decrypt(newTestKey(t), testPassphrase)
		require.Nil(t, key)
		var alreadyErr *AlreadyDecryptedError
		require.ErrorAs(t, err, &alreadyErr)
		require.Equal(t, "The private key is already decrypted.", err.Error())
	})

	t.Run("empty passphrase", func(t *testing.T) {
		key, err := svc.Decrypt(newLockedTestKey(t), "")
		require.Nil(t, key)
		var passErr *PassphraseError
		require.ErrorAs(t, err, &passErr)
		require.Equal(t, "The passphrase should be a non-empty string.", err.Error())
	})

	t.Run("public key", func(t *testing.T) {
		pub, err := newTestKey(t).ToPublic()
		require.NoError(t, err)
		key, decErr := svc.Decrypt(pub, testPassphrase)
		require.Nil(t, key)
		var formatErr *assertion.FormatError
		require.ErrorAs(t, decErr, &formatErr)
		require.Equal(t, "The key should be private.", decErr.Error())
	})

	t.Run("nil key", func(t *testing.T) {
		key, err := svc.Decrypt(nil, testPassphrase)
		require.Nil(t, key)
		var formatErr *assertion.FormatError
		require.ErrorAs(t, err, &formatErr)
	})
}

func TestDecryptRelaxed(t *testing.T) {
	svc := NewDecryptPrivateKeyService(true, testLogger())

	t.Run("decrypted key passes through unchanged", func(t *testing.T) {
		key := newTestKey(t)
		got, err := svc.Decrypt(key, testPassphrase)
		require.NoError(t, err)
		require.Same(t, key, got)
	})

	t.Run("locked key passes through locked", func(t *testing.T) {
		// The bypass never attempts an unlock, so even a wrong passphrase
		// does not fail here.
		locked := newLockedTestKey(t)
		got, err := svc.Decrypt(locked, "wrong passphrase")
		require.NoError(t, err)
		require.Same(t, locked, got)
		isLocked, err := got.IsLocked()
		require.NoError(t, err)
		require.True(t, isLocked)
	})

	t.Run("empty passphrase still fails", func(t *testing.T) {
		key, err := svc.Decrypt(newTestKey(t), "")
		require.Nil(t, key)
		var passErr *PassphraseError
		require.ErrorAs(t, err, &passErr)
	})

	t.Run("public key still fails", func(t *testing.T) {
		pub, err := newTestKey(t).ToPublic()
		require.NoError(t, err)
		_, decErr := svc.Decrypt(pub, testPassphrase)
		var formatErr *assertion.FormatError
		require.ErrorAs(t, decErr, &formatErr)
	})
}

func TestDecryptArmoredKey(t *testing.T) {
	svc := NewDecryptPrivateKeyService(false, testLogger())

	t.Run("armored locked key", func(t *testing.T) {
		locked := newLockedTestKey(t)
		armored, err := locked.Armor()
		require.NoError(t, err)
		key, err := svc.DecryptArmoredKey(armored, testPassphrase)
		require.NoError(t, err)
		unlocked, err := key.IsUnlocked()
		require.NoError(t, err)
		require.True(t, unlocked)
	})

	t.Run("malformed armor fails before the passphrase check", func(t *testing.T) {
		key, err := svc.DecryptArmoredKey("garbage", "")
		require.Nil(t, key)
		var formatErr *assertion.FormatError
		require.ErrorAs(t, err, &formatErr)
		require.Equal(t, "The key should be a valid armored key string.", err.Error())
	})

	t.Run("armored public key", func(t *testing.T) {
		armored, err := newTestKey(t).GetArmoredPublicKey()
		require.NoError(t, err)
		_, decErr := svc.DecryptArmoredKey(armored, testPassphrase)
		var formatErr *assertion.FormatError
		require.ErrorAs(t, decErr, &formatErr)
		require.Equal(t, "The key should be private.", decErr.Error())
	})
}

func TestNewDecryptPrivateKeyServiceNilLogger(t *testing.T) {
	svc := NewDecryptPrivateKeyService(false, nil)
	require.NotNil(t, svc.log)
}
