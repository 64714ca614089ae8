// Package assertion guards every boundary between loosely-typed cryptographic
// material and code that assumes a specific kind and state. Factories parse
// armored text or fail with a FormatError; assertion predicates check an
// already-constructed object and return nil only when it conforms. Every
// function is stateless and safe to call concurrently.
package assertion

import (
	"github.com/ProtonMail/gopenpgp/v2/crypto"
)

// ReadKey parses an armored key. The key's role (public or private) is
// decided by the parsed material, never by the caller. Any parse failure is
// normalized into one stable FormatError with the library's error as cause.
func ReadKey(armoredKey string) (*crypto.Key, error) {
	if armoredKey == "" {
		return nil, newFormatError(localize("The key should be a valid armored key string."))
	}
	key, err := crypto.NewKeyFromArmored(armoredKey)
	if err != nil {
		return nil, wrapFormatError(localize("The key should be a valid armored key string."), err)
	}
	return key, nil
}

// ReadAllKeys parses every armored key in the list, failing on the first
// malformed entry. A single bad entry invalidates the whole batch.
func ReadAllKeys(armoredKeys []string) ([]*crypto.Key, error) {
	if armoredKeys == nil {
		return nil, newFormatError(localize("The keys should be an array of valid armored key strings."))
	}
	keys := make([]*crypto.Key, 0, len(armoredKeys))
	for _, armoredKey := range armoredKeys {
		key, err := ReadKey(armoredKey)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// AssertKey checks that the value is a key. It accepts any so it can guard
// loosely-typed boundaries: nil, a wrong concrete type, or a plain value all
// fail with a FormatError.
func AssertKey(v any) error {
	key, ok := v.(*crypto.Key)
	if !ok || key == nil {
		return newFormatError(localize("The key should be a valid openpgp key."))
	}
	return nil
}

// AssertKeys checks every element in index order, failing fast with the
// error of the first non-conforming element.
func AssertKeys[T any](keys []T) error {
	for _, key := range keys {
		if err := AssertKey(key); err != nil {
			return err
		}
	}
	return nil
}

// AssertPublicKey checks that the value is a key that is not currently
// private. A key object capable of representing a private key passes as long
// as it does not actually carry one.
func AssertPublicKey(v any) error {
	if err := AssertKey(v); err != nil {
		return err
	}
	if v.(*crypto.Key).IsPrivate() {
		return newFormatError(localize("The key should be public."))
	}
	return nil
}

// AssertPublicKeys checks every element in index order, failing fast.
func AssertPublicKeys[T any](keys []T) error {
	for _, key := range keys {
		if err := AssertPublicKey(key); err != nil {
			return err
		}
	}
	return nil
}

// AssertPrivateKey checks that the value is a private key. The role flag and
// the presence of private key material are both checked, so an object with an
// inconsistent internal role flag fails.
func AssertPrivateKey(v any) error {
	if err := AssertKey(v); err != nil {
		return err
	}
	key := v.(*crypto.Key)
	if !key.IsPrivate() {
		return newFormatError(localize("The key should be private."))
	}
	entity := key.GetEntity()
	if entity == nil || entity.PrivateKey == nil {
		return newFormatError(localize("The key should be private."))
	}
	return nil
}

// AssertPrivateKeys checks every element in index order, failing fast.
func AssertPrivateKeys[T any](keys []T) error {
	for _, key := range keys {
		if err := AssertPrivateKey(key); err != nil {
			return err
		}
	}
	return nil
}

// AssertDecryptedPrivateKey checks that the value is a private key whose
// material is directly usable.
func AssertDecryptedPrivateKey(v any) error {
	if err := AssertPrivateKey(v); err != nil {
		return err
	}
	unlocked, err := v.(*crypto.Key).IsUnlocked()
	if err != nil {
		return wrapFormatError(localize("The private key should be decrypted."), err)
	}
	if !unlocked {
		return newFormatError(localize("The private key should be decrypted."))
	}
	return nil
}

// AssertDecryptedPrivateKeys checks every element in index order, failing
// fast.
func AssertDecryptedPrivateKeys[T any](keys []T) error {
	for _, key := range keys {
		if err := AssertDecryptedPrivateKey(key); err != nil {
			return err
		}
	}
	return nil
}

// AssertEncryptedPrivateKey checks that the value is a private key still
// protected by a passphrase.
func AssertEncryptedPrivateKey(v any) error {
	if err := AssertPrivateKey(v); err != nil {
		return err
	}
	locked, err := v.(*crypto.Key).IsLocked()
	if err != nil {
		return wrapFormatError(localize("The private key should be encrypted."), err)
	}
	if !locked {
		return newFormatError(localize("The private key should be encrypted."))
	}
	return nil
}

// AssertEncryptedPrivateKeys checks every element in index order, failing
// fast.
func AssertEncryptedPrivateKeys[T any](keys []T) error {
	for _, key := range keys {
		if err := AssertEncryptedPrivateKey(key); err != nil {
			return err
		}
	}
	return nil
}
