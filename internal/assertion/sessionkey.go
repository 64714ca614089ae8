package assertion

import (
	"encoding/hex"
	"regexp"
	"strconv"

	"github.com/ProtonMail/go-crypto/openpgp/packet"
	"github.com/ProtonMail/gopenpgp/v2/crypto"

	"github.com/funaisokenhd/passbolt-browser-extension/internal/pgpspec"
)

// sessionKeyFormat is the serialized session-key grammar:
// <algorithm id, 1-2 decimal digits>:<raw key, exactly 64 hex characters>.
// The hex payload is case-insensitive and decodes to exactly 32 bytes.
var sessionKeyFormat = regexp.MustCompile(`^([0-9]{1,2}):([0-9a-fA-F]{64})$`)

// ReadSessionKey parses a serialized session key. A string that misses the
// grammar fails with a FormatError; a string that matches but names a cipher
// the cryptography library does not recognize fails with the library's error
// as cause.
func ReadSessionKey(s string) (*crypto.SessionKey, error) {
	if s == "" {
		return nil, newFormatError(localize("The session key should be a non-empty string."))
	}
	groups := sessionKeyFormat.FindStringSubmatch(s)
	if groups == nil {
		return nil, newFormatError(localize("The session key should match the expected format."))
	}
	id, err := strconv.Atoi(groups[1])
	if err != nil {
		return nil, wrapFormatError(localize("The session key should match the expected format."), err)
	}
	algo, err := pgpspec.CipherAlgorithmName(packet.CipherFunction(id))
	if err != nil {
		return nil, wrapFormatError(localize("The session key algorithm is not supported."), err)
	}
	token, err := hex.DecodeString(groups[2])
	if err != nil {
		// Unreachable given the grammar, kept as a guard.
		return nil, wrapFormatError(localize("The session key should match the expected format."), err)
	}
	return crypto.NewSessionKeyFromToken(token, algo), nil
}

// AssertSessionKeys checks every element with AssertSessionKey and returns
// the first failure.
func AssertSessionKeys[T any](keys []T) error {
	for _, key := range keys {
		if err := AssertSessionKey(key); err != nil {
			return err
		}
	}
	return nil
}

// AssertSessionKey checks that the value is a session key whose data is
// exactly 32 bytes and whose algorithm is the single allow-listed identifier.
// Any other algorithm fails even if the underlying library supports it.
func AssertSessionKey(v any) error {
	sk, ok := v.(*crypto.SessionKey)
	if !ok || sk == nil {
		return newFormatError(localize("The session key should be a valid openpgp session key."))
	}
	if len(sk.Key) != pgpspec.SessionKeySize {
		return newFormatError(localize("The session key data should be exactly 32 bytes."))
	}
	if sk.Algo != pgpspec.SessionKeyAlgorithm {
		return newFormatError(localize("The session key algorithm should be aes256."))
	}
	return nil
}
