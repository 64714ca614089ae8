package assertion

import (
	"github.com/ProtonMail/gopenpgp/v2/crypto"

	"github.com/funaisokenhd/passbolt-browser-extension/internal/pgpspec"
)

// NewMessage builds a message whose payload is the given text. Construction
// cannot fail: no attacker-controlled binary structure is parsed, the text
// simply becomes the literal payload.
func NewMessage(text string) *pgpspec.Message {
	return pgpspec.NewLiteralMessage(text)
}

// NewClearMessage builds a cleartext message from a plaintext and its
// detached signature. Construction cannot fail.
func NewClearMessage(text string, signature []byte) *crypto.ClearTextMessage {
	return crypto.NewClearTextMessage([]byte(text), signature)
}

// ReadMessage parses an armored encrypted message and enumerates its
// session-key-encryption packets. Parse failures are normalized into one
// stable FormatError with the library's error as cause.
func ReadMessage(armoredMessage string) (*pgpspec.Message, error) {
	if armoredMessage == "" {
		return nil, newFormatError(localize("The message should be a valid armored message string."))
	}
	msg, err := crypto.NewPGPMessageFromArmored(armoredMessage)
	if err != nil {
		return nil, wrapFormatError(localize("The message should be a valid openpgp message."), err)
	}
	return pgpspec.NewEncryptedMessage(msg), nil
}

// ReadClearMessage parses an armored cleartext (signed, not encrypted)
// message.
func ReadClearMessage(armoredMessage string) (*crypto.ClearTextMessage, error) {
	if armoredMessage == "" {
		return nil, newFormatError(localize("The message should be a valid armored message string."))
	}
	msg, err := crypto.NewClearTextMessageFromArmored(armoredMessage)
	if err != nil {
		return nil, wrapFormatError(localize("The message should be a valid openpgp cleartext message."), err)
	}
	return msg, nil
}

// AssertMessage checks that the value is a message container, as opposed to a
// cleartext message or raw key material.
func AssertMessage(v any) error {
	msg, ok := v.(*pgpspec.Message)
	if !ok || msg == nil {
		return newFormatError(localize("The message should be a valid openpgp message."))
	}
	return nil
}

// AssertDecryptedMessage checks that the value is a message carrying at least
// one session-key-encryption packet whose session key has been recovered.
func AssertDecryptedMessage(v any) error {
	if err := AssertMessage(v); err != nil {
		return err
	}
	packets := v.(*pgpspec.Message).SessionKeyPackets()
	if len(packets) == 0 {
		return newFormatError(localize("The message should contain at least one session key packet."))
	}
	if packets[0].Encrypted {
		return newFormatError(localize("The message should be decrypted."))
	}
	return nil
}

// AssertClearMessage checks that the value is a cleartext message.
func AssertClearMessage(v any) error {
	msg, ok := v.(*crypto.ClearTextMessage)
	if !ok || msg == nil {
		return newFormatError(localize("The message should be a valid openpgp cleartext message."))
	}
	return nil
}
