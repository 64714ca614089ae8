package pgpspec

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ProtonMail/go-crypto/openpgp/packet"
	"github.com/ProtonMail/gopenpgp/v2/constants"
	"github.com/ProtonMail/gopenpgp/v2/crypto"
)

const (
	// SessionKeyAlgorithm is the only symmetric cipher accepted for session
	// keys. Other ciphers are rejected by policy even when the underlying
	// library supports them.
	SessionKeyAlgorithm = constants.AES256

	// SessionKeySize is the raw session-key length in bytes for AES-256.
	SessionKeySize = 32
)

// ErrNoSessionKeyPacket is returned when a session key is bound to a message
// that carries no session-key-encryption packet.
var ErrNoSessionKeyPacket = errors.New("message has no session key packet")

// cipherNames maps OpenPGP symmetric cipher ids to the algorithm identifiers
// the gopenpgp session-key API understands.
var cipherNames = map[packet.CipherFunction]string{
	packet.Cipher3DES:   constants.TripleDES,
	packet.CipherCAST5:  constants.CAST5,
	packet.CipherAES128: constants.AES128,
	packet.CipherAES192: constants.AES192,
	packet.CipherAES256: constants.AES256,
}

// CipherAlgorithmName resolves an OpenPGP symmetric cipher id to its
// gopenpgp algorithm identifier.
func CipherAlgorithmName(id packet.CipherFunction) (string, error) {
	name, ok := cipherNames[id]
	if !ok {
		return "", fmt.Errorf("unsupported symmetric cipher id %d", int(id))
	}
	return name, nil
}

// SessionKeyPacket describes one session-key-encryption packet of a message.
// Encrypted is cleared once the packet's session key has been recovered by
// the cryptography library.
type SessionKeyPacket struct {
	Encrypted  bool
	SessionKey *crypto.SessionKey
}

// Message is an encrypted payload container. It wraps the library's message
// object and tracks the decryption state of its session-key packets, which
// gopenpgp does not model on its own. A Message holds either a literal
// plaintext payload (built locally, to be encrypted later) or a parsed
// encrypted body.
type Message struct {
	plain     *crypto.PlainMessage
	encrypted *crypto.PGPMessage
	packets   []SessionKeyPacket
}

// NewLiteralMessage builds a message whose payload is the given text. It has
// no session-key packets until the message is encrypted.
func NewLiteralMessage(text string) *Message {
	return &Message{plain: crypto.NewPlainMessageFromString(text)}
}

// NewEncryptedMessage wraps a parsed encrypted message and enumerates its
// session-key-encryption packets. All packets start out encrypted.
func NewEncryptedMessage(msg *crypto.PGPMessage) *Message {
	return &Message{encrypted: msg, packets: sessionKeyPackets(msg)}
}

// IsEncrypted reports whether the message carries an encrypted body.
func (m *Message) IsEncrypted() bool {
	return m.encrypted != nil
}

// Plain returns the literal payload, or nil for an encrypted message.
func (m *Message) Plain() *crypto.PlainMessage {
	return m.plain
}

// Encrypted returns the underlying encrypted message, or nil for a literal
// message.
func (m *Message) Encrypted() *crypto.PGPMessage {
	return m.encrypted
}

// SessionKeyPackets returns the message's session-key-encryption packets in
// wire order.
func (m *Message) SessionKeyPackets() []SessionKeyPacket {
	return m.packets
}

// BindSessionKey records a session key recovered by the cryptography library
// against the message's first session-key packet, clearing its encrypted
// flag.
func (m *Message) BindSessionKey(sk *crypto.SessionKey) error {
	if len(m.packets) == 0 {
		return ErrNoSessionKeyPacket
	}
	m.packets[0].SessionKey = sk
	m.packets[0].Encrypted = false
	return nil
}

// sessionKeyPackets walks the leading packets of the message body and
// collects the session-key-encryption packets. The run ends at the first
// packet of any other kind.
func sessionKeyPackets(msg *crypto.PGPMessage) []SessionKeyPacket {
	reader := packet.NewReader(bytes.NewReader(msg.GetBinary()))
	var out []SessionKeyPacket
	for {
		p, err := reader.Next()
		if err != nil {
			return out
		}
		switch p.(type) {
		case *packet.EncryptedKey, *packet.SymmetricKeyEncrypted:
			out = append(out, SessionKeyPacket{Encrypted: true})
		default:
			return out
		}
	}
}
