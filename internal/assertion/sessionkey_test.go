package assertion

import (
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/ProtonMail/gopenpgp/v2/crypto"
	"github.com/stretchr/testify/require"
)

const testSessionKeyHex = "901D6ED579AFF935F9F157A5198BCE48B50AD87345DEADBA06F42C5D018C78CC"

func TestReadSessionKey(t *testing.T) {
	t.Run("aes256 token", func(t *testing.T) {
		sk, err := ReadSessionKey("9:" + testSessionKeyHex)
		require.NoError(t, err)
		require.Equal(t, "aes256", sk.Algo)
		require.Len(t, sk.Key, 32)
		want, _ := hex.DecodeString(testSessionKeyHex)
		require.Equal(t, want, sk.Key)
	})

	t.Run("hex payload is case-insensitive", func(t *testing.T) {
		sk, err := ReadSessionKey("9:" + strings.ToLower(testSessionKeyHex))
		require.NoError(t, err)
		want, _ := hex.DecodeString(testSessionKeyHex)
		require.Equal(t, want, sk.Key)
	})

	t.Run("other recognized ciphers parse", func(t *testing.T) {
		for id, algo := range map[string]string{
			"2": "tripledes",
			"3": "cast5",
			"7": "aes128",
			"8": "aes192",
		} {
			sk, err := ReadSessionKey(id + ":" + testSessionKeyHex)
			require.NoError(t, err, "cipher id %s", id)
			require.Equal(t, algo, sk.Algo)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := ReadSessionKey("")
		var formatErr *FormatError
		require.ErrorAs(t, err, &formatErr)
		require.Equal(t, "The session key should be a non-empty string.", err.Error())
	})

	t.Run("grammar violations", func(t *testing.T) {
		tests := []struct {
			name  string
			input string
		}{
			{"missing colon", "9" + testSessionKeyHex},
			{"three digit algorithm", "123:" + testSessionKeyHex},
			{"no algorithm", ":" + testSessionKeyHex},
			{"63 hex characters", "9:" + testSessionKeyHex[:63]},
			{"65 hex characters", "9:" + testSessionKeyHex + "A"},
			{"non-hex payload", "9:" + strings.Repeat("g", 64)},
			{"leading whitespace", " 9:" + testSessionKeyHex},
			{"trailing whitespace", "9:" + testSessionKeyHex + " "},
			{"negative algorithm", "-9:" + testSessionKeyHex},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				_, err := ReadSessionKey(tc.input)
				var formatErr *FormatError
				require.ErrorAs(t, err, &formatErr)
				require.Equal(t, "The session key should match the expected format.", err.Error())
			})
		}
	})

	t.Run("unrecognized cipher id", func(t *testing.T) {
		_, err := ReadSessionKey("1:" + testSessionKeyHex)
		var formatErr *FormatError
		require.ErrorAs(t, err, &formatErr)
		require.Equal(t, "The session key algorithm is not supported.", err.Error())
		require.NotNil(t, errors.Unwrap(err))
	})
}

func TestAssertSessionKey(t *testing.T) {
	token, _ := hex.DecodeString(testSessionKeyHex)

	t.Run("aes256 with 32 byte data", func(t *testing.T) {
		sk := crypto.NewSessionKeyFromToken(token, "aes256")
		require.NoError(t, AssertSessionKey(sk))
	})

	t.Run("parsed key passes", func(t *testing.T) {
		sk, err := ReadSessionKey("9:" + testSessionKeyHex)
		require.NoError(t, err)
		require.NoError(t, AssertSessionKey(sk))
	})

	t.Run("not a session key", func(t *testing.T) {
		for _, v := range []any{nil, (*crypto.SessionKey)(nil), "9:" + testSessionKeyHex, 9} {
			err := AssertSessionKey(v)
			var formatErr *FormatError
			require.ErrorAs(t, err, &formatErr)
			require.Equal(t, "The session key should be a valid openpgp session key.", err.Error())
		}
	})

	t.Run("wrong data length", func(t *testing.T) {
		sk := crypto.NewSessionKeyFromToken(token[:16], "aes256")
		err := AssertSessionKey(sk)
		require.Error(t, err)
		require.Equal(t, "The session key data should be exactly 32 bytes.", err.Error())
	})

	t.Run("disallowed algorithm", func(t *testing.T) {
		// aes128 is recognized by the library but rejected by policy.
		sk := crypto.NewSessionKeyFromToken(token, "aes128")
		err := AssertSessionKey(sk)
		require.Error(t, err)
		require.Equal(t, "The session key algorithm should be aes256.", err.Error())
	})
}

func TestAssertSessionKeys(t *testing.T) {
	token, _ := hex.DecodeString(testSessionKeyHex)
	valid := crypto.NewSessionKeyFromToken(token, "aes256")
	short := crypto.NewSessionKeyFromToken(token[:16], "aes256")

	require.NoError(t, AssertSessionKeys([]*crypto.SessionKey{valid, valid}))

	got := AssertSessionKeys([]*crypto.SessionKey{valid, short, valid})
	want := AssertSessionKey(short)
	require.Error(t, got)
	require.Equal(t, want.Error(), got.Error())
}
