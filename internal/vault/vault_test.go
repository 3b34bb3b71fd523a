package vault

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testEncryptionKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"
	testHashKey       = "test-hash-key"
)

func newTestVault(t *testing.T) *Vault {
	t.Helper()
	v, err := New(testEncryptionKey, testHashKey)
	require.NoError(t, err)
	return v
}

func TestNewRejectsBadKeys(t *testing.T) {
	_, err := New("not-hex", testHashKey)
	assert.Error(t, err)

	_, err = New("deadbeef", testHashKey)
	assert.Error(t, err) // 4 bytes, not 32
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	v := newTestVault(t)

	enc, err := v.Encrypt("9001010001088")
	require.NoError(t, err)
	assert.NotEmpty(t, enc.Ciphertext)
	assert.Len(t, enc.IV, gcmNonceSize*2)
	assert.Len(t, enc.AuthTag, gcmTagSize*2)

	plain, err := v.Decrypt(enc)
	require.NoError(t, err)
	assert.Equal(t, "9001010001088", plain)
}

func TestEncryptUsesFreshNonce(t *testing.T) {
	v := newTestVault(t)

	a, err := v.Encrypt("9001010001088")
	require.NoError(t, err)
	b, err := v.Encrypt("9001010001088")
	require.NoError(t, err)

	assert.NotEqual(t, a.IV, b.IV)
	assert.NotEqual(t, a.Ciphertext, b.Ciphertext)
}

func TestDecryptRejectsTamperedValue(t *testing.T) {
	v := newTestVault(t)

	enc, err := v.Encrypt("9001010001088")
	require.NoError(t, err)

	tampered := *enc
	tampered.AuthTag = strings.Repeat("00", gcmTagSize)
	_, err = v.Decrypt(&tampered)
	assert.Error(t, err)
}

func TestHashIsDeterministic(t *testing.T) {
	v := newTestVault(t)

	assert.Equal(t, v.Hash("9001010001088"), v.Hash("9001010001088"))
	assert.NotEqual(t, v.Hash("9001010001088"), v.Hash("9001015000184"))

	other, err := New(testEncryptionKey, "another-hash-key")
	require.NoError(t, err)
	assert.NotEqual(t, v.Hash("9001010001088"), other.Hash("9001010001088"))
}

func TestMask(t *testing.T) {
	assert.Equal(t, "90*********88", Mask("9001010001088"))
	assert.Equal(t, "ab*de", Mask("abcde"))
	assert.Equal(t, "****", Mask("abcd"))
	assert.Equal(t, "", Mask(""))
}
