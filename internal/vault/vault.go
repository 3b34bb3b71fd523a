// Package vault encrypts, hashes and masks identity documents. It is pure and
// stateless given its keys: AES-256-GCM for storage, HMAC-SHA256 for the
// searchable digest, and a fixed-width mask for display.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	gcmNonceSize = 12
	gcmTagSize   = 16

	// maskReveal is the number of characters left visible at each end of a
	// masked document number, regardless of its length.
	maskReveal = 2
)

// EncryptedValue is the persisted layout of an encrypted field: three
// separate hex-encoded columns.
type EncryptedValue struct {
	Ciphertext string `db:"ciphertext" json:"ciphertext"`
	IV         string `db:"iv" json:"iv"`
	AuthTag    string `db:"auth_tag" json:"auth_tag"`
}

// Vault performs symmetric encryption and deterministic hashing of PII.
type Vault struct {
	aead    cipher.AEAD
	hashKey []byte
}

// New builds a Vault from a hex-encoded 32-byte encryption key and a hash key.
func New(encryptionKeyHex, hashKey string) (*Vault, error) {
	key, err := hex.DecodeString(encryptionKeyHex)
	if err != nil {
		return nil, fmt.Errorf("encryption key is not valid hex: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("encryption key must be 32 bytes, got %d", len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return &Vault{aead: aead, hashKey: []byte(hashKey)}, nil
}

// Encrypt encrypts plaintext with a fresh random nonce.
func (v *Vault) Encrypt(plaintext string) (*EncryptedValue, error) {
	nonce := make([]byte, gcmNonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := v.aead.Seal(nil, nonce, []byte(plaintext), nil)
	ciphertext := sealed[:len(sealed)-gcmTagSize]
	authTag := sealed[len(sealed)-gcmTagSize:]

	return &EncryptedValue{
		Ciphertext: hex.EncodeToString(ciphertext),
		IV:         hex.EncodeToString(nonce),
		AuthTag:    hex.EncodeToString(authTag),
	}, nil
}

// Decrypt reverses Encrypt and authenticates the value.
func (v *Vault) Decrypt(enc *EncryptedValue) (string, error) {
	ciphertext, err := hex.DecodeString(enc.Ciphertext)
	if err != nil {
		return "", fmt.Errorf("invalid ciphertext encoding: %w", err)
	}
	nonce, err := hex.DecodeString(enc.IV)
	if err != nil {
		return "", fmt.Errorf("invalid iv encoding: %w", err)
	}
	authTag, err := hex.DecodeString(enc.AuthTag)
	if err != nil {
		return "", fmt.Errorf("invalid auth tag encoding: %w", err)
	}

	plaintext, err := v.aead.Open(nil, nonce, append(ciphertext, authTag...), nil)
	if err != nil {
		return "", fmt.Errorf("decryption failed: %w", err)
	}
	return string(plaintext), nil
}

// Hash produces a deterministic digest used for lookup without decryption.
func (v *Vault) Hash(plaintext string) string {
	mac := hmac.New(sha256.New, v.hashKey)
	mac.Write([]byte(plaintext))
	return hex.EncodeToString(mac.Sum(nil))
}

// Mask redacts the middle of a document number, revealing a fixed-width
// prefix and suffix.
func Mask(plaintext string) string {
	if len(plaintext) <= maskReveal*2 {
		return strings.Repeat("*", len(plaintext))
	}
	middle := strings.Repeat("*", len(plaintext)-maskReveal*2)
	return plaintext[:maskReveal] + middle + plaintext[len(plaintext)-maskReveal:]
}
