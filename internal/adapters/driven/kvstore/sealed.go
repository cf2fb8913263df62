package kvstore

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/custodia-labs/audit-console/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.KVStore = (*SealedStore)(nil)

const (
	// sealVersion is the version byte of the sealed value format
	sealVersion = 0x01

	// nonceSize is the AES-GCM nonce size
	nonceSize = 12

	// keySize selects AES-256
	keySize = 32

	hkdfInfo = "audit-console session store v1"
)

var (
	// ErrEmptySecret is returned when no sealing secret is configured
	ErrEmptySecret = errors.New("sealing secret must not be empty")

	// ErrInvalidBlobSize is returned when a sealed value is too small
	ErrInvalidBlobSize = errors.New("sealed value is too small")

	// ErrUnsupportedVersion is returned for an unknown format version
	ErrUnsupportedVersion = errors.New("unsupported sealed value version")

	// ErrDecryptionFailed is returned on a wrong key or a tampered value
	ErrDecryptionFailed = errors.New("failed to open sealed value")
)

// SealedStore encrypts values with AES-256-GCM before handing them to the
// wrapped store. Format: base64url(version(1) || nonce(12) || ciphertext).
// The key name is bound as additional data, so a value copied under another
// key fails to open.
type SealedStore struct {
	inner driven.KVStore
	gcm   cipher.AEAD
}

// NewSealedStore derives the AES key from secret with HKDF-SHA256.
// salt scopes the key, typically the store namespace.
func NewSealedStore(inner driven.KVStore, secret []byte, salt string) (*SealedStore, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}

	key := make([]byte, keySize)
	kdf := hkdf.New(sha256.New, secret, []byte(salt), []byte(hkdfInfo))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create AES cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}

	return &SealedStore{inner: inner, gcm: gcm}, nil
}

func (s *SealedStore) Get(ctx context.Context, key string) (string, bool, error) {
	sealed, ok, err := s.inner.Get(ctx, key)
	if err != nil || !ok {
		return "", ok, err
	}
	value, err := s.open(key, sealed)
	if err != nil {
		return "", false, fmt.Errorf("open %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SealedStore) Set(ctx context.Context, key, value string) error {
	sealed, err := s.seal(key, value)
	if err != nil {
		return fmt.Errorf("seal %s: %w", key, err)
	}
	return s.inner.Set(ctx, key, sealed)
}

func (s *SealedStore) Remove(ctx context.Context, keys ...string) error {
	return s.inner.Remove(ctx, keys...)
}

func (s *SealedStore) seal(key, value string) (string, error) {
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	ciphertext := s.gcm.Seal(nil, nonce, []byte(value), []byte(key))

	blob := make([]byte, 1+nonceSize+len(ciphertext))
	blob[0] = sealVersion
	copy(blob[1:1+nonceSize], nonce)
	copy(blob[1+nonceSize:], ciphertext)

	return base64.RawURLEncoding.EncodeToString(blob), nil
}

func (s *SealedStore) open(key, sealed string) (string, error) {
	blob, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil {
		return "", ErrDecryptionFailed
	}

	if len(blob) < 1+nonceSize+s.gcm.Overhead() {
		return "", ErrInvalidBlobSize
	}
	if blob[0] != sealVersion {
		return "", fmt.Errorf("%w: got version %d", ErrUnsupportedVersion, blob[0])
	}

	plaintext, err := s.gcm.Open(nil, blob[1:1+nonceSize], blob[1+nonceSize:], []byte(key))
	if err != nil {
		return "", ErrDecryptionFailed
	}
	return string(plaintext), nil
}
