package kvstore

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/audit-console/internal/core/domain"
)

func newTestSealedStore(t *testing.T) (*MemoryStore, *SealedStore) {
	t.Helper()
	inner := NewMemoryStore()
	sealed, err := NewSealedStore(inner, []byte("correct horse battery staple"), "tenant-a")
	require.NoError(t, err)
	return inner, sealed
}

func TestSealedStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	inner, sealed := newTestSealedStore(t)

	require.NoError(t, sealed.Set(ctx, domain.KeyToken, "tok-secret"))

	raw, ok, err := inner.Get(ctx, domain.KeyToken)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotContains(t, raw, "tok-secret")

	blob, err := base64.RawURLEncoding.DecodeString(raw)
	require.NoError(t, err)
	assert.Equal(t, byte(sealVersion), blob[0])

	value, ok, err := sealed.Get(ctx, domain.KeyToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok-secret", value)
}

func TestSealedStore_MissingKey(t *testing.T) {
	_, sealed := newTestSealedStore(t)
	value, ok, err := sealed.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, value)
}

func TestSealedStore_Tampered(t *testing.T) {
	ctx := context.Background()
	inner, sealed := newTestSealedStore(t)

	require.NoError(t, sealed.Set(ctx, domain.KeyToken, "tok-secret"))
	raw, _, _ := inner.Get(ctx, domain.KeyToken)
	blob, err := base64.RawURLEncoding.DecodeString(raw)
	require.NoError(t, err)
	blob[len(blob)-1] ^= 0xff
	require.NoError(t, inner.Set(ctx, domain.KeyToken, base64.RawURLEncoding.EncodeToString(blob)))

	_, _, err = sealed.Get(ctx, domain.KeyToken)
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestSealedStore_ValueBoundToKey(t *testing.T) {
	ctx := context.Background()
	inner, sealed := newTestSealedStore(t)

	require.NoError(t, sealed.Set(ctx, domain.KeyToken, "tok-secret"))
	raw, _, _ := inner.Get(ctx, domain.KeyToken)
	require.NoError(t, inner.Set(ctx, domain.KeyPendingEmail, raw))

	_, _, err := sealed.Get(ctx, domain.KeyPendingEmail)
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestSealedStore_WrongSecret(t *testing.T) {
	ctx := context.Background()
	inner, sealed := newTestSealedStore(t)
	require.NoError(t, sealed.Set(ctx, domain.KeyToken, "tok-secret"))

	other, err := NewSealedStore(inner, []byte("another secret"), "tenant-a")
	require.NoError(t, err)
	_, _, err = other.Get(ctx, domain.KeyToken)
	assert.ErrorIs(t, err, ErrDecryptionFailed)

	// Same secret, different salt
	scoped, err := NewSealedStore(inner, []byte("correct horse battery staple"), "tenant-b")
	require.NoError(t, err)
	_, _, err = scoped.Get(ctx, domain.KeyToken)
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestSealedStore_MalformedBlobs(t *testing.T) {
	ctx := context.Background()
	inner, sealed := newTestSealedStore(t)

	require.NoError(t, inner.Set(ctx, "short", base64.RawURLEncoding.EncodeToString([]byte{sealVersion, 1, 2})))
	_, _, err := sealed.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrInvalidBlobSize)

	blob := make([]byte, 1+nonceSize+32)
	blob[0] = 0x09
	require.NoError(t, inner.Set(ctx, "future", base64.RawURLEncoding.EncodeToString(blob)))
	_, _, err = sealed.Get(ctx, "future")
	assert.ErrorIs(t, err, ErrUnsupportedVersion)

	require.NoError(t, inner.Set(ctx, "garbage", "***"))
	_, _, err = sealed.Get(ctx, "garbage")
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestSealedStore_EmptySecret(t *testing.T) {
	_, err := NewSealedStore(NewMemoryStore(), nil, "x")
	assert.ErrorIs(t, err, ErrEmptySecret)
}

func TestSealedStore_WithRepository(t *testing.T) {
	ctx := context.Background()
	_, sealed := newTestSealedStore(t)
	repo := NewRepository(sealed)

	require.NoError(t, repo.Save(ctx, testSession()))
	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.True(t, loaded.IsAuthenticated)
	assert.Equal(t, "tok-123", loaded.Token)

	require.NoError(t, repo.Clear(ctx))
	loaded, err = repo.Load(ctx)
	require.NoError(t, err)
	assert.False(t, loaded.IsAuthenticated)
}
