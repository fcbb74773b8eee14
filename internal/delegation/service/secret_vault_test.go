package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob/memblob"
	"gocloud.dev/secrets/localsecrets"

	"github.com/allisson/zkgate/internal/delegation/domain"
)

// generateLocalSecretsURI generates a base64key:// URI for testing.
func generateLocalSecretsURI(t *testing.T) string {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return "base64key://" + base64.URLEncoding.EncodeToString(key)
}

func newTestCommitment(t *testing.T, secret string) domain.Commitment {
	t.Helper()
	c, err := NewCommitmentService().Commit(domain.SecretCredential(secret))
	require.NoError(t, err)
	return c
}

func TestSecretVault_SaveLoad(t *testing.T) {
	ctx := context.Background()

	key, err := localsecrets.NewRandomKey()
	require.NoError(t, err)
	bucket := memblob.OpenBucket(nil)
	vault := NewSecretVault(bucket, localsecrets.NewKeeper(key))
	defer func() {
		assert.NoError(t, vault.Close())
	}()

	commitment := newTestCommitment(t, "12345")

	t.Run("Error_NotFound", func(t *testing.T) {
		_, err := vault.Load(ctx, commitment)
		assert.ErrorIs(t, err, domain.ErrSecretNotFound)
	})

	t.Run("Success", func(t *testing.T) {
		require.NoError(t, vault.Save(ctx, commitment, domain.SecretCredential("12345")))

		secret, err := vault.Load(ctx, commitment)
		require.NoError(t, err)
		assert.Equal(t, domain.SecretCredential("12345"), secret)
	})

	t.Run("StoredEncrypted", func(t *testing.T) {
		raw, err := bucket.ReadAll(ctx, secretKey(commitment))
		require.NoError(t, err)
		assert.NotContains(t, string(raw), "12345")
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, vault.Save(ctx, commitment, domain.SecretCredential("67890")))

		secret, err := vault.Load(ctx, commitment)
		require.NoError(t, err)
		assert.Equal(t, domain.SecretCredential("67890"), secret)
	})
}

func TestOpenSecretVault(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_FileBucket", func(t *testing.T) {
		bucketURL := "file://" + t.TempDir()

		vault, err := OpenSecretVault(ctx, bucketURL, generateLocalSecretsURI(t))
		require.NoError(t, err)
		defer func() {
			assert.NoError(t, vault.Close())
		}()

		commitment := newTestCommitment(t, "file-secret")
		require.NoError(t, vault.Save(ctx, commitment, domain.SecretCredential("file-secret")))

		secret, err := vault.Load(ctx, commitment)
		require.NoError(t, err)
		assert.Equal(t, domain.SecretCredential("file-secret"), secret)
	})

	t.Run("Error_MissingKeeper", func(t *testing.T) {
		vault, err := OpenSecretVault(ctx, "mem://", "")
		assert.Error(t, err)
		assert.Nil(t, vault)
	})

	t.Run("Error_InvalidKeeper", func(t *testing.T) {
		vault, err := OpenSecretVault(ctx, "mem://", "invalid://uri")
		assert.Error(t, err)
		assert.Nil(t, vault)
		assert.Contains(t, err.Error(), "failed to open secret keeper")
	})

	t.Run("Error_InvalidBucket", func(t *testing.T) {
		vault, err := OpenSecretVault(ctx, "invalid://bucket", generateLocalSecretsURI(t))
		assert.Error(t, err)
		assert.Nil(t, vault)
		assert.Contains(t, err.Error(), "failed to open secret bucket")
	})
}

func TestArtifactStore(t *testing.T) {
	ctx := context.Background()

	store, err := OpenArtifactStore(ctx, "mem://")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, store.Close())
	}()

	commitment := newTestCommitment(t, "12345")
	key := ArtifactKey(commitment, ProofArtifactName)
	assert.Equal(t, commitment.String()+"/proof.json", key)

	t.Run("Error_NotFound", func(t *testing.T) {
		_, err := store.Get(ctx, key)
		assert.ErrorIs(t, err, domain.ErrArtifactNotFound)
	})

	t.Run("Success", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, key, []byte(`{"scheme":"g16"}`)))

		data, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, `{"scheme":"g16"}`, string(data))
	})

	t.Run("Error_InvalidURL", func(t *testing.T) {
		_, err := OpenArtifactStore(ctx, "invalid://bucket")
		assert.Error(t, err)
	})
}
