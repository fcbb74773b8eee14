package service

import (
	"context"
	"fmt"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"
	"gocloud.dev/secrets"

	"github.com/allisson/zkgate/internal/delegation/domain"

	// Register blob drivers
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"

	// Register all KMS provider drivers
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

const secretKeyPrefix = "secrets/"

// blobSecretVault stores secrets encrypted by a secrets.Keeper in a blob bucket,
// one object per commitment.
type blobSecretVault struct {
	bucket *blob.Bucket
	keeper *secrets.Keeper
}

// NewSecretVault creates a SecretVault over an opened bucket and keeper.
// The vault takes ownership of both and closes them on Close.
func NewSecretVault(bucket *blob.Bucket, keeper *secrets.Keeper) SecretVault {
	return &blobSecretVault{bucket: bucket, keeper: keeper}
}

// OpenSecretVault opens the bucket and keeper from their URLs.
// Supported buckets: file://, mem://. Supported keepers: gcpkms://, awskms://,
// azurekeyvault://, hashivault://, base64key://
func OpenSecretVault(ctx context.Context, bucketURL, keeperURI string) (SecretVault, error) {
	if keeperURI == "" {
		return nil, fmt.Errorf("secret keeper uri is required")
	}

	keeper, err := secrets.OpenKeeper(ctx, keeperURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open secret keeper: %w", err)
	}

	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		_ = keeper.Close()
		return nil, fmt.Errorf("failed to open secret bucket: %w", err)
	}

	return NewSecretVault(bucket, keeper), nil
}

// Save encrypts and stores the secret under its commitment, replacing any previous value.
func (v *blobSecretVault) Save(
	ctx context.Context,
	commitment domain.Commitment,
	secret domain.SecretCredential,
) error {
	ciphertext, err := v.keeper.Encrypt(ctx, secret)
	if err != nil {
		return fmt.Errorf("failed to encrypt secret: %w", err)
	}

	opts := &blob.WriterOptions{ContentType: "application/octet-stream"}
	if err := v.bucket.WriteAll(ctx, secretKey(commitment), ciphertext, opts); err != nil {
		return fmt.Errorf("failed to write secret: %w", err)
	}
	return nil
}

// Load returns the secret held for a commitment, or domain.ErrSecretNotFound.
func (v *blobSecretVault) Load(ctx context.Context, commitment domain.Commitment) (domain.SecretCredential, error) {
	ciphertext, err := v.bucket.ReadAll(ctx, secretKey(commitment))
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, domain.ErrSecretNotFound
		}
		return nil, fmt.Errorf("failed to read secret: %w", err)
	}

	plaintext, err := v.keeper.Decrypt(ctx, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt secret: %w", err)
	}
	return domain.SecretCredential(plaintext), nil
}

// Close releases the bucket and keeper.
func (v *blobSecretVault) Close() error {
	bucketErr := v.bucket.Close()
	keeperErr := v.keeper.Close()
	if bucketErr != nil {
		return bucketErr
	}
	return keeperErr
}

func secretKey(commitment domain.Commitment) string {
	return secretKeyPrefix + commitment.String()
}
