package service

import (
	"context"
	"fmt"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	"github.com/allisson/zkgate/internal/delegation/domain"
)

// Artifact object names.
const (
	ProofArtifactName           = "proof.json"
	VerificationKeyArtifactName = "verification.key"
)

// ArtifactKey returns the object key of an artifact produced for a commitment.
func ArtifactKey(commitment domain.Commitment, name string) string {
	return commitment.String() + "/" + name
}

type blobArtifactStore struct {
	bucket *blob.Bucket
}

// NewArtifactStore creates an ArtifactStore over an opened bucket.
func NewArtifactStore(bucket *blob.Bucket) ArtifactStore {
	return &blobArtifactStore{bucket: bucket}
}

// OpenArtifactStore opens the bucket at bucketURL (file:// or mem://).
func OpenArtifactStore(ctx context.Context, bucketURL string) (ArtifactStore, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open artifact bucket: %w", err)
	}
	return NewArtifactStore(bucket), nil
}

func (s *blobArtifactStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.bucket.ReadAll(ctx, key)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, domain.ErrArtifactNotFound
		}
		return nil, fmt.Errorf("failed to read artifact %s: %w", key, err)
	}
	return data, nil
}

func (s *blobArtifactStore) Put(ctx context.Context, key string, data []byte) error {
	opts := &blob.WriterOptions{ContentType: "application/json"}
	if err := s.bucket.WriteAll(ctx, key, data, opts); err != nil {
		return fmt.Errorf("failed to write artifact %s: %w", key, err)
	}
	return nil
}

func (s *blobArtifactStore) Close() error {
	return s.bucket.Close()
}
