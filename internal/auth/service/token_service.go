package service

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/allisson/go-pwdhash"

	apperrors "github.com/allisson/zkgate/internal/errors"
)

// adminTokenPrefix marks admin tokens so they are easy to spot in leaked logs and configs.
const adminTokenPrefix = "zkg_"

// adminTokenBytes is the random part of an admin token.
const adminTokenBytes = 32

// tokenService hashes admin tokens with Argon2id.
type tokenService struct {
	hasher *pwdhash.PasswordHasher
}

// GenerateToken returns "zkg_" followed by 32 random bytes in unpadded base64url,
// and the Argon2id PHC string of that token.
func (t *tokenService) GenerateToken() (plainToken string, tokenHash string, err error) {
	randomBytes := make([]byte, adminTokenBytes)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", "", apperrors.Wrap(err, "failed to generate random token")
	}

	plainToken = adminTokenPrefix + base64.RawURLEncoding.EncodeToString(randomBytes)

	tokenHash, err = t.hasher.Hash([]byte(plainToken))
	if err != nil {
		return "", "", apperrors.Wrap(err, "failed to hash token")
	}

	return plainToken, tokenHash, nil
}

// CompareToken verifies plainToken against the PHC hash. Malformed hashes never match.
func (t *tokenService) CompareToken(plainToken string, tokenHash string) bool {
	if plainToken == "" || tokenHash == "" {
		return false
	}
	ok, err := t.hasher.Verify([]byte(plainToken), tokenHash)
	if err != nil {
		return false
	}
	return ok
}

// NewTokenService creates a new TokenService using the Moderate Argon2id policy.
func NewTokenService() TokenService {
	hasher, err := pwdhash.New(
		pwdhash.WithPolicy(pwdhash.PolicyModerate),
	)
	if err != nil {
		panic(err)
	}

	return &tokenService{
		hasher: hasher,
	}
}
