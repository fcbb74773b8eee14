// Package service provides admin token generation and verification.
package service

// TokenService defines operations for admin token generation and validation.
// Implementations must use cryptographically secure random generation and a
// password hashing algorithm for the stored form.
type TokenService interface {
	// GenerateToken creates a new random admin token.
	// Returns both the plain token (handed to the operator once) and the hash
	// (placed in ADMIN_TOKEN_HASH).
	GenerateToken() (plainToken string, tokenHash string, err error)

	// CompareToken reports whether the plain token matches the stored hash.
	CompareToken(plainToken string, tokenHash string) bool
}
