package domain

import (
	apperrors "github.com/allisson/zkgate/internal/errors"
)

// Delegation errors.
var (
	// ErrRecordNotFound indicates no delegation record exists for a commitment.
	ErrRecordNotFound = apperrors.Wrap(apperrors.ErrNotFound, "delegation record not found")

	// ErrSecretNotFound indicates no secret is held for a commitment in the vault.
	ErrSecretNotFound = apperrors.Wrap(apperrors.ErrNotFound, "secret not found")

	// ErrArtifactNotFound indicates a proof or key artifact is absent from the artifact store.
	ErrArtifactNotFound = apperrors.Wrap(apperrors.ErrNotFound, "artifact not found")

	// ErrInvalidCommitment indicates a commitment that is not a hex or decimal BN254 field element.
	ErrInvalidCommitment = apperrors.Wrap(apperrors.ErrInvalidInput, "invalid commitment")

	// ErrInvalidAction indicates an action outside the closed set.
	ErrInvalidAction = apperrors.Wrap(apperrors.ErrInvalidInput, "unsupported action")

	// ErrInvalidRecord indicates a delegation record failed validation.
	ErrInvalidRecord = apperrors.Wrap(apperrors.ErrInvalidInput, "invalid delegation record")

	// ErrEmptySecret indicates an attempt to commit to an empty secret.
	ErrEmptySecret = apperrors.Wrap(apperrors.ErrInvalidInput, "secret must not be empty")

	// ErrSecretOutOfField indicates a secret that does not fit the circuit's scalar field.
	ErrSecretOutOfField = apperrors.Wrap(apperrors.ErrInvalidInput, "secret exceeds the scalar field")

	// ErrArtifactMissing indicates an empty proof or verification key.
	ErrArtifactMissing = apperrors.Wrap(apperrors.ErrInvalidInput, "artifact missing")

	// ErrArtifactMalformed indicates a proof or verification key that cannot be decoded.
	ErrArtifactMalformed = apperrors.Wrap(apperrors.ErrInvalidInput, "artifact malformed")

	// ErrStoreWrite indicates the credential store did not durably complete a write.
	ErrStoreWrite = apperrors.Wrap(apperrors.ErrUnavailable, "credential store write failed")

	// ErrStoreRead indicates the credential store could not be read.
	ErrStoreRead = apperrors.Wrap(apperrors.ErrUnavailable, "credential store read failed")

	// ErrProofConsumed indicates a proof fingerprint was already recorded.
	ErrProofConsumed = apperrors.Wrap(apperrors.ErrConflict, "proof already consumed")
)

// DenialError is returned by the authorization gate for every Denied decision.
// It unwraps to apperrors.ErrForbidden so it is never confused with dispatch failures.
type DenialError struct {
	Reason DenialReason
}

// NewDenialError creates a DenialError for the given reason.
func NewDenialError(reason DenialReason) *DenialError {
	return &DenialError{Reason: reason}
}

func (e *DenialError) Error() string {
	return "authorization denied: " + string(e.Reason)
}

// Code returns the reason code reported to callers.
func (e *DenialError) Code() string {
	return string(e.Reason)
}

func (e *DenialError) Unwrap() error {
	return apperrors.ErrForbidden
}

// DenialReasonOf extracts the denial reason carried by err, if any.
func DenialReasonOf(err error) (DenialReason, bool) {
	var denial *DenialError
	if apperrors.As(err, &denial) {
		return denial.Reason, true
	}
	return "", false
}
