// Package domain defines the capability delegation model: commitments, delegation
// records, proof artifacts and the outcomes of the authorization gate.
package domain

import (
	"strings"

	apperrors "github.com/allisson/zkgate/internal/errors"
)

// Action names the single operation a delegation record permits.
type Action string

const (
	// ActionPostMessage allows posting one message to a messaging channel.
	ActionPostMessage Action = "post_message"
)

// legacyActionAliases maps names used by older credential documents onto the closed set.
var legacyActionAliases = map[string]Action{
	"slack_post": ActionPostMessage,
}

// ParseAction converts a textual action into the closed Action set.
func ParseAction(s string) (Action, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	if normalized == string(ActionPostMessage) {
		return ActionPostMessage, nil
	}
	if action, ok := legacyActionAliases[normalized]; ok {
		return action, nil
	}
	return "", apperrors.Wrap(ErrInvalidAction, s)
}

// IsValid reports whether the action belongs to the closed set.
func (a Action) IsValid() bool {
	return a == ActionPostMessage
}

// DenialReason is the code attached to a Denied decision.
type DenialReason string

const (
	// ReasonArtifactMissing means the proof or key was absent, or verification timed out.
	ReasonArtifactMissing DenialReason = "artifact_missing"
	// ReasonArtifactMalformed means the proof or key could not be decoded.
	ReasonArtifactMalformed DenialReason = "artifact_malformed"
	// ReasonProofInvalid means the verifier rejected the proof.
	ReasonProofInvalid DenialReason = "proof_invalid"
	// ReasonUnknownCommitment means the proof was valid but no delegation exists for it.
	ReasonUnknownCommitment DenialReason = "unknown_commitment"
	// ReasonProofReplayed means the proof was already consumed by an earlier authorization.
	ReasonProofReplayed DenialReason = "proof_replayed"
)

// State is a step of the authorization gate state machine.
type State string

const (
	StatePending    State = "pending"
	StateVerifying  State = "verifying"
	StateAuthorized State = "authorized"
	StateDenied     State = "denied"
)
