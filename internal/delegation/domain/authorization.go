package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuthorizeInput carries the raw artifacts of one authorization attempt.
// Commitment is the public input the proof is claimed to attest to.
type AuthorizeInput struct {
	Proof           []byte
	VerificationKey []byte
	Commitment      string
}

// AuthorizedAction is the terminal Authorized state of the gate. It is the only
// value that allows a dispatcher to run.
type AuthorizedAction struct {
	AttemptID    uuid.UUID
	Commitment   Commitment
	Record       *DelegationRecord
	AuthorizedAt time.Time
}

// ActionPayload holds action parameters supplied by the caller (e.g. channel and message).
type ActionPayload map[string]string

// ActionOutcome describes a completed dispatch.
type ActionOutcome struct {
	Action       Action
	Detail       string
	DispatchedAt time.Time
}

// ExecuteInput authorizes and then dispatches a single action.
type ExecuteInput struct {
	Authorize AuthorizeInput
	Payload   ActionPayload
}

// ExecuteOutput is returned when both authorization and dispatch succeeded.
type ExecuteOutput struct {
	Authorization *AuthorizedAction
	Outcome       *ActionOutcome
}
