package dto

import (
	"encoding/base64"
	"time"

	"github.com/allisson/zkgate/internal/delegation/domain"
)

// RecordResponse represents a delegation record in API responses.
type RecordResponse struct {
	Commitment      string    `json:"commitment"`
	Action          string    `json:"action"`
	TokenIdentifier string    `json:"token_identifier"`
	IssuerIdentity  string    `json:"issuer_identity"`
	SubjectIdentity string    `json:"subject_identity"`
	TargetIdentity  string    `json:"target_identity"`
	CreatedAt       time.Time `json:"created_at,omitzero"`
	UpdatedAt       time.Time `json:"updated_at,omitzero"`
}

// IssueCredentialResponse is returned after issuance.
// SECURITY: Secret is only present for generated secrets and is never returned again.
type IssueCredentialResponse struct {
	Commitment string         `json:"commitment"`
	Secret     string         `json:"secret,omitempty"`
	Record     RecordResponse `json:"record"`
}

// AuthorizeResponse describes a granted authorization.
type AuthorizeResponse struct {
	AttemptID    string         `json:"attempt_id"`
	Commitment   string         `json:"commitment"`
	AuthorizedAt time.Time      `json:"authorized_at"`
	Record       RecordResponse `json:"record"`
}

// OutcomeResponse describes a completed dispatch.
type OutcomeResponse struct {
	Action       string    `json:"action"`
	Detail       string    `json:"detail"`
	DispatchedAt time.Time `json:"dispatched_at"`
}

// ExecuteResponse is returned when an action was authorized and dispatched.
type ExecuteResponse struct {
	Authorization AuthorizeResponse `json:"authorization"`
	Outcome       OutcomeResponse   `json:"outcome"`
}

// ProofResponse carries a generated proof artifact, base64-encoded.
type ProofResponse struct {
	Commitment string `json:"commitment"`
	Proof      string `json:"proof"`
}

// MapRecordToResponse converts a domain record to an API response.
func MapRecordToResponse(record *domain.DelegationRecord) RecordResponse {
	return RecordResponse{
		Commitment:      record.Commitment.String(),
		Action:          string(record.Action),
		TokenIdentifier: record.TokenIdentifier,
		IssuerIdentity:  record.IssuerIdentity,
		SubjectIdentity: record.SubjectIdentity,
		TargetIdentity:  record.TargetIdentity,
		CreatedAt:       record.CreatedAt,
		UpdatedAt:       record.UpdatedAt,
	}
}

// MapIssueOutputToResponse converts an issuance result to an API response.
func MapIssueOutputToResponse(output *domain.IssueCredentialOutput) IssueCredentialResponse {
	return IssueCredentialResponse{
		Commitment: output.Commitment.String(),
		Secret:     output.PlainSecret,
		Record:     MapRecordToResponse(output.Record),
	}
}

// MapAuthorizedToResponse converts a granted authorization to an API response.
func MapAuthorizedToResponse(authorized *domain.AuthorizedAction) AuthorizeResponse {
	return AuthorizeResponse{
		AttemptID:    authorized.AttemptID.String(),
		Commitment:   authorized.Commitment.String(),
		AuthorizedAt: authorized.AuthorizedAt,
		Record:       MapRecordToResponse(authorized.Record),
	}
}

// MapExecuteOutputToResponse converts an execution result to an API response.
func MapExecuteOutputToResponse(output *domain.ExecuteOutput) ExecuteResponse {
	return ExecuteResponse{
		Authorization: MapAuthorizedToResponse(output.Authorization),
		Outcome: OutcomeResponse{
			Action:       string(output.Outcome.Action),
			Detail:       output.Outcome.Detail,
			DispatchedAt: output.Outcome.DispatchedAt,
		},
	}
}

// MapProofToResponse converts a proof artifact to an API response.
func MapProofToResponse(commitment domain.Commitment, proof []byte) ProofResponse {
	return ProofResponse{
		Commitment: commitment.String(),
		Proof:      base64.StdEncoding.EncodeToString(proof),
	}
}
