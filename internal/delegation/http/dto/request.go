// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"encoding/base64"

	validation "github.com/jellydator/validation"

	"github.com/allisson/zkgate/internal/delegation/domain"
	"github.com/allisson/zkgate/internal/dispatch"
	customValidation "github.com/allisson/zkgate/internal/validation"
)

// IssueCredentialRequest contains the parameters for issuing a delegation.
// Secret is optional; when omitted a secret is generated and returned once.
type IssueCredentialRequest struct {
	Secret          string `json:"secret,omitempty"`
	Action          string `json:"action"`
	TokenIdentifier string `json:"token_identifier"`
	IssuerIdentity  string `json:"issuer_identity"`
	SubjectIdentity string `json:"subject_identity"`
	TargetIdentity  string `json:"target_identity"`
}

// Validate checks if the issue credential request is valid.
func (r *IssueCredentialRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Action, validation.Required, customValidation.NotBlank),
		validation.Field(&r.TokenIdentifier, validation.Required, customValidation.NotBlank),
		validation.Field(&r.IssuerIdentity, validation.Required, customValidation.NotBlank),
		validation.Field(&r.SubjectIdentity, validation.Required, customValidation.NotBlank),
		validation.Field(&r.TargetIdentity, validation.Required, customValidation.NotBlank),
	)
}

// ToInput converts the request into the use case input.
func (r *IssueCredentialRequest) ToInput() (*domain.IssueCredentialInput, error) {
	action, err := domain.ParseAction(r.Action)
	if err != nil {
		return nil, err
	}
	var secret domain.SecretCredential
	if r.Secret != "" {
		secret = domain.SecretCredential(r.Secret)
	}
	return &domain.IssueCredentialInput{
		Secret:          secret,
		Action:          action,
		TokenIdentifier: r.TokenIdentifier,
		IssuerIdentity:  r.IssuerIdentity,
		SubjectIdentity: r.SubjectIdentity,
		TargetIdentity:  r.TargetIdentity,
	}, nil
}

// AuthorizeRequest carries the proof artifacts of one authorization attempt.
// Proof and VerificationKey are base64-encoded artifact files. Commitment may be
// omitted when the proof has a single public input.
type AuthorizeRequest struct {
	Proof           string `json:"proof"`
	VerificationKey string `json:"verification_key"`
	Commitment      string `json:"commitment,omitempty"`
}

// Validate checks the encoding of the request. Empty artifacts are not rejected here:
// the gate denies them with artifact_missing.
func (r *AuthorizeRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Proof, customValidation.Artifact(customValidation.MaxArtifactBytes)),
		validation.Field(&r.VerificationKey, customValidation.Artifact(customValidation.MaxArtifactBytes)),
		validation.Field(&r.Commitment, customValidation.Commitment),
	)
}

// ToInput decodes the artifacts into the gate input. Call Validate first.
func (r *AuthorizeRequest) ToInput() domain.AuthorizeInput {
	proof, _ := base64.StdEncoding.DecodeString(r.Proof)
	key, _ := base64.StdEncoding.DecodeString(r.VerificationKey)
	return domain.AuthorizeInput{
		Proof:           proof,
		VerificationKey: key,
		Commitment:      r.Commitment,
	}
}

// ExecuteRequest authorizes an attempt and dispatches the permitted action.
type ExecuteRequest struct {
	AuthorizeRequest
	Payload map[string]string `json:"payload"`
}

// Validate checks if the execute request is valid.
func (r *ExecuteRequest) Validate() error {
	if err := r.AuthorizeRequest.Validate(); err != nil {
		return err
	}
	return validation.ValidateStruct(r,
		validation.Field(&r.Payload,
			validation.Required,
			validation.Map(
				validation.Key(dispatch.PayloadChannel, validation.Required, customValidation.NotBlank),
				validation.Key(dispatch.PayloadMessage, validation.Required, customValidation.NotBlank),
			).AllowExtraKeys(),
		),
	)
}

// ToInput converts the request into the use case input.
func (r *ExecuteRequest) ToInput() *domain.ExecuteInput {
	return &domain.ExecuteInput{
		Authorize: r.AuthorizeRequest.ToInput(),
		Payload:   domain.ActionPayload(r.Payload),
	}
}
