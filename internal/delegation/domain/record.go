package domain

import (
	"time"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/zkgate/internal/errors"
	customValidation "github.com/allisson/zkgate/internal/validation"
)

// DelegationRecord states that IssuerIdentity allows SubjectIdentity to have
// TargetIdentity perform Action. It is reachable only through its Commitment and
// carries a TokenIdentifier instead of any downstream credential.
type DelegationRecord struct {
	Commitment      Commitment `json:"-"`
	Action          Action     `json:"action"`
	TokenIdentifier string     `json:"token_identifier"`
	IssuerIdentity  string     `json:"issuer_identity"`
	SubjectIdentity string     `json:"subject_identity"`
	TargetIdentity  string     `json:"target_identity"`
	CreatedAt       time.Time  `json:"-"`
	UpdatedAt       time.Time  `json:"-"`
}

// Validate checks the authorization fields. Issuer, subject and target must be three
// distinct principals. The commitment is validated where it is parsed.
func (r *DelegationRecord) Validate() error {
	if r == nil {
		return ErrInvalidRecord
	}

	identityRules := []validation.Rule{
		validation.Required,
		customValidation.NotBlank,
		customValidation.Identifier,
		validation.Length(1, 255),
	}
	distinctFrom := func(field string, others ...string) validation.Rule {
		return validation.By(func(value interface{}) error {
			s, _ := value.(string)
			for _, other := range others {
				if s != "" && s == other {
					return validation.NewError("validation_distinct_identity", "must differ from "+field)
				}
			}
			return nil
		})
	}

	err := validation.ValidateStruct(r,
		validation.Field(&r.Action,
			validation.Required,
			validation.By(func(value interface{}) error {
				if action, _ := value.(Action); !action.IsValid() {
					return validation.NewError("validation_action", "must be a supported action")
				}
				return nil
			}),
		),
		validation.Field(&r.TokenIdentifier, identityRules...),
		validation.Field(&r.IssuerIdentity, identityRules...),
		validation.Field(&r.SubjectIdentity,
			append(identityRules, distinctFrom("issuer_identity", r.IssuerIdentity))...),
		validation.Field(&r.TargetIdentity,
			append(identityRules,
				distinctFrom("issuer_identity", r.IssuerIdentity),
				distinctFrom("subject_identity", r.SubjectIdentity),
			)...),
	)
	if err != nil {
		return apperrors.Wrap(ErrInvalidRecord, err.Error())
	}
	return nil
}

// Equal compares the five authorization fields, ignoring bookkeeping timestamps.
func (r *DelegationRecord) Equal(other *DelegationRecord) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.Action == other.Action &&
		r.TokenIdentifier == other.TokenIdentifier &&
		r.IssuerIdentity == other.IssuerIdentity &&
		r.SubjectIdentity == other.SubjectIdentity &&
		r.TargetIdentity == other.TargetIdentity
}

// Clone returns a copy so stores never share state with callers.
func (r *DelegationRecord) Clone() *DelegationRecord {
	if r == nil {
		return nil
	}
	clone := *r
	return &clone
}

// ConsumedProof marks a proof fingerprint as spent when replay protection is on.
type ConsumedProof struct {
	Fingerprint string
	Commitment  Commitment
	ConsumedAt  time.Time
}

// IssueCredentialInput contains the parameters for issuing a delegation.
// When Secret is empty a random secret is generated and returned once.
type IssueCredentialInput struct {
	Secret          SecretCredential
	Action          Action
	TokenIdentifier string
	IssuerIdentity  string
	SubjectIdentity string
	TargetIdentity  string
}

// IssueCredentialOutput contains the result of an issuance.
// SECURITY: PlainSecret is only set for generated secrets and is never retrievable again
// through this API; it must be handed to the subject out of band.
type IssueCredentialOutput struct {
	Commitment  Commitment
	PlainSecret string
	Record      *DelegationRecord
}
