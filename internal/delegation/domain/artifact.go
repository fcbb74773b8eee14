package domain

import (
	"bytes"
	"encoding/hex"
	"encoding/json"

	"golang.org/x/crypto/blake2b"

	apperrors "github.com/allisson/zkgate/internal/errors"
)

// Proof is a decoded proof artifact. Inputs are the public inputs the proof
// was generated against; the commitment is one of them.
type Proof struct {
	Scheme string          `json:"scheme"`
	Curve  string          `json:"curve"`
	Body   json.RawMessage `json:"proof"`
	Inputs []string        `json:"inputs"`
	Raw    []byte          `json:"-"`
}

// VerificationKey is a decoded verification key artifact.
type VerificationKey struct {
	Scheme string `json:"scheme"`
	Curve  string `json:"curve"`
	Raw    []byte `json:"-"`
}

// DecodeProof parses a proof.json artifact. Empty input yields ErrArtifactMissing,
// anything that is not a proof object yields ErrArtifactMalformed.
func DecodeProof(raw []byte) (*Proof, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, ErrArtifactMissing
	}

	var proof Proof
	if err := json.Unmarshal(raw, &proof); err != nil {
		return nil, apperrors.Wrap(ErrArtifactMalformed, "proof is not valid json")
	}
	if proof.Scheme == "" {
		return nil, apperrors.Wrap(ErrArtifactMalformed, "proof scheme is missing")
	}
	body := bytes.TrimSpace(proof.Body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) || body[0] != '{' {
		return nil, apperrors.Wrap(ErrArtifactMalformed, "proof body is missing")
	}

	proof.Raw = append([]byte(nil), raw...)
	return &proof, nil
}

// DecodeVerificationKey parses a verification.key artifact.
func DecodeVerificationKey(raw []byte) (*VerificationKey, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, ErrArtifactMissing
	}

	var key VerificationKey
	if err := json.Unmarshal(raw, &key); err != nil {
		return nil, apperrors.Wrap(ErrArtifactMalformed, "verification key is not valid json")
	}
	if key.Scheme == "" {
		return nil, apperrors.Wrap(ErrArtifactMalformed, "verification key scheme is missing")
	}

	key.Raw = append([]byte(nil), raw...)
	return &key, nil
}

// Compatible reports whether the key was produced for the proof's scheme and curve.
func (k *VerificationKey) Compatible(p *Proof) bool {
	if k.Scheme != p.Scheme {
		return false
	}
	return k.Curve == "" || p.Curve == "" || k.Curve == p.Curve
}

// Fingerprint identifies a proof for replay protection.
func (p *Proof) Fingerprint() string {
	sum := blake2b.Sum256(p.Raw)
	return hex.EncodeToString(sum[:])
}

// HasInput reports whether the commitment is among the proof's public inputs.
// Inputs are compared numerically so hex and decimal renderings match.
func (p *Proof) HasInput(commitment Commitment) bool {
	for _, input := range p.Inputs {
		parsed, err := ParseCommitment(input)
		if err != nil {
			continue
		}
		if parsed == commitment {
			return true
		}
	}
	return false
}
