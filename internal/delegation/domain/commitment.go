package domain

import (
	"encoding/hex"
	"math/big"
	"strings"
)

// CommitmentSize is the byte length of a commitment.
const CommitmentSize = 32

// FieldModulus is the order r of the BN254 scalar field. Secrets and commitments are
// circuit inputs, so both must be strictly below it.
var FieldModulus, _ = new(big.Int).SetString(
	"21888242871839275222246405745257275088548364400416034343698204186575808495617", 10)

// Commitment is the public, one-way derivation of a secret. Its canonical form is
// "0x" followed by 64 lowercase hex characters and is the key of the credential store.
type Commitment string

// SecretCredential is the opaque secret a commitment is derived from.
// It is never written to the credential store.
type SecretCredential []byte

// NewCommitment builds the canonical commitment for a 32-byte big-endian field element.
func NewCommitment(digest []byte) (Commitment, error) {
	if len(digest) != CommitmentSize {
		return "", ErrInvalidCommitment
	}
	if new(big.Int).SetBytes(digest).Cmp(FieldModulus) >= 0 {
		return "", ErrInvalidCommitment
	}
	return Commitment("0x" + hex.EncodeToString(digest)), nil
}

// ParseCommitment normalizes a commitment given either as hex (with 0x prefix)
// or as a decimal field element, the form proof toolchains print public inputs in.
func ParseCommitment(s string) (Commitment, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrInvalidCommitment
	}

	value := new(big.Int)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		digits := s[2:]
		if digits == "" || len(digits) > 2*CommitmentSize {
			return "", ErrInvalidCommitment
		}
		if _, ok := value.SetString(digits, 16); !ok {
			return "", ErrInvalidCommitment
		}
	} else {
		if _, ok := value.SetString(s, 10); !ok || value.Sign() < 0 {
			return "", ErrInvalidCommitment
		}
	}

	if value.BitLen() > 8*CommitmentSize {
		return "", ErrInvalidCommitment
	}

	return NewCommitment(value.FillBytes(make([]byte, CommitmentSize)))
}

// String returns the canonical form.
func (c Commitment) String() string {
	return string(c)
}

// Bytes returns the 32-byte value of a canonical commitment.
func (c Commitment) Bytes() ([]byte, error) {
	if len(c) != 2+2*CommitmentSize || !strings.HasPrefix(string(c), "0x") {
		return nil, ErrInvalidCommitment
	}
	b, err := hex.DecodeString(string(c)[2:])
	if err != nil {
		return nil, ErrInvalidCommitment
	}
	return b, nil
}

// BigInt returns the commitment as an unsigned integer.
func (c Commitment) BigInt() (*big.Int, error) {
	b, err := c.Bytes()
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(b), nil
}

// Decimal returns the commitment in decimal form, as passed to witness computation.
func (c Commitment) Decimal() (string, error) {
	v, err := c.BigInt()
	if err != nil {
		return "", err
	}
	return v.String(), nil
}

// FieldElement returns the secret as a BN254 scalar. Decimal text is parsed as written,
// anything else is read as a big-endian integer.
func (s SecretCredential) FieldElement() (*big.Int, error) {
	if len(s) == 0 {
		return nil, ErrEmptySecret
	}

	value := new(big.Int)
	if isDecimal(s) {
		value.SetString(string(s), 10)
	} else {
		value.SetBytes(s)
	}
	if value.Cmp(FieldModulus) >= 0 {
		return nil, ErrSecretOutOfField
	}
	return value, nil
}

func isDecimal(b []byte) bool {
	for _, c := range b {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(b) > 0
}

// Zero overwrites the secret with zeros.
func (s SecretCredential) Zero() {
	for i := range s {
		s[i] = 0
	}
}
