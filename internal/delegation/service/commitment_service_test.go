package service

import (
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/zkgate/internal/delegation/domain"
)

func TestCommitmentService_Commit(t *testing.T) {
	svc := NewCommitmentService()

	t.Run("Deterministic", func(t *testing.T) {
		c1, err := svc.Commit(domain.SecretCredential("12345"))
		require.NoError(t, err)
		c2, err := svc.Commit(domain.SecretCredential("12345"))
		require.NoError(t, err)

		assert.Equal(t, c1, c2)
	})

	t.Run("MatchesCircuitPublicValue", func(t *testing.T) {
		c, err := svc.Commit(domain.SecretCredential("12345"))
		require.NoError(t, err)

		decimal, err := c.Decimal()
		require.NoError(t, err)
		assert.Equal(t,
			"4267533774488295900887461483015112262021273608761099826938271132511348470966",
			decimal,
		)
	})

	t.Run("BelowFieldModulus", func(t *testing.T) {
		for i := 1; i <= 1000; i++ {
			c, err := svc.Commit(domain.SecretCredential(strconv.Itoa(i)))
			require.NoError(t, err)

			value, err := c.BigInt()
			require.NoError(t, err)
			require.Negative(t, value.Cmp(domain.FieldModulus), "commitment of %d is not a field element", i)
		}
	})

	t.Run("Canonical", func(t *testing.T) {
		c, err := svc.Commit(domain.SecretCredential("12345"))
		require.NoError(t, err)

		parsed, err := domain.ParseCommitment(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	})

	t.Run("DistinctSecretsDistinctCommitments", func(t *testing.T) {
		seen := make(map[domain.Commitment]string)
		for i := 0; i < 1000; i++ {
			secret := fmt.Sprintf("secret-%d", i)
			c, err := svc.Commit(domain.SecretCredential(secret))
			require.NoError(t, err)

			prev, dup := seen[c]
			require.False(t, dup, "collision between %q and %q", prev, secret)
			seen[c] = secret
		}
	})

	t.Run("Error_EmptySecret", func(t *testing.T) {
		_, err := svc.Commit(nil)
		assert.ErrorIs(t, err, domain.ErrEmptySecret)
	})

	t.Run("Error_SecretOutOfField", func(t *testing.T) {
		_, err := svc.Commit(domain.SecretCredential(domain.FieldModulus.String()))
		assert.ErrorIs(t, err, domain.ErrSecretOutOfField)
	})
}
