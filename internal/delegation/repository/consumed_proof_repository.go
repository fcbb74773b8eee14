package repository

import (
	"context"
	"database/sql"

	"github.com/allisson/zkgate/internal/database"
	"github.com/allisson/zkgate/internal/delegation/domain"
	apperrors "github.com/allisson/zkgate/internal/errors"
)

// PostgreSQLConsumedProofRepository records spent proof fingerprints in PostgreSQL.
type PostgreSQLConsumedProofRepository struct {
	db *sql.DB
}

// Consume inserts the fingerprint, returning ErrProofConsumed when it already exists.
func (p *PostgreSQLConsumedProofRepository) Consume(ctx context.Context, consumed *domain.ConsumedProof) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO consumed_proofs (fingerprint, commitment, consumed_at)
			  VALUES ($1, $2, $3)
			  ON CONFLICT (fingerprint) DO NOTHING`

	result, err := querier.ExecContext(
		ctx,
		query,
		consumed.Fingerprint,
		consumed.Commitment.String(),
		consumed.ConsumedAt,
	)
	return checkConsumed(result, err)
}

// NewPostgreSQLConsumedProofRepository creates a new PostgreSQL consumed proof repository.
func NewPostgreSQLConsumedProofRepository(db *sql.DB) *PostgreSQLConsumedProofRepository {
	return &PostgreSQLConsumedProofRepository{db: db}
}

// MySQLConsumedProofRepository records spent proof fingerprints in MySQL.
type MySQLConsumedProofRepository struct {
	db *sql.DB
}

// Consume inserts the fingerprint, returning ErrProofConsumed when it already exists.
func (m *MySQLConsumedProofRepository) Consume(ctx context.Context, consumed *domain.ConsumedProof) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT IGNORE INTO consumed_proofs (fingerprint, commitment, consumed_at) VALUES (?, ?, ?)`

	result, err := querier.ExecContext(
		ctx,
		query,
		consumed.Fingerprint,
		consumed.Commitment.String(),
		consumed.ConsumedAt,
	)
	return checkConsumed(result, err)
}

// NewMySQLConsumedProofRepository creates a new MySQL consumed proof repository.
func NewMySQLConsumedProofRepository(db *sql.DB) *MySQLConsumedProofRepository {
	return &MySQLConsumedProofRepository{db: db}
}

func checkConsumed(result sql.Result, err error) error {
	if err != nil {
		return apperrors.Wrap(err, "failed to consume proof")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rows == 0 {
		return domain.ErrProofConsumed
	}
	return nil
}
