package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/allisson/zkgate/internal/database"
	"github.com/allisson/zkgate/internal/delegation/domain"
)

// MySQLRecordRepository implements DelegationRecord persistence for MySQL.
type MySQLRecordRepository struct {
	db *sql.DB
}

// Upsert inserts or replaces the record for its commitment in a single statement.
// created_at is preserved on replacement.
func (m *MySQLRecordRepository) Upsert(ctx context.Context, record *domain.DelegationRecord) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO delegation_records
			  (commitment, action, token_identifier, issuer_identity, subject_identity, target_identity, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			  ON DUPLICATE KEY UPDATE
				  action = VALUES(action),
				  token_identifier = VALUES(token_identifier),
				  issuer_identity = VALUES(issuer_identity),
				  subject_identity = VALUES(subject_identity),
				  target_identity = VALUES(target_identity),
				  updated_at = VALUES(updated_at)`

	_, err := querier.ExecContext(
		ctx,
		query,
		record.Commitment.String(),
		string(record.Action),
		record.TokenIdentifier,
		record.IssuerIdentity,
		record.SubjectIdentity,
		record.TargetIdentity,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStoreWrite, err)
	}
	return nil
}

// Get retrieves the record for a commitment. Returns ErrRecordNotFound if absent.
func (m *MySQLRecordRepository) Get(
	ctx context.Context,
	commitment domain.Commitment,
) (*domain.DelegationRecord, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT commitment, action, token_identifier, issuer_identity, subject_identity, target_identity,
			  created_at, updated_at
			  FROM delegation_records WHERE commitment = ?`

	record, err := scanRecord(querier.QueryRowContext(ctx, query, commitment.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreRead, err)
	}
	return record, nil
}

// NewMySQLRecordRepository creates a new MySQL delegation record repository.
func NewMySQLRecordRepository(db *sql.DB) *MySQLRecordRepository {
	return &MySQLRecordRepository{db: db}
}
