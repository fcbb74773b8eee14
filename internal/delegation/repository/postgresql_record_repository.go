// Package repository implements delegation persistence for PostgreSQL and MySQL.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/allisson/zkgate/internal/database"
	"github.com/allisson/zkgate/internal/delegation/domain"
)

// PostgreSQLRecordRepository implements DelegationRecord persistence for PostgreSQL.
type PostgreSQLRecordRepository struct {
	db *sql.DB
}

// Upsert inserts or replaces the record for its commitment in a single statement.
// created_at is preserved on replacement.
func (p *PostgreSQLRecordRepository) Upsert(ctx context.Context, record *domain.DelegationRecord) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO delegation_records
			  (commitment, action, token_identifier, issuer_identity, subject_identity, target_identity, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  ON CONFLICT (commitment) DO UPDATE SET
				  action = EXCLUDED.action,
				  token_identifier = EXCLUDED.token_identifier,
				  issuer_identity = EXCLUDED.issuer_identity,
				  subject_identity = EXCLUDED.subject_identity,
				  target_identity = EXCLUDED.target_identity,
				  updated_at = EXCLUDED.updated_at`

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
func (p *PostgreSQLRecordRepository) Get(
	ctx context.Context,
	commitment domain.Commitment,
) (*domain.DelegationRecord, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT commitment, action, token_identifier, issuer_identity, subject_identity, target_identity,
			  created_at, updated_at
			  FROM delegation_records WHERE commitment = $1`

	record, err := scanRecord(querier.QueryRowContext(ctx, query, commitment.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreRead, err)
	}
	return record, nil
}

// NewPostgreSQLRecordRepository creates a new PostgreSQL delegation record repository.
func NewPostgreSQLRecordRepository(db *sql.DB) *PostgreSQLRecordRepository {
	return &PostgreSQLRecordRepository{db: db}
}

func scanRecord(row *sql.Row) (*domain.DelegationRecord, error) {
	var (
		record     domain.DelegationRecord
		commitment string
		action     string
	)

	err := row.Scan(
		&commitment,
		&action,
		&record.TokenIdentifier,
		&record.IssuerIdentity,
		&record.SubjectIdentity,
		&record.TargetIdentity,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.Commitment = domain.Commitment(commitment)
	record.Action = domain.Action(action)
	return &record, nil
}
