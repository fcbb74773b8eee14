package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/zkgate/internal/database"
	"github.com/allisson/zkgate/internal/delegation/domain"
	"github.com/allisson/zkgate/internal/delegation/usecase"
	apperrors "github.com/allisson/zkgate/internal/errors"
)

const testCommitment = domain.Commitment("0x00000000000000000000000000000000000000000000000000000000000000ff")

var recordColumns = []string{
	"commitment",
	"action",
	"token_identifier",
	"issuer_identity",
	"subject_identity",
	"target_identity",
	"created_at",
	"updated_at",
}

func newTestRecord() *domain.DelegationRecord {
	now := time.Now().UTC()
	return &domain.DelegationRecord{
		Commitment:      testCommitment,
		Action:          domain.ActionPostMessage,
		TokenIdentifier: "tokenA",
		IssuerIdentity:  "did:user:123",
		SubjectIdentity: "did:agent:writer456",
		TargetIdentity:  "did:agent:slack789",
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestRecordRepositories_Upsert(t *testing.T) {
	tests := []struct {
		name  string
		query string
		repo  func(db *sql.DB) usecase.RecordRepository
	}{
		{
			name:  "PostgreSQL",
			query: "ON CONFLICT (commitment) DO UPDATE SET",
			repo: func(db *sql.DB) usecase.RecordRepository {
				return NewPostgreSQLRecordRepository(db)
			},
		},
		{
			name:  "MySQL",
			query: "ON DUPLICATE KEY UPDATE",
			repo: func(db *sql.DB) usecase.RecordRepository {
				return NewMySQLRecordRepository(db)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name+"_Success", func(t *testing.T) {
			db, mock := newMockDB(t)
			record := newTestRecord()

			mock.ExpectExec(regexp.QuoteMeta(tt.query)).
				WithArgs(
					record.Commitment.String(),
					"post_message",
					"tokenA",
					"did:user:123",
					"did:agent:writer456",
					"did:agent:slack789",
					record.CreatedAt,
					record.UpdatedAt,
				).
				WillReturnResult(sqlmock.NewResult(0, 1))

			err := tt.repo(db).Upsert(context.Background(), record)
			require.NoError(t, err)
			assert.NoError(t, mock.ExpectationsWereMet())
		})

		t.Run(tt.name+"_Error_StoreWrite", func(t *testing.T) {
			db, mock := newMockDB(t)

			mock.ExpectExec(regexp.QuoteMeta(tt.query)).WillReturnError(errors.New("disk full"))

			err := tt.repo(db).Upsert(context.Background(), newTestRecord())
			assert.ErrorIs(t, err, domain.ErrStoreWrite)
			assert.True(t, apperrors.Is(err, apperrors.ErrUnavailable))
			assert.Contains(t, err.Error(), "disk full")
		})

		t.Run(tt.name+"_UsesTransaction", func(t *testing.T) {
			db, mock := newMockDB(t)

			mock.ExpectBegin()
			mock.ExpectExec(regexp.QuoteMeta(tt.query)).WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectCommit()

			txManager := database.NewTxManager(db)
			err := txManager.WithTx(context.Background(), func(ctx context.Context) error {
				return tt.repo(db).Upsert(ctx, newTestRecord())
			})
			require.NoError(t, err)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRecordRepositories_Get(t *testing.T) {
	tests := []struct {
		name string
		repo func(db *sql.DB) usecase.RecordRepository
	}{
		{
			name: "PostgreSQL",
			repo: func(db *sql.DB) usecase.RecordRepository {
				return NewPostgreSQLRecordRepository(db)
			},
		},
		{
			name: "MySQL",
			repo: func(db *sql.DB) usecase.RecordRepository {
				return NewMySQLRecordRepository(db)
			},
		},
	}

	query := regexp.QuoteMeta("FROM delegation_records WHERE commitment =")

	for _, tt := range tests {
		t.Run(tt.name+"_Success", func(t *testing.T) {
			db, mock := newMockDB(t)
			expected := newTestRecord()

			rows := sqlmock.NewRows(recordColumns).AddRow(
				expected.Commitment.String(),
				string(expected.Action),
				expected.TokenIdentifier,
				expected.IssuerIdentity,
				expected.SubjectIdentity,
				expected.TargetIdentity,
				expected.CreatedAt,
				expected.UpdatedAt,
			)
			mock.ExpectQuery(query).WithArgs(testCommitment.String()).WillReturnRows(rows)

			record, err := tt.repo(db).Get(context.Background(), testCommitment)
			require.NoError(t, err)
			assert.True(t, expected.Equal(record))
			assert.Equal(t, testCommitment, record.Commitment)
			assert.NoError(t, mock.ExpectationsWereMet())
		})

		t.Run(tt.name+"_Error_NotFound", func(t *testing.T) {
			db, mock := newMockDB(t)

			mock.ExpectQuery(query).WillReturnRows(sqlmock.NewRows(recordColumns))

			record, err := tt.repo(db).Get(context.Background(), testCommitment)
			assert.Nil(t, record)
			assert.ErrorIs(t, err, domain.ErrRecordNotFound)
		})

		t.Run(tt.name+"_Error_StoreRead", func(t *testing.T) {
			db, mock := newMockDB(t)

			mock.ExpectQuery(query).WillReturnError(errors.New("connection reset"))

			record, err := tt.repo(db).Get(context.Background(), testCommitment)
			assert.Nil(t, record)
			assert.ErrorIs(t, err, domain.ErrStoreRead)
			assert.False(t, apperrors.Is(err, apperrors.ErrNotFound))
		})
	}
}
