// Package file implements the credential store as a single JSON document keyed by
// commitment. It serves single-node deployments and documents produced by earlier tooling.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/allisson/zkgate/internal/delegation/domain"
)

// fileRecord is the on-disk form of a record. The *_did fields are read from legacy
// documents and never written.
type fileRecord struct {
	Action          string    `json:"action"`
	TokenIdentifier string    `json:"token_identifier"`
	IssuerIdentity  string    `json:"issuer_identity,omitempty"`
	SubjectIdentity string    `json:"subject_identity,omitempty"`
	TargetIdentity  string    `json:"target_identity,omitempty"`
	CreatedAt       time.Time `json:"created_at,omitzero"`
	UpdatedAt       time.Time `json:"updated_at,omitzero"`
	LegacyIssuer    string    `json:"issuer_did,omitempty"`
	LegacySubject   string    `json:"subject_did,omitempty"`
	LegacyTarget    string    `json:"target_did,omitempty"`
}

// RecordStore keeps delegation records in one JSON file. Every write rewrites the
// document to a temporary file and renames it over the original, so readers observe
// either the previous or the new document.
type RecordStore struct {
	path string
	mu   sync.RWMutex
}

// NewRecordStore creates a store backed by path. The file is created on first write.
func NewRecordStore(path string) *RecordStore {
	return &RecordStore{path: path}
}

// Upsert stores record under its commitment, replacing any previous record. The
// read-modify-write runs under the document's file lock, so concurrent writers in
// other processes never drop each other's records.
func (s *RecordStore) Upsert(ctx context.Context, record *domain.DelegationRecord) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStoreWrite, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := withWriteLock(ctx, s.path, func() error {
		records, err := s.load()
		if err != nil {
			return err
		}

		createdAt := record.CreatedAt
		if existing, ok := records[record.Commitment]; ok && !existing.CreatedAt.IsZero() {
			createdAt = existing.CreatedAt
		}
		stored := record.Clone()
		stored.CreatedAt = createdAt
		records[record.Commitment] = stored

		return s.save(records)
	})
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStoreWrite, err)
	}
	return nil
}

// Get returns the record for a commitment. The document is re-read on every call so
// records written by other processes are visible.
func (s *RecordStore) Get(ctx context.Context, commitment domain.Commitment) (*domain.DelegationRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreRead, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	records, err := s.load()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreRead, err)
	}

	record, ok := records[commitment]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	return record.Clone(), nil
}

// PingContext reports whether the document can be read. A missing document is healthy.
func (s *RecordStore) PingContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, err := s.load()
	return err
}

func (s *RecordStore) load() (map[domain.Commitment]*domain.DelegationRecord, error) {
	records := make(map[domain.Commitment]*domain.DelegationRecord)

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return records, nil
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return records, nil
	}

	var document map[string]fileRecord
	if err := json.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", s.path, err)
	}

	for key, fr := range document {
		commitment, err := domain.ParseCommitment(key)
		if err != nil {
			return nil, fmt.Errorf("invalid commitment key %q: %w", key, err)
		}
		action, err := domain.ParseAction(fr.Action)
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", commitment, err)
		}
		records[commitment] = &domain.DelegationRecord{
			Commitment:      commitment,
			Action:          action,
			TokenIdentifier: fr.TokenIdentifier,
			IssuerIdentity:  firstNonEmpty(fr.IssuerIdentity, fr.LegacyIssuer),
			SubjectIdentity: firstNonEmpty(fr.SubjectIdentity, fr.LegacySubject),
			TargetIdentity:  firstNonEmpty(fr.TargetIdentity, fr.LegacyTarget),
			CreatedAt:       fr.CreatedAt,
			UpdatedAt:       fr.UpdatedAt,
		}
		if err := records[commitment].Validate(); err != nil {
			return nil, fmt.Errorf("record %s: %w", commitment, err)
		}
	}
	return records, nil
}

func (s *RecordStore) save(records map[domain.Commitment]*domain.DelegationRecord) error {
	document := make(map[string]fileRecord, len(records))
	for commitment, r := range records {
		document[commitment.String()] = fileRecord{
			Action:          string(r.Action),
			TokenIdentifier: r.TokenIdentifier,
			IssuerIdentity:  r.IssuerIdentity,
			SubjectIdentity: r.SubjectIdentity,
			TargetIdentity:  r.TargetIdentity,
			CreatedAt:       r.CreatedAt,
			UpdatedAt:       r.UpdatedAt,
		}
	}

	data, err := json.MarshalIndent(document, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(s.path, data)
}

// writeFileAtomic writes data to a temporary file in the target directory, syncs it
// and renames it over path.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
