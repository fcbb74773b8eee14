package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/allisson/zkgate/internal/delegation/domain"
)

type consumedEntry struct {
	Commitment string    `json:"commitment"`
	ConsumedAt time.Time `json:"consumed_at"`
}

// ConsumedProofStore keeps spent proof fingerprints in a JSON document next to the
// credential document.
type ConsumedProofStore struct {
	path string
	mu   sync.Mutex
}

// NewConsumedProofStore creates a store backed by path.
func NewConsumedProofStore(path string) *ConsumedProofStore {
	return &ConsumedProofStore{path: path}
}

// ConsumedPathFor returns the consumed proof document path paired with a record document.
func ConsumedPathFor(recordPath string) string {
	return recordPath + ".consumed"
}

// Consume marks the fingerprint as spent. Returns domain.ErrProofConsumed if it already
// was, by this or any other process sharing the document.
func (s *ConsumedProofStore) Consume(ctx context.Context, consumed *domain.ConsumedProof) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStoreWrite, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := withWriteLock(ctx, s.path, func() error {
		entries, err := s.load()
		if err != nil {
			return fmt.Errorf("failed to load consumed proofs: %w", err)
		}
		if _, ok := entries[consumed.Fingerprint]; ok {
			return domain.ErrProofConsumed
		}

		entries[consumed.Fingerprint] = consumedEntry{
			Commitment: consumed.Commitment.String(),
			ConsumedAt: consumed.ConsumedAt,
		}

		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return err
		}
		if err := writeFileAtomic(s.path, data); err != nil {
			return fmt.Errorf("failed to write consumed proofs: %w", err)
		}
		return nil
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrProofConsumed):
		return err
	default:
		return fmt.Errorf("%w: %w", domain.ErrStoreWrite, err)
	}
}

func (s *ConsumedProofStore) load() (map[string]consumedEntry, error) {
	entries := make(map[string]consumedEntry)

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && len(data) == 0) {
		return entries, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
