package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/framing-go/domain/record"
)

// RecordStore is an in-memory implementation of record.Store, used in tests
// and local runs without an external record database.
type RecordStore struct {
	records map[string]record.Record
	mu      sync.RWMutex
}

// NewRecordStore creates a new in-memory record store.
func NewRecordStore() *RecordStore {
	return &RecordStore{
		records: make(map[string]record.Record),
	}
}

// Save stores a record under a fresh ID.
func (s *RecordStore) Save(ctx context.Context, rec record.Record) (record.SaveResult, error) {
	if err := ctx.Err(); err != nil {
		return record.SaveResult{}, err
	}

	id := uuid.New().String()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[id] = rec
	return record.SaveResult{RecordID: id}, nil
}

// Load retrieves a record by ID.
func (s *RecordStore) Load(ctx context.Context, id string) (record.Record, error) {
	if err := ctx.Err(); err != nil {
		return record.Record{}, err
	}

	if id == "" {
		return record.Record{}, record.ErrInvalidRecordID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return record.Record{}, record.ErrRecordNotFound
	}
	return rec, nil
}

// Len returns the number of stored records.
func (s *RecordStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

var _ record.Store = (*RecordStore)(nil)
