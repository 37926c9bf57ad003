package record

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/framing-go/domain/framing"
)

// Store errors.
var (
	// ErrRecordNotFound indicates the record id does not exist in the store.
	ErrRecordNotFound = errors.New("record not found")

	// ErrInvalidRecordID indicates an empty or malformed record id.
	ErrInvalidRecordID = errors.New("invalid record id")
)

// SaveResult identifies a stored record.
type SaveResult struct {
	RecordID string `json:"record_id"`
	URL      string `json:"canonical_url"`
}

// Store is the interface to the persistent record store. Text values longer
// than TextLimit are truncated on save, so a save/load round trip is
// byte-identical only up to the cap.
type Store interface {
	// Save writes a record and returns its id and canonical URL.
	Save(ctx context.Context, r Record) (SaveResult, error)

	// Load retrieves a record by id, with empty-string defaults for
	// absent fields.
	Load(ctx context.Context, id string) (Record, error)
}

// KeywordSource reads tagged keywords from an external database, feeding the
// pipeline's keyword-sync stage.
type KeywordSource interface {
	FetchKeywords(ctx context.Context) ([]framing.Keyword, error)
}
