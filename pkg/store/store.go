// Package store defines the persistence interfaces for the two backends a
// contact record is split across, plus the error taxonomy shared by their
// callers.
//
// The relational side ([ProjectionStore], implemented by
// [github.com/ecardhq/contactd/pkg/store/postgres.Store]) owns the batches
// table and the searchable projection rows; it answers every filtered,
// paginated, counted query. The wide side ([RecordStore], implemented by
// [github.com/ecardhq/contactd/pkg/store/surrealdb.Store]) owns the full
// records and is authoritative for reads of individual contacts.
//
// Neither interface promises cross-store atomicity. Coordinating the two —
// and living with the narrow inconsistency windows that coordination leaves
// open — is the job of [github.com/ecardhq/contactd/pkg/contacts].
//
// Lookups that find nothing return (nil, nil): a missing row is data, not
// failure. The service layer converts nil results into [ErrNotFound] where an
// operation requires the row to exist.
package store

import (
	"context"
	"errors"

	"github.com/ecardhq/contactd/pkg/models"
)

// ErrNotFound reports that the record or batch named by an id does not
// exist. With two independently-failing stores a dangling reference is an
// expected state, so callers should branch on this rather than treat it as
// infrastructure failure.
var ErrNotFound = errors.New("not found")

// ErrUnauthorized reports that the acting user does not own the batch the
// record belongs to.
var ErrUnauthorized = errors.New("unauthorized")

// RecordFilter describes a projection search. String filters are substring
// matches: case-insensitive for Email, FullName and BusinessName,
// case-sensitive for the phone fields (phone values are digit/symbol
// strings; folding must not touch them). Empty filter values impose no
// constraint. BatchID, when set, restricts to one batch.
type RecordFilter struct {
	Email        string
	FullName     string
	BusinessName string
	WorkPhone    string
	MobilePhone  string
	BatchID      models.BatchID
	Limit        int
	Offset       int
}

// RecordPage is one page of projection rows plus the total match count
// ignoring Limit/Offset. Callers derive "has more" as Offset+Limit < Total.
type RecordPage struct {
	Records []*models.ContactRecord
	Total   int64
}

// ProjectionStore is the relational backend: batches and searchable
// projection rows.
type ProjectionStore interface {
	Migrate(ctx context.Context) error
	Close() error

	// Batch operations
	CreateBatch(ctx context.Context, batch *models.Batch) error
	GetBatch(ctx context.Context, id models.BatchID) (*models.Batch, error)
	ListBatches(ctx context.Context, userID models.UserID) ([]*models.Batch, error)
	UpdateBatch(ctx context.Context, batch *models.Batch) error
	DeleteBatch(ctx context.Context, id models.BatchID) error

	// Denormalized counter maintenance. CountRecords is a full COUNT of the
	// batch's projection rows; SetRecordsCount persists a recomputed value.
	CountRecords(ctx context.Context, batchID models.BatchID) (int64, error)
	SetRecordsCount(ctx context.Context, batchID models.BatchID, count int64) error

	// Projection row operations
	CreateRecord(ctx context.Context, record *models.ContactRecord) error
	GetRecord(ctx context.Context, id models.BatchRecordID) (*models.ContactRecord, error)
	// GetRecordOwner resolves the projection row together with the owning
	// user of its batch, in one joined query.
	GetRecordOwner(ctx context.Context, id models.BatchRecordID) (*models.ContactRecord, models.UserID, error)
	SearchRecords(ctx context.Context, filter RecordFilter) (*RecordPage, error)
	// UpdateRecordFields applies a sparse column update to one projection
	// row. Only searchable fields are meaningful here.
	UpdateRecordFields(ctx context.Context, id models.BatchRecordID, updates models.FieldUpdates) error
	DeleteRecord(ctx context.Context, id models.BatchRecordID) error
}

// RecordStore is the wide-column backend holding full contact records.
type RecordStore interface {
	Migrate(ctx context.Context) error
	Close() error

	CreateRecord(ctx context.Context, record *models.ContactRecordFull) error
	GetRecord(ctx context.Context, id models.BatchRecordID) (*models.ContactRecordFull, error)
	// UpdateRecordFields merges a sparse field set into the record and bumps
	// updated_at, whether or not any field changed.
	UpdateRecordFields(ctx context.Context, id models.BatchRecordID, updates models.FieldUpdates) error
	DeleteRecord(ctx context.Context, id models.BatchRecordID) error
	// DeleteBatchRecords removes every full record belonging to a batch.
	DeleteBatchRecords(ctx context.Context, batchID models.BatchID) error
}
