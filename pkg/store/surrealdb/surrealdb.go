// Package surrealdb provides the SurrealDB implementation of
// [github.com/ecardhq/contactd/pkg/store.RecordStore] using native SurrealQL
// and the surrealcbor codec.
//
// This side of the split holds the authoritative wide row per contact
// record: all ~30 vCard fields plus the open extras map. Detail reads and
// the post-update re-read come here; search never does.
//
// # CBOR marshaling
//
// SurrealDB stores data as CBOR internally, so the connection is configured
// with the surrealcbor codec rather than default JSON marshaling. Typed ids
// marshal to RecordIDs (tag 8) through their MarshalCBOR implementations and
// time.Time values use SurrealDB's native datetime format. Without the
// custom codec, datetime and RecordID values round-trip incorrectly.
//
// # Query safety
//
// All queries are parameterized ($param syntax). Typed ids marshal to
// RecordID references; no user-provided value is ever interpolated into a
// query string.
package surrealdb

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/pkg/connection"
	"github.com/surrealdb/surrealdb.go/pkg/connection/gorillaws"
	"github.com/surrealdb/surrealdb.go/surrealcbor"

	"github.com/ecardhq/contactd/pkg/models"
)

// Store implements store.RecordStore on SurrealDB.
type Store struct {
	db       *surrealdb.DB
	ns       string
	database string
}

// New connects to SurrealDB over WebSocket with the surrealcbor codec and
// selects the given namespace and database. The client is constructed once
// at process start and injected into the service layer; operations never
// reconnect lazily.
func New(wsURL, namespace, database, username, password string) (*Store, error) {
	ctx := context.Background()

	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	conf := connection.NewConfig(u)

	codec := surrealcbor.New()
	conf.Marshaler = codec
	conf.Unmarshaler = codec

	conn := gorillaws.New(conf)

	db, err := surrealdb.FromConnection(ctx, conn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
	}

	if username != "" && password != "" {
		if _, err := db.SignIn(ctx, map[string]any{
			"user": username,
			"pass": password,
		}); err != nil {
			return nil, fmt.Errorf("failed to authenticate: %w", err)
		}
	}

	if err := db.Use(ctx, namespace, database); err != nil {
		return nil, fmt.Errorf("failed to use namespace/database: %w", err)
	}

	return &Store{
		db:       db,
		ns:       namespace,
		database: database,
	}, nil
}

// Migrate is a no-op: SurrealDB creates the contact_records table when the
// first record is inserted.
func (s *Store) Migrate(ctx context.Context) error {
	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close(context.Background())
}

// isNotFound recognizes the errors SurrealDB returns for lookups that
// matched nothing.
func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "Expected a single or multiple results but got 0") ||
		strings.Contains(errStr, "cannot unmarshal array into Go value")
}

func (s *Store) CreateRecord(ctx context.Context, record *models.ContactRecordFull) error {
	if record.ID.IsZero() {
		record.ID = models.NewBatchRecordID()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = record.CreatedAt
	}
	if record.Extra == nil {
		record.Extra = models.StringMap{}
	}

	_, err := surrealdb.Create[models.ContactRecordFull](ctx, s.db, "contact_records", record)
	if err != nil {
		return fmt.Errorf("failed to create contact record: %w", err)
	}
	return nil
}

// GetRecord looks a full record up by primary key. A missing row returns
// (nil, nil): with paired writes across two stores a dangling projection
// reference is an expected state, and callers treat it as data.
func (s *Store) GetRecord(ctx context.Context, id models.BatchRecordID) (*models.ContactRecordFull, error) {
	record, err := surrealdb.Select[models.ContactRecordFull](ctx, s.db, id.RecordID())
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get contact record: %w", err)
	}
	if record == nil || record.ID.IsZero() {
		return nil, nil
	}
	if record.Extra == nil {
		record.Extra = models.StringMap{}
	}
	return record, nil
}

// UpdateRecordFields merges the sparse field set into the record. The merge
// always bumps updated_at, even when the update touched no wide-only field,
// so the row reflects every successful mutation pass.
func (s *Store) UpdateRecordFields(ctx context.Context, id models.BatchRecordID, updates models.FieldUpdates) error {
	data := updates.Columns()
	data["updated_at"] = time.Now()

	_, err := surrealdb.Merge[models.ContactRecordFull](ctx, s.db, id.RecordID(), data)
	if err != nil {
		return fmt.Errorf("failed to update contact record: %w", err)
	}
	return nil
}

func (s *Store) DeleteRecord(ctx context.Context, id models.BatchRecordID) error {
	_, err := surrealdb.Delete[models.ContactRecordFull](ctx, s.db, id.RecordID())
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("failed to delete contact record: %w", err)
	}
	return nil
}

// DeleteBatchRecords removes every full record belonging to a batch.
func (s *Store) DeleteBatchRecords(ctx context.Context, batchID models.BatchID) error {
	query := "DELETE FROM contact_records WHERE batch_id = $batch"
	params := map[string]any{
		"batch": batchID.RecordID(),
	}
	if _, err := surrealdb.Query[any](ctx, s.db, query, params); err != nil {
		return fmt.Errorf("failed to delete batch records: %w", err)
	}
	return nil
}
