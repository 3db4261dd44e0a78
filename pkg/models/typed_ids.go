package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	surrealdb_models "github.com/surrealdb/surrealdb.go/pkg/models"
)

// Typed UUID identifiers for the aggregates this service touches.
// Each type knows how to represent itself in every persistence context:
// JSON (plain string), PostgreSQL via GORM (uuid column), and SurrealDB
// via CBOR (RecordID, tag 8). Keeping the conversions on the ID type means
// store code never concatenates table names and ids by hand.

// BatchRecordID identifies a contact record. The same value keys both the
// relational projection row and the wide-column full record.
type BatchRecordID struct {
	uuid uuid.UUID
}

func NewBatchRecordID() BatchRecordID {
	return BatchRecordID{uuid: uuid.New()}
}

func NewBatchRecordIDFromUUID(id uuid.UUID) BatchRecordID {
	return BatchRecordID{uuid: id}
}

func ParseBatchRecordID(s string) (BatchRecordID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return BatchRecordID{}, fmt.Errorf("invalid record ID: %w", err)
	}
	return BatchRecordID{uuid: id}, nil
}

func (r BatchRecordID) UUID() uuid.UUID { return r.uuid }
func (r BatchRecordID) String() string  { return r.uuid.String() }
func (r BatchRecordID) IsZero() bool    { return r.uuid == uuid.Nil }

func (r BatchRecordID) RecordID() surrealdb_models.RecordID {
	return surrealdb_models.RecordID{
		Table: "contact_records",
		ID:    r.uuid.String(),
	}
}

func (r BatchRecordID) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.uuid.String())
}

func (r *BatchRecordID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return err
	}
	r.uuid = id
	return nil
}

func (r BatchRecordID) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(cbor.Tag{
		Number:  8,
		Content: []any{"contact_records", r.uuid.String()},
	})
}

func (r *BatchRecordID) UnmarshalCBOR(data []byte) error {
	return unmarshalCBORID(data, "contact_records", &r.uuid)
}

func (r BatchRecordID) Value() (driver.Value, error) {
	if r.IsZero() {
		return nil, nil
	}
	return r.uuid.String(), nil
}

func (r *BatchRecordID) Scan(value any) error {
	return scanUUID(value, &r.uuid)
}

func (BatchRecordID) GormDataType() string { return "uuid" }

// BatchID identifies an upload batch.
type BatchID struct {
	uuid uuid.UUID
}

func NewBatchID() BatchID {
	return BatchID{uuid: uuid.New()}
}

func NewBatchIDFromUUID(id uuid.UUID) BatchID {
	return BatchID{uuid: id}
}

func ParseBatchID(s string) (BatchID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return BatchID{}, fmt.Errorf("invalid batch ID: %w", err)
	}
	return BatchID{uuid: id}, nil
}

func (b BatchID) UUID() uuid.UUID { return b.uuid }
func (b BatchID) String() string  { return b.uuid.String() }
func (b BatchID) IsZero() bool    { return b.uuid == uuid.Nil }

func (b BatchID) RecordID() surrealdb_models.RecordID {
	return surrealdb_models.RecordID{
		Table: "batches",
		ID:    b.uuid.String(),
	}
}

func (b BatchID) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.uuid.String())
}

func (b *BatchID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return err
	}
	b.uuid = id
	return nil
}

func (b BatchID) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(cbor.Tag{
		Number:  8,
		Content: []any{"batches", b.uuid.String()},
	})
}

func (b *BatchID) UnmarshalCBOR(data []byte) error {
	return unmarshalCBORID(data, "batches", &b.uuid)
}

func (b BatchID) Value() (driver.Value, error) {
	if b.IsZero() {
		return nil, nil
	}
	return b.uuid.String(), nil
}

func (b *BatchID) Scan(value any) error {
	return scanUUID(value, &b.uuid)
}

func (BatchID) GormDataType() string { return "uuid" }

// UserID identifies the owner of a batch. User accounts themselves are
// managed elsewhere; this service only compares ids for ownership checks.
type UserID struct {
	uuid uuid.UUID
}

func NewUserID() UserID {
	return UserID{uuid: uuid.New()}
}

func NewUserIDFromUUID(id uuid.UUID) UserID {
	return UserID{uuid: id}
}

func ParseUserID(s string) (UserID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return UserID{}, fmt.Errorf("invalid user ID: %w", err)
	}
	return UserID{uuid: id}, nil
}

func (u UserID) UUID() uuid.UUID { return u.uuid }
func (u UserID) String() string  { return u.uuid.String() }
func (u UserID) IsZero() bool    { return u.uuid == uuid.Nil }

func (u UserID) RecordID() surrealdb_models.RecordID {
	return surrealdb_models.RecordID{
		Table: "users",
		ID:    u.uuid.String(),
	}
}

func (u UserID) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.uuid.String())
}

func (u *UserID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return err
	}
	u.uuid = id
	return nil
}

func (u UserID) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(cbor.Tag{
		Number:  8,
		Content: []any{"users", u.uuid.String()},
	})
}

func (u *UserID) UnmarshalCBOR(data []byte) error {
	return unmarshalCBORID(data, "users", &u.uuid)
}

func (u UserID) Value() (driver.Value, error) {
	if u.IsZero() {
		return nil, nil
	}
	return u.uuid.String(), nil
}

func (u *UserID) Scan(value any) error {
	return scanUUID(value, &u.uuid)
}

func (UserID) GormDataType() string { return "uuid" }

// scanUUID reads a UUID from the forms database drivers hand back.
func scanUUID(value any, target *uuid.UUID) error {
	if value == nil {
		*target = uuid.Nil
		return nil
	}

	switch v := value.(type) {
	case string:
		parsed, err := uuid.Parse(v)
		if err != nil {
			return fmt.Errorf("failed to parse UUID from string: %w", err)
		}
		*target = parsed
	case []byte:
		parsed, err := uuid.Parse(string(v))
		if err != nil {
			return fmt.Errorf("failed to parse UUID from bytes: %w", err)
		}
		*target = parsed
	default:
		return fmt.Errorf("unsupported type for UUID scan: %T", value)
	}
	return nil
}

// unmarshalCBORID decodes a SurrealDB RecordID (CBOR tag 8, [table, id])
// into a plain UUID, verifying it belongs to the expected table.
func unmarshalCBORID(data []byte, expectedTable string, target *uuid.UUID) error {
	if len(data) == 0 {
		return fmt.Errorf("empty CBOR data")
	}

	majorType := data[0] >> 5
	if majorType != 6 {
		return fmt.Errorf("expected CBOR tag for RecordID, got major type %d", majorType)
	}

	var tag cbor.Tag
	if err := cbor.Unmarshal(data, &tag); err != nil {
		return fmt.Errorf("failed to unmarshal CBOR tag: %w", err)
	}

	if tag.Number != 8 {
		return fmt.Errorf("expected RecordID tag (8), got %d", tag.Number)
	}

	arr, ok := tag.Content.([]any)
	if !ok || len(arr) != 2 {
		return fmt.Errorf("invalid RecordID format: expected [table, id] array")
	}

	table, ok := arr[0].(string)
	if !ok {
		return fmt.Errorf("invalid RecordID format: table name must be string")
	}

	if table != expectedTable {
		return fmt.Errorf("expected table %s, got %s", expectedTable, table)
	}

	idStr, ok := arr[1].(string)
	if !ok {
		return fmt.Errorf("invalid RecordID format: ID must be string")
	}

	parsedUUID, err := uuid.Parse(idStr)
	if err != nil {
		return fmt.Errorf("invalid UUID in RecordID: %w", err)
	}

	*target = parsedUUID
	return nil
}
