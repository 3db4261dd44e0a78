// Package models defines the data model shared by both persistence backends:
// the relational projection rows searched through PostgreSQL and the full
// contact records held in SurrealDB.
//
// Every contact record exists twice. The relational side
// ([ContactRecord]) carries only the five searchable fields plus the batch
// foreign key; the wide side ([ContactRecordFull]) carries the complete
// vCard-style field set including the open [StringMap] extras. The two rows
// share one [BatchRecordID].
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// BatchStatus tracks an upload batch through the ingestion pipeline.
type BatchStatus string

const (
	BatchStatusPending BatchStatus = "PENDING"
	BatchStatusParsing BatchStatus = "PARSING"
	BatchStatusParsed  BatchStatus = "PARSED"
	BatchStatusError   BatchStatus = "ERROR"
)

// StringMap is an open string-to-string mapping used for the uncategorized
// columns an imported file may carry. PostgreSQL is never asked to query it;
// it rides along in the wide store and, when a batch summary needs it, is
// stored relationally as JSONB through the Valuer/Scanner below.
type StringMap map[string]string

// Value implements the driver.Valuer interface for database storage
func (m StringMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan implements the sql.Scanner interface for database retrieval
func (m *StringMap) Scan(value any) error {
	if value == nil {
		*m = make(map[string]string)
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("unsupported type for StringMap scan: %T", value)
		}
		bytes = []byte(s)
	}
	return json.Unmarshal(bytes, m)
}

// Batch represents one uploaded contacts file and its ingestion state.
// RecordsCount is denormalized: it is recomputed by a full COUNT of the
// batch's projection rows, never decremented, so prior drift heals on the
// next recompute.
type Batch struct {
	ID                 BatchID     `gorm:"type:uuid;primary_key" json:"id"`
	UserID             UserID      `gorm:"type:uuid;not null;index" json:"user_id"`
	FileName           string      `gorm:"not null" json:"file_name"`
	FilePath           string      `gorm:"not null" json:"file_path"`
	Status             BatchStatus `gorm:"not null;default:PENDING" json:"status"`
	ErrorMessage       string      `json:"error_message,omitempty"`
	RecordsCount       int64       `gorm:"not null;default:0" json:"records_count"`
	RecordsProcessed   int64       `gorm:"not null;default:0" json:"records_processed"`
	ParsingStartedAt   *time.Time  `json:"parsing_started_at,omitempty"`
	ParsingCompletedAt *time.Time  `json:"parsing_completed_at,omitempty"`
	ProcessedAt        *time.Time  `json:"processed_at,omitempty"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
}

// BeforeCreate hook to generate ID if not set
func (b *Batch) BeforeCreate(tx *gorm.DB) error {
	if b.ID.IsZero() {
		b.ID = NewBatchID()
	}
	return nil
}

// ContactRecord is the relational projection of a contact record: the five
// searchable fields plus the batch foreign key. Its ID always equals the ID
// of the corresponding ContactRecordFull row.
type ContactRecord struct {
	ID           BatchRecordID `gorm:"type:uuid;primary_key" json:"id"`
	BatchID      BatchID       `gorm:"type:uuid;not null;index" json:"batch_id"`
	Batch        *Batch        `gorm:"foreignKey:BatchID" json:"batch,omitempty"`
	FullName     string        `json:"full_name"`
	WorkPhone    string        `json:"work_phone"`
	MobilePhone  string        `json:"mobile_phone"`
	Email        string        `json:"email"`
	BusinessName string        `json:"business_name"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// BeforeCreate hook to generate ID if not set
func (r *ContactRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID.IsZero() {
		r.ID = NewBatchRecordID()
	}
	return nil
}

// ContactRecordFull is the authoritative wide-column row for a contact
// record. Every column is always present in the serialized form (no
// omitempty on the field set) so callers can rely on a complete shape;
// an absent value is an empty string, never a missing key.
type ContactRecordFull struct {
	ID        BatchRecordID `json:"id"`
	BatchID   BatchID       `json:"batch_id"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`

	FullName  string `json:"full_name"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`

	WorkPhone    string `json:"work_phone"`
	WorkPhoneExt string `json:"work_phone_ext"`
	MobilePhone  string `json:"mobile_phone"`
	Email        string `json:"email"`

	AddressStreet  string `json:"address_street"`
	AddressCity    string `json:"address_city"`
	AddressState   string `json:"address_state"`
	AddressPostal  string `json:"address_postal"`
	AddressCountry string `json:"address_country"`

	SocialInstagram string `json:"social_instagram"`
	SocialTwitter   string `json:"social_twitter"`
	SocialFacebook  string `json:"social_facebook"`

	BusinessName       string `json:"business_name"`
	BusinessTitle      string `json:"business_title"`
	BusinessDepartment string `json:"business_department"`
	BusinessURL        string `json:"business_url"`
	BusinessHours      string `json:"business_hours"`

	BusinessAddressStreet  string `json:"business_address_street"`
	BusinessAddressCity    string `json:"business_address_city"`
	BusinessAddressState   string `json:"business_address_state"`
	BusinessAddressPostal  string `json:"business_address_postal"`
	BusinessAddressCountry string `json:"business_address_country"`

	BusinessLinkedin string `json:"business_linkedin"`
	BusinessTwitter  string `json:"business_twitter"`

	PersonalURL      string `json:"personal_url"`
	PersonalBio      string `json:"personal_bio"`
	PersonalBirthday string `json:"personal_birthday"`

	Extra StringMap `json:"extra"`
}

// Projection returns the relational view of the record: the five searchable
// fields plus keys and timestamps.
func (c *ContactRecordFull) Projection() *ContactRecord {
	return &ContactRecord{
		ID:           c.ID,
		BatchID:      c.BatchID,
		FullName:     c.FullName,
		WorkPhone:    c.WorkPhone,
		MobilePhone:  c.MobilePhone,
		Email:        c.Email,
		BusinessName: c.BusinessName,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}
