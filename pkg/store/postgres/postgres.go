// Package postgres provides the PostgreSQL implementation of
// [github.com/ecardhq/contactd/pkg/store.ProjectionStore] using GORM.
//
// This side of the split holds the batches table and one projection row per
// contact record: the five searchable fields, the batch foreign key and
// timestamps. All filtered, paginated, counted queries run here; detail
// reads go to the wide store.
//
// GORM handles SQL generation, connection pooling and schema migration via
// AutoMigrate. Individual operations are wrapped in transactions by GORM;
// nothing here coordinates with the wide store — that is the service
// layer's job, and the reason these operations stay small and idempotent.
//
// The substring filters are rendered as LIKE against a lowercased column
// for the case-folded fields and plain LIKE for the phone fields. Both
// forms are portable SQL, which also lets the tests run this exact query
// path against an in-memory SQLite database.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/ecardhq/contactd/pkg/models"
	"github.com/ecardhq/contactd/pkg/store"
)

// Store implements store.ProjectionStore on a relational database.
type Store struct {
	db *gorm.DB
}

// Open connects to PostgreSQL and returns a projection store.
// A production deployment would also configure MaxIdleConns, MaxOpenConns
// and ConnMaxLifetime on the underlying sql.DB.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return New(db), nil
}

// New wraps an existing GORM handle. Tests use this to run the store
// against a SQLite-backed handle.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates or updates the batches and contact_records tables.
// AutoMigrate only adds missing schema elements; it never drops data, so it
// is safe to run on every start.
func (s *Store) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(
		&models.Batch{},
		&models.ContactRecord{},
	)
}

// Close closes the database connection
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Batch operations

func (s *Store) CreateBatch(ctx context.Context, batch *models.Batch) error {
	return s.db.WithContext(ctx).Create(batch).Error
}

func (s *Store) GetBatch(ctx context.Context, id models.BatchID) (*models.Batch, error) {
	var batch models.Batch
	err := s.db.WithContext(ctx).First(&batch, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &batch, nil
}

func (s *Store) ListBatches(ctx context.Context, userID models.UserID) ([]*models.Batch, error) {
	var batches []*models.Batch
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&batches).Error
	return batches, err
}

func (s *Store) UpdateBatch(ctx context.Context, batch *models.Batch) error {
	return s.db.WithContext(ctx).Save(batch).Error
}

// DeleteBatch removes a batch and all of its projection rows. The two
// deletes share a transaction; the wide-store cascade is issued separately
// by the caller.
func (s *Store) DeleteBatch(ctx context.Context, id models.BatchID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.ContactRecord{}, "batch_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Batch{}, "id = ?", id).Error
	})
}

// CountRecords counts the projection rows of a batch. The denormalized
// counter on Batch is always refreshed from this full count rather than
// decremented, so any prior drift heals on the next recompute.
func (s *Store) CountRecords(ctx context.Context, batchID models.BatchID) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.ContactRecord{}).
		Where("batch_id = ?", batchID).
		Count(&count).Error
	return count, err
}

func (s *Store) SetRecordsCount(ctx context.Context, batchID models.BatchID, count int64) error {
	return s.db.WithContext(ctx).
		Model(&models.Batch{}).
		Where("id = ?", batchID).
		Update("records_count", count).Error
}

// Projection row operations

func (s *Store) CreateRecord(ctx context.Context, record *models.ContactRecord) error {
	return s.db.WithContext(ctx).Create(record).Error
}

func (s *Store) GetRecord(ctx context.Context, id models.BatchRecordID) (*models.ContactRecord, error) {
	var record models.ContactRecord
	err := s.db.WithContext(ctx).First(&record, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// GetRecordOwner loads the projection row joined with its batch so callers
// can resolve ownership in one round trip.
func (s *Store) GetRecordOwner(ctx context.Context, id models.BatchRecordID) (*models.ContactRecord, models.UserID, error) {
	var record models.ContactRecord
	err := s.db.WithContext(ctx).
		Joins("Batch").
		First(&record, "contact_records.id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.UserID{}, nil
		}
		return nil, models.UserID{}, err
	}

	var owner models.UserID
	if record.Batch != nil {
		owner = record.Batch.UserID
	}
	return &record, owner, nil
}

// SearchRecords runs the filtered, paginated projection query. Total is the
// match count ignoring Limit/Offset; a Limit of zero yields an empty page
// with the total still correct.
func (s *Store) SearchRecords(ctx context.Context, filter store.RecordFilter) (*store.RecordPage, error) {
	query := s.db.WithContext(ctx).Model(&models.ContactRecord{})

	// Case-insensitive substring filters.
	if filter.Email != "" {
		query = query.Where("LOWER(email) LIKE ?", containsPattern(strings.ToLower(filter.Email)))
	}
	if filter.FullName != "" {
		query = query.Where("LOWER(full_name) LIKE ?", containsPattern(strings.ToLower(filter.FullName)))
	}
	if filter.BusinessName != "" {
		query = query.Where("LOWER(business_name) LIKE ?", containsPattern(strings.ToLower(filter.BusinessName)))
	}

	// Phone filters match verbatim; no case folding on digit strings.
	if filter.WorkPhone != "" {
		query = query.Where("work_phone LIKE ?", containsPattern(filter.WorkPhone))
	}
	if filter.MobilePhone != "" {
		query = query.Where("mobile_phone LIKE ?", containsPattern(filter.MobilePhone))
	}

	if !filter.BatchID.IsZero() {
		query = query.Where("batch_id = ?", filter.BatchID)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count records: %w", err)
	}

	records := []*models.ContactRecord{}
	err := query.Session(&gorm.Session{}).
		Order("created_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search records: %w", err)
	}

	return &store.RecordPage{Records: records, Total: total}, nil
}

// UpdateRecordFields applies a sparse column update to one projection row.
// GORM bumps updated_at alongside the mapped columns.
func (s *Store) UpdateRecordFields(ctx context.Context, id models.BatchRecordID, updates models.FieldUpdates) error {
	if len(updates) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).
		Model(&models.ContactRecord{}).
		Where("id = ?", id).
		Updates(updates.Columns()).Error
}

func (s *Store) DeleteRecord(ctx context.Context, id models.BatchRecordID) error {
	return s.db.WithContext(ctx).Delete(&models.ContactRecord{}, "id = ?", id).Error
}

func containsPattern(s string) string {
	return "%" + s + "%"
}
