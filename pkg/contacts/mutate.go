package contacts

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/ecardhq/contactd/pkg/models"
	"github.com/ecardhq/contactd/pkg/store"
)

// authorizeRecord resolves the projection row and verifies the acting user
// owns the batch it belongs to. Both checks happen before any store
// mutation so a rejected call never leaves a half-applied write behind.
func (s *Service) authorizeRecord(ctx context.Context, id models.BatchRecordID, actingUserID models.UserID) (*models.ContactRecord, error) {
	record, owner, err := s.projections.GetRecordOwner(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("resolve record %s: %w", id, err)
	}
	if record == nil {
		return nil, fmt.Errorf("record %s: %w", id, store.ErrNotFound)
	}
	if owner != actingUserID {
		return nil, fmt.Errorf("record %s: %w", id, store.ErrUnauthorized)
	}
	return record, nil
}

// UpdateRecord applies a partial update to a contact record in both stores
// and returns the record as the wide store now holds it.
//
// The update map is partitioned: the searchable subset goes to the
// relational projection, the whole set to the wide store, which also bumps
// its updated_at whether or not any field changed. The two writes are
// issued concurrently and awaited together. If either fails the operation
// fails as a whole; the store that already committed is not rolled back,
// and the caller cannot tell the two failure orders apart.
//
// The returned record is re-read from the wide store, never synthesized
// from the input: the input is sparse and the wide row is ground truth.
func (s *Service) UpdateRecord(ctx context.Context, id models.BatchRecordID, updates models.FieldUpdates, actingUserID models.UserID) (*models.ContactRecordFull, error) {
	if err := updates.Validate(); err != nil {
		return nil, fmt.Errorf("update record %s: %w", id, err)
	}

	if _, err := s.authorizeRecord(ctx, id, actingUserID); err != nil {
		return nil, err
	}

	searchable := updates.Searchable()

	g, gctx := errgroup.WithContext(ctx)
	if len(searchable) > 0 {
		g.Go(func() error {
			if err := s.projections.UpdateRecordFields(gctx, id, searchable); err != nil {
				return fmt.Errorf("projection update: %w", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		if err := s.records.UpdateRecordFields(gctx, id, updates); err != nil {
			return fmt.Errorf("record update: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		// One store may have committed; the stores can now disagree until a
		// later write covers the same fields.
		s.log.Error().Err(err).Stringer("record_id", id).Msg("partial update failure across stores")
		return nil, fmt.Errorf("update record %s: %w", id, err)
	}

	record, err := s.records.GetRecord(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reload record %s: %w", id, err)
	}
	if record == nil {
		return nil, fmt.Errorf("record %s after update: %w", id, store.ErrNotFound)
	}
	return record, nil
}

// DeleteRecord removes a contact record from both stores and refreshes the
// batch's denormalized record count.
//
// The steps are strictly sequential and the order is the correctness
// mechanism, not a performance choice: the wide row goes first (nothing
// references it), the projection row second, the count recompute last. A
// failure after the first step leaves a projection row pointing at a
// missing full record, which readers absorb as not-found; the reverse
// order would instead leave a full record invisible to search.
func (s *Service) DeleteRecord(ctx context.Context, id models.BatchRecordID, actingUserID models.UserID) error {
	record, err := s.authorizeRecord(ctx, id, actingUserID)
	if err != nil {
		return err
	}

	if err := s.records.DeleteRecord(ctx, id); err != nil {
		return fmt.Errorf("delete record %s: %w", id, err)
	}

	if err := s.projections.DeleteRecord(ctx, id); err != nil {
		return fmt.Errorf("delete projection %s: %w", id, err)
	}

	if _, err := s.RefreshBatchCount(ctx, record.BatchID); err != nil {
		return fmt.Errorf("delete record %s: %w", id, err)
	}
	return nil
}

// RefreshBatchCount recomputes a batch's record count from a full COUNT of
// its projection rows and persists it onto the batch. Recomputing rather
// than decrementing means any earlier drift disappears here instead of
// accumulating.
func (s *Service) RefreshBatchCount(ctx context.Context, batchID models.BatchID) (int64, error) {
	count, err := s.projections.CountRecords(ctx, batchID)
	if err != nil {
		return 0, fmt.Errorf("count batch %s records: %w", batchID, err)
	}
	if err := s.projections.SetRecordsCount(ctx, batchID, count); err != nil {
		return 0, fmt.Errorf("persist batch %s count: %w", batchID, err)
	}
	return count, nil
}

// CreateBatch registers an uploaded file as a new PENDING batch. Ingestion
// runs separately; until it does the batch has no records.
func (s *Service) CreateBatch(ctx context.Context, userID models.UserID, fileName, filePath string) (*models.Batch, error) {
	batch := &models.Batch{
		UserID:   userID,
		FileName: fileName,
		FilePath: filePath,
		Status:   models.BatchStatusPending,
	}
	if err := s.projections.CreateBatch(ctx, batch); err != nil {
		return nil, fmt.Errorf("create batch: %w", err)
	}
	return batch, nil
}

// GetBatch returns a batch the acting user owns.
func (s *Service) GetBatch(ctx context.Context, batchID models.BatchID, actingUserID models.UserID) (*models.Batch, error) {
	batch, err := s.projections.GetBatch(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("get batch %s: %w", batchID, err)
	}
	if batch == nil {
		return nil, fmt.Errorf("batch %s: %w", batchID, store.ErrNotFound)
	}
	if batch.UserID != actingUserID {
		return nil, fmt.Errorf("batch %s: %w", batchID, store.ErrUnauthorized)
	}
	return batch, nil
}

// ListBatches returns the acting user's batches, most recent first.
func (s *Service) ListBatches(ctx context.Context, actingUserID models.UserID) ([]*models.Batch, error) {
	batches, err := s.projections.ListBatches(ctx, actingUserID)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	return batches, nil
}

// DeleteBatch removes a batch with all of its records from both stores.
// Same ordering rationale as DeleteRecord: the wide rows go before the
// relational rows and the batch aggregate.
func (s *Service) DeleteBatch(ctx context.Context, batchID models.BatchID, actingUserID models.UserID) error {
	if _, err := s.GetBatch(ctx, batchID, actingUserID); err != nil {
		return err
	}

	if err := s.records.DeleteBatchRecords(ctx, batchID); err != nil {
		return fmt.Errorf("delete batch %s records: %w", batchID, err)
	}
	if err := s.projections.DeleteBatch(ctx, batchID); err != nil {
		return fmt.Errorf("delete batch %s: %w", batchID, err)
	}
	return nil
}
