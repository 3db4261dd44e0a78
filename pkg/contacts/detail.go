package contacts

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/ecardhq/contactd/pkg/models"
	"github.com/ecardhq/contactd/pkg/store"
)

// FullRecordPage is a page of full records for a batch. Total is the count
// of projection rows in the batch ignoring pagination; the Records slice
// can be shorter than the requested page when a projection row had no
// matching full record.
type FullRecordPage struct {
	Records []*models.ContactRecordFull `json:"records"`
	Total   int64                       `json:"total"`
}

// GetFullRecord fetches the complete record from the wide store by primary
// key. A nil result with nil error means no such record exists — a normal
// outcome, not a failure; a projection row may reference a full record that
// a half-finished mutation removed.
func (s *Service) GetFullRecord(ctx context.Context, id models.BatchRecordID) (*models.ContactRecordFull, error) {
	record, err := s.records.GetRecord(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get record %s: %w", id, err)
	}
	return record, nil
}

// GetRecord is GetFullRecord behind an ownership check: the acting user
// must own the batch the record belongs to, and a missing full record is an
// error here rather than a nil result.
func (s *Service) GetRecord(ctx context.Context, id models.BatchRecordID, actingUserID models.UserID) (*models.ContactRecordFull, error) {
	if _, err := s.authorizeRecord(ctx, id, actingUserID); err != nil {
		return nil, err
	}
	record, err := s.GetFullRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("record %s: %w", id, store.ErrNotFound)
	}
	return record, nil
}

// ListBatchRecords returns one page of full records for a batch the acting
// user owns. The page and total come from the projection store; the full
// records are then fetched concurrently from the wide store.
//
// A projection row whose full record is missing is dropped from the page
// rather than reported as an error, so the page can shrink below the
// requested size. Surviving entries keep the projection ordering.
func (s *Service) ListBatchRecords(ctx context.Context, batchID models.BatchID, actingUserID models.UserID, limit, offset int) (*FullRecordPage, error) {
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

	page, err := s.projections.SearchRecords(ctx, store.RecordFilter{
		BatchID: batchID,
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		return nil, fmt.Errorf("list batch %s records: %w", batchID, err)
	}

	// Fan out the full-record fetches; slots keep projection order.
	slots := make([]*models.ContactRecordFull, len(page.Records))
	g, gctx := errgroup.WithContext(ctx)
	for i, projection := range page.Records {
		g.Go(func() error {
			record, err := s.records.GetRecord(gctx, projection.ID)
			if err != nil {
				return fmt.Errorf("get record %s: %w", projection.ID, err)
			}
			slots[i] = record
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	records := make([]*models.ContactRecordFull, 0, len(slots))
	for i, record := range slots {
		if record == nil {
			// Dangling projection reference; drop the entry.
			s.log.Warn().
				Stringer("record_id", page.Records[i].ID).
				Stringer("batch_id", batchID).
				Msg("projection row has no full record, omitting from page")
			continue
		}
		records = append(records, record)
	}

	return &FullRecordPage{Records: records, Total: page.Total}, nil
}
