// Package ingest turns an uploaded batch file into paired rows in both
// stores. It downloads the file, reduces it to a header-and-rows table,
// maps columns onto canonical contact fields, and drives the batch through
// its status lifecycle (PENDING, PARSING, then PARSED or ERROR).
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ecardhq/contactd/pkg/models"
	"github.com/ecardhq/contactd/pkg/storage"
	"github.com/ecardhq/contactd/pkg/store"
)

// Ingestor processes one batch at a time against both stores.
type Ingestor struct {
	projections store.ProjectionStore
	records     store.RecordStore
	files       *storage.Client
	log         zerolog.Logger
}

func NewIngestor(projections store.ProjectionStore, records store.RecordStore, files *storage.Client, log zerolog.Logger) *Ingestor {
	return &Ingestor{
		projections: projections,
		records:     records,
		files:       files,
		log:         log.With().Str("component", "ingest").Logger(),
	}
}

// Run ingests the batch's file end to end. Every row produces one full
// record and one projection row; the full record is written first so a
// visible projection row always resolves. A failing row aborts the run
// rather than being skipped, otherwise the stores silently diverge. On any
// failure the batch is marked ERROR with the cause; on success it is marked
// PARSED and its record count is recomputed from the projection table.
func (ing *Ingestor) Run(ctx context.Context, batchID models.BatchID) error {
	batch, err := ing.projections.GetBatch(ctx, batchID)
	if err != nil {
		return fmt.Errorf("load batch %s: %w", batchID, err)
	}
	if batch == nil {
		return fmt.Errorf("load batch %s: %w", batchID, store.ErrNotFound)
	}

	if err := ing.process(ctx, batch); err != nil {
		ing.log.Error().Err(err).Stringer("batch_id", batch.ID).Msg("ingestion failed")
		if markErr := ing.markError(ctx, batch, err); markErr != nil {
			ing.log.Error().Err(markErr).Stringer("batch_id", batch.ID).Msg("could not record batch error state")
		}
		return err
	}
	return nil
}

func (ing *Ingestor) process(ctx context.Context, batch *models.Batch) error {
	now := time.Now()
	batch.Status = models.BatchStatusParsing
	batch.ParsingStartedAt = &now
	if err := ing.projections.UpdateBatch(ctx, batch); err != nil {
		return fmt.Errorf("mark batch parsing: %w", err)
	}

	ing.log.Info().Stringer("batch_id", batch.ID).Str("file", batch.FilePath).Msg("downloading batch file")
	local, err := ing.files.Download(ctx, batch.FilePath)
	if err != nil {
		return fmt.Errorf("download %s: %w", batch.FilePath, err)
	}
	defer ing.files.Cleanup(local)

	table, err := ParseFile(local)
	if err != nil {
		return fmt.Errorf("parse %s: %w", batch.FileName, err)
	}
	if table.Len() == 0 {
		return fmt.Errorf("parse %s: no data extracted from file", batch.FileName)
	}
	ing.log.Info().Stringer("batch_id", batch.ID).Int("rows", table.Len()).Msg("parsed batch file")

	var processed int64
	for _, row := range table.Rows {
		mapped, extra := MapRow(table.Headers, row)
		if err := ing.insertRecord(ctx, batch.ID, mapped, extra); err != nil {
			return fmt.Errorf("row %d: %w", processed+1, err)
		}
		processed++
		if processed%100 == 0 {
			ing.log.Info().
				Stringer("batch_id", batch.ID).
				Int64("processed", processed).
				Int("total", table.Len()).
				Msg("ingestion progress")
		}
	}

	count, err := ing.projections.CountRecords(ctx, batch.ID)
	if err != nil {
		return fmt.Errorf("recount batch %s: %w", batch.ID, err)
	}

	done := time.Now()
	batch.Status = models.BatchStatusParsed
	batch.ErrorMessage = ""
	batch.RecordsCount = count
	batch.RecordsProcessed = processed
	batch.ParsingCompletedAt = &done
	batch.ProcessedAt = &done
	if err := ing.projections.UpdateBatch(ctx, batch); err != nil {
		return fmt.Errorf("mark batch parsed: %w", err)
	}

	ing.log.Info().
		Stringer("batch_id", batch.ID).
		Int64("records", count).
		Msg("batch ingested")
	return nil
}

func (ing *Ingestor) insertRecord(ctx context.Context, batchID models.BatchID, mapped models.FieldUpdates, extra models.StringMap) error {
	full := &models.ContactRecordFull{
		ID:      models.NewBatchRecordID(),
		BatchID: batchID,
		Extra:   extra,
	}
	mapped.Apply(full)

	if err := ing.records.CreateRecord(ctx, full); err != nil {
		return fmt.Errorf("create full record: %w", err)
	}
	if err := ing.projections.CreateRecord(ctx, full.Projection()); err != nil {
		return fmt.Errorf("create projection row: %w", err)
	}
	return nil
}

func (ing *Ingestor) markError(ctx context.Context, batch *models.Batch, cause error) error {
	now := time.Now()
	batch.Status = models.BatchStatusError
	batch.ErrorMessage = cause.Error()
	batch.ParsingCompletedAt = &now
	return ing.projections.UpdateBatch(ctx, batch)
}
