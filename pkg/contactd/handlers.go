package contactd

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/ecardhq/contactd/pkg/models"
	"github.com/ecardhq/contactd/pkg/store"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps the service error taxonomy onto HTTP statuses.
func (a *App) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrUnauthorized):
		respondError(w, http.StatusForbidden, "forbidden")
	default:
		a.log.Error().Err(err).Msg("request failed")
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

// actingUser reads the authenticated user from the X-User-ID header. The
// gateway in front of this service resolves credentials to a user id;
// requests without one are rejected.
func actingUser(r *http.Request) (models.UserID, error) {
	raw := r.Header.Get("X-User-ID")
	if raw == "" {
		return models.UserID{}, errors.New("missing X-User-ID header")
	}
	return models.ParseUserID(raw)
}

// parsePage reads limit and offset query parameters. The limit is clamped
// to [1, 100] and defaults to 20; the offset defaults to 0.
func parsePage(r *http.Request) (limit, offset int) {
	limit = defaultPageSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			offset = n
		}
	}
	return limit, offset
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

type recordPageResponse struct {
	Records any   `json:"records"`
	Total   int64 `json:"total"`
	HasMore bool  `json:"has_more"`
}

func (a *App) handleSearchRecords(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.RecordFilter{
		Email:        q.Get("email"),
		FullName:     q.Get("full_name"),
		BusinessName: q.Get("business_name"),
		WorkPhone:    q.Get("work_phone"),
		MobilePhone:  q.Get("mobile_phone"),
	}
	if raw := q.Get("batch_id"); raw != "" {
		batchID, err := models.ParseBatchID(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid batch id")
			return
		}
		filter.BatchID = batchID
	}
	filter.Limit, filter.Offset = parsePage(r)

	page, err := a.contacts.SearchRecords(r.Context(), filter)
	if err != nil {
		a.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, recordPageResponse{
		Records: page.Records,
		Total:   page.Total,
		HasMore: int64(filter.Offset+filter.Limit) < page.Total,
	})
}

func recordID(r *http.Request) (models.BatchRecordID, error) {
	return models.ParseBatchRecordID(mux.Vars(r)["id"])
}

func batchID(r *http.Request) (models.BatchID, error) {
	return models.ParseBatchID(mux.Vars(r)["id"])
}

func (a *App) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	id, err := recordID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid record id")
		return
	}
	userID, err := actingUser(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, err.Error())
		return
	}

	record, err := a.contacts.GetRecord(r.Context(), id, userID)
	if err != nil {
		a.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, record)
}

func (a *App) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	id, err := recordID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid record id")
		return
	}
	userID, err := actingUser(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, err.Error())
		return
	}

	var body map[string]string
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if len(body) == 0 {
		respondError(w, http.StatusBadRequest, "no fields to update")
		return
	}
	updates := make(models.FieldUpdates, len(body))
	for name, value := range body {
		field, err := models.ParseField(name)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		updates[field] = value
	}

	record, err := a.contacts.UpdateRecord(r.Context(), id, updates, userID)
	if err != nil {
		a.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, record)
}

func (a *App) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	id, err := recordID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid record id")
		return
	}
	userID, err := actingUser(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, err.Error())
		return
	}

	if err := a.contacts.DeleteRecord(r.Context(), id, userID); err != nil {
		a.respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type createBatchRequest struct {
	FileName string `json:"file_name"`
	FilePath string `json:"file_path"`
}

func (a *App) handleCreateBatch(w http.ResponseWriter, r *http.Request) {
	userID, err := actingUser(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, err.Error())
		return
	}

	var req createBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if req.FileName == "" || req.FilePath == "" {
		respondError(w, http.StatusBadRequest, "file_name and file_path are required")
		return
	}

	batch, err := a.contacts.CreateBatch(r.Context(), userID, req.FileName, req.FilePath)
	if err != nil {
		a.respondServiceError(w, err)
		return
	}

	// Ingestion runs after the response; its progress is visible through
	// the batch status.
	go func() {
		if err := a.ingestor.Run(context.Background(), batch.ID); err != nil {
			a.log.Error().Err(err).Stringer("batch_id", batch.ID).Msg("background ingestion failed")
		}
	}()

	respondJSON(w, http.StatusCreated, batch)
}

func (a *App) handleListBatches(w http.ResponseWriter, r *http.Request) {
	userID, err := actingUser(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, err.Error())
		return
	}

	batches, err := a.contacts.ListBatches(r.Context(), userID)
	if err != nil {
		a.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, batches)
}

func (a *App) handleGetBatch(w http.ResponseWriter, r *http.Request) {
	id, err := batchID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid batch id")
		return
	}
	userID, err := actingUser(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, err.Error())
		return
	}

	batch, err := a.contacts.GetBatch(r.Context(), id, userID)
	if err != nil {
		a.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, batch)
}

func (a *App) handleDeleteBatch(w http.ResponseWriter, r *http.Request) {
	id, err := batchID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid batch id")
		return
	}
	userID, err := actingUser(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, err.Error())
		return
	}

	if err := a.contacts.DeleteBatch(r.Context(), id, userID); err != nil {
		a.respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) handleListBatchRecords(w http.ResponseWriter, r *http.Request) {
	id, err := batchID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid batch id")
		return
	}
	userID, err := actingUser(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, err.Error())
		return
	}
	limit, offset := parsePage(r)

	page, err := a.contacts.ListBatchRecords(r.Context(), id, userID, limit, offset)
	if err != nil {
		a.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, recordPageResponse{
		Records: page.Records,
		Total:   page.Total,
		HasMore: int64(offset+limit) < page.Total,
	})
}
