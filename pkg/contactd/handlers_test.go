package contactd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ecardhq/contactd/pkg/contacts"
	"github.com/ecardhq/contactd/pkg/ingest"
	"github.com/ecardhq/contactd/pkg/models"
	"github.com/ecardhq/contactd/pkg/storage"
	"github.com/ecardhq/contactd/pkg/store"
	"github.com/ecardhq/contactd/pkg/store/postgres"
)

// memoryRecordStore is an in-memory stand-in for the wide store.
type memoryRecordStore struct {
	mu      sync.Mutex
	records map[models.BatchRecordID]*models.ContactRecordFull
}

func newMemoryRecordStore() *memoryRecordStore {
	return &memoryRecordStore{records: make(map[models.BatchRecordID]*models.ContactRecordFull)}
}

func (m *memoryRecordStore) Migrate(ctx context.Context) error { return nil }
func (m *memoryRecordStore) Close() error                      { return nil }

func (m *memoryRecordStore) CreateRecord(ctx context.Context, record *models.ContactRecordFull) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[record.ID] = record
	return nil
}

func (m *memoryRecordStore) GetRecord(ctx context.Context, id models.BatchRecordID) (*models.ContactRecordFull, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.records[id], nil
}

func (m *memoryRecordStore) UpdateRecordFields(ctx context.Context, id models.BatchRecordID, updates models.FieldUpdates) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.records[id]
	if !ok {
		return fmt.Errorf("no record %s", id)
	}
	updates.Apply(record)
	record.UpdatedAt = time.Now()
	return nil
}

func (m *memoryRecordStore) DeleteRecord(ctx context.Context, id models.BatchRecordID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, id)
	return nil
}

func (m *memoryRecordStore) DeleteBatchRecords(ctx context.Context, batchID models.BatchID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, r := range m.records {
		if r.BatchID == batchID {
			delete(m.records, id)
		}
	}
	return nil
}

type testApp struct {
	app         *App
	projections store.ProjectionStore
	records     *memoryRecordStore
	storageDir  string
	userID      models.UserID
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	// Each pool connection would get its own in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	projections := postgres.New(db)
	require.NoError(t, projections.Migrate(context.Background()))

	records := newMemoryRecordStore()
	dir := t.TempDir()
	files := storage.NewLocal(dir, zerolog.Nop())
	log := zerolog.Nop()

	a := &App{
		config:      &Config{ServerPort: "0"},
		log:         log,
		projections: projections,
		records:     records,
		contacts:    contacts.NewService(projections, records, log),
		files:       files,
		ingestor:    ingest.NewIngestor(projections, records, files, log),
	}
	return &testApp{
		app:         a,
		projections: projections,
		records:     records,
		storageDir:  dir,
		userID:      models.NewUserID(),
	}
}

func (ta *testApp) seedBatch(t *testing.T) *models.Batch {
	t.Helper()
	batch := &models.Batch{
		UserID:   ta.userID,
		FileName: "contacts.csv",
		FilePath: "contacts.csv",
		Status:   models.BatchStatusParsed,
	}
	require.NoError(t, ta.projections.CreateBatch(context.Background(), batch))
	return batch
}

func (ta *testApp) seedRecord(t *testing.T, batchID models.BatchID, email string) *models.ContactRecordFull {
	t.Helper()
	ctx := context.Background()
	full := &models.ContactRecordFull{
		ID:           models.NewBatchRecordID(),
		BatchID:      batchID,
		FullName:     "Maria Rodriguez",
		WorkPhone:    "2222-3333",
		MobilePhone:  "8888-7777",
		Email:        email,
		BusinessName: "ACME",
		Extra:        models.StringMap{},
	}
	require.NoError(t, ta.records.CreateRecord(ctx, full))
	require.NoError(t, ta.projections.CreateRecord(ctx, full.Projection()))
	return full
}

func (ta *testApp) request(t *testing.T, method, path string, body any, asUser bool) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if asUser {
		req.Header.Set("X-User-ID", ta.userID.String())
	}
	w := httptest.NewRecorder()
	ta.app.Router().ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	ta := newTestApp(t)
	w := ta.request(t, "GET", "/api/health", nil, false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestSearchRecordsHasMore(t *testing.T) {
	ta := newTestApp(t)
	batch := ta.seedBatch(t)
	for i := 0; i < 57; i++ {
		ta.seedRecord(t, batch.ID, fmt.Sprintf("user%02d@example.com", i))
	}

	w := ta.request(t, "GET", "/api/records?email=example&limit=20&offset=20", nil, true)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Records []json.RawMessage `json:"records"`
		Total   int64             `json:"total"`
		HasMore bool              `json:"has_more"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(57), resp.Total)
	assert.Len(t, resp.Records, 20)
	assert.True(t, resp.HasMore)

	w = ta.request(t, "GET", "/api/records?email=example&limit=20&offset=40", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Records, 17)
	assert.False(t, resp.HasMore)
}

func TestSearchRecordsInvalidBatchID(t *testing.T) {
	ta := newTestApp(t)
	w := ta.request(t, "GET", "/api/records?batch_id=banana", nil, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetRecord(t *testing.T) {
	ta := newTestApp(t)
	batch := ta.seedBatch(t)
	record := ta.seedRecord(t, batch.ID, "maria@example.com")

	w := ta.request(t, "GET", "/api/records/"+record.ID.String(), nil, true)
	require.Equal(t, http.StatusOK, w.Code)

	var got models.ContactRecordFull
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, record.ID, got.ID)
	assert.Equal(t, "maria@example.com", got.Email)
}

func TestGetRecordAuthFailures(t *testing.T) {
	ta := newTestApp(t)
	batch := ta.seedBatch(t)
	record := ta.seedRecord(t, batch.ID, "maria@example.com")

	// No user header.
	w := ta.request(t, "GET", "/api/records/"+record.ID.String(), nil, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Another user's record.
	req := httptest.NewRequest("GET", "/api/records/"+record.ID.String(), nil)
	req.Header.Set("X-User-ID", models.NewUserID().String())
	rec := httptest.NewRecorder()
	ta.app.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Unknown record.
	w = ta.request(t, "GET", "/api/records/"+models.NewBatchRecordID().String(), nil, true)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateRecord(t *testing.T) {
	ta := newTestApp(t)
	batch := ta.seedBatch(t)
	record := ta.seedRecord(t, batch.ID, "maria@example.com")

	w := ta.request(t, "PATCH", "/api/records/"+record.ID.String(), map[string]string{
		"email":        "new@example.com",
		"personal_bio": "likes hiking",
	}, true)
	require.Equal(t, http.StatusOK, w.Code)

	var got models.ContactRecordFull
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "new@example.com", got.Email)
	assert.Equal(t, "likes hiking", got.PersonalBio)

	// The projection caught the searchable change.
	projection, err := ta.projections.GetRecord(context.Background(), record.ID)
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", projection.Email)
}

func TestUpdateRecordRejectsUnknownField(t *testing.T) {
	ta := newTestApp(t)
	batch := ta.seedBatch(t)
	record := ta.seedRecord(t, batch.ID, "maria@example.com")

	w := ta.request(t, "PATCH", "/api/records/"+record.ID.String(), map[string]string{
		"shoe_size": "44",
	}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteRecordRefreshesCount(t *testing.T) {
	ta := newTestApp(t)
	ctx := context.Background()
	batch := ta.seedBatch(t)
	record := ta.seedRecord(t, batch.ID, "maria@example.com")
	ta.seedRecord(t, batch.ID, "second@example.com")

	w := ta.request(t, "DELETE", "/api/records/"+record.ID.String(), nil, true)
	assert.Equal(t, http.StatusNoContent, w.Code)

	got, err := ta.projections.GetBatch(ctx, batch.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.RecordsCount)

	full, err := ta.records.GetRecord(ctx, record.ID)
	require.NoError(t, err)
	assert.Nil(t, full)
}

func TestListBatchRecordsPage(t *testing.T) {
	ta := newTestApp(t)
	batch := ta.seedBatch(t)
	for i := 0; i < 5; i++ {
		ta.seedRecord(t, batch.ID, fmt.Sprintf("user%d@example.com", i))
	}

	w := ta.request(t, "GET", "/api/batches/"+batch.ID.String()+"/records?limit=3", nil, true)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Records []models.ContactRecordFull `json:"records"`
		Total   int64                      `json:"total"`
		HasMore bool                       `json:"has_more"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(5), resp.Total)
	assert.Len(t, resp.Records, 3)
	assert.True(t, resp.HasMore)
}

func TestBatchLifecycleOverHTTP(t *testing.T) {
	ta := newTestApp(t)

	// Place the uploaded file where local storage will find it.
	content := "Nombre completo,Correo,Celular\nMaria Rodriguez,maria@example.com,88887777\n"
	require.NoError(t, os.WriteFile(filepath.Join(ta.storageDir, "contacts.csv"), []byte(content), 0o644))

	w := ta.request(t, "POST", "/api/batches", createBatchRequest{
		FileName: "contacts.csv",
		FilePath: "contacts.csv",
	}, true)
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.Batch
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.False(t, created.ID.IsZero())

	// Ingestion runs in the background after the response.
	require.Eventually(t, func() bool {
		batch, err := ta.projections.GetBatch(context.Background(), created.ID)
		return err == nil && batch != nil && batch.Status == models.BatchStatusParsed
	}, 5*time.Second, 20*time.Millisecond)

	batch, err := ta.projections.GetBatch(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), batch.RecordsCount)

	// And the batch is visible in the listing.
	w = ta.request(t, "GET", "/api/batches", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	var batches []models.Batch
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &batches))
	assert.Len(t, batches, 1)
}

func TestDeleteBatch(t *testing.T) {
	ta := newTestApp(t)
	ctx := context.Background()
	batch := ta.seedBatch(t)
	record := ta.seedRecord(t, batch.ID, "maria@example.com")

	w := ta.request(t, "DELETE", "/api/batches/"+batch.ID.String(), nil, true)
	assert.Equal(t, http.StatusNoContent, w.Code)

	got, err := ta.projections.GetBatch(ctx, batch.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	full, err := ta.records.GetRecord(ctx, record.ID)
	require.NoError(t, err)
	assert.Nil(t, full)
}

func TestParseSubcommands(t *testing.T) {
	cmd, err := Parse([]string{"run"})
	require.NoError(t, err)
	assert.Equal(t, "run", cmd.Name())

	cmd, err = Parse([]string{"migrate"})
	require.NoError(t, err)
	assert.Equal(t, "migrate", cmd.Name())

	id := models.NewBatchID()
	cmd, err = Parse([]string{"ingest", id.String()})
	require.NoError(t, err)
	assert.Equal(t, id, cmd.(*IngestCommand).BatchID)

	_, err = Parse([]string{"ingest"})
	assert.Error(t, err)

	_, err = Parse([]string{})
	assert.Error(t, err)

	_, err = Parse([]string{"dance"})
	assert.Error(t, err)
}
