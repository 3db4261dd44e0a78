package contactd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// Run starts the HTTP server and blocks until the context is cancelled or
// the server fails. On cancellation active requests get up to five seconds
// to complete.
//
// Endpoints:
//
//	GET    /api/health                    - service health
//	GET    /api/records                   - search records by projection fields
//	GET    /api/records/{id}              - full record
//	PATCH  /api/records/{id}              - partial field update
//	DELETE /api/records/{id}              - delete record from both stores
//	POST   /api/batches                   - register an uploaded batch file
//	GET    /api/batches                   - list own batches
//	GET    /api/batches/{id}              - batch detail
//	DELETE /api/batches/{id}              - delete batch with all records
//	GET    /api/batches/{id}/records      - page of the batch's full records
//
// The acting user is taken from the X-User-ID header; batch and record
// operations are scoped to the batches that user owns.
func (a *App) Run(ctx context.Context, cmd *RunCommand) error {
	router := a.Router()

	addr := fmt.Sprintf(":%s", a.config.ServerPort)
	a.log.Info().Str("addr", addr).Msg("starting server")

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-serverErr:
		return err
	}
}

// Router builds the API routes. Split out from Run so handler tests can
// serve requests without a listening socket.
func (a *App) Router() *mux.Router {
	router := mux.NewRouter()
	api := router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", a.handleHealth).Methods("GET")

	api.HandleFunc("/records", a.handleSearchRecords).Methods("GET")
	api.HandleFunc("/records/{id}", a.handleGetRecord).Methods("GET")
	api.HandleFunc("/records/{id}", a.handleUpdateRecord).Methods("PATCH")
	api.HandleFunc("/records/{id}", a.handleDeleteRecord).Methods("DELETE")

	api.HandleFunc("/batches", a.handleCreateBatch).Methods("POST")
	api.HandleFunc("/batches", a.handleListBatches).Methods("GET")
	api.HandleFunc("/batches/{id}", a.handleGetBatch).Methods("GET")
	api.HandleFunc("/batches/{id}", a.handleDeleteBatch).Methods("DELETE")
	api.HandleFunc("/batches/{id}/records", a.handleListBatchRecords).Methods("GET")

	return router
}
