// Package contacts is the coordination layer between the two halves of a
// contact record: the relational projection used for search and the
// wide-column full record used for detail reads.
//
// There is no distributed transaction, no two-phase commit and no
// cross-store locking here. The two stores fail independently, so
// consistency between them is best effort with narrow, known divergence
// windows:
//
//   - Updates write both stores concurrently; if one write fails after the
//     other committed, the stores disagree on up to five fields until the
//     next successful update. The failure is reported to the caller as a
//     single error with no compensating rollback.
//   - Deletes run wide-column first, relational second, so a failure
//     between the two leaves a projection row pointing at a missing full
//     record — which readers absorb as "not found" — rather than a full
//     record unreachable from search.
//
// There is no background reconciliation of drifted stores; an orphaned row
// stays orphaned until a later mutation or delete covers it. Readers are
// therefore written to treat a missing counterpart row as data, not
// failure.
//
// The wide store is authoritative for reads: detail fetches and the
// post-update re-read come from it, never from the caller's input.
package contacts

import (
	"github.com/rs/zerolog"

	"github.com/ecardhq/contactd/pkg/store"
)

// Service coordinates the projection and record stores. Both clients are
// constructed once at process start and injected; Service holds no other
// state and is safe for concurrent use.
type Service struct {
	projections store.ProjectionStore
	records     store.RecordStore
	log         zerolog.Logger
}

func NewService(projections store.ProjectionStore, records store.RecordStore, log zerolog.Logger) *Service {
	return &Service{
		projections: projections,
		records:     records,
		log:         log.With().Str("component", "contacts").Logger(),
	}
}
