package contacts

import (
	"context"
	"fmt"

	"github.com/ecardhq/contactd/pkg/store"
)

// SearchRecords runs a filtered, paginated query against the projection
// store and returns the page plus the total match count. Read-only; the
// wide store is never touched.
//
// Email, full name and business name filters match case-insensitive
// substrings; the phone filters match substrings verbatim. Results are
// ordered most recent first. Limit and offset bounds are the caller's
// responsibility; a limit of zero yields an empty page with Total intact.
func (s *Service) SearchRecords(ctx context.Context, filter store.RecordFilter) (*store.RecordPage, error) {
	page, err := s.projections.SearchRecords(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("search records: %w", err)
	}
	return page, nil
}
