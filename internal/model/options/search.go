package options

import (
	"context"
	"time"
)

const (
	// DefaultPageSize matches the original admin listing.
	DefaultPageSize = 25
	// MaxPageSize caps a single listing request.
	MaxPageSize = 500
)

// SearchOptions scopes one listing request.
type SearchOptions struct {
	context.Context
	Time   time.Time
	FormID int64
	Page   int
	Size   int
}

// NewSearchOptions normalizes paging: pages start at 1, size falls back to
// DefaultPageSize and is capped at MaxPageSize. An out-of-range page is kept
// as requested; it resolves to an empty page, not an error.
func NewSearchOptions(ctx context.Context, formID int64, page, size int) *SearchOptions {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return &SearchOptions{
		Context: ctx,
		Time:    time.Now().UTC(),
		FormID:  formID,
		Page:    page,
		Size:    size,
	}
}

// Offset returns the row offset of the requested page.
func (o *SearchOptions) Offset() uint64 {
	return uint64(o.Page-1) * uint64(o.Size)
}
