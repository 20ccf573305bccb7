package options

import (
	"context"
	"time"
)

// DeleteOptions scopes one bulk-delete request to a form and the selected
// submission identifiers.
type DeleteOptions struct {
	context.Context
	Time   time.Time
	FormID int64
	IDs    []int64
}

// NewDeleteOptions deduplicates ids (the wire carries a checkbox per row, so
// duplicates are client bugs, not intent) while preserving first-seen order.
func NewDeleteOptions(ctx context.Context, formID int64, ids []int64) *DeleteOptions {
	seen := make(map[int64]struct{}, len(ids))
	unique := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	return &DeleteOptions{
		Context: ctx,
		Time:    time.Now().UTC(),
		FormID:  formID,
		IDs:     unique,
	}
}
