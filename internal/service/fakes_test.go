package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/streamforms/submission-exporter/internal/cache"
	dberr "github.com/streamforms/submission-exporter/internal/errors"
	"github.com/streamforms/submission-exporter/internal/model"
	"github.com/streamforms/submission-exporter/internal/model/options"
	"github.com/streamforms/submission-exporter/internal/store"
)

// memStore implements store.Store over in-memory state, mirroring the
// postgres semantics the service relies on: newest-first ordering, whole-day
// date bounds, case-insensitive substring field filters, form-scoped delete.
type memStore struct {
	forms *memFormStore
	subs  *memSubmissionStore
}

func newMemStore() *memStore {
	subs := &memSubmissionStore{}
	return &memStore{
		forms: &memFormStore{byID: map[int64]*model.Form{}, subs: subs},
		subs:  subs,
	}
}

func (m *memStore) Form() store.FormStore             { return m.forms }
func (m *memStore) Submission() store.SubmissionStore { return m.subs }
func (m *memStore) Open() error                       { return nil }
func (m *memStore) Close() error                      { return nil }

type memFormStore struct {
	mu   sync.Mutex
	byID map[int64]*model.Form
	subs *memSubmissionStore
}

func (m *memFormStore) add(form *model.Form) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[form.ID] = form
}

func (m *memFormStore) Get(_ context.Context, id int64) (*model.Form, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	form, ok := m.byID[id]
	if !ok {
		return nil, dberr.NewDBNotFoundError("get_form", fmt.Sprintf("no form found for id=%d", id))
	}
	return form, nil
}

func (m *memFormStore) List(_ context.Context) ([]*model.FormOverview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.FormOverview
	for _, form := range m.byID {
		out = append(out, &model.FormOverview{
			ID:              form.ID,
			Slug:            form.Slug,
			Title:           form.Title,
			SubmissionCount: m.subs.countForForm(form.ID),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

type memSubmissionStore struct {
	mu     sync.Mutex
	nextID int64
	rows   []*model.Submission
}

func (m *memSubmissionStore) countForForm(formID int64) int64 {
	var n int64
	for _, sub := range m.rows {
		if sub.FormID == formID {
			n++
		}
	}
	return n
}

func (m *memSubmissionStore) matching(formID int64, criteria model.FilterCriteria) []*model.Submission {
	var out []*model.Submission
	for _, sub := range m.rows {
		if sub.FormID != formID {
			continue
		}
		if criteria.DateFrom != nil && sub.SubmittedAt.Before(*criteria.DateFrom) {
			continue
		}
		if criteria.DateTo != nil && !sub.SubmittedAt.Before(criteria.DateTo.AddDate(0, 0, 1)) {
			continue
		}
		if !matchesFields(sub, criteria.Fields) {
			continue
		}
		out = append(out, sub)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].SubmittedAt.After(out[j].SubmittedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func matchesFields(sub *model.Submission, preds []model.FieldPredicate) bool {
	for _, p := range preds {
		fv, ok := sub.Values.Get(p.Name)
		if !ok {
			return false
		}
		hit := false
		for _, v := range fv.Values {
			if strings.Contains(strings.ToLower(v), strings.ToLower(p.Value)) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	return true
}

func (m *memSubmissionStore) Search(opts *options.SearchOptions, criteria model.FilterCriteria) ([]*model.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.matching(opts.FormID, criteria)
	start := int(opts.Offset())
	if start >= len(all) {
		return nil, nil
	}
	end := start + opts.Size
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], nil
}

func (m *memSubmissionStore) SearchAll(opts *options.ExportOptions, criteria model.FilterCriteria) ([]*model.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matching(opts.FormID, criteria), nil
}

func (m *memSubmissionStore) Count(opts *options.SearchOptions, criteria model.FilterCriteria) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.matching(opts.FormID, criteria))), nil
}

func (m *memSubmissionStore) Delete(opts *options.DeleteOptions) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	wanted := make(map[int64]struct{}, len(opts.IDs))
	for _, id := range opts.IDs {
		wanted[id] = struct{}{}
	}
	var kept []*model.Submission
	var deleted int64
	for _, sub := range m.rows {
		if _, hit := wanted[sub.ID]; hit && sub.FormID == opts.FormID {
			deleted++
			continue
		}
		kept = append(kept, sub)
	}
	m.rows = kept
	return deleted, nil
}

func (m *memSubmissionStore) Insert(_ context.Context, input *model.NewSubmission) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	at := input.SubmittedAt
	if at.IsZero() {
		at = time.Now().UTC()
	}
	m.rows = append(m.rows, &model.Submission{
		ID:          m.nextID,
		FormID:      input.FormID,
		SubmittedAt: at,
		Values:      input.Values,
	})
	return m.nextID, nil
}

// memCache implements cache.ExportCache; fail flips every call into an
// error to exercise the fail-open paths.
type memCache struct {
	mu   sync.Mutex
	docs map[string]*model.ExportDocument
	gens map[int64]int64
	fail bool
}

func newMemCache() *memCache {
	return &memCache{
		docs: map[string]*model.ExportDocument{},
		gens: map[int64]int64{},
	}
}

var errCacheDown = errors.New("cache down")

func (c *memCache) GetDocument(_ context.Context, key string) (*model.ExportDocument, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return nil, errCacheDown
	}
	doc, ok := c.docs[key]
	if !ok {
		return nil, cache.ErrMiss
	}
	return doc, nil
}

func (c *memCache) SetDocument(_ context.Context, key string, doc *model.ExportDocument, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errCacheDown
	}
	c.docs[key] = doc
	return nil
}

func (c *memCache) Generation(_ context.Context, formID int64) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return 0, errCacheDown
	}
	return c.gens[formID], nil
}

func (c *memCache) BumpGeneration(_ context.Context, formID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errCacheDown
	}
	c.gens[formID]++
	return nil
}

func (c *memCache) Close() error { return nil }
