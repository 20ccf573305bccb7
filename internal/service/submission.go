package service

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/streamforms/submission-exporter/internal/cache"
	"github.com/streamforms/submission-exporter/internal/errors"
	"github.com/streamforms/submission-exporter/internal/export"
	"github.com/streamforms/submission-exporter/internal/metrics"
	"github.com/streamforms/submission-exporter/internal/model"
	"github.com/streamforms/submission-exporter/internal/model/options"
	"github.com/streamforms/submission-exporter/internal/store"
)

// DefaultCacheTTL bounds how long a cached export can outlive the
// submission set it was built from.
const DefaultCacheTTL = 5 * time.Minute

type SubmissionService interface {
	// ListPage returns one page of submissions matching criteria plus the
	// total match count. An out-of-range page is an empty page, not an
	// error.
	ListPage(opts *options.SearchOptions, criteria model.FilterCriteria) (*model.SubmissionPage, error)
	// Export resolves the whole filtered set, ignoring pagination, and
	// serializes it in the requested format. Zero matching rows yield a
	// header-only document.
	Export(opts *options.ExportOptions, criteria model.FilterCriteria) (*model.ExportResult, error)
	// Delete removes the selected submissions of one form and reports how
	// many were actually deleted. Stale and cross-form ids are silently
	// skipped, so repeating a delete is harmless.
	Delete(opts *options.DeleteOptions) (int64, error)
}

type SubmissionServiceImpl struct {
	store    store.Store
	cache    cache.ExportCache
	metrics  *metrics.Metrics
	log      *slog.Logger
	cacheTTL time.Duration
}

// NewSubmissionService wires the submission workflow. cache may be nil;
// exports are then always built fresh.
func NewSubmissionService(
	s store.Store,
	c cache.ExportCache,
	m *metrics.Metrics,
	log *slog.Logger,
	cacheTTL time.Duration,
) (SubmissionService, error) {
	if s == nil || m == nil {
		return nil, errors.Internal("store or metrics is nil in SubmissionService")
	}
	if log == nil {
		log = slog.Default()
	}
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}
	return &SubmissionServiceImpl{
		store:    s,
		cache:    c,
		metrics:  m,
		log:      log,
		cacheTTL: cacheTTL,
	}, nil
}

func (s *SubmissionServiceImpl) ListPage(opts *options.SearchOptions, criteria model.FilterCriteria) (*model.SubmissionPage, error) {
	var (
		rows  []*model.Submission
		total int64
	)

	// Page rows and total count are independent reads; fetch them
	// concurrently and fail fast if either side errors.
	g, gctx := errgroup.WithContext(opts)

	searchOpts := *opts
	searchOpts.Context = gctx
	countOpts := searchOpts

	g.Go(func() error {
		var err error
		rows, err = s.store.Submission().Search(&searchOpts, criteria)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.store.Submission().Count(&countOpts, criteria)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if rows == nil {
		rows = []*model.Submission{}
	}
	return &model.SubmissionPage{
		Rows:  rows,
		Total: total,
		Page:  opts.Page,
		Size:  opts.Size,
	}, nil
}

func (s *SubmissionServiceImpl) Export(opts *options.ExportOptions, criteria model.FilterCriteria) (*model.ExportResult, error) {
	start := time.Now()
	format := string(opts.Format)

	form, err := s.store.Form().Get(opts, opts.FormID)
	if err != nil {
		s.metrics.ExportsTotal.WithLabelValues(format, "error").Inc()
		return nil, err
	}

	key := s.documentKey(opts, criteria)
	if doc := s.cachedDocument(opts, key); doc != nil {
		s.metrics.ExportsTotal.WithLabelValues(format, "cached").Inc()
		return &model.ExportResult{Document: doc, Cached: true}, nil
	}

	rows, err := s.store.Submission().SearchAll(opts, criteria)
	if err != nil {
		s.metrics.ExportsTotal.WithLabelValues(format, "error").Inc()
		return nil, err
	}

	cols := export.Columns(form, rows, opts.SubmitTimeLabel)
	data, err := export.Build(opts.Format, form, cols, rows)
	if err != nil {
		s.metrics.ExportsTotal.WithLabelValues(format, "error").Inc()
		return nil, errors.Internal(fmt.Sprintf("failed to build %s export: %v", format, err))
	}

	doc := &model.ExportDocument{
		FileName:    export.FileName(form.Slug, opts.Format),
		ContentType: opts.Format.ContentType(),
		Data:        data,
	}
	s.storeDocument(opts, key, doc)

	s.metrics.ExportsTotal.WithLabelValues(format, "built").Inc()
	s.metrics.ExportRows.Observe(float64(len(rows)))
	s.metrics.ExportDuration.WithLabelValues(format).Observe(time.Since(start).Seconds())

	s.log.InfoContext(opts, "submission_exporter.service.export_built",
		"form_id", opts.FormID, "format", format, "rows", len(rows))

	return &model.ExportResult{Document: doc, RowCount: int64(len(rows))}, nil
}

func (s *SubmissionServiceImpl) Delete(opts *options.DeleteOptions) (int64, error) {
	if len(opts.IDs) == 0 {
		return 0, nil
	}

	deleted, err := s.store.Submission().Delete(opts)
	if err != nil {
		return 0, err
	}

	if deleted > 0 {
		s.metrics.SubmissionsDeletedTotal.Add(float64(deleted))
		s.invalidateExports(opts, opts.FormID)
		s.log.InfoContext(opts, "submission_exporter.service.submissions_deleted",
			"form_id", opts.FormID, "requested", len(opts.IDs), "deleted", deleted)
	}

	return deleted, nil
}

// documentKey pins a cached document to the form's generation plus the
// canonical criteria fingerprint and heading locale. An empty key means
// "skip the cache for this request".
func (s *SubmissionServiceImpl) documentKey(opts *options.ExportOptions, criteria model.FilterCriteria) string {
	if s.cache == nil {
		return ""
	}
	gen, err := s.cache.Generation(opts, opts.FormID)
	if err != nil {
		// Without the generation a key could resurrect pre-delete data.
		s.log.WarnContext(opts, "submission_exporter.service.export_cache_generation_failed",
			"form_id", opts.FormID, "error", err)
		return ""
	}
	sum := sha256.Sum256([]byte(criteria.Fingerprint() + "|label=" + opts.SubmitTimeLabel))
	return fmt.Sprintf("%d:%d:%x:%s", opts.FormID, gen, sum[:8], opts.Format)
}

// cachedDocument is a best-effort read: any cache failure degrades to a
// rebuild, never to a failed export.
func (s *SubmissionServiceImpl) cachedDocument(ctx context.Context, key string) *model.ExportDocument {
	if s.cache == nil || key == "" {
		return nil
	}
	doc, err := s.cache.GetDocument(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			s.log.WarnContext(ctx, "submission_exporter.service.export_cache_get_failed", "error", err)
		}
		s.metrics.CacheMissesTotal.Inc()
		return nil
	}
	s.metrics.CacheHitsTotal.Inc()
	return doc
}

func (s *SubmissionServiceImpl) storeDocument(ctx context.Context, key string, doc *model.ExportDocument) {
	if s.cache == nil || key == "" {
		return
	}
	if err := s.cache.SetDocument(ctx, key, doc, s.cacheTTL); err != nil {
		s.log.WarnContext(ctx, "submission_exporter.service.export_cache_set_failed", "error", err)
	}
}

func (s *SubmissionServiceImpl) invalidateExports(ctx context.Context, formID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.BumpGeneration(ctx, formID); err != nil {
		s.log.WarnContext(ctx, "submission_exporter.service.export_cache_invalidate_failed",
			"form_id", formID, "error", err)
	}
}
