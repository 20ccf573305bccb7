package store

import (
	"context"

	"github.com/streamforms/submission-exporter/internal/model"
	"github.com/streamforms/submission-exporter/internal/model/options"
)

type Store interface {
	Form() FormStore
	Submission() SubmissionStore

	// ------------ Database Management ------------ //
	Open() error  // Return custom DB error
	Close() error // Return custom DB error
}

// FormStore reads form definitions. Forms are owned by the form-management
// subsystem; this service never writes them.
type FormStore interface {
	Get(ctx context.Context, id int64) (*model.Form, error)
	List(ctx context.Context) ([]*model.FormOverview, error)
}

type SubmissionStore interface {
	// Search returns one page of the form's submissions matching criteria,
	// newest first, ties broken by id descending.
	Search(opts *options.SearchOptions, criteria model.FilterCriteria) ([]*model.Submission, error)
	// SearchAll resolves the whole filtered set in the same order,
	// ignoring pagination. Exports run on this.
	SearchAll(opts *options.ExportOptions, criteria model.FilterCriteria) ([]*model.Submission, error)
	Count(opts *options.SearchOptions, criteria model.FilterCriteria) (int64, error)
	// Delete removes the submissions of opts.IDs that belong to opts.FormID
	// and reports how many rows actually went away. Stale and cross-form
	// ids just lower the count.
	Delete(opts *options.DeleteOptions) (int64, error)
	// Insert is the intake path used by the form-capture subsystem and by
	// fixtures. Not exposed over this service's API.
	Insert(ctx context.Context, input *model.NewSubmission) (int64, error)
}
