package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamforms/submission-exporter/internal/errors"
	"github.com/streamforms/submission-exporter/internal/model"
)

func newTestFormService(t *testing.T, st *memStore) FormService {
	t.Helper()
	svc, err := NewFormService(st, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return svc
}

func TestGetFormInvalidID(t *testing.T) {
	svc := newTestFormService(t, newMemStore())

	_, err := svc.GetForm(context.Background(), 0)
	require.Error(t, err)
	assert.Equal(t, 400, errors.Code(err))
}

func TestGetFormMissing(t *testing.T) {
	svc := newTestFormService(t, newMemStore())

	_, err := svc.GetForm(context.Background(), 42)
	require.Error(t, err)
	assert.Equal(t, 404, errors.Code(err))
}

func TestListFormsWithCounts(t *testing.T) {
	st := newMemStore()
	seedContact(t, st)
	st.forms.add(&model.Form{ID: 2, Slug: "feedback", Title: "Annual Feedback"})
	svc := newTestFormService(t, st)

	forms, err := svc.ListForms(context.Background())
	require.NoError(t, err)
	require.Len(t, forms, 2)

	// Sorted by title; counts reflect stored submissions.
	assert.Equal(t, "Annual Feedback", forms[0].Title)
	assert.Zero(t, forms[0].SubmissionCount)
	assert.Equal(t, "Contact", forms[1].Title)
	assert.EqualValues(t, 3, forms[1].SubmissionCount)
}
