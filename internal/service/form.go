package service

import (
	"context"
	"log/slog"

	"github.com/streamforms/submission-exporter/internal/errors"
	"github.com/streamforms/submission-exporter/internal/model"
	"github.com/streamforms/submission-exporter/internal/store"
)

type FormService interface {
	GetForm(ctx context.Context, id int64) (*model.Form, error)
	ListForms(ctx context.Context) ([]*model.FormOverview, error)
}

type FormServiceImpl struct {
	store store.Store
	log   *slog.Logger
}

func NewFormService(s store.Store, log *slog.Logger) (FormService, error) {
	if s == nil {
		return nil, errors.Internal("store is nil in FormService")
	}
	if log == nil {
		log = slog.Default()
	}
	return &FormServiceImpl{store: s, log: log}, nil
}

func (s *FormServiceImpl) GetForm(ctx context.Context, id int64) (*model.Form, error) {
	if id <= 0 {
		return nil, errors.BadRequest("form.get.invalid_id", "form id is required")
	}
	return s.store.Form().Get(ctx, id)
}

func (s *FormServiceImpl) ListForms(ctx context.Context) ([]*model.FormOverview, error) {
	forms, err := s.store.Form().List(ctx)
	if err != nil {
		return nil, err
	}
	if forms == nil {
		forms = []*model.FormOverview{}
	}
	return forms, nil
}
