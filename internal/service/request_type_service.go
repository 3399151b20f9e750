package service

import (
	"context"
	"errors"
	"fmt"

	"aprobaciones/internal/model"
	"aprobaciones/internal/repository"

	"gorm.io/gorm"
)

// CreateRequestTypeInput creates a new catalog entry. New types always start
// active.
type CreateRequestTypeInput struct {
	Code        string `json:"code" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// UpdateRequestTypeInput mutates name, description or the active gate. The
// code is immutable and cannot appear here; types are never deleted.
type UpdateRequestTypeInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Active      *bool   `json:"active"`
}

// RequestTypeService manages the admin-owned request type catalog.
type RequestTypeService interface {
	List(ctx context.Context) ([]model.RequestType, error)
	Create(ctx context.Context, in CreateRequestTypeInput) (*model.RequestType, error)
	Update(ctx context.Context, id uint, in UpdateRequestTypeInput) (*model.RequestType, error)
}

type requestTypeService struct {
	repo repository.RequestTypeRepository
}

// NewRequestTypeService returns a RequestTypeService over the catalog
// repository.
func NewRequestTypeService(repo repository.RequestTypeRepository) RequestTypeService {
	return &requestTypeService{repo: repo}
}

func (s *requestTypeService) List(ctx context.Context) ([]model.RequestType, error) {
	return s.repo.List(ctx)
}

func (s *requestTypeService) Create(ctx context.Context, in CreateRequestTypeInput) (*model.RequestType, error) {
	rt := &model.RequestType{
		Code:        in.Code,
		Name:        in.Name,
		Description: in.Description,
		Active:      true,
	}
	if err := s.repo.Create(ctx, rt); err != nil {
		return nil, fmt.Errorf("create request type: %w", err)
	}
	return rt, nil
}

func (s *requestTypeService) Update(ctx context.Context, id uint, in UpdateRequestTypeInput) (*model.RequestType, error) {
	rt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "request type"}
		}
		return nil, fmt.Errorf("load request type: %w", err)
	}

	if in.Name != nil {
		rt.Name = *in.Name
	}
	if in.Description != nil {
		rt.Description = *in.Description
	}
	if in.Active != nil {
		rt.Active = *in.Active
	}

	if err := s.repo.Update(ctx, rt); err != nil {
		return nil, fmt.Errorf("update request type: %w", err)
	}
	return rt, nil
}
