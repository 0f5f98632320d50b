package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/fieldserve/internal/model"
	"github.com/nurpe/fieldserve/internal/repository"
)

type ProjectService struct {
	projects *repository.ProjectRepository
	catalog  *repository.CatalogRepository
}

func NewProjectService(projects *repository.ProjectRepository, catalog *repository.CatalogRepository) *ProjectService {
	return &ProjectService{projects: projects, catalog: catalog}
}

type CreateProjectInput struct {
	CustomerID  uuid.UUID
	Name        string
	Description string
	Budget      float64
	StartDate   *time.Time
	EndDate     *time.Time
	Principal   model.Principal
}

func (s *ProjectService) Get(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	project, err := s.projects.Get(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return project, nil
}

func (s *ProjectService) List(ctx context.Context, status *model.ProjectStatus, customerID *uuid.UUID) ([]model.Project, error) {
	return s.projects.List(ctx, status, customerID)
}

func (s *ProjectService) Create(ctx context.Context, input CreateProjectInput) (*model.Project, error) {
	if !input.Principal.CanManage() {
		return nil, ErrPermissionDenied
	}
	if input.CustomerID == uuid.Nil {
		return nil, fmt.Errorf("%w: customer_id is required", ErrInvalidInput)
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if input.Budget < 0 {
		return nil, fmt.Errorf("%w: budget must not be negative", ErrInvalidInput)
	}

	if _, err := s.catalog.GetCustomer(ctx, input.CustomerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: customer %s", ErrNotFound, input.CustomerID)
		}
		return nil, err
	}

	project := &model.Project{
		CustomerID:  input.CustomerID,
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Status:      model.ProjectStatusPlanned,
		Budget:      input.Budget,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
	}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, err
	}
	return s.Get(ctx, project.ID)
}

func (s *ProjectService) SetStatus(ctx context.Context, id uuid.UUID, status model.ProjectStatus, principal model.Principal) (*model.Project, error) {
	if !principal.CanManage() {
		return nil, ErrPermissionDenied
	}

	project, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ValidateProjectTransition(project.Status, status); err != nil {
		return nil, err
	}

	if err := s.projects.SetStatus(ctx, id, project.Status, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: status changed concurrently", ErrConflict)
		}
		return nil, err
	}
	return s.Get(ctx, id)
}
