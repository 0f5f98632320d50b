package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/fieldserve/internal/model"
)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Get(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	var project model.Project
	err := r.db.WithContext(ctx).Preload("Customer").First(&project, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *ProjectRepository) List(ctx context.Context, status *model.ProjectStatus, customerID *uuid.UUID) ([]model.Project, error) {
	query := r.db.WithContext(ctx).Model(&model.Project{}).Order("created_at DESC")
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	if customerID != nil {
		query = query.Where("customer_id = ?", *customerID)
	}

	var projects []model.Project
	if err := query.Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *ProjectRepository) Create(ctx context.Context, project *model.Project) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if project.Number == "" {
			number, err := nextNumber(tx, &model.Project{}, "PRJ")
			if err != nil {
				return err
			}
			project.Number = number
		}
		return tx.Create(project).Error
	})
}

func (r *ProjectRepository) SetStatus(ctx context.Context, id uuid.UUID, from, to model.ProjectStatus) error {
	result := r.db.WithContext(ctx).Model(&model.Project{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
