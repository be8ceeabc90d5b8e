package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Skotchmaster/lab_management/internal/apperrors"
	"github.com/Skotchmaster/lab_management/internal/models"
)

func (r *GormRepo) CreateProject(ctx context.Context, p *models.Project, ownerMember *models.ProjectMember) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(p).Error; err != nil {
			return err
		}
		return tx.Create(ownerMember).Error
	})
	return storageErr(err)
}

func (r *GormRepo) GetProject(ctx context.Context, id string) (*models.Project, error) {
	var p models.Project
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, storageErr(err)
	}
	return &p, nil
}

func (r *GormRepo) ListProjects(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	if err := r.DB.WithContext(ctx).Order("updated_at DESC").Find(&projects).Error; err != nil {
		return nil, storageErr(err)
	}
	return projects, nil
}

func (r *GormRepo) SaveProject(ctx context.Context, p *models.Project) error {
	return storageErr(r.DB.WithContext(ctx).Save(p).Error)
}

func (r *GormRepo) DeleteProject(ctx context.Context, id string) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", id).Delete(&models.ProjectMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.ProjectUpdate{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.Project{}).Error
	})
	return storageErr(err)
}

func (r *GormRepo) AddProjectMember(ctx context.Context, m *models.ProjectMember) error {
	tx := r.DB.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", m.ProjectID, m.UserID).
		FirstOrCreate(m)
	if tx.Error != nil {
		return storageErr(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return apperrors.ErrAlreadyExists
	}
	return nil
}

func (r *GormRepo) RemoveProjectMember(ctx context.Context, projectID, userID string) error {
	return storageErr(r.DB.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&models.ProjectMember{}).Error)
}

func (r *GormRepo) ListProjectMembers(ctx context.Context, projectID string) ([]models.ProjectMember, error) {
	var members []models.ProjectMember
	if err := r.DB.WithContext(ctx).Where("project_id = ?", projectID).Find(&members).Error; err != nil {
		return nil, storageErr(err)
	}
	return members, nil
}

func (r *GormRepo) AddProjectUpdate(ctx context.Context, u *models.ProjectUpdate) error {
	return storageErr(r.DB.WithContext(ctx).Create(u).Error)
}

func (r *GormRepo) ListProjectUpdates(ctx context.Context, projectID string, limit int) ([]models.ProjectUpdate, error) {
	var updates []models.ProjectUpdate
	q := r.DB.WithContext(ctx).Where("project_id = ?", projectID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&updates).Error; err != nil {
		return nil, storageErr(err)
	}
	return updates, nil
}
