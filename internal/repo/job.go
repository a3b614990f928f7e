package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mbelyaev/jobtrack/internal/models"
)

// Every query here filters by the owning user. A job is never visible to
// or mutable by anyone but its owner, and a foreign id behaves exactly
// like a missing one.

func (r *GormRepo) CreateJob(ctx context.Context, job *models.Job) error {
	return r.DB.WithContext(ctx).Create(job).Error
}

func (r *GormRepo) JobsByOwner(ctx context.Context, userID uuid.UUID) ([]models.Job, error) {
	var jobs []models.Job
	if err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *GormRepo) JobByID(ctx context.Context, userID, jobID uuid.UUID) (*models.Job, error) {
	var job models.Job
	if err := r.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", jobID, userID).
		First(&job).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *GormRepo) SaveJob(ctx context.Context, job *models.Job) error {
	return r.DB.WithContext(ctx).Save(job).Error
}

func (r *GormRepo) DeleteJob(ctx context.Context, userID, jobID uuid.UUID) error {
	res := r.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", jobID, userID).
		Delete(&models.Job{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) StatusCounts(ctx context.Context, userID uuid.UUID) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	if err := r.DB.WithContext(ctx).
		Model(&models.Job{}).
		Select("status, count(*) as count").
		Where("user_id = ?", userID).
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
