package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mbelyaev/jobtrack/internal/models"
	"github.com/mbelyaev/jobtrack/internal/repo"
)

type JobService struct {
	Repo *repo.GormRepo
}

type CreateJobInput struct {
	Company  string
	Position string
	Status   string
	Notes    string
}

// UpdateJobInput carries the whitelisted fields of a full or partial
// update. Nil means "leave unchanged".
type UpdateJobInput struct {
	Company  *string
	Position *string
	Status   *string
	Notes    *string
}

type JobStats struct {
	Total     int64            `json:"total"`
	Active    int64            `json:"active"`
	OfferRate int              `json:"offerRate"`
	Counts    map[string]int64 `json:"counts"`
}

func normalizeStatus(raw string) (string, error) {
	status := strings.ToLower(strings.TrimSpace(raw))
	if !models.AllowedStatuses[status] {
		return "", fmt.Errorf("invalid status %q: %w", raw, ErrValidation)
	}
	return status, nil
}

func (s *JobService) Create(ctx context.Context, userID uuid.UUID, in CreateJobInput) (*models.Job, error) {
	company := strings.TrimSpace(in.Company)
	position := strings.TrimSpace(in.Position)
	if company == "" || position == "" {
		return nil, fmt.Errorf("company and position are required: %w", ErrValidation)
	}

	status := models.StatusApplied
	if strings.TrimSpace(in.Status) != "" {
		var err error
		status, err = normalizeStatus(in.Status)
		if err != nil {
			return nil, err
		}
	}

	job := models.Job{
		UserID:   userID,
		Company:  company,
		Position: position,
		Status:   status,
		Notes:    strings.TrimSpace(in.Notes),
	}
	if err := s.Repo.CreateJob(ctx, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (s *JobService) List(ctx context.Context, userID uuid.UUID) ([]models.Job, error) {
	return s.Repo.JobsByOwner(ctx, userID)
}

func (s *JobService) Get(ctx context.Context, userID, jobID uuid.UUID) (*models.Job, error) {
	job, err := s.Repo.JobByID(ctx, userID, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("job %s: %w", jobID, ErrNotFound)
		}
		return nil, err
	}
	return job, nil
}

func (s *JobService) Update(ctx context.Context, userID, jobID uuid.UUID, in UpdateJobInput) (*models.Job, error) {
	job, err := s.Get(ctx, userID, jobID)
	if err != nil {
		return nil, err
	}

	changed := false
	if in.Company != nil {
		company := strings.TrimSpace(*in.Company)
		if company == "" {
			return nil, fmt.Errorf("company cannot be empty: %w", ErrValidation)
		}
		job.Company = company
		changed = true
	}
	if in.Position != nil {
		position := strings.TrimSpace(*in.Position)
		if position == "" {
			return nil, fmt.Errorf("position cannot be empty: %w", ErrValidation)
		}
		job.Position = position
		changed = true
	}
	if in.Status != nil {
		status, err := normalizeStatus(*in.Status)
		if err != nil {
			return nil, err
		}
		job.Status = status
		changed = true
	}
	if in.Notes != nil {
		job.Notes = strings.TrimSpace(*in.Notes)
		changed = true
	}

	// An update with no recognized fields is a no-op that returns the
	// current record without touching updated_at.
	if !changed {
		return job, nil
	}

	if err := s.Repo.SaveJob(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *JobService) Delete(ctx context.Context, userID, jobID uuid.UUID) error {
	if err := s.Repo.DeleteJob(ctx, userID, jobID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("job %s: %w", jobID, ErrNotFound)
		}
		return err
	}
	return nil
}

var csvHeader = []string{"company", "position", "status", "notes", "createdAt", "updatedAt"}

func (s *JobService) ExportCSV(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	jobs, err := s.Repo.JobsByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, job := range jobs {
		record := []string{
			job.Company,
			job.Position,
			job.Status,
			job.Notes,
			job.CreatedAt.UTC().Format(time.RFC3339),
			job.UpdatedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *JobService) Stats(ctx context.Context, userID uuid.UUID) (*JobStats, error) {
	counts, err := s.Repo.StatusCounts(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := JobStats{Counts: make(map[string]int64, len(models.AllowedStatuses))}
	for status := range models.AllowedStatuses {
		stats.Counts[status] = counts[status]
	}
	for _, n := range stats.Counts {
		stats.Total += n
	}
	stats.Active = stats.Counts[models.StatusApplied] +
		stats.Counts[models.StatusInterview] +
		stats.Counts[models.StatusOffer]
	if stats.Total > 0 {
		offers := stats.Counts[models.StatusOffer]
		stats.OfferRate = int(math.Round(float64(offers) / float64(stats.Total) * 100))
	}
	return &stats, nil
}
