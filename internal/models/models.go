package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusApplied   = "applied"
	StatusInterview = "interview"
	StatusOffer     = "offer"
	StatusRejected  = "rejected"
)

// Statuses a job application can be in. Any status may move to any other.
var AllowedStatuses = map[string]bool{
	StatusApplied:   true,
	StatusInterview: true,
	StatusOffer:     true,
	StatusRejected:  true,
}

type User struct {
	ID           uuid.UUID `gorm:"primaryKey"            json:"id"`
	Name         string    `gorm:"not null"              json:"name"`
	Email        string    `gorm:"uniqueIndex;not null"  json:"email"`
	PasswordHash string    `gorm:"not null"              json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (User) TableName() string {
	return "users"
}

type Job struct {
	ID        uuid.UUID `gorm:"primaryKey"                     json:"id"`
	UserID    uuid.UUID `gorm:"index;not null"                 json:"user_id"`
	Company   string    `gorm:"not null"                       json:"company"`
	Position  string    `gorm:"not null"                       json:"position"`
	Status    string    `gorm:"not null;default:applied"       json:"status"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (j *Job) BeforeCreate(tx *gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	return nil
}

func (Job) TableName() string {
	return "jobs"
}
