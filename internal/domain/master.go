package domain

import (
	"time"
)

type Master struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	Description     string    `json:"description"`
	ExperienceYears int       `json:"experience_years"`
	ProfilePhotoURL string    `json:"profile_photo_url"`
	IsActive        bool      `json:"is_active"`
	User            User      `json:"user"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type CreateMasterDTO struct {
	UserID          int64  `json:"user_id,omitempty"`
	Description     string `json:"description,omitempty"`
	ExperienceYears int    `json:"experience_years,omitempty" binding:"min=0"`
}

type UpdateMasterDTO struct {
	Description     *string `json:"description"`
	ExperienceYears *int    `json:"experience_years" binding:"omitempty,min=0"`
	IsActive        *bool   `json:"is_active"`
}
