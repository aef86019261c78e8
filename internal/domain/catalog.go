package domain

import (
	"time"
)

type Service struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Price           float64   `json:"price"`
	DurationMinutes int       `json:"duration_minutes"`
	Category        string    `json:"category"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type Addon struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Price           float64   `json:"price"`
	DurationMinutes int       `json:"duration_minutes"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type CreateServiceDTO struct {
	Name            string  `json:"name" binding:"required"`
	Description     string  `json:"description"`
	Price           float64 `json:"price" binding:"required,min=0"`
	DurationMinutes int     `json:"duration_minutes" binding:"required,min=5"`
	Category        string  `json:"category"`
}

type UpdateServiceDTO struct {
	Name            *string  `json:"name"`
	Description     *string  `json:"description"`
	Price           *float64 `json:"price" binding:"omitempty,min=0"`
	DurationMinutes *int     `json:"duration_minutes" binding:"omitempty,min=5"`
	Category        *string  `json:"category"`
	IsActive        *bool    `json:"is_active"`
}

type CreateAddonDTO struct {
	Name            string  `json:"name" binding:"required"`
	Price           float64 `json:"price" binding:"required,min=0"`
	DurationMinutes int     `json:"duration_minutes" binding:"min=0"`
}

type UpdateAddonDTO struct {
	Name            *string  `json:"name"`
	Price           *float64 `json:"price" binding:"omitempty,min=0"`
	DurationMinutes *int     `json:"duration_minutes" binding:"omitempty,min=0"`
	IsActive        *bool    `json:"is_active"`
}

// Quote — итог по услуге с выбранными допами: суммарная длительность
// и стоимость, из которых считается занимаемый интервал и сумма к оплате.
type Quote struct {
	Service         Service `json:"service"`
	Addons          []Addon `json:"addons"`
	DurationMinutes int     `json:"duration_minutes"`
	Amount          float64 `json:"amount"`
}

type ServiceFilter struct {
	Category   *string `json:"category"`
	IsActive   *bool   `json:"is_active"`
	SearchTerm *string `json:"search_term"`
	Limit      int     `json:"limit"`
	Offset     int     `json:"offset"`
}
