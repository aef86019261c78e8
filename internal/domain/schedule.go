package domain

import (
	"time"
)

// Дни недели нумеруются 0..6, где 0 — воскресенье. Нумерация совпадает
// с time.Weekday, любая арифметика дня недели должна идти через DayOfWeekOf.
type DayOfWeek int

const (
	DaySunday DayOfWeek = iota
	DayMonday
	DayTuesday
	DayWednesday
	DayThursday
	DayFriday
	DaySaturday
)

func (d DayOfWeek) IsValid() bool {
	return d >= DaySunday && d <= DaySaturday
}

// DayOfWeekOf возвращает номер дня недели даты в принятой нумерации.
func DayOfWeekOf(date time.Time) DayOfWeek {
	return DayOfWeek(date.Weekday())
}

type WeeklySchedule struct {
	ID          int64     `json:"id"`
	MasterID    int64     `json:"master_id"`
	DayOfWeek   DayOfWeek `json:"day_of_week"`
	StartTime   string    `json:"start_time"`
	EndTime     string    `json:"end_time"`
	IsAvailable bool      `json:"is_available"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type TimeOff struct {
	ID        int64     `json:"id"`
	MasterID  int64     `json:"master_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// EffectiveWindow — рабочее окно мастера на конкретную дату после учета
// отгулов и недельного расписания.
type EffectiveWindow struct {
	Open      bool   `json:"open"`
	StartTime string `json:"start_time,omitempty"`
	EndTime   string `json:"end_time,omitempty"`
}

// Slot — вычисляемое значение, в базе не хранится.
type Slot struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type UpsertWeeklyScheduleDTO struct {
	DayOfWeek   DayOfWeek `json:"day_of_week" binding:"min=0,max=6"`
	StartTime   string    `json:"start_time" binding:"required"`
	EndTime     string    `json:"end_time" binding:"required"`
	IsAvailable bool      `json:"is_available"`
}

type CreateTimeOffDTO struct {
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
	Reason    string `json:"reason" binding:"required"`
}

type TimeOffResult struct {
	TimeOffCreated      bool    `json:"time_off_created"`
	CancelledBookingIDs []int64 `json:"cancelled_booking_ids"`
	NotifyFailures      int     `json:"notify_failures,omitempty"`
}
