package domain

import (
	"time"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

// CancelReasonRefundRequired ставится, когда оплата подтвердилась уже после
// истечения удержания и слот успел уйти другому клиенту. По таким записям
// инициируется возврат средств.
const CancelReasonRefundRequired = "Slot no longer available, refund required"

// Терминальные статусы: cancelled и completed, из них переходов нет.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCancelled || s == BookingStatusCompleted
}

type Booking struct {
	ID                 int64         `json:"id"`
	MasterID           int64         `json:"master_id"`
	ServiceID          int64         `json:"service_id"`
	AddonIDs           []int64       `json:"addon_ids"`
	BookingDate        time.Time     `json:"booking_date"`
	BookingTime        string        `json:"booking_time"`
	DurationMinutes    int           `json:"duration_minutes"`
	Status             BookingStatus `json:"status"`
	CustomerName       string        `json:"customer_name"`
	CustomerEmail      string        `json:"customer_email"`
	CustomerPhone      string        `json:"customer_phone"`
	PaymentReference   string        `json:"payment_reference,omitempty"`
	Amount             float64       `json:"amount"`
	ReminderSent       bool          `json:"reminder_sent"`
	ExpiresAt          *time.Time    `json:"expires_at,omitempty"`
	CancelledAt        *time.Time    `json:"cancelled_at,omitempty"`
	CancellationReason string        `json:"cancellation_reason,omitempty"`
	MasterName         string        `json:"master_name,omitempty"`
	ServiceName        string        `json:"service_name,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

// OccupiedInterval — занятый интервал активной записи в минутах от полуночи.
type OccupiedInterval struct {
	BookingID    int64
	StartMinutes int
	EndMinutes   int
}

type CreateBookingDTO struct {
	MasterID      int64   `json:"master_id" binding:"required"`
	ServiceID     int64   `json:"service_id" binding:"required"`
	AddonIDs      []int64 `json:"addon_ids"`
	BookingDate   string  `json:"booking_date" binding:"required"`
	BookingTime   string  `json:"booking_time" binding:"required"`
	CustomerName  string  `json:"customer_name" binding:"required"`
	CustomerEmail string  `json:"customer_email" binding:"required,email"`
	CustomerPhone string  `json:"customer_phone" binding:"required"`
}

// BookingHold — результат первой фазы бронирования: слот удержан,
// клиент отправляется на оплату.
type BookingHold struct {
	BookingID        int64     `json:"booking_id"`
	PaymentReference string    `json:"payment_reference"`
	AuthorizationURL string    `json:"authorization_url"`
	Amount           float64   `json:"amount"`
	ExpiresAt        time.Time `json:"expires_at"`
}

// TransitionFields — дополнительные поля, выставляемые при смене статуса.
type TransitionFields struct {
	CancellationReason string
	ClearExpiry        bool
}

// SweepResult — итог прогона рассылки напоминаний.
type SweepResult struct {
	Date   string `json:"date"`
	Total  int    `json:"total"`
	Sent   int    `json:"sent"`
	Failed int    `json:"failed"`
}

type BookingFilter struct {
	MasterID      *int64         `json:"master_id"`
	Status        *BookingStatus `json:"status"`
	StartDate     *time.Time     `json:"start_date"`
	EndDate       *time.Time     `json:"end_date"`
	CustomerEmail *string        `json:"customer_email"`
	Limit         int            `json:"limit"`
	Offset        int            `json:"offset"`
}
