package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"strizh/internal/domain"
)

type BookingRepo struct {
	db DB
}

func NewBookingRepository(db DB) *BookingRepo {
	return &BookingRepo{
		db: db,
	}
}

// Активная запись занимает слот: confirmed всегда, pending — пока не истекло
// удержание. Просроченные pending-строки слот не блокируют.
const activeCondition = `(status = 'confirmed' OR (status = 'pending' AND expires_at > now()))`

const bookingSelect = `
	SELECT b.id, b.master_id, b.service_id, b.addon_ids, b.booking_date, to_char(b.booking_time, 'HH24:MI'),
	       b.duration_minutes, b.status, b.customer_name, b.customer_email, b.customer_phone,
	       b.payment_reference, b.amount, b.reminder_sent, b.expires_at, b.cancelled_at, b.cancellation_reason,
	       b.created_at, b.updated_at
	FROM bookings b
`

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var booking domain.Booking

	err := row.Scan(
		&booking.ID,
		&booking.MasterID,
		&booking.ServiceID,
		&booking.AddonIDs,
		&booking.BookingDate,
		&booking.BookingTime,
		&booking.DurationMinutes,
		&booking.Status,
		&booking.CustomerName,
		&booking.CustomerEmail,
		&booking.CustomerPhone,
		&booking.PaymentReference,
		&booking.Amount,
		&booking.ReminderSent,
		&booking.ExpiresAt,
		&booking.CancelledAt,
		&booking.CancellationReason,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &booking, nil
}

// CreateHold выполняет проверку пересечения и вставку pending-записи одной
// транзакцией. Строка мастера блокируется FOR UPDATE, поэтому два
// конкурентных удержания на одного мастера сериализуются; частичный
// уникальный индекс по (master_id, booking_date, booking_time) страхует от
// точного дубля времени.
func (r *BookingRepo) CreateHold(ctx context.Context, booking domain.Booking) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	var masterID int64
	err = tx.QueryRow(ctx, `SELECT id FROM masters WHERE id = $1 FOR UPDATE`, booking.MasterID).Scan(&masterID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("ошибка блокировки строки мастера: %w", err)
	}

	occupied, err := listActiveTx(ctx, tx, booking.MasterID, booking.BookingDate)
	if err != nil {
		return 0, err
	}

	startMinutes, err := domain.ClockToMinutes(booking.BookingTime)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	endMinutes := startMinutes + booking.DurationMinutes

	for _, occ := range occupied {
		if domain.IntervalsOverlap(startMinutes, endMinutes, occ.StartMinutes, occ.EndMinutes) {
			return 0, domain.ErrSlotTaken
		}
	}

	var id int64
	query := `
		INSERT INTO bookings (master_id, service_id, addon_ids, booking_date, booking_time, duration_minutes,
		                      status, customer_name, customer_email, customer_phone, payment_reference, amount,
		                      reminder_sent, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5::time, $6, $7, $8, $9, $10, $11, $12, false, $13, $14, $14)
		RETURNING id
	`

	now := time.Now()
	err = tx.QueryRow(ctx, query,
		booking.MasterID,
		booking.ServiceID,
		booking.AddonIDs,
		booking.BookingDate,
		booking.BookingTime,
		booking.DurationMinutes,
		domain.BookingStatusPending,
		booking.CustomerName,
		booking.CustomerEmail,
		booking.CustomerPhone,
		booking.PaymentReference,
		booking.Amount,
		booking.ExpiresAt,
		now,
	).Scan(&id)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, domain.ErrSlotTaken
		}
		return 0, fmt.Errorf("ошибка создания удержания слота: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("ошибка при коммите транзакции: %w", err)
	}

	return id, nil
}

// ConfirmByReference переводит удержание в confirmed после успешной оплаты.
// Повторный вызов для уже подтвержденной записи возвращает ее без изменений.
// Если удержание истекло и слот перепродан, запись отменяется с пометкой о
// возврате средств и возвращается domain.ErrSlotTaken.
func (r *BookingRepo) ConfirmByReference(ctx context.Context, reference string) (*domain.Booking, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	booking, err := scanBooking(tx.QueryRow(ctx, bookingSelect+` WHERE b.payment_reference = $1 FOR UPDATE OF b`, reference))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения записи по платежной ссылке: %w", err)
	}

	switch booking.Status {
	case domain.BookingStatusConfirmed, domain.BookingStatusCompleted:
		return booking, nil
	case domain.BookingStatusCancelled:
		return booking, domain.ErrSlotTaken
	}

	var masterID int64
	err = tx.QueryRow(ctx, `SELECT id FROM masters WHERE id = $1 FOR UPDATE`, booking.MasterID).Scan(&masterID)
	if err != nil {
		return nil, fmt.Errorf("ошибка блокировки строки мастера: %w", err)
	}

	occupied, err := listActiveTx(ctx, tx, booking.MasterID, booking.BookingDate)
	if err != nil {
		return nil, err
	}

	startMinutes, err := domain.ClockToMinutes(booking.BookingTime)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	endMinutes := startMinutes + booking.DurationMinutes

	now := time.Now()
	for _, occ := range occupied {
		if occ.BookingID == booking.ID {
			continue
		}
		if domain.IntervalsOverlap(startMinutes, endMinutes, occ.StartMinutes, occ.EndMinutes) {
			// Оплата пришла после истечения удержания, слот уже продан.
			_, err = tx.Exec(ctx, `
				UPDATE bookings
				SET status = $1, cancelled_at = $2, cancellation_reason = $3, updated_at = $2
				WHERE id = $4
			`, domain.BookingStatusCancelled, now, domain.CancelReasonRefundRequired, booking.ID)
			if err != nil {
				return nil, fmt.Errorf("ошибка отмены записи при конфликте: %w", err)
			}

			if err = tx.Commit(ctx); err != nil {
				return nil, fmt.Errorf("ошибка при коммите транзакции: %w", err)
			}

			booking.Status = domain.BookingStatusCancelled
			booking.CancelledAt = &now
			booking.CancellationReason = domain.CancelReasonRefundRequired
			return booking, domain.ErrSlotTaken
		}
	}

	_, err = tx.Exec(ctx, `
		UPDATE bookings
		SET status = $1, expires_at = NULL, updated_at = $2
		WHERE id = $3
	`, domain.BookingStatusConfirmed, now, booking.ID)
	if err != nil {
		return nil, fmt.Errorf("ошибка подтверждения записи: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("ошибка при коммите транзакции: %w", err)
	}

	booking.Status = domain.BookingStatusConfirmed
	booking.ExpiresAt = nil
	return booking, nil
}

type queryRunner interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func listActiveTx(ctx context.Context, q queryRunner, masterID int64, date time.Time) ([]domain.OccupiedInterval, error) {
	query := `
		SELECT id, (EXTRACT(EPOCH FROM booking_time) / 60)::int, duration_minutes
		FROM bookings
		WHERE master_id = $1 AND booking_date = $2 AND ` + activeCondition + `
		ORDER BY booking_time
	`

	rows, err := q.Query(ctx, query, masterID, date)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения занятых интервалов: %w", err)
	}
	defer rows.Close()

	intervals := make([]domain.OccupiedInterval, 0)
	for rows.Next() {
		var interval domain.OccupiedInterval
		var durationMinutes int
		if err := rows.Scan(&interval.BookingID, &interval.StartMinutes, &durationMinutes); err != nil {
			return nil, fmt.Errorf("ошибка сканирования занятого интервала: %w", err)
		}
		interval.EndMinutes = interval.StartMinutes + durationMinutes
		intervals = append(intervals, interval)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по строкам: %w", err)
	}

	return intervals, nil
}

func (r *BookingRepo) ListActive(ctx context.Context, masterID int64, date time.Time) ([]domain.OccupiedInterval, error) {
	return listActiveTx(ctx, r.db, masterID, date)
}

func (r *BookingRepo) ListActiveBookings(ctx context.Context, masterID int64, date time.Time) ([]domain.Booking, error) {
	query := bookingSelect + ` WHERE b.master_id = $1 AND b.booking_date = $2 AND ` + activeCondition + ` ORDER BY b.booking_time`

	rows, err := r.db.Query(ctx, query, masterID, date)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения активных записей: %w", err)
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки записи: %w", err)
		}
		bookings = append(bookings, *booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по строкам: %w", err)
	}

	return bookings, nil
}

func (r *BookingRepo) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	booking, err := scanBooking(r.db.QueryRow(ctx, bookingSelect+` WHERE b.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения записи: %w", err)
	}

	return booking, nil
}

func (r *BookingRepo) GetByReference(ctx context.Context, reference string) (*domain.Booking, error) {
	booking, err := scanBooking(r.db.QueryRow(ctx, bookingSelect+` WHERE b.payment_reference = $1`, reference))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения записи: %w", err)
	}

	return booking, nil
}

func (r *BookingRepo) List(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, int, error) {
	var conditions []string
	var args []interface{}
	argCount := 1

	if filter.MasterID != nil {
		conditions = append(conditions, fmt.Sprintf("b.master_id = $%d", argCount))
		args = append(args, *filter.MasterID)
		argCount++
	}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("b.status = $%d", argCount))
		args = append(args, *filter.Status)
		argCount++
	}

	if filter.StartDate != nil {
		conditions = append(conditions, fmt.Sprintf("b.booking_date >= $%d", argCount))
		args = append(args, *filter.StartDate)
		argCount++
	}

	if filter.EndDate != nil {
		conditions = append(conditions, fmt.Sprintf("b.booking_date <= $%d", argCount))
		args = append(args, *filter.EndDate)
		argCount++
	}

	if filter.CustomerEmail != nil {
		conditions = append(conditions, fmt.Sprintf("b.customer_email = $%d", argCount))
		args = append(args, *filter.CustomerEmail)
		argCount++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM bookings b" + whereClause
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчета записей: %w", err)
	}

	query := bookingSelect + whereClause + " ORDER BY b.booking_date DESC, b.booking_time DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("ошибка сканирования строки записи: %w", err)
		}
		bookings = append(bookings, *booking)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("ошибка при итерации по строкам: %w", err)
	}

	return bookings, total, nil
}

// Transition меняет статус записи. Переход в cancelled всегда проставляет
// cancelled_at и cancellation_reason. Из терминальных статусов переходов нет.
func (r *BookingRepo) Transition(ctx context.Context, id int64, status domain.BookingStatus, fields domain.TransitionFields) error {
	updateFields := []string{"status = $1", "updated_at = $2"}
	args := []interface{}{status, time.Now()}
	argCount := 3

	if status == domain.BookingStatusCancelled {
		updateFields = append(updateFields, fmt.Sprintf("cancelled_at = $%d", argCount))
		args = append(args, time.Now())
		argCount++

		updateFields = append(updateFields, fmt.Sprintf("cancellation_reason = $%d", argCount))
		args = append(args, fields.CancellationReason)
		argCount++
	}

	if fields.ClearExpiry {
		updateFields = append(updateFields, "expires_at = NULL")
	}

	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE bookings
		SET %s
		WHERE id = $%d AND status NOT IN ('cancelled', 'completed')
	`, strings.Join(updateFields, ", "), argCount)

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ошибка смены статуса записи: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	return nil
}

func (r *BookingRepo) ListForReminder(ctx context.Context, date time.Time) ([]domain.Booking, error) {
	query := bookingSelect + `
		WHERE b.booking_date = $1 AND b.status = 'confirmed' AND b.reminder_sent = false
		ORDER BY b.booking_time
	`

	rows, err := r.db.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения записей для напоминаний: %w", err)
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки записи: %w", err)
		}
		bookings = append(bookings, *booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по строкам: %w", err)
	}

	return bookings, nil
}

// MarkReminderSent выставляет флаг только если он еще не стоит, повторный
// запуск обхода не отправит напоминание дважды.
func (r *BookingRepo) MarkReminderSent(ctx context.Context, id int64) error {
	query := `
		UPDATE bookings
		SET reminder_sent = true, updated_at = $1
		WHERE id = $2 AND reminder_sent = false
	`

	_, err := r.db.Exec(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("ошибка отметки отправленного напоминания: %w", err)
	}

	return nil
}
