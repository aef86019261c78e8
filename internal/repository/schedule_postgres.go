package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"strizh/internal/domain"
)

type ScheduleRepo struct {
	db DB
}

func NewScheduleRepository(db DB) *ScheduleRepo {
	return &ScheduleRepo{db: db}
}

// Upsert создает или обновляет строку недельного расписания мастера на день
// недели. Строки не удаляются, только обновляются.
func (r *ScheduleRepo) Upsert(ctx context.Context, masterID int64, dto domain.UpsertWeeklyScheduleDTO) (int64, error) {
	var id int64
	query := `
		INSERT INTO weekly_schedule (master_id, day_of_week, start_time, end_time, is_available, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (master_id, day_of_week)
		DO UPDATE SET start_time = EXCLUDED.start_time,
		              end_time = EXCLUDED.end_time,
		              is_available = EXCLUDED.is_available,
		              updated_at = EXCLUDED.updated_at
		RETURNING id
	`

	err := r.db.QueryRow(
		ctx,
		query,
		masterID,
		int(dto.DayOfWeek),
		dto.StartTime,
		dto.EndTime,
		dto.IsAvailable,
		time.Now(),
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("ошибка сохранения недельного расписания: %w", err)
	}

	return id, nil
}

func (r *ScheduleRepo) GetByMasterAndDay(ctx context.Context, masterID int64, day domain.DayOfWeek) (*domain.WeeklySchedule, error) {
	query := `
		SELECT id, master_id, day_of_week, to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'), is_available, created_at, updated_at
		FROM weekly_schedule
		WHERE master_id = $1 AND day_of_week = $2
	`

	var schedule domain.WeeklySchedule
	err := r.db.QueryRow(ctx, query, masterID, int(day)).Scan(
		&schedule.ID,
		&schedule.MasterID,
		&schedule.DayOfWeek,
		&schedule.StartTime,
		&schedule.EndTime,
		&schedule.IsAvailable,
		&schedule.CreatedAt,
		&schedule.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка получения недельного расписания: %w", err)
	}

	return &schedule, nil
}

func (r *ScheduleRepo) ListByMaster(ctx context.Context, masterID int64) ([]domain.WeeklySchedule, error) {
	query := `
		SELECT id, master_id, day_of_week, to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'), is_available, created_at, updated_at
		FROM weekly_schedule
		WHERE master_id = $1
		ORDER BY day_of_week
	`

	rows, err := r.db.Query(ctx, query, masterID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения недельного расписания: %w", err)
	}
	defer rows.Close()

	schedules := make([]domain.WeeklySchedule, 0, 7)
	for rows.Next() {
		var schedule domain.WeeklySchedule
		if err := rows.Scan(
			&schedule.ID,
			&schedule.MasterID,
			&schedule.DayOfWeek,
			&schedule.StartTime,
			&schedule.EndTime,
			&schedule.IsAvailable,
			&schedule.CreatedAt,
			&schedule.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки расписания: %w", err)
		}
		schedules = append(schedules, schedule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по строкам: %w", err)
	}

	return schedules, nil
}

func (r *ScheduleRepo) CreateTimeOff(ctx context.Context, masterID int64, startDate, endDate time.Time, reason string) (int64, error) {
	var id int64
	query := `
		INSERT INTO time_off (master_id, start_date, end_date, reason, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query, masterID, startDate, endDate, reason, time.Now()).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("ошибка создания записи об отгуле: %w", err)
	}

	return id, nil
}

// HasTimeOff проверяет, накрывает ли дату хотя бы одна запись об отгуле.
// Диапазон [start_date, end_date] включительный с обеих сторон.
func (r *ScheduleRepo) HasTimeOff(ctx context.Context, masterID int64, date time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM time_off
			WHERE master_id = $1 AND start_date <= $2 AND end_date >= $2
		)
	`

	var exists bool
	err := r.db.QueryRow(ctx, query, masterID, date).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ошибка проверки отгула: %w", err)
	}

	return exists, nil
}

// HasTimeOffCovering истинен, если уже есть запись об отгуле, целиком
// накрывающая диапазон [startDate, endDate]. Повторная заявка на тот же
// период не создает новую запись.
func (r *ScheduleRepo) HasTimeOffCovering(ctx context.Context, masterID int64, startDate, endDate time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM time_off
			WHERE master_id = $1 AND start_date <= $2 AND end_date >= $3
		)
	`

	var exists bool
	err := r.db.QueryRow(ctx, query, masterID, startDate, endDate).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ошибка проверки отгула: %w", err)
	}

	return exists, nil
}

func (r *ScheduleRepo) ListTimeOff(ctx context.Context, masterID int64) ([]domain.TimeOff, error) {
	query := `
		SELECT id, master_id, start_date, end_date, reason, created_at
		FROM time_off
		WHERE master_id = $1
		ORDER BY start_date DESC
	`

	rows, err := r.db.Query(ctx, query, masterID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка отгулов: %w", err)
	}
	defer rows.Close()

	records := make([]domain.TimeOff, 0)
	for rows.Next() {
		var record domain.TimeOff
		if err := rows.Scan(
			&record.ID,
			&record.MasterID,
			&record.StartDate,
			&record.EndDate,
			&record.Reason,
			&record.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки отгула: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по строкам: %w", err)
	}

	return records, nil
}
