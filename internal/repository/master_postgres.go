package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"strizh/internal/domain"
)

type MasterRepo struct {
	db DB
}

func NewMasterRepository(db DB) *MasterRepo {
	return &MasterRepo{
		db: db,
	}
}

func (r *MasterRepo) Create(ctx context.Context, userID int64, dto domain.CreateMasterDTO) (int64, error) {
	var id int64
	query := `
		INSERT INTO masters (user_id, description, experience_years, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING id
	`

	now := time.Now()
	err := r.db.QueryRow(
		ctx,
		query,
		userID,
		dto.Description,
		dto.ExperienceYears,
		true,
		now,
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("ошибка создания профиля мастера: %w", err)
	}

	return id, nil
}

const masterSelect = `
	SELECT m.id, m.user_id, m.description, m.experience_years, m.profile_photo_url, m.is_active, m.created_at, m.updated_at,
	       u.id, u.first_name, u.last_name, u.email, u.phone, u.role, u.is_active, u.created_at, u.updated_at
	FROM masters m
	JOIN users u ON m.user_id = u.id
`

func scanMaster(row pgx.Row) (*domain.Master, error) {
	var master domain.Master
	var photoURL *string

	err := row.Scan(
		&master.ID,
		&master.UserID,
		&master.Description,
		&master.ExperienceYears,
		&photoURL,
		&master.IsActive,
		&master.CreatedAt,
		&master.UpdatedAt,
		&master.User.ID,
		&master.User.FirstName,
		&master.User.LastName,
		&master.User.Email,
		&master.User.Phone,
		&master.User.Role,
		&master.User.IsActive,
		&master.User.CreatedAt,
		&master.User.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if photoURL != nil {
		master.ProfilePhotoURL = *photoURL
	}

	return &master, nil
}

func (r *MasterRepo) GetByID(ctx context.Context, id int64) (*domain.Master, error) {
	master, err := scanMaster(r.db.QueryRow(ctx, masterSelect+" WHERE m.id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения мастера: %w", err)
	}

	return master, nil
}

func (r *MasterRepo) GetByUserID(ctx context.Context, userID int64) (*domain.Master, error) {
	master, err := scanMaster(r.db.QueryRow(ctx, masterSelect+" WHERE m.user_id = $1", userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения мастера: %w", err)
	}

	return master, nil
}

func (r *MasterRepo) Update(ctx context.Context, id int64, dto domain.UpdateMasterDTO) error {
	var updateFields []string
	var args []interface{}

	argCount := 1

	if dto.Description != nil {
		updateFields = append(updateFields, fmt.Sprintf("description = $%d", argCount))
		args = append(args, *dto.Description)
		argCount++
	}

	if dto.ExperienceYears != nil {
		updateFields = append(updateFields, fmt.Sprintf("experience_years = $%d", argCount))
		args = append(args, *dto.ExperienceYears)
		argCount++
	}

	if dto.IsActive != nil {
		updateFields = append(updateFields, fmt.Sprintf("is_active = $%d", argCount))
		args = append(args, *dto.IsActive)
		argCount++
	}

	if len(updateFields) == 0 {
		return nil
	}

	updateFields = append(updateFields, fmt.Sprintf("updated_at = $%d", argCount))
	args = append(args, time.Now())
	argCount++

	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE masters
		SET %s
		WHERE id = $%d
	`, strings.Join(updateFields, ", "), argCount)

	_, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ошибка обновления профиля мастера: %w", err)
	}

	return nil
}

func (r *MasterRepo) UpdateProfilePhoto(ctx context.Context, id int64, photoURL string) error {
	query := `
		UPDATE masters
		SET profile_photo_url = $1, updated_at = $2
		WHERE id = $3
	`

	_, err := r.db.Exec(ctx, query, photoURL, time.Now(), id)
	if err != nil {
		return fmt.Errorf("ошибка обновления фото мастера: %w", err)
	}

	return nil
}

func (r *MasterRepo) List(ctx context.Context, onlyActive bool, limit, offset int) ([]domain.Master, error) {
	query := masterSelect
	if onlyActive {
		query += " WHERE m.is_active = true AND u.is_active = true"
	}
	query += " ORDER BY m.id LIMIT $1 OFFSET $2"

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка мастеров: %w", err)
	}
	defer rows.Close()

	masters := make([]domain.Master, 0)
	for rows.Next() {
		master, err := scanMaster(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки мастера: %w", err)
		}
		masters = append(masters, *master)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по строкам: %w", err)
	}

	return masters, nil
}
