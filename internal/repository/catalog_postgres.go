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

type CatalogRepo struct {
	db DB
}

func NewCatalogRepository(db DB) *CatalogRepo {
	return &CatalogRepo{
		db: db,
	}
}

func (r *CatalogRepo) CreateService(ctx context.Context, dto domain.CreateServiceDTO) (int64, error) {
	var id int64
	query := `
		INSERT INTO services (name, description, price, duration_minutes, category, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING id
	`

	now := time.Now()
	err := r.db.QueryRow(
		ctx,
		query,
		dto.Name,
		dto.Description,
		dto.Price,
		dto.DurationMinutes,
		dto.Category,
		true,
		now,
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("ошибка создания услуги: %w", err)
	}

	return id, nil
}

func (r *CatalogRepo) GetServiceByID(ctx context.Context, id int64) (*domain.Service, error) {
	query := `
		SELECT id, name, description, price, duration_minutes, category, is_active, created_at, updated_at
		FROM services
		WHERE id = $1
	`

	var service domain.Service
	err := r.db.QueryRow(ctx, query, id).Scan(
		&service.ID,
		&service.Name,
		&service.Description,
		&service.Price,
		&service.DurationMinutes,
		&service.Category,
		&service.IsActive,
		&service.CreatedAt,
		&service.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения услуги: %w", err)
	}

	return &service, nil
}

func (r *CatalogRepo) UpdateService(ctx context.Context, id int64, dto domain.UpdateServiceDTO) error {
	var updateFields []string
	var args []interface{}

	argCount := 1

	if dto.Name != nil {
		updateFields = append(updateFields, fmt.Sprintf("name = $%d", argCount))
		args = append(args, *dto.Name)
		argCount++
	}

	if dto.Description != nil {
		updateFields = append(updateFields, fmt.Sprintf("description = $%d", argCount))
		args = append(args, *dto.Description)
		argCount++
	}

	if dto.Price != nil {
		updateFields = append(updateFields, fmt.Sprintf("price = $%d", argCount))
		args = append(args, *dto.Price)
		argCount++
	}

	if dto.DurationMinutes != nil {
		updateFields = append(updateFields, fmt.Sprintf("duration_minutes = $%d", argCount))
		args = append(args, *dto.DurationMinutes)
		argCount++
	}

	if dto.Category != nil {
		updateFields = append(updateFields, fmt.Sprintf("category = $%d", argCount))
		args = append(args, *dto.Category)
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
		UPDATE services
		SET %s
		WHERE id = $%d
	`, strings.Join(updateFields, ", "), argCount)

	_, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ошибка обновления услуги: %w", err)
	}

	return nil
}

func (r *CatalogRepo) ListServices(ctx context.Context, filter domain.ServiceFilter) ([]domain.Service, int, error) {
	var conditions []string
	var args []interface{}
	argCount := 1

	if filter.Category != nil {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argCount))
		args = append(args, *filter.Category)
		argCount++
	}

	if filter.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", argCount))
		args = append(args, *filter.IsActive)
		argCount++
	}

	if filter.SearchTerm != nil {
		conditions = append(conditions, fmt.Sprintf("name ILIKE $%d", argCount))
		args = append(args, "%"+*filter.SearchTerm+"%")
		argCount++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM services" + whereClause
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчета услуг: %w", err)
	}

	query := `
		SELECT id, name, description, price, duration_minutes, category, is_active, created_at, updated_at
		FROM services
	` + whereClause + " ORDER BY category, name"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения списка услуг: %w", err)
	}
	defer rows.Close()

	services := make([]domain.Service, 0)
	for rows.Next() {
		var service domain.Service
		if err := rows.Scan(
			&service.ID,
			&service.Name,
			&service.Description,
			&service.Price,
			&service.DurationMinutes,
			&service.Category,
			&service.IsActive,
			&service.CreatedAt,
			&service.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("ошибка сканирования строки услуги: %w", err)
		}
		services = append(services, service)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("ошибка при итерации по строкам: %w", err)
	}

	return services, total, nil
}

func (r *CatalogRepo) CreateAddon(ctx context.Context, dto domain.CreateAddonDTO) (int64, error) {
	var id int64
	query := `
		INSERT INTO addons (name, price, duration_minutes, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING id
	`

	now := time.Now()
	err := r.db.QueryRow(ctx, query, dto.Name, dto.Price, dto.DurationMinutes, true, now).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("ошибка создания дополнения: %w", err)
	}

	return id, nil
}

func (r *CatalogRepo) GetAddonsByIDs(ctx context.Context, ids []int64) ([]domain.Addon, error) {
	if len(ids) == 0 {
		return []domain.Addon{}, nil
	}

	query := `
		SELECT id, name, price, duration_minutes, is_active, created_at, updated_at
		FROM addons
		WHERE id = ANY($1)
	`

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения дополнений: %w", err)
	}
	defer rows.Close()

	addons := make([]domain.Addon, 0, len(ids))
	for rows.Next() {
		var addon domain.Addon
		if err := rows.Scan(
			&addon.ID,
			&addon.Name,
			&addon.Price,
			&addon.DurationMinutes,
			&addon.IsActive,
			&addon.CreatedAt,
			&addon.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки дополнения: %w", err)
		}
		addons = append(addons, addon)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по строкам: %w", err)
	}

	return addons, nil
}

func (r *CatalogRepo) UpdateAddon(ctx context.Context, id int64, dto domain.UpdateAddonDTO) error {
	var updateFields []string
	var args []interface{}

	argCount := 1

	if dto.Name != nil {
		updateFields = append(updateFields, fmt.Sprintf("name = $%d", argCount))
		args = append(args, *dto.Name)
		argCount++
	}

	if dto.Price != nil {
		updateFields = append(updateFields, fmt.Sprintf("price = $%d", argCount))
		args = append(args, *dto.Price)
		argCount++
	}

	if dto.DurationMinutes != nil {
		updateFields = append(updateFields, fmt.Sprintf("duration_minutes = $%d", argCount))
		args = append(args, *dto.DurationMinutes)
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
		UPDATE addons
		SET %s
		WHERE id = $%d
	`, strings.Join(updateFields, ", "), argCount)

	_, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ошибка обновления дополнения: %w", err)
	}

	return nil
}

func (r *CatalogRepo) ListAddons(ctx context.Context, onlyActive bool) ([]domain.Addon, error) {
	query := `
		SELECT id, name, price, duration_minutes, is_active, created_at, updated_at
		FROM addons
	`
	if onlyActive {
		query += " WHERE is_active = true"
	}
	query += " ORDER BY name"

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка дополнений: %w", err)
	}
	defer rows.Close()

	addons := make([]domain.Addon, 0)
	for rows.Next() {
		var addon domain.Addon
		if err := rows.Scan(
			&addon.ID,
			&addon.Name,
			&addon.Price,
			&addon.DurationMinutes,
			&addon.IsActive,
			&addon.CreatedAt,
			&addon.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки дополнения: %w", err)
		}
		addons = append(addons, addon)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по строкам: %w", err)
	}

	return addons, nil
}
