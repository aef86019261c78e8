package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"strizh/internal/domain"
)

// DB покрывает нужное подмножество pgxpool.Pool, в тестах подменяется моком.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Repositories struct {
	User     UserRepository
	Auth     AuthRepository
	Master   MasterRepository
	Catalog  CatalogRepository
	Schedule ScheduleRepository
	Booking  BookingRepository
}

func NewRepositories(db DB) *Repositories {
	return &Repositories{
		User:     NewUserRepository(db),
		Auth:     NewAuthRepository(db),
		Master:   NewMasterRepository(db),
		Catalog:  NewCatalogRepository(db),
		Schedule: NewScheduleRepository(db),
		Booking:  NewBookingRepository(db),
	}
}

type UserRepository interface {
	Create(ctx context.Context, dto domain.CreateUserDTO, passwordHash string) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, id int64, dto domain.UpdateUserDTO) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	List(ctx context.Context, limit, offset int) ([]domain.User, error)
}

type AuthRepository interface {
	CreateSession(ctx context.Context, session domain.Session) error
	GetSessionByRefreshToken(ctx context.Context, refreshToken string) (*domain.Session, error)
	DeleteSession(ctx context.Context, id string) error
	DeleteSessionsByUserID(ctx context.Context, userID int64) error
}

type MasterRepository interface {
	Create(ctx context.Context, userID int64, dto domain.CreateMasterDTO) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Master, error)
	GetByUserID(ctx context.Context, userID int64) (*domain.Master, error)
	Update(ctx context.Context, id int64, dto domain.UpdateMasterDTO) error
	UpdateProfilePhoto(ctx context.Context, id int64, photoURL string) error
	List(ctx context.Context, onlyActive bool, limit, offset int) ([]domain.Master, error)
}

type CatalogRepository interface {
	CreateService(ctx context.Context, dto domain.CreateServiceDTO) (int64, error)
	GetServiceByID(ctx context.Context, id int64) (*domain.Service, error)
	UpdateService(ctx context.Context, id int64, dto domain.UpdateServiceDTO) error
	ListServices(ctx context.Context, filter domain.ServiceFilter) ([]domain.Service, int, error)

	CreateAddon(ctx context.Context, dto domain.CreateAddonDTO) (int64, error)
	GetAddonsByIDs(ctx context.Context, ids []int64) ([]domain.Addon, error)
	UpdateAddon(ctx context.Context, id int64, dto domain.UpdateAddonDTO) error
	ListAddons(ctx context.Context, onlyActive bool) ([]domain.Addon, error)
}

type ScheduleRepository interface {
	Upsert(ctx context.Context, masterID int64, dto domain.UpsertWeeklyScheduleDTO) (int64, error)
	GetByMasterAndDay(ctx context.Context, masterID int64, day domain.DayOfWeek) (*domain.WeeklySchedule, error)
	ListByMaster(ctx context.Context, masterID int64) ([]domain.WeeklySchedule, error)

	CreateTimeOff(ctx context.Context, masterID int64, startDate, endDate time.Time, reason string) (int64, error)
	HasTimeOff(ctx context.Context, masterID int64, date time.Time) (bool, error)
	HasTimeOffCovering(ctx context.Context, masterID int64, startDate, endDate time.Time) (bool, error)
	ListTimeOff(ctx context.Context, masterID int64) ([]domain.TimeOff, error)
}

type BookingRepository interface {
	// CreateHold атомарно проверяет занятость и вставляет pending-запись
	// с TTL удержания. Возвращает domain.ErrSlotTaken при пересечении.
	CreateHold(ctx context.Context, booking domain.Booking) (int64, error)

	// ConfirmByReference атомарно переводит удержание pending→confirmed,
	// перепроверяя, что слот все еще принадлежит этой записи.
	ConfirmByReference(ctx context.Context, reference string) (*domain.Booking, error)

	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByReference(ctx context.Context, reference string) (*domain.Booking, error)
	ListActive(ctx context.Context, masterID int64, date time.Time) ([]domain.OccupiedInterval, error)
	ListActiveBookings(ctx context.Context, masterID int64, date time.Time) ([]domain.Booking, error)
	List(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, int, error)
	Transition(ctx context.Context, id int64, status domain.BookingStatus, fields domain.TransitionFields) error

	ListForReminder(ctx context.Context, date time.Time) ([]domain.Booking, error)
	MarkReminderSent(ctx context.Context, id int64) error
}
