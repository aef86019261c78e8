package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"strizh/config"
	"strizh/internal/domain"
	"strizh/internal/notify"
	"strizh/internal/payment"
	"strizh/internal/repository"
	"strizh/internal/storage"
)

type Deps struct {
	Repos       *repository.Repositories
	Logger      *zap.Logger
	Config      *config.Config
	FileStorage storage.FileStorage
	Payment     payment.Provider
	Notifier    notify.Notifier
}

type Services struct {
	User         UserService
	Auth         AuthService
	Master       MasterService
	Catalog      CatalogService
	Schedule     ScheduleService
	Availability AvailabilityService
	Booking      BookingService
	Reminder     ReminderService
}

func NewServices(deps Deps) *Services {
	catalog := NewCatalogService(deps.Repos.Catalog, deps.Logger)
	availability := NewAvailabilityService(deps.Repos.Schedule, deps.Repos.Booking, deps.Repos.Master, catalog, deps.Config.Booking, deps.Logger)

	return &Services{
		User:         NewUserService(deps.Repos.User, deps.Logger),
		Auth:         NewAuthService(deps.Repos.Auth, deps.Repos.User, deps.Config.JWT, deps.Logger),
		Master:       NewMasterService(deps.Repos.Master, deps.Repos.User, deps.FileStorage, deps.Logger),
		Catalog:      catalog,
		Schedule:     NewScheduleService(deps.Repos.Schedule, deps.Repos.Master, deps.Repos.Booking, deps.Notifier, deps.Logger),
		Availability: availability,
		Booking:      NewBookingService(deps.Repos.Booking, deps.Repos.Master, catalog, availability, deps.Payment, deps.Notifier, deps.Config.Booking, deps.Config.Payment, deps.Logger),
		Reminder:     NewReminderService(deps.Repos.Booking, deps.Repos.Master, deps.Repos.Catalog, deps.Notifier, deps.Config.Booking, deps.Logger),
	}
}

type UserService interface {
	Create(ctx context.Context, dto domain.CreateUserDTO) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	Update(ctx context.Context, id int64, dto domain.UpdateUserDTO) error
	UpdatePassword(ctx context.Context, id int64, dto domain.PasswordUpdateDTO) error
	List(ctx context.Context, limit, offset int) ([]domain.User, error)
}

type AuthService interface {
	Login(ctx context.Context, dto domain.LoginRequest, userAgent, ip string) (*domain.Tokens, error)
	RefreshTokens(ctx context.Context, refreshToken, userAgent, ip string) (*domain.Tokens, error)
	Logout(ctx context.Context, refreshToken string) error
	ParseToken(ctx context.Context, token string) (int64, domain.UserRole, error)
}

type MasterService interface {
	Create(ctx context.Context, userID int64, dto domain.CreateMasterDTO) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Master, error)
	GetByUserID(ctx context.Context, userID int64) (*domain.Master, error)
	Update(ctx context.Context, id int64, dto domain.UpdateMasterDTO) error
	List(ctx context.Context, onlyActive bool, limit, offset int) ([]domain.Master, error)

	UploadProfilePhoto(ctx context.Context, masterID int64, photo []byte, filename string) error
	DeleteProfilePhoto(ctx context.Context, masterID int64) error
}

type CatalogService interface {
	CreateService(ctx context.Context, dto domain.CreateServiceDTO) (int64, error)
	GetServiceByID(ctx context.Context, id int64) (*domain.Service, error)
	UpdateService(ctx context.Context, id int64, dto domain.UpdateServiceDTO) error
	ListServices(ctx context.Context, filter domain.ServiceFilter) ([]domain.Service, int, error)

	CreateAddon(ctx context.Context, dto domain.CreateAddonDTO) (int64, error)
	UpdateAddon(ctx context.Context, id int64, dto domain.UpdateAddonDTO) error
	ListAddons(ctx context.Context, onlyActive bool) ([]domain.Addon, error)

	// Quote считает суммарную длительность и стоимость услуги с допами.
	Quote(ctx context.Context, serviceID int64, addonIDs []int64) (*domain.Quote, error)
}

type ScheduleService interface {
	UpsertWeekly(ctx context.Context, masterID int64, dto domain.UpsertWeeklyScheduleDTO) (int64, error)
	ListWeekly(ctx context.Context, masterID int64) ([]domain.WeeklySchedule, error)

	// EffectiveWindow возвращает рабочее окно мастера на дату с учетом
	// недельного расписания и отгулов.
	EffectiveWindow(ctx context.Context, masterID int64, date time.Time) (*domain.EffectiveWindow, error)

	// MarkUnavailable создает отгул и каскадно отменяет попавшие под него
	// активные записи с уведомлением клиентов.
	MarkUnavailable(ctx context.Context, masterID int64, dto domain.CreateTimeOffDTO) (*domain.TimeOffResult, error)
	ListTimeOff(ctx context.Context, masterID int64) ([]domain.TimeOff, error)
}

type AvailabilityService interface {
	// GetFreeSlots возвращает отсортированные времена начала, в которые
	// услуга с допами целиком помещается в рабочее окно мастера.
	GetFreeSlots(ctx context.Context, masterID int64, date string, serviceID int64, addonIDs []int64) ([]string, error)
}

type BookingService interface {
	// Initiate удерживает слот и создает платежную сессию.
	Initiate(ctx context.Context, dto domain.CreateBookingDTO) (*domain.BookingHold, error)

	// ConfirmPayment проверяет оплату у провайдера и подтверждает запись.
	ConfirmPayment(ctx context.Context, reference string) (*domain.Booking, error)

	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByReference(ctx context.Context, reference string) (*domain.Booking, error)
	List(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, int, error)
	Cancel(ctx context.Context, id int64, reason string) error
	Complete(ctx context.Context, id int64) error
}

type ReminderService interface {
	// RunSweep рассылает напоминания по завтрашним подтвержденным записям.
	RunSweep(ctx context.Context) (*domain.SweepResult, error)
}
