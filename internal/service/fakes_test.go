package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"strizh/internal/domain"
	"strizh/internal/payment"
)

// Внутрипамятные реализации репозиториев для тестов сервисного слоя.
// fakeBookingRepo повторяет транзакционную семантику настоящего хранилища,
// включая проверку пересечений под мьютексом.

type fakeMasterRepo struct {
	mu      sync.Mutex
	masters map[int64]domain.Master
	nextID  int64
}

func newFakeMasterRepo() *fakeMasterRepo {
	return &fakeMasterRepo{
		masters: make(map[int64]domain.Master),
		nextID:  1,
	}
}

func (r *fakeMasterRepo) addMaster(firstName, lastName string) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID
	r.nextID++
	r.masters[id] = domain.Master{
		ID:       id,
		UserID:   id,
		IsActive: true,
		User: domain.User{
			ID:        id,
			FirstName: firstName,
			LastName:  lastName,
			IsActive:  true,
		},
	}
	return id
}

func (r *fakeMasterRepo) Create(ctx context.Context, userID int64, dto domain.CreateMasterDTO) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID
	r.nextID++
	r.masters[id] = domain.Master{ID: id, UserID: userID, Description: dto.Description, IsActive: true}
	return id, nil
}

func (r *fakeMasterRepo) GetByID(ctx context.Context, id int64) (*domain.Master, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	master, ok := r.masters[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &master, nil
}

func (r *fakeMasterRepo) GetByUserID(ctx context.Context, userID int64) (*domain.Master, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, master := range r.masters {
		if master.UserID == userID {
			return &master, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeMasterRepo) Update(ctx context.Context, id int64, dto domain.UpdateMasterDTO) error {
	return nil
}

func (r *fakeMasterRepo) UpdateProfilePhoto(ctx context.Context, id int64, photoURL string) error {
	return nil
}

func (r *fakeMasterRepo) List(ctx context.Context, onlyActive bool, limit, offset int) ([]domain.Master, error) {
	return nil, nil
}

type fakeScheduleRepo struct {
	mu      sync.Mutex
	weekly  map[string]domain.WeeklySchedule // ключ masterID:day
	timeOff []domain.TimeOff
	nextID  int64
}

func newFakeScheduleRepo() *fakeScheduleRepo {
	return &fakeScheduleRepo{
		weekly: make(map[string]domain.WeeklySchedule),
		nextID: 1,
	}
}

func weeklyKey(masterID int64, day domain.DayOfWeek) string {
	return fmt.Sprintf("%d:%d", masterID, day)
}

func (r *fakeScheduleRepo) Upsert(ctx context.Context, masterID int64, dto domain.UpsertWeeklyScheduleDTO) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := weeklyKey(masterID, dto.DayOfWeek)
	existing, ok := r.weekly[key]
	id := existing.ID
	if !ok {
		id = r.nextID
		r.nextID++
	}

	r.weekly[key] = domain.WeeklySchedule{
		ID:          id,
		MasterID:    masterID,
		DayOfWeek:   dto.DayOfWeek,
		StartTime:   dto.StartTime,
		EndTime:     dto.EndTime,
		IsAvailable: dto.IsAvailable,
	}
	return id, nil
}

func (r *fakeScheduleRepo) GetByMasterAndDay(ctx context.Context, masterID int64, day domain.DayOfWeek) (*domain.WeeklySchedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	schedule, ok := r.weekly[weeklyKey(masterID, day)]
	if !ok {
		return nil, nil
	}
	return &schedule, nil
}

func (r *fakeScheduleRepo) ListByMaster(ctx context.Context, masterID int64) ([]domain.WeeklySchedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var schedules []domain.WeeklySchedule
	for _, schedule := range r.weekly {
		if schedule.MasterID == masterID {
			schedules = append(schedules, schedule)
		}
	}
	return schedules, nil
}

func (r *fakeScheduleRepo) CreateTimeOff(ctx context.Context, masterID int64, startDate, endDate time.Time, reason string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID
	r.nextID++
	r.timeOff = append(r.timeOff, domain.TimeOff{
		ID:        id,
		MasterID:  masterID,
		StartDate: startDate,
		EndDate:   endDate,
		Reason:    reason,
	})
	return id, nil
}

func (r *fakeScheduleRepo) HasTimeOff(ctx context.Context, masterID int64, date time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, record := range r.timeOff {
		if record.MasterID == masterID && !date.Before(record.StartDate) && !date.After(record.EndDate) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeScheduleRepo) HasTimeOffCovering(ctx context.Context, masterID int64, startDate, endDate time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, record := range r.timeOff {
		if record.MasterID == masterID && !record.StartDate.After(startDate) && !record.EndDate.Before(endDate) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeScheduleRepo) ListTimeOff(ctx context.Context, masterID int64) ([]domain.TimeOff, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var records []domain.TimeOff
	for _, record := range r.timeOff {
		if record.MasterID == masterID {
			records = append(records, record)
		}
	}
	return records, nil
}

type fakeCatalogRepo struct {
	mu       sync.Mutex
	services map[int64]domain.Service
	addons   map[int64]domain.Addon
	nextID   int64
}

func newFakeCatalogRepo() *fakeCatalogRepo {
	return &fakeCatalogRepo{
		services: make(map[int64]domain.Service),
		addons:   make(map[int64]domain.Addon),
		nextID:   1,
	}
}

func (r *fakeCatalogRepo) addService(name string, price float64, durationMinutes int) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID
	r.nextID++
	r.services[id] = domain.Service{
		ID:              id,
		Name:            name,
		Price:           price,
		DurationMinutes: durationMinutes,
		IsActive:        true,
	}
	return id
}

func (r *fakeCatalogRepo) addAddon(name string, price float64, durationMinutes int) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID
	r.nextID++
	r.addons[id] = domain.Addon{
		ID:              id,
		Name:            name,
		Price:           price,
		DurationMinutes: durationMinutes,
		IsActive:        true,
	}
	return id
}

func (r *fakeCatalogRepo) CreateService(ctx context.Context, dto domain.CreateServiceDTO) (int64, error) {
	return r.addService(dto.Name, dto.Price, dto.DurationMinutes), nil
}

func (r *fakeCatalogRepo) GetServiceByID(ctx context.Context, id int64) (*domain.Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	svc, ok := r.services[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &svc, nil
}

func (r *fakeCatalogRepo) UpdateService(ctx context.Context, id int64, dto domain.UpdateServiceDTO) error {
	return nil
}

func (r *fakeCatalogRepo) ListServices(ctx context.Context, filter domain.ServiceFilter) ([]domain.Service, int, error) {
	return nil, 0, nil
}

func (r *fakeCatalogRepo) CreateAddon(ctx context.Context, dto domain.CreateAddonDTO) (int64, error) {
	return r.addAddon(dto.Name, dto.Price, dto.DurationMinutes), nil
}

func (r *fakeCatalogRepo) GetAddonsByIDs(ctx context.Context, ids []int64) ([]domain.Addon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var addons []domain.Addon
	for _, id := range ids {
		if addon, ok := r.addons[id]; ok {
			addons = append(addons, addon)
		}
	}
	return addons, nil
}

func (r *fakeCatalogRepo) UpdateAddon(ctx context.Context, id int64, dto domain.UpdateAddonDTO) error {
	return nil
}

func (r *fakeCatalogRepo) ListAddons(ctx context.Context, onlyActive bool) ([]domain.Addon, error) {
	return nil, nil
}

type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[int64]domain.Booking
	nextID   int64
	now      func() time.Time
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{
		bookings: make(map[int64]domain.Booking),
		nextID:   1,
		now:      time.Now,
	}
}

func (r *fakeBookingRepo) isActive(b domain.Booking) bool {
	if b.Status == domain.BookingStatusConfirmed {
		return true
	}
	if b.Status == domain.BookingStatusPending {
		return b.ExpiresAt != nil && b.ExpiresAt.After(r.now())
	}
	return false
}

func (r *fakeBookingRepo) CreateHold(ctx context.Context, booking domain.Booking) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	start, err := domain.ClockToMinutes(booking.BookingTime)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	end := start + booking.DurationMinutes

	for _, existing := range r.bookings {
		if existing.MasterID != booking.MasterID || !existing.BookingDate.Equal(booking.BookingDate) {
			continue
		}
		if !r.isActive(existing) {
			continue
		}
		existingStart, _ := domain.ClockToMinutes(existing.BookingTime)
		if domain.IntervalsOverlap(start, end, existingStart, existingStart+existing.DurationMinutes) {
			return 0, domain.ErrSlotTaken
		}
	}

	id := r.nextID
	r.nextID++
	booking.ID = id
	booking.Status = domain.BookingStatusPending
	r.bookings[id] = booking
	return id, nil
}

func (r *fakeBookingRepo) ConfirmByReference(ctx context.Context, reference string) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var found *domain.Booking
	for id := range r.bookings {
		b := r.bookings[id]
		if b.PaymentReference == reference {
			found = &b
			break
		}
	}
	if found == nil {
		return nil, domain.ErrNotFound
	}

	switch found.Status {
	case domain.BookingStatusConfirmed, domain.BookingStatusCompleted:
		return found, nil
	case domain.BookingStatusCancelled:
		return found, domain.ErrSlotTaken
	}

	start, _ := domain.ClockToMinutes(found.BookingTime)
	end := start + found.DurationMinutes
	for _, other := range r.bookings {
		if other.ID == found.ID || other.MasterID != found.MasterID || !other.BookingDate.Equal(found.BookingDate) {
			continue
		}
		if !r.isActive(other) {
			continue
		}
		otherStart, _ := domain.ClockToMinutes(other.BookingTime)
		if domain.IntervalsOverlap(start, end, otherStart, otherStart+other.DurationMinutes) {
			now := r.now()
			found.Status = domain.BookingStatusCancelled
			found.CancelledAt = &now
			found.CancellationReason = domain.CancelReasonRefundRequired
			r.bookings[found.ID] = *found
			return found, domain.ErrSlotTaken
		}
	}

	found.Status = domain.BookingStatusConfirmed
	found.ExpiresAt = nil
	r.bookings[found.ID] = *found
	return found, nil
}

func (r *fakeBookingRepo) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	booking, ok := r.bookings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &booking, nil
}

func (r *fakeBookingRepo) GetByReference(ctx context.Context, reference string) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id := range r.bookings {
		b := r.bookings[id]
		if b.PaymentReference == reference {
			return &b, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeBookingRepo) ListActive(ctx context.Context, masterID int64, date time.Time) ([]domain.OccupiedInterval, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	intervals := make([]domain.OccupiedInterval, 0)
	for _, b := range r.bookings {
		if b.MasterID != masterID || !b.BookingDate.Equal(date) || !r.isActive(b) {
			continue
		}
		start, _ := domain.ClockToMinutes(b.BookingTime)
		intervals = append(intervals, domain.OccupiedInterval{
			BookingID:    b.ID,
			StartMinutes: start,
			EndMinutes:   start + b.DurationMinutes,
		})
	}
	return intervals, nil
}

func (r *fakeBookingRepo) ListActiveBookings(ctx context.Context, masterID int64, date time.Time) ([]domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	bookings := make([]domain.Booking, 0)
	for _, b := range r.bookings {
		if b.MasterID == masterID && b.BookingDate.Equal(date) && r.isActive(b) {
			bookings = append(bookings, b)
		}
	}
	return bookings, nil
}

func (r *fakeBookingRepo) List(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	bookings := make([]domain.Booking, 0)
	for _, b := range r.bookings {
		if filter.MasterID != nil && b.MasterID != *filter.MasterID {
			continue
		}
		if filter.Status != nil && b.Status != *filter.Status {
			continue
		}
		bookings = append(bookings, b)
	}
	return bookings, len(bookings), nil
}

func (r *fakeBookingRepo) Transition(ctx context.Context, id int64, status domain.BookingStatus, fields domain.TransitionFields) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	booking, ok := r.bookings[id]
	if !ok || booking.Status.IsTerminal() {
		return domain.ErrNotFound
	}

	booking.Status = status
	if status == domain.BookingStatusCancelled {
		now := r.now()
		booking.CancelledAt = &now
		booking.CancellationReason = fields.CancellationReason
	}
	if fields.ClearExpiry {
		booking.ExpiresAt = nil
	}
	r.bookings[id] = booking
	return nil
}

func (r *fakeBookingRepo) ListForReminder(ctx context.Context, date time.Time) ([]domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	bookings := make([]domain.Booking, 0)
	for _, b := range r.bookings {
		if b.BookingDate.Equal(date) && b.Status == domain.BookingStatusConfirmed && !b.ReminderSent {
			bookings = append(bookings, b)
		}
	}
	return bookings, nil
}

func (r *fakeBookingRepo) MarkReminderSent(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	booking, ok := r.bookings[id]
	if !ok {
		return domain.ErrNotFound
	}
	booking.ReminderSent = true
	r.bookings[id] = booking
	return nil
}

type fakePaymentProvider struct {
	mu         sync.Mutex
	initErr    error
	verifyErr  error
	status     string
	initCalls  int
	verifyRefs []string
}

func newFakePaymentProvider() *fakePaymentProvider {
	return &fakePaymentProvider{status: "success"}
}

func (p *fakePaymentProvider) Initialize(ctx context.Context, req payment.InitializeRequest) (*payment.InitializeResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.initCalls++
	if p.initErr != nil {
		return nil, p.initErr
	}
	return &payment.InitializeResponse{
		AuthorizationURL: "https://checkout.example.com/" + req.Reference,
		AccessCode:       "code",
		Reference:        req.Reference,
	}, nil
}

func (p *fakePaymentProvider) Verify(ctx context.Context, reference string) (*payment.VerifyResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.verifyRefs = append(p.verifyRefs, reference)
	if p.verifyErr != nil {
		return nil, p.verifyErr
	}
	return &payment.VerifyResult{
		Reference: reference,
		Status:    p.status,
	}, nil
}

type notifierCall struct {
	kind      string
	bookingID int64
	reason    string
}

type fakeNotifier struct {
	mu        sync.Mutex
	calls     []notifierCall
	err       error
	failFirst int
}

func (n *fakeNotifier) record(kind string, bookingID int64, reason string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.failFirst > 0 {
		n.failFirst--
		return domain.ErrExternalService
	}
	if n.err != nil {
		return n.err
	}
	n.calls = append(n.calls, notifierCall{kind: kind, bookingID: bookingID, reason: reason})
	return nil
}

func (n *fakeNotifier) BookingConfirmed(ctx context.Context, booking domain.Booking) error {
	return n.record("confirmed", booking.ID, "")
}

func (n *fakeNotifier) BookingCancelled(ctx context.Context, booking domain.Booking, reason string) error {
	return n.record("cancelled", booking.ID, reason)
}

func (n *fakeNotifier) BookingReminder(ctx context.Context, booking domain.Booking) error {
	return n.record("reminder", booking.ID, "")
}

func (n *fakeNotifier) callsOf(kind string) []notifierCall {
	n.mu.Lock()
	defer n.mu.Unlock()

	var calls []notifierCall
	for _, call := range n.calls {
		if call.kind == kind {
			calls = append(calls, call)
		}
	}
	return calls
}
