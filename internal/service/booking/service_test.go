package booking

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salonhq/salon-api/internal/model"
	"github.com/salonhq/salon-api/internal/payment"
	apperrors "github.com/salonhq/salon-api/pkg/errors"
	"github.com/salonhq/salon-api/pkg/logger"
	"github.com/salonhq/salon-api/pkg/metrics"
)

var (
	testNow     = time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)
	testMetrics = metrics.New("booking_test")
)

// fakeAppointmentRepo keeps appointments in memory and enforces the exact-slot
// uniqueness rule the database index provides in production.
type fakeAppointmentRepo struct {
	appointments map[uuid.UUID]*model.Appointment
	lines        map[uuid.UUID][]*model.AppointmentLine
	reschedules  map[uuid.UUID]*model.AppointmentReschedule
	redemptions  []*model.CouponUsage
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{
		appointments: make(map[uuid.UUID]*model.Appointment),
		lines:        make(map[uuid.UUID][]*model.AppointmentLine),
		reschedules:  make(map[uuid.UUID]*model.AppointmentReschedule),
	}
}

func (r *fakeAppointmentRepo) CreateBooking(ctx context.Context, apt *model.Appointment, lines []*model.AppointmentLine, redemption *model.CouponUsage) error {
	for _, existing := range r.appointments {
		if existing.StaffID == apt.StaffID &&
			existing.ScheduledAt.Equal(apt.ScheduledAt) &&
			existing.Status != model.AppointmentStatusCancelled {
			return apperrors.Conflict("staff member already has an appointment at this time", nil)
		}
	}
	r.appointments[apt.ID] = apt
	r.lines[apt.ID] = lines
	if redemption != nil {
		r.redemptions = append(r.redemptions, redemption)
	}
	return nil
}

func (r *fakeAppointmentRepo) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, ok := r.appointments[id]
	if !ok {
		return nil, apperrors.NotFound("appointment", nil)
	}
	return apt, nil
}

func (r *fakeAppointmentRepo) Update(ctx context.Context, apt *model.Appointment) error {
	r.appointments[apt.ID] = apt
	return nil
}

func (r *fakeAppointmentRepo) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	var out []*model.Appointment
	for _, apt := range r.appointments {
		out = append(out, apt)
	}
	return out, nil
}

func (r *fakeAppointmentRepo) GetLines(ctx context.Context, id uuid.UUID) ([]*model.AppointmentLine, error) {
	return r.lines[id], nil
}

func (r *fakeAppointmentRepo) CountActiveAtSlot(ctx context.Context, staffID uuid.UUID, at time.Time) (int, error) {
	count := 0
	for _, apt := range r.appointments {
		if apt.StaffID == staffID && apt.ScheduledAt.Equal(at) && apt.Status != model.AppointmentStatusCancelled {
			count++
		}
	}
	return count, nil
}

func (r *fakeAppointmentRepo) CreateReschedule(ctx context.Context, resched *model.AppointmentReschedule) error {
	r.reschedules[resched.ID] = resched
	return nil
}

func (r *fakeAppointmentRepo) GetReschedule(ctx context.Context, id uuid.UUID) (*model.AppointmentReschedule, error) {
	resched, ok := r.reschedules[id]
	if !ok {
		return nil, apperrors.NotFound("reschedule request", nil)
	}
	return resched, nil
}

func (r *fakeAppointmentRepo) UpdateReschedule(ctx context.Context, resched *model.AppointmentReschedule) error {
	r.reschedules[resched.ID] = resched
	return nil
}

func (r *fakeAppointmentRepo) ListReschedules(ctx context.Context, appointmentID uuid.UUID) ([]*model.AppointmentReschedule, error) {
	var out []*model.AppointmentReschedule
	for _, resched := range r.reschedules {
		if resched.AppointmentID == appointmentID {
			out = append(out, resched)
		}
	}
	return out, nil
}

type fakeCouponRepo struct {
	coupons map[string]*model.Coupon
	usages  map[uuid.UUID]int
}

func newFakeCouponRepo() *fakeCouponRepo {
	return &fakeCouponRepo{coupons: make(map[string]*model.Coupon), usages: make(map[uuid.UUID]int)}
}

func (r *fakeCouponRepo) Create(ctx context.Context, c *model.Coupon) error { r.coupons[c.Code] = c; return nil }
func (r *fakeCouponRepo) Get(ctx context.Context, id uuid.UUID) (*model.Coupon, error) {
	for _, c := range r.coupons {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, apperrors.NotFound("coupon", nil)
}
func (r *fakeCouponRepo) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	c, ok := r.coupons[code]
	if !ok {
		return nil, apperrors.NotFound("coupon", nil)
	}
	return c, nil
}
func (r *fakeCouponRepo) Update(ctx context.Context, c *model.Coupon) error { return nil }
func (r *fakeCouponRepo) Delete(ctx context.Context, id uuid.UUID) error    { return nil }
func (r *fakeCouponRepo) List(ctx context.Context, activeOnly bool, page model.Pagination) ([]*model.Coupon, int, error) {
	return nil, 0, nil
}
func (r *fakeCouponRepo) CountUsageByUser(ctx context.Context, couponID, userID uuid.UUID) (int, error) {
	return r.usages[userID], nil
}

type fakeMembershipRepo struct {
	plans       map[uuid.UUID]*model.MembershipPlan
	memberships map[uuid.UUID]*model.UserMembership
}

func newFakeMembershipRepo() *fakeMembershipRepo {
	return &fakeMembershipRepo{
		plans:       make(map[uuid.UUID]*model.MembershipPlan),
		memberships: make(map[uuid.UUID]*model.UserMembership),
	}
}

func (r *fakeMembershipRepo) CreatePlan(ctx context.Context, p *model.MembershipPlan) error {
	r.plans[p.ID] = p
	return nil
}
func (r *fakeMembershipRepo) GetPlan(ctx context.Context, id uuid.UUID) (*model.MembershipPlan, error) {
	p, ok := r.plans[id]
	if !ok {
		return nil, apperrors.NotFound("membership plan", nil)
	}
	return p, nil
}
func (r *fakeMembershipRepo) UpdatePlan(ctx context.Context, p *model.MembershipPlan) error { return nil }
func (r *fakeMembershipRepo) ListPlans(ctx context.Context, activeOnly bool) ([]*model.MembershipPlan, error) {
	return nil, nil
}
func (r *fakeMembershipRepo) CreateMembership(ctx context.Context, m *model.UserMembership) error {
	r.memberships[m.UserID] = m
	return nil
}
func (r *fakeMembershipRepo) GetMembership(ctx context.Context, id uuid.UUID) (*model.UserMembership, error) {
	for _, m := range r.memberships {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, apperrors.NotFound("membership", nil)
}
func (r *fakeMembershipRepo) GetActiveMembership(ctx context.Context, userID uuid.UUID, now time.Time) (*model.UserMembership, error) {
	m, ok := r.memberships[userID]
	if !ok || !m.IsActive(now) {
		return nil, nil
	}
	return m, nil
}
func (r *fakeMembershipRepo) UpdateMembership(ctx context.Context, m *model.UserMembership) error {
	r.memberships[m.UserID] = m
	return nil
}

type fakeCatalogRepo struct {
	services map[uuid.UUID]*model.SalonService
}

func newFakeCatalogRepo() *fakeCatalogRepo {
	return &fakeCatalogRepo{services: make(map[uuid.UUID]*model.SalonService)}
}

func (r *fakeCatalogRepo) Create(ctx context.Context, s *model.SalonService) error {
	r.services[s.ID] = s
	return nil
}
func (r *fakeCatalogRepo) Get(ctx context.Context, id uuid.UUID) (*model.SalonService, error) {
	s, ok := r.services[id]
	if !ok {
		return nil, apperrors.NotFound("service", nil)
	}
	return s, nil
}
func (r *fakeCatalogRepo) GetMany(ctx context.Context, ids []uuid.UUID) ([]*model.SalonService, error) {
	var out []*model.SalonService
	for _, id := range ids {
		if s, ok := r.services[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}
func (r *fakeCatalogRepo) Update(ctx context.Context, s *model.SalonService) error { return nil }
func (r *fakeCatalogRepo) Delete(ctx context.Context, id uuid.UUID) error          { return nil }
func (r *fakeCatalogRepo) ListByBranch(ctx context.Context, branchID uuid.UUID, activeOnly bool) ([]*model.SalonService, error) {
	return nil, nil
}

type fakeStaffRepo struct {
	staff map[uuid.UUID]*model.Staff
}

func newFakeStaffRepo() *fakeStaffRepo {
	return &fakeStaffRepo{staff: make(map[uuid.UUID]*model.Staff)}
}

func (r *fakeStaffRepo) Create(ctx context.Context, s *model.Staff) error { r.staff[s.ID] = s; return nil }
func (r *fakeStaffRepo) Get(ctx context.Context, id uuid.UUID) (*model.Staff, error) {
	s, ok := r.staff[id]
	if !ok {
		return nil, apperrors.NotFound("staff member", nil)
	}
	return s, nil
}
func (r *fakeStaffRepo) Update(ctx context.Context, s *model.Staff) error { return nil }
func (r *fakeStaffRepo) Delete(ctx context.Context, id uuid.UUID) error   { return nil }
func (r *fakeStaffRepo) ListByBranch(ctx context.Context, branchID uuid.UUID) ([]*model.Staff, error) {
	return nil, nil
}
func (r *fakeStaffRepo) AssignBranch(ctx context.Context, staffID, branchID uuid.UUID) error {
	return nil
}
func (r *fakeStaffRepo) ServesBranch(ctx context.Context, staffID, branchID uuid.UUID) (bool, error) {
	s, ok := r.staff[staffID]
	return ok && s.BranchID == branchID, nil
}

type fakeCalendar struct {
	open bool
}

func (c *fakeCalendar) IsOpenAt(ctx context.Context, branchID uuid.UUID, at time.Time) (bool, error) {
	return c.open, nil
}

type fakeReminders struct {
	scheduled []*model.Appointment
}

func (r *fakeReminders) ScheduleForAppointment(ctx context.Context, apt *model.Appointment) error {
	r.scheduled = append(r.scheduled, apt)
	return nil
}

type fakePayments struct {
	verifyOK bool
	orders   int
}

func (p *fakePayments) CreateOrder(ctx context.Context, appointmentID uuid.UUID, amount float64) (*payment.Order, error) {
	p.orders++
	return &payment.Order{Ref: "order-1", Amount: amount}, nil
}
func (p *fakePayments) Verify(ctx context.Context, orderRef, paymentRef, signature string) (bool, error) {
	return p.verifyOK, nil
}
func (p *fakePayments) Refund(ctx context.Context, paymentRef string, amount float64, reason string) (*payment.Receipt, error) {
	return &payment.Receipt{RefundRef: "refund-1", Amount: amount}, nil
}

type fakeBroker struct {
	published int
}

func (b *fakeBroker) Publish(ctx context.Context, channel string, message interface{}) error {
	b.published++
	return nil
}
func (b *fakeBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	return nil, nil
}
func (b *fakeBroker) Close() error { return nil }

type fixture struct {
	service      *Service
	appointments *fakeAppointmentRepo
	coupons      *fakeCouponRepo
	memberships  *fakeMembershipRepo
	catalog      *fakeCatalogRepo
	staff        *fakeStaffRepo
	calendar     *fakeCalendar
	reminders    *fakeReminders
	payments     *fakePayments
	broker       *fakeBroker

	branchID  uuid.UUID
	staffID   uuid.UUID
	userID    uuid.UUID
	serviceID uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		appointments: newFakeAppointmentRepo(),
		coupons:      newFakeCouponRepo(),
		memberships:  newFakeMembershipRepo(),
		catalog:      newFakeCatalogRepo(),
		staff:        newFakeStaffRepo(),
		calendar:     &fakeCalendar{open: true},
		reminders:    &fakeReminders{},
		payments:     &fakePayments{verifyOK: true},
		broker:       &fakeBroker{},
		branchID:     uuid.New(),
		staffID:      uuid.New(),
		userID:       uuid.New(),
		serviceID:    uuid.New(),
	}

	f.staff.Create(context.Background(), &model.Staff{
		Base:      model.Base{ID: f.staffID},
		BranchID:  f.branchID,
		Name:      "Dana",
		Available: true,
	})
	f.catalog.Create(context.Background(), &model.SalonService{
		Base:     model.Base{ID: f.serviceID},
		BranchID: f.branchID,
		Name:     "Haircut",
		Price:    50,
		Active:   true,
	})

	l := logger.New(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
	f.service = NewService(
		f.appointments, f.coupons, f.memberships, f.catalog, f.staff,
		f.calendar, f.reminders, f.payments, f.broker, l, testMetrics,
	).WithClock(func() time.Time { return testNow })
	return f
}

func (f *fixture) bookingRequest() *model.BookingRequest {
	return &model.BookingRequest{
		UserID:      f.userID,
		BranchID:    f.branchID,
		StaffID:     f.staffID,
		ServiceIDs:  []uuid.UUID{f.serviceID},
		ScheduledAt: testNow.Add(24 * time.Hour),
	}
}

func TestBook(t *testing.T) {
	f := newFixture(t)

	apt, err := f.service.Book(context.Background(), f.bookingRequest())

	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusScheduled, apt.Status)
	assert.Equal(t, 50.0, apt.Subtotal)
	assert.Equal(t, 50.0, apt.TotalPrice)
	assert.Len(t, apt.Services, 1)
	assert.Len(t, f.reminders.scheduled, 1, "booking schedules a reminder")
	assert.Equal(t, 1, f.broker.published, "booking enqueues a dispatch task")
}

func TestBookBranchClosed(t *testing.T) {
	f := newFixture(t)
	f.calendar.open = false

	_, err := f.service.Book(context.Background(), f.bookingRequest())

	assert.True(t, apperrors.Is(err, apperrors.CodeBranchClosed))
	assert.Empty(t, f.appointments.appointments)
}

func TestBookInThePast(t *testing.T) {
	f := newFixture(t)
	req := f.bookingRequest()
	req.ScheduledAt = testNow.Add(-time.Hour)

	_, err := f.service.Book(context.Background(), req)

	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))
}

func TestBookSlotTaken(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Book(context.Background(), f.bookingRequest())
	require.NoError(t, err)

	_, err = f.service.Book(context.Background(), f.bookingRequest())
	assert.True(t, apperrors.Is(err, apperrors.CodeSlotTaken))
}

func TestBookSlotFreedByCancellation(t *testing.T) {
	f := newFixture(t)

	first, err := f.service.Book(context.Background(), f.bookingRequest())
	require.NoError(t, err)

	_, err = f.service.Cancel(context.Background(), first.ID, "customer request")
	require.NoError(t, err)

	second, err := f.service.Book(context.Background(), f.bookingRequest())
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestBookStaffUnavailable(t *testing.T) {
	f := newFixture(t)
	f.staff.staff[f.staffID].Available = false

	_, err := f.service.Book(context.Background(), f.bookingRequest())

	assert.True(t, apperrors.Is(err, apperrors.CodeSlotTaken))
}

func TestBookStaffWrongBranch(t *testing.T) {
	f := newFixture(t)
	req := f.bookingRequest()
	req.BranchID = uuid.New()

	_, err := f.service.Book(context.Background(), req)

	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))
}

func TestBookWithCoupon(t *testing.T) {
	f := newFixture(t)
	f.coupons.Create(context.Background(), &model.Coupon{
		Base:             model.Base{ID: uuid.New()},
		Code:             "SAVE20",
		DiscountType:     model.DiscountTypePercentage,
		DiscountValue:    20,
		UsagePerCustomer: 1,
		ValidFrom:        testNow.AddDate(0, -1, 0),
		ValidUntil:       testNow.AddDate(0, 1, 0),
		Active:           true,
	})

	req := f.bookingRequest()
	req.CouponCode = "SAVE20"

	apt, err := f.service.Book(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, 10.0, apt.Discount)
	assert.Equal(t, 40.0, apt.TotalPrice)
	require.NotNil(t, apt.CouponCode)
	assert.Equal(t, "SAVE20", *apt.CouponCode)
	require.Len(t, f.appointments.redemptions, 1)
	assert.Equal(t, 10.0, f.appointments.redemptions[0].Discount)
}

func TestBookUnknownCoupon(t *testing.T) {
	f := newFixture(t)
	req := f.bookingRequest()
	req.CouponCode = "NOPE"

	_, err := f.service.Book(context.Background(), req)

	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidCoupon))
}

func TestBookFreeServiceSuppressesCoupon(t *testing.T) {
	f := newFixture(t)
	planID := uuid.New()
	f.memberships.CreatePlan(context.Background(), &model.MembershipPlan{
		Base:         model.Base{ID: planID},
		Name:         "Gold",
		FreeServices: 2,
	})
	f.memberships.CreateMembership(context.Background(), &model.UserMembership{
		Base:                  model.Base{ID: uuid.New()},
		UserID:                f.userID,
		PlanID:                planID,
		Status:                model.MembershipStatusActive,
		ExpiresAt:             testNow.AddDate(0, 1, 0),
		FreeServicesRemaining: 2,
	})
	f.coupons.Create(context.Background(), &model.Coupon{
		Base:             model.Base{ID: uuid.New()},
		Code:             "SAVE20",
		DiscountType:     model.DiscountTypePercentage,
		DiscountValue:    20,
		UsagePerCustomer: 1,
		ValidFrom:        testNow.AddDate(0, -1, 0),
		ValidUntil:       testNow.AddDate(0, 1, 0),
		Active:           true,
	})

	req := f.bookingRequest()
	req.CouponCode = "SAVE20"

	apt, err := f.service.Book(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, 0.0, apt.TotalPrice, "free service covers the whole order")
	assert.Nil(t, apt.CouponCode, "no coupon is burned on a free order")
	assert.Empty(t, f.appointments.redemptions)
}

func TestBookMembershipPercentageStacks(t *testing.T) {
	f := newFixture(t)
	planID := uuid.New()
	f.memberships.CreatePlan(context.Background(), &model.MembershipPlan{
		Base:               model.Base{ID: planID},
		Name:               "Silver",
		DiscountPercentage: 10,
	})
	f.memberships.CreateMembership(context.Background(), &model.UserMembership{
		Base:      model.Base{ID: uuid.New()},
		UserID:    f.userID,
		PlanID:    planID,
		Status:    model.MembershipStatusActive,
		ExpiresAt: testNow.AddDate(0, 1, 0),
	})
	f.coupons.Create(context.Background(), &model.Coupon{
		Base:             model.Base{ID: uuid.New()},
		Code:             "SAVE20",
		DiscountType:     model.DiscountTypePercentage,
		DiscountValue:    20,
		UsagePerCustomer: 1,
		ValidFrom:        testNow.AddDate(0, -1, 0),
		ValidUntil:       testNow.AddDate(0, 1, 0),
		Active:           true,
	})

	req := f.bookingRequest()
	req.CouponCode = "SAVE20"

	apt, err := f.service.Book(context.Background(), req)

	require.NoError(t, err)
	// 50 - 10 (coupon) - 5 (membership) = 35
	assert.Equal(t, 15.0, apt.Discount)
	assert.Equal(t, 35.0, apt.TotalPrice)
}

func TestBookPayOnline(t *testing.T) {
	f := newFixture(t)
	req := f.bookingRequest()
	req.PayOnline = true

	apt, err := f.service.Book(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusPending, apt.Status)
	assert.Equal(t, 1, f.payments.orders)
	require.NotNil(t, apt.PaymentRef)
}

func TestTransition(t *testing.T) {
	f := newFixture(t)
	apt, err := f.service.Book(context.Background(), f.bookingRequest())
	require.NoError(t, err)

	apt, err = f.service.Transition(context.Background(), apt.ID, model.AppointmentStatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusInProgress, apt.Status)

	apt, err = f.service.Transition(context.Background(), apt.ID, model.AppointmentStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCompleted, apt.Status)
}

func TestTransitionRejected(t *testing.T) {
	f := newFixture(t)
	apt, err := f.service.Book(context.Background(), f.bookingRequest())
	require.NoError(t, err)

	_, err = f.service.Transition(context.Background(), apt.ID, model.AppointmentStatusCompleted)
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation),
		"scheduled cannot jump straight to completed")

	_, err = f.service.Transition(context.Background(), apt.ID, "nonsense")
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))
}

func TestCompletionConsumesFreeService(t *testing.T) {
	f := newFixture(t)
	planID := uuid.New()
	f.memberships.CreatePlan(context.Background(), &model.MembershipPlan{
		Base:         model.Base{ID: planID},
		Name:         "Gold",
		FreeServices: 2,
	})
	f.memberships.CreateMembership(context.Background(), &model.UserMembership{
		Base:                  model.Base{ID: uuid.New()},
		UserID:                f.userID,
		PlanID:                planID,
		Status:                model.MembershipStatusActive,
		ExpiresAt:             testNow.AddDate(0, 1, 0),
		FreeServicesRemaining: 2,
	})

	apt, err := f.service.Book(context.Background(), f.bookingRequest())
	require.NoError(t, err)
	assert.Equal(t, 0.0, apt.TotalPrice)

	m, _ := f.memberships.GetActiveMembership(context.Background(), f.userID, testNow)
	assert.Equal(t, 2, m.FreeServicesRemaining, "counter untouched at booking time")

	_, err = f.service.Transition(context.Background(), apt.ID, model.AppointmentStatusInProgress)
	require.NoError(t, err)
	_, err = f.service.Transition(context.Background(), apt.ID, model.AppointmentStatusCompleted)
	require.NoError(t, err)

	m, _ = f.memberships.GetActiveMembership(context.Background(), f.userID, testNow)
	assert.Equal(t, 1, m.FreeServicesRemaining, "completion consumes the free service")
	assert.Equal(t, 1, m.ServicesUsed)
	assert.Equal(t, 50.0, m.TotalSavings)
}

func TestCancelTerminal(t *testing.T) {
	f := newFixture(t)
	apt, err := f.service.Book(context.Background(), f.bookingRequest())
	require.NoError(t, err)

	_, err = f.service.Cancel(context.Background(), apt.ID, "no show")
	require.NoError(t, err)

	_, err = f.service.Cancel(context.Background(), apt.ID, "again")
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))
}

func TestRescheduleApprovalRevalidates(t *testing.T) {
	f := newFixture(t)
	apt, err := f.service.Book(context.Background(), f.bookingRequest())
	require.NoError(t, err)

	// Occupy the requested slot with a second appointment.
	otherSlot := testNow.Add(48 * time.Hour)
	otherUser := f.bookingRequest()
	otherUser.UserID = uuid.New()
	otherUser.ScheduledAt = otherSlot
	_, err = f.service.Book(context.Background(), otherUser)
	require.NoError(t, err)

	resched, err := f.service.RequestReschedule(context.Background(), apt.ID, &model.RescheduleRequest{
		RequestedAt: otherSlot,
		Reason:      "travel",
	})
	require.NoError(t, err)
	assert.Equal(t, model.RescheduleStatusPending, resched.Status)

	_, err = f.service.DecideReschedule(context.Background(), resched.ID, &model.RescheduleDecision{Approve: true})
	assert.True(t, apperrors.Is(err, apperrors.CodeSlotTaken),
		"approval re-checks the requested slot")

	got, _ := f.service.GetAppointment(context.Background(), apt.ID)
	assert.True(t, got.ScheduledAt.Equal(f.bookingRequest().ScheduledAt), "appointment unmoved")
}

func TestRescheduleApproved(t *testing.T) {
	f := newFixture(t)
	apt, err := f.service.Book(context.Background(), f.bookingRequest())
	require.NoError(t, err)

	newSlot := testNow.Add(72 * time.Hour)
	resched, err := f.service.RequestReschedule(context.Background(), apt.ID, &model.RescheduleRequest{
		RequestedAt: newSlot,
		Reason:      "travel",
	})
	require.NoError(t, err)

	resched, err = f.service.DecideReschedule(context.Background(), resched.ID, &model.RescheduleDecision{Approve: true})
	require.NoError(t, err)
	assert.Equal(t, model.RescheduleStatusApproved, resched.Status)

	got, _ := f.service.GetAppointment(context.Background(), apt.ID)
	assert.True(t, got.ScheduledAt.Equal(newSlot))
}

func TestRescheduleRejected(t *testing.T) {
	f := newFixture(t)
	apt, err := f.service.Book(context.Background(), f.bookingRequest())
	require.NoError(t, err)

	original := apt.ScheduledAt
	resched, err := f.service.RequestReschedule(context.Background(), apt.ID, &model.RescheduleRequest{
		RequestedAt: testNow.Add(72 * time.Hour),
		Reason:      "travel",
	})
	require.NoError(t, err)

	resched, err = f.service.DecideReschedule(context.Background(), resched.ID, &model.RescheduleDecision{
		Approve:    false,
		AdminNotes: "fully booked that week",
	})
	require.NoError(t, err)
	assert.Equal(t, model.RescheduleStatusRejected, resched.Status)

	got, _ := f.service.GetAppointment(context.Background(), apt.ID)
	assert.True(t, got.ScheduledAt.Equal(original))

	// A decided request cannot be decided again.
	_, err = f.service.DecideReschedule(context.Background(), resched.ID, &model.RescheduleDecision{Approve: true})
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))
}

func TestSubmitReview(t *testing.T) {
	f := newFixture(t)
	apt, err := f.service.Book(context.Background(), f.bookingRequest())
	require.NoError(t, err)

	_, err = f.service.SubmitReview(context.Background(), apt.ID, &model.ReviewRequest{Rating: 5})
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation),
		"only completed appointments can be reviewed")

	_, err = f.service.Transition(context.Background(), apt.ID, model.AppointmentStatusInProgress)
	require.NoError(t, err)
	_, err = f.service.Transition(context.Background(), apt.ID, model.AppointmentStatusCompleted)
	require.NoError(t, err)

	reviewed, err := f.service.SubmitReview(context.Background(), apt.ID, &model.ReviewRequest{
		Rating: 5,
		Review: "great cut",
	})
	require.NoError(t, err)
	require.NotNil(t, reviewed.Rating)
	assert.Equal(t, 5, *reviewed.Rating)

	_, err = f.service.SubmitReview(context.Background(), apt.ID, &model.ReviewRequest{Rating: 4})
	assert.True(t, apperrors.Is(err, apperrors.CodeConflict), "one review per appointment")
}

func TestConfirmPayment(t *testing.T) {
	f := newFixture(t)
	req := f.bookingRequest()
	req.PayOnline = true
	apt, err := f.service.Book(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusPending, apt.Status)

	apt, err = f.service.ConfirmPayment(context.Background(), apt.ID, "order-1", "pay-1", "sig")
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusPaid, apt.PaymentStatus)
	assert.Equal(t, model.AppointmentStatusScheduled, apt.Status)
}

func TestConfirmPaymentRejected(t *testing.T) {
	f := newFixture(t)
	f.payments.verifyOK = false

	apt, err := f.service.Book(context.Background(), f.bookingRequest())
	require.NoError(t, err)

	_, err = f.service.ConfirmPayment(context.Background(), apt.ID, "order-1", "pay-1", "sig")
	assert.True(t, apperrors.Is(err, apperrors.CodePaymentFailure))
}
