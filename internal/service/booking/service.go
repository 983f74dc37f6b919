package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/salonhq/salon-api/internal/model"
	"github.com/salonhq/salon-api/internal/payment"
	"github.com/salonhq/salon-api/internal/repository"
	"github.com/salonhq/salon-api/internal/service/pricing"
	apperrors "github.com/salonhq/salon-api/pkg/errors"
	"github.com/salonhq/salon-api/pkg/logger"
	"github.com/salonhq/salon-api/pkg/messaging"
	"github.com/salonhq/salon-api/pkg/metrics"
)

// Calendar is the slice of the calendar service the engine needs.
type Calendar interface {
	IsOpenAt(ctx context.Context, branchID uuid.UUID, at time.Time) (bool, error)
}

// ReminderScheduler enqueues the post-booking reminder.
type ReminderScheduler interface {
	ScheduleForAppointment(ctx context.Context, apt *model.Appointment) error
}

// Service is the booking engine: it gates a request on the business
// calendar and staff availability, prices it, persists the aggregate and
// owns the appointment lifecycle afterwards.
type Service struct {
	appointments repository.AppointmentRepository
	coupons      repository.CouponRepository
	memberships  repository.MembershipRepository
	catalog      repository.CatalogRepository
	staff        repository.StaffRepository
	calendar     Calendar
	reminders    ReminderScheduler
	payments     payment.Provider
	broker       messaging.Broker
	logger       *logger.Logger
	metrics      *metrics.Metrics
	now          func() time.Time
}

func NewService(
	appointments repository.AppointmentRepository,
	coupons repository.CouponRepository,
	memberships repository.MembershipRepository,
	catalog repository.CatalogRepository,
	staff repository.StaffRepository,
	cal Calendar,
	reminders ReminderScheduler,
	payments payment.Provider,
	broker messaging.Broker,
	l *logger.Logger,
	m *metrics.Metrics,
) *Service {
	return &Service{
		appointments: appointments,
		coupons:      coupons,
		memberships:  memberships,
		catalog:      catalog,
		staff:        staff,
		calendar:     cal,
		reminders:    reminders,
		payments:     payments,
		broker:       broker,
		logger:       l,
		metrics:      m,
		now:          time.Now,
	}
}

// WithClock overrides the time source, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// IsStaffFree implements the exact-slot availability rule: the slot is free
// unless a non-cancelled appointment already occupies it.
func (s *Service) IsStaffFree(ctx context.Context, staffID uuid.UUID, at time.Time) (bool, error) {
	count, err := s.appointments.CountActiveAtSlot(ctx, staffID, at)
	if err != nil {
		return false, fmt.Errorf("failed to check slot: %w", err)
	}
	return count == 0, nil
}

// Book validates a booking request and persists the appointment. Gate order:
// calendar, staff, slot, pricing. The persistence layer backs the slot check
// with a unique constraint, so a concurrent double-booking surfaces as a
// conflict rather than a silent overwrite.
func (s *Service) Book(ctx context.Context, req *model.BookingRequest) (*model.Appointment, error) {
	now := s.now()

	if req.ScheduledAt.Before(now) {
		return nil, apperrors.Validation("appointment cannot be scheduled in the past", nil)
	}

	open, err := s.calendar.IsOpenAt(ctx, req.BranchID, req.ScheduledAt)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve branch calendar: %w", err)
	}
	if !open {
		s.metrics.BookingsRejected.WithLabelValues("branch_closed").Inc()
		return nil, apperrors.BranchClosed("branch is closed at the requested time")
	}

	staff, err := s.staff.Get(ctx, req.StaffID)
	if err != nil {
		return nil, err
	}
	if !staff.Available {
		s.metrics.BookingsRejected.WithLabelValues("staff_unavailable").Inc()
		return nil, apperrors.SlotTaken("staff member is not taking appointments")
	}
	serves, err := s.staff.ServesBranch(ctx, req.StaffID, req.BranchID)
	if err != nil {
		return nil, err
	}
	if !serves {
		return nil, apperrors.Validation("staff member does not work at this branch", nil)
	}

	free, err := s.IsStaffFree(ctx, req.StaffID, req.ScheduledAt)
	if err != nil {
		return nil, err
	}
	if !free {
		s.metrics.BookingsRejected.WithLabelValues("slot_taken").Inc()
		return nil, apperrors.SlotTaken("staff member already has an appointment at this time")
	}

	lines, subtotal, err := s.priceLines(ctx, req.ServiceIDs)
	if err != nil {
		return nil, err
	}

	quote, coupon, err := s.quote(ctx, req, subtotal, now)
	if err != nil {
		return nil, err
	}

	status := model.AppointmentStatusScheduled
	if req.PayOnline {
		// Online payments confirm the slot but hold the appointment in
		// pending until the gateway verifies capture.
		status = model.AppointmentStatusPending
	}

	apt := &model.Appointment{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		UserID:        req.UserID,
		BranchID:      req.BranchID,
		StaffID:       req.StaffID,
		ScheduledAt:   req.ScheduledAt,
		Status:        status,
		PaymentStatus: model.PaymentStatusPending,
		Subtotal:      quote.Subtotal,
		Discount:      pricing.Round2(quote.CouponDiscount + quote.MembershipDiscount),
		TotalPrice:    quote.Total,
		Notes:         req.Notes,
	}

	var redemption *model.CouponUsage
	if coupon != nil && quote.CouponDiscount > 0 {
		code := coupon.Code
		apt.CouponCode = &code
		redemption = &model.CouponUsage{
			ID:       uuid.New(),
			CouponID: coupon.ID,
			UserID:   req.UserID,
			Discount: quote.CouponDiscount,
		}
	}

	for i := range lines {
		lines[i].AppointmentID = apt.ID
	}

	if err := s.appointments.CreateBooking(ctx, apt, lines, redemption); err != nil {
		if apperrors.Is(err, apperrors.CodeConflict) {
			s.metrics.BookingConflicts.Inc()
		}
		return nil, err
	}
	apt.Services = lines

	s.metrics.BookingsCreated.Inc()
	if redemption != nil {
		s.metrics.CouponRedemptions.Inc()
	}

	if req.PayOnline {
		order, err := s.payments.CreateOrder(ctx, apt.ID, apt.TotalPrice)
		if err != nil {
			// The booking stands; payment stays pending and can be
			// re-attempted through the payment endpoints.
			s.logger.Error(err, "failed to create payment order", "appointment_id", apt.ID.String())
		} else {
			apt.PaymentRef = &order.Ref
			if err := s.appointments.Update(ctx, apt); err != nil {
				s.logger.Error(err, "failed to store payment order ref", "appointment_id", apt.ID.String())
			}
		}
	}

	if err := s.reminders.ScheduleForAppointment(ctx, apt); err != nil {
		s.logger.Error(err, "failed to schedule reminder", "appointment_id", apt.ID.String())
	}

	if err := messaging.Enqueue(ctx, s.broker, messaging.TaskReminderDispatch, model.JSONMap{
		"appointment_id": apt.ID,
	}, apt.ScheduledAt); err != nil {
		s.logger.Error(err, "failed to enqueue dispatch task", "appointment_id", apt.ID.String())
	}

	s.logger.Info("appointment booked",
		"appointment_id", apt.ID.String(),
		"branch_id", apt.BranchID.String(),
		"staff_id", apt.StaffID.String(),
		"total", apt.TotalPrice)
	return apt, nil
}

func (s *Service) priceLines(ctx context.Context, serviceIDs []uuid.UUID) ([]*model.AppointmentLine, float64, error) {
	services, err := s.catalog.GetMany(ctx, serviceIDs)
	if err != nil {
		return nil, 0, err
	}
	if len(services) != len(serviceIDs) {
		return nil, 0, apperrors.Validation("one or more services do not exist", nil)
	}

	var subtotal float64
	lines := make([]*model.AppointmentLine, 0, len(services))
	for _, svc := range services {
		if !svc.Active {
			return nil, 0, apperrors.Validation(fmt.Sprintf("service %s is not bookable", svc.Name), nil)
		}
		subtotal += svc.Price
		lines = append(lines, &model.AppointmentLine{ServiceID: svc.ID, Price: svc.Price})
	}
	return lines, pricing.Round2(subtotal), nil
}

func (s *Service) quote(ctx context.Context, req *model.BookingRequest, subtotal float64, now time.Time) (pricing.Quote, *model.Coupon, error) {
	membership, err := s.memberships.GetActiveMembership(ctx, req.UserID, now)
	if err != nil {
		return pricing.Quote{}, nil, err
	}

	var membershipDiscount float64
	freeService := false
	if membership != nil {
		plan, err := s.memberships.GetPlan(ctx, membership.PlanID)
		if err != nil {
			return pricing.Quote{}, nil, err
		}
		membershipDiscount = pricing.MembershipDiscount(membership, plan, subtotal, now)
		freeService = membership.FreeServicesRemaining > 0
	}

	var coupon *model.Coupon
	var couponDiscount float64
	if req.CouponCode != "" && !freeService {
		coupon, err = s.coupons.GetByCode(ctx, req.CouponCode)
		if err != nil {
			if apperrors.Is(err, apperrors.CodeNotFound) {
				return pricing.Quote{}, nil, apperrors.InvalidCoupon("coupon does not exist")
			}
			return pricing.Quote{}, nil, err
		}

		priorUses, err := s.coupons.CountUsageByUser(ctx, coupon.ID, req.UserID)
		if err != nil {
			return pricing.Quote{}, nil, err
		}

		couponDiscount, err = pricing.ValidateCoupon(coupon, priorUses, subtotal, now)
		if err != nil {
			return pricing.Quote{}, nil, err
		}
	}

	return pricing.BuildQuote(subtotal, couponDiscount, membershipDiscount, freeService), coupon, nil
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, err := s.appointments.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	lines, err := s.appointments.GetLines(ctx, id)
	if err != nil {
		return nil, err
	}
	apt.Services = lines
	return apt, nil
}

func (s *Service) ListAppointments(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	return s.appointments.List(ctx, filters)
}

// Transition moves an appointment through the lifecycle state machine.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, next model.AppointmentStatus) (*model.Appointment, error) {
	if !next.Valid() {
		return nil, apperrors.Validation(fmt.Sprintf("unknown status %q", next), nil)
	}

	apt, err := s.appointments.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !apt.Status.CanTransitionTo(next) {
		return nil, apperrors.Validation(
			fmt.Sprintf("cannot move appointment from %s to %s", apt.Status, next), nil)
	}

	apt.Status = next
	if err := s.appointments.Update(ctx, apt); err != nil {
		return nil, err
	}

	if next == model.AppointmentStatusCompleted {
		s.settleMembership(ctx, apt)
	}

	return apt, nil
}

// settleMembership consumes a free service or accrues savings once the
// appointment is actually delivered; discount calculation at booking time
// never touches the counters.
func (s *Service) settleMembership(ctx context.Context, apt *model.Appointment) {
	if apt.Discount <= 0 {
		return
	}

	membership, err := s.memberships.GetActiveMembership(ctx, apt.UserID, s.now())
	if err != nil || membership == nil {
		return
	}

	coveredInFull := apt.CouponCode == nil && apt.Discount == apt.Subtotal
	if coveredInFull && membership.FreeServicesRemaining > 0 {
		membership.FreeServicesRemaining--
	}
	membership.ServicesUsed++
	if apt.CouponCode == nil {
		membership.TotalSavings = pricing.Round2(membership.TotalSavings + apt.Discount)
	}

	if err := s.memberships.UpdateMembership(ctx, membership); err != nil {
		s.logger.Error(err, "failed to settle membership", "appointment_id", apt.ID.String())
	}
}

// Cancel marks the appointment cancelled. Coupon counters and payments are
// not reversed here; refunds are an explicit separate operation.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, reason string) (*model.Appointment, error) {
	apt, err := s.appointments.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if apt.Status.Terminal() {
		return nil, apperrors.Validation(
			fmt.Sprintf("cannot cancel a %s appointment", apt.Status), nil)
	}

	apt.Status = model.AppointmentStatusCancelled
	apt.CancelReason = &reason
	if err := s.appointments.Update(ctx, apt); err != nil {
		return nil, err
	}

	s.logger.Info("appointment cancelled", "appointment_id", id.String(), "reason", reason)
	return apt, nil
}

// RequestReschedule records a pending reschedule; the appointment itself is
// untouched until an admin approves.
func (s *Service) RequestReschedule(ctx context.Context, appointmentID uuid.UUID, req *model.RescheduleRequest) (*model.AppointmentReschedule, error) {
	apt, err := s.appointments.Get(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if apt.Status.Terminal() {
		return nil, apperrors.Validation("cannot reschedule a finished appointment", nil)
	}

	now := s.now()
	resched := &model.AppointmentReschedule{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		AppointmentID: appointmentID,
		OriginalAt:    apt.ScheduledAt,
		RequestedAt:   req.RequestedAt,
		Reason:        req.Reason,
		Status:        model.RescheduleStatusPending,
	}

	if err := s.appointments.CreateReschedule(ctx, resched); err != nil {
		return nil, err
	}
	return resched, nil
}

// DecideReschedule approves or rejects a pending reschedule. Approval
// re-runs the calendar and availability gates against the requested slot
// before the appointment is moved.
func (s *Service) DecideReschedule(ctx context.Context, rescheduleID uuid.UUID, decision *model.RescheduleDecision) (*model.AppointmentReschedule, error) {
	resched, err := s.appointments.GetReschedule(ctx, rescheduleID)
	if err != nil {
		return nil, err
	}
	if resched.Status != model.RescheduleStatusPending {
		return nil, apperrors.Validation("reschedule request already decided", nil)
	}

	if !decision.Approve {
		resched.Status = model.RescheduleStatusRejected
		resched.AdminNotes = decision.AdminNotes
		if err := s.appointments.UpdateReschedule(ctx, resched); err != nil {
			return nil, err
		}
		return resched, nil
	}

	apt, err := s.appointments.Get(ctx, resched.AppointmentID)
	if err != nil {
		return nil, err
	}

	open, err := s.calendar.IsOpenAt(ctx, apt.BranchID, resched.RequestedAt)
	if err != nil {
		return nil, err
	}
	if !open {
		return nil, apperrors.BranchClosed("branch is closed at the requested time")
	}

	free, err := s.IsStaffFree(ctx, apt.StaffID, resched.RequestedAt)
	if err != nil {
		return nil, err
	}
	if !free {
		return nil, apperrors.SlotTaken("staff member already has an appointment at the requested time")
	}

	apt.ScheduledAt = resched.RequestedAt
	if err := s.appointments.Update(ctx, apt); err != nil {
		return nil, err
	}

	resched.Status = model.RescheduleStatusApproved
	resched.AdminNotes = decision.AdminNotes
	if err := s.appointments.UpdateReschedule(ctx, resched); err != nil {
		return nil, err
	}

	s.logger.Info("reschedule approved",
		"appointment_id", apt.ID.String(),
		"scheduled_at", apt.ScheduledAt)
	return resched, nil
}

// SubmitReview attaches a one-time rating to a completed appointment.
func (s *Service) SubmitReview(ctx context.Context, appointmentID uuid.UUID, req *model.ReviewRequest) (*model.Appointment, error) {
	apt, err := s.appointments.Get(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	if apt.Status != model.AppointmentStatusCompleted {
		return nil, apperrors.Validation("only completed appointments can be reviewed", nil)
	}
	if apt.Rating != nil {
		return nil, apperrors.Conflict("appointment already reviewed", nil)
	}

	rating := req.Rating
	review := req.Review
	apt.Rating = &rating
	apt.Review = &review
	if err := s.appointments.Update(ctx, apt); err != nil {
		return nil, err
	}
	return apt, nil
}

// ConfirmPayment verifies a gateway capture and marks the appointment paid.
// A pending appointment moves to scheduled once payment clears.
func (s *Service) ConfirmPayment(ctx context.Context, appointmentID uuid.UUID, orderRef, paymentRef, signature string) (*model.Appointment, error) {
	apt, err := s.appointments.Get(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	verified, err := s.payments.Verify(ctx, orderRef, paymentRef, signature)
	if err != nil {
		return nil, apperrors.PaymentFailure("payment verification failed", err)
	}
	if !verified {
		return nil, apperrors.PaymentFailure("payment could not be verified", nil)
	}

	apt.PaymentStatus = model.PaymentStatusPaid
	apt.PaymentRef = &paymentRef
	if apt.Status == model.AppointmentStatusPending {
		apt.Status = model.AppointmentStatusScheduled
	}
	if err := s.appointments.Update(ctx, apt); err != nil {
		return nil, err
	}
	return apt, nil
}
