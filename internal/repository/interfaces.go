package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/salonhq/salon-api/internal/model"
)

// All repository interfaces in one file
type (
	BranchRepository interface {
		Create(ctx context.Context, branch *model.Branch) error
		Get(ctx context.Context, id uuid.UUID) (*model.Branch, error)
		Update(ctx context.Context, branch *model.Branch) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, activeOnly bool) ([]*model.Branch, error)

		UpsertBusinessHours(ctx context.Context, hours *model.BusinessHours) error
		GetBusinessHours(ctx context.Context, branchID uuid.UUID, dayOfWeek int) (*model.BusinessHours, error)
		ListBusinessHours(ctx context.Context, branchID uuid.UUID) ([]*model.BusinessHours, error)

		CreateHoliday(ctx context.Context, holiday *model.Holiday) error
		DeleteHoliday(ctx context.Context, id uuid.UUID) error
		ListHolidays(ctx context.Context, branchID uuid.UUID, from, to time.Time) ([]*model.Holiday, error)
		GetHolidayByDate(ctx context.Context, branchID uuid.UUID, date time.Time) (*model.Holiday, error)
	}

	StaffRepository interface {
		Create(ctx context.Context, staff *model.Staff) error
		Get(ctx context.Context, id uuid.UUID) (*model.Staff, error)
		Update(ctx context.Context, staff *model.Staff) error
		Delete(ctx context.Context, id uuid.UUID) error
		ListByBranch(ctx context.Context, branchID uuid.UUID) ([]*model.Staff, error)
		AssignBranch(ctx context.Context, staffID, branchID uuid.UUID) error
		ServesBranch(ctx context.Context, staffID, branchID uuid.UUID) (bool, error)
	}

	CatalogRepository interface {
		Create(ctx context.Context, svc *model.SalonService) error
		Get(ctx context.Context, id uuid.UUID) (*model.SalonService, error)
		GetMany(ctx context.Context, ids []uuid.UUID) ([]*model.SalonService, error)
		Update(ctx context.Context, svc *model.SalonService) error
		Delete(ctx context.Context, id uuid.UUID) error
		ListByBranch(ctx context.Context, branchID uuid.UUID, activeOnly bool) ([]*model.SalonService, error)
	}

	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		Update(ctx context.Context, user *model.User) error
	}

	// AppointmentRepository persists the booking aggregate. CreateBooking runs
	// the slot check, line inserts and optional coupon redemption in one
	// transaction; a unique-constraint violation on the slot surfaces as a
	// conflict error.
	AppointmentRepository interface {
		CreateBooking(ctx context.Context, apt *model.Appointment, lines []*model.AppointmentLine, redemption *model.CouponUsage) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		Update(ctx context.Context, apt *model.Appointment) error
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
		GetLines(ctx context.Context, appointmentID uuid.UUID) ([]*model.AppointmentLine, error)
		CountActiveAtSlot(ctx context.Context, staffID uuid.UUID, at time.Time) (int, error)

		CreateReschedule(ctx context.Context, r *model.AppointmentReschedule) error
		GetReschedule(ctx context.Context, id uuid.UUID) (*model.AppointmentReschedule, error)
		UpdateReschedule(ctx context.Context, r *model.AppointmentReschedule) error
		ListReschedules(ctx context.Context, appointmentID uuid.UUID) ([]*model.AppointmentReschedule, error)
	}

	CouponRepository interface {
		Create(ctx context.Context, coupon *model.Coupon) error
		Get(ctx context.Context, id uuid.UUID) (*model.Coupon, error)
		GetByCode(ctx context.Context, code string) (*model.Coupon, error)
		Update(ctx context.Context, coupon *model.Coupon) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, activeOnly bool, page model.Pagination) ([]*model.Coupon, int, error)
		CountUsageByUser(ctx context.Context, couponID, userID uuid.UUID) (int, error)
	}

	MembershipRepository interface {
		CreatePlan(ctx context.Context, plan *model.MembershipPlan) error
		GetPlan(ctx context.Context, id uuid.UUID) (*model.MembershipPlan, error)
		UpdatePlan(ctx context.Context, plan *model.MembershipPlan) error
		ListPlans(ctx context.Context, activeOnly bool) ([]*model.MembershipPlan, error)

		CreateMembership(ctx context.Context, m *model.UserMembership) error
		GetMembership(ctx context.Context, id uuid.UUID) (*model.UserMembership, error)
		GetActiveMembership(ctx context.Context, userID uuid.UUID, now time.Time) (*model.UserMembership, error)
		UpdateMembership(ctx context.Context, m *model.UserMembership) error
	}

	InventoryRepository interface {
		Create(ctx context.Context, item *model.Inventory) error
		Get(ctx context.Context, id uuid.UUID) (*model.Inventory, error)
		Update(ctx context.Context, item *model.Inventory) error
		Delete(ctx context.Context, id uuid.UUID) error
		ListByBranch(ctx context.Context, branchID uuid.UUID) ([]*model.Inventory, error)
	}

	// ReminderRepository persists the dispatch audit trail. ClaimDue moves
	// due rows to processing and returns them in one atomic step, so two
	// overlapping sweeps can never pick up the same reminder.
	ReminderRepository interface {
		Create(ctx context.Context, reminder *model.AppointmentReminder) error
		Get(ctx context.Context, id uuid.UUID) (*model.AppointmentReminder, error)
		Update(ctx context.Context, reminder *model.AppointmentReminder) error
		ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*model.AppointmentReminder, error)
		ClaimDue(ctx context.Context, now time.Time, limit int) ([]*model.AppointmentReminder, error)
	}
)
