package booking

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/salonhq/salon-api/internal/handler"
	"github.com/salonhq/salon-api/internal/middleware"
	"github.com/salonhq/salon-api/internal/model"
	"github.com/salonhq/salon-api/internal/service/booking"
	apperrors "github.com/salonhq/salon-api/pkg/errors"
	"github.com/salonhq/salon-api/pkg/httputil"
)

type Handler struct {
	service *booking.Service
}

func NewHandler(service *booking.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	{
		appointments.POST("", h.Book)
		appointments.GET("", h.List)
		appointments.GET("/:id", h.Get)
		appointments.POST("/:id/cancel", h.Cancel)
		appointments.POST("/:id/status", middleware.RequireRole(model.UserRoleStaff, model.UserRoleAdmin), h.Transition)
		appointments.POST("/:id/reschedule", h.RequestReschedule)
		appointments.POST("/:id/review", h.SubmitReview)
		appointments.POST("/:id/payment/confirm", h.ConfirmPayment)
	}

	reschedules := r.Group("/reschedules")
	{
		reschedules.POST("/:id/decision", middleware.RequireRole(model.UserRoleAdmin), h.DecideReschedule)
	}

	r.GET("/availability", h.CheckAvailability)
}

func (h *Handler) Book(c *gin.Context) {
	var req model.BookingRequest
	if err := handler.BindAndValidate(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	apt, err := h.service.Book(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, apt)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid appointment ID", err))
		return
	}

	apt, err := h.service.GetAppointment(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, apt)
}

func (h *Handler) List(c *gin.Context) {
	filters := &model.AppointmentFilters{}

	if id := c.Query("branch_id"); id != "" {
		branchID, err := uuid.Parse(id)
		if err != nil {
			httputil.RespondWithError(c, apperrors.Validation("invalid branch ID", err))
			return
		}
		filters.BranchID = branchID
	}
	if id := c.Query("staff_id"); id != "" {
		staffID, err := uuid.Parse(id)
		if err != nil {
			httputil.RespondWithError(c, apperrors.Validation("invalid staff ID", err))
			return
		}
		filters.StaffID = staffID
	}
	if id := c.Query("user_id"); id != "" {
		userID, err := uuid.Parse(id)
		if err != nil {
			httputil.RespondWithError(c, apperrors.Validation("invalid user ID", err))
			return
		}
		filters.UserID = userID
	}
	if status := c.Query("status"); status != "" {
		filters.Status = model.AppointmentStatus(status)
	}
	if date := c.Query("start_date"); date != "" {
		t, err := time.Parse("2006-01-02", date)
		if err != nil {
			httputil.RespondWithError(c, apperrors.Validation("invalid start_date, expected YYYY-MM-DD", err))
			return
		}
		filters.StartDate = t
	}
	if date := c.Query("end_date"); date != "" {
		t, err := time.Parse("2006-01-02", date)
		if err != nil {
			httputil.RespondWithError(c, apperrors.Validation("invalid end_date, expected YYYY-MM-DD", err))
			return
		}
		filters.EndDate = t
	}

	appointments, err := h.service.ListAppointments(c.Request.Context(), filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, appointments)
}

func (h *Handler) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid appointment ID", err))
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid request body", err))
		return
	}

	apt, err := h.service.Cancel(c.Request.Context(), id, req.Reason)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, apt)
}

func (h *Handler) Transition(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid appointment ID", err))
		return
	}

	var req struct {
		Status model.AppointmentStatus `json:"status" validate:"required"`
	}
	if err := handler.BindAndValidate(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	apt, err := h.service.Transition(c.Request.Context(), id, req.Status)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, apt)
}

func (h *Handler) RequestReschedule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid appointment ID", err))
		return
	}

	var req model.RescheduleRequest
	if err := handler.BindAndValidate(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	resched, err := h.service.RequestReschedule(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, resched)
}

func (h *Handler) DecideReschedule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid reschedule ID", err))
		return
	}

	var req model.RescheduleDecision
	if err := handler.BindAndValidate(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	resched, err := h.service.DecideReschedule(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, resched)
}

func (h *Handler) SubmitReview(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid appointment ID", err))
		return
	}

	var req model.ReviewRequest
	if err := handler.BindAndValidate(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	apt, err := h.service.SubmitReview(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, apt)
}

func (h *Handler) ConfirmPayment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid appointment ID", err))
		return
	}

	var req struct {
		OrderRef   string `json:"order_ref" validate:"required"`
		PaymentRef string `json:"payment_ref" validate:"required"`
		Signature  string `json:"signature"`
	}
	if err := handler.BindAndValidate(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	apt, err := h.service.ConfirmPayment(c.Request.Context(), id, req.OrderRef, req.PaymentRef, req.Signature)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, apt)
}

// CheckAvailability answers whether a staff member is free at an exact slot.
func (h *Handler) CheckAvailability(c *gin.Context) {
	staffID, err := uuid.Parse(c.Query("staff_id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid staff ID", err))
		return
	}

	at, err := time.Parse(time.RFC3339, c.Query("at"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid at, expected RFC3339 timestamp", err))
		return
	}

	free, err := h.service.IsStaffFree(c.Request.Context(), staffID, at)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"staff_id": staffID, "at": at, "available": free})
}
