package branch

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/salonhq/salon-api/internal/handler"
	"github.com/salonhq/salon-api/internal/middleware"
	"github.com/salonhq/salon-api/internal/model"
	"github.com/salonhq/salon-api/internal/service/branch"
	"github.com/salonhq/salon-api/internal/service/calendar"
	apperrors "github.com/salonhq/salon-api/pkg/errors"
	"github.com/salonhq/salon-api/pkg/httputil"
)

type Handler struct {
	service  *branch.Service
	calendar *calendar.Service
}

func NewHandler(service *branch.Service, cal *calendar.Service) *Handler {
	return &Handler{service: service, calendar: cal}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	branches := r.Group("/branches")
	{
		branches.GET("", h.List)
		branches.GET("/:id", h.Get)
		branches.GET("/:id/schedule", h.GetSchedule)
		branches.GET("/:id/hours", h.ListBusinessHours)
		branches.GET("/:id/holidays", h.ListHolidays)

		admin := branches.Group("", middleware.RequireRole(model.UserRoleAdmin))
		{
			admin.POST("", h.Create)
			admin.PUT("/:id", h.Update)
			admin.DELETE("/:id", h.Delete)
			admin.PUT("/:id/hours", h.SetBusinessHours)
			admin.POST("/:id/holidays", h.CreateHoliday)
			admin.DELETE("/:id/holidays/:holidayID", h.DeleteHoliday)
		}
	}
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateBranchRequest
	if err := handler.BindAndValidate(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	b, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, b)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid branch ID", err))
		return
	}

	b, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, b)
}

func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid branch ID", err))
		return
	}

	b, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req model.CreateBranchRequest
	if err := handler.BindAndValidate(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	b.Name = req.Name
	b.Address = req.Address
	b.City = req.City
	b.Phone = req.Phone
	b.Latitude = req.Latitude
	b.Longitude = req.Longitude

	if err := h.service.Update(c.Request.Context(), b); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, b)
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid branch ID", err))
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"deleted": true})
}

func (h *Handler) List(c *gin.Context) {
	activeOnly := c.Query("active") == "true"

	branches, err := h.service.List(c.Request.Context(), activeOnly)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, branches)
}

// GetSchedule answers "is the branch open on this date, and when" for
// storefront display.
func (h *Handler) GetSchedule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid branch ID", err))
		return
	}

	date := time.Now()
	if d := c.Query("date"); d != "" {
		date, err = time.Parse("2006-01-02", d)
		if err != nil {
			httputil.RespondWithError(c, apperrors.Validation("invalid date, expected YYYY-MM-DD", err))
			return
		}
	}

	open, err := h.calendar.IsOpen(c.Request.Context(), id, date)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	schedule := gin.H{
		"branch_id": id,
		"date":      date.Format("2006-01-02"),
		"open":      open,
	}
	if open {
		opening, err := h.calendar.OpeningTime(c.Request.Context(), id, date)
		if err != nil {
			httputil.RespondWithError(c, err)
			return
		}
		closing, err := h.calendar.ClosingTime(c.Request.Context(), id, date)
		if err != nil {
			httputil.RespondWithError(c, err)
			return
		}
		schedule["opens_at"] = opening
		schedule["closes_at"] = closing
	}
	httputil.RespondWithSuccess(c, schedule)
}

func (h *Handler) SetBusinessHours(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid branch ID", err))
		return
	}

	var req model.UpsertBusinessHoursRequest
	if err := handler.BindAndValidate(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	hours, err := h.service.SetBusinessHours(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, hours)
}

func (h *Handler) ListBusinessHours(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid branch ID", err))
		return
	}

	hours, err := h.service.ListBusinessHours(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, hours)
}

func (h *Handler) CreateHoliday(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid branch ID", err))
		return
	}

	var req model.CreateHolidayRequest
	if err := handler.BindAndValidate(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	holiday, err := h.service.CreateHoliday(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, holiday)
}

func (h *Handler) DeleteHoliday(c *gin.Context) {
	branchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid branch ID", err))
		return
	}
	holidayID, err := uuid.Parse(c.Param("holidayID"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid holiday ID", err))
		return
	}

	date := time.Now()
	if d := c.Query("date"); d != "" {
		date, err = time.Parse("2006-01-02", d)
		if err != nil {
			httputil.RespondWithError(c, apperrors.Validation("invalid date, expected YYYY-MM-DD", err))
			return
		}
	}

	if err := h.service.DeleteHoliday(c.Request.Context(), branchID, holidayID, date); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"deleted": true})
}

func (h *Handler) ListHolidays(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid branch ID", err))
		return
	}

	from := time.Now()
	to := from.AddDate(1, 0, 0)
	holidays, err := h.service.ListHolidays(c.Request.Context(), id, from, to)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, holidays)
}
