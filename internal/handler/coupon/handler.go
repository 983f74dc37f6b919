package coupon

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/salonhq/salon-api/internal/handler"
	"github.com/salonhq/salon-api/internal/middleware"
	"github.com/salonhq/salon-api/internal/model"
	"github.com/salonhq/salon-api/internal/service/coupon"
	apperrors "github.com/salonhq/salon-api/pkg/errors"
	"github.com/salonhq/salon-api/pkg/httputil"
)

type Handler struct {
	service *coupon.Service
}

func NewHandler(service *coupon.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	coupons := r.Group("/coupons")
	{
		coupons.POST("/validate", h.Validate)

		admin := coupons.Group("", middleware.RequireRole(model.UserRoleAdmin))
		{
			admin.POST("", h.Create)
			admin.GET("", h.List)
			admin.GET("/:id", h.Get)
			admin.POST("/:id/deactivate", h.Deactivate)
			admin.DELETE("/:id", h.Delete)
		}
	}
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateCouponRequest
	if err := handler.BindAndValidate(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	coupon, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, coupon)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid coupon ID", err))
		return
	}

	coupon, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, coupon)
}

func (h *Handler) List(c *gin.Context) {
	activeOnly := c.Query("active") == "true"

	var page model.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid pagination parameters", err))
		return
	}
	page.Normalize()

	coupons, total, err := h.service.List(c.Request.Context(), activeOnly, page)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithPagination(c, coupons, page.Page, page.PageSize, total)
}

func (h *Handler) Deactivate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid coupon ID", err))
		return
	}

	coupon, err := h.service.Deactivate(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, coupon)
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid coupon ID", err))
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"deleted": true})
}

// Validate is the dry-run quote endpoint: it never redeems.
func (h *Handler) Validate(c *gin.Context) {
	var req model.ValidateCouponRequest
	if err := handler.BindAndValidate(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	quote, err := h.service.Validate(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, quote)
}
