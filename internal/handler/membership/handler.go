package membership

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/salonhq/salon-api/internal/handler"
	"github.com/salonhq/salon-api/internal/middleware"
	"github.com/salonhq/salon-api/internal/model"
	"github.com/salonhq/salon-api/internal/service/membership"
	apperrors "github.com/salonhq/salon-api/pkg/errors"
	"github.com/salonhq/salon-api/pkg/httputil"
)

type Handler struct {
	service *membership.Service
}

func NewHandler(service *membership.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	plans := r.Group("/membership-plans")
	{
		plans.GET("", h.ListPlans)

		admin := plans.Group("", middleware.RequireRole(model.UserRoleAdmin))
		{
			admin.POST("", h.CreatePlan)
			admin.GET("/:id", h.GetPlan)
			admin.POST("/:id/retire", h.RetirePlan)
		}
	}

	memberships := r.Group("/memberships")
	{
		memberships.GET("/me", h.GetMine)
		memberships.POST("/purchase", h.Purchase)
		memberships.POST("/renew", h.Renew)
		memberships.POST("/cancel", h.Cancel)
	}
}

func (h *Handler) CreatePlan(c *gin.Context) {
	var req model.CreatePlanRequest
	if err := handler.BindAndValidate(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	plan, err := h.service.CreatePlan(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, plan)
}

func (h *Handler) GetPlan(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid plan id", err))
		return
	}

	plan, err := h.service.GetPlan(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, plan)
}

// RetirePlan stops offering a plan to new purchasers. Existing memberships
// keep their benefits until expiry.
func (h *Handler) RetirePlan(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid plan id", err))
		return
	}

	plan, err := h.service.RetirePlan(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, plan)
}

func (h *Handler) ListPlans(c *gin.Context) {
	plans, err := h.service.ListPlans(c.Request.Context(), true)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, plans)
}

func (h *Handler) GetMine(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	m, err := h.service.GetForUser(c.Request.Context(), userID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, m)
}

func (h *Handler) Purchase(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req model.PurchaseMembershipRequest
	if err := handler.BindAndValidate(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	m, err := h.service.Purchase(c.Request.Context(), userID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, m)
}

func (h *Handler) Renew(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	m, err := h.service.Renew(c.Request.Context(), userID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, m)
}

func (h *Handler) Cancel(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	m, err := h.service.Cancel(c.Request.Context(), userID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, m)
}

func currentUserID(c *gin.Context) (uuid.UUID, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return uuid.Nil, apperrors.Unauthorized(nil)
	}
	return id, nil
}
