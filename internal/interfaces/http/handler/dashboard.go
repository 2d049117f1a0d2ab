package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/salescrm/backend/internal/application/dashboard"
)

// DashboardHandler serves the dashboard metrics
type DashboardHandler struct {
	BaseHandler
	dashboardService *dashboard.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService *dashboard.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Get godoc
// @ID           getDashboard
// @Summary      Dashboard
// @Description  Metrics, charts, alerts and upcoming visits. Visit figures are scoped to the seller for vendedor users.
// @Tags         dashboard
// @Produce      json
// @Success      200 {object} APIResponse[dashboard.Dashboard]
// @Security     BearerAuth
// @Router       /dashboard [get]
func (h *DashboardHandler) Get(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}

	data, err := h.dashboardService.Get(c.Request.Context(), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, data)
}

// Refresh godoc
// @ID           refreshDashboard
// @Summary      Drop cached dashboard figures
// @Tags         dashboard
// @Produce      json
// @Success      200 {object} APIResponse[MessageData]
// @Security     BearerAuth
// @Router       /dashboard/refresh [post]
func (h *DashboardHandler) Refresh(c *gin.Context) {
	if err := h.dashboardService.Invalidate(c.Request.Context()); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, MessageData{Message: "Dashboard cache cleared"})
}
