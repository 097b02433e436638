package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BMS-2026/crm-service/internal/services"
	"github.com/BMS-2026/crm-service/internal/utils"
)

type DashboardHandler struct {
	BaseHandler
	service services.DashboardService
}

func NewDashboardHandler(service services.DashboardService, logger utils.Logger) *DashboardHandler {
	return &DashboardHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// GetOverview returns the landing-page metrics scoped to the caller
// @Summary Dashboard overview
// @Tags dashboard
// @Produce json
// @Success 200 {object} services.DashboardResponse
// @Failure 401 {object} ErrorResponse
// @Router /dashboard [get]
func (h *DashboardHandler) GetOverview(c *gin.Context) {
	actor := h.currentUser(c)
	if actor == nil {
		return
	}

	h.LogRequest(c, "Getting dashboard overview")

	resp, err := h.service.Overview(c.Request.Context(), actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
