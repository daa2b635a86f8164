package api

import (
	"infraspend/service"

	"github.com/gin-gonic/gin"
)

// DashboardHandler summary figures
type DashboardHandler struct {
	svc *service.Service
}

func NewDashboardHandler(svc *service.Service) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// Get the dashboard
// @Summary Dashboard
// @Description Budget totals, review counts and recent expenditures visible to the caller.
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=service.Dashboard}
// @Router /api/dashboard [get]
func (h *DashboardHandler) Get(c *gin.Context) {
	d, err := h.svc.Dashboard(c.Request.Context(), actor(c))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, d)
}
