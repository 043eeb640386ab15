package handler

import (
	"net/http"

	"sigoc/internal/middleware"
	"sigoc/internal/model"
	"sigoc/internal/service"
	"sigoc/pkg/response"

	"github.com/gin-gonic/gin"
)

type StatisticsHandler struct {
	statisticsService service.StatisticsService
}

func NewStatisticsHandler(statisticsService service.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{statisticsService: statisticsService}
}

func (h *StatisticsHandler) RegisterRoutes(router *gin.RouterGroup) {
	leitura := middleware.RequireRole(model.RoleAdmin, model.RoleAuditor, model.RoleConsulta)
	router.GET("/dashboard/stats", leitura, h.GetDashboardStats)
}

// GetDashboardStats aggregates counts and shares over the tracked processes
// @Summary      Dashboard statistics
// @Description  Returns process totals broken down by tipo, situação, prioridade and órgão demandante, plus demanda deadline counts
// @Tags         dashboard
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=service.DashboardStats}
// @Failure      500  {object}  response.Response
// @Router       /api/v1/dashboard/stats [get]
func (h *StatisticsHandler) GetDashboardStats(c *gin.Context) {
	stats, err := h.statisticsService.GetDashboardStats(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, stats))
}
