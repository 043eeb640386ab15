package handler

import (
	"net/http"

	"sigoc/internal/middleware"
	"sigoc/internal/model"
	"sigoc/internal/service"
	"sigoc/pkg/pagination"
	"sigoc/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReuniaoHandler struct {
	reuniaoService service.ReuniaoService
}

func NewReuniaoHandler(reuniaoService service.ReuniaoService) *ReuniaoHandler {
	return &ReuniaoHandler{reuniaoService: reuniaoService}
}

func (h *ReuniaoHandler) RegisterRoutes(router *gin.RouterGroup) {
	leitura := middleware.RequireRole(model.RoleAdmin, model.RoleAuditor, model.RoleConsulta)
	escrita := middleware.RequireRole(model.RoleAdmin, model.RoleAuditor)

	reunioes := router.Group("/reunioes")
	{
		reunioes.GET("", leitura, h.ListReunioes)
		reunioes.POST("", escrita, h.CreateReuniao)
		reunioes.GET("/:id", leitura, h.GetReuniao)
		reunioes.PUT("/:id", escrita, h.UpdateReuniao)
		reunioes.DELETE("/:id", escrita, h.DeleteReuniao)
	}
}

// ListReunioes lists meetings, newest first
// @Summary      List reuniões
// @Tags         reunioes
// @Security     BearerAuth
// @Produce      json
// @Param        page         query  int     false  "Page number"
// @Param        page_size    query  int     false  "Items per page"
// @Param        processo_id  query  string  false  "Filter by processo"
// @Success      200  {object}  response.Response{data=response.Paginated}
// @Router       /api/v1/reunioes [get]
func (h *ReuniaoHandler) ListReunioes(c *gin.Context) {
	params := pagination.Parse(c)

	var processoID *uuid.UUID
	if raw := c.Query("processo_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "processo_id inválido"))
			return
		}
		processoID = &id
	}

	reunioes, total, err := h.reuniaoService.List(c.Request.Context(), processoID, params.Page, params.Limit)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, reunioes, params.Page, params.Limit, total))
}

// CreateReuniao registers a meeting held for a processo
// @Summary      Create reunião
// @Tags         reunioes
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateReuniaoRequest  true  "Create Reunião Payload"
// @Success      201      {object}  response.Response{data=model.Reuniao}
// @Failure      400      {object}  response.Response
// @Router       /api/v1/reunioes [post]
func (h *ReuniaoHandler) CreateReuniao(c *gin.Context) {
	var req service.CreateReuniaoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Payload inválido: "+err.Error()))
		return
	}

	reuniao, err := h.reuniaoService.Create(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, reuniao))
}

// GetReuniao fetches a meeting by id
// @Summary      Get reunião
// @Tags         reunioes
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Reunião ID"
// @Success      200  {object}  response.Response{data=model.Reuniao}
// @Failure      404  {object}  response.Response
// @Router       /api/v1/reunioes/{id} [get]
func (h *ReuniaoHandler) GetReuniao(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	reuniao, err := h.reuniaoService.Get(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, reuniao))
}

// UpdateReuniao applies a partial update to a meeting record
// @Summary      Update reunião
// @Tags         reunioes
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                        true  "Reunião ID"
// @Param        payload  body      service.UpdateReuniaoRequest  true  "Update Reunião Payload"
// @Success      200      {object}  response.Response{data=model.Reuniao}
// @Failure      404      {object}  response.Response
// @Router       /api/v1/reunioes/{id} [put]
func (h *ReuniaoHandler) UpdateReuniao(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req service.UpdateReuniaoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Payload inválido: "+err.Error()))
		return
	}

	reuniao, err := h.reuniaoService.Update(c.Request.Context(), id, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, reuniao))
}

// DeleteReuniao removes a meeting record
// @Summary      Delete reunião
// @Tags         reunioes
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Reunião ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/v1/reunioes/{id} [delete]
func (h *ReuniaoHandler) DeleteReuniao(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.reuniaoService.Delete(c.Request.Context(), id); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Reunião removida"}))
}
