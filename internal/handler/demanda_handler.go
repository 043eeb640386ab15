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

type DemandaHandler struct {
	demandaService service.DemandaService
}

func NewDemandaHandler(demandaService service.DemandaService) *DemandaHandler {
	return &DemandaHandler{demandaService: demandaService}
}

func (h *DemandaHandler) RegisterRoutes(router *gin.RouterGroup) {
	leitura := middleware.RequireRole(model.RoleAdmin, model.RoleAuditor, model.RoleConsulta)
	escrita := middleware.RequireRole(model.RoleAdmin, model.RoleAuditor)

	demandas := router.Group("/demandas")
	{
		demandas.GET("", leitura, h.ListDemandas)
		demandas.POST("", escrita, h.CreateDemanda)
		demandas.GET("/:id", leitura, h.GetDemanda)
		demandas.PUT("/:id", escrita, h.UpdateDemanda)
		demandas.DELETE("/:id", escrita, h.DeleteDemanda)
		demandas.GET("/:id/pedidos-prorrogacao", leitura, h.ListPedidos)
		demandas.POST("/:id/pedidos-prorrogacao", escrita, h.CreatePedido)
	}
}

func parseIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "id inválido"))
		return uuid.Nil, false
	}
	return id, true
}

// ListDemandas lists demandas with their derived deadline state
// @Summary      List demandas
// @Description  Retrieves a paginated list of demandas. Each item carries prazo_efetivo, tem_prorrogacao and status_ultima_prorrogacao recomputed from its pedidos
// @Tags         demandas
// @Security     BearerAuth
// @Produce      json
// @Param        page         query  int     false  "Page number"
// @Param        page_size    query  int     false  "Items per page"
// @Param        processo_id  query  string  false  "Filter by owning processo"
// @Success      200  {object}  response.Response{data=response.Paginated}
// @Failure      500  {object}  response.Response
// @Router       /api/v1/demandas [get]
func (h *DemandaHandler) ListDemandas(c *gin.Context) {
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

	demandas, total, err := h.demandaService.List(c.Request.Context(), processoID, params.Page, params.Limit)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, demandas, params.Page, params.Limit, total))
}

// CreateDemanda creates a demanda under a processo
// @Summary      Create demanda
// @Tags         demandas
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateDemandaRequest  true  "Create Demanda Payload"
// @Success      201      {object}  response.Response{data=service.DemandaResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/v1/demandas [post]
func (h *DemandaHandler) CreateDemanda(c *gin.Context) {
	var req service.CreateDemandaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Payload inválido: "+err.Error()))
		return
	}

	demanda, err := h.demandaService.Create(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, demanda))
}

// GetDemanda fetches a demanda with its derived state
// @Summary      Get demanda
// @Tags         demandas
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Demanda ID"
// @Success      200  {object}  response.Response{data=service.DemandaResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/v1/demandas/{id} [get]
func (h *DemandaHandler) GetDemanda(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	demanda, err := h.demandaService.Get(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, demanda))
}

// UpdateDemanda applies a partial update to a demanda
// @Summary      Update demanda
// @Tags         demandas
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                        true  "Demanda ID"
// @Param        payload  body      service.UpdateDemandaRequest  true  "Update Demanda Payload"
// @Success      200      {object}  response.Response{data=service.DemandaResponse}
// @Failure      404      {object}  response.Response
// @Router       /api/v1/demandas/{id} [put]
func (h *DemandaHandler) UpdateDemanda(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req service.UpdateDemandaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Payload inválido: "+err.Error()))
		return
	}

	demanda, err := h.demandaService.Update(c.Request.Context(), id, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, demanda))
}

// DeleteDemanda removes a demanda and its pedidos
// @Summary      Delete demanda
// @Tags         demandas
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Demanda ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/v1/demandas/{id} [delete]
func (h *DemandaHandler) DeleteDemanda(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.demandaService.Delete(c.Request.Context(), id); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Demanda removida"}))
}

// ListPedidos lists a demanda's extension requests in request order
// @Summary      List pedidos de prorrogação
// @Tags         demandas
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Demanda ID"
// @Success      200  {object}  response.Response{data=[]model.PedidoProrrogacao}
// @Failure      404  {object}  response.Response
// @Router       /api/v1/demandas/{id}/pedidos-prorrogacao [get]
func (h *DemandaHandler) ListPedidos(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	pedidos, err := h.demandaService.ListPedidos(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, pedidos))
}

// CreatePedido registers an extension request against a demanda
// @Summary      Create pedido de prorrogação
// @Description  Registers an extension request, enforcing the temporal rules between data_pedido, data_decisao and the requested and authorized deadlines
// @Tags         demandas
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                       true  "Demanda ID"
// @Param        payload  body      service.CreatePedidoRequest  true  "Create Pedido Payload"
// @Success      201      {object}  response.Response{data=model.PedidoProrrogacao}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/v1/demandas/{id}/pedidos-prorrogacao [post]
func (h *DemandaHandler) CreatePedido(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req service.CreatePedidoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Payload inválido: "+err.Error()))
		return
	}

	pedido, err := h.demandaService.CreatePedido(c.Request.Context(), id, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, pedido))
}
