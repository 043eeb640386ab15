package handler

import (
	"net/http"
	"strconv"

	"sigoc/internal/middleware"
	"sigoc/internal/model"
	"sigoc/internal/repository"
	"sigoc/internal/service"
	"sigoc/pkg/pagination"
	"sigoc/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ProcessoHandler struct {
	processoService service.ProcessoService
}

func NewProcessoHandler(processoService service.ProcessoService) *ProcessoHandler {
	return &ProcessoHandler{processoService: processoService}
}

func (h *ProcessoHandler) RegisterRoutes(router *gin.RouterGroup) {
	leitura := middleware.RequireRole(model.RoleAdmin, model.RoleAuditor, model.RoleConsulta)
	escrita := middleware.RequireRole(model.RoleAdmin, model.RoleAuditor)

	processos := router.Group("/processos")
	{
		processos.GET("", leitura, h.ListProcessos)
		processos.POST("", escrita, h.CreateProcesso)
		processos.GET("/:identificador", leitura, h.GetProcesso)
		processos.PUT("/:identificador", escrita, h.UpdateProcesso)
		processos.DELETE("/:identificador", escrita, h.DeleteProcesso)
		processos.GET("/:identificador/arvore", leitura, h.GetArvore)
		processos.GET("/:identificador/historicos", leitura, h.ListHistoricos)
		processos.POST("/:identificador/arquivar", escrita, h.ArquivarProcesso)
	}
}

// ListProcessos lists processes with filters and pagination
// @Summary      List processos
// @Description  Retrieves a paginated list of processos, filterable by tipo, situação, prioridade, órgão, ano and free text
// @Tags         processos
// @Security     BearerAuth
// @Produce      json
// @Param        page       query     int     false  "Page number (default 1)"
// @Param        page_size  query     int     false  "Items per page (default 50, max 100)"
// @Param        tipo       query     string  false  "Filter by tipo"
// @Param        situacao_id query    string  false  "Filter by situação"
// @Param        prioridade query     string  false  "Filter by prioridade"
// @Param        orgao_demandante query string false "Filter by órgão demandante"
// @Param        ano_solicitacao query int    false  "Filter by ano de solicitação"
// @Param        pai_id     query     string  false  "Filter by parent processo"
// @Param        search     query     string  false  "Free text over identificador, assunto, número SEI and número externo"
// @Success      200  {object}  response.Response{data=response.Paginated}
// @Failure      500  {object}  response.Response
// @Router       /api/v1/processos [get]
func (h *ProcessoHandler) ListProcessos(c *gin.Context) {
	params := pagination.Parse(c)

	filter := repository.ProcessoFilter{
		Tipo:            c.Query("tipo"),
		Prioridade:      c.Query("prioridade"),
		OrgaoDemandante: c.Query("orgao_demandante"),
		Search:          c.Query("search"),
	}
	if raw := c.Query("situacao_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "situacao_id inválido"))
			return
		}
		filter.SituacaoID = &id
	}
	if raw := c.Query("pai_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "pai_id inválido"))
			return
		}
		filter.PaiID = &id
	}
	if raw := c.Query("ano_solicitacao"); raw != "" {
		ano, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "ano_solicitacao inválido"))
			return
		}
		filter.AnoSolicitacao = &ano
	}

	processos, total, err := h.processoService.List(c.Request.Context(), filter, params.Page, params.Limit)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, processos, params.Page, params.Limit, total))
}

// CreateProcesso creates a new processo and its creation history entry
// @Summary      Create processo
// @Description  Creates a processo of any tipo, validating hierarchy and required fields, and assigns it a unique 10 digit identificador
// @Tags         processos
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateProcessoRequest  true  "Create Processo Payload"
// @Success      201      {object}  response.Response{data=model.Processo}
// @Failure      400      {object}  response.Response
// @Failure      500      {object}  response.Response
// @Router       /api/v1/processos [post]
func (h *ProcessoHandler) CreateProcesso(c *gin.Context) {
	var req service.CreateProcessoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Payload inválido: "+err.Error()))
		return
	}

	processo, err := h.processoService.Create(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, processo))
}

// GetProcesso fetches a processo by its identificador
// @Summary      Get processo
// @Tags         processos
// @Security     BearerAuth
// @Produce      json
// @Param        identificador  path      string  true  "Identificador (10 digits)"
// @Success      200  {object}  response.Response{data=model.Processo}
// @Failure      404  {object}  response.Response
// @Router       /api/v1/processos/{identificador} [get]
func (h *ProcessoHandler) GetProcesso(c *gin.Context) {
	processo, err := h.processoService.Get(c.Request.Context(), c.Param("identificador"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, processo))
}

// UpdateProcesso applies a partial update and records the field diff
// @Summary      Update processo
// @Description  Applies a partial update. Fields not present in the payload are untouched; changes are recorded in the processo's history
// @Tags         processos
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        identificador  path      string                         true  "Identificador"
// @Param        payload        body      service.UpdateProcessoRequest  true  "Update Processo Payload"
// @Success      200  {object}  response.Response{data=model.Processo}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/v1/processos/{identificador} [put]
func (h *ProcessoHandler) UpdateProcesso(c *gin.Context) {
	var req service.UpdateProcessoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Payload inválido: "+err.Error()))
		return
	}

	processo, err := h.processoService.Update(c.Request.Context(), c.Param("identificador"), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, processo))
}

// DeleteProcesso removes a processo and, in cascade, its descendants
// @Summary      Delete processo
// @Tags         processos
// @Security     BearerAuth
// @Produce      json
// @Param        identificador  path      string  true  "Identificador"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/v1/processos/{identificador} [delete]
func (h *ProcessoHandler) DeleteProcesso(c *gin.Context) {
	if err := h.processoService.Delete(c.Request.Context(), c.Param("identificador")); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Processo removido"}))
}

// GetArvore returns the processo with its full descendant tree
// @Summary      Get processo tree
// @Description  Returns the processo and all its descendants nested by parent link
// @Tags         processos
// @Security     BearerAuth
// @Produce      json
// @Param        identificador  path      string  true  "Identificador"
// @Success      200  {object}  response.Response{data=service.ArvoreNode}
// @Failure      404  {object}  response.Response
// @Router       /api/v1/processos/{identificador}/arvore [get]
func (h *ProcessoHandler) GetArvore(c *gin.Context) {
	arvore, err := h.processoService.Arvore(c.Request.Context(), c.Param("identificador"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, arvore))
}

// ListHistoricos lists a processo's change history, newest first
// @Summary      List processo history
// @Tags         processos
// @Security     BearerAuth
// @Produce      json
// @Param        identificador  path      string  true   "Identificador"
// @Param        page           query     int     false  "Page number"
// @Param        page_size      query     int     false  "Items per page"
// @Success      200  {object}  response.Response{data=response.Paginated}
// @Failure      404  {object}  response.Response
// @Router       /api/v1/processos/{identificador}/historicos [get]
func (h *ProcessoHandler) ListHistoricos(c *gin.Context) {
	params := pagination.Parse(c)

	historicos, total, err := h.processoService.Historicos(c.Request.Context(), c.Param("identificador"), params.Page, params.Limit)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, historicos, params.Page, params.Limit, total))
}

// ArquivarProcesso moves a processo to the terminal situação
// @Summary      Archive processo
// @Description  Sets the processo's situação to Concluído, recording the change in its history
// @Tags         processos
// @Security     BearerAuth
// @Produce      json
// @Param        identificador  path      string  true  "Identificador"
// @Success      200  {object}  response.Response{data=model.Processo}
// @Failure      404  {object}  response.Response
// @Router       /api/v1/processos/{identificador}/arquivar [post]
func (h *ProcessoHandler) ArquivarProcesso(c *gin.Context) {
	processo, err := h.processoService.Arquivar(c.Request.Context(), c.Param("identificador"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, processo))
}
