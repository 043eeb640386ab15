package handler

import (
	"net/http"

	"sigoc/internal/middleware"
	"sigoc/internal/model"
	"sigoc/internal/service"
	"sigoc/pkg/pagination"
	"sigoc/pkg/response"

	"github.com/gin-gonic/gin"
)

// LookupHandler exposes the CRUD of one reference table. The same
// handler shape serves grupos de auditores, auditores, unidades,
// atribuições, situações, categorias and tipos de demanda; only the
// route path and entity type change.
type LookupHandler[T any] struct {
	svc  service.LookupService[T]
	path string
}

func NewLookupHandler[T any](svc service.LookupService[T], path string) *LookupHandler[T] {
	return &LookupHandler[T]{svc: svc, path: path}
}

func (h *LookupHandler[T]) RegisterRoutes(router *gin.RouterGroup) {
	leitura := middleware.RequireRole(model.RoleAdmin, model.RoleAuditor, model.RoleConsulta)
	escrita := middleware.RequireRole(model.RoleAdmin, model.RoleAuditor)

	group := router.Group("/" + h.path)
	{
		group.GET("", leitura, h.List)
		group.POST("", escrita, h.Create)
		group.GET("/:id", leitura, h.Get)
		group.PUT("/:id", escrita, h.Update)
		group.DELETE("/:id", escrita, h.Delete)
	}
}

func (h *LookupHandler[T]) List(c *gin.Context) {
	params := pagination.Parse(c)
	search := c.Query("search")

	items, total, err := h.svc.List(c.Request.Context(), search, params.Page, params.Limit)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, items, params.Page, params.Limit, total))
}

func (h *LookupHandler[T]) Create(c *gin.Context) {
	var entity T
	if err := c.ShouldBindJSON(&entity); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Payload inválido: "+err.Error()))
		return
	}
	if err := h.svc.Create(c.Request.Context(), &entity); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, entity))
}

func (h *LookupHandler[T]) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	entity, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, entity))
}

func (h *LookupHandler[T]) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var entity T
	if err := c.ShouldBindJSON(&entity); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Payload inválido: "+err.Error()))
		return
	}
	if err := h.svc.Update(c.Request.Context(), id, &entity); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, entity))
}

func (h *LookupHandler[T]) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Registro removido"}))
}
