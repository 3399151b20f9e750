package handler

import (
	"net/http"
	"strconv"

	"aprobaciones/internal/middleware"
	"aprobaciones/internal/model"
	"aprobaciones/internal/service"
	"aprobaciones/pkg/response"

	"github.com/gin-gonic/gin"
)

// RequestTypeHandler exposes the request type catalog.
type RequestTypeHandler struct {
	typeService service.RequestTypeService
}

// NewRequestTypeHandler builds a RequestTypeHandler.
func NewRequestTypeHandler(typeService service.RequestTypeService) *RequestTypeHandler {
	return &RequestTypeHandler{typeService: typeService}
}

// RegisterRoutes mounts the catalog endpoints. Reads are open; mutations are
// admin-only.
func (h *RequestTypeHandler) RegisterRoutes(router *gin.RouterGroup) {
	types := router.Group("/api/request-types")
	{
		types.GET("", h.List)
		types.POST("", middleware.RequireRole(model.RoleAdmin), h.Create)
		types.PATCH("/:id", middleware.RequireRole(model.RoleAdmin), h.Update)
	}
}

// List returns the catalog ordered by name
// @Summary      List request types
// @Tags         request-types
// @Produce      json
// @Success      200 {object} response.Response{data=[]model.RequestType}
// @Router       /api/request-types [get]
func (h *RequestTypeHandler) List(c *gin.Context) {
	types, err := h.typeService.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "failed to list request types"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, types))
}

// Create adds a new active request type
// @Summary      Create request type
// @Tags         request-types
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        type body service.CreateRequestTypeInput true "Catalog entry"
// @Success      201 {object} response.Response{data=model.RequestType}
// @Failure      400 {object} response.Response
// @Router       /api/request-types [post]
func (h *RequestTypeHandler) Create(c *gin.Context) {
	var in service.CreateRequestTypeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	rt, err := h.typeService.Create(c.Request.Context(), in)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, rt))
}

// Update mutates name, description or the active gate
// @Summary      Update request type
// @Tags         request-types
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id path int true "Type id"
// @Param        type body service.UpdateRequestTypeInput true "Fields to change"
// @Success      200 {object} response.Response{data=model.RequestType}
// @Failure      400 {object} response.Response
// @Failure      404 {object} response.Response
// @Router       /api/request-types/{id} [patch]
func (h *RequestTypeHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid type id"))
		return
	}

	var in service.UpdateRequestTypeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	rt, err := h.typeService.Update(c.Request.Context(), uint(id), in)
	if err != nil {
		if service.IsNotFound(err) {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "request type not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, rt))
}
