package handler

import (
	"net/http"
	"strconv"
	"time"

	"aprobaciones/internal/middleware"
	"aprobaciones/internal/model"
	"aprobaciones/internal/service"
	"aprobaciones/pkg/response"

	"github.com/gin-gonic/gin"
)

// HistoryHandler exposes the audit event log query surface.
type HistoryHandler struct {
	historyService service.HistoryService
}

// NewHistoryHandler builds a HistoryHandler.
func NewHistoryHandler(historyService service.HistoryService) *HistoryHandler {
	return &HistoryHandler{historyService: historyService}
}

// RegisterRoutes mounts the audit endpoints, gated to auditor-capable roles.
func (h *HistoryHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/api/history")
	group.Use(middleware.RequireRole(model.RoleAdmin, model.RoleAprobador))
	{
		group.GET("", h.List)
		group.GET("/request/:id", h.ListByRequest)
	}
}

// List queries audit events newest first
// @Summary      Query audit events
// @Tags         history
// @Security     BearerAuth
// @Produce      json
// @Param        actorId query int    false "Filter by actor"
// @Param        action  query string false "CREATED or STATUS_CHANGED"
// @Param        from    query string false "Inclusive lower bound (RFC3339)"
// @Param        to      query string false "Inclusive upper bound (RFC3339)"
// @Success      200 {object} response.Response{data=[]model.AuditEvent}
// @Router       /api/history [get]
func (h *HistoryHandler) List(c *gin.Context) {
	filter := service.HistoryFilter{Action: c.Query("action")}

	actorID, ok := parseUintQuery(c, "actorId")
	if !ok {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid actorId"))
		return
	}
	filter.ActorID = actorID

	if raw := c.Query("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid from date, expected RFC3339"))
			return
		}
		filter.From = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid to date, expected RFC3339"))
			return
		}
		filter.To = &to
	}

	events, err := h.historyService.Query(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "failed to query audit events: "+err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, events))
}

// ListByRequest returns one request's audit narrative oldest first
// @Summary      Audit events for one request
// @Tags         history
// @Security     BearerAuth
// @Produce      json
// @Param        id path int true "Request id"
// @Success      200 {object} response.Response{data=[]model.AuditEvent}
// @Router       /api/history/request/{id} [get]
func (h *HistoryHandler) ListByRequest(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid request id"))
		return
	}

	events, err := h.historyService.EventsForRequest(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "failed to query audit events: "+err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, events))
}
