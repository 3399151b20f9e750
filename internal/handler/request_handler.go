package handler

import (
	"net/http"
	"strconv"

	"aprobaciones/internal/model"
	"aprobaciones/internal/repository"
	"aprobaciones/internal/service"
	"aprobaciones/pkg/response"

	"github.com/gin-gonic/gin"
)

// RequestHandler exposes the workflow engine over HTTP.
type RequestHandler struct {
	requestService service.RequestService
}

// NewRequestHandler builds a RequestHandler.
func NewRequestHandler(requestService service.RequestService) *RequestHandler {
	return &RequestHandler{requestService: requestService}
}

// RegisterRoutes mounts the request endpoints. The stats route must precede
// the identifier route registration conceptually, but gin resolves static
// segments before params so both coexist under /api/requests.
func (h *RequestHandler) RegisterRoutes(router *gin.RouterGroup) {
	requests := router.Group("/api/requests")
	{
		requests.POST("", h.Create)
		requests.GET("", h.List)
		requests.GET("/stats", h.Stats)
		requests.GET("/:identifier", h.GetByIdentifier)
		requests.POST("/:identifier/approve", h.Approve)
		requests.POST("/:identifier/reject", h.Reject)
	}
}

// parseUintQuery reads an optional numeric query parameter. The second
// return is false when the parameter is present but not a number.
func parseUintQuery(c *gin.Context, name string) (*uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil, false
	}
	v := uint(n)
	return &v, true
}

func filterFromQuery(c *gin.Context) (repository.RequestFilter, bool) {
	applicantID, ok := parseUintQuery(c, "applicantId")
	if !ok {
		return repository.RequestFilter{}, false
	}
	responsibleID, ok := parseUintQuery(c, "responsibleId")
	if !ok {
		return repository.RequestFilter{}, false
	}
	return repository.RequestFilter{ApplicantID: applicantID, ResponsibleID: responsibleID}, true
}

// Create submits a new request
// @Summary      Create request
// @Description  Creates a request in PENDIENTE state with its initial history entry
// @Tags         requests
// @Accept       json
// @Produce      json
// @Param        request body service.CreateRequestInput true "Request payload"
// @Success      201 {object} response.Response{data=model.Request}
// @Failure      400 {object} response.Response "Malformed body"
// @Failure      500 {object} response.Response "Business rule violation"
// @Router       /api/requests [post]
func (h *RequestHandler) Create(c *gin.Context) {
	var in service.CreateRequestInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	req, err := h.requestService.CreateRequest(c.Request.Context(), in)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, req))
}

// List returns requests filtered by applicant and/or responsible
// @Summary      List requests
// @Tags         requests
// @Produce      json
// @Param        applicantId   query int false "Filter by applicant"
// @Param        responsibleId query int false "Filter by responsible"
// @Success      200 {object} response.Response{data=[]model.Request}
// @Router       /api/requests [get]
func (h *RequestHandler) List(c *gin.Context) {
	filter, ok := filterFromQuery(c)
	if !ok {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid filter parameters"))
		return
	}

	requests, err := h.requestService.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, requests))
}

// Stats returns the four lifecycle counters
// @Summary      Request statistics
// @Tags         requests
// @Produce      json
// @Param        applicantId   query int false "Filter by applicant"
// @Param        responsibleId query int false "Filter by responsible"
// @Success      200 {object} response.Response{data=repository.RequestStats}
// @Router       /api/requests/stats [get]
func (h *RequestHandler) Stats(c *gin.Context) {
	filter, ok := filterFromQuery(c)
	if !ok {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid filter parameters"))
		return
	}

	stats, err := h.requestService.Stats(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, stats))
}

// GetByIdentifier resolves a request by numeric id or public REQ-... id
// @Summary      Get request detail
// @Tags         requests
// @Produce      json
// @Param        identifier path string true "Numeric id or public id"
// @Success      200 {object} response.Response{data=model.Request}
// @Failure      404 {object} response.Response
// @Router       /api/requests/{identifier} [get]
func (h *RequestHandler) GetByIdentifier(c *gin.Context) {
	req, err := h.requestService.FindByIdentifier(c.Request.Context(), c.Param("identifier"))
	if err != nil {
		if service.IsNotFound(err) {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "request not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, req))
}

// decide parses the id and decision payload and runs the transition.
func (h *RequestHandler) decide(c *gin.Context, targetStatus string) {
	id, err := strconv.ParseUint(c.Param("identifier"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid request id"))
		return
	}

	var in service.DecisionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	req, err := h.requestService.ChangeStatus(c.Request.Context(), uint(id), in.ActorID, targetStatus, in.Comment)
	if err != nil {
		// Guard violations surface as business-readable messages; the
		// error kinds stay distinct internally.
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, req))
}

// Approve moves a PENDIENTE request to APROBADA
// @Summary      Approve request
// @Tags         requests
// @Accept       json
// @Produce      json
// @Param        identifier path int true "Request id"
// @Param        decision body service.DecisionInput true "Actor and optional comment"
// @Success      200 {object} response.Response{data=model.Request}
// @Failure      400 {object} response.Response
// @Failure      500 {object} response.Response "Guard violation"
// @Router       /api/requests/{identifier}/approve [post]
func (h *RequestHandler) Approve(c *gin.Context) {
	h.decide(c, model.StatusAprobada)
}

// Reject moves a PENDIENTE request to RECHAZADA
// @Summary      Reject request
// @Tags         requests
// @Accept       json
// @Produce      json
// @Param        identifier path int true "Request id"
// @Param        decision body service.DecisionInput true "Actor and optional comment"
// @Success      200 {object} response.Response{data=model.Request}
// @Failure      400 {object} response.Response
// @Failure      500 {object} response.Response "Guard violation"
// @Router       /api/requests/{identifier}/reject [post]
func (h *RequestHandler) Reject(c *gin.Context) {
	h.decide(c, model.StatusRechazada)
}
