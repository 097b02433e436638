package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BMS-2026/crm-service/internal/models"
	"github.com/BMS-2026/crm-service/internal/repositories"
	"github.com/BMS-2026/crm-service/internal/services"
	"github.com/BMS-2026/crm-service/internal/utils"
)

type CallLogHandler struct {
	BaseHandler
	service services.CallLogService
}

func NewCallLogHandler(service services.CallLogService, logger utils.Logger) *CallLogHandler {
	return &CallLogHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// CreateCallLog records a call outcome
// @Summary Record call
// @Tags call-logs
// @Accept json
// @Produce json
// @Param call body services.CreateCallLogRequest true "Call outcome"
// @Success 201 {object} services.CallLogResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /call-logs [post]
func (h *CallLogHandler) CreateCallLog(c *gin.Context) {
	var req services.CreateCallLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	actor := h.currentUser(c)
	if actor == nil {
		return
	}

	resp, err := h.service.Create(c.Request.Context(), &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetCallLog retrieves one call record
// @Summary Get call record
// @Tags call-logs
// @Produce json
// @Param id path uint true "Call log ID"
// @Success 200 {object} services.CallLogResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /call-logs/{id} [get]
func (h *CallLogHandler) GetCallLog(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	actor := h.currentUser(c)
	if actor == nil {
		return
	}

	resp, err := h.service.GetByID(c.Request.Context(), id, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// UpdateCallLog updates the status or notes of a call record
// @Summary Update call record
// @Tags call-logs
// @Accept json
// @Produce json
// @Param id path uint true "Call log ID"
// @Param call body services.UpdateCallLogRequest true "Changed fields"
// @Success 200 {object} services.CallLogResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /call-logs/{id} [put]
func (h *CallLogHandler) UpdateCallLog(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateCallLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	actor := h.currentUser(c)
	if actor == nil {
		return
	}

	resp, err := h.service.Update(c.Request.Context(), id, &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// DeleteCallLog removes a call record
// @Summary Delete call record
// @Tags call-logs
// @Param id path uint true "Call log ID"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /call-logs/{id} [delete]
func (h *CallLogHandler) DeleteCallLog(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	actor := h.currentUser(c)
	if actor == nil {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id, actor); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListCallLogs lists call records within the caller's scope
// @Summary List call records
// @Tags call-logs
// @Produce json
// @Param user_id query uint false "Filter by sales rep (managers only)"
// @Param customer_id query uint false "Filter by customer"
// @Param status query string false "Filter by call status"
// @Param date_from query string false "RFC3339 lower bound on call date"
// @Param date_to query string false "RFC3339 upper bound on call date"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} services.CallLogListResponse
// @Failure 403 {object} ErrorResponse
// @Router /call-logs [get]
func (h *CallLogHandler) ListCallLogs(c *gin.Context) {
	actor := h.currentUser(c)
	if actor == nil {
		return
	}

	filters := h.parseFilters(c)

	resp, err := h.service.List(c.Request.Context(), filters, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetCustomerCallLogs lists the call history of one customer
// @Summary Customer call history
// @Tags call-logs
// @Produce json
// @Param id path uint true "Customer ID"
// @Success 200 {object} services.CallLogListResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /customers/{id}/call-logs [get]
func (h *CallLogHandler) GetCustomerCallLogs(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	actor := h.currentUser(c)
	if actor == nil {
		return
	}

	resp, err := h.service.GetByCustomer(c.Request.Context(), id, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetCallStats aggregates call outcomes within the caller's scope
// @Summary Call statistics
// @Tags call-logs
// @Produce json
// @Param user_id query uint false "Filter by sales rep (managers only)"
// @Param date_from query string false "RFC3339 lower bound on call date"
// @Param date_to query string false "RFC3339 upper bound on call date"
// @Success 200 {object} services.CallStatsResponse
// @Failure 403 {object} ErrorResponse
// @Router /call-logs/stats [get]
func (h *CallLogHandler) GetCallStats(c *gin.Context) {
	actor := h.currentUser(c)
	if actor == nil {
		return
	}

	filters := h.parseFilters(c)

	resp, err := h.service.Stats(c.Request.Context(), filters, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *CallLogHandler) parseFilters(c *gin.Context) repositories.CallLogFilters {
	filters := repositories.CallLogFilters{}

	if v := c.Query("user_id"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 32); err == nil {
			uid := uint(id)
			filters.UserID = &uid
		}
	}
	if v := c.Query("customer_id"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 32); err == nil {
			cid := uint(id)
			filters.CustomerID = &cid
		}
	}
	if v := c.Query("status"); v != "" {
		status := models.CallStatus(v)
		filters.Status = &status
	}
	if v := c.Query("date_from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filters.DateFrom = &t
		}
	}
	if v := c.Query("date_to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filters.DateTo = &t
		}
	}
	filters.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	filters.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))

	return filters
}
