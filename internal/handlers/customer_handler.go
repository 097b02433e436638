package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/BMS-2026/crm-service/internal/services"
	"github.com/BMS-2026/crm-service/internal/utils"
)

type CustomerHandler struct {
	BaseHandler
	service services.CustomerService
	guide   services.GuideService
	imports services.ImportService
}

func NewCustomerHandler(service services.CustomerService, guide services.GuideService, imports services.ImportService, logger utils.Logger) *CustomerHandler {
	return &CustomerHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
		guide:       guide,
		imports:     imports,
	}
}

// ListCustomers returns a filtered, sorted page of the caller's visible book
// @Summary List customers
// @Tags customers
// @Produce json
// @Param search query string false "Free-text search over name, phone and job"
// @Param min_score query number false "Minimum propensity score"
// @Param max_score query number false "Maximum propensity score"
// @Param job query string false "Job filter"
// @Param marital query string false "Marital status filter"
// @Param education query string false "Education filter"
// @Param housing query bool false "Housing loan filter"
// @Param sort_by query string false "score or age"
// @Param sort_order query string false "asc or desc"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} services.CustomerListResponse
// @Failure 401 {object} ErrorResponse
// @Router /customers [get]
func (h *CustomerHandler) ListCustomers(c *gin.Context) {
	actor := h.currentUser(c)
	if actor == nil {
		return
	}

	req := &services.ListCustomersRequest{
		Search:    c.Query("search"),
		Job:       c.Query("job"),
		Marital:   c.Query("marital"),
		Education: c.Query("education"),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	req.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	req.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))

	if v := c.Query("min_score"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			req.MinScore = &f
		}
	}
	if v := c.Query("max_score"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			req.MaxScore = &f
		}
	}
	if v := c.Query("housing"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			req.Housing = &b
		}
	}

	resp, err := h.service.List(c.Request.Context(), req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetCustomer retrieves one customer record
// @Summary Get customer
// @Tags customers
// @Produce json
// @Param id path uint true "Customer ID"
// @Success 200 {object} services.CustomerResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /customers/{id} [get]
func (h *CustomerHandler) GetCustomer(c *gin.Context) {
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

// CreateCustomer creates a customer record
// @Summary Create customer
// @Tags customers
// @Accept json
// @Produce json
// @Param customer body services.CreateCustomerRequest true "Customer data"
// @Success 201 {object} services.CustomerResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /customers [post]
func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	var req services.CreateCustomerRequest
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

// UpdateCustomer updates a customer record
// @Summary Update customer
// @Tags customers
// @Accept json
// @Produce json
// @Param id path uint true "Customer ID"
// @Param customer body services.UpdateCustomerRequest true "Changed fields"
// @Success 200 {object} services.CustomerResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /customers/{id} [put]
func (h *CustomerHandler) UpdateCustomer(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateCustomerRequest
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

// DeleteCustomer removes a customer record and its call history
// @Summary Delete customer
// @Tags customers
// @Param id path uint true "Customer ID"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /customers/{id} [delete]
func (h *CustomerHandler) DeleteCustomer(c *gin.Context) {
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

// ===== ASSIGNMENT ENDPOINTS =====

// AssignCustomer assigns a customer to a sales representative
// @Summary Assign customer
// @Tags customers
// @Accept json
// @Produce json
// @Param id path uint true "Customer ID"
// @Param assignment body services.AssignRequest true "Target sales rep"
// @Success 200 {object} services.CustomerResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /customers/{id}/assign [post]
func (h *CustomerHandler) AssignCustomer(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.AssignRequest
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

	resp, err := h.service.Assign(c.Request.Context(), id, &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// UnassignCustomer returns a customer to the unassigned pool
// @Summary Unassign customer
// @Tags customers
// @Produce json
// @Param id path uint true "Customer ID"
// @Success 200 {object} services.CustomerResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /customers/{id}/unassign [post]
func (h *CustomerHandler) UnassignCustomer(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	actor := h.currentUser(c)
	if actor == nil {
		return
	}

	resp, err := h.service.Unassign(c.Request.Context(), id, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// BulkAssignCustomers assigns a set of customers to one sales representative
// @Summary Bulk assign customers
// @Tags customers
// @Accept json
// @Produce json
// @Param assignment body services.BulkAssignRequest true "Customer ids and target rep"
// @Success 200 {object} services.BulkResult
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /customers/bulk-assign [post]
func (h *CustomerHandler) BulkAssignCustomers(c *gin.Context) {
	var req services.BulkAssignRequest
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

	resp, err := h.service.BulkAssign(c.Request.Context(), &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// BulkUnassignCustomers returns a set of customers to the unassigned pool
// @Summary Bulk unassign customers
// @Tags customers
// @Accept json
// @Produce json
// @Param request body services.BulkUnassignRequest true "Customer ids"
// @Success 200 {object} services.BulkResult
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /customers/bulk-unassign [post]
func (h *CustomerHandler) BulkUnassignCustomers(c *gin.Context) {
	var req services.BulkUnassignRequest
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

	resp, err := h.service.BulkUnassign(c.Request.Context(), &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ===== GUIDE AND IMPORT =====

// GetConversationGuide returns a call preparation guide for one customer
// @Summary Conversation guide
// @Tags customers
// @Produce json
// @Param id path uint true "Customer ID"
// @Success 200 {object} services.GuideResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /customers/{id}/guide [get]
func (h *CustomerHandler) GetConversationGuide(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	actor := h.currentUser(c)
	if actor == nil {
		return
	}

	resp, err := h.guide.Generate(c.Request.Context(), id, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ImportCustomers loads a scoring-pipeline workbook
// @Summary Import customers from xlsx
// @Tags customers
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "xlsx workbook"
// @Success 200 {object} services.ImportResult
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /customers/import [post]
func (h *CustomerHandler) ImportCustomers(c *gin.Context) {
	actor := h.currentUser(c)
	if actor == nil {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Missing file upload",
			Details: err.Error(),
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Failed to read upload",
			Details: err.Error(),
		})
		return
	}
	defer file.Close()

	h.LogRequest(c, "Importing customers", "filename", fileHeader.Filename, "size", fileHeader.Size)

	resp, err := h.imports.ImportXLSX(c.Request.Context(), file, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
