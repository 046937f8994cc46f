package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appdelivery "github.com/storefront/backend/internal/application/delivery"
	"github.com/storefront/backend/internal/domain/delivery"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// DeliveryCompanyHandler handles delivery company configuration endpoints
type DeliveryCompanyHandler struct {
	BaseHandler
	companyService *appdelivery.CompanyService
}

// NewDeliveryCompanyHandler creates a new DeliveryCompanyHandler
func NewDeliveryCompanyHandler(companyService *appdelivery.CompanyService) *DeliveryCompanyHandler {
	return &DeliveryCompanyHandler{
		companyService: companyService,
	}
}

// handleDeliveryError converts delivery domain errors to HTTP responses. It
// covers the sentinels shared by the company and dispatch endpoints; anything
// outside that set falls through to the generic domain error handling.
func (h *BaseHandler) handleDeliveryError(c *gin.Context, err error) {
	requestID := getRequestID(c)

	if de, ok := delivery.AsDispatchError(err); ok {
		code := dto.NormalizeErrorCode(string(de.Code))
		resp := dto.NewErrorResponseWithRequestID(code, de.Message, requestID)
		resp.Error.Details = dispatchErrorDetails(de)
		c.JSON(dto.GetHTTPStatus(code), resp)
		return
	}

	var cfgErr *appdelivery.ConfigurationInvalidError
	if errors.As(err, &cfgErr) {
		resp := dto.NewErrorResponseWithRequestID(
			dto.ErrCodeConfigurationInvalid,
			"Company configuration is invalid",
			requestID,
		)
		for _, issue := range cfgErr.Issues {
			resp.Error.Details = append(resp.Error.Details, dto.ValidationDetail{
				Field:   "api_configuration",
				Message: issue,
			})
		}
		c.JSON(dto.GetHTTPStatus(dto.ErrCodeConfigurationInvalid), resp)
		return
	}

	switch {
	case errors.Is(err, appdelivery.ErrDispatchInProgress):
		h.ErrorWithCode(c, dto.ErrCodeDispatchInProgress, "A dispatch for this order is already in progress")
	case errors.Is(err, delivery.ErrOrderNotFound):
		h.ErrorWithCode(c, dto.ErrCodeNotFound, "Order not found")
	case errors.Is(err, delivery.ErrCompanyNotFound):
		h.ErrorWithCode(c, dto.ErrCodeNotFound, "Delivery company not found")
	case errors.Is(err, delivery.ErrCompanyCodeTaken):
		h.ErrorWithCode(c, dto.ErrCodeAlreadyExists, "Delivery company code is already in use")
	case errors.Is(err, delivery.ErrOrderNotAssigned):
		h.ErrorWithCode(c, dto.ErrCodeOrderNotAssigned, "Order has no delivery company assigned")
	case errors.Is(err, delivery.ErrUnsupportedProtocol):
		h.ErrorWithCode(c, dto.ErrCodeUnsupportedProtocol, "Configured protocol format cannot dispatch")
	case errors.Is(err, delivery.ErrCompanyCodeRequired),
		errors.Is(err, delivery.ErrCompanyNameRequired),
		errors.Is(err, delivery.ErrConfigurationInvalid):
		h.ErrorWithCode(c, dto.ErrCodeInvalidInput, err.Error())
	default:
		h.HandleDomainError(c, err)
	}
}

// dispatchErrorDetails flattens a dispatch failure into per-field details.
func dispatchErrorDetails(de *delivery.DispatchError) []dto.ValidationDetail {
	var details []dto.ValidationDetail
	for _, m := range de.Missing {
		details = append(details, dto.ValidationDetail{
			Field:   m.SourceField,
			Message: "No value available for required mapping to " + m.TargetField,
		})
	}
	for _, p := range de.MissingParams {
		details = append(details, dto.ValidationDetail{
			Field:   p,
			Message: "Required provider parameter is missing",
		})
	}
	return details
}

// Create godoc
// @ID           createDeliveryCompany
// @Summary      Create a delivery company
// @Description  Register a new delivery company configuration
// @Tags         delivery-companies
// @Accept       json
// @Produce      json
// @Param        request body appdelivery.CreateCompanyRequest true "Company creation request"
// @Success      201 {object} APIResponse[appdelivery.CompanyResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Router       /delivery/companies [post]
func (h *DeliveryCompanyHandler) Create(c *gin.Context) {
	var req appdelivery.CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	company, err := h.companyService.Create(c.Request.Context(), req)
	if err != nil {
		h.handleDeliveryError(c, err)
		return
	}

	h.Created(c, company)
}

// GetByID godoc
// @ID           getDeliveryCompanyById
// @Summary      Get delivery company by ID
// @Tags         delivery-companies
// @Produce      json
// @Param        id path string true "Company ID" format(uuid)
// @Success      200 {object} APIResponse[appdelivery.CompanyResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Router       /delivery/companies/{id} [get]
func (h *DeliveryCompanyHandler) GetByID(c *gin.Context) {
	companyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid company ID format")
		return
	}

	company, err := h.companyService.GetByID(c.Request.Context(), companyID)
	if err != nil {
		h.handleDeliveryError(c, err)
		return
	}

	h.Success(c, company)
}

// GetByCode godoc
// @ID           getDeliveryCompanyByCode
// @Summary      Get delivery company by code
// @Tags         delivery-companies
// @Produce      json
// @Param        code path string true "Company Code"
// @Success      200 {object} APIResponse[appdelivery.CompanyResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Router       /delivery/companies/code/{code} [get]
func (h *DeliveryCompanyHandler) GetByCode(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		h.BadRequest(c, "Company code is required")
		return
	}

	company, err := h.companyService.GetByCode(c.Request.Context(), code)
	if err != nil {
		h.handleDeliveryError(c, err)
		return
	}

	h.Success(c, company)
}

// ListCompaniesRequest represents query parameters for listing companies
// @Description Query parameters for listing delivery companies
type ListCompaniesRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Search   string `form:"search"`
	IsActive *bool  `form:"is_active"`
}

// List godoc
// @ID           listDeliveryCompanies
// @Summary      List delivery companies
// @Description  List delivery companies with pagination and filtering
// @Tags         delivery-companies
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        search query string false "Search by code or name"
// @Param        is_active query bool false "Filter by active flag"
// @Success      200 {object} APIResponse[[]appdelivery.CompanyResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Router       /delivery/companies [get]
func (h *DeliveryCompanyHandler) List(c *gin.Context) {
	var req ListCompaniesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.companyService.List(c.Request.Context(), appdelivery.CompanyListFilter{
		Page:     req.Page,
		PageSize: req.PageSize,
		Search:   req.Search,
		IsActive: req.IsActive,
	})
	if err != nil {
		h.handleDeliveryError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Update godoc
// @ID           updateDeliveryCompany
// @Summary      Update a delivery company
// @Description  Partially update a delivery company; omitted fields are left unchanged
// @Tags         delivery-companies
// @Accept       json
// @Produce      json
// @Param        id path string true "Company ID" format(uuid)
// @Param        request body appdelivery.UpdateCompanyRequest true "Company update request"
// @Success      200 {object} APIResponse[appdelivery.CompanyResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Router       /delivery/companies/{id} [put]
func (h *DeliveryCompanyHandler) Update(c *gin.Context) {
	companyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid company ID format")
		return
	}

	var req appdelivery.UpdateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	company, err := h.companyService.Update(c.Request.Context(), companyID, req)
	if err != nil {
		h.handleDeliveryError(c, err)
		return
	}

	h.Success(c, company)
}

// SetDefault godoc
// @ID           setDefaultDeliveryCompany
// @Summary      Mark a delivery company as the default
// @Description  Makes this company the fallback for dispatches without an explicit company; clears the flag on every other company
// @Tags         delivery-companies
// @Produce      json
// @Param        id path string true "Company ID" format(uuid)
// @Success      200 {object} APIResponse[appdelivery.CompanyResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Router       /delivery/companies/{id}/default [post]
func (h *DeliveryCompanyHandler) SetDefault(c *gin.Context) {
	companyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid company ID format")
		return
	}

	company, err := h.companyService.SetDefault(c.Request.Context(), companyID)
	if err != nil {
		h.handleDeliveryError(c, err)
		return
	}

	h.Success(c, company)
}

// Delete godoc
// @ID           deleteDeliveryCompany
// @Summary      Delete a delivery company
// @Tags         delivery-companies
// @Param        id path string true "Company ID" format(uuid)
// @Success      204 "No Content"
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Router       /delivery/companies/{id} [delete]
func (h *DeliveryCompanyHandler) Delete(c *gin.Context) {
	companyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid company ID format")
		return
	}

	if err := h.companyService.Delete(c.Request.Context(), companyID); err != nil {
		h.handleDeliveryError(c, err)
		return
	}

	h.NoContent(c)
}

// ValidateConfiguration godoc
// @ID           validateDeliveryCompanyConfiguration
// @Summary      Validate a delivery company configuration
// @Description  Runs the pre-dispatch configuration check and reports issues without dispatching
// @Tags         delivery-companies
// @Produce      json
// @Param        id path string true "Company ID" format(uuid)
// @Success      200 {object} APIResponse[appdelivery.ConfigValidationResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Router       /delivery/companies/{id}/validate [post]
func (h *DeliveryCompanyHandler) ValidateConfiguration(c *gin.Context) {
	companyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid company ID format")
		return
	}

	result, err := h.companyService.ValidateConfiguration(c.Request.Context(), companyID)
	if err != nil {
		h.handleDeliveryError(c, err)
		return
	}

	h.Success(c, result)
}

// RegisterRoutes registers delivery company routes
func (h *DeliveryCompanyHandler) RegisterRoutes(rg *gin.RouterGroup) {
	companies := rg.Group("/delivery/companies")
	{
		companies.POST("", h.Create)
		companies.GET("", h.List)
		companies.GET("/:id", h.GetByID)
		companies.GET("/code/:code", h.GetByCode)
		companies.PUT("/:id", h.Update)
		companies.POST("/:id/default", h.SetDefault)
		companies.DELETE("/:id", h.Delete)
		companies.POST("/:id/validate", h.ValidateConfiguration)
	}
}
