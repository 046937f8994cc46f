package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appdelivery "github.com/storefront/backend/internal/application/delivery"
)

// DispatchHandler handles order dispatch and delivery status endpoints
type DispatchHandler struct {
	BaseHandler
	dispatchService *appdelivery.DispatchService
}

// NewDispatchHandler creates a new DispatchHandler
func NewDispatchHandler(dispatchService *appdelivery.DispatchService) *DispatchHandler {
	return &DispatchHandler{
		dispatchService: dispatchService,
	}
}

// Dispatch godoc
// @ID           dispatchOrder
// @Summary      Dispatch an order to a delivery company
// @Description  Sends the order to the named company, or to the default company when no company is given
// @Tags         dispatch
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body appdelivery.DispatchRequest true "Dispatch request"
// @Success      200 {object} APIResponse[appdelivery.DispatchResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      502 {object} dto.ErrorResponse
// @Router       /delivery/orders/{id}/dispatch [post]
func (h *DispatchHandler) Dispatch(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	// An empty body means "use the default company".
	var req appdelivery.DispatchRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, err.Error())
			return
		}
	}

	result, err := h.dispatchService.Dispatch(c.Request.Context(), orderID, req)
	if err != nil {
		h.handleDeliveryError(c, err)
		return
	}

	h.Success(c, result)
}

// AutoDispatch godoc
// @ID           autoDispatchOrder
// @Summary      Auto-dispatch an order
// @Description  Picks the auto-dispatch candidate company eligible for the order's current status and dispatches to it
// @Tags         dispatch
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} APIResponse[appdelivery.DispatchResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      502 {object} dto.ErrorResponse
// @Router       /delivery/orders/{id}/auto-dispatch [post]
func (h *DispatchHandler) AutoDispatch(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	result, err := h.dispatchService.AutoDispatch(c.Request.Context(), orderID)
	if err != nil {
		h.handleDeliveryError(c, err)
		return
	}

	h.Success(c, result)
}

// BatchDispatch godoc
// @ID           batchDispatchOrders
// @Summary      Dispatch several orders to one company
// @Description  Dispatches the listed orders sequentially; per-order failures are reported in the response rather than failing the batch, unless stop_on_error is set
// @Tags         dispatch
// @Accept       json
// @Produce      json
// @Param        request body appdelivery.BatchDispatchRequest true "Batch dispatch request"
// @Success      200 {object} APIResponse[appdelivery.BatchDispatchResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Router       /delivery/dispatch/batch [post]
func (h *DispatchHandler) BatchDispatch(c *gin.Context) {
	var req appdelivery.BatchDispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if len(req.OrderIDs) == 0 {
		h.BadRequest(c, "order_ids must not be empty")
		return
	}

	result, err := h.dispatchService.BatchDispatch(c.Request.Context(), req)
	if err != nil {
		h.handleDeliveryError(c, err)
		return
	}

	h.Success(c, result)
}

// UpdateProviderStatus godoc
// @ID           updateProviderStatus
// @Summary      Apply a provider status to an order
// @Description  Maps the company-reported status through the company's status mappings and updates the order's delivery status
// @Tags         dispatch
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body appdelivery.StatusUpdateRequest true "Provider status"
// @Success      200 {object} APIResponse[appdelivery.StatusUpdateResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Router       /delivery/orders/{id}/status [post]
func (h *DispatchHandler) UpdateProviderStatus(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req appdelivery.StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if req.Status == "" {
		h.BadRequest(c, "status is required")
		return
	}

	result, err := h.dispatchService.UpdateProviderStatus(c.Request.Context(), orderID, req.Status)
	if err != nil {
		h.handleDeliveryError(c, err)
		return
	}

	h.Success(c, result)
}

// GetOrderDelivery godoc
// @ID           getOrderDelivery
// @Summary      Get the delivery state of an order
// @Tags         dispatch
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} APIResponse[appdelivery.OrderDeliveryResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Router       /delivery/orders/{id} [get]
func (h *DispatchHandler) GetOrderDelivery(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	result, err := h.dispatchService.GetOrderDelivery(c.Request.Context(), orderID)
	if err != nil {
		h.handleDeliveryError(c, err)
		return
	}

	h.Success(c, result)
}

// RegisterRoutes registers dispatch routes
func (h *DispatchHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/delivery/dispatch/batch", h.BatchDispatch)

	orders := rg.Group("/delivery/orders")
	{
		orders.GET("/:id", h.GetOrderDelivery)
		orders.POST("/:id/dispatch", h.Dispatch)
		orders.POST("/:id/auto-dispatch", h.AutoDispatch)
		orders.POST("/:id/status", h.UpdateProviderStatus)
	}
}
