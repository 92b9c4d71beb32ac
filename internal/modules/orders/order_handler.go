package orders

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"parts-and-service/internal/models"
)

// Handler handles HTTP requests for orders.
type Handler struct {
	svc      ServiceInterface
	validate *validator.Validate
}

// NewHandler creates a new order handler.
func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{
		svc:      svc,
		validate: validator.New(),
	}
}

// RegisterRoutes mounts the buyer order endpoints.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/orders", h.Checkout)
	g.GET("/orders", h.ListMyOrders)
	g.GET("/orders/:orderId", h.GetOrderDetails)
	g.DELETE("/orders/:orderId", h.CancelOrder)
	g.POST("/orders/:orderId/pay", h.ConfirmAndPay)
}

// RegisterAdminRoutes mounts the admin order endpoints.
func (h *Handler) RegisterAdminRoutes(g *echo.Group) {
	g.GET("/orders", h.ListAllOrders)
	g.PATCH("/orders/:orderId", h.AdminUpdateOrder)
}

func (h *Handler) Checkout(c echo.Context) error {
	userID := c.Get("userID").(string)

	var req models.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	order, err := h.svc.Checkout(c.Request().Context(), userID, req)
	if err != nil {
		switch err {
		case models.ErrNotFound:
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "One or more products not found"})
		case models.ErrInsufficientStock:
			return c.JSON(http.StatusConflict, models.ErrorResponse{Message: "Not enough stock for one or more items"})
		}
		c.Logger().Error("Handler.Checkout: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to create order"})
	}
	return c.JSON(http.StatusCreated, order)
}

func (h *Handler) ListMyOrders(c echo.Context) error {
	userID := c.Get("userID").(string)

	page, limit := pagination(c)
	orders, total, err := h.svc.ListUserOrders(c.Request().Context(), userID, page, limit)
	if err != nil {
		c.Logger().Error("Handler.ListMyOrders: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to retrieve orders"})
	}
	return c.JSON(http.StatusOK, models.ListResponse{Items: orders, Total: total})
}

func (h *Handler) GetOrderDetails(c echo.Context) error {
	userID := c.Get("userID").(string)
	role := c.Get("userRole").(string)

	order, err := h.svc.GetOrderDetails(c.Request().Context(), c.Param("orderId"), userID, role)
	if err != nil {
		if err == models.ErrNotFound {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Order not found"})
		}
		c.Logger().Error("Handler.GetOrderDetails: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to retrieve order details"})
	}
	return c.JSON(http.StatusOK, order)
}

func (h *Handler) CancelOrder(c echo.Context) error {
	userID := c.Get("userID").(string)

	if err := h.svc.CancelOrder(c.Request().Context(), c.Param("orderId"), userID); err != nil {
		switch err {
		case models.ErrNotFound:
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Order not found"})
		case models.ErrOrderCannotBeCancelled:
			return c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{Message: "Order can no longer be cancelled"})
		case models.ErrConflict:
			return c.JSON(http.StatusConflict, models.ErrorResponse{Message: "Order changed, retry"})
		}
		c.Logger().Error("Handler.CancelOrder: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to cancel order"})
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ConfirmAndPay(c echo.Context) error {
	userID := c.Get("userID").(string)

	var req models.PaymentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	order, err := h.svc.ConfirmAndPay(c.Request().Context(), userID, c.Param("orderId"), req)
	if err != nil {
		switch err {
		case models.ErrNotFound:
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Order not found"})
		case models.ErrOrderCannotBePaid:
			return c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{Message: "Order is not awaiting payment"})
		}
		c.Logger().Error("Handler.ConfirmAndPay: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to process payment"})
	}
	return c.JSON(http.StatusOK, order)
}

func (h *Handler) ListAllOrders(c echo.Context) error {
	// Role check is done in middleware.
	page, limit := pagination(c)
	orders, total, err := h.svc.ListAllOrders(c.Request().Context(), page, limit)
	if err != nil {
		c.Logger().Error("Handler.ListAllOrders: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to list all orders"})
	}
	return c.JSON(http.StatusOK, models.ListResponse{Items: orders, Total: total})
}

func (h *Handler) AdminUpdateOrder(c echo.Context) error {
	adminID := c.Get("userID").(string)

	var req models.AdminUpdateOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	order, err := h.svc.AdminUpdateOrder(c.Request().Context(), adminID, c.Param("orderId"), req)
	if err != nil {
		switch err {
		case models.ErrNotFound:
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Order not found"})
		case models.ErrInvalidTransition:
			return c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{Message: "Status transition not allowed"})
		case models.ErrConflict:
			return c.JSON(http.StatusConflict, models.ErrorResponse{Message: "Order changed, retry"})
		}
		c.Logger().Error("Handler.AdminUpdateOrder: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to update order"})
	}
	return c.JSON(http.StatusOK, order)
}

func pagination(c echo.Context) (int, int) {
	page, limit := 1, 10
	if pageStr := c.QueryParam("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}
	if limitStr := c.QueryParam("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}
	return page, limit
}
