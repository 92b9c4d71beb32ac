package catalog

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"parts-and-service/internal/models"
)

// Handler handles HTTP requests for the product catalog.
type Handler struct {
	svc      ServiceInterface
	validate *validator.Validate
}

// NewHandler creates a new catalog handler.
func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{
		svc:      svc,
		validate: validator.New(),
	}
}

// RegisterPublicRoutes mounts the buyer-facing catalog.
func (h *Handler) RegisterPublicRoutes(g *echo.Group) {
	g.GET("/products", h.ListProducts)
	g.GET("/products/:productId", h.GetProduct)
}

// RegisterSupplierRoutes mounts the supplier CRUD surface.
func (h *Handler) RegisterSupplierRoutes(g *echo.Group) {
	g.GET("/products", h.ListMyProducts)
	g.POST("/products", h.CreateProduct)
	g.PATCH("/products/:productId", h.UpdateProduct)
	g.DELETE("/products/:productId", h.DeleteProduct)
}

func (h *Handler) ListProducts(c echo.Context) error {
	filter := models.ProductFilter{
		Category: c.QueryParam("category"),
		Search:   c.QueryParam("q"),
		Page:     1,
		Limit:    20,
	}
	if pageStr := c.QueryParam("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			filter.Page = p
		}
	}
	if limitStr := c.QueryParam("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			filter.Limit = l
		}
	}

	products, total, err := h.svc.ListProducts(c.Request().Context(), filter)
	if err != nil {
		c.Logger().Error("Handler.ListProducts: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to list products"})
	}
	return c.JSON(http.StatusOK, models.ListResponse{Items: products, Total: total})
}

func (h *Handler) GetProduct(c echo.Context) error {
	product, err := h.svc.GetProduct(c.Request().Context(), c.Param("productId"))
	if err != nil {
		if err == models.ErrNotFound {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Product not found"})
		}
		c.Logger().Error("Handler.GetProduct: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to retrieve product"})
	}
	return c.JSON(http.StatusOK, product)
}

func (h *Handler) ListMyProducts(c echo.Context) error {
	userID := c.Get("userID").(string)

	page, limit := 1, 20
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

	products, total, err := h.svc.ListMyProducts(c.Request().Context(), userID, page, limit)
	if err != nil {
		if err == models.ErrForbidden {
			return c.JSON(http.StatusForbidden, models.ErrorResponse{Message: "No supplier profile for this account"})
		}
		c.Logger().Error("Handler.ListMyProducts: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to list products"})
	}
	return c.JSON(http.StatusOK, models.ListResponse{Items: products, Total: total})
}

func (h *Handler) CreateProduct(c echo.Context) error {
	userID := c.Get("userID").(string)

	var req models.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	product, err := h.svc.CreateProduct(c.Request().Context(), userID, req)
	if err != nil {
		if err == models.ErrForbidden {
			return c.JSON(http.StatusForbidden, models.ErrorResponse{Message: "No supplier profile for this account"})
		}
		c.Logger().Error("Handler.CreateProduct: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to create product"})
	}
	return c.JSON(http.StatusCreated, product)
}

func (h *Handler) UpdateProduct(c echo.Context) error {
	userID := c.Get("userID").(string)

	var req models.UpdateProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	product, err := h.svc.UpdateProduct(c.Request().Context(), userID, c.Param("productId"), req)
	if err != nil {
		switch err {
		case models.ErrNotFound:
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Product not found"})
		case models.ErrForbidden:
			return c.JSON(http.StatusForbidden, models.ErrorResponse{Message: "No supplier profile for this account"})
		}
		c.Logger().Error("Handler.UpdateProduct: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to update product"})
	}
	return c.JSON(http.StatusOK, product)
}

func (h *Handler) DeleteProduct(c echo.Context) error {
	userID := c.Get("userID").(string)

	if err := h.svc.DeleteProduct(c.Request().Context(), userID, c.Param("productId")); err != nil {
		switch err {
		case models.ErrNotFound:
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Product not found"})
		case models.ErrForbidden:
			return c.JSON(http.StatusForbidden, models.ErrorResponse{Message: "No supplier profile for this account"})
		}
		c.Logger().Error("Handler.DeleteProduct: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to delete product"})
	}
	return c.NoContent(http.StatusNoContent)
}
