package tracking

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"parts-and-service/internal/models"
)

// Handler handles the public tracking lookup.
type Handler struct {
	svc ServiceInterface
}

// NewHandler creates a new tracking handler.
func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the tracking endpoint. No auth: anyone holding a
// code may look it up.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/track", h.Track)
}

func (h *Handler) Track(c echo.Context) error {
	code := c.QueryParam("id")
	if code == "" {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Missing tracking code"})
	}

	view, err := h.svc.Track(c.Request().Context(), code)
	if err != nil {
		if err == models.ErrNotFound {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "No order or delivery matches this code"})
		}
		c.Logger().Error("Handler.Track: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to resolve tracking code"})
	}
	return c.JSON(http.StatusOK, view)
}
