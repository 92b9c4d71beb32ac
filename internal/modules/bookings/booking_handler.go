package bookings

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"parts-and-service/internal/models"
)

// Handler handles HTTP requests for mechanic and logistics bookings. The
// two kinds share one route tree parameterized by :kind.
type Handler struct {
	svc      ServiceInterface
	validate *validator.Validate
}

// NewHandler creates a new booking handler.
func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{
		svc:      svc,
		validate: validator.New(),
	}
}

// RegisterPublicRoutes mounts the unauthenticated quote endpoint.
func (h *Handler) RegisterPublicRoutes(g *echo.Group) {
	g.POST("/bookings/logistics/quote", h.Quote)
}

// RegisterRoutes mounts the authenticated booking endpoints.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/bookings/:kind", h.CreateBooking)
	g.GET("/bookings/:kind", h.ListBookings)
	g.GET("/bookings/:kind/:bookingId", h.GetBooking)
	g.POST("/bookings/:kind/:bookingId/accept", h.AcceptBooking)
	g.PATCH("/bookings/:kind/:bookingId", h.UpdateStatus)
	g.PATCH("/bookings/:kind/:bookingId/location", h.UpdateLocation)
	g.POST("/bookings/:kind/:bookingId/feedback", h.SubmitFeedback)
}

// RegisterAdminRoutes mounts the admin booking endpoints.
func (h *Handler) RegisterAdminRoutes(g *echo.Group) {
	g.GET("/bookings", h.ListAllBookings)
	g.PATCH("/bookings/:bookingId", h.AdminUpdateBooking)
}

// bookingKind maps the :kind path segment to a booking kind.
func bookingKind(c echo.Context) (string, bool) {
	switch c.Param("kind") {
	case "mechanic":
		return models.KindMechanic, true
	case "logistics":
		return models.KindLogistics, true
	}
	return "", false
}

func (h *Handler) Quote(c echo.Context) error {
	var req models.QuoteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	quote, err := h.svc.Quote(req)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Failed to calculate quote"})
	}
	return c.JSON(http.StatusOK, quote)
}

func (h *Handler) CreateBooking(c echo.Context) error {
	userID := c.Get("userID").(string)

	kind, ok := bookingKind(c)
	if !ok {
		return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Unknown booking kind"})
	}

	var booking *models.Booking
	var err error
	if kind == models.KindMechanic {
		var req models.CreateMechanicBookingRequest
		if berr := c.Bind(&req); berr != nil {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
		}
		if verr := h.validate.Struct(req); verr != nil {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + verr.Error()})
		}
		booking, err = h.svc.CreateMechanicBooking(c.Request().Context(), userID, req)
	} else {
		var req models.CreateLogisticsBookingRequest
		if berr := c.Bind(&req); berr != nil {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
		}
		if verr := h.validate.Struct(req); verr != nil {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + verr.Error()})
		}
		booking, err = h.svc.CreateLogisticsBooking(c.Request().Context(), userID, req)
	}
	if err != nil {
		c.Logger().Error("Handler.CreateBooking: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to create booking"})
	}
	return c.JSON(http.StatusCreated, booking)
}

// ListBookings serves both the buyer view and, with ?view=provider, the
// provider work queue.
func (h *Handler) ListBookings(c echo.Context) error {
	userID := c.Get("userID").(string)
	role := c.Get("userRole").(string)

	kind, ok := bookingKind(c)
	if !ok {
		return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Unknown booking kind"})
	}

	if c.QueryParam("view") == "provider" {
		bookings, err := h.svc.ListProviderBookings(c.Request().Context(), kind, userID, role)
		if err != nil {
			if err == models.ErrForbidden {
				return c.JSON(http.StatusForbidden, models.ErrorResponse{Message: "Not a provider for this booking kind"})
			}
			c.Logger().Error("Handler.ListBookings: ", err)
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to list bookings"})
		}
		return c.JSON(http.StatusOK, models.ListResponse{Items: bookings, Total: len(bookings)})
	}

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

	bookings, total, err := h.svc.ListMyBookings(c.Request().Context(), kind, userID, page, limit)
	if err != nil {
		c.Logger().Error("Handler.ListBookings: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to list bookings"})
	}
	return c.JSON(http.StatusOK, models.ListResponse{Items: bookings, Total: total})
}

func (h *Handler) GetBooking(c echo.Context) error {
	userID := c.Get("userID").(string)
	role := c.Get("userRole").(string)

	booking, err := h.svc.GetBooking(c.Request().Context(), c.Param("bookingId"), userID, role)
	if err != nil {
		if err == models.ErrNotFound {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Booking not found"})
		}
		c.Logger().Error("Handler.GetBooking: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to retrieve booking"})
	}
	return c.JSON(http.StatusOK, booking)
}

func (h *Handler) AcceptBooking(c echo.Context) error {
	userID := c.Get("userID").(string)
	role := c.Get("userRole").(string)

	kind, ok := bookingKind(c)
	if !ok {
		return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Unknown booking kind"})
	}

	booking, err := h.svc.AcceptBooking(c.Request().Context(), kind, c.Param("bookingId"), userID, role)
	if err != nil {
		switch err {
		case models.ErrNotFound:
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Booking not found"})
		case models.ErrForbidden:
			return c.JSON(http.StatusForbidden, models.ErrorResponse{Message: "Not a provider for this booking kind"})
		case models.ErrBookingAlreadyClaimed:
			return c.JSON(http.StatusConflict, models.ErrorResponse{Message: "Booking already claimed"})
		case models.ErrInvalidTransition:
			return c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{Message: "Booking can no longer be accepted"})
		}
		c.Logger().Error("Handler.AcceptBooking: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to accept booking"})
	}
	return c.JSON(http.StatusOK, booking)
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	userID := c.Get("userID").(string)
	role := c.Get("userRole").(string)

	kind, ok := bookingKind(c)
	if !ok {
		return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Unknown booking kind"})
	}

	var req models.UpdateBookingStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	booking, err := h.svc.UpdateStatus(c.Request().Context(), kind, c.Param("bookingId"), userID, role, req.Status)
	if err != nil {
		return bookingWriteError(c, err, "Handler.UpdateStatus")
	}
	return c.JSON(http.StatusOK, booking)
}

func (h *Handler) UpdateLocation(c echo.Context) error {
	userID := c.Get("userID").(string)

	var req models.UpdateLocationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	if err := h.svc.UpdateLocation(c.Request().Context(), c.Param("bookingId"), userID, req); err != nil {
		return bookingWriteError(c, err, "Handler.UpdateLocation")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) SubmitFeedback(c echo.Context) error {
	userID := c.Get("userID").(string)

	var req models.FeedbackRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	if err := h.svc.SubmitFeedback(c.Request().Context(), c.Param("bookingId"), userID, req); err != nil {
		switch err {
		case models.ErrNotFound:
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Booking not found"})
		case models.ErrCannotSubmitFeedback:
			return c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{Message: "Feedback is only allowed on completed bookings"})
		case models.ErrFeedbackAlreadySubmitted:
			return c.JSON(http.StatusConflict, models.ErrorResponse{Message: "Feedback already submitted"})
		}
		c.Logger().Error("Handler.SubmitFeedback: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to submit feedback"})
	}
	return c.NoContent(http.StatusAccepted)
}

func (h *Handler) ListAllBookings(c echo.Context) error {
	kind := ""
	switch c.QueryParam("kind") {
	case "mechanic":
		kind = models.KindMechanic
	case "logistics":
		kind = models.KindLogistics
	}

	page, limit := 1, 50
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

	bookings, total, err := h.svc.ListAllBookings(c.Request().Context(), kind, page, limit)
	if err != nil {
		c.Logger().Error("Handler.ListAllBookings: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to list bookings"})
	}
	return c.JSON(http.StatusOK, models.ListResponse{Items: bookings, Total: total})
}

func (h *Handler) AdminUpdateBooking(c echo.Context) error {
	adminID := c.Get("userID").(string)

	var req models.UpdateBookingStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	booking, err := h.svc.AdminUpdateBooking(c.Request().Context(), adminID, c.Param("bookingId"), req.Status)
	if err != nil {
		return bookingWriteError(c, err, "Handler.AdminUpdateBooking")
	}
	return c.JSON(http.StatusOK, booking)
}

func bookingWriteError(c echo.Context, err error, op string) error {
	switch err {
	case models.ErrNotFound:
		return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Booking not found"})
	case models.ErrForbidden:
		return c.JSON(http.StatusForbidden, models.ErrorResponse{Message: "Access denied"})
	case models.ErrInvalidTransition:
		return c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{Message: "Status transition not allowed"})
	case models.ErrConflict:
		return c.JSON(http.StatusConflict, models.ErrorResponse{Message: "Booking changed, retry"})
	}
	c.Logger().Error(op+": ", err)
	return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to update booking"})
}
