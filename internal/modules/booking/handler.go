package booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"handyghana/internal/domain"
	"handyghana/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/bookings", h.Create)
	rg.GET("/bookings", h.ListMine)
	rg.GET("/bookings/provider", h.ListForProvider)
	rg.GET("/bookings/:id", h.Get)
	rg.PATCH("/bookings/:id/status", h.UpdateStatus)
}

func (h *Handler) Create(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			response.Error(c, http.StatusBadRequest, "VALIDATION", err.Error())
		case errors.Is(err, ErrProviderNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
		case errors.Is(err, ErrProviderNotVerified):
			response.Error(c, http.StatusBadRequest, "PROVIDER_NOT_VERIFIED", err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL", "Failed to create booking")
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"booking": b})
}

func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid booking ID")
		return
	}

	b, err := h.service.GetByID(c.Request.Context(), id, c.GetInt64("user_id"), c.GetString("role"))
	if err != nil {
		writeBookingError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) ListMine(c *gin.Context) {
	limit, offset := pagination(c)
	list, err := h.service.ListMine(c.Request.Context(), c.GetInt64("user_id"), limit, offset)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "Failed to list bookings")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"bookings": list})
}

func (h *Handler) ListForProvider(c *gin.Context) {
	limit, offset := pagination(c)
	list, err := h.service.ListForProvider(c.Request.Context(), c.GetInt64("user_id"), limit, offset)
	if err != nil {
		writeBookingError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"bookings": list})
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid booking ID")
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	b, err := h.service.UpdateStatus(
		c.Request.Context(),
		id,
		c.GetInt64("user_id"),
		c.GetString("role"),
		domain.BookingStatus(req.Status),
		req.Reason,
	)
	if err != nil {
		writeBookingError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func writeBookingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION", err.Error())
	case errors.Is(err, ErrInvalidStatusTransition):
		response.Error(c, http.StatusConflict, "INVALID_TRANSITION", err.Error())
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "Internal error")
	}
}

func pagination(c *gin.Context) (int, int) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	return limit, offset
}
