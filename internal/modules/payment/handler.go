package payment

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"handyghana/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/payments/initialize", h.Initialize)
	rg.GET("/payments/verify/:reference", h.Verify)
	rg.GET("/payments/:reference", h.Get)
	rg.GET("/bookings/:id/payments", h.ListForBooking)
}

// RegisterWebhook mounts the gateway callback on an unauthenticated
// group; the HMAC signature is the only authentication.
func (h *Handler) RegisterWebhook(rg *gin.RouterGroup) {
	rg.POST("/webhooks/paystack", h.Webhook)
}

func (h *Handler) Initialize(c *gin.Context) {
	var req InitializePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	res, err := h.service.Initialize(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		writePaymentError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"payment": res})
}

func (h *Handler) Verify(c *gin.Context) {
	p, err := h.service.Verify(c.Request.Context(), c.GetInt64("user_id"), c.Param("reference"))
	if err != nil {
		if errors.Is(err, ErrGatewayUnavailable) && p != nil {
			// Surface the stored state; the caller can retry.
			response.Success(c, http.StatusOK, gin.H{"payment": p, "verified": false})
			return
		}
		writePaymentError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"payment": p, "verified": true})
}

func (h *Handler) Get(c *gin.Context) {
	p, err := h.service.GetByReference(c.Request.Context(), c.GetInt64("user_id"), c.Param("reference"))
	if err != nil {
		writePaymentError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"payment": p})
}

func (h *Handler) ListForBooking(c *gin.Context) {
	bookingID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid booking ID")
		return
	}
	list, err := h.service.ListForBooking(c.Request.Context(), c.GetInt64("user_id"), c.GetString("role"), bookingID)
	if err != nil {
		writePaymentError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"payments": list})
}

func (h *Handler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	err = h.service.HandleWebhook(c.Request.Context(), body, c.GetHeader("X-Paystack-Signature"))
	if errors.Is(err, ErrBadSignature) {
		c.Status(http.StatusBadRequest)
		return
	}
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Status(http.StatusOK)
}

func writePaymentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrUnsupportedMethod):
		response.Error(c, http.StatusBadRequest, "VALIDATION", err.Error())
	case errors.Is(err, ErrAlreadyPaid):
		response.Error(c, http.StatusConflict, "ALREADY_PAID", err.Error())
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrBookingNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", err.Error())
	case errors.Is(err, ErrGatewayUnavailable):
		response.Error(c, http.StatusBadGateway, "GATEWAY_UNAVAILABLE", "Payment gateway unavailable, try again later")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "Internal error")
	}
}
