package payout

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"handyghana/internal/domain"
	"handyghana/internal/pkg/response"
)

// ProviderResolver gives the provider row for the authenticated user.
type ProviderResolver interface {
	ResolveProviderID(c *gin.Context) (int64, bool)
}

type Handler struct {
	service   *Service
	providers ProviderResolver
}

func NewHandler(service *Service, providers ProviderResolver) *Handler {
	return &Handler{service: service, providers: providers}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/payouts/wallet", h.GetWallet)
	rg.POST("/payouts", h.RequestPayout)
	rg.GET("/payouts", h.ListPayouts)
	rg.GET("/payouts/:id", h.GetPayout)
}

type requestPayoutBody struct {
	Amount           int64  `json:"amount" binding:"required,gt=0"`
	Method           string `json:"method" binding:"required"`
	RecipientPhone   string `json:"recipient_phone"`
	RecipientAccount string `json:"recipient_account"`
	RecipientBank    string `json:"recipient_bank"`
}

func (h *Handler) GetWallet(c *gin.Context) {
	providerID, ok := h.providers.ResolveProviderID(c)
	if !ok {
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Provider profile required")
		return
	}

	wallet, err := h.service.GetOrCreateWallet(c.Request.Context(), providerID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "Failed to load wallet")
		return
	}

	entries, err := h.service.ListEntries(c.Request.Context(), providerID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "Failed to load wallet entries")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"wallet": wallet, "entries": entries})
}

func (h *Handler) RequestPayout(c *gin.Context) {
	providerID, ok := h.providers.ResolveProviderID(c)
	if !ok {
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Provider profile required")
		return
	}

	var body requestPayoutBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BindError(c, err)
		return
	}

	p, err := h.service.RequestPayout(c.Request.Context(), providerID, PayoutRequest{
		Amount:           body.Amount,
		Method:           domain.PaymentMethod(body.Method),
		RecipientPhone:   body.RecipientPhone,
		RecipientAccount: body.RecipientAccount,
		RecipientBank:    body.RecipientBank,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidAmount),
			errors.Is(err, ErrMissingRecipient),
			errors.Is(err, ErrUnsupportedMethod):
			response.Error(c, http.StatusBadRequest, "VALIDATION", err.Error())
		case errors.Is(err, ErrInsufficientFunds):
			response.Error(c, http.StatusBadRequest, "INSUFFICIENT_FUNDS", err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL", "Failed to request payout")
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"payout": p})
}

func (h *Handler) ListPayouts(c *gin.Context) {
	providerID, ok := h.providers.ResolveProviderID(c)
	if !ok {
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Provider profile required")
		return
	}

	payouts, err := h.service.ListPayouts(c.Request.Context(), providerID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "Failed to list payouts")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"payouts": payouts})
}

func (h *Handler) GetPayout(c *gin.Context) {
	providerID, ok := h.providers.ResolveProviderID(c)
	if !ok {
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Provider profile required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid payout ID")
		return
	}

	p, err := h.service.GetPayout(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Payout not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "Failed to load payout")
		return
	}
	if p.ProviderID != providerID {
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Not your payout")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"payout": p})
}
