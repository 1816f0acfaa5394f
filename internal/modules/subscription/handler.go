package subscription

import (
	"context"
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
	rg.POST("/subscriptions", h.Subscribe)
	rg.GET("/subscriptions", h.ListMine)
	rg.GET("/subscriptions/:id", h.Get)
	rg.POST("/subscriptions/:id/pause", h.Pause)
	rg.POST("/subscriptions/:id/resume", h.Resume)
	rg.POST("/subscriptions/:id/cancel", h.Cancel)
	rg.POST("/subscriptions/:id/use-visit", h.UseVisit)
}

func (h *Handler) Subscribe(c *gin.Context) {
	var req CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	sub, err := h.service.Subscribe(c.Request.Context(), c.GetInt64("user_id"), req.ServiceID)
	if err != nil {
		writeSubscriptionError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"subscription": sub})
}

func (h *Handler) ListMine(c *gin.Context) {
	list, err := h.service.ListMine(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "Failed to list subscriptions")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"subscriptions": list})
}

func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid subscription ID")
		return
	}
	sub, err := h.service.Get(c.Request.Context(), c.GetInt64("user_id"), id, c.GetString("role"))
	if err != nil {
		writeSubscriptionError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"subscription": sub})
}

func (h *Handler) Pause(c *gin.Context)    { h.transition(c, h.service.Pause) }
func (h *Handler) Resume(c *gin.Context)   { h.transition(c, h.service.Resume) }
func (h *Handler) Cancel(c *gin.Context)   { h.transition(c, h.service.Cancel) }
func (h *Handler) UseVisit(c *gin.Context) { h.transition(c, h.service.UseVisit) }

func (h *Handler) transition(c *gin.Context, op func(ctx context.Context, userID, id int64) (*domain.Subscription, error)) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid subscription ID")
		return
	}
	sub, err := op(c.Request.Context(), c.GetInt64("user_id"), id)
	if err != nil {
		writeSubscriptionError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"subscription": sub})
}

func writeSubscriptionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrNotSubscribable):
		response.Error(c, http.StatusBadRequest, "VALIDATION", err.Error())
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrServiceNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", err.Error())
	case errors.Is(err, ErrAlreadyActive), errors.Is(err, ErrNotActive),
		errors.Is(err, ErrNotPaused), errors.Is(err, ErrAlreadyCancelled),
		errors.Is(err, ErrNoVisitsLeft):
		response.Error(c, http.StatusConflict, "INVALID_STATE", err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "Internal error")
	}
}
