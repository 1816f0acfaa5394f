package review

import (
	"errors"
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

func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/providers/:id/reviews", h.ListByProvider)
}

func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.POST("/reviews", h.Create)
	rg.POST("/reviews/:id/respond", h.Respond)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	rev, err := h.service.Create(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		writeReviewError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"review": rev})
}

func (h *Handler) ListByProvider(c *gin.Context) {
	providerID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid provider ID")
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	list, err := h.service.ListByProvider(c.Request.Context(), providerID, limit, offset)
	if err != nil {
		writeReviewError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reviews": list})
}

func (h *Handler) Respond(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid review ID")
		return
	}
	var req RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	rev, err := h.service.Respond(c.Request.Context(), c.GetInt64("user_id"), id, req.Response)
	if err != nil {
		writeReviewError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"review": rev})
}

func writeReviewError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrBookingNotEligible):
		response.Error(c, http.StatusBadRequest, "VALIDATION", err.Error())
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrProviderNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", err.Error())
	case errors.Is(err, ErrAlreadyReviewed), errors.Is(err, ErrAlreadyResponded):
		response.Error(c, http.StatusConflict, "CONFLICT", err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "Internal error")
	}
}
