package chat

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

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/chat/conversations", h.Start)
	rg.GET("/chat/conversations", h.ListMine)
	rg.GET("/chat/conversations/:id/messages", h.Messages)
	rg.POST("/chat/conversations/:id/messages", h.Send)
	rg.POST("/chat/conversations/:id/read", h.MarkRead)
}

type startRequest struct {
	ProviderID int64 `json:"provider_id" binding:"required"`
}

type sendRequest struct {
	Body string `json:"body" binding:"required"`
}

func (h *Handler) Start(c *gin.Context) {
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	conv, err := h.service.Start(c.Request.Context(), c.GetInt64("user_id"), req.ProviderID)
	if err != nil {
		writeChatError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"conversation": conv})
}

func (h *Handler) ListMine(c *gin.Context) {
	list, err := h.service.ListMine(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "Failed to list conversations")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"conversations": list})
}

func (h *Handler) Messages(c *gin.Context) {
	id, ok := conversationID(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	msgs, err := h.service.Messages(c.Request.Context(), c.GetInt64("user_id"), id, limit, offset)
	if err != nil {
		writeChatError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"messages": msgs})
}

func (h *Handler) Send(c *gin.Context) {
	id, ok := conversationID(c)
	if !ok {
		return
	}
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	m, err := h.service.Send(c.Request.Context(), c.GetInt64("user_id"), id, req.Body)
	if err != nil {
		writeChatError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"message": m})
}

func (h *Handler) MarkRead(c *gin.Context) {
	id, ok := conversationID(c)
	if !ok {
		return
	}
	if err := h.service.MarkRead(c.Request.Context(), c.GetInt64("user_id"), id); err != nil {
		writeChatError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"read": true})
}

func conversationID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid conversation ID")
		return 0, false
	}
	return id, true
}

func writeChatError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION", err.Error())
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrProviderNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "Internal error")
	}
}
