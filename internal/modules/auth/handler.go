package auth

import (
	"errors"
	"net/http"

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
	rg.POST("/auth/register", h.Register)
	rg.POST("/auth/login", h.Login)
	rg.POST("/auth/oauth", h.OAuth)
}

func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.GET("/auth/me", h.Me)
	rg.POST("/auth/request-otp", h.RequestOTP)
	rg.POST("/auth/verify-otp", h.VerifyOTP)
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	res, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		writeAuthError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, res)
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		writeAuthError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

func (h *Handler) OAuth(c *gin.Context) {
	var req OAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	res, err := h.service.OAuthLogin(c.Request.Context(), req)
	if err != nil {
		writeAuthError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

func (h *Handler) Me(c *gin.Context) {
	u, err := h.service.Me(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		writeAuthError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": u})
}

func (h *Handler) RequestOTP(c *gin.Context) {
	var req RequestOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	if err := h.service.RequestOTP(c.Request.Context(), c.GetInt64("user_id"), req.Phone); err != nil {
		writeAuthError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"sent": true})
}

func (h *Handler) VerifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	if err := h.service.VerifyOTP(c.Request.Context(), c.GetInt64("user_id"), req.Phone, req.Code); err != nil {
		writeAuthError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"phone_verified": true})
}

func writeAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION", err.Error())
	case errors.Is(err, ErrEmailTaken):
		response.Error(c, http.StatusConflict, "EMAIL_TAKEN", err.Error())
	case errors.Is(err, ErrInvalidCredentials):
		response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", err.Error())
	case errors.Is(err, ErrInvalidCode):
		response.Error(c, http.StatusBadRequest, "INVALID_CODE", err.Error())
	case errors.Is(err, ErrUserNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "Internal error")
	}
}
