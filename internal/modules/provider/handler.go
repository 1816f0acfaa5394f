package provider

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"handyghana/internal/domain"
	"handyghana/internal/pkg/response"
	"handyghana/internal/repository"
)

const maxDocumentSize = 10 << 20 // 10 MiB

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/providers", h.List)
	rg.GET("/providers/:id", h.Get)
}

func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.POST("/providers/onboard", h.Onboard)
	rg.GET("/providers/me", h.Me)
	rg.PUT("/providers/me", h.UpdateProfile)
	rg.POST("/providers/me/documents", h.UploadDocument)
}

func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/admin/providers", h.ListByStatus)
	rg.PATCH("/admin/providers/:id/verification", h.SetVerification)
}

// ResolveProviderID maps the authenticated user to their provider row.
// Other handlers use it to scope provider-only resources.
func (h *Handler) ResolveProviderID(c *gin.Context) (int64, bool) {
	p, err := h.service.GetByUserID(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		return 0, false
	}
	return p.ID, true
}

func (h *Handler) Onboard(c *gin.Context) {
	var req OnboardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	p, err := h.service.Onboard(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		writeProviderError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"provider": p})
}

func (h *Handler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	list, err := h.service.List(c.Request.Context(), repository.ListFilter{
		Category: c.Query("category"),
		Location: c.Query("location"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "Failed to list providers")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"providers": list})
}

func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid provider ID")
		return
	}
	p, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeProviderError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"provider": p})
}

func (h *Handler) Me(c *gin.Context) {
	p, err := h.service.GetByUserID(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		writeProviderError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"provider": p})
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	p, err := h.service.UpdateProfile(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		writeProviderError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"provider": p})
}

func (h *Handler) UploadDocument(c *gin.Context) {
	fileHeader, err := c.FormFile("document")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION", "A document file is required")
		return
	}
	if fileHeader.Size > maxDocumentSize {
		response.Error(c, http.StatusBadRequest, "FILE_TOO_LARGE", "Document exceeds the 10MB limit")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION", "Could not read uploaded file")
		return
	}
	defer f.Close()

	p, err := h.service.UploadDocument(c.Request.Context(), c.GetInt64("user_id"), f, fileHeader.Filename)
	if err != nil {
		writeProviderError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"provider": p})
}

func (h *Handler) ListByStatus(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	status := domain.VerificationStatus(c.DefaultQuery("status", string(domain.VerificationPending)))

	list, err := h.service.ListByStatus(c.Request.Context(), status, limit, offset)
	if err != nil {
		writeProviderError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"providers": list})
}

func (h *Handler) SetVerification(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid provider ID")
		return
	}
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	p, err := h.service.SetVerification(c.Request.Context(), id, c.GetInt64("user_id"), req.Approve, req.Reason)
	if err != nil {
		writeProviderError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"provider": p})
}

func writeProviderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidStatus):
		response.Error(c, http.StatusBadRequest, "VALIDATION", err.Error())
	case errors.Is(err, ErrAlreadyExists):
		response.Error(c, http.StatusConflict, "ALREADY_EXISTS", err.Error())
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrMissingProfile):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, ErrUploadFailed):
		response.Error(c, http.StatusBadGateway, "UPLOAD_FAILED", err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "Internal error")
	}
}
