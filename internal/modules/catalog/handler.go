package catalog

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

// RegisterPublicRoutes mounts the read-only catalog endpoints.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/providers/:id/services", h.ListByProvider)
	rg.GET("/services/:id", h.Get)
}

// RegisterProviderRoutes mounts the catalog management endpoints; the
// caller must wrap them with auth and the provider role check.
func (h *Handler) RegisterProviderRoutes(rg *gin.RouterGroup) {
	rg.POST("/services", h.Create)
	rg.GET("/services", h.ListMine)
	rg.PUT("/services/:id", h.Update)
	rg.DELETE("/services/:id", h.Delete)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	svc, err := h.service.CreateService(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		writeCatalogError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"service": svc})
}

func (h *Handler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid service ID")
		return
	}
	var req UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	svc, err := h.service.UpdateService(c.Request.Context(), c.GetInt64("user_id"), id, req)
	if err != nil {
		writeCatalogError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"service": svc})
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid service ID")
		return
	}
	if err := h.service.DeleteService(c.Request.Context(), c.GetInt64("user_id"), id); err != nil {
		writeCatalogError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid service ID")
		return
	}
	svc, err := h.service.GetService(c.Request.Context(), id)
	if err != nil {
		writeCatalogError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"service": svc})
}

func (h *Handler) ListByProvider(c *gin.Context) {
	providerID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid provider ID")
		return
	}
	list, err := h.service.ListByProvider(c.Request.Context(), providerID)
	if err != nil {
		writeCatalogError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"services": list})
}

func (h *Handler) ListMine(c *gin.Context) {
	list, err := h.service.ListMine(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		writeCatalogError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"services": list})
}

func writeCatalogError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION", err.Error())
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrProviderNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", err.Error())
	case errors.Is(err, ErrActiveSubscriptions):
		response.Error(c, http.StatusConflict, "ACTIVE_SUBSCRIPTIONS", err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "Internal error")
	}
}
