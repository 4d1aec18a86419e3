package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lingodesk/placement-backend/internal/model"
	"github.com/lingodesk/placement-backend/internal/response"
	"github.com/lingodesk/placement-backend/internal/service"
	"github.com/lingodesk/placement-backend/internal/validator"
)

// CatalogHandler handles course module catalog endpoints.
type CatalogHandler struct {
	catalogService *service.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// ListModules godoc
// GET /api/v1/teacher/modules
// Lists catalog modules. ?active=true hides retired ones.
func (h *CatalogHandler) ListModules(c *gin.Context) {
	activeOnly := c.Query("active") == "true"

	modules, err := h.catalogService.List(c.Request.Context(), activeOnly)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"modules": modules})
}

// GetModule godoc
// GET /api/v1/teacher/modules/:module_id
func (h *CatalogHandler) GetModule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("module_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	m, err := h.catalogService.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"module": m})
}

// CreateModule godoc
// POST /api/v1/teacher/modules
func (h *CatalogHandler) CreateModule(c *gin.Context) {
	var req model.CreateModuleRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	m, err := h.catalogService.Create(c.Request.Context(), &req)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"module": m})
}

// UpdateModule godoc
// PUT /api/v1/teacher/modules/:module_id
func (h *CatalogHandler) UpdateModule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("module_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateModuleRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	m, err := h.catalogService.Update(c.Request.Context(), id, &req)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"module": m})
}

// DeleteModule godoc
// DELETE /api/v1/teacher/modules/:module_id
func (h *CatalogHandler) DeleteModule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("module_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.catalogService.Delete(c.Request.Context(), id); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}
