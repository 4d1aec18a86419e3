package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/lingodesk/placement-backend/internal/model"
	"github.com/lingodesk/placement-backend/internal/response"
	"github.com/lingodesk/placement-backend/internal/service"
	"github.com/lingodesk/placement-backend/internal/validator"
)

// LearnerManagementHandler handles teacher-facing learner account endpoints.
type LearnerManagementHandler struct {
	learnerService *service.LearnerService
	authService    *service.AuthService
}

// NewLearnerManagementHandler creates a new LearnerManagementHandler.
func NewLearnerManagementHandler(learnerService *service.LearnerService, authService *service.AuthService) *LearnerManagementHandler {
	return &LearnerManagementHandler{
		learnerService: learnerService,
		authService:    authService,
	}
}

// ListLearners godoc
// GET /api/v1/teacher/learners
func (h *LearnerManagementHandler) ListLearners(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	learners, pagination, err := h.learnerService.List(c.Request.Context(), page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"learners": learners}, pagination)
}

// CreateLearner godoc
// POST /api/v1/teacher/learners
func (h *LearnerManagementHandler) CreateLearner(c *gin.Context) {
	var req model.CreateLearnerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	l, err := h.learnerService.Create(c.Request.Context(), &req)
	if err != nil {
		response.Fail(c, http.StatusConflict, response.ErrConflict)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"learner": l})
}

// UpdateLearner godoc
// PUT /api/v1/teacher/learners/:learner_id
func (h *LearnerManagementHandler) UpdateLearner(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("learner_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateLearnerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	l, err := h.learnerService.Update(c.Request.Context(), id, &req)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"learner": l})
}

// DeleteLearner godoc
// DELETE /api/v1/teacher/learners/:learner_id
func (h *LearnerManagementHandler) DeleteLearner(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("learner_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.learnerService.Delete(c.Request.Context(), id); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// ResetLearnerSession godoc
// POST /api/v1/teacher/learners/:learner_id/reset-session
// Clears a learner's single-device session so they can sign in again.
func (h *LearnerManagementHandler) ResetLearnerSession(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("learner_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.authService.ResetLearnerSession(c.Request.Context(), id); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}
