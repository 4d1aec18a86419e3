package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lingodesk/placement-backend/internal/middleware"
	"github.com/lingodesk/placement-backend/internal/model"
	"github.com/lingodesk/placement-backend/internal/response"
	"github.com/lingodesk/placement-backend/internal/service"
	"github.com/lingodesk/placement-backend/internal/validator"
)

// TestHandler handles placement test authoring endpoints.
type TestHandler struct {
	testService   *service.TestService
	resultService *service.AttemptService
}

// NewTestHandler creates a new TestHandler.
func NewTestHandler(testService *service.TestService, resultService *service.AttemptService) *TestHandler {
	return &TestHandler{
		testService:   testService,
		resultService: resultService,
	}
}

// authorFilter returns 0 (no filter) for admin-scope teachers, otherwise
// the caller's own id.
func authorFilter(claims *service.Claims) int {
	for _, p := range claims.Permissions {
		if p == string(model.PermissionTestsAdmin) {
			return 0
		}
	}
	return claims.UserID
}

// ListTests godoc
// GET /api/v1/teacher/tests
// Lists tests with pagination. Admin-scope teachers see all; others only their own.
func (h *TestHandler) ListTests(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	tests, pagination, err := h.testService.List(c.Request.Context(), authorFilter(claims), page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"tests": tests}, pagination)
}

// CreateTest godoc
// POST /api/v1/teacher/tests
// Creates a new draft test.
func (h *TestHandler) CreateTest(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.CreateTestRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	t, err := h.testService.Create(c.Request.Context(), claims.UserID, req.Title)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"test": t})
}

// GetTest godoc
// GET /api/v1/teacher/tests/:test_id
// Returns a test with its questions, pages and module assignments.
func (h *TestHandler) GetTest(c *gin.Context) {
	testID, ok := h.testID(c)
	if !ok {
		return
	}

	t, err := h.testService.GetFull(c.Request.Context(), testID)
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"test": t})
}

// UpdateTest godoc
// PUT /api/v1/teacher/tests/:test_id
// Edits a draft test's basic info.
func (h *TestHandler) UpdateTest(c *gin.Context) {
	claims := middleware.GetClaims(c)
	testID, ok := h.testID(c)
	if !ok {
		return
	}

	var req model.UpdateTestRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.testService.UpdateTitle(c.Request.Context(), testID, authorFilter(claims), req.Title); err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// DeleteTest godoc
// DELETE /api/v1/teacher/tests/:test_id
// Permanently removes an archived test.
func (h *TestHandler) DeleteTest(c *gin.Context) {
	claims := middleware.GetClaims(c)
	testID, ok := h.testID(c)
	if !ok {
		return
	}

	if err := h.testService.Delete(c.Request.Context(), testID, authorFilter(claims)); err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// PublishTest godoc
// POST /api/v1/teacher/tests/:test_id/publish
// Publishes a draft test: caches payload + answer key to Redis, changes status.
func (h *TestHandler) PublishTest(c *gin.Context) {
	claims := middleware.GetClaims(c)
	testID, ok := h.testID(c)
	if !ok {
		return
	}

	if err := h.testService.Publish(c.Request.Context(), testID, authorFilter(claims)); err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": model.TestStatusPublished})
}

// UnpublishTest godoc
// POST /api/v1/teacher/tests/:test_id/unpublish
// Moves a published test back to draft and drops its cached payload.
func (h *TestHandler) UnpublishTest(c *gin.Context) {
	claims := middleware.GetClaims(c)
	testID, ok := h.testID(c)
	if !ok {
		return
	}

	if err := h.testService.Unpublish(c.Request.Context(), testID, authorFilter(claims)); err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": model.TestStatusDraft})
}

// ArchiveTest godoc
// POST /api/v1/teacher/tests/:test_id/archive
// Moves a draft test to archived. Published tests must be unpublished first.
func (h *TestHandler) ArchiveTest(c *gin.Context) {
	claims := middleware.GetClaims(c)
	testID, ok := h.testID(c)
	if !ok {
		return
	}

	if err := h.testService.Archive(c.Request.Context(), testID, authorFilter(claims)); err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": model.TestStatusArchived})
}

// RestoreTest godoc
// POST /api/v1/teacher/tests/:test_id/restore
// Moves an archived test back to draft.
func (h *TestHandler) RestoreTest(c *gin.Context) {
	claims := middleware.GetClaims(c)
	testID, ok := h.testID(c)
	if !ok {
		return
	}

	if err := h.testService.Restore(c.Request.Context(), testID, authorFilter(claims)); err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": model.TestStatusDraft})
}

// RefreshTestCache godoc
// POST /api/v1/teacher/tests/:test_id/refresh-cache
// Re-caches the payload and answer key for a published test.
func (h *TestHandler) RefreshTestCache(c *gin.Context) {
	claims := middleware.GetClaims(c)
	testID, ok := h.testID(c)
	if !ok {
		return
	}

	if err := h.testService.RefreshCache(c.Request.Context(), testID, authorFilter(claims)); err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// ─── Questions ─────────────────────────────────────────────────────

// AddQuestion godoc
// POST /api/v1/teacher/tests/:test_id/questions
func (h *TestHandler) AddQuestion(c *gin.Context) {
	claims := middleware.GetClaims(c)
	testID, ok := h.testID(c)
	if !ok {
		return
	}

	var req model.AddQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	q, err := h.testService.AddQuestion(c.Request.Context(), testID, authorFilter(claims), &req)
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"question": q})
}

// UpdateQuestion godoc
// PUT /api/v1/teacher/tests/:test_id/questions/:question_id
func (h *TestHandler) UpdateQuestion(c *gin.Context) {
	claims := middleware.GetClaims(c)
	testID, ok := h.testID(c)
	if !ok {
		return
	}
	questionID, err := uuid.Parse(c.Param("question_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	q, err := h.testService.UpdateQuestion(c.Request.Context(), testID, questionID, authorFilter(claims), &req)
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"question": q})
}

// DeleteQuestion godoc
// DELETE /api/v1/teacher/tests/:test_id/questions/:question_id
func (h *TestHandler) DeleteQuestion(c *gin.Context) {
	claims := middleware.GetClaims(c)
	testID, ok := h.testID(c)
	if !ok {
		return
	}
	questionID, err := uuid.Parse(c.Param("question_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.testService.DeleteQuestion(c.Request.Context(), testID, questionID, authorFilter(claims)); err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// ─── Pages ─────────────────────────────────────────────────────────

// AddContentPage godoc
// POST /api/v1/teacher/tests/:test_id/pages/content
func (h *TestHandler) AddContentPage(c *gin.Context) {
	claims := middleware.GetClaims(c)
	testID, ok := h.testID(c)
	if !ok {
		return
	}

	var req model.AddContentPageRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	p, err := h.testService.AddContentPage(c.Request.Context(), testID, authorFilter(claims), &req)
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"page": p})
}

// AddQuestionPage godoc
// POST /api/v1/teacher/tests/:test_id/pages/question
func (h *TestHandler) AddQuestionPage(c *gin.Context) {
	claims := middleware.GetClaims(c)
	testID, ok := h.testID(c)
	if !ok {
		return
	}

	var req model.AddQuestionPageRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	p, err := h.testService.AddQuestionPage(c.Request.Context(), testID, authorFilter(claims), &req)
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"page": p})
}

// MovePage godoc
// POST /api/v1/teacher/tests/:test_id/pages/:page_id/move
func (h *TestHandler) MovePage(c *gin.Context) {
	claims := middleware.GetClaims(c)
	testID, ok := h.testID(c)
	if !ok {
		return
	}
	pageID, err := uuid.Parse(c.Param("page_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.MovePageRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.testService.MovePage(c.Request.Context(), testID, pageID, authorFilter(claims), req.Direction); err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// DeletePage godoc
// DELETE /api/v1/teacher/tests/:test_id/pages/:page_id
func (h *TestHandler) DeletePage(c *gin.Context) {
	claims := middleware.GetClaims(c)
	testID, ok := h.testID(c)
	if !ok {
		return
	}
	pageID, err := uuid.Parse(c.Param("page_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.testService.DeletePage(c.Request.Context(), testID, pageID, authorFilter(claims)); err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// ─── Module assignments ────────────────────────────────────────────

// ReplaceAssignments godoc
// PUT /api/v1/teacher/tests/:test_id/assignments
// Replaces the ordered module list for one placement level.
func (h *TestHandler) ReplaceAssignments(c *gin.Context) {
	claims := middleware.GetClaims(c)
	testID, ok := h.testID(c)
	if !ok {
		return
	}

	var req model.ReplaceAssignmentsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	level, err := model.ParsePlacementLevel(req.Level)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrUnknownLevel)
		return
	}

	if err := h.testService.ReplaceAssignments(c.Request.Context(), testID, authorFilter(claims), level, req.ModuleIDs); err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// ─── Results ───────────────────────────────────────────────────────

// ListResults godoc
// GET /api/v1/teacher/tests/:test_id/results
// Lists stored placement results for a test, newest first.
func (h *TestHandler) ListResults(c *gin.Context) {
	testID, ok := h.testID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	results, total, err := h.resultService.ListResults(c.Request.Context(), testID, perPage, (page-1)*perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: (total + perPage - 1) / perPage,
	}
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"results": results}, pagination)
}

// ─── Helpers ───────────────────────────────────────────────────────

func (h *TestHandler) testID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("test_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

// fail maps service sentinels onto the response envelope.
func (h *TestHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrNotTestAuthor):
		response.Fail(c, http.StatusForbidden, response.ErrNotTestAuthor)
	case errors.Is(err, service.ErrNoQuestions):
		response.Fail(c, http.StatusBadRequest, response.ErrNoQuestions)
	case errors.Is(err, service.ErrTestNotDraft):
		response.Fail(c, http.StatusConflict, response.ErrInvalidTransition)
	case errors.Is(err, service.ErrTestNotPublished):
		response.Fail(c, http.StatusConflict, response.ErrTestNotPublished)
	case errors.Is(err, service.ErrInvalidTransition):
		response.Fail(c, http.StatusConflict, response.ErrInvalidTransition)
	case errors.Is(err, service.ErrQuestionInvalid):
		response.Fail(c, http.StatusBadRequest, response.ErrQuestionInvalid)
	case errors.Is(err, service.ErrUnknownQuestion):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrPageAtBoundary):
		response.Fail(c, http.StatusConflict, response.ErrActionForbidden)
	case errors.Is(err, service.ErrUnknownModule):
		response.Fail(c, http.StatusBadRequest, response.ErrActionForbidden)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
