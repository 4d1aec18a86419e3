package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lingodesk/placement-backend/internal/middleware"
	"github.com/lingodesk/placement-backend/internal/model"
	"github.com/lingodesk/placement-backend/internal/placement"
	"github.com/lingodesk/placement-backend/internal/response"
	"github.com/lingodesk/placement-backend/internal/service"
	"github.com/lingodesk/placement-backend/internal/validator"
)

// AttemptHandler handles the learner-facing delivery endpoints: starting an
// attempt and driving its page traversal.
type AttemptHandler struct {
	attemptService *service.AttemptService
	learnerService *service.LearnerService
}

// NewAttemptHandler creates a new AttemptHandler.
func NewAttemptHandler(attemptService *service.AttemptService, learnerService *service.LearnerService) *AttemptHandler {
	return &AttemptHandler{
		attemptService: attemptService,
		learnerService: learnerService,
	}
}

// ListAvailableTests godoc
// GET /api/v1/learner/tests
// Lists published tests a learner may start.
func (h *AttemptHandler) ListAvailableTests(c *gin.Context) {
	tests, err := h.attemptService.AvailableTests(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"tests": tests})
}

// StartAttempt godoc
// POST /api/v1/learner/tests/:test_id/attempts
// Opens a new attempt at the first page and returns its session token.
func (h *AttemptHandler) StartAttempt(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	testID, err := uuid.Parse(c.Param("test_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	view, err := h.attemptService.Start(c.Request.Context(), testID, claims.UserID)
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"attempt": view})
}

// SelectAnswer godoc
// POST /api/v1/learner/attempts/:session_token/answer
// Records a choice on the current question page. The cursor does not move.
func (h *AttemptHandler) SelectAnswer(c *gin.Context) {
	var req model.SelectAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	view, err := h.attemptService.SelectAnswer(c.Request.Context(), c.Param("session_token"), *req.ChoiceIndex)
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attempt": view})
}

// Next godoc
// POST /api/v1/learner/attempts/:session_token/next
// Advances to the next page. At the last page the view reports finished.
func (h *AttemptHandler) Next(c *gin.Context) {
	view, err := h.attemptService.Next(c.Request.Context(), c.Param("session_token"))
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attempt": view})
}

// Previous godoc
// POST /api/v1/learner/attempts/:session_token/previous
// Moves back one page. Stored answers are preserved.
func (h *AttemptHandler) Previous(c *gin.Context) {
	view, err := h.attemptService.Previous(c.Request.Context(), c.Param("session_token"))
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attempt": view})
}

// Skip godoc
// POST /api/v1/learner/attempts/:session_token/skip
// Ends the attempt from the opening page with a beginner placement.
func (h *AttemptHandler) Skip(c *gin.Context) {
	result, err := h.attemptService.Skip(c.Request.Context(), c.Param("session_token"))
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result})
}

// Submit godoc
// POST /api/v1/learner/attempts/:session_token/submit
// Grades the attempt and stores the immutable result. Retries return the
// originally stored result.
func (h *AttemptHandler) Submit(c *gin.Context) {
	result, err := h.attemptService.Submit(c.Request.Context(), c.Param("session_token"))
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result})
}

// GetResult godoc
// GET /api/v1/learner/tests/:test_id/results/:session_token
// Returns the stored placement result for an attempt.
func (h *AttemptHandler) GetResult(c *gin.Context) {
	testID, err := uuid.Parse(c.Param("test_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	result, err := h.attemptService.Result(c.Request.Context(), testID, c.Param("session_token"))
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result})
}

// History godoc
// GET /api/v1/learner/results
// Returns the authenticated learner's placement results across all tests.
func (h *AttemptHandler) History(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	results, err := h.learnerService.History(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"results": results})
}

// fail maps delivery sentinels onto the response envelope.
func (h *AttemptHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrAttemptNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrAttemptNotFound)
	case errors.Is(err, service.ErrAttemptSubmitted):
		response.Fail(c, http.StatusConflict, response.ErrAttemptSubmitted)
	case errors.Is(err, service.ErrAttemptNotFinished):
		response.Fail(c, http.StatusConflict, response.ErrActionForbidden)
	case errors.Is(err, service.ErrTestNotAvailable):
		response.Fail(c, http.StatusConflict, response.ErrTestNotPublished)
	case errors.Is(err, placement.ErrAnswerRequired):
		response.Fail(c, http.StatusConflict, response.ErrAnswerRequired)
	case errors.Is(err, placement.ErrAtFirstPage):
		response.Fail(c, http.StatusConflict, response.ErrAtFirstPage)
	case errors.Is(err, placement.ErrInvalidChoiceIndex):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidChoiceIndex)
	case errors.Is(err, placement.ErrNotQuestionPage):
		response.Fail(c, http.StatusConflict, response.ErrNotQuestionPage)
	case errors.Is(err, placement.ErrSkipUnavailable):
		response.Fail(c, http.StatusConflict, response.ErrSkipUnavailable)
	case errors.Is(err, placement.ErrEmptySequence):
		response.Fail(c, http.StatusConflict, response.ErrTestNotPublished)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
