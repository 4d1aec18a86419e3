package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrSessionActive      ErrCode = "SESSION_ALREADY_ACTIVE"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden         ErrCode = "FORBIDDEN"
	ErrPermissionDenied  ErrCode = "PERMISSION_DENIED"
	ErrLearnerAccessOnly ErrCode = "LEARNER_ACCESS_ONLY"
	ErrTeacherAccessOnly ErrCode = "TEACHER_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound        ErrCode = "NOT_FOUND"
	ErrConflict        ErrCode = "CONFLICT"
	ErrActionForbidden ErrCode = "ACTION_FORBIDDEN"

	// ─── Test authoring ────────────────────────────────────────────────
	ErrTestNotPublished  ErrCode = "TEST_NOT_PUBLISHED"
	ErrInvalidTransition ErrCode = "INVALID_STATUS_TRANSITION"
	ErrNotTestAuthor     ErrCode = "NOT_TEST_AUTHOR"
	ErrNoQuestions       ErrCode = "NO_QUESTIONS"
	ErrQuestionInvalid   ErrCode = "QUESTION_INVALID"
	ErrUnknownLevel      ErrCode = "UNKNOWN_PLACEMENT_LEVEL"

	// ─── Test delivery ─────────────────────────────────────────────────
	ErrAttemptNotFound    ErrCode = "ATTEMPT_NOT_FOUND"
	ErrAnswerRequired     ErrCode = "ANSWER_REQUIRED"
	ErrAtFirstPage        ErrCode = "AT_FIRST_PAGE"
	ErrInvalidChoiceIndex ErrCode = "INVALID_CHOICE_INDEX"
	ErrSkipUnavailable    ErrCode = "SKIP_UNAVAILABLE"
	ErrNotQuestionPage    ErrCode = "NOT_QUESTION_PAGE"
	ErrAttemptSubmitted   ErrCode = "ATTEMPT_ALREADY_SUBMITTED"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Email or password is incorrect."
	case ErrSessionActive:
		return "You are already signed in on another device."
	case ErrSessionInvalidated:
		return "Your session has ended. Please sign in again."
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid."
	case ErrTokenExpired:
		return "The authentication token has expired."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have access to this resource."
	case ErrPermissionDenied:
		return "Permission denied."
	case ErrLearnerAccessOnly:
		return "This resource is restricted to learners."
	case ErrTeacherAccessOnly:
		return "This resource is restricted to teachers."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "Resource already exists."
	case ErrActionForbidden:
		return "This action is not allowed."

	// ─── Test authoring ────────────────────────────────────────────────
	case ErrTestNotPublished:
		return "This placement test is not published."
	case ErrInvalidTransition:
		return "The test status does not allow this transition."
	case ErrNotTestAuthor:
		return "You are not the author of this test."
	case ErrNoQuestions:
		return "This test has no questions."
	case ErrQuestionInvalid:
		return "The question violates authoring constraints."
	case ErrUnknownLevel:
		return "Unknown placement level token."

	// ─── Test delivery ─────────────────────────────────────────────────
	case ErrAttemptNotFound:
		return "No attempt found for this session token."
	case ErrAnswerRequired:
		return "Select an answer before moving to the next page."
	case ErrAtFirstPage:
		return "You are already on the first page."
	case ErrInvalidChoiceIndex:
		return "The selected choice does not exist for this question."
	case ErrSkipUnavailable:
		return "The test can only be skipped from its opening page."
	case ErrNotQuestionPage:
		return "The current page does not accept an answer."
	case ErrAttemptSubmitted:
		return "This attempt has already been submitted."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
