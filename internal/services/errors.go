package services

import (
	"errors"

	apperrors "github.com/gradeworks/evaluation-service/internal/errors"
)

// ===== SERVICE ERROR TAXONOMY =====

var (
	// Generic errors
	ErrValidationFailed = errors.New("validation failed")
	ErrForbidden        = errors.New("forbidden - insufficient permissions")
	ErrInternalError    = errors.New("internal server error")

	// Lookup errors - terminal, surfaced to the caller, no retry
	ErrAssessmentNotFound = errors.New("assessment not found")
	ErrSubmissionNotFound = errors.New("submission not found")

	// Handwritten pipeline errors - terminal for the attempt, no partial
	// submission is ever recorded
	ErrUnsupportedMediaType  = errors.New("unsupported media type")
	ErrExtractionFailed      = errors.New("text extraction failed")
	ErrEvaluationUnavailable = errors.New("evaluation service unavailable")
	ErrEvaluationRejected    = errors.New("evaluation rejected by service")

	// ErrDuplicateSubmissionID signals an id-generation bug, not a
	// user-retryable condition.
	ErrDuplicateSubmissionID = errors.New("duplicate submission id")

	// Authoring errors
	ErrAssessmentNotPublished = errors.New("assessment is not published")
)

// Shared validation error types.
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// ===== ERROR CLASSIFICATION HELPERS =====

func IsNotFound(err error) bool {
	return errors.Is(err, ErrAssessmentNotFound) || errors.Is(err, ErrSubmissionNotFound)
}

func IsValidation(err error) bool {
	var ve ValidationErrors
	var single *ValidationError
	return errors.Is(err, ErrValidationFailed) || errors.As(err, &ve) || errors.As(err, &single)
}

func IsClientInputError(err error) bool {
	return errors.Is(err, ErrUnsupportedMediaType) || IsValidation(err)
}

func IsUpstreamFailure(err error) bool {
	return errors.Is(err, ErrExtractionFailed) ||
		errors.Is(err, ErrEvaluationUnavailable) ||
		errors.Is(err, ErrEvaluationRejected)
}
