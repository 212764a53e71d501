package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/acequiz-backend/internal/catalog"
	"github.com/stemsi/acequiz-backend/internal/certificate"
	"github.com/stemsi/acequiz-backend/internal/exam"
	"github.com/stemsi/acequiz-backend/internal/repository"
	"github.com/stemsi/acequiz-backend/internal/response"
	"github.com/stemsi/acequiz-backend/internal/selection"
	"github.com/stemsi/acequiz-backend/internal/service"
)

// classify maps a domain error to its HTTP status and error code.
func classify(err error) (int, response.ErrCode) {
	switch {
	// ─── Selection ─────────────────────────────────────────────────────
	case errors.Is(err, selection.ErrInvalidIdentity):
		return http.StatusBadRequest, response.ErrInvalidIdentity
	case errors.Is(err, selection.ErrIncompleteSelection):
		return http.StatusBadRequest, response.ErrIncompleteSelection
	case errors.Is(err, selection.ErrInvalidChoice):
		return http.StatusBadRequest, response.ErrInvalidChoice
	case errors.Is(err, selection.ErrIllegalTransition):
		return http.StatusConflict, response.ErrIllegalTransition
	case errors.Is(err, selection.ErrSetUnavailable),
		errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, exam.ErrNoQuestions):
		return http.StatusNotFound, response.ErrSetUnavailable
	case errors.Is(err, selection.ErrAccessDenied):
		return http.StatusForbidden, response.ErrAccessDenied
	case errors.Is(err, selection.ErrReattemptNotAllowed):
		return http.StatusConflict, response.ErrReattemptNotAllowed

	// ─── Exam ──────────────────────────────────────────────────────────
	case errors.Is(err, service.ErrNoActiveExam):
		return http.StatusNotFound, response.ErrNoActiveExam
	case errors.Is(err, service.ErrExamNotFinished):
		return http.StatusConflict, response.ErrExamNotFinished
	case errors.Is(err, exam.ErrNotRunning):
		return http.StatusConflict, response.ErrExamNotRunning
	case errors.Is(err, exam.ErrUnknownQuestion):
		return http.StatusBadRequest, response.ErrUnknownQuestion
	case errors.Is(err, exam.ErrOptionOutOfRange):
		return http.StatusBadRequest, response.ErrOptionOutOfRange
	case errors.Is(err, service.ErrOptionRequired):
		return http.StatusBadRequest, response.ErrValidation

	// ─── Certificates ──────────────────────────────────────────────────
	case errors.Is(err, certificate.ErrInvalidToken):
		return http.StatusBadRequest, response.ErrCertificateInvalid
	case errors.Is(err, service.ErrArchiveUnavailable):
		return http.StatusServiceUnavailable, response.ErrArchiveUnavailable
	case errors.Is(err, repository.ErrCertificateNotFound):
		return http.StatusNotFound, response.ErrNotFound

	// ─── Media ─────────────────────────────────────────────────────────
	case errors.Is(err, service.ErrUnsupportedFileType):
		return http.StatusBadRequest, response.ErrUnsupportedFile
	case errors.Is(err, service.ErrFileTooLarge):
		return http.StatusBadRequest, response.ErrFileTooLarge
	}
	return http.StatusInternalServerError, response.ErrInternal
}

func fail(c *gin.Context, err error) {
	status, code := classify(err)
	response.Fail(c, status, code)
}

// failWithView reports a rejected portal step together with the unchanged
// portal state.
func failWithView(c *gin.Context, err error, view interface{}) {
	status, code := classify(err)
	response.FailWithData(c, status, code, view)
}
