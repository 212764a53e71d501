package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/acequiz-backend/internal/model"
	"github.com/stemsi/acequiz-backend/internal/response"
	"github.com/stemsi/acequiz-backend/internal/service"
	"github.com/stemsi/acequiz-backend/internal/validator"
)

// ExamHandler serves the running exam and its result.
type ExamHandler struct {
	portal *service.PortalService
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(portal *service.PortalService) *ExamHandler {
	return &ExamHandler{portal: portal}
}

// GetExam godoc
// GET /api/v1/exam
// Returns questions (without answer keys), cursor, answers and remaining time.
func (h *ExamHandler) GetExam(c *gin.Context) {
	view, err := h.portal.Exam()
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// SelectAnswer godoc
// POST /api/v1/exam/answers
func (h *ExamHandler) SelectAnswer(c *gin.Context) {
	var req model.SelectAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	view, err := h.portal.SelectAnswer(req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// Navigate godoc
// POST /api/v1/exam/navigate
func (h *ExamHandler) Navigate(c *gin.Context) {
	var req model.NavigateRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	view, err := h.portal.Navigate(req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// Finish godoc
// POST /api/v1/exam/finish
// Ends the exam and returns the outcome. Repeating the call is harmless.
func (h *ExamHandler) Finish(c *gin.Context) {
	out, err := h.portal.Finish()
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

// GetResult godoc
// GET /api/v1/exam/result
func (h *ExamHandler) GetResult(c *gin.Context) {
	out, err := h.portal.Outcome()
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

// GetCertificate godoc
// GET /api/v1/exam/certificate
// Returns the data a certificate renderer needs; layout is up to the client.
func (h *ExamHandler) GetCertificate(c *gin.Context) {
	out, err := h.portal.Outcome()
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"certificate": out.Certificate})
}
