package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/acequiz-backend/internal/identity"
	"github.com/stemsi/acequiz-backend/internal/response"
	"github.com/stemsi/acequiz-backend/internal/service"
)

// CertificateHandler verifies and looks up issued certificates.
type CertificateHandler struct {
	certs *service.CertificateService
	log   zerolog.Logger
}

// NewCertificateHandler creates a new CertificateHandler.
func NewCertificateHandler(certs *service.CertificateService, log zerolog.Logger) *CertificateHandler {
	return &CertificateHandler{
		certs: certs,
		log:   log.With().Str("component", "certificate_handler").Logger(),
	}
}

// Verify godoc
// GET /api/v1/certificates/verify?token=
func (h *CertificateHandler) Verify(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
			map[string]string{"token": "token is required"})
		return
	}

	claims, err := h.certs.Verify(token)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"valid":           true,
		"serial":          claims.ID,
		"candidate_name":  claims.CandidateName,
		"candidate_id":    claims.CandidateID,
		"question_set_id": claims.QuestionSetID,
		"total_questions": claims.Total,
		"score":           claims.Score,
		"result":          claims.Result,
	})
}

// GetBySerial godoc
// GET /api/v1/certificates/:serial
func (h *CertificateHandler) GetBySerial(c *gin.Context) {
	serial, err := uuid.Parse(c.Param("serial"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	rec, err := h.certs.Lookup(c.Request.Context(), serial)
	if err != nil {
		h.logUnexpected(err)
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, rec)
}

// ListByCandidate godoc
// GET /api/v1/certificates?candidate_id=
func (h *CertificateHandler) ListByCandidate(c *gin.Context) {
	id := identity.Normalize(c.Query("candidate_id"))
	if !identity.Valid(id) {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidIdentity)
		return
	}

	recs, err := h.certs.ListByCandidate(c.Request.Context(), id)
	if err != nil {
		h.logUnexpected(err)
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"certificates": recs})
}

func (h *CertificateHandler) logUnexpected(err error) {
	if status, _ := classify(err); status == http.StatusInternalServerError {
		h.log.Error().Err(err).Msg("Certificate archive query failed")
	}
}
