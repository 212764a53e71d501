package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/acequiz-backend/internal/catalog"
	"github.com/stemsi/acequiz-backend/internal/model"
	"github.com/stemsi/acequiz-backend/internal/response"
	"github.com/stemsi/acequiz-backend/internal/service"
	"github.com/stemsi/acequiz-backend/internal/validator"
)

// PortalHandler drives the candidate through the selection stages.
type PortalHandler struct {
	portal *service.PortalService
	media  *service.MediaService
	log    zerolog.Logger
}

// NewPortalHandler creates a new PortalHandler.
func NewPortalHandler(portal *service.PortalService, media *service.MediaService, log zerolog.Logger) *PortalHandler {
	return &PortalHandler{
		portal: portal,
		media:  media,
		log:    log.With().Str("component", "portal_handler").Logger(),
	}
}

// reply sends the portal view, or the error with the unchanged view.
func reply(c *gin.Context, view service.PortalView, err error) {
	if err != nil {
		failWithView(c, err, view)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// bindStep binds and validates the payload, then runs the step.
func bindStep[T any](c *gin.Context, step func(T) (service.PortalView, error)) {
	var req T
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	view, err := step(req)
	reply(c, view, err)
}

// GetPortal godoc
// GET /api/v1/portal
// Returns the current stage, the choices so far and the options for this stage.
func (h *PortalHandler) GetPortal(c *gin.Context) {
	response.Success(c, http.StatusOK, h.portal.View())
}

// SubmitIdentity godoc
// POST /api/v1/portal/identity
func (h *PortalHandler) SubmitIdentity(c *gin.Context) {
	bindStep(c, h.portal.SubmitIdentity)
}

// ChoosePath godoc
// POST /api/v1/portal/path
func (h *PortalHandler) ChoosePath(c *gin.Context) {
	bindStep(c, h.portal.ChoosePath)
}

// ChooseClassAndBoard godoc
// POST /api/v1/portal/class-board
func (h *PortalHandler) ChooseClassAndBoard(c *gin.Context) {
	bindStep(c, h.portal.ChooseClassAndBoard)
}

// ChooseSubject godoc
// POST /api/v1/portal/subject
func (h *PortalHandler) ChooseSubject(c *gin.Context) {
	bindStep(c, h.portal.ChooseSubject)
}

// ChooseMaterialType godoc
// POST /api/v1/portal/material-type
func (h *PortalHandler) ChooseMaterialType(c *gin.Context) {
	bindStep(c, h.portal.ChooseMaterialType)
}

// SelectQuestionSet godoc
// POST /api/v1/portal/question-set
// Unprotected sets start the exam immediately; protected ones wait for /access.
func (h *PortalHandler) SelectQuestionSet(c *gin.Context) {
	bindStep(c, h.portal.SelectQuestionSet)
}

// Authenticate godoc
// POST /api/v1/portal/access
func (h *PortalHandler) Authenticate(c *gin.Context) {
	bindStep(c, h.portal.Authenticate)
}

// GoBack godoc
// POST /api/v1/portal/back
func (h *PortalHandler) GoBack(c *gin.Context) {
	view, err := h.portal.GoBack()
	reply(c, view, err)
}

// Restart godoc
// POST /api/v1/portal/restart
// An empty body resumes at the path choice.
func (h *PortalHandler) Restart(c *gin.Context) {
	var req model.RestartRequest
	if c.Request.ContentLength > 0 {
		if fields := validator.Bind(c, &req); fields != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
			return
		}
	}
	view, err := h.portal.Restart(req)
	reply(c, view, err)
}

// UploadPhoto godoc
// POST /api/v1/portal/photo
// Stores the candidate photo and attaches its URI to the identity.
func (h *PortalHandler) UploadPhoto(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	defer file.Close()

	uri, err := h.media.SavePhoto(file, header)
	if err != nil {
		status, code := classify(err)
		if status == http.StatusInternalServerError {
			h.log.Error().Err(err).Msg("Failed to store photo")
		}
		response.Fail(c, status, code)
		return
	}

	view, err := h.portal.SetPhoto(uri)
	reply(c, view, err)
}

// ListQuestionSets godoc
// GET /api/v1/question-sets
// Lists available sets; every query parameter is an optional filter.
func (h *PortalHandler) ListQuestionSets(c *gin.Context) {
	var q model.QuestionSetQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sets := h.portal.ListQuestionSets(catalog.Filter{
		Path:         q.Path,
		Class:        q.Class,
		Board:        q.Board,
		Subject:      q.Subject,
		MaterialType: q.MaterialType,
	})
	response.Success(c, http.StatusOK, gin.H{"question_sets": sets})
}
