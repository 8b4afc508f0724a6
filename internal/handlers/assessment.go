package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbamaint/hogrisk-backend/internal/apperr"
	"github.com/tbamaint/hogrisk-backend/internal/logger"
	"github.com/tbamaint/hogrisk-backend/internal/services"
	"github.com/tbamaint/hogrisk-backend/internal/types"
)

type AssessmentHandler struct {
	log               *logger.Logger
	assessmentService services.AssessmentService
	retentionService  services.RetentionService
	documentService   services.DocumentService
}

func NewAssessmentHandler(log *logger.Logger, assessmentService services.AssessmentService, retentionService services.RetentionService, documentService services.DocumentService) *AssessmentHandler {
	return &AssessmentHandler{
		log:               log.With("handler", "AssessmentHandler"),
		assessmentService: assessmentService,
		retentionService:  retentionService,
		documentService:   documentService,
	}
}

func (h *AssessmentHandler) Create(c *gin.Context) {
	var in services.CreateAssessmentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, apperr.Validation("invalid request body: %v", err))
		return
	}
	result, err := h.assessmentService.Create(c.Request.Context(), in)
	if err != nil {
		h.log.Error("Create failed", "error", err)
		RespondError(c, err)
		return
	}
	RespondCreated(c, result)
}

func (h *AssessmentHandler) List(c *gin.Context) {
	filter := services.ListAssessmentsFilter{
		MineOnly: c.Query("mine") == "true",
	}
	if from, ok := parseDateQuery(c, "from"); ok {
		filter.From = from
	} else {
		return
	}
	if to, ok := parseDateQuery(c, "to"); ok {
		if to != nil {
			// Inclusive end date: cover the whole named day.
			end := to.AddDate(0, 0, 1).Add(-time.Nanosecond)
			filter.To = &end
		}
	} else {
		return
	}

	views, err := h.assessmentService.List(c.Request.Context(), filter)
	if err != nil {
		h.log.Error("List failed", "error", err)
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"assessments": views})
}

func (h *AssessmentHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	view, err := h.assessmentService.Get(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"assessment": view})
}

func (h *AssessmentHandler) Approve(c *gin.Context) {
	h.transition(c, types.StatusApproved)
}

func (h *AssessmentHandler) Reject(c *gin.Context) {
	h.transition(c, types.StatusRejected)
}

func (h *AssessmentHandler) transition(c *gin.Context, target types.AssessmentStatus) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var body struct {
		Reason string `json:"reason"`
	}
	// The body is optional; a bare POST means no reason given.
	_ = c.ShouldBindJSON(&body)

	if err := h.assessmentService.Transition(c.Request.Context(), id, target, body.Reason); err != nil {
		h.log.Error("Transition failed", "error", err, "assessment_id", id, "target", target)
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"id": id, "status": target})
}

func (h *AssessmentHandler) Archive(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	assessment, err := h.retentionService.Archive(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"assessment": assessment})
}

func (h *AssessmentHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.retentionService.Delete(c.Request.Context(), id); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"id": id, "deleted": true})
}

func (h *AssessmentHandler) ExportDocument(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	doc, err := h.documentService.ExportDocument(c.Request.Context(), id, c.Query("upload") == "true")
	if err != nil {
		RespondError(c, err)
		return
	}
	if doc.Location != "" {
		RespondOK(c, gin.H{"location": doc.Location})
		return
	}
	c.Data(http.StatusOK, doc.ContentType, doc.Body)
}

func (h *AssessmentHandler) Archivable(c *gin.Context) {
	assessments, err := h.retentionService.ListArchivable(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"assessments": assessments})
}

func parseIDParam(c *gin.Context) (uint, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		RespondError(c, apperr.Validation("invalid assessment id %q", raw))
		return 0, false
	}
	return uint(id), true
}

// parseDateQuery reads an optional YYYY-MM-DD query parameter. The bool is
// false only when the parameter was present and malformed, in which case the
// error response has already been written.
func parseDateQuery(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		RespondError(c, apperr.Validation("invalid %s date %q, expected YYYY-MM-DD", name, raw))
		return nil, false
	}
	return &t, true
}
