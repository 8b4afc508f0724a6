package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/tbamaint/hogrisk-backend/internal/access"
	"github.com/tbamaint/hogrisk-backend/internal/apperr"
	"github.com/tbamaint/hogrisk-backend/internal/logger"
	"github.com/tbamaint/hogrisk-backend/internal/repos"
	"github.com/tbamaint/hogrisk-backend/internal/requestdata"
	"github.com/tbamaint/hogrisk-backend/internal/types"
)

// DocumentRenderer turns an assessment into a portable document.
type DocumentRenderer interface {
	Render(ctx context.Context, assessment *types.Assessment) ([]byte, string, error)
}

// ArchiveUploader ships a rendered document to long-term storage and
// returns its location.
type ArchiveUploader interface {
	Upload(ctx context.Context, name string, contentType string, body []byte) (string, error)
}

type RenderedDocument struct {
	ContentType string `json:"content_type"`
	Body        []byte `json:"-"`
	Location    string `json:"location,omitempty"`
}

type DocumentService interface {
	ExportDocument(ctx context.Context, assessmentID uint, upload bool) (*RenderedDocument, error)
}

type documentService struct {
	log            *logger.Logger
	assessmentRepo repos.AssessmentRepo
	renderer       DocumentRenderer
	uploader       ArchiveUploader
}

// NewDocumentService wires the optional rendering backends. Either dependency
// may be nil; the corresponding operation then fails with a validation error
// instead of at startup.
func NewDocumentService(log *logger.Logger, assessmentRepo repos.AssessmentRepo, renderer DocumentRenderer, uploader ArchiveUploader) DocumentService {
	return &documentService{
		log:            log.With("service", "DocumentService"),
		assessmentRepo: assessmentRepo,
		renderer:       renderer,
		uploader:       uploader,
	}
}

func (s *documentService) ExportDocument(ctx context.Context, assessmentID uint, upload bool) (*RenderedDocument, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apperr.Forbidden("no authenticated caller")
	}
	if s.renderer == nil {
		return nil, apperr.Validation("document rendering is not configured")
	}

	assessment, err := s.assessmentRepo.GetByID(ctx, nil, assessmentID)
	if err != nil {
		return nil, err
	}
	if assessment == nil {
		return nil, apperr.NotFound("assessment %d not found", assessmentID)
	}
	if assessment.CreatedBy != rd.UserID && !rd.Role.Can(access.CapViewAll) {
		return nil, apperr.Forbidden("role %s may only export own assessments", rd.Role)
	}

	body, contentType, err := s.renderer.Render(ctx, assessment)
	if err != nil {
		return nil, err
	}
	doc := &RenderedDocument{ContentType: contentType, Body: body}

	if upload {
		if s.uploader == nil {
			return nil, apperr.Validation("archive upload is not configured")
		}
		name := documentName(assessment)
		location, err := s.uploader.Upload(ctx, name, contentType, body)
		if err != nil {
			return nil, err
		}
		doc.Location = location
		s.log.Info("assessment document uploaded", "assessment_id", assessmentID, "location", location)
	}
	return doc, nil
}

func documentName(a *types.Assessment) string {
	return fmt.Sprintf("assessment-%s-%d", a.CreatedAt.UTC().Format("20060102"), a.ID)
}
