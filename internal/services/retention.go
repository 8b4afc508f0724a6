package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbamaint/hogrisk-backend/internal/access"
	"github.com/tbamaint/hogrisk-backend/internal/apperr"
	"github.com/tbamaint/hogrisk-backend/internal/logger"
	"github.com/tbamaint/hogrisk-backend/internal/repos"
	"github.com/tbamaint/hogrisk-backend/internal/requestdata"
	"github.com/tbamaint/hogrisk-backend/internal/types"
)

const archivableListLimit = 500

// RetentionService handles the end-of-life side of the assessment record:
// marking rows archived once their retention window has passed and removing
// archived rows on explicit operator request. Nothing here runs automatically;
// the scheduled job only reports counts.
type RetentionService interface {
	Archive(ctx context.Context, id uint) (*types.Assessment, error)
	Delete(ctx context.Context, id uint) error
	ListArchivable(ctx context.Context) ([]*types.Assessment, error)
	LogRetentionStatus(ctx context.Context)
}

type retentionService struct {
	db             *gorm.DB
	log            *logger.Logger
	assessmentRepo repos.AssessmentRepo
}

func NewRetentionService(db *gorm.DB, log *logger.Logger, assessmentRepo repos.AssessmentRepo) RetentionService {
	return &retentionService{
		db:             db,
		log:            log.With("service", "RetentionService"),
		assessmentRepo: assessmentRepo,
	}
}

func requireAdmin(ctx context.Context) (*requestdata.RequestData, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apperr.Forbidden("no authenticated caller")
	}
	if !rd.Role.Can(access.CapAdmin) {
		return nil, apperr.Forbidden("role %s may not manage retention", rd.Role)
	}
	return rd, nil
}

// Archive flags the assessment as archived regardless of lifecycle status;
// a record stuck in Pending still ages out.
func (s *retentionService) Archive(ctx context.Context, id uint) (*types.Assessment, error) {
	rd, err := requireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	assessment, err := s.assessmentRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if assessment == nil {
		return nil, apperr.NotFound("assessment %d not found", id)
	}
	if assessment.Archived {
		return assessment, nil
	}

	rows, err := s.assessmentRepo.SetArchived(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, apperr.NotFound("assessment %d not found", id)
	}
	assessment.Archived = true
	s.log.Info("assessment archived", "assessment_id", id, "actor_id", rd.UserID)
	return assessment, nil
}

// Delete permanently removes an archived assessment. Archival is a hard
// precondition so there is always an explicit two-step trail before data
// leaves the system.
func (s *retentionService) Delete(ctx context.Context, id uint) error {
	rd, err := requireAdmin(ctx)
	if err != nil {
		return err
	}

	assessment, err := s.assessmentRepo.GetByID(ctx, nil, id)
	if err != nil {
		return err
	}
	if assessment == nil {
		return apperr.NotFound("assessment %d not found", id)
	}
	if !assessment.Archived {
		return apperr.Validation("assessment %d must be archived before deletion", id)
	}

	if err := s.assessmentRepo.Delete(ctx, nil, id); err != nil {
		return err
	}
	s.log.Info("assessment deleted", "assessment_id", id, "actor_id", rd.UserID)
	return nil
}

func (s *retentionService) ListArchivable(ctx context.Context) ([]*types.Assessment, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	return s.assessmentRepo.ListArchivable(ctx, nil, time.Now().UTC(), archivableListLimit)
}

// LogRetentionStatus reports how many unarchived rows have passed their
// retention date. Called from the scheduler with a background context, so it
// skips the caller check and performs no writes.
func (s *retentionService) LogRetentionStatus(ctx context.Context) {
	count, err := s.assessmentRepo.CountArchivable(ctx, nil, time.Now().UTC())
	if err != nil {
		s.log.Error("retention status check failed", "error", err)
		return
	}
	if count == 0 {
		s.log.Info("retention check: no assessments past retention window")
		return
	}
	s.log.Info("retention check: assessments eligible for archival", "count", count)
}
