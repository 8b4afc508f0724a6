package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbamaint/hogrisk-backend/internal/access"
	"github.com/tbamaint/hogrisk-backend/internal/apperr"
	"github.com/tbamaint/hogrisk-backend/internal/logger"
	"github.com/tbamaint/hogrisk-backend/internal/repos"
	"github.com/tbamaint/hogrisk-backend/internal/requestdata"
	"github.com/tbamaint/hogrisk-backend/internal/risk"
	"github.com/tbamaint/hogrisk-backend/internal/types"
)

// retentionDays is how long a record must exist before it becomes archivable.
const retentionDays = 180

type CreateAssessmentInput struct {
	WorkDate      string          `json:"work_date"`
	WorkerName    string          `json:"worker_name"`
	Team          string          `json:"team"`
	Location      string          `json:"location"`
	Task          string          `json:"task"`
	Probability   int             `json:"probability"`
	Consequence   int             `json:"consequence"`
	Risks         string          `json:"risks"`
	Checklist     types.Checklist `json:"checklist"`
	Actions       string          `json:"actions"`
	FurtherAction bool            `json:"further_action"`
	FullAnalysis  bool            `json:"full_analysis"`
	Safe          types.Answer    `json:"safe"`
	Leader        string          `json:"leader"`
	Signature     string          `json:"signature"`
}

type CreateAssessmentResult struct {
	ID             uint                   `json:"id"`
	RiskScore      int                    `json:"risk_score"`
	RequiresLeader bool                   `json:"requires_leader"`
	LeaderProvided bool                   `json:"leader_provided"`
	Status         types.AssessmentStatus `json:"status"`
}

// ListAssessmentsFilter carries the caller-supplied listing constraints.
// Capability scoping on top of it happens inside the service.
type ListAssessmentsFilter struct {
	From     *time.Time
	To       *time.Time
	MineOnly bool
}

// AssessmentView is a record joined with its creator's display name.
type AssessmentView struct {
	types.Assessment
	CreatedByName string `json:"created_by_name"`
}

type AssessmentService interface {
	Create(ctx context.Context, in CreateAssessmentInput) (*CreateAssessmentResult, error)
	Transition(ctx context.Context, id uint, target types.AssessmentStatus, reason string) error
	List(ctx context.Context, filter ListAssessmentsFilter) ([]*AssessmentView, error)
	Get(ctx context.Context, id uint) (*AssessmentView, error)
}

type assessmentService struct {
	db             *gorm.DB
	log            *logger.Logger
	assessmentRepo repos.AssessmentRepo
	userRepo       repos.UserRepo
	notifications  NotificationService
}

func NewAssessmentService(db *gorm.DB, log *logger.Logger, assessmentRepo repos.AssessmentRepo, userRepo repos.UserRepo, notifications NotificationService) AssessmentService {
	serviceLog := log.With("service", "AssessmentService")
	return &assessmentService{
		db:             db,
		log:            serviceLog,
		assessmentRepo: assessmentRepo,
		userRepo:       userRepo,
		notifications:  notifications,
	}
}

func (as *assessmentService) Create(ctx context.Context, in CreateAssessmentInput) (*CreateAssessmentResult, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apperr.Forbidden("no authenticated caller")
	}

	if err := validateSubmission(&in); err != nil {
		return nil, err
	}

	outcome := risk.Evaluate(in.Probability, in.Consequence, in.Checklist, in.Safe)
	leaderProvided := in.Leader != "" && in.Signature != ""

	if outcome.RequiresApproval && !leaderProvided {
		return nil, apperr.Validation("leader approval required: supply leader name and signature")
	}

	now := time.Now().UTC()
	assessment := &types.Assessment{
		WorkDate:        in.WorkDate,
		WorkerName:      in.WorkerName,
		Team:            in.Team,
		Location:        in.Location,
		Task:            in.Task,
		Probability:     in.Probability,
		Consequence:     in.Consequence,
		RiskScore:       outcome.Score,
		Risks:           in.Risks,
		Checklist:       in.Checklist,
		Actions:         in.Actions,
		FurtherAction:   in.FurtherAction,
		FullAnalysis:    in.FullAnalysis,
		Safe:            in.Safe,
		Leader:          in.Leader,
		Signature:       in.Signature,
		RequiresLeader:  outcome.RequiresApproval,
		LeaderProvided:  leaderProvided,
		Status:          types.StatusPending,
		CreatedBy:       rd.UserID,
		CreatedAt:       now,
		ArchivableAfter: now.AddDate(0, 0, retentionDays),
	}

	// Record insert and approver fan-out share one transaction: either the
	// record exists with its notifications, or neither does.
	if err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := as.assessmentRepo.Create(ctx, tx, assessment); err != nil {
			return fmt.Errorf("persist assessment: %w", err)
		}
		if err := as.notifications.AssessmentCreated(ctx, tx, assessment, rd.Name); err != nil {
			return fmt.Errorf("fan out creation: %w", err)
		}
		return nil
	}); err != nil {
		as.log.Warn("Create transaction failed", "error", err)
		return nil, err
	}

	as.log.Info("Assessment created",
		"assessment_id", assessment.ID,
		"risk_score", assessment.RiskScore,
		"requires_leader", assessment.RequiresLeader,
	)

	return &CreateAssessmentResult{
		ID:             assessment.ID,
		RiskScore:      assessment.RiskScore,
		RequiresLeader: assessment.RequiresLeader,
		LeaderProvided: assessment.LeaderProvided,
		Status:         assessment.Status,
	}, nil
}

func validateSubmission(in *CreateAssessmentInput) error {
	if in.WorkDate == "" {
		return apperr.Validation("work date is required")
	}
	if in.WorkerName == "" {
		return apperr.Validation("worker name is required")
	}
	if !risk.ScaleInRange(in.Probability) {
		return apperr.Validation("probability must be between %d and %d", risk.ScaleMin, risk.ScaleMax)
	}
	if !risk.ScaleInRange(in.Consequence) {
		return apperr.Validation("consequence must be between %d and %d", risk.ScaleMin, risk.ScaleMax)
	}
	if len(in.Checklist) > risk.ChecklistLength {
		return apperr.Validation("checklist has %d answers, expected at most %d", len(in.Checklist), risk.ChecklistLength)
	}
	for i, a := range in.Checklist {
		if !a.Valid() {
			return apperr.Validation("checklist answer %d is invalid", i)
		}
	}
	if in.Safe != types.AnswerYes && in.Safe != types.AnswerNo {
		return apperr.Validation("safety verdict must be Yes or No")
	}
	// Pad short submissions so stored arrays always have the fixed length.
	for len(in.Checklist) < risk.ChecklistLength {
		in.Checklist = append(in.Checklist, types.AnswerUnanswered)
	}
	return nil
}

func (as *assessmentService) Transition(ctx context.Context, id uint, target types.AssessmentStatus, reason string) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return apperr.Forbidden("no authenticated caller")
	}
	if !rd.Role.Can(access.CapApprove) {
		return apperr.Forbidden("role %s may not approve or reject assessments", rd.Role)
	}
	if target != types.StatusApproved && target != types.StatusRejected {
		return apperr.Validation("invalid target status %q", target)
	}

	err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := as.assessmentRepo.GetByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return apperr.NotFound("assessment %d not found", id)
		}

		rows, err := as.assessmentRepo.Transition(ctx, tx, id, target, rd.UserID, time.Now().UTC())
		if err != nil {
			return err
		}
		if rows == 0 {
			return apperr.Conflict("assessment %d is already %s", id, existing.Status)
		}

		existing.Status = target
		if target == types.StatusApproved {
			reason = ""
		}
		if err := as.notifications.AssessmentDecided(ctx, tx, existing, rd.Name, reason); err != nil {
			return fmt.Errorf("fan out decision: %w", err)
		}
		return nil
	})
	if err != nil {
		if apperr.KindOf(err) == apperr.KindInternal {
			as.log.Warn("Transition transaction failed", "assessment_id", id, "error", err)
		}
		return err
	}

	as.log.Info("Assessment transitioned", "assessment_id", id, "status", target)
	return nil
}

func (as *assessmentService) List(ctx context.Context, filter ListAssessmentsFilter) ([]*AssessmentView, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apperr.Forbidden("no authenticated caller")
	}

	repoFilter := repos.AssessmentFilter{From: filter.From, To: filter.To}
	if filter.MineOnly || !rd.Role.Can(access.CapViewAll) {
		self := rd.UserID
		repoFilter.CreatedBy = &self
	}

	assessments, err := as.assessmentRepo.List(ctx, nil, repoFilter)
	if err != nil {
		return nil, err
	}
	return as.joinCreatorNames(ctx, assessments)
}

func (as *assessmentService) Get(ctx context.Context, id uint) (*AssessmentView, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apperr.Forbidden("no authenticated caller")
	}

	assessment, err := as.assessmentRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if assessment == nil {
		return nil, apperr.NotFound("assessment %d not found", id)
	}
	if !rd.Role.Can(access.CapViewAll) && assessment.CreatedBy != rd.UserID {
		return nil, apperr.Forbidden("assessment %d belongs to another submitter", id)
	}

	views, err := as.joinCreatorNames(ctx, []*types.Assessment{assessment})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func (as *assessmentService) joinCreatorNames(ctx context.Context, assessments []*types.Assessment) ([]*AssessmentView, error) {
	ids := make([]uuid.UUID, 0, len(assessments))
	seen := make(map[uuid.UUID]struct{}, len(assessments))
	for _, a := range assessments {
		if _, ok := seen[a.CreatedBy]; !ok {
			seen[a.CreatedBy] = struct{}{}
			ids = append(ids, a.CreatedBy)
		}
	}
	creators, err := as.userRepo.GetByIDs(ctx, nil, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch creators: %w", err)
	}
	names := make(map[uuid.UUID]string, len(creators))
	for _, u := range creators {
		names[u.ID] = u.Name
	}

	views := make([]*AssessmentView, 0, len(assessments))
	for _, a := range assessments {
		views = append(views, &AssessmentView{Assessment: *a, CreatedByName: names[a.CreatedBy]})
	}
	return views, nil
}
