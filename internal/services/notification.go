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
	"github.com/tbamaint/hogrisk-backend/internal/types"
)

// listWindow caps how many notifications a recipient can page through.
const listWindow = 50

// NotificationService materializes notification rows for lifecycle events and
// serves the poll-read side. The event methods take the caller's transaction:
// fan-out is part of the same unit of work as the lifecycle mutation that
// triggered it, so a failed insert rolls the whole thing back.
type NotificationService interface {
	AssessmentCreated(ctx context.Context, tx *gorm.DB, assessment *types.Assessment, creatorName string) error
	AssessmentDecided(ctx context.Context, tx *gorm.DB, assessment *types.Assessment, approverName, reason string) error

	List(ctx context.Context) ([]*types.Notification, error)
	MarkRead(ctx context.Context, id uint) error
	MarkAllRead(ctx context.Context) error
}

type notificationService struct {
	db               *gorm.DB
	log              *logger.Logger
	notificationRepo repos.NotificationRepo
	userRepo         repos.UserRepo
	pendingRecipientRoles []access.Role
}

func NewNotificationService(db *gorm.DB, log *logger.Logger, notificationRepo repos.NotificationRepo, userRepo repos.UserRepo, pendingRecipientRoles []access.Role) NotificationService {
	serviceLog := log.With("service", "NotificationService")
	if len(pendingRecipientRoles) == 0 {
		pendingRecipientRoles = access.DefaultPendingRecipientRoles()
	}
	return &notificationService{
		db:                    db,
		log:                   serviceLog,
		notificationRepo:      notificationRepo,
		userRepo:              userRepo,
		pendingRecipientRoles: pendingRecipientRoles,
	}
}

func (ns *notificationService) AssessmentCreated(ctx context.Context, tx *gorm.DB, assessment *types.Assessment, creatorName string) error {
	recipients, err := ns.userRepo.ListActiveByRoles(ctx, tx, access.RoleStrings(ns.pendingRecipientRoles))
	if err != nil {
		return fmt.Errorf("list pending recipients: %w", err)
	}

	now := time.Now().UTC()
	rows := make([]*types.Notification, 0, len(recipients))
	for _, r := range recipients {
		rows = append(rows, &types.Notification{
			RecipientID:  r.ID,
			Type:         types.NotificationAssessmentPending,
			Title:        "New risk assessment awaiting approval",
			Message:      fmt.Sprintf("Risk assessment #%d by %s is awaiting your approval.", assessment.ID, creatorName),
			AssessmentID: assessment.ID,
			CreatedAt:    now,
		})
	}
	if len(rows) == 0 {
		ns.log.Debug("No active pending recipients, skipping fan-out", "assessment_id", assessment.ID)
		return nil
	}
	return ns.notificationRepo.Create(ctx, tx, rows)
}

func (ns *notificationService) AssessmentDecided(ctx context.Context, tx *gorm.DB, assessment *types.Assessment, approverName, reason string) error {
	var row *types.Notification
	switch assessment.Status {
	case types.StatusApproved:
		row = &types.Notification{
			RecipientID:  assessment.CreatedBy,
			Type:         types.NotificationAssessmentApproved,
			Title:        "Risk assessment approved",
			Message:      fmt.Sprintf("Your risk assessment #%d has been approved by %s.", assessment.ID, approverName),
			AssessmentID: assessment.ID,
			CreatedAt:    time.Now().UTC(),
		}
	case types.StatusRejected:
		msg := fmt.Sprintf("Your risk assessment #%d has been rejected by %s.", assessment.ID, approverName)
		if reason != "" {
			msg = fmt.Sprintf("%s Reason: %s", msg, reason)
		}
		row = &types.Notification{
			RecipientID:  assessment.CreatedBy,
			Type:         types.NotificationAssessmentRejected,
			Title:        "Risk assessment rejected",
			Message:      msg,
			AssessmentID: assessment.ID,
			CreatedAt:    time.Now().UTC(),
		}
	default:
		return fmt.Errorf("assessment %d is not decided (status %s)", assessment.ID, assessment.Status)
	}
	return ns.notificationRepo.Create(ctx, tx, []*types.Notification{row})
}

func (ns *notificationService) List(ctx context.Context) ([]*types.Notification, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apperr.Forbidden("no authenticated caller")
	}
	return ns.notificationRepo.ListByRecipient(ctx, nil, rd.UserID, listWindow)
}

func (ns *notificationService) MarkRead(ctx context.Context, id uint) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return apperr.Forbidden("no authenticated caller")
	}
	rows, err := ns.notificationRepo.MarkRead(ctx, nil, id, rd.UserID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperr.NotFound("notification %d not found", id)
	}
	return nil
}

func (ns *notificationService) MarkAllRead(ctx context.Context) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return apperr.Forbidden("no authenticated caller")
	}
	return ns.notificationRepo.MarkAllRead(ctx, nil, rd.UserID)
}
