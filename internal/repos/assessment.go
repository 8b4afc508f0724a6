package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbamaint/hogrisk-backend/internal/logger"
	"github.com/tbamaint/hogrisk-backend/internal/types"
)

// AssessmentFilter narrows List. A nil field means "no constraint".
type AssessmentFilter struct {
	From      *time.Time
	To        *time.Time
	CreatedBy *uuid.UUID
}

type AssessmentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, assessment *types.Assessment) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*types.Assessment, error)
	List(ctx context.Context, tx *gorm.DB, filter AssessmentFilter) ([]*types.Assessment, error)
	ListCreatedSince(ctx context.Context, tx *gorm.DB, since time.Time) ([]*types.Assessment, error)
	ListHighRisk(ctx context.Context, tx *gorm.DB, minScore int) ([]*types.Assessment, error)
	// Transition flips a Pending record to the target status, stamping the
	// approver and time. The status precondition lives in the UPDATE itself
	// so two concurrent decisions cannot both win; the returned count is 0
	// when the record was not Pending (or does not exist).
	Transition(ctx context.Context, tx *gorm.DB, id uint, target types.AssessmentStatus, actorID uuid.UUID, at time.Time) (int64, error)
	SetArchived(ctx context.Context, tx *gorm.DB, id uint) (int64, error)
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	ListArchivable(ctx context.Context, tx *gorm.DB, now time.Time, limit int) ([]*types.Assessment, error)
	CountArchivable(ctx context.Context, tx *gorm.DB, now time.Time) (int64, error)
}

type assessmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAssessmentRepo(db *gorm.DB, baseLog *logger.Logger) AssessmentRepo {
	repoLog := baseLog.With("repo", "AssessmentRepo")
	return &assessmentRepo{db: db, log: repoLog}
}

func (ar *assessmentRepo) Create(ctx context.Context, tx *gorm.DB, assessment *types.Assessment) error {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	return transaction.WithContext(ctx).Create(assessment).Error
}

func (ar *assessmentRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*types.Assessment, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	var result types.Assessment
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (ar *assessmentRepo) List(ctx context.Context, tx *gorm.DB, filter AssessmentFilter) ([]*types.Assessment, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	q := transaction.WithContext(ctx).Model(&types.Assessment{})
	if filter.From != nil {
		q = q.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("created_at <= ?", *filter.To)
	}
	if filter.CreatedBy != nil {
		q = q.Where("created_by = ?", *filter.CreatedBy)
	}

	var results []*types.Assessment
	if err := q.Order("created_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ar *assessmentRepo) ListCreatedSince(ctx context.Context, tx *gorm.DB, since time.Time) ([]*types.Assessment, error) {
	return ar.List(ctx, tx, AssessmentFilter{From: &since})
}

func (ar *assessmentRepo) ListHighRisk(ctx context.Context, tx *gorm.DB, minScore int) ([]*types.Assessment, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	var results []*types.Assessment
	if err := transaction.WithContext(ctx).
		Where("risk_score >= ?", minScore).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ar *assessmentRepo) Transition(ctx context.Context, tx *gorm.DB, id uint, target types.AssessmentStatus, actorID uuid.UUID, at time.Time) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	res := transaction.WithContext(ctx).
		Model(&types.Assessment{}).
		Where("id = ? AND status = ?", id, types.StatusPending).
		Updates(map[string]interface{}{
			"status":      target,
			"approved_by": actorID,
			"approved_at": at,
		})
	return res.RowsAffected, res.Error
}

func (ar *assessmentRepo) SetArchived(ctx context.Context, tx *gorm.DB, id uint) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	res := transaction.WithContext(ctx).
		Model(&types.Assessment{}).
		Where("id = ?", id).
		Update("archived", true)
	return res.RowsAffected, res.Error
}

func (ar *assessmentRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	return transaction.WithContext(ctx).
		Where("id = ?", id).
		Delete(&types.Assessment{}).Error
}

func (ar *assessmentRepo) ListArchivable(ctx context.Context, tx *gorm.DB, now time.Time, limit int) ([]*types.Assessment, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	var results []*types.Assessment
	if err := transaction.WithContext(ctx).
		Where("archivable_after <= ? AND archived = ?", now, false).
		Order("created_at ASC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ar *assessmentRepo) CountArchivable(ctx context.Context, tx *gorm.DB, now time.Time) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Assessment{}).
		Where("archivable_after <= ? AND archived = ?", now, false).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
