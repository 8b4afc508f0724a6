package jobs

import (
	"context"

	"github.com/robfig/cron/v3"

	"github.com/tbamaint/hogrisk-backend/internal/logger"
	"github.com/tbamaint/hogrisk-backend/internal/services"
)

// Retention check runs nightly at 03:00. It only reports; archival and
// deletion stay manual operations.
const retentionSchedule = "0 3 * * *"

type RetentionJob struct {
	log       *logger.Logger
	retention services.RetentionService
	cron      *cron.Cron
}

func NewRetentionJob(log *logger.Logger, retention services.RetentionService) *RetentionJob {
	return &RetentionJob{
		log:       log.With("job", "RetentionJob"),
		retention: retention,
		cron:      cron.New(),
	}
}

func (j *RetentionJob) Start() error {
	_, err := j.cron.AddFunc(retentionSchedule, func() {
		j.retention.LogRetentionStatus(context.Background())
	})
	if err != nil {
		return err
	}
	j.cron.Start()
	j.log.Info("retention job scheduled", "schedule", retentionSchedule)
	return nil
}

// Stop halts the scheduler and waits for a running check to finish.
func (j *RetentionJob) Stop() {
	ctx := j.cron.Stop()
	<-ctx.Done()
	j.log.Info("retention job stopped")
}
