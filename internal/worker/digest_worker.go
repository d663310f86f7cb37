package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/service"
)

// DigestWorker posts a periodic status summary to the admin chat.
type DigestWorker struct {
	grievances *service.GrievanceService
	telegram   service.TelegramChannel
	schedule   string
	cron       *cron.Cron
	logger     *zap.Logger
}

// NewDigestWorker constructs the worker. An empty schedule disables it.
func NewDigestWorker(grievances *service.GrievanceService, telegramChannel service.TelegramChannel, schedule string, logger *zap.Logger) *DigestWorker {
	return &DigestWorker{
		grievances: grievances,
		telegram:   telegramChannel,
		schedule:   schedule,
		logger:     logger,
	}
}

// Start schedules the digest job.
func (w *DigestWorker) Start() error {
	if w.schedule == "" || w.telegram == nil || !w.telegram.Enabled() {
		return nil
	}
	w.cron = cron.New()
	if _, err := w.cron.AddFunc(w.schedule, w.runOnce); err != nil {
		return fmt.Errorf("invalid digest schedule %q: %w", w.schedule, err)
	}
	w.cron.Start()
	w.logger.Info("digest worker started", zap.String("schedule", w.schedule))
	return nil
}

// Stop halts the scheduler and waits for a running job to finish.
func (w *DigestWorker) Stop() {
	if w.cron == nil {
		return
	}
	<-w.cron.Stop().Done()
}

func (w *DigestWorker) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	counts, err := w.grievances.StatusCounts(ctx)
	if err != nil {
		w.logger.Warn("digest status counts failed", zap.Error(err))
		return
	}

	var total int64
	for _, count := range counts {
		total += count
	}
	text := fmt.Sprintf(
		"📊 <b>Daily grievance summary</b>\n"+
			"Pending: %d\nIn-Progress: %d\nCompleted: %d\nRejected: %d\nTotal: %d",
		counts[domain.StatusPending],
		counts[domain.StatusInProgress],
		counts[domain.StatusCompleted],
		counts[domain.StatusRejected],
		total,
	)
	if _, err := w.telegram.SendMessage(ctx, w.telegram.AdminChatID(), text, nil); err != nil {
		w.logger.Warn("digest send failed", zap.Error(err))
	}
}
