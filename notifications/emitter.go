package notifications

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/medisys-health/diagnostics/reports"
)

type Emitter struct {
	queue  Queue
	logger *zap.SugaredLogger
	now    func() time.Time
}

func NewEmitter(queue Queue, logger *zap.SugaredLogger) *Emitter {
	return &Emitter{
		queue:  queue,
		logger: logger,
		now:    time.Now,
	}
}

// Emit enqueues a new report notification and returns the message id.
// Failures are returned to the caller, the report stays persisted.
func (e *Emitter) Emit(ctx context.Context, report reports.Report) (string, error) {
	payload := NewPayload(report, e.now())
	messageId, err := e.queue.Enqueue(ctx, payload, NewAttributes(report))
	if err != nil {
		e.logger.Errorw("unable to enqueue report notification", "reportId", report.ReportId, "clinicId", report.ClinicId, zap.Error(err))
		return "", err
	}

	e.logger.Infow("report notification enqueued", "reportId", report.ReportId, "messageId", messageId)
	return messageId, nil
}
