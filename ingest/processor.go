package ingest

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/medisys-health/diagnostics/landing"
	"github.com/medisys-health/diagnostics/reports"
)

const (
	FileStatusProcessed = "processed"
	FileStatusSkipped   = "skipped"
	FileStatusFailed    = "failed"
)

//go:generate go tool mockgen -source=./processor.go -destination=./test/mock_processor.go -package test

// Notifier publishes a persisted report to polling consumers
type Notifier interface {
	Emit(ctx context.Context, report reports.Report) (string, error)
}

// Mailer emails staff about a persisted report. It returns false if nothing was sent.
type Mailer interface {
	NotifyNewReport(ctx context.Context, report reports.Report) (bool, error)
}

type ReportOutcome struct {
	ReportId  string `json:"report_id"`
	PatientId string `json:"patient_id"`
	ClinicId  string `json:"clinic_id"`
	Persisted bool   `json:"persisted"`
	Notified  bool   `json:"notified"`
	Emailed   bool   `json:"emailed"`
	Error     string `json:"error,omitempty"`
}

type FileOutcome struct {
	Bucket  string          `json:"bucket"`
	Key     string          `json:"key"`
	Status  string          `json:"status"`
	Reports []ReportOutcome `json:"reports"`
	Error   string          `json:"error,omitempty"`
}

func (f FileOutcome) Processed() bool {
	return f.Status == FileStatusProcessed
}

// Persisted returns the number of reports of the file that were stored
func (f FileOutcome) Persisted() int {
	count := 0
	for _, report := range f.Reports {
		if report.Persisted {
			count++
		}
	}
	return count
}

type Summary struct {
	ProcessedFiles int           `json:"processed_files"`
	Files          []FileOutcome `json:"files"`
}

type Processor struct {
	objects    landing.ObjectStore
	repository reports.Repository
	notifier   Notifier
	mailer     Mailer
	normalizer *Normalizer
	resolver   *ClinicResolver
	metrics    *Metrics
	logger     *zap.SugaredLogger
	now        func() time.Time
}

func NewProcessor(objects landing.ObjectStore, repository reports.Repository, notifier Notifier, mailer Mailer, resolver *ClinicResolver, metrics *Metrics, logger *zap.SugaredLogger) *Processor {
	return &Processor{
		objects:    objects,
		repository: repository,
		notifier:   notifier,
		mailer:     mailer,
		normalizer: NewNormalizer(logger),
		resolver:   resolver,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
	}
}

// ProcessEvent handles an object created trigger. Files are processed one after
// the other and a failed file does not stop the remaining ones.
func (p *Processor) ProcessEvent(ctx context.Context, raw []byte) (Summary, error) {
	refs, err := ParseEvent(raw)
	if err != nil {
		return Summary{}, err
	}
	return p.Process(ctx, refs), nil
}

func (p *Processor) Process(ctx context.Context, refs []ObjectRef) Summary {
	summary := Summary{Files: make([]FileOutcome, 0, len(refs))}
	for _, ref := range refs {
		outcome := p.ProcessObject(ctx, ref)
		if outcome.Processed() {
			summary.ProcessedFiles++
		}
		summary.Files = append(summary.Files, outcome)
	}

	p.logger.Infow("ingestion finished", "files", len(refs), "processedFiles", summary.ProcessedFiles)
	return summary
}

// ProcessObject downloads an upload from the landing zone and ingests it
func (p *Processor) ProcessObject(ctx context.Context, ref ObjectRef) FileOutcome {
	logger := p.logger.With("bucket", ref.Bucket, "key", ref.Key)
	if outcome, ok := p.precheck(ref); !ok {
		return p.finish(logger, outcome)
	}

	content, err := p.objects.Get(ctx, ref.Bucket, ref.Key)
	if err != nil {
		return p.finish(logger, failed(ref, fmt.Errorf("unable to download file: %w", err)))
	}

	return p.ingest(ctx, logger, ref, content)
}

// ProcessContent ingests an upload whose content was already read, e.g. a local
// file passed to the command line
func (p *Processor) ProcessContent(ctx context.Context, ref ObjectRef, content []byte) FileOutcome {
	logger := p.logger.With("bucket", ref.Bucket, "key", ref.Key)
	if outcome, ok := p.precheck(ref); !ok {
		return p.finish(logger, outcome)
	}
	return p.ingest(ctx, logger, ref, content)
}

func (p *Processor) precheck(ref ObjectRef) (FileOutcome, bool) {
	if !p.resolver.IsUpload(ref.Key) {
		return skipped(ref, "file is not in an upload folder"), false
	}
	switch FormatOf(ref.Key) {
	case FormatCSV, FormatXLSX:
		return FileOutcome{}, true
	case FormatXLS:
		return failed(ref, fmt.Errorf("%w: legacy xls workbooks are not supported", ErrUnsupportedFormat)), false
	default:
		return skipped(ref, "file extension is not supported"), false
	}
}

func (p *Processor) ingest(ctx context.Context, logger *zap.SugaredLogger, ref ObjectRef, content []byte) FileOutcome {
	if len(content) == 0 {
		return p.finish(logger, failed(ref, fmt.Errorf("%w: file is empty", ErrDataAnomaly)))
	}

	source, err := p.rowSource(ref.Key, content)
	if err != nil {
		return p.finish(logger, failed(ref, err))
	}

	drafts, err := p.normalizer.Normalize(source)
	if err != nil {
		return p.finish(logger, failed(ref, err))
	}
	if len(drafts) == 0 {
		return p.finish(logger, failed(ref, fmt.Errorf("%w: no valid patient reports found", ErrDataAnomaly)))
	}

	outcome := FileOutcome{
		Bucket:  ref.Bucket,
		Key:     ref.Key,
		Reports: make([]ReportOutcome, 0, len(drafts)),
	}
	for _, draft := range drafts {
		report := p.newReport(ref, draft)
		outcome.Reports = append(outcome.Reports, p.store(ctx, logger, report))
	}

	if outcome.Persisted() > 0 {
		outcome.Status = FileStatusProcessed
	} else {
		outcome.Status = FileStatusFailed
		outcome.Error = "no report could be persisted"
	}

	logger.Infow("processed patient reports", "persisted", outcome.Persisted(), "reports", len(drafts))
	return p.finish(logger, outcome)
}

func (p *Processor) rowSource(key string, content []byte) (RowSource, error) {
	if FormatOf(key) == FormatXLSX {
		return NewXLSXSource(content)
	}
	return NewCSVSource(bytes.NewReader(content))
}

func (p *Processor) newReport(ref ObjectRef, draft Draft) reports.Report {
	now := p.now().UTC()
	clinicId := p.resolver.Resolve(draft.ClinicId, ref.Key)

	info := draft.PatientInfo
	info.ClinicId = clinicId

	return reports.Report{
		ReportId:       uuid.NewString(),
		ClinicId:       clinicId,
		PatientId:      draft.PatientId,
		PatientName:    draft.PatientName,
		Timestamp:      now,
		PatientInfo:    info,
		TestResults:    draft.TestResults,
		Remarks:        draft.Remarks(),
		Status:         reports.StatusProcessed,
		Source:         Source(ref.Key),
		S3Key:          ref.Key,
		S3Bucket:       ref.Bucket,
		ProcessingTime: now,
		SourceReportId: draft.SourceReportId,
	}
}

// store persists the report and fans out the side effects. Notification and email
// failures never undo the write.
func (p *Processor) store(ctx context.Context, logger *zap.SugaredLogger, report reports.Report) ReportOutcome {
	outcome := ReportOutcome{
		ReportId:  report.ReportId,
		PatientId: report.PatientId,
		ClinicId:  report.ClinicId,
	}

	if err := p.repository.Put(ctx, report); err != nil {
		logger.Errorw("unable to persist report", "reportId", report.ReportId, "patientId", report.PatientId, zap.Error(err))
		p.metrics.Reports.WithLabelValues("failed").Inc()
		outcome.Error = err.Error()
		return outcome
	}
	outcome.Persisted = true
	p.metrics.Reports.WithLabelValues("persisted").Inc()

	if _, err := p.repository.Get(ctx, report.ReportId); err != nil {
		logger.Warnw("unable to verify persisted report", "reportId", report.ReportId, zap.Error(err))
	}

	if _, err := p.notifier.Emit(ctx, report); err != nil {
		p.metrics.NotificationFailures.Inc()
		outcome.Error = err.Error()
	} else {
		outcome.Notified = true
	}

	if p.mailer != nil {
		emailed, err := p.mailer.NotifyNewReport(ctx, report)
		if err != nil {
			logger.Warnw("unable to email report notification", "reportId", report.ReportId, zap.Error(err))
			p.metrics.EmailFailures.Inc()
		}
		outcome.Emailed = emailed
	}

	return outcome
}

func (p *Processor) finish(logger *zap.SugaredLogger, outcome FileOutcome) FileOutcome {
	if outcome.Reports == nil {
		outcome.Reports = make([]ReportOutcome, 0)
	}
	switch outcome.Status {
	case FileStatusSkipped:
		logger.Infow("skipping file", "reason", outcome.Error)
	case FileStatusFailed:
		logger.Errorw("unable to process file", "error", outcome.Error)
	}
	p.metrics.Files.WithLabelValues(outcome.Status).Inc()
	return outcome
}

func skipped(ref ObjectRef, reason string) FileOutcome {
	return FileOutcome{Bucket: ref.Bucket, Key: ref.Key, Status: FileStatusSkipped, Error: reason}
}

func failed(ref ObjectRef, err error) FileOutcome {
	return FileOutcome{Bucket: ref.Bucket, Key: ref.Key, Status: FileStatusFailed, Error: err.Error()}
}
