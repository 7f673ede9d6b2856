package mailer

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/medisys-health/diagnostics/config"
	"github.com/medisys-health/diagnostics/reports"
	"github.com/medisys-health/diagnostics/users"
)

//go:generate go tool mockgen -source=./mailer.go -destination=./test/mock_sender.go -package test

// Sender delivers plain text email
type Sender interface {
	Send(ctx context.Context, to []string, subject string, body string) error
}

// Relay emails healthcare staff about new reports
type Relay struct {
	sender    Sender
	directory users.Directory
	group     string
	enabled   bool
	logger    *zap.SugaredLogger
}

func NewRelay(sender Sender, directory users.Directory, cfg *config.Config, logger *zap.SugaredLogger) *Relay {
	return &Relay{
		sender:    sender,
		directory: directory,
		group:     cfg.HealthcareGroup,
		enabled:   cfg.SenderEmail != "",
		logger:    logger,
	}
}

func (r *Relay) Enabled() bool {
	return r != nil && r.enabled
}

// NotifyNewReport emails every member of the healthcare group. It returns false when
// nothing was sent.
func (r *Relay) NotifyNewReport(ctx context.Context, report reports.Report) (bool, error) {
	if !r.Enabled() {
		return false, nil
	}

	recipients, err := r.directory.ListGroupEmails(ctx, r.group)
	if err != nil {
		return false, err
	}
	if len(recipients) == 0 {
		r.logger.Infow("no healthcare recipients for report email", "reportId", report.ReportId)
		return false, nil
	}

	subject, body := NewReportEmail(report)
	if err := r.sender.Send(ctx, recipients, subject, body); err != nil {
		return false, err
	}

	r.logger.Infow("report email sent", "reportId", report.ReportId, "recipients", len(recipients))
	return true, nil
}

func NewReportEmail(report reports.Report) (string, string) {
	subject := fmt.Sprintf("New diagnostic report for %s", report.PatientName)
	if critical := report.CriticalCount(); critical > 0 {
		subject = fmt.Sprintf("[CRITICAL] %s (%d critical results)", subject, critical)
	}

	var body strings.Builder
	fmt.Fprintf(&body, "A new diagnostic report is available.\n\n")
	fmt.Fprintf(&body, "Patient: %s (%s)\n", report.PatientName, report.PatientId)
	fmt.Fprintf(&body, "Clinic: %s\n", report.ClinicId)
	fmt.Fprintf(&body, "Report: %s\n", report.ReportId)
	fmt.Fprintf(&body, "Received: %s\n\n", report.Timestamp.UTC().Format("2006-01-02 15:04 MST"))
	fmt.Fprintf(&body, "Results:\n")
	for _, result := range report.TestResults {
		fmt.Fprintf(&body, "- %s: %s %s (%s)", result.TestName, result.Result, result.Unit, result.Status)
		if result.IsCritical() {
			body.WriteString(" CRITICAL")
		}
		body.WriteString("\n")
	}
	if report.Remarks != "" {
		fmt.Fprintf(&body, "\nRemarks: %s\n", report.Remarks)
	}
	return subject, body.String()
}
