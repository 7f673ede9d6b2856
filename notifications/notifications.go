package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/medisys-health/diagnostics/errors"
	"github.com/medisys-health/diagnostics/reports"
)

const (
	TypeNewReport = "NEW_REPORT"

	AttributeReportType = "ReportType"
	AttributeClinicId   = "ClinicId"
	AttributePriority   = "Priority"

	ReportTypeDiagnostic = "DIAGNOSTIC_REPORT"
	PriorityNormal       = "NORMAL"

	MaxMessages       = 10
	WaitTime          = 5 * time.Second
	VisibilityTimeout = 300 * time.Second

	testSummarySize = 3
)

var (
	ErrMessageNotFound  = fmt.Errorf("notification %w", errors.NotFound)
	ErrReceiptRequired  = fmt.Errorf("%w: receipt handle is required", errors.BadRequest)
	ErrQueueUnavailable = fmt.Errorf("notification queue %w", errors.UpstreamUnavailable)
)

//go:generate go tool mockgen -source=./notifications.go -destination=./test/mock_queue.go -package test

// Queue delivers notifications to polling consumers at least once
type Queue interface {
	Enqueue(ctx context.Context, payload Payload, attributes map[string]string) (string, error)
	Receive(ctx context.Context, max int, wait time.Duration, visibility time.Duration) ([]Notification, error)
	Acknowledge(ctx context.Context, messageId string, receiptHandle string) error
}

type Payload struct {
	Type        string        `json:"type" bson:"type"`
	ReportId    string        `json:"report_id" bson:"reportId"`
	PatientName string        `json:"patient_name" bson:"patientName"`
	PatientId   string        `json:"patient_id" bson:"patientId"`
	ClinicId    string        `json:"clinic_id" bson:"clinicId"`
	Timestamp   time.Time     `json:"timestamp" bson:"timestamp"`
	TestCount   int           `json:"test_count" bson:"testCount"`
	TestSummary []TestSummary `json:"test_summary" bson:"testSummary"`
	HasRemarks  bool          `json:"has_remarks" bson:"hasRemarks"`
	CreatedAt   time.Time     `json:"created_at" bson:"createdAt"`
}

type TestSummary struct {
	TestName string `json:"test_name" bson:"testName"`
	Result   string `json:"result" bson:"result"`
	Unit     string `json:"unit" bson:"unit"`
	Status   string `json:"status" bson:"status"`
}

// Notification is a received message. The receipt handle is required to acknowledge it.
type Notification struct {
	Id            string `json:"id"`
	ReceiptHandle string `json:"receipt_handle"`
	Payload
	MessageAttributes map[string]string `json:"message_attributes"`
}

// NewPayload summarizes a persisted report
func NewPayload(report reports.Report, createdAt time.Time) Payload {
	summary := make([]TestSummary, 0, testSummarySize)
	for i, result := range report.TestResults {
		if i == testSummarySize {
			break
		}
		summary = append(summary, TestSummary{
			TestName: result.TestName,
			Result:   result.Result,
			Unit:     result.Unit,
			Status:   result.Status,
		})
	}

	return Payload{
		Type:        TypeNewReport,
		ReportId:    report.ReportId,
		PatientName: report.PatientName,
		PatientId:   report.PatientId,
		ClinicId:    report.ClinicId,
		Timestamp:   report.Timestamp,
		TestCount:   len(report.TestResults),
		TestSummary: summary,
		HasRemarks:  report.Remarks != "",
		CreatedAt:   createdAt.UTC(),
	}
}

func NewAttributes(report reports.Report) map[string]string {
	return map[string]string{
		AttributeReportType: ReportTypeDiagnostic,
		AttributeClinicId:   report.ClinicId,
		AttributePriority:   PriorityNormal,
	}
}
