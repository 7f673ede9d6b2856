package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/medisys-health/diagnostics/errors"
)

const (
	StatusProcessed = "processed"

	SourceUIUpload  = "ui_upload"
	SourceCLIUpload = "cli_upload"

	UnknownClinicId = "unknown"
)

var (
	ErrNotFound      = fmt.Errorf("report %w", errors.NotFound)
	ErrUnavailable   = fmt.Errorf("report store %w", errors.UpstreamUnavailable)
	ErrInvalidReport = fmt.Errorf("%w: invalid report", errors.BadRequest)
)

//go:generate go tool mockgen -source=./reports.go -destination=./test/mock_repository.go -package test

// Repository is a durable, tenant partitioned report store.
// A limit <= 0 means no limit.
type Repository interface {
	Put(ctx context.Context, report Report) error
	Get(ctx context.Context, reportId string) (*Report, error)
	ListByClinic(ctx context.Context, clinicId string, descending bool, limit int) ([]Report, error)
	ScanAll(ctx context.Context, limit int) ([]Report, error)
}

type Report struct {
	ReportId       string       `json:"report_id" bson:"reportId"`
	ClinicId       string       `json:"clinic_id" bson:"clinicId"`
	PatientId      string       `json:"patient_id" bson:"patientId"`
	PatientName    string       `json:"patient_name" bson:"patientName"`
	Timestamp      time.Time    `json:"timestamp" bson:"timestamp"`
	PatientInfo    PatientInfo  `json:"patient_info" bson:"patientInfo"`
	TestResults    []TestResult `json:"test_results" bson:"testResults"`
	Remarks        string       `json:"remarks" bson:"remarks"`
	Status         string       `json:"status" bson:"status"`
	Source         string       `json:"source" bson:"source"`
	S3Key          string       `json:"s3_key" bson:"s3Key"`
	S3Bucket       string       `json:"s3_bucket" bson:"s3Bucket"`
	ProcessingTime time.Time    `json:"processing_time" bson:"processingTime"`
	SourceReportId string       `json:"source_report_id,omitempty" bson:"sourceReportId,omitempty"`
}

type PatientInfo struct {
	PatientName       string `json:"patient_name" bson:"patientName"`
	PatientId         string `json:"patient_id" bson:"patientId"`
	PatientDob        string `json:"patient_dob" bson:"patientDob"`
	PatientGender     string `json:"patient_gender" bson:"patientGender"`
	TestDate          string `json:"test_date" bson:"testDate"`
	ReportDate        string `json:"report_date" bson:"reportDate"`
	OrderingPhysician string `json:"ordering_physician" bson:"orderingPhysician"`
	ClinicId          string `json:"clinic_id" bson:"clinicId"`
}

type TestResult struct {
	TestType       string `json:"test_type" bson:"testType"`
	TestName       string `json:"test_name" bson:"testName"`
	Result         string `json:"result" bson:"result"`
	Unit           string `json:"unit" bson:"unit"`
	ReferenceRange string `json:"reference_range" bson:"referenceRange"`
	Status         string `json:"status" bson:"status"`
	CriticalFlag   string `json:"critical_flag" bson:"criticalFlag"`
}

// IsCritical returns true when the lab marked the result as critical
func (t TestResult) IsCritical() bool {
	return t.CriticalFlag == "Y"
}

// Validate checks the invariants every persisted report must satisfy
func (r Report) Validate() error {
	if r.ReportId == "" {
		return fmt.Errorf("%w: report id is required", ErrInvalidReport)
	}
	if r.ClinicId == "" {
		return fmt.Errorf("%w: clinic id is required", ErrInvalidReport)
	}
	if r.PatientId == "" {
		return fmt.Errorf("%w: patient id is required", ErrInvalidReport)
	}
	for i, result := range r.TestResults {
		if result.TestName == "" {
			return fmt.Errorf("%w: test result %d has no test name", ErrInvalidReport, i)
		}
	}
	return nil
}

// CriticalCount returns the number of critical test results in the report
func (r Report) CriticalCount() int {
	count := 0
	for _, result := range r.TestResults {
		if result.IsCritical() {
			count++
		}
	}
	return count
}
