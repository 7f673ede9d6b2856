package ingest

import (
	"errors"
	"io"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"go.uber.org/zap"

	"github.com/medisys-health/diagnostics/reports"
)

// Export columns
const (
	ColumnPatientId         = "patient_id"
	ColumnFirstName         = "first_name"
	ColumnLastName          = "last_name"
	ColumnPatientDob        = "patient_dob"
	ColumnPatientGender     = "patient_gender"
	ColumnClinicId          = "clinic_id"
	ColumnTestDate          = "test_date"
	ColumnReportDate        = "report_date"
	ColumnOrderingPhysician = "ordering_physician"
	ColumnReportId          = "report_id"
	ColumnTestType          = "test_type"
	ColumnTestName          = "test_name"
	ColumnResultValue       = "result_value"
	ColumnResultUnit        = "result_unit"
	ColumnReferenceRange    = "reference_range"
	ColumnStatus            = "status"
	ColumnCriticalFlag      = "critical_flag"
	ColumnNotes             = "notes"

	remarksSeparator = ". "
)

// Draft is a per patient report that has not been assigned an identity yet
type Draft struct {
	PatientId      string
	PatientName    string
	ClinicId       string
	SourceReportId string
	PatientInfo    reports.PatientInfo
	TestResults    []reports.TestResult
	Notes          []string
}

func (d Draft) Remarks() string {
	return strings.Join(d.Notes, remarksSeparator)
}

type Normalizer struct {
	logger *zap.SugaredLogger
}

func NewNormalizer(logger *zap.SugaredLogger) *Normalizer {
	return &Normalizer{logger: logger}
}

// Normalize groups consecutive rows with the same patient id into drafts.
// The export must be grouped by patient, a patient id that appears again
// after another patient's rows starts a new draft.
func (n *Normalizer) Normalize(source RowSource) ([]Draft, error) {
	drafts := make([]Draft, 0)
	var current *draftBuilder

	for index := 0; ; index++ {
		row, err := source.Next()
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return nil, err
		}

		patientId := row.Get(ColumnPatientId)
		if patientId == "" {
			n.logger.Warnw("skipping row without patient id", "row", index, "error", ErrDataAnomaly)
			continue
		}

		if current == nil || current.draft.PatientId != patientId {
			if current != nil {
				drafts = append(drafts, current.build())
			}
			current = newDraftBuilder(row)
		}
		current.add(row)
	}

	if current != nil {
		drafts = append(drafts, current.build())
	}

	return drafts, nil
}

type draftBuilder struct {
	draft Draft
	seen  mapset.Set[string]
}

func newDraftBuilder(row Row) *draftBuilder {
	patientName := strings.TrimSpace(row.Get(ColumnFirstName) + " " + row.Get(ColumnLastName))
	return &draftBuilder{
		draft: Draft{
			PatientId:      row.Get(ColumnPatientId),
			PatientName:    patientName,
			ClinicId:       row.Get(ColumnClinicId),
			SourceReportId: row.Get(ColumnReportId),
			PatientInfo: reports.PatientInfo{
				PatientName:       patientName,
				PatientId:         row.Get(ColumnPatientId),
				PatientDob:        row.Get(ColumnPatientDob),
				PatientGender:     row.Get(ColumnPatientGender),
				TestDate:          row.Get(ColumnTestDate),
				ReportDate:        row.Get(ColumnReportDate),
				OrderingPhysician: row.Get(ColumnOrderingPhysician),
				ClinicId:          row.Get(ColumnClinicId),
			},
			TestResults: make([]reports.TestResult, 0),
			Notes:       make([]string, 0),
		},
		seen: mapset.NewThreadUnsafeSet[string](),
	}
}

func (b *draftBuilder) add(row Row) {
	if testName := row.Get(ColumnTestName); testName != "" {
		b.draft.TestResults = append(b.draft.TestResults, reports.TestResult{
			TestType:       row.Get(ColumnTestType),
			TestName:       testName,
			Result:         row.Get(ColumnResultValue),
			Unit:           row.Get(ColumnResultUnit),
			ReferenceRange: row.Get(ColumnReferenceRange),
			Status:         row.Get(ColumnStatus),
			CriticalFlag:   row.Get(ColumnCriticalFlag),
		})
	}

	if note := row.Get(ColumnNotes); note != "" && b.seen.Add(note) {
		b.draft.Notes = append(b.draft.Notes, note)
	}
}

func (b *draftBuilder) build() Draft {
	return b.draft
}
