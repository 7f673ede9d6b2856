package test

import (
	"fmt"
	"time"

	"github.com/mohae/deepcopy"

	"github.com/medisys-health/diagnostics/reports"
	"github.com/medisys-health/diagnostics/test"
)

var (
	testTypes = []string{"Hematology", "Chemistry", "Lipid Panel", "Thyroid", "Urinalysis", "Immunology", "Microbiology", "Endocrinology", "Coagulation"}
	statuses  = []string{"normal", "NORMAL", "high", "low", "abnormal"}
)

func RandomClinicId() string {
	return fmt.Sprintf("clinic-%s", test.Faker.Lorem().Word())
}

func RandomTestResult() reports.TestResult {
	return reports.TestResult{
		TestType:       test.Faker.RandomStringElement(testTypes),
		TestName:       test.Faker.Lorem().Word(),
		Result:         fmt.Sprintf("%d", test.Faker.IntBetween(1, 300)),
		Unit:           test.Faker.RandomStringElement([]string{"mg/dL", "g/dL", "mmol/L", "%"}),
		ReferenceRange: "10-200",
		Status:         test.Faker.RandomStringElement(statuses),
		CriticalFlag:   test.Faker.RandomStringElement([]string{"", "N", "Y"}),
	}
}

// RandomReport returns a valid report for the clinic created at timestamp.
// Timestamps are truncated to milliseconds to survive a round trip through the store.
func RandomReport(clinicId string, timestamp time.Time) reports.Report {
	patientId := fmt.Sprintf("P%06d", test.Faker.IntBetween(1, 999999))
	firstName := test.Faker.Person().FirstName()
	lastName := test.Faker.Person().LastName()
	timestamp = timestamp.UTC().Truncate(time.Millisecond)

	results := make([]reports.TestResult, test.Faker.IntBetween(1, 4))
	for i := range results {
		results[i] = RandomTestResult()
	}

	return reports.Report{
		ReportId:    test.Faker.UUID().V4(),
		ClinicId:    clinicId,
		PatientId:   patientId,
		PatientName: firstName + " " + lastName,
		Timestamp:   timestamp,
		PatientInfo: reports.PatientInfo{
			PatientName:       firstName + " " + lastName,
			PatientId:         patientId,
			PatientDob:        "1980-01-31",
			PatientGender:     test.Faker.RandomStringElement([]string{"M", "F"}),
			TestDate:          timestamp.Format(time.DateOnly),
			ReportDate:        timestamp.Format(time.DateOnly),
			OrderingPhysician: "Dr. " + test.Faker.Person().LastName(),
			ClinicId:          clinicId,
		},
		TestResults:    results,
		Remarks:        test.Faker.Lorem().Sentence(4),
		Status:         reports.StatusProcessed,
		Source:         reports.SourceCLIUpload,
		S3Key:          fmt.Sprintf("uploads/%s/%s.csv", clinicId, test.Faker.Lorem().Word()),
		S3Bucket:       "medisys-landing",
		ProcessingTime: timestamp,
	}
}

func CloneReport(report reports.Report) reports.Report {
	return deepcopy.Copy(report).(reports.Report)
}
