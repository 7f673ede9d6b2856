package ingest_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/medisys-health/diagnostics/ingest"
	ingestTest "github.com/medisys-health/diagnostics/ingest/test"
	"github.com/medisys-health/diagnostics/reports"
	"github.com/medisys-health/diagnostics/test"
)

func normalizeCSV(content string) []ingest.Draft {
	source, err := ingest.NewCSVSource(strings.NewReader(content))
	Expect(err).ToNot(HaveOccurred())
	drafts, err := ingest.NewNormalizer(zap.NewNop().Sugar()).Normalize(source)
	Expect(err).ToNot(HaveOccurred())
	return drafts
}

var _ = Describe("Normalizer", func() {
	It("groups the fixture export by patient", func() {
		content, err := test.LoadFixture("./test/fixtures/lab_export.csv")
		Expect(err).ToNot(HaveOccurred())

		drafts := normalizeCSV(string(content))
		Expect(drafts).To(HaveLen(2))

		first := drafts[0]
		Expect(first.PatientId).To(Equal("P001"))
		Expect(first.PatientName).To(Equal("Jane Doe"))
		Expect(first.SourceReportId).To(Equal("LAB-1001"))
		Expect(first.PatientInfo).To(Equal(reports.PatientInfo{
			PatientName:       "Jane Doe",
			PatientId:         "P001",
			PatientDob:        "1980-04-12",
			PatientGender:     "F",
			TestDate:          "2025-06-14",
			ReportDate:        "2025-06-15",
			OrderingPhysician: "Dr. Smith",
		}))
		Expect(first.TestResults).To(HaveLen(3))
		Expect(first.TestResults[1]).To(Equal(reports.TestResult{
			TestType:       "Chemistry",
			TestName:       "Potassium",
			Result:         "6.8",
			Unit:           "mmol/L",
			ReferenceRange: "3.5-5.1",
			Status:         "high",
			CriticalFlag:   "Y",
		}))
		Expect(first.Remarks()).To(Equal("Fasting sample. Repeat in 2 weeks"))

		second := drafts[1]
		Expect(second.PatientId).To(Equal("P002"))
		Expect(second.ClinicId).To(Equal("clinic-z"))
		Expect(second.TestResults).To(HaveLen(1))
		Expect(second.Remarks()).To(BeEmpty())
	})

	It("emits one draft per contiguous patient group", func() {
		drafts := normalizeCSV("patient_id,test_name\nP1,A\nP1,B\nP2,C\nP1,D\n")
		Expect(drafts).To(HaveLen(3))
		Expect(drafts[0].PatientId).To(Equal("P1"))
		Expect(drafts[0].TestResults).To(HaveLen(2))
		Expect(drafts[1].PatientId).To(Equal("P2"))
		Expect(drafts[2].PatientId).To(Equal("P1"))
		Expect(drafts[2].TestResults[0].TestName).To(Equal("D"))
	})

	It("skips rows without a patient id without breaking the group", func() {
		drafts := normalizeCSV("patient_id,test_name\nP1,A\n ,B\nP1,C\n")
		Expect(drafts).To(HaveLen(1))
		Expect(drafts[0].TestResults).To(HaveLen(2))
		Expect(drafts[0].TestResults[1].TestName).To(Equal("C"))
	})

	It("keeps rows without a test name for patient data and notes only", func() {
		drafts := normalizeCSV("patient_id,first_name,test_name,notes\nP1,Jane,,See attached\nP1,,CBC,See attached\n")
		Expect(drafts).To(HaveLen(1))
		Expect(drafts[0].PatientName).To(Equal("Jane"))
		Expect(drafts[0].TestResults).To(HaveLen(1))
		Expect(drafts[0].Notes).To(Equal([]string{"See attached"}))
	})

	It("trims headers and values and ignores blank header columns", func() {
		drafts := normalizeCSV(" patient_id , test_name ,\n P1 , CBC , extra\n")
		Expect(drafts).To(HaveLen(1))
		Expect(drafts[0].PatientId).To(Equal("P1"))
		Expect(drafts[0].TestResults[0].TestName).To(Equal("CBC"))
	})

	It("tolerates ragged rows", func() {
		drafts := normalizeCSV("patient_id,test_name,status\nP1,CBC\nP1,Glucose,high,unexpected\n")
		Expect(drafts).To(HaveLen(1))
		Expect(drafts[0].TestResults[0].Status).To(BeEmpty())
		Expect(drafts[0].TestResults[1].Status).To(Equal("high"))
	})

	It("returns no drafts for empty input", func() {
		Expect(normalizeCSV("")).To(BeEmpty())
		Expect(normalizeCSV("patient_id,test_name\n")).To(BeEmpty())
	})

	It("fails on malformed csv", func() {
		source, err := ingest.NewCSVSource(strings.NewReader("patient_id,test_name\nP1,CB\"C\n"))
		Expect(err).ToNot(HaveOccurred())

		_, err = ingest.NewNormalizer(zap.NewNop().Sugar()).Normalize(source)
		Expect(err).To(MatchError(ingest.ErrMalformedFile))
		Expect(err).To(MatchError(ingest.ErrDataAnomaly))
	})

	It("produces the same drafts from an xlsx workbook", func() {
		content, err := test.LoadFixture("./test/fixtures/lab_export.csv")
		Expect(err).ToNot(HaveOccurred())
		expected := normalizeCSV(string(content))

		var rows [][]string
		for _, line := range strings.Split(strings.TrimSpace(string(content)), "\n") {
			rows = append(rows, strings.Split(line, ","))
		}
		rows = append(rows, []string{"", "", ""})

		workbook, err := ingestTest.Workbook(rows)
		Expect(err).ToNot(HaveOccurred())

		source, err := ingest.NewXLSXSource(workbook)
		Expect(err).ToNot(HaveOccurred())
		drafts, err := ingest.NewNormalizer(zap.NewNop().Sugar()).Normalize(source)
		Expect(err).ToNot(HaveOccurred())
		Expect(drafts).To(Equal(expected))
	})

	It("rejects content that is not a workbook", func() {
		_, err := ingest.NewXLSXSource([]byte("patient_id,test_name\n"))
		Expect(err).To(MatchError(ingest.ErrMalformedFile))
	})
})
