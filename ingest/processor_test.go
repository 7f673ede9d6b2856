package ingest_test

import (
	"context"
	"fmt"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/medisys-health/diagnostics/config"
	"github.com/medisys-health/diagnostics/ingest"
	ingestTest "github.com/medisys-health/diagnostics/ingest/test"
	landingTest "github.com/medisys-health/diagnostics/landing/test"
	"github.com/medisys-health/diagnostics/reports"
	reportsTest "github.com/medisys-health/diagnostics/reports/test"
	"github.com/medisys-health/diagnostics/test"
)

const twoPatients = "patient_id,first_name,last_name,test_name,critical_flag,notes\n" +
	"P1,Jane,Doe,CBC,Y,Hemolyzed\n" +
	"P1,Jane,Doe,Glucose,N,Hemolyzed\n" +
	"P2,John,Roe,Sodium,N,\n"

var _ = Describe("Processor", func() {
	var ctrl *gomock.Controller
	var objects *landingTest.MockObjectStore
	var repository *reportsTest.MockRepository
	var notifier *ingestTest.MockNotifier
	var mailer *ingestTest.MockMailer
	var processor *ingest.Processor
	var metrics *ingest.Metrics
	var stored []reports.Report

	BeforeEach(func() {
		ctrl = gomock.NewController(GinkgoT())
		objects = landingTest.NewMockObjectStore(ctrl)
		repository = reportsTest.NewMockRepository(ctrl)
		notifier = ingestTest.NewMockNotifier(ctrl)
		mailer = ingestTest.NewMockMailer(ctrl)
		stored = nil

		metrics = ingest.NewMetrics(prometheus.NewRegistry())

		cfg := config.New()
		cfg.UploadPrefixes = []string{"public/uploads/", "private/uploads/", "uploads/"}
		processor = ingest.NewProcessor(
			objects,
			repository,
			notifier,
			mailer,
			ingest.NewClinicResolver(cfg),
			metrics,
			zap.NewNop().Sugar(),
		)
	})

	AfterEach(func() {
		ctrl.Finish()
	})

	expectStored := func() {
		repository.EXPECT().Put(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, report reports.Report) error {
			stored = append(stored, report)
			return nil
		}).AnyTimes()
		repository.EXPECT().Get(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, reportId string) (*reports.Report, error) {
			for _, report := range stored {
				if report.ReportId == reportId {
					return &report, nil
				}
			}
			return nil, reports.ErrNotFound
		}).AnyTimes()
	}

	Describe("ProcessObject", func() {
		ref := ingest.ObjectRef{Bucket: "medisys-landing", Key: "public/uploads/clinic-a/results.csv"}

		It("persists, notifies and emails every patient report", func() {
			start := time.Now().UTC()
			objects.EXPECT().Get(gomock.Any(), ref.Bucket, ref.Key).Return([]byte(twoPatients), nil)
			expectStored()
			notifier.EXPECT().Emit(gomock.Any(), gomock.Any()).Return("message-id", nil).Times(2)
			mailer.EXPECT().NotifyNewReport(gomock.Any(), gomock.Any()).Return(true, nil).Times(2)

			outcome := processor.ProcessObject(context.Background(), ref)
			Expect(outcome.Status).To(Equal(ingest.FileStatusProcessed))
			Expect(outcome.Reports).To(HaveLen(2))
			for _, report := range outcome.Reports {
				Expect(report.Persisted).To(BeTrue())
				Expect(report.Notified).To(BeTrue())
				Expect(report.Emailed).To(BeTrue())
				Expect(report.Error).To(BeEmpty())
			}

			Expect(stored).To(HaveLen(2))
			first := stored[0]
			Expect(first.ReportId).ToNot(BeEmpty())
			Expect(first.ReportId).ToNot(Equal(stored[1].ReportId))
			Expect(first.ClinicId).To(Equal("clinic-a"))
			Expect(first.PatientInfo.ClinicId).To(Equal("clinic-a"))
			Expect(first.PatientName).To(Equal("Jane Doe"))
			Expect(first.TestResults).To(HaveLen(2))
			Expect(first.Remarks).To(Equal("Hemolyzed"))
			Expect(first.Status).To(Equal(reports.StatusProcessed))
			Expect(first.Source).To(Equal(reports.SourceUIUpload))
			Expect(first.S3Bucket).To(Equal(ref.Bucket))
			Expect(first.S3Key).To(Equal(ref.Key))
			Expect(first.Timestamp.Location()).To(Equal(time.UTC))
			Expect(first.Timestamp).To(BeTemporally(">=", start))
			Expect(first.ProcessingTime).To(Equal(first.Timestamp))
		})

		It("creates new reports when the same file is ingested again", func() {
			objects.EXPECT().Get(gomock.Any(), ref.Bucket, ref.Key).Return([]byte(twoPatients), nil).Times(2)
			expectStored()
			notifier.EXPECT().Emit(gomock.Any(), gomock.Any()).Return("message-id", nil).AnyTimes()
			mailer.EXPECT().NotifyNewReport(gomock.Any(), gomock.Any()).Return(false, nil).AnyTimes()

			processor.ProcessObject(context.Background(), ref)
			processor.ProcessObject(context.Background(), ref)

			Expect(stored).To(HaveLen(4))
			ids := map[string]struct{}{}
			for _, report := range stored {
				ids[report.ReportId] = struct{}{}
			}
			Expect(ids).To(HaveLen(4))
		})

		It("keeps the report when the notification fails", func() {
			objects.EXPECT().Get(gomock.Any(), ref.Bucket, ref.Key).Return([]byte(twoPatients), nil)
			expectStored()
			notifier.EXPECT().Emit(gomock.Any(), gomock.Any()).Return("", fmt.Errorf("queue unavailable")).Times(2)
			mailer.EXPECT().NotifyNewReport(gomock.Any(), gomock.Any()).Return(false, fmt.Errorf("ses throttled")).Times(2)

			outcome := processor.ProcessObject(context.Background(), ref)
			Expect(outcome.Status).To(Equal(ingest.FileStatusProcessed))
			Expect(outcome.Reports[0].Persisted).To(BeTrue())
			Expect(testutil.ToFloat64(metrics.Files.WithLabelValues(ingest.FileStatusProcessed))).To(Equal(1.0))
			Expect(testutil.ToFloat64(metrics.Reports.WithLabelValues("persisted"))).To(Equal(2.0))
			Expect(testutil.ToFloat64(metrics.NotificationFailures)).To(Equal(2.0))
			Expect(testutil.ToFloat64(metrics.EmailFailures)).To(Equal(2.0))
			Expect(outcome.Reports[0].Notified).To(BeFalse())
			Expect(outcome.Reports[0].Emailed).To(BeFalse())
			Expect(outcome.Reports[0].Error).To(Equal("queue unavailable"))
		})

		It("fails the file when no report could be persisted", func() {
			objects.EXPECT().Get(gomock.Any(), ref.Bucket, ref.Key).Return([]byte(twoPatients), nil)
			repository.EXPECT().Put(gomock.Any(), gomock.Any()).Return(fmt.Errorf("%w: timeout", reports.ErrUnavailable)).Times(2)

			outcome := processor.ProcessObject(context.Background(), ref)
			Expect(outcome.Status).To(Equal(ingest.FileStatusFailed))
			Expect(outcome.Reports).To(HaveLen(2))
			Expect(outcome.Reports[0].Persisted).To(BeFalse())
			Expect(outcome.Reports[0].Notified).To(BeFalse())
		})

		It("succeeds when at least one report is persisted", func() {
			objects.EXPECT().Get(gomock.Any(), ref.Bucket, ref.Key).Return([]byte(twoPatients), nil)
			gomock.InOrder(
				repository.EXPECT().Put(gomock.Any(), gomock.Any()).Return(fmt.Errorf("%w: timeout", reports.ErrUnavailable)),
				repository.EXPECT().Put(gomock.Any(), gomock.Any()).Return(nil),
			)
			repository.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, reports.ErrNotFound)
			notifier.EXPECT().Emit(gomock.Any(), gomock.Any()).Return("message-id", nil)
			mailer.EXPECT().NotifyNewReport(gomock.Any(), gomock.Any()).Return(false, nil)

			outcome := processor.ProcessObject(context.Background(), ref)
			Expect(outcome.Status).To(Equal(ingest.FileStatusProcessed))
			Expect(outcome.Persisted()).To(Equal(1))
		})

		It("uses the clinic of the row data", func() {
			content := "patient_id,clinic_id,test_name\nP1,clinic-row,CBC\n"
			cli := ingest.ObjectRef{Bucket: "medisys-landing", Key: "uploads/clinic-path/results.csv"}
			objects.EXPECT().Get(gomock.Any(), cli.Bucket, cli.Key).Return([]byte(content), nil)
			expectStored()
			notifier.EXPECT().Emit(gomock.Any(), gomock.Any()).Return("message-id", nil)
			mailer.EXPECT().NotifyNewReport(gomock.Any(), gomock.Any()).Return(false, nil)

			processor.ProcessObject(context.Background(), cli)
			Expect(stored).To(HaveLen(1))
			Expect(stored[0].ClinicId).To(Equal("clinic-row"))
			Expect(stored[0].Source).To(Equal(reports.SourceCLIUpload))
		})

		It("skips files outside of the upload folders", func() {
			outcome := processor.ProcessObject(context.Background(), ingest.ObjectRef{Bucket: "b", Key: "exports/clinic-a/results.csv"})
			Expect(outcome.Status).To(Equal(ingest.FileStatusSkipped))
			Expect(outcome.Reports).To(BeEmpty())
		})

		It("skips unsupported extensions", func() {
			outcome := processor.ProcessObject(context.Background(), ingest.ObjectRef{Bucket: "b", Key: "uploads/clinic-a/results.pdf"})
			Expect(outcome.Status).To(Equal(ingest.FileStatusSkipped))
		})

		It("fails legacy xls workbooks", func() {
			outcome := processor.ProcessObject(context.Background(), ingest.ObjectRef{Bucket: "b", Key: "uploads/clinic-a/results.xls"})
			Expect(outcome.Status).To(Equal(ingest.FileStatusFailed))
			Expect(outcome.Error).To(ContainSubstring("unsupported file format"))
		})

		It("fails empty files", func() {
			objects.EXPECT().Get(gomock.Any(), ref.Bucket, ref.Key).Return([]byte{}, nil)
			outcome := processor.ProcessObject(context.Background(), ref)
			Expect(outcome.Status).To(Equal(ingest.FileStatusFailed))
		})

		It("fails files without patient reports", func() {
			objects.EXPECT().Get(gomock.Any(), ref.Bucket, ref.Key).Return([]byte("patient_id,test_name\n,CBC\n"), nil)
			outcome := processor.ProcessObject(context.Background(), ref)
			Expect(outcome.Status).To(Equal(ingest.FileStatusFailed))
			Expect(outcome.Error).To(ContainSubstring("no valid patient reports"))
		})

		It("fails files that cannot be downloaded", func() {
			objects.EXPECT().Get(gomock.Any(), ref.Bucket, ref.Key).Return(nil, fmt.Errorf("access denied"))
			outcome := processor.ProcessObject(context.Background(), ref)
			Expect(outcome.Status).To(Equal(ingest.FileStatusFailed))
			Expect(outcome.Error).To(ContainSubstring("access denied"))
		})

		It("ingests xlsx workbooks", func() {
			workbook, err := ingestTest.Workbook([][]string{
				{"patient_id", "first_name", "test_name"},
				{"P1", "Jane", "CBC"},
			})
			Expect(err).ToNot(HaveOccurred())
			xlsxRef := ingest.ObjectRef{Bucket: "medisys-landing", Key: "uploads/clinic-a/results.xlsx"}
			objects.EXPECT().Get(gomock.Any(), xlsxRef.Bucket, xlsxRef.Key).Return(workbook, nil)
			expectStored()
			notifier.EXPECT().Emit(gomock.Any(), gomock.Any()).Return("message-id", nil)
			mailer.EXPECT().NotifyNewReport(gomock.Any(), gomock.Any()).Return(false, nil)

			outcome := processor.ProcessObject(context.Background(), xlsxRef)
			Expect(outcome.Status).To(Equal(ingest.FileStatusProcessed))
			Expect(stored[0].PatientName).To(Equal("Jane"))
		})
	})

	Describe("ProcessEvent", func() {
		It("processes every file independently", func() {
			body, err := test.LoadFixture("./test/fixtures/s3_event.json")
			Expect(err).ToNot(HaveOccurred())

			objects.EXPECT().Get(gomock.Any(), "medisys-landing", "public/uploads/clinic-a/June results(2).csv").Return([]byte(twoPatients), nil)
			objects.EXPECT().Get(gomock.Any(), "medisys-landing", "uploads/clinic-b/export.xlsx").Return(nil, fmt.Errorf("no such key"))
			expectStored()
			notifier.EXPECT().Emit(gomock.Any(), gomock.Any()).Return("message-id", nil).Times(2)
			mailer.EXPECT().NotifyNewReport(gomock.Any(), gomock.Any()).Return(false, nil).Times(2)

			summary, err := processor.ProcessEvent(context.Background(), body)
			Expect(err).ToNot(HaveOccurred())
			Expect(summary.ProcessedFiles).To(Equal(1))
			Expect(summary.Files).To(HaveLen(2))
			Expect(summary.Files[0].Status).To(Equal(ingest.FileStatusProcessed))
			Expect(summary.Files[1].Status).To(Equal(ingest.FileStatusFailed))
		})

		It("rejects invalid events", func() {
			_, err := processor.ProcessEvent(context.Background(), []byte(`{"detail-type": "Scheduled Event"}`))
			Expect(err).To(MatchError(ingest.ErrInvalidEvent))
		})
	})
})
