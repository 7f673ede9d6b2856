package ingest

import (
	"io"
	"strings"

	"github.com/tealeg/xlsx/v3"

	"github.com/medisys-health/diagnostics/reports"
)

const exportSheetName = "Results"

var exportColumns = []string{
	ColumnPatientId,
	ColumnFirstName,
	ColumnLastName,
	ColumnPatientDob,
	ColumnPatientGender,
	ColumnClinicId,
	ColumnTestDate,
	ColumnReportDate,
	ColumnOrderingPhysician,
	ColumnReportId,
	ColumnTestType,
	ColumnTestName,
	ColumnResultValue,
	ColumnResultUnit,
	ColumnReferenceRange,
	ColumnStatus,
	ColumnCriticalFlag,
	ColumnNotes,
}

// ExportWorkbook writes the reports in the lab export layout, one row per test result,
// so the workbook can be ingested again. Remarks are written to the first row of a report.
func ExportWorkbook(list []reports.Report, w io.Writer) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet(exportSheetName)
	if err != nil {
		return err
	}

	addRow(sheet, exportColumns)
	for _, report := range list {
		for _, values := range exportRows(report) {
			addRow(sheet, values)
		}
	}

	return file.Write(w)
}

func exportRows(report reports.Report) [][]string {
	firstName, lastName, _ := strings.Cut(report.PatientName, " ")
	reportId := report.SourceReportId
	if reportId == "" {
		reportId = report.ReportId
	}
	info := report.PatientInfo

	results := report.TestResults
	if len(results) == 0 {
		// Keep reports without results so their remarks survive
		results = []reports.TestResult{{}}
	}

	rows := make([][]string, 0, len(results))
	for i, result := range results {
		notes := ""
		if i == 0 {
			notes = report.Remarks
		}
		rows = append(rows, []string{
			report.PatientId,
			firstName,
			lastName,
			info.PatientDob,
			info.PatientGender,
			report.ClinicId,
			info.TestDate,
			info.ReportDate,
			info.OrderingPhysician,
			reportId,
			result.TestType,
			result.TestName,
			result.Result,
			result.Unit,
			result.ReferenceRange,
			result.Status,
			result.CriticalFlag,
			notes,
		})
	}
	return rows
}

func addRow(sheet *xlsx.Sheet, values []string) {
	row := sheet.AddRow()
	for _, value := range values {
		row.AddCell().SetString(value)
	}
}
