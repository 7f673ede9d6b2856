package test

import (
	"bytes"

	"github.com/tealeg/xlsx/v3"
)

// Workbook renders the rows to the first sheet of an xlsx workbook
func Workbook(rows [][]string) ([]byte, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Results")
	if err != nil {
		return nil, err
	}
	for _, values := range rows {
		row := sheet.AddRow()
		for _, value := range values {
			row.AddCell().SetString(value)
		}
	}

	buffer := &bytes.Buffer{}
	if err := file.Write(buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
