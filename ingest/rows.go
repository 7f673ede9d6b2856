package ingest

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/tealeg/xlsx/v3"
)

// Row is a single export line keyed by trimmed header name
type Row map[string]string

func (r Row) Get(column string) string {
	return r[column]
}

// RowSource yields rows in file order and returns io.EOF when exhausted
type RowSource interface {
	Next() (Row, error)
}

type csvSource struct {
	reader *csv.Reader
	header []string
	line   int
}

// NewCSVSource reads a header driven csv export. Blank header columns are ignored
// and rows with fewer or more fields than the header are tolerated.
func NewCSVSource(r io.Reader) (RowSource, error) {
	buffered := bufio.NewReader(r)
	if bom, err := buffered.Peek(3); err == nil && bytes.Equal(bom, []byte{0xEF, 0xBB, 0xBF}) {
		_, _ = buffered.Discard(3)
	}

	reader := csv.NewReader(buffered)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = false

	header, err := reader.Read()
	if err == io.EOF {
		return &csvSource{reader: reader}, nil
	} else if err != nil {
		return nil, fmt.Errorf("%w: unable to read csv header: %w", ErrMalformedFile, err)
	}

	return &csvSource{
		reader: reader,
		header: trimAll(header),
		line:   1,
	}, nil
}

func (c *csvSource) Next() (Row, error) {
	if c.header == nil {
		return nil, io.EOF
	}

	record, err := c.reader.Read()
	if err == io.EOF {
		return nil, io.EOF
	} else if err != nil {
		return nil, fmt.Errorf("%w: unable to read csv line %d: %w", ErrMalformedFile, c.line+1, err)
	}
	c.line++

	return toRow(c.header, record), nil
}

type sliceSource struct {
	header []string
	rows   [][]string
	next   int
}

// NewXLSXSource reads the first sheet of a workbook. The first row is the header.
func NewXLSXSource(content []byte) (RowSource, error) {
	file, err := xlsx.OpenBinary(content)
	if err != nil {
		return nil, fmt.Errorf("%w: unable to open workbook: %w", ErrMalformedFile, err)
	}

	sheets, err := file.ToSlice()
	if err != nil {
		return nil, fmt.Errorf("%w: unable to read workbook: %w", ErrMalformedFile, err)
	}

	source := &sliceSource{}
	if len(sheets) == 0 || len(sheets[0]) == 0 {
		return source, nil
	}

	source.header = trimAll(sheets[0][0])
	source.rows = sheets[0][1:]
	return source, nil
}

func (s *sliceSource) Next() (Row, error) {
	for s.next < len(s.rows) {
		record := s.rows[s.next]
		s.next++
		// Trailing formatted but empty rows are common in workbooks
		if isBlank(record) {
			continue
		}
		return toRow(s.header, record), nil
	}
	return nil, io.EOF
}

func toRow(header []string, record []string) Row {
	row := make(Row, len(header))
	for i, name := range header {
		if name == "" {
			continue
		}
		value := ""
		if i < len(record) {
			value = strings.TrimSpace(record[i])
		}
		row[name] = value
	}
	return row
}

func trimAll(values []string) []string {
	trimmed := make([]string, len(values))
	for i, v := range values {
		trimmed[i] = strings.TrimSpace(v)
	}
	return trimmed
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
