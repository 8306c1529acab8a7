// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Format identifies the tabular file format of an input.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FormatFor picks the format from the file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt", ".tsv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unsupported input format for %s: use .csv or .xlsx", path)
}

// row is one data row with its 1-based source line.
type row struct {
	line   int
	fields []string
}

func (r row) errorf(file, column string, err error) error {
	idx := columnIndex(column)
	value := ""
	if idx >= 0 && idx < len(r.fields) {
		value = r.fields[idx]
	}
	return &ParseError{File: file, Line: r.line, Column: column, Value: value, Err: err}
}

// columnIndex maps a numeric field name to its position. Only the fields
// that can fail to parse are listed.
func columnIndex(column string) int {
	switch column {
	case "h_index":
		return 2
	case "publication_year":
		return 3
	}
	return -1
}

func readRows(r io.Reader, opts Options, width int) ([]row, error) {
	switch opts.Format {
	case FormatXLSX:
		return readXLSX(r, opts, width)
	case FormatCSV, "":
		return readCSV(r, opts, width)
	}
	return nil, fmt.Errorf("unsupported format %q", opts.Format)
}

// byteOrderMark is written at the start of CSV files by some spreadsheet
// exports.
var byteOrderMark = []byte{0xEF, 0xBB, 0xBF}

func readCSV(r io.Reader, opts Options, width int) ([]row, error) {
	br := bufio.NewReader(r)
	if lead, _ := br.Peek(len(byteOrderMark)); bytes.Equal(lead, byteOrderMark) {
		_, _ = br.Discard(len(byteOrderMark))
	}
	cr := csv.NewReader(br)
	cr.Comma = opts.Delimiter
	if cr.Comma == 0 {
		cr.Comma = ','
	}
	cr.FieldsPerRecord = width

	var rows []row
	first := true
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, &ParseError{File: opts.Name, Line: pe.Line, Err: pe.Err}
			}
			return nil, fmt.Errorf("reading %s: %w", opts.Name, err)
		}
		if first {
			first = false
			if opts.Header {
				continue
			}
		}
		line, _ := cr.FieldPos(0)
		rows = append(rows, row{line: line, fields: fields})
	}
	return rows, nil
}

// readXLSX reads the first sheet. Trailing empty cells, which excelize
// omits, are restored so every row has width fields.
func readXLSX(r io.Reader, opts Options, width int) ([]row, error) {
	f, err := excelize.OpenReader(r, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("opening XLSX %s: %w", opts.Name, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets in %s", opts.Name)
	}
	cells, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s of %s: %w", sheets[0], opts.Name, err)
	}

	var rows []row
	first := true
	for i, fields := range cells {
		if len(fields) == 0 {
			continue
		}
		if first {
			first = false
			if opts.Header {
				continue
			}
		}
		line := i + 1
		if len(fields) > width {
			for _, extra := range fields[width:] {
				if strings.TrimSpace(extra) != "" {
					return nil, &ParseError{
						File: opts.Name,
						Line: line,
						Err:  fmt.Errorf("wrong number of fields: got %d, want %d", len(fields), width),
					}
				}
			}
			fields = fields[:width]
		}
		for len(fields) < width {
			fields = append(fields, "")
		}
		rows = append(rows, row{line: line, fields: fields})
	}
	return rows, nil
}
