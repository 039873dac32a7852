package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// WorkbookData is the outcome of parsing an uploaded spreadsheet. Malformed
// content never produces a Go error; problems are reported as descriptive
// strings in Errors so the client can show them next to the upload.
type WorkbookData struct {
	SheetName  string              `json:"sheetName"`
	SheetNames []string            `json:"sheetNames"`
	Headers    []string            `json:"headers"`
	Rows       []map[string]string `json:"rows"`
	Errors     []string            `json:"errors"`
}

// ParseWorkbook parses an uploaded workbook using its default data sheet.
// Export templates put instructions on the first sheet, so when the workbook
// has more than one sheet the second is read; single-sheet workbooks use the
// first.
func ParseWorkbook(r io.Reader) *WorkbookData {
	data := &WorkbookData{Rows: []map[string]string{}, Errors: []string{}}

	f, err := excelize.OpenReader(r)
	if err != nil {
		data.Errors = append(data.Errors, fmt.Sprintf("Unable to read workbook: %v", err))
		return data
	}
	defer f.Close()

	data.SheetNames = f.GetSheetList()
	if len(data.SheetNames) == 0 {
		data.Errors = append(data.Errors, "Workbook contains no sheets")
		return data
	}

	sheetName := data.SheetNames[0]
	if len(data.SheetNames) > 1 {
		sheetName = data.SheetNames[1]
	}

	parseSheetInto(f, sheetName, data)
	return data
}

// ParseSheet parses one named sheet of an uploaded workbook.
func ParseSheet(r io.Reader, sheetName string) *WorkbookData {
	data := &WorkbookData{Rows: []map[string]string{}, Errors: []string{}}

	f, err := excelize.OpenReader(r)
	if err != nil {
		data.Errors = append(data.Errors, fmt.Sprintf("Unable to read workbook: %v", err))
		return data
	}
	defer f.Close()

	data.SheetNames = f.GetSheetList()

	found := false
	for _, name := range data.SheetNames {
		if name == sheetName {
			found = true
			break
		}
	}
	if !found {
		data.Errors = append(data.Errors, fmt.Sprintf("Sheet %q not found in workbook", sheetName))
		return data
	}

	parseSheetInto(f, sheetName, data)
	return data
}

// parseSheetInto reads one sheet's header and data rows into data
func parseSheetInto(f *excelize.File, sheetName string, data *WorkbookData) {
	data.SheetName = sheetName

	excelRows, err := f.GetRows(sheetName)
	if err != nil {
		data.Errors = append(data.Errors, fmt.Sprintf("Unable to read sheet %q: %v", sheetName, err))
		return
	}

	if len(excelRows) < 2 {
		data.Errors = append(data.Errors, "Sheet must have a header row and at least one data row")
		return
	}

	headers := excelRows[0]
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
		// Remove required marker if present
		headers[i] = strings.TrimSuffix(headers[i], " *")
	}
	data.Headers = headers

	for rowIdx, excelRow := range excelRows[1:] {
		row := make(map[string]string)
		for i, value := range excelRow {
			if i < len(headers) {
				row[headers[i]] = strings.TrimSpace(value)
			}
		}
		row["_row"] = strconv.Itoa(rowIdx + 2) // Track row number (1-indexed, +1 for header)
		data.Rows = append(data.Rows, row)
	}
}

// ParseCSV parses an uploaded CSV file into the same shape as ParseWorkbook.
func ParseCSV(r io.Reader) *WorkbookData {
	data := &WorkbookData{Rows: []map[string]string{}, Errors: []string{}}

	reader := csv.NewReader(r)

	headers, err := reader.Read()
	if err != nil {
		data.Errors = append(data.Errors, fmt.Sprintf("Unable to read CSV header: %v", err))
		return data
	}

	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
		headers[i] = strings.TrimSuffix(headers[i], " *")
	}
	data.Headers = headers

	lineNum := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			data.Errors = append(data.Errors, fmt.Sprintf("Error reading line %d: %v", lineNum+1, err))
			return data
		}

		row := make(map[string]string)
		for i, value := range record {
			if i < len(headers) {
				row[headers[i]] = strings.TrimSpace(value)
			}
		}
		row["_row"] = strconv.Itoa(lineNum + 1)
		data.Rows = append(data.Rows, row)
		lineNum++
	}

	if len(data.Rows) == 0 {
		data.Errors = append(data.Errors, "File must have a header row and at least one data row")
	}

	return data
}
