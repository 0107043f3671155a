// Package export writes batch results as a spreadsheet, one row per document and one
// column per schema category.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"meeting-insights-go/internal/aggregator"
	"meeting-insights-go/internal/types"
)

const (
	ResultsSheet = "Analysis Results"
	SummarySheet = "Summary"

	FormatXLSX = "xlsx"
	FormatCSV  = "csv"

	maxColumnWidth = 50
)

// BaseColumns precede the per-category columns.
var BaseColumns = []string{
	"Index",
	"Input Type",
	"Source",
	"Customer Name",
	"Meeting Date",
	"Word Count",
	"Processing Time (ms)",
	"Error",
}

// Columns lists every exportable column for tmpl.
func Columns(tmpl types.SchemaTemplate) []string {
	cols := append([]string(nil), BaseColumns...)
	for _, c := range tmpl.Categories {
		cols = append(cols, c.Name)
	}
	return cols
}

// Select keeps the selected columns in their natural order. Unknown names are ignored;
// an empty selection means every column.
func Select(all, selected []string) []string {
	if len(selected) == 0 {
		return all
	}
	want := make(map[string]bool, len(selected))
	for _, s := range selected {
		want[strings.TrimSpace(s)] = true
	}
	var out []string
	for _, c := range all {
		if want[c] {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return all
	}
	return out
}

// row renders one result; numbers stay numeric for the xlsx writer.
func row(item types.BatchItemResult, cols []string) []any {
	out := make([]any, len(cols))
	for i, c := range cols {
		switch c {
		case "Index":
			out[i] = item.Index + 1
		case "Input Type":
			out[i] = string(item.InputType)
		case "Source":
			out[i] = item.Filename
		case "Customer Name":
			out[i] = item.CustomerName
		case "Meeting Date":
			out[i] = item.MeetingDate
		case "Word Count":
			out[i] = item.WordCount
		case "Processing Time (ms)":
			out[i] = item.ProcessingTimeMs
		case "Error":
			out[i] = item.Error
		default:
			if r, ok := item.Categories.Get(c); ok {
				out[i] = strings.Join(r.Values, ", ")
			} else {
				out[i] = ""
			}
		}
	}
	return out
}

// Write dispatches on format ("xlsx" or "csv").
func Write(w io.Writer, format string, tmpl types.SchemaTemplate, items []types.BatchItemResult, selected []string) error {
	switch strings.ToLower(format) {
	case "", FormatXLSX:
		return WriteXLSX(w, tmpl, items, selected)
	case FormatCSV:
		return WriteCSV(w, tmpl, items, selected)
	}
	return fmt.Errorf("unsupported export format %q", format)
}

// ContentType is the MIME type served for format.
func ContentType(format string) string {
	if strings.EqualFold(format, FormatCSV) {
		return "text/csv"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func WriteCSV(w io.Writer, tmpl types.SchemaTemplate, items []types.BatchItemResult, selected []string) error {
	cols := Select(Columns(tmpl), selected)
	cw := csv.NewWriter(w)
	if err := cw.Write(cols); err != nil {
		return err
	}
	for _, item := range items {
		vals := row(item, cols)
		rec := make([]string, len(vals))
		for i, v := range vals {
			rec[i] = toString(v)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes the results sheet plus a Summary sheet of value counts per category.
func WriteXLSX(w io.Writer, tmpl types.SchemaTemplate, items []types.BatchItemResult, selected []string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ResultsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	cols := Select(Columns(tmpl), selected)
	widths := make([]int, len(cols))
	header := make([]any, len(cols))
	for i, c := range cols {
		header[i] = c
		widths[i] = utf8.RuneCountInString(c)
	}
	if err := f.SetSheetRow(ResultsSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for r, item := range items {
		vals := row(item, cols)
		for i, v := range vals {
			if n := utf8.RuneCountInString(toString(v)); n > widths[i] {
				widths[i] = n
			}
		}
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := f.SetSheetRow(ResultsSheet, cell, &vals); err != nil {
			return fmt.Errorf("write row %d: %w", r+1, err)
		}
	}
	for i, wd := range widths {
		name, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(ResultsSheet, name, name, float64(min(wd+2, maxColumnWidth))); err != nil {
			return fmt.Errorf("set width: %w", err)
		}
	}

	if err := writeSummary(f, aggregator.Aggregate(tmpl, items)); err != nil {
		return err
	}
	f.SetActiveSheet(0)
	return f.Write(w)
}

func writeSummary(f *excelize.File, in aggregator.Insight) error {
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("add summary sheet: %w", err)
	}
	rows := [][]any{
		{"Total Items", in.TotalItems},
		{"Successful Items", in.SuccessfulItems},
		{"Category", "Value", "Count"},
	}
	for _, c := range in.Categories {
		if len(c.Values) == 0 {
			rows = append(rows, []any{c.CategoryName, "", 0})
			continue
		}
		for _, v := range c.Values {
			rows = append(rows, []any{c.CategoryName, v.Value, v.Count})
		}
	}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(SummarySheet, cell, &r); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}
	return f.SetColWidth(SummarySheet, "A", "B", 30)
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	}
	return fmt.Sprint(v)
}
