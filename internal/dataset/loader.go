package dataset

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"meeting-insights-go/internal/logger"
	"meeting-insights-go/internal/types"
)

var (
	textHeaders   = []string{"text", "notes", "content", "transcript"}
	sourceHeaders = []string{"source", "file", "name", "title"}
)

// LoadSpreadsheet reads one document per row from the first sheet of an .xlsx file.
// The text and source columns are found by header heuristics.
func LoadSpreadsheet(path string) ([]types.BatchInput, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()
	return readRows(f, filepath.Base(path))
}

// ReadSpreadsheet is LoadSpreadsheet for an uploaded workbook.
func ReadSpreadsheet(r io.Reader, name string) ([]types.BatchInput, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return readRows(f, name)
}

func readRows(f *excelize.File, name string) ([]types.BatchInput, error) {
	log := logger.New().Component("dataset.loader").WithField("source", name)
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) <= 1 {
		return nil, fmt.Errorf("no data rows")
	}

	header := rows[0]
	textIdx := columnFor(header, textHeaders)
	sourceIdx := columnFor(header, sourceHeaders)
	if textIdx == -1 {
		// no recognizable header: assume the first column holds the notes
		textIdx = 0
		log.Warn("no text column header found, using first column")
	}
	if sourceIdx == textIdx {
		sourceIdx = -1
	}

	var out []types.BatchInput
	skipped := 0
	for i, r := range rows[1:] {
		text := cell(r, textIdx)
		if text == "" {
			skipped++
			continue
		}
		source := cell(r, sourceIdx)
		if source == "" {
			source = fmt.Sprintf("%s#row%d", name, i+2)
		}
		out = append(out, types.BatchInput{InputType: types.InputFile, Content: text, Filename: source})
	}
	log.WithField("documents", len(out)).WithField("skipped", skipped).Info("spreadsheet loaded")
	if len(out) == 0 {
		return nil, fmt.Errorf("no rows with text in column %q", cell(header, textIdx))
	}
	return out, nil
}

// columnFor returns the first header containing one of the keywords, trying keywords
// in priority order.
func columnFor(header []string, keywords []string) int {
	for _, k := range keywords {
		for i, h := range header {
			if strings.Contains(strings.ToLower(strings.TrimSpace(h)), k) {
				return i
			}
		}
	}
	return -1
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
