package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"meeting-insights-go/internal/types"
)

var noteExtensions = map[string]bool{".txt": true, ".md": true}

// LoadFolder reads every .txt and .md file directly inside dir, sorted by name.
// Empty files are skipped.
func LoadFolder(dir string) ([]types.BatchInput, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !noteExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var out []types.BatchInput
	for _, n := range names {
		data, err := os.ReadFile(filepath.Join(dir, n))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", n, err)
		}
		if strings.TrimSpace(string(data)) == "" {
			continue
		}
		out = append(out, types.BatchInput{InputType: types.InputFile, Content: string(data), Filename: n})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no .txt or .md documents in %s", dir)
	}
	return out, nil
}

// Load picks the loader from the path: a directory, an .xlsx workbook, or a single
// text file.
func Load(path string) ([]types.BatchInput, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	switch {
	case info.IsDir():
		return LoadFolder(path)
	case strings.EqualFold(filepath.Ext(path), ".xlsx"):
		return LoadSpreadsheet(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return []types.BatchInput{{InputType: types.InputFile, Content: string(data), Filename: filepath.Base(path)}}, nil
}
