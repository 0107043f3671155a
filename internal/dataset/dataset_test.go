package dataset

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"

	"meeting-insights-go/internal/types"
)

func writeWorkbook(t *testing.T, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, r := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		row := r
		if err := f.SetSheetRow("Sheet1", cellRef, &row); err != nil {
			t.Fatal(err)
		}
	}
	path := filepath.Join(t.TempDir(), "notes.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadSpreadsheet(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{"Owner", "Meeting Name", "Raw Notes"},
		{"sam", "Acme kickoff", "Meeting with Acme Corp on March 15, 2024."},
		{"lee", "Empty row", ""},
		{"kim", "", "Globex wants RAG."},
	})

	got, err := LoadSpreadsheet(path)
	if err != nil {
		t.Fatal(err)
	}
	want := []types.BatchInput{
		{InputType: types.InputFile, Content: "Meeting with Acme Corp on March 15, 2024.", Filename: "Acme kickoff"},
		{InputType: types.InputFile, Content: "Globex wants RAG.", Filename: "notes.xlsx#row4"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v\nwant %+v", got, want)
	}
}

func TestLoadSpreadsheetWithoutHeaders(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{"A", "B"},
		{"first document", "x"},
	})
	got, err := LoadSpreadsheet(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Content != "first document" {
		t.Fatalf("got %+v", got)
	}
}

func TestLoadSpreadsheetErrors(t *testing.T) {
	if _, err := LoadSpreadsheet(writeWorkbook(t, [][]any{{"Notes"}})); err == nil {
		t.Fatal("header only should fail")
	}
	if _, err := LoadSpreadsheet(writeWorkbook(t, [][]any{{"Notes"}, {""}})); err == nil {
		t.Fatal("no text should fail")
	}
	if _, err := LoadSpreadsheet(filepath.Join(t.TempDir(), "missing.xlsx")); err == nil {
		t.Fatal("missing file should fail")
	}
}

func TestReadSpreadsheet(t *testing.T) {
	data, err := os.ReadFile(writeWorkbook(t, [][]any{{"Transcript"}, {"hello there"}}))
	if err != nil {
		t.Fatal(err)
	}
	got, err := ReadSpreadsheet(bytes.NewReader(data), "upload.xlsx")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Filename != "upload.xlsx#row2" {
		t.Fatalf("got %+v", got)
	}
}

func TestLoadFolder(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"b.md":      "# Globex\nRAG pilot",
		"a.txt":     "Acme notes",
		"empty.txt": "  \n",
		"image.png": "binary",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "nested.txt"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := LoadFolder(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []types.BatchInput{
		{InputType: types.InputFile, Content: "Acme notes", Filename: "a.txt"},
		{InputType: types.InputFile, Content: "# Globex\nRAG pilot", Filename: "b.md"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v", got)
	}

	if _, err := LoadFolder(t.TempDir()); err == nil {
		t.Fatal("empty folder should fail")
	}
}

func TestLoadDispatch(t *testing.T) {
	dir := t.TempDir()
	single := filepath.Join(dir, "call.txt")
	if err := os.WriteFile(single, []byte("one document"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := Load(single)
	if err != nil || len(got) != 1 || got[0].Filename != "call.txt" {
		t.Fatalf("single file = %+v, %v", got, err)
	}
	if got, err := Load(dir); err != nil || len(got) != 1 {
		t.Fatalf("dir = %+v, %v", got, err)
	}
}
