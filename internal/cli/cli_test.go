package cli

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"meeting-insights-go/internal/types"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader("Stdin notes about search."))
	base := []string{"--mock", "--log-level", "error", "--env-file", filepath.Join(t.TempDir(), "none.env")}
	cmd.SetArgs(append(args, base...))
	err := cmd.Execute()
	return out.String(), err
}

func TestAnalyzeText(t *testing.T) {
	out, err := run(t, "analyze", "--text", "Met the ACME team about search.")
	if err != nil {
		t.Fatal(err)
	}
	var raw struct {
		CustomerName string                     `json:"customer_name"`
		Categories   map[string]json.RawMessage `json:"categories"`
	}
	if err := json.Unmarshal([]byte(out), &raw); err != nil {
		t.Fatalf("%v: %s", err, out)
	}
	if raw.CustomerName != "ACME Corp" || len(raw.Categories) != 4 {
		t.Fatalf("got %s", out)
	}
}

func TestAnalyzeStdinAndErrors(t *testing.T) {
	out, err := run(t, "analyze", "-", "--skip-customer", "-t", "default_vector_search")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "customer_name") {
		t.Fatalf("customer info should be skipped: %s", out)
	}

	if _, err := run(t, "analyze"); err == nil {
		t.Fatal("missing input should fail")
	}
	if _, err := run(t, "analyze", "--text", "x", "-t", "missing"); err == nil {
		t.Fatal("unknown template should fail")
	}
}

func TestBatchFolderCSV(t *testing.T) {
	in := t.TempDir()
	for name, body := range map[string]string{"a.txt": "Acme notes", "b.md": "Globex notes"} {
		if err := os.WriteFile(filepath.Join(in, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	outDir := t.TempDir()
	out, err := run(t, "batch", in, "--out", outDir, "--format", "csv", "--columns", "Source,Product")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "2/2 succeeded") {
		t.Fatalf("out = %s", out)
	}

	matches, _ := filepath.Glob(filepath.Join(outDir, "batch_insights_*.csv"))
	if len(matches) != 1 {
		t.Fatalf("exports = %v", matches)
	}
	f, err := os.Open(matches[0])
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 || rows[0][0] != "Source" || rows[1][0] != "a.txt" || rows[2][1] != "Vector Search" {
		t.Fatalf("rows = %v", rows)
	}
}

func TestBatchRejectsFormat(t *testing.T) {
	if _, err := run(t, "batch", t.TempDir(), "--format", "pdf"); err == nil {
		t.Fatal("expected error")
	}
}

func TestSchemas(t *testing.T) {
	out, err := run(t, "schemas")
	if err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"default_product_feedback", "default_feature_requests", "default_vector_search"} {
		if !strings.Contains(out, id) {
			t.Fatalf("missing %s in %s", id, out)
		}
	}

	schemaFile := filepath.Join(t.TempDir(), "schemas.yaml")
	yaml := "templates:\n  - template_id: regions\n    template_name: Regions\n    categories:\n      - name: Region\n        value_type: inferred\n"
	if err := os.WriteFile(schemaFile, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err = run(t, "schemas", "--json", "--schema-file", schemaFile)
	if err != nil {
		t.Fatal(err)
	}
	var list []types.SchemaTemplate
	if err := json.Unmarshal([]byte(out), &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 4 || list[3].TemplateID != "regions" {
		t.Fatalf("list = %+v", list)
	}
}
