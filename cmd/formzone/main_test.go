package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"formzone-hq/indexer/pkg/batch"
	"formzone-hq/indexer/pkg/cli"
	"formzone-hq/indexer/pkg/rowstore"
)

const testProjectConfig = `{
    "validations": [
        {"strategy": "email_addresses_valid", "field_names": ["Email"]},
        {"strategy": "max_tickboxes", "field_names": ["Yes", "No"], "params": {"max": 1}}
    ],
    "field_types": {"Email": "email"}
}`

const testPage1 = `[{"name": "Name", "type": "text"}, {"name": "Email", "type": "text"}]`

const testPage2 = `[{"name": "Yes", "type": "tickbox"}, {"name": "No", "type": "tickbox"}]`

const testOutput = `tiff_path,Name,Email,Yes,No,Comments
scans/0001.tif,Ann,ann@example.ie,X,,
scans/0002.tif,Bob,not-an-email,X,X,
scans/0003.tif,Cat,cat@example.ie,,,P1: Name: check spelling
`

// testProject writes a two-page project and its output CSV and returns the
// project folder and csv path.
func testProject(t *testing.T) (string, string) {
	t.Helper()

	dir := t.TempDir()
	folder := filepath.Join(dir, "census")
	files := map[string]string{
		filepath.Join(folder, "json", "project_config.json"): testProjectConfig,
		filepath.Join(folder, "json", "1.json"):              testPage1,
		filepath.Join(folder, "json", "2.json"):              testPage2,
		filepath.Join(dir, "batch1", "index.csv"):            testOutput,
	}
	for path, content := range files {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return folder, filepath.Join(dir, "batch1", "index.csv")
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// run executes the CLI with args and returns stdout, stderr and the error.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("FORMZONE_TELEMETRY_LOGGING_LEVEL", "error")

	resetFlags(rootCmd)
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func loadOutput(t *testing.T, csvPath string) *rowstore.Store {
	t.Helper()
	store, err := rowstore.Load(csvPath, []string{"Name", "Email", "Yes", "No"})
	if err != nil {
		t.Fatalf("load output: %v", err)
	}
	return store
}

func TestVersionCommand(t *testing.T) {
	out, _, err := run(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out, "formzone "+Version) {
		t.Errorf("Expected version line, got %q", out)
	}
	if !strings.Contains(out, "Go Version:") {
		t.Errorf("Expected Go version line, got %q", out)
	}
}

func TestValidateBatch_JSON(t *testing.T) {
	folder, csvPath := testProject(t)

	out, _, err := run(t, "validate", "batch", "-p", folder, "--csv", csvPath, "-f", "json")
	if err != nil {
		t.Fatalf("validate batch failed: %v", err)
	}

	var summary batch.Summary
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("Expected JSON summary, got %q: %v", out, err)
	}
	if summary.Documents != 3 {
		t.Errorf("Expected 3 documents, got %d", summary.Documents)
	}
	if summary.Failures != 2 {
		t.Errorf("Expected 2 failures, got %d", summary.Failures)
	}

	cell, _ := loadOutput(t, csvPath).Comments(1)
	if !strings.Contains(cell, "P1: Email: Invalid email address: not-an-email") {
		t.Errorf("Expected email comment in saved row, got %q", cell)
	}
	if !strings.Contains(cell, "P2: ") {
		t.Errorf("Expected page 2 tick-box comment in saved row, got %q", cell)
	}
}

func TestValidateBatch_Strict(t *testing.T) {
	folder, csvPath := testProject(t)

	_, _, err := run(t, "validate", "batch", "-p", folder, "--csv", csvPath, "--strict")
	if !errors.Is(err, cli.ErrFailuresFound) {
		t.Fatalf("Expected ErrFailuresFound, got %v", err)
	}
	if code := cli.ExitCode(err); code != cli.ExitFailures {
		t.Errorf("Expected exit code %d, got %d", cli.ExitFailures, code)
	}
}

func TestValidateDocument_ByTiff(t *testing.T) {
	folder, csvPath := testProject(t)

	out, _, err := run(t, "validate", "document", "-p", folder, "--csv", csvPath, "--tiff", "SCANS/0001.TIF")
	if err != nil {
		t.Fatalf("validate document failed: %v", err)
	}
	if !strings.Contains(out, "No validation failures found.") {
		t.Errorf("Expected clean result, got %q", out)
	}
}

func TestValidateDocument_MissingProject(t *testing.T) {
	t.Setenv("FORMZONE_PROJECT_CONFIG_FOLDER", "")

	_, _, err := run(t, "validate", "document", "--row", "0")
	var cfgErr *cli.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Expected ConfigError, got %v", err)
	}
}

func TestComments_AddListRemove(t *testing.T) {
	folder, csvPath := testProject(t)
	common := []string{"-p", folder, "--csv", csvPath}

	args := append([]string{"comments", "add", "--row", "0", "--page", "2", "--field", "Yes", "--text", "Faint tick"}, common...)
	if _, _, err := run(t, args...); err != nil {
		t.Fatalf("comments add failed: %v", err)
	}
	cell, _ := loadOutput(t, csvPath).Comments(0)
	if cell != "P2: Yes: Faint tick" {
		t.Errorf("Expected saved comment, got %q", cell)
	}

	out, _, err := run(t, append([]string{"comments", "list", "-f", "json"}, common...)...)
	if err != nil {
		t.Fatalf("comments list failed: %v", err)
	}
	var items []batch.ChecklistItem
	if err := json.Unmarshal([]byte(out), &items); err != nil {
		t.Fatalf("Expected JSON checklist, got %q: %v", out, err)
	}
	if len(items) != 2 {
		t.Fatalf("Expected 2 checklist items, got %d", len(items))
	}
	if items[0].Row != 0 || items[1].Row != 2 {
		t.Errorf("Expected items ordered by row, got rows %d and %d", items[0].Row, items[1].Row)
	}

	args = append([]string{"comments", "remove", "--row", "0", "--page", "2", "--field", "Yes"}, common...)
	if _, _, err := run(t, args...); err != nil {
		t.Fatalf("comments remove failed: %v", err)
	}
	cell, _ = loadOutput(t, csvPath).Comments(0)
	if cell != "" {
		t.Errorf("Expected empty comments after remove, got %q", cell)
	}

	args = append([]string{"comments", "remove", "--row", "0", "--page", "2", "--field", "Yes"}, common...)
	if _, _, err := run(t, args...); err == nil {
		t.Error("Expected error removing a missing comment")
	}
}

func TestFieldtypeCheck(t *testing.T) {
	out, _, err := run(t, "fieldtype", "check", "integer", "42")
	if err != nil {
		t.Fatalf("fieldtype check failed: %v", err)
	}
	if !strings.Contains(out, "is a valid integer") {
		t.Errorf("Expected valid message, got %q", out)
	}

	_, _, err = run(t, "fieldtype", "check", "integer", "4.2")
	if !errors.Is(err, cli.ErrFailuresFound) {
		t.Errorf("Expected ErrFailuresFound, got %v", err)
	}

	if _, _, err := run(t, "fieldtype", "check", "colour", "red"); err == nil {
		t.Error("Expected error for unknown field type")
	}
}

func TestStrategiesCommand(t *testing.T) {
	out, _, err := run(t, "strategies", "-f", "json")
	if err != nil {
		t.Fatalf("strategies failed: %v", err)
	}
	var names []string
	if err := json.Unmarshal([]byte(out), &names); err != nil {
		t.Fatalf("Expected JSON list, got %q: %v", out, err)
	}
	found := false
	for _, n := range names {
		if n == "email_addresses_valid" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected email_addresses_valid in %v", names)
	}
}

func TestHistory_RecordsRuns(t *testing.T) {
	folder, csvPath := testProject(t)
	t.Setenv("FORMZONE_HISTORY_ENABLED", "true")
	t.Setenv("FORMZONE_HISTORY_DRIVER", "sqlite")
	t.Setenv("FORMZONE_HISTORY_PATH", filepath.Join(t.TempDir(), "history.db"))

	if _, _, err := run(t, "validate", "batch", "-p", folder, "--csv", csvPath); err != nil {
		t.Fatalf("validate batch failed: %v", err)
	}

	out, _, err := run(t, "history", "list", "-f", "json")
	if err != nil {
		t.Fatalf("history list failed: %v", err)
	}
	var runs []struct {
		ID       string `json:"id"`
		Kind     string `json:"kind"`
		Project  string `json:"project"`
		Failures int    `json:"failures"`
	}
	if err := json.Unmarshal([]byte(out), &runs); err != nil {
		t.Fatalf("Expected JSON runs, got %q: %v", out, err)
	}
	if len(runs) != 1 {
		t.Fatalf("Expected 1 run, got %d", len(runs))
	}
	if runs[0].Kind != "batch" || runs[0].Project != "census" || runs[0].Failures != 2 {
		t.Errorf("Unexpected run %+v", runs[0])
	}

	out, _, err = run(t, "history", "show", runs[0].ID, "-f", "json")
	if err != nil {
		t.Fatalf("history show failed: %v", err)
	}
	var failures []struct {
		Row   int    `json:"row"`
		Field string `json:"field"`
	}
	if err := json.Unmarshal([]byte(out), &failures); err != nil {
		t.Fatalf("Expected JSON failures, got %q: %v", out, err)
	}
	if len(failures) != 2 || failures[0].Row != 1 {
		t.Errorf("Unexpected failures %+v", failures)
	}

	out, _, err = run(t, "history", "prune", "--older-than", "1ns")
	if err != nil {
		t.Fatalf("history prune failed: %v", err)
	}
	if !strings.Contains(out, "Deleted 1 run(s).") {
		t.Errorf("Expected one pruned run, got %q", out)
	}
}

func TestCommentsSummary(t *testing.T) {
	folder, csvPath := testProject(t)
	second := filepath.Join(filepath.Dir(filepath.Dir(csvPath)), "batch2", "index.csv")
	if err := os.MkdirAll(filepath.Dir(second), 0o755); err != nil {
		t.Fatal(err)
	}
	content := "tiff_path,Name,Email,Yes,No,Comments\nscans/0009.tif,Dee,dee@,X,,P1: Email: Invalid email address: dee@ | P2: Yes: faint\n"
	if err := os.WriteFile(second, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := run(t, "comments", "summary", "-p", folder, "--csv", csvPath, "-f", "json", csvPath, second)
	if err != nil {
		t.Fatalf("comments summary failed: %v", err)
	}
	var stats []batch.Stats
	if err := json.Unmarshal([]byte(out), &stats); err != nil {
		t.Fatalf("Expected JSON stats, got %q: %v", out, err)
	}
	want := []batch.Stats{
		{Path: csvPath, Rows: 3, RowsWithComments: 1, Comments: 1},
		{Path: second, Rows: 1, RowsWithComments: 1, Comments: 2},
	}
	if len(stats) != len(want) {
		t.Fatalf("Expected %d batches, got %d", len(want), len(stats))
	}
	for i := range want {
		if stats[i] != want[i] {
			t.Errorf("Batch %d: expected %+v, got %+v", i, want[i], stats[i])
		}
	}

	out, _, err = run(t, "comments", "summary", "-p", folder, "--csv", csvPath)
	if err != nil {
		t.Fatalf("comments summary failed: %v", err)
	}
	if !strings.Contains(out, csvPath) {
		t.Errorf("Expected table row for %s, got %q", csvPath, out)
	}
}

func TestDeliver(t *testing.T) {
	folder, csvPath := testProject(t)

	out, _, err := run(t, "deliver", "-p", folder, "--csv", csvPath, "--job", "census", "-f", "json")
	if err != nil {
		t.Fatalf("deliver failed: %v", err)
	}
	var result batch.Delivery
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("Expected JSON delivery, got %q: %v", out, err)
	}

	dir := filepath.Join(filepath.Dir(filepath.Dir(csvPath)), "_deliveries", "census")
	if result.DataPath != filepath.Join(dir, "census.csv") {
		t.Errorf("Expected data file in %s, got %s", dir, result.DataPath)
	}
	if result.Clean != 2 || result.Exceptions != 1 {
		t.Errorf("Expected 2 clean and 1 exception, got %d and %d", result.Clean, result.Exceptions)
	}

	data, err := os.ReadFile(result.DataPath)
	if err != nil {
		t.Fatal(err)
	}
	wantData := `tiff_path,Name,Email,Yes,No,Comments
"scans/0001.tif","Ann","ann@example.ie","X",,
"scans/0002.tif","Bob","not-an-email","X","X",
`
	if string(data) != wantData {
		t.Errorf("Expected data file %q, got %q", wantData, string(data))
	}

	exceptions, err := os.ReadFile(filepath.Join(dir, "census_exceptions.csv"))
	if err != nil {
		t.Fatal(err)
	}
	wantExceptions := `tiff_path,Name,Email,Yes,No,Comments
"scans/0003.tif","Cat","cat@example.ie",,,"P1: Name: check spelling"
`
	if string(exceptions) != wantExceptions {
		t.Errorf("Expected exceptions file %q, got %q", wantExceptions, string(exceptions))
	}
}
