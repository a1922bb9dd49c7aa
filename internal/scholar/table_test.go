package scholar

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dtobolski/sitecv/internal/config"
)

func TestParseCitedByTable(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  CitedByTable
	}{
		{
			name: "english keys",
			input: `{"table": [
				{"citations": {"all": 100, "since_2016": 90}},
				{"h_index": {"all": 5, "since_2016": 4}},
				{"i10_index": {"all": 3, "since_2016": 2}}
			]}`,
			want: CitedByTable{"100", "90", "5", "4", "3", "2"},
		},
		{
			name: "french keys",
			input: `{"table": [
				{"citations": {"all": 100, "depuis_2016": 80}},
				{"indice_h": {"all": 5, "depuis_2016": 4}},
				{"indice_i10": {"all": 3, "depuis_2016": 1}}
			]}`,
			want: CitedByTable{"100", "80", "5", "4", "3", "1"},
		},
		{
			name:  "later since year",
			input: `{"table": [{"citations": {"all": 50, "since_2018": 40}}]}`,
			want:  CitedByTable{CitationsAll: "50", CitationsSince: "40"},
		},
		{
			name:  "no since key",
			input: `{"table": [{"h_index": {"all": 5}}]}`,
			want:  CitedByTable{HIndexAll: "5"},
		},
		{
			name:  "non-object rows are skipped",
			input: `{"table": ["junk", 3, {"citations": "nope"}, {"citations": {"all": 1}}]}`,
			want:  CitedByTable{CitationsAll: "1"},
		},
		{
			name:  "table not a list",
			input: `{"table": {"citations": {"all": 1}}}`,
			want:  CitedByTable{},
		},
		{
			name:  "empty",
			input: ``,
			want:  CitedByTable{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseCitedByTable(json.RawMessage(tt.input))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseCitedByTable() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStat_JSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Stat
		out   string
	}{
		{"number", `42`, "42", `42`},
		{"string number", `"42"`, "42", `42`},
		{"float", `3.5`, "3.5", `3.5`},
		{"null", `null`, "", `""`},
		{"empty string", `""`, "", `""`},
		{"text", `"n/a"`, "n/a", `"n/a"`},
		{"leading zero", `"007"`, "007", `7`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Stat
			if err := json.Unmarshal([]byte(tt.input), &s); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if s != tt.want {
				t.Errorf("Unmarshal() = %q, want %q", s, tt.want)
			}
			out, err := json.Marshal(s)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if string(out) != tt.out {
				t.Errorf("Marshal() = %s, want %s", out, tt.out)
			}
		})
	}
}

func TestStat_InvalidInput(t *testing.T) {
	var s Stat
	if err := json.Unmarshal([]byte(`{"a": 1}`), &s); err == nil {
		t.Error("Unmarshal() expected error for object")
	}
}

func TestLoadMetrics_Missing(t *testing.T) {
	m, err := LoadMetrics(filepath.Join(t.TempDir(), "metrics.json"))
	if err != nil {
		t.Fatalf("LoadMetrics() error = %v", err)
	}
	if m.Source != SourcePlain {
		t.Errorf("Source = %q, want %q", m.Source, SourcePlain)
	}
	if m.Note != MissingMetricsNote {
		t.Errorf("Note = %q, want %q", m.Note, MissingMetricsNote)
	}
	if m.CitationsAll != "" {
		t.Errorf("CitationsAll = %q, want empty", m.CitationsAll)
	}
}

func TestLoadMetrics_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.json")
	content := `{"source": "Google Scholar (via SerpApi)", "author_id": "X1", "citations_all": 12, "h_index_all": null, "last_updated": "01.01.2025"}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing metrics: %v", err)
	}

	m, err := LoadMetrics(path)
	if err != nil {
		t.Fatalf("LoadMetrics() error = %v", err)
	}
	if m.AuthorID != "X1" || m.CitationsAll != "12" || m.HIndexAll != "" {
		t.Errorf("LoadMetrics() = %+v", m)
	}
}

func TestLoadMetrics_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.json")
	if err := os.WriteFile(path, []byte(`{broken`), 0644); err != nil {
		t.Fatalf("writing metrics: %v", err)
	}
	if _, err := LoadMetrics(path); err == nil {
		t.Error("LoadMetrics() expected error for invalid JSON")
	}
}

func TestResolveAuthorID(t *testing.T) {
	dir := t.TempDir()
	withID := filepath.Join(dir, "with.json")
	if err := os.WriteFile(withID, []byte(`{"author_id": "FROMFILE"}`), 0644); err != nil {
		t.Fatalf("writing metrics: %v", err)
	}
	missing := filepath.Join(dir, "missing.json")

	tests := []struct {
		name     string
		path     string
		fallback string
		want     string
		wantErr  bool
	}{
		{"metrics file wins", withID, "ENV", "FROMFILE", false},
		{"fallback", missing, "ENV", "ENV", false},
		{"neither", missing, "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveAuthorID(tt.path, tt.fallback)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ResolveAuthorID() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ResolveAuthorID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveAuthorID_NoConfiguredID(t *testing.T) {
	t.Setenv(config.EnvAuthorID, "")

	root := t.TempDir()
	cfg, err := config.Load(root)
	if err != nil {
		t.Fatalf("config.Load() error = %v", err)
	}

	_, err = ResolveAuthorID(filepath.Join(root, "data", "metrics.json"), cfg.Scholar.AuthorID)
	if !errors.Is(err, ErrMissingAuthorID) {
		t.Errorf("ResolveAuthorID() error = %v, want ErrMissingAuthorID", err)
	}
}
