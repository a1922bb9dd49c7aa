package build

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtobolski/sitecv/internal/config"
	"github.com/dtobolski/sitecv/internal/profile"
	"github.com/dtobolski/sitecv/internal/publication"
	"github.com/dtobolski/sitecv/internal/storage"
)

const testCSV = "record_type;year;category;subtype;citation;doi;mnicsw_points;impact_factor;start_date;end_date;city;country;award\n" +
	"article;2021;A;;Kowalski J. Membranes & <filters>.;10.1000/mem;100;3.5;;;;;\n" +
	"article;2023;B;;Nowak A. Soil.;not-a-doi;20;;;;;;\n" +
	"conference_contribution;2022;;oral;Talk in Łódź.;;;;12.05.2022;13.05.2022;Łódź;Poland;\n"

var testNow = time.Date(2025, 1, 9, 12, 0, 0, 0, time.UTC)

// setupSite writes a minimal site and returns its resolved paths.
func setupSite(t *testing.T) config.Paths {
	t.Helper()

	root := t.TempDir()
	paths := config.Default().Paths(root)

	require.NoError(t, os.MkdirAll(paths.DataDir, 0755))
	require.NoError(t, os.WriteFile(paths.PublicationsCSV, []byte(testCSV), 0644))
	require.NoError(t, os.WriteFile(paths.ProfileJSON, []byte(`{"name": "Jan Kowalski", "role": "Researcher", "links": {"ORCID": "https://orcid.org/0"}}`), 0644))
	require.NoError(t, os.WriteFile(paths.MetricsJSON, []byte(`{"source": "Google Scholar (via SerpApi)", "author_id": "X", "citations_all": 42, "h_index_all": 3, "i10_index_all": 1, "last_updated": "01.01.2025", "profile_url": "https://scholar.google.com/citations?hl=en&user=X"}`), 0644))

	return paths
}

func testOptions(paths config.Paths) Options {
	return Options{Paths: paths, Now: func() time.Time { return testNow }}
}

func TestRun(t *testing.T) {
	paths := setupSite(t)

	res, err := Run(context.Background(), testOptions(paths))
	require.NoError(t, err)

	assert.False(t, res.Skipped)
	assert.Equal(t, 3, res.Records)
	assert.Equal(t, "utf-8", res.Encoding)
	assert.Equal(t, ";", res.Delimiter)
	assert.Equal(t, 1, res.PDFPages)
	assert.False(t, res.EmbeddedFonts)
	assert.Equal(t, []string{"not-a-doi"}, res.InvalidDOIs)
	assert.Empty(t, res.UnrenderedDOIs, "valid DOIs should be readable from the PDF")
	assert.Equal(t, []string{
		"data/publications.json",
		"data/summary.json",
		"assets/Scientific-CV.pdf",
		"assets/Scientific-CV.docx",
	}, res.Outputs)

	for _, out := range Outputs(paths) {
		info, err := os.Stat(out)
		require.NoError(t, err, "output %s", out)
		assert.NotZero(t, info.Size(), "output %s is empty", out)
	}

	var exported []publication.Fields
	require.NoError(t, storage.ReadJSON(paths.PublicationsJSON, &exported))
	require.Len(t, exported, 3)
	assert.Equal(t, "2023", exported[0].Year)
	assert.Equal(t, "2022", exported[1].Year)
	assert.Equal(t, "Kowalski J. Membranes & <filters>.", exported[2].Citation)

	raw, err := os.ReadFile(paths.PublicationsJSON)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Łódź")
	assert.Contains(t, string(raw), "& <filters>")

	var sum map[string]interface{}
	require.NoError(t, json.Unmarshal(mustRead(t, paths.SummaryJSON), &sum))
	assert.Equal(t, "data/publications.csv", sum["computed_from"])
	assert.Equal(t, "09.01.2025", sum["generated_on"])
	totals := sum["totals"].(map[string]interface{})
	assert.Equal(t, float64(120), totals["mnicsw_points"])
	assert.Equal(t, float64(1), totals["conference_oral_presentations"])
	scholarMetrics := sum["scholar_metrics"].(map[string]interface{})
	assert.Equal(t, float64(42), scholarMetrics["citations_all"])
}

func TestRun_SkipsUnchanged(t *testing.T) {
	paths := setupSite(t)
	opts := testOptions(paths)

	_, err := Run(context.Background(), opts)
	require.NoError(t, err)

	res, err := Run(context.Background(), opts)
	require.NoError(t, err)
	assert.True(t, res.Skipped, "second build with unchanged inputs should be skipped")

	opts.Force = true
	res, err = Run(context.Background(), opts)
	require.NoError(t, err)
	assert.False(t, res.Skipped, "forced build should not be skipped")

	opts.Force = false
	require.NoError(t, os.WriteFile(paths.PublicationsCSV, []byte(testCSV+"article;2024;A;;New.;;;;;;;;\n"), 0644))
	res, err = Run(context.Background(), opts)
	require.NoError(t, err)
	assert.False(t, res.Skipped, "changed CSV should trigger a rebuild")
	assert.Equal(t, 4, res.Records)

	require.NoError(t, os.Remove(paths.CVDOCX))
	res, err = Run(context.Background(), opts)
	require.NoError(t, err)
	assert.False(t, res.Skipped, "missing output should trigger a rebuild")
}

func TestRun_RebuildsWhenOutputPathsChange(t *testing.T) {
	paths := setupSite(t)

	_, err := Run(context.Background(), testOptions(paths))
	require.NoError(t, err)

	cfg := config.Default()
	cfg.CVBaseName = "Renamed-CV"
	renamed := cfg.Paths(paths.Root)

	res, err := Run(context.Background(), testOptions(renamed))
	require.NoError(t, err)
	assert.False(t, res.Skipped, "a new CV name should trigger a rebuild")
	assert.Contains(t, res.Outputs, "assets/Renamed-CV.pdf")
	for _, out := range []string{renamed.CVPDF, renamed.CVDOCX} {
		_, err := os.Stat(out)
		assert.NoError(t, err, "output %s should be written", out)
	}

	res, err = Run(context.Background(), testOptions(renamed))
	require.NoError(t, err)
	assert.True(t, res.Skipped)
}

func TestRun_MissingInputs(t *testing.T) {
	t.Run("profile", func(t *testing.T) {
		paths := setupSite(t)
		require.NoError(t, os.Remove(paths.ProfileJSON))

		_, err := Run(context.Background(), testOptions(paths))
		assert.True(t, errors.Is(err, profile.ErrNotFound), "got %v", err)
	})

	t.Run("csv", func(t *testing.T) {
		paths := setupSite(t)
		require.NoError(t, os.Remove(paths.PublicationsCSV))

		_, err := Run(context.Background(), testOptions(paths))
		assert.True(t, errors.Is(err, publication.ErrNotFound), "got %v", err)
	})

	t.Run("metrics is optional", func(t *testing.T) {
		paths := setupSite(t)
		require.NoError(t, os.Remove(paths.MetricsJSON))

		res, err := Run(context.Background(), testOptions(paths))
		require.NoError(t, err)
		assert.Equal(t, "", res.Summary.ScholarMetrics.CitationsAll.String())
	})
}

func TestRun_Cancelled(t *testing.T) {
	paths := setupSite(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, testOptions(paths))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOpenIndex(t *testing.T) {
	paths := setupSite(t)

	db, rebuilt, err := OpenIndex(paths, false, nil)
	require.NoError(t, err)
	assert.True(t, rebuilt)
	count, err := db.Count()
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	require.NoError(t, db.Close())

	db, rebuilt, err = OpenIndex(paths, false, nil)
	require.NoError(t, err)
	assert.False(t, rebuilt, "unchanged CSV should reuse the index")
	require.NoError(t, db.Close())

	require.NoError(t, os.WriteFile(paths.PublicationsCSV, []byte(testCSV+"article;2024;A;;New.;;;;;;;;\n"), 0644))
	db, rebuilt, err = OpenIndex(paths, false, nil)
	require.NoError(t, err)
	assert.True(t, rebuilt)
	defer db.Close()

	records, err := db.List(storage.Filter{Year: 2024})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "New.", records[0].Citation)
}

func TestOpenIndex_MissingCSV(t *testing.T) {
	paths := setupSite(t)
	require.NoError(t, os.Remove(paths.PublicationsCSV))

	_, _, err := OpenIndex(paths, false, nil)
	assert.ErrorIs(t, err, publication.ErrNotFound)
	_, statErr := os.Stat(filepath.Dir(config.DBPath(paths.Root)))
	assert.True(t, os.IsNotExist(statErr), "no cache directory should be created")
}

func TestWatch_RebuildsOnChange(t *testing.T) {
	paths := setupSite(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var results []*Result
	built := make(chan struct{}, 10)

	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, WatchOptions{
			Options:  testOptions(paths),
			Debounce: 50 * time.Millisecond,
			OnBuild: func(res *Result, err error) {
				mu.Lock()
				results = append(results, res)
				mu.Unlock()
				built <- struct{}{}
			},
		})
	}()

	waitBuild := func() {
		t.Helper()
		select {
		case <-built:
		case <-time.After(10 * time.Second):
			t.Fatal("timed out waiting for build")
		}
	}

	waitBuild()
	require.NoError(t, os.WriteFile(paths.PublicationsCSV, []byte(testCSV+"article;2024;A;;New.;;;;;;;;\n"), 0644))
	waitBuild()

	cancel()
	require.NoError(t, <-done)

	mu.Lock()
	defer mu.Unlock()
	require.GreaterOrEqual(t, len(results), 2)
	require.NotNil(t, results[1])
	assert.False(t, results[1].Skipped)
	assert.Equal(t, 4, results[1].Records)
}

func mustRead(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}
