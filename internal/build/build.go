// Package build runs the site build: it reads the profile, metrics and
// publications CSV and writes publications.json, summary.json and the CV in
// PDF and DOCX form.
package build

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/dtobolski/sitecv/internal/config"
	"github.com/dtobolski/sitecv/internal/cv"
	"github.com/dtobolski/sitecv/internal/manifest"
	"github.com/dtobolski/sitecv/internal/profile"
	"github.com/dtobolski/sitecv/internal/publication"
	"github.com/dtobolski/sitecv/internal/scholar"
	"github.com/dtobolski/sitecv/internal/storage"
	"github.com/dtobolski/sitecv/internal/summary"
)

// Options configures a build.
type Options struct {
	Paths  config.Paths
	Force  bool             // Rebuild even when the manifest shows no changes
	Now    func() time.Time // Defaults to time.Now
	Logger *zap.Logger      // Defaults to a no-op logger
}

func (o *Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

func (o *Options) logger() *zap.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return zap.NewNop()
}

// Result describes a finished build.
type Result struct {
	Skipped        bool             `json:"skipped"`
	Records        int              `json:"records"`
	Encoding       string           `json:"encoding,omitempty"`
	Delimiter      string           `json:"delimiter,omitempty"`
	Outputs        []string         `json:"outputs"`
	PDFPages       int              `json:"pdf_pages,omitempty"`
	EmbeddedFonts  bool             `json:"embedded_fonts"`
	InvalidDOIs    []string         `json:"invalid_dois,omitempty"`
	UnrenderedDOIs []string         `json:"unrendered_dois,omitempty"`
	Summary        *summary.Summary `json:"summary,omitempty"`
}

// Data is everything read from the site's input files.
type Data struct {
	Records []publication.Record
	CSV     *publication.LoadResult
	Metrics *scholar.Metrics
}

// LoadData reads the publications CSV and metrics.json. A missing metrics
// file yields placeholder metrics; a missing CSV is an error.
func LoadData(paths config.Paths) (*Data, error) {
	metrics, err := scholar.LoadMetrics(paths.MetricsJSON)
	if err != nil {
		return nil, err
	}

	res, err := publication.LoadFile(paths.PublicationsCSV)
	if err != nil {
		return nil, err
	}

	return &Data{Records: res.Records, CSV: res, Metrics: metrics}, nil
}

// Summarize computes the summary for data as of now.
func Summarize(paths config.Paths, data *Data, now time.Time) *summary.Summary {
	return summary.Compute(data.Records, data.Metrics, paths.Rel(paths.PublicationsCSV), now)
}

// Inputs lists the files whose contents determine the build outputs.
func Inputs(paths config.Paths) []string {
	return []string{
		paths.PublicationsCSV,
		paths.ProfileJSON,
		paths.MetricsJSON,
		filepath.Join(paths.FontsDir, cv.FontRegularFile),
		filepath.Join(paths.FontsDir, cv.FontBoldFile),
	}
}

// Outputs lists the files a build writes.
func Outputs(paths config.Paths) []string {
	return []string{
		paths.PublicationsJSON,
		paths.SummaryJSON,
		paths.CVPDF,
		paths.CVDOCX,
	}
}

// Run performs one build. When the manifest shows the same inputs on the
// same day and every output exists, the build is skipped unless Force is set.
func Run(ctx context.Context, opts Options) (*Result, error) {
	log := opts.logger()
	paths := opts.Paths
	now := opts.now()
	generatedOn := now.Format(publication.DateLayout)

	digests, err := hashInputs(paths)
	if err != nil {
		return nil, err
	}

	manifestPath := config.ManifestPath(paths.Root)
	prev, err := manifest.Load(manifestPath)
	if err != nil {
		log.Warn("Ignoring unreadable build manifest", zap.Error(err))
		prev = nil
	}
	if !opts.Force && prev.Fresh(digests, Outputs(paths), generatedOn) {
		log.Info("Inputs unchanged, skipping build")
		return &Result{Skipped: true, Outputs: relAll(paths, Outputs(paths))}, nil
	}

	prof, err := profile.Load(paths.ProfileJSON)
	if err != nil {
		return nil, err
	}

	data, err := LoadData(paths)
	if err != nil {
		return nil, err
	}
	log.Info("Loaded publications",
		zap.Int("records", len(data.Records)),
		zap.String("encoding", data.CSV.Encoding),
		zap.String("delimiter", string(data.CSV.Delimiter)))
	if data.Metrics.Note != "" {
		log.Warn("Citation metrics unavailable", zap.String("note", data.Metrics.Note))
	}

	result := &Result{
		Records:   len(data.Records),
		Encoding:  data.CSV.Encoding,
		Delimiter: string(data.CSV.Delimiter),
	}
	var validDOIs []string
	for _, r := range data.Records {
		switch {
		case r.DOI == "":
		case cv.ValidDOI(r.DOI):
			validDOIs = append(validDOIs, r.DOI)
		default:
			result.InvalidDOIs = append(result.InvalidDOIs, r.DOI)
			log.Warn("Record has an invalid DOI", zap.String("doi", r.DOI))
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := storage.WriteJSON(paths.PublicationsJSON, exportFields(data.Records)); err != nil {
		return nil, err
	}
	log.Debug("Wrote publications", zap.String("path", paths.PublicationsJSON))

	sum := Summarize(paths, data, now)
	if err := storage.WriteJSON(paths.SummaryJSON, sum); err != nil {
		return nil, err
	}
	result.Summary = sum
	log.Debug("Wrote summary", zap.String("path", paths.SummaryJSON))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc := cv.Build(prof, sum, data.Records)
	embedded, err := cv.WritePDF(doc, paths.CVPDF, cv.PDFOptions{FontsDir: paths.FontsDir})
	if err != nil {
		return nil, err
	}
	result.EmbeddedFonts = embedded
	if !embedded {
		log.Warn("DejaVuSans not found, using Helvetica; Polish diacritics may not render",
			zap.String("fonts_dir", paths.FontsDir))
	}

	info, err := cv.InspectPDF(paths.CVPDF)
	if err != nil {
		return nil, fmt.Errorf("verifying generated PDF: %w", err)
	}
	result.PDFPages = info.Pages
	result.UnrenderedDOIs = info.MissingDOIs(validDOIs)
	for _, d := range result.UnrenderedDOIs {
		log.Warn("DOI not found in generated PDF text", zap.String("doi", d))
	}
	log.Debug("Wrote CV PDF", zap.String("path", paths.CVPDF), zap.Int("pages", info.Pages))

	if err := cv.WriteDOCX(doc, paths.CVDOCX); err != nil {
		return nil, err
	}
	log.Debug("Wrote CV DOCX", zap.String("path", paths.CVDOCX))

	outputs := Outputs(paths)
	result.Outputs = relAll(paths, outputs)

	m := &manifest.Manifest{
		Version:     manifest.Version,
		GeneratedOn: generatedOn,
		Inputs:      digests,
		Outputs:     outputs,
	}
	if err := m.Save(manifestPath); err != nil {
		log.Warn("Could not save build manifest", zap.Error(err))
	}

	log.Info("Build complete", zap.Int("records", result.Records), zap.Int("pdf_pages", result.PDFPages))
	return result, nil
}

// hashInputs digests the input files keyed by their site-relative path.
func hashInputs(paths config.Paths) (map[string]string, error) {
	abs, err := manifest.HashFiles(Inputs(paths)...)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(abs))
	for p, d := range abs {
		out[paths.Rel(p)] = d
	}
	return out, nil
}

// exportFields orders records for publications.json and keeps only the raw
// string columns.
func exportFields(records []publication.Record) []publication.Fields {
	sorted := publication.SortForExport(records)
	out := make([]publication.Fields, len(sorted))
	for i, r := range sorted {
		out[i] = r.Fields
	}
	return out
}

func relAll(paths config.Paths, files []string) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = paths.Rel(f)
	}
	return out
}
