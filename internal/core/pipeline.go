// Package core wires the extraction stages into the operations the CLI and
// the HTTP server expose: extract a report, reconcile it against the XML
// project export, write a library document, export tables, import a library
// into an existing document.
package core

import (
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/elcatools/elca2ifc/internal/core/export"
	"github.com/elcatools/elca2ifc/internal/core/model"
	"github.com/elcatools/elca2ifc/internal/core/reconcile"
	"github.com/elcatools/elca2ifc/internal/core/scraper"
	"github.com/elcatools/elca2ifc/internal/core/xmlref"
	"github.com/elcatools/elca2ifc/internal/ifc"
)

type Pipeline struct {
	Build ifc.BuildOptions
}

func NewPipeline(opts ifc.BuildOptions) *Pipeline {
	return &Pipeline{Build: opts}
}

// ExtractStats summarizes one extraction run.
type ExtractStats struct {
	Assemblies int `json:"assemblies"`
	Components int `json:"components"`
}

// ExtractFromFile scrapes the HTML report at htmlPath and, when xmlPath is
// non-empty, reconciles the result against the XML project export. A
// missing or malformed input is a fatal error naming the path.
func (p *Pipeline) ExtractFromFile(htmlPath, xmlPath string) ([]model.Assembly, ExtractStats, error) {
	f, err := os.Open(htmlPath)
	if err != nil {
		return nil, ExtractStats{}, fmt.Errorf("opening report %s: %w", htmlPath, err)
	}
	defer f.Close()

	assemblies, err := scraper.Parse(f)
	if err != nil {
		return nil, ExtractStats{}, fmt.Errorf("parsing report %s: %w", htmlPath, err)
	}

	if xmlPath != "" {
		lookup, err := xmlref.ParseFile(xmlPath)
		if err != nil {
			return nil, ExtractStats{}, err
		}
		assemblies = reconcile.Merge(assemblies, lookup)
	}

	stats := ExtractStats{Assemblies: len(assemblies)}
	for _, a := range assemblies {
		stats.Components += len(a.Components)
	}
	return assemblies, stats, nil
}

// WriteLibrary builds the library document and writes it to outputPath,
// returning the path it wrote.
func (p *Pipeline) WriteLibrary(assemblies []model.Assembly, outputPath string) (string, error) {
	file := ifc.BuildLibrary(assemblies, p.Build)
	if err := file.WriteFile(outputPath); err != nil {
		return "", err
	}
	return outputPath, nil
}

// WriteCSV exports the detailed table, or the per-assembly summary when
// summary is set, to outputPath.
func (p *Pipeline) WriteCSV(assemblies []model.Assembly, outputPath string, summary bool) error {
	table := export.Detailed(assemblies)
	if summary {
		table = export.Summary(assemblies)
	}
	return export.WriteCSVFile(outputPath, table)
}

// ImportLibrary merges the material layer sets of the library file at
// libraryPath into the document at targetPath and writes the target back.
func (p *Pipeline) ImportLibrary(targetPath, libraryPath string) (ifc.ImportStats, error) {
	target, err := ifc.ReadFile(targetPath)
	if err != nil {
		return ifc.ImportStats{}, err
	}
	library, err := ifc.ReadFile(libraryPath)
	if err != nil {
		return ifc.ImportStats{}, err
	}

	stats, err := ifc.ImportLibrary(target, library, p.Build)
	if err != nil {
		return stats, err
	}
	if err := target.WriteFile(targetPath); err != nil {
		return stats, err
	}
	return stats, nil
}

// OutputKind selects what a batch run produces per input report.
type OutputKind int

const (
	OutputDetailed OutputKind = iota
	OutputSummary
	OutputLibrary
)

// OutputPath derives the output file for an input report.
func (k OutputKind) OutputPath(inputPath string) string {
	stem := strings.TrimSuffix(inputPath, filepath.Ext(inputPath))
	switch k {
	case OutputSummary:
		return stem + ".summary.csv"
	case OutputLibrary:
		return stem + ".ifc"
	default:
		return stem + ".csv"
	}
}

type BatchOptions struct {
	Recursive bool
	Kind      OutputKind
}

// BatchStats counts the per-file outcomes of a batch run. Failures are
// logged and isolated; they never abort the run.
type BatchStats struct {
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
}

// ProcessPath runs the pipeline over a single report file, or over every
// .html/.htm file under a directory. A sibling .xml file with the same stem
// is picked up as the report's project export when present. Output paths
// are derived from each input path.
func (p *Pipeline) ProcessPath(input string, opts BatchOptions) (BatchStats, error) {
	info, err := os.Stat(input)
	if err != nil {
		return BatchStats{}, fmt.Errorf("input %s: %w", input, err)
	}

	if !info.IsDir() {
		if err := p.processFile(input, opts.Kind); err != nil {
			return BatchStats{Failed: 1}, err
		}
		return BatchStats{Processed: 1}, nil
	}

	var stats BatchStats
	walkErr := filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if !opts.Recursive && path != input {
				return fs.SkipDir
			}
			return nil
		}
		if !isReport(path) {
			return nil
		}
		if err := p.processFile(path, opts.Kind); err != nil {
			log.Printf("processing %s: %v", path, err)
			stats.Failed++
			return nil
		}
		stats.Processed++
		return nil
	})
	if walkErr != nil {
		return stats, fmt.Errorf("walking %s: %w", input, walkErr)
	}
	return stats, nil
}

func (p *Pipeline) processFile(path string, kind OutputKind) error {
	assemblies, _, err := p.ExtractFromFile(path, companionXML(path))
	if err != nil {
		return err
	}

	output := kind.OutputPath(path)
	switch kind {
	case OutputLibrary:
		_, err = p.WriteLibrary(assemblies, output)
	case OutputSummary:
		err = p.WriteCSV(assemblies, output, true)
	default:
		err = p.WriteCSV(assemblies, output, false)
	}
	if err != nil {
		return err
	}
	log.Printf("wrote %s", output)
	return nil
}

func isReport(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return true
	}
	return false
}

// companionXML returns the sibling project export for a report, or "" when
// none exists.
func companionXML(path string) string {
	xml := strings.TrimSuffix(path, filepath.Ext(path)) + ".xml"
	if _, err := os.Stat(xml); err != nil {
		return ""
	}
	return xml
}
