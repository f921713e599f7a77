package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elcatools/elca2ifc/internal/ifc"
)

const reportHTML = `<!DOCTYPE html>
<html><body>
<ul class="category">
  <li class="section">
    <h1>331 Tragende Außenwände</h1>
    <ul class="report-elements">
      <li class="section">
        <h2><a class="page" href="/project-elements/5400248/">Strohballen - Holz</a></h2>
        <dl class="clearfix">
          <dt>Menge im Gebäude:</dt><dd>200,00 m²</dd>
        </dl>
        <div class="element-assets">
          <h3>Baustoffe</h3>
          <table><tbody>
            <tr class="component">
              <td class="firstColumn">1</td>
              <td class="lastColumn">
                <span class="process-config-name">Lehmputz</span>
                <span class="info-quantity"><span>15,00 mm</span></span>
              </td>
            </tr>
            <tr class="details"><td>
              <table class="report-assets-details"><tbody>
                <tr class="table-headlines"><td>Phase</td></tr>
                <tr>
                  <td>Herstellung</td><td>100%</td><td>Lehmputz (A1-A3)</td>
                  <td>1 kg</td><td>aaaa-bbbb</td>
                </tr>
              </tbody></table>
            </td></tr>
          </tbody></table>
        </div>
      </li>
    </ul>
  </li>
</ul>
</body></html>`

const projectXML = `<?xml version="1.0" encoding="UTF-8"?>
<elca xmlns="https://www.bauteileditor.de">
  <project><elements>
    <element uuid="e1">
      <elementInfo><name>Strohballen - Holz</name></elementInfo>
      <components>
        <component uuid="c1" layerSize="15" processConfigName="Lehmputz"/>
      </components>
    </element>
  </elements></project>
</elca>`

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestExtractFromFile(t *testing.T) {
	dir := t.TempDir()
	htmlPath := writeFixture(t, dir, "report.html", reportHTML)

	p := NewPipeline(ifc.BuildOptions{})
	assemblies, stats, err := p.ExtractFromFile(htmlPath, "")
	require.NoError(t, err)
	assert.Equal(t, ExtractStats{Assemblies: 1, Components: 1}, stats)
	require.Len(t, assemblies, 1)
	assert.Equal(t, "Strohballen - Holz", assemblies[0].Name)
	assert.Nil(t, assemblies[0].Components[0].Thickness)
}

func TestExtractFromFileWithXML(t *testing.T) {
	dir := t.TempDir()
	htmlPath := writeFixture(t, dir, "report.html", reportHTML)
	xmlPath := writeFixture(t, dir, "report.xml", projectXML)

	p := NewPipeline(ifc.BuildOptions{})
	assemblies, _, err := p.ExtractFromFile(htmlPath, xmlPath)
	require.NoError(t, err)

	component := assemblies[0].Components[0]
	require.NotNil(t, component.Thickness)
	assert.InDelta(t, 0.015, *component.Thickness, 1e-9)
}

func TestExtractFromFileMissingInput(t *testing.T) {
	p := NewPipeline(ifc.BuildOptions{})
	_, _, err := p.ExtractFromFile("/no/such/report.html", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/no/such/report.html")
}

func TestExtractFromFileMalformedXML(t *testing.T) {
	dir := t.TempDir()
	htmlPath := writeFixture(t, dir, "report.html", reportHTML)
	xmlPath := writeFixture(t, dir, "report.xml", "<elca><unclosed")

	p := NewPipeline(ifc.BuildOptions{})
	_, _, err := p.ExtractFromFile(htmlPath, xmlPath)
	require.Error(t, err)
}

func TestWriteLibrary(t *testing.T) {
	dir := t.TempDir()
	htmlPath := writeFixture(t, dir, "report.html", reportHTML)

	p := NewPipeline(ifc.BuildOptions{})
	assemblies, _, err := p.ExtractFromFile(htmlPath, "")
	require.NoError(t, err)

	outputPath := filepath.Join(dir, "library.ifc")
	written, err := p.WriteLibrary(assemblies, outputPath)
	require.NoError(t, err)
	assert.Equal(t, outputPath, written)

	file, err := ifc.ReadFile(outputPath)
	require.NoError(t, err)
	assert.Len(t, file.ByType("IFCMATERIALLAYERSET"), 1)
}

func TestImportLibraryRoundTrip(t *testing.T) {
	dir := t.TempDir()
	htmlPath := writeFixture(t, dir, "report.html", reportHTML)

	p := NewPipeline(ifc.BuildOptions{})
	assemblies, _, err := p.ExtractFromFile(htmlPath, "")
	require.NoError(t, err)

	libraryPath := filepath.Join(dir, "library.ifc")
	_, err = p.WriteLibrary(assemblies, libraryPath)
	require.NoError(t, err)

	targetPath := filepath.Join(dir, "target.ifc")
	require.NoError(t, ifc.NewFile("target").WriteFile(targetPath))

	stats, err := p.ImportLibrary(targetPath, libraryPath)
	require.NoError(t, err)
	assert.Equal(t, ifc.ImportStats{Imported: 1}, stats)

	// Importing again into the merged target skips the duplicate.
	stats, err = p.ImportLibrary(targetPath, libraryPath)
	require.NoError(t, err)
	assert.Equal(t, ifc.ImportStats{Skipped: 1}, stats)
}

func TestProcessPathSingleFile(t *testing.T) {
	dir := t.TempDir()
	htmlPath := writeFixture(t, dir, "report.html", reportHTML)
	writeFixture(t, dir, "report.xml", projectXML)

	p := NewPipeline(ifc.BuildOptions{})
	stats, err := p.ProcessPath(htmlPath, BatchOptions{Kind: OutputDetailed})
	require.NoError(t, err)
	assert.Equal(t, BatchStats{Processed: 1}, stats)

	data, err := os.ReadFile(filepath.Join(dir, "report.csv"))
	require.NoError(t, err)
	// The sibling .xml was picked up, so the reconciled thickness is there.
	assert.Contains(t, string(data), "0.015")
}

func TestProcessPathDirectoryIsolatesFailures(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "good.html", reportHTML)
	writeFixture(t, dir, "bad.html", reportHTML)
	writeFixture(t, dir, "bad.xml", "<elca><unclosed")
	writeFixture(t, dir, "notes.txt", "not a report")

	p := NewPipeline(ifc.BuildOptions{})
	stats, err := p.ProcessPath(dir, BatchOptions{Kind: OutputSummary})
	require.NoError(t, err)
	assert.Equal(t, BatchStats{Processed: 1, Failed: 1}, stats)

	assert.FileExists(t, filepath.Join(dir, "good.summary.csv"))
	assert.NoFileExists(t, filepath.Join(dir, "bad.summary.csv"))
}

func TestProcessPathRecursion(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(nested, 0o755))
	writeFixture(t, dir, "top.html", reportHTML)
	writeFixture(t, nested, "deep.html", reportHTML)

	p := NewPipeline(ifc.BuildOptions{})

	stats, err := p.ProcessPath(dir, BatchOptions{Kind: OutputLibrary})
	require.NoError(t, err)
	assert.Equal(t, BatchStats{Processed: 1}, stats)
	assert.NoFileExists(t, filepath.Join(nested, "deep.ifc"))

	stats, err = p.ProcessPath(dir, BatchOptions{Kind: OutputLibrary, Recursive: true})
	require.NoError(t, err)
	assert.Equal(t, BatchStats{Processed: 2}, stats)
	assert.FileExists(t, filepath.Join(nested, "deep.ifc"))
}

func TestProcessPathMissingInput(t *testing.T) {
	p := NewPipeline(ifc.BuildOptions{})
	_, err := p.ProcessPath("/no/such/dir", BatchOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/no/such/dir")
}
