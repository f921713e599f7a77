// Package export flattens the reconciled assembly model into row-oriented
// tables for external inspection. Building a table is a pure function of
// the model; CSV serialization is a thin wrapper around encoding/csv.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/samber/lo"

	"github.com/elcatools/elca2ifc/internal/core/model"
)

// Table is a header row plus data rows, every row the same width as the
// header.
type Table struct {
	Header []string
	Rows   [][]string
}

var detailedColumns = []string{
	"Category Code",
	"Category Name",
	"Subcategory",
	"Assembly Name",
	"Assembly URL",
	"Component Category",
	"Component Number",
	"Component Name",
	"Component Status",
	"Component Quantity",
	"Component Lifetime",
	"Component Thickness (m)",
	"Lifecycle Phase",
	"Ratio",
	"Process Name",
	"Reference Value",
	"UUID",
}

var summaryColumns = []string{
	"Category Code",
	"Category Name",
	"Subcategory",
	"Assembly Name",
	"Assembly URL",
	"Component Count",
	"Process Count",
}

// Detailed produces one row per (assembly, component, lifecycle process)
// triple, or one row per component when it carries no processes. Assemblies
// without components contribute no rows. Assembly properties become extra
// "Property: <name>" columns, the union over all assemblies in sorted order
// so the header is deterministic.
func Detailed(assemblies []model.Assembly) Table {
	properties := propertyNames(assemblies)

	header := make([]string, 0, len(detailedColumns)+len(properties))
	header = append(header, detailedColumns[:5]...)
	for _, name := range properties {
		header = append(header, "Property: "+name)
	}
	header = append(header, detailedColumns[5:]...)

	var rows [][]string
	for _, assembly := range assemblies {
		for _, component := range assembly.Components {
			base := assemblyCells(assembly)
			for _, name := range properties {
				base = append(base, assembly.Properties[name])
			}
			base = append(base,
				component.Category,
				deref(component.Number),
				deref(component.Name),
				deref(component.Status),
				deref(component.Quantity),
				deref(component.Lifetime),
				formatThickness(component.Thickness),
			)

			if len(component.Processes) == 0 {
				rows = append(rows, append(base, "", "", "", "", ""))
				continue
			}
			for _, process := range component.Processes {
				row := make([]string, len(base), len(base)+5)
				copy(row, base)
				rows = append(rows, append(row,
					process.Phase, process.Ratio, process.ProcessName,
					process.ReferenceValue, process.UUID))
			}
		}
	}

	return Table{Header: header, Rows: rows}
}

// Summary produces one row per assembly with its property values and the
// component and lifecycle-process counts.
func Summary(assemblies []model.Assembly) Table {
	properties := propertyNames(assemblies)

	header := make([]string, 0, len(summaryColumns)+len(properties))
	header = append(header, summaryColumns[:5]...)
	header = append(header, properties...)
	header = append(header, summaryColumns[5:]...)

	rows := make([][]string, 0, len(assemblies))
	for _, assembly := range assemblies {
		row := assemblyCells(assembly)
		for _, name := range properties {
			row = append(row, assembly.Properties[name])
		}
		processCount := lo.SumBy(assembly.Components, func(c model.Component) int {
			return len(c.Processes)
		})
		row = append(row,
			strconv.Itoa(len(assembly.Components)),
			strconv.Itoa(processCount))
		rows = append(rows, row)
	}

	return Table{Header: header, Rows: rows}
}

// propertyNames is the sorted union of property keys across all assemblies.
func propertyNames(assemblies []model.Assembly) []string {
	names := lo.Uniq(lo.FlatMap(assemblies, func(a model.Assembly, _ int) []string {
		return lo.Keys(a.Properties)
	}))
	sort.Strings(names)
	return names
}

func assemblyCells(assembly model.Assembly) []string {
	return []string{
		assembly.CategoryCode,
		assembly.CategoryName,
		deref(assembly.Subcategory),
		assembly.Name,
		assembly.URL,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatThickness(t *float64) string {
	if t == nil {
		return ""
	}
	return strconv.FormatFloat(*t, 'f', -1, 64)
}

// WriteCSV serializes the table as UTF-8 CSV with the header row first.
func WriteCSV(w io.Writer, table Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(table.Header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, row := range table.Rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes the table to path, failing fatally for the caller
// when the file cannot be created or written.
func WriteCSVFile(path string, table Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := WriteCSV(f, table); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}
