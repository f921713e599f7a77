// Package scraper reconstructs the assembly -> component -> lifecycle-process
// hierarchy from an eLCA HTML report.
//
// The report markup is inconsistent between exports, so every nested lookup
// is optional: a category without a heading or an assembly without a title
// link is skipped, a component cell that is missing simply leaves the field
// nil. Parsing never fails because of absent markup; output order follows
// document order at every level.
package scraper

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/elcatools/elca2ifc/internal/core/model"
)

// Parse reads an eLCA HTML report and returns its assemblies in document
// order. The only error cases are I/O and tokenizer failures; structural
// gaps in the markup degrade to skipped sections or nil fields.
func Parse(r io.Reader) ([]model.Assembly, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML report: %w", err)
	}
	return extract(doc), nil
}

// ParseString is Parse over an in-memory document.
func ParseString(html string) ([]model.Assembly, error) {
	return Parse(strings.NewReader(html))
}

func extract(doc *goquery.Document) []model.Assembly {
	var assemblies []model.Assembly

	doc.Find("ul.category > li.section").Each(func(_ int, category *goquery.Selection) {
		h1 := category.Find("h1").First()
		if h1.Length() == 0 {
			return // no category header, skip the whole section
		}

		categoryText := collapse(h1.Text())

		var subcategory *string
		if span := h1.Find("span").First(); span.Length() > 0 {
			sub := collapse(span.Text())
			subcategory = &sub
			// The span text is part of h1's text; strip it so it is not
			// duplicated inside the category name.
			categoryText = collapse(strings.Replace(categoryText, sub, "", 1))
		}

		code, name := splitCategory(categoryText)

		category.Find("ul.report-elements > li.section").Each(func(_ int, section *goquery.Selection) {
			h2 := section.Find("h2").First()
			if h2.Length() == 0 {
				return
			}
			anchor := h2.Find("a.page").First()
			if anchor.Length() == 0 {
				return
			}

			assembly := model.Assembly{
				CategoryCode: code,
				CategoryName: name,
				Subcategory:  subcategory,
				Name:         collapse(anchor.Text()),
				URL:          anchor.AttrOr("href", ""),
				Properties:   extractProperties(section),
			}

			section.Find("div.element-assets").Each(func(_ int, block *goquery.Selection) {
				assembly.Components = append(assembly.Components, extractComponents(block)...)
			})

			assemblies = append(assemblies, assembly)
		})
	})

	return assemblies
}

// extractProperties pairs each dt label with the dd value that follows it in
// the definition list. A dt with no following dd contributes nothing.
func extractProperties(section *goquery.Selection) map[string]string {
	dl := section.Find("dl.clearfix").First()
	if dl.Length() == 0 {
		return nil
	}

	props := make(map[string]string)
	var label string
	var haveLabel bool
	dl.ChildrenFiltered("dt, dd").Each(func(_ int, node *goquery.Selection) {
		if goquery.NodeName(node) == "dt" {
			label = strings.TrimRight(collapse(node.Text()), ":")
			haveLabel = true
			return
		}
		if haveLabel {
			props[label] = collapse(node.Text())
			haveLabel = false
		}
	})

	if len(props) == 0 {
		return nil
	}
	return props
}

func extractComponents(block *goquery.Selection) []model.Component {
	category := "Unknown"
	if h3 := block.Find("h3").First(); h3.Length() > 0 {
		category = collapse(h3.Text())
	}

	var components []model.Component
	block.Find("tr.component").Each(func(_ int, row *goquery.Selection) {
		component := model.Component{Category: category}

		if cell := row.Find("td.firstColumn").First(); cell.Length() > 0 {
			component.Number = textPtr(cell)
		}

		if details := row.Find("td.lastColumn").First(); details.Length() > 0 {
			component.Name = optionalText(details, "span.process-config-name")
			component.Status = optionalText(details, "span.info-is-extant")
			component.Quantity = optionalText(details, "span.info-quantity span")
			component.Lifetime = optionalText(details, "span.info-life-time")
		}

		// The process table lives in the next sibling details row; there is
		// no explicit linkage key, pairing is by document order.
		if detailsRow := row.NextAllFiltered("tr.details").First(); detailsRow.Length() > 0 {
			component.Processes = extractProcesses(detailsRow)
		}

		components = append(components, component)
	})

	return components
}

func extractProcesses(detailsRow *goquery.Selection) []model.LifecycleProcess {
	var processes []model.LifecycleProcess
	detailsRow.Find("table.report-assets-details tbody tr:not(.table-headlines)").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 5 {
			return // malformed process row, skip silently
		}
		processes = append(processes, model.LifecycleProcess{
			Phase:          collapse(cells.Eq(0).Text()),
			Ratio:          collapse(cells.Eq(1).Text()),
			ProcessName:    collapse(cells.Eq(2).Text()),
			ReferenceValue: collapse(cells.Eq(3).Text()),
			UUID:           collapse(cells.Eq(4).Text()),
		})
	})
	return processes
}

// splitCategory splits a heading like "331 Tragende Außenwände" into the
// leading code token and the remaining name. A heading without a space
// keeps the whole text as the name.
func splitCategory(text string) (code, name string) {
	parts := strings.SplitN(text, " ", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return text, text
}

func optionalText(scope *goquery.Selection, selector string) *string {
	node := scope.Find(selector).First()
	if node.Length() == 0 {
		return nil
	}
	return textPtr(node)
}

func textPtr(node *goquery.Selection) *string {
	s := collapse(node.Text())
	return &s
}

// collapse trims and squeezes interior whitespace, matching the stripped
// text the report renders.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
