// Package xmlref parses the eLCA XML project export that accompanies an HTML
// report and builds a lookup of authoritative layer data. It runs
// independently of the scraper; the reconciliation layer joins the two.
package xmlref

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/elcatools/elca2ifc/internal/core/common"
	"github.com/elcatools/elca2ifc/internal/core/model"
)

// Namespace is the fixed namespace of bauteileditor.de project exports.
const Namespace = "https://www.bauteileditor.de"

// Parse reads the XML project export and returns the layer lookup. Unlike
// the HTML scraper this is the one stage where a parse failure must
// propagate: with no XML data reconciliation degrades gracefully by
// definition, so a malformed document is a real error the caller has to see.
func Parse(r io.Reader) (*model.XMLLookup, error) {
	doc, err := xmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse XML project export: %w", err)
	}

	// The queries below match by local name, so a document in a foreign
	// namespace would otherwise be accepted silently.
	if root := xmlquery.FindOne(doc, "/*"); root != nil &&
		root.NamespaceURI != "" && root.NamespaceURI != Namespace {
		return nil, fmt.Errorf("unexpected document namespace %q, want %q", root.NamespaceURI, Namespace)
	}

	lookup := model.NewXMLLookup()

	// Elements may nest (composite elements), so match at any depth rather
	// than assuming a fixed level.
	for _, element := range xmlquery.Find(doc, "//element") {
		elementUUID := element.SelectAttr("uuid")
		if elementUUID == "" {
			// Without a uuid the element cannot be keyed at all.
			continue
		}

		info := elementInfo{
			uuid:        elementUUID,
			name:        innerText(element, "elementInfo/name"),
			description: innerText(element, "elementInfo/description"),
			din276Code:  element.SelectAttr("din276Code"),
			quantity:    element.SelectAttr("quantity"),
			refUnit:     element.SelectAttr("refUnit"),
		}

		for _, component := range xmlquery.Find(element, ".//component") {
			layer, ok := parseComponent(info, component)
			if !ok {
				continue
			}
			lookup.Put(layer)
		}
	}

	return lookup, nil
}

// ParseFile is Parse over a file path.
func ParseFile(path string) (*model.XMLLookup, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("XML project file not found: %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

// ParseString is Parse over an in-memory document.
func ParseString(xml string) (*model.XMLLookup, error) {
	return Parse(strings.NewReader(xml))
}

type elementInfo struct {
	uuid        string
	name        string
	description string
	din276Code  string
	quantity    string
	refUnit     string
}

// parseComponent converts a component node into an XMLLayer. A layerSize
// that does not parse as a float disqualifies the whole component: the entry
// is logged and dropped, never defaulted.
func parseComponent(info elementInfo, node *xmlquery.Node) (model.XMLLayer, bool) {
	layerSize, err := common.ParseFloat(node.SelectAttr("layerSize"))
	if err != nil {
		log.Printf("skipping component %q of element %s: unparseable layerSize %q",
			node.SelectAttr("processConfigName"), info.uuid, node.SelectAttr("layerSize"))
		return model.XMLLayer{}, false
	}

	return model.XMLLayer{
		ElementUUID:        info.uuid,
		ElementName:        info.name,
		ElementDescription: info.description,
		DIN276Code:         info.din276Code,
		ElementQuantity:    info.quantity,
		ElementRefUnit:     info.refUnit,

		ComponentUUID:     node.SelectAttr("uuid"),
		ProcessConfigUUID: node.SelectAttr("processConfigUuid"),
		ProcessConfigName: node.SelectAttr("processConfigName"),
		IsLayer:           node.SelectAttr("isLayer") == "true",
		LayerSize:         layerSize,

		LifeTime:      optionalFloat(node, "lifeTime"),
		LifeTimeDelay: optionalFloat(node, "lifeTimeDelay"),
		CalcLCA:       optionalBool(node, "calcLca"),
		IsExtant:      optionalBool(node, "isExtant"),

		LayerPosition:  optionalInt(node, "layerPosition"),
		LayerAreaRatio: optionalFloat(node, "layerAreaRatio"),
		LayerLength:    optionalFloat(node, "layerLength"),
		LayerWidth:     optionalFloat(node, "layerWidth"),
	}, true
}

func innerText(node *xmlquery.Node, path string) string {
	if n := xmlquery.FindOne(node, path); n != nil {
		return strings.TrimSpace(n.InnerText())
	}
	return ""
}

func optionalFloat(node *xmlquery.Node, attr string) *float64 {
	raw := node.SelectAttr(attr)
	if raw == "" {
		return nil
	}
	v, err := common.ParseFloat(raw)
	if err != nil {
		return nil
	}
	return &v
}

func optionalInt(node *xmlquery.Node, attr string) *int {
	f := optionalFloat(node, attr)
	if f == nil {
		return nil
	}
	v := int(*f)
	return &v
}

func optionalBool(node *xmlquery.Node, attr string) *bool {
	switch node.SelectAttr(attr) {
	case "true", "1":
		v := true
		return &v
	case "false", "0":
		v := false
		return &v
	}
	return nil
}
