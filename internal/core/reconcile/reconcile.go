// Package reconcile merges the scraper's assembly tree with the XML layer
// lookup. It is a pure best-effort enrichment pass: components with a key
// match get authoritative numeric data from the XML export, everything else
// keeps its HTML-derived text untouched. It never fabricates data and never
// fails.
//
// The two sources are not explicitly linked: the HTML report carries no
// element or component UUIDs, so unless a composite key was attached by some
// other linking mechanism the only join is the bare component name. Names
// are not unique across assemblies, so a shared display name can match the
// wrong entry. That is a documented limitation of the source data, not
// something this layer tries to outsmart.
package reconcile

import (
	"fmt"

	"github.com/elcatools/elca2ifc/internal/core/common"
	"github.com/elcatools/elca2ifc/internal/core/model"
)

// Merge returns a copy of assemblies with each component enriched from the
// lookup. A nil or empty lookup returns the input unchanged (copied).
func Merge(assemblies []model.Assembly, lookup *model.XMLLookup) []model.Assembly {
	merged := make([]model.Assembly, len(assemblies))
	for i, assembly := range assemblies {
		merged[i] = assembly
		merged[i].Components = make([]model.Component, len(assembly.Components))
		for j, component := range assembly.Components {
			merged[i].Components[j] = enrich(component, lookup)
		}
	}
	return merged
}

// enrich applies the match precedence: the composite
// "{elementUUID}_{componentUUID}" key when both halves are already known,
// then the bare component name. First match wins; no match is not an error.
func enrich(component model.Component, lookup *model.XMLLookup) model.Component {
	if lookup == nil || lookup.Len() == 0 {
		return component
	}

	layer, ok := matchLayer(component, lookup)
	if !ok {
		return component
	}

	thickness := common.MillimetersToMeters(layer.LayerSize)
	component.Thickness = &thickness
	component.SourceElementUUID = strPtr(layer.ElementUUID)
	if layer.ComponentUUID != "" {
		component.SourceUUID = strPtr(layer.ComponentUUID)
	}
	if layer.ProcessConfigUUID != "" {
		component.ProcessConfigUUID = strPtr(layer.ProcessConfigUUID)
	}
	component.IsExtant = layer.IsExtant
	component.LifeTimeYears = layer.LifeTime
	component.LifeTimeDelay = layer.LifeTimeDelay
	component.LayerPosition = layer.LayerPosition
	component.LayerAreaRatio = layer.LayerAreaRatio
	component.LayerLength = layer.LayerLength
	component.LayerWidth = layer.LayerWidth

	return component
}

func matchLayer(component model.Component, lookup *model.XMLLookup) (model.XMLLayer, bool) {
	if component.SourceElementUUID != nil && component.SourceUUID != nil {
		key := fmt.Sprintf("%s_%s", *component.SourceElementUUID, *component.SourceUUID)
		if layer, ok := lookup.ByKey[key]; ok {
			return layer, true
		}
	}
	if component.Name != nil {
		if layer, ok := lookup.ByName[*component.Name]; ok {
			return layer, true
		}
	}
	return model.XMLLayer{}, false
}

func strPtr(s string) *string {
	return &s
}
