package model

import "fmt"

// XMLLayer is one component of an element in the eLCA XML project export,
// carrying the element identity it was found under and the authoritative
// numeric layer data missing from the HTML report.
type XMLLayer struct {
	ElementUUID        string
	ElementName        string
	ElementDescription string
	DIN276Code         string
	ElementQuantity    string
	ElementRefUnit     string

	ComponentUUID     string
	ProcessConfigUUID string
	ProcessConfigName string
	IsLayer           bool

	// LayerSize is the raw thickness in source units (millimeters).
	LayerSize float64

	LifeTime      *float64
	LifeTimeDelay *float64
	CalcLCA       *bool
	IsExtant      *bool

	LayerPosition  *int
	LayerAreaRatio *float64
	LayerLength    *float64
	LayerWidth     *float64
}

// Key returns the composite lookup key for this layer. Components without a
// uuid fall back to the component name.
func (l XMLLayer) Key() string {
	component := l.ComponentUUID
	if component == "" {
		component = l.ProcessConfigName
	}
	return fmt.Sprintf("%s_%s", l.ElementUUID, component)
}

// XMLLookup indexes XMLLayer entries by composite key and, redundantly, by
// bare component name. Name keys are last-write-wins: a later component with
// the same processConfigName silently overwrites an earlier one. That is a
// documented weakness of the source data model, preserved for compatibility;
// Put makes the precedence explicit instead of leaving it to insertion order.
type XMLLookup struct {
	ByKey  map[string]XMLLayer
	ByName map[string]XMLLayer
}

func NewXMLLookup() *XMLLookup {
	return &XMLLookup{
		ByKey:  make(map[string]XMLLayer),
		ByName: make(map[string]XMLLayer),
	}
}

// Put stores the layer under its composite key and, when it has a component
// name, under that bare name as well (overwriting any earlier entry).
func (x *XMLLookup) Put(layer XMLLayer) {
	x.ByKey[layer.Key()] = layer
	if layer.ProcessConfigName != "" {
		x.ByName[layer.ProcessConfigName] = layer
	}
}

// Len reports the number of distinct composite-key entries.
func (x *XMLLookup) Len() int {
	if x == nil {
		return 0
	}
	return len(x.ByKey)
}
