package xmlref

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const projectXML = `<?xml version="1.0" encoding="UTF-8"?>
<elca xmlns="https://www.bauteileditor.de">
  <project>
    <elements>
      <element uuid="e1" din276Code="331" quantity="200" refUnit="m2">
        <elementInfo>
          <name>Strohballen - Holz</name>
          <description>Außenwand</description>
        </elementInfo>
        <components>
          <component uuid="c1" isLayer="true" layerSize="180" layerPosition="1"
                     layerAreaRatio="1.0" processConfigUuid="p1"
                     processConfigName="Stroh" lifeTime="50" calcLca="true"
                     isExtant="false"/>
          <component uuid="c2" isLayer="true" layerSize="15,5" layerPosition="2"
                     processConfigName="Lehmputz"/>
          <component uuid="c3" isLayer="true" layerSize="N/A"
                     processConfigName="Kaputt"/>
          <component isLayer="true" layerSize="20" processConfigName="Anonym"/>
        </components>
      </element>
      <element din276Code="000">
        <components>
          <component uuid="cx" layerSize="99" processConfigName="Unsichtbar"/>
        </components>
      </element>
      <element uuid="e2">
        <elementInfo><name>Decke</name></elementInfo>
        <components>
          <component uuid="c9" layerSize="30" processConfigName="Lehmputz"/>
        </components>
      </element>
    </elements>
  </project>
</elca>`

func TestParseBuildsLookup(t *testing.T) {
	lookup, err := ParseString(projectXML)
	require.NoError(t, err)

	// c3 is dropped (unparseable layerSize), the whole second element is
	// dropped (no uuid). e1 keeps c1, c2 and the anonymous component; e2
	// keeps c9.
	assert.Equal(t, 4, lookup.Len())

	stroh, ok := lookup.ByKey["e1_c1"]
	require.True(t, ok)
	assert.Equal(t, "Strohballen - Holz", stroh.ElementName)
	assert.Equal(t, "Außenwand", stroh.ElementDescription)
	assert.Equal(t, "331", stroh.DIN276Code)
	assert.Equal(t, "p1", stroh.ProcessConfigUUID)
	assert.InDelta(t, 180.0, stroh.LayerSize, 1e-9)
	require.NotNil(t, stroh.LifeTime)
	assert.InDelta(t, 50.0, *stroh.LifeTime, 1e-9)
	require.NotNil(t, stroh.IsExtant)
	assert.False(t, *stroh.IsExtant)
	require.NotNil(t, stroh.LayerPosition)
	assert.Equal(t, 1, *stroh.LayerPosition)

	// Decimal comma in layerSize parses.
	lehm, ok := lookup.ByKey["e1_c2"]
	require.True(t, ok)
	assert.InDelta(t, 15.5, lehm.LayerSize, 1e-9)
	assert.Nil(t, lehm.LifeTime)

	// A component without a uuid is keyed by its name.
	_, ok = lookup.ByKey["e1_Anonym"]
	assert.True(t, ok)
}

func TestParseSkipsUnparseableLayerSize(t *testing.T) {
	lookup, err := ParseString(projectXML)
	require.NoError(t, err)

	_, ok := lookup.ByKey["e1_c3"]
	assert.False(t, ok)
	_, ok = lookup.ByName["Kaputt"]
	assert.False(t, ok)
}

func TestParseSkipsElementWithoutUUID(t *testing.T) {
	lookup, err := ParseString(projectXML)
	require.NoError(t, err)
	_, ok := lookup.ByName["Unsichtbar"]
	assert.False(t, ok)
}

func TestNameKeyLastWriteWins(t *testing.T) {
	lookup, err := ParseString(projectXML)
	require.NoError(t, err)

	// "Lehmputz" appears under e1 (c2, size 15,5) and later under e2
	// (c9, size 30). The bare-name entry is the later one.
	lehm, ok := lookup.ByName["Lehmputz"]
	require.True(t, ok)
	assert.Equal(t, "e2", lehm.ElementUUID)
	assert.InDelta(t, 30.0, lehm.LayerSize, 1e-9)

	// Both composite keys survive.
	assert.Contains(t, lookup.ByKey, "e1_c2")
	assert.Contains(t, lookup.ByKey, "e2_c9")
}

func TestParseRejectsForeignNamespace(t *testing.T) {
	_, err := ParseString(`<elca xmlns="https://example.com/other">
  <element uuid="e1"><components>
    <component uuid="c1" layerSize="10" processConfigName="X"/>
  </components></element>
</elca>`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), Namespace)
}

func TestParseAcceptsUnqualifiedDocument(t *testing.T) {
	lookup, err := ParseString(`<elca>
  <element uuid="e1"><components>
    <component uuid="c1" layerSize="10" processConfigName="X"/>
  </components></element>
</elca>`)
	require.NoError(t, err)
	assert.Equal(t, 1, lookup.Len())
}

func TestParseMalformedXMLFails(t *testing.T) {
	_, err := ParseString("<elca><element uuid='e1'>")
	assert.Error(t, err)
}

func TestParseFileMissing(t *testing.T) {
	_, err := ParseFile("/nonexistent/project.xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/nonexistent/project.xml")
}
