package ifc

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteBasicStructure(t *testing.T) {
	f := NewFile("test_library")
	material := f.Create("IFCMATERIAL", "Stroh", nil, nil)
	f.Create("IFCMATERIALLAYER", material, 0.36, nil, "Stroh", nil, nil, nil)

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "ISO-10303-21;"))
	assert.Contains(t, out, "FILE_SCHEMA(('IFC4'));")
	assert.Contains(t, out, "FILE_NAME('test_library'")
	assert.Contains(t, out, "#1=IFCMATERIAL('Stroh',$,$);")
	assert.Contains(t, out, "#2=IFCMATERIALLAYER(#1,0.36,$,'Stroh',$,$,$);")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "END-ISO-10303-21;"))
}

func TestWriteValueKinds(t *testing.T) {
	f := NewFile("kinds")
	f.Create("IFCSIUNIT", Derived{}, Enum("LENGTHUNIT"), nil, Enum("METRE"))
	f.Create("IFCTHING", "O'Brien", true, false, 50.0, 7, List{1, 2.5})

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	out := buf.String()

	assert.Contains(t, out, "#1=IFCSIUNIT(*,.LENGTHUNIT.,$,.METRE.);")
	assert.Contains(t, out, "#2=IFCTHING('O''Brien',.T.,.F.,50.,7,(1,2.5));")
}

func TestRoundTrip(t *testing.T) {
	f := NewFile("roundtrip")
	material := f.Create("IFCMATERIAL", "Lehmputz", nil, nil)
	layer := f.Create("IFCMATERIALLAYER", material, 0.015, nil, "Lehmputz", nil, nil, nil)
	f.Create("IFCMATERIALLAYERSET", List{layer}, "Strohballen - Holz", nil)

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	parsed, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, "roundtrip", parsed.Name)
	require.Len(t, parsed.Entities(), 3)

	sets := parsed.ByType("IFCMATERIALLAYERSET")
	require.Len(t, sets, 1)
	assert.Equal(t, "Strohballen - Holz", sets[0].StringAttr(AttrLayerSetName))

	layers := sets[0].ListAttr(AttrLayerSetLayers)
	require.Len(t, layers, 1)
	parsedLayer, ok := layers[0].(*Entity)
	require.True(t, ok)
	assert.InDelta(t, 0.015, parsedLayer.FloatAttr(AttrLayerThickness), 1e-9)

	parsedMaterial := parsedLayer.RefAttr(AttrLayerMaterial)
	require.NotNil(t, parsedMaterial)
	assert.Equal(t, "Lehmputz", parsedMaterial.StringAttr(AttrMaterialName))
}

func TestRoundTripBuilderOutput(t *testing.T) {
	f := BuildLibrary(strawballAssemblies(), BuildOptions{LibraryName: "lib"})

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	parsed, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, len(f.Entities()), len(parsed.Entities()))
	require.Len(t, parsed.ByType("IFCMATERIALLAYERSET"), 1)
}

func TestNonASCIIStringEncoding(t *testing.T) {
	f := NewFile("esc")
	f.Create("IFCMATERIAL", "Tragende Außenwände", nil, nil)
	f.Create("IFCMATERIAL", `C:\pfad`, nil, nil)

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	out := buf.String()

	assert.Contains(t, out, `'Tragende Au\X2\00DF\X0\enw\X2\00E4\X0\nde'`)
	assert.Contains(t, out, `'C:\\pfad'`)
	assert.NotContains(t, out, "ß")

	parsed, err := Read(strings.NewReader(out))
	require.NoError(t, err)
	materials := parsed.ByType("IFCMATERIAL")
	require.Len(t, materials, 2)
	assert.Equal(t, "Tragende Außenwände", materials[0].StringAttr(AttrMaterialName))
	assert.Equal(t, `C:\pfad`, materials[1].StringAttr(AttrMaterialName))
}

func TestReadSupplementaryCodepointDirective(t *testing.T) {
	in := "DATA;\n#1=IFCMATERIAL('\\X4\\0001F332\\X0\\',$,$);\nENDSEC;"
	parsed, err := Read(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, "🌲", parsed.Entities()[0].StringAttr(AttrMaterialName))
}

func TestReadRejectsGarbage(t *testing.T) {
	_, err := Read(strings.NewReader("this is not a STEP file"))
	assert.Error(t, err)

	_, err = Read(strings.NewReader("DATA;\n#1=IFCMATERIAL(#99,$,$);\nENDSEC;"))
	assert.Error(t, err, "dangling reference must fail")
}

func TestReadEnumsAndBooleans(t *testing.T) {
	in := "DATA;\n#1=IFCX(.AXIS3.,.T.,.F.,$);\nENDSEC;"
	parsed, err := Read(strings.NewReader(in))
	require.NoError(t, err)
	e := parsed.Entities()[0]
	assert.Equal(t, Enum("AXIS3"), e.Attr(0))
	assert.Equal(t, true, e.Attr(1))
	assert.Equal(t, false, e.Attr(2))
	assert.Nil(t, e.Attr(3))
}
