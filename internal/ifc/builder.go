package ifc

import (
	"fmt"
	"log"
	"time"

	"github.com/elcatools/elca2ifc/internal/core/common"
	"github.com/elcatools/elca2ifc/internal/core/model"
)

// Attribute positions (IFC4 order) for the entity types the importer and the
// host-facing operations read back.
const (
	AttrLayerSetLayers = 0
	AttrLayerSetName   = 1

	AttrLayerMaterial  = 0
	AttrLayerThickness = 1
	AttrLayerName      = 3

	AttrMaterialName = 0

	AttrOrganizationName = 1

	AttrLibraryName      = 0
	AttrLibraryVersion   = 1
	AttrLibraryPublisher = 2

	AttrRootName        = 2
	AttrRootDescription = 3

	AttrWallElementType = 8

	AttrRelRelatedObjects = 4
	AttrRelRelating       = 5

	AttrClassificationLocation       = 0
	AttrClassificationIdentification = 1
	AttrClassificationName           = 2
)

// oekobaudatURL is the dataset detail page for a lifecycle-process UUID.
const oekobaudatURL = "https://oekobaudat.de/OEKOBAU.DAT/datasetdetail/%s"

// BuildOptions carries the provenance identity written into every generated
// document. Zero values fall back to the application defaults.
type BuildOptions struct {
	PersonGivenName  string
	PersonFamilyName string
	OrganizationName string

	ApplicationName    string
	ApplicationID      string
	ApplicationVersion string

	ProjectName    string
	LibraryName    string
	LibraryVersion string
}

func (o BuildOptions) withDefaults() BuildOptions {
	if o.PersonGivenName == "" {
		o.PersonGivenName = "Default"
	}
	if o.PersonFamilyName == "" {
		o.PersonFamilyName = "User"
	}
	if o.OrganizationName == "" {
		o.OrganizationName = "eLCA Material Library Creator"
	}
	if o.ApplicationName == "" {
		o.ApplicationName = "eLCA Material Library Creator"
	}
	if o.ApplicationID == "" {
		o.ApplicationID = "eLCA_Creator"
	}
	if o.ApplicationVersion == "" {
		o.ApplicationVersion = "1.0"
	}
	if o.ProjectName == "" {
		o.ProjectName = "eLCA Material Library"
	}
	if o.LibraryName == "" {
		o.LibraryName = "eLCA_Material_Library"
	}
	if o.LibraryVersion == "" {
		o.LibraryVersion = "1.0"
	}
	return o
}

// BuildLibrary converts the reconciled assembly tree into an IFC library
// document: provenance singletons, one project root with a metre length
// unit, one library information record, and per assembly a material layer
// set (plus wall type, usage and association relations). A failure while
// processing one assembly is logged and skips only that assembly.
func BuildLibrary(assemblies []model.Assembly, opts BuildOptions) *File {
	b := newBuilder(opts)
	for _, assembly := range assemblies {
		if err := b.addAssembly(assembly); err != nil {
			log.Printf("skipping assembly %q: %v", assembly.Name, err)
		}
	}
	return b.file
}

type builder struct {
	opts BuildOptions
	file *File

	organization *Entity
	ownerHistory *Entity
	library      *Entity
}

func newBuilder(opts BuildOptions) *builder {
	opts = opts.withDefaults()
	b := &builder{
		opts: opts,
		file: NewFile(opts.LibraryName),
	}
	b.file.Authority = opts.ApplicationID

	b.organization, b.ownerHistory = CreateOwnerHistory(b.file, opts)

	lengthUnit := b.file.Create("IFCSIUNIT",
		Derived{}, Enum("LENGTHUNIT"), nil, Enum("METRE"))
	unitAssignment := b.file.Create("IFCUNITASSIGNMENT", List{lengthUnit})

	b.file.Create("IFCPROJECT",
		NewGUID(), b.ownerHistory, opts.ProjectName,
		nil, nil, nil, nil, nil, unitAssignment)

	b.library = b.file.Create("IFCLIBRARYINFORMATION",
		opts.LibraryName, opts.LibraryVersion, b.organization, nil, nil, nil)

	return b
}

// CreateOwnerHistory appends the provenance singleton chain (person,
// organization, person-and-organization, application, owner history) to f
// and returns the organization and owner history. The same owner history is
// shared by every identifier-bearing entity of a run.
func CreateOwnerHistory(f *File, opts BuildOptions) (organization, ownerHistory *Entity) {
	opts = opts.withDefaults()

	person := f.Create("IFCPERSON",
		nil, opts.PersonFamilyName, opts.PersonGivenName, nil, nil, nil, nil, nil)
	organization = f.Create("IFCORGANIZATION",
		nil, opts.OrganizationName, nil, nil, nil)
	personAndOrg := f.Create("IFCPERSONANDORGANIZATION",
		person, organization, nil)
	application := f.Create("IFCAPPLICATION",
		organization, opts.ApplicationVersion, opts.ApplicationName, opts.ApplicationID)
	ownerHistory = f.Create("IFCOWNERHISTORY",
		personAndOrg, application, nil, Enum("ADDED"), nil, nil, nil,
		int(time.Now().Unix()))
	return organization, ownerHistory
}

// addAssembly emits the layer set and its related entities for one
// assembly. Per the partial-success policy a panic while processing a
// single assembly is converted into an error for the caller to log.
func (b *builder) addAssembly(assembly model.Assembly) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("assembly processing failed: %v", r)
		}
	}()

	layers := make(List, 0, len(assembly.Components))
	for idx, component := range assembly.Components {
		layers = append(layers, b.addLayer(assembly, component, idx))
	}

	// An assembly with no extracted components still yields a layer set
	// with an empty (never absent) layer list.
	layerSet := b.file.Create("IFCMATERIALLAYERSET",
		layers, assembly.Name, nil)

	b.file.Create("IFCMATERIALLAYERSETUSAGE",
		layerSet, Enum("AXIS3"), Enum("POSITIVE"), 0.0, nil)

	wallTypeName := assembly.CategoryCode + " " + assembly.Name
	wallType := b.file.Create("IFCWALLTYPE",
		NewGUID(), b.ownerHistory, wallTypeName,
		"Wall type for "+assembly.Name,
		nil, nil, nil, nil, wallTypeName, Enum("STANDARD"))

	b.file.Create("IFCRELASSOCIATESMATERIAL",
		NewGUID(), b.ownerHistory, nil, nil, List{wallType}, layerSet)

	b.file.Create("IFCRELASSOCIATESLIBRARY",
		NewGUID(), b.ownerHistory,
		"Association "+assembly.Name,
		"Association to library for "+assembly.Name,
		List{layerSet, wallType}, b.library)

	return nil
}

func (b *builder) addLayer(assembly model.Assembly, component model.Component, idx int) *Entity {
	name := component.DisplayName(idx)

	material := b.file.Create("IFCMATERIAL", name, nil, nil)

	// Lifecycle-process UUIDs become Ökobaudat classification references on
	// the material.
	for _, process := range component.Processes {
		if process.UUID == "" {
			continue
		}
		classification := b.file.Create("IFCCLASSIFICATIONREFERENCE",
			fmt.Sprintf(oekobaudatURL, process.UUID),
			process.UUID, process.ProcessName, nil, nil, nil)
		b.file.Create("IFCRELASSOCIATESCLASSIFICATION",
			NewGUID(), b.ownerHistory, nil, nil,
			List{material}, classification)
	}

	return b.file.Create("IFCMATERIALLAYER",
		material, layerThickness(assembly, component, name), nil, name, nil, nil, nil)
}

// layerThickness resolves a layer's thickness in meters. Precedence: the
// reconciled XML value, then the HTML quantity text, then 0.0 when no
// quantity was scraped at all. Text that is present but unparseable maps to
// the documented 0.01 m fallback rather than a degenerate zero layer.
func layerThickness(assembly model.Assembly, component model.Component, name string) float64 {
	if component.Thickness != nil {
		if *component.Thickness < 0 {
			return 0.0
		}
		return *component.Thickness
	}
	if component.Quantity == nil {
		return 0.0
	}
	meters, ok := common.ParseThickness(*component.Quantity)
	if !ok {
		log.Printf("assembly %q: component %q has unparseable quantity %q, using default thickness",
			assembly.Name, name, *component.Quantity)
	}
	if meters < 0 {
		return 0.0
	}
	return meters
}
