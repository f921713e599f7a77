package ifc

import (
	"fmt"
	"log"
)

// ImportStats reports what an import run did.
type ImportStats struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// ImportLibrary merges the material layer sets of a library document into a
// target document. Duplicates are detected by layer-set name and skipped;
// materials are deduplicated by name inside the target; classification
// references travel with newly created materials. Relation entities get
// fresh GlobalIds in the target, owner history is reused from the target
// when it already has one.
func ImportLibrary(target, library *File, opts BuildOptions) (ImportStats, error) {
	var stats ImportStats

	libraryInfo := library.FirstByType("IFCLIBRARYINFORMATION")
	if libraryInfo == nil {
		return stats, fmt.Errorf("no library information found in the library document")
	}

	ownerHistory := target.FirstByType("IFCOWNERHISTORY")
	if ownerHistory == nil {
		_, ownerHistory = CreateOwnerHistory(target, opts)
	}

	publisherName := ""
	if publisher := libraryInfo.RefAttr(AttrLibraryPublisher); publisher != nil {
		publisherName = publisher.StringAttr(AttrOrganizationName)
	}
	publisher := target.Create("IFCORGANIZATION", nil, publisherName, nil, nil, nil)
	targetInfo := target.Create("IFCLIBRARYINFORMATION",
		libraryInfo.StringAttr(AttrLibraryName),
		libraryInfo.StringAttr(AttrLibraryVersion),
		publisher, nil, nil, nil)

	existingSets := make(map[string]bool)
	for _, set := range target.ByType("IFCMATERIALLAYERSET") {
		existingSets[set.StringAttr(AttrLayerSetName)] = true
	}
	existingMaterials := make(map[string]*Entity)
	for _, material := range target.ByType("IFCMATERIAL") {
		existingMaterials[material.StringAttr(AttrMaterialName)] = material
	}

	for _, set := range library.ByType("IFCMATERIALLAYERSET") {
		name := set.StringAttr(AttrLayerSetName)
		if existingSets[name] {
			log.Printf("material layer set %q already exists, skipping", name)
			stats.Skipped++
			continue
		}

		related := copyLayerSet(target, library, set, ownerHistory, existingMaterials)
		existingSets[name] = true

		target.Create("IFCRELASSOCIATESLIBRARY",
			NewGUID(), ownerHistory,
			"Association "+name,
			"Association to library for "+name,
			related, targetInfo)
		stats.Imported++
	}

	return stats, nil
}

// copyLayerSet rebuilds one layer set in the target and returns the
// entities the library association has to relate: the copied set and, when
// the library binds one, the re-created wall type. The wall type gets a
// fresh GlobalId and the target's owner history.
func copyLayerSet(target, library *File, set *Entity, ownerHistory *Entity, materials map[string]*Entity) List {
	layers := make(List, 0, len(set.ListAttr(AttrLayerSetLayers)))
	for _, item := range set.ListAttr(AttrLayerSetLayers) {
		layer, ok := item.(*Entity)
		if !ok {
			continue
		}
		source := layer.RefAttr(AttrLayerMaterial)
		if source == nil {
			continue
		}

		materialName := source.StringAttr(AttrMaterialName)
		material, exists := materials[materialName]
		if !exists {
			material = target.Create("IFCMATERIAL", materialName, nil, nil)
			materials[materialName] = material
			copyClassifications(target, library, source, material, ownerHistory)
		}

		layers = append(layers, target.Create("IFCMATERIALLAYER",
			material, layer.FloatAttr(AttrLayerThickness), nil,
			layer.StringAttr(AttrLayerName), nil, nil, nil))
	}

	copied := target.Create("IFCMATERIALLAYERSET",
		layers, set.StringAttr(AttrLayerSetName), nil)
	target.Create("IFCMATERIALLAYERSETUSAGE",
		copied, Enum("AXIS3"), Enum("POSITIVE"), 0.0, nil)

	related := List{copied}
	if wallType := boundWallType(library, set); wallType != nil {
		copiedType := target.Create("IFCWALLTYPE",
			NewGUID(), ownerHistory,
			wallType.StringAttr(AttrRootName),
			wallType.StringAttr(AttrRootDescription),
			nil, nil, nil, nil,
			wallType.StringAttr(AttrWallElementType),
			Enum("STANDARD"))
		target.Create("IFCRELASSOCIATESMATERIAL",
			NewGUID(), ownerHistory, nil, nil, List{copiedType}, copied)
		related = append(related, copiedType)
	}
	return related
}

// boundWallType returns the wall type the library's material association
// binds to set, or nil when the set is unbound.
func boundWallType(library *File, set *Entity) *Entity {
	for _, rel := range library.ByType("IFCRELASSOCIATESMATERIAL") {
		if rel.RefAttr(AttrRelRelating) != set {
			continue
		}
		for _, item := range rel.ListAttr(AttrRelRelatedObjects) {
			if e, ok := item.(*Entity); ok && e.Type == "IFCWALLTYPE" {
				return e
			}
		}
	}
	return nil
}

// copyClassifications carries every classification reference attached to
// the source material over to its copy in the target.
func copyClassifications(target, library *File, source, copied *Entity, ownerHistory *Entity) {
	for _, rel := range library.ByType("IFCRELASSOCIATESCLASSIFICATION") {
		if !relatesTo(rel, source) {
			continue
		}
		reference := rel.RefAttr(AttrRelRelating)
		if reference == nil {
			continue
		}
		copiedRef := target.Create("IFCCLASSIFICATIONREFERENCE",
			reference.StringAttr(AttrClassificationLocation),
			reference.StringAttr(AttrClassificationIdentification),
			reference.StringAttr(AttrClassificationName), nil, nil, nil)
		target.Create("IFCRELASSOCIATESCLASSIFICATION",
			NewGUID(), ownerHistory, nil, nil, List{copied}, copiedRef)
	}
}

func relatesTo(rel *Entity, entity *Entity) bool {
	for _, item := range rel.ListAttr(AttrRelRelatedObjects) {
		if item == entity {
			return true
		}
	}
	return false
}
