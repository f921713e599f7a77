package ifc

import "time"

// File is an in-memory IFC document: an ordered list of entity instances.
// Entities reference each other directly; instance numbers are assigned at
// creation time and preserved through serialization.
type File struct {
	// Name is written into the STEP FILE_NAME header record.
	Name string
	// Authority is the originating application recorded in the header.
	Authority string
	// Timestamp is the creation time recorded in the header. Zero means
	// "now at write time".
	Timestamp time.Time

	entities []*Entity
}

// Entity is one IFC entity instance. Attrs are positional, matching the
// IFC4 attribute order of the entity type. Supported attribute kinds:
//
//	nil      -> $        (unset)
//	string   -> 'text'
//	float64  -> 0.18
//	int      -> 42
//	bool     -> .T. / .F.
//	Enum     -> .METRE.
//	Derived  -> *
//	*Entity  -> #12
//	List     -> (...)
type Entity struct {
	ID    int
	Type  string
	Attrs []any
}

// Enum is an IFC enumeration literal such as "LENGTHUNIT" or "AXIS3".
type Enum string

// List is an aggregate attribute value.
type List []any

// Derived marks an attribute that is derived in a subtype (written as *).
type Derived struct{}

// NewFile returns an empty IFC4 document.
func NewFile(name string) *File {
	return &File{Name: name}
}

// Create appends a new entity instance and returns it. Instance numbers are
// sequential starting at 1.
func (f *File) Create(entityType string, attrs ...any) *Entity {
	e := &Entity{
		ID:    len(f.entities) + 1,
		Type:  entityType,
		Attrs: attrs,
	}
	f.entities = append(f.entities, e)
	return e
}

// Entities returns all instances in creation order.
func (f *File) Entities() []*Entity {
	return f.entities
}

// ByType returns all instances of the given entity type, in creation order.
func (f *File) ByType(entityType string) []*Entity {
	var out []*Entity
	for _, e := range f.entities {
		if e.Type == entityType {
			out = append(out, e)
		}
	}
	return out
}

// FirstByType returns the first instance of the given type, or nil.
func (f *File) FirstByType(entityType string) *Entity {
	for _, e := range f.entities {
		if e.Type == entityType {
			return e
		}
	}
	return nil
}

// Attr returns the i-th attribute or nil when the entity has fewer.
func (e *Entity) Attr(i int) any {
	if e == nil || i < 0 || i >= len(e.Attrs) {
		return nil
	}
	return e.Attrs[i]
}

// StringAttr returns the i-th attribute as a string when it is one.
func (e *Entity) StringAttr(i int) string {
	if s, ok := e.Attr(i).(string); ok {
		return s
	}
	return ""
}

// FloatAttr returns the i-th attribute as a float64 when it is numeric.
func (e *Entity) FloatAttr(i int) float64 {
	switch v := e.Attr(i).(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

// RefAttr returns the i-th attribute as an entity reference when it is one.
func (e *Entity) RefAttr(i int) *Entity {
	if ref, ok := e.Attr(i).(*Entity); ok {
		return ref
	}
	return nil
}

// ListAttr returns the i-th attribute as a list when it is one. A $ (nil)
// attribute yields an empty list.
func (e *Entity) ListAttr(i int) List {
	if l, ok := e.Attr(i).(List); ok {
		return l
	}
	return nil
}
