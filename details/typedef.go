package details

// Visibility of a type definition in the emitted metadata.
type Visibility uint8

const (
	VisibilityInternal Visibility = iota
	VisibilityPublic
)

func (v Visibility) String() string {
	if v == VisibilityPublic {
		return "public"
	}
	return "internal"
}

// BaseType names the platform base a type definition derives from.
type BaseType uint8

const (
	BaseObject BaseType = iota
	BaseValueType
)

func (b BaseType) String() string {
	if b == BaseValueType {
		return "value type"
	}
	return "object"
}

// LayoutKind selects how the writer lays out a type.
type LayoutKind uint8

const (
	LayoutAuto LayoutKind = iota
	LayoutExplicit
)

// Layout is the physical layout record of a type definition. Size and
// Alignment are meaningful only for LayoutExplicit.
type Layout struct {
	Kind      LayoutKind
	Size      uint32
	Alignment uint32
}

// Attribute is a marker attribute attached to a type definition.
type Attribute struct {
	Name string
}

// CompilerGenerated is the conventional marker for synthesized types.
var CompilerGenerated = Attribute{Name: "CompilerGenerated"}

// TypeDefinition is the set of structural facts a metadata writer needs to
// produce a type-definition record. Both the container and its synthesized
// storage types implement it.
type TypeDefinition interface {
	Name() string
	Visibility() Visibility
	BaseType() BaseType
	Layout() Layout
	Attributes() []Attribute
	Sealed() bool
	Abstract() bool
	Interface() bool
	Generic() bool
	// Nested reports whether the definition is nested inside the container
	// that enumerated it.
	Nested() bool
}

// TypeRef is the type of a data field: either a synthesized StorageType or a
// platform WellKnownType.
type TypeRef interface {
	Name() string
	Size() uint32
}

// WellKnownType is a platform-supplied primitive value type reused in place
// of a synthesized storage type when the sizes match.
type WellKnownType struct {
	TypeName string
	ByteSize uint32
}

// Name implements TypeRef.
func (w WellKnownType) Name() string { return w.TypeName }

// Size implements TypeRef.
func (w WellKnownType) Size() uint32 { return w.ByteSize }
