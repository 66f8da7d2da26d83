package details

import (
	"slices"
	"sort"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wippyai/rodata"
	"github.com/wippyai/rodata/errors"
)

// Option configures a Container.
type Option func(*Container)

// WithSlotIndex sets the submission slot index appended to the container
// type name. Negative means no suffix.
func WithSlotIndex(slot int) Option {
	return func(c *Container) { c.slot = slot }
}

// WithWellKnownTypes supplies platform types reused for sizes 1, 2, 4 and 8.
func WithWellKnownTypes(types ...TypeRef) Option {
	return func(c *Container) { c.wellKnown = append(c.wellKnown, types...) }
}

// WithCompilerGeneratedAttribute attaches a marker attribute to the
// container type definition.
func WithCompilerGeneratedAttribute(a Attribute) Option {
	return func(c *Container) { c.marker = &a }
}

// Container owns the data fields, storage types and synthesized methods of
// one compilation unit.
type Container struct {
	marker    *Attribute
	catalog   *StorageTypeCatalog
	blobs     *DataBlobRegistry
	members   MemberRegistry
	wellKnown []TypeRef
	slot      int

	// gate admits concurrent mutators and excludes them from Freeze.
	gate   sync.RWMutex
	frozen atomic.Bool

	fields  []*Field
	nested  []*StorageType
	methods []*Member
}

// New creates an open container deriving field names with hasher.
func New(hasher rodata.Hasher, opts ...Option) *Container {
	c := &Container{slot: -1}
	for _, opt := range opts {
		opt(c)
	}
	c.catalog = NewStorageTypeCatalog(c.wellKnown...)
	c.blobs = NewDataBlobRegistry(hasher, c.catalog)
	return c
}

func (c *Container) enter(op string) {
	c.gate.RLock()
	if c.frozen.Load() {
		c.gate.RUnlock()
		panic(errors.Lifecycle(op, "frozen"))
	}
}

func (c *Container) leave() {
	c.gate.RUnlock()
}

// GetOrCreateField returns the deduplicated field holding data.
func (c *Container) GetOrCreateField(data []byte) *Field {
	c.enter("GetOrCreateField")
	defer c.leave()
	return c.blobs.GetOrCreate(data)
}

// GetOrCreateStorageType returns the storage type for size bytes without
// creating a field.
func (c *Container) GetOrCreateStorageType(size uint32) TypeRef {
	c.enter("GetOrCreateStorageType")
	defer c.leave()
	return c.catalog.GetOrCreate(size)
}

// TryAddMethod registers a synthesized method. It reports false, discarding
// body, when name is already registered.
func (c *Container) TryAddMethod(name string, body any) bool {
	c.enter("TryAddMethod")
	defer c.leave()
	return c.members.TryAdd(name, body)
}

// LookupMethod returns the body registered under name. It is valid in both
// phases.
func (c *Container) LookupMethod(name string) (any, bool) {
	return c.members.Lookup(name)
}

// Freeze ends the open phase and fixes the enumeration order. It must be
// called exactly once, after every mutator has returned.
func (c *Container) Freeze() {
	c.gate.Lock()
	defer c.gate.Unlock()
	if c.frozen.Load() {
		panic(errors.Lifecycle("Freeze", "frozen"))
	}

	c.fields = c.blobs.Sorted()
	c.nested = c.catalog.Synthesized()
	c.methods = c.members.Sorted()
	c.frozen.Store(true)

	Logger().Debug("container frozen",
		zap.String("type", c.Name()),
		zap.Int("fields", len(c.fields)),
		zap.Int("nested_types", len(c.nested)),
		zap.Int("methods", len(c.methods)),
	)
}

// Frozen reports whether Freeze has completed.
func (c *Container) Frozen() bool {
	return c.frozen.Load()
}

func (c *Container) mustBeFrozen(op string) {
	if !c.frozen.Load() {
		panic(errors.Lifecycle(op, "open"))
	}
}

// Fields returns the data fields sorted by content digest.
func (c *Container) Fields() []*Field {
	c.mustBeFrozen("Fields")
	return slices.Clone(c.fields)
}

// Methods returns the synthesized methods sorted by name.
func (c *Container) Methods() []*Member {
	c.mustBeFrozen("Methods")
	return slices.Clone(c.methods)
}

// NestedTypes returns the synthesized storage types sorted by size.
// Well-known types are not included.
func (c *Container) NestedTypes() []*StorageType {
	c.mustBeFrozen("NestedTypes")
	return slices.Clone(c.nested)
}

// FieldByName returns the frozen field with the given name.
func (c *Container) FieldByName(name string) (*Field, bool) {
	c.mustBeFrozen("FieldByName")
	i := sort.Search(len(c.fields), func(i int) bool { return c.fields[i].name >= name })
	if i < len(c.fields) && c.fields[i].name == name {
		return c.fields[i], true
	}
	return nil, false
}

// Stats summarizes a container's contents.
type Stats struct {
	Fields      int
	NestedTypes int
	Methods     int
	DataBytes   int
}

// Stats returns counts for the frozen container.
func (c *Container) Stats() Stats {
	c.mustBeFrozen("Stats")
	s := Stats{
		Fields:      len(c.fields),
		NestedTypes: len(c.nested),
		Methods:     len(c.methods),
	}
	for _, f := range c.fields {
		s.DataBytes += f.Len()
	}
	return s
}

// SlotIndex returns the submission slot index, or -1 if none.
func (c *Container) SlotIndex() int { return c.slot }

// Name returns the container type name.
func (c *Container) Name() string { return ContainerName(c.slot) }

func (c *Container) Visibility() Visibility { return VisibilityInternal }
func (c *Container) BaseType() BaseType     { return BaseObject }
func (c *Container) Layout() Layout         { return Layout{Kind: LayoutAuto} }
func (c *Container) Sealed() bool           { return true }
func (c *Container) Abstract() bool         { return false }
func (c *Container) Interface() bool        { return false }
func (c *Container) Generic() bool          { return false }
func (c *Container) Nested() bool           { return false }

// Attributes returns the container's marker attributes.
func (c *Container) Attributes() []Attribute {
	if c.marker == nil {
		return nil
	}
	return []Attribute{*c.marker}
}

var (
	_ TypeDefinition = (*Container)(nil)
	_ TypeDefinition = (*StorageType)(nil)
	_ TypeRef        = (*StorageType)(nil)
	_ TypeRef        = WellKnownType{}
)
