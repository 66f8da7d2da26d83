package details

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/rodata/errors"
)

// StorageType is a synthesized zero-field value type of an exact byte size
// with alignment 1 and explicit layout. It carries no reference to its
// container; writers receive it from Container.NestedTypes.
type StorageType struct {
	name string
	size uint32
}

// Name implements TypeRef and TypeDefinition.
func (s *StorageType) Name() string { return s.name }

// Size implements TypeRef.
func (s *StorageType) Size() uint32 { return s.size }

func (s *StorageType) Visibility() Visibility  { return VisibilityInternal }
func (s *StorageType) BaseType() BaseType      { return BaseValueType }
func (s *StorageType) Attributes() []Attribute { return nil }
func (s *StorageType) Sealed() bool            { return true }
func (s *StorageType) Abstract() bool          { return false }
func (s *StorageType) Interface() bool         { return false }
func (s *StorageType) Generic() bool           { return false }
func (s *StorageType) Nested() bool            { return true }

// Layout implements TypeDefinition.
func (s *StorageType) Layout() Layout {
	return Layout{Kind: LayoutExplicit, Size: s.size, Alignment: 1}
}

// String returns the type name.
func (s *StorageType) String() string { return s.name }

// wellKnownSizes are the sizes for which a platform type may stand in.
var wellKnownSizes = [...]uint32{1, 2, 4, 8}

// StorageTypeCatalog maps byte sizes to storage types. Well-known types are
// returned for sizes 1, 2, 4 and 8 when supplied; any other size gets a
// synthesized StorageType created at most once.
type StorageTypeCatalog struct {
	wellKnown [9]TypeRef
	types     sync.Map // uint32 -> *StorageType
}

// NewStorageTypeCatalog creates a catalog. Each well-known type must have
// size 1, 2, 4 or 8, and at most one may be given per size.
func NewStorageTypeCatalog(wellKnown ...TypeRef) *StorageTypeCatalog {
	c := &StorageTypeCatalog{}
	for _, t := range wellKnown {
		size := t.Size()
		if !isWellKnownSize(size) {
			panic(errors.New(errors.PhaseLifecycle, errors.KindInvalidInput).
				Path("well_known", t.Name()).
				Value(size).
				Detail("well-known type size %d is not one of 1, 2, 4, 8", size).
				Build())
		}
		if c.wellKnown[size] != nil {
			dup := errors.Duplicate(errors.PhaseLifecycle, []string{"well_known"}, "well-known type size", fmt.Sprint(size))
			dup.Value = t
			panic(dup)
		}
		c.wellKnown[size] = t
	}
	return c
}

func isWellKnownSize(size uint32) bool {
	for _, s := range wellKnownSizes {
		if s == size {
			return true
		}
	}
	return false
}

// GetOrCreate returns the storage type for size bytes.
func (c *StorageTypeCatalog) GetOrCreate(size uint32) TypeRef {
	if size < uint32(len(c.wellKnown)) && c.wellKnown[size] != nil {
		return c.wellKnown[size]
	}
	if v, ok := c.types.Load(size); ok {
		return v.(*StorageType)
	}
	v, loaded := c.types.LoadOrStore(size, &StorageType{name: StorageTypeName(size), size: size})
	if !loaded {
		Logger().Debug("synthesized storage type", zap.Uint32("size", size))
	}
	return v.(*StorageType)
}

// Synthesized returns the synthesized storage types sorted by size.
func (c *StorageTypeCatalog) Synthesized() []*StorageType {
	var out []*StorageType
	c.types.Range(func(_, v any) bool {
		out = append(out, v.(*StorageType))
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].size < out[j].size })
	return out
}
