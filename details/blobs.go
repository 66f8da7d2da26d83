package details

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/wippyai/rodata"
	"github.com/wippyai/rodata/errors"
)

// Field is a deduplicated static data slot. Its identity is its content:
// two requests with equal bytes return the same *Field.
type Field struct {
	name    string
	digest  []byte
	content string
	typ     TypeRef
}

// Name returns the content-derived field name.
func (f *Field) Name() string { return f.name }

// Digest returns the content hash the name was derived from.
func (f *Field) Digest() []byte { return bytes.Clone(f.digest) }

// Data returns a copy of the field's bytes.
func (f *Field) Data() []byte { return []byte(f.content) }

// Len returns the number of bytes in the field.
func (f *Field) Len() int { return len(f.content) }

// Type returns the storage type sized to the field's data.
func (f *Field) Type() TypeRef { return f.typ }

// String returns the field name.
func (f *Field) String() string { return f.name }

// DataBlobRegistry deduplicates byte sequences into named fields. Keys are
// the exact bytes, so equal content always maps to one entry.
type DataBlobRegistry struct {
	hasher  rodata.Hasher
	catalog *StorageTypeCatalog
	blobs   sync.Map // string(content) -> *Field
}

// NewDataBlobRegistry creates a registry naming fields with hasher and typing
// them through catalog.
func NewDataBlobRegistry(hasher rodata.Hasher, catalog *StorageTypeCatalog) *DataBlobRegistry {
	return &DataBlobRegistry{hasher: hasher, catalog: catalog}
}

// GetOrCreate returns the field holding data, creating it on first request.
// The caller must not modify data while the call is in progress.
func (r *DataBlobRegistry) GetOrCreate(data []byte) *Field {
	key := string(data)
	if v, ok := r.blobs.Load(key); ok {
		return v.(*Field)
	}

	if uint64(len(data)) > math.MaxUint32 {
		panic(errors.New(errors.PhaseLifecycle, errors.KindInvalidInput).
			Value(len(data)).
			Detail("blob of %d bytes exceeds the maximum storage size", len(data)).
			Build())
	}
	size := uint32(len(data))

	// Hashers may reuse their output buffer.
	digest := bytes.Clone(r.hasher.Sum(data))
	f := &Field{
		name:    FieldName(digest),
		digest:  digest,
		content: key,
		typ:     r.catalog.GetOrCreate(size),
	}
	if f.typ.Size() != size {
		panic(errors.Invariant("field", f.name,
			fmt.Sprintf("storage type %s has size %d, blob has %d bytes", f.typ.Name(), f.typ.Size(), size)))
	}

	v, _ := r.blobs.LoadOrStore(key, f)
	return v.(*Field)
}

// Sorted returns all fields ordered by digest. Equal digests, which only a
// hash collision can produce, fall back to content order.
func (r *DataBlobRegistry) Sorted() []*Field {
	var out []*Field
	r.blobs.Range(func(_, v any) bool {
		out = append(out, v.(*Field))
		return true
	})
	sort.Slice(out, func(i, j int) bool {
		if c := bytes.Compare(out[i].digest, out[j].digest); c != 0 {
			return c < 0
		}
		return out[i].content < out[j].content
	})
	return out
}
