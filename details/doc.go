// Package details implements the implementation-details container of the
// code generator: the per-compilation-unit owner of deduplicated constant
// data fields, the explicit-size storage types backing them, and synthesized
// helper methods.
//
// # Lifecycle
//
// A Container is created open. While open, any number of goroutines may call
// GetOrCreateField, GetOrCreateStorageType and TryAddMethod. Every one of
// these is an atomic get-or-insert keyed by content, size or name, so the
// final set of entries does not depend on how callers interleave.
//
// Freeze is called exactly once by the driver after all code generation has
// finished. It snapshots the three registries into sorted immutable slices:
//
//	Fields()       sorted by content digest (equivalently by field name)
//	Methods()      sorted by name
//	NestedTypes()  synthesized storage types sorted by size
//
// Calling a mutator after Freeze, calling Freeze twice, or enumerating before
// Freeze panics with a *errors.Error in errors.PhaseLifecycle. These are
// driver bugs, not runtime conditions.
//
// # Naming
//
// Field names are FieldNamePrefix followed by the uppercase hex encoding of
// the content digest. Storage type names are StorageTypePrefix followed by the
// decimal byte size. Well-known platform types supplied through
// WithWellKnownTypes are reused for sizes 1, 2, 4 and 8 and never appear in
// NestedTypes.
package details
