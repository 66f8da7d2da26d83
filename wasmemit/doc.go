// Package wasmemit writes a frozen details.Container as a WebAssembly core
// module.
//
// # Layout
//
// Data fields are placed back to back in linear memory starting at the base
// offset (DefaultBase unless WithBase is given), in the container's frozen
// field order. Storage types have alignment 1, so no padding is inserted. A
// single active data segment initializes the whole range.
//
// # Exports
//
//	memory                     the module's linear memory
//	<field name>               immutable i32 global holding the field offset
//	<storage type name>        immutable i32 global holding the type size
//	<method name>              one function per synthesized method
//
// # Type Records
//
// WebAssembly has no nominal types, so the type-definition records of the
// container and its nested storage types are written to the custom section
// TypesSection:
//
//	vec(record)
//	record := name:name kind:byte size:u32 align:u32 flags:byte vec(attr:name)
//
// kind is 0 for the container and 1 for a storage type. flags packs sealed
// (bit 0), abstract (bit 1), interface (bit 2), generic (bit 3) and public
// visibility (bit 4).
//
// Emitting the same frozen contents always yields identical bytes.
package wasmemit
