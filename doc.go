// Package rodata provides the synthesized implementation-details registry of a
// compiler backend: deduplicated constant data blobs, the explicit-size storage
// types they need, and synthesized helper methods, frozen into a deterministic
// read-only view for the metadata writer.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	rodata/              Root package with the Hasher contract
//	├── details/         Container, storage type catalog, blob and member registries
//	├── contenthash/     Hasher implementations (sha256, blake3, blake2b)
//	├── helper/          Format-neutral synthesized method bodies
//	├── wasmemit/        Writes a frozen container as a WebAssembly core module
//	├── llvmemit/        Writes a frozen container as LLVM IR
//	├── manifest/        HCL and TOML build manifests
//	├── errors/          Structured error types for debugging
//	└── cmd/rodatagen/   Command line driver
//
// # Quick Start
//
// Register data from many goroutines, then freeze once:
//
//	c := details.New(contenthash.SHA256())
//
//	f := c.GetOrCreateField([]byte{0x01, 0x02, 0x03})
//	fmt.Println(f.Name(), f.Type().Name()) // "__StaticData_039058C6...", "__StaticArrayInitTypeSize=3"
//
//	c.TryAddMethod("ComputeStringHash", helper.StringHash{})
//	c.Freeze()
//
//	out, err := wasmemit.Emit(c)
//
// # Determinism
//
// Field names are derived from a content hash, never from registration order.
// Freeze sorts fields by digest, methods by name and storage types by size, so
// the writer output is byte-identical across runs regardless of how the
// registering goroutines were scheduled.
//
// # Thread Safety
//
// Container is safe for concurrent use while open. Freeze requires that no
// mutator is in flight. After Freeze all state is immutable and may be read
// without synchronization.
package rodata
