// Package manifest describes the contents of one implementation-details
// container as a build manifest and registers it.
//
// A manifest is written in HCL or TOML. Both formats decode into the same
// format-agnostic Model:
//
//	slot_index         = 0
//	hasher             = "sha256"
//	compiler_generated = true
//
//	well_known "Int32" { size = 4 }
//
//	blob "greeting" { text = upper("hello") }
//	blob "table"    { hex  = "00ff10" }
//	blob "logo"     { file = "assets/logo.bin" }
//
//	helper "answer" {
//	  kind  = "const"
//	  value = 42
//	}
//	helper "greeting_addr" {
//	  kind = "field_address"
//	  blob = "greeting"
//	}
//	helper "ComputeStringHash" { kind = "string_hash" }
//
// HCL expressions may call upper, lower, concat and format.
//
// Apply registers every blob and helper of a Model into an open container
// from a bounded pool of goroutines. Registration order does not affect the
// frozen result.
package manifest
