// Package errors provides structured error types for the rodata library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: manifest path, the entity involved, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseConfig, errors.KindInvalidInput).
//		Path("blob", "table").
//		Entity("blob", "table").
//		Detail("exactly one of text, hex or file must be set").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.NotFound(errors.PhaseEmit, "field", name)
//	err := errors.Unsupported(errors.PhaseEmit, "method body helper.Foo")
//
// Contract violations of the container lifecycle are not returned; they are
// raised with panic and carry a *Error with PhaseLifecycle, so a recovering
// driver can still inspect them with errors.Is/As.
package errors
