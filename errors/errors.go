package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseLifecycle Phase = "lifecycle" // container open/freeze contract
	PhaseConfig    Phase = "config"    // manifest loading and validation
	PhaseRegister  Phase = "register"  // applying a manifest to a container
	PhaseEmit      Phase = "emit"      // metadata writers
	PhaseHash      Phase = "hash"      // content hashing
)

// Kind categorizes the error
type Kind string

const (
	KindLifecycle    Kind = "lifecycle"
	KindInvariant    Kind = "invariant"
	KindInvalidInput Kind = "invalid_input"
	KindNotFound     Kind = "not_found"
	KindUnsupported  Kind = "unsupported"
	KindDuplicate    Kind = "duplicate"
	KindIO           Kind = "io"
)

// Error is the structured error type used throughout the library
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Entity string // "field", "storage type", "method", "blob", ...
	Name   string
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	hasEntity := e.Entity != "" || e.Name != ""
	if hasEntity {
		b.WriteString(": ")
		switch {
		case e.Entity != "" && e.Name != "":
			b.WriteString(e.Entity)
			b.WriteString(" ")
			b.WriteString(fmt.Sprintf("%q", e.Name))
		case e.Entity != "":
			b.WriteString(e.Entity)
		default:
			b.WriteString(fmt.Sprintf("%q", e.Name))
		}
	}

	if e.Detail != "" {
		if hasEntity {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Value != nil {
		fmt.Fprintf(&b, " (value: %v)", e.Value)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the manifest or element path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Entity sets what kind of entity is involved and its name
func (b *Builder) Entity(entity, name string) *Builder {
	b.err.Entity = entity
	b.err.Name = name
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Lifecycle creates a container lifecycle violation. op names the attempted
// operation and state the state the container was in.
func Lifecycle(op, state string) *Error {
	return &Error{
		Phase:  PhaseLifecycle,
		Kind:   KindLifecycle,
		Detail: fmt.Sprintf("%s not permitted while container is %s", op, state),
	}
}

// Invariant creates an internal invariant violation
func Invariant(entity, name, detail string) *Error {
	return &Error{
		Phase:  PhaseLifecycle,
		Kind:   KindInvariant,
		Entity: entity,
		Name:   name,
		Detail: detail,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, entity, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Entity: entity,
		Name:   name,
		Detail: "not found",
	}
}

// Duplicate creates a duplicate definition error
func Duplicate(phase Phase, path []string, entity, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindDuplicate,
		Path:   path,
		Entity: entity,
		Name:   name,
		Detail: "defined more than once",
	}
}

// Unsupported creates an unsupported feature error
func Unsupported(phase Phase, feature string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: fmt.Sprintf("unsupported: %s", feature),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Path:   path,
		Detail: detail,
	}
}

// IO creates an I/O error for reading manifests or blob files
func IO(phase Phase, what string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindIO,
		Detail: what,
		Cause:  cause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
