package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseSchema  Phase = "schema"  // layout and type construction
	PhaseEncode  Phase = "encode"  // typed value to raw bits
	PhaseDecode  Phase = "decode"  // raw bits to typed value
	PhaseView    Phase = "view"    // field view borrowing
	PhaseCompile Phase = "compile" // struct tag compilation
	PhaseLoad    Phase = "load"    // schema loading (WIT, CLI)
	PhaseParse   Phase = "parse"   // textual schema and value parsing
	PhaseMemory  Phase = "memory"  // linear memory access
)

// Kind categorizes the error
type Kind string

const (
	KindWidthOverflow         Kind = "width_overflow"
	KindInvalidDiscriminant   Kind = "invalid_discriminant"
	KindSchemaWidthMismatch   Kind = "schema_width_mismatch"
	KindWidthExceedsStorage   Kind = "width_exceeds_storage"
	KindDuplicateDiscriminant Kind = "duplicate_discriminant"
	KindDuplicateField        Kind = "duplicate_field"
	KindTypeMismatch          Kind = "type_mismatch"
	KindFieldUnknown          Kind = "field_unknown"
	KindFieldMissing          Kind = "field_missing"
	KindViewConflict          Kind = "view_conflict"
	KindInvalidInput          Kind = "invalid_input"
	KindUnsupported           Kind = "unsupported"
	KindOutOfBounds           Kind = "out_of_bounds"
)

// Sentinels for errors.Is. They carry no phase, so they match an error of the
// same kind raised in any phase.
var (
	ErrWidthOverflow         = &Error{Kind: KindWidthOverflow}
	ErrInvalidDiscriminant   = &Error{Kind: KindInvalidDiscriminant}
	ErrSchemaWidthMismatch   = &Error{Kind: KindSchemaWidthMismatch}
	ErrWidthExceedsStorage   = &Error{Kind: KindWidthExceedsStorage}
	ErrDuplicateDiscriminant = &Error{Kind: KindDuplicateDiscriminant}
	ErrTypeMismatch          = &Error{Kind: KindTypeMismatch}
	ErrFieldUnknown          = &Error{Kind: KindFieldUnknown}
	ErrViewConflict          = &Error{Kind: KindViewConflict}
	ErrInvalidInput          = &Error{Kind: KindInvalidInput}
	ErrOutOfBounds           = &Error{Kind: KindOutOfBounds}
)

// Error is the structured error type used throughout the module
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Type   string
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	if e.Phase != "" {
		b.WriteByte('[')
		b.WriteString(string(e.Phase))
		b.WriteString("] ")
	}
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Type != "" {
		b.WriteString(": type ")
		b.WriteString(e.Type)
	}

	if e.Detail != "" {
		if e.Type != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
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

// Is reports whether target matches this error. An empty Phase on the target
// matches any phase.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase != "" && t.Phase != e.Phase {
		return false
	}
	return e.Kind == t.Kind
}

// WithPath returns a copy of e with prefix prepended to its path.
func (e *Error) WithPath(prefix ...string) *Error {
	cp := *e
	cp.Path = append(append(make([]string, 0, len(prefix)+len(e.Path)), prefix...), e.Path...)
	return &cp
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

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Type sets the bitfield type name
func (b *Builder) Type(t string) *Builder {
	b.err.Type = t
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

// WidthOverflow creates an error for a value that does not fit its declared width
func WidthOverflow(phase Phase, path []string, value any, width int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindWidthOverflow,
		Path:   path,
		Detail: fmt.Sprintf("value %v does not fit in %d bits", value, width),
		Value:  value,
	}
}

// InvalidDiscriminant creates an error for a bit pattern with no matching variant
func InvalidDiscriminant(phase Phase, path []string, disc uint64, enumType string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidDiscriminant,
		Path:   path,
		Type:   enumType,
		Detail: fmt.Sprintf("no variant with discriminant %d", disc),
		Value:  disc,
	}
}

// SchemaWidthMismatch creates an error for a declared total width that
// disagrees with the sum of the field widths
func SchemaWidthMismatch(path []string, declared, actual int) *Error {
	return &Error{
		Phase:  PhaseSchema,
		Kind:   KindSchemaWidthMismatch,
		Path:   path,
		Detail: fmt.Sprintf("declared %d bits, fields sum to %d", declared, actual),
		Value:  actual,
	}
}

// WidthExceedsStorage creates an error for a total width above 64 bits
func WidthExceedsStorage(path []string, bits int) *Error {
	return &Error{
		Phase:  PhaseSchema,
		Kind:   KindWidthExceedsStorage,
		Path:   path,
		Detail: fmt.Sprintf("%d bits exceed the 64-bit storage limit", bits),
		Value:  bits,
	}
}

// DuplicateDiscriminant creates an error for an enum declaring the same value twice
func DuplicateDiscriminant(enumType string, disc uint64) *Error {
	return &Error{
		Phase:  PhaseSchema,
		Kind:   KindDuplicateDiscriminant,
		Type:   enumType,
		Detail: fmt.Sprintf("discriminant %d declared more than once", disc),
		Value:  disc,
	}
}

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, path []string, got, want string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Path:   path,
		Type:   want,
		Detail: fmt.Sprintf("got %s", got),
	}
}

// FieldUnknown creates an unknown field error
func FieldUnknown(phase Phase, path []string, fieldName string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindFieldUnknown,
		Path:   path,
		Detail: fmt.Sprintf("unknown field %q", fieldName),
	}
}

// FieldMissing creates a missing field error
func FieldMissing(phase Phase, path []string, fieldName string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindFieldMissing,
		Path:   path,
		Detail: fmt.Sprintf("required field %q not set", fieldName),
	}
}

// ViewConflict creates an error for a field view that would alias a live one
func ViewConflict(path []string, detail string) *Error {
	return &Error{
		Phase:  PhaseView,
		Kind:   KindViewConflict,
		Path:   path,
		Detail: detail,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// OutOfBounds creates an out of bounds memory access error
func OutOfBounds(phase Phase, offset, length uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Detail: fmt.Sprintf("access at offset %d (length %d) out of bounds", offset, length),
		Value:  offset,
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

// Load creates a schema loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidInput,
		Detail: detail,
		Cause:  cause,
	}
}

// ParseFailed creates a parsing error
func ParseFailed(what string, cause error) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindInvalidInput,
		Detail: fmt.Sprintf("parse %s", what),
		Cause:  cause,
	}
}
