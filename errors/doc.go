// Package errors provides structured error types for the bitfield module.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes the field path, the bitfield type name and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindInvalidDiscriminant).
//		Path("header", "mode").
//		Type("enum Mode").
//		Detail("no variant with discriminant %d", 25).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.WidthOverflow(errors.PhaseEncode, path, 9, 3)
//	err := errors.SchemaWidthMismatch(path, 16, 12)
//
// The Err* sentinels carry only a Kind and match errors of that kind from any
// phase:
//
//	if errors.Is(err, bferrors.ErrInvalidDiscriminant) { ... }
//
// Strict codec operations panic with an *Error; recover and inspect it the same way.
package errors
