// Package errors provides structured error types for the tcl-runtime module.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the offending value, an optional Go type name, a detail
// message and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseConvert, errors.KindTypeMismatch).
//		GoType("float32").
//		Detail("no reader bound for this type").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.LibraryNotFound(path, statErr)
//	err := errors.NewMissingSymbolsError(path, []string{"Tcl_Eval"})
//
// All errors implement the standard error interface and support errors.Is/As.
// A MissingSymbolsError also matches any *Error in PhaseBind with KindUnresolved.
package errors
