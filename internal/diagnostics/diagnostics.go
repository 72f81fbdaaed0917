// Package diagnostics defines the analyzer's fixed error taxonomy and
// the concrete message strings each kind renders. It follows an
// error-code-plus-template design: a stable Kind tag paired with a
// human-readable Message, rather than freeform per-phase error types.
package diagnostics

import (
	"fmt"

	"github.com/veryl-lang/veryl/internal/token"
)

// Kind tags one analyzer diagnostic.
type Kind string

const (
	// Resolution
	KindNotFound    Kind = "not_found"
	KindAmbiguous   Kind = "ambiguous"
	KindAccessDenied Kind = "access_denied"

	// Evaluation
	KindDivisionByZero     Kind = "division_by_zero"
	KindShiftOverflow      Kind = "shift_overflow"
	KindGenericUnbound     Kind = "generic_unbound"
	KindNonConstInConstCtx Kind = "non_const_in_const_context"

	// Semantic
	KindInvalidFactor                    Kind = "invalid_factor"
	KindInvalidCaseConditionNonElaborative Kind = "invalid_case_condition_non_elaborative"
	KindIncompatProto                    Kind = "incompat_proto"
	KindMismatchType                     Kind = "mismatch_type"

	// Metadata/Resolver
	KindNameConflict   Kind = "name_conflict"
	KindVersionNotFound Kind = "version_not_found"
	KindTomlParse      Kind = "toml_parse"
	KindIo             Kind = "io"
	KindGit            Kind = "git"
)

// Error is one analyzer diagnostic: a kind tag, a primary source range,
// and a human message.
type Error struct {
	Kind    Kind
	Range   token.Range
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Range.Line, e.Range.Column, e.Message)
}

func newError(kind Kind, rng token.Range, message string) *Error {
	return &Error{Kind: kind, Range: rng, Message: message}
}

// InvalidFactor reports a port default-value expression that references
// something other than a system function, a const generic parameter, or
// a package-scoped symbol.
func InvalidFactor(name, kind string, rng token.Range) *Error {
	return newError(KindInvalidFactor, rng,
		fmt.Sprintf("%s (%s) cannot be used in a port default value", name, kind))
}

// InvalidCaseConditionNonElaborative reports a case-label bound that did
// not evaluate to Known.
func InvalidCaseConditionNonElaborative(rng token.Range) *Error {
	return newError(KindInvalidCaseConditionNonElaborative, rng,
		"case condition must be elaboration-time constant")
}

// ProtoIncompatibleCause enumerates the six ways a module can fail
// prototype conformance.
type ProtoIncompatibleCause string

const (
	CauseMissingParam       ProtoIncompatibleCause = "missing_param"
	CauseMissingPort        ProtoIncompatibleCause = "missing_port"
	CauseUnnecessaryParam   ProtoIncompatibleCause = "unnecessary_param"
	CauseUnnecessaryPort    ProtoIncompatibleCause = "unnecessary_port"
	CauseIncompatibleParam  ProtoIncompatibleCause = "incompatible_param"
	CauseIncompatiblePort   ProtoIncompatibleCause = "incompatible_port"
)

// ProtoCauseMessage renders the exact wording for one conformance cause.
func ProtoCauseMessage(cause ProtoIncompatibleCause, name string) string {
	switch cause {
	case CauseMissingParam:
		return fmt.Sprintf("parameter %s is missing", name)
	case CauseMissingPort:
		return fmt.Sprintf("port %s is missing", name)
	case CauseUnnecessaryParam:
		return fmt.Sprintf("parameter %s is unnecessary", name)
	case CauseUnnecessaryPort:
		return fmt.Sprintf("port %s is unnecessary", name)
	case CauseIncompatibleParam:
		return fmt.Sprintf("parameter %s has incompatible type", name)
	case CauseIncompatiblePort:
		return fmt.Sprintf("port %s has incompatible type", name)
	default:
		return string(cause)
	}
}

// IncompatProto reports a module/prototype conformance mismatch.
func IncompatProto(module, proto string, cause ProtoIncompatibleCause, name string, rng token.Range) *Error {
	msg := fmt.Sprintf("module %q implementing prototype %q: %s", module, proto, ProtoCauseMessage(cause, name))
	return newError(KindIncompatProto, rng, msg)
}

// MismatchType reports that a symbol used as a prototype is not actually
// a ProtoModule.
func MismatchType(name, expected, actual string, rng token.Range) *Error {
	return newError(KindMismatchType, rng,
		fmt.Sprintf("%s: expected %s, found %s", name, expected, actual))
}

// NotFound, Ambiguous and AccessDenied back symbol resolution's
// three failure modes.
func NotFound(name string, rng token.Range) *Error {
	return newError(KindNotFound, rng, fmt.Sprintf("identifier %q is not defined", name))
}

func Ambiguous(name string, candidates []string, rng token.Range) *Error {
	return newError(KindAmbiguous, rng,
		fmt.Sprintf("identifier %q is ambiguous among %v", name, candidates))
}

func AccessDenied(name, visibility string, rng token.Range) *Error {
	return newError(KindAccessDenied, rng,
		fmt.Sprintf("identifier %q is not visible (%s)", name, visibility))
}

// EvaluatedErrorKind tags one failure produced by the constant
// evaluator, later lifted into a full analyzer Error.
type EvaluatedErrorKind string

const (
	EvalDivisionByZero     EvaluatedErrorKind = "division_by_zero"
	EvalShiftOverflow      EvaluatedErrorKind = "shift_overflow"
	EvalGenericUnbound     EvaluatedErrorKind = "generic_unbound"
	EvalNonConstInConstCtx EvaluatedErrorKind = "non_const_in_const_context"
	EvalOverflow           EvaluatedErrorKind = "overflow"
)

// EvaluatedError is one failure surfaced while folding an expression.
type EvaluatedError struct {
	Kind    EvaluatedErrorKind
	Range   token.Range
	Message string
}

func (e EvaluatedError) Error() string { return e.Message }

// NewEvaluatedError builds an EvaluatedError, the Go analogue of Rust's
// EvaluatedError enum members in the original evaluator.
func NewEvaluatedError(kind EvaluatedErrorKind, rng token.Range, message string) EvaluatedError {
	return EvaluatedError{Kind: kind, Range: rng, Message: message}
}

// FromEvaluated lifts an evaluator-level error into an analyzer Error,
// the Go equivalent of AnalyzerError::evaluated_error.
func FromEvaluated(e EvaluatedError) *Error {
	kind := Kind(e.Kind)
	return newError(kind, e.Range, e.Message)
}
