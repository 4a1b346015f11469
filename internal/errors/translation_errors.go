package errors

import (
	"errors"
	"fmt"
	"strings"

	"cdecomp/internal/ir"
)

// ErrorLevel represents the severity of an error
type ErrorLevel string

const (
	Error   ErrorLevel = "error"
	Warning ErrorLevel = "warning"
	Note    ErrorLevel = "note"
)

// TranslationError is a recoverable, reported failure caused by the input IR
type TranslationError struct {
	Level    ErrorLevel
	Code     string      // Error code like D0103
	Message  string      // Primary error message
	Pass     string      // Pass that was running, empty outside the pipeline
	Element  string      // Identity of the offending IR element
	Pos      ir.Position // Location in the IR text, if known
	Notes    []string
	HelpText string
}

func (e *TranslationError) Error() string {
	var b strings.Builder
	if e.Pass != "" {
		b.WriteString(e.Pass)
		b.WriteString(": ")
	}
	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Message)
	if e.Element != "" {
		fmt.Fprintf(&b, " (in %s)", e.Element)
	}
	if e.Pos.IsValid() {
		fmt.Fprintf(&b, " at %s", e.Pos)
	}
	return b.String()
}

// InPass returns a copy of the error attributed to the named pass
func (e *TranslationError) InPass(pass string) *TranslationError {
	c := *e
	c.Pass = pass
	return &c
}

// Locate returns a copy that fills in the element and position when the
// error does not carry them yet
func (e *TranslationError) Locate(element string, pos ir.Position) *TranslationError {
	c := *e
	if c.Element == "" {
		c.Element = element
	}
	if !c.Pos.IsValid() {
		c.Pos = pos
	}
	return &c
}

// AsTranslationError finds the first TranslationError in err's chain
func AsTranslationError(err error) (*TranslationError, bool) {
	var te *TranslationError
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}

// InvariantViolation is the panic payload for pipeline wiring bugs.
// It is never returned as an error.
type InvariantViolation struct {
	Code    string
	Message string
}

func (v *InvariantViolation) Error() string {
	return fmt.Sprintf("internal invariant violated [%s]: %s", v.Code, v.Message)
}

// Violate panics with an InvariantViolation
func Violate(code, format string, args ...any) {
	panic(&InvariantViolation{Code: code, Message: fmt.Sprintf(format, args...)})
}

// TranslationErrorBuilder provides a fluent interface for creating translation errors
type TranslationErrorBuilder struct {
	err TranslationError
}

// NewTranslationError creates a new translation error builder
func NewTranslationError(code, message string) *TranslationErrorBuilder {
	return &TranslationErrorBuilder{
		err: TranslationError{
			Level:   Error,
			Code:    code,
			Message: message,
		},
	}
}

// At sets the location of the error
func (b *TranslationErrorBuilder) At(pos ir.Position) *TranslationErrorBuilder {
	b.err.Pos = pos
	return b
}

// In records the IR element the error is about
func (b *TranslationErrorBuilder) In(element string) *TranslationErrorBuilder {
	b.err.Element = element
	return b
}

// WithNote adds a note to the error
func (b *TranslationErrorBuilder) WithNote(note string) *TranslationErrorBuilder {
	b.err.Notes = append(b.err.Notes, note)
	return b
}

// WithHelp adds help text to the error
func (b *TranslationErrorBuilder) WithHelp(help string) *TranslationErrorBuilder {
	b.err.HelpText = help
	return b
}

// Build returns the completed translation error
func (b *TranslationErrorBuilder) Build() *TranslationError {
	err := b.err
	return &err
}

// Common translation error constructors

// UnsupportedType creates an error for IR types without a C counterpart
func UnsupportedType(irType string, reason string) *TranslationError {
	return NewTranslationError(ErrorUnsupportedType,
		fmt.Sprintf("unsupported IR type '%s': %s", irType, reason)).
		In(irType).
		Build()
}

// UnsupportedInstruction creates an error for instructions the translator does not handle
func UnsupportedInstruction(opcode, function string, pos ir.Position) *TranslationError {
	return NewTranslationError(ErrorUnsupportedInstruction,
		fmt.Sprintf("cannot translate instruction '%s'", opcode)).
		In("function @" + function).
		At(pos).
		WithHelp("only unoptimized (-O0) style IR without phi nodes is supported").
		Build()
}

// MalformedVarArg creates an error for a variadic descriptor with the wrong arity
func MalformedVarArg(rawName string, fields int, pos ir.Position) *TranslationError {
	return NewTranslationError(ErrorMalformedVarArg,
		fmt.Sprintf("'%s' has %d fields, expected 4", rawName, fields)).
		In("%" + rawName).
		At(pos).
		WithNote("the descriptor is { i32, i32, i8*, i8* } on x86-64 System V").
		Build()
}

// NameCollision creates an error for IR names that normalize to one C name
func NameCollision(kind, name, raw string, pos ir.Position) *TranslationError {
	return NewTranslationError(ErrorNameCollision,
		fmt.Sprintf("%s '%s' maps to '%s', which is already declared", kind, raw, name)).
		In(raw).
		At(pos).
		Build()
}

// IncompatibleOperands creates an error for binary operations without a common type
func IncompatibleOperands(left, right string) *TranslationError {
	return NewTranslationError(ErrorIncompatibleOperands,
		fmt.Sprintf("no common type for operands '%s' and '%s'", left, right)).
		Build()
}

// UndefinedReference creates an error for references to unknown values, blocks or types
func UndefinedReference(kind, name, function string, pos ir.Position) *TranslationError {
	b := NewTranslationError(ErrorUndefinedReference,
		fmt.Sprintf("undefined %s '%s'", kind, name)).
		At(pos)
	if function != "" {
		b = b.In("function @" + function)
	}
	return b.Build()
}

// InvalidAggregateAccess creates an error for indices that do not select a member
func InvalidAggregateAccess(aggregate string, index int64, pos ir.Position) *TranslationError {
	return NewTranslationError(ErrorInvalidAggregateAccess,
		fmt.Sprintf("index %d does not select a member of '%s'", index, aggregate)).
		At(pos).
		Build()
}

// UnresolvedType creates an error for expressions a pass left untyped
func UnresolvedType(expr, function string) *TranslationError {
	b := NewTranslationError(ErrorUnresolvedType,
		fmt.Sprintf("expression '%s' has no result type", expr))
	if function != "" {
		b = b.In("function @" + function)
	}
	return b.Build()
}
