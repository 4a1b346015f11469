package errors

// Error codes for the decompiler
// These codes are used in error messages so that a failure can be traced
// back to the pass and the kind of IR construct that caused it.
//
// Error code ranges:
// D0001-D0099: Internal invariant violations (pipeline wiring bugs)
// D0100-D0199: Unsupported or malformed IR shapes
// D0200-D0299: Type system errors
// D0300-D0399: Pipeline verification errors

const (
	// D0001: A pass ran before one of its prerequisites
	ErrorMissingPrerequisite = "D0001"

	// D0002: The same aggregate name was registered twice
	ErrorDuplicateStruct = "D0002"

	// D0003: The variadic-argument descriptor was synthesized twice
	ErrorDuplicateVarArg = "D0003"

	// D0004: A function or global was registered twice
	ErrorDuplicateSymbol = "D0004"

	// D0100: The textual IR could not be parsed
	ErrorParse = "D0100"

	// D0101: The IR refers to something that does not exist
	ErrorUndefinedReference = "D0101"

	// D0102: The variadic-argument descriptor has an unexpected layout
	ErrorMalformedVarArg = "D0102"

	// D0103: Instruction or operand shape the translator does not handle
	ErrorUnsupportedInstruction = "D0103"

	// D0104: Distinct IR names that normalize to the same C name
	ErrorNameCollision = "D0104"

	// D0200: IR type with no C counterpart
	ErrorUnsupportedType = "D0200"

	// D0201: Binary operation over operand types that do not combine
	ErrorIncompatibleOperands = "D0201"

	// D0202: Aggregate access that does not match the aggregate layout
	ErrorInvalidAggregateAccess = "D0202"

	// D0300: A pass left an expression without a result type
	ErrorUnresolvedType = "D0300"
)

// GetErrorDescription returns a human-readable description of the error code
func GetErrorDescription(code string) string {
	switch code {
	case ErrorMissingPrerequisite:
		return "Pass executed before the passes it depends on"
	case ErrorDuplicateStruct:
		return "Aggregate declared more than once"
	case ErrorDuplicateVarArg:
		return "Variadic argument descriptor synthesized more than once"
	case ErrorDuplicateSymbol:
		return "Function or global declared more than once"
	case ErrorParse:
		return "Textual IR is not well formed"
	case ErrorUndefinedReference:
		return "IR refers to an undefined value, block or type"
	case ErrorMalformedVarArg:
		return "Variadic argument descriptor does not have the expected four fields"
	case ErrorUnsupportedInstruction:
		return "Instruction cannot be translated to a C expression"
	case ErrorNameCollision:
		return "Distinct IR names map to the same C identifier"
	case ErrorUnsupportedType:
		return "IR type has no C equivalent"
	case ErrorIncompatibleOperands:
		return "Binary operation over operand types with no common type"
	case ErrorInvalidAggregateAccess:
		return "Index does not select a member of the aggregate"
	case ErrorUnresolvedType:
		return "Expression left without a result type"
	default:
		return "Unknown error"
	}
}

// IsInternal reports whether the code belongs to the invariant violation range
func IsInternal(code string) bool {
	return len(code) == 5 && code[0] == 'D' && code[1:3] == "00"
}
