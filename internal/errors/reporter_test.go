package errors

import (
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"cdecomp/internal/ir"
)

func init() {
	color.NoColor = true
}

func TestErrorReporter(t *testing.T) {
	source := `define i32 @main() {
entry:
  %1 = phi i32 [ 0, %entry ]
  ret i32 %1
}`

	reporter := NewErrorReporter("test.ll", source)

	err := UnsupportedInstruction("phi", "main", ir.Position{Line: 3, Column: 8}).InPass("ParseInstructions")
	formatted := reporter.FormatError(err)

	// Should contain error level and code
	assert.Contains(t, formatted, "error["+ErrorUnsupportedInstruction+"]")
	assert.Contains(t, formatted, "cannot translate instruction 'phi'")

	// Should contain location and origin
	assert.Contains(t, formatted, "test.ll:3:8")
	assert.Contains(t, formatted, "while running ParseInstructions on function @main")

	// Should quote the line and underline the opcode
	assert.Contains(t, formatted, "%1 = phi i32")
	assert.Contains(t, formatted, "       ^^^")
	assert.Contains(t, formatted, "help:")
}

func TestErrorReporterWithoutSource(t *testing.T) {
	reporter := NewErrorReporter("module", "")

	err := UnsupportedType("<4 x i32>", "vector types have no C equivalent")
	formatted := reporter.FormatError(err)

	assert.Contains(t, formatted, "error["+ErrorUnsupportedType+"]")
	assert.Contains(t, formatted, "in <4 x i32>")
	assert.NotContains(t, formatted, "-->")
}

func TestTranslationErrorMessage(t *testing.T) {
	err := MalformedVarArg("struct.__va_list_tag", 3, ir.Position{Filename: "a.ll", Line: 2, Column: 1})

	assert.Equal(t, ErrorMalformedVarArg, err.Code)
	assert.Equal(t, "[D0102] 'struct.__va_list_tag' has 3 fields, expected 4 (in %struct.__va_list_tag) at a.ll:2:1", err.Error())

	inPass := err.InPass("ParseStructDeclarations")
	assert.Equal(t, "ParseStructDeclarations", inPass.Pass)
	assert.Empty(t, err.Pass, "InPass must not modify the receiver")
	assert.Contains(t, inPass.Error(), "ParseStructDeclarations: [D0102]")
}

func TestViolatePanicsWithInvariantViolation(t *testing.T) {
	defer func() {
		r := recover()
		v, ok := r.(*InvariantViolation)
		if assert.True(t, ok, "expected *InvariantViolation, got %T", r) {
			assert.Equal(t, ErrorMissingPrerequisite, v.Code)
			assert.Contains(t, v.Error(), "FixMainParameters requires CreateFunctionParameters")
		}
	}()

	Violate(ErrorMissingPrerequisite, "%s requires %s", "FixMainParameters", "CreateFunctionParameters")
}

func TestFormatViolation(t *testing.T) {
	reporter := NewErrorReporter("test.ll", "")
	formatted := reporter.FormatViolation(&InvariantViolation{Code: ErrorDuplicateStruct, Message: "struct s_foo registered twice"})

	assert.Contains(t, formatted, "bug[D0002]")
	assert.Contains(t, formatted, "struct s_foo registered twice")
	assert.Contains(t, formatted, GetErrorDescription(ErrorDuplicateStruct))
}

func TestErrorCodeRanges(t *testing.T) {
	assert.True(t, IsInternal(ErrorMissingPrerequisite))
	assert.True(t, IsInternal(ErrorDuplicateVarArg))
	assert.False(t, IsInternal(ErrorMalformedVarArg))
	assert.False(t, IsInternal(ErrorUnsupportedType))
	assert.Equal(t, "Unknown error", GetErrorDescription("D9999"))
}
