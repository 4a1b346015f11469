package errors

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// ErrorReporter handles consistent error formatting against the IR text
type ErrorReporter struct {
	filename string
	source   string
	lines    []string
}

// NewErrorReporter creates a new error reporter for an IR file.
// source may be empty when the module did not come from text.
func NewErrorReporter(filename, source string) *ErrorReporter {
	return &ErrorReporter{
		filename: filename,
		source:   source,
		lines:    strings.Split(source, "\n"),
	}
}

// FormatError formats a translation error with the offending IR line
func (er *ErrorReporter) FormatError(err *TranslationError) string {
	var result strings.Builder

	levelColor := er.getLevelColor(err.Level)
	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	// Header: error[D0103]: message
	result.WriteString(fmt.Sprintf("%s[%s]: %s\n",
		levelColor(string(err.Level)), err.Code, err.Message))

	line := err.Pos.Line
	lineNumberWidth := er.getLineNumberWidth(line)
	indent := strings.Repeat(" ", lineNumberWidth)

	if err.Pos.IsValid() {
		filename := err.Pos.Filename
		if filename == "" {
			filename = er.filename
		}
		result.WriteString(fmt.Sprintf("%s %s %s:%d:%d\n",
			indent, dim("-->"), filename, line, err.Pos.Column))
	}

	if err.Pass != "" || err.Element != "" {
		result.WriteString(fmt.Sprintf("%s %s %s\n", indent, dim("│"), er.describeOrigin(err)))
	}

	// Main error line with marker
	if line > 0 && line <= len(er.lines) && er.source != "" {
		result.WriteString(fmt.Sprintf("%s %s\n", indent, dim("│")))
		result.WriteString(fmt.Sprintf("%s %s %s\n",
			bold(fmt.Sprintf("%*d", lineNumberWidth, line)),
			dim("│"),
			er.lines[line-1]))

		marker := er.createMarker(err.Pos.Column, er.tokenLength(line, err.Pos.Column), err.Level)
		result.WriteString(fmt.Sprintf("%s %s %s\n", indent, dim("│"), marker))
	}

	for _, note := range err.Notes {
		noteColor := color.New(color.FgBlue).SprintFunc()
		result.WriteString(fmt.Sprintf("%s %s %s %s\n",
			indent, dim("│"), noteColor("note:"), note))
	}

	if err.HelpText != "" {
		helpColor := color.New(color.FgGreen).SprintFunc()
		result.WriteString(fmt.Sprintf("%s %s %s %s\n",
			indent, dim("│"), helpColor("help:"), err.HelpText))
	}

	result.WriteString("\n")
	return result.String()
}

// FormatViolation formats an internal invariant violation
func (er *ErrorReporter) FormatViolation(v *InvariantViolation) string {
	levelColor := er.getLevelColor(Error)
	return fmt.Sprintf("%s[%s]: internal error: %s\n  %s %s\n\n",
		levelColor("bug"), v.Code, v.Message,
		color.New(color.FgBlue).Sprint("note:"), GetErrorDescription(v.Code))
}

func (er *ErrorReporter) describeOrigin(err *TranslationError) string {
	switch {
	case err.Pass != "" && err.Element != "":
		return fmt.Sprintf("while running %s on %s", err.Pass, err.Element)
	case err.Pass != "":
		return "while running " + err.Pass
	default:
		return "in " + err.Element
	}
}

// getLevelColor returns the appropriate color function for an error level
func (er *ErrorReporter) getLevelColor(level ErrorLevel) func(...interface{}) string {
	switch level {
	case Warning:
		return color.New(color.FgYellow, color.Bold).SprintFunc()
	case Note:
		return color.New(color.FgBlue, color.Bold).SprintFunc()
	default:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	}
}

// createMarker creates the underline marker for errors
func (er *ErrorReporter) createMarker(column, length int, level ErrorLevel) string {
	if length <= 0 {
		length = 1
	}

	spaces := strings.Repeat(" ", max(0, column-1))
	markerColor := er.getLevelColor(level)

	return spaces + markerColor(strings.Repeat("^", length))
}

// tokenLength measures the IR token starting at column so the marker covers it
func (er *ErrorReporter) tokenLength(line, column int) int {
	text := er.lines[line-1]
	if column < 1 || column > len(text) {
		return 1
	}
	n := 0
	for _, r := range text[column-1:] {
		if r == ' ' || r == '\t' || r == ',' || r == '(' {
			break
		}
		n++
	}
	return n
}

// getLineNumberWidth calculates the width needed for line numbers
func (er *ErrorReporter) getLineNumberWidth(line int) int {
	width := len(fmt.Sprintf("%d", line))
	if width < 3 {
		width = 3 // minimum width for visual alignment
	}
	return width
}
