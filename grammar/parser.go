package grammar

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/tliron/commonlog"

	"cdecomp/internal/errors"
	"cdecomp/internal/ir"
)

var log = commonlog.GetLogger("cdecomp.grammar")

var parser = participle.MustBuild[Module](
	participle.Lexer(IRLexer),
	participle.Elide("Whitespace", "Comment"),
	participle.UseLookahead(4),
)

// Debug info is not translated. Metadata definitions, attachments and debug
// records are blanked out before lexing so positions stay intact.
var (
	metadataLine       = regexp.MustCompile(`(?m)^[ \t]*(![^\n]*|#dbg_[^\n]*|(tail )?call void @llvm\.dbg\.[^\n]*|declare void @llvm\.dbg\.[^\n]*)$`)
	metadataAttachment = regexp.MustCompile(`,?[ \t]*![a-zA-Z_.][-a-zA-Z0-9_.]*[ \t]+!([0-9]+|\{[^}\n]*\})`)
)

// ParseFile reads and loads a textual IR file
func ParseFile(path string) (*ir.Module, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return ParseString(path, string(source))
}

// ParseString loads textual IR. Syntax errors and unknown types are
// returned as D0100 translation errors.
func ParseString(filename, source string) (*ir.Module, error) {
	tree, err := parser.ParseString(filename, stripMetadata(source))
	if err != nil {
		return nil, syntaxError(err)
	}

	m, err := lower(filename, tree)
	if err != nil {
		return nil, err
	}

	log.Debugf("loaded %s: %d structs, %d globals, %d functions",
		filename, len(m.TypeDefs), len(m.Globals), len(m.Funcs))
	return m, nil
}

func stripMetadata(source string) string {
	blank := func(s string) string {
		return strings.Repeat(" ", len(s))
	}
	source = metadataLine.ReplaceAllStringFunc(source, blank)
	return metadataAttachment.ReplaceAllStringFunc(source, blank)
}

func syntaxError(err error) error {
	pe, ok := err.(participle.Error)
	if !ok {
		return errors.NewTranslationError(errors.ErrorParse, err.Error()).Build()
	}
	return errors.NewTranslationError(errors.ErrorParse, pe.Message()).
		At(position(pe.Position())).
		WithHelp("the loader reads the IR clang emits for C, e.g. clang -S -emit-llvm -O0").
		Build()
}

func position(pos lexer.Position) ir.Position {
	return ir.Position{Filename: pos.Filename, Line: pos.Line, Column: pos.Column}
}
