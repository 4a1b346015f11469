package grammar

import "github.com/alecthomas/participle/v2/lexer"

// IRLexer tokenizes the textual LLVM IR subset that clang emits for C
var IRLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"Comment", `;[^\n]*`, nil},
		{"String", `c?"[^"]*"`, nil},
		{"GlobalIdent", `@("[^"]*"|[-a-zA-Z$._0-9]+)`, nil},
		{"LocalIdent", `%("[^"]*"|[-a-zA-Z$._0-9]+)`, nil},
		{"AttrRef", `#[0-9]+`, nil},
		{"Label", `[-a-zA-Z$._0-9]+:`, nil},
		{"Float", `0x[KLMHR]?[0-9A-Fa-f]+|[-+]?[0-9]+\.[0-9]*([eE][-+]?[0-9]+)?`, nil},
		{"Int", `[-+]?[0-9]+`, nil},
		{"Ident", `[a-zA-Z_][a-zA-Z0-9_.]*`, nil},
		{"Ellipsis", `\.\.\.`, nil},
		{"Punct", `[=,*(){}\[\]<>]`, nil},
		{"Whitespace", `[ \t\r\n]+`, nil},
	},
})
