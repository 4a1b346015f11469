package grammar

import "github.com/alecthomas/participle/v2/lexer"

// Module is the parse tree of one .ll file
type Module struct {
	Pos      lexer.Position
	Entities []*Entity `@@*`
}

type Entity struct {
	Pos        lexer.Position
	Source     *string     `  "source_filename" "=" @String`
	Target     *Target     `| @@`
	TypeDef    *TypeDef    `| @@`
	Global     *Global     `| @@`
	Declare    *FuncHeader `| "declare" @@`
	Define     *FuncDef    `| @@`
	Attributes *AttrGroup  `| @@`
}

type Target struct {
	Kind  string `"target" @("datalayout" | "triple")`
	Value string `"=" @String`
}

type TypeDef struct {
	Pos    lexer.Position
	Name   string      `@LocalIdent "=" "type"`
	Opaque bool        `( @"opaque"`
	Body   *StructBody `| @@ )`
}

type Global struct {
	Pos     lexer.Position
	Name    string        `@GlobalIdent "="`
	Linkage []string      `{ @("private" | "internal" | "external" | "available_externally" | "linkonce" | "linkonce_odr" | "weak" | "weak_odr" | "common" | "appending" | "extern_weak" | "dso_local" | "dso_preemptable" | "hidden" | "protected" | "default" | "dllimport" | "dllexport" | "unnamed_addr" | "local_unnamed_addr" | "thread_local" | "externally_initialized") }`
	Kind    string        `@("global" | "constant")`
	Type    *Type         `@@`
	Init    *Constant     `[ @@ ]`
	Attrs   []*GlobalAttr `{ "," @@ }`
}

type GlobalAttr struct {
	Align   *string `  "align" @Int`
	Section *string `| "section" @String`
	Comdat  bool    `| @"comdat"`
}

type AttrGroup struct {
	Ref  string   `"attributes" @AttrRef "="`
	Body []string `"{" { @!"}" } "}"`
}

// Types

type Type struct {
	Pos    lexer.Position
	Name   *string       `(  @Ident`
	Named  *string       `| @LocalIdent`
	Array  *ArrayType    `| @@`
	Vector *VectorType   `| @@`
	Struct *StructBody   `| @@ )`
	Suffix []*TypeSuffix `{ @@ }`
}

type ArrayType struct {
	Len  string `"[" @Int "x"`
	Elem *Type  `@@ "]"`
}

type VectorType struct {
	Len  string `"<" @Int "x"`
	Elem *Type  `@@ ">"`
}

type StructBody struct {
	Packed bool    `[ @"<" ] "{"`
	Fields []*Type `[ @@ { "," @@ } ] "}" [ ">" ]`
}

// TypeSuffix turns the type before it into a pointer or a function type
type TypeSuffix struct {
	Pointer bool       `  @"*"`
	Func    *FuncTypes `| @@`
}

type FuncTypes struct {
	Params []*FuncTypeParam `"(" [ @@ { "," @@ } ] ")"`
}

type FuncTypeParam struct {
	Variadic bool  `  @"..."`
	Type     *Type `| @@`
}

// Values

type Constant struct {
	Pos     lexer.Position
	Float   *string      `  @Float`
	Int     *string      `| @Int`
	Str     *string      `| @String`
	Keyword *string      `| @("null" | "true" | "false" | "undef" | "poison" | "zeroinitializer")`
	Global  *string      `| @GlobalIdent`
	Array   *ConstArray  `| @@`
	Struct  *ConstStruct `| @@`
}

type ConstArray struct {
	Elems []*TypedConstant `"[" [ @@ { "," @@ } ] "]"`
}

type ConstStruct struct {
	Packed bool             `[ @"<" ] "{"`
	Elems  []*TypedConstant `[ @@ { "," @@ } ] "}" [ ">" ]`
}

type TypedConstant struct {
	Type  *Type     `@@`
	Value *Constant `@@`
}

type Value struct {
	Pos   lexer.Position
	Local *string   `  @LocalIdent`
	Const *Constant `| @@`
}

type TypedValue struct {
	Type  *Type  `@@`
	Value *Value `@@`
}

// Functions

type FuncHeader struct {
	Pos     lexer.Position
	Prefix  []string     `{ @("private" | "internal" | "external" | "available_externally" | "linkonce" | "linkonce_odr" | "weak" | "weak_odr" | "extern_weak" | "dso_local" | "dso_preemptable" | "hidden" | "protected" | "default" | "dllimport" | "dllexport" | "ccc" | "fastcc" | "coldcc" | "noundef" | "signext" | "zeroext" | "noalias" | "nonnull" | "inreg") }`
	RetType *Type        `@@`
	Name    string       `@GlobalIdent`
	Params  []*FuncParam `"(" [ @@ { "," @@ } ] ")"`
	Attrs   []*FuncAttr  `{ @@ }`
}

type FuncParam struct {
	Variadic bool       `  @"..."`
	Decl     *ParamDecl `| @@`
}

type ParamDecl struct {
	Type  *Type        `@@`
	Attrs []*ParamAttr `{ @@ }`
	Name  *string      `[ @LocalIdent ]`
}

type ParamAttr struct {
	Flag  *string   `  @("noundef" | "signext" | "zeroext" | "nonnull" | "noalias" | "nocapture" | "readonly" | "writeonly" | "readnone" | "returned" | "inreg" | "immarg" | "nofree" | "nest")`
	Typed *TypeAttr `| @@`
	Sized *IntAttr  `| @@`
}

type TypeAttr struct {
	Name string `@("byval" | "sret" | "byref" | "inalloca" | "preallocated" | "elementtype")`
	Type *Type  `"(" @@ ")"`
}

type IntAttr struct {
	Name  string `@("align" | "dereferenceable" | "dereferenceable_or_null")`
	Value string `( "(" @Int ")" | @Int )`
}

type FuncAttr struct {
	Ref     *string `  @AttrRef`
	Flag    *string `| @("unnamed_addr" | "local_unnamed_addr" | "nounwind" | "noinline" | "optnone" | "uwtable" | "readnone" | "readonly" | "willreturn" | "nofree" | "nosync" | "noreturn" | "cold" | "mustprogress" | "norecurse" | "alwaysinline")`
	Align   *string `| "align" @Int`
	Section *string `| "section" @String`
}

type FuncDef struct {
	Header *FuncHeader `"define" @@`
	Blocks []*BlockDef `"{" @@* "}"`
}

type BlockDef struct {
	Pos   lexer.Position
	Label *string        `[ @Label ]`
	Insts []*Instruction `@@+`
}

// Instructions

type Instruction struct {
	Pos          lexer.Position
	Result       *string       `[ @LocalIdent "=" ]`
	Alloca       *Alloca       `( @@`
	Load         *Load         `| @@`
	Store        *Store        `| @@`
	Ret          *Ret          `| @@`
	Br           *Br           `| @@`
	Switch       *Switch       `| @@`
	Select       *Select       `| @@`
	Call         *Call         `| @@`
	GEP          *GEP          `| @@`
	ExtractValue *ExtractValue `| @@`
	Binary       *Binary       `| @@`
	Compare      *Compare      `| @@`
	Cast         *Cast         `| @@`
	Phi          *Phi          `| @@`
	Unary        *Unary        `| @@`
	VaArg        *VaArg        `| @@`
	InsertValue  *InsertValue  `| @@`
	Unreachable  bool          `| @"unreachable" )`
}

type Alloca struct {
	Type    *Type        `"alloca" @@`
	Options []*AllocaOpt `{ "," @@ }`
}

type AllocaOpt struct {
	Align *string     `  "align" @Int`
	Count *TypedValue `| @@`
}

type Load struct {
	Volatile bool        `"load" [ @"volatile" ]`
	Type     *Type       `@@ ","`
	Src      *TypedValue `@@`
	Align    *string     `[ "," "align" @Int ]`
}

type Store struct {
	Volatile bool        `"store" [ @"volatile" ]`
	Value    *TypedValue `@@ ","`
	Dst      *TypedValue `@@`
	Align    *string     `[ "," "align" @Int ]`
}

type Ret struct {
	Void  bool        `"ret" ( @"void"`
	Value *TypedValue `| @@ )`
}

type Br struct {
	Target *string     `"br" ( "label" @LocalIdent`
	Cond   *CondBranch `| @@ )`
}

type CondBranch struct {
	Cond  *TypedValue `@@ ","`
	True  string      `"label" @LocalIdent ","`
	False string      `"label" @LocalIdent`
}

type Switch struct {
	Cond    *TypedValue   `"switch" @@ ","`
	Default string        `"label" @LocalIdent`
	Cases   []*SwitchCase `"[" @@* "]"`
}

type SwitchCase struct {
	Value  *TypedValue `@@ ","`
	Target string      `"label" @LocalIdent`
}

type Select struct {
	Flags []string    `"select" { @("nnan" | "ninf" | "nsz" | "arcp" | "contract" | "afn" | "reassoc" | "fast") }`
	Cond  *TypedValue `@@ ","`
	True  *TypedValue `@@ ","`
	False *TypedValue `@@`
}

type Call struct {
	Tail   *string     `[ @("tail" | "musttail" | "notail") ] "call"`
	Flags  []string    `{ @("nnan" | "ninf" | "nsz" | "arcp" | "contract" | "afn" | "reassoc" | "fast" | "ccc" | "fastcc" | "coldcc" | "noundef" | "signext" | "zeroext" | "noalias" | "nonnull" | "inreg") }`
	Type   *Type       `@@`
	Asm    *InlineAsm  `( @@`
	Callee *Value      `| @@ )`
	Args   []*CallArg  `"(" [ @@ { "," @@ } ] ")"`
	Attrs  []*FuncAttr `{ @@ }`
}

type InlineAsm struct {
	SideEffect  bool   `"asm" [ @"sideeffect" ] [ "alignstack" ] [ "inteldialect" ] [ "unwind" ]`
	Text        string `@String ","`
	Constraints string `@String`
}

type CallArg struct {
	Type  *Type        `@@`
	Attrs []*ParamAttr `{ @@ }`
	Value *Value       `@@`
}

type GEP struct {
	Flags   []string      `"getelementptr" { @("inbounds" | "nuw" | "nusw") }`
	Type    *Type         `@@ ","`
	Base    *TypedValue   `@@`
	Indices []*TypedValue `{ "," @@ }`
}

type ExtractValue struct {
	Agg     *TypedValue `"extractvalue" @@`
	Indices []string    `{ "," @Int }`
}

type Binary struct {
	Op    string   `@("add" | "sub" | "mul" | "udiv" | "sdiv" | "urem" | "srem" | "shl" | "lshr" | "ashr" | "and" | "or" | "xor" | "fadd" | "fsub" | "fmul" | "fdiv" | "frem")`
	Flags []string `{ @("nuw" | "nsw" | "exact" | "disjoint" | "nnan" | "ninf" | "nsz" | "arcp" | "contract" | "afn" | "reassoc" | "fast") }`
	Type  *Type    `@@`
	X     *Value   `@@ ","`
	Y     *Value   `@@`
}

type Compare struct {
	Kind  string   `@("icmp" | "fcmp")`
	Flags []string `{ @("samesign" | "nnan" | "ninf" | "nsz" | "arcp" | "contract" | "afn" | "reassoc" | "fast") }`
	Pred  string   `@("eq" | "ne" | "ugt" | "uge" | "ult" | "ule" | "sgt" | "sge" | "slt" | "sle" | "oeq" | "ogt" | "oge" | "olt" | "ole" | "one" | "ord" | "ueq" | "une" | "uno" | "true" | "false")`
	Type  *Type    `@@`
	X     *Value   `@@ ","`
	Y     *Value   `@@`
}

type Cast struct {
	Op    string      `@("trunc" | "zext" | "sext" | "fptrunc" | "fpext" | "fptoui" | "fptosi" | "uitofp" | "sitofp" | "ptrtoint" | "inttoptr" | "bitcast" | "addrspacecast")`
	Flags []string    `{ @("nneg" | "nuw" | "nsw") }`
	From  *TypedValue `@@ "to"`
	To    *Type       `@@`
}

// Phi and the instructions below parse, but have no C rendering

type Phi struct {
	Flags    []string       `"phi" { @("nnan" | "ninf" | "nsz" | "arcp" | "contract" | "afn" | "reassoc" | "fast") }`
	Type     *Type          `@@`
	Incoming []*PhiIncoming `@@ { "," @@ }`
}

type PhiIncoming struct {
	Value *Value `"[" @@ ","`
	Block string `@LocalIdent "]"`
}

type Unary struct {
	Op    string      `@("fneg" | "freeze")`
	Flags []string    `{ @("nnan" | "ninf" | "nsz" | "arcp" | "contract" | "afn" | "reassoc" | "fast") }`
	Value *TypedValue `@@`
}

type VaArg struct {
	List *TypedValue `"va_arg" @@ ","`
	Type *Type       `@@`
}

type InsertValue struct {
	Agg     *TypedValue `"insertvalue" @@ ","`
	Elem    *TypedValue `@@`
	Indices []string    `{ "," @Int }`
}
