package ast

type NodeType int

const (
	ILLEGAL NodeType = iota

	// Aggregate access
	STRUCT_ELEMENT
	ARRAY_ELEMENT
	EXTRACT_VALUE_EXPR
	GEP_EXPR
	POINTER_SHIFT

	// Values
	VALUE
	GLOBAL_VALUE
	STACK_ALLOC

	// Control flow
	IF_EXPR
	SWITCH_EXPR
	RET_EXPR

	// Expressions
	ASM_EXPR
	CALL_EXPR
	SELECT_EXPR
	BINARY_EXPR
	CMP_EXPR
	CAST_EXPR
	DEREF_EXPR
	REF_EXPR
	ASSIGN_EXPR
)

var nodeTypeNames = [...]string{
	ILLEGAL:            "ILLEGAL",
	STRUCT_ELEMENT:     "STRUCT_ELEMENT",
	ARRAY_ELEMENT:      "ARRAY_ELEMENT",
	EXTRACT_VALUE_EXPR: "EXTRACT_VALUE_EXPR",
	GEP_EXPR:           "GEP_EXPR",
	POINTER_SHIFT:      "POINTER_SHIFT",
	VALUE:              "VALUE",
	GLOBAL_VALUE:       "GLOBAL_VALUE",
	STACK_ALLOC:        "STACK_ALLOC",
	IF_EXPR:            "IF_EXPR",
	SWITCH_EXPR:        "SWITCH_EXPR",
	RET_EXPR:           "RET_EXPR",
	ASM_EXPR:           "ASM_EXPR",
	CALL_EXPR:          "CALL_EXPR",
	SELECT_EXPR:        "SELECT_EXPR",
	BINARY_EXPR:        "BINARY_EXPR",
	CMP_EXPR:           "CMP_EXPR",
	CAST_EXPR:          "CAST_EXPR",
	DEREF_EXPR:         "DEREF_EXPR",
	REF_EXPR:           "REF_EXPR",
	ASSIGN_EXPR:        "ASSIGN_EXPR",
}

func (t NodeType) String() string {
	if t < 0 || int(t) >= len(nodeTypeNames) {
		return "ILLEGAL"
	}
	return nodeTypeNames[t]
}
