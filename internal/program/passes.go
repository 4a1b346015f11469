package program

// PassType identifies one step of the decompilation pipeline
type PassType int

const (
	ParseStructDeclarations PassType = iota
	ParseStructItems
	ParseGlobalVariables
	CreateFunctionParameters
	FixMainParameters
	CreateAllocas
	ParseInstructions
)

var passNames = [...]string{
	ParseStructDeclarations:  "ParseStructDeclarations",
	ParseStructItems:         "ParseStructItems",
	ParseGlobalVariables:     "ParseGlobalVariables",
	CreateFunctionParameters: "CreateFunctionParameters",
	FixMainParameters:        "FixMainParameters",
	CreateAllocas:            "CreateAllocas",
	ParseInstructions:        "ParseInstructions",
}

func (p PassType) String() string {
	if p < 0 || int(p) >= len(passNames) {
		return "UnknownPass"
	}
	return passNames[p]
}

// ParsePassType looks a pass up by its name
func ParsePassType(name string) (PassType, bool) {
	for i, n := range passNames {
		if n == name {
			return PassType(i), true
		}
	}
	return 0, false
}
