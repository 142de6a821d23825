package ast

// BinaryOperator is the operator of a BinaryOp node.
type BinaryOperator uint8

const (
	OpAdd BinaryOperator = iota
	OpSub
	OpMul
	OpDiv
	OpPow
	OpMod
	OpFloatMod
	OpEq
	OpNotEq
	OpLess
	OpGreater
	OpLessEq
	OpGreaterEq
	OpEquiv
	OpNotEquiv
	OpBitAnd
	OpBitXor
	OpBitOr
	OpLShift
	OpRShift
	OpAnd
	OpOr
	OpIn
	OpTo
)

type opInfo struct {
	name  string
	token string
}

var binaryOps = [...]opInfo{
	OpAdd:       {"Add", "+"},
	OpSub:       {"Sub", "-"},
	OpMul:       {"Mul", "*"},
	OpDiv:       {"Div", "/"},
	OpPow:       {"Pow", "**"},
	OpMod:       {"Mod", "%"},
	OpFloatMod:  {"FloatMod", "%%"},
	OpEq:        {"Eq", "=="},
	OpNotEq:     {"NotEq", "!="},
	OpLess:      {"Less", "<"},
	OpGreater:   {"Greater", ">"},
	OpLessEq:    {"LessEq", "<="},
	OpGreaterEq: {"GreaterEq", ">="},
	OpEquiv:     {"Equiv", "~="},
	OpNotEquiv:  {"NotEquiv", "~!"},
	OpBitAnd:    {"BitAnd", "&"},
	OpBitXor:    {"BitXor", "^"},
	OpBitOr:     {"BitOr", "|"},
	OpLShift:    {"LShift", "<<"},
	OpRShift:    {"RShift", ">>"},
	OpAnd:       {"And", "&&"},
	OpOr:        {"Or", "||"},
	OpIn:        {"In", "in"},
	OpTo:        {"To", "to"},
}

func (o BinaryOperator) String() string {
	if int(o) < len(binaryOps) {
		return binaryOps[o].name
	}
	return "BinaryOperator(?)"
}

// Token is the DM spelling of the operator.
func (o BinaryOperator) Token() string {
	if int(o) < len(binaryOps) {
		return binaryOps[o].token
	}
	return "?"
}

// AssignOperator is the operator of an AssignOp node.
type AssignOperator uint8

const (
	OpAssign AssignOperator = iota
	OpAssignAdd
	OpAssignSub
	OpAssignMul
	OpAssignDiv
	OpAssignMod
	OpAssignFloatMod
	OpAssignInto
	OpAssignBitAnd
	OpAssignAnd
	OpAssignOr
	OpAssignBitOr
	OpAssignBitXor
	OpAssignLShift
	OpAssignRShift
)

var assignOps = [...]opInfo{
	OpAssign:         {"Assign", "="},
	OpAssignAdd:      {"AssignAdd", "+="},
	OpAssignSub:      {"AssignSub", "-="},
	OpAssignMul:      {"AssignMul", "*="},
	OpAssignDiv:      {"AssignDiv", "/="},
	OpAssignMod:      {"AssignMod", "%="},
	OpAssignFloatMod: {"AssignFloatMod", "%%="},
	OpAssignInto:     {"AssignInto", ":="},
	OpAssignBitAnd:   {"AssignBitAnd", "&="},
	OpAssignAnd:      {"AssignAnd", "&&="},
	OpAssignOr:       {"AssignOr", "||="},
	OpAssignBitOr:    {"AssignBitOr", "|="},
	OpAssignBitXor:   {"AssignBitXor", "^="},
	OpAssignLShift:   {"AssignLShift", "<<="},
	OpAssignRShift:   {"AssignRShift", ">>="},
}

func (o AssignOperator) String() string {
	if int(o) < len(assignOps) {
		return assignOps[o].name
	}
	return "AssignOperator(?)"
}

// Token is the DM spelling of the operator.
func (o AssignOperator) Token() string {
	if int(o) < len(assignOps) {
		return assignOps[o].token
	}
	return "?"
}

// UnaryOperator is the operator of a UnaryOp node. Increment and decrement
// tokens mark the operand position with "x".
type UnaryOperator uint8

const (
	OpNeg UnaryOperator = iota
	OpNot
	OpBitNot
	OpPreIncr
	OpPostIncr
	OpPreDecr
	OpPostDecr
	OpRef
	OpDeref
)

var unaryOps = [...]opInfo{
	OpNeg:      {"Neg", "-"},
	OpNot:      {"Not", "!"},
	OpBitNot:   {"BitNot", "~"},
	OpPreIncr:  {"PreIncr", "++x"},
	OpPostIncr: {"PostIncr", "x++"},
	OpPreDecr:  {"PreDecr", "--x"},
	OpPostDecr: {"PostDecr", "x--"},
	OpRef:      {"Ref", "&"},
	OpDeref:    {"Deref", "*"},
}

func (o UnaryOperator) String() string {
	if int(o) < len(unaryOps) {
		return unaryOps[o].name
	}
	return "UnaryOperator(?)"
}

// Token is the DM spelling of the operator.
func (o UnaryOperator) Token() string {
	if int(o) < len(unaryOps) {
		return unaryOps[o].token
	}
	return "?"
}

// SettingMode distinguishes "set name = value" from "set name in value".
type SettingMode uint8

const (
	SettingAssign SettingMode = iota
	SettingIn
)

func (m SettingMode) String() string {
	if m == SettingIn {
		return "In"
	}
	return "Assign"
}

// Token is the DM spelling of the mode.
func (m SettingMode) Token() string {
	if m == SettingIn {
		return "in"
	}
	return "="
}
