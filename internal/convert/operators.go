package convert

import "github.com/jward/avulto/internal/ast"

// These tables map the parser's operator tokens onto the node model. A token
// missing here is a conversion defect and fails with ErrUnknownOperator.

var binaryTokens = map[string]ast.BinaryOperator{
	"+":  ast.OpAdd,
	"-":  ast.OpSub,
	"*":  ast.OpMul,
	"/":  ast.OpDiv,
	"**": ast.OpPow,
	"%":  ast.OpMod,
	"%%": ast.OpFloatMod,
	"==": ast.OpEq,
	"!=": ast.OpNotEq,
	"<>": ast.OpNotEq,
	"<":  ast.OpLess,
	">":  ast.OpGreater,
	"<=": ast.OpLessEq,
	">=": ast.OpGreaterEq,
	"~=": ast.OpEquiv,
	"~!": ast.OpNotEquiv,
	"&":  ast.OpBitAnd,
	"^":  ast.OpBitXor,
	"|":  ast.OpBitOr,
	"<<": ast.OpLShift,
	">>": ast.OpRShift,
	"&&": ast.OpAnd,
	"||": ast.OpOr,
	"in": ast.OpIn,
	"to": ast.OpTo,
}

var assignTokens = map[string]ast.AssignOperator{
	"=":   ast.OpAssign,
	"+=":  ast.OpAssignAdd,
	"-=":  ast.OpAssignSub,
	"*=":  ast.OpAssignMul,
	"/=":  ast.OpAssignDiv,
	"%=":  ast.OpAssignMod,
	"%%=": ast.OpAssignFloatMod,
	":=":  ast.OpAssignInto,
	"&=":  ast.OpAssignBitAnd,
	"&&=": ast.OpAssignAnd,
	"||=": ast.OpAssignOr,
	"|=":  ast.OpAssignBitOr,
	"^=":  ast.OpAssignBitXor,
	"<<=": ast.OpAssignLShift,
	">>=": ast.OpAssignRShift,
}

var unaryTokens = map[string]ast.UnaryOperator{
	"-":   ast.OpNeg,
	"!":   ast.OpNot,
	"~":   ast.OpBitNot,
	"++x": ast.OpPreIncr,
	"x++": ast.OpPostIncr,
	"--x": ast.OpPreDecr,
	"x--": ast.OpPostDecr,
	"&":   ast.OpRef,
	"*":   ast.OpDeref,
}

func binaryOp(token string) (ast.BinaryOperator, error) {
	op, ok := binaryTokens[token]
	if !ok {
		return 0, &OperatorError{Class: "binary", Token: token}
	}
	return op, nil
}

func assignOp(token string) (ast.AssignOperator, error) {
	op, ok := assignTokens[token]
	if !ok {
		return 0, &OperatorError{Class: "assignment", Token: token}
	}
	return op, nil
}

func unaryOp(token string) (ast.UnaryOperator, error) {
	op, ok := unaryTokens[token]
	if !ok {
		return 0, &OperatorError{Class: "unary", Token: token}
	}
	return op, nil
}
