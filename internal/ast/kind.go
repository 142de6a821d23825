package ast

// Kind tags every node variant. Its String form is the suffix of the
// visitor handler name ("visit_" + kind).
type Kind uint8

const (
	KindInvalid Kind = iota
	KindAssignOp
	KindBinaryOp
	KindBreak
	KindCall
	KindConstant
	KindContinue
	KindCrash
	KindDel
	KindDoWhile
	KindDynamicCall
	KindExpression
	KindExternalCall
	KindField
	KindForInfinite
	KindForList
	KindForLoop
	KindForRange
	KindGoto
	KindIdentifier
	KindIf
	KindIfArm
	KindIndex
	KindInput
	KindInterpString
	KindLabel
	KindList
	KindLocate
	KindNewImplicit
	KindNewMiniExpr
	KindNewPrefab
	KindParentCall
	KindPick
	KindPrefab
	KindProcReference
	KindReturn
	KindSelfCall
	KindSetting
	KindSpawn
	KindStaticField
	KindSwitch
	KindSwitchCase
	KindTernaryOp
	KindThrow
	KindTryCatch
	KindUnaryOp
	KindVar
	KindVars
	KindWhile

	kindCount
)

var kindNames = [kindCount]string{
	KindInvalid:       "Invalid",
	KindAssignOp:      "AssignOp",
	KindBinaryOp:      "BinaryOp",
	KindBreak:         "Break",
	KindCall:          "Call",
	KindConstant:      "Constant",
	KindContinue:      "Continue",
	KindCrash:         "Crash",
	KindDel:           "Del",
	KindDoWhile:       "DoWhile",
	KindDynamicCall:   "DynamicCall",
	KindExpression:    "Expression",
	KindExternalCall:  "ExternalCall",
	KindField:         "Field",
	KindForInfinite:   "ForInfinite",
	KindForList:       "ForList",
	KindForLoop:       "ForLoop",
	KindForRange:      "ForRange",
	KindGoto:          "Goto",
	KindIdentifier:    "Identifier",
	KindIf:            "If",
	KindIfArm:         "IfArm",
	KindIndex:         "Index",
	KindInput:         "Input",
	KindInterpString:  "InterpString",
	KindLabel:         "Label",
	KindList:          "List",
	KindLocate:        "Locate",
	KindNewImplicit:   "NewImplicit",
	KindNewMiniExpr:   "NewMiniExpr",
	KindNewPrefab:     "NewPrefab",
	KindParentCall:    "ParentCall",
	KindPick:          "Pick",
	KindPrefab:        "Prefab",
	KindProcReference: "ProcReference",
	KindReturn:        "Return",
	KindSelfCall:      "SelfCall",
	KindSetting:       "Setting",
	KindSpawn:         "Spawn",
	KindStaticField:   "StaticField",
	KindSwitch:        "Switch",
	KindSwitchCase:    "SwitchCase",
	KindTernaryOp:     "TernaryOp",
	KindThrow:         "Throw",
	KindTryCatch:      "TryCatch",
	KindUnaryOp:       "UnaryOp",
	KindVar:           "Var",
	KindVars:          "Vars",
	KindWhile:         "While",
}

var kindsByName = func() map[string]Kind {
	m := make(map[string]Kind, kindCount)
	for k := KindInvalid + 1; k < kindCount; k++ {
		m[kindNames[k]] = k
	}
	return m
}()

func (k Kind) String() string {
	if k >= kindCount {
		return "Invalid"
	}
	return kindNames[k]
}

// Valid reports whether k names a node variant.
func (k Kind) Valid() bool { return k > KindInvalid && k < kindCount }

var exprKinds = [kindCount]bool{
	KindAssignOp: true, KindBinaryOp: true, KindCall: true, KindConstant: true,
	KindDynamicCall: true, KindExternalCall: true, KindField: true, KindIdentifier: true,
	KindIndex: true, KindInput: true, KindInterpString: true, KindList: true,
	KindLocate: true, KindNewImplicit: true, KindNewMiniExpr: true, KindNewPrefab: true,
	KindParentCall: true, KindPick: true, KindPrefab: true, KindProcReference: true,
	KindSelfCall: true, KindStaticField: true, KindTernaryOp: true, KindUnaryOp: true,
}

// IsExpr reports whether k is an expression variant rather than a statement
// or a statement part.
func (k Kind) IsExpr() bool { return k < kindCount && exprKinds[k] }

// ParseKind looks up a kind by its String form.
func ParseKind(name string) (Kind, bool) {
	k, ok := kindsByName[name]
	return k, ok
}

// Kinds lists every valid kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, kindCount-1)
	for k := KindInvalid + 1; k < kindCount; k++ {
		out = append(out, k)
	}
	return out
}
