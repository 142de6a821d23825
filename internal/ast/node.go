// Package ast is the node model the walker and the host see: a closed set
// of statement and expression variants stored in an arena.
//
// A Tree owns every node. Nodes refer to their children by ID, never by
// pointer, so the tree has no cycles and ownership is explicit. The one
// deliberate alias is the for-each binding: ForList.Name and the Name of
// its synthesized Binding Var are the same Identifier ID.
package ast

import "github.com/jward/avulto/internal/path"

// ID addresses a node in its Tree.
type ID int32

// NoID marks an absent optional child.
const NoID ID = -1

// FileID identifies a source file within one loaded program.
type FileID uint16

// Location is the compact (file, line, column) record the parser attached
// to a node.
type Location struct {
	File   FileID
	Line   uint32
	Column uint16
}

// Node is implemented by every variant.
type Node interface {
	Kind() Kind
	// Location is nil for nodes the grammar does not attribute, and for
	// nodes synthesized during conversion.
	Location() *Location
}

// Pos carries a node's optional location. Every variant embeds it.
type Pos struct {
	Loc *Location
}

func (p Pos) Location() *Location { return p.Loc }

// Statements.
type (
	// ExprStmt is an expression used as a statement.
	ExprStmt struct {
		Pos
		Expr ID
	}

	Return struct {
		Pos
		Value ID
	}

	Throw struct {
		Pos
		Expr ID
	}

	Del struct {
		Pos
		Expr ID
	}

	Crash struct {
		Pos
		Expr ID
	}

	// Break, Continue and Goto carry their label as an Identifier.
	Break struct {
		Pos
		Label ID
	}

	Continue struct {
		Pos
		Label ID
	}

	Goto struct {
		Pos
		Label ID
	}

	Label struct {
		Pos
		Name  ID
		Block []ID
	}

	While struct {
		Pos
		Cond  ID
		Block []ID
	}

	DoWhile struct {
		Pos
		Block []ID
		Cond  ID
	}

	// If holds its arms as IfArm nodes. Else is nil when no else was written.
	If struct {
		Pos
		Arms []ID
		Else []ID
	}

	IfArm struct {
		Pos
		Cond  ID
		Block []ID
	}

	ForInfinite struct {
		Pos
		Block []ID
	}

	ForLoop struct {
		Pos
		Init  ID
		Test  ID
		Inc   ID
		Block []ID
	}

	// ForList is "for (var/T name in list)". Binding is the unattributed Var
	// the loop implicitly declares.
	ForList struct {
		Pos
		Name    ID
		VarType path.Path
		Binding ID
		InList  ID
		Block   []ID
	}

	ForRange struct {
		Pos
		Name  ID
		Start ID
		End   ID
		Step  ID
		Block []ID
	}

	// Var is a local declaration. DeclaredType is the zero Path when the
	// declaration is untyped.
	Var struct {
		Pos
		Name         ID
		DeclaredType path.Path
		Value        ID
	}

	Vars struct {
		Pos
		Vars []ID
	}

	Setting struct {
		Pos
		Name  ID
		Mode  SettingMode
		Value ID
	}

	Spawn struct {
		Pos
		Delay ID
		Block []ID
	}

	Switch struct {
		Pos
		Input   ID
		Cases   []ID
		Default []ID
	}

	SwitchCase struct {
		Pos
		Exact  []ID
		Ranges []CaseRange
		Block  []ID
	}

	// TryCatch keeps each catch parameter as its run of Identifier segments.
	TryCatch struct {
		Pos
		Try         []ID
		CatchParams [][]ID
		Catch       []ID
	}
)

// CaseRange is one "start to end" matcher of a SwitchCase.
type CaseRange struct {
	Start ID
	End   ID
}

// Expressions.
type (
	Const struct {
		Pos
		Value Constant
	}

	Identifier struct {
		Pos
		Name string
	}

	// List keeps keys and values parallel. Vals[i] is NoID for an entry
	// written without "= value".
	List struct {
		Pos
		Keys []ID
		Vals []ID
	}

	BinaryOp struct {
		Pos
		Op  BinaryOperator
		LHS ID
		RHS ID
	}

	AssignOp struct {
		Pos
		Op  AssignOperator
		LHS ID
		RHS ID
	}

	TernaryOp struct {
		Pos
		Cond ID
		If   ID
		Else ID
	}

	// InterpString is "a[b]c". First and every Str are string Consts.
	InterpString struct {
		Pos
		First ID
		Parts []InterpPart
	}

	Locate struct {
		Pos
		Args   []ID
		InList ID
	}

	Prefab struct {
		Pos
		Path path.Path
		Vars []PrefabVar
	}

	Index struct {
		Pos
		Expr  ID
		Index ID
	}

	// Field is "expr.field". Expr is NoID for a receiverless field.
	Field struct {
		Pos
		Expr  ID
		Field ID
	}

	StaticField struct {
		Pos
		Expr  ID
		Field ID
	}

	// Call is a named call. Expr is NoID for a bare "name(args)".
	Call struct {
		Pos
		Expr ID
		Name ID
		Args []ID
	}

	SelfCall struct {
		Pos
		Args []ID
	}

	ParentCall struct {
		Pos
		Args []ID
	}

	UnaryOp struct {
		Pos
		Op   UnaryOperator
		Expr ID
	}

	ProcReference struct {
		Pos
		Expr ID
		Name ID
	}

	ExternalCall struct {
		Pos
		Library  ID
		Function ID
		Args     []ID
	}

	// NewMiniExpr is "new name.field(args)". Fields are Field nodes.
	NewMiniExpr struct {
		Pos
		Name    ID
		Fields  []ID
		Args    []ID
		HasArgs bool
	}

	NewImplicit struct {
		Pos
		Args    []ID
		HasArgs bool
	}

	NewPrefab struct {
		Pos
		Prefab  ID
		Args    []ID
		HasArgs bool
	}

	DynamicCall struct {
		Pos
		Lib  []ID
		Proc []ID
	}

	Input struct {
		Pos
		Args      []ID
		InputType *uint32
		InList    ID
	}

	Pick struct {
		Pos
		Items []PickItem
	}
)

// InterpPart is an embedded expression (NoID for "[]") and the string Const
// that follows it.
type InterpPart struct {
	Expr ID
	Str  ID
}

// PrefabVar is one "name = value" override.
type PrefabVar struct {
	Name  string
	Value ID
}

// PickItem is one choice of pick(). Weight is NoID when unweighted.
type PickItem struct {
	Weight ID
	Value  ID
}

func (*ExprStmt) Kind() Kind      { return KindExpression }
func (*Return) Kind() Kind        { return KindReturn }
func (*Throw) Kind() Kind         { return KindThrow }
func (*Del) Kind() Kind           { return KindDel }
func (*Crash) Kind() Kind         { return KindCrash }
func (*Break) Kind() Kind         { return KindBreak }
func (*Continue) Kind() Kind      { return KindContinue }
func (*Goto) Kind() Kind          { return KindGoto }
func (*Label) Kind() Kind         { return KindLabel }
func (*While) Kind() Kind         { return KindWhile }
func (*DoWhile) Kind() Kind       { return KindDoWhile }
func (*If) Kind() Kind            { return KindIf }
func (*IfArm) Kind() Kind         { return KindIfArm }
func (*ForInfinite) Kind() Kind   { return KindForInfinite }
func (*ForLoop) Kind() Kind       { return KindForLoop }
func (*ForList) Kind() Kind       { return KindForList }
func (*ForRange) Kind() Kind      { return KindForRange }
func (*Var) Kind() Kind           { return KindVar }
func (*Vars) Kind() Kind          { return KindVars }
func (*Setting) Kind() Kind       { return KindSetting }
func (*Spawn) Kind() Kind         { return KindSpawn }
func (*Switch) Kind() Kind        { return KindSwitch }
func (*SwitchCase) Kind() Kind    { return KindSwitchCase }
func (*TryCatch) Kind() Kind      { return KindTryCatch }
func (*Const) Kind() Kind         { return KindConstant }
func (*Identifier) Kind() Kind    { return KindIdentifier }
func (*List) Kind() Kind          { return KindList }
func (*BinaryOp) Kind() Kind      { return KindBinaryOp }
func (*AssignOp) Kind() Kind      { return KindAssignOp }
func (*TernaryOp) Kind() Kind     { return KindTernaryOp }
func (*InterpString) Kind() Kind  { return KindInterpString }
func (*Locate) Kind() Kind        { return KindLocate }
func (*Prefab) Kind() Kind        { return KindPrefab }
func (*Index) Kind() Kind         { return KindIndex }
func (*Field) Kind() Kind         { return KindField }
func (*StaticField) Kind() Kind   { return KindStaticField }
func (*Call) Kind() Kind          { return KindCall }
func (*SelfCall) Kind() Kind      { return KindSelfCall }
func (*ParentCall) Kind() Kind    { return KindParentCall }
func (*UnaryOp) Kind() Kind       { return KindUnaryOp }
func (*ProcReference) Kind() Kind { return KindProcReference }
func (*ExternalCall) Kind() Kind  { return KindExternalCall }
func (*NewMiniExpr) Kind() Kind   { return KindNewMiniExpr }
func (*NewImplicit) Kind() Kind   { return KindNewImplicit }
func (*NewPrefab) Kind() Kind     { return KindNewPrefab }
func (*DynamicCall) Kind() Kind   { return KindDynamicCall }
func (*Input) Kind() Kind         { return KindInput }
func (*Pick) Kind() Kind          { return KindPick }
