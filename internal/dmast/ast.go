// Package dmast holds the foreign DM syntax tree and object tree as they
// arrive from the external parser, together with the decoder for the
// parser's program-dump format.
//
// The shapes here mirror the grammar the parser produces. They are not the
// node model the host walks; see package ast for that.
package dmast

import "strings"

// FileID identifies a source file within one loaded program.
type FileID uint16

// Location is the compact position the parser records for a statement,
// term or follow.
type Location struct {
	File   FileID
	Line   uint32
	Column uint16
}

// IsZero reports whether no location was recorded.
func (l Location) IsZero() bool { return l == Location{} }

// Statement is implemented by every statement shape.
type Statement interface{ statement() }

// Expression is implemented by the four expression shapes.
type Expression interface{ expression() }

// Term is implemented by every base term shape.
type Term interface{ term() }

// Follow is implemented by every postfix suffix shape.
type Follow interface{ follow() }

// Case is implemented by the two switch case matchers.
type Case interface{ switchCase() }

// Spanned is a statement together with where it was written.
type Spanned struct {
	Stmt Statement
	Loc  Location
}

// Block is an ordered statement sequence.
type Block []Spanned

// Statements.
type (
	ExprStmt struct{ Expr Expression }

	Return struct{ Value Expression }

	Throw struct{ Expr Expression }

	While struct {
		Cond  Expression
		Block Block
	}

	DoWhile struct {
		Block   Block
		Cond    Expression
		CondLoc Location
	}

	IfArm struct {
		Cond    Expression
		CondLoc Location
		Block   Block
	}

	If struct {
		Arms []IfArm
		Else Block
	}

	ForInfinite struct{ Block Block }

	ForLoop struct {
		Init  Statement
		Test  Expression
		Inc   Statement
		Block Block
	}

	ForList struct {
		Name    string
		VarType []string
		InList  Expression
		Block   Block
	}

	ForRange struct {
		Name    string
		VarType []string
		Start   Expression
		End     Expression
		Step    Expression
		Block   Block
	}

	Var struct {
		Name    string
		VarType []string
		Value   Expression
	}

	Vars struct{ Vars []Var }

	Setting struct {
		Name  string
		Mode  SettingMode
		Value Expression
	}

	Spawn struct {
		Delay Expression
		Block Block
	}

	SwitchCase struct {
		Cases []Case
		Loc   Location
		Block Block
	}

	Switch struct {
		Input   Expression
		Cases   []SwitchCase
		Default Block
	}

	TryCatch struct {
		Try         Block
		CatchParams [][]string
		Catch       Block
	}

	Continue struct{ Label string }

	Break struct{ Label string }

	Goto struct{ Label string }

	Label struct {
		Name  string
		Block Block
	}

	Del struct{ Expr Expression }

	Crash struct{ Expr Expression }
)

// SettingMode distinguishes "set name = value" from "set name in value".
type SettingMode string

const (
	SettingAssign SettingMode = "="
	SettingIn     SettingMode = "in"
)

// Switch case matchers.
type (
	CaseExact struct{ Expr Expression }

	CaseRange struct{ Start, End Expression }
)

// Expressions.
type (
	// Base is a term followed by zero or more postfix suffixes.
	Base struct {
		Term    Term
		TermLoc Location
		Follow  []SpannedFollow
	}

	BinaryOp struct {
		Op       string
		LHS, RHS Expression
	}

	AssignOp struct {
		Op       string
		LHS, RHS Expression
	}

	TernaryOp struct {
		Cond, If, Else Expression
	}
)

// SpannedFollow is a follow suffix together with where it was written.
type SpannedFollow struct {
	Follow Follow
	Loc    Location
}

// Terms.
type (
	Null struct{}

	Int struct{ Value int32 }

	Float struct{ Value float32 }

	String struct{ Value string }

	Resource struct{ Value string }

	// As is an "as <type>" term.
	As struct{ InputType string }

	// ProcMacro is __PROC__.
	ProcMacro struct{}

	// TypeMacro is __TYPE__.
	TypeMacro struct{}

	// ImpliedTypeMacro is __IMPLIED_TYPE__.
	ImpliedTypeMacro struct{}

	// Paren is a parenthesized expression.
	Paren struct{ Expr Expression }

	PrefabTerm struct{ Prefab Prefab }

	InterpString struct {
		First string
		Parts []InterpPart
	}

	Ident struct{ Name string }

	Call struct {
		Name string
		Args []Expression
	}

	SelfCall struct{ Args []Expression }

	ParentCall struct{ Args []Expression }

	// NewImplicit is "new" with the type implied by the assignment target.
	// Args is nil when no argument list was written.
	NewImplicit struct{ Args []Expression }

	NewPrefab struct {
		Prefab Prefab
		Args   []Expression
	}

	NewMiniExpr struct {
		Ident  string
		Fields []string
		Args   []Expression
	}

	List struct{ Items []Expression }

	Input struct {
		Args      []Expression
		InputType *uint32
		InList    Expression
	}

	Locate struct {
		Args   []Expression
		InList Expression
	}

	Pick struct{ Items []PickItem }

	DynamicCall struct {
		Lib  []Expression
		Proc []Expression
	}

	ExternalCall struct {
		Library  Expression
		Function Expression
		Args     []Expression
	}

	GlobalIdent struct{ Name string }

	GlobalCall struct {
		Name string
		Args []Expression
	}
)

// InterpPart is one embedded expression of an interpolated string and the
// literal text that follows it. Expr is nil for "[]".
type InterpPart struct {
	Expr Expression
	Str  string
}

// PickItem is one weighted choice of pick(). Weight is nil when unweighted.
type PickItem struct {
	Weight Expression
	Value  Expression
}

// Follows.
type (
	FollowIndex struct{ Expr Expression }

	FollowField struct{ Name string }

	FollowCall struct {
		Name string
		Args []Expression
	}

	FollowUnary struct{ Op string }

	FollowStaticField struct{ Name string }

	FollowProcReference struct{ Name string }
)

// PathOp is one separator and segment of a prefab path, e.g. ("/", "obj").
type PathOp struct {
	Sep  string
	Name string
}

// PrefabVar is one "name = value" override of a prefab.
type PrefabVar struct {
	Name  string
	Value Expression
}

// Prefab is a type path literal with optional var overrides.
type Prefab struct {
	Path []PathOp
	Vars []PrefabVar
}

// PathString concatenates the separators and segments.
func (p Prefab) PathString() string {
	var b strings.Builder
	for _, op := range p.Path {
		b.WriteString(op.Sep)
		b.WriteString(op.Name)
	}
	return b.String()
}

func (ExprStmt) statement()    {}
func (Return) statement()      {}
func (Throw) statement()       {}
func (While) statement()       {}
func (DoWhile) statement()     {}
func (If) statement()          {}
func (ForInfinite) statement() {}
func (ForLoop) statement()     {}
func (ForList) statement()     {}
func (ForRange) statement()    {}
func (Var) statement()         {}
func (Vars) statement()        {}
func (Setting) statement()     {}
func (Spawn) statement()       {}
func (Switch) statement()      {}
func (TryCatch) statement()    {}
func (Continue) statement()    {}
func (Break) statement()       {}
func (Goto) statement()        {}
func (Label) statement()       {}
func (Del) statement()         {}
func (Crash) statement()       {}

func (CaseExact) switchCase() {}
func (CaseRange) switchCase() {}

func (Base) expression()      {}
func (BinaryOp) expression()  {}
func (AssignOp) expression()  {}
func (TernaryOp) expression() {}

func (Null) term()             {}
func (Int) term()              {}
func (Float) term()            {}
func (String) term()           {}
func (Resource) term()         {}
func (As) term()               {}
func (ProcMacro) term()        {}
func (TypeMacro) term()        {}
func (ImpliedTypeMacro) term() {}
func (Paren) term()            {}
func (PrefabTerm) term()       {}
func (InterpString) term()     {}
func (Ident) term()            {}
func (Call) term()             {}
func (SelfCall) term()         {}
func (ParentCall) term()       {}
func (NewImplicit) term()      {}
func (NewPrefab) term()        {}
func (NewMiniExpr) term()      {}
func (List) term()             {}
func (Input) term()            {}
func (Locate) term()           {}
func (Pick) term()             {}
func (DynamicCall) term()      {}
func (ExternalCall) term()     {}
func (GlobalIdent) term()      {}
func (GlobalCall) term()       {}

func (FollowIndex) follow()         {}
func (FollowField) follow()         {}
func (FollowCall) follow()          {}
func (FollowUnary) follow()         {}
func (FollowStaticField) follow()   {}
func (FollowProcReference) follow() {}
