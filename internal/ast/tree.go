package ast

import (
	"fmt"
	"strings"
)

// Tree is the arena that owns a converted body. Nodes are appended bottom
// up, so every child ID is smaller than its parent's.
type Tree struct {
	nodes []Node
}

// NewTree returns an empty arena.
func NewTree() *Tree {
	return &Tree{}
}

// Add appends n and returns its ID.
func (t *Tree) Add(n Node) ID {
	t.nodes = append(t.nodes, n)
	return ID(len(t.nodes) - 1)
}

// Len is the number of nodes in the arena.
func (t *Tree) Len() int { return len(t.nodes) }

// Node returns the node at id, or nil for NoID and out-of-range IDs.
func (t *Tree) Node(id ID) Node {
	if id < 0 || int(id) >= len(t.nodes) {
		return nil
	}
	return t.nodes[id]
}

// Kind returns the kind of the node at id, KindInvalid when there is none.
func (t *Tree) Kind(id ID) Kind {
	if n := t.Node(id); n != nil {
		return n.Kind()
	}
	return KindInvalid
}

// Children returns the IDs the walker descends into, in walk order. Absent
// optional children are skipped.
func (t *Tree) Children(id ID) []ID {
	var c childList
	switch n := t.Node(id).(type) {
	case *ExprStmt:
		c.add(n.Expr)
	case *Return:
		c.add(n.Value)
	case *Throw:
		c.add(n.Expr)
	case *Del:
		c.add(n.Expr)
	case *Crash:
		c.add(n.Expr)
	case *Break:
		c.add(n.Label)
	case *Continue:
		c.add(n.Label)
	case *Goto:
		c.add(n.Label)
	case *Label:
		c.add(n.Name)
		c.add(n.Block...)
	case *While:
		c.add(n.Cond)
		c.add(n.Block...)
	case *DoWhile:
		c.add(n.Block...)
		c.add(n.Cond)
	case *If:
		c.add(n.Arms...)
		c.add(n.Else...)
	case *IfArm:
		c.add(n.Cond)
		c.add(n.Block...)
	case *ForInfinite:
		c.add(n.Block...)
	case *ForLoop:
		c.add(n.Init, n.Test, n.Inc)
		c.add(n.Block...)
	case *ForList:
		c.add(n.Binding, n.InList)
		c.add(n.Block...)
	case *ForRange:
		c.add(n.Name, n.Start, n.End, n.Step)
		c.add(n.Block...)
	case *Var:
		c.add(n.Name, n.Value)
	case *Vars:
		c.add(n.Vars...)
	case *Setting:
		c.add(n.Name, n.Value)
	case *Spawn:
		c.add(n.Delay)
		c.add(n.Block...)
	case *Switch:
		c.add(n.Input)
		c.add(n.Cases...)
		c.add(n.Default...)
	case *SwitchCase:
		c.add(n.Exact...)
		for _, r := range n.Ranges {
			c.add(r.Start, r.End)
		}
		c.add(n.Block...)
	case *TryCatch:
		c.add(n.Try...)
		for _, param := range n.CatchParams {
			c.add(param...)
		}
		c.add(n.Catch...)
	case *List:
		for i, k := range n.Keys {
			c.add(k)
			if i < len(n.Vals) {
				c.add(n.Vals[i])
			}
		}
	case *BinaryOp:
		c.add(n.LHS, n.RHS)
	case *AssignOp:
		c.add(n.LHS, n.RHS)
	case *TernaryOp:
		c.add(n.Cond, n.If, n.Else)
	case *InterpString:
		c.add(n.First)
		for _, p := range n.Parts {
			c.add(p.Expr, p.Str)
		}
	case *Locate:
		c.add(n.Args...)
		c.add(n.InList)
	case *Prefab:
		for _, v := range n.Vars {
			c.add(v.Value)
		}
	case *Index:
		c.add(n.Expr, n.Index)
	case *Field:
		c.add(n.Expr, n.Field)
	case *StaticField:
		c.add(n.Expr, n.Field)
	case *Call:
		c.add(n.Expr, n.Name)
		c.add(n.Args...)
	case *SelfCall:
		c.add(n.Args...)
	case *ParentCall:
		c.add(n.Args...)
	case *UnaryOp:
		c.add(n.Expr)
	case *ProcReference:
		c.add(n.Expr, n.Name)
	case *ExternalCall:
		c.add(n.Library, n.Function)
		c.add(n.Args...)
	case *NewMiniExpr:
		c.add(n.Name)
		c.add(n.Fields...)
		c.add(n.Args...)
	case *NewImplicit:
		c.add(n.Args...)
	case *NewPrefab:
		c.add(n.Prefab)
		c.add(n.Args...)
	case *DynamicCall:
		c.add(n.Lib...)
		c.add(n.Proc...)
	case *Input:
		c.add(n.Args...)
		c.add(n.InList)
	case *Pick:
		for _, item := range n.Items {
			c.add(item.Weight, item.Value)
		}
	}
	return c
}

type childList []ID

func (c *childList) add(ids ...ID) {
	for _, id := range ids {
		if id != NoID {
			*c = append(*c, id)
		}
	}
}

// Render returns a one-line human-readable form of the node at id, in the
// "<Kind detail>" style. Large compound nodes elide their bodies as "...".
func (t *Tree) Render(id ID) string {
	var b strings.Builder
	t.render(&b, id)
	return b.String()
}

// name renders an identifier in a name position as its bare spelling.
func (t *Tree) name(b *strings.Builder, id ID) {
	if ident, ok := t.Node(id).(*Identifier); ok {
		b.WriteString(ident.Name)
		return
	}
	t.render(b, id)
}

func (t *Tree) list(b *strings.Builder, ids []ID) {
	for i, id := range ids {
		if i > 0 {
			b.WriteString(", ")
		}
		t.render(b, id)
	}
}

func (t *Tree) render(b *strings.Builder, id ID) {
	switch n := t.Node(id).(type) {
	case nil:
		b.WriteString("<nil>")
	case *ExprStmt:
		t.render(b, n.Expr)
	case *Return:
		b.WriteString("<Return ")
		if n.Value == NoID {
			b.WriteString("...")
		} else {
			t.render(b, n.Value)
		}
		b.WriteString(">")
	case *Throw:
		t.wrap(b, "Throw", n.Expr)
	case *Del:
		t.wrap(b, "Del", n.Expr)
	case *Crash:
		t.wrapOpt(b, "Crash", n.Expr)
	case *Break:
		t.wrapOpt(b, "Break", n.Label)
	case *Continue:
		t.wrapOpt(b, "Continue", n.Label)
	case *Goto:
		b.WriteString("<Goto ")
		t.name(b, n.Label)
		b.WriteString(">")
	case *Label:
		b.WriteString("<Label ")
		t.name(b, n.Name)
		b.WriteString(" ...>")
	case *While:
		t.wrapElided(b, "While", n.Cond)
	case *DoWhile:
		t.wrapElided(b, "DoWhile", n.Cond)
	case *If:
		b.WriteString("<If ...>")
	case *IfArm:
		t.wrapElided(b, "IfArm", n.Cond)
	case *ForInfinite, *ForLoop, *ForRange, *Vars, *Spawn, *TryCatch, *SwitchCase:
		fmt.Fprintf(b, "<%s ...>", n.Kind())
	case *ForList:
		b.WriteString("<ForList ")
		t.name(b, n.Name)
		b.WriteString(" ...>")
	case *Var:
		b.WriteString("<Var ")
		t.name(b, n.Name)
		b.WriteString(" ...>")
	case *Setting:
		b.WriteString("<Setting ")
		t.name(b, n.Name)
		b.WriteString(" ...>")
	case *Switch:
		t.wrapElided(b, "Switch", n.Input)
	case *Const:
		fmt.Fprintf(b, "<Constant %s>", n.Value)
	case *Identifier:
		fmt.Fprintf(b, "<Identifier %s>", n.Name)
	case *List:
		b.WriteString("<List [")
		for i, k := range n.Keys {
			if i > 0 {
				b.WriteString(", ")
			}
			t.render(b, k)
			if i < len(n.Vals) && n.Vals[i] != NoID {
				b.WriteString(" = ")
				t.render(b, n.Vals[i])
			}
		}
		b.WriteString("]>")
	case *BinaryOp:
		b.WriteString("<BinaryOp ")
		t.render(b, n.LHS)
		fmt.Fprintf(b, " %s ", n.Op)
		t.render(b, n.RHS)
		b.WriteString(">")
	case *AssignOp:
		b.WriteString("<AssignOp ")
		t.render(b, n.LHS)
		fmt.Fprintf(b, " %s ", n.Op)
		t.render(b, n.RHS)
		b.WriteString(">")
	case *TernaryOp:
		t.wrapElided(b, "TernaryOp", n.Cond)
	case *InterpString, *Locate, *SelfCall, *ParentCall, *NewImplicit, *Pick:
		fmt.Fprintf(b, "<%s ...>", n.Kind())
	case *Prefab:
		fmt.Fprintf(b, "<Prefab %s>", n.Path)
	case *Index:
		b.WriteString("<Index ")
		t.render(b, n.Expr)
		b.WriteString("[")
		t.render(b, n.Index)
		b.WriteString("]>")
	case *Field:
		b.WriteString("<Field ")
		if n.Expr != NoID {
			t.render(b, n.Expr)
			b.WriteString(".")
		}
		t.name(b, n.Field)
		b.WriteString(">")
	case *StaticField:
		b.WriteString("<StaticField ")
		t.render(b, n.Expr)
		b.WriteString("::")
		t.name(b, n.Field)
		b.WriteString(">")
	case *Call:
		b.WriteString("<Call ")
		if n.Expr != NoID {
			t.render(b, n.Expr)
			b.WriteString(".")
		}
		t.name(b, n.Name)
		b.WriteString("(...)>")
	case *UnaryOp:
		fmt.Fprintf(b, "<UnaryOp %s ", n.Op)
		t.render(b, n.Expr)
		b.WriteString(">")
	case *ProcReference:
		b.WriteString("<ProcReference ")
		t.render(b, n.Expr)
		b.WriteString(".")
		t.name(b, n.Name)
		b.WriteString(">")
	case *ExternalCall:
		b.WriteString("<ExternalCall ")
		t.render(b, n.Library)
		b.WriteString(",")
		t.render(b, n.Function)
		b.WriteString("(...)>")
	case *NewMiniExpr:
		b.WriteString("<NewMiniExpr ")
		t.name(b, n.Name)
		b.WriteString(" ...>")
	case *NewPrefab:
		b.WriteString("<NewPrefab ")
		t.render(b, n.Prefab)
		b.WriteString(" ...>")
	case *DynamicCall:
		b.WriteString("<DynamicCall (")
		t.list(b, n.Lib)
		b.WriteString(")(")
		t.list(b, n.Proc)
		b.WriteString(")>")
	case *Input:
		if n.InputType == nil {
			b.WriteString("<Input ...>")
		} else {
			fmt.Fprintf(b, "<Input %d ...>", *n.InputType)
		}
	default:
		fmt.Fprintf(b, "<%s>", n.Kind())
	}
}

func (t *Tree) wrap(b *strings.Builder, kind string, child ID) {
	fmt.Fprintf(b, "<%s ", kind)
	t.render(b, child)
	b.WriteString(">")
}

func (t *Tree) wrapOpt(b *strings.Builder, kind string, child ID) {
	if child == NoID {
		fmt.Fprintf(b, "<%s>", kind)
		return
	}
	t.wrap(b, kind, child)
}

func (t *Tree) wrapElided(b *strings.Builder, kind string, child ID) {
	fmt.Fprintf(b, "<%s ", kind)
	t.render(b, child)
	b.WriteString(" ...>")
}
