package convert

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/avulto/internal/ast"
	"github.com/jward/avulto/internal/dmast"
)

func ident(name string, line uint32) dmast.Expression {
	return dmast.Base{Term: dmast.Ident{Name: name}, TermLoc: dmast.Location{File: 1, Line: line, Column: 1}}
}

func intLit(v int32) dmast.Expression {
	return dmast.Base{Term: dmast.Int{Value: v}}
}

func assign(lhs, rhs dmast.Expression) dmast.Expression {
	return dmast.AssignOp{Op: "=", LHS: lhs, RHS: rhs}
}

func at(line uint32) dmast.Location {
	return dmast.Location{File: 1, Line: line, Column: 5}
}

func TestConvertIfElse(t *testing.T) {
	t.Parallel()

	body := dmast.Block{{
		Loc: at(2),
		Stmt: dmast.If{
			Arms: []dmast.IfArm{{
				Cond:    ident("x", 2),
				CondLoc: at(2),
				Block:   dmast.Block{{Stmt: dmast.ExprStmt{Expr: assign(ident("y", 3), intLit(1))}, Loc: at(3)}},
			}},
			Else: dmast.Block{{Stmt: dmast.ExprStmt{Expr: assign(ident("y", 5), intLit(2))}, Loc: at(5)}},
		},
	}}

	tree, ids, err := Block(body)
	require.NoError(t, err)
	require.Len(t, ids, 1)

	ifNode, ok := tree.Node(ids[0]).(*ast.If)
	require.True(t, ok)
	require.Len(t, ifNode.Arms, 1)
	require.Len(t, ifNode.Else, 1)
	require.NotNil(t, ifNode.Location())
	assert.Equal(t, uint32(2), ifNode.Location().Line)

	arm := tree.Node(ifNode.Arms[0]).(*ast.IfArm)
	assert.Equal(t, "<Identifier x>", tree.Render(arm.Cond))
	assert.Equal(t, "<AssignOp <Identifier y> Assign <Constant 1>>", tree.Render(arm.Block[0]))
	assert.Equal(t, "<AssignOp <Identifier y> Assign <Constant 2>>", tree.Render(ifNode.Else[0]))
}

func TestConvertElseAbsent(t *testing.T) {
	t.Parallel()

	tree, ids, err := Block(dmast.Block{{Stmt: dmast.If{
		Arms: []dmast.IfArm{{Cond: ident("x", 1)}},
	}}})
	require.NoError(t, err)
	assert.Nil(t, tree.Node(ids[0]).(*ast.If).Else)
}

func TestConvertFollowChain(t *testing.T) {
	t.Parallel()

	// a.b[c].d(1)
	expr := dmast.Base{
		Term:    dmast.Ident{Name: "a"},
		TermLoc: at(1),
		Follow: []dmast.SpannedFollow{
			{Follow: dmast.FollowField{Name: "b"}, Loc: at(1)},
			{Follow: dmast.FollowIndex{Expr: ident("c", 1)}, Loc: at(1)},
			{Follow: dmast.FollowCall{Name: "d", Args: []dmast.Expression{intLit(1)}}, Loc: at(1)},
		},
	}

	c := New()
	id, err := c.Expression(expr)
	require.NoError(t, err)
	tree := c.Tree()

	call, ok := tree.Node(id).(*ast.Call)
	require.True(t, ok)
	assert.Equal(t, "<Call <Index <Field <Identifier a>.b>[<Identifier c>]>.d(...)>", tree.Render(id))
	require.Len(t, call.Args, 1)

	index := tree.Node(call.Expr).(*ast.Index)
	field := tree.Node(index.Expr).(*ast.Field)
	assert.Equal(t, ast.KindIdentifier, tree.Kind(field.Expr))
	assert.NotNil(t, call.Location())
}

func TestConvertBareCallHasNoReceiver(t *testing.T) {
	t.Parallel()

	c := New()
	id, err := c.Expression(dmast.Base{Term: dmast.Call{Name: "world_log", Args: []dmast.Expression{intLit(3)}}})
	require.NoError(t, err)

	call := c.Tree().Node(id).(*ast.Call)
	assert.Equal(t, ast.NoID, call.Expr)
	assert.Equal(t, "<Call world_log(...)>", c.Tree().Render(id))
}

func TestConvertOperatorsCarryNoLocation(t *testing.T) {
	t.Parallel()

	c := New()
	id, err := c.Expression(dmast.BinaryOp{Op: "+", LHS: ident("a", 4), RHS: intLit(1)})
	require.NoError(t, err)

	bin := c.Tree().Node(id).(*ast.BinaryOp)
	assert.Nil(t, bin.Location())
	assert.Equal(t, ast.OpAdd, bin.Op)
	require.NotNil(t, c.Tree().Node(bin.LHS).Location())
	assert.Equal(t, uint32(4), c.Tree().Node(bin.LHS).Location().Line)
	assert.Nil(t, c.Tree().Node(bin.RHS).Location())
}

func TestConvertList(t *testing.T) {
	t.Parallel()

	list := dmast.Base{Term: dmast.List{Items: []dmast.Expression{
		intLit(1),
		assign(dmast.Base{Term: dmast.String{Value: "k"}}, intLit(2)),
		dmast.BinaryOp{Op: "to", LHS: intLit(3), RHS: intLit(4)},
		dmast.TernaryOp{Cond: ident("c", 1), If: intLit(5), Else: intLit(6)},
	}}}

	c := New()
	id, err := c.Expression(list)
	require.NoError(t, err)
	tree := c.Tree()

	node := tree.Node(id).(*ast.List)
	require.Len(t, node.Keys, 4)
	require.Len(t, node.Vals, 4)

	assert.Equal(t, "<Constant 1>", tree.Render(node.Keys[0]))
	assert.Equal(t, ast.NoID, node.Vals[0])
	assert.Equal(t, `<Constant "k">`, tree.Render(node.Keys[1]))
	assert.Equal(t, "<Constant 2>", tree.Render(node.Vals[1]))
	assert.Equal(t, ast.KindBinaryOp, tree.Kind(node.Keys[2]))
	assert.Equal(t, ast.NoID, node.Vals[2])
	assert.Equal(t, ast.KindTernaryOp, tree.Kind(node.Keys[3]))
	assert.Nil(t, tree.Node(node.Keys[3]).Location())
	assert.Equal(t, ast.NoID, node.Vals[3])
}

func TestConvertForListBinding(t *testing.T) {
	t.Parallel()

	tree, ids, err := Block(dmast.Block{{
		Loc: at(7),
		Stmt: dmast.ForList{
			Name:    "item",
			VarType: []string{"obj", "item"},
			InList:  ident("contents", 7),
			Block:   dmast.Block{{Stmt: dmast.ExprStmt{Expr: ident("item", 8)}, Loc: at(8)}},
		},
	}})
	require.NoError(t, err)

	loop := tree.Node(ids[0]).(*ast.ForList)
	binding := tree.Node(loop.Binding).(*ast.Var)
	assert.Nil(t, binding.Location())
	assert.Equal(t, loop.Name, binding.Name)
	assert.Equal(t, "/obj/item", binding.DeclaredType.Rel())
	assert.Equal(t, "/datum/atom/movable/obj/item", loop.VarType.Abs())
	assert.Equal(t, "<Var item ...>", tree.Render(loop.Binding))
}

func TestConvertVarsShareLocation(t *testing.T) {
	t.Parallel()

	tree, ids, err := Block(dmast.Block{{
		Loc: at(9),
		Stmt: dmast.Vars{Vars: []dmast.Var{
			{Name: "a", Value: intLit(1)},
			{Name: "b", VarType: []string{"mob"}},
		}},
	}})
	require.NoError(t, err)

	vars := tree.Node(ids[0]).(*ast.Vars)
	require.Len(t, vars.Vars, 2)
	for _, id := range vars.Vars {
		require.NotNil(t, tree.Node(id).Location())
		assert.Equal(t, uint32(9), tree.Node(id).Location().Line)
	}
	second := tree.Node(vars.Vars[1]).(*ast.Var)
	assert.Equal(t, ast.NoID, second.Value)
	assert.Equal(t, "/mob", second.DeclaredType.Rel())
	assert.True(t, tree.Node(vars.Vars[0]).(*ast.Var).DeclaredType.IsZero())
}

func TestConvertSwitch(t *testing.T) {
	t.Parallel()

	tree, ids, err := Block(dmast.Block{{Stmt: dmast.Switch{
		Input: ident("n", 1),
		Cases: []dmast.SwitchCase{{
			Cases: []dmast.Case{
				dmast.CaseExact{Expr: intLit(1)},
				dmast.CaseRange{Start: intLit(5), End: intLit(9)},
			},
			Loc:   at(2),
			Block: dmast.Block{{Stmt: dmast.Return{}}},
		}},
	}}})
	require.NoError(t, err)

	sw := tree.Node(ids[0]).(*ast.Switch)
	assert.Nil(t, sw.Default)
	require.Len(t, sw.Cases, 1)
	sc := tree.Node(sw.Cases[0]).(*ast.SwitchCase)
	require.Len(t, sc.Exact, 1)
	require.Len(t, sc.Ranges, 1)
	assert.Equal(t, "<Constant 9>", tree.Render(sc.Ranges[0].End))
	assert.Equal(t, "<Return ...>", tree.Render(sc.Block[0]))
}

func TestConvertNewForms(t *testing.T) {
	t.Parallel()

	c := New()
	implicit, err := c.Expression(dmast.Base{Term: dmast.NewImplicit{}})
	require.NoError(t, err)
	assert.False(t, c.Tree().Node(implicit).(*ast.NewImplicit).HasArgs)

	prefab := dmast.Prefab{Path: []dmast.PathOp{{Sep: "/", Name: "obj"}, {Sep: "/", Name: "item"}}}
	np, err := c.Expression(dmast.Base{Term: dmast.NewPrefab{Prefab: prefab, Args: []dmast.Expression{}}})
	require.NoError(t, err)
	node := c.Tree().Node(np).(*ast.NewPrefab)
	assert.True(t, node.HasArgs)
	assert.Equal(t, "<NewPrefab <Prefab /obj/item> ...>", c.Tree().Render(np))

	mini, err := c.Expression(dmast.Base{Term: dmast.NewMiniExpr{Ident: "T", Fields: []string{"kind"}}})
	require.NoError(t, err)
	m := c.Tree().Node(mini).(*ast.NewMiniExpr)
	require.Len(t, m.Fields, 1)
	field := c.Tree().Node(m.Fields[0]).(*ast.Field)
	assert.Equal(t, ast.NoID, field.Expr)
	assert.Equal(t, "<Field kind>", c.Tree().Render(m.Fields[0]))
}

func TestConvertInterpString(t *testing.T) {
	t.Parallel()

	c := New()
	id, err := c.Expression(dmast.Base{Term: dmast.InterpString{
		First: "hello ",
		Parts: []dmast.InterpPart{{Expr: ident("name", 1), Str: "!"}, {Str: "end"}},
	}})
	require.NoError(t, err)

	tree := c.Tree()
	interp := tree.Node(id).(*ast.InterpString)
	assert.Equal(t, `<Constant "hello ">`, tree.Render(interp.First))
	require.Len(t, interp.Parts, 2)
	assert.Equal(t, ast.NoID, interp.Parts[1].Expr)
	assert.Equal(t, `<Constant "end">`, tree.Render(interp.Parts[1].Str))
}

func TestConvertSupportsInfiniteForAndGoto(t *testing.T) {
	t.Parallel()

	tree, ids, err := Block(dmast.Block{
		{Stmt: dmast.ForInfinite{Block: dmast.Block{{Stmt: dmast.Break{}}}}},
		{Stmt: dmast.Goto{Label: "retry"}},
	})
	require.NoError(t, err)
	assert.Equal(t, ast.KindForInfinite, tree.Kind(ids[0]))
	assert.Equal(t, "<Goto retry>", tree.Render(ids[1]))
}

func TestConvertUnsupported(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		term dmast.Term
	}{
		{"as", dmast.As{InputType: "num"}},
		{"type macro", dmast.TypeMacro{}},
		{"implied type macro", dmast.ImpliedTypeMacro{}},
		{"global ident", dmast.GlobalIdent{Name: "vars"}},
		{"global call", dmast.GlobalCall{Name: "foo"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			body := dmast.Block{{Stmt: dmast.ExprStmt{Expr: dmast.Base{Term: tt.term}}}}

			for range 2 {
				tree, ids, err := Block(body)
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrUnsupported))
				var uerr *UnsupportedError
				assert.ErrorAs(t, err, &uerr)
				assert.Nil(t, tree)
				assert.Nil(t, ids)
			}
		})
	}
}

func TestConvertUnknownOperator(t *testing.T) {
	t.Parallel()

	_, _, err := Block(dmast.Block{{Stmt: dmast.ExprStmt{
		Expr: dmast.BinaryOp{Op: "<=>", LHS: intLit(1), RHS: intLit(2)},
	}}})
	require.ErrorIs(t, err, ErrUnknownOperator)

	var operr *OperatorError
	require.ErrorAs(t, err, &operr)
	assert.Equal(t, "binary", operr.Class)
	assert.Equal(t, "<=>", operr.Token)

	_, _, err = Block(dmast.Block{{Stmt: dmast.ExprStmt{Expr: dmast.Base{
		Term:   dmast.Ident{Name: "i"},
		Follow: []dmast.SpannedFollow{{Follow: dmast.FollowUnary{Op: "x**"}}},
	}}}})
	assert.ErrorIs(t, err, ErrUnknownOperator)
}

func TestConvertOperatorTables(t *testing.T) {
	t.Parallel()

	binary := map[ast.BinaryOperator]bool{}
	for _, op := range binaryTokens {
		binary[op] = true
	}
	assert.Len(t, binary, 24)

	assignments := map[ast.AssignOperator]bool{}
	for _, op := range assignTokens {
		assignments[op] = true
	}
	assert.Len(t, assignments, 15)

	unary := map[ast.UnaryOperator]bool{}
	for _, op := range unaryTokens {
		unary[op] = true
	}
	assert.Len(t, unary, 9)
}

func TestConvertDecodedBody(t *testing.T) {
	t.Parallel()

	src := `
- loc: [1, 4, 5]
  var: {name: total, type: [], value: 0}
- loc: [1, 5, 5]
  for_range:
    name: i
    start: 1
    end: {ident: count, loc: [1, 5, 20]}
    block:
      - loc: [1, 6, 9]
        expr: {assign: {op: "+=", lhs: {ident: total, loc: [1, 6, 9]}, rhs: {ident: i, loc: [1, 6, 18]}}}
- loc: [1, 7, 5]
  return: {ident: total, loc: [1, 7, 12]}
`
	block, err := dmast.DecodeBlock([]byte(src))
	require.NoError(t, err)

	tree, ids, err := Block(block)
	require.NoError(t, err)
	require.Len(t, ids, 3)
	assert.Equal(t, "<Var total ...>", tree.Render(ids[0]))
	assert.Equal(t, ast.KindForRange, tree.Kind(ids[1]))
	assert.Equal(t, "<Return <Identifier total>>", tree.Render(ids[2]))

	loop := tree.Node(ids[1]).(*ast.ForRange)
	require.Len(t, loop.Block, 1)
	assert.Equal(t, "<AssignOp <Identifier total> AssignAdd <Identifier i>>", tree.Render(loop.Block[0]))
}
