package convert

import (
	"fmt"

	"github.com/jward/avulto/internal/ast"
	"github.com/jward/avulto/internal/dmast"
	"github.com/jward/avulto/internal/path"
)

func (c *Converter) optExpression(expr dmast.Expression) (ast.ID, error) {
	if expr == nil {
		return ast.NoID, nil
	}
	return c.Expression(expr)
}

func (c *Converter) expressions(exprs []dmast.Expression) ([]ast.ID, error) {
	if exprs == nil {
		return nil, nil
	}
	ids := make([]ast.ID, 0, len(exprs))
	for _, e := range exprs {
		id, err := c.Expression(e)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Expression converts one expression. Operator applications carry no
// location; terms and follows carry the location the parser recorded.
func (c *Converter) Expression(expr dmast.Expression) (ast.ID, error) {
	switch e := expr.(type) {
	case dmast.Base:
		id, err := c.term(e.Term, pos(e.TermLoc))
		if err != nil {
			return ast.NoID, err
		}
		for _, f := range e.Follow {
			if id, err = c.follow(id, f.Follow, pos(f.Loc)); err != nil {
				return ast.NoID, err
			}
		}
		return id, nil

	case dmast.BinaryOp:
		op, err := binaryOp(e.Op)
		if err != nil {
			return ast.NoID, err
		}
		lhs, err := c.Expression(e.LHS)
		if err != nil {
			return ast.NoID, err
		}
		rhs, err := c.Expression(e.RHS)
		if err != nil {
			return ast.NoID, err
		}
		return c.add(&ast.BinaryOp{Op: op, LHS: lhs, RHS: rhs}), nil

	case dmast.AssignOp:
		op, err := assignOp(e.Op)
		if err != nil {
			return ast.NoID, err
		}
		lhs, err := c.Expression(e.LHS)
		if err != nil {
			return ast.NoID, err
		}
		rhs, err := c.Expression(e.RHS)
		if err != nil {
			return ast.NoID, err
		}
		return c.add(&ast.AssignOp{Op: op, LHS: lhs, RHS: rhs}), nil

	case dmast.TernaryOp:
		cond, err := c.Expression(e.Cond)
		if err != nil {
			return ast.NoID, err
		}
		ifExpr, err := c.Expression(e.If)
		if err != nil {
			return ast.NoID, err
		}
		elseExpr, err := c.Expression(e.Else)
		if err != nil {
			return ast.NoID, err
		}
		return c.add(&ast.TernaryOp{Cond: cond, If: ifExpr, Else: elseExpr}), nil
	}

	return ast.NoID, &UnsupportedError{Construct: fmt.Sprintf("expression %T", expr)}
}

// follow wraps base in one postfix suffix.
func (c *Converter) follow(base ast.ID, f dmast.Follow, p ast.Pos) (ast.ID, error) {
	switch f := f.(type) {
	case dmast.FollowIndex:
		index, err := c.Expression(f.Expr)
		if err != nil {
			return ast.NoID, err
		}
		return c.add(&ast.Index{Pos: p, Expr: base, Index: index}), nil

	case dmast.FollowField:
		return c.add(&ast.Field{Pos: p, Expr: base, Field: c.ident(f.Name)}), nil

	case dmast.FollowCall:
		name := c.ident(f.Name)
		args, err := c.expressions(f.Args)
		if err != nil {
			return ast.NoID, err
		}
		return c.add(&ast.Call{Pos: p, Expr: base, Name: name, Args: args}), nil

	case dmast.FollowUnary:
		op, err := unaryOp(f.Op)
		if err != nil {
			return ast.NoID, err
		}
		return c.add(&ast.UnaryOp{Pos: p, Op: op, Expr: base}), nil

	case dmast.FollowStaticField:
		return c.add(&ast.StaticField{Pos: p, Expr: base, Field: c.ident(f.Name)}), nil

	case dmast.FollowProcReference:
		return c.add(&ast.ProcReference{Pos: p, Expr: base, Name: c.ident(f.Name)}), nil
	}

	return ast.NoID, &UnsupportedError{Construct: fmt.Sprintf("follow %T", f)}
}

func (c *Converter) constant(value ast.Constant, p ast.Pos) ast.ID {
	return c.add(&ast.Const{Pos: p, Value: value})
}

func (c *Converter) term(term dmast.Term, p ast.Pos) (ast.ID, error) {
	switch t := term.(type) {
	case dmast.Null:
		return c.constant(ast.NullConst(), p), nil
	case dmast.Int:
		return c.constant(ast.IntConst(t.Value), p), nil
	case dmast.Float:
		return c.constant(ast.FloatConst(t.Value), p), nil
	case dmast.String:
		return c.constant(ast.StringConst(t.Value), p), nil
	case dmast.Resource:
		return c.constant(ast.ResourceConst(t.Value), p), nil
	case dmast.ProcMacro:
		return c.constant(ast.ProcMacroConst(), p), nil

	case dmast.As:
		return ast.NoID, &UnsupportedError{Construct: "as " + t.InputType}
	case dmast.TypeMacro:
		return ast.NoID, &UnsupportedError{Construct: "__TYPE__"}
	case dmast.ImpliedTypeMacro:
		return ast.NoID, &UnsupportedError{Construct: "__IMPLIED_TYPE__"}
	case dmast.GlobalIdent:
		return ast.NoID, &UnsupportedError{Construct: "global." + t.Name}
	case dmast.GlobalCall:
		return ast.NoID, &UnsupportedError{Construct: "global." + t.Name + "()"}

	case dmast.Paren:
		return c.Expression(t.Expr)

	case dmast.PrefabTerm:
		return c.prefab(t.Prefab, p)

	case dmast.Ident:
		return c.add(&ast.Identifier{Pos: p, Name: t.Name}), nil

	case dmast.InterpString:
		first := c.constant(ast.StringConst(t.First), ast.Pos{})
		parts := make([]ast.InterpPart, 0, len(t.Parts))
		for _, part := range t.Parts {
			expr, err := c.optExpression(part.Expr)
			if err != nil {
				return ast.NoID, err
			}
			parts = append(parts, ast.InterpPart{Expr: expr, Str: c.constant(ast.StringConst(part.Str), ast.Pos{})})
		}
		return c.add(&ast.InterpString{Pos: p, First: first, Parts: parts}), nil

	case dmast.Call:
		name := c.ident(t.Name)
		args, err := c.expressions(t.Args)
		if err != nil {
			return ast.NoID, err
		}
		return c.add(&ast.Call{Pos: p, Expr: ast.NoID, Name: name, Args: args}), nil

	case dmast.SelfCall:
		args, err := c.expressions(t.Args)
		if err != nil {
			return ast.NoID, err
		}
		return c.add(&ast.SelfCall{Pos: p, Args: args}), nil

	case dmast.ParentCall:
		args, err := c.expressions(t.Args)
		if err != nil {
			return ast.NoID, err
		}
		return c.add(&ast.ParentCall{Pos: p, Args: args}), nil

	case dmast.NewImplicit:
		args, err := c.expressions(t.Args)
		if err != nil {
			return ast.NoID, err
		}
		return c.add(&ast.NewImplicit{Pos: p, Args: args, HasArgs: t.Args != nil}), nil

	case dmast.NewPrefab:
		prefab, err := c.prefab(t.Prefab, ast.Pos{})
		if err != nil {
			return ast.NoID, err
		}
		args, err := c.expressions(t.Args)
		if err != nil {
			return ast.NoID, err
		}
		return c.add(&ast.NewPrefab{Pos: p, Prefab: prefab, Args: args, HasArgs: t.Args != nil}), nil

	case dmast.NewMiniExpr:
		name := c.ident(t.Ident)
		fields := make([]ast.ID, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = c.add(&ast.Field{Expr: ast.NoID, Field: c.ident(f)})
		}
		args, err := c.expressions(t.Args)
		if err != nil {
			return ast.NoID, err
		}
		return c.add(&ast.NewMiniExpr{Pos: p, Name: name, Fields: fields, Args: args, HasArgs: t.Args != nil}), nil

	case dmast.List:
		return c.list(t, p)

	case dmast.Input:
		args, err := c.expressions(t.Args)
		if err != nil {
			return ast.NoID, err
		}
		inList, err := c.optExpression(t.InList)
		if err != nil {
			return ast.NoID, err
		}
		return c.add(&ast.Input{Pos: p, Args: args, InputType: t.InputType, InList: inList}), nil

	case dmast.Locate:
		args, err := c.expressions(t.Args)
		if err != nil {
			return ast.NoID, err
		}
		inList, err := c.optExpression(t.InList)
		if err != nil {
			return ast.NoID, err
		}
		return c.add(&ast.Locate{Pos: p, Args: args, InList: inList}), nil

	case dmast.Pick:
		items := make([]ast.PickItem, 0, len(t.Items))
		for _, item := range t.Items {
			weight, err := c.optExpression(item.Weight)
			if err != nil {
				return ast.NoID, err
			}
			value, err := c.Expression(item.Value)
			if err != nil {
				return ast.NoID, err
			}
			items = append(items, ast.PickItem{Weight: weight, Value: value})
		}
		return c.add(&ast.Pick{Pos: p, Items: items}), nil

	case dmast.DynamicCall:
		lib, err := c.expressions(t.Lib)
		if err != nil {
			return ast.NoID, err
		}
		proc, err := c.expressions(t.Proc)
		if err != nil {
			return ast.NoID, err
		}
		return c.add(&ast.DynamicCall{Pos: p, Lib: lib, Proc: proc}), nil

	case dmast.ExternalCall:
		library, err := c.Expression(t.Library)
		if err != nil {
			return ast.NoID, err
		}
		function, err := c.Expression(t.Function)
		if err != nil {
			return ast.NoID, err
		}
		args, err := c.expressions(t.Args)
		if err != nil {
			return ast.NoID, err
		}
		return c.add(&ast.ExternalCall{Pos: p, Library: library, Function: function, Args: args}), nil
	}

	return ast.NoID, &UnsupportedError{Construct: fmt.Sprintf("term %T", term)}
}

// prefab converts a type literal. Its segments come from the parser, so the
// path is built trusted.
func (c *Converter) prefab(pf dmast.Prefab, p ast.Pos) (ast.ID, error) {
	node := &ast.Prefab{Pos: p, Path: path.MakeTrusted(pf.PathString())}
	for _, v := range pf.Vars {
		value, err := c.Expression(v.Value)
		if err != nil {
			return ast.NoID, err
		}
		node.Vars = append(node.Vars, ast.PrefabVar{Name: v.Name, Value: value})
	}
	return c.add(node), nil
}

// list splits each entry into a key and an optional value. Only an
// assignment entry ("key = value") has a value; a plain expression, a
// binary expression such as a range, and a ternary all become bare keys.
func (c *Converter) list(l dmast.List, p ast.Pos) (ast.ID, error) {
	node := &ast.List{
		Pos:  p,
		Keys: make([]ast.ID, 0, len(l.Items)),
		Vals: make([]ast.ID, 0, len(l.Items)),
	}
	for _, item := range l.Items {
		key, val := ast.NoID, ast.NoID
		var err error
		switch e := item.(type) {
		case dmast.AssignOp:
			if key, err = c.Expression(e.LHS); err != nil {
				return ast.NoID, err
			}
			if val, err = c.Expression(e.RHS); err != nil {
				return ast.NoID, err
			}
		case dmast.Base, dmast.BinaryOp, dmast.TernaryOp:
			if key, err = c.Expression(e); err != nil {
				return ast.NoID, err
			}
		default:
			return ast.NoID, &UnsupportedError{Construct: fmt.Sprintf("list entry %T", item)}
		}
		node.Keys = append(node.Keys, key)
		node.Vals = append(node.Vals, val)
	}
	return c.add(node), nil
}
