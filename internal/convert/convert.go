// Package convert maps the parser's syntax tree (package dmast) onto the
// node model (package ast).
//
// Conversion is eager and all-or-nothing: a body either converts completely
// or fails with the first UnsupportedError or OperatorError encountered.
package convert

import (
	"fmt"

	"github.com/jward/avulto/internal/ast"
	"github.com/jward/avulto/internal/dmast"
	"github.com/jward/avulto/internal/path"
)

// Converter appends converted nodes to one arena.
type Converter struct {
	tree *ast.Tree
}

// New returns a Converter with an empty arena.
func New() *Converter {
	return &Converter{tree: ast.NewTree()}
}

// Tree returns the arena nodes are added to.
func (c *Converter) Tree() *ast.Tree { return c.tree }

// Block converts a proc body into a fresh arena and returns the top-level
// statement IDs. On error no tree is returned.
func Block(block dmast.Block) (*ast.Tree, []ast.ID, error) {
	c := New()
	ids, err := c.Block(block)
	if err != nil {
		return nil, nil, err
	}
	return c.tree, ids, nil
}

func (c *Converter) add(n ast.Node) ast.ID { return c.tree.Add(n) }

func pos(loc dmast.Location) ast.Pos {
	if loc.IsZero() {
		return ast.Pos{}
	}
	return ast.Pos{Loc: &ast.Location{File: ast.FileID(loc.File), Line: loc.Line, Column: loc.Column}}
}

// ident adds an unattributed identifier.
func (c *Converter) ident(name string) ast.ID {
	return c.add(&ast.Identifier{Name: name})
}

func (c *Converter) optIdent(name string) ast.ID {
	if name == "" {
		return ast.NoID
	}
	return c.ident(name)
}

func treePath(segments []string) path.Path {
	if len(segments) == 0 {
		return path.Path{}
	}
	return path.FromTreePath(segments)
}

// Block converts each statement in order.
func (c *Converter) Block(block dmast.Block) ([]ast.ID, error) {
	if block == nil {
		return nil, nil
	}
	ids := make([]ast.ID, 0, len(block))
	for _, s := range block {
		id, err := c.Statement(s.Stmt, s.Loc)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (c *Converter) optStatement(stmt dmast.Statement) (ast.ID, error) {
	if stmt == nil {
		return ast.NoID, nil
	}
	return c.Statement(stmt, dmast.Location{})
}

// Statement converts one statement written at loc.
func (c *Converter) Statement(stmt dmast.Statement, loc dmast.Location) (ast.ID, error) {
	p := pos(loc)

	switch s := stmt.(type) {
	case dmast.ExprStmt:
		expr, err := c.Expression(s.Expr)
		if err != nil {
			return ast.NoID, err
		}
		return c.add(&ast.ExprStmt{Pos: p, Expr: expr}), nil

	case dmast.Return:
		value, err := c.optExpression(s.Value)
		if err != nil {
			return ast.NoID, err
		}
		return c.add(&ast.Return{Pos: p, Value: value}), nil

	case dmast.Throw:
		expr, err := c.Expression(s.Expr)
		if err != nil {
			return ast.NoID, err
		}
		return c.add(&ast.Throw{Pos: p, Expr: expr}), nil

	case dmast.Del:
		expr, err := c.Expression(s.Expr)
		if err != nil {
			return ast.NoID, err
		}
		return c.add(&ast.Del{Pos: p, Expr: expr}), nil

	case dmast.Crash:
		expr, err := c.optExpression(s.Expr)
		if err != nil {
			return ast.NoID, err
		}
		return c.add(&ast.Crash{Pos: p, Expr: expr}), nil

	case dmast.Break:
		return c.add(&ast.Break{Pos: p, Label: c.optIdent(s.Label)}), nil

	case dmast.Continue:
		return c.add(&ast.Continue{Pos: p, Label: c.optIdent(s.Label)}), nil

	case dmast.Goto:
		return c.add(&ast.Goto{Pos: p, Label: c.ident(s.Label)}), nil

	case dmast.Label:
		name := c.ident(s.Name)
		block, err := c.Block(s.Block)
		if err != nil {
			return ast.NoID, err
		}
		return c.add(&ast.Label{Pos: p, Name: name, Block: block}), nil

	case dmast.While:
		cond, err := c.Expression(s.Cond)
		if err != nil {
			return ast.NoID, err
		}
		block, err := c.Block(s.Block)
		if err != nil {
			return ast.NoID, err
		}
		return c.add(&ast.While{Pos: p, Cond: cond, Block: block}), nil

	case dmast.DoWhile:
		block, err := c.Block(s.Block)
		if err != nil {
			return ast.NoID, err
		}
		cond, err := c.Expression(s.Cond)
		if err != nil {
			return ast.NoID, err
		}
		return c.add(&ast.DoWhile{Pos: p, Block: block, Cond: cond}), nil

	case dmast.If:
		return c.ifStatement(s, p)

	case dmast.ForInfinite:
		block, err := c.Block(s.Block)
		if err != nil {
			return ast.NoID, err
		}
		return c.add(&ast.ForInfinite{Pos: p, Block: block}), nil

	case dmast.ForLoop:
		init, err := c.optStatement(s.Init)
		if err != nil {
			return ast.NoID, err
		}
		test, err := c.optExpression(s.Test)
		if err != nil {
			return ast.NoID, err
		}
		inc, err := c.optStatement(s.Inc)
		if err != nil {
			return ast.NoID, err
		}
		block, err := c.Block(s.Block)
		if err != nil {
			return ast.NoID, err
		}
		return c.add(&ast.ForLoop{Pos: p, Init: init, Test: test, Inc: inc, Block: block}), nil

	case dmast.ForList:
		name := c.ident(s.Name)
		varType := treePath(s.VarType)
		binding := c.add(&ast.Var{Name: name, DeclaredType: varType, Value: ast.NoID})
		inList, err := c.optExpression(s.InList)
		if err != nil {
			return ast.NoID, err
		}
		block, err := c.Block(s.Block)
		if err != nil {
			return ast.NoID, err
		}
		return c.add(&ast.ForList{
			Pos:     p,
			Name:    name,
			VarType: varType,
			Binding: binding,
			InList:  inList,
			Block:   block,
		}), nil

	case dmast.ForRange:
		name := c.ident(s.Name)
		start, err := c.Expression(s.Start)
		if err != nil {
			return ast.NoID, err
		}
		end, err := c.Expression(s.End)
		if err != nil {
			return ast.NoID, err
		}
		step, err := c.optExpression(s.Step)
		if err != nil {
			return ast.NoID, err
		}
		block, err := c.Block(s.Block)
		if err != nil {
			return ast.NoID, err
		}
		return c.add(&ast.ForRange{Pos: p, Name: name, Start: start, End: end, Step: step, Block: block}), nil

	case dmast.Var:
		return c.varStatement(s, p)

	case dmast.Vars:
		vars := make([]ast.ID, 0, len(s.Vars))
		for _, v := range s.Vars {
			id, err := c.varStatement(v, p)
			if err != nil {
				return ast.NoID, err
			}
			vars = append(vars, id)
		}
		return c.add(&ast.Vars{Pos: p, Vars: vars}), nil

	case dmast.Setting:
		mode := ast.SettingAssign
		switch s.Mode {
		case dmast.SettingAssign:
		case dmast.SettingIn:
			mode = ast.SettingIn
		default:
			return ast.NoID, &OperatorError{Class: "setting", Token: string(s.Mode)}
		}
		name := c.ident(s.Name)
		value, err := c.Expression(s.Value)
		if err != nil {
			return ast.NoID, err
		}
		return c.add(&ast.Setting{Pos: p, Name: name, Mode: mode, Value: value}), nil

	case dmast.Spawn:
		delay, err := c.optExpression(s.Delay)
		if err != nil {
			return ast.NoID, err
		}
		block, err := c.Block(s.Block)
		if err != nil {
			return ast.NoID, err
		}
		return c.add(&ast.Spawn{Pos: p, Delay: delay, Block: block}), nil

	case dmast.Switch:
		return c.switchStatement(s, p)

	case dmast.TryCatch:
		try, err := c.Block(s.Try)
		if err != nil {
			return ast.NoID, err
		}
		params := make([][]ast.ID, 0, len(s.CatchParams))
		for _, segments := range s.CatchParams {
			ids := make([]ast.ID, len(segments))
			for i, seg := range segments {
				ids[i] = c.ident(seg)
			}
			params = append(params, ids)
		}
		catch, err := c.Block(s.Catch)
		if err != nil {
			return ast.NoID, err
		}
		return c.add(&ast.TryCatch{Pos: p, Try: try, CatchParams: params, Catch: catch}), nil
	}

	return ast.NoID, &UnsupportedError{Construct: fmt.Sprintf("statement %T", stmt)}
}

func (c *Converter) ifStatement(s dmast.If, p ast.Pos) (ast.ID, error) {
	arms := make([]ast.ID, 0, len(s.Arms))
	for _, arm := range s.Arms {
		cond, err := c.Expression(arm.Cond)
		if err != nil {
			return ast.NoID, err
		}
		block, err := c.Block(arm.Block)
		if err != nil {
			return ast.NoID, err
		}
		arms = append(arms, c.add(&ast.IfArm{Pos: pos(arm.CondLoc), Cond: cond, Block: block}))
	}
	var elseBlock []ast.ID
	if len(s.Else) > 0 {
		var err error
		if elseBlock, err = c.Block(s.Else); err != nil {
			return ast.NoID, err
		}
	}
	return c.add(&ast.If{Pos: p, Arms: arms, Else: elseBlock}), nil
}

func (c *Converter) varStatement(v dmast.Var, p ast.Pos) (ast.ID, error) {
	name := c.ident(v.Name)
	value, err := c.optExpression(v.Value)
	if err != nil {
		return ast.NoID, err
	}
	return c.add(&ast.Var{Pos: p, Name: name, DeclaredType: treePath(v.VarType), Value: value}), nil
}

func (c *Converter) switchStatement(s dmast.Switch, p ast.Pos) (ast.ID, error) {
	input, err := c.Expression(s.Input)
	if err != nil {
		return ast.NoID, err
	}
	cases := make([]ast.ID, 0, len(s.Cases))
	for _, sc := range s.Cases {
		node := &ast.SwitchCase{Pos: pos(sc.Loc)}
		for _, m := range sc.Cases {
			switch m := m.(type) {
			case dmast.CaseExact:
				id, err := c.Expression(m.Expr)
				if err != nil {
					return ast.NoID, err
				}
				node.Exact = append(node.Exact, id)
			case dmast.CaseRange:
				start, err := c.Expression(m.Start)
				if err != nil {
					return ast.NoID, err
				}
				end, err := c.Expression(m.End)
				if err != nil {
					return ast.NoID, err
				}
				node.Ranges = append(node.Ranges, ast.CaseRange{Start: start, End: end})
			default:
				return ast.NoID, &UnsupportedError{Construct: fmt.Sprintf("switch case %T", m)}
			}
		}
		if node.Block, err = c.Block(sc.Block); err != nil {
			return ast.NoID, err
		}
		cases = append(cases, c.add(node))
	}
	var def []ast.ID
	if s.Default != nil {
		if def, err = c.Block(s.Default); err != nil {
			return ast.NoID, err
		}
	}
	return c.add(&ast.Switch{Pos: p, Input: input, Cases: cases, Default: def}), nil
}
