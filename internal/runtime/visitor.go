package runtime

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/risor-io/risor/object"

	"github.com/jward/avulto/internal/ast"
	"github.com/jward/avulto/internal/walk"
)

// ErrNoCallFunc is returned when a Risor function handler is invoked outside
// a running script.
var ErrNoCallFunc = errors.New("runtime: no risor call function in context")

// ScriptVisitor adapts a Risor map of visit_<Kind> functions to
// walk.Visitor. visit_Expr claims every expression. Keys that are not
// handler names are ignored.
type ScriptVisitor struct {
	handlers map[ast.Kind]object.Object
}

// NewScriptVisitor reads the handlers out of m. Handler values must be Risor
// functions or builtins.
func NewScriptVisitor(m *object.Map) (*ScriptVisitor, error) {
	v := &ScriptVisitor{handlers: make(map[ast.Kind]object.Object)}
	for name, fn := range m.Value() {
		suffix, ok := strings.CutPrefix(name, "visit_")
		if !ok {
			continue
		}
		kind, ok := ast.ParseKind(suffix)
		if suffix == "Expr" {
			kind, ok = walk.AnyExpr, true
		}
		if !ok {
			continue
		}
		switch fn.(type) {
		case *object.Function, object.Callable:
		default:
			return nil, fmt.Errorf("runtime: visitor %s: expected function, got %s", name, fn.Type())
		}
		v.handlers[kind] = fn
	}
	return v, nil
}

// Kinds lists the node kinds the visitor handles, in kind order. A
// visit_Expr handler is reported by ExprHandler instead.
func (v *ScriptVisitor) Kinds() []ast.Kind {
	var out []ast.Kind
	for _, k := range ast.Kinds() {
		if _, ok := v.handlers[k]; ok {
			out = append(out, k)
		}
	}
	return out
}

// ExprHandler returns the visit_Expr handler, or nil.
func (v *ScriptVisitor) ExprHandler() walk.Handler { return v.Handler(walk.AnyExpr) }

func (v *ScriptVisitor) Handler(kind ast.Kind) walk.Handler {
	fn, ok := v.handlers[kind]
	if !ok {
		return nil
	}
	return func(ctx context.Context, visit walk.Visit) error {
		conv := nodeConverter{visit: visit}
		args := []object.Object{conv.node(visit.ID), locationObject(visit.Loc)}
		return callHandler(ctx, walk.HandlerName(kind), fn, args)
	}
}

func callHandler(ctx context.Context, name string, fn object.Object, args []object.Object) error {
	var result object.Object
	switch fn := fn.(type) {
	case *object.Function:
		call, ok := object.GetCallFunc(ctx)
		if !ok {
			return ErrNoCallFunc
		}
		res, err := call(ctx, fn, args)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		result = res
	case object.Callable:
		result = fn.Call(ctx, args...)
	}
	if e, ok := result.(*object.Error); ok {
		return fmt.Errorf("%s: %w", name, e.Value())
	}
	return nil
}
