package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/risor-io/risor/object"

	"github.com/jward/avulto/internal/path"
)

// makePathFn creates the "path" host function.
//
// path(raw) → {abs, rel, stem}
func makePathFn() *object.Builtin {
	return object.NewBuiltin("path", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("path", 1, len(args))
		}
		raw, err := toString(args[0])
		if err != nil {
			return object.Errorf("path: %v", err)
		}
		p, err := path.MakeUntrusted(raw)
		if err != nil {
			return object.NewError(err)
		}
		return pathObject(p)
	})
}

// makePathRelationFn creates "path_child" and "path_parent".
//
// path_child(p, other, strict=false) → bool
func makePathRelationFn(name string, child bool) *object.Builtin {
	return object.NewBuiltin(name, func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) < 2 || len(args) > 3 {
			return object.NewArgsRangeError(name, 2, 3, len(args))
		}
		p, err := pathArg(args[0])
		if err != nil {
			return object.Errorf("%s: %v", name, err)
		}
		other, err := pathArg(args[1])
		if err != nil {
			return object.Errorf("%s: %v", name, err)
		}
		strict := len(args) == 3 && args[2].IsTruthy()
		if child {
			return object.NewBool(p.IsChildOf(other, strict))
		}
		return object.NewBool(p.IsParentOf(other, strict))
	})
}

// makeTypesofFn creates "typesof" and "subtypesof" over the host's object
// tree.
//
// typesof(prefix) → [rel, ...]
func makeTypesofFn(name string, fn func(context.Context, string) ([]path.Path, error)) *object.Builtin {
	return object.NewBuiltin(name, func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError(name, 1, len(args))
		}
		p, err := pathArg(args[0])
		if err != nil {
			return object.Errorf("%s: %v", name, err)
		}
		paths, err := fn(ctx, p.Rel())
		if err != nil {
			return object.NewError(err)
		}
		items := make([]object.Object, len(paths))
		for i, p := range paths {
			items[i] = object.NewString(p.Rel())
		}
		return object.NewList(items)
	})
}

// makeWalkProcFn creates the "walk_proc" host function. The visitor is a
// map of visit_<Kind> functions; each is called with (node, loc).
//
// walk_proc(type, proc, visitor) → nil
func makeWalkProcFn(host Host) *object.Builtin {
	return object.NewBuiltin("walk_proc", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 3 {
			return object.NewArgsError("walk_proc", 3, len(args))
		}
		typePath, err := pathArg(args[0])
		if err != nil {
			return object.Errorf("walk_proc: %v", err)
		}
		proc, err := toString(args[1])
		if err != nil {
			return object.Errorf("walk_proc: proc name: %v", err)
		}
		m, ok := args[2].(*object.Map)
		if !ok {
			return object.Errorf("walk_proc: visitor must be a map, got %s", args[2].Type())
		}
		visitor, err := NewScriptVisitor(m)
		if err != nil {
			return object.NewError(err)
		}
		if err := host.WalkProc(ctx, typePath.Rel(), proc, visitor); err != nil {
			return object.NewError(err)
		}
		return object.Nil
	})
}

// makeLogFn creates the "log" host function. Arguments are joined with
// spaces and logged at info level.
//
// log(msg, ...)
func makeLogFn(logger *slog.Logger) *object.Builtin {
	return object.NewBuiltin("log", func(ctx context.Context, args ...object.Object) object.Object {
		parts := make([]string, len(args))
		for i, arg := range args {
			if s, ok := arg.(*object.String); ok {
				parts[i] = s.Value()
			} else {
				parts[i] = arg.Inspect()
			}
		}
		logger.InfoContext(ctx, strings.Join(parts, " "), "source", "script")
		return object.Nil
	})
}

// pathArg accepts either a path spelling or a map produced by path().
func pathArg(obj object.Object) (path.Path, error) {
	switch v := obj.(type) {
	case *object.String:
		return path.MakeUntrusted(v.Value())
	case *object.Map:
		rel, ok := v.Value()["rel"].(*object.String)
		if !ok {
			return path.Path{}, fmt.Errorf("path map has no rel")
		}
		return path.MakeUntrusted(rel.Value())
	default:
		return path.Path{}, fmt.Errorf("expected path, got %s", obj.Type())
	}
}

func toString(obj object.Object) (string, error) {
	if s, ok := obj.(*object.String); ok {
		return s.Value(), nil
	}
	return "", fmt.Errorf("expected string, got %s", obj.Type())
}
