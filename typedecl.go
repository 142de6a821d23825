package avulto

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/jward/avulto/internal/ast"
	"github.com/jward/avulto/internal/path"
	"github.com/jward/avulto/internal/store"
	"github.com/jward/avulto/internal/walk"
)

// NameFilter selects which var or proc names a TypeDecl reports.
type NameFilter int

const (
	// AllNames reports every name the type itself records, declared or
	// overridden.
	AllNames NameFilter = iota
	// Declared reports names the type introduces with var/ or proc/.
	Declared
	// Modified reports inherited names the type overrides.
	Modified
	// Unmodified reports inherited names the type leaves alone.
	Unmodified
)

var filterNames = [...]string{"all", "declared", "modified", "unmodified"}

func (f NameFilter) String() string {
	if f >= 0 && int(f) < len(filterNames) {
		return filterNames[f]
	}
	return fmt.Sprintf("NameFilter(%d)", int(f))
}

// ParseNameFilter reads a filter name. The empty string means AllNames.
func ParseNameFilter(s string) (NameFilter, error) {
	if s == "" {
		return AllNames, nil
	}
	for i, name := range filterNames {
		if strings.EqualFold(s, name) {
			return NameFilter(i), nil
		}
	}
	return AllNames, fmt.Errorf("avulto: unknown name filter %q", s)
}

// TypeDecl is one type of the loaded object tree.
type TypeDecl struct {
	engine *Engine
	id     int64

	Path Path
	// Loc is nil when the type has no recorded definition site.
	Loc *Location
}

func (t *TypeDecl) String() string {
	return "<TypeDecl " + t.Path.Rel() + ">"
}

// VarNames returns the sorted var names selected by filter.
func (t *TypeDecl) VarNames(ctx context.Context, filter NameFilter) ([]string, error) {
	own, err := t.engine.store.VarsOf(ctx, t.id)
	if err != nil {
		return nil, fmt.Errorf("avulto: %w", err)
	}
	entries := make([]nameEntry, len(own))
	for i, v := range own {
		entries[i] = nameEntry{name: v.Name, declared: v.Declared}
	}
	return t.filterNames(ctx, entries, filter, func(id int64) ([]string, error) {
		vars, err := t.engine.store.VarsOf(ctx, id)
		names := make([]string, len(vars))
		for i, v := range vars {
			names[i] = v.Name
		}
		return names, err
	})
}

// ProcNames returns the sorted proc names selected by filter. A name counts
// as declared when any of the type's definitions declares it.
func (t *TypeDecl) ProcNames(ctx context.Context, filter NameFilter) ([]string, error) {
	own, err := t.engine.store.ProcsOf(ctx, t.id)
	if err != nil {
		return nil, fmt.Errorf("avulto: %w", err)
	}
	entries := make([]nameEntry, len(own))
	for i, p := range own {
		entries[i] = nameEntry{name: p.Name, declared: p.Declared}
	}
	return t.filterNames(ctx, entries, filter, func(id int64) ([]string, error) {
		procs, err := t.engine.store.ProcsOf(ctx, id)
		names := make([]string, len(procs))
		for i, p := range procs {
			names[i] = p.Name
		}
		return names, err
	})
}

type nameEntry struct {
	name     string
	declared bool
}

func (t *TypeDecl) filterNames(ctx context.Context, own []nameEntry, filter NameFilter, inherited func(typeID int64) ([]string, error)) ([]string, error) {
	declared := make(map[string]bool, len(own))
	for _, e := range own {
		declared[e.name] = declared[e.name] || e.declared
	}

	var out []string
	switch filter {
	case AllNames:
		for name := range declared {
			out = append(out, name)
		}
	case Declared, Modified:
		for name, d := range declared {
			if d == (filter == Declared) {
				out = append(out, name)
			}
		}
	case Unmodified:
		ancestors, err := t.engine.store.Ancestors(ctx, t.id)
		if err != nil {
			return nil, fmt.Errorf("avulto: %w", err)
		}
		for _, a := range ancestors {
			names, err := inherited(a.ID)
			if err != nil {
				return nil, fmt.Errorf("avulto: %w", err)
			}
			for _, name := range names {
				if _, ok := declared[name]; !ok {
					out = append(out, name)
				}
			}
		}
	default:
		return nil, fmt.Errorf("avulto: unknown name filter %s", filter)
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

// Value returns the compile-time value of name, looking through ancestors
// when the type does not record the var itself.
func (t *TypeDecl) Value(ctx context.Context, name string) (Constant, error) {
	decl, err := t.VarDecl(ctx, name)
	if err != nil {
		return Constant{}, err
	}
	return decl.Value, nil
}

// VarDecl describes a var as seen from one type.
type VarDecl struct {
	Name string
	// Type is the declared var type, the zero Path for untyped vars.
	Type Path
	// Value is the value in effect on the queried type.
	Value Constant
	// Owner is the type that records Value. DeclaredOn is the type whose
	// var/ introduces the name, the zero Path when no loaded type does.
	Owner      Path
	DeclaredOn Path
	Loc        *Location
}

// VarDecl resolves name on the type and its ancestors.
func (t *TypeDecl) VarDecl(ctx context.Context, name string) (*VarDecl, error) {
	ancestors, err := t.engine.store.Ancestors(ctx, t.id)
	if err != nil {
		return nil, fmt.Errorf("avulto: %w", err)
	}
	chain := append([]*store.Type{{ID: t.id, Rel: t.Path.Rel()}}, ancestors...)

	var decl *VarDecl
	for _, ty := range chain {
		vars, err := t.engine.store.VarsOf(ctx, ty.ID)
		if err != nil {
			return nil, fmt.Errorf("avulto: %w", err)
		}
		i := slices.IndexFunc(vars, func(v *store.Var) bool { return v.Name == name })
		if i < 0 {
			continue
		}
		v := vars[i]
		if decl == nil {
			value, err := v.Constant()
			if err != nil {
				return nil, fmt.Errorf("avulto: %w", err)
			}
			loc, err := t.engine.resolve(ctx, v.FileID, v.Line, v.Col)
			if err != nil {
				return nil, err
			}
			decl = &VarDecl{
				Name:  name,
				Value: value,
				Owner: path.MakeTrusted(ty.Rel),
				Loc:   loc,
			}
		}
		if v.Declared {
			decl.DeclaredOn = path.MakeTrusted(ty.Rel)
			if len(v.DeclType) > 0 {
				decl.Type = path.FromTreePath(v.DeclType)
			}
			break
		}
	}
	if decl == nil {
		return nil, &MissingVarError{Type: t.Path.Rel(), Var: name}
	}
	return decl, nil
}

// ProcArg is one declared proc parameter.
type ProcArg struct {
	Name string
	// Type is the zero Path for untyped parameters.
	Type Path
}

func (a ProcArg) String() string {
	if a.Type.IsZero() {
		return a.Name
	}
	return a.Type.Rel() + "/" + a.Name
}

// ProcDecl is one definition of a proc on a type.
type ProcDecl struct {
	TypePath Path
	Name     string
	Declared bool
	Args     []ProcArg
	Loc      *Location
}

func (p ProcDecl) String() string {
	return "<Proc " + p.TypePath.Rel() + "/proc/" + p.Name + ">"
}

// ProcDecls returns every non-builtin definition of proc recorded on the
// type, in definition order. It returns an empty list when there is none.
func (t *TypeDecl) ProcDecls(ctx context.Context, proc string) ([]ProcDecl, error) {
	procs, err := t.engine.store.ProcsOf(ctx, t.id)
	if err != nil {
		return nil, fmt.Errorf("avulto: %w", err)
	}
	var defs []*store.Proc
	var ids []int64
	for _, p := range procs {
		if p.Name == proc && !p.Builtin {
			defs = append(defs, p)
			ids = append(ids, p.ID)
		}
	}
	params, err := t.engine.store.ParamsOf(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("avulto: %w", err)
	}

	out := make([]ProcDecl, 0, len(defs))
	for _, p := range defs {
		loc, err := t.engine.resolve(ctx, p.FileID, p.Line, p.Col)
		if err != nil {
			return nil, err
		}
		decl := ProcDecl{
			TypePath: t.Path,
			Name:     p.Name,
			Declared: p.Declared,
			Loc:      loc,
		}
		for _, param := range params[p.ID] {
			arg := ProcArg{Name: param.Name}
			if len(param.TypePath) > 0 {
				arg.Type = path.FromTreePath(param.TypePath)
			}
			decl.Args = append(decl.Args, arg)
		}
		out = append(out, decl)
	}
	return out, nil
}

// WalkProc walks proc as resolved from this type.
func (t *TypeDecl) WalkProc(ctx context.Context, proc string, v walk.Visitor) error {
	return t.engine.WalkProc(ctx, t.Path.Rel(), proc, v)
}

// ProcTree converts proc as resolved from this type.
func (t *TypeDecl) ProcTree(ctx context.Context, proc string) (*ast.Tree, []ast.ID, error) {
	return t.engine.ProcTree(ctx, t.Path.Rel(), proc)
}
