package runtime

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/risor-io/risor/object"

	"github.com/jward/avulto/internal/ast"
	"github.com/jward/avulto/internal/path"
	"github.com/jward/avulto/internal/srcloc"
	"github.com/jward/avulto/internal/walk"
)

var (
	idType       = reflect.TypeFor[ast.ID]()
	constantType = reflect.TypeFor[ast.Constant]()
	pathType     = reflect.TypeFor[path.Path]()
	stringerType = reflect.TypeFor[fmt.Stringer]()
)

// nodeConverter turns the nodes of one visited tree into Risor maps.
//
// Every map has "kind", "repr" and "loc". The node's own fields follow in
// snake_case, with child IDs replaced by their converted nodes, absent
// children by nil, constants by their Risor value, paths by their relative
// spelling and operators by their name. Constant nodes also carry
// "value_kind", the kind name of their literal.
type nodeConverter struct {
	visit walk.Visit
}

func (c nodeConverter) node(id ast.ID) object.Object {
	n := c.visit.Tree.Node(id)
	if n == nil {
		return object.Nil
	}
	m := map[string]object.Object{
		"kind": object.NewString(n.Kind().String()),
		"repr": object.NewString(c.visit.Tree.Render(id)),
		"loc":  locationObject(c.visit.LocOf(id)),
	}
	if k, ok := n.(*ast.Const); ok {
		m["value_kind"] = object.NewString(k.Value.Kind.String())
	}
	rv := reflect.ValueOf(n).Elem()
	c.fields(rv, m)
	return object.NewMap(m)
}

func (c nodeConverter) fields(rv reflect.Value, into map[string]object.Object) {
	rt := rv.Type()
	for i := range rt.NumField() {
		f := rt.Field(i)
		if f.Anonymous || !f.IsExported() {
			continue
		}
		into[snakeCase(f.Name)] = c.value(rv.Field(i))
	}
}

func (c nodeConverter) value(v reflect.Value) object.Object {
	switch v.Type() {
	case idType:
		return c.node(ast.ID(v.Int()))
	case constantType:
		return constantObject(v.Interface().(ast.Constant))
	case pathType:
		p := v.Interface().(path.Path)
		if p.IsZero() {
			return object.Nil
		}
		return object.NewString(p.Rel())
	}
	if v.Type().Implements(stringerType) {
		return object.NewString(v.Interface().(fmt.Stringer).String())
	}

	switch v.Kind() {
	case reflect.Slice:
		items := make([]object.Object, v.Len())
		for i := range items {
			items[i] = c.value(v.Index(i))
		}
		return object.NewList(items)
	case reflect.Struct:
		m := make(map[string]object.Object, v.NumField())
		c.fields(v, m)
		return object.NewMap(m)
	case reflect.Pointer:
		if v.IsNil() {
			return object.Nil
		}
		return c.value(v.Elem())
	case reflect.String:
		return object.NewString(v.String())
	case reflect.Bool:
		return object.NewBool(v.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return object.NewInt(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return object.NewInt(int64(v.Uint()))
	case reflect.Float32, reflect.Float64:
		return object.NewFloat(v.Float())
	}
	return object.NewString(fmt.Sprint(v.Interface()))
}

// constantObject maps a literal onto the nearest Risor value.
func constantObject(c ast.Constant) object.Object {
	switch c.Kind {
	case ast.ConstNull:
		return object.Nil
	case ast.ConstInt:
		return object.NewInt(int64(c.Int))
	case ast.ConstFloat:
		return object.NewFloat(float64(c.Float))
	case ast.ConstString, ast.ConstResource:
		return object.NewString(c.Text)
	case ast.ConstPath:
		return object.NewString(c.Path.Rel())
	default:
		return object.NewString(c.String())
	}
}

func locationObject(loc *srcloc.Location) object.Object {
	if loc == nil {
		return object.Nil
	}
	return object.NewMap(map[string]object.Object{
		"file":   object.NewString(loc.File),
		"line":   object.NewInt(int64(loc.Line)),
		"column": object.NewInt(int64(loc.Column)),
	})
}

func pathObject(p path.Path) object.Object {
	return object.NewMap(map[string]object.Object{
		"abs":  object.NewString(p.Abs()),
		"rel":  object.NewString(p.Rel()),
		"stem": object.NewString(p.Stem()),
	})
}

// snakeCase spells a Go field name the way scripts read it: InList becomes
// in_list and LHS becomes lhs.
func snakeCase(name string) string {
	runes := []rune(name)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 {
			prevLower := unicode.IsLower(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prevLower || (nextLower && unicode.IsUpper(runes[i-1])) {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
