package ast

import (
	"strconv"

	"github.com/jward/avulto/internal/path"
)

// ConstKind tags the value held by a Constant.
type ConstKind uint8

const (
	ConstNull ConstKind = iota
	ConstInt
	ConstFloat
	ConstString
	ConstResource
	ConstPath
	ConstProcMacro
)

func (k ConstKind) String() string {
	switch k {
	case ConstInt:
		return "Int"
	case ConstFloat:
		return "Float"
	case ConstString:
		return "String"
	case ConstResource:
		return "Resource"
	case ConstPath:
		return "Path"
	case ConstProcMacro:
		return "ProcMacro"
	}
	return "Null"
}

// Constant is a literal value. Only the field selected by Kind is set.
type Constant struct {
	Kind  ConstKind
	Int   int32
	Float float32
	Text  string
	Path  path.Path
}

func NullConst() Constant             { return Constant{Kind: ConstNull} }
func IntConst(v int32) Constant       { return Constant{Kind: ConstInt, Int: v} }
func FloatConst(v float32) Constant   { return Constant{Kind: ConstFloat, Float: v} }
func StringConst(s string) Constant   { return Constant{Kind: ConstString, Text: s} }
func ResourceConst(s string) Constant { return Constant{Kind: ConstResource, Text: s} }
func PathConst(p path.Path) Constant  { return Constant{Kind: ConstPath, Path: p} }
func ProcMacroConst() Constant        { return Constant{Kind: ConstProcMacro} }

// Value returns the Go value: nil, int32, float32, string or path.Path.
// Resources yield their file name; __PROC__ yields the Constant itself.
func (c Constant) Value() any {
	switch c.Kind {
	case ConstInt:
		return c.Int
	case ConstFloat:
		return c.Float
	case ConstString, ConstResource:
		return c.Text
	case ConstPath:
		return c.Path
	case ConstProcMacro:
		return c
	}
	return nil
}

// String renders the value the way DM source would spell it.
func (c Constant) String() string {
	switch c.Kind {
	case ConstInt:
		return strconv.FormatInt(int64(c.Int), 10)
	case ConstFloat:
		return strconv.FormatFloat(float64(c.Float), 'g', -1, 32)
	case ConstString:
		return strconv.Quote(c.Text)
	case ConstResource:
		return "'" + c.Text + "'"
	case ConstPath:
		return c.Path.String()
	case ConstProcMacro:
		return "__PROC__"
	}
	return "null"
}
