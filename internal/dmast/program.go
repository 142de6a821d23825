package dmast

// Program is one loaded DM environment: its file table and object tree.
type Program struct {
	// Name is the environment's label, usually the .dme file name.
	Name  string
	Files []File
	// ProcsParsed records whether the parser was asked for proc bodies.
	ProcsParsed bool
	Types       []Type
}

// File is one entry of the file table.
type File struct {
	ID   FileID
	Path string
}

// Type is one node of the object tree. Path is the type's path as the
// object tree spells it; the root type has path "/".
type Type struct {
	Path  string
	Loc   Location
	Vars  []TypeVar
	Procs []Proc
}

// TypeVar is one var entry on a type. Declared is true for "var/x" and
// false when the type only overrides an inherited value.
type TypeVar struct {
	Name     string
	Declared bool
	VarType  []string
	Value    Constant
	Loc      Location
}

// Proc is one proc entry on a type. Declared is true for "proc/x" or
// "verb/x" and false for an override of an inherited proc. Builtin procs
// come from the engine's stdlib rather than project code.
type Proc struct {
	Name     string
	Declared bool
	Builtin  bool
	Params   []Param
	Loc      Location
	// Body is nil when the proc has no recorded code, either because bodies
	// were not parsed or because the proc is a stub.
	Body Block
	// RawBody is the dump encoding of Body, kept so storage can defer
	// conversion until a walk needs it.
	RawBody []byte
}

// Param is one declared proc parameter.
type Param struct {
	Name    string
	VarType []string
}

// ConstantKind tags the value of a type var.
type ConstantKind string

const (
	ConstNull     ConstantKind = "null"
	ConstInt      ConstantKind = "int"
	ConstFloat    ConstantKind = "float"
	ConstString   ConstantKind = "string"
	ConstResource ConstantKind = "resource"
	ConstPath     ConstantKind = "path"
)

// Constant is a compile-time var value as the object tree reports it.
// Text carries the string form of string, resource and path values.
type Constant struct {
	Kind  ConstantKind
	Int   int32
	Float float32
	Text  string
}
