package store

// File is one row of the files table.
type File struct {
	ID   int64
	Path string
}

// Type is one type of the object tree. Abs and Rel are the two spellings
// of its path; lookups go through Abs.
type Type struct {
	ID       int64
	Abs      string
	Rel      string
	ParentID *int64
	FileID   int64
	Line     int
	Col      int
}

// Var is a var entry recorded on one type. Declared distinguishes
// "var/name" from a plain override.
type Var struct {
	ID        int64
	TypeID    int64
	Name      string
	Declared  bool
	DeclType  []string
	ValueKind string
	// ValueText is the stored form of the value. It is nil for null values.
	ValueText *string
	FileID    int64
	Line      int
	Col       int
}

// Proc is one definition of a proc on one type. A type may carry several
// definitions of the same name; later rows override earlier ones.
type Proc struct {
	ID       int64
	TypeID   int64
	Name     string
	Declared bool
	Builtin  bool
	FileID   int64
	Line     int
	Col      int
	// HasBody reports whether body text was recorded for this definition.
	HasBody bool
}

// Param is one declared proc parameter, in declaration order.
type Param struct {
	ProcID   int64
	Idx      int
	Name     string
	TypePath []string
}

// Meta keys.
const (
	MetaProcsParsed = "procs_parsed"
	MetaProgramName = "program_name"
	MetaDumpHash    = "dump_hash"
)
