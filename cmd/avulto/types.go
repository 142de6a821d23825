package main

// CLIResult is the top-level JSON envelope for all commands.
type CLIResult struct {
	Command string `json:"command"`
	Results any    `json:"results"`
	Error   string `json:"error,omitempty"`
}

// CLILocation is a resolved source position.
type CLILocation struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

// CLILoad reports the outcome of a load.
type CLILoad struct {
	Source      string `json:"source"`
	Database    string `json:"database"`
	Loaded      bool   `json:"loaded"`
	Name        string `json:"name"`
	Types       int    `json:"types"`
	Files       int    `json:"files"`
	ProcsParsed bool   `json:"procs_parsed"`
}

// CLIInfo describes the stored program.
type CLIInfo struct {
	Database    string `json:"database"`
	Name        string `json:"name"`
	Types       int    `json:"types"`
	Files       int    `json:"files"`
	ProcsParsed bool   `json:"procs_parsed"`
}

// CLIType is a JSON-friendly type path.
type CLIType struct {
	Path string `json:"path"`
	Abs  string `json:"abs"`
}

// CLIVar is one var as seen from a queried type.
type CLIVar struct {
	Name       string       `json:"name"`
	Kind       string       `json:"kind"`
	Value      any          `json:"value"`
	Repr       string       `json:"repr"`
	Type       string       `json:"type,omitempty"`
	Owner      string       `json:"owner"`
	DeclaredOn string       `json:"declared_on,omitempty"`
	Loc        *CLILocation `json:"loc,omitempty"`
}

// CLIProc is a proc name on a type.
type CLIProc struct {
	Name string `json:"name"`
}

// CLIProcDecl is one proc definition.
type CLIProcDecl struct {
	Type     string       `json:"type"`
	Name     string       `json:"name"`
	Declared bool         `json:"declared"`
	Args     []string     `json:"args"`
	Loc      *CLILocation `json:"loc,omitempty"`
}

// CLINode is one node reported by a walk.
type CLINode struct {
	Kind string       `json:"kind"`
	Repr string       `json:"repr"`
	Loc  *CLILocation `json:"loc,omitempty"`
}

// CLIPath is one canonicalized path spelling.
type CLIPath struct {
	Input  string `json:"input"`
	Abs    string `json:"abs"`
	Rel    string `json:"rel"`
	Stem   string `json:"stem"`
	Parent string `json:"parent"`
}
