// Package srcloc turns the compact locations recorded on nodes into
// file/line/column descriptors a host can print.
package srcloc

import (
	"fmt"
	"maps"
	"slices"

	"github.com/jward/avulto/internal/ast"
)

// Location is a resolved source position.
type Location struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// Table maps file IDs to paths for one loaded program. It is built once and
// read-only afterwards.
type Table struct {
	files map[ast.FileID]string
}

// NewTable copies files into a new Table.
func NewTable(files map[ast.FileID]string) *Table {
	return &Table{files: maps.Clone(files)}
}

// Resolve looks up loc's file. It reports false only when loc is nil, that
// is, when the node was never attributed. An unknown file ID resolves with
// an empty file name.
func (t *Table) Resolve(loc *ast.Location) (Location, bool) {
	if loc == nil {
		return Location{}, false
	}
	var file string
	if t != nil {
		file = t.files[loc.File]
	}
	return Location{File: file, Line: int(loc.Line), Column: int(loc.Column)}, true
}

// File returns the path registered for id.
func (t *Table) File(id ast.FileID) (string, bool) {
	if t == nil {
		return "", false
	}
	p, ok := t.files[id]
	return p, ok
}

// Files lists the registered file IDs in ascending order.
func (t *Table) Files() []ast.FileID {
	if t == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(t.files))
}
