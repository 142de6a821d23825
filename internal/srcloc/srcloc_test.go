package srcloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/avulto/internal/ast"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	table := NewTable(map[ast.FileID]string{
		1: "code/foo.dm",
		2: "code/bar.dm",
	})

	loc, ok := table.Resolve(&ast.Location{File: 2, Line: 14, Column: 3})
	require.True(t, ok)
	assert.Equal(t, Location{File: "code/bar.dm", Line: 14, Column: 3}, loc)
	assert.Equal(t, "code/bar.dm:14:3", loc.String())

	_, ok = table.Resolve(nil)
	assert.False(t, ok)

	loc, ok = table.Resolve(&ast.Location{File: 9, Line: 1, Column: 1})
	require.True(t, ok)
	assert.Empty(t, loc.File)
}

func TestTableFiles(t *testing.T) {
	t.Parallel()

	src := map[ast.FileID]string{3: "c.dm", 1: "a.dm"}
	table := NewTable(src)
	src[5] = "e.dm"

	assert.Equal(t, []ast.FileID{1, 3}, table.Files())
	p, ok := table.File(3)
	assert.True(t, ok)
	assert.Equal(t, "c.dm", p)

	var empty *Table
	assert.Nil(t, empty.Files())
	_, ok = empty.Resolve(&ast.Location{Line: 1})
	assert.True(t, ok)
}
