package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/avulto/internal/ast"
	"github.com/jward/avulto/internal/dmast"
	"github.com/jward/avulto/internal/path"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.Migrate())
	t.Cleanup(func() { s.Close() })
	return s
}

func ptr[T any](v T) *T { return &v }

func testProgram() *dmast.Program {
	return &dmast.Program{
		Name:        "test.dme",
		ProcsParsed: true,
		Files: []dmast.File{
			{ID: 1, Path: "code/obj.dm"},
			{ID: 2, Path: "code/mob.dm"},
		},
		// Deliberately out of order so parents get linked after sorting.
		Types: []dmast.Type{
			{
				Path: "/obj/item",
				Loc:  dmast.Location{File: 1, Line: 10, Column: 1},
				Vars: []dmast.TypeVar{
					{Name: "name", Value: dmast.Constant{Kind: dmast.ConstString, Text: "item"}},
					{Name: "weight", Declared: true, VarType: []string{"num"}, Value: dmast.Constant{Kind: dmast.ConstInt, Int: 3}},
					{Name: "factor", Declared: true, Value: dmast.Constant{Kind: dmast.ConstFloat, Float: 1.5}},
					{Name: "icon", Value: dmast.Constant{Kind: dmast.ConstResource, Text: "icons/item.dmi"}},
					{Name: "spawn_type", Value: dmast.Constant{Kind: dmast.ConstPath, Text: "/obj/item"}},
					{Name: "owner", Declared: true, VarType: []string{"mob"}},
				},
				Procs: []dmast.Proc{
					{
						Name: "use", Declared: true,
						Params:  []dmast.Param{{Name: "user", VarType: []string{"mob"}}, {Name: "times"}},
						Loc:     dmast.Location{File: 1, Line: 12, Column: 1},
						Body:    dmast.Block{},
						RawBody: []byte("[]\n"),
					},
					{
						Name:    "use",
						Loc:     dmast.Location{File: 1, Line: 20, Column: 1},
						Body:    dmast.Block{},
						RawBody: []byte("- loc: [1, 21, 5]\n  return: 1\n"),
					},
				},
			},
			{Path: "/"},
			{Path: "/datum"},
			{Path: "/atom"},
			{Path: "/obj"},
			{Path: "/mob", Loc: dmast.Location{File: 2, Line: 1, Column: 1},
				Procs: []dmast.Proc{{Name: "Login", Builtin: true}}},
		},
	}
}

func TestMigrateCreatesTables(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	rows, err := s.DB().Query(`SELECT name FROM sqlite_master WHERE type='table' ORDER BY name`)
	require.NoError(t, err)
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		tables = append(tables, name)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"files", "meta", "proc_params", "procs", "types", "vars"}, tables)

	// Idempotent.
	require.NoError(t, s.Migrate())
}

func TestInsertProgramRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.InsertProgram(ctx, testProgram()))

	files, err := s.Files(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[ast.FileID]string{1: "code/obj.dm", 2: "code/mob.dm"}, files)

	parsed, err := s.ProcsParsed(ctx)
	require.NoError(t, err)
	assert.True(t, parsed)

	name, ok, err := s.Meta(ctx, MetaProgramName)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "test.dme", name)

	paths, err := s.AllTypePaths(ctx)
	require.NoError(t, err)
	var rels []string
	for _, p := range paths {
		rels = append(rels, p.Rel())
	}
	assert.Equal(t, []string{"/", "/datum", "/atom", "/mob", "/obj", "/obj/item"}, rels)
}

func TestFindTypeAndAncestors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.InsertProgram(ctx, testProgram()))

	item, err := s.FindType(ctx, path.MustParse("/obj/item"))
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, "/datum/atom/movable/obj/item", item.Abs)
	assert.Equal(t, "/obj/item", item.Rel)
	assert.Equal(t, int64(1), item.FileID)
	assert.Equal(t, 10, item.Line)

	// Spelling does not matter.
	same, err := s.FindType(ctx, path.MustParse("/datum/atom/movable/obj/item"))
	require.NoError(t, err)
	require.NotNil(t, same)
	assert.Equal(t, item.ID, same.ID)

	missing, err := s.FindType(ctx, path.MustParse("/obj/nothing"))
	require.NoError(t, err)
	assert.Nil(t, missing)

	// /atom/movable is absent, so /obj hangs off /atom.
	chain, err := s.Ancestors(ctx, item.ID)
	require.NoError(t, err)
	var abs []string
	for _, a := range chain {
		abs = append(abs, a.Abs)
	}
	assert.Equal(t, []string{"/datum/atom/movable/obj", "/datum/atom", "/datum", "/"}, abs)

	root, err := s.FindType(ctx, path.Root())
	require.NoError(t, err)
	require.NotNil(t, root)
	assert.Nil(t, root.ParentID)
	chain, err = s.Ancestors(ctx, root.ID)
	require.NoError(t, err)
	assert.Empty(t, chain)

	byID, err := s.TypeByID(ctx, *item.ParentID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "/obj", byID.Rel)
}

func TestVarsOf(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.InsertProgram(ctx, testProgram()))

	item, err := s.FindType(ctx, path.MustParse("/obj/item"))
	require.NoError(t, err)
	require.NotNil(t, item)

	vars, err := s.VarsOf(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, vars, 6)

	byName := map[string]*Var{}
	for _, v := range vars {
		byName[v.Name] = v
	}
	assert.Equal(t, "factor", vars[0].Name)
	assert.True(t, byName["weight"].Declared)
	assert.False(t, byName["name"].Declared)
	assert.Equal(t, []string{"num"}, byName["weight"].DeclType)
	assert.Nil(t, byName["name"].DeclType)

	tests := []struct {
		name string
		want ast.Constant
	}{
		{"name", ast.StringConst("item")},
		{"weight", ast.IntConst(3)},
		{"factor", ast.FloatConst(1.5)},
		{"icon", ast.ResourceConst("icons/item.dmi")},
		{"spawn_type", ast.PathConst(path.MustParse("/obj/item"))},
		{"owner", ast.NullConst()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := byName[tt.name].Constant()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProcsAndParams(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.InsertProgram(ctx, testProgram()))

	item, err := s.FindType(ctx, path.MustParse("/obj/item"))
	require.NoError(t, err)
	require.NotNil(t, item)

	procs, err := s.ProcsOf(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, procs, 2)
	assert.True(t, procs[0].Declared)
	assert.False(t, procs[1].Declared)
	assert.True(t, procs[0].HasBody)

	last, err := s.FindProc(ctx, item.ID, "use")
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, procs[1].ID, last.ID)
	assert.Equal(t, 20, last.Line)

	body, err := s.ProcBody(ctx, last.ID)
	require.NoError(t, err)
	assert.Equal(t, "- loc: [1, 21, 5]\n  return: 1\n", string(body))

	params, err := s.ParamsOf(ctx, []int64{procs[0].ID, procs[1].ID})
	require.NoError(t, err)
	require.Len(t, params[procs[0].ID], 2)
	assert.Equal(t, "user", params[procs[0].ID][0].Name)
	assert.Equal(t, []string{"mob"}, params[procs[0].ID][0].TypePath)
	assert.Nil(t, params[procs[0].ID][1].TypePath)
	assert.Empty(t, params[procs[1].ID])

	none, err := s.FindProc(ctx, item.ID, "missing")
	require.NoError(t, err)
	assert.Nil(t, none)

	empty, err := s.ParamsOf(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestBodiesDroppedWhenNotParsed(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)
	prog := testProgram()
	prog.ProcsParsed = false
	require.NoError(t, s.InsertProgram(ctx, prog))

	parsed, err := s.ProcsParsed(ctx)
	require.NoError(t, err)
	assert.False(t, parsed)

	item, err := s.FindType(ctx, path.MustParse("/obj/item"))
	require.NoError(t, err)
	require.NotNil(t, item)
	p, err := s.FindProc(ctx, item.ID, "use")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.False(t, p.HasBody)

	body, err := s.ProcBody(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, body)
}

func TestInsertProgramReplaces(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.InsertProgram(ctx, testProgram()))
	require.NoError(t, s.InsertProgram(ctx, &dmast.Program{
		Name:  "small.dme",
		Types: []dmast.Type{{Path: "/"}, {Path: "/turf"}},
	}))

	paths, err := s.AllTypePaths(ctx)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, "/turf", paths[1].Rel())

	files, err := s.Files(ctx)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestInsertProgramDuplicateTypeRollsBack(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.InsertProgram(ctx, testProgram()))

	err := s.InsertProgram(ctx, &dmast.Program{
		Types: []dmast.Type{{Path: "/obj"}, {Path: "/datum/atom/movable/obj"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate type")

	// The earlier program survives the failed load.
	item, err := s.FindType(ctx, path.MustParse("/obj/item"))
	require.NoError(t, err)
	assert.NotNil(t, item)
}

func TestMetaAndClear(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	_, ok, err := s.Meta(ctx, MetaDumpHash)
	require.NoError(t, err)
	assert.False(t, ok)

	parsed, err := s.ProcsParsed(ctx)
	require.NoError(t, err)
	assert.False(t, parsed)

	require.NoError(t, s.SetMeta(ctx, MetaDumpHash, "a"))
	require.NoError(t, s.SetMeta(ctx, MetaDumpHash, "b"))
	v, ok, err := s.Meta(ctx, MetaDumpHash)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "b", v)

	require.NoError(t, s.InsertProgram(ctx, testProgram()))
	require.NoError(t, s.Clear(ctx))
	paths, err := s.AllTypePaths(ctx)
	require.NoError(t, err)
	assert.Empty(t, paths)
	_, ok, err = s.Meta(ctx, MetaDumpHash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDumpHash(t *testing.T) {
	t.Parallel()
	a := DumpHash([]byte("types: []"))
	assert.Len(t, a, 64)
	assert.Equal(t, a, DumpHash([]byte("types: []")))
	assert.NotEqual(t, a, DumpHash([]byte("types: [] ")))
}

func TestVarConstantUnknownKind(t *testing.T) {
	t.Parallel()
	v := &Var{Name: "x", ValueKind: "list", ValueText: ptr("[]")}
	_, err := v.Constant()
	assert.ErrorContains(t, err, "unknown value kind")
}
