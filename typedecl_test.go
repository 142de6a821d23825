package avulto

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/avulto/internal/ast"
	"github.com/jward/avulto/internal/path"
	"github.com/jward/avulto/internal/srcloc"
)

func typeDecl(t *testing.T, e *Engine, raw string) *TypeDecl {
	t.Helper()
	td, err := e.TypeDecl(context.Background(), raw)
	require.NoError(t, err)
	return td
}

func TestTypeDecl_Basics(t *testing.T) {
	t.Parallel()
	e := loadedEngine(t)

	foo := typeDecl(t, e, "/obj/foo")
	assert.Equal(t, "<TypeDecl /obj/foo>", foo.String())
	assert.Equal(t, "/datum/atom/movable/obj/foo", foo.Path.Abs())
	require.NotNil(t, foo.Loc)
	assert.Equal(t, srcloc.Location{File: "code/foo.dm", Line: 1, Column: 1}, *foo.Loc)

	// Absolute spellings find the same type.
	abs := typeDecl(t, e, "/datum/atom/movable/obj/foo")
	assert.True(t, abs.Path.Equal(foo.Path))

	root := typeDecl(t, e, "/")
	assert.True(t, root.Path.IsRoot())
	assert.Nil(t, root.Loc)
}

func TestParseNameFilter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want NameFilter
	}{
		{"", AllNames},
		{"all", AllNames},
		{"declared", Declared},
		{"Modified", Modified},
		{"UNMODIFIED", Unmodified},
	}
	for _, tt := range tests {
		got, err := ParseNameFilter(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseNameFilter("inherited")
	assert.EqualError(t, err, `avulto: unknown name filter "inherited"`)
	assert.Equal(t, "declared", Declared.String())
	assert.Equal(t, "NameFilter(9)", NameFilter(9).String())
}

func TestTypeDecl_VarNames(t *testing.T) {
	t.Parallel()
	e := loadedEngine(t)
	ctx := context.Background()

	tests := []struct {
		typePath string
		filter   NameFilter
		want     []string
	}{
		{"/obj/foo", AllNames, []string{"a", "icon", "icon_state"}},
		{"/obj/foo", Declared, []string{"a"}},
		{"/obj/foo", Modified, []string{"icon", "icon_state"}},
		{"/obj/foo", Unmodified, []string{"name"}},
		{"/obj/foo/bar", AllNames, []string{"a"}},
		{"/obj/foo/bar", Declared, nil},
		{"/obj/foo/bar", Modified, []string{"a"}},
		{"/obj/foo/bar", Unmodified, []string{"icon", "icon_state", "name"}},
		{"/obj/foo/baz", AllNames, nil},
		{"/obj/foo/baz", Unmodified, []string{"a", "icon", "icon_state", "name"}},
	}
	for _, tt := range tests {
		t.Run(tt.typePath+"/"+tt.filter.String(), func(t *testing.T) {
			got, err := typeDecl(t, e, tt.typePath).VarNames(ctx, tt.filter)
			require.NoError(t, err)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTypeDecl_ProcNames(t *testing.T) {
	t.Parallel()
	e := loadedEngine(t)
	ctx := context.Background()

	tests := []struct {
		typePath string
		filter   NameFilter
		want     []string
	}{
		{"/obj/foo", AllNames, []string{"proc1", "proc2"}},
		{"/obj/foo", Declared, []string{"proc1", "proc2"}},
		{"/obj/foo", Modified, nil},
		{"/obj/foo", Unmodified, []string{"New"}},
		{"/obj/foo/bar", AllNames, []string{"proc1"}},
		{"/obj/foo/bar", Modified, []string{"proc1"}},
		{"/obj/foo/bar", Unmodified, []string{"New", "proc2"}},
	}
	for _, tt := range tests {
		t.Run(tt.typePath+"/"+tt.filter.String(), func(t *testing.T) {
			got, err := typeDecl(t, e, tt.typePath).ProcNames(ctx, tt.filter)
			require.NoError(t, err)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTypeDecl_Value(t *testing.T) {
	t.Parallel()
	e := loadedEngine(t)
	ctx := context.Background()

	tests := []struct {
		typePath string
		name     string
		want     ast.Constant
	}{
		{"/obj/foo", "a", ast.IntConst(3)},
		{"/obj/foo/bar", "a", ast.IntConst(4)},
		{"/obj/foo/baz", "a", ast.IntConst(3)},
		{"/obj/foo", "icon", ast.ResourceConst("foo.dmi")},
		{"/obj/foo/baz", "icon_state", ast.StringConst("foo")},
		{"/obj/foo/bar", "name", ast.NullConst()},
	}
	for _, tt := range tests {
		got, err := typeDecl(t, e, tt.typePath).Value(ctx, tt.name)
		require.NoError(t, err, "%s/%s", tt.typePath, tt.name)
		assert.Equal(t, tt.want, got, "%s/%s", tt.typePath, tt.name)
	}

	_, err := typeDecl(t, e, "/obj/foo/baz").Value(ctx, "nope")
	assert.EqualError(t, err, "cannot find value for /obj/foo/baz/nope")
	assert.ErrorIs(t, err, ErrMissingVar)
	assert.True(t, IsNotFound(err))
}

func TestTypeDecl_VarDecl(t *testing.T) {
	t.Parallel()
	e := loadedEngine(t)
	ctx := context.Background()

	decl, err := typeDecl(t, e, "/obj/foo/bar").VarDecl(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, ast.IntConst(4), decl.Value)
	assert.Equal(t, "/obj/foo/bar", decl.Owner.Rel())
	assert.Equal(t, "/obj/foo", decl.DeclaredOn.Rel())
	assert.Equal(t, "/num", decl.Type.Rel())
	require.NotNil(t, decl.Loc)
	assert.Equal(t, srcloc.Location{File: "code/bar.dm", Line: 2, Column: 5}, *decl.Loc)

	decl, err = typeDecl(t, e, "/obj/foo/baz").VarDecl(ctx, "icon")
	require.NoError(t, err)
	assert.Equal(t, ast.ResourceConst("foo.dmi"), decl.Value)
	assert.Equal(t, "/obj/foo", decl.Owner.Rel())
	assert.Equal(t, "/atom", decl.DeclaredOn.Rel())
	assert.True(t, decl.Type.Equal(path.MustParse("/icon")))

	decl, err = typeDecl(t, e, "/atom").VarDecl(ctx, "icon_state")
	require.NoError(t, err)
	assert.True(t, decl.Type.IsZero())
	assert.Nil(t, decl.Loc)
}

func TestTypeDecl_ProcDecls(t *testing.T) {
	t.Parallel()
	e := loadedEngine(t)
	ctx := context.Background()

	decls, err := typeDecl(t, e, "/obj/foo").ProcDecls(ctx, "proc1")
	require.NoError(t, err)
	require.Len(t, decls, 1)
	d := decls[0]
	assert.Equal(t, "<Proc /obj/foo/proc/proc1>", d.String())
	assert.True(t, d.Declared)
	require.Len(t, d.Args, 2)
	assert.Equal(t, "x", d.Args[0].String())
	assert.Equal(t, "/mob/target", d.Args[1].String())
	require.NotNil(t, d.Loc)
	assert.Equal(t, srcloc.Location{File: "code/foo.dm", Line: 6, Column: 1}, *d.Loc)

	decls, err = typeDecl(t, e, "/obj/foo/bar").ProcDecls(ctx, "proc1")
	require.NoError(t, err)
	require.Len(t, decls, 1)
	assert.False(t, decls[0].Declared)
	assert.Empty(t, decls[0].Args)

	// Inherited and builtin definitions are not reported.
	decls, err = typeDecl(t, e, "/obj/foo/baz").ProcDecls(ctx, "proc1")
	require.NoError(t, err)
	assert.Empty(t, decls)
	decls, err = typeDecl(t, e, "/datum").ProcDecls(ctx, "New")
	require.NoError(t, err)
	assert.Empty(t, decls)
}

func TestTypeDecl_WalkProc(t *testing.T) {
	t.Parallel()
	e := loadedEngine(t)

	var got []string
	require.NoError(t, typeDecl(t, e, "/obj/foo/bar").WalkProc(context.Background(), "proc1", collectLeaves(&got)))
	assert.Equal(t, []string{"a"}, got)
}
