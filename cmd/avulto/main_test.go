package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureDump = "../../testdata/testenv.yaml"

func TestFindRepoRoot_DirectGitDir(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))

	got := findRepoRoot(root)
	assert.Equal(t, root, got)
}

func TestFindRepoRoot_NestedSubdirectory(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))
	deep := filepath.Join(root, "sub", "deep")
	require.NoError(t, os.MkdirAll(deep, 0o755))

	got := findRepoRoot(deep)
	assert.Equal(t, root, got)
}

func TestFindRepoRoot_NoGitAncestor(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	got := findRepoRoot(dir)
	assert.Equal(t, dir, got)
}

func TestResolveDBPath(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		flagDB string
		want   string
	}{
		{"default", "", filepath.Join("/repo", ".avulto", "avulto.db")},
		{"relative", "data/tree.db", filepath.Join("/repo", "data", "tree.db")},
		{"absolute", "/tmp/tree.db", "/tmp/tree.db"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, resolveDBPath("/repo", tt.flagDB))
		})
	}
}

func TestValidateFormat(t *testing.T) {
	t.Parallel()
	assert.NoError(t, validateFormat("json"))
	assert.NoError(t, validateFormat("text"))
	assert.EqualError(t, validateFormat("xml"), `invalid format "xml": must be json or text`)
}

func TestScriptPath(t *testing.T) {
	t.Parallel()
	assert.Equal(t, filepath.Join("visitors", "constants.risor"), scriptPath("constants"))
	assert.Equal(t, "mine.risor", scriptPath("mine.risor"))
	assert.Equal(t, "tools/check", scriptPath("tools/check"))
}

func TestNodeRecorder_UnknownKind(t *testing.T) {
	t.Parallel()
	_, _, err := nodeRecorder([]string{"Return", "Bogus"})
	assert.EqualError(t, err, `unknown node kind "Bogus"`)
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Format)
	assert.Empty(t, cfg.DB)
}

func TestLoadConfig_File(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "avulto.yaml")
	require.NoError(t, os.WriteFile(path, []byte("format: text\ndb: /tmp/x.db\nscripts_dir: ./visitors\nno_color: true\n"), 0o644))

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)
	assert.Equal(t, &Config{DB: "/tmp/x.db", Format: "text", ScriptsDir: "./visitors", NoColor: true}, cfg)
}

func TestLoadConfig_Precedence(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "avulto.yaml")
	require.NoError(t, os.WriteFile(path, []byte("format: text\ndb: file.db\n"), 0o644))
	t.Setenv("AVULTO_DB", "env.db")

	a := newApp(&bytes.Buffer{}, &bytes.Buffer{})
	flags := a.root.PersistentFlags()

	cfg, err := LoadConfig(path, flags)
	require.NoError(t, err)
	assert.Equal(t, "env.db", cfg.DB)
	assert.Equal(t, "text", cfg.Format)

	require.NoError(t, flags.Set("db", "flag.db"))
	require.NoError(t, flags.Set("format", "json"))
	cfg, err = LoadConfig(path, flags)
	require.NoError(t, err)
	assert.Equal(t, "flag.db", cfg.DB)
	assert.Equal(t, "json", cfg.Format)
}

// execute runs one CLI invocation in-process.
func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	a := newApp(&out, &errOut)
	a.root.SetArgs(args)
	err = a.root.Execute()
	return out.String(), errOut.String(), err
}

// loadFixture loads the shared dump into a fresh database and returns its
// path.
func loadFixture(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	db := filepath.Join(t.TempDir(), "state", "avulto.db")
	stdout, stderr, err := execute(t, "load", fixtureDump, "--db", db, "--no-color")
	require.NoError(t, err, "load failed: %s", stderr)
	require.FileExists(t, db)
	require.NotEmpty(t, stdout)
	return db
}

// runJSON executes a command against db and returns the parsed CLIResult.
func runJSON(t *testing.T, db string, args ...string) map[string]any {
	t.Helper()
	full := append(args, "--db", db, "--no-color")
	stdout, _, _ := execute(t, full...)

	var result map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &result), "invalid JSON output: %s", stdout)
	return result
}

func TestLoad_SkipsUnchanged(t *testing.T) {
	db := loadFixture(t)

	result := runJSON(t, db, "load", fixtureDump)
	assert.Equal(t, "load", result["command"])
	res := result["results"].(map[string]any)
	assert.Equal(t, false, res["loaded"])
	assert.Equal(t, "testenv.dme", res["name"])
	assert.EqualValues(t, 8, res["types"])
	assert.EqualValues(t, 2, res["files"])
	assert.Equal(t, true, res["procs_parsed"])

	result = runJSON(t, db, "load", fixtureDump, "--force")
	res = result["results"].(map[string]any)
	assert.Equal(t, true, res["loaded"])
}

func TestLoad_TextOutput(t *testing.T) {
	db := loadFixture(t)

	stdout, _, err := execute(t, "load", fixtureDump, "--db", db, "--format", "text", "--no-color")
	require.NoError(t, err)
	assert.Equal(t, "Unchanged: "+fixtureDump+"\n", stdout)
}

func TestInfo(t *testing.T) {
	db := loadFixture(t)

	result := runJSON(t, db, "info")
	res := result["results"].(map[string]any)
	assert.Equal(t, db, res["database"])
	assert.EqualValues(t, 8, res["types"])
}

func TestMissingDatabase(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	db := filepath.Join(t.TempDir(), "none.db")

	result := runJSON(t, db, "types")
	assert.Equal(t, "types", result["command"])
	assert.Contains(t, result["error"], "database not found")
	assert.NoFileExists(t, db)
}

func TestTypes(t *testing.T) {
	db := loadFixture(t)

	stdout, _, err := execute(t, "types", "/obj/foo", "--db", db, "--format", "text", "--no-color")
	require.NoError(t, err)
	assert.Equal(t, "/obj/foo\n/obj/foo/bar\n/obj/foo/baz\n", stdout)

	result := runJSON(t, db, "types", "/obj/foo", "--strict")
	res := result["results"].([]any)
	require.Len(t, res, 2)
	first := res[0].(map[string]any)
	assert.Equal(t, "/obj/foo/bar", first["path"])
	assert.Equal(t, "/datum/atom/movable/obj/foo/bar", first["abs"])
}

func TestVars(t *testing.T) {
	db := loadFixture(t)

	result := runJSON(t, db, "vars", "/obj/foo/bar", "--filter", "unmodified")
	res := result["results"].([]any)
	var names []string
	for _, r := range res {
		names = append(names, r.(map[string]any)["name"].(string))
	}
	assert.Equal(t, []string{"icon", "icon_state", "name"}, names)

	result = runJSON(t, db, "vars", "/obj/foo/bar")
	res = result["results"].([]any)
	require.Len(t, res, 1)
	a := res[0].(map[string]any)
	assert.Equal(t, "a", a["name"])
	assert.EqualValues(t, 4, a["value"])
	assert.Equal(t, "/obj/foo/bar", a["owner"])
	assert.Equal(t, "/obj/foo", a["declared_on"])
	assert.Equal(t, "/num", a["type"])
	assert.Equal(t, map[string]any{"file": "code/bar.dm", "line": float64(2), "column": float64(5)}, a["loc"])
}

func TestVars_Errors(t *testing.T) {
	db := loadFixture(t)

	result := runJSON(t, db, "vars", "/missing_type")
	assert.Equal(t, "cannot find path /missing_type", result["error"])

	result = runJSON(t, db, "vars", "/obj/foo", "--filter", "bogus")
	assert.Equal(t, `avulto: unknown name filter "bogus"`, result["error"])
}

func TestProcs(t *testing.T) {
	db := loadFixture(t)

	stdout, _, err := execute(t, "procs", "/obj/foo/bar", "--filter", "unmodified", "--db", db, "--format", "text", "--no-color")
	require.NoError(t, err)
	assert.Equal(t, "New\nproc2\n", stdout)
}

func TestDecls(t *testing.T) {
	db := loadFixture(t)

	result := runJSON(t, db, "decls", "/obj/foo", "proc1")
	res := result["results"].([]any)
	require.Len(t, res, 1)
	d := res[0].(map[string]any)
	assert.Equal(t, "/obj/foo", d["type"])
	assert.Equal(t, true, d["declared"])
	assert.Equal(t, []any{"x", "/mob/target"}, d["args"])
}

func TestWalk(t *testing.T) {
	db := loadFixture(t)

	result := runJSON(t, db, "walk", "/obj/foo/bar", "proc1")
	res := result["results"].([]any)
	require.Len(t, res, 1)
	n := res[0].(map[string]any)
	assert.Equal(t, "Identifier", n["kind"])
	assert.Equal(t, map[string]any{"file": "code/bar.dm", "line": float64(5), "column": float64(12)}, n["loc"])

	result = runJSON(t, db, "walk", "/obj/foo/bar", "proc1", "--kind", "Return")
	res = result["results"].([]any)
	require.Len(t, res, 1)
	assert.Equal(t, "Return", res[0].(map[string]any)["kind"])
}

func TestWalk_Errors(t *testing.T) {
	db := loadFixture(t)

	result := runJSON(t, db, "walk", "/obj/foo", "proc2")
	assert.Equal(t, "no code statements found in proc proc2 on type /obj/foo", result["error"])

	result = runJSON(t, db, "walk", "/obj/foo", "proc1", "--kind", "Bogus")
	assert.Equal(t, `unknown node kind "Bogus"`, result["error"])
}

func TestRun_BundledVisitor(t *testing.T) {
	db := loadFixture(t)

	stdout, stderr, err := execute(t, "run", "constants", "/obj/foo/bar", "proc1", "--db", db, "--no-color")
	require.NoError(t, err, stderr)
	assert.Contains(t, stderr, `msg="leaves: 1"`)

	var result map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	assert.Equal(t, map[string]any{"script": filepath.Join("visitors", "constants.risor")}, result["results"])
}

func TestRun_ScriptsDir(t *testing.T) {
	db := loadFixture(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "count.risor"), []byte(`
n := []
walk_proc(target_type, target_proc, {
	"visit_Identifier": func(node, loc) { n.append(node["name"]) },
})
log("idents", len(n))
`), 0o644))

	_, stderr, err := execute(t, "run", "count.risor", "/obj/foo", "proc1",
		"--db", db, "--scripts-dir", dir, "--format", "text", "--no-color")
	require.NoError(t, err, stderr)
	// total (the var name), x, target, total.
	assert.Contains(t, stderr, `msg="idents 4"`)
}

func TestPath(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	stdout, _, err := execute(t, "path", "/obj/foo", "--no-color")
	require.NoError(t, err)
	var result map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	res := result["results"].([]any)
	require.Len(t, res, 1)
	assert.Equal(t, map[string]any{
		"input":  "/obj/foo",
		"abs":    "/datum/atom/movable/obj/foo",
		"rel":    "/obj/foo",
		"stem":   "foo",
		"parent": "/obj",
	}, res[0])

	_, stderr, err := execute(t, "path", "obj", "--format", "text", "--no-color")
	require.Error(t, err)
	assert.Contains(t, stderr, "Error: ")
	assert.Contains(t, err.Error(), "obj")
}

func TestInvalidFormat(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, _, err := execute(t, "path", "/obj", "--format", "xml")
	assert.EqualError(t, err, `invalid format "xml": must be json or text`)
}
