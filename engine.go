package avulto

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"slices"
	"sync"

	"github.com/risor-io/risor/object"

	"github.com/jward/avulto/internal/ast"
	"github.com/jward/avulto/internal/convert"
	"github.com/jward/avulto/internal/dmast"
	"github.com/jward/avulto/internal/path"
	"github.com/jward/avulto/internal/runtime"
	"github.com/jward/avulto/internal/srcloc"
	"github.com/jward/avulto/internal/store"
	"github.com/jward/avulto/internal/walk"
)

// Engine holds one loaded DM program: its object tree in SQLite and the
// proc bodies needed for walks.
type Engine struct {
	store      *store.Store
	runtime    *runtime.Runtime
	logger     *slog.Logger
	scriptsDir string
	scriptsFS  fs.FS

	mu    sync.Mutex
	files *srcloc.Table
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger routes engine and script logging to l. The default discards.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithScriptsFS configures the Engine to load Risor visitor scripts from
// the given filesystem, typically an embed.FS. It takes precedence over
// WithScriptsDir.
func WithScriptsFS(fsys fs.FS) Option {
	return func(e *Engine) {
		e.scriptsFS = fsys
	}
}

// WithScriptsDir sets the directory relative script paths resolve against.
func WithScriptsDir(dir string) Option {
	return func(e *Engine) {
		e.scriptsDir = dir
	}
}

// New creates an Engine backed by a SQLite database at dbPath. A database
// that already holds a program can be queried without loading again.
func New(dbPath string, opts ...Option) (*Engine, error) {
	s, err := store.NewStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("avulto: create store: %w", err)
	}
	if err := s.Migrate(); err != nil {
		s.Close()
		return nil, fmt.Errorf("avulto: migrate: %w", err)
	}

	e := &Engine{
		store:  s,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}

	rtOpts := []runtime.RuntimeOption{runtime.WithRuntimeLogger(e.logger)}
	if e.scriptsFS != nil {
		rtOpts = append(rtOpts, runtime.WithRuntimeFS(e.scriptsFS))
	}
	e.runtime = runtime.NewRuntime(e, e.scriptsDir, rtOpts...)
	return e, nil
}

// Close releases the Engine's database resources.
func (e *Engine) Close() error {
	return e.store.Close()
}

// Store returns the underlying Store for direct access.
func (e *Engine) Store() *Store {
	return e.store
}

// --- Loading ---

// Load decodes a program dump from r and replaces the stored program.
func (e *Engine) Load(ctx context.Context, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("avulto: read dump: %w", err)
	}
	return e.load(ctx, data, "<reader>")
}

// LoadFile loads the program dump at name.
func (e *Engine) LoadFile(ctx context.Context, name string) error {
	data, err := os.ReadFile(name)
	if err != nil {
		return fmt.Errorf("avulto: read dump: %w", err)
	}
	return e.load(ctx, data, name)
}

// LoadFileIfChanged loads the dump at name unless the store already holds
// the same bytes. It reports whether a load happened.
func (e *Engine) LoadFileIfChanged(ctx context.Context, name string) (bool, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return false, fmt.Errorf("avulto: read dump: %w", err)
	}
	stored, ok, err := e.store.Meta(ctx, store.MetaDumpHash)
	if err != nil {
		return false, fmt.Errorf("avulto: %w", err)
	}
	if ok && stored == store.DumpHash(data) {
		e.logger.Debug("dump unchanged, skipping load", "source", name)
		return false, nil
	}
	return true, e.load(ctx, data, name)
}

func (e *Engine) load(ctx context.Context, data []byte, label string) error {
	prog, err := dmast.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("avulto: load %s: %w", label, err)
	}
	if err := e.store.InsertProgram(ctx, prog); err != nil {
		return fmt.Errorf("avulto: load %s: %w", label, err)
	}
	if err := e.store.SetMeta(ctx, store.MetaDumpHash, store.DumpHash(data)); err != nil {
		return fmt.Errorf("avulto: load %s: %w", label, err)
	}

	e.mu.Lock()
	e.files = nil
	e.mu.Unlock()

	e.logger.Info("loaded program",
		"source", label,
		"name", prog.Name,
		"types", len(prog.Types),
		"files", len(prog.Files),
		"procs_parsed", prog.ProcsParsed,
	)
	return nil
}

// Summary describes the stored program.
type Summary struct {
	Name        string `json:"name"`
	Types       int    `json:"types"`
	Files       int    `json:"files"`
	ProcsParsed bool   `json:"procs_parsed"`
}

// Summary reports what the store currently holds. It returns ErrNotLoaded
// for a fresh database.
func (e *Engine) Summary(ctx context.Context) (*Summary, error) {
	name, ok, err := e.store.Meta(ctx, store.MetaProgramName)
	if err != nil {
		return nil, fmt.Errorf("avulto: summary: %w", err)
	}
	if !ok {
		return nil, ErrNotLoaded
	}
	paths, err := e.store.AllTypePaths(ctx)
	if err != nil {
		return nil, fmt.Errorf("avulto: summary: %w", err)
	}
	files, err := e.store.Files(ctx)
	if err != nil {
		return nil, fmt.Errorf("avulto: summary: %w", err)
	}
	parsed, err := e.store.ProcsParsed(ctx)
	if err != nil {
		return nil, fmt.Errorf("avulto: summary: %w", err)
	}
	return &Summary{Name: name, Types: len(paths), Files: len(files), ProcsParsed: parsed}, nil
}

// locations returns the file table of the stored program, reading it once
// per load.
func (e *Engine) locations(ctx context.Context) (*srcloc.Table, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.files != nil {
		return e.files, nil
	}
	files, err := e.store.Files(ctx)
	if err != nil {
		return nil, fmt.Errorf("avulto: %w", err)
	}
	e.files = srcloc.NewTable(files)
	return e.files, nil
}

// resolve turns a stored position into a location. A zero line means the
// row has no location.
func (e *Engine) resolve(ctx context.Context, file int64, line, col int) (*srcloc.Location, error) {
	if line == 0 {
		return nil, nil
	}
	table, err := e.locations(ctx)
	if err != nil {
		return nil, err
	}
	loc, _ := table.Resolve(&ast.Location{File: ast.FileID(file), Line: uint32(line), Column: uint16(col)})
	return &loc, nil
}

// --- Type queries ---

// Typesof returns prefix and every type beneath it, sorted by absolute path.
func (e *Engine) Typesof(ctx context.Context, prefix string) ([]path.Path, error) {
	return e.collect(ctx, prefix, false)
}

// Subtypesof returns the types strictly beneath prefix.
func (e *Engine) Subtypesof(ctx context.Context, prefix string) ([]path.Path, error) {
	return e.collect(ctx, prefix, true)
}

// PathsPrefixed is Typesof spelled as relative path strings.
func (e *Engine) PathsPrefixed(ctx context.Context, prefix string) ([]string, error) {
	paths, err := e.Typesof(ctx, prefix)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = p.Rel()
	}
	return out, nil
}

// collect gathers the stored types under needle. The root type is only
// reported for a non-strict query on "/" itself.
func (e *Engine) collect(ctx context.Context, prefix string, strict bool) ([]path.Path, error) {
	needle, err := path.MakeUntrusted(prefix)
	if err != nil {
		return nil, fmt.Errorf("avulto: %w", err)
	}
	all, err := e.store.AllTypePaths(ctx)
	if err != nil {
		return nil, fmt.Errorf("avulto: %w", err)
	}

	var out []path.Path
	for _, p := range all {
		if p.IsRoot() {
			if needle.IsRoot() && !strict {
				out = append(out, p)
			}
			continue
		}
		if needle.IsParentOf(p, strict) {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, path.Path.Compare)
	return slices.CompactFunc(out, path.Path.Equal), nil
}

// TypeDecl looks up one type of the object tree.
func (e *Engine) TypeDecl(ctx context.Context, raw string) (*TypeDecl, error) {
	p, err := path.MakeUntrusted(raw)
	if err != nil {
		return nil, fmt.Errorf("avulto: %w", err)
	}
	t, err := e.store.FindType(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("avulto: %w", err)
	}
	if t == nil {
		return nil, &MissingTypeError{Path: raw, lookup: true}
	}
	loc, err := e.resolve(ctx, t.FileID, t.Line, t.Col)
	if err != nil {
		return nil, err
	}
	return &TypeDecl{
		engine: e,
		id:     t.ID,
		Path:   path.MakeTrusted(t.Rel),
		Loc:    loc,
	}, nil
}

// --- Proc walks ---

// ProcTree converts the body of proc on typePath into a node arena and
// returns it together with the IDs of its top-level statements. The proc
// may be defined on typePath or inherited from an ancestor; the most
// derived, last recorded definition wins.
func (e *Engine) ProcTree(ctx context.Context, typePath, proc string) (*ast.Tree, []ast.ID, error) {
	parsed, err := e.store.ProcsParsed(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("avulto: %w", err)
	}
	if !parsed {
		return nil, nil, ErrProcsNotParsed
	}

	p, err := path.MakeUntrusted(typePath)
	if err != nil {
		return nil, nil, fmt.Errorf("avulto: %w", err)
	}
	t, err := e.store.FindType(ctx, p)
	if err != nil {
		return nil, nil, fmt.Errorf("avulto: %w", err)
	}
	if t == nil {
		return nil, nil, &MissingTypeError{Path: typePath}
	}
	def, err := e.findProc(ctx, t, proc)
	if err != nil {
		return nil, nil, err
	}
	if def == nil {
		return nil, nil, &MissingProcError{Type: typePath, Proc: proc}
	}

	raw, err := e.store.ProcBody(ctx, def.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("avulto: %w", err)
	}
	if raw == nil {
		return nil, nil, &EmptyProcError{Type: typePath, Proc: proc}
	}
	block, err := dmast.DecodeBlock(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("avulto: proc %s on type %s: %w", proc, typePath, err)
	}
	if len(block) == 0 {
		return nil, nil, &EmptyProcError{Type: typePath, Proc: proc}
	}
	tree, ids, err := convert.Block(block)
	if err != nil {
		return nil, nil, fmt.Errorf("avulto: proc %s on type %s: %w", proc, typePath, err)
	}
	return tree, ids, nil
}

// findProc returns the definition of name on t or its nearest ancestor.
func (e *Engine) findProc(ctx context.Context, t *store.Type, name string) (*store.Proc, error) {
	def, err := e.store.FindProc(ctx, t.ID, name)
	if err != nil || def != nil {
		return def, err
	}
	ancestors, err := e.store.Ancestors(ctx, t.ID)
	if err != nil {
		return nil, fmt.Errorf("avulto: %w", err)
	}
	for _, a := range ancestors {
		def, err := e.store.FindProc(ctx, a.ID, name)
		if err != nil || def != nil {
			return def, err
		}
	}
	return nil, nil
}

// WalkProc walks the body of proc on typePath with v. Locations handed to
// handlers are resolved against the program's file table. An error
// returned by a handler aborts the walk and is returned as is.
func (e *Engine) WalkProc(ctx context.Context, typePath, proc string, v walk.Visitor) error {
	tree, body, err := e.ProcTree(ctx, typePath, proc)
	if err != nil {
		return err
	}
	table, err := e.locations(ctx)
	if err != nil {
		return err
	}
	e.logger.Debug("walking proc", "type", typePath, "proc", proc, "nodes", tree.Len())
	return walk.WalkBlock(ctx, tree, body, v, walk.WithResolver(table))
}

// RunVisitorScript runs a Risor script with target_type and target_proc
// set to typePath and proc. The script drives the walk itself through
// walk_proc.
func (e *Engine) RunVisitorScript(ctx context.Context, script, typePath, proc string) error {
	return e.runtime.RunScript(ctx, script, scriptTarget(typePath, proc))
}

// RunVisitorSource is RunVisitorScript for inline source.
func (e *Engine) RunVisitorSource(ctx context.Context, source, typePath, proc string) error {
	return e.runtime.RunSource(ctx, source, scriptTarget(typePath, proc))
}

func scriptTarget(typePath, proc string) map[string]any {
	return map[string]any{
		"target_type": object.NewString(typePath),
		"target_proc": object.NewString(proc),
	}
}

// IsNotFound reports whether err means a type, proc or var lookup missed.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrMissingType) || errors.Is(err, ErrMissingProc) || errors.Is(err, ErrMissingVar)
}
