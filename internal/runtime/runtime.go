package runtime

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/risor-io/risor"
	"github.com/risor-io/risor/importer"

	"github.com/jward/avulto/internal/path"
	"github.com/jward/avulto/internal/walk"
)

// Host is the loaded program as scripts see it.
type Host interface {
	WalkProc(ctx context.Context, typePath, proc string, v walk.Visitor) error
	Typesof(ctx context.Context, prefix string) ([]path.Path, error)
	Subtypesof(ctx context.Context, prefix string) ([]path.Path, error)
}

// Runtime embeds a Risor VM and exposes the loaded program to host visitor
// scripts.
type Runtime struct {
	host       Host
	logger     *slog.Logger
	scriptsDir string
	fsys       fs.FS
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*Runtime)

// WithRuntimeFS configures the Runtime to load scripts from an fs.FS
// instead of from disk. The Risor importer resolves imports from the same
// FS.
func WithRuntimeFS(fsys fs.FS) RuntimeOption {
	return func(r *Runtime) {
		r.fsys = fsys
	}
}

// WithRuntimeLogger sends script log calls to l.
func WithRuntimeLogger(l *slog.Logger) RuntimeOption {
	return func(r *Runtime) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRuntime creates a Runtime wired to host and a scripts directory. host
// may be nil, in which case only the path and log globals are available.
func NewRuntime(host Host, scriptsDir string, opts ...RuntimeOption) *Runtime {
	r := &Runtime{
		host:       host,
		logger:     slog.New(slog.DiscardHandler),
		scriptsDir: scriptsDir,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunScript loads and executes a Risor script with all standard globals
// plus any extra globals provided by the caller.
func (r *Runtime) RunScript(ctx context.Context, scriptPath string, extraGlobals map[string]any) error {
	src, err := r.LoadScript(scriptPath)
	if err != nil {
		return err
	}
	return r.eval(ctx, src, scriptPath, extraGlobals)
}

// RunSource executes Risor source code directly with all standard globals
// plus any extra globals.
func (r *Runtime) RunSource(ctx context.Context, source string, extraGlobals map[string]any) error {
	return r.eval(ctx, source, "<inline>", extraGlobals)
}

func (r *Runtime) eval(ctx context.Context, source, label string, extraGlobals map[string]any) error {
	globals := r.buildGlobals(extraGlobals)

	var opts []risor.Option
	for name, val := range globals {
		opts = append(opts, risor.WithGlobal(name, val))
	}
	if imp := r.buildImporter(globals); imp != nil {
		opts = append(opts, risor.WithImporter(imp))
	}

	r.logger.Debug("running script", "script", label)
	if _, err := risor.Eval(ctx, source, opts...); err != nil {
		return fmt.Errorf("runtime: script %s: %w", label, err)
	}
	return nil
}

// buildImporter returns a Risor importer for the Runtime's script source,
// or nil if neither an fs.FS nor a scripts directory is configured.
func (r *Runtime) buildImporter(globals map[string]any) importer.Importer {
	globalNames := make([]string, 0, len(globals))
	for name := range globals {
		globalNames = append(globalNames, name)
	}

	if r.fsys != nil {
		return importer.NewFSImporter(importer.FSImporterOptions{
			GlobalNames: globalNames,
			SourceFS:    r.fsys,
			Extensions:  []string{".risor"},
		})
	}
	if r.scriptsDir != "" {
		return importer.NewLocalImporter(importer.LocalImporterOptions{
			GlobalNames: globalNames,
			SourceDir:   r.scriptsDir,
			Extensions:  []string{".risor"},
		})
	}
	return nil
}

// LoadScript reads a .risor file and returns its source code. With an fs.FS
// configured the path is relative within the FS; otherwise relative paths
// resolve against the scripts directory.
func (r *Runtime) LoadScript(scriptPath string) (string, error) {
	if r.fsys != nil {
		fsPath := strings.TrimPrefix(filepath.ToSlash(scriptPath), "/")
		data, err := fs.ReadFile(r.fsys, fsPath)
		if err != nil {
			return "", fmt.Errorf("runtime: loading script %s from fs: %w", fsPath, err)
		}
		return string(data), nil
	}

	fullPath := scriptPath
	if !filepath.IsAbs(scriptPath) && r.scriptsDir != "" {
		fullPath = filepath.Join(r.scriptsDir, scriptPath)
	}

	data, err := os.ReadFile(fullPath)
	if err != nil {
		return "", fmt.Errorf("runtime: loading script %s: %w", fullPath, err)
	}
	return string(data), nil
}

// VisitorScriptPath returns the path of a bundled visitor script.
func VisitorScriptPath(name string) string {
	return filepath.Join("visitors", name+".risor")
}

// buildGlobals constructs the full set of globals exposed to scripts.
func (r *Runtime) buildGlobals(extra map[string]any) map[string]any {
	globals := map[string]any{
		"path":        makePathFn(),
		"path_child":  makePathRelationFn("path_child", true),
		"path_parent": makePathRelationFn("path_parent", false),
		"log":         makeLogFn(r.logger),
	}
	if r.host != nil {
		globals["typesof"] = makeTypesofFn("typesof", r.host.Typesof)
		globals["subtypesof"] = makeTypesofFn("subtypesof", r.host.Subtypesof)
		globals["walk_proc"] = makeWalkProcFn(r.host)
	}
	for k, v := range extra {
		globals[k] = v
	}
	return globals
}
