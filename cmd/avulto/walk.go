package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jward/avulto"
	"github.com/jward/avulto/internal/ast"
	"github.com/jward/avulto/internal/runtime"
)

func (a *app) walkCmd() *cobra.Command {
	var kinds []string
	cmd := &cobra.Command{
		Use:   "walk <type> <proc>",
		Short: "Walk a proc body and print every leaf with its location",
		Long:  "Walks the body of proc as resolved from type. Every constant and identifier is printed with its location. Each --kind also reports nodes of that kind, which then are not descended into.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, nodes, err := nodeRecorder(kinds)
			if err != nil {
				return a.outputError("walk", err)
			}
			e, _, err := a.openEngine(true)
			if err != nil {
				return a.outputError("walk", err)
			}
			defer e.Close()

			if err := e.WalkProc(cmd.Context(), args[0], args[1], v); err != nil {
				return a.outputError("walk", err)
			}
			return a.outputResult(CLIResult{Command: "walk", Results: *nodes})
		},
	}
	cmd.Flags().StringSliceVar(&kinds, "kind", nil, "also report nodes of this kind without descending (repeatable)")
	return cmd
}

// nodeRecorder builds a visitor that records leaves plus nodes of the
// extra kinds.
func nodeRecorder(kinds []string) (avulto.Funcs, *[]CLINode, error) {
	nodes := []CLINode{}
	record := func(_ context.Context, v avulto.Visit) error {
		nodes = append(nodes, CLINode{
			Kind: v.Kind().String(),
			Repr: v.Render(),
			Loc:  locationToCLI(v.Loc),
		})
		return nil
	}
	funcs := avulto.Funcs{ast.KindConstant: record}
	for _, name := range kinds {
		k, ok := ast.ParseKind(name)
		if !ok {
			return nil, nil, fmt.Errorf("unknown node kind %q", name)
		}
		funcs[k] = record
	}
	return funcs, &nodes, nil
}

func (a *app) runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <script> <type> <proc>",
		Short: "Run a Risor visitor script against a proc",
		Long:  "Runs a Risor script with target_type and target_proc set. A bare name such as \"constants\" selects a bundled visitor. Script log output goes to stderr.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, _, err := a.openEngine(true)
			if err != nil {
				return a.outputError("run", err)
			}
			defer e.Close()

			script := scriptPath(args[0])
			if err := e.RunVisitorScript(cmd.Context(), script, args[1], args[2]); err != nil {
				return a.outputError("run", err)
			}
			if a.cfg.Format == "text" {
				return nil
			}
			return a.outputResult(CLIResult{Command: "run", Results: map[string]string{"script": script}})
		},
	}
}

// scriptPath maps a bare visitor name onto its bundled script path.
func scriptPath(arg string) string {
	if filepath.Ext(arg) == ".risor" || strings.ContainsRune(arg, '/') {
		return arg
	}
	return runtime.VisitorScriptPath(arg)
}
