package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jward/avulto"
)

func (a *app) typesCmd() *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "types [prefix]",
		Short: "List a type and its subtypes",
		Long:  "Lists the types at or beneath prefix (default /) in absolute path order. With --strict the prefix itself is left out.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prefix := "/"
			if len(args) > 0 {
				prefix = args[0]
			}
			e, _, err := a.openEngine(true)
			if err != nil {
				return a.outputError("types", err)
			}
			defer e.Close()

			lookup := e.Typesof
			if strict {
				lookup = e.Subtypesof
			}
			paths, err := lookup(cmd.Context(), prefix)
			if err != nil {
				return a.outputError("types", err)
			}
			out := make([]CLIType, len(paths))
			for i, p := range paths {
				out[i] = CLIType{Path: p.Rel(), Abs: p.Abs()}
			}
			return a.outputResult(CLIResult{Command: "types", Results: out})
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "exclude the prefix itself")
	return cmd
}

func (a *app) varsCmd() *cobra.Command {
	var filter string
	cmd := &cobra.Command{
		Use:   "vars <type>",
		Short: "List the vars of a type with their values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := avulto.ParseNameFilter(filter)
			if err != nil {
				return a.outputError("vars", err)
			}
			e, _, err := a.openEngine(true)
			if err != nil {
				return a.outputError("vars", err)
			}
			defer e.Close()

			out, err := listVars(cmd.Context(), e, args[0], f)
			if err != nil {
				return a.outputError("vars", err)
			}
			return a.outputResult(CLIResult{Command: "vars", Results: out})
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "name filter: declared|modified|unmodified (default: all names on the type)")
	return cmd
}

func listVars(ctx context.Context, e *avulto.Engine, typePath string, filter avulto.NameFilter) ([]CLIVar, error) {
	td, err := e.TypeDecl(ctx, typePath)
	if err != nil {
		return nil, err
	}
	names, err := td.VarNames(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]CLIVar, 0, len(names))
	for _, name := range names {
		decl, err := td.VarDecl(ctx, name)
		if err != nil {
			return nil, err
		}
		out = append(out, varToCLI(decl))
	}
	return out, nil
}

func varToCLI(d *avulto.VarDecl) CLIVar {
	v := CLIVar{
		Name:  d.Name,
		Kind:  d.Value.Kind.String(),
		Value: constantValue(d.Value),
		Repr:  d.Value.String(),
		Owner: d.Owner.Rel(),
		Loc:   locationToCLI(d.Loc),
	}
	if !d.Type.IsZero() {
		v.Type = d.Type.Rel()
	}
	if !d.DeclaredOn.IsZero() {
		v.DeclaredOn = d.DeclaredOn.Rel()
	}
	return v
}

// constantValue returns a JSON-friendly form of c.
func constantValue(c avulto.Constant) any {
	switch v := c.Value().(type) {
	case avulto.Path:
		return v.Rel()
	case avulto.Constant:
		return v.String()
	default:
		return v
	}
}

func (a *app) procsCmd() *cobra.Command {
	var filter string
	cmd := &cobra.Command{
		Use:   "procs <type>",
		Short: "List the proc names of a type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := avulto.ParseNameFilter(filter)
			if err != nil {
				return a.outputError("procs", err)
			}
			e, _, err := a.openEngine(true)
			if err != nil {
				return a.outputError("procs", err)
			}
			defer e.Close()

			td, err := e.TypeDecl(cmd.Context(), args[0])
			if err != nil {
				return a.outputError("procs", err)
			}
			names, err := td.ProcNames(cmd.Context(), f)
			if err != nil {
				return a.outputError("procs", err)
			}
			out := make([]CLIProc, len(names))
			for i, name := range names {
				out[i] = CLIProc{Name: name}
			}
			return a.outputResult(CLIResult{Command: "procs", Results: out})
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "name filter: declared|modified|unmodified (default: all names on the type)")
	return cmd
}

func (a *app) declsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decls <type> <proc>",
		Short: "List the definitions of a proc on a type",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, _, err := a.openEngine(true)
			if err != nil {
				return a.outputError("decls", err)
			}
			defer e.Close()

			td, err := e.TypeDecl(cmd.Context(), args[0])
			if err != nil {
				return a.outputError("decls", err)
			}
			decls, err := td.ProcDecls(cmd.Context(), args[1])
			if err != nil {
				return a.outputError("decls", err)
			}
			out := make([]CLIProcDecl, len(decls))
			for i, d := range decls {
				params := make([]string, len(d.Args))
				for j, arg := range d.Args {
					params[j] = arg.String()
				}
				out[i] = CLIProcDecl{
					Type:     d.TypePath.Rel(),
					Name:     d.Name,
					Declared: d.Declared,
					Args:     params,
					Loc:      locationToCLI(d.Loc),
				}
			}
			return a.outputResult(CLIResult{Command: "decls", Results: out})
		},
	}
}
