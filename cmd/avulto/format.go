package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/jward/avulto"
)

// formatLoc renders a location as "file:line:col", or "-" when absent.
func formatLoc(loc *CLILocation) string {
	if loc == nil {
		return "-"
	}
	return fmt.Sprintf("%s:%d:%d", loc.File, loc.Line, loc.Column)
}

// formatTypesText formats CLIType results one path per line.
func formatTypesText(w io.Writer, types []CLIType) {
	for _, t := range types {
		fmt.Fprintln(w, t.Path)
	}
}

// formatVarsText formats CLIVar results as aligned columns.
func formatVarsText(w io.Writer, vars []CLIVar) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND\tVALUE\tTYPE\tOWNER\tDECLARED ON")
	for _, v := range vars {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			v.Name, v.Kind, v.Repr, dash(v.Type), v.Owner, dash(v.DeclaredOn))
	}
	tw.Flush()
}

// formatProcsText formats CLIProc results one name per line.
func formatProcsText(w io.Writer, procs []CLIProc) {
	for _, p := range procs {
		fmt.Fprintln(w, p.Name)
	}
}

// formatDeclsText formats CLIProcDecl results as aligned columns.
func formatDeclsText(w io.Writer, decls []CLIProcDecl) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PROC\tDECLARED\tARGS\tLOCATION")
	for _, d := range decls {
		fmt.Fprintf(tw, "%s/proc/%s\t%t\t(%s)\t%s\n",
			d.Type, d.Name, d.Declared, strings.Join(d.Args, ", "), formatLoc(d.Loc))
	}
	tw.Flush()
}

// formatNodesText formats CLINode results as aligned columns.
func formatNodesText(w io.Writer, nodes []CLINode) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LOCATION\tKIND\tNODE")
	for _, n := range nodes {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", formatLoc(n.Loc), n.Kind, n.Repr)
	}
	tw.Flush()
}

// formatPathsText formats CLIPath results as aligned columns.
func formatPathsText(w io.Writer, paths []CLIPath) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "REL\tABS\tSTEM\tPARENT")
	for _, p := range paths {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.Rel, p.Abs, p.Stem, p.Parent)
	}
	tw.Flush()
}

// formatInfoText formats CLIInfo as readable text.
func formatInfoText(w io.Writer, info CLIInfo) {
	fmt.Fprintf(w, "Program: %s\n", info.Name)
	fmt.Fprintf(w, "Database: %s\n", info.Database)
	fmt.Fprintf(w, "Types: %d\n", info.Types)
	fmt.Fprintf(w, "Files: %d\n", info.Files)
	fmt.Fprintf(w, "Proc bodies: %t\n", info.ProcsParsed)
}

// formatLoadText formats CLILoad as a colored status line.
func formatLoadText(w io.Writer, l CLILoad) {
	if !l.Loaded {
		color.New(color.FgYellow).Fprintf(w, "Unchanged: %s\n", l.Source)
		return
	}
	color.New(color.FgGreen).Fprintf(w, "Loaded %s from %s\n", l.Name, l.Source)
	fmt.Fprintf(w, "  %d types, %d files, proc bodies: %t\n", l.Types, l.Files, l.ProcsParsed)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// outputResult writes result in the selected format.
func (a *app) outputResult(result CLIResult) error {
	if a.cfg.Format == "text" {
		return a.outputResultText(result)
	}
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// outputResultText dispatches to the appropriate text formatter based on the
// result type.
func (a *app) outputResultText(result CLIResult) error {
	w := a.stdout

	switch v := result.Results.(type) {
	case []CLIType:
		formatTypesText(w, v)
	case []CLIVar:
		formatVarsText(w, v)
	case []CLIProc:
		formatProcsText(w, v)
	case []CLIProcDecl:
		formatDeclsText(w, v)
	case []CLINode:
		formatNodesText(w, v)
	case []CLIPath:
		formatPathsText(w, v)
	case CLIInfo:
		formatInfoText(w, v)
	case CLILoad:
		formatLoadText(w, v)
	case nil:
		// Scripts report through the logger.
	default:
		return fmt.Errorf("unsupported result type for text format: %T", v)
	}
	return nil
}

// outputError writes an error in the selected format and returns it so RunE
// can propagate it to Cobra. In JSON mode the error is written to stdout as a
// CLIResult envelope. In text mode it goes to stderr.
func (a *app) outputError(command string, err error) error {
	a.errorHandled = true
	if a.cfg == nil || a.cfg.Format == "text" {
		color.New(color.FgRed).Fprintf(a.stderr, "Error: %s\n", err)
		return err
	}
	result := CLIResult{
		Command: command,
		Error:   err.Error(),
	}
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(result)
	return err
}

// locationToCLI converts a resolved location to a CLILocation.
func locationToCLI(loc *avulto.Location) *CLILocation {
	if loc == nil {
		return nil
	}
	return &CLILocation{File: loc.File, Line: loc.Line, Column: loc.Column}
}

// validFormats lists accepted values for --format.
var validFormats = []string{"json", "text"}

// validateFormat checks that the --format flag value is recognized.
func validateFormat(format string) error {
	for _, f := range validFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q: must be %s", format, strings.Join(validFormats, " or "))
}
