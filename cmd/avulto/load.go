package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func (a *app) loadCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "load <dump>",
		Short: "Load a program dump into the database",
		Long:  "Decodes a YAML or JSON program dump and stores its object tree and proc bodies. An unchanged dump is skipped unless --force is given.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runLoad(cmd.Context(), args[0], force)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "delete the database and load from scratch")
	return cmd
}

func (a *app) runLoad(ctx context.Context, source string, force bool) error {
	if force {
		dbPath, err := a.dbPath()
		if err != nil {
			return a.outputError("load", err)
		}
		for _, p := range []string{dbPath, dbPath + "-wal", dbPath + "-shm"} {
			if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
				return a.outputError("load", fmt.Errorf("removing database for --force: %w", err))
			}
		}
		color.New(color.FgCyan).Fprintf(a.stderr, "Cleared database: %s\n", dbPath)
	}

	e, dbPath, err := a.openEngine(false)
	if err != nil {
		return a.outputError("load", err)
	}
	defer e.Close()

	loaded, err := e.LoadFileIfChanged(ctx, source)
	if err != nil {
		return a.outputError("load", err)
	}
	sum, err := e.Summary(ctx)
	if err != nil {
		return a.outputError("load", err)
	}
	return a.outputResult(CLIResult{
		Command: "load",
		Results: CLILoad{
			Source:      source,
			Database:    dbPath,
			Loaded:      loaded,
			Name:        sum.Name,
			Types:       sum.Types,
			Files:       sum.Files,
			ProcsParsed: sum.ProcsParsed,
		},
	})
}

func (a *app) infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Describe the loaded program",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, dbPath, err := a.openEngine(true)
			if err != nil {
				return a.outputError("info", err)
			}
			defer e.Close()

			sum, err := e.Summary(cmd.Context())
			if err != nil {
				return a.outputError("info", err)
			}
			return a.outputResult(CLIResult{
				Command: "info",
				Results: CLIInfo{
					Database:    dbPath,
					Name:        sum.Name,
					Types:       sum.Types,
					Files:       sum.Files,
					ProcsParsed: sum.ProcsParsed,
				},
			})
		},
	}
}
