package main

import (
	"github.com/spf13/cobra"

	"github.com/jward/avulto/internal/path"
)

func (a *app) pathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path <raw>...",
		Short: "Canonicalize type path spellings",
		Long:  "Prints the absolute and relative spellings of each path. It needs no database.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := make([]CLIPath, 0, len(args))
			for _, raw := range args {
				p, err := path.MakeUntrusted(raw)
				if err != nil {
					return a.outputError("path", err)
				}
				out = append(out, CLIPath{
					Input:  raw,
					Abs:    p.Abs(),
					Rel:    p.Rel(),
					Stem:   p.Stem(),
					Parent: p.Parent().Rel(),
				})
			}
			return a.outputResult(CLIResult{Command: "path", Results: out})
		},
	}
}
