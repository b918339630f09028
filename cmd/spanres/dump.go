package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"spanres/internal/diagfmt"
	"spanres/internal/source"
)

var dumpCmd = &cobra.Command{
	Use:   "dump FIXTURE",
	Short: "Print the syntax trees of a fixture",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := cmd.Flags().GetString("format")
		if err != nil {
			return err
		}
		if format != "pretty" && format != "json" {
			return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
		}
		r, err := newRun(cmd)
		if err != nil {
			return err
		}
		f, err := r.loadFixture(args[0])
		if err != nil {
			return err
		}
		fs := f.Snapshot.Files
		for i := 0; i < fs.Len(); i++ {
			tree := f.Tree(source.FileID(i))
			if tree == nil {
				continue
			}
			if format == "json" {
				err = diagfmt.FormatTreeJSON(r.out, tree)
			} else {
				fmt.Fprintf(r.out, "== %s\n", fs.Get(tree.File).Path)
				err = diagfmt.FormatTreePretty(r.out, tree, fs)
			}
			if err != nil {
				return err
			}
		}
		return r.finish()
	},
}

func init() {
	dumpCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}
