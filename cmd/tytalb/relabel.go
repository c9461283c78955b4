package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Vogelwarte/tytalb/labelmap"
	"github.com/Vogelwarte/tytalb/parser"
)

func newRelabelCmd(a *app) *cobra.Command {
	var (
		input      string
		format     string
		labels     string
		output     string
		recursive  bool
		background string
	)
	cmd := &cobra.Command{
		Use:   "relabel",
		Short: "Rewrite table labels through a labels.json file",
		Long: `Rewrite the label column of every table in a directory.

Labels are mapped with the regular expressions of the labels file, then
filtered by its whitelist or blacklist; filtered labels become the
background label. Without --output the tables are rewritten in place.

Example:
  tytalb relabel -i manual -f raven --labels labels.json -o manual-mapped`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if input == "" || format == "" || labels == "" {
				return errors.New("--input, --format and --labels are required")
			}
			if _, err := os.Stat(labels); err != nil {
				return fmt.Errorf("labels file: %w", err)
			}
			p, err := parser.Lookup(format)
			if err != nil {
				return err
			}
			m, err := labelmap.Load(labels, a.logger, labelmap.WithBackground(background))
			if err != nil {
				return err
			}
			if output == "" {
				output = input
			}

			n, err := parser.RewriteDir(cmd.Context(), input, output, p, m.Map, parser.LoadOptions{
				Recursive: recursive,
				Logger:    a.logger,
			})
			if err != nil {
				return err
			}
			a.logger.Info("tables relabelled", "tables", n, "output", output)
			return nil
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&input, "input", "i", "", "Directory of tables to rewrite")
	fs.StringVarP(&format, "format", "f", "", "Table format (see 'tytalb formats')")
	fs.StringVar(&labels, "labels", "", "labels.json file")
	fs.StringVarP(&output, "output", "o", "", "Output directory (default: rewrite in place)")
	fs.BoolVarP(&recursive, "recursive", "r", false, "Rewrite tables in subdirectories too")
	fs.StringVar(&background, "background", "", "Label filtered labels become (default Noise)")
	return cmd
}
