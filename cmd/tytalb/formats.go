package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/Vogelwarte/tytalb/parser"
)

func newFormatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List the supported table formats",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			t := table.New().
				Border(lipgloss.RoundedBorder()).
				Headers("format", "aliases", "tables")
			for _, p := range parser.Formats() {
				var pattern string
				if tp, ok := p.(interface{ Pattern() string }); ok {
					pattern = tp.Pattern()
				}
				t.Row(p.Name(), strings.Join(p.Aliases(), ", "), pattern)
			}
			_, err := a.stdout.Write([]byte(t.String() + "\n"))
			return err
		},
	}
}
