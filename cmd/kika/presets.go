package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"kika/internal/presets"
)

func presetsCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "presets",
		Short: "List the preset material library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := presets.Load(file)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tKEY\tNAME\tNUCLIDES")
			for _, p := range lib.List() {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", p.MaterialID, p.Key, p.Name, len(p.Nuclides))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Extra preset file merged over the builtin presets")
	return cmd
}
