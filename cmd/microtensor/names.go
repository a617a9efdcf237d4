package main

import (
	"fmt"

	"github.com/example/microtensor/internal/textfile"
	"github.com/spf13/cobra"
)

func newNamesCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "names",
		Short: "Print the names file line by line",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			if file == "" {
				file = cfg.Paths.NamesFile
			}

			lines, err := textfile.ReadLines(file)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, line := range lines {
				if _, err := fmt.Fprintln(out, line); err != nil {
					return err
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Names file (default: paths-names-file)")

	return cmd
}
