package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aioracle/aioracle/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of oracle",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "oracle %s\n", version.Version)
		},
	}
}
