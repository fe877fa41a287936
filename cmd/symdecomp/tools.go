package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/njchilds90/symdecomp"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Print the tool schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), symdecomp.ToolSpec())
		return nil
	},
}
