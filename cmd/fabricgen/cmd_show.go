package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/newtron-network/fabricgen/pkg/inventory"
)

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the saved inventory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := inventory.Load(inventoryPath)
			if err != nil {
				return err
			}
			inventory.WriteHosts(os.Stdout, inv)
			return nil
		},
	}
}
