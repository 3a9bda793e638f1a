package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/newtron-network/fabricgen/pkg/fabric"
	"github.com/newtron-network/fabricgen/pkg/inventory"
	"github.com/newtron-network/fabricgen/pkg/util"
	"github.com/newtron-network/fabricgen/pkg/wizard"
)

func newGenerateCmd() *cobra.Command {
	var (
		assumeYes  bool
		saveConfig string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate an inventory from prompts or a definition file",
		Long: `Generate derives the address plan and interface map, prints a summary and
saves the inventory after confirmation.

Without -c the parameters are collected interactively; blank answers take
the bracketed default.

Examples:
  fabricgen generate
  fabricgen generate -c fabric.yaml -y
  fabricgen generate --save-config fabric.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := wizard.New(os.Stdin, os.Stdout)

			path, _ := resolveConfigPath(false)
			var cf *fabric.ConfigFile
			var err error
			if path != "" {
				cf, err = loadDefinition(path)
			} else {
				cf, err = wizard.Collect(p)
			}
			if errors.Is(err, wizard.ErrInputClosed) {
				fmt.Println("\nOperation cancelled")
				return nil
			}
			if err != nil {
				return err
			}

			fmt.Println("\nGenerating IP addresses...")
			g, err := generate(cf)
			if err != nil {
				return err
			}
			fmt.Println("Generating inventory...")
			inventory.WriteSummary(os.Stdout, g.Config, g.Fabric)

			if saveConfig != "" {
				if err := fabric.SaveConfigFile(saveConfig, cf); err != nil {
					return err
				}
				fmt.Printf("Fabric definition saved to %s\n", saveConfig)
			}

			if !assumeYes {
				ok, err := p.Confirm(fmt.Sprintf("\nSave inventory to %s?", inventoryPath))
				if err != nil && !errors.Is(err, wizard.ErrInputClosed) {
					return err
				}
				if !ok {
					fmt.Println(yellow("Inventory not saved."))
					return nil
				}
			}

			if err := inventory.Save(inventoryPath, g.Inventory); err != nil {
				return err
			}
			util.WithFabric(g.Config.Name).Infof("inventory written to %s", inventoryPath)
			fmt.Printf("%s Inventory saved to %s\n", green("✓"), inventoryPath)

			wizard.NextSteps(p, userSettings.GetVaultFile(), "fabricctl")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "save without asking")
	cmd.Flags().StringVar(&saveConfig, "save-config", "", "also write the fabric definition to this file")
	return cmd
}
