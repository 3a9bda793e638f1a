// Fabricgen - spine-leaf inventory generator
//
// fabricgen derives a complete address plan and interface map for a two-tier
// spine-leaf fabric and writes it as an Ansible inventory.
//
// Usage:
//
//	fabricgen generate                  Prompt for parameters, review, save
//	fabricgen generate -c fabric.yaml   Read parameters from a file
//	fabricgen plan -c fabric.yaml       Print the spine-leaf link plan
//	fabricgen show                      Show the saved inventory
//	fabricgen publish                   Push the saved inventory to Redis
//	fabricgen settings show|set|clear   Manage ~/.fabricgen/settings.json
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/newtron-network/fabricgen/pkg/cli"
	"github.com/newtron-network/fabricgen/pkg/settings"
	"github.com/newtron-network/fabricgen/pkg/util"
	"github.com/newtron-network/fabricgen/pkg/version"
)

var (
	configPath    string // -c, --config
	inventoryPath string // -o, --inventory
	verbose       bool
	logJSON       bool

	userSettings *settings.Settings
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, red("Error:"), err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "fabricgen",
	Short:             "Spine-leaf fabric inventory generator",
	SilenceUsage:      true,
	SilenceErrors:     true,
	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	Long: `Fabricgen derives loopback, interconnect and management addressing plus
interface mappings for a spine-leaf fabric and writes an Ansible inventory.

  fabricgen generate [-c fabric.yaml] [-o inventory/hosts.yml]`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			util.SetLogLevel("debug")
		} else {
			util.SetLogLevel("warn")
		}
		if logJSON {
			util.SetJSONFormat()
		}

		var err error
		userSettings, err = settings.Load()
		if err != nil {
			util.Warnf("Could not load settings: %v", err)
			userSettings = &settings.Settings{}
		}
		if inventoryPath == "" {
			inventoryPath = userSettings.GetInventoryPath()
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "fabric definition file (YAML)")
	rootCmd.PersistentFlags().StringVarP(&inventoryPath, "inventory", "o", "", "inventory file to write or read")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log in JSON format")

	rootCmd.AddCommand(
		newGenerateCmd(),
		newPlanCmd(),
		newShowCmd(),
		newPublishCmd(),
		settingsCmd,
		newVersionCmd(),
	)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			if version.Version == "dev" {
				fmt.Println("fabricgen dev build (version is set with -ldflags)")
			} else {
				fmt.Printf("fabricgen %s\n", version.Info())
			}
		},
	}
}

// Color helpers delegate to pkg/cli.
func green(s string) string  { return cli.Green(s) }
func yellow(s string) string { return cli.Yellow(s) }
func red(s string) string    { return cli.Red(s) }
