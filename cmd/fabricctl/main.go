// Fabricctl - fabric deployment manager
//
// fabricctl drives the Ansible project that applies a generated inventory to
// the switches. Run without a subcommand it opens a numbered menu; each menu
// entry is also available as a subcommand.
//
// Usage:
//
//	fabricctl                       Interactive menu
//	fabricctl check                 Check prerequisites
//	fabricctl deploy [--vault]      Deploy the complete fabric
//	fabricctl tenants [--vault]     Deploy tenant networks
//	fabricctl add-leaf [--vault]    Add a leaf switch
//	fabricctl add-spine [--vault]   Add a spine switch
//	fabricctl verify [--vault]      Show interface state on every device
//	fabricctl show                  Show the current inventory
//	fabricctl collections           Install required Ansible collections
//	fabricctl history               Show past deployment runs
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/newtron-network/fabricgen/pkg/audit"
	"github.com/newtron-network/fabricgen/pkg/cli"
	"github.com/newtron-network/fabricgen/pkg/deploy"
	"github.com/newtron-network/fabricgen/pkg/settings"
	"github.com/newtron-network/fabricgen/pkg/util"
	"github.com/newtron-network/fabricgen/pkg/version"
)

var (
	projectDir    string
	inventoryPath string
	vaultFile     string
	verbose       bool
	logJSON       bool

	userSettings *settings.Settings
	dispatcher   *deploy.Dispatcher
	auditLog     *audit.FileLogger
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, red("Error:"), err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "fabricctl",
	Short:             "Spine-leaf fabric deployment manager",
	SilenceUsage:      true,
	SilenceErrors:     true,
	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	Long: `Fabricctl runs the Ansible playbooks that deploy and extend a spine-leaf
fabric from a generated inventory.

Without a subcommand it checks prerequisites and opens an interactive menu.`,
	Args: cobra.NoArgs,
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

		dispatcher = deploy.NewDispatcher(dispatcherConfig(userSettings), nil)

		auditLog, err = audit.NewFileLogger(userSettings.GetAuditLog(), audit.RotationConfig{
			MaxSize:    10 * 1024 * 1024, // 10MB
			MaxBackups: 5,
		})
		if err != nil {
			util.Warnf("Could not initialize audit logging: %v", err)
			auditLog = nil
		} else {
			dispatcher.WithAudit(auditLog, audit.CurrentUser())
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if auditLog != nil {
			return auditLog.Close()
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMenu(cmd.Context(), os.Stdin, os.Stdout)
	},
}

// dispatcherConfig merges flags over settings.
func dispatcherConfig(s *settings.Settings) deploy.Config {
	cfg := deploy.Config{
		ProjectDir: s.GetProjectDir(),
		Inventory:  s.GetInventoryPath(),
		VaultFile:  s.GetVaultFile(),
		BinDir:     s.AnsibleBin,
	}
	if projectDir != "" {
		cfg.ProjectDir = projectDir
	}
	if inventoryPath != "" {
		cfg.Inventory = inventoryPath
	}
	if vaultFile != "" {
		cfg.VaultFile = vaultFile
	}
	return cfg
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&projectDir, "project", "P", "", "Ansible project directory (default from settings)")
	rootCmd.PersistentFlags().StringVarP(&inventoryPath, "inventory", "i", "", "inventory file, relative to the project")
	rootCmd.PersistentFlags().StringVar(&vaultFile, "vault-file", "", "ansible-vault credentials file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log in JSON format")

	rootCmd.AddCommand(
		newCheckCmd(),
		newOperationCmd(deploy.OpDeployFabric, "deploy", "Deploy the complete fabric"),
		newOperationCmd(deploy.OpDeployTenants, "tenants", "Deploy tenant networks"),
		newOperationCmd(deploy.OpAddLeaf, "add-leaf", "Add a new leaf switch"),
		newOperationCmd(deploy.OpAddSpine, "add-spine", "Add a new spine switch"),
		newOperationCmd(deploy.OpVerify, "verify", "Verify fabric interfaces"),
		newShowCmd(),
		newCollectionsCmd(),
		newHistoryCmd(),
		newVersionCmd(),
	)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			if version.Version == "dev" {
				fmt.Println("fabricctl dev build (version is set with -ldflags)")
			} else {
				fmt.Printf("fabricctl %s\n", version.Info())
			}
		},
	}
}

// Color helpers delegate to pkg/cli.
func green(s string) string  { return cli.Green(s) }
func yellow(s string) string { return cli.Yellow(s) }
func red(s string) string    { return cli.Red(s) }
