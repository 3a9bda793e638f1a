package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/newtron-network/fabricgen/pkg/cli"
	"github.com/newtron-network/fabricgen/pkg/deploy"
	"github.com/newtron-network/fabricgen/pkg/inventory"
)

// newOperationCmd wraps one playbook operation as a subcommand. Arguments
// after "--" are passed to Ansible unchanged.
func newOperationCmd(op deploy.Operation, use, short string) *cobra.Command {
	var vault bool

	cmd := &cobra.Command{
		Use:   use + " [-- ansible args]",
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := deploy.Options{AskVaultPass: vault, ExtraArgs: args}
			fmt.Println(operationBanner(op))
			if err := dispatcher.Run(cmd.Context(), op, opts); err != nil {
				fmt.Println(red("✗ " + operationFailure(op)))
				return err
			}
			fmt.Println(green("✓ " + operationSuccess(op)))
			return nil
		},
	}
	cmd.Flags().BoolVar(&vault, "vault", false, "prompt for the vault password")
	return cmd
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check Ansible, project files and vault",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := dispatcher.CheckPrerequisites(cmd.Context())
			printPrereqs(os.Stdout, report, err)
			return err
		},
	}
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current inventory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showInventory(os.Stdout)
		},
	}
}

func newCollectionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "collections",
		Short: "Install Ansible collections from requirements.yml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("Installing Ansible collections...")
			if err := dispatcher.InstallCollections(cmd.Context()); err != nil {
				fmt.Println(red("✗ Failed to install collections"))
				return err
			}
			fmt.Println(green("✓ Collections installed successfully"))
			return nil
		},
	}
}

func showInventory(w io.Writer) error {
	cfg := dispatcherConfig(userSettings)
	path := cfg.Inventory
	if !filepath.IsAbs(path) {
		path = filepath.Join(cfg.ProjectDir, path)
	}

	inv, err := inventory.Load(path)
	if err != nil {
		fmt.Fprintln(w, red("✗ Inventory file not found or unreadable"))
		return err
	}
	fmt.Fprintf(w, "Current Inventory: %s\n\n", path)
	inventory.WriteHosts(w, inv)
	return nil
}

// printPrereqs renders a prerequisite report.
func printPrereqs(w io.Writer, report *deploy.PrereqReport, err error) {
	fmt.Fprintln(w, "Checking prerequisites...")
	if report == nil {
		return
	}
	if report.AnsibleVersion == "" {
		fmt.Fprintf(w, "  %s %s\n", cli.DotPad("ansible", 30), red("not installed"))
		return
	}
	fmt.Fprintf(w, "  %s %s\n", cli.DotPad("ansible", 30), green(report.AnsibleVersion))

	for _, f := range report.Files {
		status := green("ok")
		if !f.Present {
			status = red("missing")
		}
		fmt.Fprintf(w, "  %s %s\n", cli.DotPad(f.Name, 30), status)
	}
	if err != nil {
		return
	}

	switch report.Vault {
	case deploy.VaultAccessible:
		fmt.Fprintf(w, "  %s %s\n", cli.DotPad("vault", 30), green("accessible"))
	case deploy.VaultUnreadable:
		fmt.Fprintf(w, "  %s %s\n", cli.DotPad("vault", 30), yellow("may not be properly encrypted"))
		fmt.Fprintf(w, "    %s\n", report.VaultDetail)
	default:
		fmt.Fprintf(w, "  %s %s\n", cli.DotPad("vault", 30), cli.Dim("not found"))
	}
}

func operationBanner(op deploy.Operation) string {
	switch op {
	case deploy.OpDeployFabric:
		return "Deploying spine-leaf fabric..."
	case deploy.OpDeployTenants:
		return "Deploying tenant networks..."
	case deploy.OpAddLeaf:
		return "Adding new leaf switch..."
	case deploy.OpAddSpine:
		return "Adding new spine switch..."
	case deploy.OpVerify:
		return "Verifying fabric..."
	}
	return string(op) + "..."
}

func operationSuccess(op deploy.Operation) string {
	switch op {
	case deploy.OpDeployFabric:
		return "Fabric deployment completed"
	case deploy.OpDeployTenants:
		return "Tenant deployment completed"
	case deploy.OpAddLeaf:
		return "Leaf switch added successfully"
	case deploy.OpAddSpine:
		return "Spine switch added successfully"
	case deploy.OpVerify:
		return "Fabric verification completed"
	}
	return string(op) + " completed"
}

func operationFailure(op deploy.Operation) string {
	switch op {
	case deploy.OpDeployFabric:
		return "Fabric deployment failed"
	case deploy.OpDeployTenants:
		return "Tenant deployment failed"
	case deploy.OpAddLeaf:
		return "Failed to add leaf switch"
	case deploy.OpAddSpine:
		return "Failed to add spine switch"
	case deploy.OpVerify:
		return "Fabric verification failed"
	}
	return string(op) + " failed"
}
