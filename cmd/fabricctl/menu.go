package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/newtron-network/fabricgen/pkg/cli"
	"github.com/newtron-network/fabricgen/pkg/deploy"
	"github.com/newtron-network/fabricgen/pkg/wizard"
)

// menuItem is one numbered entry. Items with an op run a playbook.
type menuItem struct {
	label string
	op    deploy.Operation
}

var menuItems = []menuItem{
	{label: "Generate Inventory"},
	{label: "Deploy Complete Fabric", op: deploy.OpDeployFabric},
	{label: "Deploy Tenant Networks", op: deploy.OpDeployTenants},
	{label: "Add New Leaf Switch", op: deploy.OpAddLeaf},
	{label: "Add New Spine Switch", op: deploy.OpAddSpine},
	{label: "Verify Fabric", op: deploy.OpVerify},
	{label: "Show Inventory"},
	{label: "Install Collections"},
	{label: "Exit"},
}

func printMenu(w io.Writer) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, cli.Heading("SPINE-LEAF FABRIC MANAGER", 60))
	for i, item := range menuItems {
		fmt.Fprintf(w, "%d. %s\n", i+1, item.label)
	}
	fmt.Fprintln(w, "------------------------------------------------------------")
}

// runMenu checks prerequisites and then loops over the menu until Exit or
// end of input. Operation failures are reported and the loop continues.
func runMenu(ctx context.Context, in io.Reader, out io.Writer) error {
	p := wizard.New(in, out)

	fmt.Fprintln(out, cli.Bold("Welcome to the Spine-Leaf Fabric Manager"))
	report, err := dispatcher.CheckPrerequisites(ctx)
	printPrereqs(out, report, err)
	if err != nil {
		fmt.Fprintln(out, red("\nPrerequisites not met. Please resolve issues and try again."))
		return err
	}

	for {
		printMenu(out)
		choice, err := p.Line("Select an option (1-9)")
		if errors.Is(err, wizard.ErrInputClosed) {
			fmt.Fprintln(out, "\nGoodbye!")
			return nil
		}
		if err != nil {
			return err
		}

		done, err := dispatch(ctx, p, out, choice)
		if errors.Is(err, wizard.ErrInputClosed) {
			fmt.Fprintln(out, "\nOperation cancelled")
			return nil
		}
		if err != nil {
			fmt.Fprintf(out, "%s %v\n", red("Error:"), err)
		}
		if done {
			fmt.Fprintln(out, "Goodbye!")
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		p.PressEnter()
	}
}

// dispatch runs one menu choice. It reports true when the user chose Exit.
func dispatch(ctx context.Context, p *wizard.Prompter, out io.Writer, choice string) (bool, error) {
	switch choice {
	case "1":
		fmt.Fprintln(out, "Generating inventory...")
		if err := dispatcher.GenerateInventory(ctx); err != nil {
			fmt.Fprintln(out, red("✗ Failed to generate inventory"))
			return false, err
		}
		fmt.Fprintln(out, green("✓ Inventory generation completed"))
	case "2", "3", "4", "5", "6":
		item := menuItems[choice[0]-'1']
		printLastRun(out, item.op)
		if item.op == deploy.OpDeployFabric {
			ok, err := p.AskYesNo("This will deploy a complete fabric. Continue?")
			if err != nil || !ok {
				return false, err
			}
		}
		vault, err := p.AskYesNo("Use vault for credentials?")
		if err != nil {
			return false, err
		}
		fmt.Fprintln(out, operationBanner(item.op))
		if err := dispatcher.Run(ctx, item.op, deploy.Options{AskVaultPass: vault}); err != nil {
			fmt.Fprintln(out, red("✗ "+operationFailure(item.op)))
			return false, err
		}
		fmt.Fprintln(out, green("✓ "+operationSuccess(item.op)))
	case "7":
		return false, showInventory(out)
	case "8":
		fmt.Fprintln(out, "Installing Ansible collections...")
		if err := dispatcher.InstallCollections(ctx); err != nil {
			fmt.Fprintln(out, red("✗ Failed to install collections"))
			return false, err
		}
		fmt.Fprintln(out, green("✓ Collections installed successfully"))
	case "9":
		return true, nil
	default:
		fmt.Fprintln(out, red("Invalid choice. Please select 1-9."))
	}
	return false, nil
}

// printLastRun notes when op last ran against any inventory.
func printLastRun(out io.Writer, op deploy.Operation) {
	if auditLog == nil {
		return
	}
	last, err := auditLog.LastRun(string(op))
	if err != nil || last == nil {
		return
	}
	status := green("succeeded")
	if !last.Success {
		status = red("failed")
	}
	fmt.Fprintf(out, "Last run: %s by %s, %s\n", last.Timestamp.Format("2006-01-02 15:04"), last.User, status)
}
