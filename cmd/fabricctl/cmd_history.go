package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/newtron-network/fabricgen/pkg/audit"
	"github.com/newtron-network/fabricgen/pkg/cli"
)

func newHistoryCmd() *cobra.Command {
	var (
		user      string
		operation string
		last      string
		limit     int
		failures  bool
		vault     bool
		asJSON    bool

		allInventories bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past deployment runs",
		Long: `Show deployment runs recorded in the audit log, newest first. Only runs
against the current inventory are listed unless --all is given.

Examples:
  fabricctl history --last 24h
  fabricctl history --operation add-leaf --failures
  fabricctl history --user alice --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if auditLog == nil {
				return fmt.Errorf("audit log %s is not available", userSettings.GetAuditLog())
			}
			filter := audit.Filter{
				User:        user,
				Operation:   operation,
				Inventory:   dispatcherConfig(userSettings).Inventory,
				Limit:       limit,
				FailureOnly: failures,
				VaultOnly:   vault,
			}
			if allInventories {
				filter.Inventory = ""
			}
			if last != "" {
				d, err := time.ParseDuration(last)
				if err != nil {
					return fmt.Errorf("invalid duration: %s", last)
				}
				filter.StartTime = time.Now().Add(-d)
			}

			events, err := auditLog.Query(filter)
			if err != nil {
				return fmt.Errorf("querying audit log: %w", err)
			}
			if asJSON {
				return json.NewEncoder(os.Stdout).Encode(events)
			}
			writeHistory(os.Stdout, events)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "filter by user")
	cmd.Flags().StringVar(&operation, "operation", "", "filter by operation, e.g. deploy-fabric")
	cmd.Flags().StringVar(&last, "last", "", "only runs within this duration, e.g. 24h")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum runs to show")
	cmd.Flags().BoolVar(&failures, "failures", false, "only failed runs")
	cmd.Flags().BoolVar(&vault, "vault", false, "only runs that used the vault")
	cmd.Flags().BoolVar(&allInventories, "all", false, "include runs against other inventories")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func writeHistory(w io.Writer, events []*audit.Event) {
	if len(events) == 0 {
		fmt.Fprintln(w, "No deployment runs recorded")
		return
	}

	t := cli.NewTableTo(w, "TIMESTAMP", "USER", "OPERATION", "VAULT", "DURATION", "STATUS")
	for _, e := range events {
		status := green("ok")
		if !e.Success {
			status = red("failed")
		}
		vault := "-"
		if e.Vault {
			vault = "yes"
		}
		t.Row(
			e.Timestamp.Format("2006-01-02 15:04:05"),
			e.User,
			e.Operation,
			vault,
			e.Duration.Round(time.Second).String(),
			status,
		)
	}
	t.Flush()
}
