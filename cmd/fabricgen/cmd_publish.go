package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/newtron-network/fabricgen/pkg/inventory"
	"github.com/newtron-network/fabricgen/pkg/store"
)

func newPublishCmd() *cobra.Command {
	var (
		addr    string
		db      int
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish the saved inventory to Redis",
		Long: `Publish writes the saved inventory into Redis hashes:

  FABRIC|<fabric>                  fabric-wide variables
  DEVICE|<fabric>|<host>           per-device addresses
  INTERFACE|<fabric>|<host>|<if>   per-interface assignment

Keys left over from an earlier publish of the same fabric are removed in
the same transaction.

Examples:
  fabricgen publish
  fabricgen publish --redis 10.0.0.5:6379 --db 2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := inventory.Load(inventoryPath)
			if err != nil {
				return err
			}

			if addr == "" {
				addr = userSettings.GetRedisAddr()
			}
			if !cmd.Flags().Changed("db") {
				db = userSettings.RedisDB
			}

			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			pub := store.NewPublisher(addr, userSettings.RedisPassword, db)
			defer pub.Close()
			if err := pub.Connect(ctx); err != nil {
				return err
			}

			n, err := pub.Publish(ctx, inv)
			if err != nil {
				return err
			}
			fmt.Printf("%s Published %s to %s (db %d): %d entries\n",
				green("✓"), inv.All.Vars.FabricName, addr, db, n)
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "redis", "", "Redis address (default from settings)")
	cmd.Flags().IntVar(&db, "db", 0, "Redis database")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "overall timeout")
	return cmd
}
