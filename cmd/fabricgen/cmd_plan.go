package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/newtron-network/fabricgen/pkg/cli"
	"github.com/newtron-network/fabricgen/pkg/inventory"
	"github.com/newtron-network/fabricgen/pkg/util"
)

func newPlanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Print the address plan without writing anything",
		Long: `Plan resolves the fabric definition and prints every device's addresses
and every spine-leaf link.

Examples:
  fabricgen plan -c fabric.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveConfigPath(true)
			if err != nil {
				return err
			}
			cf, err := loadDefinition(path)
			if err != nil {
				return err
			}
			g, err := generate(cf)
			if err != nil {
				return err
			}

			fmt.Printf("Fabric: %s (AS %d)\n\n", cli.Bold(g.Config.Name), g.Config.ASN)

			t := cli.NewTable("HOST", "ROLE", "MGMT", "LOOPBACK0", "VTEP")
			for _, d := range g.Fabric.Devices() {
				vtep := d.VTEPLoopback
				if vtep == "" {
					vtep = "-"
				}
				t.Row(d.Hostname, util.CapitalizeFirst(string(d.Role)), d.MgmtAddress, d.Loopback0, vtep)
			}
			t.Flush()
			fmt.Println()

			inventory.WriteLinks(os.Stdout, g.Fabric)
			fmt.Printf("\n%d links\n", len(g.Plan.Interconnects))
			return nil
		},
	}
}
