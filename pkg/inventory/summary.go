package inventory

import (
	"fmt"
	"io"
	"strings"

	"github.com/newtron-network/fabricgen/pkg/cli"
	"github.com/newtron-network/fabricgen/pkg/fabric"
	"github.com/newtron-network/fabricgen/pkg/topology"
)

const ruleWidth = 60

// WriteSummary prints the configuration review shown before an inventory is
// saved.
func WriteSummary(w io.Writer, cfg *fabric.Config, fab *topology.Fabric) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, cli.Heading("CONFIGURATION SUMMARY", ruleWidth))
	fmt.Fprintf(w, "Fabric Name: %s\n", cfg.Name)
	fmt.Fprintf(w, "BGP ASN: %d\n", cfg.ASN)
	fmt.Fprintf(w, "Spine Switches: %d\n", cfg.SpineCount)
	fmt.Fprintf(w, "Leaf Switches: %d\n", cfg.LeafCount)
	fmt.Fprintln(w)

	fmt.Fprintln(w, cli.Bold("IP Addressing:"))
	fmt.Fprintf(w, "  Spine Loopbacks: %s\n", cfg.SpineLoopback)
	fmt.Fprintf(w, "  Leaf Loopbacks: %s\n", cfg.LeafLoopback)
	fmt.Fprintf(w, "  VTEP Loopbacks: %s\n", cfg.VTEPLoopback)
	fmt.Fprintf(w, "  Interconnect Base: %s\n", cfg.Interconnect)
	fmt.Fprintln(w)

	fmt.Fprintln(w, cli.Bold("Interface Mapping:"))
	switch m := cfg.Interfaces.(type) {
	case fabric.SequentialMapping:
		fmt.Fprintln(w, "  Mode: Sequential")
		fmt.Fprintf(w, "  Spine Interface Start: %s\n", m.Name(m.SpineStart))
		fmt.Fprintf(w, "  Leaf Interface Start: %s\n", m.Name(m.LeafStart))
		fmt.Fprintf(w, "  Leaf Access Interface: %s\n", m.AccessName())
	case fabric.ExactMapping:
		fmt.Fprintln(w, "  Mode: Exact Match (user-specified interfaces)")
		for _, d := range fab.Devices() {
			names := make([]string, len(d.Interfaces))
			for i, intf := range d.Interfaces {
				names[i] = intf.Name
			}
			fmt.Fprintf(w, "  %s: %s\n", d.Hostname, strings.Join(names, ", "))
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, cli.Bold("Management IPs:"))
	switch cfg.Management.(type) {
	case fabric.ManualMgmt:
		fmt.Fprintln(w, "  Mode: Manual (user-specified)")
	default:
		fmt.Fprintln(w, "  Mode: Auto-generated")
	}
	t := cli.NewTableTo(w, "HOST", "MGMT", "LOOPBACK0", "VTEP").WithPrefix("  ")
	for _, d := range fab.Devices() {
		vtep := d.VTEPLoopback
		if vtep == "" {
			vtep = "-"
		}
		t.Row(d.Hostname, d.MgmtAddress, d.Loopback0, vtep)
	}
	t.Flush()
	fmt.Fprintln(w)
	fmt.Fprintln(w, cli.Rule(ruleWidth))
}

// WriteLinks prints one row per spine-leaf link with the interface and
// address on each end.
func WriteLinks(w io.Writer, fab *topology.Fabric) {
	t := cli.NewTableTo(w, "SPINE", "INTERFACE", "ADDRESS", "LEAF", "INTERFACE", "ADDRESS")
	for s, spine := range fab.Spines {
		for l, leaf := range fab.Leaves {
			down := spine.Interfaces[l]
			up := leaf.Interfaces[s]
			t.Row(spine.Hostname, down.Name, down.IP, leaf.Hostname, up.Name, up.IP)
		}
	}
	t.Flush()
}

// WriteHosts prints a loaded inventory as a host table followed by each
// host's interfaces.
func WriteHosts(w io.Writer, inv *Inventory) {
	v := inv.All.Vars
	fmt.Fprintf(w, "%s (AS %d)\n\n", cli.Bold(v.FabricName), v.ASN)

	t := cli.NewTableTo(w, "HOST", "ROLE", "ID", "MGMT", "LOOPBACK0", "VTEP", "INTERFACES")
	for _, name := range inv.SpineNames() {
		h := inv.All.Children.Spine.Hosts[name]
		t.Row(name, string(fabric.RoleSpine), fmt.Sprint(h.SpineID), h.AnsibleHost, h.Loopback0, "-", fmt.Sprint(len(h.Interfaces)))
	}
	for _, name := range inv.LeafNames() {
		h := inv.All.Children.Leaf.Hosts[name]
		t.Row(name, string(fabric.RoleLeaf), fmt.Sprint(h.LeafID), h.AnsibleHost, h.Loopback0, h.VTEPLoopback, fmt.Sprint(len(h.Interfaces)))
	}
	t.Flush()

	for _, name := range inv.SpineNames() {
		writeHostInterfaces(w, name, inv.All.Children.Spine.Hosts[name].Interfaces)
	}
	for _, name := range inv.LeafNames() {
		writeHostInterfaces(w, name, inv.All.Children.Leaf.Hosts[name].Interfaces)
	}
}

func writeHostInterfaces(w io.Writer, host string, intfs []HostInterface) {
	fmt.Fprintf(w, "\n%s\n", cli.Bold(host))
	t := cli.NewTableTo(w, "INTERFACE", "DESCRIPTION", "ADDRESS").WithPrefix("  ")
	for _, i := range intfs {
		addr := i.IP
		if i.Mode != "" {
			addr = fmt.Sprintf("%s vlan %s", i.Mode, i.VLAN)
		}
		t.Row(i.Interface, i.Description, addr)
	}
	t.Flush()
}
