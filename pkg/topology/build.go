// Package topology turns a fabric config and its address plan into per-device
// records: hostnames, loopbacks, management addresses and the interface list
// of every spine and leaf.
package topology

import (
	"fmt"

	"github.com/newtron-network/fabricgen/pkg/addrplan"
	"github.com/newtron-network/fabricgen/pkg/fabric"
	"github.com/newtron-network/fabricgen/pkg/util"
)

const (
	accessDescription = "Server Access"
	accessMode        = "access"
	accessVLANBase    = 100
)

// Interface is one configured port on a device. Fabric links carry IP;
// access ports carry Mode and VLAN.
type Interface struct {
	Name        string
	Description string
	IP          string
	Mode        string
	VLAN        int
}

// IsAccess reports whether the interface is a server-facing access port.
func (i Interface) IsAccess() bool {
	return i.Mode == accessMode
}

// Device is the inventory record of one switch. VTEPLoopback is empty for
// spines.
type Device struct {
	Role         fabric.Role
	Index        int // 0-based within the role
	Hostname     string
	MgmtAddress  string
	Loopback0    string
	VTEPLoopback string
	Interfaces   []Interface
}

// ID is the 1-based device number within its role.
func (d *Device) ID() int {
	return d.Index + 1
}

// Fabric is the complete set of devices.
type Fabric struct {
	Name   string
	ASN    uint32
	Spines []*Device
	Leaves []*Device
}

// Devices returns every device, spines first.
func (f *Fabric) Devices() []*Device {
	out := make([]*Device, 0, len(f.Spines)+len(f.Leaves))
	out = append(out, f.Spines...)
	return append(out, f.Leaves...)
}

// Device looks a device up by hostname.
func (f *Fabric) Device(hostname string) (*Device, bool) {
	for _, d := range f.Devices() {
		if d.Hostname == hostname {
			return d, true
		}
	}
	return nil, false
}

// Build assembles the device records for cfg from plan.
func Build(cfg *fabric.Config, plan *addrplan.AddressPlan) (*Fabric, error) {
	if cfg == nil || plan == nil {
		return nil, util.NewInvalidConfigError("", "config and plan are required")
	}
	if err := checkPlanSize(cfg, plan); err != nil {
		return nil, err
	}
	names, err := newNamer(cfg)
	if err != nil {
		return nil, err
	}

	fab := &Fabric{
		Name:   cfg.Name,
		ASN:    cfg.ASN,
		Spines: make([]*Device, 0, cfg.SpineCount),
		Leaves: make([]*Device, 0, cfg.LeafCount),
	}

	for s := 0; s < cfg.SpineCount; s++ {
		d, err := buildSpine(cfg, plan, names, s)
		if err != nil {
			return nil, err
		}
		fab.Spines = append(fab.Spines, d)
	}
	for l := 0; l < cfg.LeafCount; l++ {
		d, err := buildLeaf(cfg, plan, names, l)
		if err != nil {
			return nil, err
		}
		fab.Leaves = append(fab.Leaves, d)
	}

	util.WithFabric(cfg.Name).Debugf("built %d spines and %d leaves", len(fab.Spines), len(fab.Leaves))
	return fab, nil
}

func checkPlanSize(cfg *fabric.Config, plan *addrplan.AddressPlan) error {
	ns, nl := cfg.SpineCount, cfg.LeafCount
	if ns < 1 || nl < 1 {
		return util.NewInvalidConfigError("", "spine and leaf counts must be at least 1, got %d/%d", ns, nl)
	}
	checks := []struct {
		what      string
		got, want int
	}{
		{"spine loopbacks", len(plan.SpineLoopbacks), ns},
		{"leaf loopbacks", len(plan.LeafLoopbacks), nl},
		{"VTEP loopbacks", len(plan.VTEPLoopbacks), nl},
		{"interconnects", len(plan.Interconnects), ns * nl},
		{"management addresses", len(plan.Management), ns + nl},
	}
	for _, c := range checks {
		if c.got != c.want {
			return util.NewInvalidConfigError("", "address plan has %d %s, config needs %d", c.got, c.what, c.want)
		}
	}
	return nil
}

func buildSpine(cfg *fabric.Config, plan *addrplan.AddressPlan, names namer, s int) (*Device, error) {
	hostname := fabric.RoleSpine.Hostname(s)
	d := &Device{
		Role:        fabric.RoleSpine,
		Index:       s,
		Hostname:    hostname,
		MgmtAddress: plan.SpineMgmt(s),
		Loopback0:   plan.SpineLoopbacks[s],
		Interfaces:  make([]Interface, 0, cfg.LeafCount),
	}

	ifNames, err := names.spine(hostname)
	if err != nil {
		return nil, err
	}
	for l := 0; l < cfg.LeafCount; l++ {
		link, _ := plan.Interconnect(s, l)
		d.Interfaces = append(d.Interfaces, Interface{
			Name:        ifNames[l],
			Description: "Link to " + fabric.RoleLeaf.Hostname(l),
			IP:          link.SpineIP,
		})
	}

	if err := checkUniqueNames(d); err != nil {
		return nil, err
	}
	util.WithHost(hostname).Debugf("loopback0 %s, %d downlinks", d.Loopback0, len(d.Interfaces))
	return d, nil
}

func buildLeaf(cfg *fabric.Config, plan *addrplan.AddressPlan, names namer, l int) (*Device, error) {
	hostname := fabric.RoleLeaf.Hostname(l)
	d := &Device{
		Role:         fabric.RoleLeaf,
		Index:        l,
		Hostname:     hostname,
		MgmtAddress:  plan.LeafMgmt(l),
		Loopback0:    plan.LeafLoopbacks[l],
		VTEPLoopback: plan.VTEPLoopbacks[l],
		Interfaces:   make([]Interface, 0, cfg.SpineCount+1),
	}

	ifNames, err := names.leaf(hostname)
	if err != nil {
		return nil, err
	}
	for s := 0; s < cfg.SpineCount; s++ {
		link, _ := plan.Interconnect(s, l)
		d.Interfaces = append(d.Interfaces, Interface{
			Name:        ifNames[s],
			Description: "Link to " + fabric.RoleSpine.Hostname(s),
			IP:          link.LeafIP,
		})
	}
	d.Interfaces = append(d.Interfaces, Interface{
		Name:        ifNames[cfg.SpineCount],
		Description: accessDescription,
		Mode:        accessMode,
		VLAN:        accessVLANBase + l,
	})

	if err := checkUniqueNames(d); err != nil {
		return nil, err
	}
	util.WithHost(hostname).Debugf("loopback0 %s, vtep %s, %d uplinks", d.Loopback0, d.VTEPLoopback, cfg.SpineCount)
	return d, nil
}

func checkUniqueNames(d *Device) error {
	seen := make(map[string]string, len(d.Interfaces))
	for _, intf := range d.Interfaces {
		if prev, ok := seen[intf.Name]; ok {
			return util.NewInvalidConfigError("interfaces",
				"%s: interface %s used for both %q and %q", d.Hostname, intf.Name, prev, intf.Description)
		}
		seen[intf.Name] = intf.Description
	}
	return nil
}

// namer yields the ordered interface names for a device: one per peer, plus
// the access port last for leaves.
type namer struct {
	spine func(hostname string) ([]string, error)
	leaf  func(hostname string) ([]string, error)
}

func newNamer(cfg *fabric.Config) (namer, error) {
	switch m := cfg.Interfaces.(type) {
	case fabric.SequentialMapping:
		return sequentialNamer(m, cfg.SpineCount, cfg.LeafCount), nil
	case fabric.ExactMapping:
		return exactNamer(m, cfg.SpineCount, cfg.LeafCount), nil
	default:
		return namer{}, util.NewInvalidConfigError("interface_mapping_mode", "unsupported interface mapping %T", m)
	}
}

func sequentialNamer(m fabric.SequentialMapping, spines, leaves int) namer {
	run := func(start, n int) []string {
		out := make([]string, 0, n+1)
		for i := 0; i < n; i++ {
			out = append(out, m.Name(start+i))
		}
		return out
	}
	return namer{
		spine: func(string) ([]string, error) {
			return run(m.SpineStart, leaves), nil
		},
		leaf: func(string) ([]string, error) {
			return append(run(m.LeafStart, spines), m.AccessName()), nil
		},
	}
}

func exactNamer(m fabric.ExactMapping, spines, leaves int) namer {
	lookup := func(lists map[string][]string, hostname string, want int) ([]string, error) {
		names := lists[hostname]
		if len(names) < want {
			return nil, &util.IncompleteInterfaceMapError{Hostname: hostname, Want: want, Got: len(names)}
		}
		if len(names) > want {
			return nil, util.NewInvalidConfigError("interfaces",
				"%s: %d interfaces listed, expected exactly %d", hostname, len(names), want)
		}
		return names, nil
	}
	return namer{
		spine: func(hostname string) ([]string, error) {
			return lookup(m.Spines, hostname, leaves)
		},
		leaf: func(hostname string) ([]string, error) {
			return lookup(m.Leaves, hostname, spines+1)
		},
	}
}

// String renders a one-line description of the interface, used in summaries.
func (i Interface) String() string {
	if i.IsAccess() {
		return fmt.Sprintf("%s (%s, %s vlan %d)", i.Name, i.Description, i.Mode, i.VLAN)
	}
	return fmt.Sprintf("%s (%s, %s)", i.Name, i.Description, i.IP)
}
