// Package inventory renders a built fabric into an Ansible YAML inventory
// and reads it back.
//
// Field order in the structs below is alphabetical so saved files keep the
// key order existing playbooks and diffs expect.
package inventory

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/newtron-network/fabricgen/pkg/fabric"
	"github.com/newtron-network/fabricgen/pkg/topology"
)

// DefaultPath is where the inventory is written relative to the project.
const DefaultPath = "inventory/hosts.yml"

// Inventory is the root of an Ansible YAML inventory.
type Inventory struct {
	All Group `yaml:"all"`
}

// Group is the "all" group: fabric-wide vars plus the spine and leaf children.
type Group struct {
	Children Children `yaml:"children"`
	Vars     Vars     `yaml:"vars"`
}

// Vars are the fabric-wide variables.
type Vars struct {
	ASN                    uint32 `yaml:"asn"`
	FabricName             string `yaml:"fabric_name"`
	InterconnectSubnetBase string `yaml:"interconnect_subnet_base"`
	LeafLoopbackSubnet     string `yaml:"leaf_loopback_subnet"`
	SpineLoopbackSubnet    string `yaml:"spine_loopback_subnet"`
	VTEPLoopbackSubnet     string `yaml:"vtep_loopback_subnet"`
}

type Children struct {
	Leaf  LeafGroup  `yaml:"leaf"`
	Spine SpineGroup `yaml:"spine"`
}

type SpineGroup struct {
	Hosts map[string]*SpineHost `yaml:"hosts"`
}

type LeafGroup struct {
	Hosts map[string]*LeafHost `yaml:"hosts"`
}

// SpineHost holds the host vars of one spine.
type SpineHost struct {
	AnsibleHost string          `yaml:"ansible_host"`
	Loopback0   string          `yaml:"loopback0"`
	SpineID     int             `yaml:"spine_id"`
	Interfaces  []HostInterface `yaml:"spine_interfaces"`
}

// LeafHost holds the host vars of one leaf.
type LeafHost struct {
	AnsibleHost  string          `yaml:"ansible_host"`
	LeafID       int             `yaml:"leaf_id"`
	Interfaces   []HostInterface `yaml:"leaf_interfaces"`
	Loopback0    string          `yaml:"loopback0"`
	VTEPLoopback string          `yaml:"vtep_loopback"`
}

// HostInterface is one entry of a host's interface list. Fabric links set
// IP; access ports set Mode and VLAN. VLAN is a string, as playbooks
// template it verbatim.
type HostInterface struct {
	Description string `yaml:"description"`
	Interface   string `yaml:"interface"`
	IP          string `yaml:"ip,omitempty"`
	Mode        string `yaml:"mode,omitempty"`
	VLAN        string `yaml:"vlan,omitempty"`
}

// Render converts a built fabric into its inventory form.
func Render(cfg *fabric.Config, fab *topology.Fabric) *Inventory {
	inv := &Inventory{
		All: Group{
			Vars: Vars{
				ASN:                    cfg.ASN,
				FabricName:             cfg.Name,
				InterconnectSubnetBase: cfg.Interconnect.CIDR,
				LeafLoopbackSubnet:     cfg.LeafLoopback.CIDR,
				SpineLoopbackSubnet:    cfg.SpineLoopback.CIDR,
				VTEPLoopbackSubnet:     cfg.VTEPLoopback.CIDR,
			},
			Children: Children{
				Spine: SpineGroup{Hosts: make(map[string]*SpineHost, len(fab.Spines))},
				Leaf:  LeafGroup{Hosts: make(map[string]*LeafHost, len(fab.Leaves))},
			},
		},
	}

	for _, d := range fab.Spines {
		inv.All.Children.Spine.Hosts[d.Hostname] = &SpineHost{
			AnsibleHost: d.MgmtAddress,
			Loopback0:   d.Loopback0,
			SpineID:     d.ID(),
			Interfaces:  renderInterfaces(d.Interfaces),
		}
	}
	for _, d := range fab.Leaves {
		inv.All.Children.Leaf.Hosts[d.Hostname] = &LeafHost{
			AnsibleHost:  d.MgmtAddress,
			LeafID:       d.ID(),
			Interfaces:   renderInterfaces(d.Interfaces),
			Loopback0:    d.Loopback0,
			VTEPLoopback: d.VTEPLoopback,
		}
	}
	return inv
}

func renderInterfaces(in []topology.Interface) []HostInterface {
	out := make([]HostInterface, 0, len(in))
	for _, i := range in {
		hi := HostInterface{
			Description: i.Description,
			Interface:   i.Name,
			IP:          i.IP,
		}
		if i.IsAccess() {
			hi.Mode = i.Mode
			hi.VLAN = strconv.Itoa(i.VLAN)
		}
		out = append(out, hi)
	}
	return out
}

// SpineNames returns the spine hostnames in sorted order.
func (inv *Inventory) SpineNames() []string {
	return sortedKeys(inv.All.Children.Spine.Hosts)
}

// LeafNames returns the leaf hostnames in sorted order.
func (inv *Inventory) LeafNames() []string {
	return sortedKeys(inv.All.Children.Leaf.Hosts)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Marshal encodes the inventory as YAML with two-space indentation.
func (inv *Inventory) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(inv); err != nil {
		return nil, fmt.Errorf("encoding inventory: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding inventory: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes the inventory to path, creating parent directories.
func Save(path string, inv *Inventory) error {
	data, err := inv.Marshal()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating inventory directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing inventory: %w", err)
	}
	return nil
}

// Load reads an inventory written by Save (or by hand in the same layout).
func Load(path string) (*Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading inventory: %w", err)
	}
	var inv Inventory
	if err := yaml.Unmarshal(data, &inv); err != nil {
		return nil, fmt.Errorf("parsing inventory YAML: %w", err)
	}
	if len(inv.All.Children.Spine.Hosts) == 0 && len(inv.All.Children.Leaf.Hosts) == 0 {
		return nil, fmt.Errorf("inventory %s has no spine or leaf hosts", path)
	}
	return &inv, nil
}
