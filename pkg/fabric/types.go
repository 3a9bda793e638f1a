// Package fabric defines the input model for a two-tier spine/leaf fabric:
// sizing, the four address pools and the per-mode interface and management
// addressing choices.
//
// A Config is normally produced by ConfigFile.Resolve, which applies
// defaults, validates every field and parses the subnets. Planning and
// building code only ever sees a Config.
package fabric

import (
	"fmt"
	"net"
	"strconv"
)

// Role is the tier a device sits in.
type Role string

const (
	RoleSpine Role = "spine"
	RoleLeaf  Role = "leaf"
)

// Hostname returns the inventory hostname for the 0-based index, e.g.
// RoleSpine.Hostname(0) == "spine01".
func (r Role) Hostname(index int) string {
	return fmt.Sprintf("%s%02d", r, index+1)
}

// Subnet is one of the fabric address pools. Name is the configuration key it
// came from and is used to pinpoint errors.
type Subnet struct {
	Name string
	CIDR string
	Net  *net.IPNet
}

func (s Subnet) String() string {
	return s.CIDR
}

// Subnet configuration keys.
const (
	SpineLoopbackKey = "spine_loopback_subnet"
	LeafLoopbackKey  = "leaf_loopback_subnet"
	VTEPLoopbackKey  = "vtep_loopback_subnet"
	InterconnectKey  = "interconnect_subnet_base"
)

// Config is the validated, immutable description of a fabric.
type Config struct {
	Name string
	ASN  uint32

	SpineLoopback Subnet
	LeafLoopback  Subnet
	VTEPLoopback  Subnet
	Interconnect  Subnet

	SpineCount int
	LeafCount  int

	Interfaces InterfaceMapping
	Management MgmtAddressing
}

// SpineHostnames returns spine01..spineNN.
func (c *Config) SpineHostnames() []string {
	return hostnames(RoleSpine, c.SpineCount)
}

// LeafHostnames returns leaf01..leafNN.
func (c *Config) LeafHostnames() []string {
	return hostnames(RoleLeaf, c.LeafCount)
}

// Hostnames returns every device hostname, spines first.
func (c *Config) Hostnames() []string {
	return append(c.SpineHostnames(), c.LeafHostnames()...)
}

// Subnets returns the four address pools in a fixed order.
func (c *Config) Subnets() []Subnet {
	return []Subnet{c.SpineLoopback, c.LeafLoopback, c.VTEPLoopback, c.Interconnect}
}

func hostnames(role Role, count int) []string {
	names := make([]string, 0, count)
	for i := 0; i < count; i++ {
		names = append(names, role.Hostname(i))
	}
	return names
}

// InterfaceMode names an interface naming strategy.
type InterfaceMode string

const (
	ModeSequential InterfaceMode = "sequential"
	ModeExact      InterfaceMode = "exact"
)

// InterfaceMapping selects how interface identifiers are chosen. The only
// implementations are SequentialMapping and ExactMapping.
type InterfaceMapping interface {
	Mode() InterfaceMode
	isInterfaceMapping()
}

// SequentialMapping derives interface names from running counters.
type SequentialMapping struct {
	Prefix     string // e.g. "10GE1/0/"
	SpineStart int
	LeafStart  int
	LeafAccess string // access port number, or a full interface name
}

func (SequentialMapping) Mode() InterfaceMode { return ModeSequential }
func (SequentialMapping) isInterfaceMapping() {}

// Name formats port number n with the mapping prefix.
func (m SequentialMapping) Name(n int) string {
	return m.Prefix + strconv.Itoa(n)
}

// AccessName returns the leaf access interface. A bare port number is
// prefixed; anything else is taken as a complete interface name.
func (m SequentialMapping) AccessName() string {
	if _, err := strconv.Atoi(m.LeafAccess); err == nil {
		return m.Prefix + m.LeafAccess
	}
	return m.LeafAccess
}

// ExactMapping carries caller-supplied interface names per hostname. Spine
// lists hold one entry per leaf; leaf lists hold one entry per spine followed
// by the access interface. Lengths must match exactly: a short list is an
// IncompleteInterfaceMapError and a long one an InvalidConfigError.
type ExactMapping struct {
	Spines map[string][]string
	Leaves map[string][]string
}

func (ExactMapping) Mode() InterfaceMode { return ModeExact }
func (ExactMapping) isInterfaceMapping() {}

// MgmtMode names a management addressing strategy.
type MgmtMode string

const (
	MgmtAuto   MgmtMode = "auto"
	MgmtManual MgmtMode = "manual"
)

// MgmtAddressing selects how management addresses are assigned. The only
// implementations are AutoMgmt and ManualMgmt.
type MgmtAddressing interface {
	Mode() MgmtMode
	isMgmtAddressing()
}

// AutoMgmt assigns Base+Start+i to the i-th device, spines first.
type AutoMgmt struct {
	Base  net.IP
	Start int
}

func (AutoMgmt) Mode() MgmtMode   { return MgmtAuto }
func (AutoMgmt) isMgmtAddressing() {}

// ManualMgmt maps every hostname to an explicit address.
type ManualMgmt struct {
	Addresses map[string]string
}

func (ManualMgmt) Mode() MgmtMode   { return MgmtManual }
func (ManualMgmt) isMgmtAddressing() {}
