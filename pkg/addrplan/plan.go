// Package addrplan allocates every address a spine/leaf fabric needs:
// loopbacks, VTEP loopbacks, point-to-point interconnects and management
// addresses.
//
// Allocation is a pure function of the fabric.Config. Identical inputs
// always produce identical plans, and no address is handed out twice.
package addrplan

import (
	"fmt"
	"net"

	"github.com/newtron-network/fabricgen/pkg/fabric"
	"github.com/newtron-network/fabricgen/pkg/util"
)

const (
	loopbackPrefixLen     = 32
	interconnectPrefixLen = 30
)

// Link is the address pair for one spine-leaf connection. Spine and Leaf are
// 0-based indices.
type Link struct {
	Spine   int
	Leaf    int
	SpineIP string // e.g. "10.1.0.1/30"
	LeafIP  string
}

// AddressPlan holds the allocated addresses. Loopbacks and interconnects are
// rendered with their prefix length; management addresses are bare.
type AddressPlan struct {
	SpineLoopbacks []string
	LeafLoopbacks  []string
	VTEPLoopbacks  []string

	// Interconnects is ordered spine-major, leaf-minor.
	Interconnects []Link

	// Management holds one address per device, spines first.
	Management []string
}

// Interconnect returns the link between spine s and leaf l.
func (p *AddressPlan) Interconnect(s, l int) (Link, bool) {
	nl := len(p.LeafLoopbacks)
	if s < 0 || l < 0 || l >= nl {
		return Link{}, false
	}
	i := s*nl + l
	if i >= len(p.Interconnects) {
		return Link{}, false
	}
	return p.Interconnects[i], true
}

// SpineMgmt returns the management address of spine s.
func (p *AddressPlan) SpineMgmt(s int) string {
	return p.Management[s]
}

// LeafMgmt returns the management address of leaf l.
func (p *AddressPlan) LeafMgmt(l int) string {
	return p.Management[len(p.SpineLoopbacks)+l]
}

// Plan allocates the full address plan for cfg.
func Plan(cfg *fabric.Config) (*AddressPlan, error) {
	if err := checkConfig(cfg); err != nil {
		return nil, err
	}
	log := util.WithFabric(cfg.Name)

	if err := checkOverlap(cfg.Subnets()); err != nil {
		return nil, err
	}

	plan := &AddressPlan{}
	var err error
	if plan.SpineLoopbacks, err = allocateLoopbacks(cfg.SpineLoopback, cfg.SpineCount); err != nil {
		return nil, err
	}
	if plan.LeafLoopbacks, err = allocateLoopbacks(cfg.LeafLoopback, cfg.LeafCount); err != nil {
		return nil, err
	}
	if plan.VTEPLoopbacks, err = allocateLoopbacks(cfg.VTEPLoopback, cfg.LeafCount); err != nil {
		return nil, err
	}
	if plan.Interconnects, err = allocateInterconnects(cfg.Interconnect, cfg.SpineCount, cfg.LeafCount); err != nil {
		return nil, err
	}
	if plan.Management, err = allocateManagement(cfg); err != nil {
		return nil, err
	}
	if err := checkMgmtCollisions(cfg, plan); err != nil {
		return nil, err
	}

	log.Debugf("address plan: %d loopbacks, %d VTEP loopbacks, %d links, %d management addresses",
		len(plan.SpineLoopbacks)+len(plan.LeafLoopbacks), len(plan.VTEPLoopbacks),
		len(plan.Interconnects), len(plan.Management))
	return plan, nil
}

func checkConfig(cfg *fabric.Config) error {
	if cfg == nil {
		return util.NewInvalidConfigError("", "config is nil")
	}
	if cfg.SpineCount < 1 {
		return util.NewInvalidConfigError("spine_count", "must be at least 1, got %d", cfg.SpineCount)
	}
	if cfg.LeafCount < 1 {
		return util.NewInvalidConfigError("leaf_count", "must be at least 1, got %d", cfg.LeafCount)
	}
	if cfg.Interfaces == nil {
		return util.NewInvalidConfigError("interface_mapping_mode", "no interface mapping")
	}
	if cfg.Management == nil {
		return util.NewInvalidConfigError("mgmt_mode", "no management addressing")
	}
	for _, s := range cfg.Subnets() {
		if s.Net == nil || s.Net.IP.To4() == nil {
			return util.NewInvalidSubnetError(s.Name, s.CIDR, "not a parsed IPv4 network")
		}
	}
	return nil
}

// checkOverlap rejects any pair of pools that share an address.
func checkOverlap(subnets []fabric.Subnet) error {
	for i := range subnets {
		for j := i + 1; j < len(subnets); j++ {
			if util.NetworksOverlap(subnets[i].Net, subnets[j].Net) {
				return util.NewInvalidSubnetError(subnets[j].Name, subnets[j].CIDR,
					"overlaps %s %s", subnets[i].Name, subnets[i].CIDR)
			}
		}
	}
	return nil
}

func allocateLoopbacks(s fabric.Subnet, count int) ([]string, error) {
	hosts, err := util.FirstHosts(s.Net, count)
	if err != nil {
		return nil, util.NewInvalidSubnetError(s.Name, s.CIDR, "%v", err)
	}
	out := make([]string, len(hosts))
	for i, ip := range hosts {
		out[i] = util.FormatHostPrefix(ip, loopbackPrefixLen)
	}
	return out, nil
}

// allocateInterconnects walks one host stream across the whole pool, taking
// two consecutive addresses per spine-leaf pair, spine side first.
func allocateInterconnects(s fabric.Subnet, spines, leaves int) ([]Link, error) {
	needed := uint64(2) * uint64(spines) * uint64(leaves)
	cur := util.NewHostCursor(s.Net)
	if cur.Total() < needed {
		return nil, &util.SubnetExhaustedError{CIDR: s.CIDR, Needed: needed, Available: cur.Total()}
	}

	links := make([]Link, 0, spines*leaves)
	for si := 0; si < spines; si++ {
		for li := 0; li < leaves; li++ {
			a, _ := cur.Next()
			b, _ := cur.Next()
			links = append(links, Link{
				Spine:   si,
				Leaf:    li,
				SpineIP: util.FormatHostPrefix(a, interconnectPrefixLen),
				LeafIP:  util.FormatHostPrefix(b, interconnectPrefixLen),
			})
		}
	}
	return links, nil
}

func allocateManagement(cfg *fabric.Config) ([]string, error) {
	hosts := cfg.Hostnames()
	out := make([]string, len(hosts))

	switch m := cfg.Management.(type) {
	case fabric.AutoMgmt:
		if m.Base.To4() == nil {
			return nil, util.NewInvalidConfigError("mgmt_base_ip", "not an IPv4 address: %s", m.Base)
		}
		for i := range hosts {
			ip, err := util.OffsetIPv4(m.Base, m.Start+i)
			if err != nil {
				return nil, util.NewInvalidConfigError("mgmt_start", "%s: %v", hosts[i], err)
			}
			out[i] = ip.String()
		}
	case fabric.ManualMgmt:
		for i, h := range hosts {
			addr, ok := m.Addresses[h]
			if !ok || addr == "" {
				return nil, &util.MissingMgmtAddressError{Hostname: h}
			}
			ip := net.ParseIP(addr)
			if ip == nil || ip.To4() == nil {
				return nil, util.NewInvalidConfigError("mgmt_ip", "%s: %q is not a valid IPv4 address", h, addr)
			}
			out[i] = ip.To4().String()
		}
	default:
		return nil, util.NewInvalidConfigError("mgmt_mode", "unsupported management addressing %T", m)
	}
	return out, nil
}

// checkMgmtCollisions rejects management addresses that repeat or that equal
// an allocated loopback or interconnect address.
func checkMgmtCollisions(cfg *fabric.Config, plan *AddressPlan) error {
	owner := make(map[string]string)
	claim := func(cidr, who string) {
		ip, _ := util.SplitIPMask(cidr)
		owner[ip] = who
	}
	for i, a := range plan.SpineLoopbacks {
		claim(a, fmt.Sprintf("%s loopback0", fabric.RoleSpine.Hostname(i)))
	}
	for i, a := range plan.LeafLoopbacks {
		claim(a, fmt.Sprintf("%s loopback0", fabric.RoleLeaf.Hostname(i)))
	}
	for i, a := range plan.VTEPLoopbacks {
		claim(a, fmt.Sprintf("%s vtep loopback", fabric.RoleLeaf.Hostname(i)))
	}
	for _, l := range plan.Interconnects {
		link := fmt.Sprintf("%s-%s link", fabric.RoleSpine.Hostname(l.Spine), fabric.RoleLeaf.Hostname(l.Leaf))
		claim(l.SpineIP, link)
		claim(l.LeafIP, link)
	}

	for i, h := range cfg.Hostnames() {
		addr := plan.Management[i]
		if prev, ok := owner[addr]; ok {
			return util.NewInvalidConfigError("mgmt_ip", "%s management address %s collides with %s", h, addr, prev)
		}
		owner[addr] = h + " management"
	}
	return nil
}
