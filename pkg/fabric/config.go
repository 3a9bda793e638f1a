package fabric

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/newtron-network/fabricgen/pkg/util"
)

// Defaults used when a field is absent from the config file or left blank at
// a prompt.
const (
	DefaultFabricName          = "spine_leaf_fabric"
	DefaultASN                 = 65000
	DefaultSpineLoopbackSubnet = "10.255.1.0/24"
	DefaultLeafLoopbackSubnet  = "10.255.2.0/24"
	DefaultVTEPLoopbackSubnet  = "10.255.3.0/24"
	DefaultInterconnectSubnet  = "10.1.0.0/16"
	DefaultSpineCount          = 2
	DefaultLeafCount           = 2
	DefaultInterfaceStart      = 1
	DefaultLeafAccess          = "48"
	DefaultInterfacePrefix     = "10GE1/0/"
	DefaultMgmtBase            = "192.168.1"
	DefaultMgmtStart           = 10
)

// ConfigFile is the flat, user-facing form of a fabric definition. It is
// what fabric.yaml holds and what the interactive wizard fills in.
type ConfigFile struct {
	FabricName string `yaml:"fabric_name" validate:"required,max=64"`
	ASN        int64  `yaml:"asn" validate:"min=1,max=4294967295"`

	SpineLoopbackSubnet string `yaml:"spine_loopback_subnet" validate:"required"`
	LeafLoopbackSubnet  string `yaml:"leaf_loopback_subnet" validate:"required"`
	VTEPLoopbackSubnet  string `yaml:"vtep_loopback_subnet" validate:"required"`
	InterconnectSubnet  string `yaml:"interconnect_subnet_base" validate:"required"`

	SpineCount int `yaml:"spine_count" validate:"min=1"`
	LeafCount  int `yaml:"leaf_count" validate:"min=1"`

	InterfaceMappingMode string              `yaml:"interface_mapping_mode" validate:"oneof=sequential exact"`
	InterfacePrefix      string              `yaml:"interface_prefix"`
	SpineInterfaceStart  int                 `yaml:"spine_interface_start" validate:"min=0"`
	LeafInterfaceStart   int                 `yaml:"leaf_interface_start" validate:"min=0"`
	LeafAccessInterface  string              `yaml:"leaf_access_interface" validate:"required_if=InterfaceMappingMode sequential"`
	SpineInterfaces      map[string][]string `yaml:"spine_interfaces,omitempty" validate:"dive,dive,required"`
	LeafInterfaces       map[string][]string `yaml:"leaf_interfaces,omitempty" validate:"dive,dive,required"`

	MgmtMode     string            `yaml:"mgmt_mode" validate:"oneof=auto manual"`
	MgmtBaseIP   string            `yaml:"mgmt_base_ip" validate:"required_if=MgmtMode auto"`
	MgmtStart    int               `yaml:"mgmt_start" validate:"min=0"`
	SpineMgmtIPs map[string]string `yaml:"spine_mgmt_ips,omitempty" validate:"dive,omitempty,ipv4"`
	LeafMgmtIPs  map[string]string `yaml:"leaf_mgmt_ips,omitempty" validate:"dive,omitempty,ipv4"`
}

// DefaultConfigFile returns a ConfigFile populated with every default.
func DefaultConfigFile() *ConfigFile {
	return &ConfigFile{
		FabricName:           DefaultFabricName,
		ASN:                  DefaultASN,
		SpineLoopbackSubnet:  DefaultSpineLoopbackSubnet,
		LeafLoopbackSubnet:   DefaultLeafLoopbackSubnet,
		VTEPLoopbackSubnet:   DefaultVTEPLoopbackSubnet,
		InterconnectSubnet:   DefaultInterconnectSubnet,
		SpineCount:           DefaultSpineCount,
		LeafCount:            DefaultLeafCount,
		InterfaceMappingMode: string(ModeSequential),
		InterfacePrefix:      DefaultInterfacePrefix,
		SpineInterfaceStart:  DefaultInterfaceStart,
		LeafInterfaceStart:   DefaultInterfaceStart,
		LeafAccessInterface:  DefaultLeafAccess,
		MgmtMode:             string(MgmtAuto),
		MgmtBaseIP:           DefaultMgmtBase,
		MgmtStart:            DefaultMgmtStart,
	}
}

// LoadConfigFile reads a fabric definition from YAML. Keys missing from the
// file keep their defaults; keys present with a zero value are kept as-is
// and validated by Resolve.
func LoadConfigFile(path string) (*ConfigFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fabric config: %w", err)
	}
	return ParseConfigFile(data)
}

// ParseConfigFile decodes YAML bytes on top of the defaults.
func ParseConfigFile(data []byte) (*ConfigFile, error) {
	cf := DefaultConfigFile()
	if err := yaml.Unmarshal(data, cf); err != nil {
		return nil, fmt.Errorf("parsing fabric config YAML: %w", err)
	}
	return cf, nil
}

// SaveConfigFile writes cf as YAML, creating or truncating path.
func SaveConfigFile(path string, cf *ConfigFile) error {
	data, err := yaml.Marshal(cf)
	if err != nil {
		return fmt.Errorf("marshaling fabric config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing fabric config: %w", err)
	}
	return nil
}

// normalize canonicalises mode spellings. The menu numbers "1" and "2" are
// accepted for the two interface modes.
func (c *ConfigFile) normalize() {
	c.FabricName = strings.TrimSpace(c.FabricName)
	switch strings.ToLower(strings.TrimSpace(c.InterfaceMappingMode)) {
	case "", "1", "seq", string(ModeSequential):
		c.InterfaceMappingMode = string(ModeSequential)
	case "2", string(ModeExact):
		c.InterfaceMappingMode = string(ModeExact)
	}
	switch strings.ToLower(strings.TrimSpace(c.MgmtMode)) {
	case "", "1", string(MgmtAuto):
		c.MgmtMode = string(MgmtAuto)
	case "2", string(MgmtManual):
		c.MgmtMode = string(MgmtManual)
	}
}

// Resolve validates the file and converts it into a Config. The receiver is
// not modified.
func (c *ConfigFile) Resolve() (*Config, error) {
	f := *c
	f.normalize()

	if err := validateStruct(&f); err != nil {
		return nil, err
	}

	cfg := &Config{
		Name:       f.FabricName,
		ASN:        uint32(f.ASN),
		SpineCount: f.SpineCount,
		LeafCount:  f.LeafCount,
	}

	var err error
	if cfg.SpineLoopback, err = parseSubnet(SpineLoopbackKey, f.SpineLoopbackSubnet); err != nil {
		return nil, err
	}
	if cfg.LeafLoopback, err = parseSubnet(LeafLoopbackKey, f.LeafLoopbackSubnet); err != nil {
		return nil, err
	}
	if cfg.VTEPLoopback, err = parseSubnet(VTEPLoopbackKey, f.VTEPLoopbackSubnet); err != nil {
		return nil, err
	}
	if cfg.Interconnect, err = parseSubnet(InterconnectKey, f.InterconnectSubnet); err != nil {
		return nil, err
	}

	switch InterfaceMode(f.InterfaceMappingMode) {
	case ModeSequential:
		cfg.Interfaces = SequentialMapping{
			Prefix:     f.InterfacePrefix,
			SpineStart: f.SpineInterfaceStart,
			LeafStart:  f.LeafInterfaceStart,
			LeafAccess: strings.TrimSpace(f.LeafAccessInterface),
		}
	case ModeExact:
		if err := checkHostKeys("spine_interfaces", f.SpineInterfaces, cfg.SpineHostnames()); err != nil {
			return nil, err
		}
		if err := checkHostKeys("leaf_interfaces", f.LeafInterfaces, cfg.LeafHostnames()); err != nil {
			return nil, err
		}
		spines, err := expandLists("spine_interfaces", f.SpineInterfaces)
		if err != nil {
			return nil, err
		}
		leaves, err := expandLists("leaf_interfaces", f.LeafInterfaces)
		if err != nil {
			return nil, err
		}
		cfg.Interfaces = ExactMapping{Spines: spines, Leaves: leaves}
	}

	switch MgmtMode(f.MgmtMode) {
	case MgmtAuto:
		base, err := util.ParseIPv4Base(f.MgmtBaseIP)
		if err != nil {
			return nil, util.NewInvalidConfigError("mgmt_base_ip", "%v", err)
		}
		cfg.Management = AutoMgmt{Base: base, Start: f.MgmtStart}
	case MgmtManual:
		if err := checkHostKeys("spine_mgmt_ips", f.SpineMgmtIPs, cfg.SpineHostnames()); err != nil {
			return nil, err
		}
		if err := checkHostKeys("leaf_mgmt_ips", f.LeafMgmtIPs, cfg.LeafHostnames()); err != nil {
			return nil, err
		}
		addrs := make(map[string]string, len(f.SpineMgmtIPs)+len(f.LeafMgmtIPs))
		for host, ip := range f.SpineMgmtIPs {
			addrs[host] = strings.TrimSpace(ip)
		}
		for host, ip := range f.LeafMgmtIPs {
			addrs[host] = strings.TrimSpace(ip)
		}
		cfg.Management = ManualMgmt{Addresses: addrs}
	}

	util.WithFabric(cfg.Name).Debugf("resolved config: %d spines, %d leaves, interfaces=%s, mgmt=%s",
		cfg.SpineCount, cfg.LeafCount, cfg.Interfaces.Mode(), cfg.Management.Mode())
	return cfg, nil
}

func parseSubnet(key, s string) (Subnet, error) {
	n, err := util.ParseIPv4Network(s)
	if err != nil {
		return Subnet{}, util.NewInvalidSubnetError(key, s, "%v", err)
	}
	return Subnet{Name: key, CIDR: n.String(), Net: n}, nil
}

// checkHostKeys rejects per-host entries for devices the fabric does not have.
func checkHostKeys[V any](field string, m map[string]V, hosts []string) error {
	known := make(map[string]bool, len(hosts))
	for _, h := range hosts {
		known[h] = true
	}
	for h := range m {
		if !known[h] {
			return util.NewInvalidConfigError(field, "unknown host %q", h)
		}
	}
	return nil
}

// expandLists copies per-host interface lists, expanding port ranges such as
// "10GE1/0/1-4" in place.
func expandLists(field string, m map[string][]string) (map[string][]string, error) {
	hosts := make([]string, 0, len(m))
	for h := range m {
		hosts = append(hosts, h)
	}
	sort.Strings(hosts)

	out := make(map[string][]string, len(m))
	for _, h := range hosts {
		names := make([]string, 0, len(m[h]))
		for _, entry := range m[h] {
			expanded, err := util.ExpandInterfaceRange(entry)
			if err != nil {
				return nil, util.NewInvalidConfigError(field, "%s: %v", h, err)
			}
			names = append(names, expanded...)
		}
		out[h] = names
	}
	return out, nil
}
