package topology

import (
	"errors"
	"fmt"
	"testing"

	"github.com/newtron-network/fabricgen/pkg/addrplan"
	"github.com/newtron-network/fabricgen/pkg/fabric"
	"github.com/newtron-network/fabricgen/pkg/util"
)

func planned(t *testing.T, modify func(*fabric.ConfigFile)) (*fabric.Config, *addrplan.AddressPlan) {
	t.Helper()
	cf := fabric.DefaultConfigFile()
	if modify != nil {
		modify(cf)
	}
	cfg, err := cf.Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	plan, err := addrplan.Plan(cfg)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	return cfg, plan
}

func TestBuild_Sequential(t *testing.T) {
	cfg, plan := planned(t, nil)
	fab, err := Build(cfg, plan)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if len(fab.Spines) != 2 || len(fab.Leaves) != 2 {
		t.Fatalf("got %d spines, %d leaves", len(fab.Spines), len(fab.Leaves))
	}

	spine := fab.Spines[1]
	if spine.Hostname != "spine02" || spine.ID() != 2 || spine.MgmtAddress != "192.168.1.11" {
		t.Errorf("spine02 = %+v", spine)
	}
	if spine.Loopback0 != "10.255.1.2/32" || spine.VTEPLoopback != "" {
		t.Errorf("spine02 loopbacks = %s / %q", spine.Loopback0, spine.VTEPLoopback)
	}
	wantSpine := []Interface{
		{Name: "10GE1/0/1", Description: "Link to leaf01", IP: "10.1.0.5/30"},
		{Name: "10GE1/0/2", Description: "Link to leaf02", IP: "10.1.0.7/30"},
	}
	for i, want := range wantSpine {
		if spine.Interfaces[i] != want {
			t.Errorf("spine02 interface %d = %+v, want %+v", i, spine.Interfaces[i], want)
		}
	}

	leaf := fab.Leaves[0]
	if leaf.Hostname != "leaf01" || leaf.MgmtAddress != "192.168.1.12" || leaf.VTEPLoopback != "10.255.3.1/32" {
		t.Errorf("leaf01 = %+v", leaf)
	}
	wantLeaf := []Interface{
		{Name: "10GE1/0/1", Description: "Link to spine01", IP: "10.1.0.2/30"},
		{Name: "10GE1/0/2", Description: "Link to spine02", IP: "10.1.0.6/30"},
		{Name: "10GE1/0/48", Description: "Server Access", Mode: "access", VLAN: 100},
	}
	for i, want := range wantLeaf {
		if leaf.Interfaces[i] != want {
			t.Errorf("leaf01 interface %d = %+v, want %+v", i, leaf.Interfaces[i], want)
		}
	}
}

func TestBuild_InterfaceCounts(t *testing.T) {
	sizes := [][2]int{{1, 1}, {2, 4}, {4, 2}, {3, 7}}
	for _, sz := range sizes {
		t.Run(fmt.Sprintf("%dx%d", sz[0], sz[1]), func(t *testing.T) {
			cfg, plan := planned(t, func(c *fabric.ConfigFile) {
				c.SpineCount, c.LeafCount = sz[0], sz[1]
			})
			fab, err := Build(cfg, plan)
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			for _, s := range fab.Spines {
				if len(s.Interfaces) != sz[1] {
					t.Errorf("%s has %d interfaces, want %d", s.Hostname, len(s.Interfaces), sz[1])
				}
			}
			for _, l := range fab.Leaves {
				if len(l.Interfaces) != sz[0]+1 {
					t.Errorf("%s has %d interfaces, want %d", l.Hostname, len(l.Interfaces), sz[0]+1)
				}
			}
		})
	}
}

func TestBuild_AccessVLAN(t *testing.T) {
	cfg, plan := planned(t, func(c *fabric.ConfigFile) { c.LeafCount = 4 })
	fab, err := Build(cfg, plan)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for l, leaf := range fab.Leaves {
		access := leaf.Interfaces[len(leaf.Interfaces)-1]
		if !access.IsAccess() || access.VLAN != 100+l {
			t.Errorf("%s access = %+v, want vlan %d", leaf.Hostname, access, 100+l)
		}
	}
	leaf03, ok := fab.Device("leaf03")
	if !ok {
		t.Fatal("leaf03 not found")
	}
	if got := leaf03.Interfaces[len(leaf03.Interfaces)-1].VLAN; got != 102 {
		t.Errorf("leaf03 access vlan = %d, want 102", got)
	}
}

func TestBuild_Exact(t *testing.T) {
	cfg, plan := planned(t, func(c *fabric.ConfigFile) {
		c.InterfaceMappingMode = "exact"
		c.SpineInterfaces = map[string][]string{
			"spine01": {"100GE1/0/1", "100GE1/0/2"},
			"spine02": {"100GE1/0/1", "100GE1/0/2"},
		}
		c.LeafInterfaces = map[string][]string{
			"leaf01": {"100GE1/0/49", "100GE1/0/50", "10GE1/0/1"},
			"leaf02": {"100GE1/0/49", "100GE1/0/50", "10GE1/0/2"},
		}
	})
	fab, err := Build(cfg, plan)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	leaf02, _ := fab.Device("leaf02")
	if leaf02.Interfaces[1].Name != "100GE1/0/50" || leaf02.Interfaces[1].Description != "Link to spine02" {
		t.Errorf("leaf02 uplink = %+v", leaf02.Interfaces[1])
	}
	if access := leaf02.Interfaces[2]; access.Name != "10GE1/0/2" || access.VLAN != 101 {
		t.Errorf("leaf02 access = %+v", access)
	}
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*fabric.ConfigFile)
		want   error
	}{
		{
			"leaf list missing access port",
			func(c *fabric.ConfigFile) {
				c.InterfaceMappingMode = "exact"
				c.SpineInterfaces = map[string][]string{"spine01": {"a", "b"}, "spine02": {"a", "b"}}
				c.LeafInterfaces = map[string][]string{"leaf01": {"a", "b"}, "leaf02": {"a", "b", "c"}}
			},
			util.ErrIncompleteInterfaceMap,
		},
		{
			"spine list short",
			func(c *fabric.ConfigFile) {
				c.InterfaceMappingMode = "exact"
				c.SpineInterfaces = map[string][]string{"spine01": {"a"}}
			},
			util.ErrIncompleteInterfaceMap,
		},
		{
			"leaf list too long",
			func(c *fabric.ConfigFile) {
				c.InterfaceMappingMode = "exact"
				c.SpineInterfaces = map[string][]string{"spine01": {"a", "b"}, "spine02": {"a", "b"}}
				c.LeafInterfaces = map[string][]string{"leaf01": {"a", "b", "c", "d"}, "leaf02": {"a", "b", "c"}}
			},
			util.ErrInvalidConfig,
		},
		{
			"spine list too long",
			func(c *fabric.ConfigFile) {
				c.InterfaceMappingMode = "exact"
				c.SpineInterfaces = map[string][]string{"spine01": {"a", "b", "c"}, "spine02": {"a", "b"}}
				c.LeafInterfaces = map[string][]string{"leaf01": {"a", "b", "c"}, "leaf02": {"a", "b", "c"}}
			},
			util.ErrInvalidConfig,
		},
		{
			"duplicate exact name",
			func(c *fabric.ConfigFile) {
				c.InterfaceMappingMode = "exact"
				c.SpineInterfaces = map[string][]string{"spine01": {"a", "a"}, "spine02": {"a", "b"}}
			},
			util.ErrInvalidConfig,
		},
		{
			"uplinks run into access port",
			func(c *fabric.ConfigFile) {
				c.SpineCount = 3
				c.LeafInterfaceStart = 46
			},
			util.ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, plan := planned(t, tt.modify)
			fab, err := Build(cfg, plan)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Build() error = %v, want %v", err, tt.want)
			}
			if fab != nil {
				t.Error("Build() returned a partial fabric alongside an error")
			}
		})
	}
}

func TestBuild_IncompleteDetails(t *testing.T) {
	cfg, plan := planned(t, func(c *fabric.ConfigFile) {
		c.SpineCount = 3
		c.InterfaceMappingMode = "exact"
		c.SpineInterfaces = map[string][]string{"spine01": {"a", "b"}, "spine02": {"a", "b"}, "spine03": {"a", "b"}}
		c.LeafInterfaces = map[string][]string{"leaf01": {"a", "b", "c"}}
	})
	_, err := Build(cfg, plan)
	var incomplete *util.IncompleteInterfaceMapError
	if !errors.As(err, &incomplete) {
		t.Fatalf("error = %v, want IncompleteInterfaceMapError", err)
	}
	if incomplete.Hostname != "leaf01" || incomplete.Want != 4 || incomplete.Got != 3 {
		t.Errorf("error fields = %+v", incomplete)
	}
}

func TestBuild_PlanMismatch(t *testing.T) {
	cfg, _ := planned(t, nil)
	_, bigger := planned(t, func(c *fabric.ConfigFile) { c.LeafCount = 3 })

	if _, err := Build(cfg, bigger); !errors.Is(err, util.ErrInvalidConfig) {
		t.Errorf("mismatched plan error = %v, want ErrInvalidConfig", err)
	}
	if _, err := Build(cfg, nil); !errors.Is(err, util.ErrInvalidConfig) {
		t.Errorf("nil plan error = %v, want ErrInvalidConfig", err)
	}
}
