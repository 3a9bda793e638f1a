package addrplan

import (
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/newtron-network/fabricgen/pkg/fabric"
	"github.com/newtron-network/fabricgen/pkg/util"
)

func sizedConfig(spines, leaves int) (*fabric.Config, error) {
	cf := fabric.DefaultConfigFile()
	cf.SpineCount = spines
	cf.LeafCount = leaves
	return cf.Resolve()
}

// TestPlanInvariants checks allocation invariants over random fabric sizes.
func TestPlanInvariants(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping property-based test in short mode")
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	properties.Property("every address is assigned exactly once", prop.ForAll(
		func(spines, leaves int) bool {
			cfg, err := sizedConfig(spines, leaves)
			if err != nil {
				return false
			}
			plan, err := Plan(cfg)
			if err != nil {
				return false
			}

			seen := make(map[string]bool)
			add := func(addr string) bool {
				ip, _ := util.SplitIPMask(addr)
				if seen[ip] {
					return false
				}
				seen[ip] = true
				return true
			}
			var all []string
			all = append(all, plan.SpineLoopbacks...)
			all = append(all, plan.LeafLoopbacks...)
			all = append(all, plan.VTEPLoopbacks...)
			for _, l := range plan.Interconnects {
				all = append(all, l.SpineIP, l.LeafIP)
			}
			all = append(all, plan.Management...)
			for _, a := range all {
				if !add(a) {
					return false
				}
			}
			return len(seen) == 2*spines+2*leaves+2*spines*leaves
		},
		gen.IntRange(1, 8),
		gen.IntRange(1, 32),
	))

	properties.Property("planning is deterministic", prop.ForAll(
		func(spines, leaves int) bool {
			cfg, err := sizedConfig(spines, leaves)
			if err != nil {
				return false
			}
			a, errA := Plan(cfg)
			b, errB := Plan(cfg)
			return errA == nil && errB == nil && reflect.DeepEqual(a, b)
		},
		gen.IntRange(1, 8),
		gen.IntRange(1, 32),
	))

	properties.Property("links are spine-major and indexable", prop.ForAll(
		func(spines, leaves int) bool {
			cfg, err := sizedConfig(spines, leaves)
			if err != nil {
				return false
			}
			plan, err := Plan(cfg)
			if err != nil || len(plan.Interconnects) != spines*leaves {
				return false
			}
			for i, link := range plan.Interconnects {
				if link.Spine != i/leaves || link.Leaf != i%leaves {
					return false
				}
				got, ok := plan.Interconnect(link.Spine, link.Leaf)
				if !ok || got != link {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 8),
		gen.IntRange(1, 32),
	))

	properties.TestingRun(t)
}
