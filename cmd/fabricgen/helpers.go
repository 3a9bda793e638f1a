package main

import (
	"fmt"

	"github.com/newtron-network/fabricgen/pkg/addrplan"
	"github.com/newtron-network/fabricgen/pkg/fabric"
	"github.com/newtron-network/fabricgen/pkg/inventory"
	"github.com/newtron-network/fabricgen/pkg/topology"
)

// generated bundles every stage of one generation run.
type generated struct {
	Config    *fabric.Config
	Plan      *addrplan.AddressPlan
	Fabric    *topology.Fabric
	Inventory *inventory.Inventory
}

// generate resolves cf, plans addresses, builds the topology and renders the
// inventory. Nothing is returned unless every stage succeeds.
func generate(cf *fabric.ConfigFile) (*generated, error) {
	cfg, err := cf.Resolve()
	if err != nil {
		return nil, fmt.Errorf("invalid fabric definition: %w", err)
	}
	plan, err := addrplan.Plan(cfg)
	if err != nil {
		return nil, fmt.Errorf("planning addresses: %w", err)
	}
	fab, err := topology.Build(cfg, plan)
	if err != nil {
		return nil, fmt.Errorf("building topology: %w", err)
	}
	return &generated{
		Config:    cfg,
		Plan:      plan,
		Fabric:    fab,
		Inventory: inventory.Render(cfg, fab),
	}, nil
}

// resolveConfigPath picks the fabric definition: -c flag, then settings. The
// settings value is only used when required is set, since generate falls
// back to prompting.
func resolveConfigPath(required bool) (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	if !required {
		return "", nil
	}
	if userSettings != nil {
		return userSettings.GetConfigPath(), nil
	}
	return "", fmt.Errorf("fabric definition required: use -c <file> or 'fabricgen settings set config_path <file>'")
}

// loadDefinition reads the fabric definition at path.
func loadDefinition(path string) (*fabric.ConfigFile, error) {
	cf, err := fabric.LoadConfigFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return cf, nil
}
