package deploy

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/newtron-network/fabricgen/pkg/util"
)

// VaultStatus is the outcome of the vault probe.
type VaultStatus string

const (
	VaultAbsent     VaultStatus = "absent"
	VaultAccessible VaultStatus = "accessible"
	VaultUnreadable VaultStatus = "unreadable"
)

// FileCheck records whether a required project file exists.
type FileCheck struct {
	Name    string
	Present bool
}

// PrereqReport summarises the environment checks run before the menu starts.
type PrereqReport struct {
	AnsibleVersion string
	Files          []FileCheck
	Vault          VaultStatus
	VaultDetail    string
}

// RequiredFiles lists the project files every operation depends on.
func (d *Dispatcher) RequiredFiles() []string {
	files := []string{"ansible.cfg", "requirements.yml", d.cfg.Inventory}
	for _, op := range Operations {
		if pb, ok := playbooks[op]; ok {
			files = append(files, pb)
		}
	}
	return files
}

// CheckPrerequisites verifies that Ansible is installed and that every
// required file is present, then probes the vault file. A vault that cannot
// be read is reported but is not an error. The report is returned even when
// the check fails so callers can show what was found.
func (d *Dispatcher) CheckPrerequisites(ctx context.Context) (*PrereqReport, error) {
	report := &PrereqReport{Vault: VaultAbsent}

	out, err := d.output(ctx, d.bin(ansibleBin), "--version")
	if err != nil {
		return report, fmt.Errorf("ansible is not installed: %w", err)
	}
	report.AnsibleVersion = firstLine(out)

	vb := &util.ValidationBuilder{}
	for _, name := range d.RequiredFiles() {
		path := d.projectPath(name)
		_, statErr := os.Stat(path)
		present := statErr == nil
		report.Files = append(report.Files, FileCheck{Name: name, Present: present})
		if !present {
			vb.AddErrorf("required file missing: %s", path)
		}
	}
	if vb.HasErrors() {
		return report, vb.Build()
	}

	if d.cfg.VaultFile != "" {
		if _, err := os.Stat(d.projectPath(d.cfg.VaultFile)); err == nil {
			if _, err := d.output(ctx, d.bin(vaultBin), "view", d.cfg.VaultFile); err != nil {
				report.Vault = VaultUnreadable
				report.VaultDetail = fmt.Sprintf("run: %s encrypt %s", vaultBin, d.cfg.VaultFile)
				util.WithOperation("prerequisites").WithError(err).Warn("vault file exists but may not be properly encrypted")
			} else {
				report.Vault = VaultAccessible
			}
		}
	}
	return report, nil
}

func (d *Dispatcher) projectPath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(d.cfg.ProjectDir, name)
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
