// Package deploy drives the Ansible project that applies a generated
// inventory to the switches. Ansible is treated as an opaque set of
// binaries; this package only builds argument lists, runs them and reports
// failures.
package deploy

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/newtron-network/fabricgen/pkg/audit"
	"github.com/newtron-network/fabricgen/pkg/util"
)

// Operation is a fabric lifecycle action backed by the Ansible project.
type Operation string

const (
	OpDeployFabric  Operation = "deploy-fabric"
	OpDeployTenants Operation = "deploy-tenants"
	OpAddLeaf       Operation = "add-leaf"
	OpAddSpine      Operation = "add-spine"
	OpVerify        Operation = "verify"
)

// Operations lists every operation in menu order.
var Operations = []Operation{OpDeployFabric, OpDeployTenants, OpAddLeaf, OpAddSpine, OpVerify}

// Playbook files per operation. Verify runs an ad-hoc module instead.
var playbooks = map[Operation]string{
	OpDeployFabric:  "deploy_fabric.yml",
	OpDeployTenants: "deploy_tenants.yml",
	OpAddLeaf:       "add_leaf.yml",
	OpAddSpine:      "add_spine.yml",
}

const (
	verifyModule = "huawei_vrp_command"
	verifyArgs   = "commands='display ip interface brief'"
)

// Binary names.
const (
	ansibleBin  = "ansible"
	playbookBin = "ansible-playbook"
	galaxyBin   = "ansible-galaxy"
	vaultBin    = "ansible-vault"

	generatorBin = "fabricgen"
)

// Config locates the Ansible project and binaries.
type Config struct {
	ProjectDir string // holds ansible.cfg, requirements.yml and the playbooks
	Inventory  string // relative to ProjectDir unless absolute
	VaultFile  string
	BinDir     string // empty means $PATH
}

// Dispatcher maps operations onto Ansible invocations.
type Dispatcher struct {
	cfg    Config
	runner Runner

	audit audit.Logger
	user  string
}

// NewDispatcher creates a dispatcher. A nil runner uses NewExecRunner.
func NewDispatcher(cfg Config, runner Runner) *Dispatcher {
	if cfg.ProjectDir == "" {
		cfg.ProjectDir = "."
	}
	if runner == nil {
		runner = NewExecRunner()
	}
	return &Dispatcher{cfg: cfg, runner: runner}
}

// WithAudit records every Ansible run to l on behalf of user.
func (d *Dispatcher) WithAudit(l audit.Logger, user string) *Dispatcher {
	d.audit = l
	d.user = user
	return d
}

// Options modify a single run.
type Options struct {
	AskVaultPass bool
	ExtraArgs    []string // appended verbatim, e.g. --limit leaf03
}

func (d *Dispatcher) bin(name string) string {
	if d.cfg.BinDir == "" {
		return name
	}
	return filepath.Join(d.cfg.BinDir, name)
}

// Command returns the binary and arguments for op.
func (d *Dispatcher) Command(op Operation, opts Options) (string, []string, error) {
	var name string
	var args []string

	if op == OpVerify {
		name = d.bin(ansibleBin)
		args = []string{"-i", d.cfg.Inventory, "all", "-m", verifyModule, "-a", verifyArgs}
	} else {
		pb, ok := playbooks[op]
		if !ok {
			return "", nil, fmt.Errorf("deploy: unknown operation %q", op)
		}
		name = d.bin(playbookBin)
		args = []string{pb, "-i", d.cfg.Inventory}
	}

	if opts.AskVaultPass {
		args = append(args, "--ask-vault-pass")
	}
	args = append(args, opts.ExtraArgs...)
	return name, args, nil
}

// Run executes op with the terminal attached.
func (d *Dispatcher) Run(ctx context.Context, op Operation, opts Options) error {
	name, args, err := d.Command(op, opts)
	if err != nil {
		return err
	}

	return d.attached(ctx, string(op), opts.AskVaultPass, name, args)
}

// InstallCollections installs the collections listed in requirements.yml.
func (d *Dispatcher) InstallCollections(ctx context.Context) error {
	name := d.bin(galaxyBin)
	args := []string{"collection", "install", "-r", "requirements.yml"}

	return d.attached(ctx, "install-collections", false, name, args)
}

// GenerateInventory runs the inventory generator interactively, writing to
// the configured inventory.
func (d *Dispatcher) GenerateInventory(ctx context.Context) error {
	args := []string{"generate", "-o", d.cfg.Inventory}

	return d.attached(ctx, "generate", false, generatorBin, args)
}

// attached runs a command on the terminal and records the outcome in the
// audit log when one is configured.
func (d *Dispatcher) attached(ctx context.Context, operation string, vault bool, name string, args []string) error {
	line := commandLine(name, args)
	log := util.WithFields(map[string]interface{}{
		"operation": operation,
		"inventory": d.cfg.Inventory,
	})
	log.Infof("running %s", line)

	start := time.Now()
	err := d.runner.Attached(ctx, d.cfg.ProjectDir, name, args...)
	if err != nil {
		err = fmt.Errorf("deploy: %s: %w", line, err)
	}

	if d.audit != nil {
		event := audit.NewEvent(d.user, operation, d.cfg.Inventory).
			WithCommand(line).
			WithVault(vault).
			WithDuration(time.Since(start))
		if err != nil {
			event.WithError(err)
		} else {
			event.WithSuccess()
		}
		if aerr := d.audit.Log(event); aerr != nil {
			log.Warnf("audit log write failed: %v", aerr)
		}
	}
	return err
}

// output runs a probe command and wraps failures with its output.
func (d *Dispatcher) output(ctx context.Context, name string, args ...string) (string, error) {
	out, err := d.runner.Output(ctx, d.cfg.ProjectDir, name, args...)
	if err != nil {
		return "", fmt.Errorf("deploy: %s: %w\n%s", commandLine(name, args), err, strings.TrimSpace(string(out)))
	}
	return string(out), nil
}

func commandLine(name string, args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		if strings.ContainsAny(a, " '\"") {
			a = fmt.Sprintf("%q", a)
		}
		quoted[i] = a
	}
	return name + " " + strings.Join(quoted, " ")
}
