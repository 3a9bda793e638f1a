package wizard

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/newtron-network/fabricgen/pkg/cli"
	"github.com/newtron-network/fabricgen/pkg/fabric"
	"github.com/newtron-network/fabricgen/pkg/util"
)

// Collect asks for every fabric parameter, starting from the defaults, and
// returns the answers as a ConfigFile. Malformed addresses and ASNs are asked
// again; everything else is left to ConfigFile.Resolve.
func Collect(p *Prompter) (*fabric.ConfigFile, error) {
	cf := fabric.DefaultConfigFile()
	var err error

	p.Println(cli.Bold("Spine-Leaf Inventory Generator"))
	p.Println(cli.Rule(50))
	p.Println()

	if cf.FabricName, err = p.Ask("Enter fabric name", cf.FabricName); err != nil {
		return nil, err
	}
	for {
		asn, err := p.AskInt("Enter BGP ASN", int(cf.ASN))
		if err != nil {
			return nil, err
		}
		if err := util.ValidateASN(int64(asn)); err != nil {
			p.Printf("  %v\n", err)
			continue
		}
		cf.ASN = int64(asn)
		break
	}

	p.Println("\nIP Addressing Configuration")
	for _, q := range []struct {
		label string
		dst   *string
	}{
		{"Spine loopback subnet", &cf.SpineLoopbackSubnet},
		{"Leaf loopback subnet", &cf.LeafLoopbackSubnet},
		{"VTEP loopback subnet", &cf.VTEPLoopbackSubnet},
		{"Interconnect subnet base", &cf.InterconnectSubnet},
	} {
		if *q.dst, err = askValid(p, q.label, *q.dst, checkCIDR); err != nil {
			return nil, err
		}
	}

	p.Println("\nDevice Configuration")
	if cf.SpineCount, err = p.AskInt("Number of spine switches", cf.SpineCount); err != nil {
		return nil, err
	}
	if cf.LeafCount, err = p.AskInt("Number of leaf switches", cf.LeafCount); err != nil {
		return nil, err
	}

	if err := collectInterfaces(p, cf); err != nil {
		return nil, err
	}
	if err := collectMgmt(p, cf); err != nil {
		return nil, err
	}
	return cf, nil
}

func collectInterfaces(p *Prompter, cf *fabric.ConfigFile) error {
	var err error

	p.Println("\nInterface Configuration")
	if cf.SpineInterfaceStart, err = p.AskInt("Spine interface start number", cf.SpineInterfaceStart); err != nil {
		return err
	}
	if cf.LeafInterfaceStart, err = p.AskInt("Leaf interface start number", cf.LeafInterfaceStart); err != nil {
		return err
	}
	if cf.LeafAccessInterface, err = p.Ask("Leaf access interface", cf.LeafAccessInterface); err != nil {
		return err
	}

	p.Println("\nInterface Mapping Mode:")
	p.Println("1. Sequential (auto-generate interfaces)")
	p.Println("2. Exact Match (specify exact interfaces)")
	mode, err := p.Ask("Select interface mapping mode", "1")
	if err != nil {
		return err
	}
	cf.InterfaceMappingMode = mode
	if !isChoice(mode, "2", string(fabric.ModeExact)) {
		return nil
	}

	seq := fabric.SequentialMapping{Prefix: cf.InterfacePrefix, LeafAccess: cf.LeafAccessInterface}
	cf.SpineInterfaces = make(map[string][]string, cf.SpineCount)
	cf.LeafInterfaces = make(map[string][]string, cf.LeafCount)

	p.Println("\nSpine Interface Configuration:")
	for s := 0; s < cf.SpineCount; s++ {
		host := fabric.RoleSpine.Hostname(s)
		names := make([]string, 0, cf.LeafCount)
		for l := 0; l < cf.LeafCount; l++ {
			label := fmt.Sprintf("  %s -> %s interface", host, fabric.RoleLeaf.Hostname(l))
			name, err := p.Ask(label, seq.Name(s+l+1))
			if err != nil {
				return err
			}
			names = append(names, name)
		}
		cf.SpineInterfaces[host] = names
	}

	p.Println("\nLeaf Interface Configuration:")
	for l := 0; l < cf.LeafCount; l++ {
		host := fabric.RoleLeaf.Hostname(l)
		names := make([]string, 0, cf.SpineCount+1)
		for s := 0; s < cf.SpineCount; s++ {
			label := fmt.Sprintf("  %s -> %s interface", host, fabric.RoleSpine.Hostname(s))
			name, err := p.Ask(label, seq.Name(s+l+1))
			if err != nil {
				return err
			}
			names = append(names, name)
		}
		access, err := p.Ask(fmt.Sprintf("  %s access interface", host), seq.AccessName())
		if err != nil {
			return err
		}
		cf.LeafInterfaces[host] = append(names, access)
	}
	return nil
}

func collectMgmt(p *Prompter, cf *fabric.ConfigFile) error {
	var err error

	p.Println("\nManagement IP Configuration")
	if cf.MgmtMode, err = p.Ask("Management IP mode (auto/manual)", cf.MgmtMode); err != nil {
		return err
	}
	if !isChoice(cf.MgmtMode, "2", string(fabric.MgmtManual)) {
		if cf.MgmtBaseIP, err = askValid(p, "Management IP base", cf.MgmtBaseIP, checkBase); err != nil {
			return err
		}
		cf.MgmtStart, err = p.AskInt("Management IP start", cf.MgmtStart)
		return err
	}

	ask := func(heading string, role fabric.Role, count int) (map[string]string, error) {
		p.Println("\n" + heading)
		ips := make(map[string]string, count)
		for i := 0; i < count; i++ {
			host := role.Hostname(i)
			for {
				ip, err := p.AskRequired("  " + host + " management IP")
				if err != nil {
					return nil, err
				}
				if util.IsValidIPv4(ip) {
					ips[host] = ip
					break
				}
				p.Printf("  %q is not an IPv4 address\n", ip)
			}
		}
		return ips, nil
	}
	if cf.SpineMgmtIPs, err = ask("Spine Management IPs:", fabric.RoleSpine, cf.SpineCount); err != nil {
		return err
	}
	cf.LeafMgmtIPs, err = ask("Leaf Management IPs:", fabric.RoleLeaf, cf.LeafCount)
	return err
}

// NextSteps is printed after an inventory has been saved.
func NextSteps(p *Prompter, vaultFile, deployCmd string) {
	p.Println()
	p.Println(cli.Green("Inventory generation completed!"))
	p.Println("Next steps:")
	for i, step := range []string{
		"Review the generated inventory file",
		"Configure credentials: ansible-vault edit " + vaultFile,
		"Run fabric deployment: " + deployCmd,
	} {
		p.Println(strconv.Itoa(i+1) + ". " + step)
	}
}

// askValid repeats Ask until check accepts the answer.
func askValid(p *Prompter, label, def string, check func(string) error) (string, error) {
	for {
		answer, err := p.Ask(label, def)
		if err != nil {
			return "", err
		}
		if err := check(answer); err != nil {
			p.Printf("  %v\n", err)
			continue
		}
		return answer, nil
	}
}

func checkCIDR(s string) error {
	if !util.IsValidIPv4CIDR(s) {
		return fmt.Errorf("%q is not an IPv4 subnet such as 10.1.0.0/16", s)
	}
	return nil
}

func checkBase(s string) error {
	_, err := util.ParseIPv4Base(s)
	return err
}

func isChoice(answer string, accepted ...string) bool {
	for _, a := range accepted {
		if strings.EqualFold(strings.TrimSpace(answer), a) {
			return true
		}
	}
	return false
}
