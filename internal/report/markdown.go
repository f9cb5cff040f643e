// Package report renders an assembled VPC graph as a Markdown document.
package report

import (
	"fmt"
	"strings"

	"tasnim.dev/aws-netdoc/internal/aws/vpc"
	"tasnim.dev/aws-netdoc/internal/diagram"
)

type Options struct {
	Language  Language
	AccountID string
	Region    string
}

// Render produces the report for g. A nil d skips the diagram section.
// Sections without entities are omitted.
func Render(g *vpc.Graph, d *diagram.Diagram, opts Options) string {
	s := For(opts.Language)
	w := &writer{}

	network := g.Network
	if network == nil {
		network = &vpc.Network{VPCID: g.VPCID}
	}
	vpcDisplay := vpc.DisplayName(network.Name, g.VPCID)

	w.line("## %s (%s)", s.Title, vpcDisplay)
	w.blank()
	w.row(s.Item, s.Value)
	w.rule(2)
	w.row(s.Name, vpcDisplay)
	w.row("CIDR", orDash(network.CIDR))
	if network.State != "" {
		w.row(s.State, network.State)
	}
	if opts.AccountID != "" {
		w.row(s.Account, opts.AccountID)
	}
	if opts.Region != "" {
		w.row(s.Region, opts.Region)
	}
	w.row(s.DNSSupport, fmt.Sprint(network.DNSSupport))
	w.row(s.DNSHostnames, fmt.Sprint(network.DNSHostnames))
	for _, tag := range network.Tags.Without("Name") {
		w.row(s.Tag+"-"+tag.Key, tag.Value)
	}

	if len(g.Subnets) > 0 {
		w.section(3, s.Subnets)
		w.row(s.Name, "CIDR", "AZ", s.State)
		w.rule(4)
		for _, sn := range g.Subnets {
			w.row(vpc.DisplayName(sn.Name, sn.SubnetID), sn.CIDR, sn.AZ, sn.State)
		}
	}

	if len(g.InternetGateways) > 0 {
		w.section(3, s.InternetGateway)
		w.row(s.Name, s.AttachedVPC)
		w.rule(2)
		for _, igw := range g.InternetGateways {
			attachedTo := vpcDisplay
			if igw.State != "attached" {
				attachedTo = "-"
			}
			w.row(vpc.DisplayName(igw.Name, igw.GatewayID), attachedTo)
		}
	}

	if len(g.NATGateways) > 0 {
		w.section(3, s.NATGateway)
		for _, nat := range g.NATGateways {
			renderNAT(w, s, g, nat)
		}
	}

	if len(g.RouteTables) > 0 {
		w.section(3, s.RouteTables)
		for _, rt := range g.RouteTables {
			w.section(4, vpc.DisplayName(rt.Name, rt.RouteTableID))
			if len(rt.Routes) > 0 {
				w.row(s.Destination, s.Target, s.State)
				w.rule(3)
				for _, r := range rt.Routes {
					w.row(r.Destination, r.Target, r.State)
				}
			}
			if len(rt.Associations) > 0 {
				w.blank()
				w.line("**%s**", s.AssociatedSubnets)
				w.row(s.Subnet)
				w.rule(1)
				for _, a := range rt.Associations {
					w.row(vpc.DisplayName(a.SubnetName, a.SubnetID))
				}
			}
		}
	}

	if len(g.ElasticIPs) > 0 {
		w.section(3, s.ElasticIPs)
		w.row(s.Name, "Public IP", s.Association)
		w.rule(3)
		for _, eip := range g.ElasticIPs {
			assoc := "-"
			switch {
			case eip.InstanceID != "":
				assoc = s.Instance + ": " + eip.InstanceID
			case eip.PrivateIP != "":
				assoc = s.PrivateIP + ": " + eip.PrivateIP
			}
			w.row(eip.Name, eip.PublicIP, assoc)
		}
	}

	if d != nil {
		w.section(3, s.NetworkDiagram)
		w.blank()
		w.line("```mermaid")
		w.b.WriteString(d.String())
		w.line("```")
	}
	return w.b.String()
}

func renderNAT(w *writer, s Strings, g *vpc.Graph, nat vpc.NATGateway) {
	display := vpc.DisplayName(nat.Name, nat.GatewayID)
	w.section(4, display)
	w.row(s.Item, s.Value)
	w.rule(2)
	w.row(s.Name, display)

	if nat.Regional() {
		w.row(s.AvailabilityMode, s.Regional)
		w.row(s.IPAutoScaling, enabled(s, nat.AutoScalingIPs))
		w.row(s.ZoneAutoProvisioning, enabled(s, nat.AutoProvisionZones))
	} else {
		w.row(s.AvailabilityMode, s.Zonal)
		subnet := "-"
		if nat.SubnetID != "" {
			subnet = vpc.DisplayName(g.SubnetName(nat.SubnetID), nat.SubnetID)
		}
		w.row(s.Subnet, subnet)
	}

	if nat.ConnectivityType == vpc.ConnectivityPrivate {
		w.row(s.ConnectivityType, s.Private)
	} else {
		w.row(s.ConnectivityType, s.Public)
	}
	if nat.AllocationID != "" {
		w.row(s.AllocationID, "`"+nat.AllocationID+"`")
	}
	for _, tag := range nat.Tags {
		w.row(s.Tag+"-"+tag.Key, tag.Value)
	}
}

// Filename is the report file name for g: its name (or id) with path
// separators and spaces replaced.
func Filename(g *vpc.Graph) string {
	name := g.VPCID
	if g.Network != nil && g.Network.Name != "" {
		name = g.Network.Name
	}
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, name)
	return name + ".md"
}

func enabled(s Strings, v string) string {
	if v == "enabled" {
		return s.Enabled
	}
	return s.Disabled
}

func orDash(v string) string {
	if v == "" {
		return "-"
	}
	return v
}

type writer struct {
	b strings.Builder
}

func (w *writer) line(format string, args ...any) {
	fmt.Fprintf(&w.b, format, args...)
	w.b.WriteByte('\n')
}

func (w *writer) blank() {
	w.b.WriteByte('\n')
}

func (w *writer) section(level int, title string) {
	w.blank()
	w.line("%s %s", strings.Repeat("#", level), title)
}

func (w *writer) row(cells ...string) {
	w.b.WriteString("|")
	for _, c := range cells {
		w.b.WriteString(" ")
		w.b.WriteString(cell(c))
		w.b.WriteString(" |")
	}
	w.b.WriteByte('\n')
}

func (w *writer) rule(n int) {
	w.line("|%s", strings.Repeat(":---|", n))
}

func cell(v string) string {
	v = strings.ReplaceAll(v, "|", `\|`)
	return strings.ReplaceAll(v, "\n", " ")
}
