// Package diagram turns an assembled VPC graph into a topology description
// and renders it as a Mermaid flowchart.
package diagram

import (
	"strings"

	"tasnim.dev/aws-netdoc/internal/aws/vpc"
)

type Kind int

const (
	KindInternet Kind = iota
	KindVPC
	KindGateway
	KindZone
	KindSubnet
	KindNAT
)

type Node struct {
	ID    string
	Label string
	Kind  Kind
}

// Zone groups the subnets of one availability zone together with the NATs
// that live in them.
type Zone struct {
	Node
	Subnets []Node
	NATs    []Node
}

type EdgeKind int

const (
	EdgeInternet EdgeKind = iota // internet <--> gateway
	EdgePublic                   // gateway <-->|Public| subnet
	EdgePrivate                  // subnet -.->|Private| nat
	EdgeEgress                   // nat ==> gateway
)

type Edge struct {
	From string
	To   string
	Kind EdgeKind
}

type Diagram struct {
	Internet Node
	VPC      Node
	Gateways []Node
	Zones    []Zone
	// NATs outside every known subnet, drawn directly inside the VPC.
	NATs  []Node
	Edges []Edge
}

const unknownZone = "unknown"

// Synthesize builds the diagram for g. The result depends only on g, so
// identical graphs render byte-identical diagrams.
func Synthesize(g *vpc.Graph) *Diagram {
	d := &Diagram{
		Internet: Node{ID: "Internet", Label: "☁️ Internet", Kind: KindInternet},
		VPC:      Node{ID: "VPC", Label: vpcLabel(g), Kind: KindVPC},
	}

	for _, igw := range g.InternetGateways {
		d.Gateways = append(d.Gateways, Node{
			ID:    NodeID(igw.GatewayID),
			Label: "🌐 " + g.Label(igw.GatewayID),
			Kind:  KindGateway,
		})
	}

	zoneOf := make(map[string]int)     // az -> index into d.Zones
	subnetZone := make(map[string]int) // subnet id -> index into d.Zones
	for _, s := range g.Subnets {
		az := s.AZ
		if az == "" {
			az = unknownZone
		}
		zi, ok := zoneOf[az]
		if !ok {
			zi = len(d.Zones)
			zoneOf[az] = zi
			d.Zones = append(d.Zones, Zone{Node: Node{ID: "az_" + NodeID(az), Label: "📍 " + az, Kind: KindZone}})
		}
		subnetZone[s.SubnetID] = zi
		d.Zones[zi].Subnets = append(d.Zones[zi].Subnets, Node{
			ID:    NodeID(s.SubnetID),
			Label: g.Label(s.SubnetID) + "<br/>" + s.CIDR,
			Kind:  KindSubnet,
		})
	}

	for _, nat := range g.NATGateways {
		n := Node{ID: NodeID(nat.GatewayID), Label: "🔀 " + g.Label(nat.GatewayID), Kind: KindNAT}
		if zi, ok := subnetZone[nat.SubnetID]; ok && nat.SubnetID != "" {
			d.Zones[zi].NATs = append(d.Zones[zi].NATs, n)
			continue
		}
		d.NATs = append(d.NATs, n)
	}

	var firstGateway string
	if len(g.InternetGateways) > 0 {
		firstGateway = g.InternetGateways[0].GatewayID
	}

	seen := make(map[Edge]bool)
	addEdge := func(e Edge) {
		if !seen[e] {
			seen[e] = true
			d.Edges = append(d.Edges, e)
		}
	}

	if firstGateway != "" {
		addEdge(Edge{From: d.Internet.ID, To: NodeID(firstGateway), Kind: EdgeInternet})
	}

	natIDs := make(map[string]bool, len(g.NATGateways))
	for _, nat := range g.NATGateways {
		natIDs[nat.GatewayID] = true
	}
	gatewayIDs := make(map[string]bool, len(g.InternetGateways))
	for _, igw := range g.InternetGateways {
		gatewayIDs[igw.GatewayID] = true
	}

	for _, rt := range g.RouteTables {
		target := DefaultTarget(rt)
		if target == "" {
			continue
		}
		for _, a := range rt.Associations {
			if _, ok := subnetZone[a.SubnetID]; !ok {
				continue
			}
			switch {
			case gatewayIDs[target]:
				addEdge(Edge{From: NodeID(target), To: NodeID(a.SubnetID), Kind: EdgePublic})
			case natIDs[target]:
				addEdge(Edge{From: NodeID(a.SubnetID), To: NodeID(target), Kind: EdgePrivate})
			}
		}
	}

	if firstGateway != "" {
		for _, nat := range g.NATGateways {
			addEdge(Edge{From: NodeID(nat.GatewayID), To: NodeID(firstGateway), Kind: EdgeEgress})
		}
	}
	return d
}

// DefaultTarget returns the target of the first 0.0.0.0/0 route that points
// at an internet gateway or a NAT gateway, or "" when there is none.
func DefaultTarget(rt vpc.RouteTable) string {
	for _, r := range rt.Routes {
		if r.Destination != vpc.DefaultRouteCIDR {
			continue
		}
		if strings.HasPrefix(r.Target, "igw-") || strings.HasPrefix(r.Target, "nat-") {
			return r.Target
		}
	}
	return ""
}

func vpcLabel(g *vpc.Graph) string {
	if g.Network == nil {
		return g.VPCID
	}
	if g.Network.CIDR == "" {
		return g.Network.Name
	}
	return g.Network.Name + " (" + g.Network.CIDR + ")"
}

// NodeID maps an AWS identifier to a Mermaid-safe node identifier.
func NodeID(id string) string {
	var b strings.Builder
	b.Grow(len(id))
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}
