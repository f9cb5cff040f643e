package diagram

import (
	"fmt"
	"io"
	"strings"
)

const (
	styleInternet = "fill:#fff9c4,stroke:#f57f17"
	styleVPC      = "fill:#e1f5fe,stroke:#01579b"
	styleGateway  = "fill:#fff3e0,stroke:#e65100"
	styleZone     = "fill:#f3e5f5,stroke:#4a148c,stroke-dasharray: 5 5"
	styleSubnet   = "fill:#e8f5e9,stroke:#1b5e20"
	styleNAT      = "fill:#ffecb3,stroke:#ff6f00"
)

// Render writes the Mermaid source, without code fences.
func (d *Diagram) Render(w io.Writer) error {
	_, err := io.WriteString(w, d.String())
	return err
}

func (d *Diagram) String() string {
	var b strings.Builder
	line := func(indent int, format string, args ...any) {
		b.WriteString(strings.Repeat("    ", indent))
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}

	line(0, "graph TD")
	line(1, "%s((\"%s\"))", d.Internet.ID, escape(d.Internet.Label))
	b.WriteByte('\n')

	line(1, "subgraph %s[\"%s\"]", d.VPC.ID, escape(d.VPC.Label))
	for _, n := range d.Gateways {
		line(2, "%s[\"%s\"]", n.ID, escape(n.Label))
	}
	for _, z := range d.Zones {
		b.WriteByte('\n')
		line(2, "subgraph %s[\"%s\"]", z.ID, escape(z.Label))
		for _, n := range z.Subnets {
			line(3, "%s[\"%s\"]", n.ID, escape(n.Label))
		}
		for _, n := range z.NATs {
			line(3, "%s[\"%s\"]", n.ID, escape(n.Label))
		}
		line(2, "end")
	}
	if len(d.NATs) > 0 {
		b.WriteByte('\n')
		for _, n := range d.NATs {
			line(2, "%s[\"%s\"]", n.ID, escape(n.Label))
		}
	}
	line(1, "end")

	if len(d.Edges) > 0 {
		b.WriteByte('\n')
		for _, e := range d.Edges {
			line(1, "%s", e.mermaid())
		}
	}

	b.WriteByte('\n')
	line(1, "classDef internet %s", styleInternet)
	line(1, "classDef gateway %s", styleGateway)
	line(1, "classDef subnet %s", styleSubnet)
	line(1, "classDef nat %s", styleNAT)
	line(1, "class %s internet", d.Internet.ID)
	if ids := d.ids(KindGateway); ids != "" {
		line(1, "class %s gateway", ids)
	}
	if ids := d.ids(KindSubnet); ids != "" {
		line(1, "class %s subnet", ids)
	}
	if ids := d.ids(KindNAT); ids != "" {
		line(1, "class %s nat", ids)
	}
	line(1, "style %s %s", d.VPC.ID, styleVPC)
	for _, z := range d.Zones {
		line(1, "style %s %s", z.ID, styleZone)
	}
	return b.String()
}

func (e Edge) mermaid() string {
	switch e.Kind {
	case EdgePublic:
		return e.From + " <-->|Public| " + e.To
	case EdgePrivate:
		return e.From + " -.->|Private| " + e.To
	case EdgeEgress:
		return e.From + " ==> " + e.To
	default:
		return e.From + " <--> " + e.To
	}
}

// ids lists the node IDs of one kind in drawing order, comma separated.
func (d *Diagram) ids(kind Kind) string {
	var ids []string
	switch kind {
	case KindGateway:
		for _, n := range d.Gateways {
			ids = append(ids, n.ID)
		}
	case KindSubnet:
		for _, z := range d.Zones {
			for _, n := range z.Subnets {
				ids = append(ids, n.ID)
			}
		}
	case KindNAT:
		for _, z := range d.Zones {
			for _, n := range z.NATs {
				ids = append(ids, n.ID)
			}
		}
		for _, n := range d.NATs {
			ids = append(ids, n.ID)
		}
	}
	return strings.Join(ids, ",")
}

func escape(label string) string {
	return strings.ReplaceAll(label, `"`, "#quot;")
}
