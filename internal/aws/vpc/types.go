package vpc

// Tag is one key/value pair. Tags keeps the order in which keys were first seen.
type Tag struct {
	Key   string
	Value string
}

type Tags []Tag

func (t Tags) Get(key string) (string, bool) {
	for _, tag := range t {
		if tag.Key == key {
			return tag.Value, true
		}
	}
	return "", false
}

// Without returns the tags minus key, preserving order.
func (t Tags) Without(key string) Tags {
	out := make(Tags, 0, len(t))
	for _, tag := range t {
		if tag.Key != key {
			out = append(out, tag)
		}
	}
	return out
}

// add appends a tag unless its key is already present.
func (t Tags) add(key, value string) Tags {
	if _, ok := t.Get(key); ok {
		return t
	}
	return append(t, Tag{Key: key, Value: value})
}

type VPCSummary struct {
	VPCID string
	Name  string
}

// Network is the VPC root entity.
type Network struct {
	VPCID        string
	Name         string // falls back to VPCID
	CIDR         string
	State        string
	DNSSupport   bool
	DNSHostnames bool
	Tags         Tags
}

type Subnet struct {
	SubnetID     string
	VPCID        string
	Name         string
	CIDR         string
	AZ           string
	State        string
	AvailableIPs int
	MapPublicIP  bool
}

type InternetGateway struct {
	GatewayID string
	Name      string
	State     string // attached, detached
}

const (
	ConnectivityPublic  = "public"
	ConnectivityPrivate = "private"

	AvailabilityZonal    = "zonal"
	AvailabilityRegional = "regional"
)

type NATGateway struct {
	GatewayID        string
	Name             string
	State            string // available, pending, failed, deleting
	ConnectivityType string // public, private
	AvailabilityMode string // zonal, regional
	SubnetID         string // zonal only
	PublicIP         string // zonal public only
	AllocationID     string // zonal public only

	// regional only: "enabled" or "disabled"
	AutoScalingIPs     string
	AutoProvisionZones string

	Tags Tags // without Name
}

func (n NATGateway) Regional() bool {
	return n.AvailabilityMode == AvailabilityRegional
}

type RouteTable struct {
	RouteTableID string
	Name         string
	Routes       []RouteEntry
	Associations []RouteTableAssociation
}

const DefaultRouteCIDR = "0.0.0.0/0"

type RouteEntry struct {
	Destination string
	Target      string // igw-xxx, nat-xxx or local
	State       string // active, blackhole
}

type RouteTableAssociation struct {
	SubnetID   string
	SubnetName string // resolved at decode time, may be empty
}

type ElasticIP struct {
	PublicIP     string
	Name         string // falls back to PublicIP
	AllocationID string
	InstanceID   string
	PrivateIP    string
}

// Graph is the assembled VPC topology. Network is nil when the VPC itself
// could not be fetched; the other collections may still be populated.
type Graph struct {
	VPCID            string
	Network          *Network
	Subnets          []Subnet
	InternetGateways []InternetGateway
	NATGateways      []NATGateway
	RouteTables      []RouteTable
	ElasticIPs       []ElasticIP

	names map[string]string
}

func NewGraph(vpcID string) *Graph {
	return &Graph{VPCID: vpcID}
}

// Index builds the ID to name table over subnets, gateways and NATs. It is
// called once all collections are filled.
func (g *Graph) Index() {
	g.names = make(map[string]string, len(g.Subnets)+len(g.InternetGateways)+len(g.NATGateways))
	for _, s := range g.Subnets {
		g.names[s.SubnetID] = s.Name
	}
	for _, igw := range g.InternetGateways {
		g.names[igw.GatewayID] = igw.Name
	}
	for _, nat := range g.NATGateways {
		g.names[nat.GatewayID] = nat.Name
	}
}

// Has reports whether id names an indexed entity.
func (g *Graph) Has(id string) bool {
	if g.names == nil {
		g.Index()
	}
	_, ok := g.names[id]
	return ok
}

// Label returns the name of id, or id itself when it has none.
func (g *Graph) Label(id string) string {
	if g.names == nil {
		g.Index()
	}
	if name := g.names[id]; name != "" {
		return name
	}
	return id
}

// SubnetName resolves a subnet ID against the subnets collected so far.
func (g *Graph) SubnetName(id string) string {
	for _, s := range g.Subnets {
		if s.SubnetID == id {
			return s.Name
		}
	}
	return ""
}

// DisplayName renders "name · id", or "NULL · id" when the entity has no name.
func DisplayName(name, id string) string {
	if name == "" || name == id {
		return "NULL · " + id
	}
	return name + " · " + id
}
