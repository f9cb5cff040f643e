package elb

import "time"

type LoadBalancer struct {
	Name           string
	ARN            string
	Type           string // "application" / "network" / "gateway"
	State          string // "unknown" when AWS omits it
	Scheme         string // "internet-facing" / "internal"
	DNSName        string
	VPCID          string
	IPAddressType  string // defaults to "ipv4"
	AZs            []string
	SecurityGroups []string
	CreatedAt      time.Time
}

// Public reports whether the load balancer is internet facing.
func (lb LoadBalancer) Public() bool {
	return lb.Scheme == "internet-facing"
}

type Listener struct {
	ARN           string
	Port          int
	Protocol      string
	ActionType    string // type of the first default action
	DefaultAction string // "forward → tg-name" or "redirect → host" etc.
}

type TargetGroup struct {
	Name                string
	ARN                 string
	Protocol            string
	Port                int
	TargetType          string // "instance" / "ip" / "lambda"
	HealthCheckProtocol string
	HealthCheckPath     string
	HealthyThreshold    int
	UnhealthyThreshold  int
	HealthyCount        int
	UnhealthyCount      int
	Targets             []Target
}

type Target struct {
	ID    string
	Port  int
	State string
}

// LoadBalancerDetail is a load balancer with its listeners and the target
// groups their default actions forward to, sorted by ARN.
type LoadBalancerDetail struct {
	LoadBalancer
	Listeners    []Listener
	TargetGroups []TargetGroup
}
