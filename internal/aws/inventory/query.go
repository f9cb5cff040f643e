package inventory

import (
	"context"
	"strings"
)

// Source answers inventory queries with a raw text blob. The blob is nominally
// JSON in the shape the AWS CLI prints, but callers must not rely on it being
// well-formed.
type Source interface {
	Fetch(ctx context.Context, q Query) (string, error)
}

// Query is an opaque CLI-style request: a service, an operation and the
// remaining flag/value arguments. Region and profile are bound into the Source.
type Query struct {
	Service   string
	Operation string
	Args      []string
}

// NewQuery builds a query from CLI-style arguments.
func NewQuery(service, operation string, args ...string) Query {
	return Query{Service: service, Operation: operation, Args: args}
}

// Arg returns the value following flag, if present.
func (q Query) Arg(flag string) (string, bool) {
	for i := 0; i+1 < len(q.Args); i++ {
		if q.Args[i] == flag {
			return q.Args[i+1], true
		}
	}
	return "", false
}

func (q Query) String() string {
	parts := append([]string{q.Service, q.Operation}, q.Args...)
	return strings.Join(parts, " ")
}

// FilterValue extracts the Values part of a "Name=<name>,Values=a,b" filter
// argument when its Name matches.
func FilterValue(raw, name string) (string, bool) {
	got, values, ok := parseFilter(raw)
	if !ok || got != name {
		return "", false
	}
	return strings.Join(values, ","), true
}

func parseFilter(raw string) (string, []string, bool) {
	segments := strings.Split(raw, ",")
	var name string
	var values []string
	for i := 0; i < len(segments); i++ {
		k, v, ok := strings.Cut(segments[i], "=")
		if !ok {
			continue
		}
		switch k {
		case "Name":
			name = v
		case "Values":
			values = append(values, v)
			for i+1 < len(segments) && !strings.Contains(segments[i+1], "=") {
				i++
				values = append(values, segments[i])
			}
		}
	}
	if name == "" || len(values) == 0 {
		return "", nil, false
	}
	return name, values, true
}

// Queries issued by the network inspection.

const (
	QueryVPCRows         = "Vpcs[*].[VpcId,Tags]"
	QueryInternetGateway = "InternetGateways[*].[InternetGatewayId,Tags,Attachments]"
	QueryRouteTables     = "RouteTables[*].[RouteTableId,Tags,Routes,Associations]"
	QueryAddresses       = "Addresses[*].{AllocationId:AllocationId, PublicIp:PublicIp, AssociationId:AssociationId, InstanceId:InstanceId, PrivateIpAddress:PrivateIpAddress, Tags:Tags}"
)

func ListVPCs() Query {
	return NewQuery("ec2", "describe-vpcs", "--query", QueryVPCRows, "--output", "json")
}

func DescribeVPC(vpcID string) Query {
	return NewQuery("ec2", "describe-vpcs", "--vpc-ids", vpcID, "--output", "json")
}

// DescribeSubnets lists every subnet in the region; callers filter by VPC.
func DescribeSubnets() Query {
	return NewQuery("ec2", "describe-subnets", "--output", "json")
}

func DescribeInternetGateways(vpcID string) Query {
	return NewQuery("ec2", "describe-internet-gateways",
		"--filters", "Name=attachment.vpc-id,Values="+vpcID,
		"--query", QueryInternetGateway,
		"--output", "json")
}

func DescribeNATGateways(vpcID string) Query {
	return NewQuery("ec2", "describe-nat-gateways",
		"--filter", "Name=vpc-id,Values="+vpcID,
		"--output", "json")
}

func DescribeRouteTables(vpcID string) Query {
	return NewQuery("ec2", "describe-route-tables",
		"--filters", "Name=vpc-id,Values="+vpcID,
		"--query", QueryRouteTables,
		"--output", "json")
}

func DescribeAddresses() Query {
	return NewQuery("ec2", "describe-addresses", "--query", QueryAddresses, "--output", "json")
}

func DescribeVPCAttribute(vpcID, attribute string) Query {
	return NewQuery("ec2", "describe-vpc-attribute",
		"--vpc-id", vpcID,
		"--attribute", attribute,
		"--output", "json")
}
