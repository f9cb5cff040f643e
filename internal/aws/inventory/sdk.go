package inventory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsec2 "github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"go.uber.org/zap"
)

var errUnsupported = errors.New("query not supported")

type EC2API interface {
	DescribeVpcs(ctx context.Context, params *awsec2.DescribeVpcsInput, optFns ...func(*awsec2.Options)) (*awsec2.DescribeVpcsOutput, error)
	DescribeSubnets(ctx context.Context, params *awsec2.DescribeSubnetsInput, optFns ...func(*awsec2.Options)) (*awsec2.DescribeSubnetsOutput, error)
	DescribeInternetGateways(ctx context.Context, params *awsec2.DescribeInternetGatewaysInput, optFns ...func(*awsec2.Options)) (*awsec2.DescribeInternetGatewaysOutput, error)
	DescribeNatGateways(ctx context.Context, params *awsec2.DescribeNatGatewaysInput, optFns ...func(*awsec2.Options)) (*awsec2.DescribeNatGatewaysOutput, error)
	DescribeRouteTables(ctx context.Context, params *awsec2.DescribeRouteTablesInput, optFns ...func(*awsec2.Options)) (*awsec2.DescribeRouteTablesOutput, error)
	DescribeAddresses(ctx context.Context, params *awsec2.DescribeAddressesInput, optFns ...func(*awsec2.Options)) (*awsec2.DescribeAddressesOutput, error)
	DescribeVpcAttribute(ctx context.Context, params *awsec2.DescribeVpcAttributeInput, optFns ...func(*awsec2.Options)) (*awsec2.DescribeVpcAttributeOutput, error)
}

// SDKSource answers CLI-style queries by calling EC2 and serializing the
// response in the shape the AWS CLI prints. Each query is one request.
type SDKSource struct {
	api EC2API
	log *zap.Logger
}

func NewSDKSource(api EC2API, log *zap.Logger) *SDKSource {
	if log == nil {
		log = zap.NewNop()
	}
	return &SDKSource{api: api, log: log}
}

func (s *SDKSource) Fetch(ctx context.Context, q Query) (string, error) {
	start := time.Now()
	blob, err := s.dispatch(ctx, q)
	fields := []zap.Field{
		zap.String("service", q.Service),
		zap.String("operation", q.Operation),
		zap.Strings("args", q.Args),
		zap.Duration("elapsed", time.Since(start)),
	}
	if err != nil {
		var ue *UnavailableError
		if !errors.As(err, &ue) {
			ue = Unavailable(q, err)
		}
		s.log.Warn("inventory query failed", append(fields, zap.String("kind", string(ue.Kind)), zap.Error(err))...)
		return "", ue
	}
	s.log.Info("inventory query", append(fields, zap.Int("bytes", len(blob)))...)
	return blob, nil
}

func (s *SDKSource) dispatch(ctx context.Context, q Query) (string, error) {
	if q.Service != "ec2" {
		return "", &UnavailableError{Query: q, Kind: KindUnsupported, Err: errUnsupported}
	}
	switch q.Operation {
	case "describe-vpcs":
		return s.describeVpcs(ctx, q)
	case "describe-subnets":
		return s.describeSubnets(ctx, q)
	case "describe-internet-gateways":
		return s.describeInternetGateways(ctx, q)
	case "describe-nat-gateways":
		return s.describeNatGateways(ctx, q)
	case "describe-route-tables":
		return s.describeRouteTables(ctx, q)
	case "describe-addresses":
		return s.describeAddresses(ctx, q)
	case "describe-vpc-attribute":
		return s.describeVpcAttribute(ctx, q)
	}
	return "", &UnavailableError{Query: q, Kind: KindUnsupported, Err: errUnsupported}
}

// CLI-shaped output records. Field order follows the AWS CLI.

type cliTag struct {
	Key   string `json:"Key"`
	Value string `json:"Value"`
}

type cliVPC struct {
	CidrBlock string   `json:"CidrBlock"`
	State     string   `json:"State"`
	VpcID     string   `json:"VpcId"`
	IsDefault bool     `json:"IsDefault"`
	Tags      []cliTag `json:"Tags"`
}

type cliSubnet struct {
	AvailabilityZone        string   `json:"AvailabilityZone"`
	AvailableIPAddressCount int32    `json:"AvailableIpAddressCount"`
	CidrBlock               string   `json:"CidrBlock"`
	MapPublicIPOnLaunch     bool     `json:"MapPublicIpOnLaunch"`
	State                   string   `json:"State"`
	SubnetID                string   `json:"SubnetId"`
	VpcID                   string   `json:"VpcId"`
	Tags                    []cliTag `json:"Tags"`
}

type cliAttachment struct {
	State string `json:"State"`
	VpcID string `json:"VpcId"`
}

type cliNATAddress struct {
	AllocationID string `json:"AllocationId,omitempty"`
	PublicIP     string `json:"PublicIp,omitempty"`
	PrivateIP    string `json:"PrivateIp,omitempty"`
}

type cliNAT struct {
	NatGatewayID        string          `json:"NatGatewayId"`
	SubnetID            string          `json:"SubnetId,omitempty"`
	VpcID               string          `json:"VpcId"`
	State               string          `json:"State"`
	ConnectivityType    string          `json:"ConnectivityType,omitempty"`
	AvailabilityMode    string          `json:"AvailabilityMode,omitempty"`
	AutoScalingIPs      string          `json:"AutoScalingIps,omitempty"`
	AutoProvisionZones  string          `json:"AutoProvisionZones,omitempty"`
	NatGatewayAddresses []cliNATAddress `json:"NatGatewayAddresses"`
	Tags                []cliTag        `json:"Tags"`
}

type cliRoute struct {
	DestinationCidrBlock string `json:"DestinationCidrBlock,omitempty"`
	GatewayID            string `json:"GatewayId,omitempty"`
	NatGatewayID         string `json:"NatGatewayId,omitempty"`
	State                string `json:"State"`
}

type cliAssociation struct {
	Main                    bool   `json:"Main"`
	RouteTableAssociationID string `json:"RouteTableAssociationId"`
	SubnetID                string `json:"SubnetId,omitempty"`
}

type cliAddress struct {
	AllocationID     string   `json:"AllocationId"`
	PublicIP         string   `json:"PublicIp"`
	AssociationID    string   `json:"AssociationId,omitempty"`
	InstanceID       string   `json:"InstanceId,omitempty"`
	PrivateIPAddress string   `json:"PrivateIpAddress,omitempty"`
	Tags             []cliTag `json:"Tags"`
}

type cliBoolValue struct {
	Value bool `json:"Value"`
}

func (s *SDKSource) describeVpcs(ctx context.Context, q Query) (string, error) {
	in := &awsec2.DescribeVpcsInput{Filters: filters(q)}
	if ids, ok := q.Arg("--vpc-ids"); ok {
		in.VpcIds = strings.Fields(ids)
	}
	var all []types.Vpc
	for {
		out, err := s.api.DescribeVpcs(ctx, in)
		if err != nil {
			return "", fmt.Errorf("DescribeVpcs: %w", err)
		}
		all = append(all, out.Vpcs...)
		if out.NextToken == nil {
			break
		}
		in.NextToken = out.NextToken
	}

	if projected(q, QueryVPCRows) {
		rows := make([][]any, 0, len(all))
		for _, v := range all {
			rows = append(rows, []any{aws.ToString(v.VpcId), cliTags(v.Tags)})
		}
		return marshal(rows)
	}

	vpcs := make([]cliVPC, 0, len(all))
	for _, v := range all {
		vpcs = append(vpcs, cliVPC{
			CidrBlock: aws.ToString(v.CidrBlock),
			State:     string(v.State),
			VpcID:     aws.ToString(v.VpcId),
			IsDefault: aws.ToBool(v.IsDefault),
			Tags:      cliTags(v.Tags),
		})
	}
	return marshal(struct {
		Vpcs []cliVPC `json:"Vpcs"`
	}{vpcs})
}

func (s *SDKSource) describeSubnets(ctx context.Context, q Query) (string, error) {
	var all []types.Subnet
	var nextToken *string
	for {
		out, err := s.api.DescribeSubnets(ctx, &awsec2.DescribeSubnetsInput{
			Filters:   filters(q),
			NextToken: nextToken,
		})
		if err != nil {
			return "", fmt.Errorf("DescribeSubnets: %w", err)
		}
		all = append(all, out.Subnets...)
		if out.NextToken == nil {
			break
		}
		nextToken = out.NextToken
	}

	subnets := make([]cliSubnet, 0, len(all))
	for _, sn := range all {
		subnets = append(subnets, cliSubnet{
			AvailabilityZone:        aws.ToString(sn.AvailabilityZone),
			AvailableIPAddressCount: aws.ToInt32(sn.AvailableIpAddressCount),
			CidrBlock:               aws.ToString(sn.CidrBlock),
			MapPublicIPOnLaunch:     aws.ToBool(sn.MapPublicIpOnLaunch),
			State:                   string(sn.State),
			SubnetID:                aws.ToString(sn.SubnetId),
			VpcID:                   aws.ToString(sn.VpcId),
			Tags:                    cliTags(sn.Tags),
		})
	}
	return marshal(struct {
		Subnets []cliSubnet `json:"Subnets"`
	}{subnets})
}

func (s *SDKSource) describeInternetGateways(ctx context.Context, q Query) (string, error) {
	var all []types.InternetGateway
	var nextToken *string
	for {
		out, err := s.api.DescribeInternetGateways(ctx, &awsec2.DescribeInternetGatewaysInput{
			Filters:   filters(q),
			NextToken: nextToken,
		})
		if err != nil {
			return "", fmt.Errorf("DescribeInternetGateways: %w", err)
		}
		all = append(all, out.InternetGateways...)
		if out.NextToken == nil {
			break
		}
		nextToken = out.NextToken
	}

	rows := make([][]any, 0, len(all))
	for _, igw := range all {
		attachments := make([]cliAttachment, 0, len(igw.Attachments))
		for _, a := range igw.Attachments {
			attachments = append(attachments, cliAttachment{
				State: string(a.State),
				VpcID: aws.ToString(a.VpcId),
			})
		}
		rows = append(rows, []any{aws.ToString(igw.InternetGatewayId), cliTags(igw.Tags), attachments})
	}
	return marshal(rows)
}

func (s *SDKSource) describeNatGateways(ctx context.Context, q Query) (string, error) {
	var all []types.NatGateway
	var nextToken *string
	for {
		out, err := s.api.DescribeNatGateways(ctx, &awsec2.DescribeNatGatewaysInput{
			Filter:    filters(q),
			NextToken: nextToken,
		})
		if err != nil {
			return "", fmt.Errorf("DescribeNatGateways: %w", err)
		}
		all = append(all, out.NatGateways...)
		if out.NextToken == nil {
			break
		}
		nextToken = out.NextToken
	}

	nats := make([]cliNAT, 0, len(all))
	for _, n := range all {
		addresses := make([]cliNATAddress, 0, len(n.NatGatewayAddresses))
		for _, a := range n.NatGatewayAddresses {
			addresses = append(addresses, cliNATAddress{
				AllocationID: aws.ToString(a.AllocationId),
				PublicIP:     aws.ToString(a.PublicIp),
				PrivateIP:    aws.ToString(a.PrivateIp),
			})
		}
		nats = append(nats, cliNAT{
			NatGatewayID:        aws.ToString(n.NatGatewayId),
			SubnetID:            aws.ToString(n.SubnetId),
			VpcID:               aws.ToString(n.VpcId),
			State:               string(n.State),
			ConnectivityType:    string(n.ConnectivityType),
			AvailabilityMode:    string(n.AvailabilityMode),
			AutoScalingIPs:      string(n.AutoScalingIps),
			AutoProvisionZones:  string(n.AutoProvisionZones),
			NatGatewayAddresses: addresses,
			Tags:                cliTags(n.Tags),
		})
	}
	return marshal(struct {
		NatGateways []cliNAT `json:"NatGateways"`
	}{nats})
}

func (s *SDKSource) describeRouteTables(ctx context.Context, q Query) (string, error) {
	var all []types.RouteTable
	var nextToken *string
	for {
		out, err := s.api.DescribeRouteTables(ctx, &awsec2.DescribeRouteTablesInput{
			Filters:   filters(q),
			NextToken: nextToken,
		})
		if err != nil {
			return "", fmt.Errorf("DescribeRouteTables: %w", err)
		}
		all = append(all, out.RouteTables...)
		if out.NextToken == nil {
			break
		}
		nextToken = out.NextToken
	}

	rows := make([][]any, 0, len(all))
	for _, rt := range all {
		routes := make([]cliRoute, 0, len(rt.Routes))
		for _, r := range rt.Routes {
			routes = append(routes, cliRoute{
				DestinationCidrBlock: aws.ToString(r.DestinationCidrBlock),
				GatewayID:            aws.ToString(r.GatewayId),
				NatGatewayID:         aws.ToString(r.NatGatewayId),
				State:                string(r.State),
			})
		}
		assocs := make([]cliAssociation, 0, len(rt.Associations))
		for _, a := range rt.Associations {
			assocs = append(assocs, cliAssociation{
				Main:                    aws.ToBool(a.Main),
				RouteTableAssociationID: aws.ToString(a.RouteTableAssociationId),
				SubnetID:                aws.ToString(a.SubnetId),
			})
		}
		rows = append(rows, []any{aws.ToString(rt.RouteTableId), cliTags(rt.Tags), routes, assocs})
	}
	return marshal(rows)
}

func (s *SDKSource) describeAddresses(ctx context.Context, q Query) (string, error) {
	out, err := s.api.DescribeAddresses(ctx, &awsec2.DescribeAddressesInput{Filters: filters(q)})
	if err != nil {
		return "", fmt.Errorf("DescribeAddresses: %w", err)
	}

	addresses := make([]cliAddress, 0, len(out.Addresses))
	for _, a := range out.Addresses {
		addresses = append(addresses, cliAddress{
			AllocationID:     aws.ToString(a.AllocationId),
			PublicIP:         aws.ToString(a.PublicIp),
			AssociationID:    aws.ToString(a.AssociationId),
			InstanceID:       aws.ToString(a.InstanceId),
			PrivateIPAddress: aws.ToString(a.PrivateIpAddress),
			Tags:             cliTags(a.Tags),
		})
	}
	if projected(q, QueryAddresses) {
		return marshal(addresses)
	}
	return marshal(struct {
		Addresses []cliAddress `json:"Addresses"`
	}{addresses})
}

func (s *SDKSource) describeVpcAttribute(ctx context.Context, q Query) (string, error) {
	vpcID, ok := q.Arg("--vpc-id")
	if !ok {
		return "", &UnavailableError{Query: q, Kind: KindUnsupported, Err: errors.New("missing --vpc-id")}
	}
	attr, _ := q.Arg("--attribute")
	var name types.VpcAttributeName
	switch attr {
	case "enableDnsSupport":
		name = types.VpcAttributeNameEnableDnsSupport
	case "enableDnsHostnames":
		name = types.VpcAttributeNameEnableDnsHostnames
	default:
		return "", &UnavailableError{Query: q, Kind: KindUnsupported, Err: fmt.Errorf("attribute %q", attr)}
	}

	out, err := s.api.DescribeVpcAttribute(ctx, &awsec2.DescribeVpcAttributeInput{
		VpcId:     aws.String(vpcID),
		Attribute: name,
	})
	if err != nil {
		return "", fmt.Errorf("DescribeVpcAttribute: %w", err)
	}

	if name == types.VpcAttributeNameEnableDnsSupport {
		return marshal(struct {
			VpcID            string       `json:"VpcId"`
			EnableDNSSupport cliBoolValue `json:"EnableDnsSupport"`
		}{vpcID, cliBoolValue{attributeValue(out.EnableDnsSupport)}})
	}
	return marshal(struct {
		VpcID              string       `json:"VpcId"`
		EnableDNSHostnames cliBoolValue `json:"EnableDnsHostnames"`
	}{vpcID, cliBoolValue{attributeValue(out.EnableDnsHostnames)}})
}

func attributeValue(v *types.AttributeBooleanValue) bool {
	if v == nil {
		return false
	}
	return aws.ToBool(v.Value)
}

func cliTags(tags []types.Tag) []cliTag {
	out := make([]cliTag, 0, len(tags))
	for _, t := range tags {
		out = append(out, cliTag{Key: aws.ToString(t.Key), Value: aws.ToString(t.Value)})
	}
	return out
}

// filters converts --filters / --filter arguments into SDK filters.
func filters(q Query) []types.Filter {
	var out []types.Filter
	for _, flag := range []string{"--filters", "--filter"} {
		raw, ok := q.Arg(flag)
		if !ok {
			continue
		}
		name, values, ok := parseFilter(raw)
		if !ok {
			continue
		}
		out = append(out, types.Filter{Name: aws.String(name), Values: values})
	}
	return out
}

func projected(q Query, projection string) bool {
	got, ok := q.Arg("--query")
	return ok && got == projection
}

func marshal(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("encoding response: %w", err)
	}
	return buf.String(), nil
}
