package vpc

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"tasnim.dev/aws-netdoc/internal/aws/inventory"
)

// Client runs inventory queries for one VPC section at a time and decodes
// the responses. Errors are transport-only: a blob that decodes to nothing
// is an empty result, not an error.
type Client struct {
	src inventory.Source
	log *zap.Logger
}

func NewClient(src inventory.Source, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{src: src, log: log}
}

func (c *Client) fetch(ctx context.Context, q inventory.Query) (string, error) {
	blob, err := c.src.Fetch(ctx, q)
	if err != nil {
		return "", fmt.Errorf("%s %s: %w", q.Service, q.Operation, err)
	}
	return blob, nil
}

func (c *Client) ListVPCs(ctx context.Context) ([]VPCSummary, error) {
	blob, err := c.fetch(ctx, inventory.ListVPCs())
	if err != nil {
		return nil, err
	}
	return ParseVPCList(blob), nil
}

// GetNetwork returns nil without error when the response holds no VPC.
func (c *Client) GetNetwork(ctx context.Context, vpcID string) (*Network, error) {
	blob, err := c.fetch(ctx, inventory.DescribeVPC(vpcID))
	if err != nil {
		return nil, err
	}
	n, ok := ParseNetwork(blob, vpcID)
	if !ok {
		c.log.Warn("vpc response not decodable", zap.String("vpc", vpcID), zap.Int("bytes", len(blob)))
		return nil, nil
	}
	return n, nil
}

func (c *Client) ListSubnets(ctx context.Context, vpcID string) ([]Subnet, error) {
	blob, err := c.fetch(ctx, inventory.DescribeSubnets())
	if err != nil {
		return nil, err
	}
	return ParseSubnets(blob, vpcID), nil
}

func (c *Client) ListInternetGateways(ctx context.Context, vpcID string) ([]InternetGateway, error) {
	blob, err := c.fetch(ctx, inventory.DescribeInternetGateways(vpcID))
	if err != nil {
		return nil, err
	}
	return ParseInternetGateways(blob), nil
}

func (c *Client) ListNATGateways(ctx context.Context, vpcID string) ([]NATGateway, error) {
	blob, err := c.fetch(ctx, inventory.DescribeNATGateways(vpcID))
	if err != nil {
		return nil, err
	}
	return ParseNATGateways(blob), nil
}

// ListRouteTables resolves associated subnet names through lookup.
func (c *Client) ListRouteTables(ctx context.Context, vpcID string, lookup func(id string) string) ([]RouteTable, error) {
	blob, err := c.fetch(ctx, inventory.DescribeRouteTables(vpcID))
	if err != nil {
		return nil, err
	}
	return ParseRouteTables(blob, lookup), nil
}

func (c *Client) ListElasticIPs(ctx context.Context) ([]ElasticIP, error) {
	blob, err := c.fetch(ctx, inventory.DescribeAddresses())
	if err != nil {
		return nil, err
	}
	return ParseElasticIPs(blob), nil
}

const (
	AttributeDNSSupport   = "enableDnsSupport"
	AttributeDNSHostnames = "enableDnsHostnames"
)

func (c *Client) GetVPCAttribute(ctx context.Context, vpcID, attribute string) (bool, error) {
	blob, err := c.fetch(ctx, inventory.DescribeVPCAttribute(vpcID, attribute))
	if err != nil {
		return false, err
	}
	return ParseVPCAttribute(blob, attribute), nil
}
