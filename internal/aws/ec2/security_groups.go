package ec2

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsec2 "github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

// ListSecurityGroups lists groups with their rules, limited to vpcID when it
// is not empty.
func (c *Client) ListSecurityGroups(ctx context.Context, vpcID string) ([]SecurityGroup, error) {
	var groups []SecurityGroup
	var nextToken *string

	for {
		out, err := c.api.DescribeSecurityGroups(ctx, &awsec2.DescribeSecurityGroupsInput{
			Filters:   vpcFilter(vpcID),
			NextToken: nextToken,
		})
		if err != nil {
			return nil, fmt.Errorf("DescribeSecurityGroups: %w", err)
		}

		for _, sg := range out.SecurityGroups {
			groups = append(groups, securityGroup(sg))
		}

		if out.NextToken == nil {
			break
		}
		nextToken = out.NextToken
	}
	return groups, nil
}

func (c *Client) GetSecurityGroup(ctx context.Context, groupID string) (*SecurityGroup, error) {
	out, err := c.api.DescribeSecurityGroups(ctx, &awsec2.DescribeSecurityGroupsInput{
		GroupIds: []string{groupID},
	})
	if err != nil {
		return nil, fmt.Errorf("DescribeSecurityGroups: %w", err)
	}
	if len(out.SecurityGroups) == 0 {
		return nil, fmt.Errorf("security group %s: %w", groupID, ErrNotFound)
	}
	sg := securityGroup(out.SecurityGroups[0])
	return &sg, nil
}

func securityGroup(sg types.SecurityGroup) SecurityGroup {
	g := SecurityGroup{
		GroupID:     aws.ToString(sg.GroupId),
		GroupName:   aws.ToString(sg.GroupName),
		Description: aws.ToString(sg.Description),
		VPCID:       aws.ToString(sg.VpcId),
		Inbound:     flattenRules(sg.IpPermissions),
		Outbound:    flattenRules(sg.IpPermissionsEgress),
	}
	g.Name, _ = tagsOf(sg.Tags).Get("Name")
	if g.Name == "" {
		g.Name = g.GroupName
	}
	return g
}

// flattenRules emits one rule per peer: IPv4 ranges, IPv6 ranges, groups,
// then prefix lists.
func flattenRules(perms []types.IpPermission) []SecurityRule {
	var rules []SecurityRule
	for _, p := range perms {
		proto := aws.ToString(p.IpProtocol)
		base := SecurityRule{Protocol: protocolName(proto), PortRange: portRange(proto, p.FromPort, p.ToPort)}
		add := func(peer string, desc *string) {
			r := base
			r.Peer = peer
			r.Description = aws.ToString(desc)
			if r.Description == "" {
				r.Description = "-"
			}
			rules = append(rules, r)
		}
		for _, r := range p.IpRanges {
			add(aws.ToString(r.CidrIp), r.Description)
		}
		for _, r := range p.Ipv6Ranges {
			add(aws.ToString(r.CidrIpv6), r.Description)
		}
		for _, g := range p.UserIdGroupPairs {
			add("sg: "+aws.ToString(g.GroupId), g.Description)
		}
		for _, pl := range p.PrefixListIds {
			add("pl: "+aws.ToString(pl.PrefixListId), pl.Description)
		}
	}
	return rules
}

func protocolName(proto string) string {
	if proto == "-1" {
		return "All"
	}
	return strings.ToUpper(proto)
}

func portRange(proto string, from, to *int32) string {
	if proto == "-1" || from == nil || to == nil {
		return "All"
	}
	if *from == *to {
		return fmt.Sprint(*from)
	}
	return fmt.Sprintf("%d-%d", *from, *to)
}
