package ec2

import (
	"context"
	"errors"
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	awsec2 "github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

func webGroup() types.SecurityGroup {
	return types.SecurityGroup{
		GroupId:     awssdk.String("sg-111"),
		GroupName:   awssdk.String("web-sg"),
		Description: awssdk.String("web tier"),
		VpcId:       awssdk.String("vpc-1"),
		Tags:        []types.Tag{{Key: awssdk.String("Name"), Value: awssdk.String("web")}},
		IpPermissions: []types.IpPermission{
			{
				IpProtocol: awssdk.String("tcp"),
				FromPort:   awssdk.Int32(443),
				ToPort:     awssdk.Int32(443),
				IpRanges:   []types.IpRange{{CidrIp: awssdk.String("0.0.0.0/0"), Description: awssdk.String("https")}},
				Ipv6Ranges: []types.Ipv6Range{{CidrIpv6: awssdk.String("::/0")}},
			},
			{
				IpProtocol:       awssdk.String("tcp"),
				FromPort:         awssdk.Int32(8000),
				ToPort:           awssdk.Int32(8100),
				UserIdGroupPairs: []types.UserIdGroupPair{{GroupId: awssdk.String("sg-222")}},
				PrefixListIds:    []types.PrefixListId{{PrefixListId: awssdk.String("pl-1"), Description: awssdk.String("office")}},
			},
		},
		IpPermissionsEgress: []types.IpPermission{
			{IpProtocol: awssdk.String("-1"), IpRanges: []types.IpRange{{CidrIp: awssdk.String("0.0.0.0/0")}}},
		},
	}
}

func TestListSecurityGroups(t *testing.T) {
	callCount := 0
	mock := &mockEC2API{
		describeSecurityGroupsFunc: func(ctx context.Context, params *awsec2.DescribeSecurityGroupsInput, optFns ...func(*awsec2.Options)) (*awsec2.DescribeSecurityGroupsOutput, error) {
			callCount++
			if len(params.Filters) != 1 || awssdk.ToString(params.Filters[0].Name) != "vpc-id" {
				t.Errorf("Filters = %+v, want vpc-id", params.Filters)
			}
			if callCount == 1 {
				return &awsec2.DescribeSecurityGroupsOutput{
					SecurityGroups: []types.SecurityGroup{webGroup()},
					NextToken:      awssdk.String("next"),
				}, nil
			}
			return &awsec2.DescribeSecurityGroupsOutput{
				SecurityGroups: []types.SecurityGroup{{GroupId: awssdk.String("sg-222"), GroupName: awssdk.String("default")}},
			}, nil
		},
	}

	groups, err := NewClient(mock, nil).ListSecurityGroups(context.Background(), "vpc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if callCount != 2 {
		t.Errorf("expected 2 API calls, got %d", callCount)
	}
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].Name != "web" {
		t.Errorf("groups[0].Name = %s, want web", groups[0].Name)
	}
	if groups[1].Name != "default" {
		t.Errorf("groups[1].Name = %s, want the group name fallback", groups[1].Name)
	}
}

func TestGetSecurityGroup_FlattensRules(t *testing.T) {
	mock := &mockEC2API{
		describeSecurityGroupsFunc: func(ctx context.Context, params *awsec2.DescribeSecurityGroupsInput, optFns ...func(*awsec2.Options)) (*awsec2.DescribeSecurityGroupsOutput, error) {
			if len(params.GroupIds) != 1 || params.GroupIds[0] != "sg-111" {
				t.Errorf("GroupIds = %v", params.GroupIds)
			}
			return &awsec2.DescribeSecurityGroupsOutput{SecurityGroups: []types.SecurityGroup{webGroup()}}, nil
		},
	}

	sg, err := NewClient(mock, nil).GetSecurityGroup(context.Background(), "sg-111")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []SecurityRule{
		{Protocol: "TCP", PortRange: "443", Peer: "0.0.0.0/0", Description: "https"},
		{Protocol: "TCP", PortRange: "443", Peer: "::/0", Description: "-"},
		{Protocol: "TCP", PortRange: "8000-8100", Peer: "sg: sg-222", Description: "-"},
		{Protocol: "TCP", PortRange: "8000-8100", Peer: "pl: pl-1", Description: "office"},
	}
	if len(sg.Inbound) != len(want) {
		t.Fatalf("Inbound = %+v", sg.Inbound)
	}
	for i := range want {
		if sg.Inbound[i] != want[i] {
			t.Errorf("Inbound[%d] = %+v, want %+v", i, sg.Inbound[i], want[i])
		}
	}
	if len(sg.Outbound) != 1 || sg.Outbound[0].Protocol != "All" || sg.Outbound[0].PortRange != "All" {
		t.Errorf("Outbound = %+v", sg.Outbound)
	}
}

func TestGetSecurityGroup_NotFound(t *testing.T) {
	mock := &mockEC2API{
		describeSecurityGroupsFunc: func(ctx context.Context, params *awsec2.DescribeSecurityGroupsInput, optFns ...func(*awsec2.Options)) (*awsec2.DescribeSecurityGroupsOutput, error) {
			return &awsec2.DescribeSecurityGroupsOutput{}, nil
		},
	}

	_, err := NewClient(mock, nil).GetSecurityGroup(context.Background(), "sg-missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestPortRange(t *testing.T) {
	tests := []struct {
		proto    string
		from, to *int32
		want     string
	}{
		{"-1", nil, nil, "All"},
		{"tcp", awssdk.Int32(22), awssdk.Int32(22), "22"},
		{"udp", awssdk.Int32(1000), awssdk.Int32(2000), "1000-2000"},
		{"icmp", nil, nil, "All"},
	}
	for _, tt := range tests {
		if got := portRange(tt.proto, tt.from, tt.to); got != tt.want {
			t.Errorf("portRange(%s) = %s, want %s", tt.proto, got, tt.want)
		}
	}
}
