package elb

import (
	"context"
	"errors"
	"fmt"
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	elbv2 "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	elbtypes "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockELBAPI struct {
	describeLoadBalancersFunc func(ctx context.Context, params *elbv2.DescribeLoadBalancersInput, optFns ...func(*elbv2.Options)) (*elbv2.DescribeLoadBalancersOutput, error)
	describeListenersFunc     func(ctx context.Context, params *elbv2.DescribeListenersInput, optFns ...func(*elbv2.Options)) (*elbv2.DescribeListenersOutput, error)
	describeTargetGroupsFunc  func(ctx context.Context, params *elbv2.DescribeTargetGroupsInput, optFns ...func(*elbv2.Options)) (*elbv2.DescribeTargetGroupsOutput, error)
	describeTargetHealthFunc  func(ctx context.Context, params *elbv2.DescribeTargetHealthInput, optFns ...func(*elbv2.Options)) (*elbv2.DescribeTargetHealthOutput, error)
}

func (m *mockELBAPI) DescribeLoadBalancers(ctx context.Context, params *elbv2.DescribeLoadBalancersInput, optFns ...func(*elbv2.Options)) (*elbv2.DescribeLoadBalancersOutput, error) {
	return m.describeLoadBalancersFunc(ctx, params, optFns...)
}
func (m *mockELBAPI) DescribeListeners(ctx context.Context, params *elbv2.DescribeListenersInput, optFns ...func(*elbv2.Options)) (*elbv2.DescribeListenersOutput, error) {
	return m.describeListenersFunc(ctx, params, optFns...)
}
func (m *mockELBAPI) DescribeTargetGroups(ctx context.Context, params *elbv2.DescribeTargetGroupsInput, optFns ...func(*elbv2.Options)) (*elbv2.DescribeTargetGroupsOutput, error) {
	return m.describeTargetGroupsFunc(ctx, params, optFns...)
}
func (m *mockELBAPI) DescribeTargetHealth(ctx context.Context, params *elbv2.DescribeTargetHealthInput, optFns ...func(*elbv2.Options)) (*elbv2.DescribeTargetHealthOutput, error) {
	return m.describeTargetHealthFunc(ctx, params, optFns...)
}

const (
	albARN = "arn:aws:elasticloadbalancing:us-east-1:123456:loadbalancer/app/my-alb/abc123"
	webTG  = "arn:aws:elasticloadbalancing:us-east-1:123456:targetgroup/web-tg/aaa"
	apiTG  = "arn:aws:elasticloadbalancing:us-east-1:123456:targetgroup/api-tg/bbb"
)

func TestListLoadBalancers_FiltersByVPC(t *testing.T) {
	calls := 0
	mock := &mockELBAPI{
		describeLoadBalancersFunc: func(ctx context.Context, params *elbv2.DescribeLoadBalancersInput, optFns ...func(*elbv2.Options)) (*elbv2.DescribeLoadBalancersOutput, error) {
			calls++
			if calls == 1 {
				assert.Nil(t, params.Marker)
				return &elbv2.DescribeLoadBalancersOutput{
					LoadBalancers: []elbtypes.LoadBalancer{
						{LoadBalancerName: awssdk.String("my-alb"), VpcId: awssdk.String("vpc-1"), Scheme: elbtypes.LoadBalancerSchemeEnumInternetFacing},
						{LoadBalancerName: awssdk.String("other"), VpcId: awssdk.String("vpc-2")},
					},
					NextMarker: awssdk.String("m2"),
				}, nil
			}
			assert.Equal(t, "m2", awssdk.ToString(params.Marker))
			return &elbv2.DescribeLoadBalancersOutput{
				LoadBalancers: []elbtypes.LoadBalancer{
					{LoadBalancerName: awssdk.String("internal-nlb"), VpcId: awssdk.String("vpc-1"), Scheme: elbtypes.LoadBalancerSchemeEnumInternal},
				},
			}, nil
		},
	}

	lbs, err := NewClient(mock, nil).ListLoadBalancers(context.Background(), "vpc-1")
	require.NoError(t, err)
	require.Len(t, lbs, 2)
	assert.Equal(t, 2, calls)
	assert.Equal(t, "my-alb", lbs[0].Name)
	assert.True(t, lbs[0].Public())
	assert.Equal(t, "internal-nlb", lbs[1].Name)
	assert.False(t, lbs[1].Public())
	assert.Equal(t, "unknown", lbs[1].State)
	assert.Equal(t, "ipv4", lbs[1].IPAddressType)
}

func TestListLoadBalancers_Error(t *testing.T) {
	mock := &mockELBAPI{
		describeLoadBalancersFunc: func(ctx context.Context, params *elbv2.DescribeLoadBalancersInput, optFns ...func(*elbv2.Options)) (*elbv2.DescribeLoadBalancersOutput, error) {
			return nil, fmt.Errorf("throttled")
		},
	}
	_, err := NewClient(mock, nil).ListLoadBalancers(context.Background(), "")
	assert.ErrorContains(t, err, "DescribeLoadBalancers")
}

func TestGetLoadBalancer(t *testing.T) {
	mock := &mockELBAPI{
		describeLoadBalancersFunc: func(ctx context.Context, params *elbv2.DescribeLoadBalancersInput, optFns ...func(*elbv2.Options)) (*elbv2.DescribeLoadBalancersOutput, error) {
			assert.Equal(t, []string{"my-alb"}, params.Names)
			assert.Empty(t, params.LoadBalancerArns)
			return &elbv2.DescribeLoadBalancersOutput{
				LoadBalancers: []elbtypes.LoadBalancer{{
					LoadBalancerName:  awssdk.String("my-alb"),
					LoadBalancerArn:   awssdk.String(albARN),
					Type:              elbtypes.LoadBalancerTypeEnumApplication,
					State:             &elbtypes.LoadBalancerState{Code: elbtypes.LoadBalancerStateEnumActive},
					Scheme:            elbtypes.LoadBalancerSchemeEnumInternetFacing,
					DNSName:           awssdk.String("my-alb-123.us-east-1.elb.amazonaws.com"),
					VpcId:             awssdk.String("vpc-1"),
					IpAddressType:     elbtypes.IpAddressTypeDualstack,
					AvailabilityZones: []elbtypes.AvailabilityZone{{ZoneName: awssdk.String("us-east-1a")}, {ZoneName: awssdk.String("us-east-1b")}},
					SecurityGroups:    []string{"sg-1"},
				}},
			}, nil
		},
		describeListenersFunc: func(ctx context.Context, params *elbv2.DescribeListenersInput, optFns ...func(*elbv2.Options)) (*elbv2.DescribeListenersOutput, error) {
			assert.Equal(t, albARN, awssdk.ToString(params.LoadBalancerArn))
			return &elbv2.DescribeListenersOutput{
				Listeners: []elbtypes.Listener{
					{
						Port:     awssdk.Int32(443),
						Protocol: elbtypes.ProtocolEnumHttps,
						DefaultActions: []elbtypes.Action{{
							Type:           elbtypes.ActionTypeEnumForward,
							TargetGroupArn: awssdk.String(webTG),
						}},
					},
					{
						Port:     awssdk.Int32(8443),
						Protocol: elbtypes.ProtocolEnumHttps,
						DefaultActions: []elbtypes.Action{{
							Type: elbtypes.ActionTypeEnumForward,
							ForwardConfig: &elbtypes.ForwardActionConfig{TargetGroups: []elbtypes.TargetGroupTuple{
								{TargetGroupArn: awssdk.String(webTG)},
								{TargetGroupArn: awssdk.String(apiTG)},
							}},
						}},
					},
					{
						Port:     awssdk.Int32(80),
						Protocol: elbtypes.ProtocolEnumHttp,
						DefaultActions: []elbtypes.Action{{
							Type:           elbtypes.ActionTypeEnumRedirect,
							RedirectConfig: &elbtypes.RedirectActionConfig{Host: awssdk.String("example.com")},
						}},
					},
				},
			}, nil
		},
		describeTargetGroupsFunc: func(ctx context.Context, params *elbv2.DescribeTargetGroupsInput, optFns ...func(*elbv2.Options)) (*elbv2.DescribeTargetGroupsOutput, error) {
			assert.Equal(t, []string{apiTG, webTG}, params.TargetGroupArns)
			return &elbv2.DescribeTargetGroupsOutput{
				TargetGroups: []elbtypes.TargetGroup{
					{
						TargetGroupName:         awssdk.String("web-tg"),
						TargetGroupArn:          awssdk.String(webTG),
						Protocol:                elbtypes.ProtocolEnumHttp,
						Port:                    awssdk.Int32(8080),
						TargetType:              elbtypes.TargetTypeEnumInstance,
						HealthCheckProtocol:     elbtypes.ProtocolEnumHttp,
						HealthCheckPath:         awssdk.String("/health"),
						HealthyThresholdCount:   awssdk.Int32(3),
						UnhealthyThresholdCount: awssdk.Int32(2),
					},
					{TargetGroupName: awssdk.String("api-tg"), TargetGroupArn: awssdk.String(apiTG), TargetType: elbtypes.TargetTypeEnumIp},
				},
			}, nil
		},
		describeTargetHealthFunc: func(ctx context.Context, params *elbv2.DescribeTargetHealthInput, optFns ...func(*elbv2.Options)) (*elbv2.DescribeTargetHealthOutput, error) {
			if awssdk.ToString(params.TargetGroupArn) != webTG {
				return &elbv2.DescribeTargetHealthOutput{}, nil
			}
			return &elbv2.DescribeTargetHealthOutput{
				TargetHealthDescriptions: []elbtypes.TargetHealthDescription{
					{
						Target:       &elbtypes.TargetDescription{Id: awssdk.String("i-1"), Port: awssdk.Int32(8080)},
						TargetHealth: &elbtypes.TargetHealth{State: elbtypes.TargetHealthStateEnumHealthy},
					},
					{
						Target:       &elbtypes.TargetDescription{Id: awssdk.String("i-2"), Port: awssdk.Int32(8080)},
						TargetHealth: &elbtypes.TargetHealth{State: elbtypes.TargetHealthStateEnumUnhealthy},
					},
					{Target: &elbtypes.TargetDescription{Id: awssdk.String("i-3")}},
				},
			}, nil
		},
	}

	d, err := NewClient(mock, nil).GetLoadBalancer(context.Background(), "my-alb")
	require.NoError(t, err)

	assert.Equal(t, "active", d.State)
	assert.Equal(t, "dualstack", d.IPAddressType)
	assert.Equal(t, []string{"us-east-1a", "us-east-1b"}, d.AZs)
	assert.Equal(t, []string{"sg-1"}, d.SecurityGroups)

	require.Len(t, d.Listeners, 3)
	assert.Equal(t, "forward", d.Listeners[0].ActionType)
	assert.Equal(t, "forward → web-tg", d.Listeners[0].DefaultAction)
	assert.Equal(t, "forward → web-tg", d.Listeners[1].DefaultAction)
	assert.Equal(t, "redirect → example.com", d.Listeners[2].DefaultAction)

	require.Len(t, d.TargetGroups, 2)
	assert.Equal(t, "api-tg", d.TargetGroups[0].Name)
	web := d.TargetGroups[1]
	assert.Equal(t, "/health", web.HealthCheckPath)
	assert.Equal(t, 3, web.HealthyThreshold)
	assert.Equal(t, 2, web.UnhealthyThreshold)
	assert.Equal(t, 1, web.HealthyCount)
	assert.Equal(t, 1, web.UnhealthyCount)
	require.Len(t, web.Targets, 3)
	assert.Equal(t, Target{ID: "i-1", Port: 8080, State: "healthy"}, web.Targets[0])
	assert.Equal(t, "unknown", web.Targets[2].State)
}

func TestGetLoadBalancer_ByARN(t *testing.T) {
	mock := &mockELBAPI{
		describeLoadBalancersFunc: func(ctx context.Context, params *elbv2.DescribeLoadBalancersInput, optFns ...func(*elbv2.Options)) (*elbv2.DescribeLoadBalancersOutput, error) {
			assert.Equal(t, []string{albARN}, params.LoadBalancerArns)
			assert.Empty(t, params.Names)
			return &elbv2.DescribeLoadBalancersOutput{
				LoadBalancers: []elbtypes.LoadBalancer{{LoadBalancerArn: awssdk.String(albARN)}},
			}, nil
		},
		describeListenersFunc: func(ctx context.Context, params *elbv2.DescribeListenersInput, optFns ...func(*elbv2.Options)) (*elbv2.DescribeListenersOutput, error) {
			return &elbv2.DescribeListenersOutput{}, nil
		},
	}

	d, err := NewClient(mock, nil).GetLoadBalancer(context.Background(), albARN)
	require.NoError(t, err)
	assert.Empty(t, d.Listeners)
	assert.Empty(t, d.TargetGroups)
}

func TestGetLoadBalancer_NotFound(t *testing.T) {
	mock := &mockELBAPI{
		describeLoadBalancersFunc: func(ctx context.Context, params *elbv2.DescribeLoadBalancersInput, optFns ...func(*elbv2.Options)) (*elbv2.DescribeLoadBalancersOutput, error) {
			return nil, &elbtypes.LoadBalancerNotFoundException{Message: awssdk.String("nope")}
		},
	}

	_, err := NewClient(mock, nil).GetLoadBalancer(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFormatAction(t *testing.T) {
	tests := []struct {
		name    string
		actions []elbtypes.Action
		want    string
	}{
		{"empty", nil, "-"},
		{"fixed response", []elbtypes.Action{{
			Type:                elbtypes.ActionTypeEnumFixedResponse,
			FixedResponseConfig: &elbtypes.FixedResponseActionConfig{StatusCode: awssdk.String("404")},
		}}, "fixed-response 404"},
		{"forward without groups", []elbtypes.Action{{Type: elbtypes.ActionTypeEnumForward}}, "forward"},
		{"other", []elbtypes.Action{{Type: elbtypes.ActionTypeEnumAuthenticateOidc}}, "authenticate-oidc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatAction(tt.actions))
		})
	}
}
