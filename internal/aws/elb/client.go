package elb

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	elbv2 "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	elbtypes "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2/types"
	"go.uber.org/zap"
)

type ELBAPI interface {
	DescribeLoadBalancers(ctx context.Context, params *elbv2.DescribeLoadBalancersInput, optFns ...func(*elbv2.Options)) (*elbv2.DescribeLoadBalancersOutput, error)
	DescribeListeners(ctx context.Context, params *elbv2.DescribeListenersInput, optFns ...func(*elbv2.Options)) (*elbv2.DescribeListenersOutput, error)
	DescribeTargetGroups(ctx context.Context, params *elbv2.DescribeTargetGroupsInput, optFns ...func(*elbv2.Options)) (*elbv2.DescribeTargetGroupsOutput, error)
	DescribeTargetHealth(ctx context.Context, params *elbv2.DescribeTargetHealthInput, optFns ...func(*elbv2.Options)) (*elbv2.DescribeTargetHealthOutput, error)
}

var ErrNotFound = errors.New("load balancer not found")

type Client struct {
	api ELBAPI
	log *zap.Logger
}

func NewClient(api ELBAPI, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{api: api, log: log}
}

// ListLoadBalancers lists load balancers, limited to vpcID when it is not
// empty. The API has no VPC filter so the match happens client side.
func (c *Client) ListLoadBalancers(ctx context.Context, vpcID string) ([]LoadBalancer, error) {
	var lbs []LoadBalancer
	var marker *string

	for {
		out, err := c.api.DescribeLoadBalancers(ctx, &elbv2.DescribeLoadBalancersInput{
			Marker: marker,
		})
		if err != nil {
			return nil, fmt.Errorf("DescribeLoadBalancers: %w", err)
		}

		for _, lb := range out.LoadBalancers {
			if vpcID != "" && aws.ToString(lb.VpcId) != vpcID {
				continue
			}
			lbs = append(lbs, loadBalancer(lb))
		}

		if out.NextMarker == nil {
			break
		}
		marker = out.NextMarker
	}
	return lbs, nil
}

// GetLoadBalancer looks a load balancer up by name, or by ARN when the
// argument starts with "arn:".
func (c *Client) GetLoadBalancer(ctx context.Context, nameOrARN string) (*LoadBalancerDetail, error) {
	in := &elbv2.DescribeLoadBalancersInput{}
	if strings.HasPrefix(nameOrARN, "arn:") {
		in.LoadBalancerArns = []string{nameOrARN}
	} else {
		in.Names = []string{nameOrARN}
	}
	out, err := c.api.DescribeLoadBalancers(ctx, in)
	var nf *elbtypes.LoadBalancerNotFoundException
	if errors.As(err, &nf) || err == nil && len(out.LoadBalancers) == 0 {
		return nil, fmt.Errorf("%s: %w", nameOrARN, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("DescribeLoadBalancers: %w", err)
	}

	d := &LoadBalancerDetail{LoadBalancer: loadBalancer(out.LoadBalancers[0])}
	var tgARNs []string
	d.Listeners, tgARNs, err = c.listListeners(ctx, d.ARN)
	if err != nil {
		return nil, err
	}
	d.TargetGroups, err = c.targetGroups(ctx, tgARNs)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// listListeners also returns the deduplicated, sorted target group ARNs the
// default actions forward to.
func (c *Client) listListeners(ctx context.Context, lbARN string) ([]Listener, []string, error) {
	var listeners []Listener
	seen := map[string]bool{}
	var tgARNs []string
	var marker *string

	for {
		out, err := c.api.DescribeListeners(ctx, &elbv2.DescribeListenersInput{
			LoadBalancerArn: aws.String(lbARN),
			Marker:          marker,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("DescribeListeners: %w", err)
		}

		for _, l := range out.Listeners {
			item := Listener{
				ARN:           aws.ToString(l.ListenerArn),
				Port:          int(aws.ToInt32(l.Port)),
				Protocol:      string(l.Protocol),
				DefaultAction: formatAction(l.DefaultActions),
			}
			if len(l.DefaultActions) > 0 {
				item.ActionType = string(l.DefaultActions[0].Type)
			}
			listeners = append(listeners, item)

			for _, arn := range forwardTargets(l.DefaultActions) {
				if !seen[arn] {
					seen[arn] = true
					tgARNs = append(tgARNs, arn)
				}
			}
		}

		if out.NextMarker == nil {
			break
		}
		marker = out.NextMarker
	}
	slices.Sort(tgARNs)
	return listeners, tgARNs, nil
}

func (c *Client) targetGroups(ctx context.Context, arns []string) ([]TargetGroup, error) {
	if len(arns) == 0 {
		return nil, nil
	}
	out, err := c.api.DescribeTargetGroups(ctx, &elbv2.DescribeTargetGroupsInput{
		TargetGroupArns: arns,
	})
	if err != nil {
		return nil, fmt.Errorf("DescribeTargetGroups: %w", err)
	}

	byARN := make(map[string]elbtypes.TargetGroup, len(out.TargetGroups))
	for _, tg := range out.TargetGroups {
		byARN[aws.ToString(tg.TargetGroupArn)] = tg
	}
	tgs := make([]TargetGroup, 0, len(arns))
	for _, arn := range arns {
		tg, ok := byARN[arn]
		if !ok {
			c.log.Warn("target group vanished", zap.String("arn", arn))
			continue
		}
		item, err := c.buildTargetGroup(ctx, tg)
		if err != nil {
			return nil, err
		}
		tgs = append(tgs, item)
	}
	return tgs, nil
}

func (c *Client) buildTargetGroup(ctx context.Context, tg elbtypes.TargetGroup) (TargetGroup, error) {
	item := TargetGroup{
		Name:                aws.ToString(tg.TargetGroupName),
		ARN:                 aws.ToString(tg.TargetGroupArn),
		Protocol:            string(tg.Protocol),
		Port:                int(aws.ToInt32(tg.Port)),
		TargetType:          string(tg.TargetType),
		HealthCheckProtocol: string(tg.HealthCheckProtocol),
		HealthCheckPath:     aws.ToString(tg.HealthCheckPath),
		HealthyThreshold:    int(aws.ToInt32(tg.HealthyThresholdCount)),
		UnhealthyThreshold:  int(aws.ToInt32(tg.UnhealthyThresholdCount)),
	}

	healthOut, err := c.api.DescribeTargetHealth(ctx, &elbv2.DescribeTargetHealthInput{
		TargetGroupArn: tg.TargetGroupArn,
	})
	if err != nil {
		return TargetGroup{}, fmt.Errorf("DescribeTargetHealth for %s: %w", item.ARN, err)
	}

	for _, th := range healthOut.TargetHealthDescriptions {
		t := Target{State: "unknown"}
		if th.Target != nil {
			t.ID = aws.ToString(th.Target.Id)
			t.Port = int(aws.ToInt32(th.Target.Port))
		}
		if th.TargetHealth != nil {
			t.State = string(th.TargetHealth.State)
			switch th.TargetHealth.State {
			case elbtypes.TargetHealthStateEnumHealthy:
				item.HealthyCount++
			case elbtypes.TargetHealthStateEnumUnhealthy:
				item.UnhealthyCount++
			}
		}
		item.Targets = append(item.Targets, t)
	}
	return item, nil
}

func loadBalancer(lb elbtypes.LoadBalancer) LoadBalancer {
	item := LoadBalancer{
		Name:           aws.ToString(lb.LoadBalancerName),
		ARN:            aws.ToString(lb.LoadBalancerArn),
		Type:           string(lb.Type),
		State:          "unknown",
		Scheme:         string(lb.Scheme),
		DNSName:        aws.ToString(lb.DNSName),
		VPCID:          aws.ToString(lb.VpcId),
		IPAddressType:  string(lb.IpAddressType),
		SecurityGroups: lb.SecurityGroups,
	}
	if lb.State != nil && lb.State.Code != "" {
		item.State = string(lb.State.Code)
	}
	if item.IPAddressType == "" {
		item.IPAddressType = "ipv4"
	}
	if lb.CreatedTime != nil {
		item.CreatedAt = *lb.CreatedTime
	}
	for _, az := range lb.AvailabilityZones {
		item.AZs = append(item.AZs, aws.ToString(az.ZoneName))
	}
	return item
}

func forwardTargets(actions []elbtypes.Action) []string {
	var arns []string
	for _, a := range actions {
		if arn := aws.ToString(a.TargetGroupArn); arn != "" {
			arns = append(arns, arn)
		}
		if a.ForwardConfig != nil {
			for _, tg := range a.ForwardConfig.TargetGroups {
				if arn := aws.ToString(tg.TargetGroupArn); arn != "" {
					arns = append(arns, arn)
				}
			}
		}
	}
	return arns
}

// targetGroupName pulls the name out of
// arn:...:targetgroup/<name>/<id>.
func targetGroupName(arn string) string {
	parts := strings.Split(arn, "/")
	if len(parts) < 2 {
		return arn
	}
	return parts[len(parts)-2]
}

func formatAction(actions []elbtypes.Action) string {
	if len(actions) == 0 {
		return "-"
	}
	a := actions[0]
	switch a.Type {
	case elbtypes.ActionTypeEnumForward:
		if arns := forwardTargets(actions[:1]); len(arns) > 0 {
			return "forward → " + targetGroupName(arns[0])
		}
		return "forward"
	case elbtypes.ActionTypeEnumRedirect:
		if a.RedirectConfig != nil {
			return "redirect → " + aws.ToString(a.RedirectConfig.Host)
		}
		return "redirect"
	case elbtypes.ActionTypeEnumFixedResponse:
		if a.FixedResponseConfig != nil {
			return "fixed-response " + aws.ToString(a.FixedResponseConfig.StatusCode)
		}
		return "fixed-response"
	default:
		return string(a.Type)
	}
}
