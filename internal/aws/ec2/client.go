package ec2

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsec2 "github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"go.uber.org/zap"

	"tasnim.dev/aws-netdoc/internal/aws/vpc"
)

type EC2API interface {
	DescribeInstances(ctx context.Context, params *awsec2.DescribeInstancesInput, optFns ...func(*awsec2.Options)) (*awsec2.DescribeInstancesOutput, error)
	DescribeVolumes(ctx context.Context, params *awsec2.DescribeVolumesInput, optFns ...func(*awsec2.Options)) (*awsec2.DescribeVolumesOutput, error)
	DescribeInstanceAttribute(ctx context.Context, params *awsec2.DescribeInstanceAttributeInput, optFns ...func(*awsec2.Options)) (*awsec2.DescribeInstanceAttributeOutput, error)
	DescribeSecurityGroups(ctx context.Context, params *awsec2.DescribeSecurityGroupsInput, optFns ...func(*awsec2.Options)) (*awsec2.DescribeSecurityGroupsOutput, error)
}

// ErrNotFound is returned when a looked-up resource does not exist.
var ErrNotFound = errors.New("not found")

type Client struct {
	api EC2API
	log *zap.Logger
}

func NewClient(api EC2API, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{api: api, log: log}
}

// ListInstances lists instances, limited to vpcID when it is not empty.
func (c *Client) ListInstances(ctx context.Context, vpcID string) ([]Instance, InstanceSummary, error) {
	var instances []Instance
	var summary InstanceSummary
	var nextToken *string

	for {
		out, err := c.api.DescribeInstances(ctx, &awsec2.DescribeInstancesInput{
			Filters:   vpcFilter(vpcID),
			NextToken: nextToken,
		})
		if err != nil {
			return nil, InstanceSummary{}, fmt.Errorf("DescribeInstances: %w", err)
		}

		for _, reservation := range out.Reservations {
			for _, inst := range reservation.Instances {
				instances = append(instances, instanceRow(inst))

				summary.Total++
				switch instanceState(inst) {
				case types.InstanceStateNameRunning:
					summary.Running++
				case types.InstanceStateNameStopped:
					summary.Stopped++
				}
			}
		}

		if out.NextToken == nil {
			break
		}
		nextToken = out.NextToken
	}

	return instances, summary, nil
}

// GetInstance describes one instance with its volumes and user data. Volume
// and user data lookups are best effort.
func (c *Client) GetInstance(ctx context.Context, instanceID string) (*InstanceDetail, error) {
	out, err := c.api.DescribeInstances(ctx, &awsec2.DescribeInstancesInput{
		InstanceIds: []string{instanceID},
	})
	if err != nil {
		return nil, fmt.Errorf("DescribeInstances: %w", err)
	}
	var inst *types.Instance
	for _, r := range out.Reservations {
		if len(r.Instances) > 0 {
			inst = &r.Instances[0]
			break
		}
	}
	if inst == nil {
		return nil, fmt.Errorf("instance %s: %w", instanceID, ErrNotFound)
	}

	d := &InstanceDetail{
		Instance:     instanceRow(*inst),
		ImageID:      aws.ToString(inst.ImageId),
		Platform:     platform(*inst),
		Architecture: string(inst.Architecture),
		KeyName:      aws.ToString(inst.KeyName),
		EBSOptimized: aws.ToBool(inst.EbsOptimized),
		Tags:         tagsOf(inst.Tags).Without("Name"),
	}
	if d.Architecture == "" {
		d.Architecture = "x86_64"
	}
	if inst.Placement != nil {
		d.AZ = aws.ToString(inst.Placement.AvailabilityZone)
	}
	if inst.Monitoring != nil {
		d.Monitoring = inst.Monitoring.State == types.MonitoringStateEnabled
	}
	if inst.IamInstanceProfile != nil {
		arn := aws.ToString(inst.IamInstanceProfile.Arn)
		d.IAMRole = arn[strings.LastIndexByte(arn, '/')+1:]
	}
	if inst.LaunchTime != nil {
		d.LaunchTime = *inst.LaunchTime
	}
	for _, g := range inst.SecurityGroups {
		d.SecurityGroups = append(d.SecurityGroups, GroupRef{
			GroupID:   aws.ToString(g.GroupId),
			GroupName: aws.ToString(g.GroupName),
		})
	}

	var volumeIDs []string
	deleteOnTermination := map[string]bool{}
	devices := map[string]string{}
	for _, m := range inst.BlockDeviceMappings {
		if m.Ebs == nil || m.Ebs.VolumeId == nil {
			continue
		}
		id := aws.ToString(m.Ebs.VolumeId)
		volumeIDs = append(volumeIDs, id)
		devices[id] = aws.ToString(m.DeviceName)
		deleteOnTermination[id] = aws.ToBool(m.Ebs.DeleteOnTermination)
	}
	volumes, err := c.GetInstanceVolumes(ctx, volumeIDs)
	if err != nil {
		c.log.Warn("describing volumes", zap.String("instance", instanceID), zap.Error(err))
	}
	for i := range volumes {
		volumes[i].Device = devices[volumes[i].VolumeID]
		volumes[i].DeleteOnTermination = deleteOnTermination[volumes[i].VolumeID]
	}
	d.Volumes = volumes

	d.UserData, err = c.userData(ctx, instanceID)
	if err != nil {
		c.log.Warn("reading user data", zap.String("instance", instanceID), zap.Error(err))
	}
	return d, nil
}

// GetInstanceVolumes describes the given volumes in request order.
func (c *Client) GetInstanceVolumes(ctx context.Context, volumeIDs []string) ([]Volume, error) {
	if len(volumeIDs) == 0 {
		return nil, nil
	}
	byID := map[string]Volume{}
	var nextToken *string
	for {
		out, err := c.api.DescribeVolumes(ctx, &awsec2.DescribeVolumesInput{
			VolumeIds: volumeIDs,
			NextToken: nextToken,
		})
		if err != nil {
			return nil, fmt.Errorf("DescribeVolumes: %w", err)
		}
		for _, v := range out.Volumes {
			id := aws.ToString(v.VolumeId)
			byID[id] = Volume{
				VolumeID:   id,
				SizeGB:     int(aws.ToInt32(v.Size)),
				VolumeType: string(v.VolumeType),
				IOPS:       int(aws.ToInt32(v.Iops)),
				Encrypted:  aws.ToBool(v.Encrypted),
			}
		}
		if out.NextToken == nil {
			break
		}
		nextToken = out.NextToken
	}

	volumes := make([]Volume, 0, len(byID))
	for _, id := range volumeIDs {
		if v, ok := byID[id]; ok {
			volumes = append(volumes, v)
		}
	}
	return volumes, nil
}

func (c *Client) userData(ctx context.Context, instanceID string) (string, error) {
	out, err := c.api.DescribeInstanceAttribute(ctx, &awsec2.DescribeInstanceAttributeInput{
		InstanceId: aws.String(instanceID),
		Attribute:  types.InstanceAttributeNameUserData,
	})
	if err != nil {
		return "", fmt.Errorf("DescribeInstanceAttribute: %w", err)
	}
	if out.UserData == nil || aws.ToString(out.UserData.Value) == "" {
		return "", nil
	}
	raw, err := base64.StdEncoding.DecodeString(aws.ToString(out.UserData.Value))
	if err != nil {
		return "", fmt.Errorf("decoding user data: %w", err)
	}
	return strings.TrimRight(string(raw), "\n"), nil
}

func instanceRow(inst types.Instance) Instance {
	name, _ := tagsOf(inst.Tags).Get("Name")
	return Instance{
		Name:       name,
		InstanceID: aws.ToString(inst.InstanceId),
		Type:       string(inst.InstanceType),
		State:      string(instanceState(inst)),
		PrivateIP:  aws.ToString(inst.PrivateIpAddress),
		PublicIP:   aws.ToString(inst.PublicIpAddress),
		SubnetID:   aws.ToString(inst.SubnetId),
		VPCID:      aws.ToString(inst.VpcId),
	}
}

func instanceState(inst types.Instance) types.InstanceStateName {
	if inst.State == nil {
		return ""
	}
	return inst.State.Name
}

// platform prefers the billing platform details and falls back to Linux for
// instances without a Platform value.
func platform(inst types.Instance) string {
	if p := aws.ToString(inst.PlatformDetails); p != "" {
		return p
	}
	if inst.Platform != "" {
		return string(inst.Platform)
	}
	return "Linux"
}

func tagsOf(in []types.Tag) vpc.Tags {
	var tags vpc.Tags
	for _, t := range in {
		key := aws.ToString(t.Key)
		if _, dup := tags.Get(key); dup {
			continue
		}
		tags = append(tags, vpc.Tag{Key: key, Value: aws.ToString(t.Value)})
	}
	return tags
}

func vpcFilter(vpcID string) []types.Filter {
	if vpcID == "" {
		return nil
	}
	return []types.Filter{{Name: aws.String("vpc-id"), Values: []string{vpcID}}}
}
