package report

import (
	"fmt"
	"strings"

	"tasnim.dev/aws-netdoc/internal/aws/ec2"
	"tasnim.dev/aws-netdoc/internal/aws/ecr"
	"tasnim.dev/aws-netdoc/internal/aws/elb"
	"tasnim.dev/aws-netdoc/internal/aws/vpc"
)

func RenderInstance(d *ec2.InstanceDetail, lang Language) string {
	s := For(lang)
	w := &writer{}

	w.line("## %s (%s)", s.EC2Instance, vpc.DisplayName(d.Name, d.InstanceID))
	w.blank()
	w.row(s.Item, s.Value)
	w.rule(2)
	w.row(s.Name, orDash(d.Name))
	w.row(s.State, orDash(d.State))
	for _, tag := range d.Tags {
		w.row(s.Tag+"-"+tag.Key, tag.Value)
	}
	w.row(s.AMI, orDash(d.ImageID))
	w.row(s.InstanceType, orDash(d.Type))
	w.row(s.Platform, d.Platform)
	w.row(s.Architecture, d.Architecture)
	w.row(s.KeyPair, orDash(d.KeyName))
	w.row("VPC ID", orDash(d.VPCID))
	w.row(s.Subnet, orDash(d.SubnetID))
	w.row(s.AZ, orDash(d.AZ))
	w.row(s.PrivateIP, orDash(d.PrivateIP))
	if d.PublicIP != "" {
		w.row(s.PublicIP, d.PublicIP)
	}
	groups := make([]string, 0, len(d.SecurityGroups))
	for _, g := range d.SecurityGroups {
		groups = append(groups, g.GroupName+" ("+g.GroupID+")")
	}
	w.row(s.SecurityGroups, orDash(strings.Join(groups, ", ")))
	w.row(s.EBSOptimized, onOff(s, d.EBSOptimized))
	w.row(s.Monitoring, onOff(s, d.Monitoring))
	w.row(s.IAMRole, orDash(d.IAMRole))
	launch := "-"
	if !d.LaunchTime.IsZero() {
		launch = d.LaunchTime.UTC().Format("2006-01-02 15:04:05 UTC")
	}
	w.row(s.LaunchTime, launch)

	if len(d.Volumes) > 0 {
		w.section(3, s.Storage)
		w.row(s.Device, s.VolumeID, s.SizeGB, s.Type, "IOPS", s.Encrypted, s.DeleteOnTermination)
		w.rule(7)
		for _, v := range d.Volumes {
			iops := "-"
			if v.IOPS > 0 {
				iops = fmt.Sprint(v.IOPS)
			}
			w.row(orDash(v.Device), v.VolumeID, fmt.Sprint(v.SizeGB), v.VolumeType, iops, check(v.Encrypted), check(v.DeleteOnTermination))
		}
	}

	if d.UserData != "" {
		w.section(3, s.UserData)
		w.blank()
		w.line("```bash")
		w.line("%s", d.UserData)
		w.line("```")
	}
	return w.b.String()
}

func RenderSecurityGroup(sg *ec2.SecurityGroup, lang Language) string {
	s := For(lang)
	w := &writer{}

	w.line("## %s (%s)", s.SecurityGroup, vpc.DisplayName(sg.Name, sg.GroupID))
	w.blank()
	w.row(s.Item, s.Value)
	w.rule(2)
	w.row(s.Name, orDash(sg.GroupName))
	w.row(s.Description, orDash(sg.Description))
	w.row("VPC ID", orDash(sg.VPCID))

	rules := func(title, peer string, rs []ec2.SecurityRule) {
		if len(rs) == 0 {
			return
		}
		w.section(3, title)
		w.row(s.Protocol, s.PortRange, peer, s.Description)
		w.rule(4)
		for _, r := range rs {
			w.row(r.Protocol, r.PortRange, r.Peer, r.Description)
		}
	}
	rules(s.InboundRules, s.Source, sg.Inbound)
	rules(s.OutboundRules, s.Destination, sg.Outbound)
	return w.b.String()
}

func RenderLoadBalancer(d *elb.LoadBalancerDetail, lang Language) string {
	s := For(lang)
	w := &writer{}

	title := d.Name
	if title == "" {
		title = d.ARN
	}
	w.line("## %s (%s)", s.LoadBalancer, title)
	w.blank()
	w.row(s.Item, s.Value)
	w.rule(2)
	w.row(s.Name, orDash(d.Name))
	w.row(s.State, d.State)
	w.row(s.DNSName, orDash(d.DNSName))
	w.row(s.Type, orDash(d.Type))
	w.row(s.Scheme, orDash(d.Scheme))
	w.row(s.IPAddressType, d.IPAddressType)
	w.row("VPC ID", orDash(d.VPCID))
	w.row(s.AZ, orDash(strings.Join(d.AZs, ", ")))
	w.row(s.SecurityGroups, orDash(strings.Join(d.SecurityGroups, ", ")))

	if len(d.Listeners) > 0 {
		w.section(3, s.Listeners)
		w.row(s.Port, s.Protocol, s.DefaultAction)
		w.rule(3)
		for _, l := range d.Listeners {
			w.row(fmt.Sprint(l.Port), l.Protocol, l.DefaultAction)
		}
	}

	if len(d.TargetGroups) > 0 {
		w.section(3, s.TargetGroups)
		for _, tg := range d.TargetGroups {
			w.section(4, tg.Name)
			w.row(s.Item, s.Value)
			w.rule(2)
			w.row(s.Protocol, orDash(tg.Protocol))
			w.row(s.Port, fmt.Sprint(tg.Port))
			w.row(s.TargetType, orDash(tg.TargetType))
			w.row(s.HealthCheck, orDash(strings.TrimSpace(tg.HealthCheckProtocol+" "+tg.HealthCheckPath)))
			w.row(s.Thresholds, fmt.Sprintf("%d/%d", tg.HealthyThreshold, tg.UnhealthyThreshold))
			if len(tg.Targets) > 0 {
				w.blank()
				w.row(s.TargetID, s.Port, s.State)
				w.rule(3)
				for _, t := range tg.Targets {
					w.row(t.ID, fmt.Sprint(t.Port), t.State)
				}
			}
		}
	}
	return w.b.String()
}

func RenderRepository(d *ecr.RepositoryDetail, lang Language) string {
	s := For(lang)
	w := &writer{}

	mutability := s.Mutable
	if d.TagMutability == "IMMUTABLE" {
		mutability = s.Immutable
	}
	created := "-"
	if !d.CreatedAt.IsZero() {
		created = d.CreatedAt.UTC().Format("2006-01-02")
	}

	w.line("## %s (%s)", s.ECRRepository, d.Name)
	w.blank()
	w.row(s.Item, s.Value)
	w.rule(2)
	w.row(s.Name, d.Name)
	w.row("URI", orDash(d.URI))
	w.row(s.TagMutability, mutability)
	w.row(s.Encryption, d.Encryption())
	w.row(s.ImageCount, fmt.Sprint(d.ImageCount))
	w.row(s.CreatedAt, created)

	if len(d.Images) > 0 {
		w.section(3, s.Images)
		w.row(s.Tag, s.SizeMB, s.PushedAt, s.ScanStatus)
		w.line("|:---|---:|:---|:---|")
		for _, img := range d.Images {
			pushed := "-"
			if !img.PushedAt.IsZero() {
				pushed = img.PushedAt.UTC().Format("2006-01-02 15:04")
			}
			w.row(img.Tag, fmt.Sprintf("%.2f", img.SizeMB), pushed, img.ScanStatus)
		}
	}
	return w.b.String()
}

func onOff(s Strings, v bool) string {
	if v {
		return s.Enabled
	}
	return s.Disabled
}

func check(v bool) string {
	if v {
		return "✓"
	}
	return "-"
}
