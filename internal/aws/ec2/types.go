package ec2

import (
	"time"

	"tasnim.dev/aws-netdoc/internal/aws/vpc"
)

// Instance is one row of an instance listing.
type Instance struct {
	Name       string
	InstanceID string
	Type       string
	State      string
	PrivateIP  string
	PublicIP   string // "" when none
	SubnetID   string
	VPCID      string
}

// InstanceSummary holds aggregate instance counts.
type InstanceSummary struct {
	Total   int
	Running int
	Stopped int
}

// InstanceDetail is everything the instance report shows.
type InstanceDetail struct {
	Instance

	ImageID        string
	Platform       string
	Architecture   string
	KeyName        string
	AZ             string
	SecurityGroups []GroupRef
	EBSOptimized   bool
	Monitoring     bool
	IAMRole        string // instance profile name
	LaunchTime     time.Time
	Tags           vpc.Tags // without Name
	Volumes        []Volume
	UserData       string // decoded; "" when unset or unreadable
}

type GroupRef struct {
	GroupID   string
	GroupName string
}

// Volume is an attached EBS volume joined with its block device mapping.
type Volume struct {
	Device              string
	VolumeID            string
	SizeGB              int
	VolumeType          string
	IOPS                int // 0 when the type has no provisioned IOPS
	Encrypted           bool
	DeleteOnTermination bool
}

// SecurityGroup is a group with its rules flattened to one peer per rule.
type SecurityGroup struct {
	GroupID     string
	GroupName   string
	Name        string // Name tag, falling back to GroupName
	Description string
	VPCID       string
	Inbound     []SecurityRule
	Outbound    []SecurityRule
}

type SecurityRule struct {
	Protocol    string // All, TCP, UDP, ICMP or the upper-cased protocol
	PortRange   string // All, a single port or from-to
	Peer        string // CIDR, "sg: <id>" or "pl: <id>"
	Description string // "-" when unset
}
