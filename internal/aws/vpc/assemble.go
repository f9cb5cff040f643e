package vpc

import (
	"encoding/json"
	"strings"
)

// Each Parse function turns one response blob into entities. None of them
// return errors: an unusable blob yields an empty result and an unusable
// entry is skipped.

var vpcStates = []string{"available", "pending", "deleting", "deleted"}

// ParseNetwork decodes a describe-vpcs response for vpcID. ok is false when
// the blob carries nothing recognizable.
func ParseNetwork(blob, vpcID string) (*Network, bool) {
	cidr, hasCIDR := FindValue(blob, "CidrBlock")
	state, hasState := findState(blob, vpcStates)
	tags := DecodeTags(tagBlock(blob, 0))
	if !hasCIDR && !hasState && len(tags) == 0 {
		return nil, false
	}
	if !hasState {
		state = "unknown"
	}

	name, ok := tags.Get("Name")
	if !ok || name == "" {
		name = vpcID
	}
	return &Network{
		VPCID: vpcID,
		Name:  name,
		CIDR:  cidr,
		State: state,
		Tags:  tags,
	}, true
}

// findState returns the first "State" value that is one of known.
func findState(blob string, known []string) (string, bool) {
	from := 0
	for {
		v, _, end, ok := findValueAt(blob, "State", from)
		if !ok {
			return "", false
		}
		for _, k := range known {
			if v == k {
				return v, true
			}
		}
		from = end
	}
}

// ParseVPCList decodes Vpcs[*].[VpcId,Tags] rows.
func ParseVPCList(blob string) []VPCSummary {
	var vpcs []VPCSummary
	pos := 0
	for {
		id, end, ok := nextID(blob, "vpc-", pos)
		if !ok {
			return vpcs
		}
		limit := rowEnd(blob, end-len(id)-2)
		row := blob[:limit]
		pos = end
		v := VPCSummary{VPCID: id, Name: id}
		if block, stop, ok := nextSlot(row, pos); ok {
			if name := DecodeNameTag(block); name != "" {
				v.Name = name
			}
			pos = stop
		}
		if limit < len(blob) {
			pos = max(pos, limit)
		}
		vpcs = append(vpcs, v)
	}
}

// rowEnd returns the end of the [...] row opened just before the quoted
// identifier at idQuote, or len(blob) when the identifier does not open a row.
// Sibling blocks of a row are only searched for inside it.
func rowEnd(blob string, idQuote int) int {
	i := idQuote - 1
	for i >= 0 && (blob[i] == ' ' || blob[i] == '\n' || blob[i] == '\t' || blob[i] == '\r') {
		i--
	}
	if i >= 0 && blob[i] == '[' {
		if end, ok := BalancedSpan(blob, i, Brackets); ok {
			return end
		}
	}
	return len(blob)
}

type jsonTag struct {
	Key   string `json:"Key"`
	Value string `json:"Value"`
}

func tagsFromJSON(in []jsonTag) Tags {
	var tags Tags
	for _, t := range in {
		tags = tags.add(t.Key, t.Value)
	}
	return tags
}

type subnetResponse struct {
	Subnets []struct {
		SubnetID                string    `json:"SubnetId"`
		VpcID                   string    `json:"VpcId"`
		CidrBlock               string    `json:"CidrBlock"`
		AvailabilityZone        string    `json:"AvailabilityZone"`
		State                   string    `json:"State"`
		AvailableIPAddressCount int       `json:"AvailableIpAddressCount"`
		MapPublicIPOnLaunch     bool      `json:"MapPublicIpOnLaunch"`
		Tags                    []jsonTag `json:"Tags"`
	} `json:"Subnets"`
}

// ParseSubnets decodes a describe-subnets response and keeps only the
// subnets of vpcID.
func ParseSubnets(blob, vpcID string) []Subnet {
	var resp subnetResponse
	if err := json.Unmarshal([]byte(blob), &resp); err != nil {
		return nil
	}
	var subnets []Subnet
	for _, s := range resp.Subnets {
		if s.SubnetID == "" || s.VpcID != vpcID {
			continue
		}
		name, _ := tagsFromJSON(s.Tags).Get("Name")
		subnets = append(subnets, Subnet{
			SubnetID:     s.SubnetID,
			VPCID:        s.VpcID,
			Name:         name,
			CIDR:         s.CidrBlock,
			AZ:           s.AvailabilityZone,
			State:        s.State,
			AvailableIPs: s.AvailableIPAddressCount,
			MapPublicIP:  s.MapPublicIPOnLaunch,
		})
	}
	return subnets
}

// ParseInternetGateways walks [id, tags, attachments] rows.
func ParseInternetGateways(blob string) []InternetGateway {
	var igws []InternetGateway
	pos := 0
	for {
		id, end, ok := nextID(blob, "igw-", pos)
		if !ok {
			return igws
		}
		limit := rowEnd(blob, end-len(id)-2)
		row := blob[:limit]
		pos = end
		igw := InternetGateway{GatewayID: id, State: "detached"}

		if block, stop, ok := nextSlot(row, pos); ok {
			igw.Name = DecodeNameTag(block)
			pos = stop
			if block, stop, ok := nextSlot(row, pos); ok {
				if attached(block) {
					igw.State = "attached"
				}
				pos = stop
			}
		}
		if limit < len(blob) {
			pos = max(pos, limit)
		}
		igws = append(igws, igw)
	}
}

func attached(block string) bool {
	if strings.Contains(block, `"vpc-`) {
		return true
	}
	from := 0
	for {
		state, _, end, ok := findValueAt(block, "State", from)
		if !ok {
			return false
		}
		if state == "available" || state == "attached" {
			return true
		}
		from = end
	}
}

type natResponse struct {
	NatGateways []struct {
		NatGatewayID        string `json:"NatGatewayId"`
		SubnetID            string `json:"SubnetId"`
		State               string `json:"State"`
		ConnectivityType    string `json:"ConnectivityType"`
		AvailabilityMode    string `json:"AvailabilityMode"`
		AutoScalingIps      string `json:"AutoScalingIps"`
		AutoProvisionZones  string `json:"AutoProvisionZones"`
		NatGatewayAddresses []struct {
			AllocationID string `json:"AllocationId"`
			PublicIP     string `json:"PublicIp"`
		} `json:"NatGatewayAddresses"`
		Tags []jsonTag `json:"Tags"`
	} `json:"NatGateways"`
}

// ParseNATGateways decodes a describe-nat-gateways response. Deleted gateways
// are dropped.
func ParseNATGateways(blob string) []NATGateway {
	var resp natResponse
	if err := json.Unmarshal([]byte(blob), &resp); err != nil {
		return nil
	}
	var nats []NATGateway
	for _, n := range resp.NatGateways {
		if n.NatGatewayID == "" || n.State == "deleted" {
			continue
		}
		tags := tagsFromJSON(n.Tags)
		name, _ := tags.Get("Name")
		nat := NATGateway{
			GatewayID:        n.NatGatewayID,
			Name:             name,
			State:            n.State,
			ConnectivityType: n.ConnectivityType,
			AvailabilityMode: n.AvailabilityMode,
			Tags:             tags.Without("Name"),
		}
		if nat.ConnectivityType == "" {
			nat.ConnectivityType = ConnectivityPublic
		}
		if nat.AvailabilityMode == "" {
			nat.AvailabilityMode = AvailabilityZonal
		}

		if nat.Regional() {
			nat.AutoScalingIPs = n.AutoScalingIps
			nat.AutoProvisionZones = n.AutoProvisionZones
		} else {
			nat.SubnetID = n.SubnetID
			if nat.ConnectivityType == ConnectivityPublic && len(n.NatGatewayAddresses) > 0 {
				nat.PublicIP = n.NatGatewayAddresses[0].PublicIP
				nat.AllocationID = n.NatGatewayAddresses[0].AllocationID
			}
		}
		nats = append(nats, nat)
	}
	return nats
}

// ParseRouteTables walks [id, tags, routes, associations] rows in one pass.
// lookup resolves associated subnet names and may be nil.
func ParseRouteTables(blob string, lookup func(id string) string) []RouteTable {
	var tables []RouteTable
	pos := 0
	for {
		id, end, ok := nextID(blob, "rtb-", pos)
		if !ok {
			return tables
		}
		limit := rowEnd(blob, end-len(id)-2)
		row := blob[:limit]
		pos = end
		rt := RouteTable{RouteTableID: id}

		if block, stop, ok := nextSlot(row, pos); ok {
			rt.Name = DecodeNameTag(block)
			pos = stop
			if block, stop, ok := nextSlot(row, pos); ok {
				rt.Routes = DecodeRoutes(block)
				pos = stop
				if block, stop, ok := nextSlot(row, pos); ok {
					rt.Associations = DecodeAssociations(block, lookup)
					pos = stop
				}
			}
		}
		if limit < len(blob) {
			pos = max(pos, limit)
		}
		tables = append(tables, rt)
	}
}

// ParseElasticIPs walks address objects, anchoring each on its AllocationId.
func ParseElasticIPs(blob string) []ElasticIP {
	var eips []ElasticIP
	pos := 0
	for pos < len(blob) {
		i := strings.Index(blob[pos:], `"AllocationId"`)
		if i < 0 {
			break
		}
		anchor := pos + i
		open := strings.LastIndexByte(blob[:anchor], '{')
		if open < 0 {
			pos = anchor + 1
			continue
		}
		end, ok := BalancedSpan(blob, open, Braces)
		if !ok {
			break
		}
		if end <= anchor {
			pos = anchor + 1
			continue
		}
		obj := blob[open:end]
		pos = end

		publicIP, _ := FindValue(obj, "PublicIp")
		if publicIP == "" {
			continue
		}
		eip := ElasticIP{PublicIP: publicIP, Name: publicIP}
		eip.AllocationID, _ = FindValue(obj, "AllocationId")
		eip.InstanceID, _ = FindValue(obj, "InstanceId")
		eip.PrivateIP, _ = FindValue(obj, "PrivateIpAddress")
		if name := DecodeNameTag(tagBlock(obj, 0)); name != "" {
			eip.Name = name
		}
		eips = append(eips, eip)
	}
	return eips
}

// ParseVPCAttribute reads a describe-vpc-attribute response. Anything other
// than an explicit true reads as false.
func ParseVPCAttribute(blob, attribute string) bool {
	key := "EnableDnsSupport"
	if attribute == "enableDnsHostnames" {
		key = "EnableDnsHostnames"
	}
	i := strings.Index(blob, `"`+key+`"`)
	if i < 0 {
		return false
	}
	v, ok := FindBool(blob[i:], "Value")
	return ok && v
}
