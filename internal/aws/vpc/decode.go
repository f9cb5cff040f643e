package vpc

import "strings"

// DecodeNameTag returns the value of the Name tag in block. Both the
// {"Key": "Name", "Value": ...} and {"Value": ..., "Key": "Name"} shapes are
// accepted.
func DecodeNameTag(block string) string {
	from := 0
	for {
		key, keyAt, end, ok := findValueAt(block, "Key", from)
		if !ok {
			return ""
		}
		if key == "Name" {
			lo, hi := enclosingObject(block, keyAt, from)
			if v, ok := FindValue(block[lo:hi], "Value"); ok {
				return v
			}
		}
		from = end
	}
}

// DecodeTags pairs each Key with the Value of the same tag object. The first
// occurrence of a key wins.
func DecodeTags(block string) Tags {
	var tags Tags
	from := 0
	for {
		key, keyAt, end, ok := findValueAt(block, "Key", from)
		if !ok {
			return tags
		}
		lo, hi := enclosingObject(block, keyAt, from)
		if v, ok := FindValue(block[lo:hi], "Value"); ok {
			tags = tags.add(key, v)
		}
		from = end
	}
}

// tagBlock returns the text of the first "Tags" array in blob, or "" if none.
func tagBlock(blob string, from int) string {
	if from < 0 || from >= len(blob) {
		return ""
	}
	i := strings.Index(blob[from:], `"Tags"`)
	if i < 0 {
		return ""
	}
	start, end, ok := NextBlock(blob, from+i, Brackets)
	if !ok {
		return ""
	}
	return blob[start:end]
}

// DecodeRoutes returns one entry per route object carrying a
// DestinationCidrBlock. The target is GatewayId, then NatGatewayId, else
// local; a missing state reads as active.
func DecodeRoutes(block string) []RouteEntry {
	var routes []RouteEntry
	from := 0
	for {
		dest, keyAt, end, ok := findValueAt(block, "DestinationCidrBlock", from)
		if !ok {
			return routes
		}
		from = end
		if dest == "" {
			continue
		}
		lo, hi := enclosingObject(block, keyAt, 0)
		obj := block[lo:hi]

		target := "local"
		if gw, ok := FindValue(obj, "GatewayId"); ok && gw != "" {
			target = gw
		} else if nat, ok := FindValue(obj, "NatGatewayId"); ok && nat != "" {
			target = nat
		}
		state, ok := FindValue(obj, "State")
		if !ok || state == "" {
			state = "active"
		}
		routes = append(routes, RouteEntry{Destination: dest, Target: target, State: state})
	}
}

// DecodeAssociations returns one entry per association with a subnet. lookup
// resolves the subnet's name and may be nil.
func DecodeAssociations(block string, lookup func(id string) string) []RouteTableAssociation {
	var assocs []RouteTableAssociation
	from := 0
	for {
		id, _, end, ok := findValueAt(block, "SubnetId", from)
		if !ok {
			return assocs
		}
		from = end
		if id == "" {
			continue
		}
		a := RouteTableAssociation{SubnetID: id}
		if lookup != nil {
			a.SubnetName = lookup(id)
		}
		assocs = append(assocs, a)
	}
}
