package vpc

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestFindValue(t *testing.T) {
	tests := []struct {
		name   string
		blob   string
		key    string
		want   string
		wantOK bool
	}{
		{"spaced", `{"CidrBlock": "10.0.0.0/16"}`, "CidrBlock", "10.0.0.0/16", true},
		{"compact", `{"a":"x","b":"y"}`, "b", "y", true},
		{"first occurrence", `{"a":"1","a":"2"}`, "a", "1", true},
		{"missing", `{"a":"x"}`, "b", "", false},
		{"empty blob", ``, "a", "", false},
		{"truncated value", `{"a": "xy`, "a", "", false},
		{"skips non-string values", `{"State": {"Code": 16}, "State": "available"}`, "State", "available", true},
		{"key as value is not a key", `{"Key": "Name", "Value": "web"}`, "Name", "", false},
		{"escaped quote stays raw", `{"a": "say \"hi\""}`, "a", `say \"hi\"`, true},
		{"empty value", `{"a": ""}`, "a", "", true},
		{"colon only", `{"a":`, "a", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FindValue(tt.blob, tt.key)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFindBool(t *testing.T) {
	v, ok := FindBool(`{"Value": true}`, "Value")
	assert.True(t, ok)
	assert.True(t, v)

	v, ok = FindBool(`{"Value":false}`, "Value")
	assert.True(t, ok)
	assert.False(t, v)

	_, ok = FindBool(`{"Value": "true"}`, "Value")
	assert.False(t, ok)

	_, ok = FindBool(`{"Value": null}`, "Value")
	assert.False(t, ok)
}

func TestBalancedSpan(t *testing.T) {
	tests := []struct {
		name   string
		blob   string
		start  int
		mode   Delim
		want   int
		wantOK bool
	}{
		{"nested", `[[]]`, 0, Brackets, 4, true},
		{"offset", `x[a[b]c]y`, 1, Brackets, 8, true},
		{"braces", `{"a":{"b":1}} tail`, 0, Braces, 13, true},
		{"unterminated", `[[]`, 0, Brackets, 0, false},
		{"close inside string", `["]"]`, 0, Brackets, 5, true},
		{"leading closer ignored", `][]`, 0, Brackets, 3, true},
		{"start past end", `[]`, 5, Brackets, 0, false},
		{"negative start", `[]`, -1, Brackets, 0, false},
		{"empty", ``, 0, Braces, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := BalancedSpan(tt.blob, tt.start, tt.mode)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNextBlock_SiblingWalk(t *testing.T) {
	blob := `{"Tags": [1,2], "Routes": [3]}`

	start, end, ok := NextBlock(blob, 0, Brackets)
	assert.True(t, ok)
	assert.Equal(t, "[1,2]", blob[start:end])

	start, end, ok = NextBlock(blob, end, Brackets)
	assert.True(t, ok)
	assert.Equal(t, "[3]", blob[start:end])

	_, _, ok = NextBlock(blob, end, Brackets)
	assert.False(t, ok)
}

func TestNextSlot_Null(t *testing.T) {
	row := `["rtb-1", null , [1], [2]]`

	block, end, ok := nextSlot(row, len(`["rtb-1"`))
	assert.True(t, ok)
	assert.Empty(t, block)

	block, end, ok = nextSlot(row, end)
	assert.True(t, ok)
	assert.Equal(t, "[1]", block)

	block, _, ok = nextSlot(row, end)
	assert.True(t, ok)
	assert.Equal(t, "[2]", block)

	_, _, ok = nextSlot(row, len(row)+1)
	assert.False(t, ok)
}

func TestNextID(t *testing.T) {
	blob := `[["igw-1", [{"Key": "Name", "Value": "my-igw-2"}]], ["igw-3", []]]`

	id, end, ok := nextID(blob, "igw-", 0)
	assert.True(t, ok)
	assert.Equal(t, "igw-1", id)

	id, _, ok = nextID(blob, "igw-", end)
	assert.True(t, ok)
	assert.Equal(t, "igw-3", id, "an id prefix inside another value is not an id")
}

func TestScannersAreTotal(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("FindValue never panics", prop.ForAll(
		func(blob, key string) bool {
			FindValue(blob, key)
			FindBool(blob, key)
			return true
		},
		gen.AnyString(),
		gen.AlphaString(),
	))

	properties.Property("FindValue returns an embedded value", prop.ForAll(
		func(key, value string) bool {
			if key == "" {
				return true
			}
			got, ok := FindValue(`{"`+key+`": "`+value+`"}`, key)
			return ok && got == value
		},
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.Property("BalancedSpan ends inside the blob", prop.ForAll(
		func(blob string, start int) bool {
			end, ok := BalancedSpan(blob, start, Brackets)
			if !ok {
				return end == 0
			}
			return end > start && end <= len(blob) && blob[end-1] == ']'
		},
		gen.AnyString(),
		gen.IntRange(-2, 64),
	))

	properties.Property("nextSlot stays inside the row", prop.ForAll(
		func(row string, from int) bool {
			block, end, ok := nextSlot(row, from)
			if !ok {
				return block == ""
			}
			return end <= len(row) && len(block) <= len(row)
		},
		gen.AnyString(),
		gen.IntRange(-2, 64),
	))

	properties.Property("scan results are repeatable", prop.ForAll(
		func(blob string) bool {
			s1, e1, ok1 := NextBlock(blob, 0, Braces)
			s2, e2, ok2 := NextBlock(blob, 0, Braces)
			return s1 == s2 && e1 == e2 && ok1 == ok2
		},
		gen.AnyString(),
	))

	properties.Property("decoders never panic", prop.ForAll(
		func(blob string) bool {
			DecodeTags(blob)
			DecodeNameTag(blob)
			DecodeRoutes(blob)
			DecodeAssociations(blob, nil)
			ParseRouteTables(blob, nil)
			ParseInternetGateways(blob)
			ParseElasticIPs(blob)
			ParseVPCList(blob)
			ParseNetwork(blob, "vpc-x")
			return true
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
