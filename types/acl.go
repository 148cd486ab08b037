package types

import "fmt"

// Rights is the access-rights bitmask carried in the "acg" field of object
// info payloads and in each access control entry.
type Rights int

// Individual right bits.
const (
	RightBrowse  Rights = 0b00000001
	RightRead    Rights = 0b00000100
	RightWrite   Rights = 0b00001000
	RightDelete  Rights = 0b00010000
	RightControl Rights = 0b00100000
	RightUse     Rights = 0b01000000
	RightExecute Rights = 0b10000000

	RightInheritable Rights = 0b100000000000000000000000000000
)

// Aggregated right sets matching the server's named permission levels.
const (
	RightsNone    Rights = 0
	RightsConsume        = RightBrowse | RightRead | RightUse
	RightsView           = RightsConsume | RightExecute
	RightsModify         = RightsView | RightWrite | RightDelete
	RightsAll     Rights = 0b11111111
)

// Has reports whether every bit of r2 is present in r.
func (r Rights) Has(r2 Rights) bool {
	return r&r2 == r2
}

// validRightsMask covers every defined right bit; anything outside it is an
// out-of-range value from an incompatible server.
const validRightsMask = RightsAll | RightInheritable

// ParseRights validates a raw numeric acg value. Out-of-range bits are a
// hard error: they indicate client/server version skew that must not be
// silently swallowed.
func ParseRights(raw int) (Rights, error) {
	r := Rights(raw)
	if r&^validRightsMask != 0 {
		return 0, fmt.Errorf("unknown access rights bits in %#b", raw)
	}
	return r, nil
}

// TrusteeType distinguishes user and group trustees in an access control
// entry.
type TrusteeType int

// Trustee types.
const (
	TrusteeUser  TrusteeType = 1
	TrusteeGroup TrusteeType = 2
)

// ACE is a single access control entry of an object's ACL.
type ACE struct {
	// Deny marks the entry as a denial rather than a grant.
	Deny bool `json:"deny"`

	// TrusteeID identifies the user or group the entry applies to.
	TrusteeID string `json:"trusteeId"`

	// TrusteeName is the display name of the trustee.
	TrusteeName string `json:"trusteeName"`

	// TrusteeType says whether the trustee is a user or a group.
	TrusteeType TrusteeType `json:"trusteeType"`

	// Rights is the granted or denied rights bitmask.
	Rights Rights `json:"rights"`

	// Inheritable propagates the entry to children of a folder.
	Inheritable bool `json:"inheritable"`
}

// ACEFromMap builds an ACE from a decoded JSON payload. Keys are accepted in
// the snake_case form produced by the attribute layer's key normalization.
func ACEFromMap(source map[string]any) (ACE, error) {
	ace := ACE{}
	if v, ok := source["deny"].(bool); ok {
		ace.Deny = v
	}
	if v, ok := source["trustee_id"].(string); ok {
		ace.TrusteeID = v
	}
	if v, ok := source["trustee_name"].(string); ok {
		ace.TrusteeName = v
	}
	if v, ok := numeric(source["trustee_type"]); ok {
		ace.TrusteeType = TrusteeType(v)
	}
	if v, ok := numeric(source["rights"]); ok {
		rights, err := ParseRights(v)
		if err != nil {
			return ACE{}, err
		}
		ace.Rights = rights
	}
	if v, ok := source["inheritable"].(bool); ok {
		ace.Inheritable = v
	}
	return ace, nil
}

// numeric accepts the int and float64 forms a decoded JSON number can take.
func numeric(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
