package authz

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// A compact claim encodes one verified membership as <RoleCode><OrgID>, e.g.
// "A4" for admin of organization 4. The role code is a single character from
// a fixed alphabet and the organization id is its decimal form with no
// separator. The claim array has set semantics: order carries no meaning and
// a duplicate organization id is invalid.

// Sentinel errors for claim encoding/decoding.
var (
	ErrMalformedClaim    = errors.New("malformed claim")
	ErrDuplicateOrgClaim = errors.New("duplicate organization in claims")
	ErrUnverifiedClaim   = errors.New("unverified membership cannot be encoded")
)

// maxOrgIDDigits bounds the decimal width of an organization id inside a
// claim so decode cannot overflow int64.
const maxOrgIDDigits = 18

// OrgRole is one decoded membership: the organization and the role held in it.
type OrgRole struct {
	OrgID int64
	Role  Role
}

func roleCode(r Role) (byte, bool) {
	switch r {
	case RoleMember:
		return 'M', true
	case RoleModerator:
		return 'O', true
	case RoleAdmin:
		return 'A', true
	case RolePresident:
		return 'P', true
	default:
		return 0, false
	}
}

func roleFromCode(c byte) (Role, bool) {
	switch c {
	case 'M':
		return RoleMember, true
	case 'O':
		return RoleModerator, true
	case 'A':
		return RoleAdmin, true
	case 'P':
		return RolePresident, true
	default:
		return 0, false
	}
}

// EncodeMemberships encodes the given memberships as compact claim strings in
// input order. All inputs must already be verified memberships; org ids must
// be positive and unique. Returns an error rather than encoding a claim the
// decoder would reject.
func EncodeMemberships(memberships []OrgRole) ([]string, error) {
	seen := make(map[int64]struct{}, len(memberships))
	out := make([]string, 0, len(memberships))
	for _, m := range memberships {
		code, ok := roleCode(m.Role)
		if !ok {
			return nil, fmt.Errorf("%w: role %d", ErrUnknownRole, m.Role)
		}
		if m.OrgID <= 0 {
			return nil, fmt.Errorf("%w: organization id %d", ErrMalformedClaim, m.OrgID)
		}
		if _, dup := seen[m.OrgID]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateOrgClaim, m.OrgID)
		}
		seen[m.OrgID] = struct{}{}
		out = append(out, fmt.Sprintf("%c%d", code, m.OrgID))
	}
	return out, nil
}

// legacyClaim is the verbose JSON claim shape from before the compact
// encoding. Still accepted on decode for tokens issued by older releases.
type legacyClaim struct {
	Org  int64  `json:"org"`
	Role string `json:"role"`
}

// DecodeClaims decodes a claim array into an org id → role map. Entries
// starting with '{' are parsed as legacy JSON claims; everything else must be
// a compact claim. Decode is strict: an invalid role code, a non-numeric or
// oversized org id, or a duplicate org id fails the whole array. There is no
// partial result on error.
func DecodeClaims(claims []string) (map[int64]Role, error) {
	out := make(map[int64]Role, len(claims))
	for _, c := range claims {
		var (
			orgID int64
			role  Role
			err   error
		)
		if strings.HasPrefix(c, "{") {
			orgID, role, err = decodeLegacy(c)
		} else {
			orgID, role, err = decodeCompact(c)
		}
		if err != nil {
			return nil, err
		}
		if _, dup := out[orgID]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateOrgClaim, orgID)
		}
		out[orgID] = role
	}
	return out, nil
}

func decodeCompact(c string) (int64, Role, error) {
	if len(c) < 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedClaim, c)
	}
	role, ok := roleFromCode(c[0])
	if !ok {
		return 0, 0, fmt.Errorf("%w: role code in %q", ErrMalformedClaim, c)
	}
	digits := c[1:]
	if len(digits) > maxOrgIDDigits {
		return 0, 0, fmt.Errorf("%w: organization id too wide in %q", ErrMalformedClaim, c)
	}
	var orgID int64
	for i := 0; i < len(digits); i++ {
		d := digits[i]
		if d < '0' || d > '9' {
			return 0, 0, fmt.Errorf("%w: organization id in %q", ErrMalformedClaim, c)
		}
		orgID = orgID*10 + int64(d-'0')
	}
	if orgID <= 0 {
		return 0, 0, fmt.Errorf("%w: organization id in %q", ErrMalformedClaim, c)
	}
	return orgID, role, nil
}

func decodeLegacy(c string) (int64, Role, error) {
	var lc legacyClaim
	dec := json.NewDecoder(strings.NewReader(c))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&lc); err != nil {
		return 0, 0, fmt.Errorf("%w: legacy claim %q", ErrMalformedClaim, c)
	}
	if lc.Org <= 0 {
		return 0, 0, fmt.Errorf("%w: organization id in legacy claim %q", ErrMalformedClaim, c)
	}
	role, err := ParseRole(lc.Role)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: role in legacy claim %q", ErrMalformedClaim, c)
	}
	return lc.Org, role, nil
}
