// Package token issues and parses bearer credentials.
package token

import (
	"encoding/json"

	"github.com/golang-jwt/jwt/v5"
)

// Roles is a fixed set of roles encoded as bits. It travels as a JSON array of names.
type Roles uint8

const (
	// RoleUser is the only role issued at login.
	RoleUser Roles = 1 << iota
)

var roleNames = []struct {
	role Roles
	name string
}{
	{RoleUser, "USER"},
}

// Has reports whether all roles in r are present.
func (rs Roles) Has(r Roles) bool { return r != 0 && rs&r == r }

// Names lists the role names in a stable order.
func (rs Roles) Names() []string {
	out := make([]string, 0, len(roleNames))
	for _, rn := range roleNames {
		if rs&rn.role != 0 {
			out = append(out, rn.name)
		}
	}
	return out
}

// MarshalJSON encodes the set as ["USER", ...].
func (rs Roles) MarshalJSON() ([]byte, error) { return json.Marshal(rs.Names()) }

// UnmarshalJSON decodes a list of names; unknown names are ignored.
func (rs *Roles) UnmarshalJSON(b []byte) error {
	var names []string
	if err := json.Unmarshal(b, &names); err != nil {
		return err
	}
	var out Roles
	for _, n := range names {
		for _, rn := range roleNames {
			if rn.name == n {
				out |= rn.role
			}
		}
	}
	*rs = out
	return nil
}

// Profile is the user-facing part of an access token.
type Profile struct {
	Email        string `json:"email,omitempty"`
	CustomerCode string `json:"customerCode,omitempty"`
	Roles        Roles  `json:"roles"`
}

// Claims is the full claim set of an access token; Subject carries the user id.
type Claims struct {
	Profile
	jwt.RegisteredClaims
}
