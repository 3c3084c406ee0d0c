package models

import (
	"encoding/json"
	"fmt"
)

// Permission is a total order: every level implies the levels below it,
// so a grantee holding Share also passes Delete, Write and Read checks.
// The ordering is load-bearing for existing comparisons; do not reorder.
type Permission int

const (
	PermissionRead Permission = iota
	PermissionWrite
	PermissionDelete
	PermissionShare
	PermissionFullControl
)

var permissionNames = map[Permission]string{
	PermissionRead:        "read",
	PermissionWrite:       "write",
	PermissionDelete:      "delete",
	PermissionShare:       "share",
	PermissionFullControl: "full_control",
}

// Satisfies reports whether a grant at level p authorizes an action that
// requires the given level.
func (p Permission) Satisfies(required Permission) bool {
	return p >= required
}

func (p Permission) String() string {
	if name, ok := permissionNames[p]; ok {
		return name
	}
	return fmt.Sprintf("permission(%d)", int(p))
}

func ParsePermission(s string) (Permission, error) {
	for p, name := range permissionNames {
		if name == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown permission %q", s)
}

func (p Permission) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *Permission) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParsePermission(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
