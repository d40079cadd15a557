package sdk

import (
	"fmt"
	"strings"
)

// Role is the backend-assigned authorization label for an address.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAgent    Role = "agent"
	RoleAdmin    Role = "admin"
)

// Roles lists the closed set of roles the backend assigns.
var Roles = []Role{RoleCustomer, RoleAgent, RoleAdmin}

// ParseRole normalizes a backend role value. An empty value is the backend's
// documented default and resolves to RoleCustomer.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case "", RoleCustomer:
		return RoleCustomer, nil
	case RoleAgent:
		return RoleAgent, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

func (r Role) String() string {
	return string(r)
}
