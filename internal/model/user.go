package model

import (
	"strings"
	"time"
)

// Role is the closed set of member roles. Raw role strings from the
// store are normalized through ParseRole; nothing downstream compares
// role text directly.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// ParseRole normalizes a raw role cell ("Admin", " ADMIN ", "member")
// into a Role. Anything that is not recognizably admin is a member.
func ParseRole(s string) Role {
	if strings.EqualFold(strings.TrimSpace(s), string(RoleAdmin)) {
		return RoleAdmin
	}
	return RoleMember
}

func (r Role) IsAdmin() bool { return r == RoleAdmin }

// User is one family member's ledger row. Points are spendable; XP is
// lifetime-earned and drives level/title. Version is the row version
// used for compare-and-swap updates.
type User struct {
	Name       string     `json:"name"`
	Role       Role       `json:"role"`
	PINHash    string     `json:"-"`
	Points     float64    `json:"points"`
	XP         float64    `json:"xp"`
	Streak     int        `json:"streak"`
	LastActive *time.Time `json:"last_active,omitempty"`
	Version    int64      `json:"-"`
}
