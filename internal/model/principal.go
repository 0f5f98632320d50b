package model

import "github.com/google/uuid"

type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleDispatcher Role = "DISPATCHER"
	RoleTechnician Role = "TECHNICIAN"
)

// Principal is the authenticated session identity extracted from the access
// token on every request. It is passed explicitly to every service call that
// needs it; nothing about the session lives in package state.
type Principal struct {
	UserID   uuid.UUID
	Role     Role
	FullName string
}

func (p Principal) IsAdmin() bool      { return p.Role == RoleAdmin }
func (p Principal) IsDispatcher() bool { return p.Role == RoleDispatcher }
func (p Principal) IsTechnician() bool { return p.Role == RoleTechnician }

// CanManage reports whether the principal may create or mutate records.
// Technicians have narrower, per-resource allowances checked in the services.
func (p Principal) CanManage() bool {
	return p.Role == RoleAdmin || p.Role == RoleDispatcher
}
