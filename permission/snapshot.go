package permission

import (
	"context"
	"sync"
	"time"
)

// Role is a named role assigned to a user.
type Role struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Permission is a permission granted through one of the user's roles.
type Permission struct {
	Code        string `json:"code"`
	Description string `json:"description,omitempty"`
}

// Snapshot is the resolved authorization state of one user.
type Snapshot struct {
	Roles       []Role
	Permissions []Permission
	ExpiresAt   time.Time
}

// RoleNames returns the role names in source order.
func (s Snapshot) RoleNames() []string {
	out := make([]string, 0, len(s.Roles))
	for _, r := range s.Roles {
		out = append(out, r.Name)
	}
	return out
}

// PermissionCodes returns the permission codes in source order.
func (s Snapshot) PermissionCodes() []string {
	out := make([]string, 0, len(s.Permissions))
	for _, p := range s.Permissions {
		out = append(out, p.Code)
	}
	return out
}

// Source is the source of truth for user roles and permissions.
type Source interface {
	GetUserRolesAndPermissions(ctx context.Context, userID string) (Snapshot, error)
}

// StaticSource is an in-memory [Source]. Unknown users resolve to an empty
// snapshot.
type StaticSource struct {
	mu    sync.RWMutex
	users map[string]Snapshot
}

// NewStaticSource returns an empty StaticSource.
func NewStaticSource() *StaticSource {
	return &StaticSource{users: make(map[string]Snapshot)}
}

// Assign replaces the roles and permissions of userID.
func (s *StaticSource) Assign(userID string, roles []Role, perms []Permission) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[userID] = Snapshot{
		Roles:       append([]Role(nil), roles...),
		Permissions: append([]Permission(nil), perms...),
	}
}

// GetUserRolesAndPermissions implements [Source].
func (s *StaticSource) GetUserRolesAndPermissions(ctx context.Context, userID string) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := s.users[userID]
	return Snapshot{
		Roles:       append([]Role(nil), snap.Roles...),
		Permissions: append([]Permission(nil), snap.Permissions...),
	}, nil
}
