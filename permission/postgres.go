package permission

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	rolesQuery = `
		SELECT r.id::text, r.name
		FROM user_roles ur
		JOIN roles r ON r.id = ur.role_id
		WHERE ur.user_id = $1
		ORDER BY r.name`

	permissionsQuery = `
		SELECT DISTINCT p.code, COALESCE(p.description, '')
		FROM user_roles ur
		JOIN role_permissions rp ON rp.role_id = ur.role_id
		JOIN permissions p ON p.code = rp.permission_code
		WHERE ur.user_id = $1
		ORDER BY p.code`
)

// PostgresSource implements [Source] over the user_roles, roles,
// role_permissions and permissions tables.
type PostgresSource struct {
	pool *pgxpool.Pool
}

// NewPostgresSource creates a Postgres-backed source.
func NewPostgresSource(pool *pgxpool.Pool) *PostgresSource {
	return &PostgresSource{pool: pool}
}

// GetUserRolesAndPermissions implements [Source].
func (s *PostgresSource) GetUserRolesAndPermissions(ctx context.Context, userID string) (Snapshot, error) {
	var snap Snapshot

	rows, err := s.pool.Query(ctx, rolesQuery, userID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("permission: query roles: %w", err)
	}
	for rows.Next() {
		var r Role
		if err := rows.Scan(&r.ID, &r.Name); err != nil {
			rows.Close()
			return Snapshot{}, fmt.Errorf("permission: scan role: %w", err)
		}
		snap.Roles = append(snap.Roles, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("permission: roles: %w", err)
	}

	rows, err = s.pool.Query(ctx, permissionsQuery, userID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("permission: query permissions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var p Permission
		if err := rows.Scan(&p.Code, &p.Description); err != nil {
			return Snapshot{}, fmt.Errorf("permission: scan permission: %w", err)
		}
		snap.Permissions = append(snap.Permissions, p)
	}
	if err := rows.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("permission: permissions: %w", err)
	}

	return snap, nil
}
