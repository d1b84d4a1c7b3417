package registration

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
//
// The push_device_registrations table carries a unique index on
// (activation_id, push_token); the reconciliation service relies on it as
// the cross-request backstop against duplicate rows.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL registration repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const registrationColumns = `id, app_id, push_token, platform, activation_id, user_id, is_active, last_registered_at`

// FindByActivationAndToken retrieves registrations matching both the
// activation ID and the push token.
func (r *PostgresRepository) FindByActivationAndToken(ctx context.Context, activationID, token string) ([]*Registration, error) {
	query := `
		SELECT ` + registrationColumns + `
		FROM push_device_registrations
		WHERE activation_id = $1 AND push_token = $2
	`

	return r.queryRegistrations(ctx, query, activationID, token)
}

// FindByActivation retrieves registrations bound to the activation ID.
func (r *PostgresRepository) FindByActivation(ctx context.Context, activationID string) ([]*Registration, error) {
	query := `
		SELECT ` + registrationColumns + `
		FROM push_device_registrations
		WHERE activation_id = $1
	`

	return r.queryRegistrations(ctx, query, activationID)
}

// FindByAppAndToken retrieves registrations matching the application ID and
// push token.
func (r *PostgresRepository) FindByAppAndToken(ctx context.Context, appID, token string) ([]*Registration, error) {
	query := `
		SELECT ` + registrationColumns + `
		FROM push_device_registrations
		WHERE app_id = $1 AND push_token = $2
	`

	return r.queryRegistrations(ctx, query, appID, token)
}

// queryRegistrations runs a lookup query and scans all matching rows.
func (r *PostgresRepository) queryRegistrations(ctx context.Context, query string, args ...interface{}) ([]*Registration, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var regs []*Registration
	for rows.Next() {
		var reg Registration
		err := rows.Scan(
			&reg.ID,
			&reg.AppID,
			&reg.PushToken,
			&reg.Platform,
			&reg.ActivationID,
			&reg.UserID,
			&reg.Active,
			&reg.LastRegisteredAt,
		)
		if err != nil {
			return nil, err
		}
		regs = append(regs, &reg)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return regs, nil
}

// Save inserts or updates a registration row by its ID.
func (r *PostgresRepository) Save(ctx context.Context, reg *Registration) error {
	query := `
		INSERT INTO push_device_registrations
			(` + registrationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			app_id = EXCLUDED.app_id,
			push_token = EXCLUDED.push_token,
			platform = EXCLUDED.platform,
			activation_id = EXCLUDED.activation_id,
			user_id = EXCLUDED.user_id,
			is_active = EXCLUDED.is_active,
			last_registered_at = EXCLUDED.last_registered_at
	`

	_, err := r.pool.Exec(ctx, query,
		reg.ID,
		reg.AppID,
		reg.PushToken,
		reg.Platform,
		reg.ActivationID,
		reg.UserID,
		reg.Active,
		reg.LastRegisteredAt,
	)
	return err
}

// Delete removes a single registration row.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM push_device_registrations WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

// DeleteByAppAndToken removes every row matching the application ID and push
// token.
func (r *PostgresRepository) DeleteByAppAndToken(ctx context.Context, appID, token string) (int, error) {
	query := `DELETE FROM push_device_registrations WHERE app_id = $1 AND push_token = $2`
	result, err := r.pool.Exec(ctx, query, appID, token)
	if err != nil {
		return 0, err
	}
	return int(result.RowsAffected()), nil
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
