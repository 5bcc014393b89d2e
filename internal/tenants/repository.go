package tenants

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("tenant not found")

type Tenant struct {
	ID        uuid.UUID
	Name      string
	Settings  Settings
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Tenant, error) {
	var (
		tenant Tenant
		raw    []byte
	)
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, settings, created_at, updated_at
		FROM tenants WHERE id = $1
	`, id).Scan(&tenant.ID, &tenant.Name, &raw, &tenant.CreatedAt, &tenant.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Tenant{}, ErrNotFound
		}
		return Tenant{}, err
	}

	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &tenant.Settings); err != nil {
			return Tenant{}, err
		}
	}
	return tenant, nil
}

func (r *Repository) UpdateSettings(ctx context.Context, id uuid.UUID, settings Settings) (Tenant, error) {
	raw, err := json.Marshal(settings)
	if err != nil {
		return Tenant{}, err
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE tenants SET settings = $2, updated_at = now() WHERE id = $1
	`, id, raw)
	if err != nil {
		return Tenant{}, err
	}
	if tag.RowsAffected() == 0 {
		return Tenant{}, ErrNotFound
	}

	return r.GetByID(ctx, id)
}
