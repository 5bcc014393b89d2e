package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"leadzap_backend/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("lead not found")

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type Lead struct {
	ID             uuid.UUID
	TenantID       uuid.UUID
	Name           string
	Phone          string
	Email          *string
	Source         domain.Source
	InseridoManual bool
	Tags           []string
	Status         domain.Status
	Score          *int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type CreateLeadParams struct {
	TenantID       uuid.UUID
	Name           string
	Phone          string
	Email          *string
	Source         domain.Source
	InseridoManual bool
	Tags           []string
}

const leadColumns = `id, tenant_id, name, phone, email, source, inserido_manual, tags, status, score, created_at, updated_at`

func scanLead(row pgx.Row) (Lead, error) {
	var lead Lead
	err := row.Scan(&lead.ID, &lead.TenantID, &lead.Name, &lead.Phone, &lead.Email,
		&lead.Source, &lead.InseridoManual, &lead.Tags, &lead.Status, &lead.Score,
		&lead.CreatedAt, &lead.UpdatedAt)
	return lead, err
}

func (r *Repository) Create(ctx context.Context, params CreateLeadParams) (Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, `
		INSERT INTO leads (tenant_id, name, phone, email, source, inserido_manual, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+leadColumns,
		params.TenantID, params.Name, params.Phone, params.Email, params.Source,
		params.InseridoManual, params.Tags))
	if err != nil {
		return Lead{}, err
	}
	return lead, nil
}

// CreateIfAbsent inserts a lead unless one with the same phone already exists
// for the tenant. The second return value reports whether a row was created.
func (r *Repository) CreateIfAbsent(ctx context.Context, params CreateLeadParams) (Lead, bool, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, `
		INSERT INTO leads (tenant_id, name, phone, email, source, inserido_manual, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (tenant_id, phone) DO NOTHING
		RETURNING `+leadColumns,
		params.TenantID, params.Name, params.Phone, params.Email, params.Source,
		params.InseridoManual, params.Tags))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, false, nil
		}
		return Lead{}, false, err
	}
	return lead, true, nil
}

func (r *Repository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, `
		SELECT `+leadColumns+` FROM leads WHERE id = $1 AND tenant_id = $2
	`, id, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, ErrNotFound
		}
		return Lead{}, err
	}
	return lead, nil
}

func (r *Repository) GetByPhone(ctx context.Context, tenantID uuid.UUID, phone string) (Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, `
		SELECT `+leadColumns+` FROM leads WHERE tenant_id = $1 AND phone = $2
	`, tenantID, phone))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, ErrNotFound
		}
		return Lead{}, err
	}
	return lead, nil
}

type ListLeadsParams struct {
	TenantID uuid.UUID
	Status   *domain.Status
	Source   *domain.Source
	Search   string
	Limit    int
	Offset   int
}

// List returns a page of leads plus the total count matching the filters.
func (r *Repository) List(ctx context.Context, params ListLeadsParams) ([]Lead, int, error) {
	where := []string{"tenant_id = $1"}
	args := []interface{}{params.TenantID}

	if params.Status != nil {
		args = append(args, *params.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if params.Source != nil {
		args = append(args, *params.Source)
		where = append(where, fmt.Sprintf("source = $%d", len(args)))
	}
	if params.Search != "" {
		args = append(args, "%"+params.Search+"%")
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR phone ILIKE $%d OR email ILIKE $%d)", len(args), len(args), len(args)))
	}
	whereClause := strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM leads WHERE `+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, params.Limit, params.Offset)
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM leads
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, leadColumns, whereClause, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	leads := make([]Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, 0, err
		}
		leads = append(leads, lead)
	}
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}

	return leads, total, nil
}

type UpdateLeadParams struct {
	Name  *string
	Phone *string
	Email *string
	Tags  *[]string
}

func (r *Repository) Update(ctx context.Context, tenantID, id uuid.UUID, params UpdateLeadParams) (Lead, error) {
	set := []string{"updated_at = now()"}
	args := []interface{}{id, tenantID}

	if params.Name != nil {
		args = append(args, *params.Name)
		set = append(set, fmt.Sprintf("name = $%d", len(args)))
	}
	if params.Phone != nil {
		args = append(args, *params.Phone)
		set = append(set, fmt.Sprintf("phone = $%d", len(args)))
	}
	if params.Email != nil {
		args = append(args, *params.Email)
		set = append(set, fmt.Sprintf("email = $%d", len(args)))
	}
	if params.Tags != nil {
		args = append(args, *params.Tags)
		set = append(set, fmt.Sprintf("tags = $%d", len(args)))
	}

	lead, err := scanLead(r.pool.QueryRow(ctx, fmt.Sprintf(`
		UPDATE leads SET %s
		WHERE id = $1 AND tenant_id = $2
		RETURNING %s
	`, strings.Join(set, ", "), leadColumns), args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, ErrNotFound
		}
		return Lead{}, err
	}
	return lead, nil
}

// UpdateStatus transitions the lead and optionally records its score.
func (r *Repository) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status domain.Status, score *int) (Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, `
		UPDATE leads
		SET status = $3, score = COALESCE($4, score), updated_at = now()
		WHERE id = $1 AND tenant_id = $2
		RETURNING `+leadColumns,
		id, tenantID, status, score))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, ErrNotFound
		}
		return Lead{}, err
	}
	return lead, nil
}

func (r *Repository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
