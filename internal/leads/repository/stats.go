package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DashboardStats holds the per-tenant aggregates shown on the dashboard.
type DashboardStats struct {
	Total          int
	Novo           int
	EmConversa     int
	Qualificado    int
	Desqualificado int
	AverageScore   *float64
	LastLeadAt     *time.Time
	BySource       map[string]int
}

// GetDashboardStats returns status counts and the average score across all
// scored leads for a tenant in a single round trip.
func (r *Repository) GetDashboardStats(ctx context.Context, tenantID uuid.UUID) (DashboardStats, error) {
	var stats DashboardStats
	err := r.pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'novo'),
			COUNT(*) FILTER (WHERE status = 'em_conversa'),
			COUNT(*) FILTER (WHERE status = 'qualificado'),
			COUNT(*) FILTER (WHERE status = 'desqualificado'),
			AVG(score) FILTER (WHERE score IS NOT NULL),
			MAX(created_at)
		FROM leads
		WHERE tenant_id = $1
	`, tenantID).Scan(
		&stats.Total, &stats.Novo, &stats.EmConversa, &stats.Qualificado,
		&stats.Desqualificado, &stats.AverageScore, &stats.LastLeadAt,
	)
	if err != nil {
		return DashboardStats{}, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT source, COUNT(*) FROM leads WHERE tenant_id = $1 GROUP BY source
	`, tenantID)
	if err != nil {
		return DashboardStats{}, err
	}
	defer rows.Close()

	stats.BySource = make(map[string]int)
	for rows.Next() {
		var (
			source string
			count  int
		)
		if err := rows.Scan(&source, &count); err != nil {
			return DashboardStats{}, err
		}
		stats.BySource[source] = count
	}
	if rows.Err() != nil {
		return DashboardStats{}, rows.Err()
	}

	return stats, nil
}
