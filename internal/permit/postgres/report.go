package postgres

import (
	"context"

	"github.com/frahmantamala/vehicle-permit/internal/permit"
	"github.com/jmoiron/sqlx"
)

// ReportRepository runs aggregate queries with sqlx.
type ReportRepository struct {
	db *sqlx.DB
}

func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

var _ permit.ReportRepository = (*ReportRepository)(nil)

const countByStatusQuery = `
SELECT
  COALESCE(SUM(CASE WHEN status = 'Pending' THEN 1 ELSE 0 END), 0)   AS pending,
  COALESCE(SUM(CASE WHEN status = 'Disetujui' THEN 1 ELSE 0 END), 0) AS approved,
  COALESCE(SUM(CASE WHEN status = 'Ditolak' THEN 1 ELSE 0 END), 0)   AS rejected
FROM permit_requests
WHERE departure_date >= ? AND departure_date <= ?`

func (r *ReportRepository) CountByStatus(ctx context.Context, start, end permit.Date) (permit.StatusCounts, error) {
	var counts permit.StatusCounts
	query := r.db.Rebind(countByStatusQuery)
	if err := r.db.GetContext(ctx, &counts, query, start.Time, end.Time); err != nil {
		return permit.StatusCounts{}, err
	}
	return counts, nil
}
