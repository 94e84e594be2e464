package postgres

import (
	"context"
	"errors"

	permitDatamodel "github.com/frahmantamala/vehicle-permit/internal/core/datamodel/permit"
	"github.com/frahmantamala/vehicle-permit/internal/permit"
	"gorm.io/gorm"
)

// PermitRepository implements the permit.Repository interface using GORM
type PermitRepository struct {
	db *gorm.DB
}

func NewPermitRepository(db *gorm.DB) *PermitRepository {
	return &PermitRepository{db: db}
}

var _ permit.Repository = (*PermitRepository)(nil)

func (r *PermitRepository) Create(ctx context.Context, p *permit.PermitRequest) error {
	dm := permit.ToDataModel(p)
	dm.Status = permit.StatusPending
	dm.ApprovalDate = nil
	dm.ApprovalTime = nil

	if err := r.db.WithContext(ctx).Create(dm).Error; err != nil {
		return err
	}

	*p = *permit.FromDataModel(dm)
	return nil
}

func (r *PermitRepository) GetByID(ctx context.Context, id int64) (*permit.PermitRequest, error) {
	var dm permitDatamodel.PermitRequest
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&dm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return permit.FromDataModel(&dm), nil
}

// List returns rows matching filter, newest first.
func (r *PermitRepository) List(ctx context.Context, filter permit.Filter) ([]*permit.PermitRequest, error) {
	q := r.db.WithContext(ctx).Model(&permitDatamodel.PermitRequest{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.NIK != "" {
		q = q.Where("nik = ?", filter.NIK)
	}

	var rows []*permitDatamodel.PermitRequest
	if err := q.Order("created_at DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return permit.FromDataModelSlice(rows), nil
}

// ListByDepartureRange returns rows departing within [start, end], newest first.
func (r *PermitRepository) ListByDepartureRange(ctx context.Context, start, end permit.Date) ([]*permit.PermitRequest, error) {
	var rows []*permitDatamodel.PermitRequest
	err := r.db.WithContext(ctx).
		Where("departure_date >= ? AND departure_date <= ?", start.Time, end.Time).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return permit.FromDataModelSlice(rows), nil
}

// Decide is a compare-and-set on status. Zero rows affected means the row is
// missing or already decided.
func (r *PermitRepository) Decide(ctx context.Context, id int64, outcome permit.Status, date permit.Date, clock string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&permitDatamodel.PermitRequest{}).
		Where("id = ? AND status = ?", id, permit.StatusPending).
		Updates(map[string]interface{}{
			"status":        outcome,
			"approval_date": date.Time,
			"approval_time": clock,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
