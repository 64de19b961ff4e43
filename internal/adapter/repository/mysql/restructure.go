package mysql

import (
	"context"

	"gorm.io/gorm"

	restructureDomain "croplend/internal/domain/restructure"
)

type RestructureRepository struct{ db *gorm.DB }

func NewRestructureRepository(db *gorm.DB) *RestructureRepository {
	return &RestructureRepository{db: db}
}

func (r *RestructureRepository) Create(ctx context.Context, rst *restructureDomain.Restructure) error {
	return r.db.WithContext(ctx).Create(rst).Error
}

func (r *RestructureRepository) Save(ctx context.Context, rst *restructureDomain.Restructure) error {
	return r.db.WithContext(ctx).Save(rst).Error
}

func (r *RestructureRepository) GetByRestructureID(ctx context.Context, restructureID string) (*restructureDomain.Restructure, error) {
	var out restructureDomain.Restructure
	res := r.db.WithContext(ctx).Where("restructure_id = ?", restructureID).First(&out)
	if res.Error != nil {
		return nil, res.Error
	}
	return &out, nil
}

func (r *RestructureRepository) ListByLoan(ctx context.Context, loanID uint64) ([]restructureDomain.Restructure, error) {
	var out []restructureDomain.Restructure
	res := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("created_at DESC, id DESC").
		Find(&out)
	return out, res.Error
}

type AdjustmentRepository struct{ db *gorm.DB }

func NewAdjustmentRepository(db *gorm.DB) *AdjustmentRepository {
	return &AdjustmentRepository{db: db}
}

func (r *AdjustmentRepository) Create(ctx context.Context, a *restructureDomain.RateAdjustment) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *AdjustmentRepository) Save(ctx context.Context, a *restructureDomain.RateAdjustment) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *AdjustmentRepository) GetByAdjustmentID(ctx context.Context, adjustmentID string) (*restructureDomain.RateAdjustment, error) {
	var out restructureDomain.RateAdjustment
	res := r.db.WithContext(ctx).Where("adjustment_id = ?", adjustmentID).First(&out)
	if res.Error != nil {
		return nil, res.Error
	}
	return &out, nil
}

func (r *AdjustmentRepository) GetByID(ctx context.Context, id uint64) (*restructureDomain.RateAdjustment, error) {
	var out restructureDomain.RateAdjustment
	res := r.db.WithContext(ctx).Where("id = ?", id).First(&out)
	if res.Error != nil {
		return nil, res.Error
	}
	return &out, nil
}

func (r *AdjustmentRepository) ListByEvent(ctx context.Context, climateEventID string) ([]restructureDomain.RateAdjustment, error) {
	var out []restructureDomain.RateAdjustment
	res := r.db.WithContext(ctx).
		Where("climate_event_id = ?", climateEventID).
		Order("id").
		Find(&out)
	return out, res.Error
}
