package mysql

import (
	"context"

	"gorm.io/gorm"

	policyDomain "croplend/internal/domain/policy"
)

type PolicyRepository struct{ db *gorm.DB }

func NewPolicyRepository(db *gorm.DB) *PolicyRepository { return &PolicyRepository{db: db} }

func (r *PolicyRepository) Create(ctx context.Context, p *policyDomain.RatePolicy) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PolicyRepository) Save(ctx context.Context, p *policyDomain.RatePolicy) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *PolicyRepository) GetActiveByBank(ctx context.Context, bankID string) (*policyDomain.RatePolicy, error) {
	var out policyDomain.RatePolicy
	res := r.db.WithContext(ctx).
		Where("bank_id = ? AND is_active = ?", bankID, true).
		Order("id DESC").
		First(&out)
	if res.Error != nil {
		return nil, res.Error
	}
	return &out, nil
}

func (r *PolicyRepository) ListActive(ctx context.Context) ([]policyDomain.RatePolicy, error) {
	var out []policyDomain.RatePolicy
	res := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("bank_id").
		Find(&out)
	return out, res.Error
}
