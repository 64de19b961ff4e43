package mysql

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	loanDomain "croplend/internal/domain/loan"
)

type LoanRepository struct{ db *gorm.DB }

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

func (r *LoanRepository) Create(ctx context.Context, l *loanDomain.Application) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *LoanRepository) Save(ctx context.Context, l *loanDomain.Application) error {
	return r.db.WithContext(ctx).Save(l).Error
}

func (r *LoanRepository) GetByApplicationID(ctx context.Context, applicationID string) (*loanDomain.Application, error) {
	var out loanDomain.Application
	res := r.db.WithContext(ctx).Where("application_id = ?", applicationID).First(&out)
	if res.Error != nil {
		return nil, res.Error
	}
	return &out, nil
}

func (r *LoanRepository) GetByApplicationIDForUpdate(ctx context.Context, applicationID string) (*loanDomain.Application, error) {
	var out loanDomain.Application
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("application_id = ?", applicationID).
		First(&out)
	if res.Error != nil {
		return nil, res.Error
	}
	return &out, nil
}

func (r *LoanRepository) GetByIDForUpdate(ctx context.Context, id uint64) (*loanDomain.Application, error) {
	var out loanDomain.Application
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&out)
	if res.Error != nil {
		return nil, res.Error
	}
	return &out, nil
}

func (r *LoanRepository) ListByBankAndStatus(ctx context.Context, bankID string, st loanDomain.Status) ([]loanDomain.Application, error) {
	var out []loanDomain.Application
	res := r.db.WithContext(ctx).
		Where("bank_id = ? AND status = ?", bankID, st).
		Order("id").
		Find(&out)
	return out, res.Error
}

func (r *LoanRepository) ListDisbursedWithOverdueBefore(ctx context.Context, cutoff time.Time) ([]loanDomain.Application, error) {
	var out []loanDomain.Application
	res := r.db.WithContext(ctx).
		Joins("JOIN loan_instalments li ON li.loan_id = loan_applications.id").
		Where("loan_applications.status = ?", loanDomain.StatusDisbursed).
		Where("li.is_paid = ? AND li.due_date < ?", false, cutoff).
		Group("loan_applications.id").
		Find(&out)
	return out, res.Error
}
