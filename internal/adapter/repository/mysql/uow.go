package mysql

import (
	"context"

	"gorm.io/gorm"

	"croplend/internal/domain/loan"
	"croplend/internal/domain/uow"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func bind(tx *gorm.DB) uow.Repos {
	return uow.Repos{
		Loans:        &LoanRepository{db: tx},
		Schedules:    &ScheduleRepository{db: tx},
		Instalments:  &InstalmentRepository{db: tx},
		Policies:     &PolicyRepository{db: tx},
		Restructures: &RestructureRepository{db: tx},
		Adjustments:  &AdjustmentRepository{db: tx},
		Audit:        &AuditRepository{db: tx},
	}
}

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(bind(tx))
	})
}

func (u *GormUoW) WithinLoanTx(ctx context.Context, applicationID string, fn func(r uow.Repos, l *loan.Application) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := bind(tx)
		// lock the loan row up-front so concurrent mutations serialize
		l, err := r.Loans.GetByApplicationIDForUpdate(ctx, applicationID)
		if err != nil {
			return err
		}
		return fn(r, l)
	})
}
