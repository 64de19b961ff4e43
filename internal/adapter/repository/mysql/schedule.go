package mysql

import (
	"context"
	"time"

	"gorm.io/gorm"

	scheduleDomain "croplend/internal/domain/schedule"
)

type ScheduleRepository struct{ db *gorm.DB }

func NewScheduleRepository(db *gorm.DB) *ScheduleRepository { return &ScheduleRepository{db: db} }

func (r *ScheduleRepository) Create(ctx context.Context, s *scheduleDomain.RepaymentSchedule) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *ScheduleRepository) GetCurrentByLoan(ctx context.Context, loanID uint64) (*scheduleDomain.RepaymentSchedule, error) {
	var out scheduleDomain.RepaymentSchedule
	res := r.db.WithContext(ctx).
		Where("loan_id = ? AND is_current = ?", loanID, true).
		First(&out)
	if res.Error != nil {
		return nil, res.Error
	}
	return &out, nil
}

func (r *ScheduleRepository) SupersedeCurrent(ctx context.Context, loanID uint64) error {
	return r.db.WithContext(ctx).
		Model(&scheduleDomain.RepaymentSchedule{}).
		Where("loan_id = ? AND is_current = ?", loanID, true).
		Update("is_current", false).Error
}

func (r *ScheduleRepository) ListByLoan(ctx context.Context, loanID uint64) ([]scheduleDomain.RepaymentSchedule, error) {
	var out []scheduleDomain.RepaymentSchedule
	res := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("created_at DESC, id DESC").
		Find(&out)
	return out, res.Error
}

type InstalmentRepository struct{ db *gorm.DB }

func NewInstalmentRepository(db *gorm.DB) *InstalmentRepository { return &InstalmentRepository{db: db} }

func (r *InstalmentRepository) CreateBatch(ctx context.Context, rows []scheduleDomain.Instalment) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

func (r *InstalmentRepository) Save(ctx context.Context, i *scheduleDomain.Instalment) error {
	return r.db.WithContext(ctx).Save(i).Error
}

func (r *InstalmentRepository) ListByLoan(ctx context.Context, loanID uint64) ([]scheduleDomain.Instalment, error) {
	var out []scheduleDomain.Instalment
	res := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("payment_number").
		Find(&out)
	return out, res.Error
}

func (r *InstalmentRepository) ListUnpaidByLoan(ctx context.Context, loanID uint64) ([]scheduleDomain.Instalment, error) {
	var out []scheduleDomain.Instalment
	res := r.db.WithContext(ctx).
		Where("loan_id = ? AND is_paid = ?", loanID, false).
		Order("payment_number").
		Find(&out)
	return out, res.Error
}

// DeleteUnpaidByLoan hard-deletes: these rows are replaced by the new plan and
// the superseded schedule row preserves the audit trail.
func (r *InstalmentRepository) DeleteUnpaidByLoan(ctx context.Context, loanID uint64) error {
	return r.db.WithContext(ctx).
		Where("loan_id = ? AND is_paid = ?", loanID, false).
		Delete(&scheduleDomain.Instalment{}).Error
}

func (r *InstalmentRepository) MaxPaymentNumber(ctx context.Context, loanID uint64) (int, error) {
	var max *int
	res := r.db.WithContext(ctx).
		Model(&scheduleDomain.Instalment{}).
		Where("loan_id = ?", loanID).
		Select("MAX(payment_number)").
		Scan(&max)
	if res.Error != nil {
		return 0, res.Error
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

func (r *InstalmentRepository) CreateReceipt(ctx context.Context, rec *scheduleDomain.PaymentReceipt) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *InstalmentRepository) HasTransaction(ctx context.Context, loanID uint64, transactionID string) (bool, error) {
	var count int64
	res := r.db.WithContext(ctx).
		Model(&scheduleDomain.PaymentReceipt{}).
		Where("loan_id = ? AND transaction_id = ?", loanID, transactionID).
		Count(&count)
	return count > 0, res.Error
}

func (r *InstalmentRepository) ListUnpaidDueBefore(ctx context.Context, cutoff time.Time) ([]scheduleDomain.Instalment, error) {
	var out []scheduleDomain.Instalment
	res := r.db.WithContext(ctx).
		Where("is_paid = ? AND due_date < ?", false, cutoff).
		Order("due_date").
		Find(&out)
	return out, res.Error
}

// MarkLate touches only the late columns. The overdue sweep holds no loan
// lock, so a full-row write here could overwrite a payment committed after
// the sweep's read.
func (r *InstalmentRepository) MarkLate(ctx context.Context, instalmentID uint64, daysLate int) error {
	return r.db.WithContext(ctx).
		Model(&scheduleDomain.Instalment{}).
		Where("id = ?", instalmentID).
		Select("is_late", "days_late").
		Updates(map[string]any{"is_late": true, "days_late": daysLate}).Error
}
