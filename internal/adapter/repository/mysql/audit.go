package mysql

import (
	"context"

	"gorm.io/gorm"

	auditDomain "croplend/internal/domain/audit"
)

// AuditRepository is append-only by construction: it exposes no update or
// delete path, and the entity's gorm hooks refuse both even if someone
// reaches for the raw handle.
type AuditRepository struct{ db *gorm.DB }

func NewAuditRepository(db *gorm.DB) *AuditRepository { return &AuditRepository{db: db} }

func (r *AuditRepository) Append(ctx context.Context, rec *auditDomain.Record) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *AuditRepository) ListByLoan(ctx context.Context, loanID uint64) ([]auditDomain.Record, error) {
	var out []auditDomain.Record
	res := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("created_at DESC, id DESC").
		Find(&out)
	return out, res.Error
}
