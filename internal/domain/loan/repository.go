package loan

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, l *Application) error
	GetByApplicationID(ctx context.Context, applicationID string) (*Application, error)
	// GetByApplicationIDForUpdate locks the row for the duration of the
	// surrounding transaction. All multi-step mutations go through this.
	GetByApplicationIDForUpdate(ctx context.Context, applicationID string) (*Application, error)
	// GetByIDForUpdate locks by numeric id; used when navigating from a
	// restructure or adjustment row back to its loan.
	GetByIDForUpdate(ctx context.Context, id uint64) (*Application, error)
	Save(ctx context.Context, l *Application) error
	ListByBankAndStatus(ctx context.Context, bankID string, st Status) ([]Application, error)
	// ListDisbursedWithOverdueBefore returns disbursed loans having at least
	// one unpaid instalment due strictly before cutoff. Used by default
	// flagging.
	ListDisbursedWithOverdueBefore(ctx context.Context, cutoff time.Time) ([]Application, error)
}
