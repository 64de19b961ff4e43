package auditmock

import (
	"context"

	domain "croplend/internal/domain/audit"
)

// Recorder is a function-backed mock for domain.Recorder. When AppendFn is
// nil, appended records are collected in Records so tests can assert the
// trail without wiring a callback.
type Recorder struct {
	AppendFn     func(ctx context.Context, rec *domain.Record) error
	ListByLoanFn func(ctx context.Context, loanID uint64) ([]domain.Record, error)

	Records []domain.Record
}

func (m *Recorder) Append(ctx context.Context, rec *domain.Record) error {
	if m.AppendFn != nil {
		return m.AppendFn(ctx, rec)
	}
	m.Records = append(m.Records, *rec)
	return nil
}

func (m *Recorder) ListByLoan(ctx context.Context, loanID uint64) ([]domain.Record, error) {
	if m.ListByLoanFn != nil {
		return m.ListByLoanFn(ctx, loanID)
	}
	out := make([]domain.Record, 0, len(m.Records))
	for _, r := range m.Records {
		if r.LoanID == loanID {
			out = append(out, r)
		}
	}
	return out, nil
}
