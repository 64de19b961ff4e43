package audit

import "context"

// Recorder is deliberately narrow: the trail can be appended to and read,
// never rewritten.
type Recorder interface {
	Append(ctx context.Context, rec *Record) error
	ListByLoan(ctx context.Context, loanID uint64) ([]Record, error)
}
