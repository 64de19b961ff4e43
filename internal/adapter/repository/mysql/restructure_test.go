package mysql

import (
	"context"
	"errors"
	"testing"

	restructureDomain "croplend/internal/domain/restructure"
	"croplend/pkg/id"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func makeRestructure(loanID uint64, bankID string) *restructureDomain.Restructure {
	return &restructureDomain.Restructure{
		RestructureID:         id.NewID32(),
		LoanID:                loanID,
		BankID:                bankID,
		Reason:                restructureDomain.ReasonManual,
		OldInterestRate:       12,
		OldTermMonths:         12,
		OldMonthlyPayment:     decimal.NewFromFloat(8884.88),
		OldOutstandingBalance: decimal.NewFromFloat(79963.92),
		NewInterestRate:       8,
		NewTermMonths:         9,
		Status:                restructureDomain.StatusPending,
	}
}

func TestRestructureRepository_CreateAndGet(t *testing.T) {
	db := openTestDB(t)
	repo := NewRestructureRepository(db)
	ctx := context.Background()

	rst := makeRestructure(7, id.NewID32())
	if err := repo.Create(ctx, rst); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByRestructureID(ctx, rst.RestructureID)
	if err != nil {
		t.Fatalf("GetByRestructureID: %v", err)
	}
	if got.NewInterestRate != 8 || got.Status != restructureDomain.StatusPending {
		t.Errorf("unexpected restructure: %+v", got)
	}
	if !got.OldOutstandingBalance.Equal(decimal.NewFromFloat(79963.92)) {
		t.Errorf("outstanding = %s", got.OldOutstandingBalance)
	}

	if _, err := repo.GetByRestructureID(ctx, id.NewID32()); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestRestructureRepository_SaveTransition(t *testing.T) {
	db := openTestDB(t)
	repo := NewRestructureRepository(db)
	ctx := context.Background()

	rst := makeRestructure(7, id.NewID32())
	if err := repo.Create(ctx, rst); err != nil {
		t.Fatalf("Create: %v", err)
	}

	reviewer := id.NewID32()
	rst.Status = restructureDomain.StatusCompleted
	rst.ReviewedBy = &reviewer
	rst.NewMonthlyPayment = decimal.NewFromFloat(9250.11)
	if err := repo.Save(ctx, rst); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := repo.GetByRestructureID(ctx, rst.RestructureID)
	if err != nil {
		t.Fatalf("GetByRestructureID: %v", err)
	}
	if got.Status != restructureDomain.StatusCompleted || got.ReviewedBy == nil || *got.ReviewedBy != reviewer {
		t.Errorf("transition not persisted: %+v", got)
	}
}

func TestRestructureRepository_ListByLoan(t *testing.T) {
	db := openTestDB(t)
	repo := NewRestructureRepository(db)
	ctx := context.Background()

	bank := id.NewID32()
	first := makeRestructure(7, bank)
	second := makeRestructure(7, bank)
	other := makeRestructure(8, bank)
	for _, r := range []*restructureDomain.Restructure{first, second, other} {
		if err := repo.Create(ctx, r); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	got, err := repo.ListByLoan(ctx, 7)
	if err != nil {
		t.Fatalf("ListByLoan: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ID != second.ID {
		t.Errorf("newest first expected, got %+v", got[0])
	}
}

func makeAdjustment(loanID uint64, bankID, eventID string) *restructureDomain.RateAdjustment {
	return &restructureDomain.RateAdjustment{
		AdjustmentID:   id.NewID32(),
		LoanID:         loanID,
		BankID:         bankID,
		ClimateEventID: eventID,
		Severity:       "high",
		Region:         "central-java",
		OldRate:        12,
		NewRate:        6,
		Reason:         "Climate event rate reset",
		Status:         restructureDomain.AdjustmentPending,
	}
}

func TestAdjustmentRepository_CreateAndGet(t *testing.T) {
	db := openTestDB(t)
	repo := NewAdjustmentRepository(db)
	ctx := context.Background()

	adj := makeAdjustment(7, id.NewID32(), "EVT-2026-001")
	if err := repo.Create(ctx, adj); err != nil {
		t.Fatalf("Create: %v", err)
	}

	byPublic, err := repo.GetByAdjustmentID(ctx, adj.AdjustmentID)
	if err != nil {
		t.Fatalf("GetByAdjustmentID: %v", err)
	}
	byRow, err := repo.GetByID(ctx, adj.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if byPublic.ID != byRow.ID || byRow.NewRate != 6 {
		t.Errorf("lookups disagree: %+v vs %+v", byPublic, byRow)
	}

	if _, err := repo.GetByAdjustmentID(ctx, id.NewID32()); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestAdjustmentRepository_ListByEvent(t *testing.T) {
	db := openTestDB(t)
	repo := NewAdjustmentRepository(db)
	ctx := context.Background()

	bank := id.NewID32()
	for i, eventID := range []string{"EVT-A", "EVT-A", "EVT-B"} {
		if err := repo.Create(ctx, makeAdjustment(uint64(i+1), bank, eventID)); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	got, err := repo.ListByEvent(ctx, "EVT-A")
	if err != nil {
		t.Fatalf("ListByEvent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	for _, a := range got {
		if a.ClimateEventID != "EVT-A" {
			t.Errorf("stray adjustment: %+v", a)
		}
	}
}
