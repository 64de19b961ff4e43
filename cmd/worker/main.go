package main

import (
	"context"
	"log"
	"time"

	"croplend/internal/adapter/repository/mysql"
	"croplend/internal/config"
	"croplend/internal/infrastructure/db"
	"croplend/internal/usecase/payment"
	"croplend/internal/usecase/scheduling"
)

// The collection worker sweeps overdue instalments and flags defaulted loans
// on a fixed interval. It is deliberately dumb: all decisions live in the
// payment usecase, the worker just ticks.
func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	gdb, err := db.OpenGorm(cfg.MySQLDSN())
	if err != nil {
		log.Fatal(err)
	}

	tx := mysql.NewGormUoW(gdb)
	payments := payment.NewUsecase(tx, scheduling.NewUsecase(tx))

	log.Printf("collection worker: interval=%s threshold=%dd", cfg.JobInterval, cfg.DefaultThresholdDays)

	run := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		marked, err := payments.MarkOverdue(ctx)
		if err != nil {
			log.Printf("mark overdue: %v", err)
		} else {
			log.Printf("marked %d instalments overdue", marked)
		}

		flagged, err := payments.FlagDefaults(ctx, cfg.DefaultThresholdDays)
		if err != nil {
			log.Printf("flag defaults: %v", err)
		} else {
			log.Printf("flagged %d loans as defaulted", flagged)
		}
	}

	run()
	ticker := time.NewTicker(cfg.JobInterval)
	defer ticker.Stop()
	for range ticker.C {
		run()
	}
}
