package main

import (
	"log"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	httpadp "croplend/internal/adapter/http"
	"croplend/internal/adapter/middleware"
	"croplend/internal/adapter/repository/mysql"
	"croplend/internal/config"
	"croplend/internal/infrastructure/cache"
	"croplend/internal/infrastructure/db"
	"croplend/internal/usecase/approval"
	"croplend/internal/usecase/payment"
	"croplend/internal/usecase/restructure"
	"croplend/internal/usecase/scheduling"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	gdb, err := db.OpenGorm(cfg.MySQLDSN())
	if err != nil {
		log.Fatal(err)
	}
	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.Fatal(err)
	}

	loans := mysql.NewLoanRepository(gdb)
	policies := mysql.NewPolicyRepository(gdb)
	trail := mysql.NewAuditRepository(gdb)
	tx := mysql.NewGormUoW(gdb)

	scheduler := scheduling.NewUsecase(tx)
	approvals := approval.NewUsecase(loans, policies, tx)
	payments := payment.NewUsecase(tx, scheduler)
	restructures := restructure.NewUsecase(loans, policies, tx, scheduler)

	h := httpadp.NewHandler()
	loanH := httpadp.NewLoanHandler(approvals, payments, scheduler, loans, trail)
	paymentH := httpadp.NewPaymentHandler(payments)
	restructureH := httpadp.NewRestructureHandler(restructures)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Logger(), echomw.Recover())

	idemp := middleware.IdempotencyMiddleware(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second)
	httpadp.RegisterRoutes(e, h, loanH, paymentH, restructureH, idemp)

	addr := ":" + cfg.AppPort
	log.Printf("listening on %s", addr)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
