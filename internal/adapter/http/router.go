package http

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes wires every endpoint. The idemp middleware guards console
// mutations, which carry Cp-Request-Id/Cp-Bank-Id headers. The payment
// webhook and climate-events endpoints receive bare payloads from external
// collaborators and are deduplicated inside the usecases (transaction id,
// event id), so they skip it.
func RegisterRoutes(e *echo.Echo, h *Handler, loanH *LoanHandler, paymentH *PaymentHandler, restructureH *RestructureHandler, idemp echo.MiddlewareFunc) {
	e.GET("/health", h.Health)

	e.POST("/loans/:application_id/approve", loanH.ApproveLoan, idemp)
	e.POST("/loans/:application_id/reject", loanH.RejectLoan, idemp)
	e.POST("/loans/:application_id/disburse", loanH.DisburseLoan, idemp)
	e.GET("/loans/:application_id", loanH.GetLoan)
	e.GET("/loans/:application_id/schedule", loanH.GetSchedule)
	e.GET("/loans/:application_id/audit", loanH.GetAuditTrail)
	e.GET("/banks/:bank_id/loans/evaluate", loanH.BulkEvaluate)

	e.POST("/payments/webhook", paymentH.Webhook)

	e.POST("/restructures", restructureH.Initiate, idemp)
	e.POST("/restructures/:restructure_id/approve", restructureH.Approve, idemp)
	e.POST("/restructures/:restructure_id/reject", restructureH.Reject, idemp)
	e.POST("/climate-events", restructureH.ClimateEvent)
	e.POST("/adjustments/:adjustment_id/apply", restructureH.ApplyAdjustment, idemp)
}
