package http

import (
	"net/http"

	"croplend/internal/domain/audit"
	"croplend/internal/domain/loan"
	"croplend/internal/usecase/approval"
	"croplend/internal/usecase/payment"
	"croplend/internal/usecase/scheduling"

	"github.com/labstack/echo/v4"
)

type LoanHandler struct {
	approvals *approval.Usecase
	payments  *payment.Usecase
	schedules *scheduling.Usecase
	loans     loan.Repository
	trail     audit.Recorder
}

func NewLoanHandler(approvals *approval.Usecase, payments *payment.Usecase, schedules *scheduling.Usecase, loans loan.Repository, trail audit.Recorder) *LoanHandler {
	return &LoanHandler{approvals: approvals, payments: payments, schedules: schedules, loans: loans, trail: trail}
}

type approveLoanReq struct {
	ReviewedBy   *string  `json:"reviewed_by"   validate:"omitempty,hex32"`
	OverrideRate *float64 `json:"override_rate" validate:"omitempty,gt=0,dec2"`
}

func (h *LoanHandler) ApproveLoan(c echo.Context) error {
	applicationID := c.Param("application_id")
	if !reHex32.MatchString(applicationID) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid application_id path param"})
	}
	var req approveLoanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.approvals.Approve(c.Request().Context(), approval.ApproveInput{
		ApplicationID: applicationID,
		ReviewedBy:    req.ReviewedBy,
		OverrideRate:  req.OverrideRate,
	})
	if err != nil {
		return c.JSON(statusForError(err), ErrorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, dto)
}

type rejectLoanReq struct {
	Reason     string  `json:"reason"      validate:"required"`
	ReviewedBy *string `json:"reviewed_by" validate:"omitempty,hex32"`
}

func (h *LoanHandler) RejectLoan(c echo.Context) error {
	applicationID := c.Param("application_id")
	if !reHex32.MatchString(applicationID) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid application_id path param"})
	}
	var req rejectLoanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.approvals.Reject(c.Request().Context(), approval.RejectInput{
		ApplicationID: applicationID,
		Reason:        req.Reason,
		ReviewedBy:    req.ReviewedBy,
	})
	if err != nil {
		return c.JSON(statusForError(err), ErrorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, dto)
}

type disburseLoanReq struct {
	Success       bool    `json:"success"`
	TransactionID *string `json:"transaction_id"`
	Message       string  `json:"message"`
}

func (h *LoanHandler) DisburseLoan(c echo.Context) error {
	applicationID := c.Param("application_id")
	if !reHex32.MatchString(applicationID) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid application_id path param"})
	}
	var req disburseLoanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	err := h.payments.Disburse(c.Request().Context(), applicationID, payment.DisbursementResult{
		Success:       req.Success,
		TransactionID: req.TransactionID,
		Message:       req.Message,
	})
	if err != nil {
		return c.JSON(statusForError(err), ErrorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "disbursed", "application_id": applicationID})
}

func (h *LoanHandler) GetLoan(c echo.Context) error {
	applicationID := c.Param("application_id")
	l, err := h.loans.GetByApplicationID(c.Request().Context(), applicationID)
	if err != nil {
		return c.JSON(statusForError(err), ErrorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, l)
}

func (h *LoanHandler) GetSchedule(c echo.Context) error {
	applicationID := c.Param("application_id")
	sched, rows, err := h.schedules.CurrentSchedule(c.Request().Context(), applicationID)
	if err != nil {
		return c.JSON(statusForError(err), ErrorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]any{"schedule": sched, "instalments": rows})
}

func (h *LoanHandler) GetAuditTrail(c echo.Context) error {
	applicationID := c.Param("application_id")
	l, err := h.loans.GetByApplicationID(c.Request().Context(), applicationID)
	if err != nil {
		return c.JSON(statusForError(err), ErrorResponse{Error: err.Error()})
	}
	recs, err := h.trail.ListByLoan(c.Request().Context(), l.ID)
	if err != nil {
		return c.JSON(statusForError(err), ErrorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]any{"application_id": applicationID, "records": recs})
}

func (h *LoanHandler) BulkEvaluate(c echo.Context) error {
	bankID := c.Param("bank_id")
	if !reHex32.MatchString(bankID) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid bank_id path param"})
	}
	res, err := h.approvals.BulkEvaluate(c.Request().Context(), bankID)
	if err != nil {
		return c.JSON(statusForError(err), ErrorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, res)
}
