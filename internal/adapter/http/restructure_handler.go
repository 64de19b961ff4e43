package http

import (
	"net/http"

	"croplend/internal/domain/policy"
	domain "croplend/internal/domain/restructure"
	"croplend/internal/usecase/restructure"

	"github.com/labstack/echo/v4"
)

type RestructureHandler struct{ uc *restructure.Usecase }

func NewRestructureHandler(uc *restructure.Usecase) *RestructureHandler {
	return &RestructureHandler{uc: uc}
}

type initiateRestructureReq struct {
	ApplicationID string  `json:"application_id" validate:"required,hex32"`
	NewRate       float64 `json:"new_rate"       validate:"required,gt=0,dec2"`
	NewTermMonths int     `json:"new_term_months" validate:"required,gte=1,lte=480"`
	Reason        string  `json:"reason"         validate:"required,oneof=climate_event default_risk manual"`
	Notes         string  `json:"notes"`
	ReviewedBy    *string `json:"reviewed_by"    validate:"omitempty,hex32"`
}

func (h *RestructureHandler) Initiate(c echo.Context) error {
	var req initiateRestructureReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	rst, err := h.uc.Initiate(c.Request().Context(), restructure.InitiateInput{
		ApplicationID: req.ApplicationID,
		NewRate:       req.NewRate,
		NewTermMonths: req.NewTermMonths,
		Reason:        domain.Reason(req.Reason),
		Notes:         req.Notes,
		ReviewedBy:    req.ReviewedBy,
	})
	if err != nil {
		return c.JSON(statusForError(err), ErrorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusCreated, rst)
}

type reviewRestructureReq struct {
	ReviewedBy *string `json:"reviewed_by" validate:"omitempty,hex32"`
	Notes      string  `json:"notes"`
}

func (h *RestructureHandler) Approve(c echo.Context) error {
	restructureID := c.Param("restructure_id")
	if !reHex32.MatchString(restructureID) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid restructure_id path param"})
	}
	var req reviewRestructureReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	rst, err := h.uc.Approve(c.Request().Context(), restructureID, req.ReviewedBy)
	if err != nil {
		return c.JSON(statusForError(err), ErrorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, rst)
}

func (h *RestructureHandler) Reject(c echo.Context) error {
	restructureID := c.Param("restructure_id")
	if !reHex32.MatchString(restructureID) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid restructure_id path param"})
	}
	var req reviewRestructureReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	rst, err := h.uc.Reject(c.Request().Context(), restructureID, req.ReviewedBy, req.Notes)
	if err != nil {
		return c.JSON(statusForError(err), ErrorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, rst)
}

type climateEventReq struct {
	EventID     string `json:"event_id"    validate:"required"`
	Severity    string `json:"severity"    validate:"required,severity"`
	Region      string `json:"region"      validate:"required"`
	Description string `json:"description"`
}

// ClimateEvent fans a regional climate event out over climate-protected
// portfolios. Partial success is reported in the body, not as an error.
func (h *RestructureHandler) ClimateEvent(c echo.Context) error {
	var req climateEventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	res, err := h.uc.OnClimateEvent(c.Request().Context(), restructure.ClimateEvent{
		EventID:     req.EventID,
		Severity:    policy.Severity(req.Severity),
		Region:      req.Region,
		Description: req.Description,
	})
	if err != nil {
		return c.JSON(statusForError(err), ErrorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, res)
}

func (h *RestructureHandler) ApplyAdjustment(c echo.Context) error {
	adjustmentID := c.Param("adjustment_id")
	if !reHex32.MatchString(adjustmentID) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid adjustment_id path param"})
	}
	var req reviewRestructureReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	out, err := h.uc.ApplyRateAdjustment(c.Request().Context(), adjustmentID, req.ReviewedBy)
	if err != nil {
		return c.JSON(statusForError(err), ErrorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, out)
}
