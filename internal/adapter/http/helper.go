package http

import (
	"errors"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"croplend/internal/domain/loan"
	"croplend/internal/domain/restructure"
	"croplend/internal/domain/schedule"
)

// ---- helpers ----

// statusForError maps domain sentinels to HTTP codes. Anything unmapped is a
// server fault.
func statusForError(err error) int {
	switch {
	case errors.Is(err, loan.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound),
		errors.Is(err, schedule.ErrNotFound),
		errors.Is(err, restructure.ErrNotFound),
		errors.Is(err, restructure.ErrAdjustmentNotFound):
		return http.StatusNotFound
	case errors.Is(err, loan.ErrInvalidTransition),
		errors.Is(err, restructure.ErrInvalidTransition),
		errors.Is(err, schedule.ErrScheduleExists):
		return http.StatusConflict
	case errors.Is(err, loan.ErrRejectedByPolicy),
		errors.Is(err, schedule.ErrNoBalance):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func containsFieldMsg(list []FieldError, field, substr string) bool {
	for _, e := range list {
		if e.Field == field && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}
