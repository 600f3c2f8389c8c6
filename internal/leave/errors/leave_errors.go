package leaveerrors

import (
	"net/http"

	"go-leave/internal/shared/apperror"
)

var (
	ErrInvalidActor = apperror.New(
		apperror.CodeInvalidInput,
		"invalid actor",
		http.StatusBadRequest,
	)
	ErrInvalidLeaveID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid leave id",
		http.StatusBadRequest,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrInvalidLeaveType = apperror.New(
		apperror.CodeInvalidInput,
		"leave_type must be one of annual, sick, maternity, paternity, special, other",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"start_date must be before or equal end_date",
		http.StatusBadRequest,
	)
	ErrReasonRequired = apperror.New(
		apperror.CodeInvalidInput,
		"reason is required",
		http.StatusBadRequest,
	)
	ErrInvalidTargetStatus = apperror.New(
		apperror.CodeInvalidInput,
		"target status must be one of manager_approved, approved, rejected, cancelled",
		http.StatusBadRequest,
	)
	ErrInvalidStatusFilter = apperror.New(
		apperror.CodeInvalidInput,
		"invalid status filter",
		http.StatusBadRequest,
	)
	ErrCommentRequired = apperror.New(
		apperror.CodeInvalidInput,
		"comment is required when rejecting a leave request",
		http.StatusBadRequest,
	)
	ErrInvalidBalance = apperror.New(
		apperror.CodeInvalidInput,
		"total_balance must not be negative",
		http.StatusBadRequest,
	)
	ErrLeaveNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave request not found",
		http.StatusNotFound,
	)
	ErrNotPermitted = apperror.New(
		apperror.CodeForbidden,
		"not permitted",
		http.StatusForbidden,
	)
	ErrInvalidStatusTransition = apperror.New(
		apperror.CodeInvalidState,
		"invalid leave status transition",
		http.StatusBadRequest,
	)
	ErrConcurrentDecision = apperror.New(
		apperror.CodeConflict,
		"leave request was changed by another decision, reload and retry",
		http.StatusConflict,
	)
)
