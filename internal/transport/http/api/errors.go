package api

import (
	"errors"
	"log/slog"
	"net/http"

	"shopledger/internal/domain/attendance"
	"shopledger/internal/domain/commission"
	"shopledger/internal/domain/leave"
	"shopledger/internal/domain/loans"
	"shopledger/internal/domain/notifications"
	"shopledger/internal/domain/orders"
	"shopledger/internal/domain/payroll"
	"shopledger/internal/domain/pricing"
	"shopledger/internal/domain/reports"
	"shopledger/internal/domain/salary"
	"shopledger/internal/domain/staff"
	"shopledger/internal/domain/stock"
	"shopledger/internal/platform/calendar"
)

type clientError struct {
	err    error
	status int
	code   string
}

// clientErrors maps domain sentinels to responses. The first match wins, so wrapped
// sentinels with a more specific meaning come first.
var clientErrors = []clientError{
	{orders.ErrOrderNotFound, http.StatusNotFound, "order_not_found"},
	{orders.ErrInvalidShop, http.StatusForbidden, "invalid_shop"},
	{leave.ErrInvalidShop, http.StatusForbidden, "invalid_shop"},
	{orders.ErrEmptyOrder, http.StatusBadRequest, "empty_order"},
	{orders.ErrCustomerRequired, http.StatusBadRequest, "customer_required"},
	{orders.ErrInvalidAmount, http.StatusBadRequest, "invalid_amount"},
	{orders.ErrInvalidQuantity, http.StatusBadRequest, "invalid_quantity"},
	{orders.ErrInvalidStatus, http.StatusBadRequest, "invalid_status"},
	{orders.ErrInvalidTransition, http.StatusConflict, "invalid_transition"},
	{orders.ErrInvalidPaymentInput, http.StatusBadRequest, "invalid_payment_method"},
	{orders.ErrDuplicateOrderNumber, http.StatusConflict, "order_number_conflict"},
	{pricing.ErrNegativePrice, http.StatusUnprocessableEntity, "negative_price"},
	{pricing.ErrInvalidDiscountType, http.StatusBadRequest, "invalid_discount"},
	{pricing.ErrInvalidInput, http.StatusBadRequest, "invalid_price"},
	{stock.ErrProductNotFound, http.StatusNotFound, "product_not_found"},
	{stock.ErrVariantNotFound, http.StatusNotFound, "variant_not_found"},
	{stock.ErrInsufficientStock, http.StatusConflict, "insufficient_stock"},
	{stock.ErrNegativeStock, http.StatusConflict, "negative_stock"},
	{stock.ErrInvalidQuantity, http.StatusBadRequest, "invalid_quantity"},
	{commission.ErrStaffNotFound, http.StatusNotFound, "staff_not_found"},
	{staff.ErrEmployeeNotFound, http.StatusNotFound, "employee_not_found"},
	{attendance.ErrRecordNotFound, http.StatusNotFound, "attendance_not_found"},
	{attendance.ErrInvalidMinutes, http.StatusBadRequest, "invalid_minutes"},
	{attendance.ErrMonthLocked, http.StatusConflict, "month_locked"},
	{salary.ErrInvalidAmount, http.StatusBadRequest, "invalid_amount"},
	{salary.ErrUnchangedSalary, http.StatusConflict, "unchanged_salary"},
	{salary.ErrBeforeInitial, http.StatusBadRequest, "before_initial_salary"},
	{salary.ErrMonthLocked, http.StatusConflict, "month_locked"},
	{leave.ErrMonthLocked, http.StatusConflict, "month_locked"},
	{leave.ErrRequestNotFound, http.StatusNotFound, "leave_request_not_found"},
	{leave.ErrHolidayNotFound, http.StatusNotFound, "holiday_not_found"},
	{leave.ErrAlreadyDecided, http.StatusConflict, "already_decided"},
	{leave.ErrInvalidDecision, http.StatusBadRequest, "invalid_decision"},
	{leave.ErrLeaveTypeRequired, http.StatusBadRequest, "leave_type_required"},
	{leave.ErrDescriptionRequired, http.StatusBadRequest, "description_required"},
	{loans.ErrLoanNotFound, http.StatusNotFound, "loan_not_found"},
	{loans.ErrLoanCompleted, http.StatusConflict, "loan_completed"},
	{loans.ErrInvalidAmount, http.StatusBadRequest, "invalid_amount"},
	{loans.ErrInvalidEMI, http.StatusBadRequest, "invalid_emi"},
	{loans.ErrInvalidRate, http.StatusBadRequest, "invalid_rate"},
	{loans.ErrPaymentExceedsBalance, http.StatusConflict, "payment_exceeds_balance"},
	{loans.ErrAdvanceExceedsOutstanding, http.StatusConflict, "advance_exceeds_outstanding"},
	{payroll.ErrReleaseNotFound, http.StatusNotFound, "release_not_found"},
	{payroll.ErrAlreadyReleased, http.StatusConflict, "already_released"},
	{payroll.ErrDeductionsExceedPay, http.StatusUnprocessableEntity, "deductions_exceed_pay"},
	{payroll.ErrInvalidAdjustment, http.StatusBadRequest, "invalid_adjustment"},
	{payroll.ErrLoanRequired, http.StatusBadRequest, "loan_required"},
	{payroll.ErrInvalidMonth, http.StatusBadRequest, "invalid_month"},
	{notifications.ErrNotificationNotFound, http.StatusNotFound, "notification_not_found"},
	{reports.ErrInvalidShop, http.StatusForbidden, "invalid_shop"},
	{reports.ErrJobRunNotFound, http.StatusNotFound, "job_run_not_found"},
	{calendar.ErrInvalidRange, http.StatusBadRequest, "invalid_date_range"},
}

// FailFromError writes the response for err. Domain client errors keep their message; anything
// else is logged and reported as a generic internal error.
func FailFromError(w http.ResponseWriter, err error, requestID string) {
	var verr *orders.ValidationError
	if errors.As(err, &verr) {
		status := http.StatusUnprocessableEntity
		if verr.Code == orders.CodeProductNotFound || verr.Code == orders.CodeVariantNotFound {
			status = http.StatusNotFound
		}
		FailWithDetails(w, status, verr.Code, verr.Error(), map[string]any{
			"lineIndex": verr.LineIndex,
			"productId": verr.ProductID,
		}, requestID)
		return
	}

	for _, ce := range clientErrors {
		if errors.Is(err, ce.err) {
			Fail(w, ce.status, ce.code, err.Error(), requestID)
			return
		}
	}

	slog.Error("request failed", "requestId", requestID, "err", err)
	Fail(w, http.StatusInternalServerError, "internal_error", "internal server error", requestID)
}
