package shared

import (
	"cmp"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"shopledger/internal/transport/http/api"
)

type ValidationIssue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Validator collects field issues for one request. Issues are reported sorted by field.
type Validator struct {
	issues []ValidationIssue
}

func NewValidator() *Validator {
	return &Validator{}
}

func (v *Validator) Add(field, reason string) {
	v.check(false, field, reason)
}

func (v *Validator) check(valid bool, field, reason string) bool {
	if valid || v == nil {
		return valid
	}
	if reason = strings.TrimSpace(reason); reason != "" {
		v.issues = append(v.issues, ValidationIssue{Field: strings.TrimSpace(field), Reason: reason})
	}
	return false
}

func (v *Validator) Required(field, value, reason string) {
	v.check(strings.TrimSpace(value) != "", field, reason)
}

// Enum accepts an empty value; pair it with Required when the field is mandatory.
func (v *Validator) Enum(field, value string, allowed []string, reason string) {
	value = strings.TrimSpace(value)
	v.check(value == "" || slices.ContainsFunc(allowed, func(a string) bool {
		return strings.EqualFold(value, strings.TrimSpace(a))
	}), field, reason)
}

func (v *Validator) Date(field, raw string) (time.Time, bool) {
	parsed, err := ParseDate(strings.TrimSpace(raw))
	if !v.check(err == nil && !parsed.IsZero(), field, "must be a valid date in YYYY-MM-DD format") {
		return time.Time{}, false
	}
	return parsed, true
}

func (v *Validator) OptionalDate(field, raw string) time.Time {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}
	}
	parsed, _ := v.Date(field, raw)
	return parsed
}

func (v *Validator) UUID(field, value string) {
	_, err := uuid.Parse(strings.TrimSpace(value))
	v.check(err == nil, field, "must be a valid id")
}

func (v *Validator) NonNegative(field string, value decimal.Decimal) {
	v.check(!value.IsNegative(), field, "must not be negative")
}

func (v *Validator) Positive(field string, value decimal.Decimal) {
	v.check(value.IsPositive(), field, "must be greater than zero")
}

// DateOrder flags both fields when end precedes start. Unset dates are skipped.
func (v *Validator) DateOrder(startField string, start time.Time, endField string, end time.Time) {
	if start.IsZero() || end.IsZero() || !end.Before(start) {
		return
	}
	v.Add(startField, "must be on or before "+endField)
	v.Add(endField, "must be on or after "+startField)
}

func (v *Validator) HasIssues() bool {
	return v != nil && len(v.issues) > 0
}

func (v *Validator) Issues() []ValidationIssue {
	if !v.HasIssues() {
		return nil
	}
	out := slices.Clone(v.issues)
	slices.SortStableFunc(out, func(a, b ValidationIssue) int {
		return cmp.Or(cmp.Compare(a.Field, b.Field), cmp.Compare(a.Reason, b.Reason))
	})
	return out
}

// Reject writes a 400 with every collected issue. It reports whether the request was rejected.
func (v *Validator) Reject(w http.ResponseWriter, requestID string) bool {
	if !v.HasIssues() {
		return false
	}
	FailValidation(w, requestID, v.Issues())
	return true
}

func FailValidation(w http.ResponseWriter, requestID string, issues []ValidationIssue) {
	api.FailWithDetails(w, http.StatusBadRequest, "validation_error", "payload validation failed", map[string]any{"fields": issues}, requestID)
}
