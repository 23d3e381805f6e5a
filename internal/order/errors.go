package order

import (
	"errors"
	"strings"
)

// Sipariş kabulünde beklenen, kullanıcıya dönen red nedenleri.
// Bunlar istisna değil doğrulama sonucudur; altyapı hatalarından
// errors.As ile ayrıştırılır.
const (
	CodeCutOffPassed        = "cut_off_passed"
	CodeEmptyCart           = "empty_cart"
	CodeMissingCustomer     = "missing_customer"
	CodeDuplicatePaymentRef = "duplicate_payment_ref"
	CodeVariantUnavailable  = "variant_unavailable"
	CodeCapacityExceeded    = "capacity_exceeded"
	CodeNotPlanned          = "not_planned"
)

type ValidationError struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"` // kapasite ihlallerinde kaynak başına mesaj
}

func (e *ValidationError) Error() string {
	if len(e.Details) > 0 {
		return e.Message + ": " + strings.Join(e.Details, "; ")
	}
	return e.Message
}

func NewValidationError(code, message string, details ...string) *ValidationError {
	return &ValidationError{Code: code, Message: message, Details: details}
}

// AsValidation çağırana iş kuralı ihlali ile sistem hatasını ayırt etme
// imkânı verir.
func AsValidation(err error) (*ValidationError, bool) {
	var v *ValidationError
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}
