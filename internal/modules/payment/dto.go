package payment

import (
	"nepalstay/internal/domain"
)

// ConfirmRequest accepts the gateway specific reference field or the
// generic reference.
type ConfirmRequest struct {
	BookingID       int64  `json:"bookingId" binding:"required,gt=0"`
	Token           string `json:"token"`
	TransactionID   string `json:"transactionId"`
	PaymentIntentID string `json:"paymentIntentId"`
	Reference       string `json:"reference"`
}

// referenceFor returns the reference and the field name it is read from.
func (r ConfirmRequest) referenceFor(m domain.PaymentMethod) (string, string) {
	var ref, field string
	switch m {
	case domain.PaymentKhalti:
		ref, field = r.Token, "token"
	case domain.PaymentEsewa:
		ref, field = r.TransactionID, "transactionId"
	case domain.PaymentStripe:
		ref, field = r.PaymentIntentID, "paymentIntentId"
	}
	if ref == "" {
		ref = r.Reference
	}
	return ref, field
}

type ConfirmResult struct {
	*domain.BookingView
	AlreadyConfirmed bool `json:"alreadyConfirmed"`
}
