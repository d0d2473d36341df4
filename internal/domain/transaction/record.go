// Package transaction defines the read-only transaction records supplied by
// the external data stores, together with the shared derivation rules every
// report and cash-session computation relies on.
package transaction

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod classifies how a reservation was paid
type PaymentMethod string

const (
	MethodCash    PaymentMethod = "cash"
	MethodCard    PaymentMethod = "card"
	MethodMBWay   PaymentMethod = "mbway"
	MethodOnline  PaymentMethod = "online"
	MethodUnknown PaymentMethod = "unknown"
)

// KnownMethods lists every payment-method bucket in a fixed order,
// used when rendering totals and building cash-session expected maps.
var KnownMethods = []PaymentMethod{MethodCash, MethodCard, MethodMBWay, MethodOnline, MethodUnknown}

// Status is a reservation lifecycle tag
type Status string

const (
	StatusReserved   Status = "reserved"
	StatusPickedUp   Status = "picked_up"
	StatusInDelivery Status = "in_delivery"
	StatusDelivered  Status = "delivered"
	StatusCanceled   Status = "canceled"

	// StatusOther is the catch-all bucket for unmapped lifecycle values.
	// Records are never dropped from status breakdowns.
	StatusOther Status = "other"
)

// Record is a single reservation/transaction as returned by a Source.
// Amounts are pointers because either field may be absent upstream.
type Record struct {
	ID         string `json:"id" bson:"_id"`
	Plate      string `json:"plate,omitempty" bson:"plate,omitempty"`
	ClientName string `json:"client_name,omitempty" bson:"client_name,omitempty"`

	City     string `json:"city,omitempty" bson:"city,omitempty"`
	Park     string `json:"park,omitempty" bson:"park,omitempty"`
	DriverID string `json:"driver_id,omitempty" bson:"driver_id,omitempty"`

	BookingAmount *decimal.Decimal `json:"booking_amount,omitempty" bson:"booking_amount,omitempty"`
	TotalAmount   *decimal.Decimal `json:"total_amount,omitempty" bson:"total_amount,omitempty"`

	Method        PaymentMethod `json:"payment_method,omitempty" bson:"payment_method,omitempty"`
	OnlinePayment bool          `json:"online_payment" bson:"online_payment"`

	Status Status `json:"status,omitempty" bson:"status,omitempty"`

	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
	CheckoutAt time.Time `json:"checkout_at,omitempty" bson:"checkout_at,omitempty"`
}

// PreferredAmount resolves the revenue contribution of a record:
// the corrected/total amount when present, else the base booking amount,
// else zero. Every revenue figure in the system goes through this function.
func (r Record) PreferredAmount() decimal.Decimal {
	if r.TotalAmount != nil {
		return *r.TotalAmount
	}
	if r.BookingAmount != nil {
		return *r.BookingAmount
	}
	return decimal.Zero
}

// BucketMethod resolves the payment-method bucket for a record.
// An online-payment flag wins over the textual method. Unrecognized or
// missing methods bucket as cash so their amounts stay in the revenue total.
func (r Record) BucketMethod() PaymentMethod {
	if r.OnlinePayment {
		return MethodOnline
	}
	switch r.Method {
	case MethodCash, MethodCard, MethodMBWay, MethodOnline, MethodUnknown:
		return r.Method
	}
	return MethodCash
}

// BucketStatus resolves the status bucket for a record, mapping anything
// outside the known vocabulary to StatusOther.
func (r Record) BucketStatus() Status {
	switch r.Status {
	case StatusReserved, StatusPickedUp, StatusInDelivery, StatusDelivered, StatusCanceled:
		return r.Status
	}
	return StatusOther
}

// ReferenceTime is the single event date used for period filtering:
// checkout time when the reservation has one, creation time otherwise.
func (r Record) ReferenceTime() time.Time {
	if !r.CheckoutAt.IsZero() {
		return r.CheckoutAt
	}
	return r.CreatedAt
}

// Active reports whether the record is in a pre-completion lifecycle state
func (r Record) Active() bool {
	switch r.BucketStatus() {
	case StatusReserved, StatusPickedUp, StatusInDelivery:
		return true
	}
	return false
}
