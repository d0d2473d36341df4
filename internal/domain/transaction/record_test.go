package transaction

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestRecord_PreferredAmount(t *testing.T) {
	testCases := []struct {
		name     string
		record   Record
		expected string
	}{
		{"TotalWinsOverBooking", Record{TotalAmount: dec("12.50"), BookingAmount: dec("10.00")}, "12.50"},
		{"BookingWhenNoTotal", Record{BookingAmount: dec("10.00")}, "10.00"},
		{"ZeroWhenNeither", Record{}, "0"},
		{"TotalAloneUsed", Record{TotalAmount: dec("7.25")}, "7.25"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.True(t, tc.record.PreferredAmount().Equal(decimal.RequireFromString(tc.expected)),
				"got %s", tc.record.PreferredAmount())
		})
	}
}

func TestRecord_BucketMethod(t *testing.T) {
	testCases := []struct {
		name     string
		record   Record
		expected PaymentMethod
	}{
		{"OnlineFlagWinsOverMethod", Record{Method: MethodCard, OnlinePayment: true}, MethodOnline},
		{"KnownMethodKept", Record{Method: MethodMBWay}, MethodMBWay},
		{"ExplicitUnknownKept", Record{Method: MethodUnknown}, MethodUnknown},
		{"MissingDefaultsToCash", Record{}, MethodCash},
		{"UnrecognizedDefaultsToCash", Record{Method: PaymentMethod("cheque")}, MethodCash},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.record.BucketMethod())
		})
	}
}

func TestRecord_BucketStatus(t *testing.T) {
	assert.Equal(t, StatusDelivered, Record{Status: StatusDelivered}.BucketStatus())
	assert.Equal(t, StatusOther, Record{Status: Status("archived")}.BucketStatus())
	assert.Equal(t, StatusOther, Record{}.BucketStatus())
}

func TestRecord_ReferenceTime(t *testing.T) {
	created := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	checkout := time.Date(2025, 3, 4, 18, 30, 0, 0, time.UTC)

	assert.Equal(t, checkout, Record{CreatedAt: created, CheckoutAt: checkout}.ReferenceTime())
	assert.Equal(t, created, Record{CreatedAt: created}.ReferenceTime())
}

func TestRecord_Active(t *testing.T) {
	assert.True(t, Record{Status: StatusReserved}.Active())
	assert.True(t, Record{Status: StatusInDelivery}.Active())
	assert.False(t, Record{Status: StatusDelivered}.Active())
	assert.False(t, Record{Status: StatusCanceled}.Active())
	assert.False(t, Record{Status: Status("archived")}.Active())
}
