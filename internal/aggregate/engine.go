// Package aggregate reduces filtered transaction record lists into the
// multi-dimensional totals and KPIs consumed by every report view and by
// cash-session opening. One engine, shared by all call sites.
package aggregate

import (
	"github.com/parkops/backoffice/internal/domain/report"
	"github.com/parkops/backoffice/internal/domain/transaction"
	"github.com/shopspring/decimal"
)

// Compute builds the full aggregate for a record set in a single pass.
// It never fails: records with missing amounts contribute zero to sums but
// are still counted, and every record lands in exactly one bucket per
// dimension. An empty input yields zero-valued aggregates.
func Compute(records []transaction.Record) report.Aggregate {
	agg := report.Empty()

	for _, record := range records {
		amount := record.PreferredAmount()

		agg.Summary.TotalCount++
		agg.Summary.TotalValue = agg.Summary.TotalValue.Add(amount)

		status := record.BucketStatus()
		switch status {
		case transaction.StatusDelivered:
			agg.Summary.CompletedCount++
		case transaction.StatusCanceled:
			agg.Summary.CanceledCount++
		}
		if record.Active() {
			agg.Summary.ActiveCount++
		}

		add(agg.TotalsByMethod, string(record.BucketMethod()), amount)
		add(agg.TotalsByStatus, string(status), amount)
		add(agg.TotalsByCity, cityKey(record.City), amount)

		ref := record.ReferenceTime()
		add(agg.TotalsByDay, ref.Format("2006-01-02"), amount)
		addHour(agg.TotalsByHour, ref.Hour(), amount)
	}

	agg.Summary.AverageTicket = AverageTicket(agg.Summary.TotalValue, agg.Summary.TotalCount)
	return agg
}

// AverageTicket divides the total value by the record count, defined as
// zero for an empty set.
func AverageTicket(totalValue decimal.Decimal, count int) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return totalValue.DivRound(decimal.NewFromInt(int64(count)), 2)
}

// GrowthRate is the percentage change between two period counts, defined
// as zero when the prior period is empty. Never NaN or infinite.
func GrowthRate(current, prior int) float64 {
	if prior == 0 {
		return 0
	}
	return float64(current-prior) / float64(prior) * 100
}

// ExpectedByMethod folds a record set into per-payment-method expected
// totals for cash-session opening. Every known method is present in the
// result even when its total is zero, so counting screens always show a
// complete row set.
func ExpectedByMethod(records []transaction.Record) map[transaction.PaymentMethod]decimal.Decimal {
	expected := make(map[transaction.PaymentMethod]decimal.Decimal, len(transaction.KnownMethods))
	for _, method := range transaction.KnownMethods {
		expected[method] = decimal.Zero
	}
	for _, record := range records {
		method := record.BucketMethod()
		expected[method] = expected[method].Add(record.PreferredAmount())
	}
	return expected
}

func add(buckets map[string]report.Bucket, key string, amount decimal.Decimal) {
	bucket := buckets[key]
	bucket.Count++
	bucket.Sum = bucket.Sum.Add(amount)
	buckets[key] = bucket
}

func addHour(buckets map[int]report.Bucket, hour int, amount decimal.Decimal) {
	bucket := buckets[hour]
	bucket.Count++
	bucket.Sum = bucket.Sum.Add(amount)
	buckets[hour] = bucket
}

// cityKey buckets records with no city under an explicit key instead of
// dropping them, keeping bucket counts equal to the record count.
func cityKey(city string) string {
	if city == "" {
		return "unknown"
	}
	return city
}
