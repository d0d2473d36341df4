package filter

import (
	"strings"

	"github.com/parkops/backoffice/internal/domain/transaction"
)

// Scope holds the optional dimension filters applied after the date filter.
// Empty or "all" values match everything.
type Scope struct {
	Search string
	Status string
	City   string
	Method string
}

// IsZero reports whether the scope filters nothing
func (s Scope) IsZero() bool {
	return noop(s.Search) && noop(s.Status) && noop(s.City) && noop(s.Method)
}

func noop(value string) bool {
	return value == "" || strings.EqualFold(value, "all")
}

// Matches applies every scope predicate to a record, combined with AND
func (s Scope) Matches(record transaction.Record) bool {
	if !noop(s.Status) && string(record.BucketStatus()) != s.Status {
		return false
	}
	if !noop(s.City) && !strings.EqualFold(record.City, s.City) {
		return false
	}
	if !noop(s.Method) && string(record.BucketMethod()) != s.Method {
		return false
	}
	if !noop(s.Search) && !s.matchesSearch(record) {
		return false
	}
	return true
}

// matchesSearch checks the free-text term against id, plate and client name
func (s Scope) matchesSearch(record transaction.Record) bool {
	term := strings.ToLower(s.Search)
	for _, field := range []string{record.ID, record.Plate, record.ClientName} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// ByScope keeps the records matching every scope predicate
func ByScope(records []transaction.Record, scope Scope) []transaction.Record {
	if scope.IsZero() {
		return records
	}

	filtered := make([]transaction.Record, 0, len(records))
	for _, record := range records {
		if scope.Matches(record) {
			filtered = append(filtered, record)
		}
	}
	return filtered
}
