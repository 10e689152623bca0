package domain

import (
	"math"
	"time"
)

// FilterField names a ledger column a predicate applies to
type FilterField string

const (
	FieldStatus                   FilterField = "status"
	FieldSourceAccountNumber      FilterField = "source_account_number"
	FieldDestinationAccountNumber FilterField = "destination_account_number"
	FieldCreatedAt                FilterField = "created_at"
)

// FilterOperator is the comparison applied by a predicate
type FilterOperator string

const (
	OpEqual          FilterOperator = "="
	OpGreaterOrEqual FilterOperator = ">="
	OpLessOrEqual    FilterOperator = "<="
)

// Predicate is a single comparison against a ledger column.
// Value is a string for text columns and a time.Time for FieldCreatedAt.
type Predicate struct {
	Field    FilterField
	Operator FilterOperator
	Value    any
}

// TransactionFilter is a conjunction of predicates over the ledger.
// Storage adapters translate it; they never see raw user input.
type TransactionFilter struct {
	predicates []Predicate
}

// NewTransactionFilter returns an empty filter that matches every entry
func NewTransactionFilter() *TransactionFilter {
	return &TransactionFilter{}
}

// WithStatus restricts to one status. An empty status adds nothing.
func (f *TransactionFilter) WithStatus(status TransactionStatus) *TransactionFilter {
	if status == "" {
		return f
	}
	return f.add(FieldStatus, OpEqual, string(status))
}

// WithSourceAccountNumber restricts to one source account. Empty adds nothing.
func (f *TransactionFilter) WithSourceAccountNumber(number string) *TransactionFilter {
	if number == "" {
		return f
	}
	return f.add(FieldSourceAccountNumber, OpEqual, number)
}

// WithDestinationAccountNumber restricts to one destination account. Empty adds nothing.
func (f *TransactionFilter) WithDestinationAccountNumber(number string) *TransactionFilter {
	if number == "" {
		return f
	}
	return f.add(FieldDestinationAccountNumber, OpEqual, number)
}

// CreatedBetween restricts created_at to an inclusive range.
// A nil bound leaves that side open, giving "since" or "until" semantics.
func (f *TransactionFilter) CreatedBetween(start, end *time.Time) *TransactionFilter {
	if start != nil {
		f.add(FieldCreatedAt, OpGreaterOrEqual, *start)
	}
	if end != nil {
		f.add(FieldCreatedAt, OpLessOrEqual, *end)
	}
	return f
}

func (f *TransactionFilter) add(field FilterField, op FilterOperator, value any) *TransactionFilter {
	f.predicates = append(f.predicates, Predicate{Field: field, Operator: op, Value: value})
	return f
}

// Predicates returns a copy of the predicate list in insertion order
func (f *TransactionFilter) Predicates() []Predicate {
	if f == nil {
		return nil
	}
	out := make([]Predicate, len(f.predicates))
	copy(out, f.predicates)
	return out
}

// Matches evaluates the filter against an in-memory entry.
// Soft-deleted entries never match.
func (f *TransactionFilter) Matches(tx *Transaction) bool {
	if tx.Deleted {
		return false
	}
	for _, p := range f.Predicates() {
		if !p.matches(tx) {
			return false
		}
	}
	return true
}

func (p Predicate) matches(tx *Transaction) bool {
	switch p.Field {
	case FieldStatus:
		return compareText(string(tx.Status), p.Operator, p.Value)
	case FieldSourceAccountNumber:
		return compareText(tx.SourceAccountNumber, p.Operator, p.Value)
	case FieldDestinationAccountNumber:
		return compareText(tx.DestinationAccountNumber, p.Operator, p.Value)
	case FieldCreatedAt:
		bound, ok := p.Value.(time.Time)
		if !ok {
			return false
		}
		switch p.Operator {
		case OpEqual:
			return tx.CreatedAt.Equal(bound)
		case OpGreaterOrEqual:
			return !tx.CreatedAt.Before(bound)
		case OpLessOrEqual:
			return !tx.CreatedAt.After(bound)
		}
	}
	return false
}

func compareText(actual string, op FilterOperator, value any) bool {
	expected, ok := value.(string)
	if !ok || op != OpEqual {
		return false
	}
	return actual == expected
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageRequest is a zero-based page of a result set
type PageRequest struct {
	Page int
	Size int
}

// Normalize clamps the request into a usable page
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 0 {
		p.Page = 0
	}
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

// Offset is the number of rows skipped before this page.
// It saturates at math.MaxInt instead of overflowing for very large pages.
func (p PageRequest) Offset() int {
	if p.Page <= 0 || p.Size <= 0 {
		return 0
	}
	if p.Page > math.MaxInt/p.Size {
		return math.MaxInt
	}
	return p.Page * p.Size
}

// TransactionPage is one page of ledger entries plus totals for the whole result set
type TransactionPage struct {
	Items         []*Transaction
	Page          int
	Size          int
	TotalElements int
	TotalPages    int
}

// NewTransactionPage builds a page from the items of one page and the overall count
func NewTransactionPage(items []*Transaction, total int, req PageRequest) *TransactionPage {
	if items == nil {
		items = []*Transaction{}
	}
	totalPages := 0
	if req.Size > 0 {
		totalPages = (total + req.Size - 1) / req.Size
	}
	return &TransactionPage{
		Items:         items,
		Page:          req.Page,
		Size:          req.Size,
		TotalElements: total,
		TotalPages:    totalPages,
	}
}
