package query

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/transferflow-backend/internal/adapter/repository/memory"
	"github.com/simaogato/transferflow-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	alice = "1000000001"
	bob   = "2000000002"
	carol = "3000000003"
)

var base = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

type searchFailure struct {
	domain.TransactionRepository
}

func (searchFailure) Search(ctx context.Context, filter *domain.TransactionFilter, page domain.PageRequest) ([]*domain.Transaction, int, error) {
	return nil, 0, errors.New("timeout")
}

func seed(t *testing.T) domain.TransactionRepository {
	t.Helper()
	repo := memory.NewTransactionRepository(memory.NewStore())

	rows := []struct {
		ref    string
		src    string
		dst    string
		status domain.TransactionStatus
		hours  int
	}{
		{"T1", alice, bob, domain.TransactionStatusSuccessful, 0},
		{"T2", alice, carol, domain.TransactionStatusFailed, 1},
		{"T3", bob, alice, domain.TransactionStatusSuccessful, 2},
		{"T4", alice, bob, domain.TransactionStatusInsufficientFund, 3},
		{"T5", carol, bob, domain.TransactionStatusSuccessful, 26},
	}

	for _, r := range rows {
		require.NoError(t, repo.Create(context.Background(), &domain.Transaction{
			ID:                       uuid.New(),
			Reference:                r.ref,
			Amount:                   decimal.NewFromInt(10),
			Fee:                      decimal.Zero,
			BilledAmount:             decimal.NewFromInt(10),
			Currency:                 domain.CurrencyNGN,
			CreatedAt:                base.Add(time.Duration(r.hours) * time.Hour),
			Status:                   r.status,
			SourceAccountNumber:      r.src,
			DestinationAccountNumber: r.dst,
		}))
	}
	return repo
}

func references(page *domain.TransactionPage) []string {
	refs := make([]string, 0, len(page.Items))
	for _, tx := range page.Items {
		refs = append(refs, tx.Reference)
	}
	return refs
}

func timePtr(t time.Time) *time.Time { return &t }

func TestSearch_Filters(t *testing.T) {
	service := NewQueryService(seed(t), nil)

	tests := []struct {
		name  string
		input SearchInput
		want  []string
	}{
		{name: "no filters returns everything newest first", input: SearchInput{}, want: []string{"T5", "T4", "T3", "T2", "T1"}},
		{name: "status", input: SearchInput{Status: domain.TransactionStatusSuccessful}, want: []string{"T5", "T3", "T1"}},
		{name: "source", input: SearchInput{SourceAccountNumber: alice}, want: []string{"T4", "T2", "T1"}},
		{name: "destination", input: SearchInput{DestinationAccountNumber: bob}, want: []string{"T5", "T4", "T1"}},
		{
			name:  "conjunction of source and status",
			input: SearchInput{SourceAccountNumber: alice, Status: domain.TransactionStatusSuccessful},
			want:  []string{"T1"},
		},
		{
			name:  "between",
			input: SearchInput{StartDate: timePtr(base.Add(time.Hour)), EndDate: timePtr(base.Add(3 * time.Hour))},
			want:  []string{"T4", "T3", "T2"},
		},
		{name: "since", input: SearchInput{StartDate: timePtr(base.Add(3 * time.Hour))}, want: []string{"T5", "T4"}},
		{name: "until", input: SearchInput{EndDate: timePtr(base.Add(time.Hour))}, want: []string{"T2", "T1"}},
		{name: "no match is empty", input: SearchInput{SourceAccountNumber: "9999999999"}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := service.Search(context.Background(), tt.input)

			require.NoError(t, err)
			assert.Equal(t, tt.want, references(page))
			assert.Equal(t, len(tt.want), page.TotalElements)
		})
	}
}

func TestSearch_Pagination(t *testing.T) {
	service := NewQueryService(seed(t), nil)

	page, err := service.Search(context.Background(), SearchInput{Page: 1, Size: 2})

	require.NoError(t, err)
	assert.Equal(t, []string{"T3", "T2"}, references(page))
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 2, page.Size)
	assert.Equal(t, 5, page.TotalElements)
	assert.Equal(t, 3, page.TotalPages)
}

func TestSearch_PagePastTheEnd(t *testing.T) {
	service := NewQueryService(seed(t), nil)

	for _, pageNumber := range []int{3, math.MaxInt / 10, math.MaxInt} {
		var page *domain.TransactionPage
		var err error
		assert.NotPanics(t, func() {
			page, err = service.Search(context.Background(), SearchInput{Page: pageNumber, Size: 20})
		})

		require.NoError(t, err)
		assert.Empty(t, page.Items)
		assert.Equal(t, pageNumber, page.Page)
		assert.Equal(t, 5, page.TotalElements)
	}
}

func TestSearch_DefaultsPageSize(t *testing.T) {
	service := NewQueryService(seed(t), nil)

	page, err := service.Search(context.Background(), SearchInput{Page: -3, Size: 0})

	require.NoError(t, err)
	assert.Equal(t, 0, page.Page)
	assert.Equal(t, domain.DefaultPageSize, page.Size)
	assert.Equal(t, 1, page.TotalPages)
}

func TestSearch_ValidationFailures(t *testing.T) {
	service := NewQueryService(seed(t), nil)

	tests := []struct {
		name  string
		input SearchInput
	}{
		{name: "unknown status", input: SearchInput{Status: "PENDING"}},
		{name: "short source", input: SearchInput{SourceAccountNumber: "12"}},
		{name: "long destination", input: SearchInput{DestinationAccountNumber: "123456789012345678901"}},
		{name: "inverted dates", input: SearchInput{StartDate: timePtr(base), EndDate: timePtr(base.Add(-time.Hour))}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Search(context.Background(), tt.input)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestSearch_RepositoryError(t *testing.T) {
	service := NewQueryService(searchFailure{}, nil)

	_, err := service.Search(context.Background(), SearchInput{})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to search transactions")
}

func TestSearchInput_Filter(t *testing.T) {
	start := base
	in := SearchInput{Status: domain.TransactionStatusFailed, DestinationAccountNumber: bob, StartDate: &start}

	predicates := in.Filter().Predicates()

	require.Len(t, predicates, 3)
	assert.Equal(t, domain.FieldStatus, predicates[0].Field)
	assert.Equal(t, domain.FieldDestinationAccountNumber, predicates[1].Field)
	assert.Equal(t, domain.FieldCreatedAt, predicates[2].Field)
	assert.Equal(t, domain.OpGreaterOrEqual, predicates[2].Operator)
}
