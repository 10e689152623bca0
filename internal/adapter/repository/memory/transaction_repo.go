package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/simaogato/transferflow-backend/internal/domain"
)

// transactionRepository implements domain.TransactionRepository
type transactionRepository struct {
	store *Store
}

// NewTransactionRepository creates a new in-memory ledger repository
func NewTransactionRepository(store *Store) domain.TransactionRepository {
	return &transactionRepository{store: store}
}

func (r *transactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.references[tx.Reference]; exists {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateReference, tx.Reference)
	}
	if _, exists := r.store.transactions[tx.ID]; exists {
		return fmt.Errorf("transaction %s already exists", tx.ID)
	}

	cp := *tx
	r.store.transactions[cp.ID] = &cp
	r.store.references[cp.Reference] = cp.ID
	record(ctx, func() {
		delete(r.store.transactions, cp.ID)
		delete(r.store.references, cp.Reference)
	})

	return nil
}

func (r *transactionRepository) Update(ctx context.Context, tx *domain.Transaction) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	previous, exists := r.store.transactions[tx.ID]
	if !exists || previous.Deleted {
		return fmt.Errorf("%w: %s", domain.ErrTransactionNotFound, tx.ID)
	}

	cp := *tx
	r.store.transactions[tx.ID] = &cp
	record(ctx, func() { r.store.transactions[previous.ID] = previous })

	return nil
}

func (r *transactionRepository) GetByReference(ctx context.Context, reference string) (*domain.Transaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	id, exists := r.store.references[reference]
	if !exists {
		return nil, fmt.Errorf("%w: %s", domain.ErrTransactionNotFound, reference)
	}

	tx := r.store.transactions[id]
	if tx.Deleted {
		return nil, fmt.Errorf("%w: %s", domain.ErrTransactionNotFound, reference)
	}

	cp := *tx
	return &cp, nil
}

func (r *transactionRepository) ListByStatusAndCreatedAtBetween(ctx context.Context, status domain.TransactionStatus, start, end time.Time) ([]*domain.Transaction, error) {
	filter := domain.NewTransactionFilter().WithStatus(status).CreatedBetween(&start, &end)
	return r.list(filter), nil
}

func (r *transactionRepository) ListByCreatedAtBetween(ctx context.Context, start, end time.Time) ([]*domain.Transaction, error) {
	filter := domain.NewTransactionFilter().CreatedBetween(&start, &end)
	return r.list(filter), nil
}

func (r *transactionRepository) Search(ctx context.Context, filter *domain.TransactionFilter, page domain.PageRequest) ([]*domain.Transaction, int, error) {
	if filter == nil {
		filter = domain.NewTransactionFilter()
	}

	matched := r.list(filter)
	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID.String() > matched[j].ID.String()
	})

	total := len(matched)
	start := page.Offset()
	if start < 0 || start >= total {
		return []*domain.Transaction{}, total, nil
	}
	end := start + page.Size
	if end > total || end < start {
		end = total
	}

	return matched[start:end], total, nil
}

// list returns copies of every entry matching filter, oldest first
func (r *transactionRepository) list(filter *domain.TransactionFilter) []*domain.Transaction {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make([]*domain.Transaction, 0)
	for _, tx := range r.store.transactions {
		if filter.Matches(tx) {
			cp := *tx
			result = append(result, &cp)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	return result
}
