package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/simaogato/transferflow-backend/internal/domain"
)

// Store is the shared in-memory state behind the memory repositories.
// Repositories hand out copies so callers never alias stored records.
type Store struct {
	mu           sync.RWMutex
	accounts     map[string]*domain.Account
	transactions map[uuid.UUID]*domain.Transaction
	references   map[string]uuid.UUID
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		accounts:     make(map[string]*domain.Account),
		transactions: make(map[uuid.UUID]*domain.Transaction),
		references:   make(map[string]uuid.UUID),
	}
}

type journalKey struct{}

// journal collects undo steps for writes made inside WithinTransaction
type journal struct {
	mu   sync.Mutex
	undo []func()
}

// record registers an undo step if ctx carries a journal. Called with Store.mu held.
func record(ctx context.Context, step func()) {
	j, ok := ctx.Value(journalKey{}).(*journal)
	if !ok {
		return
	}
	j.mu.Lock()
	j.undo = append(j.undo, step)
	j.mu.Unlock()
}

// transactor implements domain.Transactor with an undo journal
type transactor struct {
	store *Store
}

// NewTransactor creates a transactor over the store.
// Isolation between concurrent units of work comes from the caller's account locks.
func NewTransactor(store *Store) domain.Transactor {
	return &transactor{store: store}
}

// WithinTransaction runs fn and replays the undo journal in reverse if it fails
func (t *transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, nested := ctx.Value(journalKey{}).(*journal); nested {
		return fn(ctx)
	}

	j := &journal{}
	if err := fn(context.WithValue(ctx, journalKey{}, j)); err != nil {
		t.store.mu.Lock()
		j.mu.Lock()
		for i := len(j.undo) - 1; i >= 0; i-- {
			j.undo[i]()
		}
		j.mu.Unlock()
		t.store.mu.Unlock()
		return err
	}

	return nil
}
