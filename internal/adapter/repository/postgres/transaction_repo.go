package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/simaogato/transferflow-backend/internal/domain"
)

// uniqueViolation is the SQLSTATE postgres reports for a duplicate key
const uniqueViolation = "23505"

// transactionRepository implements domain.TransactionRepository
type transactionRepository struct {
	db *DB
}

// NewTransactionRepository creates a new ledger repository
func NewTransactionRepository(db *DB) domain.TransactionRepository {
	return &transactionRepository{db: db}
}

const transactionColumns = `id, reference, amount, fee, billed_amount, currency, description, created_at,
	status, status_message, commission_worthy, commission,
	source_account_number, destination_account_number, deleted`

// Create inserts a ledger entry
func (r *transactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.db.conn(ctx).ExecContext(ctx, query,
		tx.ID,
		tx.Reference,
		tx.Amount.String(),
		tx.Fee.String(),
		tx.BilledAmount.String(),
		string(tx.Currency),
		tx.Description,
		tx.CreatedAt,
		string(tx.Status),
		tx.StatusMessage,
		tx.CommissionWorthy,
		tx.Commission.String(),
		tx.SourceAccountNumber,
		tx.DestinationAccountNumber,
		tx.Deleted,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateReference, tx.Reference)
		}
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	return nil
}

// Update rewrites the mutable columns of a ledger entry
func (r *transactionRepository) Update(ctx context.Context, tx *domain.Transaction) error {
	query := `
		UPDATE transactions
		SET status = $1, status_message = $2, commission_worthy = $3, commission = $4, description = $5
		WHERE id = $6 AND deleted = FALSE
	`

	result, err := r.db.conn(ctx).ExecContext(ctx, query,
		string(tx.Status),
		tx.StatusMessage,
		tx.CommissionWorthy,
		tx.Commission.String(),
		tx.Description,
		tx.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", domain.ErrTransactionNotFound, tx.ID)
	}

	return nil
}

// GetByReference retrieves a ledger entry by its reference
func (r *transactionRepository) GetByReference(ctx context.Context, reference string) (*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE reference = $1 AND deleted = FALSE
	`

	tx, err := scanTransaction(r.db.conn(ctx).QueryRowContext(ctx, query, reference))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrTransactionNotFound, reference)
		}
		return nil, fmt.Errorf("failed to get transaction by reference: %w", err)
	}

	return tx, nil
}

// ListByStatusAndCreatedAtBetween returns entries of one status created in [start, end]
func (r *transactionRepository) ListByStatusAndCreatedAtBetween(ctx context.Context, status domain.TransactionStatus, start, end time.Time) ([]*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE status = $1 AND created_at BETWEEN $2 AND $3 AND deleted = FALSE
		ORDER BY created_at ASC
	`

	return r.list(ctx, query, string(status), start, end)
}

// ListByCreatedAtBetween returns all entries created in [start, end]
func (r *transactionRepository) ListByCreatedAtBetween(ctx context.Context, start, end time.Time) ([]*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE created_at BETWEEN $1 AND $2 AND deleted = FALSE
		ORDER BY created_at ASC
	`

	return r.list(ctx, query, start, end)
}

// Search returns one page of matching entries, newest first, and the total match count
func (r *transactionRepository) Search(ctx context.Context, filter *domain.TransactionFilter, page domain.PageRequest) ([]*domain.Transaction, int, error) {
	where, args, err := buildWhere(filter)
	if err != nil {
		return nil, 0, err
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM transactions WHERE ` + where
	if err := r.db.conn(ctx).QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	if total == 0 {
		return []*domain.Transaction{}, 0, nil
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM transactions
		WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, transactionColumns, where, len(args)+1, len(args)+2)
	args = append(args, page.Size, page.Offset())

	items, err := r.list(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

// filterColumns whitelists the columns a predicate may reference
var filterColumns = map[domain.FilterField]string{
	domain.FieldStatus:                   "status",
	domain.FieldSourceAccountNumber:      "source_account_number",
	domain.FieldDestinationAccountNumber: "destination_account_number",
	domain.FieldCreatedAt:                "created_at",
}

var filterOperators = map[domain.FilterOperator]string{
	domain.OpEqual:          "=",
	domain.OpGreaterOrEqual: ">=",
	domain.OpLessOrEqual:    "<=",
}

// buildWhere translates a filter into a WHERE clause with positional parameters.
// Values are always bound, never interpolated.
func buildWhere(filter *domain.TransactionFilter) (string, []any, error) {
	clauses := []string{"deleted = FALSE"}
	args := make([]any, 0)

	for _, p := range filter.Predicates() {
		column, ok := filterColumns[p.Field]
		if !ok {
			return "", nil, fmt.Errorf("unsupported filter field %q", p.Field)
		}
		op, ok := filterOperators[p.Operator]
		if !ok {
			return "", nil, fmt.Errorf("unsupported filter operator %q", p.Operator)
		}

		args = append(args, p.Value)
		clauses = append(clauses, fmt.Sprintf("%s %s $%d", column, op, len(args)))
	}

	return strings.Join(clauses, " AND "), args, nil
}

func (r *transactionRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Transaction, error) {
	rows, err := r.db.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	transactions := make([]*domain.Transaction, 0)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return transactions, nil
}

// rowScanner is implemented by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*domain.Transaction, error) {
	var tx domain.Transaction
	var amountStr, feeStr, billedStr, commissionStr string

	err := row.Scan(
		&tx.ID,
		&tx.Reference,
		&amountStr,
		&feeStr,
		&billedStr,
		&tx.Currency,
		&tx.Description,
		&tx.CreatedAt,
		&tx.Status,
		&tx.StatusMessage,
		&tx.CommissionWorthy,
		&commissionStr,
		&tx.SourceAccountNumber,
		&tx.DestinationAccountNumber,
		&tx.Deleted,
	)
	if err != nil {
		return nil, err
	}

	for _, field := range []struct {
		raw  string
		dest *decimal.Decimal
	}{
		{amountStr, &tx.Amount},
		{feeStr, &tx.Fee},
		{billedStr, &tx.BilledAmount},
		{commissionStr, &tx.Commission},
	} {
		value, err := decimal.NewFromString(field.raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse decimal column: %w", err)
		}
		*field.dest = value
	}

	return &tx, nil
}
