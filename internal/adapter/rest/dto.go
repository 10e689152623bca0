package rest

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simaogato/transferflow-backend/internal/domain"
	"github.com/simaogato/transferflow-backend/internal/usecase/transfer"
)

const (
	dateTimeLayout = "2006-01-02 15:04:05"
	dateLayout     = "2006-01-02"
)

// APIResponse is the envelope of every response body
type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// TransferRequest is the body of POST /transfer
type TransferRequest struct {
	Reference                string           `json:"reference"`
	Amount                   *decimal.Decimal `json:"amount"`
	Currency                 string           `json:"currency"`
	Description              string           `json:"description"`
	SourceAccountNumber      string           `json:"sourceAccountNumber"`
	DestinationAccountNumber string           `json:"destinationAccountNumber"`
}

// Validate rejects malformed bodies before they reach the engine
func (r TransferRequest) Validate() error {
	switch {
	case r.Reference == "":
		return fmt.Errorf("%w: reference is required", domain.ErrValidation)
	case r.Amount == nil:
		return fmt.Errorf("%w: amount is required", domain.ErrValidation)
	case r.Amount.LessThanOrEqual(decimal.Zero):
		return fmt.Errorf("%w: amount must be greater than zero", domain.ErrValidation)
	case r.Currency == "":
		return fmt.Errorf("%w: currency is required", domain.ErrValidation)
	case !domain.Currency(r.Currency).IsValid():
		return fmt.Errorf("%w: currency %q is not supported", domain.ErrValidation, r.Currency)
	case !domain.ValidAccountNumber(r.SourceAccountNumber):
		return fmt.Errorf("%w: sourceAccountNumber must be between %d and %d characters",
			domain.ErrValidation, domain.MinAccountNumberLength, domain.MaxAccountNumberLength)
	case !domain.ValidAccountNumber(r.DestinationAccountNumber):
		return fmt.Errorf("%w: destinationAccountNumber must be between %d and %d characters",
			domain.ErrValidation, domain.MinAccountNumberLength, domain.MaxAccountNumberLength)
	}
	return nil
}

func (r TransferRequest) toInput() transfer.TransferInput {
	return transfer.TransferInput{
		Reference:                r.Reference,
		Amount:                   *r.Amount,
		Currency:                 domain.Currency(r.Currency),
		Description:              r.Description,
		SourceAccountNumber:      r.SourceAccountNumber,
		DestinationAccountNumber: r.DestinationAccountNumber,
	}
}

// TransactionView is the external shape of a ledger entry
type TransactionView struct {
	Reference                string          `json:"reference"`
	Amount                   decimal.Decimal `json:"amount"`
	Fee                      decimal.Decimal `json:"fee"`
	Currency                 string          `json:"currency"`
	BilledAmount             decimal.Decimal `json:"billedAmount"`
	Description              string          `json:"description,omitempty"`
	CreatedAt                string          `json:"createdAt"`
	Status                   string          `json:"status"`
	StatusMessage            string          `json:"statusMessage"`
	CommissionWorthy         bool            `json:"commissionWorthy"`
	Commission               decimal.Decimal `json:"commission"`
	SourceAccountNumber      string          `json:"sourceAccountNumber"`
	DestinationAccountNumber string          `json:"destinationAccountNumber"`
}

func newTransactionView(tx *domain.Transaction, loc *time.Location) TransactionView {
	return TransactionView{
		Reference:                tx.Reference,
		Amount:                   tx.Amount,
		Fee:                      tx.Fee,
		Currency:                 string(tx.Currency),
		BilledAmount:             tx.BilledAmount,
		Description:              tx.Description,
		CreatedAt:                tx.CreatedAt.In(loc).Format(dateTimeLayout),
		Status:                   string(tx.Status),
		StatusMessage:            tx.StatusMessage,
		CommissionWorthy:         tx.CommissionWorthy,
		Commission:               tx.Commission,
		SourceAccountNumber:      tx.SourceAccountNumber,
		DestinationAccountNumber: tx.DestinationAccountNumber,
	}
}

// PageView is one page of ledger entries
type PageView struct {
	Content       []TransactionView `json:"content"`
	Page          int               `json:"page"`
	Size          int               `json:"size"`
	TotalElements int               `json:"totalElements"`
	TotalPages    int               `json:"totalPages"`
}

func newPageView(page *domain.TransactionPage, loc *time.Location) PageView {
	content := make([]TransactionView, 0, len(page.Items))
	for _, tx := range page.Items {
		content = append(content, newTransactionView(tx, loc))
	}
	return PageView{
		Content:       content,
		Page:          page.Page,
		Size:          page.Size,
		TotalElements: page.TotalElements,
		TotalPages:    page.TotalPages,
	}
}

// SummaryView is the external shape of a ledger summary
type SummaryView struct {
	StartDate                    string          `json:"startDate"`
	EndDate                      string          `json:"endDate"`
	TotalTransactions            int             `json:"totalTransactions"`
	SuccessfulTransactions       int             `json:"successfulTransactions"`
	FailedTransactions           int             `json:"failedTransactions"`
	InsufficientFundTransactions int             `json:"insufficientFundTransactions"`
	TotalAmount                  decimal.Decimal `json:"totalAmount"`
	TotalCommission              decimal.Decimal `json:"totalCommission"`
}

func newSummaryView(s *domain.Summary, loc *time.Location) SummaryView {
	return SummaryView{
		StartDate:                    s.StartDate.In(loc).Format(dateTimeLayout),
		EndDate:                      s.EndDate.In(loc).Format(dateTimeLayout),
		TotalTransactions:            s.TotalTransactions,
		SuccessfulTransactions:       s.SuccessfulTransactions,
		FailedTransactions:           s.FailedTransactions,
		InsufficientFundTransactions: s.InsufficientFundTransactions,
		TotalAmount:                  s.TotalAmount,
		TotalCommission:              s.TotalCommission,
	}
}
