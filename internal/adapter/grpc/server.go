package grpc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/simaogato/transferflow-backend/internal/domain"
	"github.com/simaogato/transferflow-backend/internal/usecase/query"
	"github.com/simaogato/transferflow-backend/internal/usecase/transfer"
)

const (
	dateTimeLayout = "2006-01-02 15:04:05"
	dateLayout     = "2006-01-02"
)

// TransferProcessor runs a transfer request through the engine
type TransferProcessor interface {
	ProcessTransfer(ctx context.Context, in transfer.TransferInput) (*transfer.TransferResult, error)
}

// TransactionSearcher pages through the ledger
type TransactionSearcher interface {
	Search(ctx context.Context, in query.SearchInput) (*domain.TransactionPage, error)
}

// DailySummarizer builds the summary of one calendar day
type DailySummarizer interface {
	DailySummary(ctx context.Context, date time.Time) (*domain.Summary, error)
}

// Server implements TransferServiceServer on top of the use cases
type Server struct {
	Transfers    TransferProcessor
	Transactions TransactionSearcher
	Summaries    DailySummarizer

	location *time.Location
	logger   *slog.Logger
}

// NewServer creates a new gRPC server instance
func NewServer(transfers TransferProcessor, transactions TransactionSearcher, summaries DailySummarizer, location *time.Location, logger *slog.Logger) *Server {
	if location == nil {
		location = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		Transfers:    transfers,
		Transactions: transactions,
		Summaries:    summaries,
		location:     location,
		logger:       logger,
	}
}

// Transfer handles the Transfer RPC. Business failures come back as
// success=false documents; an unknown account is NotFound.
func (s *Server) Transfer(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()

	amount, err := decimalField(fields, "amount")
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid amount format: %v", err)
	}

	in := transfer.TransferInput{
		Reference:                stringField(fields, "reference"),
		Amount:                   amount,
		Currency:                 domain.Currency(stringField(fields, "currency")),
		Description:              stringField(fields, "description"),
		SourceAccountNumber:      stringField(fields, "sourceAccountNumber"),
		DestinationAccountNumber: stringField(fields, "destinationAccountNumber"),
	}
	if err := in.Validate(); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	result, err := s.Transfers.ProcessTransfer(ctx, in)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}

	if errors.Is(result.Reason, domain.ErrAccountNotFound) {
		return nil, status.Error(codes.NotFound, result.Message)
	}

	return envelope(result.Success, result.Message, transactionDocument(result.Transaction, s.location))
}

// ListTransactions handles the ListTransactions RPC
func (s *Server) ListTransactions(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	in, err := s.searchInput(req.GetFields())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	page, err := s.Transactions.Search(ctx, in)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}

	content := make([]any, 0, len(page.Items))
	for _, tx := range page.Items {
		content = append(content, transactionDocument(tx, s.location))
	}

	return envelope(true, "Transactions retrieved successfully", map[string]any{
		"content":       content,
		"page":          page.Page,
		"size":          page.Size,
		"totalElements": page.TotalElements,
		"totalPages":    page.TotalPages,
	})
}

// GetSummary handles the GetSummary RPC. An empty date means today.
func (s *Server) GetSummary(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	date := time.Now().In(s.location)
	if raw := stringField(req.GetFields(), "date"); raw != "" {
		parsed, err := time.ParseInLocation(dateLayout, raw, s.location)
		if err != nil {
			return nil, status.Error(codes.InvalidArgument, "date must be in yyyy-MM-dd format")
		}
		date = parsed
	}

	summary, err := s.Summaries.DailySummary(ctx, date)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}

	return envelope(true, "Summary generated successfully", map[string]any{
		"startDate":                    summary.StartDate.In(s.location).Format(dateTimeLayout),
		"endDate":                      summary.EndDate.In(s.location).Format(dateTimeLayout),
		"totalTransactions":            summary.TotalTransactions,
		"successfulTransactions":       summary.SuccessfulTransactions,
		"failedTransactions":           summary.FailedTransactions,
		"insufficientFundTransactions": summary.InsufficientFundTransactions,
		"totalAmount":                  summary.TotalAmount.String(),
		"totalCommission":              summary.TotalCommission.String(),
	})
}

func (s *Server) searchInput(fields map[string]*structpb.Value) (query.SearchInput, error) {
	in := query.SearchInput{
		SourceAccountNumber:      stringField(fields, "sourceAccountNumber"),
		DestinationAccountNumber: stringField(fields, "destinationAccountNumber"),
		Size:                     domain.DefaultPageSize,
	}

	if raw := stringField(fields, "status"); raw != "" {
		st, err := domain.ParseTransactionStatus(raw)
		if err != nil {
			return in, err
		}
		in.Status = st
	}

	for _, p := range []struct {
		key  string
		dest **time.Time
	}{
		{"startDate", &in.StartDate},
		{"endDate", &in.EndDate},
	} {
		raw := stringField(fields, p.key)
		if raw == "" {
			continue
		}
		parsed, err := time.ParseInLocation(dateTimeLayout, raw, s.location)
		if err != nil {
			return in, fmt.Errorf("%s must be in yyyy-MM-dd HH:mm:ss format", p.key)
		}
		*p.dest = &parsed
	}

	for _, p := range []struct {
		key  string
		dest *int
	}{
		{"page", &in.Page},
		{"size", &in.Size},
	} {
		v, ok := fields[p.key]
		if !ok {
			continue
		}
		n, isNumber := v.GetKind().(*structpb.Value_NumberValue)
		if !isNumber || n.NumberValue < 0 || n.NumberValue > math.MaxInt32 || n.NumberValue != math.Trunc(n.NumberValue) {
			return in, fmt.Errorf("%s must be a non-negative integer", p.key)
		}
		*p.dest = int(n.NumberValue)
	}

	return in, nil
}

// mapError converts use-case errors into gRPC status errors
func (s *Server) mapError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrDuplicateReference):
		return status.Error(codes.AlreadyExists, "Transaction reference already exists")
	case errors.Is(err, domain.ErrAccountNotFound), errors.Is(err, domain.ErrTransactionNotFound):
		return status.Error(codes.NotFound, err.Error())
	default:
		s.logger.ErrorContext(ctx, "RPC failed", slog.String("error", err.Error()))
		return status.Error(codes.Internal, "An unexpected error occurred")
	}
}

func envelope(success bool, message string, data map[string]any) (*structpb.Struct, error) {
	doc, err := structpb.NewStruct(map[string]any{
		"success": success,
		"message": message,
		"data":    data,
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	return doc, nil
}

// transactionDocument renders amounts as strings to keep their scale
func transactionDocument(tx *domain.Transaction, loc *time.Location) map[string]any {
	return map[string]any{
		"reference":                tx.Reference,
		"amount":                   tx.Amount.String(),
		"fee":                      tx.Fee.String(),
		"currency":                 string(tx.Currency),
		"billedAmount":             tx.BilledAmount.String(),
		"description":              tx.Description,
		"createdAt":                tx.CreatedAt.In(loc).Format(dateTimeLayout),
		"status":                   string(tx.Status),
		"statusMessage":            tx.StatusMessage,
		"commissionWorthy":         tx.CommissionWorthy,
		"commission":               tx.Commission.String(),
		"sourceAccountNumber":      tx.SourceAccountNumber,
		"destinationAccountNumber": tx.DestinationAccountNumber,
	}
}

func stringField(fields map[string]*structpb.Value, key string) string {
	return fields[key].GetStringValue()
}

// decimalField accepts the amount as a string or a JSON number
func decimalField(fields map[string]*structpb.Value, key string) (decimal.Decimal, error) {
	v, ok := fields[key]
	if !ok {
		return decimal.Zero, nil
	}
	switch kind := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		return decimal.NewFromString(kind.StringValue)
	case *structpb.Value_NumberValue:
		return decimal.NewFromFloat(kind.NumberValue), nil
	default:
		return decimal.Zero, fmt.Errorf("%s must be a string or a number", key)
	}
}
