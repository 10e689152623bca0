package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/simaogato/transferflow-backend/internal/domain"
	"github.com/simaogato/transferflow-backend/internal/usecase/query"
	"github.com/simaogato/transferflow-backend/internal/usecase/transfer"
)

const messageUnexpected = "An unexpected error occurred"

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

// Handler serves the transfer API
type Handler struct {
	Transfers    TransferProcessor
	Transactions TransactionSearcher
	Summaries    DailySummarizer

	location *time.Location
	logger   *slog.Logger
}

// NewHandler creates a Handler that renders times in location
func NewHandler(transfers TransferProcessor, transactions TransactionSearcher, summaries DailySummarizer, location *time.Location, logger *slog.Logger) *Handler {
	if location == nil {
		location = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		Transfers:    transfers,
		Transactions: transactions,
		Summaries:    summaries,
		location:     location,
		logger:       logger,
	}
}

// Transfer API
func (h *Handler) Transfer(c *fiber.Ctx) error {
	var req TransferRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := req.Validate(); err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.Transfers.ProcessTransfer(c.UserContext(), req.toInput())
	if err != nil {
		return h.errorResponse(c, err)
	}

	view := newTransactionView(result.Transaction, h.location)
	if result.Success {
		return c.JSON(APIResponse{Success: true, Message: result.Message, Data: view})
	}

	status := fiber.StatusOK
	if errors.Is(result.Reason, domain.ErrAccountNotFound) {
		status = fiber.StatusNotFound
	}
	return c.Status(status).JSON(APIResponse{Success: false, Message: result.Message, Data: view})
}

// ListTransactions API
func (h *Handler) ListTransactions(c *fiber.Ctx) error {
	in, err := h.searchInput(c)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}

	page, err := h.Transactions.Search(c.UserContext(), in)
	if err != nil {
		return h.errorResponse(c, err)
	}

	return c.JSON(APIResponse{Success: true, Message: "Transactions retrieved successfully", Data: newPageView(page, h.location)})
}

// Summary API
func (h *Handler) Summary(c *fiber.Ctx) error {
	date := time.Now().In(h.location)
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.ParseInLocation(dateLayout, raw, h.location)
		if err != nil {
			return fail(c, fiber.StatusBadRequest, "date must be in yyyy-MM-dd format")
		}
		date = parsed
	}

	summary, err := h.Summaries.DailySummary(c.UserContext(), date)
	if err != nil {
		return h.errorResponse(c, err)
	}

	return c.JSON(APIResponse{Success: true, Message: "Summary generated successfully", Data: newSummaryView(summary, h.location)})
}

// Health API
func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(APIResponse{Success: true, Message: "ok"})
}

func (h *Handler) searchInput(c *fiber.Ctx) (query.SearchInput, error) {
	in := query.SearchInput{
		SourceAccountNumber:      c.Query("sourceAccountNumber"),
		DestinationAccountNumber: c.Query("destinationAccountNumber"),
	}

	if raw := c.Query("status"); raw != "" {
		status, err := domain.ParseTransactionStatus(raw)
		if err != nil {
			return in, err
		}
		in.Status = status
	}

	for _, p := range []struct {
		key  string
		dest **time.Time
	}{
		{"startDate", &in.StartDate},
		{"endDate", &in.EndDate},
	} {
		raw := c.Query(p.key)
		if raw == "" {
			continue
		}
		parsed, err := time.ParseInLocation(dateTimeLayout, raw, h.location)
		if err != nil {
			return in, fmt.Errorf("%s must be in yyyy-MM-dd HH:mm:ss format", p.key)
		}
		*p.dest = &parsed
	}

	var err error
	if in.Page, err = intQuery(c, "page", 0); err != nil {
		return in, err
	}
	if in.Size, err = intQuery(c, "size", domain.DefaultPageSize); err != nil {
		return in, err
	}

	return in, nil
}

func intQuery(c *fiber.Ctx, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", key)
	}
	return value, nil
}

// errorResponse maps service errors to status codes; store faults stay opaque
func (h *Handler) errorResponse(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return fail(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrDuplicateReference):
		return fail(c, fiber.StatusConflict, "Transaction reference already exists")
	case errors.Is(err, domain.ErrAccountNotFound), errors.Is(err, domain.ErrTransactionNotFound):
		return fail(c, fiber.StatusNotFound, err.Error())
	default:
		h.logger.ErrorContext(c.UserContext(), "Request failed",
			slog.String("path", c.Path()),
			slog.String("error", err.Error()))
		return fail(c, fiber.StatusInternalServerError, messageUnexpected)
	}
}

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(APIResponse{Success: false, Message: message})
}
