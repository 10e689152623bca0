package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/simaogato/transferflow-backend/internal/domain"
	"github.com/simaogato/transferflow-backend/internal/usecase/commission"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCommissionJob is a mock implementation of CommissionJob for testing
type MockCommissionJob struct {
	mock.Mock
}

func (m *MockCommissionJob) ProcessCommissions(ctx context.Context, now time.Time) (*commission.RunResult, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commission.RunResult), args.Error(1)
}

// MockSummaryJob is a mock implementation of SummaryJob for testing
type MockSummaryJob struct {
	mock.Mock
}

func (m *MockSummaryJob) GenerateDailySummary(ctx context.Context, now time.Time) (*domain.Summary, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Summary), args.Error(1)
}

func TestRegister_RejectsInvalidSpec(t *testing.T) {
	s := New(time.UTC, nil)

	err := s.RegisterCommission("every night", new(MockCommissionJob))

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "commission")
}

func TestRegister_SchedulesInZone(t *testing.T) {
	lagos, err := time.LoadLocation("Africa/Lagos")
	require.NoError(t, err)

	s := New(lagos, nil)
	require.NoError(t, s.RegisterCommission("0 1 * * *", new(MockCommissionJob)))
	require.NoError(t, s.RegisterSummary("0 2 * * *", new(MockSummaryJob)))

	entries := s.cron.Entries()
	require.Len(t, entries, 2)

	from := time.Date(2024, 5, 1, 12, 0, 0, 0, lagos)
	next := entries[0].Schedule.Next(from)
	assert.True(t, next.Equal(time.Date(2024, 5, 2, 1, 0, 0, 0, lagos)))
}

func TestRunJob_PassesZonedNow(t *testing.T) {
	lagos, err := time.LoadLocation("Africa/Lagos")
	require.NoError(t, err)

	job := new(MockCommissionJob)
	job.On("ProcessCommissions", mock.Anything, mock.MatchedBy(func(now time.Time) bool {
		return now.Location() == lagos
	})).Return(&commission.RunResult{Processed: 1}, nil).Once()

	s := New(lagos, nil)
	s.runJob("commission", func(ctx context.Context, now time.Time) error {
		_, err := job.ProcessCommissions(ctx, now)
		return err
	})

	job.AssertExpectations(t)
}

func TestRunJob_FailureIsContained(t *testing.T) {
	job := new(MockSummaryJob)
	job.On("GenerateDailySummary", mock.Anything, mock.Anything).Return(nil, errors.New("db down")).Once()

	s := New(time.UTC, nil)

	assert.NotPanics(t, func() {
		s.runJob("daily_summary", func(ctx context.Context, now time.Time) error {
			_, err := job.GenerateDailySummary(ctx, now)
			return err
		})
	})
	job.AssertExpectations(t)
}

func TestStartStop(t *testing.T) {
	s := New(time.UTC, nil)
	s.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	s.Stop(ctx)
	assert.NoError(t, ctx.Err())
}
