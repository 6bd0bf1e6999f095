package measurements

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/highbelief/solar-monitor-go/internal/database/models"
	"github.com/highbelief/solar-monitor-go/internal/database/repositories"
	apperrors "github.com/highbelief/solar-monitor-go/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockMeasurementRepository implements repositories.MeasurementRepository for testing
type MockMeasurementRepository struct {
	mock.Mock
}

func (m *MockMeasurementRepository) FindBetween(ctx context.Context, start, end time.Time) ([]*models.Measurement, error) {
	args := m.Called(ctx, start, end)
	return args.Get(0).([]*models.Measurement), args.Error(1)
}

func (m *MockMeasurementRepository) SummaryByPeriod(ctx context.Context, start, end time.Time, labelFormat string) ([]models.PeriodSummary, error) {
	args := m.Called(ctx, start, end, labelFormat)
	return args.Get(0).([]models.PeriodSummary), args.Error(1)
}

func (m *MockMeasurementRepository) Latest(ctx context.Context) (*models.Measurement, error) {
	args := m.Called(ctx)
	return args.Get(0).(*models.Measurement), args.Error(1)
}

func (m *MockMeasurementRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMeasurementRepository) Create(ctx context.Context, measurement *models.Measurement) error {
	return m.Called(ctx, measurement).Error(0)
}

func (m *MockMeasurementRepository) CreateBatch(ctx context.Context, measurements []*models.Measurement) error {
	return m.Called(ctx, measurements).Error(0)
}

type recordedQuery struct {
	operation string
	failed    bool
}

type fakeRecorder struct {
	queries []recordedQuery
}

func (r *fakeRecorder) ObserveQuery(operation string, _ time.Duration, err error) {
	r.queries = append(r.queries, recordedQuery{operation, err != nil})
}

var seoul = func() *time.Location {
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		panic(err)
	}
	return loc
}()

func newTestService(repo repositories.MeasurementRepository, recorder QueryRecorder) *Service {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewService(repo, Config{
		MaxRange:   48 * time.Hour,
		StaleAfter: time.Hour,
		Location:   seoul,
		Recorder:   recorder,
	}, log)
}

func TestNewService_Defaults(t *testing.T) {
	s := NewService(&MockMeasurementRepository{}, Config{}, nil)
	assert.Equal(t, DefaultStaleAfter, s.StaleAfter())
	assert.Equal(t, time.UTC, s.Location())
	assert.Equal(t, DefaultMaxRange, s.maxRange)
}

func TestService_ParseTimestamp(t *testing.T) {
	s := newTestService(&MockMeasurementRepository{}, nil)

	local, err := s.ParseTimestamp("2025-05-01T05:00:00")
	require.NoError(t, err)
	assert.True(t, time.Date(2025, 5, 1, 5, 0, 0, 0, seoul).Equal(local))
	assert.Equal(t, seoul, local.Location())

	zoned, err := s.ParseTimestamp("2025-04-30T20:00:00Z")
	require.NoError(t, err)
	assert.True(t, local.Equal(zoned))

	_, err = s.ParseTimestamp("yesterday")
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
}

func TestService_GetMeasurements(t *testing.T) {
	repo := &MockMeasurementRepository{}
	recorder := &fakeRecorder{}
	s := newTestService(repo, recorder)
	ctx := context.Background()
	start := time.Date(2025, 5, 1, 0, 0, 0, 0, seoul)
	end := start.Add(24 * time.Hour)

	rows := []*models.Measurement{{ID: 1, MeasuredAt: start.Add(time.Hour)}}
	repo.On("FindBetween", ctx, start, end).Return(rows, nil).Once()

	got, err := s.GetMeasurements(ctx, start, end)
	require.NoError(t, err)
	assert.Equal(t, rows, got)
	assert.Equal(t, []recordedQuery{{"measurements.find_between", false}}, recorder.queries)
	repo.AssertExpectations(t)
}

func TestService_GetMeasurementsValidation(t *testing.T) {
	repo := &MockMeasurementRepository{}
	s := newTestService(repo, nil)
	ctx := context.Background()
	start := time.Date(2025, 5, 1, 0, 0, 0, 0, seoul)

	_, err := s.GetMeasurements(ctx, start, start)
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)

	_, err = s.GetMeasurements(ctx, start, start.Add(-time.Minute))
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)

	_, err = s.GetMeasurements(ctx, start, start.Add(49*time.Hour))
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)

	repo.AssertNotCalled(t, "FindBetween", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_GetMeasurementsStorageFailure(t *testing.T) {
	repo := &MockMeasurementRepository{}
	recorder := &fakeRecorder{}
	s := newTestService(repo, recorder)
	cause := errors.New("disk I/O error")
	repo.On("FindBetween", mock.Anything, mock.Anything, mock.Anything).Return([]*models.Measurement(nil), cause)

	start := time.Date(2025, 5, 1, 0, 0, 0, 0, seoul)
	_, err := s.GetMeasurements(context.Background(), start, start.Add(time.Hour))
	assert.ErrorIs(t, err, apperrors.ErrStorageUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.True(t, recorder.queries[0].failed)
}

func TestService_GetMeasurementsEmpty(t *testing.T) {
	repo := &MockMeasurementRepository{}
	s := newTestService(repo, nil)
	repo.On("FindBetween", mock.Anything, mock.Anything, mock.Anything).Return([]*models.Measurement(nil), nil)

	start := time.Date(2025, 5, 1, 0, 0, 0, 0, seoul)
	got, err := s.GetMeasurements(context.Background(), start, start.Add(time.Hour))
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestService_GetLatest(t *testing.T) {
	repo := &MockMeasurementRepository{}
	s := newTestService(repo, nil)
	ctx := context.Background()

	repo.On("Latest", ctx).Return((*models.Measurement)(nil), repositories.ErrNotFound).Once()
	_, err := s.GetLatest(ctx)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	repo.On("Latest", ctx).Return((*models.Measurement)(nil), errors.New("locked")).Once()
	_, err = s.GetLatest(ctx)
	assert.ErrorIs(t, err, apperrors.ErrStorageUnavailable)

	latest := &models.Measurement{ID: 9}
	repo.On("Latest", ctx).Return(latest, nil).Once()
	got, err := s.GetLatest(ctx)
	require.NoError(t, err)
	assert.Equal(t, latest, got)
}

func TestService_Freshness(t *testing.T) {
	repo := &MockMeasurementRepository{}
	s := newTestService(repo, nil)
	ctx := context.Background()
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, seoul)

	repo.On("Latest", ctx).Return((*models.Measurement)(nil), repositories.ErrNotFound).Once()
	report, err := s.Freshness(ctx, now)
	require.NoError(t, err)
	assert.False(t, report.HasData)
	assert.True(t, report.Stale)

	repo.On("Latest", ctx).Return(&models.Measurement{MeasuredAt: now.Add(-30 * time.Minute)}, nil).Once()
	report, err = s.Freshness(ctx, now)
	require.NoError(t, err)
	assert.True(t, report.HasData)
	assert.False(t, report.Stale)
	assert.Equal(t, 1800.0, report.AgeSeconds)
	assert.Equal(t, "1h0m0s", report.StaleAfter)

	repo.On("Latest", ctx).Return(&models.Measurement{MeasuredAt: now.Add(-3 * time.Hour)}, nil).Once()
	report, err = s.Freshness(ctx, now)
	require.NoError(t, err)
	assert.True(t, report.Stale)

	repo.On("Latest", ctx).Return((*models.Measurement)(nil), errors.New("locked")).Once()
	_, err = s.Freshness(ctx, now)
	assert.ErrorIs(t, err, apperrors.ErrStorageUnavailable)
}
