package recommendmentors

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"mentor-match/internal/common/camunda/camundatest"
	"mentor-match/internal/common/config"
	apperrors "mentor-match/internal/common/errors"
	"mentor-match/internal/common/logger"
	"mentor-match/internal/common/validation"
	"mentor-match/internal/models"
	"mentor-match/internal/recommendation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Service Implementation
// ==========================

type MockRecommender struct {
	mock.Mock
}

func (m *MockRecommender) Recommend(ctx context.Context, req recommendation.Request) (*recommendation.Result, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*recommendation.Result), args.Error(1)
}

// ==========================
// Test Helpers
// ==========================

func newTestHandler(t *testing.T, svc Recommender) *Handler {
	t.Helper()
	v, err := validation.NewValidator()
	require.NoError(t, err)
	return NewHandler(&Config{Timeout: 5 * time.Second}, svc, v, nil, logger.NewTestLogger(t))
}

type stubStore struct {
	users     map[string]*models.User
	providers []*models.Provider
}

func (s *stubStore) GetUser(_ context.Context, id string) (*models.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, apperrors.NewUserNotFoundError(id)
}

func (s *stubStore) ListProviders(context.Context) ([]*models.Provider, error) {
	return s.providers, nil
}

func (s *stubStore) GetProvider(context.Context, string) (*models.Provider, error) {
	return nil, nil
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_WithRealService(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := &stubStore{
		users: map[string]*models.User{
			"u-1": {ID: "u-1", ClinicalProfile: &models.ClinicalProfile{PrimaryICUType: models.ICUMedical}},
		},
		providers: []*models.Provider{
			{ID: "a", Status: models.ProviderStatusApproved, Rating: 4.0},
			{ID: "b", Status: models.ProviderStatusApproved, Rating: 4.9, PreviousICUType: models.ICUMedical},
			{ID: "c", Status: models.ProviderStatusApproved, IsPaused: true, Rating: 5.0},
			{ID: "d", Status: models.ProviderStatusApproved, AvailableThisWeek: true, Rating: 4.5},
		},
	}
	svc := recommendation.NewService(store, store, recommendation.Limits{DefaultLimit: 3, MaxLimit: 10},
		nil, logger.NewNoOpLogger(), recommendation.WithClock(func() time.Time { return now }))

	h := newTestHandler(t, svc)

	out, err := h.Execute(context.Background(), &Input{UserID: "u-1", Options: &Options{Limit: 2}})
	require.NoError(t, err)

	require.Len(t, out.Recommendations, 2)
	// b: 20 rating + 15 icu; d: 20 available + 10 rating
	assert.Equal(t, "b", out.Recommendations[0].Provider.ID)
	assert.Equal(t, 35, out.Recommendations[0].Score)
	assert.Equal(t, []string{"4.9★ rating", "Also MICU"}, out.Recommendations[0].Reasons)
	assert.Equal(t, "d", out.Recommendations[1].Provider.ID)
	assert.True(t, out.HasAvailableMentors)
	assert.False(t, out.FallbackUsed)
}

func TestHandler_Execute_PassesOptions(t *testing.T) {
	svc := &MockRecommender{}
	svc.On("Recommend", mock.Anything, recommendation.Request{
		UserID:  "u-7",
		Limit:   5,
		Context: "dashboard",
		Source:  "worker",
	}).Return(&recommendation.Result{
		Recommendations: []models.MatchResult{},
		SelectionPath:   "empty",
	}, nil)

	h := newTestHandler(t, svc)

	out, err := h.Execute(context.Background(), &Input{UserID: "u-7", Options: &Options{Limit: 5, Context: "dashboard"}})
	require.NoError(t, err)
	assert.Empty(t, out.Recommendations)
	assert.Equal(t, "empty", out.SelectionPath)
	svc.AssertExpectations(t)
}

func TestHandler_Execute_PropagatesServiceError(t *testing.T) {
	svc := &MockRecommender{}
	svc.On("Recommend", mock.Anything, mock.Anything).Return(nil, apperrors.NewUserNotFoundError("ghost"))

	h := newTestHandler(t, svc)

	_, err := h.Execute(context.Background(), &Input{UserID: "ghost"})
	require.Error(t, err)
	bpmn := apperrors.ConvertToBPMNError(apperrors.Normalize(err))
	assert.Equal(t, "USER_NOT_FOUND", bpmn.Code)
	assert.Equal(t, 0, bpmn.Retries)
}

// ==========================
// Job Handling Tests
// ==========================

func newJob(variables string) entities.Job {
	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:       42,
		Type:      TaskType,
		Retries:   3,
		Variables: variables,
	}}
}

func TestHandler_Handle_CompletesJob(t *testing.T) {
	svc := &MockRecommender{}
	svc.On("Recommend", mock.Anything, mock.Anything).Return(&recommendation.Result{
		Recommendations:     []models.MatchResult{},
		HasAvailableMentors: true,
		SelectionPath:       "empty",
	}, nil)

	client := camundatest.NewJobClient()
	newTestHandler(t, svc).Handle(client, newJob(`{"userId":"u-1"}`))

	require.Len(t, client.Completed(), 1)
	assert.Equal(t, int64(42), client.Completed()[0].JobKey)
	assert.Contains(t, client.Completed()[0].Variables, `"hasAvailableMentors":true`)
	assert.Empty(t, client.Failed())
	assert.Empty(t, client.Thrown())
}

func TestHandler_Handle_ReportsFailureAfterDeadline(t *testing.T) {
	svc := &MockRecommender{}
	svc.On("Recommend", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(nil, apperrors.NewQueryTimeoutError("list_providers"))

	v, err := validation.NewValidator()
	require.NoError(t, err)
	h := NewHandler(&Config{Timeout: 20 * time.Millisecond}, svc, v, nil, logger.NewTestLogger(t))

	client := camundatest.NewJobClient()
	h.Handle(client, newJob(`{"userId":"u-1"}`))

	assert.Zero(t, client.Rejected())
	require.Len(t, client.Failed(), 1)
	assert.Equal(t, int32(2), client.Failed()[0].Retries)
	assert.Equal(t, "Database query timeout", client.Failed()[0].ErrorMessage)
	assert.Empty(t, client.Completed())
}

func TestHandler_Handle_ThrowsOnInvalidVariables(t *testing.T) {
	svc := &MockRecommender{}
	client := camundatest.NewJobClient()

	newTestHandler(t, svc).Handle(client, newJob(`{"options":{"limit":3}}`))

	require.Len(t, client.Thrown(), 1)
	assert.Equal(t, "INVALID_INPUT", client.Thrown()[0].ErrorCode)
	svc.AssertNotCalled(t, "Recommend", mock.Anything, mock.Anything)
}

// ==========================
// Input Parsing Tests
// ==========================

func TestHandler_ParseInput(t *testing.T) {
	h := newTestHandler(t, &MockRecommender{})

	tests := []struct {
		name      string
		variables map[string]interface{}
		wantErr   bool
		check     func(t *testing.T, in *Input)
	}{
		{
			name:      "user id only",
			variables: map[string]interface{}{"userId": "u-1", "processStarted": true},
			check: func(t *testing.T, in *Input) {
				assert.Equal(t, "u-1", in.UserID)
				assert.Nil(t, in.Providers)
			},
		},
		{
			name: "inline empty pool stays non-nil",
			variables: map[string]interface{}{
				"user":      map[string]interface{}{},
				"providers": []interface{}{},
			},
			check: func(t *testing.T, in *Input) {
				assert.NotNil(t, in.User)
				assert.NotNil(t, in.Providers)
				assert.Empty(t, in.Providers)
			},
		},
		{
			name:      "neither user nor userId",
			variables: map[string]interface{}{"options": map[string]interface{}{"limit": 3}},
			wantErr:   true,
		},
		{
			name: "bad context",
			variables: map[string]interface{}{
				"userId":  "u-1",
				"options": map[string]interface{}{"context": "landing"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := json.Marshal(tt.variables)
			require.NoError(t, err)

			in, err := h.parseInput(string(raw))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidInput))
				return
			}
			require.NoError(t, err)
			tt.check(t, in)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	cfg := &config.Config{Workers: map[string]config.WorkerConfig{
		TaskType: {Enabled: true, Timeout: 1500},
	}}

	assert.Equal(t, 1500*time.Millisecond, LoadConfig(cfg).Timeout)
	assert.Equal(t, 30*time.Second, LoadConfig(&config.Config{}).Timeout)
}
