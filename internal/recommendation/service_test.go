package recommendation

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "mentor-match/internal/common/errors"
	"mentor-match/internal/common/logger"
	"mentor-match/internal/matching"
	"mentor-match/internal/models"
	"mentor-match/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStore) ListProviders(ctx context.Context) ([]*models.Provider, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Provider), args.Error(1)
}

func (m *MockStore) GetProvider(ctx context.Context, id string) (*models.Provider, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Provider), args.Error(1)
}

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newService(t *testing.T, store *MockStore) *Service {
	return NewService(store, store, Limits{DefaultLimit: 3, MaxLimit: 5, MaxProviders: 10},
		nil, logger.NewTestLogger(t), WithClock(func() time.Time { return fixedNow }))
}

func essayUser() *models.User {
	return &models.User{
		ID: "u-1",
		GuidanceState: &models.GuidanceState{PrimaryFocusAreas: []models.FocusEntry{
			{Area: models.FocusEssay, Status: models.FocusStatusActive},
		}},
		ClinicalProfile: &models.ClinicalProfile{PrimaryICUType: models.ICUCardiovascular},
		TargetPrograms:  []models.TargetProgram{{Program: &models.Program{Name: "Duke University"}}},
	}
}

func dukeProvider() *models.Provider {
	slot := fixedNow.Add(48 * time.Hour)
	return &models.Provider{
		ID:                "p-duke",
		Status:            models.ProviderStatusApproved,
		AvailableThisWeek: true,
		NextAvailableSlot: &slot,
		Rating:            4.9,
		PreviousICUType:   models.ICUCardiovascular,
		Program:           "Duke University",
		Specializations:   []string{models.ServiceEssayReview},
	}
}

func TestService_Recommend_InlineData(t *testing.T) {
	store := &MockStore{}
	svc := newService(t, store)

	res, err := svc.Recommend(context.Background(), Request{
		User:      essayUser(),
		Providers: []*models.Provider{dukeProvider()},
		Source:    "api",
	})
	require.NoError(t, err)

	require.Len(t, res.Recommendations, 1)
	assert.Equal(t, 130, res.Recommendations[0].Score)
	assert.Equal(t, []string{"Available this week", "4.9★ rating"}, res.Recommendations[0].Reasons)
	assert.True(t, res.HasAvailableMentors)
	assert.False(t, res.FallbackUsed)
	assert.Equal(t, matching.PathScored, res.SelectionPath)
	store.AssertNotCalled(t, "GetUser", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "ListProviders", mock.Anything)
}

func TestService_Recommend_LoadsFromStores(t *testing.T) {
	store := &MockStore{}
	store.On("GetUser", mock.Anything, "u-1").Return(essayUser(), nil)
	store.On("ListProviders", mock.Anything).Return([]*models.Provider{
		{ID: "pending", Status: models.ProviderStatusPending, Rating: 3.0},
		{ID: "rejected", Status: models.ProviderStatusRejected, Rating: 4.8},
	}, nil)
	svc := newService(t, store)

	res, err := svc.Recommend(context.Background(), Request{UserID: "u-1", Limit: 3})
	require.NoError(t, err)

	assert.True(t, res.FallbackUsed)
	assert.False(t, res.HasAvailableMentors)
	assert.Equal(t, 2, res.PoolSize)
	require.Len(t, res.Recommendations, 2)
	assert.Equal(t, "rejected", res.Recommendations[0].Provider.ID)
	store.AssertExpectations(t)
}

func TestService_Recommend_EmptyInlinePoolSkipsStore(t *testing.T) {
	store := &MockStore{}
	svc := newService(t, store)

	res, err := svc.Recommend(context.Background(), Request{User: &models.User{}, Providers: []*models.Provider{}})
	require.NoError(t, err)

	assert.Empty(t, res.Recommendations)
	assert.NotNil(t, res.Recommendations)
	assert.Equal(t, matching.PathEmpty, res.SelectionPath)
	store.AssertNotCalled(t, "ListProviders", mock.Anything)
}

func TestService_Recommend_Errors(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(*MockStore)
		req      Request
		wantCode apperrors.ErrorCode
	}{
		{
			name:     "no user at all",
			setup:    func(*MockStore) {},
			req:      Request{Providers: []*models.Provider{}},
			wantCode: apperrors.ErrCodeInvalidInput,
		},
		{
			name: "unknown user",
			setup: func(m *MockStore) {
				m.On("GetUser", mock.Anything, "ghost").Return(nil, repository.ErrUserNotFound)
			},
			req:      Request{UserID: "ghost"},
			wantCode: apperrors.ErrCodeUserNotFound,
		},
		{
			name: "user store down",
			setup: func(m *MockStore) {
				m.On("GetUser", mock.Anything, "u-1").Return(nil, errors.New("dial tcp: refused"))
			},
			req:      Request{UserID: "u-1"},
			wantCode: apperrors.ErrCodeUserFetchFailed,
		},
		{
			name: "classified store error passes through",
			setup: func(m *MockStore) {
				m.On("GetUser", mock.Anything, "u-1").Return(nil, apperrors.NewQueryTimeoutError("get_user"))
			},
			req:      Request{UserID: "u-1"},
			wantCode: apperrors.ErrCodeQueryTimeout,
		},
		{
			name: "pool load fails",
			setup: func(m *MockStore) {
				m.On("ListProviders", mock.Anything).Return(nil, errors.New("boom"))
			},
			req:      Request{User: &models.User{}},
			wantCode: apperrors.ErrCodeProviderFetchFailed,
		},
		{
			name:     "pool too large",
			setup:    func(*MockStore) {},
			req:      Request{User: &models.User{}, Providers: make([]*models.Provider, 11)},
			wantCode: apperrors.ErrCodeInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &MockStore{}
			tt.setup(store)

			_, err := newService(t, store).Recommend(context.Background(), tt.req)

			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, tt.wantCode), "got %v", err)
		})
	}
}

func TestService_ClampLimit(t *testing.T) {
	svc := newService(t, &MockStore{})

	assert.Equal(t, 3, svc.ClampLimit(0))
	assert.Equal(t, 3, svc.ClampLimit(-4))
	assert.Equal(t, 4, svc.ClampLimit(4))
	assert.Equal(t, 5, svc.ClampLimit(50))
}

func TestService_Score(t *testing.T) {
	store := &MockStore{}
	store.On("GetProvider", mock.Anything, "p-duke").Return(dukeProvider(), nil)
	store.On("GetProvider", mock.Anything, "missing").Return(nil, repository.ErrProviderNotFound)
	svc := newService(t, store)

	res, err := svc.Score(context.Background(), ScoreRequest{User: essayUser(), ProviderID: "p-duke"})
	require.NoError(t, err)
	assert.Equal(t, 130, res.Score)
	assert.True(t, res.Eligible)

	anon, err := svc.Score(context.Background(), ScoreRequest{ProviderID: "p-duke", Context: "dashboard"})
	require.NoError(t, err)
	// 20 available + 10 slot + 20 rating, no applicant signal
	assert.Equal(t, 50, anon.Score)

	_, err = svc.Score(context.Background(), ScoreRequest{ProviderID: "missing"})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeProviderNotFound))

	_, err = svc.Score(context.Background(), ScoreRequest{})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidInput))
}

func TestService_Availability(t *testing.T) {
	store := &MockStore{}
	store.On("ListProviders", mock.Anything).Return([]*models.Provider{
		{ID: "a", Status: models.ProviderStatusApproved, IsPaused: true},
	}, nil).Once()
	svc := newService(t, store)

	ok, n, err := svc.Availability(context.Background())
	require.NoError(t, err)
	assert.True(t, ok, "paused but approved mentors still count")
	assert.Equal(t, 1, n)
}
