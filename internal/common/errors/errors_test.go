package errors

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mentor-match/internal/common/camunda/camundatest"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
)

func TestConvertToBPMNError(t *testing.T) {
	tests := []struct {
		name            string
		err             *StandardError
		expectedCode    string
		expectedRetries int
	}{
		{"invalid input is not retried", NewInvalidInputError("user is required"), "INVALID_INPUT", 0},
		{"user not found is not retried", NewUserNotFoundError("u-1"), "USER_NOT_FOUND", 0},
		{"provider fetch retried", NewProviderFetchFailedError(fmt.Errorf("conn reset")), "PROVIDER_FETCH_FAILED", 3},
		{"query timeout retried twice", NewQueryTimeoutError("list_providers"), "QUERY_TIMEOUT", 2},
		{"unmapped code thrown verbatim", NewInternalError(fmt.Errorf("boom")), "INTERNAL_ERROR", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bpmnErr := ConvertToBPMNError(tt.err)

			assert.Equal(t, tt.expectedCode, bpmnErr.Code)
			assert.Equal(t, tt.expectedRetries, bpmnErr.Retries)
			assert.Equal(t, string(tt.err.Code), bpmnErr.ErrorVariables["originalErrorCode"])
		})
	}
}

func TestConvertToBPMNError_CarriesMetadata(t *testing.T) {
	bpmnErr := ConvertToBPMNError(NewUserNotFoundError("u-42"))

	vars := bpmnErr.ToErrorVariables()
	assert.Equal(t, "u-42", vars["userId"])
	assert.Equal(t, "USER_NOT_FOUND", vars["errorCode"])
	assert.Equal(t, false, vars["retryable"])
}

func TestAsAndHasCode(t *testing.T) {
	base := NewUserFetchFailedError("u-1", fmt.Errorf("dial tcp: refused"))
	wrapped := fmt.Errorf("loading user: %w", base)

	got, ok := As(wrapped)
	require.True(t, ok)
	assert.Same(t, base, got)
	assert.True(t, HasCode(wrapped, ErrCodeUserFetchFailed))
	assert.False(t, HasCode(wrapped, ErrCodeUserNotFound))
	assert.False(t, HasCode(fmt.Errorf("plain"), ErrCodeInternal))
	assert.EqualError(t, base.Unwrap(), "dial tcp: refused")
}

func TestNormalize(t *testing.T) {
	stdErr := NewRecommendationFailedError("no pool")
	assert.Same(t, stdErr, Normalize(stdErr))

	foreign := Normalize(fmt.Errorf("unexpected"))
	assert.Equal(t, ErrCodeInternal, foreign.Code)
	assert.Equal(t, "unexpected", foreign.Details)
}

func TestHTTPStatus(t *testing.T) {
	tests := map[ErrorCode]int{
		ErrCodeInvalidInput:             http.StatusBadRequest,
		ErrCodeUserNotFound:             http.StatusNotFound,
		ErrCodeProviderNotFound:         http.StatusNotFound,
		ErrCodeSearchNotConfigured:      http.StatusNotImplemented,
		ErrCodeQueryTimeout:             http.StatusGatewayTimeout,
		ErrCodeProviderFetchFailed:      http.StatusServiceUnavailable,
		ErrCodeDatabaseConnectionFailed: http.StatusServiceUnavailable,
		ErrCodeRecommendationFailed:     http.StatusInternalServerError,
		ErrCodeInternal:                 http.StatusInternalServerError,
	}

	for code, status := range tests {
		assert.Equal(t, status, HTTPStatus(code), string(code))
	}
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeInvalidInput))
	assert.Equal(t, "USER", GetErrorCategory(ErrCodeUserFetchFailed))
	assert.Equal(t, "SEARCH", GetErrorCategory(ErrCodeProviderSearchFailed))
	assert.Equal(t, "PROVIDER", GetErrorCategory(ErrCodeProviderNotFound))
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeQueryTimeout))
	assert.Equal(t, "MATCHING", GetErrorCategory(ErrCodeRecommendationFailed))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
}

func TestRemainingRetries(t *testing.T) {
	job := func(retries int32) entities.Job {
		return entities.Job{ActivatedJob: &pb.ActivatedJob{Retries: retries}}
	}

	assert.Equal(t, int32(2), remainingRetries(job(3), 3))
	assert.Equal(t, int32(0), remainingRetries(job(1), 3))
	assert.Equal(t, int32(2), remainingRetries(job(5), 2))
	assert.Equal(t, int32(3), remainingRetries(job(0), 3))
}

type recordingLogger struct {
	messages []string
	fields   []map[string]interface{}
}

func (r *recordingLogger) Error(msg string, fields map[string]interface{}) {
	r.messages = append(r.messages, msg)
	r.fields = append(r.fields, fields)
}

func TestErrorHandler_LogError(t *testing.T) {
	rec := &recordingLogger{}
	h := NewErrorHandler(rec)
	stdErr := NewQueryTimeoutError("get_user")

	h.logError(entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 7, Type: "recommend-mentors"}}, stdErr, ConvertToBPMNError(stdErr))

	require.Len(t, rec.messages, 1)
	assert.Equal(t, "QUERY_TIMEOUT", rec.fields[0]["errorCode"])
	assert.Equal(t, "DATABASE", rec.fields[0]["errorCategory"])
	assert.Equal(t, 2, rec.fields[0]["retries"])
}

func TestErrorHandler_HandleJobError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		jobRetries  int32
		wantOutcome JobOutcome
		wantRetries int32
		wantCode    string
	}{
		{"query timeout fails with decremented retries", NewQueryTimeoutError("list_providers"), 3, OutcomeFailed, 2, ""},
		{"fetch failure capped by broker retries", NewProviderFetchFailedError(fmt.Errorf("conn reset")), 2, OutcomeFailed, 1, ""},
		{"invalid input is thrown", NewInvalidInputError("user is required"), 3, OutcomeThrown, 0, "INVALID_INPUT"},
		{"retryable error thrown once retries run out", NewQueryTimeoutError("get_user"), 0, OutcomeThrown, 0, "QUERY_TIMEOUT"},
		{"foreign error thrown as internal", fmt.Errorf("boom"), 3, OutcomeThrown, 0, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := camundatest.NewJobClient()
			h := NewErrorHandler(&recordingLogger{})
			job := entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 11, Retries: tt.jobRetries}}

			outcome := h.HandleJobError(client, job, tt.err)

			assert.Equal(t, tt.wantOutcome, outcome)
			assert.Zero(t, client.Rejected())
			if tt.wantOutcome == OutcomeFailed {
				require.Len(t, client.Failed(), 1)
				assert.Empty(t, client.Thrown())
				assert.Equal(t, int64(11), client.Failed()[0].JobKey)
				assert.Equal(t, tt.wantRetries, client.Failed()[0].Retries)
				return
			}
			require.Len(t, client.Thrown(), 1)
			assert.Empty(t, client.Failed())
			assert.Equal(t, tt.wantCode, client.Thrown()[0].ErrorCode)
			assert.Contains(t, client.Thrown()[0].Variables, `"errorCode":"`+tt.wantCode+`"`)
		})
	}
}

func TestCommandContext_DetachedFromCaller(t *testing.T) {
	ctx, cancel := CommandContext()
	defer cancel()

	require.NoError(t, ctx.Err())
	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(CommandTimeout), deadline, time.Second)
}
