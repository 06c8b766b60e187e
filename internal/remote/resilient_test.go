package remote

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap/zaptest"

	"github.com/sinh-x/google-classroom-mcp/internal/config"
	"github.com/sinh-x/google-classroom-mcp/internal/interfaces/mock"
	"github.com/sinh-x/google-classroom-mcp/internal/models"
)

// fetchFunc adapts a function to interfaces.Fetcher and counts calls
type fetchFunc struct {
	calls atomic.Int32
	fn    func(call int32) ([]byte, error)
}

func (f *fetchFunc) Fetch(_ context.Context, _ models.Key) ([]byte, error) {
	return f.fn(f.calls.Add(1))
}

func testRemoteConfig() config.RemoteConfig {
	return config.RemoteConfig{
		Timeout:           time.Second,
		RetryMaxAttempts:  3,
		RetryInitialDelay: time.Millisecond,
		RetryMultiplier:   1.0,
		BreakerThreshold:  5,
		BreakerTimeout:    time.Minute,
	}
}

var courseKey = models.Key{Kind: models.KindCourse, Scope: []string{"c1"}}

func TestResilientFetcher_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	next := mock.NewMockFetcher(ctrl)
	next.EXPECT().Fetch(gomock.Any(), courseKey).Return([]byte(`{"id":"c1"}`), nil).Times(1)

	f := NewResilientFetcher(next, testRemoteConfig(), zaptest.NewLogger(t))

	data, err := f.Fetch(context.Background(), courseKey)
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"id":"c1"}`), data)
}

func TestResilientFetcher_RetriesTransientFailures(t *testing.T) {
	next := &fetchFunc{fn: func(call int32) ([]byte, error) {
		if call < 3 {
			return nil, NewError(CategoryTransient, errors.New("503 backend error"))
		}
		return []byte("ok"), nil
	}}

	f := NewResilientFetcher(next, testRemoteConfig(), zaptest.NewLogger(t))

	data, err := f.Fetch(context.Background(), courseKey)
	require.NoError(t, err)
	assert.Equal(t, []byte("ok"), data)
	assert.Equal(t, int32(3), next.calls.Load())
}

func TestResilientFetcher_ExhaustedRetriesAreTransient(t *testing.T) {
	next := &fetchFunc{fn: func(int32) ([]byte, error) {
		return nil, NewError(CategoryTransient, errors.New("timeout"))
	}}

	f := NewResilientFetcher(next, testRemoteConfig(), zaptest.NewLogger(t))

	_, err := f.Fetch(context.Background(), courseKey)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransient)
	assert.GreaterOrEqual(t, next.calls.Load(), int32(3))
}

func TestResilientFetcher_DoesNotRetryNonTransient(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"not found", NewError(CategoryNotFound, errors.New("404")), ErrNotFound},
		{"unauthorized", NewError(CategoryUnauthorized, errors.New("403")), ErrUnauthorized},
		{"permanent", NewError(CategoryPermanent, errors.New("400")), ErrPermanent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := &fetchFunc{fn: func(int32) ([]byte, error) { return nil, tt.err }}
			f := NewResilientFetcher(next, testRemoteConfig(), zaptest.NewLogger(t))

			_, err := f.Fetch(context.Background(), courseKey)
			assert.ErrorIs(t, err, tt.sentinel)
			assert.Equal(t, int32(1), next.calls.Load())
		})
	}
}

func TestResilientFetcher_BreakerOpensOnTransientFailures(t *testing.T) {
	cfg := testRemoteConfig()
	cfg.RetryMaxAttempts = 1
	cfg.BreakerThreshold = 2

	next := &fetchFunc{fn: func(int32) ([]byte, error) {
		return nil, NewError(CategoryTransient, errors.New("503"))
	}}
	f := NewResilientFetcher(next, cfg, zaptest.NewLogger(t))

	for i := 0; i < 2; i++ {
		_, err := f.Fetch(context.Background(), courseKey)
		require.ErrorIs(t, err, ErrTransient)
	}

	_, err := f.Fetch(context.Background(), courseKey)
	assert.ErrorIs(t, err, ErrTransient, "open breaker rejects as transient")
	assert.Equal(t, int32(2), next.calls.Load(), "open breaker must not reach the remote")
}

func TestResilientFetcher_NotFoundDoesNotTripBreaker(t *testing.T) {
	cfg := testRemoteConfig()
	cfg.BreakerThreshold = 1

	next := &fetchFunc{fn: func(int32) ([]byte, error) {
		return nil, NewError(CategoryNotFound, errors.New("404"))
	}}
	f := NewResilientFetcher(next, cfg, zaptest.NewLogger(t))

	for i := 0; i < 3; i++ {
		_, err := f.Fetch(context.Background(), courseKey)
		require.ErrorIs(t, err, ErrNotFound)
	}
	assert.Equal(t, int32(3), next.calls.Load())
}

func TestResilientFetcher_RateLimited(t *testing.T) {
	cfg := testRemoteConfig()
	cfg.RateLimit = 1
	cfg.RateBurst = 1

	next := &fetchFunc{fn: func(int32) ([]byte, error) { return []byte("ok"), nil }}
	f := NewResilientFetcher(next, cfg, zaptest.NewLogger(t))

	_, err := f.Fetch(context.Background(), courseKey)
	require.NoError(t, err)

	_, err = f.Fetch(context.Background(), courseKey)
	assert.ErrorIs(t, err, ErrTransient)
	assert.Equal(t, int32(1), next.calls.Load())
}

func TestResilientFetcher_ClassifiesUncategorizedErrors(t *testing.T) {
	cfg := testRemoteConfig()
	cfg.RetryMaxAttempts = 1

	next := &fetchFunc{fn: func(int32) ([]byte, error) {
		return nil, errors.New("connection refused")
	}}
	f := NewResilientFetcher(next, cfg, zaptest.NewLogger(t))

	_, err := f.Fetch(context.Background(), courseKey)

	var re *Error
	require.ErrorAs(t, err, &re)
	assert.Equal(t, CategoryTransient, re.Category)
}
