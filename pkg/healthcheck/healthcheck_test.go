package healthcheck

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChecker(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		checker, err := NewChecker(CheckerConfig{URL: "http://localhost:8000/health"})
		require.NoError(t, err)
		assert.Equal(t, defaultAttempts, checker.config.Attempts)
		assert.Equal(t, defaultInterval, checker.config.Interval)
		assert.Equal(t, defaultSettle, checker.config.Settle)
	})

	t.Run("negative settle disables the wait", func(t *testing.T) {
		t.Parallel()

		checker, err := NewChecker(CheckerConfig{
			URL:    "http://localhost:8000/health",
			Settle: -1,
		})
		require.NoError(t, err)
		assert.Equal(t, time.Duration(0), checker.config.Settle)
	})

	t.Run("missing url", func(t *testing.T) {
		t.Parallel()

		_, err := NewChecker(CheckerConfig{})
		assert.Error(t, err)
	})

	t.Run("invalid url", func(t *testing.T) {
		t.Parallel()

		_, err := NewChecker(CheckerConfig{URL: "not a url"})
		assert.Error(t, err)
	})
}

func TestCheck(t *testing.T) {
	t.Parallel()

	t.Run("healthy on first attempt", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		checker, err := NewChecker(CheckerConfig{
			URL:      srv.URL,
			Attempts: 3,
			Interval: 10 * time.Millisecond,
			Settle:   -1,
		})
		require.NoError(t, err)

		result := checker.Check(context.Background())
		assert.True(t, result.Healthy)
		assert.Equal(t, http.StatusOK, result.StatusCode)
		assert.Equal(t, 1, result.Attempts)
		assert.Empty(t, result.Error)
	})

	t.Run("recovers within attempt budget", func(t *testing.T) {
		t.Parallel()

		var hits int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt64(&hits, 1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		checker, err := NewChecker(CheckerConfig{
			URL:      srv.URL,
			Attempts: 5,
			Interval: 10 * time.Millisecond,
			Settle:   -1,
		})
		require.NoError(t, err)

		result := checker.Check(context.Background())
		assert.True(t, result.Healthy)
		assert.Equal(t, 3, result.Attempts)
	})

	t.Run("exhausts attempts", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		checker, err := NewChecker(CheckerConfig{
			URL:      srv.URL,
			Attempts: 2,
			Interval: 10 * time.Millisecond,
			Settle:   -1,
		})
		require.NoError(t, err)

		result := checker.Check(context.Background())
		assert.False(t, result.Healthy)
		assert.Equal(t, 2, result.Attempts)
		assert.Contains(t, result.Error, "unexpected status 500")
	})

	t.Run("unreachable endpoint", func(t *testing.T) {
		t.Parallel()

		// reserved port with nothing listening
		checker, err := NewChecker(CheckerConfig{
			URL:      "http://127.0.0.1:1/health",
			Attempts: 1,
			Settle:   -1,
		})
		require.NoError(t, err)

		result := checker.Check(context.Background())
		assert.False(t, result.Healthy)
		assert.NotEmpty(t, result.Error)
	})

	t.Run("canceled context stops probing", func(t *testing.T) {
		t.Parallel()

		checker, err := NewChecker(CheckerConfig{
			URL:      "http://127.0.0.1:1/health",
			Attempts: 10,
			Interval: time.Minute,
			Settle:   time.Minute,
		})
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		start := time.Now()
		result := checker.Check(ctx)
		assert.False(t, result.Healthy)
		assert.Less(t, time.Since(start), time.Second)
	})
}
