package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storeradar/radar-service/internal/http/ratelimit"
)

func testConfig() ratelimit.Config {
	return ratelimit.Config{
		RequestsPerSecond: 0,
		MaxRetries:        2,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        5 * time.Millisecond,
	}
}

func TestGetJSONRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		assert.Equal(t, "Bearer abc", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"threshold":0.2}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(), time.Second)
	var out struct {
		Threshold float64 `json:"threshold"`
	}
	err := client.GetJSON(context.Background(), server.URL, http.Header{"Authorization": {"Bearer abc"}}, &out)

	require.NoError(t, err)
	assert.Equal(t, 0.2, out.Threshold)
	assert.Equal(t, int32(3), calls.Load())
}

func TestGetJSONDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(testConfig(), time.Second)
	err := client.GetJSON(context.Background(), server.URL, nil, &struct{}{})

	var retryErr *ratelimit.FetchRetryError
	require.ErrorAs(t, err, &retryErr)
	assert.Equal(t, http.StatusNotFound, retryErr.LastStatus)
	assert.Equal(t, 1, retryErr.Attempts)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGetJSONGivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(testConfig(), time.Second)
	err := client.GetJSON(context.Background(), server.URL, nil, &struct{}{})

	var retryErr *ratelimit.FetchRetryError
	require.ErrorAs(t, err, &retryErr)
	assert.Equal(t, 3, retryErr.Attempts)
	assert.Equal(t, int32(3), calls.Load())
}

func TestPostJSONResendsBody(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			StoreID string `json:"store_id"`
		}
		assert.NoError(t, decodeBody(r, &in))
		assert.Equal(t, "s1", in.StoreID)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(testConfig(), time.Second)
	err := client.PostJSON(context.Background(), server.URL, nil, map[string]string{"store_id": "s1"}, nil)

	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestDoHonoursContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.InitialBackoff = time.Minute
	cfg.MaxBackoff = time.Minute
	client := NewClient(cfg, time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Get(ctx, server.URL, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestCalculateRateLimitBackoffRespectsRetryAfter(t *testing.T) {
	d := ratelimit.CalculateRateLimitBackoff(0, testConfig(), "2")
	assert.GreaterOrEqual(t, d, 2*time.Second)
	assert.Less(t, d, 3*time.Second)

	d = ratelimit.CalculateRateLimitBackoff(0, testConfig(), "")
	assert.LessOrEqual(t, d, time.Duration(float64(time.Millisecond)*1.25))
}

func decodeBody(r *http.Request, out any) error {
	return json.NewDecoder(r.Body).Decode(out)
}
