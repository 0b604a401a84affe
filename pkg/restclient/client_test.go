package restclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastOptions() Options {
	return Options{
		Timeout:    2 * time.Second,
		MaxRetries: 3,
		RetryMin:   time.Millisecond,
		RetryMax:   5 * time.Millisecond,
	}
}

func TestGet_DecodesAndSendsHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/items", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "secret", r.Header.Get("auth-token"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))

		w.Header().Set("X-Total", "7")
		json.NewEncoder(w).Encode(map[string]string{"name": "alpha"})
	}))
	defer server.Close()

	opts := fastOptions()
	opts.Headers = map[string]string{"auth-token": "secret"}
	client := New(server.URL+"/", opts)

	var out struct {
		Name string `json:"name"`
	}
	header, err := client.Get(context.Background(), "/v1/items", url.Values{"page": {"2"}}, &out)
	require.NoError(t, err)
	assert.Equal(t, "alpha", out.Name)
	assert.Equal(t, "7", header.Get("X-Total"))
}

func TestGet_RawBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"loose":true}`))
	}))
	defer server.Close()

	var raw []byte
	_, err := New(server.URL, fastOptions()).Get(context.Background(), "/", nil, &raw)
	require.NoError(t, err)
	assert.JSONEq(t, `{"loose":true}`, string(raw))
}

func TestGet_RetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt32(&calls, 1) {
		case 1:
			w.WriteHeader(http.StatusBadGateway)
		case 2:
			w.WriteHeader(http.StatusTooManyRequests)
		default:
			w.Write([]byte(`{"ok":true}`))
		}
	}))
	defer server.Close()

	var out map[string]bool
	_, err := New(server.URL, fastOptions()).Get(context.Background(), "/", nil, &out)
	require.NoError(t, err)
	assert.True(t, out["ok"])
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestGet_ClientErrorNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"missing"}`))
	}))
	defer server.Close()

	_, err := New(server.URL, fastOptions()).Get(context.Background(), "/", nil, nil)
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusNotFound))

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Contains(t, se.Body, "missing")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGet_GivesUpAfterMaxRetries(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := New(server.URL, fastOptions()).Get(context.Background(), "/", nil, nil)
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusServiceUnavailable))
	assert.Equal(t, int32(4), atomic.LoadInt32(&calls))
}

func TestGet_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	opts := fastOptions()
	opts.RetryMin = time.Second
	opts.RetryMax = time.Second

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := New(server.URL, opts).Get(ctx, "/", nil, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPostJSON_BasicAuth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "ck", user)
		assert.Equal(t, "cs", pass)

		var in map[string]int
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		json.NewEncoder(w).Encode(map[string]int{"double": in["n"] * 2})
	}))
	defer server.Close()

	opts := fastOptions()
	opts.Username = "ck"
	opts.Password = "cs"

	var out map[string]int
	_, err := New(server.URL, opts).PostJSON(context.Background(), "/hook", map[string]int{"n": 21}, &out)
	require.NoError(t, err)
	assert.Equal(t, 42, out["double"])
}
