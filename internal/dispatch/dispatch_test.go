package dispatch

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/zkgate/internal/delegation/domain"
	apperrors "github.com/allisson/zkgate/internal/errors"
)

func testRecord() *domain.DelegationRecord {
	return &domain.DelegationRecord{
		Action:          domain.ActionPostMessage,
		TokenIdentifier: "tokenA",
		IssuerIdentity:  "did:user:123",
		SubjectIdentity: "did:agent:writer456",
		TargetIdentity:  "did:agent:slack789",
	}
}

func testPayload() domain.ActionPayload {
	return domain.ActionPayload{PayloadChannel: "#general", PayloadMessage: "hello from the agent"}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStaticTokenResolver(t *testing.T) {
	t.Run("Exact", func(t *testing.T) {
		r := NewStaticTokenResolver(map[string]string{"tokenA": "xoxb-a", "default": "xoxb-default"})
		token, err := r.Resolve("tokenA")
		require.NoError(t, err)
		assert.Equal(t, "xoxb-a", token)
	})

	t.Run("FallbackToDefault", func(t *testing.T) {
		r := NewStaticTokenResolver(map[string]string{"default": "xoxb-default"})
		token, err := r.Resolve("tokenA")
		require.NoError(t, err)
		assert.Equal(t, "xoxb-default", token)
	})

	t.Run("Error_Unknown", func(t *testing.T) {
		r := NewStaticTokenResolver(map[string]string{"tokenB": "xoxb-b"})
		_, err := r.Resolve("tokenA")
		assert.ErrorIs(t, err, apperrors.ErrDispatch)
	})
}

func TestRegistry_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("Routes", func(t *testing.T) {
		registry := NewRegistry()
		registry.Register(domain.ActionPostMessage, NewLogDispatcher(discardLogger()))

		outcome, err := registry.Execute(ctx, testRecord(), testPayload())
		require.NoError(t, err)
		assert.Equal(t, domain.ActionPostMessage, outcome.Action)
		assert.Contains(t, outcome.Detail, "#general")
	})

	t.Run("Error_NoDispatcher", func(t *testing.T) {
		_, err := NewRegistry().Execute(ctx, testRecord(), testPayload())
		assert.ErrorIs(t, err, apperrors.ErrDispatch)
		assert.NotErrorIs(t, err, apperrors.ErrForbidden)
	})
}

func TestLogDispatcher_Execute(t *testing.T) {
	var buf bytes.Buffer
	dispatcher := NewLogDispatcher(slog.New(slog.NewJSONHandler(&buf, nil)))

	_, err := dispatcher.Execute(context.Background(), testRecord(), testPayload())
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"channel":"#general"`)
	assert.NotContains(t, buf.String(), "hello from the agent")

	_, err = dispatcher.Execute(context.Background(), testRecord(), domain.ActionPayload{})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestSlackDispatcher_Execute(t *testing.T) {
	ctx := context.Background()
	resolver := NewStaticTokenResolver(map[string]string{"tokenA": "xoxb-test"})

	t.Run("Success", func(t *testing.T) {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			assert.Equal(t, "/chat.postMessage", r.URL.Path)
			assert.Equal(t, http.MethodPost, r.Method)
			assert.NoError(t, r.ParseForm())
			assert.Equal(t, "xoxb-test", r.PostForm.Get("token"))
			assert.Equal(t, "#general", r.PostForm.Get("channel"))
			assert.Equal(t, "hello from the agent", r.PostForm.Get("text"))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"ok":true,"channel":"C123","ts":"1700000000.000100"}`))
		}))
		defer server.Close()

		dispatcher := NewSlackDispatcher(server.URL+"/", time.Second, resolver, discardLogger())
		outcome, err := dispatcher.Execute(ctx, testRecord(), testPayload())
		require.NoError(t, err)
		assert.Equal(t, domain.ActionPostMessage, outcome.Action)
		assert.Equal(t, "posted to C123 at 1700000000.000100", outcome.Detail)
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})

	t.Run("Error_SlackNotOK", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"ok":false,"error":"channel_not_found"}`))
		}))
		defer server.Close()

		dispatcher := NewSlackDispatcher(server.URL, time.Second, resolver, discardLogger())
		_, err := dispatcher.Execute(ctx, testRecord(), testPayload())
		assert.ErrorIs(t, err, apperrors.ErrDispatch)
		assert.NotErrorIs(t, err, apperrors.ErrForbidden)
		assert.Contains(t, err.Error(), "channel_not_found")
	})

	t.Run("Error_RateLimited", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Retry-After", "30")
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		dispatcher := NewSlackDispatcher(server.URL, time.Second, resolver, discardLogger())
		_, err := dispatcher.Execute(ctx, testRecord(), testPayload())
		assert.ErrorIs(t, err, apperrors.ErrDispatch)
		assert.Contains(t, err.Error(), "rate limit")
	})

	t.Run("Error_HTTPStatus", func(t *testing.T) {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		dispatcher := NewSlackDispatcher(server.URL, time.Second, resolver, discardLogger())
		_, err := dispatcher.Execute(ctx, testRecord(), testPayload())
		assert.ErrorIs(t, err, apperrors.ErrDispatch)
		assert.Contains(t, err.Error(), "status 503")
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "dispatch must not be retried")
	})

	t.Run("Error_InvalidJSON", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		}))
		defer server.Close()

		dispatcher := NewSlackDispatcher(server.URL, time.Second, resolver, discardLogger())
		_, err := dispatcher.Execute(ctx, testRecord(), testPayload())
		assert.ErrorIs(t, err, apperrors.ErrDispatch)
	})

	t.Run("Error_Unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		dispatcher := NewSlackDispatcher(url, time.Second, resolver, discardLogger())
		_, err := dispatcher.Execute(ctx, testRecord(), testPayload())
		assert.ErrorIs(t, err, apperrors.ErrDispatch)
	})

	t.Run("Error_UnknownToken", func(t *testing.T) {
		record := testRecord()
		record.TokenIdentifier = "tokenZ"

		dispatcher := NewSlackDispatcher("http://127.0.0.1:1", time.Second, resolver, discardLogger())
		_, err := dispatcher.Execute(ctx, record, testPayload())
		assert.ErrorIs(t, err, apperrors.ErrDispatch)
	})

	t.Run("Error_MissingChannel", func(t *testing.T) {
		dispatcher := NewSlackDispatcher("http://127.0.0.1:1", time.Second, resolver, discardLogger())
		_, err := dispatcher.Execute(ctx, testRecord(), domain.ActionPayload{PayloadMessage: "hi"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}
