package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/caisyy0514/sentinel/pkg/retrier"
)

func newTestTelegram(t *testing.T, handler http.HandlerFunc) (*Telegram, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	tg := NewTelegram("test-token", "42", zap.NewNop())
	tg.client.SetBaseURL(srv.URL + "/bottest-token")
	tg.retry = retrier.New(retrier.WithMaxRetries(0))

	return tg, srv
}

func TestTelegramAlertSendsMessage(t *testing.T) {
	var got sendMessageRequest
	tg, _ := newTestTelegram(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/bottest-token/sendMessage", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	err := tg.Alert(context.Background(), "BTC_USDT long signal")
	require.NoError(t, err)
	require.Equal(t, "42", got.ChatID)
	require.Equal(t, "BTC_USDT long signal", got.Text)
	require.True(t, got.DisableWebPagePreview)
}

func TestTelegramAlertReportsAPIError(t *testing.T) {
	tg, _ := newTestTelegram(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"description":"Bad Request: chat not found"}`))
	})

	err := tg.Alert(context.Background(), "hello")
	require.Error(t, err)
	require.Contains(t, err.Error(), "chat not found")
}

func TestTelegramAlertRetriesTransientFailure(t *testing.T) {
	var calls atomic.Int32
	tg, _ := newTestTelegram(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"ok":false,"description":"internal"}`))
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	tg.retry = retrier.New(
		retrier.WithMaxRetries(1),
		retrier.WithInitialInterval(time.Millisecond),
	)

	err := tg.Alert(context.Background(), "hello")
	require.NoError(t, err)
	require.EqualValues(t, 2, calls.Load())
}

func TestNoopAlert(t *testing.T) {
	require.NoError(t, Noop{}.Alert(context.Background(), "anything"))
}
