package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/salescrm/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{"987654321", "51987654321", false},
		{"987 654 321", "51987654321", false},
		{"01-1234567", "5111234567", false},
		{"+51 987 654 321", "51987654321", false},
		{"0051987654321", "51987654321", false},
		{"+1 (415) 555-0100", "14155550100", false},
		{"51987654321", "51987654321", false},
		{"12345", "", true},
		{"", "", true},
		{"+1234567890123456", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := NormalizePhone(tt.raw, "51")
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPhone)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func testConfig(url string) config.WhatsAppConfig {
	return config.WhatsAppConfig{
		Enabled:    true,
		GatewayURL: url,
		Token:      "secret",
		Timeout:    2 * time.Second,
		RetryCount: 2,
	}
}

func TestClient_Send(t *testing.T) {
	var got SendRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"wamid.1","status":"queued"}`))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), zap.NewNop())
	require.NoError(t, c.Send(context.Background(), "987 654 321", "Tu pedido está en proceso"))

	assert.Equal(t, "Bearer secret", auth)
	assert.Equal(t, "51987654321", got.To)
	assert.Equal(t, "Tu pedido está en proceso", got.Message)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"wamid.2","status":"sent"}`))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), zap.NewNop())
	require.NoError(t, c.Send(context.Background(), "987654321", "hola"))
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_ClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":"number not on whatsapp"}`))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), zap.NewNop())
	err := c.Send(context.Background(), "987654321", "hola")
	assert.EqualError(t, err, "whatsapp gateway returned status 422")
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_ValidatesInput(t *testing.T) {
	c := NewClient(testConfig("http://127.0.0.1:1"), zap.NewNop())
	assert.ErrorIs(t, c.Send(context.Background(), "123", "hola"), ErrInvalidPhone)
	assert.Error(t, c.Send(context.Background(), "987654321", "  "))
}

func TestNew(t *testing.T) {
	logger := zap.NewNop()
	assert.IsType(t, NoopMessenger{}, New(config.WhatsAppConfig{}, logger))
	assert.IsType(t, NoopMessenger{}, New(config.WhatsAppConfig{Enabled: true}, logger))
	assert.IsType(t, &Client{}, New(testConfig("http://gateway"), logger))

	assert.NoError(t, NoopMessenger{logger: logger}.Send(context.Background(), "987654321", "hola"))
}
