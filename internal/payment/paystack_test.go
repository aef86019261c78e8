package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"strizh/config"
	"strizh/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*PaystackClient, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewPaystackClient(config.PaymentConfig{
		BaseURL:   server.URL,
		SecretKey: "sk_test_secret",
		Timeout:   5 * time.Second,
	}, zap.NewNop())

	return client, server
}

func TestPaystackClient_Initialize(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/transaction/initialize", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_secret", r.Header.Get("Authorization"))

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "anna@example.com", payload["email"])
		assert.Equal(t, float64(150000), payload["amount"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  true,
			"message": "Authorization URL created",
			"data": map[string]interface{}{
				"authorization_url": "https://checkout.example.com/abc",
				"access_code":       "abc",
				"reference":         "ref-123",
			},
		})
	})

	resp, err := client.Initialize(context.Background(), InitializeRequest{
		Email:       "anna@example.com",
		AmountMinor: 150000,
		Reference:   "ref-123",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.example.com/abc", resp.AuthorizationURL)
	assert.Equal(t, "ref-123", resp.Reference)
}

func TestPaystackClient_Verify(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/transaction/verify/ref-123", r.URL.Path)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  true,
			"message": "Verification successful",
			"data": map[string]interface{}{
				"status":    "success",
				"reference": "ref-123",
				"amount":    150000,
			},
		})
	})

	result, err := client.Verify(context.Background(), "ref-123")
	require.NoError(t, err)
	assert.True(t, result.Success())
	assert.Equal(t, int64(150000), result.AmountMinor)
}

func TestPaystackClient_Verify_NotSuccessful(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  true,
			"message": "Verification successful",
			"data": map[string]interface{}{
				"status":    "abandoned",
				"reference": "ref-123",
				"amount":    0,
			},
		})
	})

	result, err := client.Verify(context.Background(), "ref-123")
	require.NoError(t, err)
	assert.False(t, result.Success())
}

func TestPaystackClient_ProviderRejects(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  false,
			"message": "Invalid key",
		})
	})

	_, err := client.Initialize(context.Background(), InitializeRequest{
		Email:       "anna@example.com",
		AmountMinor: 100,
		Reference:   "ref-err",
	})
	assert.ErrorIs(t, err, domain.ErrExternalService)
}

func TestPaystackClient_ProviderDown(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.Verify(context.Background(), "ref-123")
	assert.ErrorIs(t, err, domain.ErrExternalService)
}
