package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/transaction/initialize", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_abc", r.Header.Get("Authorization"))
		w.Write([]byte(`{
			"status": true,
			"message": "Authorization URL created",
			"data": {
				"authorization_url": "https://checkout.example.com/x9k2",
				"access_code": "x9k2",
				"reference": "HSTL-3-9-1-abc"
			}
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk_test_abc", time.Second)
	resp, err := c.Initialize(context.Background(), InitializeRequest{
		Email:     "ada@example.com",
		Amount:    40000,
		Reference: "HSTL-3-9-1-abc",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.example.com/x9k2", resp.AuthorizationURL)
	assert.Equal(t, "x9k2", resp.AccessCode)
}

func TestInitializeRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"status": false, "message": "Invalid key"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk_bad", time.Second)
	_, err := c.Initialize(context.Background(), InitializeRequest{Email: "a@b.c", Amount: 100, Reference: "r"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid key")
}

// A declined transaction comes back as a non-error response with
// Success() false; only transport-level trouble is an error.
func TestVerifyDeclined(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transaction/verify/HSTL-3-9-1-abc", r.URL.Path)
		w.Write([]byte(`{
			"status": true,
			"message": "Verification successful",
			"data": {
				"status": "failed",
				"amount": 40000,
				"reference": "HSTL-3-9-1-abc",
				"gateway_response": "Declined"
			}
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk_test_abc", time.Second)
	resp, err := c.Verify(context.Background(), "HSTL-3-9-1-abc")
	require.NoError(t, err)
	assert.False(t, resp.Success())
	assert.Equal(t, "Declined", resp.GatewayResponse)
}

func TestVerifySuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"status": true,
			"message": "Verification successful",
			"data": {
				"id": 5551,
				"status": "success",
				"amount": 100000,
				"channel": "card",
				"reference": "HSTL-3-9-1-abc",
				"paid_at": "2026-08-30T10:00:00Z"
			}
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk_test_abc", time.Second)
	resp, err := c.Verify(context.Background(), "HSTL-3-9-1-abc")
	require.NoError(t, err)
	assert.True(t, resp.Success())
	assert.Equal(t, int64(100000), resp.Amount)
	assert.Equal(t, int64(5551), resp.TransactionID)
}

func TestVerifyTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk_test_abc", 50*time.Millisecond)
	_, err := c.Verify(context.Background(), "ref")
	assert.Error(t, err)
}

func TestVerifyMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>bad gateway</html>`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk_test_abc", time.Second)
	_, err := c.Verify(context.Background(), "ref")
	assert.Error(t, err)
}

func TestMinorUnitConversion(t *testing.T) {
	assert.Equal(t, int64(123456), ToMinor(decimal.RequireFromString("1234.56")))
	assert.Equal(t, int64(100), ToMinor(decimal.RequireFromString("1.004")))
	assert.True(t, FromMinor(123456).Equal(decimal.RequireFromString("1234.56")))
	assert.True(t, FromMinor(0).IsZero())
}
