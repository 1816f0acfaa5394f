package paystack

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSignatureRoundTrip(t *testing.T) {
	body := []byte(`{"event":"charge.success","data":{"reference":"HG-abc"}}`)
	secret := "sk_test_xyz"

	sig := Sign(body, secret)
	if !ValidSignature(body, sig, secret) {
		t.Error("signature round trip failed")
	}
	if ValidSignature(body, sig, "other-secret") {
		t.Error("signature accepted with wrong secret")
	}
	if ValidSignature([]byte("tampered"), sig, secret) {
		t.Error("signature accepted for tampered body")
	}
	if ValidSignature(body, "", secret) {
		t.Error("empty signature accepted")
	}
}

func TestClientMockModeWithoutKey(t *testing.T) {
	c := NewClient("", "", nil)
	if c.Live() {
		t.Error("client without key reports live")
	}
	if _, err := c.InitializeTransaction(context.Background(), InitializeRequest{}); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("got %v, want ErrNotConfigured", err)
	}
	if _, err := c.VerifyTransaction(context.Background(), "ref"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("got %v, want ErrNotConfigured", err)
	}
}

func TestInitializeTransactionParsesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transaction/initialize" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk_test" {
			t.Errorf("auth header = %q", got)
		}
		var req InitializeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Currency != "GHS" {
			t.Errorf("currency = %q, want GHS default", req.Currency)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"status":  true,
			"message": "Authorization URL created",
			"data": map[string]any{
				"authorization_url": "https://checkout.paystack.com/abc",
				"access_code":       "abc",
				"reference":         req.Reference,
			},
		})
	}))
	defer srv.Close()

	c := NewClient("sk_test", srv.URL, nil)
	out, err := c.InitializeTransaction(context.Background(), InitializeRequest{
		Email:     "x@test.com",
		Amount:    5000,
		Reference: "HG-1",
	})
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if out.AuthorizationURL != "https://checkout.paystack.com/abc" {
		t.Errorf("authorization url = %q", out.AuthorizationURL)
	}
}

func TestClientSurfacesGatewayErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient("sk_test", srv.URL, nil)
	if _, err := c.VerifyTransaction(context.Background(), "ref"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("got %v, want ErrUnavailable", err)
	}
}
