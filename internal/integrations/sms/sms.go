package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// Sender dispatches a single SMS.
type Sender interface {
	Send(ctx context.Context, phone, message string) error
}

// GatewaySender posts to an Arkesel-style SMS API.
type GatewaySender struct {
	httpClient *http.Client
	apiKey     string
	sender     string
	baseURL    string
}

func NewGateway(apiKey, sender string) *GatewaySender {
	return &GatewaySender{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		apiKey:     apiKey,
		sender:     sender,
		baseURL:    "https://sms.arkesel.com/api/v2/sms/send",
	}
}

func (s *GatewaySender) Send(ctx context.Context, phone, message string) error {
	payload, err := json.Marshal(map[string]interface{}{
		"sender":     s.sender,
		"message":    message,
		"recipients": []string{phone},
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sms gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("sms gateway: status %d", resp.StatusCode)
	}
	return nil
}

// MockSender logs instead of sending; used when no API key is configured.
type MockSender struct{}

func (MockSender) Send(_ context.Context, phone, message string) error {
	logrus.Infof("mock sms: to=%s message=%q", phone, message)
	return nil
}

// FromConfig picks the gateway when a key is configured, the mock otherwise.
func FromConfig(apiKey, sender string) Sender {
	if apiKey == "" {
		logrus.Warn("SMS_API_KEY not set, sms runs in mock mode")
		return MockSender{}
	}
	return NewGateway(apiKey, sender)
}
