package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"AE-VISA/internal/config"
)

// PushClient delivers a push notification to a registered device token.
type PushClient interface {
	Send(token, title, body string) error
}

// FCMClient posts to the Firebase Cloud Messaging legacy HTTP endpoint.
type FCMClient struct {
	serverKey string
	endpoint  string
	client    *http.Client
}

func NewFCMClient(cfg config.FCMConfig) *FCMClient {
	return &FCMClient{
		serverKey: cfg.ServerKey,
		endpoint:  cfg.Endpoint,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *FCMClient) Send(token, title, body string) error {
	payload := map[string]interface{}{
		"to": token,
		"notification": map[string]string{
			"title": title,
			"body":  body,
		},
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode push payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.endpoint, bytes.NewReader(buf))
	if err != nil {
		return fmt.Errorf("failed to build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+c.serverKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send push: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("push endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
