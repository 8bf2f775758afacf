package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Webhook posts notifications as JSON to a push gateway.
type Webhook struct {
	hc  *http.Client
	url string
	key string
}

func NewWebhook(url, apiKey string) *Webhook {
	return &Webhook{
		hc:  &http.Client{Timeout: 10 * time.Second},
		url: url,
		key: apiKey,
	}
}

type webhookPayload struct {
	Token        string `json:"token"`
	Notification `json:"notification"`
}

func (w *Webhook) Send(ctx context.Context, token string, n Notification) error {
	b, err := json.Marshal(webhookPayload{Token: token, Notification: n})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("content-type", "application/json")
	if w.key != "" {
		req.Header.Set("authorization", "Bearer "+w.key)
	}

	resp, err := w.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("push webhook http %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
