package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// Webhook posts trade and lifecycle messages to a webhook endpoint. Delivery
// is best effort: failures are logged and swallowed so a flaky endpoint can
// never stall or kill the trading loop. An empty URL disables sending.
type Webhook struct {
	url     string
	enabled bool
	client  *http.Client
}

func NewWebhook(url string) *Webhook {
	return &Webhook{
		url:     url,
		enabled: url != "",
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (w *Webhook) Send(message string) {
	log.Printf("[notify] %s", message)
	if !w.enabled {
		return
	}
	if err := w.post(message); err != nil {
		log.Printf("[notify] webhook delivery failed: %v", err)
	}
}

func (w *Webhook) post(message string) error {
	payload := map[string]string{
		"content": message,
		"sent_at": time.Now().Format(time.RFC3339),
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	resp, err := w.client.Post(w.url, "application/json", bytes.NewBuffer(data))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned status: %d", resp.StatusCode)
	}
	return nil
}
