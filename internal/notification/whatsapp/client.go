package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/3FinityAI/fogandleaf-sub000/internal/domain"
)

const defaultRequestTimeout = 10 * time.Second

// Client отправляет WhatsApp-уведомление о заказе через HTTP API провайдера.
// Отсутствие сконфигурированных credentials — валидный исход (skipped),
// а не ошибка: сервис работает и без WhatsApp-канала.
type Client struct {
	apiURL string
	token  string
	http   *http.Client
	logger *log.Entry
}

// NewClient создаёт клиента провайдера. Пустые apiURL/token означают
// "канал выключен".
func NewClient(apiURL, token string) *Client {
	return &Client{
		apiURL: apiURL,
		token:  token,
		http:   &http.Client{Timeout: defaultRequestTimeout},
		logger: log.WithField("component", "whatsapp-client"),
	}
}

type sendRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

type sendResponse struct {
	Status string `json:"status"`
}

// SendOrderMessage отправляет сводку заказа на номер phone.
func (c *Client) SendOrderMessage(ctx context.Context, phone string, order domain.Order) (domain.WhatsAppStatus, error) {
	if c.apiURL == "" || c.token == "" {
		return domain.WhatsAppStatusSkipped, nil
	}

	payload, err := json.Marshal(sendRequest{
		To:      phone,
		Message: buildOrderMessage(order),
	})
	if err != nil {
		return domain.WhatsAppStatusFailed, fmt.Errorf("marshal whatsapp payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return domain.WhatsAppStatusFailed, fmt.Errorf("build whatsapp request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.WhatsAppStatusFailed, fmt.Errorf("send whatsapp message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.WhatsAppStatusFailed, fmt.Errorf("whatsapp provider returned status %d", resp.StatusCode)
	}

	var body sendResponse
	// Тело ответа информационное; ошибки декодирования не важны.
	_ = json.NewDecoder(resp.Body).Decode(&body)

	c.logger.WithFields(log.Fields{
		"order_number":    order.Number,
		"provider_status": body.Status,
	}).Info("whatsapp notification sent")

	return domain.WhatsAppStatusSent, nil
}

// buildOrderMessage собирает короткую текстовую сводку заказа.
func buildOrderMessage(order domain.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Fog & Leaf: order %s confirmed.\n", order.Number)
	for _, line := range order.Lines {
		fmt.Fprintf(&b, "- %s x%d\n", line.Name, line.Qty)
	}
	fmt.Fprintf(&b, "Total: ₹%d.%02d", order.TotalMinor/100, order.TotalMinor%100)
	return b.String()
}

var _ domain.WhatsAppSender = (*Client)(nil)
