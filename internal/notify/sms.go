package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"strizh/config"
	"strizh/internal/domain"
)

// SMSClient — клиент HTTP-шлюза рассылки SMS.
type SMSClient struct {
	apiURL     string
	apiKey     string
	apiSecret  string
	sender     string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewSMSClient(cfg config.SMSConfig, logger *zap.Logger) *SMSClient {
	return &SMSClient{
		apiURL:    cfg.APIURL,
		apiKey:    cfg.APIKey,
		apiSecret: cfg.APISecret,
		sender:    cfg.Sender,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

type smsResponse struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

func (c *SMSClient) Send(ctx context.Context, phone, message string) error {
	payload := map[string]interface{}{
		"sender":  c.sender,
		"phone":   phone,
		"message": message,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("ошибка сериализации SMS-запроса: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("ошибка создания SMS-запроса: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api_key", c.apiKey)
	req.Header.Set("secret_key", c.apiSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: SMS-шлюз недоступен: %v", domain.ErrExternalService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("%w: SMS-шлюз вернул статус %d", domain.ErrExternalService, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: ошибка чтения ответа SMS-шлюза", domain.ErrExternalService)
	}

	var result smsResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return fmt.Errorf("%w: некорректный ответ SMS-шлюза", domain.ErrExternalService)
	}

	if result.Code != "000" {
		c.logger.Warn("SMS-шлюз отклонил сообщение",
			zap.String("code", result.Code),
			zap.String("detail", result.Detail),
		)
		return fmt.Errorf("%w: %s", domain.ErrExternalService, result.Detail)
	}

	return nil
}
