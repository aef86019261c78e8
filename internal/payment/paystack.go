package payment

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

// PaystackClient — клиент транзакционного API Paystack.
type PaystackClient struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewPaystackClient(cfg config.PaymentConfig, logger *zap.Logger) *PaystackClient {
	return &PaystackClient{
		baseURL:   cfg.BaseURL,
		secretKey: cfg.SecretKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

type paystackEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type paystackInitializeData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type paystackVerifyData struct {
	Status    string     `json:"status"`
	Reference string     `json:"reference"`
	Amount    int64      `json:"amount"`
	PaidAt    *time.Time `json:"paid_at"`
}

func (c *PaystackClient) Initialize(ctx context.Context, req InitializeRequest) (*InitializeResponse, error) {
	payload := map[string]interface{}{
		"email":     req.Email,
		"amount":    req.AmountMinor,
		"reference": req.Reference,
	}
	if req.CallbackURL != "" {
		payload["callback_url"] = req.CallbackURL
	}
	if len(req.Metadata) > 0 {
		payload["metadata"] = req.Metadata
	}

	var data paystackInitializeData
	if err := c.do(ctx, http.MethodPost, "/transaction/initialize", payload, &data); err != nil {
		return nil, err
	}

	return &InitializeResponse{
		AuthorizationURL: data.AuthorizationURL,
		AccessCode:       data.AccessCode,
		Reference:        data.Reference,
	}, nil
}

func (c *PaystackClient) Verify(ctx context.Context, reference string) (*VerifyResult, error) {
	var data paystackVerifyData
	if err := c.do(ctx, http.MethodGet, "/transaction/verify/"+reference, nil, &data); err != nil {
		return nil, err
	}

	return &VerifyResult{
		Reference:   data.Reference,
		Status:      data.Status,
		AmountMinor: data.Amount,
		PaidAt:      data.PaidAt,
	}, nil
}

func (c *PaystackClient) do(ctx context.Context, method, path string, payload interface{}, out interface{}) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("ошибка сериализации запроса к платежному шлюзу: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("ошибка создания запроса к платежному шлюзу: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("платежный шлюз недоступен", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%w: %v", domain.ErrExternalService, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: ошибка чтения ответа платежного шлюза", domain.ErrExternalService)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		c.logger.Error("ошибка платежного шлюза",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return fmt.Errorf("%w: платежный шлюз вернул статус %d", domain.ErrExternalService, resp.StatusCode)
	}

	var envelope paystackEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("%w: некорректный ответ платежного шлюза", domain.ErrExternalService)
	}

	if !envelope.Status {
		c.logger.Warn("платежный шлюз отклонил запрос",
			zap.String("path", path),
			zap.String("message", envelope.Message),
		)
		return fmt.Errorf("%w: %s", domain.ErrExternalService, envelope.Message)
	}

	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("%w: некорректные данные платежного шлюза", domain.ErrExternalService)
		}
	}

	return nil
}
