package payment

import (
	"context"
	"time"
)

// InitializeRequest — заявка на создание платежной сессии.
// Сумма передается в минорных единицах валюты.
type InitializeRequest struct {
	Email       string
	AmountMinor int64
	Reference   string
	CallbackURL string
	Metadata    map[string]string
}

// InitializeResponse содержит URL, на который перенаправляется клиент
// для завершения оплаты.
type InitializeResponse struct {
	AuthorizationURL string
	AccessCode       string
	Reference        string
}

// VerifyResult — итог проверки транзакции у провайдера.
type VerifyResult struct {
	Reference   string
	Status      string
	AmountMinor int64
	PaidAt      *time.Time
}

// Success истинен только для завершенной успешной транзакции.
// Любой другой статус провайдера не подтверждает оплату.
func (r *VerifyResult) Success() bool {
	return r.Status == "success"
}

// Provider — платежный шлюз. Реализация обязана обращаться к провайдеру
// при каждом вызове Verify, статус из ответа Initialize не является
// подтверждением оплаты.
type Provider interface {
	Initialize(ctx context.Context, req InitializeRequest) (*InitializeResponse, error)
	Verify(ctx context.Context, reference string) (*VerifyResult, error)
}
