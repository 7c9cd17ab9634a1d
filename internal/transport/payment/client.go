// Package payment HTTP клиент платежного процессора: создание checkout сессии и
// получение её итогового состояния. Процессор - источник истины о факте оплаты,
// мы лишь сверяем с ним свое состояние.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pkg/errors"
)

const (
	RouteCheckoutSessions = "/v1/checkout/sessions"

	ModePayment = "payment"

	StatusPaid = "paid"
)

type SessionLineItem struct {
	Name       string `json:"name"`
	Image      string `json:"image,omitempty"`
	UnitAmount int64  `json:"unit_amount"`
	Quantity   int32  `json:"quantity"`
}

type SessionParams struct {
	LineItems  []SessionLineItem `json:"line_items"`
	Mode       string            `json:"mode"`
	SuccessURL string            `json:"success_url"`
	CancelURL  string            `json:"cancel_url"`
	// PercentOff скидка в процентах, 0 - без скидки. Показывается процессором
	// на его странице оплаты.
	PercentOff int32             `json:"percent_off,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

type Session struct {
	ID            string            `json:"id"`
	URL           string            `json:"url,omitempty"`
	PaymentStatus string            `json:"payment_status"`
	AmountTotal   int64             `json:"amount_total"`
	Metadata      map[string]string `json:"metadata"`
}

// HTTPClient реализация клиента процессора поверх net/http.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func New(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: http.DefaultClient,
	}
}

// CreateCheckoutSession создает платежную сессию. При ответе со статусом отличным
// от 2xx возвращает StatusCodeError.
func (c *HTTPClient) CreateCheckoutSession(ctx context.Context, params SessionParams) (*Session, error) {
	body, marshalErr := json.Marshal(params)
	if marshalErr != nil {
		return nil, errors.Wrap(marshalErr, "marshal session params")
	}

	req, reqErr := http.NewRequestWithContext(
		ctx, http.MethodPost, c.baseURL+RouteCheckoutSessions, bytes.NewReader(body),
	)
	if reqErr != nil {
		return nil, errors.Wrap(reqErr, "create request")
	}
	req.Header.Set("Content-Type", "application/json")

	return c.doSessionRequest(req)
}

// RetrieveCheckoutSession запрашивает состояние сессии по её идентификатору.
func (c *HTTPClient) RetrieveCheckoutSession(ctx context.Context, sessionID string) (*Session, error) {
	url := fmt.Sprintf("%s%s/%s", c.baseURL, RouteCheckoutSessions, sessionID)
	req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if reqErr != nil {
		return nil, errors.Wrap(reqErr, "create request")
	}

	return c.doSessionRequest(req)
}

//nolint:nonamedreturns
func (c *HTTPClient) doSessionRequest(req *http.Request) (session *Session, err error) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, doErr := c.httpClient.Do(req)
	if doErr != nil {
		return nil, errors.Wrap(doErr, "do request")
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			err = errors.Wrap(closeErr, "close response body")
		}
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, NewStatusCodeError(resp.StatusCode)
	}

	respBody, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return nil, errors.Wrap(readErr, "read response")
	}

	if jsonErr := json.Unmarshal(respBody, &session); jsonErr != nil {
		return nil, errors.Wrap(jsonErr, "parse response")
	}

	return session, nil
}
