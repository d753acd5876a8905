package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// PSPResult is the synchronous outcome of submitting a charge. The final
// COMPLETED/FAILED verdict arrives later over the webhook.
type PSPResult struct {
	TransactionID string
	RawResponse   string
}

// PSP abstracts the payment service provider.
type PSP interface {
	Charge(ctx context.Context, paymentID string, amount float64) (*PSPResult, error)
}

// HTTPPSP submits charges to a provider endpoint over HTTP.
type HTTPPSP struct {
	baseURL string
	client  *http.Client
}

// NewHTTPPSP creates a new HTTPPSP.
func NewHTTPPSP(baseURL string, timeout time.Duration) *HTTPPSP {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPPSP{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Charge submits a charge request. Any transport or non-2xx failure is
// returned to the caller, which schedules a retry.
func (p *HTTPPSP) Charge(ctx context.Context, paymentID string, amount float64) (*PSPResult, error) {
	body, err := json.Marshal(map[string]any{
		"payment_id": paymentID,
		"amount":     amount,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/charges", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("psp charge failed: status %d", resp.StatusCode)
	}

	var out struct {
		TransactionID string `json:"transaction_id"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &PSPResult{TransactionID: out.TransactionID, RawResponse: string(raw)}, nil
}

// MockPSP is an in-memory provider for local runs and tests.
type MockPSP struct {
	// FailCharge forces Charge to return an error when set.
	FailCharge error
}

// NewMockPSP creates a new MockPSP.
func NewMockPSP() *MockPSP {
	return &MockPSP{}
}

// Charge accepts every submission and fabricates a transaction ID.
func (p *MockPSP) Charge(_ context.Context, paymentID string, amount float64) (*PSPResult, error) {
	if p.FailCharge != nil {
		return nil, p.FailCharge
	}
	txnID := "mock-" + uuid.New().String()
	raw := fmt.Sprintf(`{"transaction_id":%q,"payment_id":%q,"amount":%.2f,"status":"accepted"}`, txnID, paymentID, amount)
	return &PSPResult{TransactionID: txnID, RawResponse: raw}, nil
}

// Ensure implementations satisfy PSP.
var (
	_ PSP = (*HTTPPSP)(nil)
	_ PSP = (*MockPSP)(nil)
)
