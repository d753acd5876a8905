package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/domain"
	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/service"
)

const webhookSignatureHeader = "X-PSP-Signature"

// PaymentHandler handles HTTP requests for payments.
type PaymentHandler struct {
	paymentService *service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// CreatePaymentRequest is the HTTP request body for creating a payment.
type CreatePaymentRequest struct {
	TripID string `json:"trip_id"`
}

// WebhookRequest is the HTTP request body for the PSP webhook.
type WebhookRequest struct {
	PaymentID     string `json:"payment_id"`
	TransactionID string `json:"transaction_id,omitempty"`
	Status        string `json:"status"` // COMPLETED or FAILED
	Reason        string `json:"reason,omitempty"`
}

// PaymentResponse is the HTTP representation of a payment.
type PaymentResponse struct {
	ID               string  `json:"id"`
	TripID           string  `json:"trip_id"`
	Amount           float64 `json:"amount"`
	Status           string  `json:"status"`
	PSPTransactionID string  `json:"psp_transaction_id,omitempty"`
	RetryCount       int     `json:"retry_count"`
	MaxRetries       int     `json:"max_retries"`
	NextRetryAt      string  `json:"next_retry_at,omitempty"`
	FailureReason    string  `json:"failure_reason,omitempty"`
	CreatedAt        string  `json:"created_at"`
}

func paymentResponse(payment *domain.Payment) PaymentResponse {
	resp := PaymentResponse{
		ID:               payment.ID,
		TripID:           payment.TripID,
		Amount:           payment.Amount,
		Status:           string(payment.Status),
		PSPTransactionID: payment.PSPTransactionID,
		RetryCount:       payment.RetryCount,
		MaxRetries:       payment.MaxRetries,
		FailureReason:    payment.FailureReason,
		CreatedAt:        payment.CreatedAt.Format(time.RFC3339),
	}
	if !payment.NextRetryAt.IsZero() {
		resp.NextRetryAt = payment.NextRetryAt.Format(time.RFC3339)
	}
	return resp
}

// CreatePayment handles POST /v1/payments
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	payment, err := h.paymentService.CreatePayment(c.Request.Context(), req.TripID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusCreated, paymentResponse(payment))
}

// GetPayment handles GET /v1/payments/:id
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	payment, err := h.paymentService.GetPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, paymentResponse(payment))
}

// Webhook handles POST /v1/payments/webhook. The signature covers the raw
// body, so the body is read before binding.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.paymentService.VerifyWebhookSignature(body, c.GetHeader(webhookSignatureHeader)); err != nil {
		respondError(c, err)
		return
	}

	var req WebhookRequest
	if err := json.Unmarshal(body, &req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	payment, err := h.paymentService.HandleWebhook(c.Request.Context(), service.WebhookRequest{
		PaymentID:     req.PaymentID,
		TransactionID: req.TransactionID,
		Status:        req.Status,
		Reason:        req.Reason,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, paymentResponse(payment))
}
