// Package payment is the client for the hosted payment gateway.
package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"storefront/config"
	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/domain/service"
	"storefront/internal/errors"
)

const (
	defaultBaseURL = "https://api.razorpay.com"
	ordersPath     = "/v1/orders"

	// maxErrorBody bounds how much of a failed response is read for logging.
	maxErrorBody = 4 << 10
)

type razorpayGateway struct {
	baseURL    string
	keyID      string
	keySecret  string
	httpClient *http.Client
	logger     *slog.Logger
}

type createOrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type createOrderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type errorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// NewRazorpayGateway builds the gateway client from configuration.
func NewRazorpayGateway(cfg *config.Config, logger *slog.Logger) (service.PaymentGateway, error) {
	if cfg.Payment == nil || cfg.Payment.KeyID == "" || cfg.Payment.KeySecret == "" {
		return nil, errors.New("payment.keyId and payment.keySecret are required")
	}

	baseURL := strings.TrimRight(cfg.Payment.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &razorpayGateway{
		baseURL:   baseURL,
		keyID:     cfg.Payment.KeyID,
		keySecret: cfg.Payment.KeySecret,
		httpClient: &http.Client{
			Timeout: cfg.Payment.Timeout,
		},
		logger: logger,
	}, nil
}

// CreateSession opens a gateway order for the amount in subunits.
func (g *razorpayGateway) CreateSession(ctx context.Context, req service.SessionRequest) (*service.PaymentSession, error) {
	body, err := json.Marshal(createOrderRequest{
		Amount:   req.Amount.Int64(),
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Notes:    req.Notes,
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+ordersPath, bytes.NewReader(body))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(g.keyID, g.keySecret)

	start := time.Now()
	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrPaymentGatewayFailed.WrapMessage(err.Error()), "create payment session")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		var apiErr errorResponse
		_ = json.Unmarshal(raw, &apiErr)

		g.logger.Warn("Payment gateway rejected session",
			slog.Int("status", resp.StatusCode),
			slog.String("code", apiErr.Error.Code),
			slog.String("description", apiErr.Error.Description),
			slog.String("receipt", req.Receipt),
		)

		return nil, domainerrors.ErrPaymentGatewayFailed.WrapMessage("gateway returned status " + resp.Status)
	}

	var out createOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, domainerrors.ErrPaymentGatewayFailed.WrapMessage("decode gateway response: " + err.Error())
	}
	if out.ID == "" {
		return nil, domainerrors.ErrPaymentGatewayFailed.WrapMessage("gateway returned no order id")
	}

	g.logger.Debug("Payment session created",
		slog.String("gateway_order_id", out.ID),
		slog.Int64("amount", out.Amount),
		slog.Duration("latency", time.Since(start)),
	)

	return &service.PaymentSession{
		ID:       out.ID,
		Amount:   entity.Money(out.Amount),
		Currency: out.Currency,
		Receipt:  out.Receipt,
	}, nil
}

// VerifySignature recomputes HMAC-SHA256(secret, orderID|paymentID) and compares
// the hex digests in constant time.
func (g *razorpayGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return VerifySignature(g.keySecret, orderID, paymentID, signature)
}

func (g *razorpayGateway) PublicKeyID() string {
	return g.keyID
}

// Sign returns the hex signature the gateway attaches to a successful payment.
func Sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))

	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature reports whether signature matches Sign(secret, orderID, paymentID).
func VerifySignature(secret, orderID, paymentID, signature string) bool {
	if orderID == "" || paymentID == "" || signature == "" {
		return false
	}

	expected := Sign(secret, orderID, paymentID)

	return hmac.Equal([]byte(expected), []byte(signature))
}
