package service

import (
	"context"

	"storefront/internal/domain/entity"
)

// SessionRequest asks the gateway for a payment session.
type SessionRequest struct {
	Amount   entity.Money
	Currency string
	Receipt  string
	Notes    map[string]string
}

// PaymentSession is the gateway-side order the client pays against.
type PaymentSession struct {
	ID       string
	Amount   entity.Money
	Currency string
	Receipt  string
}

// PaymentGateway is the third-party payment provider.
type PaymentGateway interface {
	// CreateSession opens a payment session. It must honour ctx cancellation.
	CreateSession(ctx context.Context, req SessionRequest) (*PaymentSession, error)

	// VerifySignature checks the gateway's signature over orderID and paymentID
	// in constant time.
	VerifySignature(orderID, paymentID, signature string) bool

	// PublicKeyID is the key the client checkout widget is initialised with.
	PublicKeyID() string
}
