package payment

import (
	"context"

	"github.com/google/uuid"
)

// Provider is the payment-gateway boundary. The booking engine treats it as
// an opaque capability; concrete gateways live behind this interface.
type Provider interface {
	CreateOrder(ctx context.Context, appointmentID uuid.UUID, amount float64) (*Order, error)
	Verify(ctx context.Context, orderRef, paymentRef, signature string) (bool, error)
	Refund(ctx context.Context, paymentRef string, amount float64, reason string) (*Receipt, error)
}

type Order struct {
	Ref    string  `json:"ref"`
	Amount float64 `json:"amount"`
}

type Receipt struct {
	RefundRef string  `json:"refund_ref"`
	Amount    float64 `json:"amount"`
}
