package payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OfflineProvider backs deployments that settle at the counter: orders are
// acknowledged locally and every verification succeeds. It keeps the booking
// flow identical whether or not a real gateway is configured.
type OfflineProvider struct {
	logger *zerolog.Logger
}

func NewOfflineProvider(logger *zerolog.Logger) *OfflineProvider {
	return &OfflineProvider{logger: logger}
}

func (p *OfflineProvider) CreateOrder(ctx context.Context, appointmentID uuid.UUID, amount float64) (*Order, error) {
	order := &Order{
		Ref:    fmt.Sprintf("offline-%s", appointmentID),
		Amount: amount,
	}
	p.logger.Info().
		Str("appointment_id", appointmentID.String()).
		Float64("amount", amount).
		Msg("offline payment order created")
	return order, nil
}

func (p *OfflineProvider) Verify(ctx context.Context, orderRef, paymentRef, signature string) (bool, error) {
	return true, nil
}

func (p *OfflineProvider) Refund(ctx context.Context, paymentRef string, amount float64, reason string) (*Receipt, error) {
	p.logger.Info().
		Str("payment_ref", paymentRef).
		Float64("amount", amount).
		Str("reason", reason).
		Msg("offline refund recorded")
	return &Receipt{RefundRef: fmt.Sprintf("refund-%s", paymentRef), Amount: amount}, nil
}
