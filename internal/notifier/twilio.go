package notifier

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/salonhq/salon-api/internal/model"
)

type TwilioConfig struct {
	AccountSID   string
	AuthToken    string
	FromNumber   string
	WhatsAppFrom string
}

// TwilioNotifier delivers SMS and WhatsApp messages through the Twilio REST
// API. The same notifier serves both channels; WhatsApp endpoints differ only
// by an address prefix.
type TwilioNotifier struct {
	client       *twilio.RestClient
	fromNumber   string
	whatsAppFrom string
}

func NewTwilioNotifier(cfg TwilioConfig) *TwilioNotifier {
	return &TwilioNotifier{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.AccountSID,
			Password: cfg.AuthToken,
		}),
		fromNumber:   cfg.FromNumber,
		whatsAppFrom: cfg.WhatsAppFrom,
	}
}

func (n *TwilioNotifier) Send(ctx context.Context, msg *Message) error {
	from := n.fromNumber
	to := msg.Recipient
	if msg.Channel == model.ReminderChannelWhatsApp {
		from = "whatsapp:" + n.whatsAppFrom
		to = "whatsapp:" + msg.Recipient
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(from)
	params.SetTo(to)
	params.SetBody(msg.Body)

	if _, err := n.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("failed to send %s message: %w", msg.Channel, err)
	}
	return nil
}
