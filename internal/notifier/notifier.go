package notifier

import (
	"context"
	"fmt"

	"github.com/salonhq/salon-api/internal/model"
)

// Message is one outbound notification.
type Message struct {
	Channel   model.ReminderChannel
	Recipient string
	Subject   string
	Body      string
}

// Notifier is the delivery boundary for a single channel.
type Notifier interface {
	Send(ctx context.Context, msg *Message) error
}

// Registry routes messages to the notifier registered for their channel.
type Registry struct {
	channels map[model.ReminderChannel]Notifier
}

func NewRegistry() *Registry {
	return &Registry{channels: make(map[model.ReminderChannel]Notifier)}
}

func (r *Registry) Register(channel model.ReminderChannel, n Notifier) {
	r.channels[channel] = n
}

func (r *Registry) Send(ctx context.Context, msg *Message) error {
	n, ok := r.channels[msg.Channel]
	if !ok {
		return fmt.Errorf("no notifier registered for channel %q", msg.Channel)
	}
	return n.Send(ctx, msg)
}
