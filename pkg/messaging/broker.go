package messaging

import (
	"context"
	"time"
)

// Broker defines the interface for message brokers
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

// Task is the payload handed to the external job runner. The API enqueues
// tasks fire-and-forget; it never awaits completion.
type Task struct {
	Kind      string      `json:"kind"`
	Payload   interface{} `json:"payload"`
	NotBefore time.Time   `json:"not_before,omitempty"`
}

// TaskReminderDispatch wakes the worker for an appointment's reminder.
const TaskReminderDispatch = "reminder.dispatch"

const TaskChannel = "salon:tasks"

// Enqueue publishes a task on the shared task channel.
func Enqueue(ctx context.Context, b Broker, kind string, payload interface{}, notBefore time.Time) error {
	return b.Publish(ctx, TaskChannel, &Task{Kind: kind, Payload: payload, NotBefore: notBefore})
}
