// Package events fans catalog change notifications out to websocket clients
// and an optional Kafka topic.
package events

import (
	"context"
	"errors"
	"time"
)

const (
	CategoryCreated = "category_created"
	CategoryUpdated = "category_updated"
	CategoryDeleted = "category_deleted"
	FoodCreated     = "food_created"
	FoodUpdated     = "food_updated"
	FoodDeleted     = "food_deleted"
	AddOnCreated    = "addon_created"
	AddOnUpdated    = "addon_updated"
	AddOnDeleted    = "addon_deleted"
)

type Event struct {
	Type string      `json:"event"`
	ID   uint        `json:"id"`
	Data interface{} `json:"data,omitempty"`
	At   time.Time   `json:"at"`
}

func New(eventType string, id uint, data interface{}) Event {
	return Event{Type: eventType, ID: id, Data: data, At: time.Now().UTC()}
}

type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

// Multi publishes to every sink and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, evt Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
