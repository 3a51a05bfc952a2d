// Package events announces selling-request changes to interested dashboards.
package events

import (
	"context"
	"time"

	"github.com/green-harvest/harvest-backend/internal/marketplace/domain"
)

type EventType string

const (
	RequestCreated       EventType = "request.created"
	RequestStatusChanged EventType = "request.status_changed"
)

// RequestEvent describes one change to a selling request
type RequestEvent struct {
	Type     EventType             `json:"type"`
	Request  domain.SellingRequest `json:"request"`
	Previous domain.Status         `json:"previous,omitempty"`
	At       time.Time             `json:"at"`
}

// Concerns reports whether the event involves the given buyer or seller
func (e RequestEvent) Concerns(userID string) bool {
	return userID != "" && (e.Request.BuyerID == userID || e.Request.SellerID == userID)
}

type Publisher interface {
	Publish(ctx context.Context, e RequestEvent) error
}

type Subscriber interface {
	// Subscribe delivers events until ctx is done, then closes the channel
	Subscribe(ctx context.Context) (<-chan RequestEvent, error)
}

// Bus is both ends of the event stream
type Bus interface {
	Publisher
	Subscriber
}

// Nop drops every event. Used when no Redis is configured.
type Nop struct{}

func (Nop) Publish(context.Context, RequestEvent) error { return nil }

func (Nop) Subscribe(ctx context.Context) (<-chan RequestEvent, error) {
	ch := make(chan RequestEvent)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}
