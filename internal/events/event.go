// Package events carries appointment lifecycle notifications from the
// services to whoever listens: websocket clients of the same clinic, a
// Redis channel and a Mongo archive.
package events

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
)

const (
	NewAppointment     = "newAppointment"
	AppointmentUpdated = "appointmentUpdated"
	UpdatedAppointment = "updatedAppointment"
	ParametersUpdated  = "parametersUpdated"
)

type Event struct {
	ID         string    `json:"id" bson:"_id"`
	Name       string    `json:"event" bson:"event"`
	TenantID   uint      `json:"hospitalId" bson:"hospitalId"`
	OccurredAt time.Time `json:"occurredAt" bson:"occurredAt"`
	Payload    any       `json:"payload" bson:"payload"`
}

// New stamps an event with a fresh id.
func New(name string, tenantID uint, at time.Time, payload any) Event {
	return Event{
		ID:         uuid.NewString(),
		Name:       name,
		TenantID:   tenantID,
		OccurredAt: at,
		Payload:    payload,
	}
}

// Topic is the per-clinic routing key shared by the hub and Redis.
func Topic(tenantID uint) string {
	return "clinic:events:" + strconv.FormatUint(uint64(tenantID), 10)
}

// Publisher is fire-and-forget: a returned error is only reported, never
// retried.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, Event) error { return nil }

// Nop discards every event.
func Nop() Publisher { return nopPublisher{} }

// Multi publishes to every target and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
