package service

import (
	"context"
)

// DispatchEventKind names the two dispatch events this system emits.
type DispatchEventKind string

const (
	EventOrderAssigned   DispatchEventKind = "order.assigned"
	EventOrderUnassigned DispatchEventKind = "order.unassigned"
)

// DispatchEvent is published for every outcome the single-order dispatcher
// reaches: order.assigned with the vehicle id when an assignment is made,
// order.unassigned with the failure reason otherwise. It serves downstream
// consumers (driver apps, ETAs, analytics) that need to react without
// polling the dispatch API.
type DispatchEvent struct {
	RequestID     string            `json:"request_id,omitempty"`
	Kind          DispatchEventKind `json:"kind"`
	OrderID       string            `json:"order_id"`
	VehicleID     string            `json:"vehicle_id,omitempty"`
	FailureReason string            `json:"failure_reason,omitempty"`
}

// EventPublisher publishes dispatch events to a message queue.
type EventPublisher interface {
	// PublishDispatchEvent publishes one dispatch event for async processing.
	PublishDispatchEvent(ctx context.Context, event *DispatchEvent) error

	// Close releases any resources held by the publisher.
	Close() error
}
