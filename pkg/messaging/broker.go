package messaging

import (
	"context"
)

// Broker defines the interface for message brokers
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

// Channels published by the gateway. Scanner stations subscribe to
// PatientRegistered to refresh their pending-prescription queues.
const (
	ChannelPatientRegistered = "patient.registered"
	ChannelPrintCompleted    = "print.completed"
	ChannelPrintFailed       = "print.failed"
)

type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
