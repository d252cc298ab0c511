package events

import "context"

// NoOpPublisher drops every event. Used when no broker is configured.
type NoOpPublisher struct{}

func NewNoOp() *NoOpPublisher { return &NoOpPublisher{} }

func (NoOpPublisher) Publish(context.Context, Event) error { return nil }

func (NoOpPublisher) Close() error { return nil }
