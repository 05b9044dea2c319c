// Package activity carries audit events for bulk table actions to pluggable hooks.
package activity

import (
	"context"
	"errors"
	"maps"
	"slices"
	"strings"
	"time"
)

// DefaultChannel is stamped on events emitted without a channel.
const DefaultChannel = "dashboard"

// Event describes one user-visible action, such as deleting selected rows.
type Event struct {
	Verb           string         `json:"verb"`
	ActorID        string         `json:"actor_id,omitempty"`
	UserID         string         `json:"user_id,omitempty"`
	TenantID       string         `json:"tenant_id,omitempty"`
	ObjectType     string         `json:"object_type"`
	ObjectID       string         `json:"object_id"`
	Channel        string         `json:"channel,omitempty"`
	DefinitionCode string         `json:"definition_code,omitempty"`
	Recipients     []string       `json:"recipients,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	OccurredAt     time.Time      `json:"occurred_at"`
}

// Valid reports whether the event names a verb and an object.
func (e Event) Valid() bool {
	return e.Verb != "" && e.ObjectType != "" && e.ObjectID != ""
}

// NormalizeEvent trims identifiers, clones reference fields and stamps OccurredAt when unset.
func NormalizeEvent(evt Event) Event {
	evt.Verb = strings.TrimSpace(evt.Verb)
	evt.ActorID = strings.TrimSpace(evt.ActorID)
	evt.UserID = strings.TrimSpace(evt.UserID)
	evt.TenantID = strings.TrimSpace(evt.TenantID)
	evt.ObjectType = strings.TrimSpace(evt.ObjectType)
	evt.ObjectID = strings.TrimSpace(evt.ObjectID)
	evt.Channel = strings.TrimSpace(evt.Channel)
	evt.DefinitionCode = strings.TrimSpace(evt.DefinitionCode)
	evt.Recipients = slices.Clone(evt.Recipients)
	evt.Metadata = maps.Clone(evt.Metadata)
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}
	return evt
}

// Hook receives normalized events.
type Hook interface {
	Notify(ctx context.Context, evt Event) error
}

// HookFunc adapts a function to Hook.
type HookFunc func(ctx context.Context, evt Event) error

// Notify calls f.
func (f HookFunc) Notify(ctx context.Context, evt Event) error {
	return f(ctx, evt)
}

// Hooks fans an event out to every hook. Invalid events are dropped silently.
type Hooks []Hook

// Notify normalizes evt and delivers it to each hook, joining their errors.
func (h Hooks) Notify(ctx context.Context, evt Event) error {
	evt = NormalizeEvent(evt)
	if !evt.Valid() {
		return nil
	}
	var errs []error
	for _, hook := range h {
		if hook == nil {
			continue
		}
		if err := hook.Notify(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Config toggles emission.
type Config struct {
	Enabled bool
	Channel string
}

// Emitter stamps defaults on events and forwards them to hooks.
type Emitter struct {
	hooks   Hooks
	enabled bool
	channel string
}

// NewEmitter builds an emitter. It is disabled when cfg is off or there are no hooks.
func NewEmitter(hooks Hooks, cfg Config) *Emitter {
	channel := strings.TrimSpace(cfg.Channel)
	if channel == "" {
		channel = DefaultChannel
	}
	return &Emitter{
		hooks:   hooks,
		enabled: cfg.Enabled && len(hooks) > 0,
		channel: channel,
	}
}

// Enabled reports whether Emit delivers events.
func (e *Emitter) Enabled() bool {
	return e != nil && e.enabled
}

// Emit delivers evt to the hooks when enabled.
func (e *Emitter) Emit(ctx context.Context, evt Event) error {
	if !e.Enabled() {
		return nil
	}
	if strings.TrimSpace(evt.Channel) == "" {
		evt.Channel = e.channel
	}
	return e.hooks.Notify(ctx, evt)
}
