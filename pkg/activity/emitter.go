package activity

import (
	"context"
	"time"
)

// DefaultChannel tags events emitted by the canvas engine.
const DefaultChannel = "canvas"

// Config controls the emitter.
type Config struct {
	Enabled bool
	// Channel overrides the default channel stamped on events.
	Channel string
}

// Emitter records canvas activity through the configured hooks.
type Emitter struct {
	hooks   Hooks
	config  Config
	channel string
}

// NewEmitter builds an emitter. Without hooks the emitter is disabled no
// matter what the config says.
func NewEmitter(hooks Hooks, config Config) *Emitter {
	channel := config.Channel
	if channel == "" {
		channel = DefaultChannel
	}
	return &Emitter{hooks: hooks, config: config, channel: channel}
}

// Enabled reports whether Emit will deliver anything.
func (e *Emitter) Enabled() bool {
	return e != nil && e.config.Enabled && len(e.hooks) > 0
}

// Emit stamps defaults on the event and fans it out. Disabled emitters drop
// events silently.
func (e *Emitter) Emit(ctx context.Context, evt Event) error {
	if !e.Enabled() {
		return nil
	}
	if evt.Channel == "" {
		evt.Channel = e.channel
	}
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}
	return e.hooks.Notify(ctx, evt)
}
