package canvas

import "context"

// Telemetry records canvas events for observability. Event names are
// dot-scoped strings such as "canvas.hydrate", "canvas.sync.geometry", or
// "canvas.mirror.refresh_error"; payloads carry the entry id and any failure
// detail.
type Telemetry interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

// normalizeTelemetry guarantees a usable recorder so callers never nil-check.
func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}

// TelemetryFunc adapts a function to the Telemetry interface.
type TelemetryFunc func(ctx context.Context, event string, payload map[string]any)

// Record calls the wrapped function.
func (f TelemetryFunc) Record(ctx context.Context, event string, payload map[string]any) {
	f(ctx, event, payload)
}
