package commands

import (
	"context"

	"github.com/abdurrahmanshkh/admybrand-dashboard/components/datatable"
)

// Telemetry allows commands to emit structured events.
type Telemetry interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}

func refPayload(ref datatable.TableRef, extra map[string]any) map[string]any {
	payload := map[string]any{
		"table":   ref.Table,
		"session": ref.Session,
	}
	for k, v := range extra {
		payload[k] = v
	}
	return payload
}
