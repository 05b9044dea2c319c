package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/abdurrahmanshkh/admybrand-dashboard/components/dashboard"
)

// SetWidgetHiddenInput hides or restores one widget for a viewer.
type SetWidgetHiddenInput struct {
	Viewer   dashboard.ViewerContext `json:"viewer"`
	WidgetID string                  `json:"widget_id"`
	Hidden   bool                    `json:"hidden"`
}

type visibilityService interface {
	SetWidgetHidden(ctx context.Context, viewer dashboard.ViewerContext, widgetID string, hidden bool) error
}

// SetWidgetHiddenCommand persists widget visibility preferences.
type SetWidgetHiddenCommand struct {
	service   visibilityService
	telemetry Telemetry
}

// NewSetWidgetHiddenCommand creates the command.
func NewSetWidgetHiddenCommand(service visibilityService, telemetry Telemetry) *SetWidgetHiddenCommand {
	return &SetWidgetHiddenCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SetWidgetHiddenInput] = (*SetWidgetHiddenCommand)(nil)

// Execute stores the visibility flag for the viewer.
func (c *SetWidgetHiddenCommand) Execute(ctx context.Context, msg SetWidgetHiddenInput) error {
	if c.service == nil {
		return errors.New("visibility command requires service")
	}
	if msg.Viewer.UserID == "" {
		return dashboard.ErrViewerRequired
	}
	if err := c.service.SetWidgetHidden(ctx, msg.Viewer, msg.WidgetID, msg.Hidden); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.visibility", map[string]any{
		"user_id":   msg.Viewer.UserID,
		"widget_id": msg.WidgetID,
		"hidden":    msg.Hidden,
	})
	return nil
}
