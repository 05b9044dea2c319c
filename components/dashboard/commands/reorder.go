package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/abdurrahmanshkh/admybrand-dashboard/components/dashboard"
)

// ReorderWidgetsInput contains the full order of an area.
type ReorderWidgetsInput struct {
	Viewer    dashboard.ViewerContext `json:"viewer"`
	AreaCode  string                  `json:"area_code"`
	WidgetIDs []string                `json:"widget_ids"`
	// Result receives the stored order when set.
	Result *[]string `json:"-"`
}

// MoveWidgetInput is a single drag-and-drop: ActiveID was dropped on OverID.
type MoveWidgetInput struct {
	Viewer   dashboard.ViewerContext `json:"viewer"`
	AreaCode string                  `json:"area_code"`
	ActiveID string                  `json:"active_id"`
	OverID   string                  `json:"over_id"`
	Result   *[]string               `json:"-"`
}

type reorderService interface {
	ReorderWidgets(ctx context.Context, viewer dashboard.ViewerContext, areaCode string, ids []string) ([]string, error)
	MoveWidget(ctx context.Context, viewer dashboard.ViewerContext, areaCode, activeID, overID string) ([]string, error)
}

// ReorderWidgetsCommand wraps Service.ReorderWidgets.
type ReorderWidgetsCommand struct {
	service   reorderService
	telemetry Telemetry
}

// NewReorderWidgetsCommand builds the command.
func NewReorderWidgetsCommand(service reorderService, telemetry Telemetry) *ReorderWidgetsCommand {
	return &ReorderWidgetsCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ReorderWidgetsInput] = (*ReorderWidgetsCommand)(nil)

// Execute applies the new ordering.
func (c *ReorderWidgetsCommand) Execute(ctx context.Context, msg ReorderWidgetsInput) error {
	if c.service == nil {
		return errors.New("reorder command requires service")
	}
	order, err := c.service.ReorderWidgets(ctx, msg.Viewer, msg.AreaCode, msg.WidgetIDs)
	if err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = order
	}
	c.telemetry.Record(ctx, "dashboard.command.reorder", map[string]any{
		"area_code": msg.AreaCode,
		"count":     len(msg.WidgetIDs),
	})
	return nil
}

// MoveWidgetCommand wraps Service.MoveWidget.
type MoveWidgetCommand struct {
	service   reorderService
	telemetry Telemetry
}

// NewMoveWidgetCommand builds the command.
func NewMoveWidgetCommand(service reorderService, telemetry Telemetry) *MoveWidgetCommand {
	return &MoveWidgetCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[MoveWidgetInput] = (*MoveWidgetCommand)(nil)

// Execute moves one widget onto the slot of another.
func (c *MoveWidgetCommand) Execute(ctx context.Context, msg MoveWidgetInput) error {
	if c.service == nil {
		return errors.New("move command requires service")
	}
	order, err := c.service.MoveWidget(ctx, msg.Viewer, msg.AreaCode, msg.ActiveID, msg.OverID)
	if err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = order
	}
	c.telemetry.Record(ctx, "dashboard.command.move", map[string]any{
		"area_code": msg.AreaCode,
		"active_id": msg.ActiveID,
		"over_id":   msg.OverID,
	})
	return nil
}
