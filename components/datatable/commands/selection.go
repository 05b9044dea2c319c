package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/abdurrahmanshkh/admybrand-dashboard/components/datatable"
)

// ToggleRowInput flips the selection of one row.
type ToggleRowInput struct {
	datatable.TableRef
	RowID string `json:"row_id"`
}

// ToggleRowCommand selects or deselects a row.
type ToggleRowCommand struct {
	service   tableResolver
	telemetry Telemetry
}

// NewToggleRowCommand creates the command.
func NewToggleRowCommand(service tableResolver, telemetry Telemetry) *ToggleRowCommand {
	return &ToggleRowCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ToggleRowInput] = (*ToggleRowCommand)(nil)

// Execute toggles the row.
func (c *ToggleRowCommand) Execute(ctx context.Context, msg ToggleRowInput) error {
	handle, err := resolve(ctx, c.service, msg.TableRef, "row")
	if err != nil {
		return err
	}
	if err := handle.ToggleRow(ctx, msg.RowID); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "datatable.command.row", refPayload(msg.TableRef, map[string]any{
		"row_id": msg.RowID,
	}))
	return nil
}

// ToggleAllInput selects or deselects every row matching the current filter.
type ToggleAllInput struct {
	datatable.TableRef
	Selected bool `json:"selected"`
}

// ToggleAllCommand drives the header checkbox.
type ToggleAllCommand struct {
	service   tableResolver
	telemetry Telemetry
}

// NewToggleAllCommand creates the command.
func NewToggleAllCommand(service tableResolver, telemetry Telemetry) *ToggleAllCommand {
	return &ToggleAllCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ToggleAllInput] = (*ToggleAllCommand)(nil)

// Execute applies the bulk toggle.
func (c *ToggleAllCommand) Execute(ctx context.Context, msg ToggleAllInput) error {
	handle, err := resolve(ctx, c.service, msg.TableRef, "select all")
	if err != nil {
		return err
	}
	handle.ToggleAll(ctx, msg.Selected)
	c.telemetry.Record(ctx, "datatable.command.select_all", refPayload(msg.TableRef, map[string]any{
		"selected": msg.Selected,
	}))
	return nil
}

// ClearSelectionInput deselects every row, filtered out or not.
type ClearSelectionInput struct {
	datatable.TableRef
}

// ClearSelectionCommand drops the accumulated selection.
type ClearSelectionCommand struct {
	service   tableResolver
	telemetry Telemetry
}

// NewClearSelectionCommand creates the command.
func NewClearSelectionCommand(service tableResolver, telemetry Telemetry) *ClearSelectionCommand {
	return &ClearSelectionCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ClearSelectionInput] = (*ClearSelectionCommand)(nil)

// Execute clears the selection.
func (c *ClearSelectionCommand) Execute(ctx context.Context, msg ClearSelectionInput) error {
	handle, err := resolve(ctx, c.service, msg.TableRef, "clear selection")
	if err != nil {
		return err
	}
	handle.ClearSelection(ctx)
	c.telemetry.Record(ctx, "datatable.command.clear_selection", refPayload(msg.TableRef, nil))
	return nil
}

// DeleteSelectedInput removes every selected row. Deleted receives the row count when set.
type DeleteSelectedInput struct {
	datatable.TableRef
	Deleted *int `json:"-"`
}

// DeleteSelectedCommand runs the bulk delete action.
type DeleteSelectedCommand struct {
	service   tableResolver
	telemetry Telemetry
}

// NewDeleteSelectedCommand creates the command.
func NewDeleteSelectedCommand(service tableResolver, telemetry Telemetry) *DeleteSelectedCommand {
	return &DeleteSelectedCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[DeleteSelectedInput] = (*DeleteSelectedCommand)(nil)

// Execute deletes the selected rows.
func (c *DeleteSelectedCommand) Execute(ctx context.Context, msg DeleteSelectedInput) error {
	handle, err := resolve(ctx, c.service, msg.TableRef, "delete")
	if err != nil {
		return err
	}
	removed, err := handle.DeleteSelected(ctx)
	if err != nil {
		return err
	}
	if msg.Deleted != nil {
		*msg.Deleted = removed
	}
	c.telemetry.Record(ctx, "datatable.command.delete", refPayload(msg.TableRef, map[string]any{
		"rows": removed,
	}))
	return nil
}

// UnmountInput tears down every table of a session.
type UnmountInput struct {
	Session string `json:"session"`
}

type unmountService interface {
	Unmount(ctx context.Context, session string) int
}

// UnmountCommand cancels pending loads and drops a session's tables.
type UnmountCommand struct {
	service   unmountService
	telemetry Telemetry
}

// NewUnmountCommand creates the command.
func NewUnmountCommand(service unmountService, telemetry Telemetry) *UnmountCommand {
	return &UnmountCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[UnmountInput] = (*UnmountCommand)(nil)

// Execute unmounts the session.
func (c *UnmountCommand) Execute(ctx context.Context, msg UnmountInput) error {
	if c.service == nil {
		return errors.New("unmount command requires service")
	}
	if msg.Session == "" {
		return datatable.ErrSessionRequired
	}
	closed := c.service.Unmount(ctx, msg.Session)
	c.telemetry.Record(ctx, "datatable.command.unmount", map[string]any{
		"session": msg.Session,
		"tables":  closed,
	})
	return nil
}
