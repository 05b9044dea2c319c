package commands

import (
	"context"

	gocommand "github.com/goliatone/go-command"

	"github.com/abdurrahmanshkh/admybrand-dashboard/components/datatable"
)

// ToggleSortInput advances the sort cycle of a column.
type ToggleSortInput struct {
	datatable.TableRef
	ColumnID string `json:"column_id"`
}

// ToggleSortCommand cycles a column through asc, desc and unsorted.
type ToggleSortCommand struct {
	service   tableResolver
	telemetry Telemetry
}

// NewToggleSortCommand creates the command.
func NewToggleSortCommand(service tableResolver, telemetry Telemetry) *ToggleSortCommand {
	return &ToggleSortCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ToggleSortInput] = (*ToggleSortCommand)(nil)

// Execute toggles the sort on the session's table.
func (c *ToggleSortCommand) Execute(ctx context.Context, msg ToggleSortInput) error {
	handle, err := resolve(ctx, c.service, msg.TableRef, "sort")
	if err != nil {
		return err
	}
	if err := handle.ToggleSort(ctx, msg.ColumnID); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "datatable.command.sort", refPayload(msg.TableRef, map[string]any{
		"column_id": msg.ColumnID,
	}))
	return nil
}

// SetFilterInput replaces the global filter text.
type SetFilterInput struct {
	datatable.TableRef
	Filter string `json:"filter"`
}

// SetFilterCommand updates the filter of a table.
type SetFilterCommand struct {
	service   tableResolver
	telemetry Telemetry
}

// NewSetFilterCommand creates the command.
func NewSetFilterCommand(service tableResolver, telemetry Telemetry) *SetFilterCommand {
	return &SetFilterCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SetFilterInput] = (*SetFilterCommand)(nil)

// Execute sets the filter.
func (c *SetFilterCommand) Execute(ctx context.Context, msg SetFilterInput) error {
	handle, err := resolve(ctx, c.service, msg.TableRef, "filter")
	if err != nil {
		return err
	}
	handle.SetFilter(ctx, msg.Filter)
	c.telemetry.Record(ctx, "datatable.command.filter", refPayload(msg.TableRef, map[string]any{
		"length": len(msg.Filter),
	}))
	return nil
}

// SetPageInput moves to a page. Out of range indexes are clamped.
type SetPageInput struct {
	datatable.TableRef
	PageIndex int `json:"page_index"`
}

// SetPageCommand moves a table to another page.
type SetPageCommand struct {
	service   tableResolver
	telemetry Telemetry
}

// NewSetPageCommand creates the command.
func NewSetPageCommand(service tableResolver, telemetry Telemetry) *SetPageCommand {
	return &SetPageCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SetPageInput] = (*SetPageCommand)(nil)

// Execute moves the page.
func (c *SetPageCommand) Execute(ctx context.Context, msg SetPageInput) error {
	handle, err := resolve(ctx, c.service, msg.TableRef, "page")
	if err != nil {
		return err
	}
	handle.SetPage(ctx, msg.PageIndex)
	c.telemetry.Record(ctx, "datatable.command.page", refPayload(msg.TableRef, map[string]any{
		"page_index": msg.PageIndex,
	}))
	return nil
}

// SetPageSizeInput changes the page size.
type SetPageSizeInput struct {
	datatable.TableRef
	PageSize int `json:"page_size"`
}

// SetPageSizeCommand changes how many rows a page holds.
type SetPageSizeCommand struct {
	service   tableResolver
	telemetry Telemetry
}

// NewSetPageSizeCommand creates the command.
func NewSetPageSizeCommand(service tableResolver, telemetry Telemetry) *SetPageSizeCommand {
	return &SetPageSizeCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SetPageSizeInput] = (*SetPageSizeCommand)(nil)

// Execute changes the page size.
func (c *SetPageSizeCommand) Execute(ctx context.Context, msg SetPageSizeInput) error {
	handle, err := resolve(ctx, c.service, msg.TableRef, "page size")
	if err != nil {
		return err
	}
	if err := handle.SetPageSize(ctx, msg.PageSize); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "datatable.command.page_size", refPayload(msg.TableRef, map[string]any{
		"page_size": msg.PageSize,
	}))
	return nil
}

// ToggleColumnInput flips the visibility of a data column.
type ToggleColumnInput struct {
	datatable.TableRef
	ColumnID string `json:"column_id"`
}

// ToggleColumnCommand shows or hides a column.
type ToggleColumnCommand struct {
	service   tableResolver
	telemetry Telemetry
}

// NewToggleColumnCommand creates the command.
func NewToggleColumnCommand(service tableResolver, telemetry Telemetry) *ToggleColumnCommand {
	return &ToggleColumnCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ToggleColumnInput] = (*ToggleColumnCommand)(nil)

// Execute toggles the column.
func (c *ToggleColumnCommand) Execute(ctx context.Context, msg ToggleColumnInput) error {
	handle, err := resolve(ctx, c.service, msg.TableRef, "column")
	if err != nil {
		return err
	}
	if err := handle.ToggleColumn(ctx, msg.ColumnID); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "datatable.command.column", refPayload(msg.TableRef, map[string]any{
		"column_id": msg.ColumnID,
	}))
	return nil
}

// ApplyViewInput applies several view changes in one step.
type ApplyViewInput struct {
	datatable.TableRef
	Request datatable.ViewRequest `json:"request"`
}

// ApplyViewCommand applies a validated ViewRequest.
type ApplyViewCommand struct {
	service   tableResolver
	telemetry Telemetry
}

// NewApplyViewCommand creates the command.
func NewApplyViewCommand(service tableResolver, telemetry Telemetry) *ApplyViewCommand {
	return &ApplyViewCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ApplyViewInput] = (*ApplyViewCommand)(nil)

// Execute applies the request.
func (c *ApplyViewCommand) Execute(ctx context.Context, msg ApplyViewInput) error {
	handle, err := resolve(ctx, c.service, msg.TableRef, "view")
	if err != nil {
		return err
	}
	if err := handle.Apply(ctx, msg.Request); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "datatable.command.view", refPayload(msg.TableRef, nil))
	return nil
}
