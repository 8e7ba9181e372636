package commands

import (
	"context"
	"errors"

	canvas "github.com/goliatone/go-canvas/components/canvas"
	gocommand "github.com/goliatone/go-command"
)

type textService interface {
	AddTextWidget(ctx context.Context) (canvas.TextWidget, error)
	OpenEditor(ctx context.Context, id string) error
	SaveText(ctx context.Context, id, content string) error
	CancelText(ctx context.Context, id string) error
}

// AddTextRequest asks for a new local text placeholder. It carries no
// payload; the service picks the position and temporary id.
type AddTextRequest struct{}

// AddTextCommand places a new text widget placeholder with its editor open.
type AddTextCommand struct {
	service   textService
	telemetry Telemetry
}

// NewAddTextCommand creates a command instance.
func NewAddTextCommand(service textService, telemetry Telemetry) *AddTextCommand {
	return &AddTextCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[AddTextRequest] = (*AddTextCommand)(nil)

// Execute delegates to the canvas service.
func (c *AddTextCommand) Execute(ctx context.Context, _ AddTextRequest) error {
	if c.service == nil {
		return errors.New("add text command requires service")
	}
	text, err := c.service.AddTextWidget(ctx)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "canvas.text.add", map[string]any{
		"entry_id": text.ID,
	})
	return nil
}

// EditTextRequest opens the editor for a saved text widget.
type EditTextRequest struct {
	EntryID string `json:"entry_id"`
}

// EditTextCommand opens the content editor.
type EditTextCommand struct {
	service textService
}

// NewEditTextCommand creates a command instance.
func NewEditTextCommand(service textService) *EditTextCommand {
	return &EditTextCommand{service: service}
}

var _ gocommand.Commander[EditTextRequest] = (*EditTextCommand)(nil)

// Execute delegates to the canvas service.
func (c *EditTextCommand) Execute(ctx context.Context, msg EditTextRequest) error {
	if c.service == nil {
		return errors.New("edit text command requires service")
	}
	if msg.EntryID == "" {
		return errors.New("edit text command requires entry id")
	}
	return c.service.OpenEditor(ctx, msg.EntryID)
}

// SaveTextRequest submits editor content for a text widget.
type SaveTextRequest struct {
	EntryID string `json:"entry_id"`
	Content string `json:"content"`
}

// SaveTextCommand persists editor content through the canvas service.
type SaveTextCommand struct {
	service   textService
	telemetry Telemetry
}

// NewSaveTextCommand creates a command instance.
func NewSaveTextCommand(service textService, telemetry Telemetry) *SaveTextCommand {
	return &SaveTextCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SaveTextRequest] = (*SaveTextCommand)(nil)

// Execute delegates to the canvas service.
func (c *SaveTextCommand) Execute(ctx context.Context, msg SaveTextRequest) error {
	if c.service == nil {
		return errors.New("save text command requires service")
	}
	if msg.EntryID == "" {
		return errors.New("save text command requires entry id")
	}
	if err := c.service.SaveText(ctx, msg.EntryID, msg.Content); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "canvas.text.save", map[string]any{
		"entry_id": msg.EntryID,
	})
	return nil
}

// CancelTextRequest closes the editor without saving.
type CancelTextRequest struct {
	EntryID string `json:"entry_id"`
}

// CancelTextCommand discards unsaved editor content.
type CancelTextCommand struct {
	service textService
}

// NewCancelTextCommand creates a command instance.
func NewCancelTextCommand(service textService) *CancelTextCommand {
	return &CancelTextCommand{service: service}
}

var _ gocommand.Commander[CancelTextRequest] = (*CancelTextCommand)(nil)

// Execute delegates to the canvas service.
func (c *CancelTextCommand) Execute(ctx context.Context, msg CancelTextRequest) error {
	if c.service == nil {
		return errors.New("cancel text command requires service")
	}
	if msg.EntryID == "" {
		return errors.New("cancel text command requires entry id")
	}
	return c.service.CancelText(ctx, msg.EntryID)
}
