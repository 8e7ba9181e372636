package commands

import (
	"context"
	"errors"

	canvas "github.com/goliatone/go-canvas/components/canvas"
	gocommand "github.com/goliatone/go-command"
)

// MoveEntryRequest carries a drag/resize gesture result for one entry.
type MoveEntryRequest struct {
	EntryID  string          `json:"entry_id"`
	Geometry canvas.Geometry `json:"geometry"`
}

type moveService interface {
	Move(ctx context.Context, id string, geom canvas.Geometry) error
}

// MoveEntryCommand routes gesture results through the canvas service so
// transports never touch the grid directly.
type MoveEntryCommand struct {
	service   moveService
	telemetry Telemetry
}

// NewMoveEntryCommand creates a command instance.
func NewMoveEntryCommand(service moveService, telemetry Telemetry) *MoveEntryCommand {
	return &MoveEntryCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[MoveEntryRequest] = (*MoveEntryCommand)(nil)

// Execute delegates to the canvas service.
func (c *MoveEntryCommand) Execute(ctx context.Context, msg MoveEntryRequest) error {
	if c.service == nil {
		return errors.New("move command requires service")
	}
	if msg.EntryID == "" {
		return errors.New("move command requires entry id")
	}
	if err := c.service.Move(ctx, msg.EntryID, msg.Geometry); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "canvas.entry.move", map[string]any{
		"entry_id": msg.EntryID,
		"x":        msg.Geometry.X,
		"y":        msg.Geometry.Y,
	})
	return nil
}
