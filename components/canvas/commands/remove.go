package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
)

// RemoveEntryRequest identifies the entry to delete.
type RemoveEntryRequest struct {
	EntryID string `json:"entry_id"`
}

type removeService interface {
	Delete(ctx context.Context, id string) error
}

// RemoveEntryCommand deletes an entry through the canvas service.
type RemoveEntryCommand struct {
	service   removeService
	telemetry Telemetry
}

// NewRemoveEntryCommand creates a command instance.
func NewRemoveEntryCommand(service removeService, telemetry Telemetry) *RemoveEntryCommand {
	return &RemoveEntryCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RemoveEntryRequest] = (*RemoveEntryCommand)(nil)

// Execute delegates to the canvas service.
func (c *RemoveEntryCommand) Execute(ctx context.Context, msg RemoveEntryRequest) error {
	if c.service == nil {
		return errors.New("remove command requires service")
	}
	if msg.EntryID == "" {
		return errors.New("remove command requires entry id")
	}
	if err := c.service.Delete(ctx, msg.EntryID); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "canvas.entry.remove", map[string]any{
		"entry_id": msg.EntryID,
	})
	return nil
}
