package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	canvas "github.com/goliatone/go-canvas/components/canvas"
	"github.com/goliatone/go-canvas/components/canvas/commands"
	gocommand "github.com/goliatone/go-command"
)

// Executor bundles the write operations transports invoke against a canvas.
type Executor interface {
	Move(ctx context.Context, msg commands.MoveEntryRequest) error
	Remove(ctx context.Context, msg commands.RemoveEntryRequest) error
	AddText(ctx context.Context, msg commands.AddTextRequest) error
	EditText(ctx context.Context, msg commands.EditTextRequest) error
	SaveText(ctx context.Context, msg commands.SaveTextRequest) error
	CancelText(ctx context.Context, msg commands.CancelTextRequest) error
}

type canvasService interface {
	Move(ctx context.Context, id string, geom canvas.Geometry) error
	Delete(ctx context.Context, id string) error
	AddTextWidget(ctx context.Context) (canvas.TextWidget, error)
	OpenEditor(ctx context.Context, id string) error
	SaveText(ctx context.Context, id, content string) error
	CancelText(ctx context.Context, id string) error
}

// CommandExecutor implements Executor over the shared command set.
type CommandExecutor struct {
	move   gocommand.Commander[commands.MoveEntryRequest]
	remove gocommand.Commander[commands.RemoveEntryRequest]
	add    gocommand.Commander[commands.AddTextRequest]
	edit   gocommand.Commander[commands.EditTextRequest]
	save   gocommand.Commander[commands.SaveTextRequest]
	cancel gocommand.Commander[commands.CancelTextRequest]
}

// NewCommandExecutor wires the command set for a canvas service.
func NewCommandExecutor(service canvasService, telemetry commands.Telemetry) *CommandExecutor {
	return &CommandExecutor{
		move:   commands.NewMoveEntryCommand(service, telemetry),
		remove: commands.NewRemoveEntryCommand(service, telemetry),
		add:    commands.NewAddTextCommand(service, telemetry),
		edit:   commands.NewEditTextCommand(service),
		save:   commands.NewSaveTextCommand(service, telemetry),
		cancel: commands.NewCancelTextCommand(service),
	}
}

var _ Executor = (*CommandExecutor)(nil)

func (e *CommandExecutor) Move(ctx context.Context, msg commands.MoveEntryRequest) error {
	return e.move.Execute(ctx, msg)
}

func (e *CommandExecutor) Remove(ctx context.Context, msg commands.RemoveEntryRequest) error {
	return e.remove.Execute(ctx, msg)
}

func (e *CommandExecutor) AddText(ctx context.Context, msg commands.AddTextRequest) error {
	return e.add.Execute(ctx, msg)
}

func (e *CommandExecutor) EditText(ctx context.Context, msg commands.EditTextRequest) error {
	return e.edit.Execute(ctx, msg)
}

func (e *CommandExecutor) SaveText(ctx context.Context, msg commands.SaveTextRequest) error {
	return e.save.Execute(ctx, msg)
}

func (e *CommandExecutor) CancelText(ctx context.Context, msg commands.CancelTextRequest) error {
	return e.cancel.Execute(ctx, msg)
}

// Handlers exposes HTTP endpoints backed by shared commands.
type Handlers struct {
	Move       gocommand.Commander[commands.MoveEntryRequest]
	Remove     gocommand.Commander[commands.RemoveEntryRequest]
	AddText    gocommand.Commander[commands.AddTextRequest]
	SaveText   gocommand.Commander[commands.SaveTextRequest]
	CancelText gocommand.Commander[commands.CancelTextRequest]
}

func (h *Handlers) HandleMoveEntry(w http.ResponseWriter, r *http.Request, entryID string) {
	var payload commands.MoveEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	payload.EntryID = entryID
	if err := h.Move.Execute(r.Context(), payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) HandleRemoveEntry(w http.ResponseWriter, r *http.Request, entryID string) {
	input := commands.RemoveEntryRequest{EntryID: entryID}
	if err := h.Remove.Execute(r.Context(), input); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) HandleAddText(w http.ResponseWriter, r *http.Request) {
	if err := h.AddText.Execute(r.Context(), commands.AddTextRequest{}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handlers) HandleSaveText(w http.ResponseWriter, r *http.Request, entryID string) {
	var payload commands.SaveTextRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	payload.EntryID = entryID
	if err := h.SaveText.Execute(r.Context(), payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) HandleCancelText(w http.ResponseWriter, r *http.Request, entryID string) {
	input := commands.CancelTextRequest{EntryID: entryID}
	if err := h.CancelText.Execute(r.Context(), input); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}
