package queries

import (
	"context"

	canvas "github.com/goliatone/go-canvas/components/canvas"
	gocommand "github.com/goliatone/go-command"
)

// SnapshotRequest asks for the combined widget list. It carries no filters;
// the canvas always renders as a whole.
type SnapshotRequest struct{}

type snapshotService interface {
	Snapshot() []canvas.Entry
}

// SnapshotQuery reads the current combined widget list.
type SnapshotQuery struct {
	service snapshotService
}

// NewSnapshotQuery builds the query.
func NewSnapshotQuery(service snapshotService) *SnapshotQuery {
	return &SnapshotQuery{service: service}
}

var _ gocommand.Querier[SnapshotRequest, []canvas.Entry] = (*SnapshotQuery)(nil)

// Query returns the current entries.
func (q *SnapshotQuery) Query(_ context.Context, _ SnapshotRequest) ([]canvas.Entry, error) {
	return q.service.Snapshot(), nil
}
