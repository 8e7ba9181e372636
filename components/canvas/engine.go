package canvas

import (
	"context"

	"github.com/goliatone/go-canvas/pkg/grid"
)

// Default size for entries that arrive without stored coordinates.
const (
	DefaultTextWidth  = 4
	DefaultTextHeight = 5
)

// EngineOptions configures a grid engine instance.
type EngineOptions struct {
	Columns    int
	CellHeight int
	Editable   bool
	Sync       *SyncAdapter
	Telemetry  Telemetry
}

// Engine owns the mapping between the store's logical list and the grid
// primitive's node list, keeping both consistent under store-driven and
// user-driven changes.
type Engine struct {
	grid      *grid.Grid
	store     *Store
	sync      *SyncAdapter
	telemetry Telemetry
	baseCtx   context.Context
	editable  bool
}

// NewEngine creates a grid configured with the fixed column count and cell
// height, registers the node event hooks, and leaves drag/resize enabled
// only when Editable is set.
func NewEngine(store *Store, opts EngineOptions) *Engine {
	e := &Engine{
		grid: grid.New(grid.Options{
			Columns:    opts.Columns,
			CellHeight: opts.CellHeight,
			Static:     !opts.Editable,
		}),
		store:     store,
		sync:      opts.Sync,
		telemetry: normalizeTelemetry(opts.Telemetry),
		baseCtx:   context.Background(),
		editable:  opts.Editable,
	}
	e.grid.OnNodesChanged(e.handleNodesChanged)
	e.grid.OnNodeAdded(e.handleNodeAdded)
	e.grid.OnNodeRemoved(e.handleNodeRemoved)
	return e
}

// Grid exposes the wrapped primitive. Transports route user gestures
// through it so grid and store stay consistent.
func (e *Engine) Grid() *grid.Grid { return e.grid }

// Editable reports whether drag/resize is enabled.
func (e *Engine) Editable() bool { return e.editable }

// SetEditable flips interactivity without rebuilding nodes. Leaving edit
// mode clears hover affordances so controls do not linger in read-only mode.
func (e *Engine) SetEditable(editable bool) {
	if e.editable == editable {
		return
	}
	e.editable = editable
	e.grid.SetStatic(!editable)
	if !editable {
		e.store.ClearControls()
	}
}

// SetZoom forwards the presentation scale to the grid. It never triggers
// reconciliation.
func (e *Engine) SetZoom(scale float64) {
	e.grid.SetZoom(scale)
}

// Reconcile diffs the combined widget list against the grid's nodes by id:
// stale nodes are removed, missing entries added (auto-positioned only when
// unplaced), and drifted geometry updated. Calling it twice with the same
// list produces no further grid mutations.
func (e *Engine) Reconcile() error {
	entries := e.store.Entries()
	wanted := make(map[string]Entry, len(entries))
	for _, entry := range entries {
		wanted[entry.ID()] = entry
	}

	for _, node := range e.grid.Nodes() {
		if _, keep := wanted[node.ID]; !keep {
			e.grid.RemoveNode(node.ID)
		}
	}

	for _, entry := range entries {
		id := entry.ID()
		geom := entry.Geom()
		node, exists := e.grid.Node(id)
		if !exists {
			spec := grid.NodeSpec{ID: id, X: geom.X, Y: geom.Y, W: geom.Width, H: geom.Height}
			if !geom.Placed() {
				spec.AutoPosition = true
				spec.W = DefaultTextWidth
				spec.H = DefaultTextHeight
			}
			placed, err := e.grid.AddNode(spec)
			if err != nil {
				return err
			}
			if !geom.Placed() {
				// Write the assigned slot back so the store satisfies the
				// bounds invariant and later diffs see no drift.
				if _, err := e.store.ApplyGeometry(id, nodeGeometry(placed)); err != nil {
					return err
				}
			}
			continue
		}
		if nodeGeometry(node) != geom {
			if _, _, err := e.grid.UpdateNode(id, geom.X, geom.Y, geom.Width, geom.Height); err != nil {
				return err
			}
		}
	}
	return nil
}

// RemoveNode routes a deletion through the grid's removal API. This is the
// only path by which deletion reaches the store.
func (e *Engine) RemoveNode(id string) bool {
	_, ok := e.grid.RemoveNode(id)
	return ok
}

// Dispose destroys the wrapped grid instance.
func (e *Engine) Dispose() {
	e.grid.Destroy()
}

// handleNodesChanged applies user-driven geometry back to the store and
// forwards it to the sync adapter. Geometry echoes the engine itself wrote
// back are dropped by the exact-equality check; unknown ids are logged and
// ignored.
func (e *Engine) handleNodesChanged(nodes []grid.Node) {
	for _, node := range nodes {
		entry, ok := e.store.Entry(node.ID)
		if !ok {
			e.telemetry.Record(e.baseCtx, "canvas.node.unknown", map[string]any{
				"node_id": node.ID,
			})
			continue
		}
		geom := nodeGeometry(node)
		if geom == entry.Geom() {
			continue
		}
		changed, err := e.store.ApplyGeometry(node.ID, geom)
		if err != nil || !changed {
			continue
		}
		if state, ok := e.store.TextState(node.ID); ok && state.Placeholder() {
			continue
		}
		if e.sync != nil {
			if updated, ok := e.store.Entry(node.ID); ok {
				e.sync.PersistGeometry(e.baseCtx, updated)
			}
		}
	}
}

func (e *Engine) handleNodeAdded(node grid.Node) {
	e.telemetry.Record(e.baseCtx, "canvas.node.added", map[string]any{
		"node_id": node.ID,
	})
}

// handleNodeRemoved drops the entry from the store. The grid node is
// already gone when this fires.
func (e *Engine) handleNodeRemoved(node grid.Node) {
	e.store.Remove(node.ID)
}

func nodeGeometry(node grid.Node) Geometry {
	return Geometry{X: node.X, Y: node.Y, Width: node.W, Height: node.H}
}
