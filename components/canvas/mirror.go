package canvas

import (
	"errors"

	"github.com/goliatone/go-canvas/pkg/grid"
)

// ErrMirrorClosed is returned when a disposed mirror is refreshed.
var ErrMirrorClosed = errors.New("canvas: mirror has been closed")

// MirrorOptions configures the fullscreen mirror grid.
type MirrorOptions struct {
	Columns    int
	CellHeight int
}

// Mirror is the secondary, read-only grid used for the fullscreen view. It
// is a pure projection of the store: rebuilt through DeriveNodes on open
// and on every refresh, it can never drift except by construction, and it
// never originates store mutations.
type Mirror struct {
	grid  *grid.Grid
	store *Store
}

// OpenMirror instantiates a static grid and populates it from the current
// store snapshot with explicit positions for every entry.
func OpenMirror(store *Store, opts MirrorOptions) (*Mirror, error) {
	if store == nil {
		return nil, errors.New("canvas: mirror requires a store")
	}
	m := &Mirror{
		grid: grid.New(grid.Options{
			Columns:    opts.Columns,
			CellHeight: opts.CellHeight,
			Static:     true,
		}),
		store: store,
	}
	if err := m.Refresh(); err != nil {
		return nil, err
	}
	return m, nil
}

// Refresh reconciles the mirror grid against the current store snapshot.
// Idempotent: an unchanged snapshot produces no grid mutations.
func (m *Mirror) Refresh() error {
	if m.grid.Destroyed() {
		return ErrMirrorClosed
	}
	specs := DeriveNodes(m.store.Entries())
	wanted := make(map[string]grid.NodeSpec, len(specs))
	for _, spec := range specs {
		wanted[spec.ID] = spec
	}
	for _, node := range m.grid.Nodes() {
		if _, keep := wanted[node.ID]; !keep {
			m.grid.RemoveNode(node.ID)
		}
	}
	for _, spec := range specs {
		node, exists := m.grid.Node(spec.ID)
		if !exists {
			if _, err := m.grid.AddNode(spec); err != nil {
				return err
			}
			continue
		}
		if node.X != spec.X || node.Y != spec.Y || node.W != spec.W || node.H != spec.H {
			if _, _, err := m.grid.UpdateNode(spec.ID, spec.X, spec.Y, spec.W, spec.H); err != nil {
				return err
			}
		}
	}
	return nil
}

// Nodes returns the mirror's node snapshots.
func (m *Mirror) Nodes() []grid.Node {
	return m.grid.Nodes()
}

// Zoom forwards the presentation scale factor to the mirror grid.
func (m *Mirror) Zoom(scale float64) {
	m.grid.SetZoom(scale)
}

// Close fully disposes the mirror's grid instance. A reopened fullscreen
// view starts from a clean instance, never stale nodes.
func (m *Mirror) Close() {
	m.grid.Destroy()
}

// Closed reports whether the mirror has been disposed.
func (m *Mirror) Closed() bool {
	return m.grid.Destroyed()
}

// DeriveNodes projects the combined widget list into grid node specs with
// explicit positions. Both views build their node lists from this single
// deterministic scheme.
func DeriveNodes(entries []Entry) []grid.NodeSpec {
	specs := make([]grid.NodeSpec, 0, len(entries))
	for _, entry := range entries {
		geom := entry.Geom()
		if !geom.Placed() {
			geom = normalizeGeometry(geom)
		}
		specs = append(specs, grid.NodeSpec{
			ID: entry.ID(),
			X:  geom.X,
			Y:  geom.Y,
			W:  geom.Width,
			H:  geom.Height,
		})
	}
	return specs
}
