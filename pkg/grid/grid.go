package grid

import (
	"errors"
	"fmt"
	"sync"
)

// Defaults applied when Options leaves a field unset.
const (
	DefaultColumns    = 12
	DefaultCellHeight = 80
)

// Zoom bounds for the presentation scale factor.
const (
	MinZoom = 0.25
	MaxZoom = 3.0
)

var (
	// ErrDestroyed is returned by mutating calls after Destroy.
	ErrDestroyed = errors.New("grid: grid has been destroyed")
	// ErrStatic is returned when an interactive move reaches a static grid.
	ErrStatic = errors.New("grid: static grid rejects interaction")
	// ErrNodeNotFound is returned when an id has no matching node.
	ErrNodeNotFound = errors.New("grid: node not found")
)

// Options configures a Grid instance.
type Options struct {
	Columns    int
	CellHeight int
	Static     bool
}

// Node is one placed rectangle. Coordinates are grid cells, not pixels.
type Node struct {
	ID string
	X  int
	Y  int
	W  int
	H  int
}

// NodeSpec describes a node to add. When AutoPosition is set (or the spec
// carries no size), X/Y are ignored and the first free slot is used.
type NodeSpec struct {
	ID           string
	X            int
	Y            int
	W            int
	H            int
	AutoPosition bool
}

// Grid is a constrained column grid: a fixed column count, unbounded rows,
// collision-free placement. It owns node geometry and emits events when
// nodes are added, removed, or change position/size.
type Grid struct {
	mu         sync.Mutex
	columns    int
	cellHeight int
	static     bool
	zoom       float64
	nodes      map[string]*Node
	order      []string
	changed    []func([]Node)
	added      []func(Node)
	removed    []func(Node)
	destroyed  bool
}

// New builds a grid with the provided options.
func New(opts Options) *Grid {
	if opts.Columns <= 0 {
		opts.Columns = DefaultColumns
	}
	if opts.CellHeight <= 0 {
		opts.CellHeight = DefaultCellHeight
	}
	return &Grid{
		columns:    opts.Columns,
		cellHeight: opts.CellHeight,
		static:     opts.Static,
		zoom:       1,
		nodes:      map[string]*Node{},
	}
}

// Columns returns the fixed column count.
func (g *Grid) Columns() int { return g.columns }

// CellHeight returns the configured cell height in pixels.
func (g *Grid) CellHeight() int { return g.cellHeight }

// OnNodesChanged registers a handler for geometry changes. Handlers receive
// every node affected by a single gesture or update in one batch.
func (g *Grid) OnNodesChanged(fn func([]Node)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.changed = append(g.changed, fn)
}

// OnNodeAdded registers a handler invoked after a node is placed.
func (g *Grid) OnNodeAdded(fn func(Node)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.added = append(g.added, fn)
}

// OnNodeRemoved registers a handler invoked after a node is removed.
func (g *Grid) OnNodeRemoved(fn func(Node)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.removed = append(g.removed, fn)
}

// SetStatic toggles interactivity. Nodes are untouched either way.
func (g *Grid) SetStatic(static bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.static = static
}

// Static reports whether interactive moves are disabled.
func (g *Grid) Static() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.static
}

// SetZoom adjusts the presentation scale factor. Zoom is cosmetic only: it
// never touches node geometry and emits no events.
func (g *Grid) SetZoom(scale float64) {
	if scale < MinZoom {
		scale = MinZoom
	}
	if scale > MaxZoom {
		scale = MaxZoom
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.zoom = scale
}

// Zoom returns the current presentation scale factor.
func (g *Grid) Zoom() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.zoom
}

// AddNode places a new node. Specs without a usable size or flagged
// AutoPosition are placed at the first free slot scanning rows top-down.
func (g *Grid) AddNode(spec NodeSpec) (Node, error) {
	if spec.ID == "" {
		return Node{}, errors.New("grid: node id is required")
	}
	g.mu.Lock()
	if g.destroyed {
		g.mu.Unlock()
		return Node{}, ErrDestroyed
	}
	if _, exists := g.nodes[spec.ID]; exists {
		g.mu.Unlock()
		return Node{}, fmt.Errorf("grid: node %s already exists", spec.ID)
	}
	node := &Node{ID: spec.ID, X: spec.X, Y: spec.Y, W: spec.W, H: spec.H}
	g.clamp(node)
	if spec.AutoPosition || spec.W <= 0 || spec.H <= 0 {
		node.X, node.Y = g.freeSlot(node.W, node.H)
	}
	g.nodes[node.ID] = node
	g.order = append(g.order, node.ID)
	placed := *node
	handlers := append([]func(Node){}, g.added...)
	g.mu.Unlock()

	for _, fn := range handlers {
		fn(placed)
	}
	return placed, nil
}

// UpdateNode applies geometry from the owning store. It clamps to grid
// bounds, skips no-op writes, and does not resolve collisions: callers are
// trusted to provide a consistent layout.
func (g *Grid) UpdateNode(id string, x, y, w, h int) (Node, bool, error) {
	g.mu.Lock()
	if g.destroyed {
		g.mu.Unlock()
		return Node{}, false, ErrDestroyed
	}
	node, ok := g.nodes[id]
	if !ok {
		g.mu.Unlock()
		return Node{}, false, fmt.Errorf("grid: update %s: %w", id, ErrNodeNotFound)
	}
	next := Node{ID: id, X: x, Y: y, W: w, H: h}
	g.clamp(&next)
	if next == *node {
		g.mu.Unlock()
		return next, false, nil
	}
	*node = next
	updated := *node
	handlers := append([]func([]Node){}, g.changed...)
	g.mu.Unlock()

	for _, fn := range handlers {
		fn([]Node{updated})
	}
	return updated, true, nil
}

// MoveNode applies a user-driven drag/resize. Static grids reject it. Nodes
// displaced by the move are pushed down and reported in the same change batch.
func (g *Grid) MoveNode(id string, x, y, w, h int) error {
	g.mu.Lock()
	if g.destroyed {
		g.mu.Unlock()
		return ErrDestroyed
	}
	if g.static {
		g.mu.Unlock()
		return ErrStatic
	}
	node, ok := g.nodes[id]
	if !ok {
		g.mu.Unlock()
		return fmt.Errorf("grid: move %s: %w", id, ErrNodeNotFound)
	}
	next := Node{ID: id, X: x, Y: y, W: w, H: h}
	g.clamp(&next)
	if next == *node {
		g.mu.Unlock()
		return nil
	}
	*node = next
	affected := g.resolveCollisions(node)
	batch := make([]Node, 0, len(affected)+1)
	batch = append(batch, *node)
	for _, other := range affected {
		batch = append(batch, *other)
	}
	handlers := append([]func([]Node){}, g.changed...)
	g.mu.Unlock()

	for _, fn := range handlers {
		fn(batch)
	}
	return nil
}

// RemoveNode removes a node and reports whether it existed.
func (g *Grid) RemoveNode(id string) (Node, bool) {
	g.mu.Lock()
	node, ok := g.nodes[id]
	if !ok {
		g.mu.Unlock()
		return Node{}, false
	}
	removed := *node
	delete(g.nodes, id)
	for i, existing := range g.order {
		if existing == id {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
	handlers := append([]func(Node){}, g.removed...)
	g.mu.Unlock()

	for _, fn := range handlers {
		fn(removed)
	}
	return removed, true
}

// Node fetches a node snapshot by id.
func (g *Grid) Node(id string) (Node, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	node, ok := g.nodes[id]
	if !ok {
		return Node{}, false
	}
	return *node, true
}

// Nodes returns snapshots of all nodes in insertion order.
func (g *Grid) Nodes() []Node {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, *g.nodes[id])
	}
	return out
}

// Len returns the node count.
func (g *Grid) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.nodes)
}

// Destroy releases nodes and handlers. The grid is unusable afterwards.
func (g *Grid) Destroy() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nodes = map[string]*Node{}
	g.order = nil
	g.changed = nil
	g.added = nil
	g.removed = nil
	g.destroyed = true
}

// Destroyed reports whether Destroy has been called.
func (g *Grid) Destroyed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.destroyed
}

func (g *Grid) clamp(node *Node) {
	if node.W < 1 {
		node.W = 1
	}
	if node.W > g.columns {
		node.W = g.columns
	}
	if node.H < 1 {
		node.H = 1
	}
	if node.X < 0 {
		node.X = 0
	}
	if node.X+node.W > g.columns {
		node.X = g.columns - node.W
	}
	if node.Y < 0 {
		node.Y = 0
	}
}

// freeSlot scans rows top-down for the first rect that fits without overlap.
func (g *Grid) freeSlot(w, h int) (int, int) {
	for y := 0; ; y++ {
		for x := 0; x+w <= g.columns; x++ {
			candidate := Node{X: x, Y: y, W: w, H: h}
			if !g.collides(candidate, "") {
				return x, y
			}
		}
	}
}

func (g *Grid) collides(rect Node, skip string) bool {
	for _, id := range g.order {
		if id == skip {
			continue
		}
		if overlap(rect, *g.nodes[id]) {
			return true
		}
	}
	return false
}

// resolveCollisions pushes nodes overlapping the moved node down until the
// layout is overlap-free again. Returns the displaced nodes.
func (g *Grid) resolveCollisions(moved *Node) []*Node {
	displaced := map[string]*Node{}
	// Cascading pushes terminate because every pass strictly increases some
	// node's Y and never decreases another's.
	for pass := 0; pass < len(g.nodes)+1; pass++ {
		dirty := false
		for _, id := range g.order {
			node := g.nodes[id]
			if node == moved {
				continue
			}
			for _, otherID := range g.order {
				other := g.nodes[otherID]
				if other == node || (other != moved && displaced[otherID] == nil) {
					continue
				}
				if overlap(*node, *other) {
					node.Y = other.Y + other.H
					displaced[id] = node
					dirty = true
				}
			}
		}
		if !dirty {
			break
		}
	}
	out := make([]*Node, 0, len(displaced))
	for _, id := range g.order {
		if node, ok := displaced[id]; ok {
			out = append(out, node)
		}
	}
	return out
}

func overlap(a, b Node) bool {
	return a.X < b.X+b.W && b.X < a.X+a.W && a.Y < b.Y+b.H && b.Y < a.Y+a.H
}
